package approval

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// Kind names an approvable resource in console URLs.
type Kind string

const (
	KindOvertimeRequest       Kind = "overtime-requests"
	KindMonthlyExport         Kind = "monthly-exports"
	KindMonthlySummaryRequest Kind = "monthly-summary-requests"
	KindAttendanceCorrection  Kind = "attendance-corrections"
)

// Resource describes how one approvable entity is reached on the backend.
type Resource struct {
	Kind Kind
	// Path is the backend collection path with a trailing slash.
	Path string
	// LevelInBody is false when the backend infers the approval level from the
	// request's current status and expects an empty approve body.
	LevelInBody  bool
	HasSummary   bool
	StatusLabels map[Status]Badge

	decode func(raw json.RawMessage) (Approvable, error)
}

func decodeAs[T Approvable](raw json.RawMessage) (Approvable, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

var resources = map[Kind]Resource{
	KindOvertimeRequest: {
		Kind:        KindOvertimeRequest,
		Path:        "/api/overtime-requests/",
		LevelInBody: false,
		HasSummary:  true,
		StatusLabels: withLabels(map[Status]Badge{
			StatusCancelled: {Text: "Dibatalkan", ColorClass: colorGray},
		}),
		decode: decodeAs[OvertimeRequest],
	},
	KindMonthlyExport: {
		Kind:        KindMonthlyExport,
		Path:        "/api/overtime-requests/monthly_exports/",
		LevelInBody: true,
		StatusLabels: withLabels(map[Status]Badge{
			StatusExported: {Text: "Diekspor", ColorClass: colorPurple},
			StatusFailed:   {Text: "Gagal", ColorClass: colorRed},
		}),
		decode: decodeAs[MonthlyExportRequest],
	},
	KindMonthlySummaryRequest: {
		Kind:        KindMonthlySummaryRequest,
		Path:        "/api/employee/monthly-summary-requests/",
		LevelInBody: true,
		StatusLabels: withLabels(map[Status]Badge{
			StatusCompleted: {Text: "Selesai", ColorClass: colorGreen},
			StatusCancelled: {Text: "Dibatalkan", ColorClass: colorGray},
			StatusFailed:    {Text: "Gagal", ColorClass: colorRed},
		}),
		decode: decodeAs[MonthlySummaryRequest],
	},
	KindAttendanceCorrection: {
		Kind:        KindAttendanceCorrection,
		Path:        "/api/attendance-corrections/",
		LevelInBody: true,
		StatusLabels: withLabels(map[Status]Badge{
			StatusCancelled: {Text: "Dibatalkan", ColorClass: colorGray},
		}),
		decode: decodeAs[AttendanceCorrection],
	},
}

// LookupResource returns the descriptor for a console resource name.
func LookupResource(kind string) (Resource, error) {
	r, ok := resources[Kind(kind)]
	if !ok {
		return Resource{}, fmt.Errorf("%w: %q", ErrUnknownResource, kind)
	}
	return r, nil
}

// Kinds lists every registered resource kind.
func Kinds() []Kind {
	return []Kind{KindOvertimeRequest, KindMonthlyExport, KindMonthlySummaryRequest, KindAttendanceCorrection}
}

// Decode parses one backend object into the resource's entity type.
func (r Resource) Decode(raw json.RawMessage) (Approvable, error) {
	v, err := r.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.Kind, err)
	}
	return v, nil
}

func (r Resource) ItemPath(id string) string {
	return r.Path + url.PathEscape(id) + "/"
}

func (r Resource) SummaryPath() string {
	return r.Path + "summary/"
}

// ActionPath returns the endpoint an action is posted to.
func (r Resource) ActionPath(id string, action Action) string {
	if action == ActionReject {
		return r.ItemPath(id) + "reject/"
	}
	return r.ItemPath(id) + "approve/"
}

// ListPath returns the collection path with the filter encoded.
func (r Resource) ListPath(filter ListFilter) string {
	q := filter.Query()
	if len(q) == 0 {
		return r.Path
	}
	return r.Path + "?" + q.Encode()
}

// ActionPayload builds the request body for an action.
func (r Resource) ActionPayload(action Action, reason string) any {
	switch action {
	case ActionReject:
		return RejectBody{RejectionReason: reason}
	case ActionApproveLevel1:
		if !r.LevelInBody {
			return struct{}{}
		}
		return ApproveBody{Level: LevelLevel1}
	default:
		if !r.LevelInBody {
			return struct{}{}
		}
		return ApproveBody{Level: LevelFinal}
	}
}
