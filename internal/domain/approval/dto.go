package approval

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-console-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/validator"
)

type Level string

const (
	LevelLevel1 Level = "level1"
	LevelFinal  Level = "final"
)

// Action maps an approval level to its action
func (l Level) Action() (Action, error) {
	switch l {
	case LevelLevel1:
		return ActionApproveLevel1, nil
	case LevelFinal:
		return ActionApproveFinal, nil
	default:
		return "", ErrInvalidLevel
	}
}

// ============= Console request DTOs =============

type ApproveRequest struct {
	Level Level `json:"level"`
}

func (r *ApproveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(string(r.Level)) {
		errs = append(errs, validator.ValidationError{
			Field:   "level",
			Message: "level is required",
		})
	} else if _, err := r.Level.Action(); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "level",
			Message: "level must be one of: level1, final",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RejectRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

// Validate blocks empty or whitespace-only reasons before any backend call.
func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RejectionReason) {
		errs = append(errs, validator.ValidationError{
			Field:   "rejection_reason",
			Message: "rejection_reason is required",
		})
	}
	if len(r.RejectionReason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "rejection_reason",
			Message: "rejection_reason must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ListFilter carries the caller's current list filter so the post-action
// re-fetch shows the same view.
type ListFilter struct {
	Status string
	Search string
	Page   int
}

var statusFilterValues = []string{
	"all",
	string(StatusPending),
	string(StatusLevel1Approved),
	string(StatusApproved),
	string(StatusRejected),
	string(StatusCompleted),
	string(StatusExported),
	string(StatusCancelled),
	string(StatusFailed),
}

func (f *ListFilter) Validate() error {
	var errs validator.ValidationErrors

	if status := strings.TrimSpace(f.Status); status != "" && !validator.IsInSlice(status, statusFilterValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status is not a known request status",
		})
	}
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive integer",
		})
	}
	if len(f.Search) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "search",
			Message: "search must not exceed 100 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Query encodes the filter for the backend. "all" means no status filter.
func (f ListFilter) Query() url.Values {
	q := url.Values{}
	if status := strings.TrimSpace(f.Status); status != "" && status != "all" {
		q.Set("status", status)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q.Set("search", search)
	}
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	return q
}

// ============= Backend request bodies =============

type ApproveBody struct {
	Level Level `json:"level"`
}

type RejectBody struct {
	RejectionReason string `json:"rejection_reason"`
}

// ============= Response DTOs =============

// ItemView is one request decorated for display.
type ItemView struct {
	Request       Approvable `json:"request"`
	Badge         Badge      `json:"badge"`
	PriorityBadge *Badge     `json:"priority_badge,omitempty"`
	Actions       ActionSet  `json:"actions"`
	Processing    bool       `json:"processing"`
}

type ListView struct {
	Resource   Kind                    `json:"resource"`
	Capability user.ApprovalCapability `json:"capability"`
	Count      int                     `json:"count"`
	Next       *string                 `json:"next"`
	Previous   *string                 `json:"previous"`
	Items      []ItemView              `json:"items"`

	// RefreshError is set when an action succeeded but the follow-up
	// re-fetch did not; Items is then empty and the client should reload.
	RefreshError string `json:"refresh_error,omitempty"`
}

// DashboardView combines a list with its summary.
type DashboardView struct {
	List    ListView `json:"list"`
	Summary *Summary `json:"summary,omitempty"`
}

type ProcessingResponse struct {
	Resource Kind     `json:"resource"`
	IDs      []string `json:"ids"`
}

// UpdatedEvent is streamed to console clients after a successful action so
// other screens showing the same resource can re-fetch.
type UpdatedEvent struct {
	Resource Kind      `json:"resource"`
	ID       string    `json:"id"`
	Action   Action    `json:"action"`
	ActorID  string    `json:"actor_id"`
	At       time.Time `json:"at"`
}
