package approval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusLevel1Approved Status = "level1_approved"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
	StatusCompleted      Status = "completed"
	StatusExported       Status = "exported"
	StatusCancelled      Status = "cancelled"
	StatusFailed         Status = "failed"
)

// IsTerminal reports whether no further approval action can follow.
// Unknown statuses are not terminal but still offer no actions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusCompleted, StatusExported, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// ID is a server-assigned identifier. The backend emits integers for some
// resources and strings for others.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Actor is a user reference. The backend sends a bare id, a display name,
// or an object depending on the serializer.
type Actor struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

func (a *Actor) UnmarshalJSON(data []byte) error {
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '{':
		var obj struct {
			ID       ID     `json:"id"`
			Name     string `json:"name"`
			FullName string `json:"full_name"`
			Username string `json:"username"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		a.ID = obj.ID
		a.Name = firstNonEmpty(obj.Name, obj.FullName, obj.Username)
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			a.ID = ID(s)
		} else {
			a.Name = s
		}
		return nil
	default:
		return a.ID.UnmarshalJSON(data)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Approval holds the fields every approvable request shares.
type Approval struct {
	ID               ID         `json:"id"`
	Status           Status     `json:"status"`
	Level1ApprovedBy *Actor     `json:"level1_approved_by"`
	Level1ApprovedAt *time.Time `json:"level1_approved_at"`
	FinalApprovedBy  *Actor     `json:"final_approved_by"`
	FinalApprovedAt  *time.Time `json:"final_approved_at"`
	RejectionReason  *string    `json:"rejection_reason"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// Common returns the shared approval fields.
func (a Approval) Common() Approval {
	return a
}

// Approvable is implemented by every request entity through the embedded Approval.
type Approvable interface {
	Common() Approval
}

// Prioritized is implemented by entities that carry a priority.
type Prioritized interface {
	PriorityLevel() Priority
}

// OvertimeRequest entity
type OvertimeRequest struct {
	Approval
	Employee        *Actor              `json:"employee,omitempty"`
	Date            string              `json:"date"`
	StartTime       *string             `json:"start_time,omitempty"`
	EndTime         *string             `json:"end_time,omitempty"`
	OvertimeHours   decimal.Decimal     `json:"overtime_hours"`
	OvertimeAmount  decimal.NullDecimal `json:"overtime_amount"`
	WorkDescription string              `json:"work_description"`
}

// MonthlySummaryRequest entity
type MonthlySummaryRequest struct {
	Approval
	Employee      *Actor   `json:"employee,omitempty"`
	RequestTitle  string   `json:"request_title"`
	RequestPeriod string   `json:"request_period"`
	Description   *string  `json:"request_description,omitempty"`
	Priority      Priority `json:"priority"`
}

func (m MonthlySummaryRequest) PriorityLevel() Priority {
	return m.Priority
}

// MonthlyExportRequest entity
type MonthlyExportRequest struct {
	Approval
	Employee     *Actor  `json:"employee,omitempty"`
	ExportPeriod string  `json:"export_period"`
	ExportFormat string  `json:"export_format"`
	FileURL      *string `json:"file_url,omitempty"`
}

// AttendanceCorrection entity
type AttendanceCorrection struct {
	Approval
	Employee          *Actor  `json:"employee,omitempty"`
	Date              string  `json:"date"`
	RequestedCheckIn  *string `json:"requested_check_in,omitempty"`
	RequestedCheckOut *string `json:"requested_check_out,omitempty"`
	Reason            string  `json:"reason"`
}

// Page is the backend's paginated collection envelope.
type Page struct {
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []json.RawMessage `json:"results"`
}

// Summary aggregates request counts and overtime totals.
type Summary struct {
	TotalRequests       int             `json:"total_requests"`
	PendingCount        int             `json:"pending_count"`
	Level1ApprovedCount int             `json:"level1_approved_count"`
	ApprovedCount       int             `json:"approved_count"`
	RejectedCount       int             `json:"rejected_count"`
	TotalHours          decimal.Decimal `json:"total_hours"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
}
