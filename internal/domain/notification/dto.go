package notification

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-console-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-console-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/validator"
)

// ============= Request DTOs =============

// BroadcastRequest is an admin announcement to a role, a division or everyone
type BroadcastRequest struct {
	Title            string            `json:"title"`
	Message          string            `json:"message"`
	Priority         approval.Priority `json:"priority"`
	TargetRole       *string           `json:"target_role,omitempty"`
	TargetDivisionID *string           `json:"target_division_id,omitempty"`
}

func (r *BroadcastRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Title = strings.TrimSpace(r.Title)
	r.Message = strings.TrimSpace(r.Message)

	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title is required",
		})
	} else if len(r.Title) > 200 {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title must not exceed 200 characters",
		})
	}

	if validator.IsEmpty(r.Message) {
		errs = append(errs, validator.ValidationError{
			Field:   "message",
			Message: "message is required",
		})
	} else if len(r.Message) > 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   "message",
			Message: "message must not exceed 2000 characters",
		})
	}

	if r.Priority == "" {
		r.Priority = approval.PriorityMedium
	} else if !approval.IsValidPriority(r.Priority) {
		errs = append(errs, validator.ValidationError{
			Field:   "priority",
			Message: "priority must be one of: low, medium, high, urgent",
		})
	}

	if r.TargetRole != nil && !user.Role(*r.TargetRole).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "target_role",
			Message: "target_role must be one of: admin, org_supervisor, division_supervisor, employee",
		})
	}

	if r.TargetDivisionID != nil && !validator.IsNumeric(*r.TargetDivisionID) {
		errs = append(errs, validator.ValidationError{
			Field:   "target_division_id",
			Message: "target_division_id must be numeric",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Audience returns who the broadcast is addressed to
func (r BroadcastRequest) Audience() Audience {
	var a Audience
	if r.TargetRole != nil {
		role := user.Role(*r.TargetRole)
		a.Role = &role
	}
	a.DivisionID = r.TargetDivisionID
	return a
}

// ListNotificationsRequest represents a request to list notifications
type ListNotificationsRequest struct {
	Page   int
	Unread *bool
}

// Query encodes the request for the backend
func (r ListNotificationsRequest) Query() url.Values {
	q := url.Values{}
	if r.Page > 1 {
		q.Set("page", strconv.Itoa(r.Page))
	}
	if r.Unread != nil {
		q.Set("is_read", strconv.FormatBool(!*r.Unread))
	}
	return q
}

// MarkAsReadRequest represents a request to mark notifications as read
type MarkAsReadRequest struct {
	NotificationIDs []string `json:"notification_ids"`
}

func (r *MarkAsReadRequest) Validate() error {
	if len(r.NotificationIDs) == 0 {
		return validator.ValidationErrors{{
			Field:   "notification_ids",
			Message: "notification_ids must contain at least one id",
		}}
	}
	return nil
}

// ============= Response DTOs =============

// BroadcastAccepted is returned once a broadcast has been queued
type BroadcastAccepted struct {
	ID       string    `json:"id"`
	Status   string    `json:"status"`
	QueuedAt time.Time `json:"queued_at"`
}

// NotificationView is a notification decorated with its priority badge
type NotificationView struct {
	Notification
	PriorityBadge approval.Badge `json:"priority_badge"`
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Count         int                `json:"count"`
	Next          *string            `json:"next"`
	Previous      *string            `json:"previous"`
	Notifications []NotificationView `json:"notifications"`
}

// UnreadCountResponse represents unread count response
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// SSETokenResponse represents the SSE token response
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// ============= Stream events =============

// BroadcastEvent is pushed to live subscribers in the broadcast's audience
type BroadcastEvent struct {
	BroadcastID   string            `json:"broadcast_id"`
	Audience      Audience          `json:"audience"`
	Title         string            `json:"title"`
	Message       string            `json:"message"`
	Priority      approval.Priority `json:"priority"`
	PriorityBadge approval.Badge    `json:"priority_badge"`
	SentAt        time.Time         `json:"sent_at"`
}

// StreamEvent is one event written to an SSE connection
type StreamEvent struct {
	ID    string
	Event string
	Data  interface{}
}

// ReadStateEvent is pushed to the reader's own streams after notifications are marked read
type ReadStateEvent struct {
	NotificationIDs []string `json:"notification_ids,omitempty"`
	All             bool     `json:"all"`
}
