package notification

import (
	"time"

	"github.com/cmlabs-hris/hris-console-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-console-go/internal/domain/user"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeBroadcast       NotificationType = "broadcast"
	TypeApprovalRequest NotificationType = "approval_request"
	TypeApprovalResult  NotificationType = "approval_result"
	TypeSystem          NotificationType = "system"
)

// Notification is a user notification as served by the backend
type Notification struct {
	ID               approval.ID            `json:"id"`
	NotificationType NotificationType       `json:"notification_type"`
	Title            string                 `json:"title"`
	Message          string                 `json:"message"`
	Priority         approval.Priority      `json:"priority"`
	Data             map[string]interface{} `json:"data,omitempty"`
	IsRead           bool                   `json:"is_read"`
	ReadAt           *time.Time             `json:"read_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// Page is the backend's paginated notification envelope
type Page struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []Notification `json:"results"`
}

// Audience limits who receives a broadcast. Zero value means everyone.
type Audience struct {
	Role       *user.Role `json:"target_role,omitempty"`
	DivisionID *string    `json:"target_division_id,omitempty"`
}

// Includes reports whether a subscriber belongs to the audience
func (a Audience) Includes(s Subscriber) bool {
	if a.Role != nil && *a.Role != s.Role {
		return false
	}
	if a.DivisionID != nil && (s.DivisionID == nil || *a.DivisionID != *s.DivisionID) {
		return false
	}
	return true
}

// Subscriber identifies a live stream connection
type Subscriber struct {
	UserID     string
	Role       user.Role
	DivisionID *string
}
