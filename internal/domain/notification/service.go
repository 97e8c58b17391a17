package notification

import (
	"context"

	"github.com/cmlabs-hris/hris-console-go/internal/domain/user"
)

// Service defines the notification service interface
type Service interface {
	// Queue a broadcast (async delivery via background workers)
	Broadcast(ctx context.Context, session user.Session, req BroadcastRequest) (BroadcastAccepted, error)

	// Proxied operations on the caller's own notifications
	GetNotifications(ctx context.Context, session user.Session, req ListNotificationsRequest) (NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, session user.Session) (int, error)
	MarkAsRead(ctx context.Context, session user.Session, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, session user.Session) error

	// SSE subscription
	Subscribe(ctx context.Context, subscriber Subscriber) (<-chan StreamEvent, func())

	// Lifecycle
	Stop()
}
