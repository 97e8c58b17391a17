package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-console-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-console-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-console-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/backend"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/sse"
	"github.com/google/uuid"
)

const (
	broadcastPath     = "/api/admin/notifications/broadcast/"
	notificationsPath = "/api/notifications/"
	unreadCountPath   = "/api/notifications/unread_count/"
	markReadPath      = "/api/notifications/mark_read/"
	markAllReadPath   = "/api/notifications/mark_all_read/"
)

// Config holds broadcast worker configuration
type Config struct {
	BatchSize     int           // default: 50
	FlushInterval time.Duration // default: 2 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 500
}

// broadcastJob is a validated broadcast waiting for delivery
type broadcastJob struct {
	id       string
	senderID string
	token    string
	req      notification.BroadcastRequest
	queuedAt time.Time
}

type service struct {
	api    backend.API
	hub    *sse.Hub
	config Config

	queue  chan broadcastJob
	wg     sync.WaitGroup
	stopCh chan struct{}

	// stopMu orders enqueues before the close of stopCh so workers
	// never exit with an accepted job still queued.
	stopMu  sync.RWMutex
	stopped bool
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(api backend.API, hub *sse.Hub, cfg Config) notification.Service {
	// Set defaults
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 500
	}

	s := &service{
		api:    api,
		hub:    hub,
		config: cfg,
		queue:  make(chan broadcastJob, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval,
	)

	return s
}

// worker drains the broadcast queue in batches
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]broadcastJob, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		delivered := 0
		for _, job := range batch {
			if s.deliver(ctx, job) {
				delivered++
			}
		}
		slog.Info("Broadcast batch flushed", "worker", id, "size", len(batch), "delivered", delivered)

		batch = batch[:0]
	}

	for {
		select {
		case job := <-s.queue:
			batch = append(batch, job)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// drain what is already queued before exiting
			for {
				select {
				case job := <-s.queue:
					batch = append(batch, job)
				default:
					flush()
					return
				}
			}
		}
	}
}

// deliver posts one broadcast to the backend and fans it out to live
// subscribers. Failures are logged and never reach the admin.
func (s *service) deliver(ctx context.Context, job broadcastJob) bool {
	if err := s.api.Post(ctx, job.token, broadcastPath, job.req, nil); err != nil {
		slog.Error("Broadcast delivery failed",
			"broadcast_id", job.id,
			"sender_id", job.senderID,
			"error", err,
		)
		return false
	}

	s.hub.Broadcast(sse.Event{
		ID:    job.id,
		Event: sse.EventNotification,
		Data: notification.BroadcastEvent{
			BroadcastID:   job.id,
			Audience:      job.req.Audience(),
			Title:         job.req.Title,
			Message:       job.req.Message,
			Priority:      job.req.Priority,
			PriorityBadge: approval.PriorityBadge(job.req.Priority),
			SentAt:        time.Now(),
		},
	})
	return true
}

// Broadcast validates and queues an admin broadcast
func (s *service) Broadcast(ctx context.Context, session user.Session, req notification.BroadcastRequest) (notification.BroadcastAccepted, error) {
	if !session.IsAdmin() {
		return notification.BroadcastAccepted{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return notification.BroadcastAccepted{}, err
	}

	s.stopMu.RLock()
	defer s.stopMu.RUnlock()
	if s.stopped {
		return notification.BroadcastAccepted{}, notification.ErrServiceStopped
	}

	job := broadcastJob{
		id:       uuid.NewString(),
		senderID: session.UserID,
		token:    session.Token,
		req:      req,
		queuedAt: time.Now(),
	}

	select {
	case s.queue <- job:
	case <-ctx.Done():
		return notification.BroadcastAccepted{}, ctx.Err()
	default:
		return notification.BroadcastAccepted{}, notification.ErrQueueFull
	}

	return notification.BroadcastAccepted{
		ID:       job.id,
		Status:   "queued",
		QueuedAt: job.queuedAt,
	}, nil
}

// GetNotifications proxies the caller's paginated notifications
func (s *service) GetNotifications(ctx context.Context, session user.Session, req notification.ListNotificationsRequest) (notification.NotificationListResponse, error) {
	path := notificationsPath
	if q := req.Query(); len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page notification.Page
	if err := s.api.Get(ctx, session.Token, path, &page); err != nil {
		return notification.NotificationListResponse{}, err
	}

	views := make([]notification.NotificationView, len(page.Results))
	for i, n := range page.Results {
		views[i] = notification.NotificationView{
			Notification:  n,
			PriorityBadge: approval.PriorityBadge(n.Priority),
		}
	}

	return notification.NotificationListResponse{
		Count:         page.Count,
		Next:          page.Next,
		Previous:      page.Previous,
		Notifications: views,
	}, nil
}

// GetUnreadCount returns the count of unread notifications
func (s *service) GetUnreadCount(ctx context.Context, session user.Session) (int, error) {
	var resp notification.UnreadCountResponse
	if err := s.api.Get(ctx, session.Token, unreadCountPath, &resp); err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}

// MarkAsRead marks specified notifications as read
func (s *service) MarkAsRead(ctx context.Context, session user.Session, req notification.MarkAsReadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.api.Post(ctx, session.Token, markReadPath, req, nil); err != nil {
		return err
	}
	s.publishReadState(session.UserID, notification.ReadStateEvent{NotificationIDs: req.NotificationIDs})
	return nil
}

// MarkAllAsRead marks all notifications as read for the caller
func (s *service) MarkAllAsRead(ctx context.Context, session user.Session) error {
	if err := s.api.Post(ctx, session.Token, markAllReadPath, struct{}{}, nil); err != nil {
		return err
	}
	s.publishReadState(session.UserID, notification.ReadStateEvent{All: true})
	return nil
}

// publishReadState tells the caller's other open streams to refresh their unread badge
func (s *service) publishReadState(userID string, event notification.ReadStateEvent) {
	s.hub.Publish(userID, sse.Event{Event: sse.EventReadStateChanged, Data: event})
}

// Subscribe creates an SSE subscription. Broadcasts outside the subscriber's
// audience are filtered out; every other event passes through.
func (s *service) Subscribe(ctx context.Context, subscriber notification.Subscriber) (<-chan notification.StreamEvent, func()) {
	ch, cleanup := s.hub.Subscribe(subscriber.UserID)
	slog.Debug("SSE subscriber connected",
		"user_id", subscriber.UserID,
		"role", subscriber.Role,
		"user_connections", s.hub.SubscriberCount(subscriber.UserID),
		"total_connections", s.hub.TotalSubscribers(),
	)

	out := make(chan notification.StreamEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				if b, isBroadcast := event.Data.(notification.BroadcastEvent); isBroadcast && !b.Audience.Includes(subscriber) {
					continue
				}
				select {
				case out <- notification.StreamEvent{ID: event.ID, Event: event.Event, Data: event.Data}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop flushes queued broadcasts and stops the workers
func (s *service) Stop() {
	s.stopMu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.stopCh)
	}
	s.stopMu.Unlock()

	s.wg.Wait()
	slog.Info("Notification service stopped")
}
