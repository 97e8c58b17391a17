package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-console-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-console-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/backend"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/sse"
	"golang.org/x/sync/errgroup"
)

// EventPublisher fans events out to connected console clients.
type EventPublisher interface {
	Broadcast(event sse.Event)
}

type approvalService struct {
	api       backend.API
	publisher EventPublisher

	mu       sync.Mutex
	inFlight map[approval.Kind]map[string]struct{}
}

func NewApprovalService(api backend.API, publisher EventPublisher) approval.Service {
	return &approvalService{
		api:       api,
		publisher: publisher,
		inFlight:  make(map[approval.Kind]map[string]struct{}),
	}
}

// List implements approval.Service.
func (s *approvalService) List(ctx context.Context, session user.Session, kind string, filter approval.ListFilter) (approval.ListView, error) {
	resource, err := approval.LookupResource(kind)
	if err != nil {
		return approval.ListView{}, err
	}
	if err := filter.Validate(); err != nil {
		return approval.ListView{}, err
	}

	var page approval.Page
	if err := s.api.Get(ctx, session.Token, resource.ListPath(filter), &page); err != nil {
		return approval.ListView{}, err
	}

	view := approval.ListView{
		Resource:   resource.Kind,
		Capability: session.Capability(),
		Count:      page.Count,
		Next:       page.Next,
		Previous:   page.Previous,
		Items:      make([]approval.ItemView, 0, len(page.Results)),
	}
	for _, raw := range page.Results {
		item, err := resource.Decode(raw)
		if err != nil {
			return approval.ListView{}, err
		}
		view.Items = append(view.Items, s.decorate(resource, session, item))
	}

	return view, nil
}

// Get implements approval.Service.
func (s *approvalService) Get(ctx context.Context, session user.Session, kind string, id string) (approval.ItemView, error) {
	resource, err := approval.LookupResource(kind)
	if err != nil {
		return approval.ItemView{}, err
	}

	var raw json.RawMessage
	if err := s.api.Get(ctx, session.Token, resource.ItemPath(id), &raw); err != nil {
		return approval.ItemView{}, err
	}

	item, err := resource.Decode(raw)
	if err != nil {
		return approval.ItemView{}, err
	}
	return s.decorate(resource, session, item), nil
}

// Summary implements approval.Service.
func (s *approvalService) Summary(ctx context.Context, session user.Session, kind string) (approval.Summary, error) {
	resource, err := approval.LookupResource(kind)
	if err != nil {
		return approval.Summary{}, err
	}
	if !resource.HasSummary {
		return approval.Summary{}, approval.ErrSummaryUnsupported
	}

	var summary approval.Summary
	if err := s.api.Get(ctx, session.Token, resource.SummaryPath(), &summary); err != nil {
		return approval.Summary{}, err
	}
	return summary, nil
}

// Dashboard fetches the list and, where available, the summary concurrently.
func (s *approvalService) Dashboard(ctx context.Context, session user.Session, kind string, filter approval.ListFilter) (approval.DashboardView, error) {
	resource, err := approval.LookupResource(kind)
	if err != nil {
		return approval.DashboardView{}, err
	}

	var (
		dashboard approval.DashboardView
		summary   approval.Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.List(gctx, session, kind, filter)
		if err != nil {
			return err
		}
		dashboard.List = list
		return nil
	})
	if resource.HasSummary {
		g.Go(func() error {
			sum, err := s.Summary(gctx, session, kind)
			if err != nil {
				return err
			}
			summary = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return approval.DashboardView{}, err
	}

	if resource.HasSummary {
		dashboard.Summary = &summary
	}
	return dashboard, nil
}

// Approve implements approval.Service.
func (s *approvalService) Approve(ctx context.Context, session user.Session, kind string, id string, req approval.ApproveRequest, filter approval.ListFilter) (approval.ListView, error) {
	if err := req.Validate(); err != nil {
		return approval.ListView{}, err
	}
	action, err := req.Level.Action()
	if err != nil {
		return approval.ListView{}, err
	}
	return s.Invoke(ctx, session, kind, id, action, "", filter)
}

// Reject implements approval.Service.
func (s *approvalService) Reject(ctx context.Context, session user.Session, kind string, id string, req approval.RejectRequest, filter approval.ListFilter) (approval.ListView, error) {
	if err := req.Validate(); err != nil {
		return approval.ListView{}, err
	}
	return s.Invoke(ctx, session, kind, id, approval.ActionReject, req.RejectionReason, filter)
}

// Invoke posts one action to the backend and re-fetches the caller's list.
// Failures are returned as-is and never retried. A failed re-fetch after a
// committed action is reported in ListView.RefreshError, not as an error.
func (s *approvalService) Invoke(ctx context.Context, session user.Session, kind string, id string, action approval.Action, reason string, filter approval.ListFilter) (approval.ListView, error) {
	resource, err := approval.LookupResource(kind)
	if err != nil {
		return approval.ListView{}, err
	}
	if strings.TrimSpace(id) == "" {
		return approval.ListView{}, fmt.Errorf("%w: missing request id", approval.ErrUnknownResource)
	}
	reason = strings.TrimSpace(reason)
	if action == approval.ActionReject && reason == "" {
		return approval.ListView{}, approval.ErrRejectionReasonRequired
	}
	if !approval.CapabilityPermits(session.Capability(), action) {
		return approval.ListView{}, approval.ErrActionNotPermitted
	}
	if err := filter.Validate(); err != nil {
		return approval.ListView{}, err
	}

	if err := s.post(ctx, session, resource, id, action, reason); err != nil {
		return approval.ListView{}, err
	}

	s.publisher.Broadcast(sse.Event{
		Event: sse.EventApprovalUpdated,
		Data: approval.UpdatedEvent{
			Resource: resource.Kind,
			ID:       id,
			Action:   action,
			ActorID:  session.UserID,
			At:       time.Now(),
		},
	})

	view, err := s.List(ctx, session, kind, filter)
	if err != nil {
		// The action is committed; only the refresh failed.
		slog.Warn("List refresh after action failed",
			"resource", resource.Kind,
			"id", id,
			"action", action,
			"error", err,
		)
		return approval.ListView{
			Resource:     resource.Kind,
			Capability:   session.Capability(),
			Items:        []approval.ItemView{},
			RefreshError: refreshMessage(err),
		}, nil
	}
	return view, nil
}

func refreshMessage(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// post sends the action while holding the row's in-flight slot.
func (s *approvalService) post(ctx context.Context, session user.Session, resource approval.Resource, id string, action approval.Action, reason string) error {
	if !s.acquire(resource.Kind, id) {
		return approval.ErrActionInProgress
	}
	defer s.release(resource.Kind, id)

	payload := resource.ActionPayload(action, reason)
	if err := s.api.Post(ctx, session.Token, resource.ActionPath(id, action), payload, nil); err != nil {
		slog.Error("Approval action failed",
			"resource", resource.Kind,
			"id", id,
			"action", action,
			"user_id", session.UserID,
			"error", err,
		)
		return err
	}

	slog.Info("Approval action completed",
		"resource", resource.Kind,
		"id", id,
		"action", action,
		"user_id", session.UserID,
	)
	return nil
}

// Processing implements approval.Service.
func (s *approvalService) Processing(kind string) ([]string, error) {
	resource, err := approval.LookupResource(kind)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.inFlight[resource.Kind]))
	for id := range s.inFlight[resource.Kind] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *approvalService) acquire(kind approval.Kind, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[kind][id]; busy {
		return false
	}
	if s.inFlight[kind] == nil {
		s.inFlight[kind] = make(map[string]struct{})
	}
	s.inFlight[kind][id] = struct{}{}
	return true
}

func (s *approvalService) release(kind approval.Kind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight[kind], id)
}

func (s *approvalService) isProcessing(kind approval.Kind, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, busy := s.inFlight[kind][id]
	return busy
}

func (s *approvalService) decorate(resource approval.Resource, session user.Session, item approval.Approvable) approval.ItemView {
	common := item.Common()
	view := approval.ItemView{
		Request:    item,
		Badge:      approval.StatusBadge(resource, common.Status),
		Actions:    approval.Actions(common.Status, session.Capability()),
		Processing: s.isProcessing(resource.Kind, common.ID.String()),
	}
	if p, ok := item.(approval.Prioritized); ok {
		badge := approval.PriorityBadge(p.PriorityLevel())
		view.PriorityBadge = &badge
	}
	return view
}
