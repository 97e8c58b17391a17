package approval

import (
	"context"

	"github.com/cmlabs-hris/hris-console-go/internal/domain/user"
)

type Service interface {
	// Read
	List(ctx context.Context, session user.Session, kind string, filter ListFilter) (ListView, error)
	Get(ctx context.Context, session user.Session, kind string, id string) (ItemView, error)
	Summary(ctx context.Context, session user.Session, kind string) (Summary, error)
	Dashboard(ctx context.Context, session user.Session, kind string, filter ListFilter) (DashboardView, error)

	// Actions; each returns the re-fetched list
	Invoke(ctx context.Context, session user.Session, kind string, id string, action Action, reason string, filter ListFilter) (ListView, error)
	Approve(ctx context.Context, session user.Session, kind string, id string, req ApproveRequest, filter ListFilter) (ListView, error)
	Reject(ctx context.Context, session user.Session, kind string, id string, req RejectRequest, filter ListFilter) (ListView, error)

	// In-flight state
	Processing(kind string) ([]string, error)
}
