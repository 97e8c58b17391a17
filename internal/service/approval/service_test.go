package approval

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-console-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-console-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/backend"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// fakeBackend serves canned JSON per path and records every call.
type fakeBackend struct {
	mu        sync.Mutex
	calls     []recordedCall
	responses map[string]string
	failures  map[string]int
	// gate, when set, blocks POST handlers until it is closed.
	gate    chan struct{}
	entered chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		responses: make(map[string]string),
		failures:  make(map[string]int),
	}
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
	resp, ok := f.responses[r.Method+" "+r.URL.Path]
	status := f.failures[r.Method+" "+r.URL.Path]
	gate, entered := f.gate, f.entered
	f.mu.Unlock()

	if r.Method == http.MethodPost && gate != nil {
		entered <- struct{}{}
		<-gate
	}

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
		return
	}
	if !ok {
		resp = `{}`
	}
	_, _ = w.Write([]byte(resp))
}

func (f *fakeBackend) callsFor(method string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []recordedCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeBackend) allCalls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []sse.Event
}

func (p *recordingPublisher) Broadcast(event sse.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

const overtimeList = `{
	"count": 2,
	"next": null,
	"previous": null,
	"results": [
		{"id": 1, "status": "pending", "employee": {"id": 10, "full_name": "Budi"}, "date": "2026-10-01",
		 "overtime_hours": "2.5", "overtime_amount": "125000.00", "work_description": "Closing",
		 "level1_approved_by": null, "level1_approved_at": null, "final_approved_by": null,
		 "final_approved_at": null, "rejection_reason": null},
		{"id": 2, "status": "weird_status", "date": "2026-10-02", "overtime_hours": 1,
		 "overtime_amount": null, "work_description": "Deploy"}
	]
}`

func setup(t *testing.T) (*fakeBackend, *recordingPublisher, approval.Service) {
	t.Helper()
	fb := newFakeBackend()
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	pub := &recordingPublisher{}
	svc := NewApprovalService(backend.NewClient(srv.URL, 5*time.Second), pub)
	return fb, pub, svc
}

var (
	orgSession      = user.Session{UserID: "org-1", Role: user.RoleOrgSupervisor, Token: "tok-org"}
	divisionSession = user.Session{UserID: "div-1", Role: user.RoleDivisionSupervisor, Token: "tok-div"}
)

func TestApprovalService_List_DecoratesItems(t *testing.T) {
	fb, _, svc := setup(t)
	fb.responses["GET /api/overtime-requests/"] = overtimeList

	view, err := svc.List(context.Background(), orgSession, "overtime-requests", approval.ListFilter{Status: "pending", Page: 2})

	require.NoError(t, err)
	assert.Equal(t, approval.KindOvertimeRequest, view.Resource)
	assert.Equal(t, user.CapabilityOrganization, view.Capability)
	assert.Equal(t, 2, view.Count)
	require.Len(t, view.Items, 2)

	pending := view.Items[0]
	ot, ok := pending.Request.(approval.OvertimeRequest)
	require.True(t, ok)
	assert.Equal(t, approval.ID("1"), ot.ID)
	assert.Equal(t, "Budi", ot.Employee.Name)
	assert.True(t, decimal.RequireFromString("2.5").Equal(ot.OvertimeHours))
	assert.Equal(t, "Menunggu", pending.Badge.Text)
	assert.Equal(t, approval.ActionSet{approval.ActionApproveLevel1, approval.ActionReject}, pending.Actions)
	assert.False(t, pending.Processing)

	unknown := view.Items[1]
	assert.Equal(t, "Menunggu", unknown.Badge.Text)
	assert.Equal(t, "bg-gray-100 text-gray-800", unknown.Badge.ColorClass)
	assert.True(t, unknown.Actions.IsEmpty())

	calls := fb.callsFor(http.MethodGet)
	require.Len(t, calls, 1)
	assert.Equal(t, "page=2&status=pending", calls[0].Query)
}

func TestApprovalService_List_DivisionCapability(t *testing.T) {
	fb, _, svc := setup(t)
	fb.responses["GET /api/employee/monthly-summary-requests/"] = `{"count": 2, "results": [
		{"id": "a", "status": "pending", "priority": "urgent", "request_title": "Oktober"},
		{"id": "b", "status": "level1_approved", "priority": "whatever", "request_title": "September"}
	]}`

	view, err := svc.List(context.Background(), divisionSession, "monthly-summary-requests", approval.ListFilter{})

	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, approval.ActionSet{approval.ActionApproveLevel1, approval.ActionReject}, view.Items[0].Actions)
	require.NotNil(t, view.Items[0].PriorityBadge)
	assert.Equal(t, "Mendesak", view.Items[0].PriorityBadge.Text)

	assert.True(t, view.Items[1].Actions.IsEmpty())
	assert.Equal(t, "Sedang", view.Items[1].PriorityBadge.Text)
}

func TestApprovalService_List_UnknownResource(t *testing.T) {
	fb, _, svc := setup(t)

	_, err := svc.List(context.Background(), orgSession, "leave-requests", approval.ListFilter{})

	assert.ErrorIs(t, err, approval.ErrUnknownResource)
	assert.Empty(t, fb.allCalls())
}

func TestApprovalService_ApproveLevel1_PostsOnceThenRefetchesOnce(t *testing.T) {
	fb, pub, svc := setup(t)
	fb.responses["GET /api/overtime-requests/"] = overtimeList
	fb.gate = make(chan struct{})
	fb.entered = make(chan struct{}, 1)

	type result struct {
		view approval.ListView
		err  error
	}
	done := make(chan result, 1)
	go func() {
		view, err := svc.Approve(context.Background(), orgSession, "overtime-requests", "1",
			approval.ApproveRequest{Level: approval.LevelLevel1}, approval.ListFilter{Status: "pending"})
		done <- result{view, err}
	}()

	<-fb.entered

	// While the POST is in flight the row is marked processing and a second
	// action on it is refused without reaching the backend.
	ids, err := svc.Processing("overtime-requests")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids)

	_, err = svc.Reject(context.Background(), orgSession, "overtime-requests", "1",
		approval.RejectRequest{RejectionReason: "duplicate"}, approval.ListFilter{})
	assert.ErrorIs(t, err, approval.ErrActionInProgress)

	close(fb.gate)
	res := <-done
	require.NoError(t, res.err)
	assert.Len(t, res.view.Items, 2)

	calls := fb.allCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/api/overtime-requests/1/approve/", calls[0].Path)
	assert.JSONEq(t, `{}`, calls[0].Body)
	assert.Equal(t, http.MethodGet, calls[1].Method)
	assert.Equal(t, "/api/overtime-requests/", calls[1].Path)
	assert.Equal(t, "status=pending", calls[1].Query)

	ids, err = svc.Processing("overtime-requests")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, 1, pub.count())
}

func TestApprovalService_ApproveFinal_SendsLevelInBody(t *testing.T) {
	fb, pub, svc := setup(t)
	fb.responses["GET /api/overtime-requests/monthly_exports/"] = `{"count": 0, "results": []}`

	view, err := svc.Approve(context.Background(), orgSession, "monthly-exports", "55",
		approval.ApproveRequest{Level: approval.LevelFinal}, approval.ListFilter{})

	require.NoError(t, err)
	assert.NotNil(t, view.Items)

	posts := fb.callsFor(http.MethodPost)
	require.Len(t, posts, 1)
	assert.Equal(t, "/api/overtime-requests/monthly_exports/55/approve/", posts[0].Path)
	assert.JSONEq(t, `{"level": "final"}`, posts[0].Body)

	require.Equal(t, 1, pub.count())
	evt := pub.events[0]
	assert.Equal(t, sse.EventApprovalUpdated, evt.Event)
	data, ok := evt.Data.(approval.UpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, approval.KindMonthlyExport, data.Resource)
	assert.Equal(t, approval.ActionApproveFinal, data.Action)
	assert.Equal(t, "org-1", data.ActorID)
}

func TestApprovalService_Reject_RequiresReason(t *testing.T) {
	for _, reason := range []string{"", "   ", "\n\t"} {
		fb, _, svc := setup(t)

		_, err := svc.Reject(context.Background(), orgSession, "attendance-corrections", "9",
			approval.RejectRequest{RejectionReason: reason}, approval.ListFilter{})

		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs), "reason %q", reason)
		assert.Equal(t, "rejection_reason is required", verrs.ToMap()["rejection_reason"])
		assert.Empty(t, fb.allCalls())
	}
}

func TestApprovalService_Invoke_RejectWithoutReasonRefused(t *testing.T) {
	fb, _, svc := setup(t)

	_, err := svc.Invoke(context.Background(), orgSession, "overtime-requests", "1", approval.ActionReject, "  ", approval.ListFilter{})

	assert.ErrorIs(t, err, approval.ErrRejectionReasonRequired)
	assert.Empty(t, fb.allCalls())
}

func TestApprovalService_Reject_PostsTrimmedReason(t *testing.T) {
	fb, _, svc := setup(t)

	_, err := svc.Reject(context.Background(), divisionSession, "attendance-corrections", "9",
		approval.RejectRequest{RejectionReason: "  Jam tidak sesuai  "}, approval.ListFilter{})

	require.NoError(t, err)
	posts := fb.callsFor(http.MethodPost)
	require.Len(t, posts, 1)
	assert.Equal(t, "/api/attendance-corrections/9/reject/", posts[0].Path)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(posts[0].Body), &body))
	assert.Equal(t, "Jam tidak sesuai", body["rejection_reason"])
}

func TestApprovalService_Invoke_CapabilityChecked(t *testing.T) {
	fb, _, svc := setup(t)

	_, err := svc.Approve(context.Background(), divisionSession, "overtime-requests", "1",
		approval.ApproveRequest{Level: approval.LevelFinal}, approval.ListFilter{})
	assert.ErrorIs(t, err, approval.ErrActionNotPermitted)

	employee := user.Session{UserID: "e-1", Role: user.RoleEmployee}
	_, err = svc.Approve(context.Background(), employee, "overtime-requests", "1",
		approval.ApproveRequest{Level: approval.LevelLevel1}, approval.ListFilter{})
	assert.ErrorIs(t, err, approval.ErrActionNotPermitted)

	assert.Empty(t, fb.allCalls())
}

func TestApprovalService_Invoke_BackendErrorSurfacesMessage(t *testing.T) {
	fb, pub, svc := setup(t)
	fb.failures["POST /api/overtime-requests/1/approve/"] = http.StatusBadRequest
	fb.responses["POST /api/overtime-requests/1/approve/"] = `{"non_field_errors": ["Request already processed"]}`

	_, err := svc.Approve(context.Background(), orgSession, "overtime-requests", "1",
		approval.ApproveRequest{Level: approval.LevelLevel1}, approval.ListFilter{})

	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Request already processed", apiErr.Message)
	assert.Empty(t, fb.callsFor(http.MethodGet))
	assert.Equal(t, 0, pub.count())

	ids, err := svc.Processing("overtime-requests")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestApprovalService_Invoke_RefreshFailureKeepsActionSuccessful(t *testing.T) {
	fb, pub, svc := setup(t)
	fb.failures["GET /api/overtime-requests/"] = http.StatusInternalServerError
	fb.responses["GET /api/overtime-requests/"] = `{"detail": "boom"}`

	view, err := svc.Approve(context.Background(), orgSession, "overtime-requests", "1",
		approval.ApproveRequest{Level: approval.LevelLevel1}, approval.ListFilter{Status: "pending"})

	require.NoError(t, err)
	assert.Equal(t, "boom", view.RefreshError)
	assert.Equal(t, approval.KindOvertimeRequest, view.Resource)
	assert.Empty(t, view.Items)
	assert.Len(t, fb.callsFor(http.MethodPost), 1)
	assert.Len(t, fb.callsFor(http.MethodGet), 1)
	assert.Equal(t, 1, pub.count())

	ids, err := svc.Processing("overtime-requests")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestApprovalService_Summary(t *testing.T) {
	fb, _, svc := setup(t)
	fb.responses["GET /api/overtime-requests/summary/"] = `{"total_requests": 4, "pending_count": 2,
		"approved_count": 1, "rejected_count": 1, "total_hours": "10.5", "total_amount": 525000}`

	summary, err := svc.Summary(context.Background(), orgSession, "overtime-requests")

	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalRequests)
	assert.True(t, decimal.RequireFromString("10.5").Equal(summary.TotalHours))
	assert.True(t, decimal.NewFromInt(525000).Equal(summary.TotalAmount))

	_, err = svc.Summary(context.Background(), orgSession, "attendance-corrections")
	assert.ErrorIs(t, err, approval.ErrSummaryUnsupported)
}

func TestApprovalService_Dashboard(t *testing.T) {
	fb, _, svc := setup(t)
	fb.responses["GET /api/overtime-requests/"] = overtimeList
	fb.responses["GET /api/overtime-requests/summary/"] = `{"total_requests": 2}`
	fb.responses["GET /api/attendance-corrections/"] = `{"count": 0, "results": []}`

	dash, err := svc.Dashboard(context.Background(), orgSession, "overtime-requests", approval.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, dash.List.Items, 2)
	require.NotNil(t, dash.Summary)
	assert.Equal(t, 2, dash.Summary.TotalRequests)

	dash, err = svc.Dashboard(context.Background(), orgSession, "attendance-corrections", approval.ListFilter{})
	require.NoError(t, err)
	assert.Nil(t, dash.Summary)
}

func TestApprovalService_Get(t *testing.T) {
	fb, _, svc := setup(t)
	fb.responses["GET /api/overtime-requests/monthly_exports/3/"] = `{"id": 3, "status": "exported",
		"export_period": "2026-09", "export_format": "xlsx", "file_url": "/media/exports/3.xlsx"}`

	item, err := svc.Get(context.Background(), orgSession, "monthly-exports", "3")

	require.NoError(t, err)
	assert.Equal(t, "Diekspor", item.Badge.Text)
	assert.True(t, item.Actions.IsEmpty())
	exp, ok := item.Request.(approval.MonthlyExportRequest)
	require.True(t, ok)
	assert.Equal(t, "2026-09", exp.ExportPeriod)
}

func TestApprovalService_Invoke_InvalidFilterRefusedBeforePost(t *testing.T) {
	fb, _, svc := setup(t)

	_, err := svc.Approve(context.Background(), orgSession, "overtime-requests", "1",
		approval.ApproveRequest{Level: approval.LevelLevel1}, approval.ListFilter{Status: "archived"})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Empty(t, fb.allCalls())
}
