package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-console-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-console-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-console-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ApprovalHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Dashboard(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Processing(w http.ResponseWriter, r *http.Request)
}

type approvalHandlerImpl struct {
	approvalService approval.Service
}

func NewApprovalHandler(approvalService approval.Service) ApprovalHandler {
	return &approvalHandlerImpl{
		approvalService: approvalService,
	}
}

// listFilter reads the caller's current list filter from the query string
func listFilter(r *http.Request) approval.ListFilter {
	return approval.ListFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
		Page:   getIntQueryParam(r, "page", 1),
	}
}

// List implements ApprovalHandler.
func (h *approvalHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	session, err := user.SessionFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	view, err := h.approvalService.List(r.Context(), session, chi.URLParam(r, "resource"), listFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, view)
}

// Get implements ApprovalHandler.
func (h *approvalHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	session, err := user.SessionFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	item, err := h.approvalService.Get(r.Context(), session, chi.URLParam(r, "resource"), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, item)
}

// Summary implements ApprovalHandler.
func (h *approvalHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	session, err := user.SessionFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	summary, err := h.approvalService.Summary(r.Context(), session, chi.URLParam(r, "resource"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// Dashboard implements ApprovalHandler.
func (h *approvalHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	session, err := user.SessionFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	dashboard, err := h.approvalService.Dashboard(r.Context(), session, chi.URLParam(r, "resource"), listFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, dashboard)
}

// Approve implements ApprovalHandler.
func (h *approvalHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	session, err := user.SessionFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req approval.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	view, err := h.approvalService.Approve(r.Context(), session, chi.URLParam(r, "resource"), chi.URLParam(r, "id"), req, listFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, actionMessage("Request approved", view), view)
}

// Reject implements ApprovalHandler.
func (h *approvalHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	session, err := user.SessionFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req approval.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	view, err := h.approvalService.Reject(r.Context(), session, chi.URLParam(r, "resource"), chi.URLParam(r, "id"), req, listFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, actionMessage("Request rejected", view), view)
}

// Processing implements ApprovalHandler.
func (h *approvalHandlerImpl) Processing(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "resource")

	ids, err := h.approvalService.Processing(kind)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, approval.ProcessingResponse{
		Resource: approval.Kind(kind),
		IDs:      ids,
	})
}

// actionMessage notes a failed list refresh after a committed action
func actionMessage(msg string, view approval.ListView) string {
	if view.RefreshError != "" {
		return msg + "; list refresh failed: " + view.RefreshError
	}
	return msg
}
