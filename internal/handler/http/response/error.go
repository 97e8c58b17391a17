package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-console-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-console-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-console-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/backend"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/validator"
)

// HandleError maps domain and backend errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Backend rejected the call; relay its status and normalized message
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		Status(w, apiErr.StatusCode, apiErr.Message)
		return
	}

	switch {
	// Session errors
	case errors.Is(err, user.ErrSessionMissing), errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, user.ErrUnknownRole):
		Forbidden(w, "Unknown role")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Approval domain errors
	case errors.Is(err, approval.ErrUnknownResource):
		NotFound(w, err.Error())
	case errors.Is(err, approval.ErrSummaryUnsupported):
		NotFound(w, "Summary is not available for this resource")
	case errors.Is(err, approval.ErrActionNotPermitted):
		Forbidden(w, "Action not permitted for your approval level")
	case errors.Is(err, approval.ErrActionInProgress):
		Conflict(w, "Another action on this request is still in progress")
	case errors.Is(err, approval.ErrRejectionReasonRequired):
		ValidationError(w, map[string]string{"rejection_reason": "rejection_reason is required"})
	case errors.Is(err, approval.ErrInvalidLevel):
		ValidationError(w, map[string]string{"level": "level must be one of: level1, final"})

	// Notification domain errors
	case errors.Is(err, notification.ErrQueueFull):
		Status(w, http.StatusServiceUnavailable, "Broadcast queue is full, try again later")
	case errors.Is(err, notification.ErrServiceStopped):
		Status(w, http.StatusServiceUnavailable, "Broadcast service is shutting down")

	// Backend unreachable
	case errors.Is(err, backend.ErrUnavailable):
		BadGateway(w, "HR backend is unavailable")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
