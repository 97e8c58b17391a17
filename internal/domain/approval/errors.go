package approval

import "errors"

var (
	ErrUnknownResource         = errors.New("unknown approval resource")
	ErrSummaryUnsupported      = errors.New("summary not available for this resource")
	ErrInvalidLevel            = errors.New("approval level must be level1 or final")
	ErrActionNotPermitted      = errors.New("approval action not permitted for caller")
	ErrActionInProgress        = errors.New("another action on this request is still processing")
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
)
