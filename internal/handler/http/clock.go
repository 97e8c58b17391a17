package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-console-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-console-go/internal/pkg/cron"
)

// ClockReader reports the attendance clock
type ClockReader interface {
	Snapshot() cron.ClockSnapshot
}

type ClockHandler struct {
	clock ClockReader
}

func NewClockHandler(clock ClockReader) *ClockHandler {
	return &ClockHandler{clock: clock}
}

// Now returns the current time and date in the attendance timezone
func (h *ClockHandler) Now(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.clock.Snapshot())
}
