package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/hris-console-go/internal/pkg/sse"
)

const dateLayout = "2006-01-02"

// EventPublisher fans events out to connected console clients.
type EventPublisher interface {
	Broadcast(event sse.Event)
}

// ClockSnapshot is the attendance clock as shown on the daily attendance view
type ClockSnapshot struct {
	Now      time.Time `json:"now"`
	Date     string    `json:"date"`
	Timezone string    `json:"timezone"`
}

// DayChangedEvent tells clients the attendance day rolled over
type DayChangedEvent struct {
	Date         string `json:"date"`
	PreviousDate string `json:"previous_date"`
	Timezone     string `json:"timezone"`
}

// AttendanceJobs tracks the attendance day in the configured timezone and
// announces when it changes.
type AttendanceJobs struct {
	loc       *time.Location
	publisher EventPublisher
	now       func() time.Time

	mu       sync.Mutex
	lastDate string
}

func NewAttendanceJobs(timezone string, publisher EventPublisher) (*AttendanceJobs, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance timezone %q: %w", timezone, err)
	}
	return &AttendanceJobs{
		loc:       loc,
		publisher: publisher,
		now:       time.Now,
	}, nil
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("attendance_day_rollover", interval, j.DetectDayRollover)
}

// Snapshot returns the current time and date in the attendance timezone
func (j *AttendanceJobs) Snapshot() ClockSnapshot {
	now := j.now().In(j.loc)
	return ClockSnapshot{
		Now:      now,
		Date:     now.Format(dateLayout),
		Timezone: j.loc.String(),
	}
}

// DetectDayRollover publishes day_changed once per date change. The first run
// only records the current date.
func (j *AttendanceJobs) DetectDayRollover(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	today := j.Snapshot().Date

	j.mu.Lock()
	previous := j.lastDate
	j.lastDate = today
	j.mu.Unlock()

	if previous == "" || previous == today {
		return nil
	}

	slog.Info("Cron: Attendance day rolled over", "previous_date", previous, "date", today, "timezone", j.loc.String())

	j.publisher.Broadcast(sse.Event{
		Event: sse.EventDayChanged,
		Data: DayChangedEvent{
			Date:         today,
			PreviousDate: previous,
			Timezone:     j.loc.String(),
		},
	})
	return nil
}
