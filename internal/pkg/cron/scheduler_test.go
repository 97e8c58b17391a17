package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunsJobOnStartAndStops(t *testing.T) {
	s := NewScheduler(context.Background())

	var runs atomic.Int32
	started := make(chan struct{}, 1)
	s.AddJob("counter", time.Hour, func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			started <- struct{}{}
		}
		return nil
	})

	s.Start()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()

	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_JobNamesInRegistrationOrder(t *testing.T) {
	s := NewScheduler(context.Background())
	noop := func(ctx context.Context) error { return nil }
	s.AddJob("first", time.Minute, noop)
	s.AddJob("second", time.Minute, noop)
	s.AddJob("third", time.Minute, noop)

	assert.Equal(t, []string{"first", "second", "third"}, s.JobNames())
}

func TestScheduler_JobErrorDoesNotStopSchedule(t *testing.T) {
	s := NewScheduler(context.Background())
	ran := make(chan struct{}, 1)
	s.AddJob("failing", time.Hour, func(ctx context.Context) error {
		return errors.New("boom")
	})
	s.AddJob("healthy", time.Hour, func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	})

	s.Start()
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy job did not run")
	}
	s.Stop()
}

func TestScheduler_RecoversFromPanic(t *testing.T) {
	s := NewScheduler(context.Background())
	done := make(chan struct{})
	s.AddJob("panicky", time.Hour, func(ctx context.Context) error {
		defer close(done)
		panic("bad job")
	})

	s.Start()
	<-done
	s.Stop()
}
