package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStopMidJobHaltsTicker(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(5 * time.Millisecond)

	var (
		calls   atomic.Int64
		running atomic.Bool
		once    sync.Once
	)
	firstRun := make(chan struct{})

	err := s.Start(context.Background(), func(time.Time) {
		running.Store(true)
		calls.Add(1)
		once.Do(func() { close(firstRun) })
		time.Sleep(20 * time.Millisecond)
		running.Store(false)
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Land Stop while the first job invocation is still sleeping.
	<-firstRun
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if running.Load() {
		t.Fatal("Stop returned while a job was still running")
	}

	settled := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := calls.Load(); got != settled {
		t.Fatalf("job fired after Stop returned: %d -> %d calls", settled, got)
	}
}

func TestStopWithoutStartIsNoop(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(time.Second)
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestContextCancelHaltsTicker(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(5 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int64
	if err := s.Start(ctx, func(time.Time) { calls.Add(1) }); err != nil {
		t.Fatalf("start: %v", err)
	}

	cancel()
	// Stop after cancellation must not hang even though the goroutine
	// already exited on its own.
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	settled := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := calls.Load(); got != settled {
		t.Fatalf("job fired after cancellation: %d -> %d calls", settled, got)
	}
}
