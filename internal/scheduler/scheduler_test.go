package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeTask is a test double that counts Run calls, signals when a run
// starts, and can block until explicitly released.
type fakeTask struct {
	callCount int32

	started chan struct{} // signals when a run starts
	block   chan struct{} // keeps Run blocked until closed
}

func newFakeTask() *fakeTask {
	return &fakeTask{
		started: make(chan struct{}, 1),
		block:   make(chan struct{}),
	}
}

func (f *fakeTask) Run(ctx context.Context) error {
	atomic.AddInt32(&f.callCount, 1)

	// Signal "started" only once (non-blocking).
	select {
	case f.started <- struct{}{}:
	default:
	}

	// Wait until either the test releases the block or the context is done.
	select {
	case <-f.block:
	case <-ctx.Done():
	}

	return nil
}

func (f *fakeTask) Calls() int32 {
	return atomic.LoadInt32(&f.callCount)
}

func TestScheduler_StartTriggersRun(t *testing.T) {
	fake := newFakeTask()
	close(fake.block)

	s := NewSchedulerService("test", fake, 10*time.Millisecond, 2*time.Second)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer s.Stop()

	select {
	case <-fake.started:
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("expected Run to be called after Start, but it wasn't")
	}

	if !s.IsRunning() {
		t.Fatalf("expected scheduler to be running after Start()")
	}
}

func TestScheduler_StopWaitsForRunCompletion(t *testing.T) {
	fake := newFakeTask()

	// Frequent ticks, but a run timeout long enough that ctx doesn't end
	// the run before we manually unblock it.
	s := NewSchedulerService("test", fake, 5*time.Millisecond, 2*time.Second)

	_ = s.Start()

	select {
	case <-fake.started:
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("Run was not called in time")
	}

	// Call Stop in a separate goroutine so we can assert it blocks.
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("Stop() returned before run finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(fake.block)

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("Stop() did not return after run completion")
	}

	if s.IsRunning() {
		t.Fatalf("expected scheduler to not be running after Stop()")
	}
}

func TestScheduler_StartStopStartFlow(t *testing.T) {
	fake := newFakeTask()
	s := NewSchedulerService("test", fake, 10*time.Millisecond, 2*time.Second)

	_ = s.Start()
	select {
	case <-fake.started:
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("first Start: Run was not called")
	}

	close(fake.block)

	// Stop the scheduler.
	s.Stop()
	if s.IsRunning() {
		t.Fatalf("scheduler should be stopped after Stop()")
	}

	// Drain a start signal left over from the first round.
	select {
	case <-fake.started:
	default:
	}

	_ = s.Start()
	defer s.Stop()
	if !s.IsRunning() {
		t.Fatalf("scheduler should be running after second Start()")
	}

	select {
	case <-fake.started:
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("second Start: Run was not called")
	}

	if fake.Calls() < 2 {
		t.Fatalf("expected at least 2 runs, got %d", fake.Calls())
	}
}

func TestScheduler_RaceStartStop(t *testing.T) {
	fake := newFakeTask()
	close(fake.block)
	s := NewSchedulerService("test", fake, 5*time.Millisecond, 50*time.Millisecond)

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			_ = s.Start()
		}()

		go func() {
			defer wg.Done()
			_ = s.Stop()
		}()
	}

	wg.Wait()
}
