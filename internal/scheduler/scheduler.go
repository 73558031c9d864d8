// Package scheduler runs a Task on a fixed interval until stopped.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Task is invoked once per tick.
type Task interface {
	Run(ctx context.Context) error
}

// SchedulerService starts and stops the periodic runs. IsRunning reports
// whether ticks are currently accepted, not whether a run is executing.
type SchedulerService interface {
	Start() error
	Stop() error
	IsRunning() bool
}

const (
	DefaultInterval   = time.Minute
	DefaultRunTimeout = 10 * time.Second

	// controlTimeout bounds both the hand-off to the loop and its reply.
	controlTimeout = 2 * time.Second
)

type controlOp int

const (
	opStart controlOp = iota
	opStop
	opStatus
)

func (op controlOp) String() string {
	switch op {
	case opStart:
		return "start"
	case opStop:
		return "stop"
	default:
		return "status"
	}
}

type controlMsg struct {
	op   controlOp
	resp chan bool
}

// schedulerService keeps its state inside loop; callers talk to it over ctrl.
type schedulerService struct {
	name       string
	task       Task
	interval   time.Duration
	runTimeout time.Duration
	ctrl       chan controlMsg
	log        *slog.Logger
}

// NewSchedulerService starts the control loop in a stopped state.
// Non-positive interval or runTimeout fall back to the defaults.
func NewSchedulerService(name string, task Task, interval, runTimeout time.Duration) SchedulerService {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if runTimeout <= 0 {
		runTimeout = DefaultRunTimeout
	}

	s := &schedulerService{
		name:       name,
		task:       task,
		interval:   interval,
		runTimeout: runTimeout,
		ctrl:       make(chan controlMsg),
		log:        slog.Default().With("component", "scheduler", "task", name),
	}
	go s.loop()
	return s
}

// Start enables ticks and returns once the loop has switched state.
func (s *schedulerService) Start() error {
	_, err := s.control(opStart)
	return err
}

// Stop disables ticks. A run in progress finishes first, since the loop
// only reads control messages between runs.
func (s *schedulerService) Stop() error {
	_, err := s.control(opStop)
	return err
}

func (s *schedulerService) IsRunning() bool {
	running, err := s.control(opStatus)
	return err == nil && running
}

func (s *schedulerService) control(op controlOp) (bool, error) {
	msg := controlMsg{op: op, resp: make(chan bool, 1)}

	timer := time.NewTimer(controlTimeout)
	defer timer.Stop()

	select {
	case s.ctrl <- msg:
	case <-timer.C:
		return false, fmt.Errorf("scheduler %s: %s: control loop not responding", s.name, op)
	}

	select {
	case v := <-msg.resp:
		return v, nil
	case <-timer.C:
		return false, fmt.Errorf("scheduler %s: %s: acknowledgement timeout", s.name, op)
	}
}

func (s *schedulerService) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	running := false
	for {
		select {
		case msg := <-s.ctrl:
			switch msg.op {
			case opStart:
				if !running {
					s.log.Info("scheduler started", "interval", s.interval.String(), "run_timeout", s.runTimeout.String())
				}
				running = true
			case opStop:
				if running {
					s.log.Info("scheduler stopped")
				}
				running = false
			}
			msg.resp <- running

		case <-ticker.C:
			if running {
				s.runOnce()
			}
		}
	}
}

func (s *schedulerService) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	start := time.Now()
	if err := s.task.Run(ctx); err != nil {
		s.log.Warn("scheduled run failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	s.log.Debug("scheduled run completed", "duration_ms", time.Since(start).Milliseconds())
}
