// Package cron runs in-process jobs aligned to wall-clock boundaries and
// maps the hourly tick onto the attendance batch jobs.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type Task func(ctx context.Context) error

type entry struct {
	name     string
	interval time.Duration
	task     Task
}

// Scheduler fires each job just after every multiple of its interval
// (an hourly job fires at :00). A job never overlaps itself.
type Scheduler struct {
	mu      sync.Mutex
	entries []entry
	cancel  context.CancelFunc
	group   *errgroup.Group
	now     func() time.Time
}

func NewScheduler() *Scheduler {
	return &Scheduler{now: time.Now}
}

// AddJob must be called before Start.
func (s *Scheduler) AddJob(name string, interval time.Duration, task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{name: name, interval: interval, task: task})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.group = &errgroup.Group{}
	for _, e := range s.entries {
		s.group.Go(func() error {
			s.loop(ctx, e)
			return nil
		})
	}
	slog.Info("Cron scheduler started", "jobs", len(s.entries))
}

// Stop cancels pending ticks and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, group := s.cancel, s.group
	s.cancel, s.group = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	_ = group.Wait()
	slog.Info("Cron scheduler stopped")
}

// nextBoundary returns the first multiple of interval strictly after t.
func nextBoundary(t time.Time, interval time.Duration) time.Time {
	return t.Truncate(interval).Add(interval)
}

func (s *Scheduler) loop(ctx context.Context, e entry) {
	for {
		now := s.now()
		timer := time.NewTimer(nextBoundary(now, e.interval).Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if err := s.execute(ctx, e); err != nil {
			slog.Error("Cron job failed", "name", e.name, "error", err)
		}
	}
}

// execute runs one tick of e, turning a panic into an error.
func (s *Scheduler) execute(ctx context.Context, e entry) (err error) {
	start := s.now()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		slog.Debug("Cron job finished", "name", e.name, "duration", s.now().Sub(start))
	}()
	return e.task(ctx)
}
