// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper closes surveys whose voting window has ended.
type Sweeper interface {
	CloseExpired(ctx context.Context) (int64, error)
}

// Drainer sends one batch of queued notifications.
type Drainer interface {
	Drain(ctx context.Context) int
}

type Config struct {
	SweepSchedule  string
	NotifySchedule string
	Timeout        time.Duration
}

// Scheduler runs the periodic expiry sweep and notification drain.
// Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

func New(cfg Config, sweeper Sweeper, drainer Drainer) (*Scheduler, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 4 * time.Minute
	}

	logger := slogLogger{}
	s := &Scheduler{
		cron:    cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		timeout: cfg.Timeout,
	}

	if _, err := s.cron.AddFunc(cfg.SweepSchedule, s.wrap(func(ctx context.Context) { Sweep(ctx, sweeper) })); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", cfg.SweepSchedule, err)
	}
	if drainer != nil {
		if _, err := s.cron.AddFunc(cfg.NotifySchedule, s.wrap(func(ctx context.Context) { drainer.Drain(ctx) })); err != nil {
			return nil, fmt.Errorf("invalid notify schedule %q: %w", cfg.NotifySchedule, err)
		}
	}

	return s, nil
}

func (s *Scheduler) wrap(job func(ctx context.Context)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		job(ctx)
	}
}

// Jobs reports how many jobs are scheduled.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "jobs", s.Jobs())
}

// Stop halts scheduling and waits for running jobs, up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out with jobs still running")
	}
}

// Sweep closes expired surveys once and logs the outcome.
func Sweep(ctx context.Context, sweeper Sweeper) int64 {
	n, err := sweeper.CloseExpired(ctx)
	if err != nil {
		slog.Error("expiry sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		slog.Info("closed expired surveys", "count", n)
	}
	return n
}

type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
