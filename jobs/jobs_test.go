// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/condo-survey/models"
	"github.com/danielhkuo/condo-survey/store"
	"github.com/danielhkuo/condo-survey/survey"
	"github.com/danielhkuo/condo-survey/testutil"
)

type countingDrainer struct {
	calls atomic.Int32
}

func (d *countingDrainer) Drain(context.Context) int {
	d.calls.Add(1)
	return 0
}

type failingSweeper struct{}

func (failingSweeper) CloseExpired(context.Context) (int64, error) {
	return 0, errors.New("database is locked")
}

func TestNewRejectsBadSchedules(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"sweep", Config{SweepSchedule: "every hour", NotifySchedule: "@every 2m"}},
		{"notify", Config{SweepSchedule: "@every 1h", NotifySchedule: "* * *"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, failingSweeper{}, &countingDrainer{}); err == nil {
				t.Error("Expected schedule error")
			}
		})
	}
}

func TestNewRegistersJobs(t *testing.T) {
	s, err := New(Config{SweepSchedule: "@every 1h", NotifySchedule: "@every 2m"}, failingSweeper{}, &countingDrainer{})
	if err != nil {
		t.Fatal(err)
	}
	if s.Jobs() != 2 {
		t.Errorf("Expected 2 jobs, got %d", s.Jobs())
	}

	withoutMail, err := New(Config{SweepSchedule: "@every 1h"}, failingSweeper{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if withoutMail.Jobs() != 1 {
		t.Errorf("Expected only the sweep, got %d", withoutMail.Jobs())
	}
}

func TestSweepClosesExpiredSurveys(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	lc := survey.NewLifecycle(st, nil)

	expired := testutil.CreateTestSurvey(t, st, "expired")
	open := testutil.CreateTestSurvey(t, st, models.StatusOpen)

	if n := Sweep(context.Background(), lc); n != 1 {
		t.Errorf("Expected 1 closed, got %d", n)
	}

	got, _ := st.GetSurvey(context.Background(), expired.ID)
	if got.Status != models.StatusClosed {
		t.Errorf("Expected expired survey closed, got %s", got.Status)
	}
	got, _ = st.GetSurvey(context.Background(), open.ID)
	if got.Status != models.StatusOpen {
		t.Errorf("Expected open survey untouched, got %s", got.Status)
	}

	if n := Sweep(context.Background(), lc); n != 0 {
		t.Errorf("Second sweep should be a no-op, got %d", n)
	}
}

func TestSweepLogsFailure(t *testing.T) {
	if n := Sweep(context.Background(), failingSweeper{}); n != 0 {
		t.Errorf("Expected 0 on failure, got %d", n)
	}
}

func TestSchedulerRunsDrain(t *testing.T) {
	d := &countingDrainer{}
	s, err := New(Config{SweepSchedule: "@every 1h", NotifySchedule: "@every 1s"}, failingSweeper{}, d)
	if err != nil {
		t.Fatal(err)
	}

	s.Start()
	deadline := time.Now().Add(5 * time.Second)
	for d.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	if d.calls.Load() == 0 {
		t.Error("Expected the drain job to run")
	}
}
