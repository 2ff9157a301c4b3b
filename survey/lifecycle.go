// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package survey

import (
	"context"
	"log/slog"

	"github.com/danielhkuo/condo-survey/fault"
	"github.com/danielhkuo/condo-survey/models"
)

// Lifecycle creates, edits and closes surveys.
type Lifecycle struct {
	store    Store
	notifier Notifier
	now      Clock
}

func NewLifecycle(s Store, n Notifier) *Lifecycle {
	return &Lifecycle{store: s, notifier: n, now: systemClock}
}

// WithClock replaces the time source.
func (l *Lifecycle) WithClock(c Clock) *Lifecycle {
	l.now = c
	return l
}

// Create validates and stores a new open survey, then hands it to the
// notifier. A notification failure is logged and does not fail creation.
func (l *Lifecycle) Create(ctx context.Context, draft models.SurveyDraft) (int64, error) {
	draft = normalizeDraft(draft)
	if err := ValidateDraft(draft); err != nil {
		return 0, err
	}

	id, err := l.store.CreateSurvey(ctx, draft, l.now())
	if err != nil {
		return 0, err
	}

	slog.Info("survey created", "survey_id", id, "questions", len(draft.Questions))

	if l.notifier != nil {
		l.notifySurveyCreated(ctx, id)
	}

	return id, nil
}

func (l *Lifecycle) notifySurveyCreated(ctx context.Context, id int64) {
	created, err := l.store.GetSurvey(ctx, id)
	if err != nil {
		slog.Error("failed to load survey for notification", "survey_id", id, "error", err)
		return
	}
	if err := l.notifier.SurveyCreated(ctx, *created); err != nil {
		slog.Error("failed to enqueue survey notification", "survey_id", id, "error", err)
	}
}

// Update replaces metadata and structure of an open survey nobody has
// voted in yet. The participation check and the rewrite share one
// transaction with the survey row locked.
func (l *Lifecycle) Update(ctx context.Context, id int64, draft models.SurveyDraft) error {
	draft = normalizeDraft(draft)
	if err := ValidateDraft(draft); err != nil {
		return err
	}

	err := l.store.ReplaceSurvey(ctx, id, draft, func(current *models.Survey, participants int) error {
		if current.Status != models.StatusOpen {
			return fault.NewState("only open surveys can be edited")
		}
		if participants > 0 {
			return fault.NewState("survey already has votes and can no longer be edited")
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("survey updated", "survey_id", id)
	return nil
}

// Close marks a survey closed. Closing a closed survey succeeds and
// reports updated=false.
func (l *Lifecycle) Close(ctx context.Context, id int64) (bool, error) {
	updated, err := l.store.CloseSurvey(ctx, id)
	if err != nil {
		return false, err
	}
	if updated {
		slog.Info("survey closed", "survey_id", id)
	}
	return updated, nil
}

// CloseExpired closes every open survey whose end date has passed.
func (l *Lifecycle) CloseExpired(ctx context.Context) (int64, error) {
	n, err := l.store.CloseExpired(ctx, l.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("closed expired surveys", "count", n)
	}
	return n, nil
}

// Get returns one survey in any status. An open survey past its end date
// is closed first so callers never see a stale status.
func (l *Lifecycle) Get(ctx context.Context, id int64) (*models.Survey, error) {
	s, err := l.store.GetSurvey(ctx, id)
	if err != nil {
		return nil, err
	}

	now := l.now()
	if s.Status == models.StatusOpen && s.ExpiredAt(now) {
		closed, err := l.store.CloseIfExpired(ctx, id, now)
		if err != nil {
			slog.Error("failed to close expired survey", "survey_id", id, "error", err)
		} else if closed {
			slog.Info("survey closed on read", "survey_id", id)
		}
		if err == nil {
			s.Status = models.StatusClosed
		}
	}

	return s, nil
}

// ListActive returns the surveys currently accepting votes.
func (l *Lifecycle) ListActive(ctx context.Context) ([]models.Survey, error) {
	return l.store.ListActive(ctx, l.now())
}
