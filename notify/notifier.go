// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/condo-survey/models"
)

const (
	DefaultBatchSize = 30
	sendConcurrency  = 5
)

// Recipients lists who should hear about a survey.
type Recipients interface {
	Eligible(ctx context.Context, buildingID *int64) ([]models.Identity, error)
}

// Notifier queues survey announcements and delivers them in batches.
type Notifier struct {
	queue      Queue
	recipients Recipients
	mailer     Mailer
	siteURL    string
	batchSize  int

	lookups sync.WaitGroup
}

func New(recipients Recipients, mailer Mailer, siteURL string, batchSize int) *Notifier {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Notifier{
		recipients: recipients,
		mailer:     mailer,
		siteURL:    siteURL,
		batchSize:  batchSize,
	}
}

// SurveyCreated resolves recipients in the background and queues one
// mail per eligible voter with an address. It never blocks on the
// directory or on delivery.
func (n *Notifier) SurveyCreated(ctx context.Context, s models.Survey) error {
	ctx = context.WithoutCancel(ctx)

	n.lookups.Add(1)
	go func() {
		defer n.lookups.Done()

		voters, err := n.recipients.Eligible(ctx, s.BuildingID)
		if err != nil {
			slog.Error("failed to resolve survey recipients", "survey_id", s.ID, "error", err)
			return
		}

		items := make([]Item, 0, len(voters))
		for _, v := range voters {
			if v.Email == "" {
				continue
			}
			items = append(items, Item{Survey: s, Recipient: v})
		}
		n.queue.Push(items...)

		slog.Info("survey notifications queued", "survey_id", s.ID, "recipients", len(items))
	}()

	return nil
}

// Wait blocks until pending recipient lookups have been queued.
func (n *Notifier) Wait() {
	n.lookups.Wait()
}

// Pending reports how many mails are queued.
func (n *Notifier) Pending() int {
	return n.queue.Len()
}

// Drain sends one batch from the queue and returns how many mails were
// delivered. Failed sends are logged and dropped.
func (n *Notifier) Drain(ctx context.Context) int {
	batch := n.queue.Take(n.batchSize)
	if len(batch) == 0 {
		return 0
	}

	batchID := uuid.NewString()
	now := time.Now()
	var sent, failed atomic.Int32

	var g errgroup.Group
	g.SetLimit(sendConcurrency)
	for _, it := range batch {
		g.Go(func() error {
			msg, err := Render(it, n.siteURL, now)
			if err == nil {
				err = n.mailer.Send(ctx, msg)
			}
			if err != nil {
				failed.Add(1)
				slog.Error("failed to send survey notification",
					"batch_id", batchID,
					"survey_id", it.Survey.ID,
					"user_id", it.Recipient.ID,
					"error", err)
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("notification batch sent",
		"batch_id", batchID,
		"sent", sent.Load(),
		"failed", failed.Load(),
		"remaining", n.queue.Len())

	return int(sent.Load())
}
