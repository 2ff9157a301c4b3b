// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package survey

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/condo-survey/fault"
	"github.com/danielhkuo/condo-survey/models"
	"github.com/danielhkuo/condo-survey/paginator"
	"github.com/danielhkuo/condo-survey/store"
)

// Store is the persistence the engines need. *store.Store implements it.
type Store interface {
	CreateSurvey(ctx context.Context, draft models.SurveyDraft, createdAt time.Time) (int64, error)
	GetSurvey(ctx context.Context, id int64) (*models.Survey, error)
	ListActive(ctx context.Context, now time.Time) ([]models.Survey, error)
	ReplaceSurvey(ctx context.Context, id int64, draft models.SurveyDraft, check func(current *models.Survey, participants int) error) error
	CloseSurvey(ctx context.Context, id int64) (bool, error)
	CloseExpired(ctx context.Context, now time.Time) (int64, error)
	CloseIfExpired(ctx context.Context, id int64, now time.Time) (bool, error)
	CastBallot(ctx context.Context, surveyID, voterID int64, at time.Time, check store.BallotCheck) error
	Tally(ctx context.Context, surveyID int64) ([]models.TallyRow, error)
	CountParticipants(ctx context.Context, surveyID int64) (int, error)
	ListParticipants(ctx context.Context, surveyID int64, page, pageSize int) (*paginator.PaginatedResponse[models.Participation], error)
}

// Directory answers who may vote and who administers surveys.
type Directory interface {
	// Resolve looks up one user. Unknown users come back with Exists false.
	Resolve(ctx context.Context, userID int64) (models.Identity, error)
	// Eligible lists eligible voters, limited to one building when
	// buildingID is set.
	Eligible(ctx context.Context, buildingID *int64) ([]models.Identity, error)
	// Describe resolves display names for a set of users.
	Describe(ctx context.Context, userIDs []int64) (map[int64]models.Identity, error)
}

// Notifier is told about new surveys. It must not block on delivery.
type Notifier interface {
	SurveyCreated(ctx context.Context, s models.Survey) error
}

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// ParseID parses a path or query identifier. Only positive integers are
// valid.
func ParseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, fault.NewValidation("invalid "+name, name+" must be a positive integer")
	}
	return id, nil
}
