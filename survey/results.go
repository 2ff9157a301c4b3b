// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package survey

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/condo-survey/fault"
	"github.com/danielhkuo/condo-survey/models"
	"github.com/danielhkuo/condo-survey/paginator"
)

// Results aggregates votes and participation.
type Results struct {
	store     Store
	directory Directory
	now       Clock
}

func NewResults(s Store, d Directory) *Results {
	return &Results{store: s, directory: d, now: systemClock}
}

// WithClock replaces the time source.
func (r *Results) WithClock(c Clock) *Results {
	r.now = c
	return r
}

// Released reports whether non-admins may see results of s at now.
func Released(s *models.Survey, now time.Time) bool {
	return s.Status == models.StatusClosed || s.EndDate.Before(now)
}

// Tally counts votes per option. Non-admins only see results once the
// survey is closed or its end date has passed.
func (r *Results) Tally(ctx context.Context, surveyID int64, admin bool) (*models.Results, error) {
	s, err := r.store.GetSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	if !admin && !Released(s, now) {
		return nil, fault.NewState("results not yet available")
	}

	rows, err := r.store.Tally(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	participants, err := r.store.CountParticipants(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	return &models.Results{
		Survey: models.SurveySummary{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			StartDate:   s.StartDate,
			EndDate:     s.EndDate,
			Status:      s.Status,
			BuildingID:  s.BuildingID,
		},
		Participants: participants,
		Questions:    GroupTally(rows),
		ComputedAt:   now,
	}, nil
}

// GroupTally nests flat tally rows by question, keeping row order, and
// fills in totals and percentages.
func GroupTally(rows []models.TallyRow) []models.QuestionTally {
	questions := []models.QuestionTally{}
	index := make(map[int64]int)

	for _, row := range rows {
		i, ok := index[row.QuestionID]
		if !ok {
			questions = append(questions, models.QuestionTally{
				QuestionID:    row.QuestionID,
				QuestionText:  row.QuestionText,
				QuestionOrder: row.QuestionOrder,
				Options:       []models.OptionTally{},
			})
			i = len(questions) - 1
			index[row.QuestionID] = i
		}
		q := &questions[i]
		q.TotalVotes += row.Count
		q.Options = append(q.Options, models.OptionTally{
			OptionID:    row.OptionID,
			OptionText:  row.OptionText,
			OptionOrder: row.OptionOrder,
			Count:       row.Count,
		})
	}

	for i := range questions {
		q := &questions[i]
		for j := range q.Options {
			q.Options[j].Percentage = percent(q.Options[j].Count, q.TotalVotes)
		}
	}
	return questions
}

// percent rounds to two decimals and is 0 when total is 0.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(total)) / 100
}

// Voters returns participation statistics and one page of voters, most
// recent first.
func (r *Results) Voters(ctx context.Context, surveyID int64, page, pageSize int) (*models.VotersPage, error) {
	var details []string
	if page < 1 {
		details = append(details, "page must be at least 1")
	}
	if pageSize < 1 || pageSize > models.MaxPageSize {
		details = append(details, "limit must be between 1 and 100")
	}
	if len(details) > 0 {
		return nil, fault.NewValidation("invalid pagination", details...)
	}

	s, err := r.store.GetSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	var (
		eligible     int
		participants *paginator.PaginatedResponse[models.Participation]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if r.directory == nil {
			return nil
		}
		voters, err := r.directory.Eligible(gctx, s.BuildingID)
		if err != nil {
			return fault.NewInternal("failed to count eligible voters", err)
		}
		eligible = len(voters)
		return nil
	})
	g.Go(func() error {
		var err error
		participants, err = r.store.ListParticipants(gctx, surveyID, page, pageSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := map[int64]models.Identity{}
	if r.directory != nil && len(participants.Items) > 0 {
		ids := make([]int64, len(participants.Items))
		for i, p := range participants.Items {
			ids[i] = p.UserID
		}
		names, err = r.directory.Describe(ctx, ids)
		if err != nil {
			return nil, fault.NewInternal("failed to describe voters", err)
		}
	}

	voters := make([]models.VoterEntry, len(participants.Items))
	for i, p := range participants.Items {
		voters[i] = models.VoterEntry{
			UserID:      p.UserID,
			DisplayName: names[p.UserID].DisplayName,
			VotedAt:     p.VotedAt,
		}
	}

	return &models.VotersPage{
		Stats: models.VoterStats{
			SurveyID:         surveyID,
			EligibleVoters:   eligible,
			Participants:     participants.TotalItems,
			ParticipationPct: percent(participants.TotalItems, eligible),
		},
		Voters: voters,
		Pagination: models.Pagination{
			CurrentPage: participants.CurrentPage,
			PageSize:    participants.PageSize,
			TotalPages:  participants.TotalPages,
			TotalItems:  participants.TotalItems,
			PrevPage:    participants.PrevPage,
			NextPage:    participants.NextPage,
		},
	}, nil
}
