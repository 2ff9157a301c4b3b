// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package survey

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/danielhkuo/condo-survey/fault"
	"github.com/danielhkuo/condo-survey/models"
)

// Voting casts ballots.
type Voting struct {
	store     Store
	directory Directory
	now       Clock
}

func NewVoting(s Store, d Directory) *Voting {
	return &Voting{store: s, directory: d, now: systemClock}
}

// WithClock replaces the time source.
func (v *Voting) WithClock(c Clock) *Voting {
	v.now = c
	return v
}

// Vote records one ballot. Checks run in a fixed order: input shape,
// survey existence, voting window, voter eligibility, prior
// participation, then the answers against the survey's structure.
func (v *Voting) Vote(ctx context.Context, surveyID, voterID int64, answers []models.Answer) error {
	var details []string
	if surveyID < 1 {
		details = append(details, "survey_id must be a positive integer")
	}
	if voterID < 1 {
		details = append(details, "voter_id must be a positive integer")
	}
	if len(answers) == 0 {
		details = append(details, "responses must not be empty")
	}
	if len(details) > 0 {
		return fault.NewValidation("invalid vote", details...)
	}

	var voter models.Identity
	if v.directory != nil {
		var err error
		voter, err = v.directory.Resolve(ctx, voterID)
		if err != nil {
			return fault.NewInternal("failed to resolve voter", err)
		}
	}

	now := v.now()
	err := v.store.CastBallot(ctx, surveyID, voterID, now, func(s *models.Survey, participated bool) ([]models.Response, error) {
		if !s.ActiveAt(now) {
			return nil, fault.NewState("survey is not active")
		}
		if v.directory != nil {
			if !voter.Exists || !voter.Eligible {
				return nil, fault.NewForbidden("user is not an eligible voter")
			}
			if !voter.InBuilding(s.BuildingID) {
				return nil, fault.NewForbidden("survey is limited to another building")
			}
		}
		if participated {
			return nil, fault.NewConflict("user has already voted in this survey", nil)
		}
		return checkBallot(s, voterID, answers)
	})
	if err != nil {
		return err
	}

	slog.Info("vote recorded", "survey_id", surveyID, "voter_id", voterID)
	return nil
}

// checkBallot matches answers against the survey's questions and options.
// Each check lists every offending id before failing.
func checkBallot(s *models.Survey, voterID int64, answers []models.Answer) ([]models.Response, error) {
	options := make(map[int64]map[int64]bool, len(s.Questions))
	for _, q := range s.Questions {
		set := make(map[int64]bool, len(q.Options))
		for _, o := range q.Options {
			set[o.ID] = true
		}
		options[q.ID] = set
	}

	seen := make(map[int64]int)
	var foreign []int64
	for _, a := range answers {
		qid := int64(a.QuestionID)
		if qid == 0 {
			continue
		}
		seen[qid]++
		if _, ok := options[qid]; !ok && seen[qid] == 1 {
			foreign = append(foreign, qid)
		}
	}

	var missing []int64
	for _, q := range s.Questions {
		if seen[q.ID] == 0 {
			missing = append(missing, q.ID)
		}
	}
	if len(missing) > 0 {
		return nil, fault.NewValidation("responses are missing questions",
			"missing question ids: "+joinIDs(missing))
	}

	if len(foreign) > 0 {
		return nil, fault.NewValidation("responses reference questions outside this survey",
			"unknown question ids: "+joinIDs(foreign))
	}

	var duplicated []int64
	for qid, n := range seen {
		if n > 1 {
			duplicated = append(duplicated, qid)
		}
	}
	if len(duplicated) > 0 {
		sort.Slice(duplicated, func(i, j int) bool { return duplicated[i] < duplicated[j] })
		return nil, fault.NewValidation("each question must be answered exactly once",
			"duplicated question ids: "+joinIDs(duplicated))
	}

	var incomplete []string
	for i, a := range answers {
		if a.QuestionID == 0 || a.OptionID == 0 {
			incomplete = append(incomplete, fmt.Sprintf("responses[%d] requires question_id and option_id", i+1))
		}
	}
	if len(incomplete) > 0 {
		return nil, fault.NewValidation("incomplete responses", incomplete...)
	}

	var mismatched []string
	responses := make([]models.Response, 0, len(answers))
	for _, a := range answers {
		qid, oid := int64(a.QuestionID), int64(a.OptionID)
		if !options[qid][oid] {
			mismatched = append(mismatched, fmt.Sprintf("option %d does not belong to question %d", oid, qid))
			continue
		}
		responses = append(responses, models.Response{
			SurveyID:   s.ID,
			QuestionID: qid,
			OptionID:   oid,
			UserID:     voterID,
		})
	}
	if len(mismatched) > 0 {
		return nil, fault.NewValidation("responses contain invalid options", mismatched...)
	}

	return responses, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
