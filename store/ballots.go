// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/condo-survey/fault"
	"github.com/danielhkuo/condo-survey/models"
)

// BallotCheck inspects the survey as seen inside the ballot transaction
// and returns the responses to record, or an error to abort.
type BallotCheck func(survey *models.Survey, participated bool) ([]models.Response, error)

// CastBallot records a participation row and its responses atomically.
// The survey row is share-locked for the duration, so the structure check
// sees the same questions and options the insert writes against.
func (s *Store) CastBallot(ctx context.Context, surveyID, voterID int64, at time.Time, check BallotCheck) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var survey models.Survey
		err := tx.GetContext(ctx, &survey, tx.Rebind(surveySelect+` WHERE id = ?`+s.lock("SHARE")), surveyID)
		if err != nil {
			return notFound(err)
		}
		if err := s.attachStructure(ctx, tx, []*models.Survey{&survey}); err != nil {
			return err
		}

		var n int
		err = tx.GetContext(ctx, &n, tx.Rebind(`
			SELECT COUNT(*) FROM survey_participation WHERE survey_id = ? AND user_id = ?
		`), surveyID, voterID)
		if err != nil {
			return fmt.Errorf("failed to check participation: %w", err)
		}

		responses, err := check(&survey, n > 0)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO survey_participation (survey_id, user_id, voted_at)
			VALUES (?, ?, ?)
		`), surveyID, voterID, utc(at))
		if err != nil {
			if isUniqueViolation(err) {
				return fault.NewConflict("user has already voted in this survey", fault.ErrUniqueViolation)
			}
			return fmt.Errorf("failed to record participation: %w", err)
		}

		insertResponse := tx.Rebind(`
			INSERT INTO survey_responses (survey_id, question_id, option_id, user_id)
			VALUES (?, ?, ?, ?)
		`)
		for _, r := range responses {
			if _, err := tx.ExecContext(ctx, insertResponse, surveyID, r.QuestionID, r.OptionID, voterID); err != nil {
				if isUniqueViolation(err) {
					return fault.NewConflict("user has already voted in this survey", fault.ErrUniqueViolation)
				}
				return fmt.Errorf("failed to record response: %w", err)
			}
		}

		return nil
	})
}
