// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/danielhkuo/condo-survey/models"
	"github.com/danielhkuo/condo-survey/paginator"
)

// Tally counts responses per option. Options nobody chose are included
// with a zero count. Rows come back in display order.
func (s *Store) Tally(ctx context.Context, surveyID int64) ([]models.TallyRow, error) {
	rows := []models.TallyRow{}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT
			q.id AS question_id,
			q.question_text,
			q.question_order,
			o.id AS option_id,
			o.option_text,
			o.option_order,
			COUNT(r.option_id) AS votes
		FROM survey_questions q
		JOIN survey_options o ON o.question_id = q.id
		LEFT JOIN survey_responses r ON r.option_id = o.id AND r.question_id = q.id
		WHERE q.survey_id = ?
		GROUP BY q.id, q.question_text, q.question_order, o.id, o.option_text, o.option_order
		ORDER BY q.question_order, q.id, o.option_order, o.id
	`), surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally survey: %w", err)
	}
	return rows, nil
}

// CountParticipants returns the number of users who voted in the survey.
func (s *Store) CountParticipants(ctx context.Context, surveyID int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM survey_participation WHERE survey_id = ?`), surveyID)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return n, nil
}

// ListParticipants pages through a survey's voters, most recent first.
func (s *Store) ListParticipants(ctx context.Context, surveyID int64, page, pageSize int) (*paginator.PaginatedResponse[models.Participation], error) {
	return paginator.PaginateQuery[models.Participation](ctx, s.db, `
		SELECT survey_id, user_id, voted_at
		FROM survey_participation
		WHERE survey_id = ?
		ORDER BY voted_at DESC, user_id DESC
	`, []any{surveyID}, page, pageSize)
}
