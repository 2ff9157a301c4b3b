// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/condo-survey/models"
)

// CreateSurvey inserts the survey with its questions and options.
func (s *Store) CreateSurvey(ctx context.Context, draft models.SurveyDraft, createdAt time.Time) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, tx.Rebind(`
			INSERT INTO surveys (title, description, start_date, end_date, status, building_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`), draft.Title, draft.Description, utc(*draft.StartDate), utc(*draft.EndDate),
			models.StatusOpen, draft.BuildingID, utc(createdAt)).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert survey: %w", err)
		}
		return insertQuestions(ctx, tx, id, draft.Questions)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func insertQuestions(ctx context.Context, tx *sqlx.Tx, surveyID int64, questions []models.QuestionInput) error {
	insertQuestion := tx.Rebind(`
		INSERT INTO survey_questions (survey_id, question_text, question_order)
		VALUES (?, ?, ?)
		RETURNING id
	`)
	insertOption := tx.Rebind(`
		INSERT INTO survey_options (question_id, option_text, option_order)
		VALUES (?, ?, ?)
	`)

	for _, q := range questions {
		order := 1
		if q.QuestionOrder != nil {
			order = *q.QuestionOrder
		}

		var questionID int64
		if err := tx.QueryRowxContext(ctx, insertQuestion, surveyID, q.QuestionText, order).Scan(&questionID); err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}

		for i, o := range q.Options {
			if _, err := tx.ExecContext(ctx, insertOption, questionID, o.OptionText, i+1); err != nil {
				return fmt.Errorf("failed to insert option: %w", err)
			}
		}
	}
	return nil
}

// GetSurvey returns the survey with its questions and options in display
// order, regardless of status.
func (s *Store) GetSurvey(ctx context.Context, id int64) (*models.Survey, error) {
	var survey models.Survey
	err := s.db.GetContext(ctx, &survey, s.db.Rebind(surveySelect+` WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}

	if err := s.attachStructure(ctx, s.db, []*models.Survey{&survey}); err != nil {
		return nil, err
	}
	return &survey, nil
}

// ListActive returns open surveys whose window contains now, ordered by
// start date.
func (s *Store) ListActive(ctx context.Context, now time.Time) ([]models.Survey, error) {
	now = utc(now)
	query, args, err := s.dialect.From(SurveysTable).
		Select(surveyColumns...).
		Where(
			SurveysTableStatusCol.Eq(models.StatusOpen),
			SurveysTableStartCol.Lte(now),
			SurveysTableEndCol.Gte(now),
		).
		Order(SurveysTableStartCol.Asc(), SurveysTableIDCol.Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build active survey query: %w", err)
	}

	surveys := []models.Survey{}
	if err := s.db.SelectContext(ctx, &surveys, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list active surveys: %w", err)
	}

	ptrs := make([]*models.Survey, len(surveys))
	for i := range surveys {
		ptrs[i] = &surveys[i]
	}
	if err := s.attachStructure(ctx, s.db, ptrs); err != nil {
		return nil, err
	}
	return surveys, nil
}

// attachStructure loads questions and options for every survey in two
// queries and nests them in place.
func (s *Store) attachStructure(ctx context.Context, q sqlx.QueryerContext, surveys []*models.Survey) error {
	if len(surveys) == 0 {
		return nil
	}

	surveyIDs := make([]int64, len(surveys))
	for i, sv := range surveys {
		surveyIDs[i] = sv.ID
		sv.Questions = []models.Question{}
	}

	query, args, err := s.dialect.From(QuestionsTable).
		Select("id", "survey_id", "question_text", "question_order").
		Where(QuestionsTableSurveyIDCol.In(surveyIDs)).
		Order(goqu.C("question_order").Asc(), goqu.C("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build question query: %w", err)
	}

	var questions []models.Question
	if err := sqlx.SelectContext(ctx, q, &questions, query, args...); err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil
	}

	questionIDs := make([]int64, len(questions))
	for i, qu := range questions {
		questionIDs[i] = qu.ID
	}

	query, args, err = s.dialect.From(OptionsTable).
		Select("id", "question_id", "option_text", "option_order").
		Where(OptionsTableQuestionIDCol.In(questionIDs)).
		Order(goqu.C("option_order").Asc(), goqu.C("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build option query: %w", err)
	}

	var options []models.Option
	if err := sqlx.SelectContext(ctx, q, &options, query, args...); err != nil {
		return fmt.Errorf("failed to load options: %w", err)
	}

	byQuestion := make(map[int64][]models.Option)
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
	}

	bySurvey := make(map[int64]*models.Survey, len(surveys))
	for _, sv := range surveys {
		bySurvey[sv.ID] = sv
	}
	for _, qu := range questions {
		qu.Options = byQuestion[qu.ID]
		if qu.Options == nil {
			qu.Options = []models.Option{}
		}
		sv := bySurvey[qu.SurveyID]
		sv.Questions = append(sv.Questions, qu)
	}
	return nil
}

// ReplaceSurvey locks the survey row, lets check veto the edit given the
// current row and its participant count, then rewrites metadata and the
// whole question/option structure.
func (s *Store) ReplaceSurvey(ctx context.Context, id int64, draft models.SurveyDraft, check func(current *models.Survey, participants int) error) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var current models.Survey
		err := tx.GetContext(ctx, &current, tx.Rebind(surveySelect+` WHERE id = ?`+s.lock("UPDATE")), id)
		if err != nil {
			return notFound(err)
		}

		var participants int
		err = tx.GetContext(ctx, &participants, tx.Rebind(`SELECT COUNT(*) FROM survey_participation WHERE survey_id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to count participation: %w", err)
		}

		if err := check(&current, participants); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(`
			UPDATE surveys
			SET title = ?, description = ?, start_date = ?, end_date = ?, building_id = ?
			WHERE id = ?
		`), draft.Title, draft.Description, utc(*draft.StartDate), utc(*draft.EndDate), draft.BuildingID, id)
		if err != nil {
			return fmt.Errorf("failed to update survey: %w", err)
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(`
			DELETE FROM survey_options
			WHERE question_id IN (SELECT id FROM survey_questions WHERE survey_id = ?)
		`), id)
		if err != nil {
			return fmt.Errorf("failed to delete options: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM survey_questions WHERE survey_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete questions: %w", err)
		}

		return insertQuestions(ctx, tx, id, draft.Questions)
	})
}

// CloseSurvey sets status to closed. It reports whether the row changed;
// closing an already closed survey is not an error.
func (s *Store) CloseSurvey(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE surveys SET status = ? WHERE id = ? AND status = ?`),
		models.StatusClosed, id, models.StatusOpen)
	if err != nil {
		return false, fmt.Errorf("failed to close survey: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to close survey: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	var exists int
	if err := s.db.GetContext(ctx, &exists, s.db.Rebind(`SELECT 1 FROM surveys WHERE id = ?`), id); err != nil {
		return false, notFound(err)
	}
	return false, nil
}

// CloseExpired closes every open survey whose end date is before now.
func (s *Store) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.closeWhere(ctx,
		SurveysTableStatusCol.Eq(models.StatusOpen),
		SurveysTableEndCol.Lt(utc(now)),
	)
}

// CloseIfExpired closes a single survey when it is open and its end date
// is before now.
func (s *Store) CloseIfExpired(ctx context.Context, id int64, now time.Time) (bool, error) {
	n, err := s.closeWhere(ctx,
		SurveysTableIDCol.Eq(id),
		SurveysTableStatusCol.Eq(models.StatusOpen),
		SurveysTableEndCol.Lt(utc(now)),
	)
	return n > 0, err
}

func (s *Store) closeWhere(ctx context.Context, where ...exp.Expression) (int64, error) {
	query, args, err := s.dialect.Update(SurveysTable).
		Set(goqu.Record{"status": models.StatusClosed}).
		Where(where...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build close query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to close surveys: %w", err)
	}
	return res.RowsAffected()
}
