// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import "github.com/doug-martin/goqu/v9"

const (
	SurveysTableName       = "surveys"
	QuestionsTableName     = "survey_questions"
	OptionsTableName       = "survey_options"
	ParticipationTableName = "survey_participation"
	ResponsesTableName     = "survey_responses"
)

var (
	SurveysTable          = goqu.T(SurveysTableName)
	SurveysTableIDCol     = SurveysTable.Col("id")
	SurveysTableStatusCol = SurveysTable.Col("status")
	SurveysTableStartCol  = SurveysTable.Col("start_date")
	SurveysTableEndCol    = SurveysTable.Col("end_date")

	QuestionsTable            = goqu.T(QuestionsTableName)
	QuestionsTableSurveyIDCol = QuestionsTable.Col("survey_id")

	OptionsTable              = goqu.T(OptionsTableName)
	OptionsTableQuestionIDCol = OptionsTable.Col("question_id")
)

var surveyColumns = []any{
	SurveysTableIDCol,
	SurveysTable.Col("title"),
	SurveysTable.Col("description"),
	SurveysTableStartCol,
	SurveysTableEndCol,
	SurveysTableStatusCol,
	SurveysTable.Col("building_id"),
	SurveysTable.Col("created_at"),
}

const surveySelect = `SELECT id, title, description, start_date, end_date, status, building_id, created_at FROM surveys`
