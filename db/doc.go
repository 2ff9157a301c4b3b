// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the survey schema.

# Connecting

Open accepts the configured database type ("postgres" or "sqlite") and a
URL, and returns a *sqlx.DB whose DriverName selects the dialect used by
the store:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - surveys: metadata, voting window and status
  - survey_questions: ordered questions per survey
  - survey_options: ordered options per question
  - survey_participation: one row per (survey, user) that voted
  - survey_responses: one chosen option per question per voter

# Relationships

	surveys 1──* survey_questions 1──* survey_options
	surveys 1──* survey_participation 1──* survey_responses

Composite foreign keys on survey_responses guarantee that a question
belongs to the survey and an option belongs to the question. The primary
key of survey_participation is the at-most-once-vote guarantee.

All foreign keys use ON DELETE CASCADE. SQLite connections need
foreign_keys enabled (the _pragma=foreign_keys(1) URL parameter).

WordPress tables (users, usermeta) are read by package directory and are
never created here.
*/
package db
