// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

// Responses reference their question and option through composite keys, so
// a ballot can only name an option of a question of the same survey, and
// only for a voter with a participation row.

const postgresSchema = `
CREATE TABLE IF NOT EXISTS surveys (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    start_date TIMESTAMPTZ NOT NULL,
    end_date TIMESTAMPTZ NOT NULL,
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
    building_id BIGINT,
    created_at TIMESTAMPTZ NOT NULL,
    CHECK (start_date < end_date)
);

CREATE INDEX IF NOT EXISTS idx_surveys_status_end ON surveys(status, end_date);

CREATE TABLE IF NOT EXISTS survey_questions (
    id BIGSERIAL PRIMARY KEY,
    survey_id BIGINT NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
    question_text TEXT NOT NULL,
    question_order INTEGER NOT NULL DEFAULT 1,
    UNIQUE (id, survey_id)
);

CREATE INDEX IF NOT EXISTS idx_survey_questions_survey ON survey_questions(survey_id);

CREATE TABLE IF NOT EXISTS survey_options (
    id BIGSERIAL PRIMARY KEY,
    question_id BIGINT NOT NULL REFERENCES survey_questions(id) ON DELETE CASCADE,
    option_text TEXT NOT NULL,
    option_order INTEGER NOT NULL DEFAULT 1,
    UNIQUE (id, question_id)
);

CREATE INDEX IF NOT EXISTS idx_survey_options_question ON survey_options(question_id);

CREATE TABLE IF NOT EXISTS survey_participation (
    survey_id BIGINT NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
    user_id BIGINT NOT NULL,
    voted_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (survey_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_survey_participation_voted ON survey_participation(survey_id, voted_at);

CREATE TABLE IF NOT EXISTS survey_responses (
    id BIGSERIAL PRIMARY KEY,
    survey_id BIGINT NOT NULL,
    question_id BIGINT NOT NULL,
    option_id BIGINT NOT NULL,
    user_id BIGINT NOT NULL,
    UNIQUE (survey_id, question_id, user_id),
    FOREIGN KEY (question_id, survey_id) REFERENCES survey_questions(id, survey_id) ON DELETE CASCADE,
    FOREIGN KEY (option_id, question_id) REFERENCES survey_options(id, question_id) ON DELETE CASCADE,
    FOREIGN KEY (survey_id, user_id) REFERENCES survey_participation(survey_id, user_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_survey_responses_option ON survey_responses(option_id);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS surveys (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    description TEXT,
    start_date TIMESTAMP NOT NULL,
    end_date TIMESTAMP NOT NULL,
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
    building_id INTEGER,
    created_at TIMESTAMP NOT NULL,
    CHECK (start_date < end_date)
);

CREATE INDEX IF NOT EXISTS idx_surveys_status_end ON surveys(status, end_date);

CREATE TABLE IF NOT EXISTS survey_questions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    survey_id INTEGER NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
    question_text TEXT NOT NULL,
    question_order INTEGER NOT NULL DEFAULT 1,
    UNIQUE (id, survey_id)
);

CREATE INDEX IF NOT EXISTS idx_survey_questions_survey ON survey_questions(survey_id);

CREATE TABLE IF NOT EXISTS survey_options (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question_id INTEGER NOT NULL REFERENCES survey_questions(id) ON DELETE CASCADE,
    option_text TEXT NOT NULL,
    option_order INTEGER NOT NULL DEFAULT 1,
    UNIQUE (id, question_id)
);

CREATE INDEX IF NOT EXISTS idx_survey_options_question ON survey_options(question_id);

CREATE TABLE IF NOT EXISTS survey_participation (
    survey_id INTEGER NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
    user_id INTEGER NOT NULL,
    voted_at TIMESTAMP NOT NULL,
    PRIMARY KEY (survey_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_survey_participation_voted ON survey_participation(survey_id, voted_at);

CREATE TABLE IF NOT EXISTS survey_responses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    survey_id INTEGER NOT NULL,
    question_id INTEGER NOT NULL,
    option_id INTEGER NOT NULL,
    user_id INTEGER NOT NULL,
    UNIQUE (survey_id, question_id, user_id),
    FOREIGN KEY (question_id, survey_id) REFERENCES survey_questions(id, survey_id) ON DELETE CASCADE,
    FOREIGN KEY (option_id, question_id) REFERENCES survey_options(id, question_id) ON DELETE CASCADE,
    FOREIGN KEY (survey_id, user_id) REFERENCES survey_participation(survey_id, user_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_survey_responses_option ON survey_responses(option_id);
`
