// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/condo-survey/cliparse"
	"github.com/danielhkuo/condo-survey/db"
	"github.com/danielhkuo/condo-survey/directory"
	"github.com/danielhkuo/condo-survey/models"
	"github.com/danielhkuo/condo-survey/store"
)

// TestDBURL is an in-memory SQLite database with foreign keys enforced.
// Every connection gets its own database, so SetupTestDB pins the pool to
// one connection.
const TestDBURL = "file::memory:?_pragma=foreign_keys(1)&_time_format=sqlite"

// WordPress test users
const (
	AdminID    int64 = 1
	ResidentID int64 = 2
	OutsiderID int64 = 99
)

// SetupTestDB creates a fresh test database with the full schema and empty
// WordPress user tables.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Open(db.SQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	for _, stmt := range []string{
		`CREATE TABLE wp_users (
			id INTEGER PRIMARY KEY,
			user_login TEXT NOT NULL,
			user_email TEXT NOT NULL,
			display_name TEXT NOT NULL
		)`,
		`CREATE TABLE wp_usermeta (
			umeta_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			meta_key TEXT,
			meta_value TEXT
		)`,
	} {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("Failed to create WordPress tables: %v", err)
		}
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     TestDBURL,
		DatabaseType:    db.SQLite,
		WPTablePrefix:   "wp_",
		VoterRule:       directory.DefaultVoterRule,
		AdminRule:       directory.DefaultAdminRule,
		SiteURL:         "https://condo.example.com",
		SMTPFrom:        "board@condo.example.com",
		NotifyBatchSize: 30,
		NotifySchedule:  "@every 2m",
		SweepSchedule:   "@every 1h",
		LogLevel:        "info",
	}
}

// AddWordPressUser inserts a user with serialized capabilities and an
// optional building.
func AddWordPressUser(t *testing.T, conn *sqlx.DB, id int64, name string, roles []string, building *int64) {
	t.Helper()

	_, err := conn.Exec(`INSERT INTO wp_users (id, user_login, user_email, display_name) VALUES (?, ?, ?, ?)`,
		id, strings.ToLower(strings.ReplaceAll(name, " ", ".")), fmt.Sprintf("user%d@condo.example.com", id), name)
	if err != nil {
		t.Fatalf("Failed to create WordPress user: %v", err)
	}

	var caps strings.Builder
	fmt.Fprintf(&caps, "a:%d:{", len(roles))
	for _, r := range roles {
		fmt.Fprintf(&caps, "s:%d:\"%s\";b:1;", len(r), r)
	}
	caps.WriteString("}")

	_, err = conn.Exec(`INSERT INTO wp_usermeta (user_id, meta_key, meta_value) VALUES (?, 'wp_capabilities', ?)`, id, caps.String())
	if err != nil {
		t.Fatalf("Failed to create capabilities: %v", err)
	}

	if building != nil {
		_, err = conn.Exec(`INSERT INTO wp_usermeta (user_id, meta_key, meta_value) VALUES (?, ?, ?)`,
			id, directory.BuildingMetaKey, strconv.FormatInt(*building, 10))
		if err != nil {
			t.Fatalf("Failed to create building meta: %v", err)
		}
	}
}

// TestDirectory returns an in-memory directory with one admin, and
// eligible residents 2 through 20.
func TestDirectory() *directory.Static {
	d := directory.NewStatic(models.Identity{
		ID:          AdminID,
		Eligible:    true,
		Admin:       true,
		DisplayName: "Board Admin",
		Email:       "admin@condo.example.com",
	})
	for id := ResidentID; id <= 20; id++ {
		d.Add(models.Identity{
			ID:          id,
			Eligible:    true,
			DisplayName: fmt.Sprintf("Resident %d", id),
			Email:       fmt.Sprintf("resident%d@condo.example.com", id),
		})
	}
	return d
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// TestDraft builds a survey draft with one question per entry in options,
// each listing its option texts.
func TestDraft(title string, start, end time.Time, options ...[]string) models.SurveyDraft {
	draft := models.SurveyDraft{
		Title:     title,
		StartDate: &start,
		EndDate:   &end,
	}
	for i, opts := range options {
		order := i + 1
		q := models.QuestionInput{
			QuestionText:  fmt.Sprintf("Question %d", i+1),
			QuestionOrder: &order,
		}
		for _, o := range opts {
			q.Options = append(q.Options, models.OptionInput{OptionText: o})
		}
		draft.Questions = append(draft.Questions, q)
	}
	return draft
}

// CreateTestSurvey stores a survey that opened an hour ago and ends
// tomorrow. status should be "open", "closed" or "expired"; expired
// surveys ended an hour ago but are still marked open.
func CreateTestSurvey(t *testing.T, st *store.Store, status string, options ...[]string) *models.Survey {
	t.Helper()

	if len(options) == 0 {
		options = [][]string{{"Yes", "No"}}
	}

	now := time.Now().UTC()
	start, end := now.Add(-time.Hour), now.Add(24*time.Hour)
	if status == "expired" {
		start, end = now.Add(-48*time.Hour), now.Add(-time.Hour)
	}

	ctx := context.Background()
	id, err := st.CreateSurvey(ctx, TestDraft("Test Survey", start, end, options...), now)
	if err != nil {
		t.Fatalf("Failed to create test survey: %v", err)
	}

	if status == models.StatusClosed {
		if _, err := st.CloseSurvey(ctx, id); err != nil {
			t.Fatalf("Failed to close test survey: %v", err)
		}
	}

	s, err := st.GetSurvey(ctx, id)
	if err != nil {
		t.Fatalf("Failed to load test survey: %v", err)
	}
	return s
}

// CastTestVote records a ballot directly, choosing option index
// choices[i] for question i.
func CastTestVote(t *testing.T, st *store.Store, s *models.Survey, voterID int64, choices ...int) {
	t.Helper()

	err := st.CastBallot(context.Background(), s.ID, voterID, time.Now(), func(current *models.Survey, _ bool) ([]models.Response, error) {
		var responses []models.Response
		for i, q := range current.Questions {
			responses = append(responses, models.Response{
				SurveyID:   s.ID,
				QuestionID: q.ID,
				OptionID:   q.Options[choices[i]].ID,
				UserID:     voterID,
			})
		}
		return responses, nil
	})
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
}

// Ballot builds vote answers choosing option index choices[i] for
// question i.
func Ballot(s *models.Survey, choices ...int) []models.Answer {
	answers := make([]models.Answer, len(s.Questions))
	for i, q := range s.Questions {
		answers[i] = models.Answer{
			QuestionID: models.ID(q.ID),
			OptionID:   models.ID(q.Options[choices[i]].ID),
		}
	}
	return answers
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AdminHeaders identifies the request as the test admin.
func AdminHeaders() map[string]string {
	return map[string]string{"X-User-ID": strconv.FormatInt(AdminID, 10)}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
