// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielhkuo/condo-survey/db"
	"github.com/danielhkuo/condo-survey/fault"
	"github.com/danielhkuo/condo-survey/models"
	"github.com/danielhkuo/condo-survey/store"
	"github.com/danielhkuo/condo-survey/testutil"
)

func TestCreateAndGetSurvey(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	ctx := context.Background()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)
	draft := testutil.TestDraft("Roof repair", start, end, []string{"Yes", "No", "Abstain"}, []string{"A", "B"})
	draft.BuildingID = testutil.Int64(3)

	id, err := st.CreateSurvey(ctx, draft, start.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CreateSurvey failed: %v", err)
	}

	s, err := st.GetSurvey(ctx, id)
	if err != nil {
		t.Fatalf("GetSurvey failed: %v", err)
	}

	if s.Title != "Roof repair" || s.Status != models.StatusOpen {
		t.Errorf("Unexpected survey %+v", s)
	}
	if !s.StartDate.Equal(start) || !s.EndDate.Equal(end) {
		t.Errorf("Dates not preserved: %v - %v", s.StartDate, s.EndDate)
	}
	if s.BuildingID == nil || *s.BuildingID != 3 {
		t.Errorf("Expected building 3, got %v", s.BuildingID)
	}
	if len(s.Questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(s.Questions))
	}
	if len(s.Questions[0].Options) != 3 || len(s.Questions[1].Options) != 2 {
		t.Fatalf("Unexpected option counts: %d, %d", len(s.Questions[0].Options), len(s.Questions[1].Options))
	}
	for i, o := range s.Questions[0].Options {
		if o.OptionOrder != i+1 {
			t.Errorf("Option %d has order %d", i, o.OptionOrder)
		}
	}
	if s.Questions[0].Options[2].OptionText != "Abstain" {
		t.Errorf("Expected Abstain last, got %s", s.Questions[0].Options[2].OptionText)
	}
}

func TestGetSurveyNotFound(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))

	_, err := st.GetSurvey(context.Background(), 404)
	if !fault.Is(err, fault.NotFound) {
		t.Errorf("Expected NotFound, got %v", err)
	}
}

func TestQuestionOrderTiesBrokenByID(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	ctx := context.Background()

	now := time.Now().UTC()
	draft := testutil.TestDraft("Ties", now, now.Add(time.Hour), []string{"x"}, []string{"y"}, []string{"z"})
	two, one := 2, 1
	draft.Questions[0].QuestionOrder = &two
	draft.Questions[1].QuestionOrder = nil // defaults to 1
	draft.Questions[2].QuestionOrder = &one

	id, err := st.CreateSurvey(ctx, draft, now)
	if err != nil {
		t.Fatalf("CreateSurvey failed: %v", err)
	}
	s, err := st.GetSurvey(ctx, id)
	if err != nil {
		t.Fatalf("GetSurvey failed: %v", err)
	}

	got := []string{s.Questions[0].QuestionText, s.Questions[1].QuestionText, s.Questions[2].QuestionText}
	expected := []string{"Question 2", "Question 3", "Question 1"}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Position %d: expected %s, got %s", i, expected[i], got[i])
		}
	}
}

func TestCreateSurveyRejectsEmptyWindow(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := store.New(conn)

	// start == end violates the CHECK constraint.
	now := time.Now().UTC()
	draft := testutil.TestDraft("Bad window", now, now, []string{"Yes"})
	if _, err := st.CreateSurvey(context.Background(), draft, now); err == nil {
		t.Fatal("Expected CHECK constraint failure")
	}

	for _, table := range []string{"surveys", "survey_questions", "survey_options"} {
		var n int
		if err := conn.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("Expected no rows in %s, got %d", table, n)
		}
	}
}

func TestListActive(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	ctx := context.Background()

	active := testutil.CreateTestSurvey(t, st, models.StatusOpen)
	testutil.CreateTestSurvey(t, st, models.StatusClosed)
	testutil.CreateTestSurvey(t, st, "expired")

	now := time.Now().UTC()
	future := testutil.TestDraft("Future", now.Add(24*time.Hour), now.Add(48*time.Hour), []string{"Yes"})
	if _, err := st.CreateSurvey(ctx, future, now); err != nil {
		t.Fatal(err)
	}

	surveys, err := st.ListActive(ctx, now)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(surveys) != 1 {
		t.Fatalf("Expected 1 active survey, got %d", len(surveys))
	}
	if surveys[0].ID != active.ID {
		t.Errorf("Expected survey %d, got %d", active.ID, surveys[0].ID)
	}
	if len(surveys[0].Questions) != 1 || len(surveys[0].Questions[0].Options) != 2 {
		t.Errorf("Expected nested structure, got %+v", surveys[0].Questions)
	}
}

func TestCloseSurveyIdempotent(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	ctx := context.Background()
	s := testutil.CreateTestSurvey(t, st, models.StatusOpen)

	updated, err := st.CloseSurvey(ctx, s.ID)
	if err != nil || !updated {
		t.Fatalf("First close: updated=%v err=%v", updated, err)
	}

	updated, err = st.CloseSurvey(ctx, s.ID)
	if err != nil || updated {
		t.Fatalf("Second close: updated=%v err=%v", updated, err)
	}

	if _, err := st.CloseSurvey(ctx, 999); !fault.Is(err, fault.NotFound) {
		t.Errorf("Expected NotFound, got %v", err)
	}
}

func TestCloseExpired(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	ctx := context.Background()

	open := testutil.CreateTestSurvey(t, st, models.StatusOpen)
	expired := testutil.CreateTestSurvey(t, st, "expired")

	n, err := st.CloseExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("CloseExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 closed, got %d", n)
	}

	// Running again changes nothing.
	if n, _ := st.CloseExpired(ctx, time.Now()); n != 0 {
		t.Errorf("Expected 0 on second sweep, got %d", n)
	}

	got, _ := st.GetSurvey(ctx, expired.ID)
	if got.Status != models.StatusClosed {
		t.Errorf("Expected expired survey closed, got %s", got.Status)
	}
	got, _ = st.GetSurvey(ctx, open.ID)
	if got.Status != models.StatusOpen {
		t.Errorf("Expected open survey untouched, got %s", got.Status)
	}
}

func TestCastBallotRejectsDoubleVote(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	s := testutil.CreateTestSurvey(t, st, models.StatusOpen)

	testutil.CastTestVote(t, st, s, testutil.ResidentID, 0)

	// Bypass the participation pre-check to hit the primary key.
	err := st.CastBallot(context.Background(), s.ID, testutil.ResidentID, time.Now(), func(current *models.Survey, participated bool) ([]models.Response, error) {
		if !participated {
			t.Error("Expected participated=true")
		}
		return []models.Response{{QuestionID: current.Questions[0].ID, OptionID: current.Questions[0].Options[1].ID}}, nil
	})
	if !fault.Is(err, fault.Conflict) {
		t.Fatalf("Expected Conflict, got %v", err)
	}
	if !errors.Is(err, fault.ErrUniqueViolation) {
		t.Errorf("Expected unique violation cause, got %v", err)
	}
}

func TestCastBallotRollsBackOnCheckError(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	s := testutil.CreateTestSurvey(t, st, models.StatusOpen)

	boom := errors.New("rejected")
	err := st.CastBallot(context.Background(), s.ID, testutil.ResidentID, time.Now(), func(*models.Survey, bool) ([]models.Response, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected check error, got %v", err)
	}

	n, err := st.CountParticipants(context.Background(), s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Expected no participation, got %d", n)
	}
}

func TestResponsesEnforceOwnership(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	a := testutil.CreateTestSurvey(t, st, models.StatusOpen)
	b := testutil.CreateTestSurvey(t, st, models.StatusOpen)

	// An option of survey b recorded against survey a's question must be
	// rejected by the composite foreign keys.
	err := st.CastBallot(context.Background(), a.ID, testutil.ResidentID, time.Now(), func(current *models.Survey, _ bool) ([]models.Response, error) {
		return []models.Response{{QuestionID: current.Questions[0].ID, OptionID: b.Questions[0].Options[0].ID}}, nil
	})
	if err == nil {
		t.Fatal("Expected foreign key failure")
	}

	n, _ := st.CountParticipants(context.Background(), a.ID)
	if n != 0 {
		t.Errorf("Expected rollback of participation, got %d", n)
	}
}

func TestReplaceSurvey(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	ctx := context.Background()
	s := testutil.CreateTestSurvey(t, st, models.StatusOpen)

	draft := testutil.TestDraft("Renamed", s.StartDate, s.EndDate, []string{"A", "B", "C"}, []string{"D", "E"})
	err := st.ReplaceSurvey(ctx, s.ID, draft, func(current *models.Survey, participants int) error {
		if current.ID != s.ID || participants != 0 {
			t.Errorf("Unexpected check input: %d, %d", current.ID, participants)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ReplaceSurvey failed: %v", err)
	}

	got, _ := st.GetSurvey(ctx, s.ID)
	if got.Title != "Renamed" || len(got.Questions) != 2 || len(got.Questions[0].Options) != 3 {
		t.Errorf("Structure not replaced: %+v", got)
	}

	var leftovers int
	if err := st.DB().Get(&leftovers, `SELECT COUNT(*) FROM survey_options WHERE question_id = ?`, s.Questions[0].ID); err != nil {
		t.Fatal(err)
	}
	if leftovers != 0 {
		t.Errorf("Expected old options removed, found %d", leftovers)
	}
}

func TestReplaceSurveyWithPlainSQLiteURL(t *testing.T) {
	conn, err := db.Open(db.SQLite, "file::memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if err := db.CreateSchema(conn); err != nil {
		t.Fatal(err)
	}

	st := store.New(conn)
	ctx := context.Background()
	s := testutil.CreateTestSurvey(t, st, models.StatusOpen)

	draft := testutil.TestDraft("Renamed", s.StartDate, s.EndDate, []string{"A", "B", "C"}, []string{"D", "E"})
	err = st.ReplaceSurvey(ctx, s.ID, draft, func(*models.Survey, int) error { return nil })
	if err != nil {
		t.Fatalf("ReplaceSurvey failed: %v", err)
	}

	var options int
	if err := conn.Get(&options, `SELECT COUNT(*) FROM survey_options`); err != nil {
		t.Fatal(err)
	}
	if options != 5 {
		t.Errorf("Expected only the 5 new options, found %d", options)
	}

	_, err = conn.Exec(`INSERT INTO survey_participation (survey_id, user_id, voted_at) VALUES (?, ?, ?)`, s.ID, 7, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	_, err = conn.Exec(`INSERT INTO survey_responses (survey_id, question_id, option_id, user_id) VALUES (?, 999, 999, 7)`, s.ID)
	if err == nil {
		t.Error("Expected foreign keys to reject a response to a missing question")
	}
}

func TestReplaceSurveyCheckVetoes(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	ctx := context.Background()
	s := testutil.CreateTestSurvey(t, st, models.StatusOpen)
	testutil.CastTestVote(t, st, s, testutil.ResidentID, 0)

	draft := testutil.TestDraft("Renamed", s.StartDate, s.EndDate, []string{"A"})
	err := st.ReplaceSurvey(ctx, s.ID, draft, func(_ *models.Survey, participants int) error {
		if participants != 1 {
			t.Errorf("Expected 1 participant, got %d", participants)
		}
		return fault.NewState("locked")
	})
	if !fault.Is(err, fault.State) {
		t.Fatalf("Expected State, got %v", err)
	}

	got, _ := st.GetSurvey(ctx, s.ID)
	if got.Title != "Test Survey" {
		t.Errorf("Expected title unchanged, got %s", got.Title)
	}

	if err := st.ReplaceSurvey(ctx, 999, draft, func(*models.Survey, int) error { return nil }); !fault.Is(err, fault.NotFound) {
		t.Errorf("Expected NotFound, got %v", err)
	}
}

func TestTallyIncludesZeroCounts(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	s := testutil.CreateTestSurvey(t, st, models.StatusOpen, []string{"Yes", "No", "Abstain"})

	testutil.CastTestVote(t, st, s, 2, 0)
	testutil.CastTestVote(t, st, s, 3, 0)
	testutil.CastTestVote(t, st, s, 4, 1)

	rows, err := st.Tally(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("Tally failed: %v", err)
	}

	expected := map[string]int{"Yes": 2, "No": 1, "Abstain": 0}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Count != expected[r.OptionText] {
			t.Errorf("%s: expected %d, got %d", r.OptionText, expected[r.OptionText], r.Count)
		}
	}
}

func TestListParticipantsPagination(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	ctx := context.Background()
	s := testutil.CreateTestSurvey(t, st, models.StatusOpen)

	base := time.Now().UTC().Add(-time.Hour)
	for i := int64(0); i < 5; i++ {
		voter := 10 + i
		err := st.CastBallot(ctx, s.ID, voter, base.Add(time.Duration(i)*time.Minute), func(current *models.Survey, _ bool) ([]models.Response, error) {
			return []models.Response{{QuestionID: current.Questions[0].ID, OptionID: current.Questions[0].Options[0].ID}}, nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	page, err := st.ListParticipants(ctx, s.ID, 1, 2)
	if err != nil {
		t.Fatalf("ListParticipants failed: %v", err)
	}
	if page.TotalItems != 5 || page.TotalPages != 3 {
		t.Errorf("Expected 5 items over 3 pages, got %d over %d", page.TotalItems, page.TotalPages)
	}
	if len(page.Items) != 2 || page.Items[0].UserID != 14 || page.Items[1].UserID != 13 {
		t.Errorf("Expected most recent voters first, got %+v", page.Items)
	}
	if page.PrevPage != nil || page.NextPage == nil || *page.NextPage != 2 {
		t.Errorf("Unexpected prev/next: %v/%v", page.PrevPage, page.NextPage)
	}

	last, err := st.ListParticipants(ctx, s.ID, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(last.Items) != 1 || last.Items[0].UserID != 10 || last.NextPage != nil {
		t.Errorf("Unexpected last page %+v", last)
	}
}
