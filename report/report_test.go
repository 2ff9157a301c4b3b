// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/condo-survey/models"
)

func sampleResults() *models.Results {
	now := time.Date(2025, 6, 30, 20, 0, 0, 0, time.UTC)
	return &models.Results{
		Survey: models.SurveySummary{
			ID:        1,
			Title:     "Approve budget?",
			StartDate: now.Add(-72 * time.Hour),
			EndDate:   now,
			Status:    models.StatusClosed,
		},
		Participants: 5,
		Questions: []models.QuestionTally{{
			QuestionID:    1,
			QuestionText:  "Approve the 2026 budget (€)?",
			QuestionOrder: 1,
			TotalVotes:    5,
			Options: []models.OptionTally{
				{OptionID: 1, OptionText: "Yes", Count: 3, Percentage: 60},
				{OptionID: 2, OptionText: "No", Count: 2, Percentage: 40},
				{OptionID: 3, OptionText: "Abstain", Count: 0, Percentage: 0},
			},
		}},
		ComputedAt: now,
	}
}

func TestPDFRender(t *testing.T) {
	var buf bytes.Buffer
	if err := (PDF{}).Render(&buf, sampleResults()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-") {
		t.Errorf("Expected a PDF document, got %q", out[:min(len(out), 16)])
	}
	if !strings.Contains(out, "EOF") {
		t.Error("Expected a complete PDF trailer")
	}
}

func TestPDFRenderNoQuestions(t *testing.T) {
	res := sampleResults()
	res.Questions = nil
	res.Participants = 0

	var buf bytes.Buffer
	if err := (PDF{}).Render(&buf, res); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Expected output")
	}
}

func TestPDFMetadata(t *testing.T) {
	var r Renderer = PDF{}
	if r.ContentType() != "application/pdf" || r.Extension() != "pdf" {
		t.Errorf("Unexpected metadata %s / %s", r.ContentType(), r.Extension())
	}
}
