// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Survey status constants
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Pagination limits for voter listings
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Request types

type OptionInput struct {
	OptionText string `json:"option_text" validate:"required"`
}

type QuestionInput struct {
	QuestionText  string        `json:"question_text" validate:"required"`
	QuestionOrder *int          `json:"question_order,omitempty"`
	Options       []OptionInput `json:"options" validate:"required,min=1,dive"`
}

// SurveyDraft is the caller-supplied shape of a survey, used both for
// creation and for structural edits.
type SurveyDraft struct {
	Title       string          `json:"title" validate:"required"`
	Description *string         `json:"description,omitempty"`
	StartDate   *time.Time      `json:"start_date" validate:"required"`
	EndDate     *time.Time      `json:"end_date" validate:"required"`
	BuildingID  *int64          `json:"building_id,omitempty"`
	Questions   []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

// SurveyRequest is the wire form of SurveyDraft. Dates are lenient.
type SurveyRequest struct {
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	StartDate   *DateTime       `json:"start_date"`
	EndDate     *DateTime       `json:"end_date"`
	BuildingID  *ID             `json:"building_id,omitempty"`
	Questions   []QuestionInput `json:"questions"`
}

// Draft converts the wire request into a SurveyDraft.
func (r SurveyRequest) Draft() SurveyDraft {
	d := SurveyDraft{
		Title:       r.Title,
		Description: r.Description,
		Questions:   r.Questions,
	}
	if r.StartDate != nil {
		t := r.StartDate.Time
		d.StartDate = &t
	}
	if r.EndDate != nil {
		t := r.EndDate.Time
		d.EndDate = &t
	}
	if r.BuildingID != nil {
		b := int64(*r.BuildingID)
		d.BuildingID = &b
	}
	return d
}

type Answer struct {
	QuestionID ID `json:"question_id"`
	OptionID   ID `json:"option_id"`
}

type VoteRequest struct {
	VoterID   ID       `json:"voter_id"`
	Responses []Answer `json:"responses"`
}

// Response types

type CreateSurveyResponse struct {
	SurveyID int64 `json:"survey_id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CloseSurveyResponse struct {
	SurveyID int64  `json:"survey_id"`
	Status   string `json:"status"`
	Updated  bool   `json:"updated"`
}

// Domain types

type Survey struct {
	ID          int64      `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	StartDate   time.Time  `db:"start_date" json:"start_date"`
	EndDate     time.Time  `db:"end_date" json:"end_date"`
	Status      string     `db:"status" json:"status"`
	BuildingID  *int64     `db:"building_id" json:"building_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	Questions   []Question `db:"-" json:"questions"`
}

// ActiveAt reports whether votes are accepted at t.
func (s *Survey) ActiveAt(t time.Time) bool {
	return s.Status == StatusOpen && !s.StartDate.After(t) && !s.EndDate.Before(t)
}

// ExpiredAt reports whether the voting window ended before t.
func (s *Survey) ExpiredAt(t time.Time) bool {
	return s.EndDate.Before(t)
}

type Question struct {
	ID            int64    `db:"id" json:"id"`
	SurveyID      int64    `db:"survey_id" json:"survey_id"`
	QuestionText  string   `db:"question_text" json:"question_text"`
	QuestionOrder int      `db:"question_order" json:"question_order"`
	Options       []Option `db:"-" json:"options"`
}

type Option struct {
	ID          int64  `db:"id" json:"id"`
	QuestionID  int64  `db:"question_id" json:"question_id"`
	OptionText  string `db:"option_text" json:"option_text"`
	OptionOrder int    `db:"option_order" json:"option_order"`
}

type Participation struct {
	SurveyID int64     `db:"survey_id" json:"survey_id"`
	UserID   int64     `db:"user_id" json:"user_id"`
	VotedAt  time.Time `db:"voted_at" json:"voted_at"`
}

type Response struct {
	SurveyID   int64 `db:"survey_id" json:"survey_id"`
	QuestionID int64 `db:"question_id" json:"question_id"`
	OptionID   int64 `db:"option_id" json:"option_id"`
	UserID     int64 `db:"user_id" json:"user_id"`
}

// Identity is what the voter directory knows about a user.
type Identity struct {
	ID          int64  `json:"id"`
	Exists      bool   `json:"exists"`
	Eligible    bool   `json:"eligible"`
	Admin       bool   `json:"admin"`
	DisplayName string `json:"display_name"`
	Email       string `json:"-"`
	BuildingID  *int64 `json:"building_id,omitempty"`
}

// InBuilding reports whether the identity may take part in a survey
// scoped to buildingID. A nil scope admits every building.
func (i Identity) InBuilding(buildingID *int64) bool {
	if buildingID == nil {
		return true
	}
	return i.BuildingID != nil && *i.BuildingID == *buildingID
}

// Results types

type OptionTally struct {
	OptionID    int64   `json:"option_id"`
	OptionText  string  `json:"option_text"`
	OptionOrder int     `json:"option_order"`
	Count       int     `json:"count"`
	Percentage  float64 `json:"percentage"`
}

type QuestionTally struct {
	QuestionID    int64         `json:"question_id"`
	QuestionText  string        `json:"question_text"`
	QuestionOrder int           `json:"question_order"`
	TotalVotes    int           `json:"total_votes"`
	Options       []OptionTally `json:"options"`
}

// TallyRow is one flattened question/option/count row as aggregated by
// the store.
type TallyRow struct {
	QuestionID    int64  `db:"question_id"`
	QuestionText  string `db:"question_text"`
	QuestionOrder int    `db:"question_order"`
	OptionID      int64  `db:"option_id"`
	OptionText    string `db:"option_text"`
	OptionOrder   int    `db:"option_order"`
	Count         int    `db:"votes"`
}

type SurveySummary struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      string    `json:"status"`
	BuildingID  *int64    `json:"building_id,omitempty"`
}

type Results struct {
	Survey       SurveySummary   `json:"survey"`
	Participants int             `json:"participants"`
	Questions    []QuestionTally `json:"questions"`
	ComputedAt   time.Time       `json:"computed_at"`
}

type VoterEntry struct {
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"display_name"`
	VotedAt     time.Time `json:"voted_at"`
}

type VoterStats struct {
	SurveyID         int64   `json:"survey_id"`
	EligibleVoters   int     `json:"eligible_voters"`
	Participants     int     `json:"participants"`
	ParticipationPct float64 `json:"participation_percentage"`
}

type VotersPage struct {
	Stats      VoterStats   `json:"stats"`
	Voters     []VoterEntry `json:"voters"`
	Pagination Pagination   `json:"pagination"`
}

type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	PrevPage    *int `json:"prev_page"`
	NextPage    *int `json:"next_page"`
}

// Error response

type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}
