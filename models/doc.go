// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - SurveyRequest: title, description, start_date, end_date, building_id, questions
  - QuestionInput: question_text, question_order, options
  - OptionInput: option_text
  - VoteRequest: voter_id, responses ([]Answer{question_id, option_id})

SurveyRequest.Draft converts the wire form into a SurveyDraft, the shape
validated by the lifecycle engine.

# Lenient Wire Types

  - ID: JSON number or numeric string
  - DateTime: RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04" or "2006-01-02"

# Domain Types

  - Survey: metadata, voting window, status and nested questions
  - Question / Option: ordered structure owned by a survey
  - Participation: the (survey, user) at-most-once marker
  - Response: one chosen option per question per voter
  - Identity: eligibility and admin flags from the voter directory

# Results Types

  - Results: survey summary plus QuestionTally / OptionTally counts
  - VotersPage: VoterStats, a page of VoterEntry, Pagination

# Constants

Status values:

	StatusOpen   = "open"
	StatusClosed = "closed"

Voter listing page sizes:

	DefaultPageSize = 20
	MaxPageSize     = 100
*/
package models
