// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/condo-survey/auth"
	"github.com/danielhkuo/condo-survey/fault"
	"github.com/danielhkuo/condo-survey/middleware"
	"github.com/danielhkuo/condo-survey/models"
	"github.com/danielhkuo/condo-survey/survey"
)

type VotingHandler struct {
	voting *survey.Voting
}

func NewVotingHandler(v *survey.Voting) *VotingHandler {
	return &VotingHandler{voting: v}
}

// Vote handles POST /surveys/{id}/vote
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	id, err := survey.ParseID("survey_id", r.PathValue("id"))
	if err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}

	// A logged-in caller may only vote as themselves.
	caller, err := auth.UserID(r)
	switch {
	case errors.Is(err, auth.ErrInvalidUser):
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	case err == nil && req.VoterID != 0 && caller != int64(req.VoterID):
		middleware.FaultResponse(w, r, fault.NewForbidden("voter_id does not match the authenticated user"))
		return
	}

	if err := h.voting.Vote(r.Context(), id, int64(req.VoterID), req.Responses); err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "vote recorded"})
}
