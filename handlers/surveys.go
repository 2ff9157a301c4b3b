// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/condo-survey/middleware"
	"github.com/danielhkuo/condo-survey/models"
	"github.com/danielhkuo/condo-survey/survey"
)

type SurveyHandler struct {
	lifecycle *survey.Lifecycle
}

func NewSurveyHandler(lc *survey.Lifecycle) *SurveyHandler {
	return &SurveyHandler{lifecycle: lc}
}

// CreateSurvey handles POST /surveys
func (h *SurveyHandler) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	var req models.SurveyRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}

	id, err := h.lifecycle.Create(r.Context(), req.Draft())
	if err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSurveyResponse{SurveyID: id})
}

// ListSurveys handles GET /surveys
func (h *SurveyHandler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.lifecycle.ListActive(r.Context())
	if err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}
	if surveys == nil {
		surveys = []models.Survey{}
	}

	middleware.JSONResponse(w, http.StatusOK, surveys)
}

// GetSurvey handles GET /surveys/{id}
func (h *SurveyHandler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := survey.ParseID("survey_id", r.PathValue("id"))
	if err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}

	s, err := h.lifecycle.Get(r.Context(), id)
	if err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, s)
}

// UpdateSurvey handles PUT /surveys/{id}
func (h *SurveyHandler) UpdateSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := survey.ParseID("survey_id", r.PathValue("id"))
	if err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}

	var req models.SurveyRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}

	if err := h.lifecycle.Update(r.Context(), id, req.Draft()); err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "survey updated"})
}

// CloseSurvey handles PUT /surveys/{id}/close
func (h *SurveyHandler) CloseSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := survey.ParseID("survey_id", r.PathValue("id"))
	if err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}

	updated, err := h.lifecycle.Close(r.Context(), id)
	if err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CloseSurveyResponse{
		SurveyID: id,
		Status:   models.StatusClosed,
		Updated:  updated,
	})
}
