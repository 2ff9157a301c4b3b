// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/condo-survey/auth"
	"github.com/danielhkuo/condo-survey/fault"
	"github.com/danielhkuo/condo-survey/middleware"
	"github.com/danielhkuo/condo-survey/models"
	"github.com/danielhkuo/condo-survey/report"
	"github.com/danielhkuo/condo-survey/survey"
)

type ResultsHandler struct {
	results  *survey.Results
	dir      auth.Resolver
	renderer report.Renderer
}

func NewResultsHandler(res *survey.Results, dir auth.Resolver, renderer report.Renderer) *ResultsHandler {
	return &ResultsHandler{results: res, dir: dir, renderer: renderer}
}

// GetResults handles GET /surveys/{id}/results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	res, err := h.tally(r)
	if err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, res)
}

// GetReport handles GET /surveys/{id}/pdf
func (h *ResultsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	res, err := h.tally(r)
	if err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}

	// Render fully before writing so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, res); err != nil {
		middleware.FaultResponse(w, r, fault.NewInternal("failed to render report", err))
		return
	}

	w.Header().Set("Content-Type", h.renderer.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="survey-%d.%s"`, res.Survey.ID, h.renderer.Extension()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write report", "survey_id", res.Survey.ID, "error", err)
	}
}

// GetVoters handles GET /surveys/{id}/voters
func (h *ResultsHandler) GetVoters(w http.ResponseWriter, r *http.Request) {
	id, err := survey.ParseID("survey_id", r.PathValue("id"))
	if err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", models.DefaultPageSize)
	if err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}

	voters, err := h.results.Voters(r.Context(), id, page, limit)
	if err != nil {
		middleware.FaultResponse(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, voters)
}

// tally parses the survey id and admin flag, then computes the results.
// admin=true only counts when the caller is a directory admin.
func (h *ResultsHandler) tally(r *http.Request) (*models.Results, error) {
	id, err := survey.ParseID("survey_id", r.PathValue("id"))
	if err != nil {
		return nil, err
	}

	admin := false
	if raw := r.URL.Query().Get("admin"); raw != "" {
		wanted, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fault.NewValidation("invalid admin", "admin must be true or false")
		}
		if wanted {
			if admin, err = auth.IsAdmin(r, h.dir); err != nil {
				return nil, err
			}
		}
	}

	return h.results.Tally(r.Context(), id, admin)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fault.NewValidation("invalid "+name, name+" must be an integer")
	}
	return v, nil
}
