// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/condo-survey/auth"
	"github.com/danielhkuo/condo-survey/handlers"
	"github.com/danielhkuo/condo-survey/middleware"
	"github.com/danielhkuo/condo-survey/report"
	"github.com/danielhkuo/condo-survey/store"
	"github.com/danielhkuo/condo-survey/survey"
)

func NewRouter(db *sqlx.DB, dir survey.Directory, notifier survey.Notifier) *http.ServeMux {
	mux := http.NewServeMux()

	st := store.New(db)

	// Initialize handlers
	surveyHandler := handlers.NewSurveyHandler(survey.NewLifecycle(st, notifier))
	votingHandler := handlers.NewVotingHandler(survey.NewVoting(st, dir))
	resultsHandler := handlers.NewResultsHandler(survey.NewResults(st, dir), dir, report.PDF{})
	healthHandler := handlers.NewHealthHandler(db)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(auth.RequireAdmin(dir, h))
	}

	mux.HandleFunc("GET /health", healthHandler.Health)

	// Survey management (directory admins)
	mux.HandleFunc("POST /surveys", admin(surveyHandler.CreateSurvey))
	mux.HandleFunc("PUT /surveys/{id}", admin(surveyHandler.UpdateSurvey))
	mux.HandleFunc("PUT /surveys/{id}/close", admin(surveyHandler.CloseSurvey))
	mux.HandleFunc("GET /surveys/{id}/voters", admin(resultsHandler.GetVoters))

	// Public reads
	mux.HandleFunc("GET /surveys", middleware.WithLogging(surveyHandler.ListSurveys))
	mux.HandleFunc("GET /surveys/{id}", middleware.WithLogging(surveyHandler.GetSurvey))

	// Voting
	mux.HandleFunc("POST /surveys/{id}/vote", middleware.WithLogging(votingHandler.Vote))

	// Results, gated until the survey ends unless the caller is an admin
	mux.HandleFunc("GET /surveys/{id}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /surveys/{id}/pdf", middleware.WithLogging(resultsHandler.GetReport))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("condo-survey API v1"))
	})

	return mux
}
