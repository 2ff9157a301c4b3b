// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the survey API.

	mux := router.NewRouter(db, dir, notifier)

# Endpoints

	GET  /health                - Database liveness
	GET  /                      - Banner

Management (X-User-ID must be a directory admin):

	POST /surveys               - Create survey
	PUT  /surveys/{id}          - Replace survey (open, no votes yet)
	PUT  /surveys/{id}/close    - Close survey (idempotent)
	GET  /surveys/{id}/voters   - Participation stats and voter list

Public:

	GET  /surveys               - Active surveys
	GET  /surveys/{id}          - One survey with questions and options
	POST /surveys/{id}/vote     - Cast a ballot
	GET  /surveys/{id}/results  - Tally (admin=true for admins before close)
	GET  /surveys/{id}/pdf      - Tally as a PDF report

CORS and request ids are applied around the mux by the caller.
*/
package router
