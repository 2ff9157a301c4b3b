// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request IDs and Logging

	handler := middleware.CORS(middleware.RequestID(mux))
	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

RequestID accepts a UUID in X-Request-ID or generates one. WithLogging
logs one line per request with the id, status and duration.

# Errors

Handlers return typed errors from the fault package and write them with

	middleware.FaultResponse(w, r, err)

Validation and state errors map to 400, not found to 404, forbidden to 403,
conflicts to 409 and everything else to 500. Internal causes are logged,
never returned to the client.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")

ParseJSONBody decodes at most 1 MiB of request body.
*/
package middleware
