// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth identifies callers and guards management routes.

The service sits behind the condominium's WordPress site, which forwards
the logged-in user's id in the X-User-ID header. Roles come from the voter
directory, never from the request.

	mux.HandleFunc("POST /surveys", auth.RequireAdmin(dir, h.CreateSurvey))

RequireAdmin answers 401 when the header is missing or malformed and 403
when the user is not an administrator. IsAdmin is the non-blocking variant
used where admins merely see more, such as early results.
*/
package auth
