// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/condo-survey/fault"
	"github.com/danielhkuo/condo-survey/middleware"
	"github.com/danielhkuo/condo-survey/models"
)

// UserHeader carries the WordPress user id of the caller. It is set by
// the site proxy in front of the service.
const UserHeader = "X-User-ID"

var (
	ErrMissingUser = errors.New("missing " + UserHeader + " header")
	ErrInvalidUser = errors.New("invalid " + UserHeader + " header")
)

// Resolver looks users up in the voter directory.
type Resolver interface {
	Resolve(ctx context.Context, userID int64) (models.Identity, error)
}

type callerKey struct{}

// UserID parses the caller id from the request headers.
func UserID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(UserHeader))
	if raw == "" {
		return 0, ErrMissingUser
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, ErrInvalidUser
	}
	return id, nil
}

// IsAdmin reports whether the request comes from a directory admin.
// Anonymous or unknown callers are not admins.
func IsAdmin(r *http.Request, dir Resolver) (bool, error) {
	id, err := UserID(r)
	if err != nil {
		return false, nil
	}
	ident, err := dir.Resolve(r.Context(), id)
	if err != nil {
		return false, fault.NewInternal("failed to resolve caller", err)
	}
	return ident.Exists && ident.Admin, nil
}

// RequireAdmin rejects callers that are not directory admins: 401 when
// the header is absent or malformed, 403 when the user is not an admin.
func RequireAdmin(dir Resolver, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := UserID(r)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		ident, err := dir.Resolve(r.Context(), id)
		if err != nil {
			middleware.FaultResponse(w, r, fault.NewInternal("failed to resolve caller", err))
			return
		}
		if !ident.Exists || !ident.Admin {
			middleware.FaultResponse(w, r, fault.NewForbidden("administrator access required"))
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, ident)))
	}
}

// Caller returns the identity stored by RequireAdmin.
func Caller(ctx context.Context) (models.Identity, bool) {
	ident, ok := ctx.Value(callerKey{}).(models.Identity)
	return ident, ok
}
