// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/condo-survey/directory"
	"github.com/danielhkuo/condo-survey/models"
)

type brokenResolver struct{}

func (brokenResolver) Resolve(context.Context, int64) (models.Identity, error) {
	return models.Identity{}, errors.New("connection refused")
}

func testDirectory() *directory.Static {
	return directory.NewStatic(
		models.Identity{ID: 1, Eligible: true, Admin: true, DisplayName: "Board Admin"},
		models.Identity{ID: 2, Eligible: true, DisplayName: "Resident"},
	)
}

func request(userID string) *http.Request {
	req := httptest.NewRequest("GET", "/surveys/1/voters", nil)
	if userID != "" {
		req.Header.Set(UserHeader, userID)
	}
	return req
}

func TestUserID(t *testing.T) {
	tests := []struct {
		header   string
		expected int64
		err      error
	}{
		{"7", 7, nil},
		{" 12 ", 12, nil},
		{"", 0, ErrMissingUser},
		{"abc", 0, ErrInvalidUser},
		{"0", 0, ErrInvalidUser},
		{"-4", 0, ErrInvalidUser},
	}

	for _, tt := range tests {
		id, err := UserID(request(tt.header))
		if id != tt.expected || !errors.Is(err, tt.err) {
			t.Errorf("UserID(%q) = %d, %v; expected %d, %v", tt.header, id, err, tt.expected, tt.err)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	dir := testDirectory()

	var caller models.Identity
	handler := RequireAdmin(dir, func(w http.ResponseWriter, r *http.Request) {
		caller, _ = Caller(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		header   string
		expected int
	}{
		{"admin", "1", http.StatusOK},
		{"resident", "2", http.StatusForbidden},
		{"unknown user", "99", http.StatusForbidden},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "admin", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler(w, request(tt.header))
			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expected, w.Code, w.Body.String())
			}
		})
	}

	if caller.ID != 1 || !caller.Admin {
		t.Errorf("Expected admin identity in context, got %+v", caller)
	}
}

func TestRequireAdminDirectoryFailure(t *testing.T) {
	called := false
	handler := RequireAdmin(brokenResolver{}, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	w := httptest.NewRecorder()
	handler(w, request("1"))

	if w.Code != http.StatusInternalServerError || called {
		t.Errorf("Expected 500 without calling next, got %d", w.Code)
	}
}

func TestIsAdmin(t *testing.T) {
	dir := testDirectory()

	tests := []struct {
		header   string
		expected bool
	}{
		{"1", true},
		{"2", false},
		{"99", false},
		{"", false},
		{"x", false},
	}

	for _, tt := range tests {
		got, err := IsAdmin(request(tt.header), dir)
		if err != nil {
			t.Fatalf("IsAdmin(%q): %v", tt.header, err)
		}
		if got != tt.expected {
			t.Errorf("IsAdmin(%q) = %v, expected %v", tt.header, got, tt.expected)
		}
	}

	if _, err := IsAdmin(request("1"), brokenResolver{}); err == nil {
		t.Error("Expected directory failure to surface")
	}
}

func TestCallerWithoutMiddleware(t *testing.T) {
	if _, ok := Caller(context.Background()); ok {
		t.Error("Expected no caller")
	}
}
