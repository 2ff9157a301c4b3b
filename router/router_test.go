// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/condo-survey/testutil"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	return NewRouter(testutil.SetupTestDB(t), testutil.TestDirectory(), nil)
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux := newTestMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "condo-survey API v1" {
		t.Errorf("Unexpected body '%s'", w.Body.String())
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/nowhere", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", w.Code)
	}
}

func TestRouteExistence(t *testing.T) {
	mux := newTestMux(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"POST", "/surveys"},
		{"GET", "/surveys"},
		{"GET", "/surveys/1"},
		{"PUT", "/surveys/1"},
		{"POST", "/surveys/1/vote"},
		{"GET", "/surveys/1/results"},
		{"PUT", "/surveys/1/close"},
		{"GET", "/surveys/1/voters"},
		{"GET", "/surveys/1/pdf"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			// 400, 401, 404 are all valid handler responses
			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux := newTestMux(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"DELETE", "/surveys/1"},
		{"GET", "/surveys/1/vote"},
		{"POST", "/surveys/1/close"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestManagementRoutesRequireAdmin(t *testing.T) {
	mux := newTestMux(t)

	routes := []struct {
		method string
		path   string
	}{
		{"POST", "/surveys"},
		{"PUT", "/surveys/1"},
		{"PUT", "/surveys/1/close"},
		{"GET", "/surveys/1/voters"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, testutil.MakeRequest(rt.method, rt.path, nil, nil))
			testutil.AssertStatus(t, w, http.StatusUnauthorized)

			w = httptest.NewRecorder()
			mux.ServeHTTP(w, testutil.MakeRequest(rt.method, rt.path, nil, map[string]string{"X-User-ID": "2"}))
			testutil.AssertStatus(t, w, http.StatusForbidden)
		})
	}
}
