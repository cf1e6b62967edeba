package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/yaojiejia/portfolioAnalysis/internal/api/middleware"
	"github.com/yaojiejia/portfolioAnalysis/internal/api/response"
)

// TestValidateUUIDMiddleware mounts the middleware the way the router does
// for GET /api/transactions/{uuid}.
func TestValidateUUIDMiddleware(t *testing.T) {
	var gotID string
	r := chi.NewRouter()
	r.With(middleware.ValidateUUIDMiddleware).Get("/api/transactions/{uuid}", func(w http.ResponseWriter, r *http.Request) {
		gotID = chi.URLParam(r, "uuid")
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantError  string
	}{
		{name: "transaction id", id: "9b2f6c1e-4d3a-4f7b-8e21-0c5d7a9e3b64", wantStatus: http.StatusOK},
		{name: "upper-case transaction id", id: "9B2F6C1E-4D3A-4F7B-8E21-0C5D7A9E3B64", wantStatus: http.StatusOK},
		{name: "numeric id from the old portfolios table", id: "42", wantStatus: http.StatusBadRequest, wantError: "invalid UUID format"},
		{name: "ticker instead of id", id: "AAPL", wantStatus: http.StatusBadRequest, wantError: "invalid UUID format"},
		{name: "truncated id", id: "9b2f6c1e-4d3a-4f7b-8e21", wantStatus: http.StatusBadRequest, wantError: "invalid UUID format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID = ""
			req := httptest.NewRequest(http.MethodGet, "/api/transactions/"+tt.id, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				if gotID != tt.id {
					t.Errorf("Expected handler to see id %q, got %q", tt.id, gotID)
				}
				return
			}

			if gotID != "" {
				t.Error("Expected the transaction handler NOT to be called")
			}
			var body response.ErrorResponse
			//nolint:errcheck // Test assertion
			json.NewDecoder(w.Body).Decode(&body)
			if body.Error != tt.wantError {
				t.Errorf("Expected error %q, got %q", tt.wantError, body.Error)
			}
		})
	}

	t.Run("missing uuid param", func(t *testing.T) {
		called := false
		mw := middleware.ValidateUUIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			called = true
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/transactions/", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chi.NewRouteContext()))
		w := httptest.NewRecorder()

		mw.ServeHTTP(w, req)

		if called {
			t.Error("Expected the transaction handler NOT to be called")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}
