package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yaojiejia/portfolioAnalysis/internal/api/middleware"
)

func TestNewCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.NewCORS([]string{" http://localhost:3000", "", "https://app.example.com "})(next)

	t.Run("preflight from an allowed origin permits credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/trade", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Expected allowed origin to be echoed, got %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Expected credentials to be allowed, got %q", got)
		}
	})

	t.Run("trimmed origin from the setting is allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stock?symbol=AAPL", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Errorf("Expected allowed origin to be echoed, got %q", got)
		}
	})

	t.Run("unknown origin gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stock?symbol=AAPL", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Expected no Access-Control-Allow-Origin, got %q", got)
		}
	})
}
