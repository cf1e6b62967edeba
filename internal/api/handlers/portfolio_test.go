package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/yaojiejia/portfolioAnalysis/internal/model"
	"github.com/yaojiejia/portfolioAnalysis/internal/testutil"
)

func TestPortfolioHandler_Positions(t *testing.T) {
	setupHandler := func(t *testing.T) (*PortfolioHandler, *sqlx.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		qs := testutil.NewTestQuoteService(t, testutil.NewMockYahooClient())
		return NewPortfolioHandler(testutil.NewTestPortfolioService(t, db, qs)), db
	}

	type positionsResponse struct {
		Positions []model.Position `json:"positions"`
	}

	t.Run("returns open positions only by default", func(t *testing.T) {
		handler, db := setupHandler(t)
		user := testutil.NewUser().Build(t, db)

		testutil.NewTransaction(user.ID).WithSymbol("AAPL").WithQuantity(10).Build(t, db)
		testutil.NewTransaction(user.ID).WithSymbol("MSFT").WithQuantity(4).Build(t, db)
		testutil.NewTransaction(user.ID).WithSymbol("MSFT").WithQuantity(4).Sell().Build(t, db)

		req := testutil.AsUser(httptest.NewRequest(http.MethodGet, "/api/portfolio/positions", nil), user.ID)
		w := httptest.NewRecorder()

		handler.Positions(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response positionsResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response.Positions) != 1 || response.Positions[0].Symbol != "AAPL" {
			t.Errorf("Expected only AAPL, got %+v", response.Positions)
		}
	})

	t.Run("includes closed positions on request", func(t *testing.T) {
		handler, db := setupHandler(t)
		user := testutil.NewUser().Build(t, db)

		testutil.NewTransaction(user.ID).WithSymbol("MSFT").WithQuantity(4).Build(t, db)
		testutil.NewTransaction(user.ID).WithSymbol("MSFT").WithQuantity(4).WithPrice(110).Sell().Build(t, db)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/portfolio/positions", map[string]string{"includeClosed": "true"})
		req = testutil.AsUser(req, user.ID)
		w := httptest.NewRecorder()

		handler.Positions(w, req)

		var response positionsResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response.Positions) != 1 {
			t.Fatalf("Expected 1 position, got %d", len(response.Positions))
		}
		p := response.Positions[0]
		if p.Quantity != 0 {
			t.Errorf("Expected closed position, got quantity %d", p.Quantity)
		}
		if !p.RealizedGainLoss.Equal(decimal.NewFromInt(40)) {
			t.Errorf("Expected realized gain 40, got %s", p.RealizedGainLoss)
		}
	})

	t.Run("returns 400 for invalid includeClosed", func(t *testing.T) {
		handler, db := setupHandler(t)
		user := testutil.NewUser().Build(t, db)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/portfolio/positions", map[string]string{"includeClosed": "maybe"})
		req = testutil.AsUser(req, user.ID)
		w := httptest.NewRecorder()

		handler.Positions(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPortfolioHandler_Summary(t *testing.T) {
	t.Run("values positions at the latest quote", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		mockYahoo := testutil.NewMockYahooClient().WithSymbol("AAPL", 150, "Technology")
		handler := NewPortfolioHandler(testutil.NewTestPortfolioService(t, db, testutil.NewTestQuoteService(t, mockYahoo)))
		user := testutil.NewUser().Build(t, db)

		testutil.NewTransaction(user.ID).WithSymbol("AAPL").WithPrice(100).WithQuantity(10).Build(t, db)

		req := testutil.AsUser(httptest.NewRequest(http.MethodGet, "/api/portfolio/summary", nil), user.ID)
		w := httptest.NewRecorder()

		handler.Summary(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var summary model.PortfolioSummary
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&summary)

		if !summary.TotalValue.Equal(decimal.NewFromInt(1500)) {
			t.Errorf("Expected total value 1500, got %s", summary.TotalValue)
		}
		if !summary.TotalGainPercent.Equal(decimal.NewFromInt(50)) {
			t.Errorf("Expected gain 50%%, got %s", summary.TotalGainPercent)
		}
		if summary.Display.TotalValue != "$1,500.00" {
			t.Errorf("Expected display $1,500.00, got %s", summary.Display.TotalValue)
		}
	})

	t.Run("returns an empty summary for a new user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewPortfolioHandler(testutil.NewTestPortfolioService(t, db, testutil.NewTestQuoteService(t, testutil.NewMockYahooClient())))
		user := testutil.NewUser().Build(t, db)

		req := testutil.AsUser(httptest.NewRequest(http.MethodGet, "/api/portfolio/summary", nil), user.ID)
		w := httptest.NewRecorder()

		handler.Summary(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var summary model.PortfolioSummary
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&summary)

		if !summary.TotalValue.IsZero() {
			t.Errorf("Expected zero total value, got %s", summary.TotalValue)
		}
		if summary.BestPerformer != nil {
			t.Errorf("Expected no best performer, got %+v", summary.BestPerformer)
		}
	})
}
