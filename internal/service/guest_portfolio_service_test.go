package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/yaojiejia/portfolioAnalysis/internal/api/request"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/service"
	"github.com/yaojiejia/portfolioAnalysis/internal/store"
	"github.com/yaojiejia/portfolioAnalysis/internal/testutil"
)

// TestGuestPortfolioService tests the guest portfolio lifecycle.
func TestGuestPortfolioService(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*service.GuestPortfolioService, store.Store) {
		t.Helper()
		mockYahoo := testutil.NewMockYahooClient().WithSymbol("AAPL", 150.456, "Technology")
		st := store.NewMemoryStore()
		return testutil.NewTestGuestPortfolioService(t, st, testutil.NewTestQuoteService(t, mockYahoo)), st
	}

	t.Run("generates a cost basis below the price", func(t *testing.T) {
		svc, _ := setup(t)

		entries, err := svc.AddEntry(ctx, "guest-1", request.AddGuestEntryRequest{Symbol: "AAPL", Quantity: 2})
		if err != nil {
			t.Fatalf("AddEntry() returned unexpected error: %v", err)
		}

		e := entries[0]
		if !e.Price.Equal(decimal.RequireFromString("150.46")) {
			t.Errorf("Expected price rounded to 150.46, got %s", e.Price)
		}
		low := e.Price.Sub(decimal.NewFromInt(10))
		if e.CostBasis.GreaterThan(e.Price) || e.CostBasis.LessThan(low) {
			t.Errorf("Expected cost basis in [%s, %s], got %s", low, e.Price, e.CostBasis)
		}
		if e.CostBasis.Exponent() < -2 {
			t.Errorf("Expected cost basis with at most 2 decimals, got %s", e.CostBasis)
		}
	})

	t.Run("uses a supplied cost basis", func(t *testing.T) {
		svc, _ := setup(t)
		cb := decimal.RequireFromString("120.5")

		entries, err := svc.AddEntry(ctx, "guest-1", request.AddGuestEntryRequest{Symbol: "AAPL", Quantity: 2, CostBasis: &cb})
		if err != nil {
			t.Fatalf("AddEntry() returned unexpected error: %v", err)
		}

		e := entries[0]
		if !e.PL.Equal(decimal.RequireFromString("59.92")) {
			t.Errorf("Expected P/L 59.92, got %s", e.PL)
		}
		if !e.MarketValue.Equal(decimal.RequireFromString("300.92")) {
			t.Errorf("Expected market value 300.92, got %s", e.MarketValue)
		}
	})

	t.Run("selling more than held reports the held quantity", func(t *testing.T) {
		svc, _ := setup(t)
		if _, err := svc.AddEntry(ctx, "guest-1", request.AddGuestEntryRequest{Symbol: "AAPL", Quantity: 1}); err != nil {
			t.Fatalf("AddEntry() returned unexpected error: %v", err)
		}

		_, err := svc.SellEntry(ctx, "guest-1", 0, 2)
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Fatalf("Expected ErrInsufficientShares, got %v", err)
		}
		var sharesErr *service.InsufficientSharesError
		if !errors.As(err, &sharesErr) || sharesErr.Held != 1 {
			t.Fatalf("Expected InsufficientSharesError with Held 1, got %v", err)
		}
		if err.Error() != "You only have 1 share" {
			t.Errorf("Unexpected message: %q", err.Error())
		}
	})

	t.Run("selling from a missing index", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.SellEntry(ctx, "guest-1", 0, 1)
		if !errors.Is(err, apperrors.ErrGuestEntryNotFound) {
			t.Errorf("Expected ErrGuestEntryNotFound, got %v", err)
		}
	})

	t.Run("unreadable data is an empty portfolio", func(t *testing.T) {
		svc, st := setup(t)
		if err := st.Set(ctx, "guest:guest-1", []byte("not json"), 0); err != nil {
			t.Fatalf("Set() returned unexpected error: %v", err)
		}

		entries, err := svc.GetPortfolio(ctx, "guest-1")
		if err != nil {
			t.Fatalf("GetPortfolio() returned unexpected error: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("Expected empty portfolio, got %+v", entries)
		}
	})

	t.Run("clear removes everything", func(t *testing.T) {
		svc, _ := setup(t)
		if _, err := svc.AddEntry(ctx, "guest-1", request.AddGuestEntryRequest{Symbol: "AAPL", Quantity: 1}); err != nil {
			t.Fatalf("AddEntry() returned unexpected error: %v", err)
		}

		if err := svc.ClearPortfolio(ctx, "guest-1"); err != nil {
			t.Fatalf("ClearPortfolio() returned unexpected error: %v", err)
		}

		entries, err := svc.GetPortfolio(ctx, "guest-1")
		if err != nil {
			t.Fatalf("GetPortfolio() returned unexpected error: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("Expected empty portfolio after clear, got %d entries", len(entries))
		}
	})
}
