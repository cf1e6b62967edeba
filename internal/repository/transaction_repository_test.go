package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/model"
	"github.com/yaojiejia/portfolioAnalysis/internal/repository"
	"github.com/yaojiejia/portfolioAnalysis/internal/testutil"
)

func TestTransactionRepository_GetTransactions(t *testing.T) {
	ctx := context.Background()
	day := func(n int) time.Time {
		return time.Date(2024, 5, n, 14, 30, 0, 0, time.UTC)
	}

	t.Run("orders by date and filters by symbol", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)
		user := testutil.NewUser().Build(t, db)

		third := testutil.NewTransaction(user.ID).WithSymbol("AAPL").WithDate(day(3)).Build(t, db)
		first := testutil.NewTransaction(user.ID).WithSymbol("AAPL").WithDate(day(1)).Build(t, db)
		testutil.NewTransaction(user.ID).WithSymbol("MSFT").WithDate(day(2)).Build(t, db)

		all, err := repo.GetTransactions(ctx, model.TransactionFilter{UserID: user.ID})
		if err != nil {
			t.Fatalf("GetTransactions() returned unexpected error: %v", err)
		}
		if len(all) != 3 || all[0].ID != first.ID || all[2].ID != third.ID {
			t.Errorf("Expected 3 transactions ordered by date, got %+v", all)
		}

		aapl, err := repo.GetTransactions(ctx, model.TransactionFilter{UserID: user.ID, Symbol: "AAPL"})
		if err != nil {
			t.Fatalf("GetTransactions() returned unexpected error: %v", err)
		}
		if len(aapl) != 2 {
			t.Errorf("Expected 2 AAPL transactions, got %d", len(aapl))
		}
	})

	t.Run("returns empty slice, not nil", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		txs, err := repo.GetTransactions(ctx, model.TransactionFilter{UserID: testutil.MakeID()})
		if err != nil {
			t.Fatalf("GetTransactions() returned unexpected error: %v", err)
		}
		if txs == nil {
			t.Error("Expected non-nil slice")
		}
	})

	t.Run("round-trips prices and dates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)
		user := testutil.NewUser().Build(t, db)

		built := testutil.NewTransaction(user.ID).WithPrice(187.44).WithQuantity(3).WithDate(day(7)).Build(t, db)

		got, err := repo.GetTransaction(ctx, user.ID, built.ID)
		if err != nil {
			t.Fatalf("GetTransaction() returned unexpected error: %v", err)
		}
		if !got.Price.Equal(decimal.RequireFromString("187.44")) {
			t.Errorf("Expected price 187.44, got %s", got.Price)
		}
		if !got.TotalValue.Equal(decimal.RequireFromString("562.32")) {
			t.Errorf("Expected total value 562.32, got %s", got.TotalValue)
		}
		if !got.Date.Equal(day(7)) {
			t.Errorf("Expected date %v, got %v", day(7), got.Date)
		}
	})
}

func TestTransactionRepository_SameDateOrder(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	user := testutil.NewUser().Build(t, db)
	at := time.Date(2024, 5, 6, 14, 30, 0, 0, time.UTC)

	// Ids are random, so only the insertion order can keep the sell between the buys.
	buy := testutil.NewTransaction(user.ID).WithSymbol("AAPL").WithQuantity(3).WithDate(at).Build(t, db)
	sell := testutil.NewTransaction(user.ID).WithSymbol("AAPL").WithQuantity(3).Sell().WithDate(at).Build(t, db)
	rebuy := testutil.NewTransaction(user.ID).WithSymbol("AAPL").WithQuantity(2).WithDate(at).Build(t, db)

	txs, err := repo.GetTransactions(ctx, model.TransactionFilter{UserID: user.ID, Symbol: "AAPL"})
	if err != nil {
		t.Fatalf("GetTransactions() returned unexpected error: %v", err)
	}
	if len(txs) != 3 || txs[0].ID != buy.ID || txs[1].ID != sell.ID || txs[2].ID != rebuy.ID {
		t.Fatalf("Expected buy, sell, buy in insertion order, got %+v", txs)
	}
}

func TestTransactionRepository_GetLatestDate(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	user := testutil.NewUser().Build(t, db)

	latest, err := repo.GetLatestDate(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetLatestDate() returned unexpected error: %v", err)
	}
	if !latest.IsZero() {
		t.Errorf("Expected zero time without transactions, got %v", latest)
	}

	newest := time.Date(2024, 5, 9, 10, 0, 0, 0, time.UTC)
	testutil.NewTransaction(user.ID).WithDate(newest).Build(t, db)
	testutil.NewTransaction(user.ID).WithDate(newest.AddDate(0, 0, -3)).Build(t, db)
	testutil.NewTransaction(testutil.NewUser().Build(t, db).ID).WithDate(newest.AddDate(0, 0, 1)).Build(t, db)

	latest, err = repo.GetLatestDate(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetLatestDate() returned unexpected error: %v", err)
	}
	if !latest.Equal(newest) {
		t.Errorf("Expected %v, got %v", newest, latest)
	}
}

func TestTransactionRepository_GetTransaction(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	owner := testutil.NewUser().Build(t, db)
	other := testutil.NewUser().Build(t, db)
	tx := testutil.NewTransaction(owner.ID).Build(t, db)

	if _, err := repo.GetTransaction(ctx, other.ID, tx.ID); !errors.Is(err, apperrors.ErrTransactionNotFound) {
		t.Errorf("Expected ErrTransactionNotFound for another user, got %v", err)
	}
	if _, err := repo.GetTransaction(ctx, owner.ID, testutil.MakeID()); !errors.Is(err, apperrors.ErrTransactionNotFound) {
		t.Errorf("Expected ErrTransactionNotFound for unknown id, got %v", err)
	}
}

func TestTransactionRepository_GetOpenSymbols(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	alice := testutil.NewUser().Build(t, db)
	bob := testutil.NewUser().Build(t, db)

	// AAPL held by alice, MSFT closed by bob, TSLA held by bob.
	testutil.NewTransaction(alice.ID).WithSymbol("AAPL").WithQuantity(2).Build(t, db)
	testutil.NewTransaction(bob.ID).WithSymbol("MSFT").WithQuantity(4).Build(t, db)
	testutil.NewTransaction(bob.ID).WithSymbol("MSFT").WithQuantity(4).Sell().Build(t, db)
	testutil.NewTransaction(bob.ID).WithSymbol("TSLA").WithQuantity(1).Build(t, db)

	symbols, err := repo.GetOpenSymbols(ctx)
	if err != nil {
		t.Fatalf("GetOpenSymbols() returned unexpected error: %v", err)
	}

	if len(symbols) != 2 || symbols[0] != "AAPL" || symbols[1] != "TSLA" {
		t.Errorf("Expected [AAPL TSLA], got %v", symbols)
	}
}

func TestRunInTx(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	user := testutil.NewUser().Build(t, db)
	repo := repository.NewTransactionRepository(db)

	rollback := errors.New("abort")
	err := repository.RunInTx(ctx, db, func(tx *sqlx.Tx) error {
		txn := testutil.NewTransaction(user.ID).Model()
		if err := repo.WithTx(tx).InsertTransaction(ctx, &txn); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("Expected the callback error, got %v", err)
	}

	txs, err := repo.GetTransactions(ctx, model.TransactionFilter{UserID: user.ID})
	if err != nil {
		t.Fatalf("GetTransactions() returned unexpected error: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("Expected the insert to be rolled back, got %d transactions", len(txs))
	}
}
