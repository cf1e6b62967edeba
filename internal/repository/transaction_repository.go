package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/model"
)

// TransactionRepository provides data access methods for the transaction table.
// Transactions are append-only; positions are derived from them.
type TransactionRepository struct {
	db sqlx.ExtContext
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db sqlx.ExtContext) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *TransactionRepository) WithTx(tx *sqlx.Tx) *TransactionRepository {
	return &TransactionRepository{db: tx}
}

type transactionRow struct {
	ID         string          `db:"id"`
	UserID     string          `db:"user_id"`
	Symbol     string          `db:"symbol"`
	Sector     string          `db:"sector"`
	Type       string          `db:"type"`
	Price      decimal.Decimal `db:"price"`
	Quantity   int64           `db:"quantity"`
	TotalValue decimal.Decimal `db:"total_value"`
	Date       string          `db:"date"`
	CreatedAt  string          `db:"created_at"`
}

func (row transactionRow) toModel() (model.Transaction, error) {
	date, err := ParseTime(row.Date)
	if err != nil {
		return model.Transaction{}, err
	}
	createdAt, err := ParseTime(row.CreatedAt)
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		ID:         row.ID,
		UserID:     row.UserID,
		Symbol:     row.Symbol,
		Sector:     row.Sector,
		Type:       row.Type,
		Price:      row.Price,
		Quantity:   row.Quantity,
		TotalValue: row.TotalValue,
		Date:       date,
		CreatedAt:  createdAt,
	}, nil
}

const transactionColumns = `id, user_id, symbol, sector, type, price, quantity, total_value, date, created_at`

// GetTransactions retrieves a user's transactions, optionally restricted to one symbol,
// sorted by date in ascending order with ties in insertion order.
// Returns an empty slice when nothing matches.
func (r *TransactionRepository) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE user_id = ?`
	args := []any{filter.UserID}

	if filter.Symbol != "" {
		query += ` AND symbol = ?`
		args = append(args, filter.Symbol)
	}
	query += ` ORDER BY date ASC, seq ASC`

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		var row transactionRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		t, err := row.toModel()
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// GetTransaction retrieves a single transaction owned by userID.
// Returns apperrors.ErrTransactionNotFound if it does not exist or belongs to another user.
func (r *TransactionRepository) GetTransaction(ctx context.Context, userID, transactionID string) (model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE id = ? AND user_id = ?`

	var row transactionRow
	err := sqlx.GetContext(ctx, r.db, &row, r.db.Rebind(query), transactionID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to query transaction: %w", err)
	}

	return row.toModel()
}

// GetLatestDate returns the date of the user's most recent transaction,
// or the zero time when the user has none.
func (r *TransactionRepository) GetLatestDate(ctx context.Context, userID string) (time.Time, error) {
	query := `SELECT date FROM "transaction" WHERE user_id = ? ORDER BY date DESC, seq DESC LIMIT 1`

	var date string
	err := sqlx.GetContext(ctx, r.db, &date, r.db.Rebind(query), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest transaction date: %w", err)
	}
	return ParseTime(date)
}

// InsertTransaction appends a transaction. Its seq is one past the user's
// highest, so concurrent writers for the same user collide on the
// (user_id, seq) index instead of interleaving.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO "transaction" (` + transactionColumns + `, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM "transaction" WHERE user_id = ?))
	`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		t.ID,
		t.UserID,
		t.Symbol,
		t.Sector,
		t.Type,
		t.Price,
		t.Quantity,
		t.TotalValue,
		FormatTime(t.Date),
		FormatTime(t.CreatedAt),
		t.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction sequence for user %s", apperrors.ErrDuplicateEntry, t.UserID)
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetOpenSymbols returns every symbol that at least one user still holds.
// Each user's net quantity is non-negative, so a positive sum across users
// means somebody holds the symbol.
func (r *TransactionRepository) GetOpenSymbols(ctx context.Context) ([]string, error) {
	query := `
		SELECT symbol
		FROM "transaction"
		GROUP BY symbol
		HAVING SUM(CASE WHEN type = 'buy' THEN quantity ELSE -quantity END) > 0
		ORDER BY symbol
	`

	symbols := []string{}
	if err := sqlx.SelectContext(ctx, r.db, &symbols, query); err != nil {
		return nil, fmt.Errorf("failed to query open symbols: %w", err)
	}
	return symbols, nil
}
