package service

import (
	"context"
	"strings"

	"github.com/yaojiejia/portfolioAnalysis/internal/model"
	"github.com/yaojiejia/portfolioAnalysis/internal/repository"
)

// TransactionService handles read access to a user's transaction ledger.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
}

// NewTransactionService creates a new TransactionService with the provided repository dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
	}
}

// GetTransactions retrieves the user's transactions ordered by date.
// When symbol is non-empty only transactions for that symbol are returned.
func (s *TransactionService) GetTransactions(ctx context.Context, userID, symbol string) ([]model.Transaction, error) {
	return s.transactionRepo.GetTransactions(ctx, model.TransactionFilter{
		UserID: userID,
		Symbol: strings.ToUpper(strings.TrimSpace(symbol)),
	})
}

// GetTransaction retrieves a single transaction owned by the user.
func (s *TransactionService) GetTransaction(ctx context.Context, userID, transactionID string) (model.Transaction, error) {
	return s.transactionRepo.GetTransaction(ctx, userID, transactionID)
}
