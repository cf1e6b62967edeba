package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/yaojiejia/portfolioAnalysis/internal/api/request"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/model"
	"github.com/yaojiejia/portfolioAnalysis/internal/repository"
)

// TradeService executes buy and sell orders for authenticated users at the
// current market price and records them in the transaction ledger.
type TradeService struct {
	db              *sqlx.DB
	transactionRepo *repository.TransactionRepository
	quoteService    *QuoteService
	userLocks       *keyedMutex
	now             func() time.Time
}

// NewTradeService creates a new TradeService with the provided dependencies.
func NewTradeService(
	db *sqlx.DB,
	transactionRepo *repository.TransactionRepository,
	quoteService *QuoteService,
) *TradeService {
	return &TradeService{
		db:              db,
		transactionRepo: transactionRepo,
		quoteService:    quoteService,
		userLocks:       newKeyedMutex(),
		now:             time.Now,
	}
}

// Trade buys or sells req.Shares of req.Symbol at the current quote.
//
// A sell is checked against the position folded from the user's existing
// transactions: no open position returns apperrors.ErrPositionNotFound and
// selling more than is held returns apperrors.ErrInsufficientShares.
// The check, the timestamp and the insert run in one database transaction, and
// trades of the same user are serialized so two concurrent sells cannot both
// pass the check.
func (s *TradeService) Trade(ctx context.Context, userID string, req request.TradeRequest) (model.Transaction, error) {
	action := strings.ToLower(strings.TrimSpace(req.Action))
	if action != model.TransactionTypeBuy && action != model.TransactionTypeSell {
		return model.Transaction{}, apperrors.ErrInvalidAction
	}
	if req.Shares < 1 {
		return model.Transaction{}, fmt.Errorf("%w: shares must be positive", apperrors.ErrMalformedTransaction)
	}

	symbol := NormalizeSymbol(req.Symbol)
	if symbol == "" {
		return model.Transaction{}, apperrors.ErrInvalidSymbol
	}

	quote, err := s.quoteService.GetQuote(ctx, symbol)
	if err != nil {
		return model.Transaction{}, err
	}

	unlock := s.userLocks.Lock(userID)
	defer unlock()

	var transaction model.Transaction
	err = repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := s.transactionRepo.WithTx(tx)

		if action == model.TransactionTypeSell {
			if err := s.checkSell(ctx, repo, userID, symbol, req.Shares); err != nil {
				return err
			}
		}

		// Stamped under the lock and never before the user's latest entry,
		// so a sell always sorts after the buys it was checked against.
		now, err := s.stamp(ctx, repo, userID)
		if err != nil {
			return err
		}

		transaction = model.Transaction{
			ID:         uuid.New().String(),
			UserID:     userID,
			Symbol:     symbol,
			Sector:     quote.Sector,
			Type:       action,
			Price:      quote.Price,
			Quantity:   req.Shares,
			TotalValue: quote.Price.Mul(decimal.NewFromInt(req.Shares)),
			Date:       now,
			CreatedAt:  now,
		}
		return repo.InsertTransaction(ctx, &transaction)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrPositionNotFound) || errors.Is(err, apperrors.ErrInsufficientShares) {
			return model.Transaction{}, err
		}
		log.Error().Err(err).Str("symbol", symbol).Str("action", action).Msg("trade failed")
		return model.Transaction{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToTrade, err)
	}

	log.Info().
		Str("symbol", symbol).
		Str("action", action).
		Int64("shares", req.Shares).
		Str("price", quote.Price.String()).
		Msg("trade recorded")

	return transaction, nil
}

// stamp returns the current time, clamped to the user's latest transaction
// date when the clock reads earlier than that.
func (s *TradeService) stamp(ctx context.Context, repo *repository.TransactionRepository, userID string) (time.Time, error) {
	now := s.now().UTC()
	latest, err := repo.GetLatestDate(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	if now.Before(latest) {
		now = latest
	}
	return now, nil
}

func (s *TradeService) checkSell(ctx context.Context, repo *repository.TransactionRepository, userID, symbol string, shares int64) error {
	transactions, err := repo.GetTransactions(ctx, model.TransactionFilter{UserID: userID, Symbol: symbol})
	if err != nil {
		return err
	}

	positions, err := AggregatePositions(transactions, false)
	if err != nil {
		return err
	}

	position, ok := findPosition(positions, symbol)
	if !ok {
		return apperrors.ErrPositionNotFound
	}
	if shares > position.Quantity {
		return apperrors.ErrInsufficientShares
	}
	return nil
}

// CurrentPrice returns the latest price of a symbol.
func (s *TradeService) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	quote, err := s.quoteService.GetQuote(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return quote.Price, nil
}
