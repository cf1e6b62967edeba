package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/yaojiejia/portfolioAnalysis/internal/api/request"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/model"
	"github.com/yaojiejia/portfolioAnalysis/internal/store"
)

// costBasisSpread is the upper bound of the random discount applied to the
// price to produce a placeholder cost basis.
const costBasisSpread = 10

// GuestPortfolioService keeps the portfolio of a non-authenticated visitor as
// a JSON array in the Store. Entries are valued at the price seen when they
// were added; the cost basis is a placeholder unless the client supplies one.
type GuestPortfolioService struct {
	store        store.Store
	quoteService *QuoteService
	ttl          time.Duration
	guestLocks   *keyedMutex
	randFloat    func() float64
}

// NewGuestPortfolioService creates a new GuestPortfolioService. ttl bounds how
// long an untouched guest portfolio is kept.
func NewGuestPortfolioService(st store.Store, quoteService *QuoteService, ttl time.Duration) *GuestPortfolioService {
	return &GuestPortfolioService{
		store:        st,
		quoteService: quoteService,
		ttl:          ttl,
		guestLocks:   newKeyedMutex(),
		randFloat:    rand.Float64,
	}
}

func guestKey(guestID string) string {
	return "guest:" + guestID
}

// GetPortfolio returns the guest's entries. Missing or unreadable data is an empty portfolio.
func (s *GuestPortfolioService) GetPortfolio(ctx context.Context, guestID string) ([]model.PortfolioEntry, error) {
	data, err := s.store.Get(ctx, guestKey(guestID))
	if errors.Is(err, store.ErrNotFound) {
		return []model.PortfolioEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToLoadGuestPortfolio, err)
	}

	var entries []model.PortfolioEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Str("guest_id", guestID).Msg("discarding unreadable guest portfolio")
		return []model.PortfolioEntry{}, nil
	}
	if entries == nil {
		entries = []model.PortfolioEntry{}
	}
	return entries, nil
}

// AddEntry appends a line priced at the latest quote and returns the updated portfolio.
func (s *GuestPortfolioService) AddEntry(ctx context.Context, guestID string, req request.AddGuestEntryRequest) ([]model.PortfolioEntry, error) {
	symbol := NormalizeSymbol(req.Symbol)
	if symbol == "" {
		return nil, apperrors.ErrInvalidSymbol
	}

	quote, err := s.quoteService.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	unlock := s.guestLocks.Lock(guestID)
	defer unlock()

	entries, err := s.GetPortfolio(ctx, guestID)
	if err != nil {
		return nil, err
	}

	price := quote.Price.Round(2)

	var costBasis decimal.Decimal
	if req.CostBasis != nil {
		costBasis = req.CostBasis.Round(2)
	} else {
		discount := decimal.NewFromFloat(s.randFloat() * costBasisSpread)
		costBasis = price.Sub(discount).Round(2)
	}

	entry := model.PortfolioEntry{
		Stock:     symbol,
		Quantity:  req.Quantity,
		Price:     price,
		CostBasis: costBasis,
	}
	revalue(&entry)

	entries = append(entries, entry)
	if err := s.save(ctx, guestID, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SellEntry removes shares from the entry at index. Selling every share
// removes the entry. Returns the updated portfolio.
func (s *GuestPortfolioService) SellEntry(ctx context.Context, guestID string, index int, shares int64) ([]model.PortfolioEntry, error) {
	unlock := s.guestLocks.Lock(guestID)
	defer unlock()

	entries, err := s.GetPortfolio(ctx, guestID)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(entries) {
		return nil, apperrors.ErrGuestEntryNotFound
	}
	if shares < 1 {
		return nil, fmt.Errorf("%w: shares must be positive", apperrors.ErrMalformedTransaction)
	}

	entry := &entries[index]
	if shares > entry.Quantity {
		return nil, &InsufficientSharesError{Held: entry.Quantity}
	}

	entry.Quantity -= shares
	if entry.Quantity == 0 {
		entries = append(entries[:index], entries[index+1:]...)
	} else {
		revalue(entry)
	}

	if err := s.save(ctx, guestID, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ClearPortfolio deletes every entry.
func (s *GuestPortfolioService) ClearPortfolio(ctx context.Context, guestID string) error {
	if err := s.store.Delete(ctx, guestKey(guestID)); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToSaveGuestPortfolio, err)
	}
	return nil
}

func (s *GuestPortfolioService) save(ctx context.Context, guestID string, entries []model.PortfolioEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToSaveGuestPortfolio, err)
	}
	if err := s.store.Set(ctx, guestKey(guestID), data, s.ttl); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToSaveGuestPortfolio, err)
	}
	return nil
}

// revalue recomputes market value and P/L from the stored price and cost basis.
func revalue(e *model.PortfolioEntry) {
	qty := decimal.NewFromInt(e.Quantity)
	e.MarketValue = e.Price.Mul(qty).Round(2)
	e.PL = e.Price.Sub(e.CostBasis).Mul(qty).Round(2)
}

// InsufficientSharesError reports a guest sale larger than the entry.
// It matches apperrors.ErrInsufficientShares with errors.Is.
type InsufficientSharesError struct {
	Held int64
}

func (e *InsufficientSharesError) Error() string {
	unit := "shares"
	if e.Held == 1 {
		unit = "share"
	}
	return fmt.Sprintf("You only have %d %s", e.Held, unit)
}

func (e *InsufficientSharesError) Is(target error) bool {
	return target == apperrors.ErrInsufficientShares
}
