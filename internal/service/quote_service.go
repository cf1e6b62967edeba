package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/model"
	"github.com/yaojiejia/portfolioAnalysis/internal/store"
	"github.com/yaojiejia/portfolioAnalysis/internal/yahoo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Period values accepted by GetStock besides the Yahoo ranges.
const (
	PeriodNow   = "now"
	PeriodToday = "today"
)

// UnknownSector is reported when a symbol has no sector classification.
const UnknownSector = "N/A"

// unknownProfileTTL caps how long a failed profile lookup is remembered.
const unknownProfileTTL = 10 * time.Minute

// QuoteService serves the search and display operations: latest quotes,
// daily history and sector lookups. Quotes and profiles are cached in the
// Store; concurrent cache misses for the same symbol share one upstream call.
type QuoteService struct {
	yahoo       yahoo.Client
	store       store.Store
	quoteTTL    time.Duration
	profileTTL  time.Duration
	concurrency int
	group       singleflight.Group
}

// NewQuoteService creates a new QuoteService. concurrency bounds the number of
// upstream calls made by GetQuotes and RefreshQuotes.
func NewQuoteService(client yahoo.Client, st store.Store, quoteTTL, profileTTL time.Duration, concurrency int) *QuoteService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &QuoteService{
		yahoo:       client,
		store:       st,
		quoteTTL:    quoteTTL,
		profileTTL:  profileTTL,
		concurrency: concurrency,
	}
}

// quoteEntry is what gets cached per symbol: the quote plus the short
// history it was derived from.
type quoteEntry struct {
	Quote   model.Quote        `json:"quote"`
	History []model.PricePoint `json:"history"`
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// GetQuote returns the latest quote for a symbol, served from cache when fresh.
func (s *QuoteService) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	entry, err := s.loadEntry(ctx, symbol, false)
	if err != nil {
		return model.Quote{}, err
	}
	return entry.Quote, nil
}

// GetStock returns price data for a symbol over the requested period.
//
// Period "now" (the default) returns the latest price as data; "today" returns
// the most recent daily OHLCV row; any Yahoo range returns the full history for
// that range as data. Unsupported periods return apperrors.ErrInvalidPeriod.
func (s *QuoteService) GetStock(ctx context.Context, symbol, period string) (model.StockResponse, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return model.StockResponse{}, apperrors.ErrInvalidSymbol
	}

	period = strings.TrimSpace(period)
	if period == "" {
		period = PeriodNow
	}
	if period != PeriodNow && period != PeriodToday && !yahoo.ValidRanges[period] {
		return model.StockResponse{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidPeriod, period)
	}

	entry, err := s.loadEntry(ctx, symbol, false)
	if err != nil {
		return model.StockResponse{}, err
	}

	resp := model.StockResponse{
		Symbol:       symbol,
		Period:       period,
		Sector:       entry.Quote.Sector,
		ShortName:    entry.Quote.ShortName,
		Currency:     entry.Quote.Currency,
		CurrentPrice: entry.Quote.Price,
		History:      entry.History,
	}

	switch period {
	case PeriodNow:
		resp.Data = entry.Quote.Price
	case PeriodToday:
		if len(entry.History) == 0 {
			return model.StockResponse{}, apperrors.ErrNoPriceData
		}
		resp.Data = entry.History[len(entry.History)-1]
	default:
		history, err := s.history(ctx, symbol, period)
		if err != nil {
			return model.StockResponse{}, err
		}
		resp.Data = history
		resp.History = history
	}

	return resp, nil
}

// GetQuotes fetches quotes for several symbols concurrently. A failing symbol
// does not fail the batch; its error is reported in the second map.
func (s *QuoteService) GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, map[string]error) {
	return s.fetchAll(ctx, symbols, false)
}

// RefreshQuotes re-fetches quotes for the given symbols, bypassing the cache,
// and stores the results. It returns the number of symbols refreshed.
func (s *QuoteService) RefreshQuotes(ctx context.Context, symbols []string) (int, map[string]error) {
	quotes, errs := s.fetchAll(ctx, symbols, true)
	return len(quotes), errs
}

func (s *QuoteService) fetchAll(ctx context.Context, symbols []string, refresh bool) (map[string]model.Quote, map[string]error) {
	var mu sync.Mutex
	quotes := make(map[string]model.Quote, len(symbols))
	errs := make(map[string]error)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, symbol := range symbols {
		symbol := NormalizeSymbol(symbol)
		g.Go(func() error {
			entry, err := s.loadEntry(gctx, symbol, refresh)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[symbol] = err
				return nil
			}
			quotes[symbol] = entry.Quote
			return nil
		})
	}
	//nolint:errcheck // Workers never return an error.
	g.Wait()

	return quotes, errs
}

// loadEntry returns the cached entry for a symbol or fetches a fresh one.
func (s *QuoteService) loadEntry(ctx context.Context, symbol string, refresh bool) (quoteEntry, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return quoteEntry{}, apperrors.ErrInvalidSymbol
	}

	key := "quote:" + symbol
	if !refresh {
		var cached quoteEntry
		if s.getCached(ctx, key, &cached) {
			return cached, nil
		}
	}

	v, err, _ := s.group.Do(symbol, func() (any, error) {
		// The fetch is shared by every caller waiting on this symbol, so it must
		// not end with the one that started it. The client timeout still bounds it.
		fctx := context.WithoutCancel(ctx)
		entry, err := s.fetchEntry(fctx, symbol)
		if err != nil {
			return quoteEntry{}, err
		}
		s.setCached(fctx, key, entry, s.quoteTTL)
		return entry, nil
	})
	if err != nil {
		return quoteEntry{}, err
	}
	return v.(quoteEntry), nil
}

func (s *QuoteService) fetchEntry(ctx context.Context, symbol string) (quoteEntry, error) {
	raw, err := s.yahoo.QueryFiveDaySymbol(ctx, symbol)
	if err != nil {
		if errors.Is(err, apperrors.ErrSymbolNotFound) {
			return quoteEntry{}, err
		}
		log.Warn().Err(err).Str("symbol", symbol).Msg("quote fetch failed")
		return quoteEntry{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToFetchStock, err)
	}

	chart, err := yahoo.ParseChart(raw)
	if err != nil {
		return quoteEntry{}, fmt.Errorf("%w: %s: %w", apperrors.ErrNoPriceData, symbol, err)
	}

	history := toPricePoints(chart.Points)
	latest := chart.Latest()

	previousClose := chart.PreviousClose
	if len(chart.Points) > 1 {
		previousClose = chart.Points[len(chart.Points)-2].PriceClose
	}

	asOf := chart.MarketTime
	if asOf.IsZero() {
		asOf = latest.Date
	}

	profile := s.profile(ctx, symbol)

	shortName := chart.ShortName
	if shortName == "" {
		shortName = symbol
	}

	return quoteEntry{
		Quote: model.Quote{
			Symbol:        symbol,
			ShortName:     shortName,
			LongName:      chart.LongName,
			Currency:      chart.Currency,
			Exchange:      chart.ExchangeName,
			Sector:        profile.Sector,
			Industry:      profile.Industry,
			Price:         decimal.NewFromFloat(chart.LatestPrice()),
			PreviousClose: decimal.NewFromFloat(previousClose),
			AsOf:          asOf,
		},
		History: history,
	}, nil
}

// profile returns the sector profile for a symbol. Lookup failures are logged
// and reported as UnknownSector so that quotes stay available; the fallback is
// cached briefly so a failing lookup is not retried on every quote miss.
func (s *QuoteService) profile(ctx context.Context, symbol string) model.SectorProfile {
	key := "profile:" + symbol

	var cached model.SectorProfile
	if s.getCached(ctx, key, &cached) {
		return cached
	}

	ap, err := s.yahoo.QueryAssetProfile(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("profile fetch failed")
		profile := model.SectorProfile{Sector: UnknownSector}
		s.setCached(ctx, key, profile, min(unknownProfileTTL, s.profileTTL))
		return profile
	}

	profile := model.SectorProfile{Sector: ap.Sector, Industry: ap.Industry}
	if profile.Sector == "" {
		profile.Sector = UnknownSector
	}
	s.setCached(ctx, key, profile, s.profileTTL)
	return profile
}

func (s *QuoteService) history(ctx context.Context, symbol, rng string) ([]model.PricePoint, error) {
	raw, err := s.yahoo.QuerySymbolRange(ctx, symbol, rng)
	if err != nil {
		if errors.Is(err, apperrors.ErrSymbolNotFound) || errors.Is(err, apperrors.ErrInvalidPeriod) {
			return nil, err
		}
		log.Warn().Err(err).Str("symbol", symbol).Str("range", rng).Msg("history fetch failed")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToFetchStock, err)
	}

	chart, err := yahoo.ParseChart(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrNoPriceData, symbol, err)
	}
	return toPricePoints(chart.Points), nil
}

func toPricePoints(points []yahoo.Point) []model.PricePoint {
	out := make([]model.PricePoint, len(points))
	for i, p := range points {
		out[i] = model.PricePoint{
			Date:   p.Date,
			Open:   p.PriceOpen,
			High:   p.PriceHigh,
			Low:    p.PriceLow,
			Close:  p.PriceClose,
			Volume: p.Volume,
		}
	}
	return out
}

func (s *QuoteService) getCached(ctx context.Context, key string, dst any) bool {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding unreadable cache entry")
		return false
	}
	return true
}

func (s *QuoteService) setCached(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := s.store.Set(ctx, key, data, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
