package scheduler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// OpenSymbolLister lists every symbol with an open position.
type OpenSymbolLister interface {
	GetOpenSymbols(ctx context.Context) ([]string, error)
}

// QuoteRefresher re-fetches and caches quotes.
type QuoteRefresher interface {
	RefreshQuotes(ctx context.Context, symbols []string) (int, map[string]error)
}

// Sweeper drops expired cache entries.
type Sweeper interface {
	Sweep() int
}

// QuoteRefreshJob keeps the quote cache warm for every held symbol.
// Individual symbol failures are logged; the job fails only when the symbol
// list cannot be loaded.
func QuoteRefreshJob(symbols OpenSymbolLister, quotes QuoteRefresher) TaskFn {
	return func(ctx context.Context) error {
		list, err := symbols.GetOpenSymbols(ctx)
		if err != nil {
			return fmt.Errorf("failed to list open symbols: %w", err)
		}
		if len(list) == 0 {
			return nil
		}

		refreshed, errs := quotes.RefreshQuotes(ctx, list)
		for symbol, err := range errs {
			log.Warn().Err(err).Str("symbol", symbol).Msg("quote refresh failed")
		}
		log.Info().Int("refreshed", refreshed).Int("failed", len(errs)).Msg("quotes refreshed")
		return nil
	}
}

// StoreSweepJob removes expired entries from an in-memory store.
func StoreSweepJob(sw Sweeper) TaskFn {
	return func(context.Context) error {
		if n := sw.Sweep(); n > 0 {
			log.Debug().Int("dropped", n).Msg("expired cache entries swept")
		}
		return nil
	}
}
