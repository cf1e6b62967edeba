package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Rhymond/go-money"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/model"
	"github.com/yaojiejia/portfolioAnalysis/internal/repository"
)

// DefaultCurrency is the currency portfolio totals are displayed in.
const DefaultCurrency = money.USD

var hundred = decimal.NewFromInt(100)

// PortfolioService computes positions and the dashboard summary of an
// authenticated user's portfolio from the transaction ledger.
type PortfolioService struct {
	transactionRepo *repository.TransactionRepository
	quoteService    *QuoteService
	currency        string
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	transactionRepo *repository.TransactionRepository,
	quoteService *QuoteService,
) *PortfolioService {
	return &PortfolioService{
		transactionRepo: transactionRepo,
		quoteService:    quoteService,
		currency:        DefaultCurrency,
	}
}

// GetPositions returns the user's positions folded from their transactions.
// Closed positions are included only when includeClosed is set.
func (s *PortfolioService) GetPositions(ctx context.Context, userID string, includeClosed bool) ([]model.Position, error) {
	transactions, err := s.transactionRepo.GetTransactions(ctx, model.TransactionFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrievePositions, err)
	}
	return AggregatePositions(transactions, includeClosed)
}

// GetSummary values every open position at its latest quote and computes the
// portfolio totals, distributions and best and worst performers.
//
// Quotes are fetched concurrently. A position whose quote cannot be fetched is
// valued at cost and flagged Stale; it does not fail the summary and is left
// out of the performer ranking.
func (s *PortfolioService) GetSummary(ctx context.Context, userID string) (model.PortfolioSummary, error) {
	positions, err := s.GetPositions(ctx, userID, true)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	open := make([]model.Position, 0, len(positions))
	symbols := make([]string, 0, len(positions))
	realized := decimal.Zero
	for _, p := range positions {
		realized = realized.Add(p.RealizedGainLoss)
		if p.Quantity > 0 {
			open = append(open, p)
			symbols = append(symbols, p.Symbol)
		}
	}

	quotes, quoteErrs := s.quoteService.GetQuotes(ctx, symbols)
	for symbol, err := range quoteErrs {
		log.Warn().Err(err).Str("symbol", symbol).Msg("valuing position at cost")
	}

	summary := model.PortfolioSummary{
		TotalCost:    decimal.Zero,
		TotalValue:   decimal.Zero,
		TodayGain:    decimal.Zero,
		RealizedGain: realized.Round(2),
		Holdings:     []model.Allocation{},
		Sectors:      []model.Allocation{},
		Positions:    make([]model.PositionValuation, 0, len(open)),
	}

	sectorValues := make(map[string]decimal.Decimal)
	for _, p := range open {
		quote, ok := quotes[p.Symbol]
		v := valuePosition(p, quote, ok)
		summary.Positions = append(summary.Positions, v)

		summary.TotalCost = summary.TotalCost.Add(p.TotalCost)
		summary.TotalValue = summary.TotalValue.Add(v.MarketValue)
		summary.TodayGain = summary.TodayGain.Add(v.DayChange)

		sector := p.Sector
		if sector == "" {
			sector = UnknownSector
		}
		sectorValues[sector] = sectorValues[sector].Add(v.MarketValue)

		if !v.Stale {
			if summary.BestPerformer == nil || v.UnrealizedGainLossPct.GreaterThan(summary.BestPerformer.Gain) {
				summary.BestPerformer = &model.Performer{Stock: p.Symbol, Gain: v.UnrealizedGainLossPct}
			}
			if summary.WorstPerformer == nil || v.UnrealizedGainLossPct.LessThan(summary.WorstPerformer.Gain) {
				summary.WorstPerformer = &model.Performer{Stock: p.Symbol, Gain: v.UnrealizedGainLossPct}
			}
		}
	}

	summary.TotalGain = summary.TotalValue.Sub(summary.TotalCost)
	summary.TotalGainPercent = percentOf(summary.TotalGain, summary.TotalCost)

	for _, v := range summary.Positions {
		summary.Holdings = append(summary.Holdings, allocation(v.Symbol, v.MarketValue, summary.TotalValue))
	}
	for sector, value := range sectorValues {
		summary.Sectors = append(summary.Sectors, allocation(sector, value, summary.TotalValue))
	}
	sortAllocations(summary.Holdings)
	sortAllocations(summary.Sectors)

	summary.TotalCost = summary.TotalCost.Round(2)
	summary.TotalValue = summary.TotalValue.Round(2)
	summary.TotalGain = summary.TotalGain.Round(2)
	summary.TodayGain = summary.TodayGain.Round(2)

	summary.Display = model.SummaryDisplay{
		TotalCost:    formatMoney(summary.TotalCost, s.currency),
		TotalValue:   formatMoney(summary.TotalValue, s.currency),
		TotalGain:    formatMoney(summary.TotalGain, s.currency),
		TodayGain:    formatMoney(summary.TodayGain, s.currency),
		RealizedGain: formatMoney(summary.RealizedGain, s.currency),
	}

	return summary, nil
}

// valuePosition prices a position at the quote, or at cost when no quote is available.
func valuePosition(p model.Position, quote model.Quote, hasQuote bool) model.PositionValuation {
	qty := decimal.NewFromInt(p.Quantity)

	v := model.PositionValuation{
		Position:  p,
		DayChange: decimal.Zero,
	}

	if hasQuote {
		v.Price = quote.Price
		v.MarketValue = quote.Price.Mul(qty)
		if !quote.PreviousClose.IsZero() {
			v.DayChange = quote.Price.Sub(quote.PreviousClose).Mul(qty).Round(2)
		}
	} else {
		v.Price = p.AveragePrice
		v.MarketValue = p.TotalCost
		v.Stale = true
	}

	v.UnrealizedGainLoss = v.MarketValue.Sub(p.TotalCost).Round(2)
	v.UnrealizedGainLossPct = percentOf(v.UnrealizedGainLoss, p.TotalCost)
	v.MarketValue = v.MarketValue.Round(2)
	return v
}

// percentOf returns part / whole * 100 rounded to 2 places, or zero when whole is zero.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

func allocation(label string, value, total decimal.Decimal) model.Allocation {
	return model.Allocation{
		Label:  label,
		Value:  value.Round(2),
		Weight: percentOf(value, total),
	}
}

// sortAllocations orders by value descending, then label.
func sortAllocations(a []model.Allocation) {
	sort.Slice(a, func(i, j int) bool {
		if c := a[i].Value.Cmp(a[j].Value); c != 0 {
			return c > 0
		}
		return a[i].Label < a[j].Label
	})
}

// formatMoney renders an amount with the currency's symbol, grouping and
// fraction digits, e.g. "$1,234.50".
func formatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		currency = DefaultCurrency
		cur = money.GetCurrency(currency)
	}

	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return money.New(minor.IntPart(), currency).Display()
}
