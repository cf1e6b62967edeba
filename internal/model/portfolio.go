package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the net holding of one symbol folded from a user's transactions.
// AveragePrice is TotalCost / Quantity and zero for a closed position.
type Position struct {
	Symbol           string          `json:"symbol"`
	Sector           string          `json:"sector"`
	Quantity         int64           `json:"quantity"`
	TotalCost        decimal.Decimal `json:"totalCost"`
	AveragePrice     decimal.Decimal `json:"averagePrice"`
	RealizedGainLoss decimal.Decimal `json:"realizedGainLoss"`
	LastUpdated      time.Time       `json:"lastUpdated"`
}

// PositionValuation is a Position priced at the latest quote.
// Stale is set when no quote could be fetched and the position is valued at cost.
type PositionValuation struct {
	Position
	Price                 decimal.Decimal `json:"price"`
	MarketValue           decimal.Decimal `json:"marketValue"`
	UnrealizedGainLoss    decimal.Decimal `json:"unrealizedGainLoss"`
	UnrealizedGainLossPct decimal.Decimal `json:"unrealizedGainLossPercent"`
	DayChange             decimal.Decimal `json:"dayChange"`
	Stale                 bool            `json:"stale"`
}

// Allocation is one slice of a distribution chart.
type Allocation struct {
	Label  string          `json:"label"`
	Value  decimal.Decimal `json:"value"`
	Weight decimal.Decimal `json:"weight"` // Percentage of total value
}

// Performer identifies the best or worst position by unrealized return.
type Performer struct {
	Stock string          `json:"stock"`
	Gain  decimal.Decimal `json:"gain"` // Percentage
}

// PortfolioSummary is the dashboard view of a user's open positions.
type PortfolioSummary struct {
	TotalCost        decimal.Decimal     `json:"totalCost"`
	TotalValue       decimal.Decimal     `json:"totalValue"`
	TotalGain        decimal.Decimal     `json:"totalGain"`
	TotalGainPercent decimal.Decimal     `json:"totalGainPercent"`
	TodayGain        decimal.Decimal     `json:"todayGain"`
	RealizedGain     decimal.Decimal     `json:"realizedGain"`
	BestPerformer    *Performer          `json:"bestPerformer"`
	WorstPerformer   *Performer          `json:"worstPerformer"`
	Holdings         []Allocation        `json:"holdings"`
	Sectors          []Allocation        `json:"sectors"`
	Positions        []PositionValuation `json:"positions"`
	Display          SummaryDisplay      `json:"display"`
}

// SummaryDisplay carries currency-formatted totals.
type SummaryDisplay struct {
	TotalCost    string `json:"totalCost"`
	TotalValue   string `json:"totalValue"`
	TotalGain    string `json:"totalGain"`
	TodayGain    string `json:"todayGain"`
	RealizedGain string `json:"realizedGain"`
}
