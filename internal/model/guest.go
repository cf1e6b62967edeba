package model

import "github.com/shopspring/decimal"

// PortfolioEntry is one line of a guest (non-authenticated) portfolio.
// CostBasis is a placeholder, not a real trade price.
type PortfolioEntry struct {
	Stock       string          `json:"stock"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	CostBasis   decimal.Decimal `json:"costBasis"`
	PL          decimal.Decimal `json:"pl"`
	MarketValue decimal.Decimal `json:"marketValue"`
}
