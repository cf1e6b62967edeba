package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TransactionTypeBuy  = "buy"
	TransactionTypeSell = "sell"
)

// Transaction is a single buy or sell of a symbol by a user.
// Quantity is always positive; Type carries the direction.
// TotalValue is Price x Quantity at the time of the trade.
type Transaction struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	Symbol     string          `json:"symbol"`
	Sector     string          `json:"sector"`
	Type       string          `json:"type"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int64           `json:"quantity"`
	TotalValue decimal.Decimal `json:"totalValue"`
	Date       time.Time       `json:"date"`
	CreatedAt  time.Time       `json:"createdAt,omitempty"`
}

// TransactionFilter narrows a transaction query for one user.
type TransactionFilter struct {
	UserID string
	Symbol string
}
