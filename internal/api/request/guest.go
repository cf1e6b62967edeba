package request

import "github.com/shopspring/decimal"

// AddGuestEntryRequest adds a line to the guest portfolio.
// CostBasis is optional; a placeholder is generated when it is omitted.
type AddGuestEntryRequest struct {
	Symbol    string           `json:"symbol"`
	Quantity  int64            `json:"quantity"`
	CostBasis *decimal.Decimal `json:"costBasis,omitempty"`
}

// SellGuestEntryRequest sells shares from one guest portfolio line.
type SellGuestEntryRequest struct {
	Shares int64 `json:"shares"`
}
