package validation

import (
	"strings"

	"github.com/yaojiejia/portfolioAnalysis/internal/api/request"
)

// ValidateAddGuestEntry validates a guest portfolio addition.
func ValidateAddGuestEntry(req request.AddGuestEntryRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}
	if req.Quantity < 1 {
		errors["quantity"] = "quantity must be a positive whole number"
	}
	if req.CostBasis != nil && req.CostBasis.IsNegative() {
		errors["costBasis"] = "costBasis cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateSellGuestEntry validates a guest portfolio sale.
func ValidateSellGuestEntry(req request.SellGuestEntryRequest) error {
	if req.Shares < 1 {
		return &Error{Fields: map[string]string{"shares": "shares must be a positive whole number"}}
	}
	return nil
}
