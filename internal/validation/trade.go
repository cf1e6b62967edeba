package validation

import (
	"strings"

	"github.com/yaojiejia/portfolioAnalysis/internal/api/request"
)

// ValidateTrade validates the symbol and share count of a trade request.
// The action is checked by the trade service, which reports it separately.
func ValidateTrade(req request.TradeRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}
	if req.Shares < 1 {
		errors["shares"] = "shares must be a positive whole number"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
