package service

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/model"
)

// positionScale is the number of decimal places kept on aggregated amounts.
const positionScale = 4

// AggregatePositions folds a ledger of transactions into one Position per symbol.
//
// Transactions must be in chronological order. Buys add to the quantity and cost;
// sells remove cost at the running weighted-average price and accumulate the
// difference as realized gain. A sell larger than the held quantity returns
// apperrors.ErrInsufficientShares, and a transaction with a non-positive quantity
// or an unknown type returns apperrors.ErrMalformedTransaction.
//
// Closed positions (quantity 0) are only included when includeClosed is set.
// The result is sorted by symbol.
func AggregatePositions(transactions []model.Transaction, includeClosed bool) ([]model.Position, error) {
	bySymbol := make(map[string]*model.Position)

	for _, t := range transactions {
		if t.Quantity <= 0 {
			return nil, fmt.Errorf("%w: transaction %s has quantity %d", apperrors.ErrMalformedTransaction, t.ID, t.Quantity)
		}

		p, ok := bySymbol[t.Symbol]
		if !ok {
			p = &model.Position{
				Symbol:           t.Symbol,
				TotalCost:        decimal.Zero,
				AveragePrice:     decimal.Zero,
				RealizedGainLoss: decimal.Zero,
			}
			bySymbol[t.Symbol] = p
		}

		qty := decimal.NewFromInt(t.Quantity)

		switch t.Type {
		case model.TransactionTypeBuy:
			p.Quantity += t.Quantity
			p.TotalCost = p.TotalCost.Add(t.Price.Mul(qty))
		case model.TransactionTypeSell:
			if t.Quantity > p.Quantity {
				return nil, fmt.Errorf("%w: %s sells %d of %d held", apperrors.ErrInsufficientShares, t.Symbol, t.Quantity, p.Quantity)
			}
			costRemoved := p.TotalCost.Mul(qty).Div(decimal.NewFromInt(p.Quantity))
			p.RealizedGainLoss = p.RealizedGainLoss.Add(t.Price.Mul(qty).Sub(costRemoved))
			p.Quantity -= t.Quantity
			p.TotalCost = p.TotalCost.Sub(costRemoved)
			if p.Quantity == 0 {
				p.TotalCost = decimal.Zero
			}
		default:
			return nil, fmt.Errorf("%w: transaction %s has type %q", apperrors.ErrMalformedTransaction, t.ID, t.Type)
		}

		if t.Sector != "" {
			p.Sector = t.Sector
		}
		if t.Date.After(p.LastUpdated) {
			p.LastUpdated = t.Date
		}
	}

	positions := make([]model.Position, 0, len(bySymbol))
	for _, p := range bySymbol {
		if p.Quantity == 0 && !includeClosed {
			continue
		}
		if p.Quantity > 0 {
			p.AveragePrice = p.TotalCost.Div(decimal.NewFromInt(p.Quantity)).Round(positionScale)
		} else {
			p.AveragePrice = decimal.Zero
		}
		p.TotalCost = p.TotalCost.Round(positionScale)
		p.RealizedGainLoss = p.RealizedGainLoss.Round(positionScale)
		positions = append(positions, *p)
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})

	return positions, nil
}

// findPosition returns the open position for symbol, if any.
func findPosition(positions []model.Position, symbol string) (model.Position, bool) {
	for _, p := range positions {
		if p.Symbol == symbol && p.Quantity > 0 {
			return p, true
		}
	}
	return model.Position{}, false
}
