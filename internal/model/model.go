// Package model holds the domain types shared by the repository, service and API layers.
package model

import "github.com/shopspring/decimal"

func init() {
	// Monetary values are rendered as JSON numbers, which is what chart clients consume.
	decimal.MarshalJSONWithoutQuotes = true
}
