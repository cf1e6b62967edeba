package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the latest known market state of a symbol.
type Quote struct {
	Symbol        string          `json:"symbol"`
	ShortName     string          `json:"shortName"`
	LongName      string          `json:"longName,omitempty"`
	Currency      string          `json:"currency"`
	Exchange      string          `json:"exchange"`
	Sector        string          `json:"sector"`
	Industry      string          `json:"industry,omitempty"`
	Price         decimal.Decimal `json:"price"`
	PreviousClose decimal.Decimal `json:"previousClose"`
	AsOf          time.Time       `json:"asOf"`
}

// PricePoint is one daily OHLCV row.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// StockResponse is the search/display payload. Data depends on the period:
// the latest close for "now", a single PricePoint for "today" and the full
// history for any range.
type StockResponse struct {
	Symbol       string          `json:"symbol"`
	Period       string          `json:"period"`
	Data         any             `json:"data"`
	Sector       string          `json:"sector,omitempty"`
	ShortName    string          `json:"shortName,omitempty"`
	Currency     string          `json:"currency,omitempty"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	History      []PricePoint    `json:"history"`
}

// SectorProfile is the slow-changing company classification of a symbol.
type SectorProfile struct {
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
}
