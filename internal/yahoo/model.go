package yahoo

import "time"

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
//
// The structure includes:
//   - Chart.Result: Array of result objects (typically contains one element)
//   - Chart.Result[].Meta: Symbol metadata (name, currency, exchange, latest price)
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: Price data arrays; entries are null on non-trading rows
//   - Chart.Error: Error object from Yahoo, set on unknown symbols
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top-level chart envelope.
type Chart struct {
	Result []Result `json:"result"`
	Error  *Error   `json:"error"`
}

// Result is the chart for one symbol.
type Result struct {
	Meta       Meta       `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators Indicators `json:"indicators"`
}

// Meta is symbol metadata returned with each chart.
type Meta struct {
	Currency           string  `json:"currency"`
	Symbol             string  `json:"symbol"`
	ExchangeName       string  `json:"exchangeName"`
	FullExchangeName   string  `json:"fullExchangeName"`
	LongName           string  `json:"longName"`
	ShortName          string  `json:"shortName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	RegularMarketTime  int64   `json:"regularMarketTime"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
	PreviousClose      float64 `json:"previousClose"`
}

// Indicators holds the OHLCV arrays.
type Indicators struct {
	Quote []Quote `json:"quote"`
}

// Quote holds parallel OHLCV arrays aligned with Result.Timestamp.
type Quote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
}

// Error is the error object Yahoo embeds in chart and quoteSummary responses.
type Error struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// SummaryResponse is the quoteSummary envelope for the assetProfile module.
type SummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile AssetProfile `json:"assetProfile"`
		} `json:"result"`
		Error *Error `json:"error"`
	} `json:"quoteSummary"`
}

// AssetProfile is the company classification of a symbol.
type AssetProfile struct {
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
}

// PriceChart represents a parsed and structured price chart from Yahoo Finance.
// This is the application's internal representation after parsing the raw Response.
type PriceChart struct {
	Currency           string
	Symbol             string
	ExchangeName       string
	FullExchangeName   string
	LongName           string
	ShortName          string
	RegularMarketPrice float64
	PreviousClose      float64
	MarketTime         time.Time
	Points             []Point
}

// Point represents a single day's price data for a financial instrument.
type Point struct {
	Date       time.Time
	PriceOpen  float64
	PriceClose float64
	Volume     int64
	PriceHigh  float64
	PriceLow   float64
}
