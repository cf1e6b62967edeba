package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined per-symbol test data instead of making actual API calls.
// Symbols without configured data are reported as apperrors.ErrSymbolNotFound.
type MockYahooClient struct {
	mu sync.Mutex

	// Responses holds the chart returned for each symbol
	Responses map[string]yahoo.Response
	// Profiles holds the asset profile returned for each symbol
	Profiles map[string]yahoo.AssetProfile
	// MockError is returned from every chart query when set
	MockError error
	// ProfileError is returned from every profile query when set
	ProfileError error

	gate         <-chan struct{}
	waiting      int
	chartCalls   int
	profileCalls int
}

// NewMockYahooClient creates a new mock Yahoo client with no symbols configured.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		Responses: make(map[string]yahoo.Response),
		Profiles:  make(map[string]yahoo.AssetProfile),
	}
}

// WithSymbol registers 5 days of rising prices for symbol, with the last close at lastClose.
func (m *MockYahooClient) WithSymbol(symbol string, lastClose float64, sector string) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[symbol] = CreateMockYahooResponse(symbol, 5, lastClose)
	if sector != "" {
		m.Profiles[symbol] = yahoo.AssetProfile{Sector: sector, Industry: sector + " Industry"}
	}
	return m
}

// WithResponse configures the chart returned for symbol.
func (m *MockYahooClient) WithResponse(symbol string, resp yahoo.Response) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[symbol] = resp
	return m
}

// WithError configures the mock to return the specified error from chart queries.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MockError = err
	return m
}

// WithGate makes five-day chart queries block until gate is closed or the
// request context is done, in which case the context error is returned.
func (m *MockYahooClient) WithGate(gate <-chan struct{}) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = gate
	return m
}

// Waiting reports how many five-day chart queries have reached the gate.
func (m *MockYahooClient) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waiting
}

// ChartCalls reports how many chart queries were made.
func (m *MockYahooClient) ChartCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chartCalls
}

// ProfileCalls reports how many profile queries were made.
func (m *MockYahooClient) ProfileCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profileCalls
}

// QueryFiveDaySymbol returns the configured chart for symbol.
func (m *MockYahooClient) QueryFiveDaySymbol(ctx context.Context, symbol string) (yahoo.Response, error) {
	m.mu.Lock()
	gate := m.gate
	m.waiting++
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return yahoo.Response{}, ctx.Err()
		}
	}
	return m.chart(symbol)
}

// QuerySymbolRange returns the configured chart for symbol regardless of range.
func (m *MockYahooClient) QuerySymbolRange(_ context.Context, symbol, rng string) (yahoo.Response, error) {
	if !yahoo.ValidRanges[rng] {
		return yahoo.Response{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidPeriod, rng)
	}
	return m.chart(symbol)
}

// QuerySymbolByDateRange returns the configured chart for symbol regardless of dates.
func (m *MockYahooClient) QuerySymbolByDateRange(_ context.Context, symbol string, _, _ time.Time) (yahoo.Response, error) {
	return m.chart(symbol)
}

// QueryAssetProfile returns the configured profile for symbol.
func (m *MockYahooClient) QueryAssetProfile(_ context.Context, symbol string) (yahoo.AssetProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profileCalls++

	if m.ProfileError != nil {
		return yahoo.AssetProfile{}, m.ProfileError
	}
	p, ok := m.Profiles[symbol]
	if !ok {
		return yahoo.AssetProfile{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}
	return p, nil
}

func (m *MockYahooClient) chart(symbol string) (yahoo.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chartCalls++

	if m.MockError != nil {
		return yahoo.Response{}, m.MockError
	}
	resp, ok := m.Responses[symbol]
	if !ok {
		return yahoo.Response{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}
	return resp, nil
}

// CreateMockYahooResponse creates a mock Yahoo Finance chart with `days` daily
// rows ending yesterday. Closes rise by 0.5 per day and the last close is
// lastClose, which is also the regular market price.
func CreateMockYahooResponse(symbol string, days int, lastClose float64) yahoo.Response {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)

	timestamps := make([]int64, days)
	opens := make([]*float64, days)
	highs := make([]*float64, days)
	lows := make([]*float64, days)
	closes := make([]*float64, days)
	volumes := make([]*int64, days)

	for i := 0; i < days; i++ {
		date := yesterday.AddDate(0, 0, -days+i+1)
		timestamps[i] = date.Unix()

		closePrice := lastClose - float64(days-1-i)*0.5
		open := closePrice - 0.25
		high := closePrice + 1.0
		low := closePrice - 0.75
		volume := int64(1000000 + i*10000)

		opens[i] = &open
		highs[i] = &high
		lows[i] = &low
		closes[i] = &closePrice
		volumes[i] = &volume
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:             symbol,
						Currency:           "USD",
						ExchangeName:       "NMS",
						FullExchangeName:   "NASDAQ",
						LongName:           symbol + " Inc.",
						ShortName:          symbol,
						RegularMarketPrice: lastClose,
						RegularMarketTime:  yesterday.Unix(),
					},
					Timestamp: timestamps,
					Indicators: yahoo.Indicators{
						Quote: []yahoo.Quote{
							{
								Open:   opens,
								High:   highs,
								Low:    lows,
								Close:  closes,
								Volume: volumes,
							},
						},
					},
				},
			},
		},
	}
}
