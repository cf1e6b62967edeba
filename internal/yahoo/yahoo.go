package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
)

// Client is the subset of Yahoo Finance queries the services depend on.
type Client interface {
	QueryFiveDaySymbol(ctx context.Context, symbol string) (Response, error)
	QuerySymbolRange(ctx context.Context, symbol, rng string) (Response, error)
	QuerySymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error)
	QueryAssetProfile(ctx context.Context, symbol string) (AssetProfile, error)
}

// ValidRanges are the history ranges the chart API accepts.
var ValidRanges = map[string]bool{
	"1d": true, "5d": true, "1mo": true, "3mo": true, "6mo": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "ytd": true, "max": true,
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// Chart and quoteSummary live on different hosts, so each gets its own resty client.
//
// quoteSummary rejects requests that lack a session cookie and the matching
// crumb. The summary client keeps resty's cookie jar, collects the cookie from
// cookieURL and fetches the crumb lazily; both are renewed once on a 401.
type FinanceClient struct {
	chart     *resty.Client
	summary   *resty.Client
	cookieURL string

	mu    sync.Mutex
	crumb string
}

// NewFinanceClient creates a new Yahoo Finance client against the given base URLs.
// cookieURL is the page that hands out the session cookie (fc.yahoo.com in production).
func NewFinanceClient(chartURL, summaryURL, cookieURL string, timeout time.Duration, debug bool) *FinanceClient {
	newClient := func(baseURL string) *resty.Client {
		return resty.New().
			SetDebug(debug).
			SetTimeout(timeout).
			SetBaseURL(baseURL).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept", "application/json")
	}
	return &FinanceClient{
		chart:     newClient(chartURL),
		summary:   newClient(summaryURL),
		cookieURL: cookieURL,
	}
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
// Rows whose close price is null (halted or not-yet-traded sessions) are skipped.
//
// Returns an error if:
//   - The response carries no result
//   - Timestamp or close price data is missing
//   - Data arrays have mismatched lengths
//   - No row has a close price
func ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no chart result returned")
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}

	q := result.Indicators.Quote[0]
	if len(q.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	points := make([]Point, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if q.Close[i] == nil {
			continue
		}
		p := Point{
			Date:       time.Unix(ts, 0).UTC(),
			PriceClose: *q.Close[i],
		}
		p.PriceOpen = valueAt(q.Open, i)
		p.PriceHigh = valueAt(q.High, i)
		p.PriceLow = valueAt(q.Low, i)
		if i < len(q.Volume) && q.Volume[i] != nil {
			p.Volume = *q.Volume[i]
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}

	chart := PriceChart{
		Symbol:             result.Meta.Symbol,
		Currency:           result.Meta.Currency,
		ExchangeName:       result.Meta.ExchangeName,
		FullExchangeName:   result.Meta.FullExchangeName,
		LongName:           result.Meta.LongName,
		ShortName:          result.Meta.ShortName,
		RegularMarketPrice: result.Meta.RegularMarketPrice,
		PreviousClose:      result.Meta.PreviousClose,
		Points:             points,
	}
	if chart.PreviousClose == 0 {
		chart.PreviousClose = result.Meta.ChartPreviousClose
	}
	if result.Meta.RegularMarketTime > 0 {
		chart.MarketTime = time.Unix(result.Meta.RegularMarketTime, 0).UTC()
	}

	return chart, nil
}

func valueAt(values []*float64, i int) float64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}

// Latest returns the most recent point of the chart.
func (c PriceChart) Latest() Point {
	return c.Points[len(c.Points)-1]
}

// LatestPrice prefers the live market price and falls back to the last close.
func (c PriceChart) LatestPrice() float64 {
	if c.RegularMarketPrice > 0 {
		return c.RegularMarketPrice
	}
	return c.Latest().PriceClose
}

// GetIndicatorForDate searches for price data matching a specific date.
// The method performs date-only comparison by truncating both the target and
// point dates to midnight UTC, ignoring time components.
func (c PriceChart) GetIndicatorForDate(target time.Time) (Point, bool) {
	targetDay := target.UTC().Truncate(24 * time.Hour)
	for _, p := range c.Points {
		if p.Date.UTC().Truncate(24 * time.Hour).Equal(targetDay) {
			return p, true
		}
	}
	return Point{}, false
}

// QueryFiveDaySymbol fetches the last 5 days of daily price data for a symbol.
// Typically used to get the latest available closing price.
func (c *FinanceClient) QueryFiveDaySymbol(ctx context.Context, symbol string) (Response, error) {
	return c.QuerySymbolRange(ctx, symbol, "5d")
}

// QuerySymbolRange fetches price data for one of the ValidRanges.
// Long ranges use a coarser interval to keep payloads small.
func (c *FinanceClient) QuerySymbolRange(ctx context.Context, symbol, rng string) (Response, error) {
	if !ValidRanges[rng] {
		return Response{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidPeriod, rng)
	}

	interval := "1d"
	switch rng {
	case "5y":
		interval = "1wk"
	case "10y", "max":
		interval = "1mo"
	}

	return c.queryChart(ctx, symbol, map[string]string{
		"interval": interval,
		"range":    rng,
	})
}

// QuerySymbolByDateRange fetches daily price data for a symbol within a specific date range.
func (c *FinanceClient) QuerySymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error) {
	return c.queryChart(ctx, symbol, map[string]string{
		"interval": "1d",
		"period1":  strconv.FormatInt(startDate.Unix(), 10),
		"period2":  strconv.FormatInt(endDate.Unix(), 10),
	})
}

// QueryAssetProfile fetches the sector and industry of a symbol.
func (c *FinanceClient) QueryAssetProfile(ctx context.Context, symbol string) (AssetProfile, error) {
	var resp *resty.Response
	for attempt := 0; attempt < 2; attempt++ {
		crumb, err := c.getCrumb(ctx, attempt > 0)
		if err != nil {
			return AssetProfile{}, err
		}

		resp, err = c.summary.R().
			SetContext(ctx).
			SetPathParam("symbol", symbol).
			SetQueryParam("modules", "assetProfile").
			SetQueryParam("crumb", crumb).
			Get("/v10/finance/quoteSummary/{symbol}")
		if err != nil {
			return AssetProfile{}, fmt.Errorf("quoteSummary request for %s: %w", symbol, err)
		}
		if resp.StatusCode() != http.StatusUnauthorized {
			break
		}
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return AssetProfile{}, fmt.Errorf("quoteSummary for %s: crumb rejected", symbol)
	}

	var summary SummaryResponse
	if err := json.Unmarshal(resp.Body(), &summary); err != nil {
		return AssetProfile{}, fmt.Errorf("quoteSummary decode for %s (status %d): %w", symbol, resp.StatusCode(), err)
	}

	if e := summary.QuoteSummary.Error; e != nil {
		if isNotFound(resp.StatusCode(), e) {
			return AssetProfile{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
		}
		return AssetProfile{}, fmt.Errorf("yahoo error: %s", e.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return AssetProfile{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}

	return summary.QuoteSummary.Result[0].AssetProfile, nil
}

// getCrumb returns the cached crumb, performing the cookie and crumb
// handshake when there is none yet or when renew is set.
func (c *FinanceClient) getCrumb(ctx context.Context, renew bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumb != "" && !renew {
		return c.crumb, nil
	}

	// The cookie page answers 404 but still sets the session cookie.
	if _, err := c.summary.R().SetContext(ctx).Get(c.cookieURL); err != nil {
		return "", fmt.Errorf("yahoo session cookie: %w", err)
	}

	resp, err := c.summary.R().
		SetContext(ctx).
		SetHeader("Accept", "text/plain").
		Get("/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("yahoo crumb request: %w", err)
	}
	crumb := strings.TrimSpace(resp.String())
	if resp.StatusCode() != http.StatusOK || crumb == "" || strings.ContainsAny(crumb, "<{") {
		return "", fmt.Errorf("yahoo crumb request: unexpected response (status %d)", resp.StatusCode())
	}

	c.crumb = crumb
	return crumb, nil
}

// queryChart executes a chart request, parses the JSON body and maps Yahoo's
// error object to Go errors. Unknown symbols yield apperrors.ErrSymbolNotFound.
func (c *FinanceClient) queryChart(ctx context.Context, symbol string, params map[string]string) (Response, error) {
	resp, err := c.chart.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(params).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return Response{}, fmt.Errorf("chart request for %s: %w", symbol, err)
	}

	var response Response
	if err := json.Unmarshal(resp.Body(), &response); err != nil {
		if resp.StatusCode() == http.StatusNotFound {
			return Response{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
		}
		return Response{}, fmt.Errorf("chart decode for %s (status %d): %w", symbol, resp.StatusCode(), err)
	}

	if e := response.Chart.Error; e != nil {
		if isNotFound(resp.StatusCode(), e) {
			return response, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
		}
		return response, fmt.Errorf("yahoo error: %s", e.Description)
	}

	if len(response.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}

	return response, nil
}

func isNotFound(status int, e *Error) bool {
	return status == http.StatusNotFound ||
		strings.EqualFold(e.Code, "Not Found") ||
		strings.Contains(strings.ToLower(e.Description), "no data found")
}
