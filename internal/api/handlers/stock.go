package handlers

import (
	"net/http"

	"github.com/yaojiejia/portfolioAnalysis/internal/api/response"
	"github.com/yaojiejia/portfolioAnalysis/internal/service"
)

// StockHandler serves symbol search and price display.
type StockHandler struct {
	quoteService *service.QuoteService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(quoteService *service.QuoteService) *StockHandler {
	return &StockHandler{quoteService: quoteService}
}

// Stock handles GET requests for a symbol's price data.
//
// Endpoint: GET /api/stock?symbol=AAPL&period=now|today|1mo|...
// Response: 200 OK with model.StockResponse
// Error: 400 Bad Request if the symbol is missing or the period is invalid
// Error: 404 Not Found if the symbol is unknown or has no data for the period
// Error: 502 Bad Gateway if the market data source fails
func (h *StockHandler) Stock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	stock, err := h.quoteService.GetStock(r.Context(), q.Get("symbol"), q.Get("period"))
	if err != nil {
		respondQuoteError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, stock)
}
