package handlers

import (
	"errors"
	"net/http"

	"github.com/yaojiejia/portfolioAnalysis/internal/api/middleware"
	"github.com/yaojiejia/portfolioAnalysis/internal/api/request"
	"github.com/yaojiejia/portfolioAnalysis/internal/api/response"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/service"
	"github.com/yaojiejia/portfolioAnalysis/internal/validation"
)

// TradeHandler handles buy and sell orders of authenticated users.
type TradeHandler struct {
	tradeService *service.TradeService
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradeService *service.TradeService) *TradeHandler {
	return &TradeHandler{tradeService: tradeService}
}

// Trade handles POST requests to buy or sell shares at the current price.
//
// Endpoint: POST /api/trade
// Request Body: TradeRequest (action, symbol, shares)
// Response: 201 Created with {"message": "Transaction successful", "transaction": {...}}
// Error: 400 Bad Request if validation fails or the sell exceeds the position
// Error: 404 Not Found if the symbol is unknown
// Error: 422 Unprocessable Entity if the action is not buy or sell
// Error: 502 Bad Gateway if no price could be fetched
func (h *TradeHandler) Trade(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.TradeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateTrade(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	transaction, err := h.tradeService.Trade(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidAction):
			response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrInvalidAction.Error(), nil)
		case errors.Is(err, apperrors.ErrPositionNotFound):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrPositionNotFound.Error(), nil)
		case errors.Is(err, apperrors.ErrInsufficientShares):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInsufficientShares.Error(), nil)
		case errors.Is(err, apperrors.ErrFailedToTrade):
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToTrade.Error(), err.Error())
		default:
			respondQuoteError(w, err)
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, map[string]any{
		"message":     "Transaction successful",
		"transaction": transaction,
	})
}

// CurrentPrice handles GET requests for the latest price of a symbol.
//
// Endpoint: GET /api/trade/price?symbol=AAPL
// Response: 200 OK with {"data": 187.44}
func (h *TradeHandler) CurrentPrice(w http.ResponseWriter, r *http.Request) {
	price, err := h.tradeService.CurrentPrice(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		respondQuoteError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{"data": price})
}
