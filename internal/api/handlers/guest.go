package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/yaojiejia/portfolioAnalysis/internal/api/middleware"
	"github.com/yaojiejia/portfolioAnalysis/internal/api/request"
	"github.com/yaojiejia/portfolioAnalysis/internal/api/response"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/service"
	"github.com/yaojiejia/portfolioAnalysis/internal/validation"
)

// GuestHandler serves the portfolio of non-authenticated visitors,
// identified by the guest cookie.
type GuestHandler struct {
	guestService *service.GuestPortfolioService
}

// NewGuestHandler creates a new GuestHandler.
func NewGuestHandler(guestService *service.GuestPortfolioService) *GuestHandler {
	return &GuestHandler{guestService: guestService}
}

// Portfolio lists the guest portfolio.
//
// Endpoint: GET /api/guest/portfolio
// Response: 200 OK with {"portfolio": [...]}
func (h *GuestHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	entries, err := h.guestService.GetPortfolio(r.Context(), middleware.GuestIDFromContext(r.Context()))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToLoadGuestPortfolio.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{"portfolio": entries})
}

// AddEntry adds a line priced at the current quote.
//
// Endpoint: POST /api/guest/portfolio
// Request Body: AddGuestEntryRequest (symbol, quantity, optional costBasis)
// Response: 201 Created with {"portfolio": [...]}
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the symbol is unknown
func (h *GuestHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.AddGuestEntryRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateAddGuestEntry(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	entries, err := h.guestService.AddEntry(r.Context(), middleware.GuestIDFromContext(r.Context()), req)
	if err != nil {
		h.respondStoreOrQuoteError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, map[string]any{"portfolio": entries})
}

// SellEntry sells shares from the line at {index}.
//
// Endpoint: POST /api/guest/portfolio/{index}/sell
// Request Body: SellGuestEntryRequest (shares)
// Response: 200 OK with {"portfolio": [...]}
// Error: 400 Bad Request if shares is invalid or exceeds the line's quantity
// Error: 404 Not Found if there is no line at index
func (h *GuestHandler) SellEntry(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid index", err.Error())
		return
	}

	req, err := parseJSON[request.SellGuestEntryRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSellGuestEntry(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	entries, err := h.guestService.SellEntry(r.Context(), middleware.GuestIDFromContext(r.Context()), index, req.Shares)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrGuestEntryNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrGuestEntryNotFound.Error(), nil)
		case errors.Is(err, apperrors.ErrInsufficientShares):
			response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			h.respondStoreOrQuoteError(w, err)
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{"portfolio": entries})
}

// Clear deletes the guest portfolio.
//
// Endpoint: DELETE /api/guest/portfolio
// Response: 204 No Content
func (h *GuestHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.guestService.ClearPortfolio(r.Context(), middleware.GuestIDFromContext(r.Context())); err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSaveGuestPortfolio.Error(), err.Error())
		return
	}

	response.RespondNoContent(w)
}

func (h *GuestHandler) respondStoreOrQuoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrFailedToLoadGuestPortfolio):
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToLoadGuestPortfolio.Error(), err.Error())
	case errors.Is(err, apperrors.ErrFailedToSaveGuestPortfolio):
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSaveGuestPortfolio.Error(), err.Error())
	default:
		respondQuoteError(w, err)
	}
}
