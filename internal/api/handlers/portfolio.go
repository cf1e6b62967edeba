package handlers

import (
	"net/http"
	"strconv"

	"github.com/yaojiejia/portfolioAnalysis/internal/api/middleware"
	"github.com/yaojiejia/portfolioAnalysis/internal/api/response"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/service"
)

// PortfolioHandler handles HTTP requests for portfolio endpoints.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependency.
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Positions handles GET requests for the caller's positions.
//
// Endpoint: GET /api/portfolio/positions?includeClosed=true
// Response: 200 OK with {"positions": [...]}
// Error: 400 Bad Request if includeClosed is not a boolean
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Positions(w http.ResponseWriter, r *http.Request) {
	includeClosed := false
	if v := r.URL.Query().Get("includeClosed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid includeClosed parameter", err.Error())
			return
		}
		includeClosed = b
	}

	positions, err := h.portfolioService.GetPositions(r.Context(), middleware.UserIDFromContext(r.Context()), includeClosed)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePositions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{"positions": positions})
}

// Summary handles GET requests for the caller's dashboard summary.
//
// Endpoint: GET /api/portfolio/summary
// Response: 200 OK with model.PortfolioSummary
// Error: 500 Internal Server Error if the summary cannot be computed
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.portfolioService.GetSummary(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetPortfolioSummary.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
