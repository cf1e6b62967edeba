package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/yaojiejia/portfolioAnalysis/internal/api/response"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into T. Unknown fields, trailing data
// and empty bodies are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return v, fmt.Errorf("request body is empty")
		}
		return v, err
	}
	if dec.More() {
		return v, fmt.Errorf("request body must contain a single JSON object")
	}
	return v, nil
}

// respondQuoteError maps market data failures to HTTP responses.
func respondQuoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidSymbol):
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidSymbol.Error(), nil)
	case errors.Is(err, apperrors.ErrInvalidPeriod):
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidPeriod.Error(), err.Error())
	case errors.Is(err, apperrors.ErrSymbolNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrSymbolNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrNoPriceData):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrNoPriceData.Error(), err.Error())
	default:
		response.RespondError(w, http.StatusBadGateway, apperrors.ErrFailedToFetchStock.Error(), err.Error())
	}
}
