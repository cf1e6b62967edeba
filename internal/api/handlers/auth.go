package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/yaojiejia/portfolioAnalysis/internal/api/middleware"
	"github.com/yaojiejia/portfolioAnalysis/internal/api/request"
	"github.com/yaojiejia/portfolioAnalysis/internal/api/response"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
	"github.com/yaojiejia/portfolioAnalysis/internal/service"
	"github.com/yaojiejia/portfolioAnalysis/internal/validation"
)

// RefreshCookieName is the cookie carrying the refresh token.
const RefreshCookieName = "refresh_token"

// AuthHandler handles account and token endpoints.
type AuthHandler struct {
	authService  *service.AuthService
	cookieSecure bool
	refreshTTL   time.Duration
}

// NewAuthHandler creates a new AuthHandler. cookieSecure and refreshTTL
// control the refresh token cookie.
func NewAuthHandler(authService *service.AuthService, cookieSecure bool, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieSecure: cookieSecure,
		refreshTTL:   refreshTTL,
	}
}

// Signup handles POST requests to register an account.
//
// Endpoint: POST /api/auth/signup
// Request Body: SignupRequest (username, email, password)
// Response: 201 Created with {"message": "User created successfully"}
// Error: 400 Bad Request if validation fails or the user already exists
// Error: 500 Internal Server Error if registration fails
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SignupRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSignup(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if _, err := h.authService.Signup(r.Context(), req.Username, req.Email, req.Password); err != nil {
		if errors.Is(err, apperrors.ErrUserExists) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrUserExists.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRegister.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
}

// Login handles POST requests to log in. The refresh token is set as an
// HttpOnly cookie; the access token is returned in the body.
//
// Endpoint: POST /api/auth/login
// Request Body: LoginRequest (email, password)
// Response: 200 OK with model.LoginResult
// Error: 400 Bad Request if the body is invalid
// Error: 401 Unauthorized if the credentials are wrong
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.LoginRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateLogin(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			response.RespondError(w, http.StatusUnauthorized, apperrors.ErrInvalidCredentials.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToIssueToken.Error(), err.Error())
		return
	}

	h.setRefreshCookie(w, result.RefreshToken, int(h.refreshTTL.Seconds()))
	response.RespondJSON(w, http.StatusOK, result)
}

// Logout clears the refresh token cookie.
//
// Endpoint: POST /api/auth/logout
// Response: 200 OK with {"message": "Logged out successfully"}
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.setRefreshCookie(w, "", -1)
	response.RespondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Refresh exchanges the refresh token cookie for a new access token.
//
// Endpoint: POST /api/auth/refresh
// Response: 200 OK with {"access_token": "..."}
// Error: 401 Unauthorized if the cookie is missing, invalid or expired
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		response.RespondError(w, http.StatusUnauthorized, "Refresh token not found", nil)
		return
	}

	token, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidToken) || errors.Is(err, apperrors.ErrMissingToken) {
			response.RespondError(w, http.StatusUnauthorized, "Invalid refresh token", nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToIssueToken.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

// User returns the profile of the authenticated user.
//
// Endpoint: GET /api/auth/user
// Response: 200 OK with model.User
// Error: 404 Not Found if the user no longer exists
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.GetUser(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrUserNotFound.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveUser.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, user)
}

// TestAuth echoes the verified token claims.
//
// Endpoint: GET /api/auth/test
// Response: 200 OK with {"message": "Token is valid", "payload": {...}}
func (h *AuthHandler) TestAuth(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	response.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "Token is valid",
		"payload": claims,
	})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, value string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if h.cookieSecure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: sameSite,
	})
}
