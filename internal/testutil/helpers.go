package testutil

import (
	"math/rand"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/yaojiejia/portfolioAnalysis/internal/api/middleware"
	"github.com/yaojiejia/portfolioAnalysis/internal/repository"
	"github.com/yaojiejia/portfolioAnalysis/internal/service"
	"github.com/yaojiejia/portfolioAnalysis/internal/store"
)

// TestJWTSecret signs access tokens in tests.
const TestJWTSecret = "test-jwt-secret"

// TestAuthSettings are the token settings used by NewTestAuthService.
var TestAuthSettings = service.AuthSettings{
	JWTSecret:               TestJWTSecret,
	AccessTokenTTL:          24 * time.Hour,
	RefreshedAccessTokenTTL: 30 * time.Minute,
	RefreshTokenTTL:         7 * 24 * time.Hour,
}

func NewTestAuthService(t *testing.T, db *sqlx.DB) *service.AuthService {
	t.Helper()

	svc, err := service.NewAuthService(repository.NewUserRepository(db), TestAuthSettings)
	if err != nil {
		t.Fatalf("Failed to create auth service: %v", err)
	}
	return svc
}

// NewTestQuoteService creates a QuoteService over the mock client and a fresh memory store.
func NewTestQuoteService(t *testing.T, mockYahoo *MockYahooClient) *service.QuoteService {
	t.Helper()

	return service.NewQuoteService(mockYahoo, store.NewMemoryStore(), time.Minute, time.Hour, 4)
}

func NewTestTradeService(t *testing.T, db *sqlx.DB, quoteService *service.QuoteService) *service.TradeService {
	t.Helper()

	return service.NewTradeService(db, repository.NewTransactionRepository(db), quoteService)
}

func NewTestTransactionService(t *testing.T, db *sqlx.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(repository.NewTransactionRepository(db))
}

func NewTestPortfolioService(t *testing.T, db *sqlx.DB, quoteService *service.QuoteService) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(repository.NewTransactionRepository(db), quoteService)
}

func NewTestGuestPortfolioService(t *testing.T, st store.Store, quoteService *service.QuoteService) *service.GuestPortfolioService {
	t.Helper()

	return service.NewGuestPortfolioService(st, quoteService, time.Hour)
}

func NewTestSystemService(t *testing.T, db *sqlx.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, map[string]bool{"redis_store": false})
}

// AsUser returns a copy of req authenticated as userID, as the Auth middleware would leave it.
func AsUser(req *http.Request, userID string) *http.Request {
	claims := &service.AccessClaims{UserID: userID, Type: service.TokenTypeAccess}
	return req.WithContext(middleware.WithClaims(req.Context(), claims))
}

// AsGuest returns a copy of req carrying guestID, as the Guest middleware would leave it.
func AsGuest(req *http.Request, guestID string) *http.Request {
	return req.WithContext(middleware.WithGuestID(req.Context(), guestID))
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
