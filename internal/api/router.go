package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yaojiejia/portfolioAnalysis/internal/api/handlers"
	custommiddleware "github.com/yaojiejia/portfolioAnalysis/internal/api/middleware"
	"github.com/yaojiejia/portfolioAnalysis/internal/config"
	"github.com/yaojiejia/portfolioAnalysis/internal/service"
)

// Services groups the services the HTTP layer delegates to.
type Services struct {
	System      *service.SystemService
	Auth        *service.AuthService
	Quote       *service.QuoteService
	Trade       *service.TradeService
	Transaction *service.TransactionService
	Portfolio   *service.PortfolioService
	Guest       *service.GuestPortfolioService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	r.Use(custommiddleware.NewCORS(cfg.CORS.AllowedOrigins))

	requireAuth := custommiddleware.Auth(svc.Auth)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/auth", func(r chi.Router) {
			authHandler := handlers.NewAuthHandler(svc.Auth, cfg.Auth.CookieSecure, cfg.Auth.RefreshTokenTTL)
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Post("/refresh", authHandler.Refresh)
			r.With(requireAuth).Get("/user", authHandler.User)
			r.With(requireAuth).Get("/test", authHandler.TestAuth)
		})

		stockHandler := handlers.NewStockHandler(svc.Quote)
		r.Get("/stock", stockHandler.Stock)

		r.Route("/trade", func(r chi.Router) {
			r.Use(requireAuth)
			tradeHandler := handlers.NewTradeHandler(svc.Trade)
			r.Post("/", tradeHandler.Trade)
			r.Get("/price", tradeHandler.CurrentPrice)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(requireAuth)
			transactionHandler := handlers.NewTransactionHandler(svc.Transaction)
			r.Get("/", transactionHandler.Transactions)
			r.With(custommiddleware.ValidateUUIDMiddleware).Get("/{uuid}", transactionHandler.GetTransaction)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Use(requireAuth)
			portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio)
			r.Get("/positions", portfolioHandler.Positions)
			r.Get("/summary", portfolioHandler.Summary)
		})

		r.Route("/guest/portfolio", func(r chi.Router) {
			r.Use(custommiddleware.Guest(cfg.Auth.CookieSecure, cfg.Cache.GuestTTL))
			guestHandler := handlers.NewGuestHandler(svc.Guest)
			r.Get("/", guestHandler.Portfolio)
			r.Post("/", guestHandler.AddEntry)
			r.Delete("/", guestHandler.Clear)
			r.Post("/{index}/sell", guestHandler.SellEntry)
		})
	})

	return r
}
