package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yaojiejia/portfolioAnalysis/internal/api"
	"github.com/yaojiejia/portfolioAnalysis/internal/config"
	"github.com/yaojiejia/portfolioAnalysis/internal/database"
	"github.com/yaojiejia/portfolioAnalysis/internal/logger"
	"github.com/yaojiejia/portfolioAnalysis/internal/repository"
	"github.com/yaojiejia/portfolioAnalysis/internal/scheduler"
	"github.com/yaojiejia/portfolioAnalysis/internal/service"
	"github.com/yaojiejia/portfolioAnalysis/internal/store"
	"github.com/yaojiejia/portfolioAnalysis/internal/version"
	"github.com/yaojiejia/portfolioAnalysis/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Str("version", version.Version).Msg("starting portfolio service")

	// Open database connection
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.Driver); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("connected to database")

	// Key/value store: Redis when configured, process memory otherwise
	sched := scheduler.New()

	var kv store.Store
	if cfg.Cache.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := store.NewRedisClient(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		kv = store.NewRedisStore(rdb, cfg.Cache.KeyPrefix)
		log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("using redis store")
	} else {
		mem := store.NewMemoryStore()
		if err := sched.AddJob("store-sweep", "@every 1m", scheduler.StoreSweepJob(mem)); err != nil {
			log.Fatal().Err(err).Msg("failed to schedule store sweep")
		}
		kv = mem
		log.Info().Msg("using in-memory store")
	}

	yahooClient := yahoo.NewFinanceClient(cfg.Yahoo.ChartURL, cfg.Yahoo.SummaryURL, cfg.Yahoo.CookieURL, cfg.Yahoo.Timeout, cfg.Yahoo.Debug)

	// Create repositories
	userRepo := repository.NewUserRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	// Create services
	authService, err := service.NewAuthService(userRepo, service.AuthSettings{
		JWTSecret:               cfg.Auth.JWTSecret,
		FernetKey:               cfg.Auth.FernetKey,
		AccessTokenTTL:          cfg.Auth.AccessTokenTTL,
		RefreshedAccessTokenTTL: cfg.Auth.RefreshedAccessTokenTTL,
		RefreshTokenTTL:         cfg.Auth.RefreshTokenTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure authentication")
	}
	quoteService := service.NewQuoteService(
		yahooClient,
		kv,
		cfg.Cache.QuoteTTL,
		cfg.Cache.ProfileTTL,
		cfg.Jobs.QuoteRefreshConcurrency,
	)
	services := api.Services{
		System: service.NewSystemService(db, map[string]bool{
			"redis_store":   cfg.Cache.RedisAddr != "",
			"quote_refresh": cfg.Jobs.QuoteRefreshSchedule != "",
		}),
		Auth:        authService,
		Quote:       quoteService,
		Trade:       service.NewTradeService(db, transactionRepo, quoteService),
		Transaction: service.NewTransactionService(transactionRepo),
		Portfolio:   service.NewPortfolioService(transactionRepo, quoteService),
		Guest:       service.NewGuestPortfolioService(kv, quoteService, cfg.Cache.GuestTTL),
	}

	// Background jobs
	if err := sched.AddJob("quote-refresh", cfg.Jobs.QuoteRefreshSchedule, scheduler.QuoteRefreshJob(transactionRepo, quoteService)); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule quote refresh")
	}
	sched.Start()

	// Create router
	router := api.NewRouter(services, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	sched.Stop(10 * time.Second)

	log.Info().Msg("server exited")
}
