package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/openclaw/waba-signup-go/internal/config"
	"github.com/openclaw/waba-signup-go/internal/database"
	"github.com/openclaw/waba-signup-go/internal/graph"
	"github.com/openclaw/waba-signup-go/internal/handler"
	"github.com/openclaw/waba-signup-go/internal/jobs"
	"github.com/openclaw/waba-signup-go/internal/middleware"
	"github.com/openclaw/waba-signup-go/internal/redis"
	"github.com/openclaw/waba-signup-go/internal/repository"
	"github.com/openclaw/waba-signup-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Local development convenience; ignored when no .env exists.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	graphClient, err := graph.NewClient(graph.Options{
		BaseURL:     cfg.GraphBaseURL,
		Version:     cfg.GraphAPIVersion,
		AppID:       cfg.MetaAppID,
		AppSecret:   cfg.MetaAppSecret,
		RedirectURI: cfg.MetaRedirectURI,
		ProxyURL:    cfg.GraphProxyURL,
		Timeout:     cfg.GraphTimeout(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build graph client")
	}

	accountRepo := repository.NewBusinessAccountRepository(db.DB)
	stateRepo := repository.NewOAuthStateRepository(db.DB)

	rateLimiter := service.NewRateLimiter(redisClient.Client)
	signupService := service.NewSignupService(
		cfg,
		service.NewTokenExchanger(graphClient),
		service.NewDiscoverer(graphClient),
		service.NewTokenIssuer(cfg.SessionJWTSecret, cfg.SessionTokenTTL()),
		accountRepo,
		stateRepo,
	)

	signupRateLimit := middleware.NewIPRateLimitMiddleware(
		rateLimiter, cfg.SignupRateLimitPerMin, time.Minute, "signup",
	)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	signupHandler := handler.NewSignupHandler(signupService, cfg.FrontendURL)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)
	r.Use(securityHeadersMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(signupRateLimit.Handler)
		r.Mount("/", signupHandler.Routes())
	})

	cleanupJob := jobs.NewCleanupJob(stateRepo, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
