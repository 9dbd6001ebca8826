package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/dentalcare/dentalcare/internal/config"
	"github.com/dentalcare/dentalcare/internal/domain/account"
	"github.com/dentalcare/dentalcare/internal/domain/chat"
	"github.com/dentalcare/dentalcare/internal/domain/patient"
	"github.com/dentalcare/dentalcare/internal/platform/auth"
	"github.com/dentalcare/dentalcare/internal/platform/db"
	"github.com/dentalcare/dentalcare/internal/platform/inference"
	"github.com/dentalcare/dentalcare/internal/platform/metrics"
	"github.com/dentalcare/dentalcare/internal/platform/middleware"
	"github.com/dentalcare/dentalcare/internal/platform/openapi"
	"github.com/dentalcare/dentalcare/internal/platform/validate"
)

const (
	bodyLimit  = "1M"
	apiVersion = "0.1.0"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	// Migrations
	if cfg.MigrateOnStart {
		if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
			logger.Error().Err(err).Msg("migrations failed")
			return err
		}
		logger.Info().Msg("migrations applied")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// Auth
	tokens, err := auth.NewTokenService(cfg.SecretKey, cfg.Algorithm)
	if err != nil {
		return err
	}
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond:     cfg.RateLimitRPS,
		Burst:                 cfg.RateLimitBurst,
		AuthRequestsPerSecond: cfg.AuthRateLimitRPS,
		AuthBurst:             cfg.AuthRateLimitBurst,
	})
	defer limiter.Stop()

	e := newEcho(cfg, logger, tokens, collector, limiter)
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(registry)))

	// Domain services
	txm := db.NewTxManager(pool)

	llm := inference.NewClient(inference.Config{
		BaseURL: cfg.OllamaBaseURL,
		Model:   cfg.OllamaModel,
		Timeout: cfg.InferenceTimeout(),
	}, logger, collector)

	chatSvc := chat.NewService(chat.NewSessionRepoPG(pool), chat.NewMessageRepoPG(pool), txm, llm, logger)
	chatSvc.SetSystemPrompt(cfg.ChatSystemPrompt)

	accountSvc := account.NewService(account.NewUserRepoPG(pool), chatSvc, txm, hasher, tokens, cfg.TokenTTL(), logger)
	accountSvc.SetRecorder(collector)

	patientSvc := patient.NewService(patient.NewPatientRepoPG(pool), logger)

	// Routes
	account.NewHandler(accountSvc).RegisterRoutes(e.Group("/auth"), limiter.Auth())
	chat.NewHandler(chatSvc).RegisterRoutes(e.Group("/chat"))
	patient.NewHandler(patientSvc).RegisterRoutes(e.Group("/patients"))

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("model", llm.Model()).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down server")
	// Long enough for an in-flight chat turn to finish its writes.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newEcho builds the server with its global middleware chain and the
// routes that need no database.
func newEcho(cfg *config.Config, logger zerolog.Logger, tokens auth.TokenValidator,
	collector *metrics.Collector, limiter *middleware.RateLimiter) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)
	e.Validator = validate.New()
	e.IPExtractor = ipExtractor(cfg)

	e.Pre(echomw.RemoveTrailingSlash())

	e.Use(middleware.Recovery())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Metrics(collector))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(limiter.General())
	e.Use(auth.Gate(tokens, auth.AuthSkipper))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	newAPIDocs().RegisterRoutes(e)
	return e
}

// newAPIDocs collects the OpenAPI description of every mounted route group.
func newAPIDocs() *openapi.Generator {
	g := openapi.NewGenerator("Dental Care API", apiVersion,
		"Accounts, clinician chat backed by a local model, and the patient directory.")
	account.Document(g)
	chat.Document(g)
	patient.Document(g)
	return g
}

// ipExtractor decides what c.RealIP returns, which keys the rate limiters.
// Forwarding headers are only read from configured proxies.
func ipExtractor(cfg *config.Config) echo.IPExtractor {
	nets, _ := cfg.TrustedProxyNets()
	if len(nets) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := make([]echo.TrustOption, 0, len(nets))
	for _, n := range nets {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}
