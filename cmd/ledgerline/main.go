package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ledgerline/ledgerline/internal/app"
	"github.com/ledgerline/ledgerline/internal/audit"
	"github.com/ledgerline/ledgerline/internal/auth"
	"github.com/ledgerline/ledgerline/internal/authz"
	"github.com/ledgerline/ledgerline/internal/companies"
	"github.com/ledgerline/ledgerline/internal/ledger"
	"github.com/ledgerline/ledgerline/internal/ledger/reports"
	"github.com/ledgerline/ledgerline/internal/observability"
	"github.com/ledgerline/ledgerline/internal/platform/cache"
	"github.com/ledgerline/ledgerline/internal/platform/db"
	"github.com/ledgerline/ledgerline/internal/shared"
	"github.com/ledgerline/ledgerline/internal/users"
	"github.com/ledgerline/ledgerline/jobs"
)

// integrityJobs adapts the queue client to the reports handler port.
type integrityJobs struct {
	client *jobs.Client
}

func (j integrityJobs) EnqueueIntegrityScan(ctx context.Context, companyID int64) error {
	_, err := j.client.EnqueueIntegrityScan(ctx, jobs.IntegrityScanPayload{CompanyID: companyID})
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "ledgerline_session", cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(pool)
	metrics := observability.NewMetrics()

	authzService := authz.NewService(authz.NewRepository(pool))
	authzMiddleware := authz.Middleware{Service: authzService, Logger: logger}

	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	ledgerService := ledger.NewService(ledger.NewRepository(pool), auditLogger, authzService)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	reportsService := reports.NewService(reports.NewRepository(pool), logger, metrics.LedgerCorruptionCounter())
	reportsHandler := reports.NewHandler(logger, reportsService, integrityJobs{client: jobsClient})

	companiesService := companies.NewService(companies.NewPostgresRepository(pool), authzService, auditLogger)
	companiesHandler := companies.NewHandler(logger, companiesService)

	usersService := users.NewService(users.NewPostgresRepository(pool), authzService, auditLogger)
	usersHandler := users.NewHandler(logger, usersService)

	auditHandler := audit.NewHandler(logger, auditLogger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		AuthHandler:      authHandler,
		CompaniesHandler: companiesHandler,
		UsersHandler:     usersHandler,
		LedgerHandler:    ledgerHandler,
		ReportsHandler:   reportsHandler,
		AuditHandler:     auditHandler,
		Authz:            authzMiddleware,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
