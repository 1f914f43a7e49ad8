package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/ledgerline/ledgerline/internal/app"
	"github.com/ledgerline/ledgerline/internal/companies"
	"github.com/ledgerline/ledgerline/internal/ledger/reports"
	"github.com/ledgerline/ledgerline/internal/observability"
	"github.com/ledgerline/ledgerline/internal/platform/db"
	"github.com/ledgerline/ledgerline/internal/shared"
	"github.com/ledgerline/ledgerline/jobs"
)

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

	metrics := observability.NewMetrics()
	reportsService := reports.NewService(reports.NewRepository(pool), logger, metrics.LedgerCorruptionCounter())
	companiesRepo := companies.NewPostgresRepository(pool)
	auditLogger := shared.NewAuditLogger(pool)

	scanner := jobs.NewIntegrityScanner(companiesRepo, reportsService, logger)
	purger := jobs.NewAuditPurger(auditLogger, logger)

	scanTask, err := jobs.NewIntegrityScanTask(jobs.IntegrityScanPayload{})
	if err != nil {
		logger.Error("build scan task", slog.Any("error", err))
		os.Exit(1)
	}
	purgeTask, err := jobs.NewAuditPurgeTask(jobs.AuditPurgePayload{RetainFor: cfg.AuditRetention})
	if err != nil {
		logger.Error("build purge task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerIntegrityScan, Handler: scanner.Handle},
			{Type: jobs.TaskAuditPurge, Handler: purger.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 1 * * *", Task: scanTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 3 * * 0", Task: purgeTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
