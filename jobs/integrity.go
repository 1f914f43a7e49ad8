package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerline/ledgerline/internal/ledger/reports"
)

// CompanyLister yields the company IDs a full scan covers.
type CompanyLister interface {
	CompanyIDs(ctx context.Context) ([]int64, error)
}

// IntegrityScanner re-runs the trial balance for posted ledgers outside the
// request path. The report service already logs and counts corrupt ledgers,
// so the scanner only has to drive it across companies.
type IntegrityScanner struct {
	companies CompanyLister
	reports   *reports.Service
	logger    *slog.Logger
}

// NewIntegrityScanner builds the scanner.
func NewIntegrityScanner(companies CompanyLister, reports *reports.Service, logger *slog.Logger) *IntegrityScanner {
	return &IntegrityScanner{companies: companies, reports: reports, logger: logger}
}

// Handle processes TaskLedgerIntegrityScan tasks.
func (s *IntegrityScanner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload IntegrityScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.CompanyID != 0 {
		return s.scanCompany(ctx, payload.CompanyID)
	}

	ids, err := s.companies.CompanyIDs(ctx)
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			return s.scanCompany(ctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("ledger integrity scan finished", slog.Int("companies", len(ids)))
	return nil
}

func (s *IntegrityScanner) scanCompany(ctx context.Context, companyID int64) error {
	start := time.Now()
	tb, err := s.reports.TrialBalance(ctx, companyID, nil)
	if err != nil {
		return fmt.Errorf("integrity scan company %d: %w", companyID, err)
	}
	s.logger.Debug("ledger scanned",
		slog.Int64("company_id", companyID),
		slog.Bool("balanced", tb.IsBalanced),
		slog.Duration("took", time.Since(start)))
	return nil
}

// AuditStore is the slice of the audit logger the purge job needs.
type AuditStore interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditPurger removes audit rows past the retention window.
type AuditPurger struct {
	store  AuditStore
	logger *slog.Logger
}

// NewAuditPurger builds the purger.
func NewAuditPurger(store AuditStore, logger *slog.Logger) *AuditPurger {
	return &AuditPurger{store: store, logger: logger}
}

// Handle processes TaskAuditPurge tasks.
func (p *AuditPurger) Handle(ctx context.Context, t *asynq.Task) error {
	var payload AuditPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetainFor <= 0 {
		return asynq.SkipRetry
	}
	cutoff := time.Now().Add(-payload.RetainFor)
	removed, err := p.store.PurgeBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	p.logger.Info("audit rows purged", slog.Int64("removed", removed), slog.Time("before", cutoff))
	return nil
}
