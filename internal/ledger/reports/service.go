package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/ledger"
)

// RepositoryPort reads aggregated posted-line activity. Implementations must
// only ever see committed posted rows; draft entries never reach a report.
type RepositoryPort interface {
	ActivityAsOf(ctx context.Context, companyID int64, asOf *time.Time) ([]AccountActivity, error)
	ActivityInRange(ctx context.Context, companyID int64, from, to time.Time) ([]AccountActivity, error)
	AccountActivity(ctx context.Context, companyID, accountID int64, asOf *time.Time) (AccountActivity, bool, error)
}

// Service exposes the balance calculator. It holds no mutable state; every
// call recomputes from the store, trading performance for correctness.
type Service struct {
	repo       RepositoryPort
	logger     *slog.Logger
	corruption prometheus.Counter
}

// NewService constructs the reporting service. corruption counts trial
// balances observed out of balance and may be nil in tests.
func NewService(repo RepositoryPort, logger *slog.Logger, corruption prometheus.Counter) *Service {
	return &Service{repo: repo, logger: logger, corruption: corruption}
}

// AccountBalance sums all posted lines for the account up to asOf inclusive
// (all time when nil) and applies the sign convention for its type.
func (s *Service) AccountBalance(ctx context.Context, companyID, accountID int64, asOf *time.Time) (decimal.Decimal, error) {
	activity, ok, err := s.repo.AccountActivity(ctx, companyID, accountID, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, ledger.ErrAccountNotFound
	}
	return activity.Balance()
}

// TrialBalance computes natural-side balances for every account. An
// unbalanced result on a validated ledger is a data-integrity fault: it is
// logged at error level and counted, never silently swallowed.
func (s *Service) TrialBalance(ctx context.Context, companyID int64, asOf *time.Time) (TrialBalance, error) {
	activity, err := s.repo.ActivityAsOf(ctx, companyID, asOf)
	if err != nil {
		return TrialBalance{}, err
	}
	tb, err := BuildTrialBalance(activity)
	if err != nil {
		return TrialBalance{}, err
	}
	if !tb.IsBalanced {
		if s.logger != nil {
			s.logger.Error("trial balance out of balance: ledger corruption",
				slog.Int64("company_id", companyID),
				slog.String("total_debits", tb.TotalDebits.StringFixed(2)),
				slog.String("total_credits", tb.TotalCredits.StringFixed(2)))
		}
		if s.corruption != nil {
			s.corruption.Inc()
		}
	}
	return tb, nil
}

// ProfitAndLoss aggregates revenue and expense activity over a date range.
func (s *Service) ProfitAndLoss(ctx context.Context, companyID int64, from, to time.Time) (ProfitAndLoss, error) {
	if to.Before(from) {
		return ProfitAndLoss{}, fmt.Errorf("reports: range end %s before start %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}
	activity, err := s.repo.ActivityInRange(ctx, companyID, from, to)
	if err != nil {
		return ProfitAndLoss{}, err
	}
	return BuildProfitAndLoss(activity)
}

// BalanceSheet aggregates asset, liability, and equity balances as of a date.
func (s *Service) BalanceSheet(ctx context.Context, companyID int64, asOf *time.Time) (BalanceSheet, error) {
	activity, err := s.repo.ActivityAsOf(ctx, companyID, asOf)
	if err != nil {
		return BalanceSheet{}, err
	}
	return BuildBalanceSheet(activity)
}
