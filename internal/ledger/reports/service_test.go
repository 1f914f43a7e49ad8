package reports

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/ledger"
)

type stubReportRepo struct {
	activity []AccountActivity
	byID     map[int64]AccountActivity
}

func (r stubReportRepo) ActivityAsOf(ctx context.Context, companyID int64, asOf *time.Time) ([]AccountActivity, error) {
	return r.activity, nil
}

func (r stubReportRepo) ActivityInRange(ctx context.Context, companyID int64, from, to time.Time) ([]AccountActivity, error) {
	return r.activity, nil
}

func (r stubReportRepo) AccountActivity(ctx context.Context, companyID, accountID int64, asOf *time.Time) (AccountActivity, bool, error) {
	a, ok := r.byID[accountID]
	return a, ok, nil
}

func TestAccountBalance(t *testing.T) {
	repo := stubReportRepo{byID: map[int64]AccountActivity{
		5: {AccountID: 5, Type: ledger.AccountTypeLiability, Debit: amt("100.00"), Credit: amt("400.00")},
	}}
	svc := NewService(repo, slog.Default(), nil)

	balance, err := svc.AccountBalance(context.Background(), 1, 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !balance.Equal(decimal.RequireFromString("300.00")) {
		t.Fatalf("balance = %s, want 300.00", balance)
	}

	_, err = svc.AccountBalance(context.Background(), 1, 99, nil)
	if !errors.Is(err, ledger.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestTrialBalanceCountsCorruption(t *testing.T) {
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_corruption_total"})
	repo := stubReportRepo{activity: []AccountActivity{
		{AccountID: 1, Code: "1000", Type: ledger.AccountTypeAsset, Debit: amt("100.00")},
	}}
	svc := NewService(repo, slog.Default(), counter)

	tb, err := svc.TrialBalance(context.Background(), 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if tb.IsBalanced {
		t.Fatal("one-sided activity must be unbalanced")
	}
	if got := testutil.ToFloat64(counter); got != 1 {
		t.Fatalf("corruption counter = %v, want 1", got)
	}
}

func TestTrialBalanceBalancedDoesNotCount(t *testing.T) {
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_corruption_ok_total"})
	repo := stubReportRepo{activity: sampleActivity()}
	svc := NewService(repo, slog.Default(), counter)

	if _, err := svc.TrialBalance(context.Background(), 1, nil); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(counter); got != 0 {
		t.Fatalf("corruption counter = %v, want 0", got)
	}
}

func TestProfitAndLossRejectsInvertedRange(t *testing.T) {
	svc := NewService(stubReportRepo{}, slog.Default(), nil)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, -1, 0)
	if _, err := svc.ProfitAndLoss(context.Background(), 1, from, to); err == nil {
		t.Fatal("inverted range must be rejected")
	}
}
