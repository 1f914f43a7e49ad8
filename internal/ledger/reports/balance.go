// Package reports computes account balances and the derived trial balance,
// profit and loss, and balance sheet reports from posted journal lines. All
// computations are pure aggregation over committed data and run safely
// alongside concurrent writes.
package reports

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/ledger"
)

// AccountActivity holds the raw posted debit and credit sums for one account.
type AccountActivity struct {
	AccountID int64
	Code      string
	Name      string
	Type      ledger.AccountType
	SubType   string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// Balance applies the account type's sign convention to the raw sums.
func (a AccountActivity) Balance() (decimal.Decimal, error) {
	return ledger.BalanceContribution(a.Type, a.Debit, a.Credit)
}
