package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/ledger"
)

// TrialBalanceRow places an account's net balance on exactly one column: its
// natural side when the balance is positive, the opposite side when contra.
type TrialBalanceRow struct {
	AccountID int64
	Code      string
	Name      string
	Type      ledger.AccountType
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// TrialBalance lists every account's natural-side balance. IsBalanced is true
// iff total debits equal total credits within the currency epsilon; for a
// ledger whose entries all passed validation it holds by construction, so a
// false value signals data corruption rather than a normal runtime branch.
type TrialBalance struct {
	Rows         []TrialBalanceRow
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	IsBalanced   bool
}

// BuildTrialBalance converts raw account activity into trial balance rows.
func BuildTrialBalance(activity []AccountActivity) (TrialBalance, error) {
	tb := TrialBalance{}
	for _, acc := range activity {
		balance, err := acc.Balance()
		if err != nil {
			return TrialBalance{}, err
		}
		if balance.IsZero() {
			continue
		}
		side, err := ledger.NaturalSide(acc.Type)
		if err != nil {
			return TrialBalance{}, err
		}
		if balance.IsNegative() {
			// Contra balance: show the absolute value on the opposite side.
			balance = balance.Neg()
			if side == ledger.SideDebit {
				side = ledger.SideCredit
			} else {
				side = ledger.SideDebit
			}
		}
		row := TrialBalanceRow{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, Type: acc.Type}
		if side == ledger.SideDebit {
			row.Debit = balance
			tb.TotalDebits = tb.TotalDebits.Add(balance)
		} else {
			row.Credit = balance
			tb.TotalCredits = tb.TotalCredits.Add(balance)
		}
		tb.Rows = append(tb.Rows, row)
	}

	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].Code < tb.Rows[j].Code })
	tb.IsBalanced = tb.TotalDebits.Sub(tb.TotalCredits).Abs().LessThan(ledger.Epsilon)
	return tb, nil
}
