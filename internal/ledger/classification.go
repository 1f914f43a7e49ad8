package ledger

import "github.com/shopspring/decimal"

// AccountType enumerates chart of accounts categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Side identifies the natural balance side of an account type.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// NaturalSide returns the side a positive balance of this type sits on.
// Asset and expense accounts are debit-normal; the rest are credit-normal.
func NaturalSide(t AccountType) (Side, error) {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return SideDebit, nil
	case AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue:
		return SideCredit, nil
	}
	return "", ErrInvalidAccountType
}

// BalanceContribution converts raw debit and credit sums into a signed balance
// using the type's sign convention: debit minus credit for debit-normal types,
// credit minus debit otherwise.
func BalanceContribution(t AccountType, debit, credit decimal.Decimal) (decimal.Decimal, error) {
	side, err := NaturalSide(t)
	if err != nil {
		return decimal.Zero, err
	}
	if side == SideDebit {
		return debit.Sub(credit), nil
	}
	return credit.Sub(debit), nil
}
