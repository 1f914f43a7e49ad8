package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports why a proposed journal entry was rejected. Kind is
// one of the sentinel errors in this package so callers can branch with
// errors.Is; Line points at the offending line when the failure is line level.
type ValidationError struct {
	Kind       error
	Line       int // -1 for entry-level failures
	Difference decimal.Decimal
	Detail     string
}

func (e *ValidationError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("%v: line %d: %s", e.Kind, e.Line, e.Detail)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
	}
	return e.Kind.Error()
}

func (e *ValidationError) Unwrap() error { return e.Kind }

func entryError(kind error, detail string) *ValidationError {
	return &ValidationError{Kind: kind, Line: -1, Detail: detail}
}

func lineError(kind error, line int, detail string) *ValidationError {
	return &ValidationError{Kind: kind, Line: line, Detail: detail}
}

// ValidateEntry checks the structural invariants of a proposed entry against
// the accounts it references. accounts must hold every account of the
// header's company that the lines may reference; validation is pure and
// performs no I/O. A nil return means the entry is ready to persist as draft.
//
// A line carrying both a non-zero debit and a non-zero credit is rejected:
// conventional double-entry practice forbids it even though the stored schema
// could represent it.
func ValidateEntry(header JournalEntry, lines []JournalEntryLine, accounts map[int64]Account) error {
	if len(lines) == 0 {
		return entryError(ErrEmptyEntry, "")
	}

	for i, line := range lines {
		acc, ok := accounts[line.AccountID]
		if !ok {
			return lineError(ErrUnknownOrInactiveAccount, i, fmt.Sprintf("account %d does not exist", line.AccountID))
		}
		if acc.CompanyID != header.CompanyID {
			return lineError(ErrUnknownOrInactiveAccount, i, fmt.Sprintf("account %d belongs to another company", line.AccountID))
		}
		if !acc.IsActive {
			return lineError(ErrUnknownOrInactiveAccount, i, fmt.Sprintf("account %s is inactive", acc.Code))
		}
	}

	for i, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return lineError(ErrInvalidLineAmount, i, "amounts must be non-negative")
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			return lineError(ErrInvalidLineAmount, i, "line must carry a debit or a credit")
		}
		if !line.Debit.IsZero() && !line.Credit.IsZero() {
			return lineError(ErrInvalidLineAmount, i, "line cannot carry both a debit and a credit")
		}
	}

	var debits, credits decimal.Decimal
	for _, line := range lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	if diff := debits.Sub(credits); diff.Abs().GreaterThanOrEqual(Epsilon) {
		return &ValidationError{
			Kind:       ErrUnbalancedEntry,
			Line:       -1,
			Difference: diff,
			Detail:     fmt.Sprintf("debits %s != credits %s", debits.StringFixed(2), credits.StringFixed(2)),
		}
	}

	if diff := header.TotalAmount.Sub(debits); diff.Abs().GreaterThanOrEqual(Epsilon) {
		return &ValidationError{
			Kind:       ErrTotalMismatch,
			Line:       -1,
			Difference: diff,
			Detail:     fmt.Sprintf("header total %s != debit sum %s", header.TotalAmount.StringFixed(2), debits.StringFixed(2)),
		}
	}

	return nil
}
