package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testAccounts() map[int64]Account {
	return map[int64]Account{
		1: {ID: 1, CompanyID: 7, Code: "1000", Name: "Cash", Type: AccountTypeAsset, IsActive: true},
		2: {ID: 2, CompanyID: 7, Code: "4000", Name: "Sales", Type: AccountTypeRevenue, IsActive: true},
		3: {ID: 3, CompanyID: 7, Code: "1900", Name: "Dormant", Type: AccountTypeAsset, IsActive: false},
		4: {ID: 4, CompanyID: 9, Code: "1000", Name: "Other tenant cash", Type: AccountTypeAsset, IsActive: true},
	}
}

func testHeader(total string) JournalEntry {
	return JournalEntry{
		CompanyID:   7,
		Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "invoice 42",
		TotalAmount: decimal.RequireFromString(total),
	}
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestValidateEntryAccepts(t *testing.T) {
	lines := []JournalEntryLine{
		{AccountID: 1, Debit: amt("150.00")},
		{AccountID: 2, Credit: amt("150.00")},
	}
	if err := ValidateEntry(testHeader("150.00"), lines, testAccounts()); err != nil {
		t.Fatalf("balanced entry rejected: %v", err)
	}
	// Validation is pure; a second run over the same input must agree.
	if err := ValidateEntry(testHeader("150.00"), lines, testAccounts()); err != nil {
		t.Fatalf("second validation disagreed: %v", err)
	}
}

func TestValidateEntryRejections(t *testing.T) {
	cases := []struct {
		name     string
		header   JournalEntry
		lines    []JournalEntryLine
		wantKind error
		wantLine int
	}{
		{
			name:     "empty entry",
			header:   testHeader("0"),
			lines:    nil,
			wantKind: ErrEmptyEntry,
			wantLine: -1,
		},
		{
			name:   "unknown account",
			header: testHeader("10.00"),
			lines: []JournalEntryLine{
				{AccountID: 99, Debit: amt("10.00")},
				{AccountID: 2, Credit: amt("10.00")},
			},
			wantKind: ErrUnknownOrInactiveAccount,
			wantLine: 0,
		},
		{
			name:   "account of another company",
			header: testHeader("10.00"),
			lines: []JournalEntryLine{
				{AccountID: 4, Debit: amt("10.00")},
				{AccountID: 2, Credit: amt("10.00")},
			},
			wantKind: ErrUnknownOrInactiveAccount,
			wantLine: 0,
		},
		{
			name:   "inactive account",
			header: testHeader("10.00"),
			lines: []JournalEntryLine{
				{AccountID: 1, Debit: amt("10.00")},
				{AccountID: 3, Credit: amt("10.00")},
			},
			wantKind: ErrUnknownOrInactiveAccount,
			wantLine: 1,
		},
		{
			name:   "negative amount",
			header: testHeader("10.00"),
			lines: []JournalEntryLine{
				{AccountID: 1, Debit: amt("-10.00")},
				{AccountID: 2, Credit: amt("10.00")},
			},
			wantKind: ErrInvalidLineAmount,
			wantLine: 0,
		},
		{
			name:   "zero line",
			header: testHeader("10.00"),
			lines: []JournalEntryLine{
				{AccountID: 1, Debit: amt("10.00")},
				{AccountID: 2},
			},
			wantKind: ErrInvalidLineAmount,
			wantLine: 1,
		},
		{
			name:   "both sides on one line",
			header: testHeader("10.00"),
			lines: []JournalEntryLine{
				{AccountID: 1, Debit: amt("10.00"), Credit: amt("10.00")},
				{AccountID: 2, Credit: amt("10.00")},
			},
			wantKind: ErrInvalidLineAmount,
			wantLine: 0,
		},
		{
			name:   "unbalanced",
			header: testHeader("100.00"),
			lines: []JournalEntryLine{
				{AccountID: 1, Debit: amt("100.00")},
				{AccountID: 2, Credit: amt("99.98")},
			},
			wantKind: ErrUnbalancedEntry,
			wantLine: -1,
		},
		{
			name:   "header total mismatch",
			header: testHeader("999.00"),
			lines: []JournalEntryLine{
				{AccountID: 1, Debit: amt("100.00")},
				{AccountID: 2, Credit: amt("100.00")},
			},
			wantKind: ErrTotalMismatch,
			wantLine: -1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateEntry(tc.header, tc.lines, testAccounts())
			if !errors.Is(err, tc.wantKind) {
				t.Fatalf("got %v, want kind %v", err, tc.wantKind)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error %v is not a *ValidationError", err)
			}
			if verr.Line != tc.wantLine {
				t.Errorf("line = %d, want %d", verr.Line, tc.wantLine)
			}
		})
	}
}

func TestValidateEntryEpsilonBoundary(t *testing.T) {
	// A rounding residue strictly below one cent passes.
	lines := []JournalEntryLine{
		{AccountID: 1, Debit: amt("100.004")},
		{AccountID: 2, Credit: amt("100.00")},
	}
	if err := ValidateEntry(testHeader("100.004"), lines, testAccounts()); err != nil {
		t.Fatalf("sub-epsilon difference rejected: %v", err)
	}

	// Exactly one cent off fails.
	lines[0].Debit = amt("100.01")
	err := ValidateEntry(testHeader("100.01"), lines, testAccounts())
	if !errors.Is(err, ErrUnbalancedEntry) {
		t.Fatalf("one-cent difference accepted: %v", err)
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		if verr.Difference.String() != "0.01" {
			t.Errorf("difference = %s, want 0.01", verr.Difference)
		}
	}
}
