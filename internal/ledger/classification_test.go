package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNaturalSide(t *testing.T) {
	cases := []struct {
		accountType AccountType
		want        Side
	}{
		{AccountTypeAsset, SideDebit},
		{AccountTypeExpense, SideDebit},
		{AccountTypeLiability, SideCredit},
		{AccountTypeEquity, SideCredit},
		{AccountTypeRevenue, SideCredit},
	}
	for _, tc := range cases {
		got, err := NaturalSide(tc.accountType)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.accountType, err)
		}
		if got != tc.want {
			t.Errorf("%s: natural side = %s, want %s", tc.accountType, got, tc.want)
		}
	}
	if _, err := NaturalSide(AccountType("PREPAID")); !errors.Is(err, ErrInvalidAccountType) {
		t.Fatalf("expected ErrInvalidAccountType, got %v", err)
	}
}

func TestBalanceContributionSignConvention(t *testing.T) {
	debit := decimal.NewFromInt(300)
	credit := decimal.NewFromInt(100)

	cases := []struct {
		accountType AccountType
		want        string
	}{
		{AccountTypeAsset, "200"},
		{AccountTypeExpense, "200"},
		{AccountTypeLiability, "-200"},
		{AccountTypeEquity, "-200"},
		{AccountTypeRevenue, "-200"},
	}
	for _, tc := range cases {
		got, err := BalanceContribution(tc.accountType, debit, credit)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.accountType, err)
		}
		if got.String() != tc.want {
			t.Errorf("%s: contribution = %s, want %s", tc.accountType, got, tc.want)
		}
	}
}

func TestBalanceContributionUnknownType(t *testing.T) {
	_, err := BalanceContribution(AccountType("GOODWILL"), decimal.Zero, decimal.Zero)
	if !errors.Is(err, ErrInvalidAccountType) {
		t.Fatalf("expected ErrInvalidAccountType, got %v", err)
	}
}

func TestAccountTypeValid(t *testing.T) {
	for _, valid := range []AccountType{AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense} {
		if !valid.Valid() {
			t.Errorf("%s should be valid", valid)
		}
	}
	if AccountType("").Valid() || AccountType("asset").Valid() {
		t.Error("lowercase and empty types must be rejected")
	}
}
