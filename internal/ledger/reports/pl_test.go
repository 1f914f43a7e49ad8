package reports

import (
	"testing"

	"github.com/ledgerline/ledgerline/internal/ledger"
)

func TestBuildProfitAndLoss(t *testing.T) {
	activity := []AccountActivity{
		{AccountID: 1, Code: "4000", Name: "Product sales", Type: ledger.AccountTypeRevenue, SubType: "operating", Credit: amt("900.00")},
		{AccountID: 2, Code: "4100", Name: "Interest", Type: ledger.AccountTypeRevenue, SubType: "other", Credit: amt("100.00")},
		{AccountID: 3, Code: "5000", Name: "Rent", Type: ledger.AccountTypeExpense, SubType: "operating", Debit: amt("400.00")},
		// Balance sheet accounts must never leak into the P&L.
		{AccountID: 4, Code: "1000", Name: "Cash", Type: ledger.AccountTypeAsset, Debit: amt("600.00")},
	}
	pl, err := BuildProfitAndLoss(activity)
	if err != nil {
		t.Fatal(err)
	}
	if pl.Revenue.Total.String() != "1000" {
		t.Errorf("revenue total = %s, want 1000", pl.Revenue.Total)
	}
	if pl.Expense.Total.String() != "400" {
		t.Errorf("expense total = %s, want 400", pl.Expense.Total)
	}
	if pl.NetIncome.String() != "600" {
		t.Errorf("net income = %s, want 600", pl.NetIncome)
	}
	if len(pl.Revenue.Groups) != 2 {
		t.Fatalf("revenue groups = %d, want 2 sub-types", len(pl.Revenue.Groups))
	}
	for _, grp := range pl.Revenue.Groups {
		for _, acc := range grp.Accounts {
			if acc.Code == "1000" {
				t.Fatal("asset account appeared in revenue section")
			}
		}
	}
}

func TestBuildProfitAndLossContraRevenue(t *testing.T) {
	activity := []AccountActivity{
		{AccountID: 1, Code: "4000", Name: "Sales", Type: ledger.AccountTypeRevenue, SubType: "operating", Credit: amt("500.00")},
		// Sales returns carry a debit balance and reduce revenue.
		{AccountID: 2, Code: "4900", Name: "Returns", Type: ledger.AccountTypeRevenue, SubType: "operating", Debit: amt("80.00")},
	}
	pl, err := BuildProfitAndLoss(activity)
	if err != nil {
		t.Fatal(err)
	}
	if pl.Revenue.Total.String() != "420" {
		t.Errorf("revenue total = %s, want 420", pl.Revenue.Total)
	}
	if pl.NetIncome.String() != "420" {
		t.Errorf("net income = %s, want 420", pl.NetIncome)
	}
}

func TestBuildBalanceSheet(t *testing.T) {
	activity := []AccountActivity{
		{AccountID: 1, Code: "1000", Name: "Cash", Type: ledger.AccountTypeAsset, SubType: "current", Debit: amt("600.00")},
		{AccountID: 2, Code: "1500", Name: "Equipment", Type: ledger.AccountTypeAsset, SubType: "fixed", Debit: amt("400.00")},
		{AccountID: 3, Code: "2000", Name: "Loan", Type: ledger.AccountTypeLiability, SubType: "long_term", Credit: amt("300.00")},
		{AccountID: 4, Code: "3000", Name: "Capital", Type: ledger.AccountTypeEquity, SubType: "contributed", Credit: amt("700.00")},
		{AccountID: 5, Code: "4000", Name: "Sales", Type: ledger.AccountTypeRevenue, Credit: amt("50.00")},
	}
	bs, err := BuildBalanceSheet(activity)
	if err != nil {
		t.Fatal(err)
	}
	if bs.TotalAssets.String() != "1000" {
		t.Errorf("total assets = %s, want 1000", bs.TotalAssets)
	}
	if bs.TotalLiabilitiesAndEquity.String() != "1000" {
		t.Errorf("liabilities+equity = %s, want 1000", bs.TotalLiabilitiesAndEquity)
	}
	if len(bs.Assets.Groups) != 2 {
		t.Errorf("asset groups = %d, want 2", len(bs.Assets.Groups))
	}
	for _, grp := range bs.Assets.Groups {
		for _, acc := range grp.Accounts {
			if acc.Code == "4000" {
				t.Fatal("revenue account appeared on the balance sheet")
			}
		}
	}
}
