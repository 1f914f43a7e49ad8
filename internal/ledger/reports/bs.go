package reports

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/ledger"
)

// BalanceSheet is the structured asset, liability, and equity report as of a date.
type BalanceSheet struct {
	Assets                    Section
	Liabilities               Section
	Equity                    Section
	TotalAssets               decimal.Decimal
	TotalLiabilitiesAndEquity decimal.Decimal
}

// BuildBalanceSheet aggregates as-of activity into the three balance sheet
// sections, grouped by sub-type.
func BuildBalanceSheet(activity []AccountActivity) (BalanceSheet, error) {
	assets := sectionBuilder{label: "Assets"}
	liabilities := sectionBuilder{label: "Liabilities"}
	equity := sectionBuilder{label: "Equity"}

	for _, acc := range activity {
		var target *sectionBuilder
		switch acc.Type {
		case ledger.AccountTypeAsset:
			target = &assets
		case ledger.AccountTypeLiability:
			target = &liabilities
		case ledger.AccountTypeEquity:
			target = &equity
		default:
			continue
		}
		balance, err := acc.Balance()
		if err != nil {
			return BalanceSheet{}, err
		}
		if balance.IsZero() {
			continue
		}
		target.add(acc.SubType, ReportAccount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, Amount: balance})
	}

	out := BalanceSheet{
		Assets:      assets.section(),
		Liabilities: liabilities.section(),
		Equity:      equity.section(),
	}
	out.TotalAssets = out.Assets.Total
	out.TotalLiabilitiesAndEquity = out.Liabilities.Total.Add(out.Equity.Total)
	return out, nil
}
