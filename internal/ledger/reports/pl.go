package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/ledger"
)

// ReportAccount summarises one account inside a report section.
type ReportAccount struct {
	AccountID int64
	Code      string
	Name      string
	Amount    decimal.Decimal
}

// SubTypeGroup collects accounts sharing a sub-type within a section.
type SubTypeGroup struct {
	SubType  string
	Accounts []ReportAccount
	Total    decimal.Decimal
}

// Section groups accounts of one classification by sub-type.
type Section struct {
	Label  string
	Groups []SubTypeGroup
	Total  decimal.Decimal
}

// ProfitAndLoss is the structured revenue and expense report for a date range.
type ProfitAndLoss struct {
	Revenue   Section
	Expense   Section
	NetIncome decimal.Decimal
}

// BuildProfitAndLoss aggregates range activity into revenue and expense
// sections, grouped by sub-type. Amounts are signed contributions, so contra
// accounts reduce their section total.
func BuildProfitAndLoss(activity []AccountActivity) (ProfitAndLoss, error) {
	revenue := sectionBuilder{label: "Revenue"}
	expense := sectionBuilder{label: "Expense"}

	for _, acc := range activity {
		switch acc.Type {
		case ledger.AccountTypeRevenue, ledger.AccountTypeExpense:
		default:
			continue
		}
		amount, err := acc.Balance()
		if err != nil {
			return ProfitAndLoss{}, err
		}
		if amount.IsZero() {
			continue
		}
		row := ReportAccount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, Amount: amount}
		if acc.Type == ledger.AccountTypeRevenue {
			revenue.add(acc.SubType, row)
		} else {
			expense.add(acc.SubType, row)
		}
	}

	rev := revenue.section()
	exp := expense.section()
	return ProfitAndLoss{
		Revenue:   rev,
		Expense:   exp,
		NetIncome: rev.Total.Sub(exp.Total),
	}, nil
}

type sectionBuilder struct {
	label  string
	groups map[string]*SubTypeGroup
	order  []string
}

func (b *sectionBuilder) add(subType string, row ReportAccount) {
	if b.groups == nil {
		b.groups = make(map[string]*SubTypeGroup)
	}
	grp, ok := b.groups[subType]
	if !ok {
		grp = &SubTypeGroup{SubType: subType}
		b.groups[subType] = grp
		b.order = append(b.order, subType)
	}
	grp.Accounts = append(grp.Accounts, row)
	grp.Total = grp.Total.Add(row.Amount)
}

func (b *sectionBuilder) section() Section {
	sort.Strings(b.order)
	out := Section{Label: b.label}
	for _, key := range b.order {
		grp := b.groups[key]
		sort.Slice(grp.Accounts, func(i, j int) bool { return grp.Accounts[i].Code < grp.Accounts[j].Code })
		out.Groups = append(out.Groups, *grp)
		out.Total = out.Total.Add(grp.Total)
	}
	return out
}
