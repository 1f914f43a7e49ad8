package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineInput describes one proposed leg of a journal entry.
type LineInput struct {
	AccountID   int64
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// DraftInput groups the fields required to create or update a draft entry.
type DraftInput struct {
	Date        time.Time
	Description string
	Reference   uuid.UUID
	TotalAmount decimal.Decimal
	Lines       []LineInput
}

// AccountInput groups the fields for creating or updating an account.
type AccountInput struct {
	Code     string
	Name     string
	Type     AccountType
	SubType  string
	ParentID *int64
}

func (in DraftInput) header(companyID, actorID int64) JournalEntry {
	return JournalEntry{
		CompanyID:   companyID,
		Date:        in.Date,
		Description: in.Description,
		Reference:   in.Reference,
		TotalAmount: in.TotalAmount,
		CreatedBy:   actorID,
	}
}

func (in DraftInput) lines() []JournalEntryLine {
	out := make([]JournalEntryLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		out = append(out, JournalEntryLine{
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		})
	}
	return out
}

// reversedLines swaps debit and credit on every line of a posted entry.
func reversedLines(lines []JournalEntryLine) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineInput{
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       l.Credit,
			Credit:      l.Debit,
		})
	}
	return out
}
