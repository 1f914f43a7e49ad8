package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Epsilon is the currency-precision tolerance applied when comparing debit and
// credit sums. Amounts closer than this are considered equal.
var Epsilon = decimal.New(1, -2) // 0.01

// Account models a chart of accounts node. Type is fixed once postings
// reference the account; Code is unique within a company.
type Account struct {
	ID        int64
	CompanyID int64
	Code      string
	Name      string
	Type      AccountType
	SubType   string
	ParentID  *int64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// JournalEntry is a single accounting transaction header. Once IsPosted is
// true the entry and its lines are immutable; corrections happen through a
// reversing entry referencing the original via ReversalOf.
type JournalEntry struct {
	ID          int64
	CompanyID   int64
	Number      int64
	Date        time.Time
	Description string
	Reference   uuid.UUID
	TotalAmount decimal.Decimal
	CreatedBy   int64
	IsPosted    bool
	PostedAt    *time.Time
	ReversalOf  *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Lines       []JournalEntryLine
}

// JournalEntryLine is one debit or credit leg of an entry. Exactly one of
// Debit and Credit is non-zero on a valid line.
type JournalEntryLine struct {
	ID          int64
	EntryID     int64
	AccountID   int64
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	// ErrInvalidAccountType indicates an unknown account type.
	ErrInvalidAccountType = errors.New("ledger: invalid account type")
	// ErrEmptyEntry indicates an entry with no lines.
	ErrEmptyEntry = errors.New("ledger: entry has no lines")
	// ErrUnknownOrInactiveAccount indicates a line referencing a missing,
	// foreign, or deactivated account.
	ErrUnknownOrInactiveAccount = errors.New("ledger: unknown or inactive account")
	// ErrInvalidLineAmount indicates a negative amount, a line with neither
	// side set, or a line carrying both a debit and a credit.
	ErrInvalidLineAmount = errors.New("ledger: invalid line amount")
	// ErrUnbalancedEntry indicates debit and credit sums differ.
	ErrUnbalancedEntry = errors.New("ledger: entry does not balance")
	// ErrTotalMismatch indicates the denormalized header total disagrees with
	// the debit sum.
	ErrTotalMismatch = errors.New("ledger: header total does not match lines")
	// ErrEntryLocked indicates a mutation attempt against a posted entry.
	ErrEntryLocked = errors.New("ledger: posted entries are immutable")
	// ErrEntryAlreadyPosted indicates a second posting attempt for the same entry.
	ErrEntryAlreadyPosted = errors.New("ledger: entry already posted")
	// ErrEntryNotPosted indicates a reversal attempt against a draft.
	ErrEntryNotPosted = errors.New("ledger: entry is not posted")
	// ErrEntryNotFound indicates a missing journal entry.
	ErrEntryNotFound = errors.New("ledger: journal entry not found")
	// ErrAccountNotFound indicates a missing account.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrAccountTypeImmutable indicates a type change on an account with postings.
	ErrAccountTypeImmutable = errors.New("ledger: account type cannot change once posted against")
	// ErrAccountInUse indicates a hard delete of an account referenced by lines.
	ErrAccountInUse = errors.New("ledger: account is referenced by journal lines")
	// ErrDuplicateCode indicates an account code collision within a company.
	ErrDuplicateCode = errors.New("ledger: account code already in use")
	// ErrPermissionDenied indicates the acting user lacks the required capability.
	ErrPermissionDenied = errors.New("ledger: permission denied")
)
