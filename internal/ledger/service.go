package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/authz"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListEntries(ctx context.Context, companyID int64, filter EntryFilter) ([]JournalEntry, error)
	GetEntry(ctx context.Context, companyID, entryID int64) (JournalEntry, error)
	ListAccounts(ctx context.Context, companyID int64, includeInactive bool) ([]Account, error)
}

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Authorizer answers capability checks. The HTTP layer performs the primary
// check; the service re-checks before every mutation so a caller bug cannot
// bypass authorization.
type Authorizer interface {
	Can(ctx context.Context, userID, companyID int64, capability authz.Capability) (bool, error)
}

// EntryFilter narrows entry listings.
type EntryFilter struct {
	Posted *bool
	From   *time.Time
	To     *time.Time
}

// Service coordinates draft lifecycle, posting, and reversal of journal
// entries plus chart of accounts maintenance. Every method takes an explicit
// companyID; the service never reads tenant state from ambient context.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	authz Authorizer
	now   func() time.Time
}

// NewService constructs the ledger service.
func NewService(repo RepositoryPort, audit AuditPort, authorizer Authorizer) *Service {
	return &Service{repo: repo, audit: audit, authz: authorizer, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) authorize(ctx context.Context, actorID, companyID int64, cap authz.Capability) error {
	if s.authz == nil {
		return nil
	}
	ok, err := s.authz.Can(ctx, actorID, companyID, cap)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %d lacks %s", ErrPermissionDenied, actorID, cap)
	}
	return nil
}

// CreateDraft validates and persists an unposted journal entry.
func (s *Service) CreateDraft(ctx context.Context, companyID, actorID int64, in DraftInput) (JournalEntry, error) {
	if err := s.authorize(ctx, actorID, companyID, authz.CapAccountingWrite); err != nil {
		return JournalEntry{}, err
	}
	header := in.header(companyID, actorID)
	lines := in.lines()
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		accounts, err := tx.AccountsByID(ctx, companyID, lineAccountIDs(lines))
		if err != nil {
			return err
		}
		if err := ValidateEntry(header, lines, accounts); err != nil {
			return err
		}
		inserted, err := tx.InsertEntry(ctx, header)
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, inserted.ID, lines); err != nil {
			return err
		}
		inserted.Lines = stampLines(inserted.ID, lines, s.now())
		entry = inserted
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.record(ctx, actorID, companyID, "journal.draft_create", entry.ID, map[string]any{
		"number": entry.Number,
	})
	return entry, nil
}

// UpdateDraft replaces the header and lines of an unposted entry. Posted
// entries fail with ErrEntryLocked regardless of the caller's role.
func (s *Service) UpdateDraft(ctx context.Context, companyID, actorID, entryID int64, in DraftInput) (JournalEntry, error) {
	if err := s.authorize(ctx, actorID, companyID, authz.CapAccountingWrite); err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, companyID, entryID)
		if err != nil {
			return err
		}
		if current.IsPosted {
			return ErrEntryLocked
		}
		header := in.header(companyID, current.CreatedBy)
		header.ID = current.ID
		header.Number = current.Number
		lines := in.lines()
		accounts, err := tx.AccountsByID(ctx, companyID, lineAccountIDs(lines))
		if err != nil {
			return err
		}
		if err := ValidateEntry(header, lines, accounts); err != nil {
			return err
		}
		if err := tx.UpdateEntryHeader(ctx, header); err != nil {
			return err
		}
		if err := tx.ReplaceLines(ctx, current.ID, lines); err != nil {
			return err
		}
		header.CreatedAt = current.CreatedAt
		header.Lines = stampLines(current.ID, lines, s.now())
		entry = header
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.record(ctx, actorID, companyID, "journal.draft_update", entry.ID, nil)
	return entry, nil
}

// DeleteDraft removes an unposted entry. Posted entries fail with ErrEntryLocked.
func (s *Service) DeleteDraft(ctx context.Context, companyID, actorID, entryID int64) error {
	if err := s.authorize(ctx, actorID, companyID, authz.CapAccountingWrite); err != nil {
		return err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, companyID, entryID)
		if err != nil {
			return err
		}
		if current.IsPosted {
			return ErrEntryLocked
		}
		return tx.DeleteEntry(ctx, companyID, entryID)
	})
	if err != nil {
		return err
	}
	s.record(ctx, actorID, companyID, "journal.draft_delete", entryID, nil)
	return nil
}

// Post transitions a validated draft to the posted state. The entry row is
// locked for the duration of the transaction; a concurrent posting attempt
// for the same entry loses with ErrEntryAlreadyPosted.
func (s *Service) Post(ctx context.Context, companyID, actorID, entryID int64) (JournalEntry, error) {
	if err := s.authorize(ctx, actorID, companyID, authz.CapAccountingPost); err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, companyID, entryID)
		if err != nil {
			return err
		}
		if current.IsPosted {
			return ErrEntryAlreadyPosted
		}
		lines, err := tx.GetLines(ctx, current.ID)
		if err != nil {
			return err
		}
		accounts, err := tx.AccountsByID(ctx, companyID, lineAccountIDs(lines))
		if err != nil {
			return err
		}
		if err := ValidateEntry(current, lines, accounts); err != nil {
			return err
		}
		postedAt := s.now()
		if err := tx.MarkPosted(ctx, current.ID, postedAt); err != nil {
			return err
		}
		current.IsPosted = true
		current.PostedAt = &postedAt
		current.Lines = lines
		entry = current
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.record(ctx, actorID, companyID, "journal.post", entry.ID, map[string]any{
		"number": entry.Number,
	})
	return entry, nil
}

// Reverse creates and posts a new entry with debit and credit swapped on
// every line of a posted original. It is the only corrective action for
// posted entries; the original is never mutated.
func (s *Service) Reverse(ctx context.Context, companyID, actorID, entryID int64, description string) (JournalEntry, error) {
	if err := s.authorize(ctx, actorID, companyID, authz.CapAccountingPost); err != nil {
		return JournalEntry{}, err
	}
	var reversal JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetEntryForUpdate(ctx, companyID, entryID)
		if err != nil {
			return err
		}
		if !original.IsPosted {
			return ErrEntryNotPosted
		}
		origLines, err := tx.GetLines(ctx, original.ID)
		if err != nil {
			return err
		}
		in := DraftInput{
			Date:        s.now(),
			Description: defaultReversalDescription(description, original.Number),
			Reference:   uuid.New(),
			TotalAmount: original.TotalAmount,
			Lines:       reversedLines(origLines),
		}
		header := in.header(companyID, actorID)
		header.ReversalOf = &original.ID
		lines := in.lines()
		accounts, err := tx.AccountsByID(ctx, companyID, lineAccountIDs(lines))
		if err != nil {
			return err
		}
		if err := ValidateEntry(header, lines, accounts); err != nil {
			return err
		}
		inserted, err := tx.InsertEntry(ctx, header)
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, inserted.ID, lines); err != nil {
			return err
		}
		postedAt := s.now()
		if err := tx.MarkPosted(ctx, inserted.ID, postedAt); err != nil {
			return err
		}
		inserted.IsPosted = true
		inserted.PostedAt = &postedAt
		inserted.Lines = stampLines(inserted.ID, lines, postedAt)
		reversal = inserted
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.record(ctx, actorID, companyID, "journal.reverse", entryID, map[string]any{
		"reversal_id":     reversal.ID,
		"reversal_number": reversal.Number,
	})
	return reversal, nil
}

// GetEntry fetches one entry with its lines.
func (s *Service) GetEntry(ctx context.Context, companyID, entryID int64) (JournalEntry, error) {
	return s.repo.GetEntry(ctx, companyID, entryID)
}

// ListEntries fetches entries for a company, optionally filtered.
func (s *Service) ListEntries(ctx context.Context, companyID int64, filter EntryFilter) ([]JournalEntry, error) {
	return s.repo.ListEntries(ctx, companyID, filter)
}

func (s *Service) record(ctx context.Context, actorID, companyID int64, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entity := "journal_entry"
	if strings.HasPrefix(action, "account.") {
		entity = "account"
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		CompanyID: companyID,
		ActorID:   actorID,
		Action:    action,
		Entity:    entity,
		EntityID:  fmt.Sprintf("%d", id),
		Meta:      meta,
		At:        s.now(),
	})
}

func lineAccountIDs(lines []JournalEntryLine) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}

func stampLines(entryID int64, lines []JournalEntryLine, ts time.Time) []JournalEntryLine {
	out := make([]JournalEntryLine, 0, len(lines))
	for _, l := range lines {
		l.EntryID = entryID
		l.CreatedAt = ts
		l.UpdatedAt = ts
		out = append(out, l)
	}
	return out
}

func defaultReversalDescription(description string, number int64) string {
	if description != "" {
		return description
	}
	return fmt.Sprintf("Reversal of JE %d", number)
}
