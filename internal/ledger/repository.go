package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/platform/db"
)

// TxRepository exposes the ledger operations available inside a transaction.
type TxRepository interface {
	AccountsByID(ctx context.Context, companyID int64, ids []int64) (map[int64]Account, error)
	InsertEntry(ctx context.Context, header JournalEntry) (JournalEntry, error)
	InsertLines(ctx context.Context, entryID int64, lines []JournalEntryLine) error
	ReplaceLines(ctx context.Context, entryID int64, lines []JournalEntryLine) error
	UpdateEntryHeader(ctx context.Context, header JournalEntry) error
	GetEntryForUpdate(ctx context.Context, companyID, entryID int64) (JournalEntry, error)
	GetLines(ctx context.Context, entryID int64) ([]JournalEntryLine, error)
	MarkPosted(ctx context.Context, entryID int64, postedAt time.Time) error
	DeleteEntry(ctx context.Context, companyID, entryID int64) error

	GetAccountForUpdate(ctx context.Context, companyID, accountID int64) (Account, error)
	InsertAccount(ctx context.Context, account Account) (Account, error)
	UpdateAccount(ctx context.Context, account Account) error
	SetAccountActive(ctx context.Context, companyID, accountID int64, active bool) error
	DeleteAccount(ctx context.Context, companyID, accountID int64) error
	AccountHasLines(ctx context.Context, accountID int64) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the pgx-backed ledger repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const entryColumns = `id, company_id, number, date, description, reference, total_amount, created_by, is_posted, posted_at, reversal_of, created_at, updated_at`

func scanEntry(row pgx.Row) (JournalEntry, error) {
	var e JournalEntry
	err := row.Scan(&e.ID, &e.CompanyID, &e.Number, &e.Date, &e.Description, &e.Reference, &e.TotalAmount,
		&e.CreatedBy, &e.IsPosted, &e.PostedAt, &e.ReversalOf, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *repository) ListEntries(ctx context.Context, companyID int64, filter EntryFilter) ([]JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE company_id=$1`
	args := []any{companyID}
	if filter.Posted != nil {
		args = append(args, *filter.Posted)
		query += fmt.Sprintf(` AND is_posted=$%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}
	query += ` ORDER BY number DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) GetEntry(ctx context.Context, companyID, entryID int64) (JournalEntry, error) {
	entry, err := scanEntry(r.db.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE company_id=$1 AND id=$2`, companyID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, ErrEntryNotFound
		}
		return JournalEntry{}, err
	}
	lines, err := queryLines(ctx, r.db, entryID)
	if err != nil {
		return JournalEntry{}, err
	}
	entry.Lines = lines
	return entry, nil
}

func (r *repository) ListAccounts(ctx context.Context, companyID int64, includeInactive bool) ([]Account, error) {
	query := `SELECT id, company_id, code, name, type, sub_type, parent_id, is_active, created_at, updated_at
FROM accounts WHERE company_id=$1`
	if !includeInactive {
		query += ` AND is_active`
	}
	query += ` ORDER BY code`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.SubType, &a.ParentID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) AccountsByID(ctx context.Context, companyID int64, ids []int64) (map[int64]Account, error) {
	out := make(map[int64]Account, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.tx.Query(ctx, `SELECT id, company_id, code, name, type, sub_type, parent_id, is_active, created_at, updated_at
FROM accounts WHERE company_id=$1 AND id = ANY($2)`, companyID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.SubType, &a.ParentID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, rows.Err()
}

func (r *txRepository) InsertEntry(ctx context.Context, header JournalEntry) (JournalEntry, error) {
	// Per-company entry numbering. The company row lock serializes concurrent
	// inserts so numbers stay gapless within a tenant.
	if _, err := r.tx.Exec(ctx, `SELECT id FROM companies WHERE id=$1 FOR UPDATE`, header.CompanyID); err != nil {
		return JournalEntry{}, err
	}
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (company_id, number, date, description, reference, total_amount, created_by, is_posted, reversal_of)
SELECT $1, COALESCE(MAX(number),0)+1, $2, $3, $4, $5, $6, FALSE, $7 FROM journal_entries WHERE company_id=$1
RETURNING id, number, created_at, updated_at`,
		header.CompanyID, header.Date, header.Description, header.Reference, header.TotalAmount, header.CreatedBy, header.ReversalOf)
	entry := header
	entry.IsPosted = false
	if err := row.Scan(&entry.ID, &entry.Number, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []JournalEntryLine) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_entry_lines (entry_id, account_id, description, debit, credit)
VALUES ($1,$2,$3,$4,$5)`, entryID, line.AccountID, line.Description, line.Debit, line.Credit); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) ReplaceLines(ctx context.Context, entryID int64, lines []JournalEntryLine) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id=$1`, entryID); err != nil {
		return err
	}
	return r.InsertLines(ctx, entryID, lines)
}

func (r *txRepository) UpdateEntryHeader(ctx context.Context, header JournalEntry) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET date=$3, description=$4, reference=$5, total_amount=$6, updated_at=NOW()
WHERE company_id=$1 AND id=$2 AND NOT is_posted`, header.CompanyID, header.ID, header.Date, header.Description, header.Reference, header.TotalAmount)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *txRepository) GetEntryForUpdate(ctx context.Context, companyID, entryID int64) (JournalEntry, error) {
	entry, err := scanEntry(r.tx.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE company_id=$1 AND id=$2 FOR UPDATE`, companyID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, ErrEntryNotFound
		}
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) GetLines(ctx context.Context, entryID int64) ([]JournalEntryLine, error) {
	return queryLines(ctx, r.tx, entryID)
}

func (r *txRepository) MarkPosted(ctx context.Context, entryID int64, postedAt time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET is_posted=TRUE, posted_at=$2, updated_at=NOW()
WHERE id=$1 AND NOT is_posted`, entryID, postedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEntryAlreadyPosted
	}
	return nil
}

func (r *txRepository) DeleteEntry(ctx context.Context, companyID, entryID int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id=$1`, entryID); err != nil {
		return err
	}
	cmd, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE company_id=$1 AND id=$2 AND NOT is_posted`, companyID, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEntryLocked
	}
	return nil
}

func (r *txRepository) GetAccountForUpdate(ctx context.Context, companyID, accountID int64) (Account, error) {
	var a Account
	err := r.tx.QueryRow(ctx, `SELECT id, company_id, code, name, type, sub_type, parent_id, is_active, created_at, updated_at
FROM accounts WHERE company_id=$1 AND id=$2 FOR UPDATE`, companyID, accountID).
		Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.SubType, &a.ParentID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *txRepository) InsertAccount(ctx context.Context, account Account) (Account, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO accounts (company_id, code, name, type, sub_type, parent_id, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id, created_at, updated_at`,
		account.CompanyID, account.Code, account.Name, account.Type, account.SubType, account.ParentID, account.IsActive)
	if err := row.Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		return Account{}, mapAccountError(err)
	}
	return account, nil
}

func (r *txRepository) UpdateAccount(ctx context.Context, account Account) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET code=$3, name=$4, type=$5, sub_type=$6, parent_id=$7, updated_at=NOW()
WHERE company_id=$1 AND id=$2`, account.CompanyID, account.ID, account.Code, account.Name, account.Type, account.SubType, account.ParentID)
	if err != nil {
		return mapAccountError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *txRepository) SetAccountActive(ctx context.Context, companyID, accountID int64, active bool) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET is_active=$3, updated_at=NOW() WHERE company_id=$1 AND id=$2`,
		companyID, accountID, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *txRepository) DeleteAccount(ctx context.Context, companyID, accountID int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM accounts WHERE company_id=$1 AND id=$2`, companyID, accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *txRepository) AccountHasLines(ctx context.Context, accountID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entry_lines WHERE account_id=$1)`, accountID).
		Scan(&exists)
	return exists, err
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryLines(ctx context.Context, q queryer, entryID int64) ([]JournalEntryLine, error) {
	rows, err := q.Query(ctx, `SELECT id, entry_id, account_id, description, debit, credit, created_at, updated_at
FROM journal_entry_lines WHERE entry_id=$1 ORDER BY id ASC`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []JournalEntryLine
	for rows.Next() {
		var line JournalEntryLine
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &line.Description, &line.Debit, &line.Credit, &line.CreatedAt, &line.UpdatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func mapAccountError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "accounts_company_id_code") {
		return ErrDuplicateCode
	}
	return err
}

