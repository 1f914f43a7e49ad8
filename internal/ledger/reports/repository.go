package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the pgx-backed report reader.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

// Only posted entries contribute; drafts are invisible to every aggregate.
const activityQuery = `SELECT a.id, a.code, a.name, a.type, a.sub_type,
       COALESCE(p.debit, 0) AS debit, COALESCE(p.credit, 0) AS credit
FROM accounts a
LEFT JOIN (
    SELECT l.account_id, SUM(l.debit) AS debit, SUM(l.credit) AS credit
    FROM journal_entry_lines l
    JOIN journal_entries e ON e.id = l.entry_id
    WHERE e.company_id = $1 AND e.is_posted
      AND ($2::date IS NULL OR e.date <= $2)
      AND ($3::date IS NULL OR e.date >= $3)
    GROUP BY l.account_id
) p ON p.account_id = a.id
WHERE a.company_id = $1
ORDER BY a.code`

func (r *repository) ActivityAsOf(ctx context.Context, companyID int64, asOf *time.Time) ([]AccountActivity, error) {
	return r.activity(ctx, companyID, asOf, nil)
}

func (r *repository) ActivityInRange(ctx context.Context, companyID int64, from, to time.Time) ([]AccountActivity, error) {
	return r.activity(ctx, companyID, &to, &from)
}

func (r *repository) activity(ctx context.Context, companyID int64, to, from *time.Time) ([]AccountActivity, error) {
	rows, err := r.db.Query(ctx, activityQuery, companyID, to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountActivity
	for rows.Next() {
		var a AccountActivity
		if err := rows.Scan(&a.AccountID, &a.Code, &a.Name, &a.Type, &a.SubType, &a.Debit, &a.Credit); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) AccountActivity(ctx context.Context, companyID, accountID int64, asOf *time.Time) (AccountActivity, bool, error) {
	var a AccountActivity
	err := r.db.QueryRow(ctx, `SELECT a.id, a.code, a.name, a.type, a.sub_type,
       COALESCE(SUM(l.debit) FILTER (WHERE e.is_posted AND ($3::date IS NULL OR e.date <= $3)), 0),
       COALESCE(SUM(l.credit) FILTER (WHERE e.is_posted AND ($3::date IS NULL OR e.date <= $3)), 0)
FROM accounts a
LEFT JOIN journal_entry_lines l ON l.account_id = a.id
LEFT JOIN journal_entries e ON e.id = l.entry_id
WHERE a.company_id = $1 AND a.id = $2
GROUP BY a.id, a.code, a.name, a.type, a.sub_type`, companyID, accountID, asOf).
		Scan(&a.AccountID, &a.Code, &a.Name, &a.Type, &a.SubType, &a.Debit, &a.Credit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountActivity{}, false, nil
		}
		return AccountActivity{}, false, err
	}
	return a, true, nil
}
