package companies

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/platform/db"
)

const companyColumns = `id, code, name, address, tax_id, is_active, created_at, updated_at`

// PostgresRepository implements Repository on pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a Postgres-backed repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID int64) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE is_active
		  AND id IN (SELECT company_id FROM user_companies WHERE user_id = $1 AND is_active)
		ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCompanies(rows)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+companyColumns+` FROM companies WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCompanies(rows)
}

// CompanyIDs lists active company IDs for background scans.
func (r *PostgresRepository) CompanyIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM companies WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (Company, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	c, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepository) CreateWithOwner(ctx context.Context, company Company, ownerID int64) (Company, error) {
	var created Company
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO companies (code, name, address, tax_id, is_active)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+companyColumns,
			company.Code, company.Name, company.Address, company.TaxID, company.IsActive)
		var err error
		created, err = scanCompany(row)
		if err != nil {
			return mapCompanyError(err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO user_companies (user_id, company_id, role, is_active)
			VALUES ($1, $2, 'administrator', TRUE)`, ownerID, created.ID)
		return err
	})
	if err != nil {
		return Company{}, err
	}
	return created, nil
}

func (r *PostgresRepository) Update(ctx context.Context, company Company) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE companies
		SET code = $2, name = $3, address = $4, tax_id = $5, updated_at = NOW()
		WHERE id = $1`,
		company.ID, company.Code, company.Name, company.Address, company.TaxID)
	if err != nil {
		return mapCompanyError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) HasPostedEntries(ctx context.Context, companyID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM journal_entries WHERE company_id = $1 AND is_posted)`,
		companyID).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) DeleteCascade(ctx context.Context, companyID int64) error {
	return db.WithSerializableTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Lock the company row so concurrent posting cannot slip a posted
		// entry in under the check below.
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM companies WHERE id = $1 FOR UPDATE`, companyID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var posted bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM journal_entries WHERE company_id = $1 AND is_posted)`,
			companyID).Scan(&posted)
		if err != nil {
			return err
		}
		if posted {
			return ErrHasPostedEntries
		}
		for _, q := range []string{
			`DELETE FROM journal_entry_lines WHERE entry_id IN (SELECT id FROM journal_entries WHERE company_id = $1)`,
			`DELETE FROM journal_entries WHERE company_id = $1`,
			`DELETE FROM accounts WHERE company_id = $1`,
			`DELETE FROM user_companies WHERE company_id = $1`,
			`DELETE FROM companies WHERE id = $1`,
		} {
			if _, err := tx.Exec(ctx, q, companyID); err != nil {
				return err
			}
		}
		return nil
	})
}

func scanCompanies(rows pgx.Rows) ([]Company, error) {
	var out []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCompany(row pgx.Row) (Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Address, &c.TaxID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func mapCompanyError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateCode
	}
	return err
}
