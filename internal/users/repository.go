package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/authz"
)

const userColumns = `id, email, name, global_role, is_active, created_at, updated_at`

// PostgresRepository implements RepositoryPort on pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a Postgres-backed repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user User, passwordHash string) (User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		user.Email, user.Name, passwordHash, user.IsActive)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrDuplicateEmail
		}
		return User{}, err
	}
	return created, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, companyID int64) ([]Membership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT uc.user_id, uc.company_id, u.email, u.name, uc.role, uc.is_active, uc.updated_at
		FROM user_companies uc
		JOIN users u ON u.id = uc.user_id
		WHERE uc.company_id = $1 AND uc.is_active
		ORDER BY u.name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.UserID, &m.CompanyID, &m.Email, &m.Name, &m.Role, &m.IsActive, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetMembership(ctx context.Context, userID, companyID int64) (Membership, error) {
	var m Membership
	err := r.pool.QueryRow(ctx, `
		SELECT uc.user_id, uc.company_id, u.email, u.name, uc.role, uc.is_active, uc.updated_at
		FROM user_companies uc
		JOIN users u ON u.id = uc.user_id
		WHERE uc.user_id = $1 AND uc.company_id = $2 AND uc.is_active`,
		userID, companyID).Scan(&m.UserID, &m.CompanyID, &m.Email, &m.Name, &m.Role, &m.IsActive, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Membership{}, ErrNotFound
	}
	return m, err
}

func (r *PostgresRepository) UpsertMembership(ctx context.Context, userID, companyID int64, role authz.Role) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_companies (user_id, company_id, role, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (user_id, company_id)
		DO UPDATE SET role = EXCLUDED.role, is_active = TRUE, updated_at = NOW()`,
		userID, companyID, role)
	return err
}

func (r *PostgresRepository) DeactivateMembership(ctx context.Context, userID, companyID int64) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE user_companies SET is_active = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND company_id = $2 AND is_active`,
		userID, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	var global *string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &global, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	if global != nil {
		g := authz.GlobalRole(*global)
		u.GlobalRole = &g
	}
	return u, nil
}
