package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches a user by email, case-insensitively.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash, is_active, created_at, updated_at
		FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateSession persists a new login session for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at, ip, ua)
		VALUES ($1, $2, NOW(), $3, NULLIF($4, ''), NULLIF($5, ''))`,
		id, userID, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session record.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

var _ Repository = (*PGRepository)(nil)
