package authz

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the pgx-backed membership store.
func NewRepository(db *pgxpool.Pool) MembershipStore {
	return &repository{db: db}
}

func (r *repository) ActiveRole(ctx context.Context, userID, companyID int64) (Role, bool, error) {
	var role Role
	err := r.db.QueryRow(ctx, `SELECT role FROM user_companies
WHERE user_id=$1 AND company_id=$2 AND is_active`, userID, companyID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	if !role.Valid() {
		return "", false, ErrUnknownRole
	}
	return role, true, nil
}

func (r *repository) ActiveRoles(ctx context.Context, userID int64) ([]Role, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT role FROM user_companies
WHERE user_id=$1 AND is_active`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		if role.Valid() {
			roles = append(roles, role)
		}
	}
	return roles, rows.Err()
}

func (r *repository) GlobalRole(ctx context.Context, userID int64) (GlobalRole, bool, error) {
	var global *string
	err := r.db.QueryRow(ctx, `SELECT global_role FROM users WHERE id=$1 AND is_active`, userID).Scan(&global)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	if global == nil || *global == "" {
		return "", false, nil
	}
	return GlobalRole(*global), true, nil
}
