package users

import (
	"time"

	"github.com/ledgerline/ledgerline/internal/authz"
)

// User represents a login account. GlobalRole is set only for account-level
// administrators.
type User struct {
	ID         int64             `json:"id"`
	Email      string            `json:"email"`
	Name       string            `json:"name"`
	GlobalRole *authz.GlobalRole `json:"global_role,omitempty"`
	IsActive   bool              `json:"is_active"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Membership is a user's role within one company.
type Membership struct {
	UserID    int64      `json:"user_id"`
	CompanyID int64      `json:"company_id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      authz.Role `json:"role"`
	IsActive  bool       `json:"is_active"`
	UpdatedAt time.Time  `json:"updated_at"`
}
