package companies

import "time"

// Company is the tenant boundary: every account, entry, and membership
// belongs to exactly one company.
type Company struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	TaxID     string    `json:"tax_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
