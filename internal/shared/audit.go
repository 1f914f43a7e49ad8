package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog represents a record stored in audit_logs. CompanyID is zero for
// platform-level actions such as user creation.
type AuditLog struct {
	ID        int64          `json:"id"`
	CompanyID int64          `json:"company_id,omitempty"`
	ActorID   int64          `json:"actor_id"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entity_id"`
	Meta      map[string]any `json:"meta,omitempty"`
	At        time.Time      `json:"occurred_at"`
}

// AuditLogger writes records into audit_logs.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO audit_logs (company_id, actor_id, action, entity, entity_id, meta, occurred_at) VALUES (NULLIF($1, 0), $2, $3, $4, $5, $6, COALESCE($7, NOW()))`, log.CompanyID, log.ActorID, log.Action, log.Entity, log.EntityID, metaJSON, log.At)
	return err
}

// ListForCompany returns the newest audit rows for a company.
func (l *AuditLogger) ListForCompany(ctx context.Context, companyID int64, limit int) ([]AuditLog, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, COALESCE(company_id, 0), actor_id, action, entity, entity_id, meta, occurred_at
FROM audit_logs WHERE company_id = $1 ORDER BY occurred_at DESC, id DESC LIMIT $2`, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditLog
	for rows.Next() {
		var log AuditLog
		var metaJSON []byte
		if err := rows.Scan(&log.ID, &log.CompanyID, &log.ActorID, &log.Action, &log.Entity, &log.EntityID, &metaJSON, &log.At); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &log.Meta); err != nil {
				return nil, err
			}
		}
		out = append(out, log)
	}
	return out, rows.Err()
}

// PurgeBefore deletes audit rows older than the cutoff and reports how many
// were removed. Used by the retention job.
func (l *AuditLogger) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := l.pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
