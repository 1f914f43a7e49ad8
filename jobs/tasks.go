package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrityScan re-verifies that every company's posted ledger
	// still balances.
	TaskLedgerIntegrityScan = "ledger:integrity_scan"
	// TaskAuditPurge trims audit rows past the retention window.
	TaskAuditPurge = "audit:purge"
)

// IntegrityScanPayload scopes a scan. CompanyID zero scans every company.
type IntegrityScanPayload struct {
	CompanyID int64 `json:"company_id"`
}

// AuditPurgePayload carries the retention window. The cutoff is computed at
// run time so cron registrations do not freeze a stale timestamp.
type AuditPurgePayload struct {
	RetainFor time.Duration `json:"retain_for"`
}

// NewIntegrityScanTask constructs the scan task.
func NewIntegrityScanTask(payload IntegrityScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrityScan, data), nil
}

// NewAuditPurgeTask constructs the purge task.
func NewAuditPurgeTask(payload AuditPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPurge, data), nil
}
