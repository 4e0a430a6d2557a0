package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Audit action constants. New actions may be added; existing ones never change
// because persisted rows reference them by value.
const (
	AuditActionLogin          = "login"
	AuditActionLogout         = "logout"
	AuditActionGenerateReport = "generate_report"
	AuditActionCheckStatus    = "check_report_status"
	AuditActionCancelReport   = "cancel_report"
	AuditActionDeleteReport   = "delete_report"
	AuditActionAddCompany     = "add_company"
	AuditActionDeleteCompany  = "delete_company"
	AuditActionAddUser        = "add_user"
	AuditActionDeleteUser     = "delete_user"
)

// AuditLog is an immutable record of one authenticated state-changing action.
// Rows are append-only: no code path updates or deletes them.
type AuditLog struct {
	ID            uint            `json:"id" gorm:"primarykey"`
	UserID        uint            `json:"user_id" gorm:"not null;index"`
	Action        string          `json:"action" gorm:"not null;size:100;index"`
	TargetID      *uint           `json:"target_id,omitempty"`
	Details       json.RawMessage `json:"details,omitempty" gorm:"type:jsonb"`
	OriginAddress string          `json:"origin_address,omitempty" gorm:"size:64"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
}

// Validate ensures that the audit entry is well formed
func (a *AuditLog) Validate() error {
	if a.UserID == 0 {
		return fmt.Errorf("audit user_id cannot be zero")
	}
	if a.Action == "" {
		return fmt.Errorf("audit action cannot be empty")
	}
	return nil
}

// DetailMap decodes the structured detail payload into a map
func (a *AuditLog) DetailMap() (map[string]interface{}, error) {
	if len(a.Details) == 0 {
		return nil, nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(a.Details, &m); err != nil {
		return nil, fmt.Errorf("failed to decode audit details: %w", err)
	}
	return m, nil
}
