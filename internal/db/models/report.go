package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Field names for the report model
const (
	// ReportStatusField is the column name for the report status
	ReportStatusField = "status"
	// ReportFilePathField is the column name for the artifact location
	ReportFilePathField = "file_path"
	// ReportGeneratedAtField is the column name for the generation timestamp
	ReportGeneratedAtField = "generated_at"
)

// ReportStatus represents the lifecycle status of a report-generation request
type ReportStatus string

// Report status constants
const (
	// ReportStatusPending indicates the report row exists but the flow has not been observed yet
	ReportStatusPending ReportStatus = "pending"
	// ReportStatusScheduled indicates the flow run was accepted by the orchestrator
	ReportStatusScheduled ReportStatus = "scheduled"
	// ReportStatusRunning indicates the flow run is executing
	ReportStatusRunning ReportStatus = "running"
	// ReportStatusCompleted indicates the flow run finished and the artifact exists
	ReportStatusCompleted ReportStatus = "completed"
	// ReportStatusFailed indicates the flow run failed or could not be triggered
	ReportStatusFailed ReportStatus = "failed"
	// ReportStatusCancelled indicates the flow run was cancelled on the orchestrator
	ReportStatusCancelled ReportStatus = "cancelled"
	// ReportStatusTimeout indicates the poller exhausted its attempt budget
	ReportStatusTimeout ReportStatus = "timeout"
)

// TerminalStatuses is the set of statuses after which no further transitions occur.
// Poller writes against a report already in one of these states must be no-ops.
var TerminalStatuses = []ReportStatus{
	ReportStatusCompleted,
	ReportStatusFailed,
	ReportStatusCancelled,
	ReportStatusTimeout,
}

// IsTerminal reports whether the status admits no further transitions
func (s ReportStatus) IsTerminal() bool {
	switch s {
	case ReportStatusCompleted, ReportStatusFailed, ReportStatusCancelled, ReportStatusTimeout:
		return true
	default:
		return false
	}
}

// String returns the string representation of the report status
func (s ReportStatus) String() string {
	return string(s)
}

// ParseReportStatus converts a string to a ReportStatus type
func ParseReportStatus(str string) (ReportStatus, error) {
	switch str {
	case string(ReportStatusPending):
		return ReportStatusPending, nil
	case string(ReportStatusScheduled):
		return ReportStatusScheduled, nil
	case string(ReportStatusRunning):
		return ReportStatusRunning, nil
	case string(ReportStatusCompleted):
		return ReportStatusCompleted, nil
	case string(ReportStatusFailed):
		return ReportStatusFailed, nil
	case string(ReportStatusCancelled):
		return ReportStatusCancelled, nil
	case string(ReportStatusTimeout):
		return ReportStatusTimeout, nil
	default:
		return ReportStatusPending, fmt.Errorf("invalid report status: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for ReportStatus
func (s *ReportStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseReportStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// Report represents one user-requested report generation and its lifecycle
type Report struct {
	gorm.Model
	CompanyID   uint         `json:"company_id" gorm:"not null;index"`
	UserID      uint         `json:"user_id" gorm:"not null;index"`
	StartDate   time.Time    `json:"start_date" gorm:"type:date"`
	EndDate     time.Time    `json:"end_date" gorm:"type:date"`
	FilePath    string       `json:"file_path,omitempty" gorm:"size:500"`
	Status      ReportStatus `json:"status" gorm:"not null;index"`
	FlowRunID   string       `json:"flow_run_id,omitempty" gorm:"index"`
	GeneratedAt *time.Time   `json:"generated_at,omitempty"`
}

// Validate ensures that the report data is valid
func (r *Report) Validate() error {
	if r.CompanyID == 0 {
		return fmt.Errorf("report company_id cannot be zero")
	}
	if r.UserID == 0 {
		return fmt.Errorf("report user_id cannot be zero")
	}
	if r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("report end_date cannot precede start_date")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new report
func (r *Report) BeforeCreate(_ *gorm.DB) error {
	if r.Status == "" {
		r.Status = ReportStatusPending
	}
	return r.Validate()
}
