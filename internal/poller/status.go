package poller

import "github.com/fieldscope/portal/internal/db/models"

// statusTable is the fixed lookup from the orchestrator's state vocabulary
// onto the report lifecycle statuses.
var statusTable = map[string]models.ReportStatus{
	"SCHEDULED":  models.ReportStatusScheduled,
	"PENDING":    models.ReportStatusPending,
	"RUNNING":    models.ReportStatusRunning,
	"COMPLETED":  models.ReportStatusCompleted,
	"FAILED":     models.ReportStatusFailed,
	"CRASHED":    models.ReportStatusFailed,
	"CANCELLED":  models.ReportStatusCancelled,
	"CANCELLING": models.ReportStatusCancelled,
}

// MapStatus maps an external flow-run state onto a report lifecycle status.
// Unknown states map to pending.
func MapStatus(external string) models.ReportStatus {
	if status, ok := statusTable[external]; ok {
		return status
	}
	return models.ReportStatusPending
}
