// Package repos provides the database repositories for the portal models
package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fieldscope/portal/internal/db/models"
)

// ReportRepository handles database operations for reports
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new instance of ReportRepository
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{
		db: db,
	}
}

// Create creates a new report in the database
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// GetByID retrieves a report by ID from the database
func (r *ReportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// GetByFlowRunID retrieves a report by its external flow-run correlation identifier
func (r *ReportRepository) GetByFlowRunID(ctx context.Context, flowRunID string) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).Where("flow_run_id = ?", flowRunID).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List retrieves reports with pagination and optional status/company filters
func (r *ReportRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.Report, error) {
	var reports []models.Report
	query := r.db.WithContext(ctx).Model(&models.Report{}).Order("created_at DESC")
	if opts != nil {
		if opts.Status != nil {
			query = query.Where(models.ReportStatusField+" = ?", *opts.Status)
		}
		if opts.CompanyID != 0 {
			query = query.Where("company_id = ?", opts.CompanyID)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
		query = query.Offset(opts.Offset)
	}
	err := query.Find(&reports).Error
	return reports, err
}

// CountByStatus returns the number of reports with the given status
func (r *ReportRepository) CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).
		Where(models.ReportStatusField+" = ?", status).
		Count(&count).Error
	return count, err
}

// Count returns the total number of reports
func (r *ReportRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).Count(&count).Error
	return count, err
}

// UpdateStatus writes the given lifecycle status to a report. The write
// carries a terminal-state guard: once a report has reached a terminal
// status the update silently matches zero rows, which makes transitions
// monotonic even when pollers race.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id uint, status models.ReportStatus) error {
	return r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Where(models.ReportStatusField+" NOT IN ?", models.TerminalStatuses).
		Update(models.ReportStatusField, status).Error
}

// ForceStatus writes the given lifecycle status without the terminal-state
// guard. Reserved for explicit administrative overrides.
func (r *ReportRepository) ForceStatus(ctx context.Context, id uint, status models.ReportStatus) error {
	return r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Update(models.ReportStatusField, status).Error
}

// MarkTriggered records the external correlation identifier and moves the
// report to scheduled in a single transaction.
func (r *ReportRepository) MarkTriggered(ctx context.Context, id uint, flowRunID string) error {
	return r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Where(models.ReportStatusField+" NOT IN ?", models.TerminalStatuses).
		Updates(map[string]interface{}{
			"flow_run_id":            flowRunID,
			models.ReportStatusField: models.ReportStatusScheduled,
		}).Error
}

// SetArtifact records the produced artifact location and generation time in
// a single transaction.
func (r *ReportRepository) SetArtifact(ctx context.Context, id uint, filePath string, generatedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			models.ReportFilePathField:    filePath,
			models.ReportGeneratedAtField: generatedAt,
		}).Error
}

// Delete removes a report by ID (administrative deletion). A missing
// record is reported as gorm.ErrRecordNotFound rather than a silent
// zero-row delete.
func (r *ReportRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Report{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
