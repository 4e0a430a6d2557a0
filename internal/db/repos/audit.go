package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/fieldscope/portal/internal/db/models"
)

// AuditRepository handles database operations for audit log entries.
// The table is append-only; this repository deliberately exposes no update
// or delete operations.
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new instance of AuditRepository
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{
		db: db,
	}
}

// Create appends a new audit entry
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetByID retrieves an audit entry by ID
func (r *AuditRepository) GetByID(ctx context.Context, id uint) (*models.AuditLog, error) {
	var entry models.AuditLog
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// List retrieves audit entries, newest first, with optional user and action filters
func (r *AuditRepository) List(ctx context.Context, userID uint, action string, opts *models.ListOptions) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	query := r.db.WithContext(ctx).Model(&models.AuditLog{}).Order("created_at DESC")
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if opts != nil {
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
		query = query.Offset(opts.Offset)
	}
	err := query.Find(&entries).Error
	return entries, err
}
