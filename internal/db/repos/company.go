package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/fieldscope/portal/internal/db/models"
)

// CompanyRepository handles database operations for companies
type CompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new instance of CompanyRepository
func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{
		db: db,
	}
}

// Create creates a new company in the database
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

// GetByID retrieves a company by ID from the database
func (r *CompanyRepository) GetByID(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// GetByName retrieves a company by name from the database
func (r *CompanyRepository) GetByName(ctx context.Context, name string) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// List retrieves all companies with pagination
func (r *CompanyRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.Company, error) {
	var companies []models.Company
	query := r.db.WithContext(ctx).Model(&models.Company{}).Order("created_at DESC")
	if opts != nil {
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
		query = query.Offset(opts.Offset)
	}
	err := query.Find(&companies).Error
	return companies, err
}

// Count returns the total number of companies
func (r *CompanyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Company{}).Count(&count).Error
	return count, err
}

// Delete removes a company by ID. A missing record is reported as
// gorm.ErrRecordNotFound rather than a silent zero-row delete.
func (r *CompanyRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Company{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
