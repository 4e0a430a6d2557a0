package services

import (
	"context"
	"encoding/json"

	"github.com/fieldscope/portal/internal/db/models"
	"github.com/fieldscope/portal/internal/db/repos"
	"github.com/fieldscope/portal/internal/events"
)

// CompanyService provides company management
type CompanyService struct {
	repo *repos.CompanyRepository
}

// NewCompanyService creates a new company service
func NewCompanyService(repo *repos.CompanyRepository) *CompanyService {
	return &CompanyService{repo: repo}
}

// Create registers a new company
func (s *CompanyService) Create(ctx context.Context, company *models.Company, actorID uint, origin string) error {
	if err := s.repo.Create(ctx, company); err != nil {
		return err
	}

	details, _ := json.Marshal(map[string]string{"name": company.Name})
	events.Publish(events.Event{
		Type:          events.EventAuditRecorded,
		UserID:        actorID,
		Action:        models.AuditActionAddCompany,
		TargetID:      &company.ID,
		Details:       details,
		OriginAddress: origin,
	})
	return nil
}

// Get retrieves a company by ID
func (s *CompanyService) Get(ctx context.Context, id uint) (*models.Company, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByName retrieves a company by name
func (s *CompanyService) GetByName(ctx context.Context, name string) (*models.Company, error) {
	return s.repo.GetByName(ctx, name)
}

// List retrieves companies
func (s *CompanyService) List(ctx context.Context, opts *models.ListOptions) ([]models.Company, error) {
	return s.repo.List(ctx, opts)
}

// Count returns the number of companies
func (s *CompanyService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Delete removes a company
func (s *CompanyService) Delete(ctx context.Context, id uint, actorID uint, origin string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	events.Publish(events.Event{
		Type:          events.EventAuditRecorded,
		UserID:        actorID,
		Action:        models.AuditActionDeleteCompany,
		TargetID:      &id,
		OriginAddress: origin,
	})
	return nil
}
