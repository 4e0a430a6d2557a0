// Package services contains the business logic of the portal
package services

import (
	"context"

	"github.com/fieldscope/portal/internal/db/models"
	"github.com/fieldscope/portal/internal/db/repos"
	"github.com/fieldscope/portal/internal/events"
)

// AuditService provides read access to the audit trail and persists audit
// events published on the event bus.
type AuditService struct {
	repo *repos.AuditRepository
}

// NewAuditService creates a new audit service and subscribes it to the
// audit event stream.
func NewAuditService(repo *repos.AuditRepository) *AuditService {
	s := &AuditService{repo: repo}
	events.Subscribe(events.EventAuditRecorded, s.handleAuditEvent)
	return s
}

// handleAuditEvent persists one audit event. It runs on the event loop, so
// failures are reported to the bus and logged there.
func (s *AuditService) handleAuditEvent(ctx context.Context, event events.Event) error {
	entry := &models.AuditLog{
		UserID:        event.UserID,
		Action:        event.Action,
		TargetID:      event.TargetID,
		Details:       event.Details,
		OriginAddress: event.OriginAddress,
	}
	return s.repo.Create(ctx, entry)
}

// GetByID retrieves an audit entry by ID
func (s *AuditService) GetByID(ctx context.Context, id uint) (*models.AuditLog, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves audit entries, optionally filtered by acting user and action
func (s *AuditService) List(ctx context.Context, userID uint, action string, opts *models.ListOptions) ([]models.AuditLog, error) {
	return s.repo.List(ctx, userID, action, opts)
}
