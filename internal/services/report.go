package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fieldscope/portal/internal/clients/flowapi"
	"github.com/fieldscope/portal/internal/db/models"
	"github.com/fieldscope/portal/internal/db/repos"
	"github.com/fieldscope/portal/internal/events"
	"github.com/fieldscope/portal/internal/logger"
	"github.com/fieldscope/portal/internal/poller"
)

// ErrReportFinished is returned when an action targets a report that has
// already reached a terminal status.
var ErrReportFinished = errors.New("report has already finished")

// FlowTrigger submits report flow runs to the workflow orchestrator
type FlowTrigger interface {
	TriggerRun(ctx context.Context, parameters map[string]interface{}) (*flowapi.FlowRun, error)
	RunState(ctx context.Context, runID string) (string, error)
}

// ReportService owns the report lifecycle: creation, triggering, status
// tracking and cancellation.
type ReportService struct {
	repo      *repos.ReportRepository
	companies *repos.CompanyRepository
	flow      FlowTrigger
	registry  *poller.Registry

	// pollCtx is the long-lived context pollers run under, so they outlive
	// the request that created them.
	pollCtx context.Context
}

// NewReportService creates a new report service and subscribes it to the
// report trigger event stream.
func NewReportService(pollCtx context.Context, repo *repos.ReportRepository, companies *repos.CompanyRepository,
	flow FlowTrigger, registry *poller.Registry) *ReportService {
	s := &ReportService{
		repo:      repo,
		companies: companies,
		flow:      flow,
		registry:  registry,
		pollCtx:   pollCtx,
	}
	events.Subscribe(events.EventReportTriggered, s.handleReportTriggered)
	return s
}

// handleReportTriggered runs on the event loop and records accepted flow
// runs in the operational log.
func (s *ReportService) handleReportTriggered(_ context.Context, event events.Event) error {
	logger.InfoWithFields("Report flow run accepted", map[string]interface{}{
		"report_id":   event.ReportID,
		"flow_run_id": event.FlowRunID,
		"user_id":     event.UserID,
	})
	return nil
}

// Create persists a pending report, submits its flow run to the
// orchestrator and starts a status poller. If the orchestrator rejects the
// submission the report is marked failed and no poller starts.
func (s *ReportService) Create(ctx context.Context, report *models.Report, origin string) (*models.Report, error) {
	company, err := s.companies.GetByID(ctx, report.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve company %d: %w", report.CompanyID, err)
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	run, err := s.flow.TriggerRun(ctx, map[string]interface{}{
		"report_id":  report.ID,
		"company":    company.Name,
		"start_date": report.StartDate.Format("2006-01-02"),
		"end_date":   report.EndDate.Format("2006-01-02"),
	})
	if err != nil {
		if updateErr := s.repo.UpdateStatus(ctx, report.ID, models.ReportStatusFailed); updateErr != nil {
			logger.Errorf("Failed to mark report %d failed after trigger error: %v", report.ID, updateErr)
		}
		return nil, fmt.Errorf("failed to trigger report flow: %w", err)
	}

	if err := s.repo.MarkTriggered(ctx, report.ID, run.ID); err != nil {
		return nil, fmt.Errorf("failed to record flow run: %w", err)
	}
	report.FlowRunID = run.ID
	report.Status = models.ReportStatusScheduled

	if err := s.registry.Start(s.pollCtx, run.ID, report.ID); err != nil {
		logger.WarnWithFields("Poller not started for report", map[string]interface{}{
			"report_id":   report.ID,
			"flow_run_id": run.ID,
			"error":       err.Error(),
		})
	}

	details, _ := json.Marshal(map[string]interface{}{
		"company":     company.Name,
		"flow_run_id": run.ID,
	})
	events.Publish(events.Event{
		Type:          events.EventAuditRecorded,
		UserID:        report.UserID,
		Action:        models.AuditActionGenerateReport,
		TargetID:      &report.ID,
		Details:       details,
		OriginAddress: origin,
	})
	events.Publish(events.Event{
		Type:      events.EventReportTriggered,
		UserID:    report.UserID,
		ReportID:  report.ID,
		FlowRunID: run.ID,
	})

	return report, nil
}

// CheckStatus reads the current external state of the report's flow run,
// writes the mapped status through the terminal-state guard and returns
// the refreshed report.
func (s *ReportService) CheckStatus(ctx context.Context, id uint, actorID uint, origin string) (*models.Report, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if report.FlowRunID != "" && !report.Status.IsTerminal() {
		state, err := s.flow.RunState(ctx, report.FlowRunID)
		if err != nil {
			return nil, fmt.Errorf("failed to check flow run %s: %w", report.FlowRunID, err)
		}
		if err := s.repo.UpdateStatus(ctx, id, poller.MapStatus(state)); err != nil {
			return nil, fmt.Errorf("failed to update report status: %w", err)
		}
		report, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	events.Publish(events.Event{
		Type:          events.EventAuditRecorded,
		UserID:        actorID,
		Action:        models.AuditActionCheckStatus,
		TargetID:      &id,
		OriginAddress: origin,
	})

	return report, nil
}

// Cancel stops tracking a running report and marks it cancelled. Reports
// that already finished cannot be cancelled.
func (s *ReportService) Cancel(ctx context.Context, id uint, actorID uint, origin string) (*models.Report, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status.IsTerminal() {
		return nil, ErrReportFinished
	}

	if report.FlowRunID != "" {
		s.registry.Cancel(report.FlowRunID)
	}
	if err := s.repo.UpdateStatus(ctx, id, models.ReportStatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel report: %w", err)
	}

	events.Publish(events.Event{
		Type:          events.EventAuditRecorded,
		UserID:        actorID,
		Action:        models.AuditActionCancelReport,
		TargetID:      &id,
		OriginAddress: origin,
	})

	return s.repo.GetByID(ctx, id)
}

// Get retrieves a report by ID
func (s *ReportService) Get(ctx context.Context, id uint) (*models.Report, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves reports matching the given filters
func (s *ReportService) List(ctx context.Context, opts *models.ListOptions) ([]models.Report, error) {
	return s.repo.List(ctx, opts)
}

// Count returns the number of reports
func (s *ReportService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// CountByStatus returns the number of reports in the given status
func (s *ReportService) CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error) {
	return s.repo.CountByStatus(ctx, status)
}

// Delete removes a report. A running poller for it is cancelled first.
func (s *ReportService) Delete(ctx context.Context, id uint, actorID uint, origin string) error {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if report.FlowRunID != "" {
		s.registry.Cancel(report.FlowRunID)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	events.Publish(events.Event{
		Type:          events.EventAuditRecorded,
		UserID:        actorID,
		Action:        models.AuditActionDeleteReport,
		TargetID:      &id,
		OriginAddress: origin,
	})
	return nil
}

// resumePollerDelay spaces out poller restarts after a process restart
const resumePollerDelay = 250 * time.Millisecond

// ResumePolling restarts pollers for reports that were still in flight
// when the process last stopped.
func (s *ReportService) ResumePolling(ctx context.Context) error {
	opts := &models.ListOptions{Limit: 0}
	reports, err := s.repo.List(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to list reports for poller resume: %w", err)
	}

	resumed := 0
	for _, report := range reports {
		if report.FlowRunID == "" || report.Status.IsTerminal() {
			continue
		}
		if err := s.registry.Start(s.pollCtx, report.FlowRunID, report.ID); err != nil {
			if !errors.Is(err, poller.ErrAlreadyPolling) {
				logger.Errorf("Failed to resume poller for report %d: %v", report.ID, err)
			}
			continue
		}
		resumed++
		time.Sleep(resumePollerDelay)
	}

	if resumed > 0 {
		logger.Infof("Resumed %d report pollers", resumed)
	}
	return nil
}
