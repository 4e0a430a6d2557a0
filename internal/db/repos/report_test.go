package repos

import (
	"time"

	"gorm.io/gorm"

	"github.com/fieldscope/portal/internal/db/models"
)

func (s *DBRepositoryTestSuite) TestReportCreateDefaultsToPending() {
	user := s.createTestUser("reports1@example.com")
	company := s.createTestCompany("Acme")
	report := s.createTestReport(company.ID, user.ID)

	s.Equal(models.ReportStatusPending, report.Status)

	got, err := s.reportRepo.GetByID(s.ctx, report.ID)
	s.Require().NoError(err)
	s.Equal(models.ReportStatusPending, got.Status)
}

func (s *DBRepositoryTestSuite) TestReportUpdateStatusTransitions() {
	user := s.createTestUser("reports2@example.com")
	company := s.createTestCompany("Acme")
	report := s.createTestReport(company.ID, user.ID)

	for _, status := range []models.ReportStatus{
		models.ReportStatusScheduled,
		models.ReportStatusRunning,
		models.ReportStatusCompleted,
	} {
		s.Require().NoError(s.reportRepo.UpdateStatus(s.ctx, report.ID, status))
		got, err := s.reportRepo.GetByID(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Equal(status, got.Status)
	}
}

func (s *DBRepositoryTestSuite) TestReportUpdateStatusTerminalGuard() {
	user := s.createTestUser("reports3@example.com")
	company := s.createTestCompany("Acme")

	for _, terminal := range models.TerminalStatuses {
		report := s.createTestReport(company.ID, user.ID)
		s.Require().NoError(s.reportRepo.UpdateStatus(s.ctx, report.ID, terminal))

		// Every further write is a no-op, including a timeout write from a
		// straggling poller.
		for _, late := range []models.ReportStatus{
			models.ReportStatusRunning,
			models.ReportStatusCompleted,
			models.ReportStatusTimeout,
		} {
			s.Require().NoError(s.reportRepo.UpdateStatus(s.ctx, report.ID, late))
			got, err := s.reportRepo.GetByID(s.ctx, report.ID)
			s.Require().NoError(err)
			s.Equal(terminal, got.Status)
		}
	}
}

func (s *DBRepositoryTestSuite) TestReportForceStatusOverridesTerminal() {
	user := s.createTestUser("reports4@example.com")
	company := s.createTestCompany("Acme")
	report := s.createTestReport(company.ID, user.ID)

	s.Require().NoError(s.reportRepo.UpdateStatus(s.ctx, report.ID, models.ReportStatusFailed))
	s.Require().NoError(s.reportRepo.ForceStatus(s.ctx, report.ID, models.ReportStatusPending))

	got, err := s.reportRepo.GetByID(s.ctx, report.ID)
	s.Require().NoError(err)
	s.Equal(models.ReportStatusPending, got.Status)
}

func (s *DBRepositoryTestSuite) TestReportMarkTriggered() {
	user := s.createTestUser("reports5@example.com")
	company := s.createTestCompany("Acme")
	report := s.createTestReport(company.ID, user.ID)

	s.Require().NoError(s.reportRepo.MarkTriggered(s.ctx, report.ID, "run-abc-123"))

	got, err := s.reportRepo.GetByID(s.ctx, report.ID)
	s.Require().NoError(err)
	s.Equal("run-abc-123", got.FlowRunID)
	s.Equal(models.ReportStatusScheduled, got.Status)

	byRun, err := s.reportRepo.GetByFlowRunID(s.ctx, "run-abc-123")
	s.Require().NoError(err)
	s.Equal(report.ID, byRun.ID)
}

func (s *DBRepositoryTestSuite) TestReportSetArtifact() {
	user := s.createTestUser("reports6@example.com")
	company := s.createTestCompany("Acme")
	report := s.createTestReport(company.ID, user.ID)

	generatedAt := time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC)
	s.Require().NoError(s.reportRepo.SetArtifact(s.ctx, report.ID, "reports/lm/acme_report.pdf", generatedAt))

	got, err := s.reportRepo.GetByID(s.ctx, report.ID)
	s.Require().NoError(err)
	s.Equal("reports/lm/acme_report.pdf", got.FilePath)
	s.Require().NotNil(got.GeneratedAt)
	s.True(got.GeneratedAt.Equal(generatedAt))
}

func (s *DBRepositoryTestSuite) TestReportListFilters() {
	user := s.createTestUser("reports7@example.com")
	acme := s.createTestCompany("Acme")
	globex := s.createTestCompany("Globex")

	first := s.createTestReport(acme.ID, user.ID)
	s.createTestReport(acme.ID, user.ID)
	s.createTestReport(globex.ID, user.ID)

	s.Require().NoError(s.reportRepo.UpdateStatus(s.ctx, first.ID, models.ReportStatusCompleted))

	// Company filter
	reports, err := s.reportRepo.List(s.ctx, &models.ListOptions{CompanyID: acme.ID})
	s.Require().NoError(err)
	s.Len(reports, 2)

	// Status filter
	completed := models.ReportStatusCompleted
	reports, err = s.reportRepo.List(s.ctx, &models.ListOptions{Status: &completed})
	s.Require().NoError(err)
	s.Require().Len(reports, 1)
	s.Equal(first.ID, reports[0].ID)

	// Counts
	total, err := s.reportRepo.Count(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(3, total)

	pending, err := s.reportRepo.CountByStatus(s.ctx, models.ReportStatusPending)
	s.Require().NoError(err)
	s.EqualValues(2, pending)
}

func (s *DBRepositoryTestSuite) TestReportDelete() {
	user := s.createTestUser("reports8@example.com")
	company := s.createTestCompany("Acme")
	report := s.createTestReport(company.ID, user.ID)

	s.Require().NoError(s.reportRepo.Delete(s.ctx, report.ID))

	_, err := s.reportRepo.GetByID(s.ctx, report.ID)
	s.Error(err)

	s.ErrorIs(s.reportRepo.Delete(s.ctx, report.ID), gorm.ErrRecordNotFound)
}
