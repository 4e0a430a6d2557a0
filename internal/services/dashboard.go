package services

import (
	"context"

	"github.com/fieldscope/portal/internal/db/models"
)

// DashboardCounts aggregates the headline numbers shown on the portal home
type DashboardCounts struct {
	Users            int64 `json:"users"`
	Companies        int64 `json:"companies"`
	Reports          int64 `json:"reports"`
	RunningReports   int64 `json:"running_reports"`
	CompletedReports int64 `json:"completed_reports"`
	FailedReports    int64 `json:"failed_reports"`
}

// DashboardOverview is the portal home payload: headline counts plus the
// most recently requested reports.
type DashboardOverview struct {
	Counts        DashboardCounts `json:"counts"`
	RecentReports []models.Report `json:"recent_reports"`
}

// recentReportCount is how many recent reports the overview carries
const recentReportCount = 5

// DashboardService produces the aggregate counts for the portal home view
type DashboardService struct {
	users     *UserService
	companies *CompanyService
	reports   *ReportService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(users *UserService, companies *CompanyService, reports *ReportService) *DashboardService {
	return &DashboardService{users: users, companies: companies, reports: reports}
}

// Counts gathers the dashboard aggregates
func (s *DashboardService) Counts(ctx context.Context) (*DashboardCounts, error) {
	counts := &DashboardCounts{}

	var err error
	if counts.Users, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if counts.Companies, err = s.companies.Count(ctx); err != nil {
		return nil, err
	}
	if counts.Reports, err = s.reports.Count(ctx); err != nil {
		return nil, err
	}
	if counts.RunningReports, err = s.reports.CountByStatus(ctx, models.ReportStatusRunning); err != nil {
		return nil, err
	}
	if counts.CompletedReports, err = s.reports.CountByStatus(ctx, models.ReportStatusCompleted); err != nil {
		return nil, err
	}
	if counts.FailedReports, err = s.reports.CountByStatus(ctx, models.ReportStatusFailed); err != nil {
		return nil, err
	}

	return counts, nil
}

// Overview gathers the dashboard counts and the latest reports
func (s *DashboardService) Overview(ctx context.Context) (*DashboardOverview, error) {
	counts, err := s.Counts(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.reports.List(ctx, &models.ListOptions{Limit: recentReportCount})
	if err != nil {
		return nil, err
	}

	return &DashboardOverview{Counts: *counts, RecentReports: recent}, nil
}
