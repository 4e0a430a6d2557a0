package flows

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldscope/portal/internal/clients/chartapi"
	"github.com/fieldscope/portal/internal/clients/llm"
	"github.com/fieldscope/portal/internal/lake"
	"github.com/fieldscope/portal/internal/logger"
	"github.com/fieldscope/portal/internal/objstore"
	"github.com/fieldscope/portal/internal/pipeline"
	"github.com/fieldscope/portal/internal/report"
)

// ArtifactWriter records the produced report artifact on the report row
type ArtifactWriter interface {
	SetArtifact(ctx context.Context, id uint, filePath string, generatedAt time.Time) error
}

// ReportParams identifies the report a flow run is producing
type ReportParams struct {
	ReportID  uint
	Company   string
	StartDate time.Time
	EndDate   time.Time
}

// ReportFlow produces the weekly PDF report for one company
type ReportFlow struct {
	charts  *chartapi.Client
	lake    *lake.Engine
	llm     *llm.Client
	store   *objstore.Store
	reports ArtifactWriter
	set     ChartSet
	params  ReportParams

	// intermediate artifacts carried between stages
	screenshots []report.Chart
	summary     string
	pdf         []byte
}

// NewReportFlow creates the report generation flow
func NewReportFlow(charts *chartapi.Client, engine *lake.Engine, summarizer *llm.Client,
	store *objstore.Store, reports ArtifactWriter, set ChartSet, params ReportParams) *ReportFlow {
	return &ReportFlow{
		charts:  charts,
		lake:    engine,
		llm:     summarizer,
		store:   store,
		reports: reports,
		set:     set,
		params:  params,
	}
}

// Pipeline builds the staged report generation pipeline
func (f *ReportFlow) Pipeline() *pipeline.Pipeline {
	return pipeline.New("report-generation",
		pipeline.Stage{Name: "login-chart-api", Run: f.login},
		pipeline.Stage{Name: "scope-charts", Run: f.scopeCharts},
		pipeline.Stage{Name: "capture-charts", Run: f.captureCharts},
		pipeline.Stage{Name: "summarize-comments", Run: f.summarize},
		pipeline.Stage{Name: "render-pdf", Run: f.render},
		pipeline.Stage{Name: "publish-report", Run: f.publish},
	)
}

// Run executes the full report generation
func (f *ReportFlow) Run(ctx context.Context) error {
	return f.Pipeline().Run(ctx)
}

func (f *ReportFlow) login(ctx context.Context) error {
	return f.charts.Login(ctx)
}

// scopeCharts rewrites every chart's filters so it shows only the report's
// company over the last week.
func (f *ReportFlow) scopeCharts(ctx context.Context) error {
	for _, title := range f.set.Titles {
		chartID, ok := f.set.IDs[title]
		if !ok {
			return fmt.Errorf("no chart id registered for %q", title)
		}
		if err := f.charts.ApplyCompanyFilter(ctx, chartID, f.params.Company); err != nil {
			return fmt.Errorf("failed to scope chart %q: %w", title, err)
		}
	}
	return nil
}

func (f *ReportFlow) captureCharts(ctx context.Context) error {
	f.screenshots = f.screenshots[:0]
	for _, title := range f.set.Titles {
		png, err := f.charts.Screenshot(ctx, f.set.IDs[title])
		if err != nil {
			return fmt.Errorf("failed to capture chart %q: %w", title, err)
		}
		f.screenshots = append(f.screenshots, report.Chart{Title: title, PNG: png})
	}
	return nil
}

func (f *ReportFlow) summarize(ctx context.Context) error {
	comments, err := f.lake.FinalComments(ctx, f.params.Company, f.params.StartDate, f.params.EndDate)
	if err != nil {
		return err
	}

	summary, err := f.llm.SummarizeComments(ctx, comments)
	if err != nil {
		return err
	}
	f.summary = summary

	logger.InfoWithFields("Report summary generated", map[string]interface{}{
		"report_id": f.params.ReportID,
		"comments":  len(comments),
	})
	return nil
}

func (f *ReportFlow) render(ctx context.Context) error {
	pdf, err := report.Render(report.Params{
		Company:   f.params.Company,
		StartDate: f.params.StartDate,
		EndDate:   f.params.EndDate,
		Summary:   f.summary,
		Charts:    f.screenshots,
	})
	if err != nil {
		return err
	}
	f.pdf = pdf
	return nil
}

func (f *ReportFlow) publish(ctx context.Context) error {
	name := fmt.Sprintf("%s_report_%s.pdf", f.params.Company, time.Now().UTC().Format("20060102T150405"))
	key := f.store.ReportKey(name)
	if err := f.store.Upload(ctx, key, f.pdf, "application/pdf"); err != nil {
		return err
	}

	if err := f.reports.SetArtifact(ctx, f.params.ReportID, key, time.Now().UTC()); err != nil {
		return err
	}

	logger.InfoWithFields("Report published", map[string]interface{}{
		"report_id": f.params.ReportID,
		"key":       key,
	})
	return nil
}
