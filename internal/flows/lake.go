// Package flows assembles the data-lake refresh and report-generation
// pipelines out of the scraper, object store, lake engine and external
// clients.
package flows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fieldscope/portal/internal/lake"
	"github.com/fieldscope/portal/internal/logger"
	"github.com/fieldscope/portal/internal/objstore"
	"github.com/fieldscope/portal/internal/pipeline"
	"github.com/fieldscope/portal/internal/scraper"
)

// LakeFlow refreshes the columnar lake from a fresh checklist export
type LakeFlow struct {
	scraper *scraper.Scraper
	store   *objstore.Store
	engine  *lake.Engine

	startDate time.Time
	endDate   time.Time

	// exportPath carries the downloaded CSV between stages
	exportPath string
}

// NewLakeFlow creates the lake refresh flow for the given date window
func NewLakeFlow(s *scraper.Scraper, store *objstore.Store, engine *lake.Engine, startDate, endDate time.Time) *LakeFlow {
	return &LakeFlow{
		scraper:   s,
		store:     store,
		engine:    engine,
		startDate: startDate,
		endDate:   endDate,
	}
}

// Pipeline builds the staged lake refresh pipeline
func (f *LakeFlow) Pipeline() *pipeline.Pipeline {
	return pipeline.New("lake-refresh",
		pipeline.Stage{Name: "export-checklists", Run: f.exportChecklists},
		pipeline.Stage{Name: "land-export", Run: f.landExport},
		pipeline.Stage{Name: "build-raw", Run: f.buildRaw},
		pipeline.Stage{Name: "build-cleaned", Run: f.buildCleaned},
	)
}

// Run executes the full lake refresh
func (f *LakeFlow) Run(ctx context.Context) error {
	return f.Pipeline().Run(ctx)
}

func (f *LakeFlow) exportChecklists(ctx context.Context) error {
	dir, err := os.MkdirTemp("", "checklist-export-")
	if err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	path, err := f.scraper.Export(f.startDate, f.endDate, dir)
	if err != nil {
		return err
	}
	f.exportPath = path

	logger.InfoWithFields("Checklist export downloaded", map[string]interface{}{
		"path": path,
	})
	return nil
}

func (f *LakeFlow) landExport(ctx context.Context) error {
	name := fmt.Sprintf("checklists_%s.csv", time.Now().UTC().Format("20060102T150405"))
	key := f.store.LandingKey(name)
	if err := f.store.UploadFile(ctx, key, f.exportPath, "text/csv"); err != nil {
		return err
	}
	defer os.RemoveAll(filepath.Dir(f.exportPath))

	logger.InfoWithFields("Export landed in object store", map[string]interface{}{
		"key": key,
	})
	return nil
}

func (f *LakeFlow) buildRaw(ctx context.Context) error {
	return f.engine.TransformRaw(ctx)
}

func (f *LakeFlow) buildCleaned(ctx context.Context) error {
	return f.engine.TransformCleaned(ctx)
}
