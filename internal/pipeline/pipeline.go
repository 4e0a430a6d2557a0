// Package pipeline provides the fixed-sequence stage runner used by the
// data-lake and report flows.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldscope/portal/internal/logger"
)

// Stage is one blocking step of a pipeline
type Stage struct {
	// Name identifies the stage in logs and errors
	Name string
	// Run executes the stage
	Run func(ctx context.Context) error
}

// Pipeline executes a fixed ordered sequence of stages. There are no
// retries and no rollback: the first stage error aborts the remaining
// stages and propagates to the caller, leaving earlier external side
// effects in place.
type Pipeline struct {
	name   string
	stages []Stage
}

// New creates a pipeline with the given stages. Stage order is fixed at
// construction time.
func New(name string, stages ...Stage) *Pipeline {
	return &Pipeline{
		name:   name,
		stages: stages,
	}
}

// Name returns the pipeline name
func (p *Pipeline) Name() string {
	return p.name
}

// Run executes the stages strictly in order
func (p *Pipeline) Run(ctx context.Context) error {
	logger.InfoWithFields("Pipeline started", map[string]interface{}{
		"pipeline": p.name,
		"stages":   len(p.stages),
	})

	start := time.Now()
	for i, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline %s aborted before stage %s: %w", p.name, stage.Name, err)
		}

		stageStart := time.Now()
		logger.InfoWithFields("Stage started", map[string]interface{}{
			"pipeline": p.name,
			"stage":    stage.Name,
			"position": i + 1,
		})

		if err := stage.Run(ctx); err != nil {
			logger.ErrorWithFields("Stage failed", map[string]interface{}{
				"pipeline": p.name,
				"stage":    stage.Name,
				"error":    err.Error(),
			})
			return fmt.Errorf("pipeline %s: stage %s: %w", p.name, stage.Name, err)
		}

		logger.InfoWithFields("Stage finished", map[string]interface{}{
			"pipeline": p.name,
			"stage":    stage.Name,
			"duration": time.Since(stageStart).String(),
		})
	}

	logger.InfoWithFields("Pipeline finished", map[string]interface{}{
		"pipeline": p.name,
		"duration": time.Since(start).String(),
	})
	return nil
}
