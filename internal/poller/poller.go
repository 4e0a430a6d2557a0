// Package poller observes the terminal outcome of triggered flow runs
// without blocking the requesting actor.
//
// Each triggered report flow gets one poller goroutine that periodically
// reads the run's external state, maps it onto the report lifecycle and
// writes it to the report row. Pollers are supervised by a Registry keyed
// by the flow-run correlation identifier, so a run can never be polled
// twice and every poller can be cancelled or awaited on shutdown.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fieldscope/portal/internal/db/models"
	"github.com/fieldscope/portal/internal/logger"
)

// Default polling settings
const (
	// DefaultInterval is the pause between consecutive status checks
	DefaultInterval = 5 * time.Second
	// DefaultMaxAttempts bounds how many checks run before the report is timed out
	DefaultMaxAttempts = 60
)

// ErrAlreadyPolling is returned when a poller for the flow run is already registered
var ErrAlreadyPolling = errors.New("a poller for this flow run is already registered")

// StatusChecker reads the external state of a flow run
type StatusChecker interface {
	RunState(ctx context.Context, runID string) (string, error)
}

// StatusWriter persists mapped lifecycle statuses. Implementations must
// carry the terminal-state guard so writes against finished reports are
// no-ops.
type StatusWriter interface {
	UpdateStatus(ctx context.Context, id uint, status models.ReportStatus) error
}

// Config holds the polling cadence settings
type Config struct {
	Interval    time.Duration
	MaxAttempts int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	return c
}

// Registry supervises the running pollers
type Registry struct {
	checker StatusChecker
	reports StatusWriter
	cfg     Config

	mu     sync.Mutex
	active map[string]context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates a poller registry
func NewRegistry(checker StatusChecker, reports StatusWriter, cfg Config) *Registry {
	return &Registry{
		checker: checker,
		reports: reports,
		cfg:     cfg.withDefaults(),
		active:  make(map[string]context.CancelFunc),
	}
}

// Start registers and launches a poller for the given flow run. A second
// registration for the same flow-run ID is rejected with ErrAlreadyPolling.
// The returned error only concerns registration; polling outcomes are
// never surfaced to the caller.
func (r *Registry) Start(ctx context.Context, flowRunID string, reportID uint) error {
	if flowRunID == "" {
		return fmt.Errorf("flow run id cannot be empty")
	}

	r.mu.Lock()
	if _, exists := r.active[flowRunID]; exists {
		r.mu.Unlock()
		return ErrAlreadyPolling
	}
	pollCtx, cancel := context.WithCancel(ctx)
	r.active[flowRunID] = cancel
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer r.remove(flowRunID)
		defer cancel()
		r.poll(pollCtx, flowRunID, reportID)
	}()

	return nil
}

// Cancel stops the poller for a flow run, if one is registered
func (r *Registry) Cancel(flowRunID string) bool {
	r.mu.Lock()
	cancel, exists := r.active[flowRunID]
	r.mu.Unlock()
	if exists {
		cancel()
	}
	return exists
}

// ActiveCount returns the number of registered pollers
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// Shutdown cancels every poller and waits for them to exit or for the
// context to expire.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	for _, cancel := range r.active {
		cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pollers did not stop before shutdown deadline: %w", ctx.Err())
	}
}

func (r *Registry) remove(flowRunID string) {
	r.mu.Lock()
	delete(r.active, flowRunID)
	r.mu.Unlock()
}

// poll runs the check loop for one flow run. Check and write failures are
// logged and swallowed: the loop sleeps and tries again on the next tick.
// The mapped status is written on every poll, not only on change; the
// store's terminal-state guard keeps repeated and late writes harmless.
func (r *Registry) poll(ctx context.Context, flowRunID string, reportID uint) {
	logger.InfoWithFields("Poller started", map[string]interface{}{
		"flow_run_id": flowRunID,
		"report_id":   reportID,
	})

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		state, err := r.checker.RunState(ctx, flowRunID)
		if err != nil {
			if ctx.Err() != nil {
				logger.InfoWithFields("Poller cancelled", map[string]interface{}{
					"flow_run_id": flowRunID,
					"report_id":   reportID,
				})
				return
			}
			logger.WarnWithFields("Poller status check failed", map[string]interface{}{
				"flow_run_id": flowRunID,
				"report_id":   reportID,
				"attempt":     attempt,
				"error":       err.Error(),
			})
		} else {
			mapped := MapStatus(state)
			// The poller only stops once the terminal status actually landed
			// in the store; a failed write is retried on the next tick.
			if err := r.reports.UpdateStatus(ctx, reportID, mapped); err != nil {
				logger.WarnWithFields("Poller status write failed", map[string]interface{}{
					"flow_run_id": flowRunID,
					"report_id":   reportID,
					"status":      mapped.String(),
					"error":       err.Error(),
				})
			} else if mapped.IsTerminal() {
				logger.InfoWithFields("Poller observed terminal state", map[string]interface{}{
					"flow_run_id": flowRunID,
					"report_id":   reportID,
					"status":      mapped.String(),
					"attempts":    attempt,
				})
				return
			}
		}

		select {
		case <-ctx.Done():
			logger.InfoWithFields("Poller cancelled", map[string]interface{}{
				"flow_run_id": flowRunID,
				"report_id":   reportID,
			})
			return
		case <-time.After(r.cfg.Interval):
		}
	}

	// Attempt budget exhausted: the report is timed out regardless of the
	// last observed external state.
	if err := r.reports.UpdateStatus(ctx, reportID, models.ReportStatusTimeout); err != nil {
		logger.ErrorWithFields("Poller timeout write failed", map[string]interface{}{
			"flow_run_id": flowRunID,
			"report_id":   reportID,
			"error":       err.Error(),
		})
	}
	logger.WarnWithFields("Poller exhausted attempt budget", map[string]interface{}{
		"flow_run_id": flowRunID,
		"report_id":   reportID,
		"attempts":    r.cfg.MaxAttempts,
	})
}
