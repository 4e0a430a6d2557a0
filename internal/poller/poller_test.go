package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldscope/portal/internal/db/models"
)

// sequenceChecker replays a fixed sequence of external states, repeating
// the last one once the sequence is exhausted.
type sequenceChecker struct {
	mu     sync.Mutex
	states []string
	errs   []error
	calls  int
}

func (c *sequenceChecker) RunState(_ context.Context, _ string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i >= len(c.states) {
		i = len(c.states) - 1
	}
	return c.states[i], nil
}

func (c *sequenceChecker) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// recordingWriter records status writes and emulates the store's
// terminal-state guard.
type recordingWriter struct {
	mu     sync.Mutex
	writes []models.ReportStatus
	failN  int
}

func (w *recordingWriter) UpdateStatus(_ context.Context, _ uint, status models.ReportStatus) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failN > 0 {
		w.failN--
		return errors.New("store unavailable")
	}
	if len(w.writes) > 0 && w.writes[len(w.writes)-1].IsTerminal() {
		// Guarded write matches zero rows
		return nil
	}
	w.writes = append(w.writes, status)
	return nil
}

func (w *recordingWriter) statuses() []models.ReportStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.ReportStatus, len(w.writes))
	copy(out, w.writes)
	return out
}

func fastConfig(maxAttempts int) Config {
	return Config{Interval: time.Millisecond, MaxAttempts: maxAttempts}
}

func waitForDrain(t *testing.T, r *Registry) {
	t.Helper()
	require.Eventually(t, func() bool { return r.ActiveCount() == 0 },
		2*time.Second, 5*time.Millisecond, "poller did not finish")
}

func TestPollerWritesEveryObservedStateUntilTerminal(t *testing.T) {
	checker := &sequenceChecker{states: []string{"SCHEDULED", "PENDING", "RUNNING", "COMPLETED"}}
	writer := &recordingWriter{}
	registry := NewRegistry(checker, writer, fastConfig(60))

	require.NoError(t, registry.Start(context.Background(), "run-1", 1))
	waitForDrain(t, registry)

	assert.Equal(t, []models.ReportStatus{
		models.ReportStatusScheduled,
		models.ReportStatusPending,
		models.ReportStatusRunning,
		models.ReportStatusCompleted,
	}, writer.statuses())
	assert.Equal(t, 4, checker.callCount(), "poller must stop at the first terminal state")
}

func TestPollerTimesOutAfterAttemptBudget(t *testing.T) {
	checker := &sequenceChecker{states: []string{"RUNNING"}}
	writer := &recordingWriter{}
	registry := NewRegistry(checker, writer, fastConfig(3))

	require.NoError(t, registry.Start(context.Background(), "run-1", 1))
	waitForDrain(t, registry)

	statuses := writer.statuses()
	require.Len(t, statuses, 4)
	assert.Equal(t, models.ReportStatusTimeout, statuses[3])
	assert.Equal(t, 3, checker.callCount())
}

func TestPollerSwallowsCheckErrors(t *testing.T) {
	checker := &sequenceChecker{
		states: []string{"", "", "COMPLETED"},
		errs:   []error{errors.New("gateway timeout"), errors.New("connection refused"), nil},
	}
	writer := &recordingWriter{}
	registry := NewRegistry(checker, writer, fastConfig(60))

	require.NoError(t, registry.Start(context.Background(), "run-1", 1))
	waitForDrain(t, registry)

	assert.Equal(t, []models.ReportStatus{models.ReportStatusCompleted}, writer.statuses())
	assert.Equal(t, 3, checker.callCount())
}

func TestPollerWritesRepeatedStatesOnEveryPoll(t *testing.T) {
	checker := &sequenceChecker{states: []string{"PENDING", "RUNNING", "RUNNING", "COMPLETED"}}
	writer := &recordingWriter{}
	registry := NewRegistry(checker, writer, fastConfig(60))

	require.NoError(t, registry.Start(context.Background(), "run-1", 1))
	waitForDrain(t, registry)

	// Every poll writes the observed state, including consecutive duplicates
	assert.Equal(t, []models.ReportStatus{
		models.ReportStatusPending,
		models.ReportStatusRunning,
		models.ReportStatusRunning,
		models.ReportStatusCompleted,
	}, writer.statuses())
	assert.Equal(t, 4, checker.callCount())
}

func TestPollerRetriesTerminalWriteAfterStoreError(t *testing.T) {
	checker := &sequenceChecker{states: []string{"COMPLETED"}}
	writer := &recordingWriter{failN: 1}
	registry := NewRegistry(checker, writer, fastConfig(60))

	require.NoError(t, registry.Start(context.Background(), "run-1", 1))
	waitForDrain(t, registry)

	// The first write of the terminal state failed; the poller must keep
	// going until the store accepted it.
	assert.Equal(t, []models.ReportStatus{models.ReportStatusCompleted}, writer.statuses())
	assert.Equal(t, 2, checker.callCount())
}

func TestPollerSurvivesWriteErrors(t *testing.T) {
	checker := &sequenceChecker{states: []string{"RUNNING", "COMPLETED"}}
	writer := &recordingWriter{failN: 1}
	registry := NewRegistry(checker, writer, fastConfig(60))

	require.NoError(t, registry.Start(context.Background(), "run-1", 1))
	waitForDrain(t, registry)

	assert.Equal(t, []models.ReportStatus{models.ReportStatusCompleted}, writer.statuses())
}

func TestRegistryRejectsDuplicateFlowRun(t *testing.T) {
	checker := &sequenceChecker{states: []string{"RUNNING"}}
	writer := &recordingWriter{}
	registry := NewRegistry(checker, writer, fastConfig(1000))

	require.NoError(t, registry.Start(context.Background(), "run-1", 1))
	err := registry.Start(context.Background(), "run-1", 1)
	assert.ErrorIs(t, err, ErrAlreadyPolling)

	// A different flow run is fine
	require.NoError(t, registry.Start(context.Background(), "run-2", 2))
	assert.Equal(t, 2, registry.ActiveCount())

	registry.Cancel("run-1")
	registry.Cancel("run-2")
	waitForDrain(t, registry)
}

func TestRegistryRejectsEmptyFlowRunID(t *testing.T) {
	registry := NewRegistry(&sequenceChecker{states: []string{"RUNNING"}}, &recordingWriter{}, fastConfig(10))
	assert.Error(t, registry.Start(context.Background(), "", 1))
}

func TestRegistryCancelStopsPoller(t *testing.T) {
	checker := &sequenceChecker{states: []string{"RUNNING"}}
	writer := &recordingWriter{}
	registry := NewRegistry(checker, writer, Config{Interval: 10 * time.Millisecond, MaxAttempts: 1000})

	require.NoError(t, registry.Start(context.Background(), "run-1", 1))
	require.Eventually(t, func() bool { return checker.callCount() >= 1 },
		2*time.Second, time.Millisecond)

	assert.True(t, registry.Cancel("run-1"))
	waitForDrain(t, registry)

	// Cancellation does not write a terminal status; the report stays as
	// last observed.
	for _, status := range writer.statuses() {
		assert.False(t, status.IsTerminal())
	}
	assert.False(t, registry.Cancel("run-1"), "cancel after drain finds no poller")
}

func TestRegistryShutdownDrainsAllPollers(t *testing.T) {
	checker := &sequenceChecker{states: []string{"RUNNING"}}
	writer := &recordingWriter{}
	registry := NewRegistry(checker, writer, Config{Interval: 10 * time.Millisecond, MaxAttempts: 1000})

	require.NoError(t, registry.Start(context.Background(), "run-1", 1))
	require.NoError(t, registry.Start(context.Background(), "run-2", 2))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, registry.Shutdown(ctx))
	assert.Equal(t, 0, registry.ActiveCount())
}

func TestPollerStartAfterDrainIsAllowed(t *testing.T) {
	checker := &sequenceChecker{states: []string{"COMPLETED"}}
	writer := &recordingWriter{}
	registry := NewRegistry(checker, writer, fastConfig(10))

	require.NoError(t, registry.Start(context.Background(), "run-1", 1))
	waitForDrain(t, registry)

	// The slot is free again once the poller exited
	require.NoError(t, registry.Start(context.Background(), "run-1", 1))
	waitForDrain(t, registry)
}
