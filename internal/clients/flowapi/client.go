// Package flowapi provides the client for the workflow orchestration API.
//
// The orchestrator exposes two endpoints the portal uses: one to trigger a
// flow run for a deployment and one to read a run's state by its
// correlation identifier.
package flowapi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fieldscope/portal/config"
)

// DefaultTimeout is the timeout applied to every orchestration API call
const DefaultTimeout = 10 * time.Second

// External state vocabulary of the orchestrator. The portal never persists
// these values directly; they are mapped onto ReportStatus by the poller.
const (
	StateScheduled  = "SCHEDULED"
	StatePending    = "PENDING"
	StateRunning    = "RUNNING"
	StateCompleted  = "COMPLETED"
	StateFailed     = "FAILED"
	StateCrashed    = "CRASHED"
	StateCancelled  = "CANCELLED"
	StateCancelling = "CANCELLING"
	StatePaused     = "PAUSED"
)

// RunState is the state object embedded in a flow run
type RunState struct {
	Type string `json:"type"`
}

// FlowRun is the orchestrator's representation of one flow run
type FlowRun struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	State     RunState   `json:"state"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// triggerRequest is the payload for creating a flow run
type triggerRequest struct {
	Parameters   map[string]interface{} `json:"parameters"`
	DeploymentID string                 `json:"deployment_id,omitempty"`
	WorkPoolName string                 `json:"work_pool_name,omitempty"`
	State        *RunState              `json:"state,omitempty"`
}

// Client calls the workflow orchestration API
type Client struct {
	http         *resty.Client
	deploymentID string
	workPool     string
}

// NewClient creates an orchestration API client from the given configuration
func NewClient(cfg config.FlowAPI) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("Content-Type", "application/json")
	if cfg.Username != "" {
		http.SetBasicAuth(cfg.Username, cfg.Password)
	}
	return &Client{
		http:         http,
		deploymentID: cfg.DeploymentID,
		workPool:     cfg.WorkPool,
	}
}

// TriggerRun requests a new flow run with the given parameters and returns
// the run's correlation identifier and initial state.
func (c *Client) TriggerRun(ctx context.Context, parameters map[string]interface{}) (*FlowRun, error) {
	var run FlowRun
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(triggerRequest{
			Parameters:   parameters,
			DeploymentID: c.deploymentID,
			WorkPoolName: c.workPool,
			State:        &RunState{Type: StateScheduled},
		}).
		SetResult(&run).
		Post("/flow_runs/")
	if err != nil {
		return nil, fmt.Errorf("failed to trigger flow run: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("flow run trigger returned %s: %s", resp.Status(), resp.String())
	}
	if run.ID == "" {
		return nil, fmt.Errorf("flow run trigger returned no run id")
	}
	return &run, nil
}

// GetRun retrieves a flow run by its correlation identifier
func (c *Client) GetRun(ctx context.Context, runID string) (*FlowRun, error) {
	var run FlowRun
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&run).
		Get(fmt.Sprintf("/flow_runs/%s", runID))
	if err != nil {
		return nil, fmt.Errorf("failed to get flow run %s: %w", runID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("flow run status returned %s: %s", resp.Status(), resp.String())
	}
	return &run, nil
}

// RunState returns the external state type of a flow run. This satisfies
// the poller's status-checker contract.
func (c *Client) RunState(ctx context.Context, runID string) (string, error) {
	run, err := c.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}
	return run.State.Type, nil
}
