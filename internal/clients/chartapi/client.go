// Package chartapi provides the client for the BI tool's chart API.
//
// The portal uses it to pin each dashboard chart to one company and the
// last week before rendering, and to capture chart screenshots for the PDF
// report.
package chartapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fieldscope/portal/config"
	"github.com/fieldscope/portal/internal/pipeline"
)

// DefaultTimeout is the timeout applied to every chart API call
const DefaultTimeout = 30 * time.Second

// Screenshot readiness polling window. The BI tool renders screenshots
// asynchronously; the cached image appears some seconds after the trigger.
const (
	screenshotPollInterval = 3 * time.Second
	screenshotPollTimeout  = 2 * time.Minute
)

// Fixed dimensions the filter rewrite operates on
const (
	// UnitDimension is the column charts are filtered to one company by
	UnitDimension = "unit"
	// DateDimension is the column the temporal range filter applies to
	DateDimension = "start_date"
	// LastWeekRange is the BI tool's relative time-range expression
	LastWeekRange = "Last week"
)

// AdhocFilter is one entry of a chart's ad-hoc filter list
type AdhocFilter struct {
	Clause            string      `json:"clause"`
	Comparator        interface{} `json:"comparator,omitempty"`
	DatasourceWarning bool        `json:"datasourceWarning"`
	ExpressionType    string      `json:"expressionType"`
	IsExtra           bool        `json:"isExtra"`
	IsNew             bool        `json:"isNew"`
	Operator          string      `json:"operator"`
	SQLExpression     *string     `json:"sqlExpression"`
	Subject           string      `json:"subject"`
}

// Chart is the subset of a chart definition the portal reads and writes
type Chart struct {
	SliceName    string `json:"slice_name"`
	VizType      string `json:"viz_type"`
	Params       string `json:"params"`
	QueryContext string `json:"query_context"`
}

type chartEnvelope struct {
	Result Chart `json:"result"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Provider string `json:"provider"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type screenshotResponse struct {
	ImageURL string `json:"image_url"`
}

// Client calls the BI chart API
type Client struct {
	http     *resty.Client
	baseURL  string
	username string
	password string
}

// NewClient creates a chart API client from the given configuration
func NewClient(cfg config.ChartAPI) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(DefaultTimeout).
			SetHeader("Content-Type", "application/json"),
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
	}
}

// Login authenticates against the chart API and installs the bearer token
// on the underlying HTTP client.
func (c *Client) Login(ctx context.Context) error {
	var result loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(loginRequest{
			Username: c.username,
			Password: c.password,
			Provider: "db",
		}).
		SetResult(&result).
		Post("/api/v1/security/login")
	if err != nil {
		return fmt.Errorf("chart API login failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("chart API login returned %s: %s", resp.Status(), resp.String())
	}
	if result.AccessToken == "" {
		return fmt.Errorf("chart API login returned no access token")
	}

	c.http.SetAuthToken(result.AccessToken)
	return nil
}

// GetChart retrieves a chart definition by ID
func (c *Client) GetChart(ctx context.Context, chartID int) (*Chart, error) {
	var envelope chartEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&envelope).
		Get(fmt.Sprintf("/api/v1/chart/%d", chartID))
	if err != nil {
		return nil, fmt.Errorf("failed to get chart %d: %w", chartID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get chart %d returned %s: %s", chartID, resp.Status(), resp.String())
	}
	return &envelope.Result, nil
}

// RewriteFilters returns a new filter list with any existing unit and
// start-date filters removed, a last-week temporal range appended and an
// equality filter on the unit dimension appended. The input is not
// modified.
func RewriteFilters(filters []AdhocFilter, company string) []AdhocFilter {
	rewritten := make([]AdhocFilter, 0, len(filters)+2)
	for _, f := range filters {
		if f.Subject == UnitDimension || f.Subject == DateDimension {
			continue
		}
		rewritten = append(rewritten, f)
	}

	rewritten = append(rewritten, AdhocFilter{
		Clause:         "WHERE",
		Comparator:     LastWeekRange,
		ExpressionType: "SIMPLE",
		Operator:       "TEMPORAL_RANGE",
		Subject:        DateDimension,
	})
	rewritten = append(rewritten, AdhocFilter{
		Clause:         "WHERE",
		Comparator:     []string{company},
		ExpressionType: "SIMPLE",
		Operator:       "IN",
		Subject:        UnitDimension,
	})
	return rewritten
}

// ApplyCompanyFilter rewrites the chart's ad-hoc filters to pin it to the
// given company and the last week, then writes the definition back.
func (c *Client) ApplyCompanyFilter(ctx context.Context, chartID int, company string) error {
	chart, err := c.GetChart(ctx, chartID)
	if err != nil {
		return err
	}

	var params map[string]interface{}
	if err := json.Unmarshal([]byte(chart.Params), &params); err != nil {
		return fmt.Errorf("failed to decode chart %d params: %w", chartID, err)
	}

	// adhoc_filters arrives as []interface{}; round-trip it through JSON to
	// get the typed filter list.
	var filters []AdhocFilter
	if raw, ok := params["adhoc_filters"]; ok {
		encoded, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("failed to encode chart %d filters: %w", chartID, err)
		}
		if err := json.Unmarshal(encoded, &filters); err != nil {
			return fmt.Errorf("failed to decode chart %d filters: %w", chartID, err)
		}
	}
	params["adhoc_filters"] = RewriteFilters(filters, company)

	var queryContext struct {
		Datasource struct {
			ID int `json:"id"`
		} `json:"datasource"`
	}
	if err := json.Unmarshal([]byte(chart.QueryContext), &queryContext); err != nil {
		return fmt.Errorf("failed to decode chart %d query context: %w", chartID, err)
	}

	encodedParams, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode chart %d params: %w", chartID, err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"slice_name":      chart.SliceName,
			"viz_type":        chart.VizType,
			"datasource_type": "table",
			"datasource_id":   queryContext.Datasource.ID,
			"params":          string(encodedParams),
		}).
		Put(fmt.Sprintf("/api/v1/chart/%d", chartID))
	if err != nil {
		return fmt.Errorf("failed to update chart %d: %w", chartID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("update chart %d returned %s: %s", chartID, resp.Status(), resp.String())
	}
	return nil
}

// Screenshot triggers asynchronous screenshot rendering for a chart and
// polls until the cached image is available, returning the image bytes.
func (c *Client) Screenshot(ctx context.Context, chartID int) ([]byte, error) {
	var result screenshotResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/api/v1/chart/%d/cache_screenshot/", chartID))
	if err != nil {
		return nil, fmt.Errorf("failed to trigger screenshot for chart %d: %w", chartID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("screenshot trigger for chart %d returned %s: %s", chartID, resp.Status(), resp.String())
	}
	if result.ImageURL == "" {
		return nil, fmt.Errorf("screenshot trigger for chart %d returned no image URL", chartID)
	}

	imageURL, err := rebaseURL(result.ImageURL, c.baseURL)
	if err != nil {
		return nil, err
	}

	// The image shows up once the BI tool's worker has rendered it; until
	// then the URL answers with a non-200 status.
	var image []byte
	err = pipeline.WaitUntil(ctx, screenshotPollInterval, screenshotPollTimeout, func(ctx context.Context) (bool, error) {
		resp, err := c.http.R().SetContext(ctx).Get(imageURL)
		if err != nil {
			return false, fmt.Errorf("failed to download screenshot for chart %d: %w", chartID, err)
		}
		if resp.IsError() {
			return false, nil
		}
		image = resp.Body()
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot for chart %d not ready: %w", chartID, err)
	}
	return image, nil
}

// rebaseURL swaps the scheme and host of rawURL for those of base. The BI
// tool reports image URLs using its internal hostname, which is unreachable
// from the portal network.
func rebaseURL(rawURL, base string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid image URL %q: %w", rawURL, err)
	}
	parsedBase, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if parsedBase.Scheme != "" {
		parsed.Scheme = parsedBase.Scheme
	}
	if parsedBase.Host != "" {
		parsed.Host = parsedBase.Host
	}
	return parsed.String(), nil
}
