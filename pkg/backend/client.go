// Package backend implements the read-only client for the MES data source.
// The source exposes three logical resources: a metrics snapshot, the active
// alert list, and the tabular dataset for the selected view.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/types"
)

// Client handles communication with the MES data source API.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        *logrus.Logger
}

// Config for the data source client.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// NewClient creates a new data source client.
func NewClient(cfg Config, log *logrus.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// Query describes one fetch cycle's request parameters.
type Query struct {
	View       types.View
	Stage      string // queue view only
	Limit      int
	Thresholds types.Thresholds
}

// Result is one cycle's worth of fetched resources.
type Result struct {
	Metrics types.MetricsSnapshot
	Alerts  []types.Alert
	Rows    []types.Row
}

// ResourceError reports which of the three resources failed during a cycle.
type ResourceError struct {
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s fetch failed: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// FetchAll issues the three resource fetches concurrently and joins them.
// The combined result is accepted only if all three succeed; a failure in any
// one discards the whole cycle, and the returned error names the failing
// resource. When more than one fails, the first in metrics/alerts/rows order
// is reported.
func (c *Client) FetchAll(ctx context.Context, q Query) (*Result, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("data source client not configured")
	}

	var (
		metrics types.MetricsSnapshot
		alerts  []types.Alert
		rows    []types.Row

		metricsErr, alertsErr, rowsErr error
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		metrics, metricsErr = c.fetchMetrics(ctx)
	}()
	go func() {
		defer wg.Done()
		alerts, alertsErr = c.fetchAlerts(ctx, q.Thresholds)
	}()
	go func() {
		defer wg.Done()
		rows, rowsErr = c.fetchRows(ctx, q)
	}()
	wg.Wait()

	if metricsErr != nil {
		return nil, &ResourceError{Resource: "metrics", Err: metricsErr}
	}
	if alertsErr != nil {
		return nil, &ResourceError{Resource: "alerts", Err: alertsErr}
	}
	if rowsErr != nil {
		return nil, &ResourceError{Resource: "rows", Err: rowsErr}
	}

	c.log.WithFields(logrus.Fields{
		"view":   q.View,
		"alerts": len(alerts),
		"rows":   len(rows),
	}).Debug("Fetch cycle completed")

	return &Result{Metrics: metrics, Alerts: alerts, Rows: rows}, nil
}

func (c *Client) fetchMetrics(ctx context.Context) (types.MetricsSnapshot, error) {
	var out types.MetricsSnapshot
	if err := c.getJSON(ctx, c.endpoint+"/api/metrics", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = types.MetricsSnapshot{}
	}
	return out, nil
}

func (c *Client) fetchAlerts(ctx context.Context, th types.Thresholds) ([]types.Alert, error) {
	params := url.Values{}
	params.Set("stale_seconds", strconv.Itoa(th.StaleSeconds))
	params.Set("slow_duration_seconds", strconv.FormatFloat(th.SlowDurationSeconds, 'f', -1, 64))
	params.Set("window_minutes", strconv.Itoa(th.WindowMinutes))

	var out []types.Alert
	if err := c.getJSON(ctx, c.endpoint+"/api/alerts?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	// An empty alert list is valid state, not an error.
	return out, nil
}

func (c *Client) fetchRows(ctx context.Context, q Query) ([]types.Row, error) {
	if !q.View.Valid() {
		return nil, fmt.Errorf("unknown view %q", q.View)
	}
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.View == types.ViewQueue && q.Stage != "" {
		params.Set("stage", q.Stage)
	}
	u := fmt.Sprintf("%s/api/table/%s", c.endpoint, q.View)
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}

	var out []types.Row
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getJSON performs a GET and decodes the JSON response body into out.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
