// Package fetching retrieves agent buffer chart data from the APM backend.
package fetching

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"InspectorCharts/pkg/graphing"
	"InspectorCharts/pkg/metrics"
)

// ChartPath is the backend endpoint serving direct/mapped buffer charts.
const ChartPath = "getAgentStat/directBuffer/chart.pinpoint"

// Query selects the agent and time range of a fetch.
type Query struct {
	AgentID string
	From    time.Time
	To      time.Time
}

// Validate checks that q names an agent and a non-empty range.
func (q Query) Validate() error {
	if q.AgentID == "" {
		return fmt.Errorf("agent id is required")
	}
	if !q.To.After(q.From) {
		return fmt.Errorf("invalid range: from %s is not before to %s", q.From, q.To)
	}
	return nil
}

// Fetcher delivers chart data for a query.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (*graphing.Payload, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, q Query) (*graphing.Payload, error)

func (f FetcherFunc) Fetch(ctx context.Context, q Query) (*graphing.Payload, error) {
	return f(ctx, q)
}

// HTTPFetcher fetches chart data from the backend over HTTP.
type HTTPFetcher struct {
	baseURL *url.URL
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher for the backend at baseURL.
func NewHTTPFetcher(baseURL string, timeout time.Duration) (*HTTPFetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	return &HTTPFetcher{
		baseURL: u,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// URL returns the request URL for q.
func (f *HTTPFetcher) URL(q Query) string {
	u := f.baseURL.ResolveReference(&url.URL{Path: ChartPath})
	params := url.Values{}
	params.Set("agentId", q.AgentID)
	params.Set("from", strconv.FormatInt(q.From.UnixMilli(), 10))
	params.Set("to", strconv.FormatInt(q.To.UnixMilli(), 10))
	u.RawQuery = params.Encode()
	return u.String()
}

// Fetch requests chart data for q and decodes the backend's response.
func (f *HTTPFetcher) Fetch(ctx context.Context, q Query) (payload *graphing.Payload, err error) {
	start := time.Now()
	defer func() { metrics.ObserveFetch(time.Since(start), err) }()

	if err := q.Validate(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("backend returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var r graphing.Response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode chart data: %w", err)
	}

	return &r.Charts, nil
}
