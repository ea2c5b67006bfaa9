package drugguard

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const (
	analyticsBase = "/admin/analytics"

	OverviewEndpoint       = analyticsBase + "/overview"
	DrugAnalyticsEndpoint  = analyticsBase + "/drugs"
	ScanAnalyticsEndpoint  = analyticsBase + "/scans"
	TimeSeriesEndpoint     = analyticsBase + "/timeseries"
	GeographicEndpoint     = analyticsBase + "/geographic"
	TopPerformersEndpoint  = analyticsBase + "/top-performers"
	ExpiryTrackingEndpoint = analyticsBase + "/expiry-tracking"
	UserActivityEndpoint   = analyticsBase + "/user-activity"
	SystemHealthEndpoint   = analyticsBase + "/system-health"
	FraudDetectionEndpoint = analyticsBase + "/fraud-detection"
	ExportEndpoint         = analyticsBase + "/export"
	CustomReportEndpoint   = analyticsBase + "/reports/generate"

	DefaultInterval       = "daily"
	DefaultPerformerKind  = "drugs"
	DefaultPerformerLimit = 10
)

// TimeSeriesQuery selects a metric over a date range. Dates are passed to
// the server as given.
type TimeSeriesQuery struct {
	Metric    string
	StartDate string
	EndDate   string
	// Interval defaults to "daily".
	Interval string
}

// ExportQuery selects an analytics export. StartDate and EndDate are only
// sent when set.
type ExportQuery struct {
	Format    string
	DataType  string
	StartDate string
	EndDate   string
}

func (c *Client) OverviewStats(ctx context.Context) (*OverviewStats, error) {
	var resp OverviewStats
	if err := c.makeRequest(ctx, request{method: http.MethodGet, endpoint: OverviewEndpoint}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) DrugAnalytics(ctx context.Context) (*DrugAnalytics, error) {
	var resp DrugAnalytics
	if err := c.makeRequest(ctx, request{method: http.MethodGet, endpoint: DrugAnalyticsEndpoint}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// ScanAnalytics reports verification activity over the last days (30 when
// days <= 0).
func (c *Client) ScanAnalytics(ctx context.Context, days int) (*ScanAnalytics, error) {
	var resp ScanAnalytics
	r := request{method: http.MethodGet, endpoint: ScanAnalyticsEndpoint, query: daysQuery(days)}
	if err := c.makeRequest(ctx, r, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) TimeSeries(ctx context.Context, q TimeSeriesQuery) (*TimeSeriesData, error) {
	interval := q.Interval
	if interval == "" {
		interval = DefaultInterval
	}
	query := url.Values{
		"metric":    {q.Metric},
		"startDate": {q.StartDate},
		"endDate":   {q.EndDate},
		"interval":  {interval},
	}

	var resp TimeSeriesData
	if err := c.makeRequest(ctx, request{method: http.MethodGet, endpoint: TimeSeriesEndpoint, query: query}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) GeographicDistribution(ctx context.Context, days int) (*GeographicData, error) {
	var resp GeographicData
	r := request{method: http.MethodGet, endpoint: GeographicEndpoint, query: daysQuery(days)}
	if err := c.makeRequest(ctx, r, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// TopPerformers ranks entities of kind ("drugs" by default). limit <= 0
// means 10.
func (c *Client) TopPerformers(ctx context.Context, kind string, limit, days int) (*Aggregate, error) {
	if kind == "" {
		kind = DefaultPerformerKind
	}
	if limit <= 0 {
		limit = DefaultPerformerLimit
	}
	query := daysQuery(days)
	query.Set("type", kind)
	query.Set("limit", fmt.Sprint(limit))

	return c.getAggregate(ctx, TopPerformersEndpoint, query)
}

func (c *Client) ExpiryTracking(ctx context.Context) (*Aggregate, error) {
	return c.getAggregate(ctx, ExpiryTrackingEndpoint, nil)
}

func (c *Client) UserActivity(ctx context.Context, days int) (*Aggregate, error) {
	return c.getAggregate(ctx, UserActivityEndpoint, daysQuery(days))
}

func (c *Client) SystemHealth(ctx context.Context) (*Aggregate, error) {
	return c.getAggregate(ctx, SystemHealthEndpoint, nil)
}

func (c *Client) FraudDetection(ctx context.Context, days int) (*Aggregate, error) {
	return c.getAggregate(ctx, FraudDetectionEndpoint, daysQuery(days))
}

// GenerateCustomReport posts config as-is. The report layout is defined by
// the server.
func (c *Client) GenerateCustomReport(ctx context.Context, config any) (*Aggregate, error) {
	resp, err := c.do(ctx, request{method: http.MethodPost, endpoint: CustomReportEndpoint, body: config})
	if err != nil {
		return nil, err
	}

	return &Aggregate{RawMessage: resp.body}, nil
}

// ExportAnalytics downloads an export. The payload is returned undecoded
// because its encoding depends on q.Format.
func (c *Client) ExportAnalytics(ctx context.Context, q ExportQuery) (*Raw, error) {
	query := url.Values{
		"format":   {q.Format},
		"dataType": {q.DataType},
	}
	if q.StartDate != "" {
		query.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		query.Set("endDate", q.EndDate)
	}

	resp, err := c.do(ctx, request{method: http.MethodGet, endpoint: ExportEndpoint, query: query})
	if err != nil {
		return nil, err
	}

	return &Raw{ContentType: resp.header.Get("Content-Type"), Data: resp.body}, nil
}
