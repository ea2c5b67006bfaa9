package drugguard

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const (
	ReportsEndpoint        = "/reports"
	RecentReportsEndpoint  = "/reports/recent"
	SearchReportsEndpoint  = "/reports/search"
	AdminReportsEndpoint   = "/admin/reports"
	PendingReportsEndpoint = "/admin/reports/pending"

	ReportStatisticsEndpoint    = "/admin/reports/statistics"
	SeverityStatisticsEndpoint  = "/admin/reports/statistics/severity"
	StatusStatisticsEndpoint    = "/admin/reports/statistics/status"
	IssueTypeStatisticsEndpoint = "/admin/reports/statistics/issue-types"

	defaultReportSearchSize = 10
)

func reportPath(id int64) string {
	return fmt.Sprintf("%s/%d", AdminReportsEndpoint, id)
}

// CreateDrugReport files a public report about a suspicious drug. The
// server assigns the id and the initial PENDING status.
func (c *Client) CreateDrugReport(ctx context.Context, report *CreateDrugReportRequest) (*DrugReport, error) {
	var resp DrugReport
	if err := c.makeRequest(ctx, request{method: http.MethodPost, endpoint: ReportsEndpoint, body: report}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) RecentReports(ctx context.Context) ([]DrugReport, error) {
	return getList[DrugReport](ctx, c, RecentReportsEndpoint, nil)
}

// SearchReports searches public reports; size <= 0 means 10.
func (c *Client) SearchReports(ctx context.Context, query string, page, size int) (*Page[DrugReport], error) {
	q := pageQuery(page, size, defaultReportSearchSize)
	q.Set("query", query)

	return getPage[DrugReport](ctx, c, SearchReportsEndpoint, q)
}

// ListReports lists all reports, newest first unless opts say otherwise.
func (c *Client) ListReports(ctx context.Context, opts ListOptions) (*Page[DrugReport], error) {
	return getPage[DrugReport](ctx, c, AdminReportsEndpoint, opts.query("createdAt", "desc"))
}

func (c *Client) GetReport(ctx context.Context, id int64) (*DrugReport, error) {
	var resp DrugReport
	if err := c.makeRequest(ctx, request{method: http.MethodGet, endpoint: reportPath(id)}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) ReportsByStatus(ctx context.Context, status ReportStatus, page, size int) (*Page[DrugReport], error) {
	endpoint := AdminReportsEndpoint + "/status/" + url.PathEscape(string(status))
	return getPage[DrugReport](ctx, c, endpoint, pageQuery(page, size, DefaultPageSize))
}

func (c *Client) ReportsBySeverity(ctx context.Context, severity Severity, page, size int) (*Page[DrugReport], error) {
	endpoint := AdminReportsEndpoint + "/severity/" + url.PathEscape(string(severity))
	return getPage[DrugReport](ctx, c, endpoint, pageQuery(page, size, DefaultPageSize))
}

func (c *Client) PendingReports(ctx context.Context) ([]DrugReport, error) {
	return getList[DrugReport](ctx, c, PendingReportsEndpoint, nil)
}

type reportStatusUpdate struct {
	Status     ReportStatus `json:"status"`
	AdminNotes string       `json:"adminNotes,omitempty"`
}

// UpdateReportStatus moves a report to status. notes may be empty.
func (c *Client) UpdateReportStatus(ctx context.Context, id int64, status ReportStatus, notes string) (*DrugReport, error) {
	var resp DrugReport
	body := reportStatusUpdate{Status: status, AdminNotes: notes}
	endpoint := reportPath(id) + "/status"
	if err := c.makeRequest(ctx, request{method: http.MethodPut, endpoint: endpoint, body: body}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) ReportStatistics(ctx context.Context) (*Aggregate, error) {
	return c.getAggregate(ctx, ReportStatisticsEndpoint, nil)
}

func (c *Client) SeverityStatistics(ctx context.Context) (*Aggregate, error) {
	return c.getAggregate(ctx, SeverityStatisticsEndpoint, nil)
}

func (c *Client) StatusStatistics(ctx context.Context) (*Aggregate, error) {
	return c.getAggregate(ctx, StatusStatisticsEndpoint, nil)
}

func (c *Client) IssueTypeStatistics(ctx context.Context) (*Aggregate, error) {
	return c.getAggregate(ctx, IssueTypeStatisticsEndpoint, nil)
}
