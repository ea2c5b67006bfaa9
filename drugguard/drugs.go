package drugguard

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const (
	AdminDrugsEndpoint        = "/admin/drugs"
	AdminDrugSearchEndpoint   = "/admin/drugs/search"
	DrugStatisticsEndpoint    = "/admin/drugs/statistics"
	ScanStatisticsEndpoint    = "/admin/drugs/scan-statistics"
	DrugCategoriesEndpoint    = "/admin/drugs/categories"
	DrugManufacturersEndpoint = "/admin/drugs/manufacturers"
	ExpiringSoonEndpoint      = "/admin/drugs/expiring-soon"

	VerifyEndpoint           = "/drugs/verify"
	PublicDrugSearchEndpoint = "/drugs/search"
)

// ListOptions controls paging and ordering of admin list endpoints. Zero
// values select the endpoint's defaults.
type ListOptions struct {
	Page          int
	Size          int
	SortBy        string
	SortDirection string
}

func (o ListOptions) query(sortBy, sortDirection string) url.Values {
	q := pageQuery(o.Page, o.Size, DefaultPageSize)
	if o.SortBy != "" {
		sortBy = o.SortBy
	}
	if o.SortDirection != "" {
		sortDirection = o.SortDirection
	}
	q.Set("sortBy", sortBy)
	q.Set("sortDirection", sortDirection)

	return q
}

func drugPath(id int64) string {
	return fmt.Sprintf("%s/%d", AdminDrugsEndpoint, id)
}

// CreateDrug registers a new drug.
func (c *Client) CreateDrug(ctx context.Context, drug *CreateDrugRequest) (*Drug, error) {
	var resp Drug
	if err := c.makeRequest(ctx, request{method: http.MethodPost, endpoint: AdminDrugsEndpoint, body: drug}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// ListDrugs lists registered drugs, by default sorted by name ascending.
func (c *Client) ListDrugs(ctx context.Context, opts ListOptions) (*Page[Drug], error) {
	return getPage[Drug](ctx, c, AdminDrugsEndpoint, opts.query("name", "asc"))
}

func (c *Client) GetDrug(ctx context.Context, id int64) (*Drug, error) {
	var resp Drug
	if err := c.makeRequest(ctx, request{method: http.MethodGet, endpoint: drugPath(id)}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// UpdateDrug applies a partial update.
func (c *Client) UpdateDrug(ctx context.Context, id int64, update *UpdateDrugRequest) (*Drug, error) {
	var resp Drug
	if err := c.makeRequest(ctx, request{method: http.MethodPut, endpoint: drugPath(id), body: update}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) DeleteDrug(ctx context.Context, id int64) error {
	return c.makeRequest(ctx, request{method: http.MethodDelete, endpoint: drugPath(id)}, nil)
}

// SearchDrugs runs an admin search.
func (c *Client) SearchDrugs(ctx context.Context, search DrugSearch) (*Page[Drug], error) {
	resp, err := c.do(ctx, request{method: http.MethodPost, endpoint: AdminDrugSearchEndpoint, body: search})
	if err != nil {
		return nil, err
	}
	page, err := decodePage[Drug](resp.body)
	if err != nil {
		return nil, &RequestError{Method: http.MethodPost, Path: AdminDrugSearchEndpoint, Err: err}
	}

	return page, nil
}

// GenerateQRCode asks the server to (re)generate the QR code of a drug.
func (c *Client) GenerateQRCode(ctx context.Context, id int64) (*QRCodeResponse, error) {
	var resp QRCodeResponse
	endpoint := drugPath(id) + "/qr-code"
	if err := c.makeRequest(ctx, request{method: http.MethodPost, endpoint: endpoint}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) DrugStatistics(ctx context.Context) (*Aggregate, error) {
	return c.getAggregate(ctx, DrugStatisticsEndpoint, nil)
}

func (c *Client) ScanStatistics(ctx context.Context) (*Aggregate, error) {
	return c.getAggregate(ctx, ScanStatisticsEndpoint, nil)
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	return getList[string](ctx, c, DrugCategoriesEndpoint, nil)
}

func (c *Client) Manufacturers(ctx context.Context) ([]string, error) {
	return getList[string](ctx, c, DrugManufacturersEndpoint, nil)
}

// DrugsExpiringSoon lists drugs expiring within days; days <= 0 means 30.
func (c *Client) DrugsExpiringSoon(ctx context.Context, days int) ([]Drug, error) {
	return getList[Drug](ctx, c, ExpiringSoonEndpoint, daysQuery(days))
}

type verifyRequest struct {
	QRCode   string `json:"qrCode"`
	Location string `json:"location,omitempty"`
}

// VerifyDrug submits scanned QR data for an authenticity judgment. location
// is optional.
func (c *Client) VerifyDrug(ctx context.Context, qrCode, location string) (*DrugVerificationResponse, error) {
	var resp DrugVerificationResponse
	body := verifyRequest{QRCode: qrCode, Location: location}
	if err := c.makeRequest(ctx, request{method: http.MethodPost, endpoint: VerifyEndpoint, body: body}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// SearchPublicDrugs searches the public registry; size <= 0 means 20.
func (c *Client) SearchPublicDrugs(ctx context.Context, query string, page, size int) (*Page[Drug], error) {
	q := pageQuery(page, size, DefaultPageSize)
	q.Set("query", query)

	return getPage[Drug](ctx, c, PublicDrugSearchEndpoint, q)
}
