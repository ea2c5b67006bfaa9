package drugguard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Joeboy77/drug-guard-fe/drugguard"
	"github.com/Joeboy77/drug-guard-fe/internal/testutils"
	"github.com/Joeboy77/drug-guard-fe/session"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// countingStore counts how many times a present token was removed.
type countingStore struct {
	session.Store

	mu     sync.Mutex
	clears int
}

func (s *countingStore) Delete(ctx context.Context, key string) error {
	if _, err := s.Store.Get(ctx, key); err == nil {
		s.mu.Lock()
		s.clears++
		s.mu.Unlock()
	}

	return s.Store.Delete(ctx, key)
}

func (s *countingStore) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clears
}

func newTestClient(t *testing.T, baseURL string, store session.Store) (*drugguard.Client, *session.Session) {
	t.Helper()

	if store == nil {
		store = session.NewMemoryStore()
	}
	sess := session.New(store)
	cfg := drugguard.DefaultConfig()
	cfg.UserAgent = "drugguard-test"

	return drugguard.NewClient(baseURL, sess, cfg), sess
}

func decodeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("request body is not a JSON object: %v\n%s", err, body)
	}

	return m
}

func TestClient_LoginPersistsTokenBeforeNextCall(t *testing.T) {
	t.Parallel()

	srv := testutils.NewFakeServer(t)
	srv.Handle(http.MethodPost, "/auth/signin", testutils.JSON(http.StatusOK,
		`{"token":"tok-123","type":"Bearer","staffId":"FDA-001","email":"ama@fda.gov.gh","fullName":"Ama Mensah"}`))
	srv.Handle(http.MethodGet, "/auth/validate", testutils.JSON(http.StatusOK,
		`{"staffId":"FDA-001","email":"ama@fda.gov.gh","fullName":"Ama Mensah"}`))

	c, sess := newTestClient(t, srv.BaseURL(), nil)
	ctx := context.Background()

	got, err := c.Login(ctx, drugguard.LoginRequest{Username: "ama", Password: "secret"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got.Token != "tok-123" || got.StaffID != "FDA-001" {
		t.Errorf("Login() = %+v", got)
	}

	signin := srv.LastRequest(t)
	if h := signin.Header.Get("Authorization"); h != "" {
		t.Errorf("signin carried Authorization %q before any token existed", h)
	}
	wantCreds := map[string]any{"username": "ama", "password": "secret"}
	if diff := cmp.Diff(wantCreds, decodeBody(t, signin.Body)); diff != "" {
		t.Errorf("signin body (-want +got):\n%s", diff)
	}

	if token, ok := sess.Token(ctx); !ok || token != "tok-123" {
		t.Fatalf("session token = %q, %v; want tok-123", token, ok)
	}

	if _, err := c.ValidateToken(ctx); err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if h := srv.LastRequest(t).Header.Get("Authorization"); h != "Bearer tok-123" {
		t.Errorf("Authorization after login = %q, want %q", h, "Bearer tok-123")
	}
}

func TestClient_LoginFailureStoresNothing(t *testing.T) {
	t.Parallel()

	srv := testutils.NewFakeServer(t)
	srv.Handle(http.MethodPost, "/auth/signin", testutils.JSON(http.StatusBadRequest, `{"message":"Invalid credentials"}`))

	c, sess := newTestClient(t, srv.BaseURL(), nil)
	ctx := context.Background()

	_, err := c.Login(ctx, drugguard.LoginRequest{Username: "ama", Password: "wrong"})
	if got := drugguard.ErrorMessage(err); got != "Invalid credentials" {
		t.Errorf("ErrorMessage() = %q, want %q", got, "Invalid credentials")
	}
	if _, ok := sess.Token(ctx); ok {
		t.Error("failed login left a token behind")
	}
}

func TestClient_NoTokenNoAuthorization(t *testing.T) {
	t.Parallel()

	srv := testutils.NewFakeServer(t)
	srv.Handle(http.MethodGet, "/drugs/search", testutils.JSON(http.StatusOK, `[]`))
	srv.Handle(http.MethodGet, "/reports/recent", testutils.JSON(http.StatusOK, `[]`))

	c, _ := newTestClient(t, srv.BaseURL(), nil)
	ctx := context.Background()

	if _, err := c.SearchPublicDrugs(ctx, "para", 0, 0); err != nil {
		t.Fatalf("SearchPublicDrugs() error = %v", err)
	}
	if _, err := c.RecentReports(ctx); err != nil {
		t.Fatalf("RecentReports() error = %v", err)
	}

	for _, r := range srv.Requests() {
		if _, ok := r.Header["Authorization"]; ok {
			t.Errorf("%s %s carried Authorization %q", r.Method, r.Path, r.Header.Get("Authorization"))
		}
	}
}

func TestClient_UnauthorizedClearsTokenOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		path   string
		call   func(context.Context, *drugguard.Client) error
	}{
		{
			name:   "get drug",
			method: http.MethodGet,
			path:   "/admin/drugs/7",
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.GetDrug(ctx, 7)
				return err
			},
		},
		{
			name:   "list reports",
			method: http.MethodGet,
			path:   "/admin/reports",
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.ListReports(ctx, drugguard.ListOptions{})
				return err
			},
		},
		{
			name:   "verify drug",
			method: http.MethodPost,
			path:   "/drugs/verify",
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.VerifyDrug(ctx, "QR123", "")
				return err
			},
		},
		{
			name:   "overview analytics",
			method: http.MethodGet,
			path:   "/admin/analytics/overview",
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.OverviewStats(ctx)
				return err
			},
		},
		{
			name:   "update report status",
			method: http.MethodPut,
			path:   "/admin/reports/3/status",
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.UpdateReportStatus(ctx, 3, drugguard.ReportStatusResolved, "")
				return err
			},
		},
	}
	for i := range tests {
		tt := &tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := testutils.NewFakeServer(t)
			srv.Handle(tt.method, tt.path, testutils.JSON(http.StatusUnauthorized, `{"message":"Token expired"}`))

			store := &countingStore{Store: session.NewMemoryStore()}
			c, sess := newTestClient(t, srv.BaseURL(), store)
			ctx := context.Background()
			if err := sess.SetToken(ctx, "stale"); err != nil {
				t.Fatal(err)
			}

			err := tt.call(ctx, c)
			if !drugguard.IsTokenExpired(err) {
				t.Fatalf("error = %v, want a 401 APIError", err)
			}
			if got := drugguard.ErrorMessage(err); got != "Token expired" {
				t.Errorf("ErrorMessage() = %q", got)
			}
			if h := srv.LastRequest(t).Header.Get("Authorization"); h != "Bearer stale" {
				t.Errorf("request Authorization = %q", h)
			}
			if _, ok := sess.Token(ctx); ok {
				t.Error("token still present after 401")
			}
			if got := store.Clears(); got != 1 {
				t.Errorf("token cleared %d times, want 1", got)
			}
		})
	}
}

func TestClient_LogoutNeverFails(t *testing.T) {
	t.Parallel()

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		srv := testutils.NewFakeServer(t)
		srv.Handle(http.MethodPost, "/auth/signout", testutils.JSON(http.StatusInternalServerError, `{"message":"boom"}`))

		c, sess := newTestClient(t, srv.BaseURL(), nil)
		ctx := context.Background()
		if err := sess.SetToken(ctx, "tok"); err != nil {
			t.Fatal(err)
		}

		c.Logout(ctx)

		if _, ok := sess.Token(ctx); ok {
			t.Error("token still present after logout")
		}
		if h := srv.LastRequest(t).Header.Get("Authorization"); h != "Bearer tok" {
			t.Errorf("signout Authorization = %q, want the token being revoked", h)
		}
	})

	t.Run("server unreachable", func(t *testing.T) {
		t.Parallel()

		srv := testutils.NewFakeServer(t)
		baseURL := srv.BaseURL()
		srv.Close()

		c, sess := newTestClient(t, baseURL, nil)
		ctx := context.Background()
		if err := sess.SetToken(ctx, "tok"); err != nil {
			t.Fatal(err)
		}

		c.Logout(ctx)

		if _, ok := sess.Token(ctx); ok {
			t.Error("token still present after logout")
		}
	})
}

func TestClient_NetworkErrorClassification(t *testing.T) {
	t.Parallel()

	srv := testutils.NewFakeServer(t)
	srv.Handle(http.MethodGet, "/admin/drugs/1", testutils.JSON(http.StatusInternalServerError, `{"message":"Database unavailable"}`))
	srv.Handle(http.MethodGet, "/admin/drugs/2", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	closed := testutils.NewFakeServer(t)
	closedURL := closed.BaseURL()
	closed.Close()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name        string
		baseURL     string
		ctx         context.Context
		id          int64
		timeout     time.Duration
		wantNetwork bool
		wantCode    string
	}{
		{
			name:        "server error has a response",
			baseURL:     srv.BaseURL(),
			ctx:         context.Background(),
			id:          1,
			wantNetwork: false,
		},
		{
			name:        "connection refused",
			baseURL:     closedURL,
			ctx:         context.Background(),
			id:          1,
			wantNetwork: true,
			wantCode:    drugguard.CodeNetworkError,
		},
		{
			name:        "timeout",
			baseURL:     srv.BaseURL(),
			ctx:         context.Background(),
			id:          2,
			timeout:     50 * time.Millisecond,
			wantNetwork: true,
			wantCode:    drugguard.CodeTimeout,
		},
		{
			name:        "caller canceled",
			baseURL:     srv.BaseURL(),
			ctx:         canceled,
			id:          1,
			wantNetwork: false,
			wantCode:    drugguard.CodeCanceled,
		},
	}
	for i := range tests {
		tt := &tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := drugguard.DefaultConfig()
			if tt.timeout > 0 {
				cfg.Timeout = tt.timeout
			}
			c := drugguard.NewClient(tt.baseURL, nil, cfg)

			_, err := c.GetDrug(tt.ctx, tt.id)
			if err == nil {
				t.Fatal("GetDrug() succeeded, want error")
			}
			if got := drugguard.IsNetworkError(err); got != tt.wantNetwork {
				t.Errorf("IsNetworkError(%v) = %v, want %v", err, got, tt.wantNetwork)
			}
			if tt.wantCode == "" {
				return
			}
			var reqErr *drugguard.RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("error %T is not a RequestError", err)
			}
			if reqErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", reqErr.Code, tt.wantCode)
			}
		})
	}
}

func TestClient_ServerErrorMessage(t *testing.T) {
	t.Parallel()

	srv := testutils.NewFakeServer(t)
	srv.Handle(http.MethodGet, "/admin/drugs/404", testutils.JSON(http.StatusNotFound, `{"message":"Drug not found"}`))
	srv.Handle(http.MethodGet, "/admin/drugs/500", testutils.JSON(http.StatusInternalServerError, `oops`))

	c, _ := newTestClient(t, srv.BaseURL(), nil)
	ctx := context.Background()

	_, err := c.GetDrug(ctx, 404)
	wantErr := testutils.ErrContainsStr{Str: `client error: status="404 Not Found" body={"message":"Drug not found"}`}
	if diff := cmp.Diff(wantErr, err, cmpopts.EquateErrors()); diff != "" {
		t.Errorf("GetDrug(404) error (-want +got):\n%s", diff)
	}
	if got := drugguard.ErrorMessage(err); got != "Drug not found" {
		t.Errorf("ErrorMessage() = %q", got)
	}

	_, err = c.GetDrug(ctx, 500)
	wantErr = testutils.ErrContainsStr{Str: `server error: status="500 Internal Server Error" body=oops`}
	if diff := cmp.Diff(wantErr, err, cmpopts.EquateErrors()); diff != "" {
		t.Errorf("GetDrug(500) error (-want +got):\n%s", diff)
	}
	if got, want := drugguard.ErrorMessage(err), err.Error(); got != want {
		t.Errorf("ErrorMessage() = %q, want the error text %q", got, want)
	}
}

func TestClient_Pagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantNames []string
		wantPages int
		wantPaged bool
		wantErr   error
	}{
		{
			name:      "page object",
			body:      `{"content":[{"id":1,"name":"Paracetamol"},{"id":2,"name":"Amoxicillin"}],"totalPages":3,"totalElements":41,"number":0,"size":20}`,
			wantNames: []string{"Paracetamol", "Amoxicillin"},
			wantPages: 3,
			wantPaged: true,
		},
		{
			name:      "bare array",
			body:      `[{"id":1,"name":"Paracetamol"}]`,
			wantNames: []string{"Paracetamol"},
		},
		{
			name:      "null",
			body:      `null`,
			wantNames: []string{},
		},
		{
			name:    "object without content",
			body:    `{"items":[]}`,
			wantErr: drugguard.ErrUnexpectedShape,
		},
	}
	for i := range tests {
		tt := &tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := testutils.NewFakeServer(t)
			srv.Handle(http.MethodGet, "/admin/drugs", testutils.JSON(http.StatusOK, tt.body))
			c, _ := newTestClient(t, srv.BaseURL(), nil)

			page, err := c.ListDrugs(context.Background(), drugguard.ListOptions{})
			if diff := cmp.Diff(tt.wantErr, err, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("ListDrugs() error (-want +got):\n%s", diff)
			}
			if err != nil {
				return
			}

			names := []string{}
			for _, d := range page.Content {
				names = append(names, d.Name)
			}
			if diff := cmp.Diff(tt.wantNames, names); diff != "" {
				t.Errorf("Content names (-want +got):\n%s", diff)
			}
			if page.TotalPages != tt.wantPages || page.Paged != tt.wantPaged {
				t.Errorf("TotalPages = %d, Paged = %v; want %d, %v", page.TotalPages, page.Paged, tt.wantPages, tt.wantPaged)
			}
		})
	}
}

func TestClient_VerifyDrug(t *testing.T) {
	t.Parallel()

	srv := testutils.NewFakeServer(t)
	srv.Handle(http.MethodPost, "/drugs/verify", testutils.JSON(http.StatusOK, `{
		"isAuthentic": true,
		"drug": {"id": 9, "name": "Paracetamol", "manufacturer": "Ernest Chemists", "batchNumber": "B-22", "status": "ACTIVE", "active": true},
		"message": "Drug is authentic",
		"confidenceScore": 98,
		"warnings": [],
		"verifiedAt": "2026-01-05T10:00:00"
	}`))
	c, _ := newTestClient(t, srv.BaseURL(), nil)

	got, err := c.VerifyDrug(context.Background(), "QR123", "Greater Accra")
	if err != nil {
		t.Fatalf("VerifyDrug() error = %v", err)
	}

	req := srv.LastRequest(t)
	if req.Method != http.MethodPost || req.Path != "/api/drugs/verify" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	wantBody := map[string]any{"qrCode": "QR123", "location": "Greater Accra"}
	if diff := cmp.Diff(wantBody, decodeBody(t, req.Body)); diff != "" {
		t.Errorf("request body (-want +got):\n%s", diff)
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	want := &drugguard.DrugVerificationResponse{
		IsAuthentic: true,
		Drug: &drugguard.Drug{
			ID:           9,
			Name:         "Paracetamol",
			Manufacturer: "Ernest Chemists",
			BatchNumber:  "B-22",
			Status:       drugguard.DrugStatusActive,
			Active:       true,
		},
		Message:         "Drug is authentic",
		ConfidenceScore: 98,
		Warnings:        []string{},
		VerifiedAt:      "2026-01-05T10:00:00",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("VerifyDrug() (-want +got):\n%s", diff)
	}
}

func TestClient_VerifyDrugWithoutLocation(t *testing.T) {
	t.Parallel()

	srv := testutils.NewFakeServer(t)
	srv.Handle(http.MethodPost, "/drugs/verify", testutils.JSON(http.StatusOK, `{"isAuthentic":false,"message":"Unknown code"}`))
	c, _ := newTestClient(t, srv.BaseURL(), nil)

	got, err := c.VerifyDrug(context.Background(), "NOPE", "")
	if err != nil {
		t.Fatalf("VerifyDrug() error = %v", err)
	}
	if got.IsAuthentic || got.Drug != nil {
		t.Errorf("VerifyDrug() = %+v", got)
	}
	wantBody := map[string]any{"qrCode": "NOPE"}
	if diff := cmp.Diff(wantBody, decodeBody(t, srv.LastRequest(t).Body)); diff != "" {
		t.Errorf("request body (-want +got):\n%s", diff)
	}
}

func TestClient_CreateDrugReport(t *testing.T) {
	t.Parallel()

	srv := testutils.NewFakeServer(t)
	srv.Handle(http.MethodPost, "/reports", testutils.Echo(http.StatusCreated, map[string]any{
		"id":        42,
		"status":    "PENDING",
		"createdAt": "2026-01-05T10:00:00",
	}))
	c, _ := newTestClient(t, srv.BaseURL(), nil)

	got, err := c.CreateDrugReport(context.Background(), &drugguard.CreateDrugReportRequest{
		DrugName:     "X",
		Manufacturer: "Y",
		Description:  "Z",
		IssueType:    "COUNTERFEIT",
		Severity:     drugguard.SeverityHigh,
	})
	if err != nil {
		t.Fatalf("CreateDrugReport() error = %v", err)
	}

	wantBody := map[string]any{
		"drugName":     "X",
		"manufacturer": "Y",
		"description":  "Z",
		"issueType":    "COUNTERFEIT",
		"severity":     "HIGH",
	}
	if diff := cmp.Diff(wantBody, decodeBody(t, srv.LastRequest(t).Body)); diff != "" {
		t.Errorf("request body (-want +got):\n%s", diff)
	}

	want := &drugguard.DrugReport{
		ID:           42,
		DrugName:     "X",
		Manufacturer: "Y",
		Description:  "Z",
		IssueType:    "COUNTERFEIT",
		Severity:     drugguard.SeverityHigh,
		Status:       drugguard.ReportStatusPending,
		CreatedAt:    "2026-01-05T10:00:00",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CreateDrugReport() (-want +got):\n%s", diff)
	}
}

func TestClient_QueryDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		method    string
		path      string
		response  string
		call      func(context.Context, *drugguard.Client) error
		wantQuery url.Values
		wantBody  map[string]any
	}{
		{
			name:     "drugs expiring soon defaults to 30 days",
			method:   http.MethodGet,
			path:     "/admin/drugs/expiring-soon",
			response: `[]`,
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.DrugsExpiringSoon(ctx, 0)
				return err
			},
			wantQuery: url.Values{"days": {"30"}},
		},
		{
			name:     "drugs expiring soon with explicit days",
			method:   http.MethodGet,
			path:     "/admin/drugs/expiring-soon",
			response: `[]`,
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.DrugsExpiringSoon(ctx, 7)
				return err
			},
			wantQuery: url.Values{"days": {"7"}},
		},
		{
			name:     "list drugs",
			method:   http.MethodGet,
			path:     "/admin/drugs",
			response: `{"content":[]}`,
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.ListDrugs(ctx, drugguard.ListOptions{})
				return err
			},
			wantQuery: url.Values{"page": {"0"}, "size": {"20"}, "sortBy": {"name"}, "sortDirection": {"asc"}},
		},
		{
			name:     "list reports",
			method:   http.MethodGet,
			path:     "/admin/reports",
			response: `{"content":[]}`,
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.ListReports(ctx, drugguard.ListOptions{Page: 2, SortDirection: "asc"})
				return err
			},
			wantQuery: url.Values{"page": {"2"}, "size": {"20"}, "sortBy": {"createdAt"}, "sortDirection": {"asc"}},
		},
		{
			name:     "search reports",
			method:   http.MethodGet,
			path:     "/reports/search",
			response: `{"content":[]}`,
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.SearchReports(ctx, "fake", 1, 0)
				return err
			},
			wantQuery: url.Values{"query": {"fake"}, "page": {"1"}, "size": {"10"}},
		},
		{
			name:     "public drug search",
			method:   http.MethodGet,
			path:     "/drugs/search",
			response: `[]`,
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.SearchPublicDrugs(ctx, "amox", 0, -1)
				return err
			},
			wantQuery: url.Values{"query": {"amox"}, "page": {"0"}, "size": {"20"}},
		},
		{
			name:     "reports by status",
			method:   http.MethodGet,
			path:     "/admin/reports/status/UNDER_REVIEW",
			response: `{"content":[]}`,
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.ReportsByStatus(ctx, drugguard.ReportStatusUnderReview, 0, 0)
				return err
			},
			wantQuery: url.Values{"page": {"0"}, "size": {"20"}},
		},
		{
			name:     "scan analytics",
			method:   http.MethodGet,
			path:     "/admin/analytics/scans",
			response: `{}`,
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.ScanAnalytics(ctx, 0)
				return err
			},
			wantQuery: url.Values{"days": {"30"}},
		},
		{
			name:     "time series",
			method:   http.MethodGet,
			path:     "/admin/analytics/timeseries",
			response: `{"metric":"scans","data":[]}`,
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.TimeSeries(ctx, drugguard.TimeSeriesQuery{Metric: "scans", StartDate: "2026-01-01", EndDate: "2026-01-31"})
				return err
			},
			wantQuery: url.Values{"metric": {"scans"}, "startDate": {"2026-01-01"}, "endDate": {"2026-01-31"}, "interval": {"daily"}},
		},
		{
			name:     "top performers",
			method:   http.MethodGet,
			path:     "/admin/analytics/top-performers",
			response: `[]`,
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.TopPerformers(ctx, "", 0, 0)
				return err
			},
			wantQuery: url.Values{"type": {"drugs"}, "limit": {"10"}, "days": {"30"}},
		},
		{
			name:     "export omits unset dates",
			method:   http.MethodGet,
			path:     "/admin/analytics/export",
			response: `{}`,
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.ExportAnalytics(ctx, drugguard.ExportQuery{Format: "csv", DataType: "scans"})
				return err
			},
			wantQuery: url.Values{"format": {"csv"}, "dataType": {"scans"}},
		},
		{
			name:     "export with dates",
			method:   http.MethodGet,
			path:     "/admin/analytics/export",
			response: `{}`,
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.ExportAnalytics(ctx, drugguard.ExportQuery{Format: "json", DataType: "drugs", StartDate: "2026-01-01", EndDate: "2026-02-01"})
				return err
			},
			wantQuery: url.Values{"format": {"json"}, "dataType": {"drugs"}, "startDate": {"2026-01-01"}, "endDate": {"2026-02-01"}},
		},
		{
			name:     "update report status",
			method:   http.MethodPut,
			path:     "/admin/reports/5/status",
			response: `{"id":5,"status":"RESOLVED"}`,
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.UpdateReportStatus(ctx, 5, drugguard.ReportStatusResolved, "Batch recalled")
				return err
			},
			wantQuery: url.Values{},
			wantBody:  map[string]any{"status": "RESOLVED", "adminNotes": "Batch recalled"},
		},
		{
			name:     "admin search",
			method:   http.MethodPost,
			path:     "/admin/drugs/search",
			response: `{"content":[]}`,
			call: func(ctx context.Context, c *drugguard.Client) error {
				_, err := c.SearchDrugs(ctx, drugguard.DrugSearch{Manufacturer: "Kinapharma", Size: 5})
				return err
			},
			wantQuery: url.Values{},
			wantBody:  map[string]any{"manufacturer": "Kinapharma", "page": float64(0), "size": float64(5)},
		},
	}
	for i := range tests {
		tt := &tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := testutils.NewFakeServer(t)
			srv.Handle(tt.method, tt.path, testutils.JSON(http.StatusOK, tt.response))
			c, _ := newTestClient(t, srv.BaseURL(), nil)

			if err := tt.call(context.Background(), c); err != nil {
				t.Fatalf("call error = %v", err)
			}

			req := srv.LastRequest(t)
			if diff := cmp.Diff(tt.wantQuery, req.Query); diff != "" {
				t.Errorf("query (-want +got):\n%s", diff)
			}
			if tt.wantBody != nil {
				if diff := cmp.Diff(tt.wantBody, decodeBody(t, req.Body)); diff != "" {
					t.Errorf("body (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestClient_RequestHeaders(t *testing.T) {
	t.Parallel()

	srv := testutils.NewFakeServer(t)
	srv.Handle(http.MethodGet, "/admin/drugs/categories", testutils.JSON(http.StatusOK, `["Analgesic","Antibiotic"]`))
	c, _ := newTestClient(t, srv.BaseURL(), nil)
	ctx := context.Background()

	for range 2 {
		got, err := c.Categories(ctx)
		if err != nil {
			t.Fatalf("Categories() error = %v", err)
		}
		if diff := cmp.Diff([]string{"Analgesic", "Antibiotic"}, got); diff != "" {
			t.Errorf("Categories() (-want +got):\n%s", diff)
		}
	}

	reqs := srv.Requests()
	if len(reqs) != 2 {
		t.Fatalf("got %d requests, want 2", len(reqs))
	}
	ids := map[string]bool{}
	for _, r := range reqs {
		if ua := r.Header.Get("User-Agent"); ua != "drugguard-test" {
			t.Errorf("User-Agent = %q", ua)
		}
		if a := r.Header.Get("Accept"); a != "application/json" {
			t.Errorf("Accept = %q", a)
		}
		id := r.Header.Get(drugguard.RequestIDHeader)
		if id == "" {
			t.Error("missing request ID")
		}
		ids[id] = true
	}
	if len(ids) != 2 {
		t.Errorf("request IDs were reused: %v", ids)
	}
}

func TestClient_DeleteDrugNoContent(t *testing.T) {
	t.Parallel()

	srv := testutils.NewFakeServer(t)
	srv.Handle(http.MethodDelete, "/admin/drugs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c, _ := newTestClient(t, srv.BaseURL(), nil)

	if err := c.DeleteDrug(context.Background(), 12); err != nil {
		t.Fatalf("DeleteDrug() error = %v", err)
	}
	if got := srv.LastRequest(t).Path; got != "/api/admin/drugs/12" {
		t.Errorf("path = %q", got)
	}
}

func TestClient_Retries(t *testing.T) {
	t.Parallel()

	flaky := func(failures int32, calls *atomic.Int32) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) <= failures {
				testutils.JSON(http.StatusServiceUnavailable, `{"message":"warming up"}`)(w, r)
				return
			}
			testutils.JSON(http.StatusOK, `{"id":1,"name":"Paracetamol"}`)(w, r)
		}
	}
	newRetryClient := func(baseURL string, retryMax int) *drugguard.Client {
		cfg := drugguard.DefaultConfig()
		cfg.RetryMax = retryMax
		cfg.RetryWaitMin = time.Millisecond
		cfg.RetryWaitMax = time.Millisecond

		return drugguard.NewClient(baseURL, nil, cfg)
	}

	t.Run("off by default", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := testutils.NewFakeServer(t)
		srv.Handle(http.MethodGet, "/admin/drugs/1", flaky(1, &calls))

		_, err := newRetryClient(srv.BaseURL(), 0).GetDrug(context.Background(), 1)
		var apiErr *drugguard.APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("GetDrug() error = %v, want 503 APIError", err)
		}
		if got := calls.Load(); got != 1 {
			t.Errorf("server saw %d calls, want 1", got)
		}
	})

	t.Run("GET retried when enabled", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := testutils.NewFakeServer(t)
		srv.Handle(http.MethodGet, "/admin/drugs/1", flaky(2, &calls))

		got, err := newRetryClient(srv.BaseURL(), 3).GetDrug(context.Background(), 1)
		if err != nil {
			t.Fatalf("GetDrug() error = %v", err)
		}
		if got.Name != "Paracetamol" {
			t.Errorf("GetDrug() = %+v", got)
		}
		if n := calls.Load(); n != 3 {
			t.Errorf("server saw %d calls, want 3", n)
		}
	})

	t.Run("POST never retried", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := testutils.NewFakeServer(t)
		srv.Handle(http.MethodPost, "/admin/drugs/1/qr-code", flaky(2, &calls))

		_, err := newRetryClient(srv.BaseURL(), 3).GenerateQRCode(context.Background(), 1)
		if err == nil {
			t.Fatal("GenerateQRCode() succeeded, want 503")
		}
		if drugguard.IsNetworkError(err) {
			t.Errorf("503 reported as network error: %v", err)
		}
		if n := calls.Load(); n != 1 {
			t.Errorf("server saw %d calls, want 1", n)
		}
	})
}
