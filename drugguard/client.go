// Package drugguard contains bindings to the DrugGuard Ghana REST API.
package drugguard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Joeboy77/drug-guard-fe/session"
)

const (
	DefaultBaseURL = "http://localhost:8080/api"
	DefaultTimeout = 10 * time.Second

	// DefaultExpiryWindowDays is used by day-windowed calls given days <= 0.
	DefaultExpiryWindowDays = 30
	DefaultPageSize         = 20
	DefaultLanguage         = "en"
)

// ClientConfig holds the settings fixed when a Client is built.
type ClientConfig struct {
	Timeout   time.Duration
	UserAgent string

	// RetryMax is the number of retries for GET requests. The default of 0
	// makes every call a single round trip.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Transport is the base RoundTripper. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
	// WrapTransport, if set, wraps the transport chain inside the session
	// and request ID layers (e.g. for metrics).
	WrapTransport func(http.RoundTripper) http.RoundTripper
}

// DefaultConfig returns the default client settings.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		Timeout:      DefaultTimeout,
		RetryMax:     0,
		RetryWaitMin: 1 * time.Second,
		RetryWaitMax: 4 * time.Second,
	}
}

// Client is a DrugGuard API client. It is safe for concurrent use.
type Client struct {
	HTTPClient *http.Client
	Config     ClientConfig
	BaseURL    string
	Session    *session.Session
}

// NewClient builds a Client for baseURL that authenticates through sess.
// A nil sess gives an anonymous client that never sends a credential.
func NewClient(baseURL string, sess *session.Session, cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		HTTPClient: &http.Client{
			Transport: newTransport(sess, cfg),
			Timeout:   cfg.Timeout,
		},
		Config:  cfg,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Session: sess,
	}
}

// request describes one API call.
type request struct {
	method   string
	endpoint string
	query    url.Values
	// body is JSON-encoded unless rawBody is set.
	body        any
	rawBody     io.Reader
	contentType string
	// accept overrides the default application/json Accept header.
	accept string
}

// response is a fully read 2xx response.
type response struct {
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, r request) (*response, error) {
	u := c.BaseURL + r.endpoint
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	contentType := r.contentType
	switch {
	case r.rawBody != nil:
		body = r.rawBody
	case r.body != nil:
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, &RequestError{Method: r.method, Path: r.endpoint, Err: fmt.Errorf("encoding request: %w", err)}
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, &RequestError{Method: r.method, Path: r.endpoint, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	accept := r.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	if c.Config.UserAgent != "" {
		req.Header.Set("User-Agent", c.Config.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(r.method, r.endpoint, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(r.method, r.endpoint, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(r.method, r.endpoint, resp, respBytes)
	}

	return &response{header: resp.Header, body: respBytes}, nil
}

// makeRequest performs r and decodes a JSON response body into resBody.
// A nil resBody discards the body.
func (c *Client) makeRequest(ctx context.Context, r request, resBody any) error {
	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if resBody == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, resBody); err != nil {
		return &RequestError{Method: r.method, Path: r.endpoint, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return nil
}

func getPage[T any](ctx context.Context, c *Client, endpoint string, query url.Values) (*Page[T], error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, endpoint: endpoint, query: query})
	if err != nil {
		return nil, err
	}
	page, err := decodePage[T](resp.body)
	if err != nil {
		return nil, &RequestError{Method: http.MethodGet, Path: endpoint, Err: err}
	}

	return page, nil
}

func getList[T any](ctx context.Context, c *Client, endpoint string, query url.Values) ([]T, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, endpoint: endpoint, query: query})
	if err != nil {
		return nil, err
	}
	items, err := decodeList[T](resp.body)
	if err != nil {
		return nil, &RequestError{Method: http.MethodGet, Path: endpoint, Err: err}
	}

	return items, nil
}

func (c *Client) getAggregate(ctx context.Context, endpoint string, query url.Values) (*Aggregate, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, endpoint: endpoint, query: query})
	if err != nil {
		return nil, err
	}

	return &Aggregate{RawMessage: resp.body}, nil
}

func pageQuery(page, size, defaultSize int) url.Values {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultSize
	}

	return url.Values{
		"page": {fmt.Sprint(page)},
		"size": {fmt.Sprint(size)},
	}
}

func daysQuery(days int) url.Values {
	return url.Values{"days": {fmt.Sprint(orDefaultDays(days))}}
}

func orDefaultDays(days int) int {
	if days <= 0 {
		return DefaultExpiryWindowDays
	}

	return days
}

func orDefaultLanguage(language string) string {
	if language == "" {
		return DefaultLanguage
	}

	return language
}
