package drugguard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Joeboy77/drug-guard-fe/logger"
	"github.com/Joeboy77/drug-guard-fe/session"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RequestIDHeader carries a per-request identifier for server-side correlation.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

func init() {
	logger.RegisterContextKey(requestIDKey{}, "request_id")
}

// sessionTransport attaches the bearer token to every request and clears
// the session when the server rejects it.
type sessionTransport struct {
	session *session.Session
	next    http.RoundTripper
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if token, ok := t.session.Token(ctx); ok {
		req = req.Clone(ctx)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		logger.WarnContext(ctx, "Credential rejected, clearing auth token",
			slog.String("method", req.Method), slog.String("path", req.URL.Path))
		if err := t.session.Clear(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to clear auth token", slog.Any("error", err))
		}
	}

	return resp, nil
}

// requestIDTransport stamps each request with a fresh X-Request-ID and makes
// it available to log lines through the request context.
type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := req.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	ctx := context.WithValue(req.Context(), requestIDKey{}, id)
	req = req.Clone(ctx)
	req.Header.Set(RequestIDHeader, id)

	logger.DebugContext(ctx, "Sending request",
		slog.String("method", req.Method), slog.String("url", req.URL.Redacted()))

	return t.next.RoundTrip(req)
}

// retryLogger routes retryablehttp logging onto the package logger.
// retryablehttp reports every failed attempt as an error before the client
// has classified it; that is a warning while attempts remain and noise when
// retries are off.
type retryLogger struct {
	retrying bool
}

var _ retryablehttp.LeveledLogger = retryLogger{}

func (l retryLogger) Error(msg string, keysAndValues ...any) {
	if l.retrying {
		logger.Warn(msg, keysAndValues...)
		return
	}
	logger.Debug(msg, keysAndValues...)
}

func (retryLogger) Info(msg string, keysAndValues ...any)  { logger.Debug(msg, keysAndValues...) }
func (retryLogger) Debug(msg string, keysAndValues ...any) { logger.Debug(msg, keysAndValues...) }
func (retryLogger) Warn(msg string, keysAndValues ...any)  { logger.Warn(msg, keysAndValues...) }

// idempotentRetryPolicy only retries GET requests; the server does not
// promise idempotency for anything else.
//
// The returned error is only ever the context error. retryablehttp hands a
// non-nil policy error to the error handler alongside the response, and
// http.Client discards responses that come with an error, which would turn
// a plain 5xx into a transport failure.
func idempotentRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	var method string
	if resp != nil && resp.Request != nil {
		method = resp.Request.Method
	} else if m, ok := ctx.Value(retryMethodKey{}).(string); ok {
		method = m
	}
	if method != http.MethodGet {
		return false, nil
	}

	retry, _ := retryablehttp.DefaultRetryPolicy(ctx, resp, err)

	return retry, nil
}

type retryMethodKey struct{}

// methodContextTransport records the request method in the context so the
// retry policy can see it when no response was received.
type methodContextTransport struct {
	next http.RoundTripper
}

func (t *methodContextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := context.WithValue(req.Context(), retryMethodKey{}, req.Method)
	return t.next.RoundTrip(req.WithContext(ctx))
}

// newTransport assembles the client's RoundTripper chain, outermost first:
// session, request ID, caller wrapper, tracing, retryablehttp, base.
func newTransport(sess *session.Session, cfg ClientConfig) http.RoundTripper {
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: base}
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = cfg.RetryWaitMin
	rc.RetryWaitMax = cfg.RetryWaitMax
	rc.Logger = retryLogger{retrying: cfg.RetryMax > 0}
	rc.CheckRetry = idempotentRetryPolicy
	// Hand non-2xx responses back untouched so the client can classify them.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	var rt http.RoundTripper = &retryablehttp.RoundTripper{Client: rc}
	rt = otelhttp.NewTransport(rt)
	rt = &methodContextTransport{next: rt}
	if cfg.WrapTransport != nil {
		rt = cfg.WrapTransport(rt)
	}
	rt = &requestIDTransport{next: rt}
	if sess != nil {
		rt = &sessionTransport{session: sess, next: rt}
	}

	return rt
}
