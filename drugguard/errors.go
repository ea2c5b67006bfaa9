package drugguard

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Codes carried by a RequestError.
const (
	// CodeNetworkError means the request never reached the server.
	CodeNetworkError = "NETWORK_ERROR"
	// CodeTimeout means no response arrived before the request timeout.
	CodeTimeout = "TIMEOUT"
	// CodeCanceled means the caller's context was canceled.
	CodeCanceled = "CANCELED"
)

// DefaultErrorMessage is what ErrorMessage returns when nothing better is known.
const DefaultErrorMessage = "An unexpected error occurred"

// APIError is returned when the server answered with a non-2xx status.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       []byte
	// Message is the server-supplied "message" field, if any.
	Message string
}

func (e *APIError) Error() string {
	kind := "server error"
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		kind = "client error"
	}

	return fmt.Sprintf("%s: status=%q body=%s", kind, e.Status, e.Body)
}

func newAPIError(method, path string, resp *http.Response, body []byte) *APIError {
	e := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       body,
	}
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String {
			e.Message = msg.String()
		}
	}

	return e
}

// RequestError is returned when a call failed without an HTTP response.
type RequestError struct {
	Method string
	Path   string
	// Code is one of CodeNetworkError, CodeTimeout, CodeCanceled, or empty
	// when the request could not be built or its body could not be decoded.
	Code string
	Err  error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// classifyTransportError tags an error returned by http.Client.Do.
func classifyTransportError(method, path string, err error) *RequestError {
	code := CodeNetworkError
	var timeout interface{ Timeout() bool }
	switch {
	case errors.Is(err, context.Canceled):
		code = CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = CodeTimeout
	case errors.As(err, &timeout) && timeout.Timeout():
		code = CodeTimeout
	}

	return &RequestError{Method: method, Path: path, Code: code, Err: err}
}

// IsNetworkError reports whether err is a failure in which the request never
// produced a response: connection, DNS or timeout errors. Any error carrying
// an HTTP response, including 5xx, is not a network error.
func IsNetworkError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}

	return reqErr.Code == CodeNetworkError || reqErr.Code == CodeTimeout
}

// IsTokenExpired reports whether the server rejected the credential (401).
func IsTokenExpired(err error) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// ErrorMessage returns a human-presentable message for err: the server's
// message field, else the error's own message, else DefaultErrorMessage.
func ErrorMessage(err error) string {
	if err == nil {
		return DefaultErrorMessage
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}

	return DefaultErrorMessage
}
