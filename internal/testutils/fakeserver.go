// Package testutils provides shared helpers for tests that talk to a
// DrugGuard API.
package testutils

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/tidwall/sjson"
)

// RecordedRequest is a request as received by a FakeServer.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// FakeServer is an in-process DrugGuard API. Routes are registered relative
// to the /api base path and every incoming request is recorded, matched or
// not.
type FakeServer struct {
	*httptest.Server

	api *mux.Router

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewFakeServer starts a FakeServer that is closed when the test ends.
func NewFakeServer(t *testing.T) *FakeServer {
	t.Helper()

	router := mux.NewRouter()
	s := &FakeServer{api: router.PathPrefix("/api").Subrouter()}
	s.Server = httptest.NewServer(s.record(router))
	t.Cleanup(s.Close)

	return s
}

// BaseURL is the API base URL to hand to a client.
func (s *FakeServer) BaseURL() string {
	return s.URL + "/api"
}

// Handle routes method and path (relative to /api, mux patterns allowed)
// to h.
func (s *FakeServer) Handle(method, path string, h http.HandlerFunc) {
	s.api.HandleFunc(path, h).Methods(method)
}

// Requests returns a copy of every request received so far.
func (s *FakeServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]RecordedRequest(nil), s.requests...)
}

// LastRequest returns the most recent request, failing the test if there
// was none.
func (s *FakeServer) LastRequest(t *testing.T) RecordedRequest {
	t.Helper()

	reqs := s.Requests()
	if len(reqs) == 0 {
		t.Fatal("fake server received no requests")
	}

	return reqs[len(reqs)-1]
}

func (s *FakeServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// JSON responds with status and the literal JSON body.
func JSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// Echo responds with the request body after setting each stamp path to its
// value, the way a server fills in fields it assigns on create.
func Echo(status int, stamps map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for path, value := range stamps {
			body, err = sjson.SetBytes(body, path, value)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}
}
