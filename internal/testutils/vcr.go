package testutils

import (
	"net/http"
	"path/filepath"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v4/pkg/cassette"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/recorder"
)

// ReplayCassette returns a transport that serves the interactions stored in
// testdata/cassettes/<name>.yaml. Requests are matched on method and URL
// only, because multipart boundaries and request IDs differ on every run.
// Nothing is ever sent over the network.
func ReplayCassette(t *testing.T, name string) http.RoundTripper {
	t.Helper()

	r, err := recorder.New(
		filepath.Join("testdata", "cassettes", name),
		recorder.WithMode(recorder.ModeReplayOnly),
		recorder.WithMatcher(func(r *http.Request, i cassette.Request) bool {
			return r.Method == i.Method && r.URL.String() == i.URL
		}),
		recorder.WithSkipRequestLatency(true),
	)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := r.Stop(); err != nil {
			t.Error(err)
		}
	})

	return r
}
