package drugguard

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/Joeboy77/drug-guard-fe/logger"
	"github.com/google/go-cmp/cmp"
)

// captureLogs sends the global logger to a buffer as JSON for the rest of
// the test. Tests using it must not run in parallel.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	logger.InitGlobalLogger(logger.Options{Level: slog.LevelDebug, Format: logger.FormatJSON, Writer: &buf})
	t.Cleanup(func() { logger.InitGlobalLogger(logger.OptionsFromEnv()) })

	return &buf
}

func logLevels(t *testing.T, buf *bytes.Buffer, msg string) []string {
	t.Helper()

	var levels []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec struct {
			Level string `json:"level"`
			Msg   string `json:"msg"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("log line is not JSON: %v\n%s", err, line)
		}
		if rec.Msg == msg {
			levels = append(levels, rec.Level)
		}
	}

	return levels
}

func TestRetryLogger_ErrorLevel(t *testing.T) {
	tests := []struct {
		name     string
		retrying bool
		want     []string
	}{
		{name: "retries off", retrying: false, want: []string{"DEBUG"}},
		{name: "retries on", retrying: true, want: []string{"WARN"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)

			retryLogger{retrying: tt.retrying}.Error("request failed", "error", "connection refused")

			if diff := cmp.Diff(tt.want, logLevels(t, buf, "request failed")); diff != "" {
				t.Errorf("logged levels (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOfflineRequest_NoErrorLogged(t *testing.T) {
	buf := captureLogs(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	c := NewClient("http://"+addr+"/api", nil, DefaultConfig())
	_, err = c.AvailableLanguages(t.Context())
	if !IsNetworkError(err) {
		t.Fatalf("AvailableLanguages() error = %v, want a network error", err)
	}

	if strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Errorf("offline request logged at ERROR:\n%s", buf)
	}
}
