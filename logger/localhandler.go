package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	levelColors = map[slog.Level]lipgloss.Color{
		slog.LevelDebug: lipgloss.Color("5"), // Purple
		slog.LevelInfo:  lipgloss.Color("4"), // Blue
		slog.LevelWarn:  lipgloss.Color("3"), // Yellow
		slog.LevelError: lipgloss.Color("1"), // Red
	}
	levelStyle = lipgloss.NewStyle().Width(8).Bold(true)
	keyStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")). // Cyan
			Bold(true)
)

// localHandler writes one colored line per record for terminal use.
type localHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

func newLocalHandler(w io.Writer, level slog.Leveler) *localHandler {
	return &localHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
	}
}

func (h *localHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *localHandler) Handle(_ context.Context, r slog.Record) error {
	// INFO:   message foo=bar
	sb := &strings.Builder{}
	fmt.Fprint(sb, levelStyle.Foreground(levelColors[r.Level]).Render(r.Level.String()+":"))
	fmt.Fprint(sb, r.Message)

	write := func(prefix string, a slog.Attr) {
		ks := keyStyle
		if a.Key == "err" || a.Key == "error" {
			// Make the error key bright red.
			ks = ks.Foreground(lipgloss.Color("9"))
		}
		fmt.Fprint(sb, " "+ks.Render(prefix+a.Key+"="))
		fmt.Fprintf(sb, "%v", a.Value)
	}
	for _, a := range h.attrs {
		write("", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		write(h.prefix, a)
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, sb.String())

	return err
}

func (h *localHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	nh.attrs = append(nh.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		nh.attrs = append(nh.attrs, a)
	}

	return &nh
}

func (h *localHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.prefix = h.prefix + name + "."

	return &nh
}
