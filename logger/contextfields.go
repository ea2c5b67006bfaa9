package logger

import (
	"context"
	"log/slog"
	"sync"
)

// ctxField is a context value logged as an attribute.
type ctxField struct {
	key  any
	name string
}

var (
	fieldsMu sync.RWMutex
	fields   []ctxField
)

// RegisterContextKey logs the value stored under ctxKey as the attribute
// name on every ...Context call whose context carries it. Fields appear in
// registration order. Registering a key again renames its attribute.
func RegisterContextKey(ctxKey any, name string) {
	fieldsMu.Lock()
	defer fieldsMu.Unlock()

	for i := range fields {
		if fields[i].key == ctxKey {
			fields[i].name = name
			return
		}
	}
	fields = append(fields, ctxField{key: ctxKey, name: name})
}

// contextAttrs returns the registered fields present in ctx. Empty strings
// are left out.
func contextAttrs(ctx context.Context) []slog.Attr {
	fieldsMu.RLock()
	defer fieldsMu.RUnlock()

	var attrs []slog.Attr
	for _, f := range fields {
		val := ctx.Value(f.key)
		if val == nil {
			continue
		}
		if s, ok := val.(string); ok && s == "" {
			continue
		}
		attrs = append(attrs, slog.Any(f.name, val))
	}

	return attrs
}

// fieldsHandler adds the registered context fields to each record.
type fieldsHandler struct {
	next slog.Handler
}

func (h fieldsHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h fieldsHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := contextAttrs(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}

	return h.next.Handle(ctx, r)
}

func (h fieldsHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return fieldsHandler{next: h.next.WithAttrs(attrs)}
}

func (h fieldsHandler) WithGroup(name string) slog.Handler {
	return fieldsHandler{next: h.next.WithGroup(name)}
}
