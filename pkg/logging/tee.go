package logging

import (
	"context"
	"log/slog"
)

// TeeHandler is a slog.Handler that fans each record out to multiple
// underlying handlers. A failing sink does not stop delivery to the rest.
type TeeHandler struct {
	sinks []slog.Handler
}

// NewTeeHandler creates a handler that writes to all provided handlers.
func NewTeeHandler(sinks ...slog.Handler) *TeeHandler {
	return &TeeHandler{sinks: sinks}
}

// Enabled returns true if any sink is enabled for the level.
func (h *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range h.sinks {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers the record to every enabled sink.
func (h *TeeHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, s := range h.sinks {
		if s.Enabled(ctx, r.Level) {
			_ = s.Handle(ctx, r)
		}
	}
	return nil
}

// WithAttrs returns a new TeeHandler whose sinks carry the attributes.
func (h *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sinks := make([]slog.Handler, len(h.sinks))
	for i, s := range h.sinks {
		sinks[i] = s.WithAttrs(attrs)
	}
	return &TeeHandler{sinks: sinks}
}

// WithGroup returns a new TeeHandler whose sinks carry the group.
func (h *TeeHandler) WithGroup(name string) slog.Handler {
	sinks := make([]slog.Handler, len(h.sinks))
	for i, s := range h.sinks {
		sinks[i] = s.WithGroup(name)
	}
	return &TeeHandler{sinks: sinks}
}
