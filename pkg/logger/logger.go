// Package logger provides a colored slog handler for terminal output.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// ColorHandler is a slog.Handler that renders records as colored text lines.
// Warnings are yellow, errors red, and messages reporting persisted artifacts
// green.
type ColorHandler struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Leveler
	attrs []slog.Attr
}

// NewColorHandler creates a ColorHandler writing to out.
func NewColorHandler(out io.Writer, level slog.Leveler) *ColorHandler {
	return &ColorHandler{
		mu:    &sync.Mutex{},
		out:   out,
		level: level,
	}
}

// NewDefaultLogger returns a slog.Logger with colored output on stderr.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, level))
}

// Enabled implements slog.Handler.
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	color := ""
	switch {
	case r.Level >= slog.LevelError:
		color = colorRed
	case r.Level >= slog.LevelWarn:
		color = colorYellow
	case strings.Contains(r.Message, "saved") || strings.Contains(r.Message, "written"):
		color = colorGreen
	}

	var b strings.Builder
	b.WriteString(colorGray)
	b.WriteString(r.Time.Format(time.TimeOnly))
	b.WriteString(colorReset)
	b.WriteByte(' ')
	if color != "" {
		b.WriteString(color)
	}
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})

	if color != "" {
		b.WriteString(colorReset)
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// WithAttrs implements slog.Handler.
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	return h
}

// ParseLevel converts a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
