package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"todo-go/internal/todo"
)

// todoHandler is a custom slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<runID>\t<subject>\t<message>\t<key=value ...>
//
// The subject column is "<table>/<id>", "<table>" or "-", taken from the
// "table" and "id" attributes. An "error" attribute is written last, quoted.
type todoHandler struct {
	w     io.Writer
	runID string
	attrs []slog.Attr
}

func (h *todoHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *todoHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	var table, id string
	var errAttr *slog.Attr
	rest := make([]slog.Attr, 0, len(attrs))
	for i, a := range attrs {
		switch a.Key {
		case "table":
			table = a.Value.String()
		case "id":
			id = a.Value.String()
		case "error":
			errAttr = &attrs[i]
		default:
			rest = append(rest, a)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%s",
		r.Time.UTC().Format("2006-01-02T15:04:05.000Z"), r.Level.String(), h.runID, subject(table, id), r.Message)
	for _, a := range rest {
		fmt.Fprintf(&b, "\t%s=%v", a.Key, a.Value)
	}
	if errAttr != nil {
		fmt.Fprintf(&b, "\terror=%q", errAttr.Value.String())
	}
	b.WriteByte('\n')

	_, err := io.WriteString(h.w, b.String())
	return err
}

func subject(table, id string) string {
	switch {
	case table != "" && id != "":
		return table + "/" + id
	case table != "":
		return table
	case id != "":
		return id
	default:
		return "-"
	}
}

func (h *todoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &todoHandler{
		w:     h.w,
		runID: h.runID,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *todoHandler) WithGroup(string) slog.Handler { return h }

// newLogger creates a structured logger that writes to logDir/todo.log and,
// when console is non-nil, to console as well.
// It returns the slog.Logger, the open log file (for cleanup), and any error.
func newLogger(logDir string, runID string, console io.Writer) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "todo.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	var w io.Writer = f
	if console != nil {
		w = io.MultiWriter(f, console)
	}
	return slog.New(&todoHandler{w: w, runID: runID}), f, nil
}

// slogAdapter wraps *slog.Logger to satisfy the todo.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }

var _ todo.Logger = (*slogAdapter)(nil)
