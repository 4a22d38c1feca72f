package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	l := slog.New(h)
	return NewSlogLogger(l), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	l, buf := newTestLogger(t)
	ctx := context.Background()

	l.Debug(ctx, "debug msg", "k", "v")
	l.Info(ctx, "info msg")
	l.Warn(ctx, "warn msg")
	l.Error(ctx, "error msg")

	out := buf.String()
	for _, want := range []string{"debug msg", "info msg", "warn msg", "error msg"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSlogLogger_WithAddsFields(t *testing.T) {
	l, buf := newTestLogger(t)

	child := l.With("request_id", "abc-123")
	child.Info(context.Background(), "handled")

	out := buf.String()
	if !strings.Contains(out, "request_id=abc-123") {
		t.Errorf("expected request_id field in output:\n%s", out)
	}
}
