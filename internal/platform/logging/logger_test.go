package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	buf.Reset()
	var out map[string]any
	if err := sonic.UnmarshalString(line, &out); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	return out
}

func TestLogger_WritesFieldsAndTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSON(&buf, LevelInfo).With("service", "asset-draft")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.WarnContext(ctx, "draft tick failed", "league_id", "lg-1", "error", errors.New("boom"), "dangling")
	got := decodeLine(t, &buf)

	want := map[string]any{
		"level":     "WARN",
		"msg":       "draft tick failed",
		"service":   "asset-draft",
		"league_id": "lg-1",
		"error":     "boom",
		"trace_id":  traceID.String(),
		"span_id":   spanID.String(),
	}
	for key, value := range want {
		if got[key] != value {
			t.Fatalf("field %s = %v, want %v (line %v)", key, got[key], value, got)
		}
	}
	if _, ok := got["dangling"]; !ok {
		t.Fatalf("expected dangling key to be logged, got %v", got)
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSON(&buf, LevelWarn)

	logger.Info("ignored")
	logger.DebugContext(context.Background(), "ignored")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}

	logger.Error("kept", 42, "value")
	got := decodeLine(t, &buf)
	if got["arg"] != "value" {
		t.Fatalf("expected non-string key to map to arg, got %v", got)
	}
}

func TestLogger_NilAndDefault(t *testing.T) {
	var nilLogger *Logger
	nilLogger.Info("no panic")
	if err := nilLogger.Sync(); err != nil {
		t.Fatalf("sync nil logger: %v", err)
	}

	var buf bytes.Buffer
	SetDefault(newJSON(&buf, LevelInfo))
	t.Cleanup(func() { SetDefault(nil) })

	nilLogger.Info("routed to default")
	if got := decodeLine(t, &buf); got["msg"] != "routed to default" {
		t.Fatalf("expected nil logger to use default, got %v", got)
	}
}
