package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gmail-analytics/pkg/trace"
)

func TestNewLoggerLevel(t *testing.T) {
	l, err := NewLogger("debug")
	if err != nil {
		t.Fatal(err)
	}
	if !l.Core().Enabled(zap.DebugLevel) {
		t.Error("debug level not enabled")
	}

	if _, err := NewLogger("loud"); err == nil {
		t.Error("expected invalid level error")
	}
}

func TestWithTrace(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	WithTrace(trace.WithContext(context.Background(), "abc123"), base).Info("with")
	WithTrace(context.Background(), base).Info("without")

	entries := logs.All()
	if got := entries[0].ContextMap()["trace_id"]; got != "abc123" {
		t.Errorf("trace_id = %v", got)
	}
	if _, ok := entries[1].ContextMap()["trace_id"]; ok {
		t.Error("unexpected trace_id without trace context")
	}
}

func TestMaskToken(t *testing.T) {
	if got := MaskToken("ya29.a0AfH6SMBx"); got != "****SMBx" {
		t.Errorf("MaskToken = %q", got)
	}
	if got := MaskToken("abc"); got != "****" {
		t.Errorf("MaskToken short = %q", got)
	}
}
