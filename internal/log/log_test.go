package log_test

import (
	"context"
	"log/slog"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ossf/entropy-analysis/internal/log"
)

func observedLogger(t *testing.T) (*slog.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return log.NewLogger(core), logs
}

func contextMap(entry observer.LoggedEntry) map[string]any {
	return entry.ContextMap()
}

func TestNewLoggerWritesToCore(t *testing.T) {
	logger, logs := observedLogger(t)
	logger.Info("sample analysed", "generator", "mock", "bytes", 1024)

	if logs.Len() != 1 {
		t.Fatalf("got %d entries; want 1", logs.Len())
	}
	entry := logs.All()[0]
	if entry.Message != "sample analysed" {
		t.Errorf("Message = %q; want %q", entry.Message, "sample analysed")
	}
	fields := contextMap(entry)
	if fields["generator"] != "mock" {
		t.Errorf("generator = %v; want mock", fields["generator"])
	}
	if fields["bytes"] != int64(1024) {
		t.Errorf("bytes = %v (%T); want 1024", fields["bytes"], fields["bytes"])
	}
}

func TestContextAttrsAreLogged(t *testing.T) {
	logger, logs := observedLogger(t)

	ctx := log.ContextWithAttrs(context.Background(), slog.String("run_id", "r1"))
	inner := log.ContextWithAttrs(ctx, slog.String("generator", "system"))
	_ = log.ContextWithAttrs(ctx, slog.String("sibling", "x"))

	logger.InfoContext(inner, "inner")
	logger.InfoContext(ctx, "outer")
	logger.InfoContext(log.ContextWithAttrs(ctx), "no extra attrs")

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("got %d entries; want 3", len(entries))
	}

	tests := []struct {
		fields  map[string]any
		want    map[string]any
		missing []string
	}{
		{contextMap(entries[0]), map[string]any{"run_id": "r1", "generator": "system"}, []string{"sibling"}},
		{contextMap(entries[1]), map[string]any{"run_id": "r1"}, []string{"generator", "sibling"}},
		{contextMap(entries[2]), map[string]any{"run_id": "r1"}, []string{"generator", "sibling"}},
	}
	for i, tt := range tests {
		for k, v := range tt.want {
			if tt.fields[k] != v {
				t.Errorf("entry %d: %s = %v; want %v", i, k, tt.fields[k], v)
			}
		}
		for _, k := range tt.missing {
			if _, ok := tt.fields[k]; ok {
				t.Errorf("entry %d: unexpected field %s", i, k)
			}
		}
	}
}

func TestLabelAttrDev(t *testing.T) {
	if got := log.LabelAttr("source", "mock"); got.Key != "source" || got.Value.String() != "mock" {
		t.Errorf("LabelAttr() = %v; want source=mock", got)
	}
}

func TestZapLoggerBeforeInitialize(t *testing.T) {
	// Discards output but must be usable.
	log.ZapLogger().Info("not initialised")
}
