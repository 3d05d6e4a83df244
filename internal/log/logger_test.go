package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Output: &buf}).WithComponent(ComponentLedger)

	logger.Info("transaction recorded", NewFields().WithTransaction("7", "expense", 1250, "Food").ToSlice()...)

	out := buf.String()
	for _, want := range []string{"component=ledger", "transaction_id=7", "amount_cents=1250", "category=Food"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if strings.Count(out, "component=") != 1 {
		t.Fatalf("component stamped more than once: %q", out)
	}
	if logger.Component() != ComponentLedger {
		t.Fatalf("Component() = %q, want %q", logger.Component(), ComponentLedger)
	}
}

func TestLoggerJSONFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Format: "json", Output: &buf})

	logger.Info("dropped")
	logger.Warn("kept", NewFields().WithError(errors.New("boom"), ErrorTypeStorage).ToSlice()...)

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, `"error":"boom"`) || !strings.Contains(out, `"error_type":"storage_error"`) {
		t.Fatalf("unexpected json output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("%q expected %v, got %v (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestWithErrorNil(t *testing.T) {
	f := NewFields().WithError(nil, ErrorTypeStorage)
	if len(f) != 0 {
		t.Fatalf("nil error should add no fields, got %v", f)
	}
}
