package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWithComponentTagsOnce(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Handler: slog.NewJSONHandler(&buf, nil), Component: ComponentApp})

	logger := base.WithComponent(ComponentLoader)
	logger.Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry[FieldComponent] != ComponentLoader {
		t.Fatalf("expected component %q, got %v", ComponentLoader, entry[FieldComponent])
	}
	if logger.Component() != ComponentLoader {
		t.Fatalf("unexpected component %q", logger.Component())
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %q", got.Component())
	}

	logger := New(DefaultConfig())
	ctx := WithContext(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatal("expected stored logger")
	}
}

func TestStructuredLoggerTableLoaded(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Handler: slog.NewJSONHandler(&buf, nil)}))

	sl.LogTableLoaded(context.Background(), "csv", "transactions", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry[FieldTable] != "transactions" || entry[FieldRows] != float64(3) || entry[FieldBackend] != "csv" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}
