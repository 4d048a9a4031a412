package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf}).WithComponent(ComponentLedger)
	l.Info("loaded", FieldRecords, 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json log: %v (%s)", err, buf.String())
	}
	if entry[FieldComponent] != ComponentLedger {
		t.Fatalf("component = %v", entry[FieldComponent])
	}
	if entry[FieldRecords] != float64(3) {
		t.Fatalf("records = %v", entry[FieldRecords])
	}
}

func TestMiddlewareAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Output: &buf})

	var got *Logger
	h := Middleware(base, func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
			got.Info("inside")
		}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil {
		t.Fatal("logger not found in context")
	}
	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("missing request id in %q", buf.String())
	}

	if l := FromContext(context.Background()); l.Component() != "unknown" {
		t.Fatalf("fallback component = %q", l.Component())
	}
}

func TestEventLogger(t *testing.T) {
	var buf bytes.Buffer
	events := NewEventLogger(New(Config{Output: &buf}))
	events.TransactionRecorded(context.Background(), "2024-01-01", "rent", 150000, "Housing", "Expense", 4)
	events.Failure(context.Background(), "save failed", errors.New("disk full"), ComponentStorage, OpSave, nil)

	out := buf.String()
	for _, want := range []string{"Transaction recorded", "amount_cents=150000", "records=4", "disk full", "operation=save"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}
