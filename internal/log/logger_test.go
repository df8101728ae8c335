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

	"tourreport/internal/core"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{" WARN ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewJSONCarriesComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Output: &buf, Component: ComponentStorage})
	l.Info("opened", "path", "tour.db")
	l.WithComponent(ComponentAMQP).With("queue", "report_sync").Warn("reconnecting")
	l.Debug("dropped below level")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %s", len(lines), buf.String())
	}
	if lines[0][FieldComponent] != ComponentStorage || lines[0]["path"] != "tour.db" {
		t.Errorf("first line = %v", lines[0])
	}
	if lines[1][FieldComponent] != ComponentAMQP || lines[1]["queue"] != "report_sync" {
		t.Errorf("second line = %v", lines[1])
	}
	if strings.Count(buf.String(), `"component"`) != 2 {
		t.Errorf("component key repeated: %s", buf.String())
	}
}

func TestTextFormatDefault(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Output: &buf}).Info("hello")
	if !strings.Contains(buf.String(), "component=app") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestLogFields(t *testing.T) {
	e := core.InspectionEntry{ID: "e1", Date: core.NewDate(2024, 3, 2), DayStatus: core.Inspection}
	f := NewFields().WithEntry(e).WithMonth(2024, 3).WithError(errors.New("boom")).WithError(nil)

	got := f.ToSlice()
	want := []any{
		FieldDayStatus, "Inspection",
		FieldEntryDate, "2024-03-02",
		FieldEntryID, "e1",
		FieldError, "boom",
		FieldMonth, 3,
		FieldYear, 2024,
	}
	if len(got) != len(want) {
		t.Fatalf("ToSlice() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ToSlice()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Output: &buf, Component: ComponentHTTP})

	var seen *Logger
	h := RequestLogger(l,
		func(*http.Request) string { return "req_1" },
		func(*http.Request) string { return "10.0.0.1" },
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		http.Error(w, "missing", http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/entries/x?y=1", nil))

	if seen == nil || seen.Component() != ComponentHTTP {
		t.Fatalf("handler did not receive the request logger")
	}
	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %s", len(lines), buf.String())
	}
	line := lines[0]
	if line["level"] != "WARN" || line[FieldStatusCode] != float64(404) {
		t.Errorf("line = %v", line)
	}
	if line[FieldRequestID] != "req_1" || line[FieldClientIP] != "10.0.0.1" || line[FieldPath] != "/api/entries/x" {
		t.Errorf("line = %v", line)
	}
	if line[FieldSuccess] != false {
		t.Errorf("success = %v", line[FieldSuccess])
	}
}

func TestFromContextFallsBack(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil || l.Component() != "unknown" {
		t.Fatalf("FromContext() = %+v", l)
	}
	want := Discard()
	if got := FromContext(NewContext(context.Background(), want)); got != want {
		t.Errorf("FromContext returned a different logger")
	}
}

func TestStructuredLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf, Component: ComponentSession}))
	sl.LogEntrySaved(context.Background(), 2024, 3, "e1")
	sl.LogError(context.Background(), "persist failed", errors.New("disk full"), OpPersist, nil)

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0][FieldEntryID] != "e1" || lines[0][FieldOperation] != OpSave {
		t.Errorf("saved line = %v", lines[0])
	}
	if lines[1][FieldError] != "disk full" || lines[1]["level"] != "ERROR" {
		t.Errorf("error line = %v", lines[1])
	}
}
