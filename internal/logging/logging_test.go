package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoggerCapturesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewStorage(10))

	logger.Info("DMR Status", "dmr", "running")
	logger.Error("status failed", "error", errors.New("connection refused"))

	entries := logger.Storage().GetEntries("")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "DMR Status" || entries[0].Level != "info" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if v, _ := entries[0].Field("dmr"); v != "running" {
		t.Errorf("unexpected dmr field: %v", v)
	}
	if v, _ := entries[1].Field("error"); v != "connection refused" {
		t.Errorf("error not stored as string: %v", v)
	}
	if !strings.Contains(buf.String(), "dmr=running") {
		t.Errorf("output missing field: %q", buf.String())
	}
}

func TestLoggerCapturesBelowPrintedLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewStorage(10))
	logger.SetLevel(log.WarnLevel)

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug printed at warn level: %q", buf.String())
	}
	if logger.Storage().Count("debug") != 1 {
		t.Error("debug entry not captured")
	}
}

func TestStorageCapacity(t *testing.T) {
	s := NewStorage(3)
	for _, msg := range []string{"a", "b", "c", "d"} {
		s.AddEntry("info", msg, nil)
	}
	entries := s.GetEntries("")
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Message != "b" || entries[2].Message != "d" {
		t.Errorf("unexpected order: %v", entries)
	}
}

func TestGetEntriesFilters(t *testing.T) {
	s := NewStorage(10)
	s.AddEntry("debug", "one", nil)
	s.AddEntry("info", "two", nil)
	s.AddEntry("error", "three", nil)
	s.AddEntry("warn", "four", nil)

	got := s.GetEntries("warn")
	if len(got) != 2 || got[0].Message != "three" || got[1].Message != "four" {
		t.Errorf("unexpected warn+ entries: %v", got)
	}

	if got := s.GetEntries("debug"); len(got) != 4 {
		t.Errorf("debug should include everything, got %v", got)
	}

	if got := s.GetEntries("bogus"); len(got) != 0 {
		t.Errorf("unknown level should match nothing, got %v", got)
	}
}

func TestStatsAndCount(t *testing.T) {
	s := NewStorage(5)
	s.AddEntry("info", "x", nil)
	s.AddEntry("error", "y", nil)
	s.AddEntry("error", "z", nil)

	stats := s.GetStats()
	if stats["total_entries"] != 3 {
		t.Errorf("unexpected total: %v", stats["total_entries"])
	}
	counts := stats["level_counts"].(map[string]int)
	if counts["error"] != 2 || s.Count("error") != 2 {
		t.Errorf("unexpected error count: %v", counts)
	}
	if s.Count("warn") != 0 {
		t.Error("no warn entries were added")
	}
}

func TestWriteJSON(t *testing.T) {
	logger := New(&bytes.Buffer{}, NewStorage(10))
	logger.SetLevel(log.ErrorLevel)
	logger.Debug("engine request", "method", "GET")
	logger.Warn("finished with failures", "failed", 1)
	logger.Error("command failed", "command", "status", "error", errors.New("boom"))

	var buf bytes.Buffer
	if err := logger.Storage().WriteJSON(&buf, "warn"); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var doc struct {
		Stats struct {
			TotalEntries int            `json:"total_entries"`
			LevelCounts  map[string]int `json:"level_counts"`
		} `json:"stats"`
		Entries []Entry `json:"entries"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode dump: %v\n%s", err, buf.String())
	}
	if doc.Stats.TotalEntries != 3 || doc.Stats.LevelCounts["debug"] != 1 {
		t.Errorf("unexpected stats: %+v", doc.Stats)
	}
	if len(doc.Entries) != 2 || doc.Entries[0].Message != "finished with failures" {
		t.Fatalf("unexpected entries: %+v", doc.Entries)
	}
	if v, _ := doc.Entries[1].Field("error"); v != "boom" {
		t.Errorf("unexpected error field: %v", v)
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewStorage(1).WriteJSON(&buf, ""); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"entries": []`) {
		t.Errorf("empty storage should write an empty array:\n%s", buf.String())
	}
}

func TestParseFieldsOddError(t *testing.T) {
	fields := parseFields("op", "status", errors.New("boom"))
	if fields["op"] != "status" || fields["error"] != "boom" {
		t.Errorf("unexpected fields: %v", fields)
	}
}
