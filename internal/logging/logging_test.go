package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	var entries []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("expected json line, got %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestTraceWritesOnlyWhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "trace.log")
	Configure(path)
	t.Cleanup(func() {
		SetTraceEnabled(false)
		Configure("")
	})

	SetTraceEnabled(false)
	Trace("ignored", nil)
	SetTraceEnabled(true)
	Trace("query.issue", map[string]interface{}{"resource": "vehicles", "seq": 3})
	Close()

	entries := readEntries(t, path)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["event"] != "query.issue" {
		t.Fatalf("expected event query.issue, got %v", entries[0]["event"])
	}
	payload, ok := entries[0]["payload"].(map[string]any)
	if !ok || payload["resource"] != "vehicles" {
		t.Fatalf("expected payload with resource, got %v", entries[0]["payload"])
	}
	if _, ok := entries[0]["time"]; !ok {
		t.Fatalf("expected timestamp field")
	}
}

func TestErrorAlwaysWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	Configure(path)
	t.Cleanup(func() { Configure("") })

	Error(nil)
	Error(errors.New("boom"))
	Close()

	entries := readEntries(t, path)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["error"] != "boom" {
		t.Fatalf("expected error boom, got %v", entries[0]["error"])
	}
	if entries[0]["level"] != "error" {
		t.Fatalf("expected level error, got %v", entries[0]["level"])
	}
}
