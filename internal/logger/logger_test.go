package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobrank.log")

	l, err := New(Options{JSON: true, Output: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	l.Debug("hidden")
	l.Info("provider failed")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one entry at info level, got %d: %s", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["step"] != "provider failed" || entry["level"] != "info" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewDebugLevel(t *testing.T) {
	l, err := New(Options{Debug: true, Output: filepath.Join(t.TempDir(), "debug.log")})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if !l.Core().Enabled(-1) {
		t.Fatalf("expected debug level to be enabled")
	}
}
