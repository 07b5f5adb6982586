package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONWithInstanceFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "jobboardd.log")

	logger, err := New(path, "work")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("daemon started")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(strings.Split(string(data), "\n")[0])

	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	if entry["instance"] != "work" {
		t.Errorf("instance = %v, want work", entry["instance"])
	}
	if entry["msg"] != "daemon started" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Error("missing ts field")
	}
	if _, ok := entry["pid"]; !ok {
		t.Error("missing pid field")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}

func TestNewFileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "jobboardtui.log")

	logger, closeFn, err := NewFileOnly(path, "main")
	if err != nil {
		t.Fatalf("NewFileOnly() error = %v", err)
	}
	logger.Warn("status poll failed")
	closeFn()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"status poll failed"`) {
		t.Errorf("log = %q", data)
	}
}
