package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewLoggerWritesRunTaggedEntriesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	logger, err := NewLogger(path, "run-123")
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}

	logger.Info("connected to mailbox", zap.String("folder", "inbox"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	entry := string(data)
	if !strings.Contains(entry, `"run_id":"run-123"`) {
		t.Errorf("log entry %q missing the run tag", entry)
	}
	if !strings.Contains(entry, "connected to mailbox") {
		t.Errorf("log entry %q missing the message", entry)
	}
}

func TestNewLoggerSharedFileKeepsRunsApart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	for _, runID := range []string{"run-a", "run-b"} {
		logger, err := NewLogger(path, runID)
		if err != nil {
			t.Fatalf("NewLogger returned error: %v", err)
		}
		logger.Info("batch complete")
		_ = logger.Sync()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	for _, runID := range []string{"run-a", "run-b"} {
		if !strings.Contains(string(data), `"run_id":"`+runID+`"`) {
			t.Errorf("shared log file missing entries for %s", runID)
		}
	}
}
