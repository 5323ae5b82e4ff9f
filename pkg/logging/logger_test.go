package logging

import (
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

// setupTestDir creates a temporary directory for test logs and resets global state.
func setupTestDir(t *testing.T) (cleanup func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "br-logging-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	origLogDir := logDir
	origInitErr := initErr
	origInitOnce := initOnce
	origSessionID := sessionID
	origSessionIDOnce := sessionIDOnce

	logDir = tempDir
	initErr = nil
	initOnce = &sync.Once{}
	initOnce.Do(func() {}) // keep logDir pointed at tempDir
	sessionID = ""
	sessionIDOnce = &sync.Once{}

	return func() {
		logDir = origLogDir
		initErr = origInitErr
		initOnce = origInitOnce
		sessionID = origSessionID
		sessionIDOnce = origSessionIDOnce

		os.RemoveAll(tempDir)
	}
}

func TestNewLogger(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	logger, err := NewLogger("default", "router")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.component != "router" {
		t.Errorf("expected component 'router', got %q", logger.component)
	}
	if logger.sessionID == "" {
		t.Error("expected non-empty session ID")
	}
	if logger.logPath == "" {
		t.Error("expected non-empty log path")
	}
	if _, err := os.Stat(logger.logPath); os.IsNotExist(err) {
		t.Errorf("log file does not exist at %s", logger.logPath)
	}
}

func TestLoggerFormatting(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	logger, err := NewLogger("default", "test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Debugf("debug message")
	logger.Infof("info message %d", 123)
	logger.Warnf("warning message")
	logger.Errorf("error message")

	time.Sleep(50 * time.Millisecond)

	content, err := os.ReadFile(logger.logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	logContent := string(content)
	expectedPatterns := []string{
		"[test] [DEBUG] debug message",
		"[test] [INFO] info message 123",
		"[test] [WARN] warning message",
		"[test] [ERROR] error message",
	}
	for _, pattern := range expectedPatterns {
		if !strings.Contains(logContent, pattern) {
			t.Errorf("log content missing expected pattern: %q\ncontent:\n%s", pattern, logContent)
		}
	}
}

func TestLoggerStructuredFields(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	logger, err := NewLogger("default", "router")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Debugw("request", F("method", "GET"), F("path", "/tabs"), F("status", 200))

	time.Sleep(50 * time.Millisecond)

	content, err := os.ReadFile(logger.logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	logContent := string(content)
	expectedPatterns := []string{
		"[router] [DEBUG] request method=GET path=/tabs status=200",
	}
	for _, pattern := range expectedPatterns {
		if !strings.Contains(logContent, pattern) {
			t.Errorf("log content missing expected pattern: %q\ncontent:\n%s", pattern, logContent)
		}
	}
}

func TestLoggerStructuredFieldsWithoutFieldsMatchesPlainMessage(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	logger, err := NewLogger("default", "test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Infow("no fields here")

	time.Sleep(50 * time.Millisecond)

	content, err := os.ReadFile(logger.logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "[test] [INFO] no fields here") {
		t.Errorf("log content missing plain message, got:\n%s", string(content))
	}
}

func TestMultipleComponentsShareSessionFile(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	logger1, err := NewLogger("default", "router")
	if err != nil {
		t.Fatalf("Failed to create logger1: %v", err)
	}
	defer logger1.Close()

	logger2, err := NewLogger("default", "supervisor")
	if err != nil {
		t.Fatalf("Failed to create logger2: %v", err)
	}
	defer logger2.Close()

	if logger1.sessionID != logger2.sessionID {
		t.Errorf("expected same session ID, got %q and %q", logger1.sessionID, logger2.sessionID)
	}
	if logger1.logPath != logger2.logPath {
		t.Errorf("expected same log path, got %q and %q", logger1.logPath, logger2.logPath)
	}

	logger1.Infof("from router")
	logger2.Infof("from supervisor")

	time.Sleep(50 * time.Millisecond)

	content, err := os.ReadFile(logger1.logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	logContent := string(content)
	if !strings.Contains(logContent, "[router]") {
		t.Error("log missing router entries")
	}
	if !strings.Contains(logContent, "[supervisor]") {
		t.Error("log missing supervisor entries")
	}
}

func TestLoggerCloseIsIdempotent(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	logger, err := NewLogger("default", "test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("first close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
}

func TestGetLogDirectory(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	dir, err := GetLogDirectory()
	if err != nil {
		t.Fatalf("failed to get log directory: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("log directory does not exist or is not a directory: %s", dir)
	}
}
