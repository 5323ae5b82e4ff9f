// Package logging provides structured per-instance debug logging for the
// br daemon. Each daemon process writes to its own session log file under
// ~/.br/logs/ so a detached daemon still leaves a debuggable trail.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger writes leveled, timestamped lines to a per-session log file.
//
// All log methods write unconditionally; there is no level filtering.
type Logger struct {
	sessionID string
	component string
	file      *os.File
	logger    *log.Logger
	mu        sync.Mutex
	logPath   string
	closeOnce sync.Once
}

var (
	sessionID     string
	sessionIDOnce = &sync.Once{}

	logDir   string
	initOnce = &sync.Once{}
	initErr  error
)

func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

func initLogDirectory() error {
	initOnce.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("failed to get home directory: %w", err)
			return
		}

		logDir = filepath.Join(homeDir, ".br", "logs")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
	})
	return initErr
}

// NewLogger creates a logger for a named daemon instance.
//
// It writes to ~/.br/logs/<instance-name>-<session-id>.log. If the log
// directory cannot be created or the file cannot be opened, it falls back
// to stderr and returns the error so the caller can decide whether that is
// fatal.
func NewLogger(instanceName, component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	sessID := getSessionID()
	logFileName := fmt.Sprintf("%s-%s.log", instanceName, sessID)
	logPath := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return newFallbackLogger(component, fmt.Errorf("failed to open log file: %w", err)), err
	}

	logger := log.New(file, "", 0)

	return &Logger{
		sessionID: sessID,
		component: component,
		file:      file,
		logger:    logger,
		logPath:   logPath,
	}, nil
}

func newFallbackLogger(component string, err error) *Logger {
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	logger.Printf("WARNING: failed to initialize file logging: %v", err)
	logger.Printf("falling back to stderr logging")

	return &Logger{
		sessionID: getSessionID(),
		component: component,
		file:      nil,
		logger:    logger,
	}
}

func (l *Logger) formatLogEntry(level, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	return fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, l.component, level, message)
}

func (l *Logger) write(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	message := fmt.Sprintf(format, v...)
	l.logger.Println(l.formatLogEntry(level, message))
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) { l.write("DEBUG", format, v...) }

// Infof logs an info-level message.
func (l *Logger) Infof(format string, v ...interface{}) { l.write("INFO", format, v...) }

// Warnf logs a warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) { l.write("WARN", format, v...) }

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) { l.write("ERROR", format, v...) }

// Field is a single structured key/value pair attached to a log line, for
// callers (the Request Router's logging middleware, chiefly) that want to
// log one event with several attributes instead of formatting them into a
// message string themselves.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

func appendFields(message string, fields []Field) string {
	if len(fields) == 0 {
		return message
	}
	var b strings.Builder
	b.WriteString(message)
	for _, f := range fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		fmt.Fprintf(&b, "%v", f.Value)
	}
	return b.String()
}

func (l *Logger) writeFields(level, message string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logger.Println(l.formatLogEntry(level, appendFields(message, fields)))
}

// Debugw logs a debug-level message with structured key/value fields
// appended as "key=value" pairs.
func (l *Logger) Debugw(message string, fields ...Field) { l.writeFields("DEBUG", message, fields) }

// Infow logs an info-level message with structured key/value fields
// appended as "key=value" pairs.
func (l *Logger) Infow(message string, fields ...Field) { l.writeFields("INFO", message, fields) }

// Warnw logs a warning-level message with structured key/value fields
// appended as "key=value" pairs.
func (l *Logger) Warnw(message string, fields ...Field) { l.writeFields("WARN", message, fields) }

// Errorw logs an error-level message with structured key/value fields
// appended as "key=value" pairs.
func (l *Logger) Errorw(message string, fields ...Field) { l.writeFields("ERROR", message, fields) }

// Writer returns an io.Writer that writes to this logger's destination.
func (l *Logger) Writer() io.Writer {
	if l.file != nil {
		return l.file
	}
	return os.Stderr
}

// SessionID returns the session ID shared by all loggers in this process.
func (l *Logger) SessionID() string { return l.sessionID }

// LogPath returns the path to the log file, or "" when logging to stderr.
func (l *Logger) LogPath() string { return l.logPath }

// Close closes the underlying log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// GetLogDirectory returns the directory where logs are stored, creating it
// if necessary.
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
