package logger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/rr/internal/filelock"
	"github.com/harrison/rr/internal/models"
)

// FileLogger appends diagnostics to a log file that may be shared by several
// rr processes. Every line carries the run id so interleaved runs can be told
// apart, and every write holds the file's advisory lock.
// It is thread-safe and implements Logger.
type FileLogger struct {
	path     string
	runID    string
	logLevel string
	out      *filelock.Appender
}

// NewFileLogger opens path for appending and writes a run header.
// If logLevel is empty or invalid, defaults to "info".
func NewFileLogger(path string, logLevel string) (*FileLogger, error) {
	out, err := filelock.OpenAppender(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	fl := &FileLogger{
		path:     path,
		runID:    uuid.NewString(),
		logLevel: normalizeLogLevel(logLevel),
		out:      out,
	}

	fl.write(fmt.Sprintf("=== rr run %s started at %s ===\n", fl.runID, time.Now().Format(time.RFC3339)))
	return fl, nil
}

// RunID returns the identifier stamped on every line of this run.
func (fl *FileLogger) RunID() string {
	return fl.runID
}

// Path returns the log file path.
func (fl *FileLogger) Path() string {
	return fl.path
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// Tracef logs a trace-level message (most verbose).
func (fl *FileLogger) Tracef(format string, args ...interface{}) {
	fl.logWithLevel("TRACE", format, args...)
}

// Debugf logs a debug-level message.
func (fl *FileLogger) Debugf(format string, args ...interface{}) {
	fl.logWithLevel("DEBUG", format, args...)
}

// Infof logs an info-level message.
func (fl *FileLogger) Infof(format string, args ...interface{}) {
	fl.logWithLevel("INFO", format, args...)
}

// Warnf logs a warning-level message.
func (fl *FileLogger) Warnf(format string, args ...interface{}) {
	fl.logWithLevel("WARN", format, args...)
}

// Errorf logs an error-level message.
func (fl *FileLogger) Errorf(format string, args ...interface{}) {
	fl.logWithLevel("ERROR", format, args...)
}

func (fl *FileLogger) logWithLevel(level string, format string, args ...interface{}) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.write(fl.line(level, fmt.Sprintf(format, args...)))
}

// line formats one record: "[HH:MM:SS] [run-id] [LEVEL] message".
func (fl *FileLogger) line(level, message string) string {
	return fmt.Sprintf("[%s] [%s] [%s] %s\n", timestamp(), fl.shortID(), level, message)
}

func (fl *FileLogger) shortID() string {
	if len(fl.runID) > 8 {
		return fl.runID[:8]
	}
	return fl.runID
}

// LogSummary logs the run summary at INFO level as a single locked record.
func (fl *FileLogger) LogSummary(summary models.RunSummary) {
	if !fl.shouldLog("info") {
		return
	}

	var b strings.Builder
	for _, line := range summaryLines(summary, nil) {
		b.WriteString(fl.line("INFO", line))
	}
	fl.write(b.String())
}

// Close flushes and closes the log file.
func (fl *FileLogger) Close() error {
	return fl.out.Close()
}

// write appends one record. Logging never fails the search, so write
// errors are dropped.
func (fl *FileLogger) write(record string) {
	_, _ = fl.out.Write([]byte(record))
}
