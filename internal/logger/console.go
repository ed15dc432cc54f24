// Package logger provides the diagnostic loggers used by rr.
//
// Every logger writes "[HH:MM:SS] [LEVEL] message" lines filtered by a
// minimum level (trace, debug, info, warn, error). Implementations are
// thread-safe: pipeline stages log from their own goroutines.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/rr/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is the interface shared by every logger in this package. It is a
// superset of executor.Logger.
type Logger interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	LogSummary(summary models.RunSummary)
}

// ConsoleLogger logs diagnostics to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr)
// and can be forced either way with SetColor.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// SetColor overrides terminal detection.
func (cl *ConsoleLogger) SetColor(enabled bool) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.colorOutput = enabled
}

// isTerminal checks if the writer is a terminal that supports colors.
// Returns true for os.Stdout and os.Stderr when they are TTYs.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}

	if w == os.Stdout || w == os.Stderr {
		// color.NoColor is false only for TTYs without NO_COLOR set
		return !color.NoColor
	}

	return false
}

// ValidLogLevel reports whether level names a known log level.
func ValidLogLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "error":
		return true
	}
	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	if ValidLogLevel(level) {
		return strings.ToLower(strings.TrimSpace(level))
	}
	return "info"
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// Tracef logs a trace-level message (most verbose).
func (cl *ConsoleLogger) Tracef(format string, args ...interface{}) {
	cl.logWithLevel("TRACE", format, args...)
}

// Debugf logs a debug-level message.
func (cl *ConsoleLogger) Debugf(format string, args ...interface{}) {
	cl.logWithLevel("DEBUG", format, args...)
}

// Infof logs an info-level message.
func (cl *ConsoleLogger) Infof(format string, args ...interface{}) {
	cl.logWithLevel("INFO", format, args...)
}

// Warnf logs a warning-level message.
func (cl *ConsoleLogger) Warnf(format string, args ...interface{}) {
	cl.logWithLevel("WARN", format, args...)
}

// Errorf logs an error-level message.
func (cl *ConsoleLogger) Errorf(format string, args ...interface{}) {
	cl.logWithLevel("ERROR", format, args...)
}

// logWithLevel formats and writes a message if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, format string, args ...interface{}) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	message := fmt.Sprintf(format, args...)

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, levelColor(level).Sprint(level), message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// LogSummary logs the run summary at INFO level.
// Format: "[HH:MM:SS] === Search Summary ===" followed by one line per counter group.
func (cl *ConsoleLogger) LogSummary(summary models.RunSummary) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	var scheme *colorScheme
	if cl.colorOutput {
		scheme = newColorScheme()
	}

	ts := timestamp()
	var b strings.Builder
	for _, line := range summaryLines(summary, scheme) {
		fmt.Fprintf(&b, "[%s] %s\n", ts, line)
	}

	cl.writer.Write([]byte(b.String()))
}

// summaryLines renders the summary body. A nil scheme produces plain text.
func summaryLines(s models.RunSummary, scheme *colorScheme) []string {
	header := "=== Search Summary ==="
	matches := fmt.Sprintf("Matches: %d files, %d lines", s.FilesMatched, s.LinesMatched)
	dirsSkipped := fmt.Sprintf("%d skipped", s.DirsSkipped)
	filesSkipped := fmt.Sprintf("%d skipped", s.FilesSkipped)

	if scheme != nil {
		header = scheme.header.Sprint(header)
		if s.FilesMatched > 0 {
			matches = scheme.success.Sprint(matches)
		}
		if s.DirsSkipped > 0 {
			dirsSkipped = scheme.warn.Sprint(dirsSkipped)
		}
		if s.FilesSkipped > 0 {
			filesSkipped = scheme.warn.Sprint(filesSkipped)
		}
	}

	return []string{
		header,
		fmt.Sprintf("Workers: %d", s.Workers),
		fmt.Sprintf("Directories: %d listed, %s", s.DirsListed, dirsSkipped),
		fmt.Sprintf("Files: %d discovered, %d scanned, %s", s.FilesDiscovered, s.FilesScanned, filesSkipped),
		matches,
		fmt.Sprintf("Duration: %s", formatDuration(s.Duration)),
	}
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "250ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}
