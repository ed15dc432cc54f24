package executor

// Logger receives pipeline diagnostics. Implementations must be safe for
// concurrent use: every stage logs from its own goroutine.
type Logger interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
