package executor

// graceful.go provides helpers for graceful degradation across stages.
// The pattern: report the problem but keep the search going.

// GracefulWarn logs a warning if logger is non-nil, using the given format and args.
// This helper eliminates the repeated pattern of:
//
//	if logger != nil {
//	    logger.Warnf(format, args...)
//	}
//
// Usage:
//
//	if err != nil {
//	    GracefulWarn(w.logger, "cannot open %s: %v", task.Path, err)
//	    return nil
//	}
func GracefulWarn(logger Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.Warnf(format, args...)
	}
}

// GracefulDebug logs a debug message if logger is non-nil.
func GracefulDebug(logger Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.Debugf(format, args...)
	}
}

// GracefulError logs an error message if logger is non-nil.
func GracefulError(logger Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.Errorf(format, args...)
	}
}
