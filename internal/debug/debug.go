package debug

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

var logger atomic.Pointer[slog.Logger]

// SetLogger routes debug tracing to l. Until it is called the process-wide
// slog default logger is used.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func current() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// DebugHeader marks the start of a traced section if debugging is enabled
func DebugHeader(enabled bool) {
	if enabled {
		current().Info("=== DEBUG START ===")
	}
}

// DebugFooter marks the end of a traced section if debugging is enabled
func DebugFooter(enabled bool) {
	if enabled {
		current().Info("=== DEBUG END ===")
	}
}

// DebugOutput emits a formatted trace line if debugging is enabled.
// The enabled flag, not the logger level, decides whether the line is written.
func DebugOutput(enabled bool, format string, args ...interface{}) {
	if enabled {
		current().Info(fmt.Sprintf(format, args...), "trace", true)
	}
}

// DebugTiming measures and logs execution time if debugging is enabled
func DebugTiming(enabled bool, operation string) func() {
	if !enabled {
		return func() {}
	}

	start := time.Now()
	DebugOutput(enabled, "Starting: %s", operation)

	return func() {
		DebugOutput(enabled, "Completed: %s (took %v)", operation, time.Since(start))
	}
}
