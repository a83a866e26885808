// Package logger provides process-wide logging for lessonscout.
// Debug, Info, Section and Warn messages are printed only in verbose mode
// (the --verbose flag). Error messages are always printed, since background
// pipelines have no caller to return failures to.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu         sync.RWMutex
	verbose    bool
	output     io.Writer = os.Stderr
	timestamps bool
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetTimestamps prefixes each line with an RFC3339 timestamp.
// The server enables this; interactive CLI commands leave it off.
func SetTimestamps(on bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = on
}

func write(gated bool, level, scope, format string, args ...any) {
	// Exclusive lock: concurrent pipelines share one writer.
	mu.Lock()
	defer mu.Unlock()
	if gated && !verbose {
		return
	}
	prefix := ""
	if timestamps {
		prefix = time.Now().UTC().Format(time.RFC3339) + " "
	}
	if scope != "" {
		fmt.Fprintf(output, "%s[%s] %s: "+format+"\n", append([]any{prefix, level, scope}, args...)...)
		return
	}
	fmt.Fprintf(output, "%s[%s] "+format+"\n", append([]any{prefix, level}, args...)...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(true, "DEBUG", "", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(true, "INFO", "", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(true, "WARN", "", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	write(false, "ERROR", "", format, args...)
}

// Scoped tags every message with a scope such as a session id or connector name.
type Scoped struct {
	scope string
}

// With returns a logger whose messages carry the given scope.
func With(scope string) Scoped {
	return Scoped{scope: scope}
}

// Debug prints a scoped message if verbose mode is enabled.
func (s Scoped) Debug(format string, args ...any) {
	write(true, "DEBUG", s.scope, format, args...)
}

// Info prints a scoped message if verbose mode is enabled.
func (s Scoped) Info(format string, args ...any) {
	write(true, "INFO", s.scope, format, args...)
}

// Warn prints a scoped warning if verbose mode is enabled.
func (s Scoped) Warn(format string, args ...any) {
	write(true, "WARN", s.scope, format, args...)
}

// Error prints a scoped error regardless of verbose mode.
func (s Scoped) Error(format string, args ...any) {
	write(false, "ERROR", s.scope, format, args...)
}
