// Package logger provides verbose logging for vecdocs.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to trace ingestion, storage and ranking.
// Errors are printed regardless of verbosity.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
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

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[DEBUG] "+format+"\n", args...)
	}
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
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[INFO] "+format+"\n", args...)
	}
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[WARN] "+format+"\n", args...)
	}
}

// Error prints an error message. It is not gated by verbose mode.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, "[ERROR] "+format+"\n", args...)
}

// BadgerLogger adapts the package logger to badger's Logger interface.
// Badger errors are always printed; its warnings, info and debug output
// only in verbose mode.
type BadgerLogger struct{}

// Badger returns a logger for badger.Options.WithLogger.
func Badger() BadgerLogger {
	return BadgerLogger{}
}

// Errorf implements badger.Logger.
func (BadgerLogger) Errorf(format string, args ...any) { Error("badger: "+trimNewline(format), args...) }

// Warningf implements badger.Logger.
func (BadgerLogger) Warningf(format string, args ...any) { Warn("badger: "+trimNewline(format), args...) }

// Infof implements badger.Logger.
func (BadgerLogger) Infof(format string, args ...any) { Debug("badger: "+trimNewline(format), args...) }

// Debugf implements badger.Logger.
func (BadgerLogger) Debugf(string, ...any) {}

func trimNewline(s string) string {
	for len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	return s
}

// Writer returns an io.Writer that logs each written line at Debug level
// with the given prefix. Use it with log.New for libraries that want a *log.Logger.
func Writer(prefix string) io.Writer {
	return &lineWriter{prefix: prefix}
}

type lineWriter struct {
	prefix string
}

func (w *lineWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) > 0 {
			Debug("%s: %s", w.prefix, line)
		}
	}
	return len(p), nil
}
