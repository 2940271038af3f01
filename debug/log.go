package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger returns the diagnostic logger for a run.
// Verbose runs log everything down to debug traces; quiet runs only errors,
// so recoverable MIDI anomalies stay silent unless asked for.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.ErrorLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "midicnc",
		ReportTimestamp: false,
	})
}

// OpenLogFile creates (or truncates) a log file for diagnostics.
// Timestamps are enabled on the returned logger since the file outlives the run.
func OpenLogFile(path string, verbose bool) (*log.Logger, io.Closer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, err
	}

	fmt.Fprintf(f, "=== midicnc log started %s ===\n", time.Now().Format("2006-01-02 15:04:05"))

	logger := NewLogger(f, verbose)
	logger.SetReportTimestamp(true)
	logger.SetTimeFormat("15:04:05.000")
	return logger, f, nil
}

// Discard returns a logger that drops everything (tests, inspect mode)
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
