// Package output handles report serialization, text rendering and progress
// reporting.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Progress reports collection status to stderr. It is safe for concurrent
// use by collectors running in parallel.
type Progress struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
	verbose bool
	start   time.Time
}

// NewProgress creates a Progress reporter. Set enabled=false for --quiet mode.
func NewProgress(enabled bool) *Progress {
	return NewProgressTo(os.Stderr, enabled)
}

// NewProgressTo creates a Progress reporter writing to w.
func NewProgressTo(w io.Writer, enabled bool) *Progress {
	return &Progress{
		w:       w,
		enabled: enabled,
		start:   time.Now(),
	}
}

// NewVerboseProgress creates a Progress reporter with debug logging enabled.
func NewVerboseProgress(enabled, verbose bool) *Progress {
	return &Progress{
		w:       os.Stderr,
		enabled: enabled || verbose, // verbose implies enabled
		verbose: verbose,
		start:   time.Now(),
	}
}

// Log prints a progress message if enabled.
func (p *Progress) Log(format string, args ...interface{}) {
	if !p.enabled {
		return
	}
	p.print("", format, args...)
}

// Debug prints a debug message if verbose is enabled.
func (p *Progress) Debug(format string, args ...interface{}) {
	if !p.verbose {
		return
	}
	p.print("DEBUG: ", format, args...)
}

func (p *Progress) print(prefix, format string, args ...interface{}) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	msg := fmt.Sprintf(format, args...)

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "[%s] %s%s\n", elapsed, prefix, msg)
}
