package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level represents the verbosity of diagnostic output
type Level int

const (
	LevelSilent Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelVerbose
)

// System provides structured, user-friendly output and records the warnings
// raised by the resolvers' degrade-don't-fail policy.
type System struct {
	level    Level
	output   io.Writer
	errorOut io.Writer

	mu       sync.Mutex
	warnings []string
}

// New creates a diagnostic system at the given level
func New(level Level) *System {
	return &System{
		level:    level,
		output:   os.Stdout,
		errorOut: os.Stderr,
	}
}

// NewQuiet creates a diagnostic system that only shows errors
func NewQuiet() *System {
	return New(LevelError)
}

// NewVerbose creates a diagnostic system with full output
func NewVerbose() *System {
	return New(LevelVerbose)
}

// SetOutput redirects both streams, used by tests
func (d *System) SetOutput(w io.Writer) {
	d.output = w
	d.errorOut = w
}

// Error outputs error messages (always shown unless silent)
func (d *System) Error(format string, args ...interface{}) {
	if d.level >= LevelError {
		d.writeMessage(d.errorOut, "ERROR", color.New(color.FgRed), format, args...)
	}
}

// Warn outputs a warning and records it for later inspection
func (d *System) Warn(format string, args ...interface{}) {
	d.mu.Lock()
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
	d.mu.Unlock()
	if d.level >= LevelWarn {
		d.writeMessage(d.output, "WARN", color.New(color.FgYellow), format, args...)
	}
}

// Info outputs informational messages
func (d *System) Info(format string, args ...interface{}) {
	if d.level >= LevelInfo {
		d.writeMessage(d.output, "INFO", color.New(color.FgBlue), format, args...)
	}
}

// Success outputs a checkmarked progress message
func (d *System) Success(format string, args ...interface{}) {
	if d.level >= LevelInfo {
		green := color.New(color.FgGreen)
		fmt.Fprintf(d.output, "%s %s\n", green.Sprint("✓"), fmt.Sprintf(format, args...))
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (d *System) Verbose(format string, args ...interface{}) {
	if d.level >= LevelVerbose {
		d.writeMessage(d.output, "VERBOSE", color.New(color.FgHiBlack), format, args...)
	}
}

// Warnings returns a copy of all recorded warnings in order
func (d *System) Warnings() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.warnings))
	copy(out, d.warnings)
	return out
}

// writeMessage is the internal message writing function
func (d *System) writeMessage(w io.Writer, level string, c *color.Color, format string, args ...interface{}) {
	var out strings.Builder
	if useColors() {
		out.WriteString(c.Sprintf("[%s]", level))
	} else {
		out.WriteString(fmt.Sprintf("[%s]", level))
	}
	out.WriteString(" ")
	out.WriteString(fmt.Sprintf(format, args...))
	out.WriteString("\n")
	fmt.Fprint(w, out.String())
}

// useColors determines if colors should be used
func useColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}
