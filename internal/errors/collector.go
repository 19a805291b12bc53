package errors

import (
	"fmt"
	"sync"
	"time"
)

// Diagnostic is a non-fatal finding reported while compiling, such as a
// component collision or a brace region that did not balance.
type Diagnostic struct {
	Component string
	File      string
	Message   string
	Severity  ErrorSeverity
	Timestamp time.Time
}

// ErrorSeverity represents the severity of a diagnostic
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	if d.Component != "" {
		return fmt.Sprintf("%s: %s: %s: %s", d.File, d.Component, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.File, d.Severity, d.Message)
}

// ErrorCollector collects diagnostics raised during a build
type ErrorCollector struct {
	diagnostics []Diagnostic
	mutex       sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		diagnostics: make([]Diagnostic, 0),
	}
}

// Add adds a diagnostic to the collector
func (ec *ErrorCollector) Add(d Diagnostic) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	if d.Timestamp.IsZero() {
		d.Timestamp = time.Now()
	}
	ec.diagnostics = append(ec.diagnostics, d)
}

// Diagnostics returns a copy of all collected diagnostics
func (ec *ErrorCollector) Diagnostics() []Diagnostic {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]Diagnostic, len(ec.diagnostics))
	copy(result, ec.diagnostics)
	return result
}

// Count returns the number of diagnostics at or above severity
func (ec *ErrorCollector) Count(min ErrorSeverity) int {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	n := 0
	for _, d := range ec.diagnostics {
		if d.Severity >= min {
			n++
		}
	}
	return n
}

// HasErrors returns true if any diagnostic has error severity
func (ec *ErrorCollector) HasErrors() bool {
	return ec.Count(ErrorSeverityError) > 0
}

// Clear clears all diagnostics
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.diagnostics = ec.diagnostics[:0]
}

// ByFile returns diagnostics for a specific file
func (ec *ErrorCollector) ByFile(file string) []Diagnostic {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var out []Diagnostic
	for _, d := range ec.diagnostics {
		if d.File == file {
			out = append(out, d)
		}
	}
	return out
}
