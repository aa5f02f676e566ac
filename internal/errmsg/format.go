// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Command line
	OpParseArgs  Op = "parse percentages"
	OpLoadConfig Op = "load configuration"

	// Metrics collection
	OpSample     Op = "sample system metrics"
	OpReadCPU    Op = "read CPU usage"
	OpReadMemory Op = "read memory usage"
	OpReadGPU    Op = "read GPU usage"

	// Output
	OpRender Op = "render bar"
	OpWatch  Op = "run live view"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Error wraps err so its message reads like Format while keeping it unwrappable.
func Error(op Op, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
