package config

import "fmt"

// ValidationError is a file-level validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// SourceError is a validation error of one entry in sources.
type SourceError struct {
	Index    int    // 0-based index in sources
	Category string // may be empty if the category field is missing
	Field    string
	Message  string
	Cause    error
}

func (e *SourceError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("source %q: %s: %s", e.Category, e.Field, e.Message)
	}
	return fmt.Sprintf("sources[%d]: %s: %s", e.Index, e.Field, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}
