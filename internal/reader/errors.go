// Package reader loads the raw property dataset. The file is parsed with a
// YAML parser so both strict JSON and its relaxed variants are accepted.
package reader

import "fmt"

// LoadError represents an error during file I/O or parsing
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("load error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
