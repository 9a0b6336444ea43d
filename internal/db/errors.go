package db

import "fmt"

// LoadError represents a failed bundle write. The transaction has been
// rolled back when it is returned.
type LoadError struct {
	Table   string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	prefix := "load error"
	if e.Table != "" {
		prefix = fmt.Sprintf("load error (%s)", e.Table)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
