package fieldmap

import "fmt"

// ConfigError represents a failure to read or parse the field configuration
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("field config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("field config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
