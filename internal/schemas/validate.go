// Package schemas provides JSON Schema validation for exported bundles.
package schemas

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	bundleschemas "github.com/jonathan/property-etl/schemas"
)

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is one violation. Field is the dotted path into the document,
// "(root)" for top-level problems.
type FieldError struct {
	Field   string
	Type    string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, fe := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, fe.Field, fe.Message))
	}
	return sb.String()
}

// SchemaLoadError is returned when a schema cannot be read or compiled.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Validator checks documents against one compiled schema.
type Validator struct {
	name   string
	schema *gojsonschema.Schema
}

func compile(name string, loader gojsonschema.JSONLoader) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema does not compile", Cause: err}
	}
	return &Validator{name: name, schema: schema}, nil
}

// LoadValidator compiles the schema file at path.
func LoadValidator(path string) (*Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SchemaLoadError{Path: path, Message: "failed to read schema", Cause: err}
	}
	return compile(path, gojsonschema.NewBytesLoader(data))
}

var (
	bundleOnce      sync.Once
	bundleValidator *Validator
	bundleErr       error
)

// BundleValidator returns the validator for the embedded bundle schema. The
// schema is compiled on first use.
func BundleValidator() (*Validator, error) {
	bundleOnce.Do(func() {
		bundleValidator, bundleErr = compile(bundleschemas.BundleFile, gojsonschema.NewStringLoader(bundleschemas.Bundle()))
	})
	return bundleValidator, bundleErr
}

// Validate checks data and returns a *ValidationError listing every
// violation, or a plain error when data is not JSON.
func (v *Validator) Validate(data []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to parse document against %s: %w", v.name, err)
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Type:    desc.Type(),
			Message: desc.Description(),
		})
	}
	return validationErr
}

// ValidateFile reads and validates the document at path.
func (v *Validator) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read bundle %s: %w", path, err)
	}
	return v.Validate(data)
}

// ValidateBundle validates an exported bundle against the embedded schema.
func ValidateBundle(data []byte) error {
	v, err := BundleValidator()
	if err != nil {
		return err
	}
	return v.Validate(data)
}

// ValidateBundleFile reads and validates the bundle at path.
func ValidateBundleFile(path string) error {
	v, err := BundleValidator()
	if err != nil {
		return err
	}
	return v.ValidateFile(path)
}
