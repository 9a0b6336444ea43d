package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string"}
	}
}`

const validBundle = `{
	"run_id": "4f9c2a52-1d8e-4b0e-9a55-3f0c8f1f2b10",
	"generated_at": "2026-05-01T12:00:00Z",
	"summary": {
		"properties": 1, "leads": 1, "valuations": 1, "rehabs": 0, "hoas": 0, "taxes": 1,
		"records": 2, "duplicates_dropped": 1, "construction_failures": 0,
		"dropped_empty": {"leads": 0}
	},
	"properties": [{
		"property_key": "TX-0123456789abcdef",
		"city": "Austin",
		"zip_code": "00501",
		"tax_rate": "2.15",
		"year_built": 1955,
		"bath": 2.5,
		"pool": true,
		"market": null,
		"created_at": "2026-05-01T12:00:00Z"
	}],
	"leads": [{"property_key": "TX-0123456789abcdef", "source": "mls", "net_yield": 6.5}],
	"valuations": [{"property_key": "TX-0123456789abcdef", "scenario_rank": 1, "list_price": "250000"}],
	"rehabs": [],
	"hoas": [],
	"taxes": [{"property_key": "TX-0123456789abcdef", "amount": "4100.5"}]
}`

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadValidator(t *testing.T) {
	v, err := LoadValidator(writeFile(t, "schema.json", personSchema))
	require.NoError(t, err)

	assert.NoError(t, v.Validate([]byte(`{"name": "test"}`)))

	err = v.Validate([]byte(`{"name": 30}`))
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Len(t, validationErr.Errors, 1)
	assert.Equal(t, "name", validationErr.Errors[0].Field)
	assert.Equal(t, "invalid_type", validationErr.Errors[0].Type)

	err = v.Validate([]byte(`{"age": 3}`))
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
	assert.Equal(t, "required", validationErr.Errors[0].Type)
}

func TestLoadValidator_Errors(t *testing.T) {
	_, err := LoadValidator(filepath.Join(t.TempDir(), "nonexistent_schema.json"))
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), "failed to read schema")

	_, err = LoadValidator(writeFile(t, "broken.json", `{"type": 12}`))
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), "schema does not compile")
}

func TestValidator_NotJSON(t *testing.T) {
	v, err := BundleValidator()
	require.NoError(t, err)

	err = v.Validate([]byte(`{"run_id": `))
	require.Error(t, err)
	var validationErr *ValidationError
	assert.False(t, errors.As(err, &validationErr))
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "properties.0.property_key", Message: "is required"},
			{Field: "summary", Message: "must be an object"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "validation failed")
	assert.Contains(t, msg, "1. properties.0.property_key: is required")
	assert.Contains(t, msg, "2. summary")
}

func TestValidateBundle_Valid(t *testing.T) {
	assert.NoError(t, ValidateBundle([]byte(validBundle)))
}

func TestValidateBundle_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		field   string
	}{
		{
			name:    "rank below one",
			replace: [2]string{`"scenario_rank": 1`, `"scenario_rank": 0`},
			field:   "valuations.0.scenario_rank",
		},
		{
			name:    "decimal encoded as float",
			replace: [2]string{`"list_price": "250000"`, `"list_price": 250000.5`},
			field:   "valuations.0.list_price",
		},
		{
			name:    "unknown attribute",
			replace: [2]string{`"source": "mls"`, `"source": "mls", "raw_notes": "x"`},
			field:   "leads.0",
		},
		{
			name:    "year built too old",
			replace: [2]string{`"year_built": 1955`, `"year_built": 1600`},
			field:   "properties.0.year_built",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := strings.Replace(validBundle, tt.replace[0], tt.replace[1], 1)
			require.NotEqual(t, validBundle, doc)

			err := ValidateBundle([]byte(doc))
			require.Error(t, err)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))

			var fields []string
			for _, fe := range validationErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateBundleFile(t *testing.T) {
	path := writeFile(t, "bundle.json", validBundle)
	assert.NoError(t, ValidateBundleFile(path))

	err := ValidateBundleFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read bundle")
}
