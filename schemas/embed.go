// Package schemas holds the JSON Schemas for exported artifacts.
package schemas

import (
	_ "embed"
)

// BundleFile is the schema file name for exported bundles.
const BundleFile = "bundle.schema.json"

//go:embed bundle.schema.json
var bundleSchema string

// Bundle returns the bundle schema.
func Bundle() string {
	return bundleSchema
}
