// Package propertykey derives the deterministic identifier that joins a
// property to all of its dependent rows.
package propertykey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/jonathan/property-etl/internal/cleaning"
	"github.com/jonathan/property-etl/internal/rawvalue"
)

// Source fields read by Derive, in the order they enter the seed.
const (
	FieldStreetAddress = "Street_Address"
	FieldCity          = "City"
	FieldState         = "State"
	FieldZip           = "Zip"
	FieldPropertyTitle = "Property_Title"
	FieldAddress       = "Address"
)

var addressFields = []string{FieldStreetAddress, FieldCity, FieldState, FieldZip}

const (
	separator     = "||"
	digestLength  = 16
	unknownPrefix = "XX"
)

// Derive computes the property key for a raw record at the given 1-based
// position in its batch. Identical address components always produce the
// same key; records without any address data fall back to their position so
// two empty records never collide.
func Derive(record rawvalue.Record, index int) string {
	seed := Seed(record, index)
	sum := sha256.Sum256([]byte(seed))
	digest := hex.EncodeToString(sum[:])[:digestLength]

	prefix := unknownPrefix
	if state := cleaning.String(record.Get(FieldState)); state != nil {
		prefix = strings.ToUpper(*state)
	}
	return prefix + "-" + digest
}

// Seed returns the pre-hash string Derive uses.
func Seed(record rawvalue.Record, index int) string {
	components := make([]string, 0, len(addressFields))
	for _, field := range addressFields {
		if value := cleaning.String(record.Get(field)); value != nil {
			components = append(components, strings.ToLower(*value))
		}
	}

	if len(components) == 0 {
		fallback := cleaning.String(cleaning.Coalesce(record.Get(FieldPropertyTitle), record.Get(FieldAddress)))
		if fallback != nil {
			components = append(components, strings.ToLower(*fallback))
		}
	}

	if len(components) == 0 {
		return fmt.Sprintf("record-%d", index)
	}
	return strings.Join(components, separator)
}
