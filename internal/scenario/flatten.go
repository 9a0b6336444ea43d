// Package scenario expands the nested per-property scenario lists into
// rank-tagged sub-records.
package scenario

import (
	"github.com/jonathan/property-etl/internal/cleaning"
	"github.com/jonathan/property-etl/internal/rawvalue"
)

// Source keys of the nested scenario lists on a raw record.
const (
	KeyValuation = "Valuation"
	KeyRehab     = "Rehab"
	KeyHOA       = "HOA"
)

// Scenario is one element of a nested list together with its 1-based rank.
type Scenario struct {
	Rank   int
	Fields rawvalue.Record
	// Coerced is set when the element was not a mapping and was replaced by
	// an empty record.
	Coerced bool
}

// Flatten enumerates the nested value starting at rank 1. Ranks follow list
// position only; elements that are not mappings still consume their rank.
func Flatten(value rawvalue.Value) []Scenario {
	items := cleaning.Sequence(value)
	if len(items) == 0 {
		return nil
	}

	scenarios := make([]Scenario, 0, len(items))
	for i, item := range items {
		fields, ok := item.AsMap()
		if !ok {
			fields = rawvalue.Record{}
		}
		scenarios = append(scenarios, Scenario{
			Rank:    i + 1,
			Fields:  fields,
			Coerced: !ok,
		})
	}
	return scenarios
}

// FromRecord flattens the list stored under key on record.
func FromRecord(record rawvalue.Record, key string) []Scenario {
	return Flatten(record.Get(key))
}
