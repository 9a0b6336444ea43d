package types

import (
	"github.com/shopspring/decimal"

	"github.com/jonathan/property-etl/internal/fieldmap"
)

// Tax is the property tax snapshot.
type Tax struct {
	PropertyKey string           `json:"property_key" validate:"required"`
	Amount      *decimal.Decimal `json:"amount"`
}

var taxFields = fieldTable[Tax]{
	money(func(t *Tax) **decimal.Decimal { return &t.Amount }, "taxes", "amount"),
}

// NewTax builds a validated Tax from a projected payload.
func NewTax(key string, payload fieldmap.Payload) (*Tax, error) {
	t := &Tax{PropertyKey: key}
	taxFields.apply(t, payload)

	if err := validateEntity(t); err != nil {
		return nil, &ConstructionError{Entity: EntityTax, Key: key, Cause: err}
	}
	return t, nil
}

// HasPayload reports whether the amount is set.
func (t *Tax) HasPayload() bool {
	return hasValue(t.Amount)
}
