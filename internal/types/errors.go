package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Entity names, matching the target table of each entity.
const (
	EntityProperty  = "property"
	EntityLead      = "leads"
	EntityValuation = "valuation"
	EntityRehab     = "rehab"
	EntityHOA       = "hoa"
	EntityTax       = "taxes"
)

// Entities lists every entity name in load order.
var Entities = []string{EntityProperty, EntityLead, EntityValuation, EntityRehab, EntityHOA, EntityTax}

var validate = validator.New()

func validateEntity(entity any) error {
	return validate.Struct(entity)
}

// ConstructionError is returned when a required attribute is missing or
// invalid after normalization.
type ConstructionError struct {
	Entity string
	Key    string
	// Rank is set for scenario entities only.
	Rank  *int
	Cause error
}

func (e *ConstructionError) Error() string {
	target := e.Entity
	if e.Key != "" {
		target = fmt.Sprintf("%s %q", e.Entity, e.Key)
	}
	if e.Rank != nil {
		target = fmt.Sprintf("%s rank %d", target, *e.Rank)
	}
	if e.Cause != nil {
		return fmt.Sprintf("construction error: %s: %v", target, e.Cause)
	}
	return fmt.Sprintf("construction error: %s", target)
}

func (e *ConstructionError) Unwrap() error {
	return e.Cause
}

// Fields lists the attributes that failed validation.
func (e *ConstructionError) Fields() []string {
	var verrs validator.ValidationErrors
	if errs, ok := e.Cause.(validator.ValidationErrors); ok {
		verrs = errs
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Field())
	}
	return out
}
