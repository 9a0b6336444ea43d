package types

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jonathan/property-etl/internal/cleaning"
	"github.com/jonathan/property-etl/internal/fieldmap"
	"github.com/jonathan/property-etl/internal/rawvalue"
)

// field binds one entity attribute to the payload names it accepts and the
// normalizer that fills it. Names are tried in order; the first present wins.
type field[T any] struct {
	names []string
	set   func(entity *T, v rawvalue.Value)
}

type fieldTable[T any] []field[T]

// apply fills entity from payload. Payload names with no matching field are
// ignored.
func (ft fieldTable[T]) apply(entity *T, payload fieldmap.Payload) {
	for _, f := range ft {
		for _, name := range f.names {
			if v, ok := payload[name]; ok {
				f.set(entity, v)
				break
			}
		}
	}
}

func text[T any](ref func(*T) **string, names ...string) field[T] {
	return field[T]{names: names, set: func(e *T, v rawvalue.Value) { *ref(e) = cleaning.String(v) }}
}

func flag[T any](ref func(*T) **bool, names ...string) field[T] {
	return field[T]{names: names, set: func(e *T, v rawvalue.Value) { *ref(e) = cleaning.Bool(v) }}
}

func money[T any](ref func(*T) **decimal.Decimal, names ...string) field[T] {
	return field[T]{names: names, set: func(e *T, v rawvalue.Value) { *ref(e) = cleaning.Decimal(v) }}
}

func integer[T any](ref func(*T) **int64, names ...string) field[T] {
	return field[T]{names: names, set: func(e *T, v rawvalue.Value) { *ref(e) = cleaning.Int(v) }}
}

func float[T any](ref func(*T) **float64, names ...string) field[T] {
	return field[T]{names: names, set: func(e *T, v rawvalue.Value) { *ref(e) = cleaning.Float(v) }}
}

// NormalizeZip strips spaces and hyphens and left-pads purely numeric codes
// to five digits. Longer numeric codes are kept at their full length.
func NormalizeZip(v rawvalue.Value) *string {
	zip := cleaning.String(v)
	if zip == nil {
		return nil
	}
	sanitized := strings.NewReplacer(" ", "", "-", "").Replace(*zip)
	if sanitized == "" || strings.TrimLeft(sanitized, "0123456789") != "" {
		return zip
	}
	if len(sanitized) < 5 {
		sanitized = strings.Repeat("0", 5-len(sanitized)) + sanitized
	}
	return &sanitized
}

// Year bounds for year_built.
const minYearBuilt = 1700

// NormalizeYearBuilt discards years at or before 1700 and years after
// currentYear.
func NormalizeYearBuilt(v rawvalue.Value, currentYear int) *int64 {
	year := cleaning.Int(v)
	if year == nil {
		return nil
	}
	if *year <= minYearBuilt || *year > int64(currentYear) {
		return nil
	}
	return year
}

// hasValue reports whether any of the given optional attributes is set.
// Strings must also be non-empty.
func hasValue(attrs ...any) bool {
	for _, attr := range attrs {
		switch a := attr.(type) {
		case *string:
			if a != nil && *a != "" {
				return true
			}
		case *bool:
			if a != nil {
				return true
			}
		case *decimal.Decimal:
			if a != nil {
				return true
			}
		case *int64:
			if a != nil {
				return true
			}
		case *float64:
			if a != nil {
				return true
			}
		}
	}
	return false
}
