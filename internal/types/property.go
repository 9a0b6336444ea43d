// Package types defines the canonical entities produced by the normalization
// engine. Every optional attribute is a pointer: nil is an explicit null.
package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jonathan/property-etl/internal/fieldmap"
	"github.com/jonathan/property-etl/internal/rawvalue"
)

// Property is the core entity stored in the property table.
type Property struct {
	PropertyKey        string           `json:"property_key" validate:"required"`
	PropertyTitle      *string          `json:"property_title"`
	Address            *string          `json:"address"`
	Market             *string          `json:"market"`
	Flood              *string          `json:"flood"`
	StreetAddress      *string          `json:"street_address"`
	City               *string          `json:"city"`
	State              *string          `json:"state"`
	ZipCode            *string          `json:"zip_code"`
	PropertyType       *string          `json:"property_type"`
	Highway            *string          `json:"highway"`
	Train              *string          `json:"train"`
	TaxRate            *decimal.Decimal `json:"tax_rate"`
	SqftBasement       *int64           `json:"sqft_basement"`
	HTW                *string          `json:"htw"`
	Pool               *bool            `json:"pool"`
	Commercial         *bool            `json:"commercial"`
	Water              *string          `json:"water"`
	Sewage             *string          `json:"sewage"`
	YearBuilt          *int64           `json:"year_built"`
	SqftMixedUse       *int64           `json:"sqft_mixed_use"`
	SqftTotal          *int64           `json:"sqft_total"`
	Parking            *string          `json:"parking"`
	Bed                *int64           `json:"bed"`
	Bath               *float64         `json:"bath"`
	Basement           *bool            `json:"basement"`
	Layout             *string          `json:"layout"`
	RentRestricted     *bool            `json:"rent_restricted"`
	NeighborhoodRating *int64           `json:"neighborhood_rating"`
	Latitude           *float64         `json:"latitude"`
	Longitude          *float64         `json:"longitude"`
	Subdivision        *string          `json:"subdivision"`
	SchoolAverage      *float64         `json:"school_average"`
	CreatedAt          time.Time        `json:"created_at"`
}

var propertyFields = fieldTable[Property]{
	text(func(p *Property) **string { return &p.PropertyTitle }, "property_title"),
	text(func(p *Property) **string { return &p.Address }, "address"),
	text(func(p *Property) **string { return &p.Market }, "market"),
	text(func(p *Property) **string { return &p.Flood }, "flood"),
	text(func(p *Property) **string { return &p.StreetAddress }, "street_address"),
	text(func(p *Property) **string { return &p.City }, "city"),
	text(func(p *Property) **string { return &p.State }, "state"),
	{
		names: []string{"zip", "zip_code"},
		set:   func(p *Property, v rawvalue.Value) { p.ZipCode = NormalizeZip(v) },
	},
	text(func(p *Property) **string { return &p.PropertyType }, "property_type"),
	text(func(p *Property) **string { return &p.Highway }, "highway"),
	text(func(p *Property) **string { return &p.Train }, "train"),
	money(func(p *Property) **decimal.Decimal { return &p.TaxRate }, "tax_rate"),
	integer(func(p *Property) **int64 { return &p.SqftBasement }, "sqft_basement"),
	text(func(p *Property) **string { return &p.HTW }, "htw"),
	flag(func(p *Property) **bool { return &p.Pool }, "pool"),
	flag(func(p *Property) **bool { return &p.Commercial }, "commercial"),
	text(func(p *Property) **string { return &p.Water }, "water"),
	text(func(p *Property) **string { return &p.Sewage }, "sewage"),
	{
		// CreatedAt is set before fields are applied; its year is the upper bound.
		names: []string{"year_built"},
		set:   func(p *Property, v rawvalue.Value) { p.YearBuilt = NormalizeYearBuilt(v, p.CreatedAt.Year()) },
	},
	integer(func(p *Property) **int64 { return &p.SqftMixedUse }, "sqft_mu", "sqft_mixed_use"),
	integer(func(p *Property) **int64 { return &p.SqftTotal }, "sqft_total"),
	text(func(p *Property) **string { return &p.Parking }, "parking"),
	integer(func(p *Property) **int64 { return &p.Bed }, "bed"),
	float(func(p *Property) **float64 { return &p.Bath }, "bath"),
	flag(func(p *Property) **bool { return &p.Basement }, "basementyesno", "basement"),
	text(func(p *Property) **string { return &p.Layout }, "layout"),
	flag(func(p *Property) **bool { return &p.RentRestricted }, "rent_restricted"),
	integer(func(p *Property) **int64 { return &p.NeighborhoodRating }, "neighborhood_rating"),
	float(func(p *Property) **float64 { return &p.Latitude }, "latitude"),
	float(func(p *Property) **float64 { return &p.Longitude }, "longitude"),
	text(func(p *Property) **string { return &p.Subdivision }, "subdivision"),
	float(func(p *Property) **float64 { return &p.SchoolAverage }, "school_average"),
}

// NewProperty builds a validated Property from a projected payload.
// createdAt is stored in UTC and bounds year_built.
func NewProperty(key string, payload fieldmap.Payload, createdAt time.Time) (*Property, error) {
	p := &Property{PropertyKey: key, CreatedAt: createdAt.UTC()}
	propertyFields.apply(p, payload)

	if err := validateEntity(p); err != nil {
		return nil, &ConstructionError{Entity: EntityProperty, Key: key, Cause: err}
	}
	return p, nil
}
