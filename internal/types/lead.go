package types

import (
	"github.com/jonathan/property-etl/internal/fieldmap"
)

// Lead holds acquisition metadata for a property.
type Lead struct {
	PropertyKey          string   `json:"property_key" validate:"required"`
	ReviewedStatus       *string  `json:"reviewed_status"`
	MostRecentStatus     *string  `json:"most_recent_status"`
	Source               *string  `json:"source"`
	Occupancy            *string  `json:"occupancy"`
	NetYield             *float64 `json:"net_yield"`
	IRR                  *float64 `json:"irr"`
	SellingReason        *string  `json:"selling_reason"`
	SellerRetainedBroker *bool    `json:"seller_retained_broker"`
	FinalReviewer        *string  `json:"final_reviewer"`
}

var leadFields = fieldTable[Lead]{
	text(func(l *Lead) **string { return &l.ReviewedStatus }, "reviewed_status"),
	text(func(l *Lead) **string { return &l.MostRecentStatus }, "most_recent_status"),
	text(func(l *Lead) **string { return &l.Source }, "source"),
	text(func(l *Lead) **string { return &l.Occupancy }, "occupancy"),
	float(func(l *Lead) **float64 { return &l.NetYield }, "net_yield"),
	float(func(l *Lead) **float64 { return &l.IRR }, "irr"),
	text(func(l *Lead) **string { return &l.SellingReason }, "selling_reason"),
	flag(func(l *Lead) **bool { return &l.SellerRetainedBroker }, "seller_retained_broker"),
	text(func(l *Lead) **string { return &l.FinalReviewer }, "final_reviewer"),
}

// NewLead builds a validated Lead from a projected payload.
func NewLead(key string, payload fieldmap.Payload) (*Lead, error) {
	l := &Lead{PropertyKey: key}
	leadFields.apply(l, payload)

	if err := validateEntity(l); err != nil {
		return nil, &ConstructionError{Entity: EntityLead, Key: key, Cause: err}
	}
	return l, nil
}

// HasPayload reports whether any non-key attribute is set.
func (l *Lead) HasPayload() bool {
	return hasValue(
		l.ReviewedStatus, l.MostRecentStatus, l.Source, l.Occupancy,
		l.NetYield, l.IRR, l.SellingReason, l.SellerRetainedBroker, l.FinalReviewer,
	)
}
