package db

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jonathan/property-etl/internal/transform"
	"github.com/jonathan/property-etl/internal/types"
)

// table describes one target table: its columns and the rows of a bundle
// destined for it, in insert order.
type table struct {
	name    string
	columns []string
	rows    func(b *transform.Bundle) [][]any
}

var propertyTable = table{
	name: types.EntityProperty,
	columns: []string{
		"property_key", "property_title", "address", "market", "flood",
		"street_address", "city", "state", "zip_code", "property_type",
		"highway", "train", "tax_rate", "sqft_basement", "htw", "pool",
		"commercial", "water", "sewage", "year_built", "sqft_mixed_use",
		"sqft_total", "parking", "bed", "bath", "basement", "layout",
		"rent_restricted", "neighborhood_rating", "latitude", "longitude",
		"subdivision", "school_average", "created_at",
	},
	rows: func(b *transform.Bundle) [][]any {
		out := make([][]any, 0, len(b.Properties))
		for _, p := range b.Properties {
			out = append(out, []any{
				p.PropertyKey, nullableString(p.PropertyTitle), nullableString(p.Address),
				nullableString(p.Market), nullableString(p.Flood), nullableString(p.StreetAddress),
				nullableString(p.City), nullableString(p.State), nullableString(p.ZipCode),
				nullableString(p.PropertyType), nullableString(p.Highway), nullableString(p.Train),
				nullableDecimal(p.TaxRate), nullableInt(p.SqftBasement), nullableString(p.HTW),
				nullableBool(p.Pool), nullableBool(p.Commercial), nullableString(p.Water),
				nullableString(p.Sewage), nullableInt(p.YearBuilt), nullableInt(p.SqftMixedUse),
				nullableInt(p.SqftTotal), nullableString(p.Parking), nullableInt(p.Bed),
				nullableFloat(p.Bath), nullableBool(p.Basement), nullableString(p.Layout),
				nullableBool(p.RentRestricted), nullableInt(p.NeighborhoodRating),
				nullableFloat(p.Latitude), nullableFloat(p.Longitude), nullableString(p.Subdivision),
				nullableFloat(p.SchoolAverage), nullableTime(p.CreatedAt),
			})
		}
		return out
	},
}

var leadsTable = table{
	name: types.EntityLead,
	columns: []string{
		"property_key", "reviewed_status", "most_recent_status", "source",
		"occupancy", "net_yield", "irr", "selling_reason",
		"seller_retained_broker", "final_reviewer",
	},
	rows: func(b *transform.Bundle) [][]any {
		out := make([][]any, 0, len(b.Leads))
		for _, l := range b.Leads {
			out = append(out, []any{
				l.PropertyKey, nullableString(l.ReviewedStatus), nullableString(l.MostRecentStatus),
				nullableString(l.Source), nullableString(l.Occupancy), nullableFloat(l.NetYield),
				nullableFloat(l.IRR), nullableString(l.SellingReason),
				nullableBool(l.SellerRetainedBroker), nullableString(l.FinalReviewer),
			})
		}
		return out
	},
}

var valuationTable = table{
	name: types.EntityValuation,
	columns: []string{
		"property_key", "scenario_rank", "list_price", "previous_rent", "arv",
		"expected_rent", "rent_zestimate", "low_fmr", "high_fmr",
		"redfin_value", "zestimate",
	},
	rows: func(b *transform.Bundle) [][]any {
		out := make([][]any, 0, len(b.Valuations))
		for _, v := range b.Valuations {
			out = append(out, []any{
				v.PropertyKey, v.ScenarioRank, nullableDecimal(v.ListPrice),
				nullableDecimal(v.PreviousRent), nullableDecimal(v.ARV),
				nullableDecimal(v.ExpectedRent), nullableDecimal(v.RentZestimate),
				nullableDecimal(v.LowFMR), nullableDecimal(v.HighFMR),
				nullableDecimal(v.RedfinValue), nullableDecimal(v.Zestimate),
			})
		}
		return out
	},
}

var rehabTable = table{
	name: types.EntityRehab,
	columns: []string{
		"property_key", "scenario_rank", "underwriting_rehab", "rehab_calculation",
		"paint", "flooring_flag", "foundation_flag", "roof_flag", "hvac_flag",
		"kitchen_flag", "bathroom_flag", "appliances_flag", "windows_flag",
		"landscaping_flag", "trashout_flag",
	},
	rows: func(b *transform.Bundle) [][]any {
		out := make([][]any, 0, len(b.Rehabs))
		for _, r := range b.Rehabs {
			out = append(out, []any{
				r.PropertyKey, r.ScenarioRank, nullableDecimal(r.UnderwritingRehab),
				nullableDecimal(r.RehabCalculation), nullableBool(r.Paint),
				nullableBool(r.FlooringFlag), nullableBool(r.FoundationFlag),
				nullableBool(r.RoofFlag), nullableBool(r.HVACFlag), nullableBool(r.KitchenFlag),
				nullableBool(r.BathroomFlag), nullableBool(r.AppliancesFlag),
				nullableBool(r.WindowsFlag), nullableBool(r.LandscapingFlag),
				nullableBool(r.TrashoutFlag),
			})
		}
		return out
	},
}

var hoaTable = table{
	name:    types.EntityHOA,
	columns: []string{"property_key", "scenario_rank", "hoa_amount", "hoa_flag"},
	rows: func(b *transform.Bundle) [][]any {
		out := make([][]any, 0, len(b.HOAs))
		for _, h := range b.HOAs {
			out = append(out, []any{h.PropertyKey, h.ScenarioRank, nullableDecimal(h.HOAAmount), nullableBool(h.HOAFlag)})
		}
		return out
	},
}

var taxesTable = table{
	name:    types.EntityTax,
	columns: []string{"property_key", "amount"},
	rows: func(b *transform.Bundle) [][]any {
		out := make([][]any, 0, len(b.Taxes))
		for _, t := range b.Taxes {
			out = append(out, []any{t.PropertyKey, nullableDecimal(t.Amount)})
		}
		return out
	},
}

// insertOrder lists tables parents first; deletes run in reverse.
var insertOrder = []table{propertyTable, leadsTable, valuationTable, rehabTable, hoaTable, taxesTable}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func nullableInt(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// Decimals are sent as text so NUMERIC columns receive them without float
// conversion.
func nullableDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
