package types

import (
	"github.com/shopspring/decimal"

	"github.com/jonathan/property-etl/internal/fieldmap"
)

// ValuationScenario is one ranked valuation estimate for a property.
type ValuationScenario struct {
	PropertyKey   string           `json:"property_key" validate:"required"`
	ScenarioRank  int              `json:"scenario_rank" validate:"required,min=1"`
	ListPrice     *decimal.Decimal `json:"list_price"`
	PreviousRent  *decimal.Decimal `json:"previous_rent"`
	ARV           *decimal.Decimal `json:"arv"`
	ExpectedRent  *decimal.Decimal `json:"expected_rent"`
	RentZestimate *decimal.Decimal `json:"rent_zestimate"`
	LowFMR        *decimal.Decimal `json:"low_fmr"`
	HighFMR       *decimal.Decimal `json:"high_fmr"`
	RedfinValue   *decimal.Decimal `json:"redfin_value"`
	Zestimate     *decimal.Decimal `json:"zestimate"`
}

var valuationFields = fieldTable[ValuationScenario]{
	money(func(v *ValuationScenario) **decimal.Decimal { return &v.ListPrice }, "list_price"),
	money(func(v *ValuationScenario) **decimal.Decimal { return &v.PreviousRent }, "previous_rent"),
	money(func(v *ValuationScenario) **decimal.Decimal { return &v.ARV }, "arv"),
	money(func(v *ValuationScenario) **decimal.Decimal { return &v.ExpectedRent }, "expected_rent"),
	money(func(v *ValuationScenario) **decimal.Decimal { return &v.RentZestimate }, "rent_zestimate"),
	money(func(v *ValuationScenario) **decimal.Decimal { return &v.LowFMR }, "low_fmr"),
	money(func(v *ValuationScenario) **decimal.Decimal { return &v.HighFMR }, "high_fmr"),
	money(func(v *ValuationScenario) **decimal.Decimal { return &v.RedfinValue }, "redfin_value"),
	money(func(v *ValuationScenario) **decimal.Decimal { return &v.Zestimate }, "zestimate"),
}

// NewValuationScenario builds a validated valuation row.
func NewValuationScenario(key string, rank int, payload fieldmap.Payload) (*ValuationScenario, error) {
	v := &ValuationScenario{PropertyKey: key, ScenarioRank: rank}
	valuationFields.apply(v, payload)

	if err := validateEntity(v); err != nil {
		return nil, &ConstructionError{Entity: EntityValuation, Key: key, Rank: &rank, Cause: err}
	}
	return v, nil
}

// HasPayload reports whether any valuation figure is set.
func (v *ValuationScenario) HasPayload() bool {
	return hasValue(
		v.ListPrice, v.PreviousRent, v.ARV, v.ExpectedRent, v.RentZestimate,
		v.LowFMR, v.HighFMR, v.RedfinValue, v.Zestimate,
	)
}

// RehabScenario is one ranked rehab estimate with its work-item flags.
type RehabScenario struct {
	PropertyKey       string           `json:"property_key" validate:"required"`
	ScenarioRank      int              `json:"scenario_rank" validate:"required,min=1"`
	UnderwritingRehab *decimal.Decimal `json:"underwriting_rehab"`
	RehabCalculation  *decimal.Decimal `json:"rehab_calculation"`
	Paint             *bool            `json:"paint"`
	FlooringFlag      *bool            `json:"flooring_flag"`
	FoundationFlag    *bool            `json:"foundation_flag"`
	RoofFlag          *bool            `json:"roof_flag"`
	HVACFlag          *bool            `json:"hvac_flag"`
	KitchenFlag       *bool            `json:"kitchen_flag"`
	BathroomFlag      *bool            `json:"bathroom_flag"`
	AppliancesFlag    *bool            `json:"appliances_flag"`
	WindowsFlag       *bool            `json:"windows_flag"`
	LandscapingFlag   *bool            `json:"landscaping_flag"`
	TrashoutFlag      *bool            `json:"trashout_flag"`
}

var rehabFields = fieldTable[RehabScenario]{
	money(func(r *RehabScenario) **decimal.Decimal { return &r.UnderwritingRehab }, "underwriting_rehab"),
	money(func(r *RehabScenario) **decimal.Decimal { return &r.RehabCalculation }, "rehab_calculation"),
	flag(func(r *RehabScenario) **bool { return &r.Paint }, "paint"),
	flag(func(r *RehabScenario) **bool { return &r.FlooringFlag }, "flooring_flag"),
	flag(func(r *RehabScenario) **bool { return &r.FoundationFlag }, "foundation_flag"),
	flag(func(r *RehabScenario) **bool { return &r.RoofFlag }, "roof_flag"),
	flag(func(r *RehabScenario) **bool { return &r.HVACFlag }, "hvac_flag"),
	flag(func(r *RehabScenario) **bool { return &r.KitchenFlag }, "kitchen_flag"),
	flag(func(r *RehabScenario) **bool { return &r.BathroomFlag }, "bathroom_flag"),
	flag(func(r *RehabScenario) **bool { return &r.AppliancesFlag }, "appliances_flag"),
	flag(func(r *RehabScenario) **bool { return &r.WindowsFlag }, "windows_flag"),
	flag(func(r *RehabScenario) **bool { return &r.LandscapingFlag }, "landscaping_flag"),
	flag(func(r *RehabScenario) **bool { return &r.TrashoutFlag }, "trashout_flag"),
}

// NewRehabScenario builds a validated rehab row.
func NewRehabScenario(key string, rank int, payload fieldmap.Payload) (*RehabScenario, error) {
	r := &RehabScenario{PropertyKey: key, ScenarioRank: rank}
	rehabFields.apply(r, payload)

	if err := validateEntity(r); err != nil {
		return nil, &ConstructionError{Entity: EntityRehab, Key: key, Rank: &rank, Cause: err}
	}
	return r, nil
}

// HasPayload reports whether any cost or flag is set.
func (r *RehabScenario) HasPayload() bool {
	return hasValue(
		r.UnderwritingRehab, r.RehabCalculation, r.Paint, r.FlooringFlag,
		r.FoundationFlag, r.RoofFlag, r.HVACFlag, r.KitchenFlag, r.BathroomFlag,
		r.AppliancesFlag, r.WindowsFlag, r.LandscapingFlag, r.TrashoutFlag,
	)
}

// HOAScenario is one ranked HOA dues entry.
type HOAScenario struct {
	PropertyKey  string           `json:"property_key" validate:"required"`
	ScenarioRank int              `json:"scenario_rank" validate:"required,min=1"`
	HOAAmount    *decimal.Decimal `json:"hoa_amount"`
	HOAFlag      *bool            `json:"hoa_flag"`
}

var hoaFields = fieldTable[HOAScenario]{
	money(func(h *HOAScenario) **decimal.Decimal { return &h.HOAAmount }, "hoa", "hoa_amount"),
	flag(func(h *HOAScenario) **bool { return &h.HOAFlag }, "hoa_flag"),
}

// NewHOAScenario builds a validated HOA row.
func NewHOAScenario(key string, rank int, payload fieldmap.Payload) (*HOAScenario, error) {
	h := &HOAScenario{PropertyKey: key, ScenarioRank: rank}
	hoaFields.apply(h, payload)

	if err := validateEntity(h); err != nil {
		return nil, &ConstructionError{Entity: EntityHOA, Key: key, Rank: &rank, Cause: err}
	}
	return h, nil
}

// HasPayload reports whether the amount or flag is set.
func (h *HOAScenario) HasPayload() bool {
	return hasValue(h.HOAAmount, h.HOAFlag)
}
