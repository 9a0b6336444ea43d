package transform

import (
	"time"

	"github.com/jonathan/property-etl/internal/rawvalue"
	"github.com/jonathan/property-etl/internal/scenario"
	"github.com/jonathan/property-etl/internal/types"
)

// recordResult holds everything one raw record contributes to the bundle.
// It is built independently of other records and merged afterwards.
type recordResult struct {
	key        string
	property   *types.Property
	lead       *types.Lead
	tax        *types.Tax
	valuations []*types.ValuationScenario
	rehabs     []*types.RehabScenario
	hoas       []*types.HOAScenario

	failures     []error
	droppedEmpty map[string]int
	coerced      int
}

type payloadEntity interface {
	HasPayload() bool
}

// keep reports whether a constructed dependent should be emitted, recording
// the reason when it is not.
func (r *recordResult) keep(entity string, e payloadEntity, err error) bool {
	if err != nil {
		r.failures = append(r.failures, err)
		return false
	}
	if !e.HasPayload() {
		r.droppedEmpty[entity]++
		return false
	}
	return true
}

func (t *Transformer) build(key string, record rawvalue.Record, createdAt time.Time) *recordResult {
	res := &recordResult{key: key, droppedEmpty: make(map[string]int)}

	property, err := types.NewProperty(key, t.maps.Property.Project(record), createdAt)
	if err != nil {
		res.failures = append(res.failures, err)
		return res
	}
	res.property = property

	if lead, err := types.NewLead(key, t.maps.Leads.Project(record)); res.keep(types.EntityLead, lead, err) {
		res.lead = lead
	}
	if tax, err := types.NewTax(key, t.maps.Taxes.Project(record)); res.keep(types.EntityTax, tax, err) {
		res.tax = tax
	}

	for _, s := range res.scenarios(record, scenario.KeyValuation) {
		v, err := types.NewValuationScenario(key, s.Rank, t.maps.Valuation.Project(s.Fields))
		if res.keep(types.EntityValuation, v, err) {
			res.valuations = append(res.valuations, v)
		}
	}
	for _, s := range res.scenarios(record, scenario.KeyRehab) {
		r, err := types.NewRehabScenario(key, s.Rank, t.maps.Rehab.Project(s.Fields))
		if res.keep(types.EntityRehab, r, err) {
			res.rehabs = append(res.rehabs, r)
		}
	}
	for _, s := range res.scenarios(record, scenario.KeyHOA) {
		h, err := types.NewHOAScenario(key, s.Rank, t.maps.HOA.Project(s.Fields))
		if res.keep(types.EntityHOA, h, err) {
			res.hoas = append(res.hoas, h)
		}
	}
	return res
}

func (r *recordResult) scenarios(record rawvalue.Record, listKey string) []scenario.Scenario {
	list := scenario.FromRecord(record, listKey)
	for _, s := range list {
		if s.Coerced {
			r.coerced++
		}
	}
	return list
}

// merger appends record results to a bundle in call order and tracks keys.
type merger struct {
	t      *Transformer
	seen   map[string]bool
	bundle *Bundle
}

func newMerger(t *Transformer) *merger {
	return &merger{
		t:    t,
		seen: make(map[string]bool),
		bundle: &Bundle{
			Properties: []*types.Property{},
			Leads:      []*types.Lead{},
			Valuations: []*types.ValuationScenario{},
			Rehabs:     []*types.RehabScenario{},
			HOAs:       []*types.HOAScenario{},
			Taxes:      []*types.Tax{},
			Stats:      Stats{DroppedEmpty: make(map[string]int)},
		},
	}
}

func (m *merger) duplicate(key string, position int) {
	m.bundle.Stats.Records++
	m.bundle.Stats.DuplicatesDropped++
	m.t.metrics.RecordSeen()
	m.t.metrics.DuplicateDropped()
	m.t.log.Debug("dropping duplicate record", "property_key", key, "position", position)
}

func (m *merger) add(res *recordResult) {
	b := m.bundle
	b.Stats.Records++
	m.t.metrics.RecordSeen()
	m.seen[res.key] = true

	for _, err := range res.failures {
		b.Stats.ConstructionFailures++
		m.t.metrics.ConstructionFailed()
		m.t.log.Warn("entity construction failed", "property_key", res.key, "error", err)
	}
	for entity, n := range res.droppedEmpty {
		b.Stats.DroppedEmpty[entity] += n
		for range n {
			m.t.metrics.DroppedEmpty(entity)
		}
	}
	if res.coerced > 0 {
		b.Stats.CoercedScenarios += res.coerced
		m.t.log.Debug("non-mapping scenario elements replaced by empty records",
			"property_key", res.key, "count", res.coerced)
	}
	if res.property == nil {
		return
	}

	b.Properties = append(b.Properties, res.property)
	m.emitted(types.EntityProperty, 1)
	if res.lead != nil {
		b.Leads = append(b.Leads, res.lead)
		m.emitted(types.EntityLead, 1)
	}
	if res.tax != nil {
		b.Taxes = append(b.Taxes, res.tax)
		m.emitted(types.EntityTax, 1)
	}
	b.Valuations = append(b.Valuations, res.valuations...)
	m.emitted(types.EntityValuation, len(res.valuations))
	b.Rehabs = append(b.Rehabs, res.rehabs...)
	m.emitted(types.EntityRehab, len(res.rehabs))
	b.HOAs = append(b.HOAs, res.hoas...)
	m.emitted(types.EntityHOA, len(res.hoas))
}

func (m *merger) emitted(entity string, n int) {
	for range n {
		m.t.metrics.Emitted(entity)
	}
}

func (m *merger) finish() *Bundle {
	b := m.bundle
	m.t.log.Info("bundle assembled",
		"records", b.Stats.Records,
		"properties", len(b.Properties),
		"duplicates_dropped", b.Stats.DuplicatesDropped,
		"construction_failures", b.Stats.ConstructionFailures,
	)
	return b
}
