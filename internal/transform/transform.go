// Package transform assembles the normalized bundle from a batch of raw
// records: one property per distinct key plus its dependent entities.
package transform

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/property-etl/internal/fieldmap"
	"github.com/jonathan/property-etl/internal/logger"
	"github.com/jonathan/property-etl/internal/metrics"
	"github.com/jonathan/property-etl/internal/propertykey"
	"github.com/jonathan/property-etl/internal/rawvalue"
	"github.com/jonathan/property-etl/internal/types"
)

// Bundle is the output of one run. Each collection keeps input order.
type Bundle struct {
	Properties []*types.Property          `json:"properties"`
	Leads      []*types.Lead              `json:"leads"`
	Valuations []*types.ValuationScenario `json:"valuations"`
	Rehabs     []*types.RehabScenario     `json:"rehabs"`
	HOAs       []*types.HOAScenario       `json:"hoas"`
	Taxes      []*types.Tax               `json:"taxes"`
	Stats      Stats                      `json:"-"`
}

// Counts returns the number of entities per entity name.
func (b *Bundle) Counts() map[string]int {
	return map[string]int{
		types.EntityProperty:  len(b.Properties),
		types.EntityLead:      len(b.Leads),
		types.EntityValuation: len(b.Valuations),
		types.EntityRehab:     len(b.Rehabs),
		types.EntityHOA:       len(b.HOAs),
		types.EntityTax:       len(b.Taxes),
	}
}

// Stats records what the assembler dropped and why.
type Stats struct {
	Records              int            `json:"records"`
	DuplicatesDropped    int            `json:"duplicates_dropped"`
	ConstructionFailures int            `json:"construction_failures"`
	CoercedScenarios     int            `json:"coerced_scenarios"`
	DroppedEmpty         map[string]int `json:"dropped_empty"`
}

// Option configures a Transformer.
type Option func(*Transformer)

func WithLogger(l logger.Logger) Option {
	return func(t *Transformer) { t.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Transformer) { t.metrics = m }
}

// WithClock overrides the clock used for created_at and the year_built bound.
func WithClock(now func() time.Time) Option {
	return func(t *Transformer) { t.now = now }
}

// Transformer turns raw records into a Bundle using resolved field mappings.
type Transformer struct {
	maps    fieldmap.TableMaps
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func New(maps fieldmap.TableMaps, opts ...Option) *Transformer {
	t := &Transformer{
		maps: maps,
		log:  logger.FromContext(context.Background()),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform runs one ordered pass over records. Records whose key was already
// seen are dropped with all their dependents.
func (t *Transformer) Transform(records []rawvalue.Record) *Bundle {
	t.warnIfUnmapped()
	createdAt := t.now().UTC()

	m := newMerger(t)
	for i, record := range records {
		key := propertykey.Derive(record, i+1)
		if m.seen[key] {
			m.duplicate(key, i+1)
			continue
		}
		m.add(t.build(key, record, createdAt))
	}
	return m.finish()
}

// TransformParallel builds records across workers goroutines and merges the
// results by original position, so the first occurrence of a key still wins.
func (t *Transformer) TransformParallel(ctx context.Context, records []rawvalue.Record, workers int) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if workers <= 1 || len(records) < 2 {
		return t.Transform(records), nil
	}
	if workers > len(records) {
		workers = len(records)
	}

	t.warnIfUnmapped()
	createdAt := t.now().UTC()
	results := make([]*recordResult, len(records))
	shard := (len(records) + workers - 1) / workers

	g, gCtx := errgroup.WithContext(ctx)
	for start := 0; start < len(records); start += shard {
		end := min(start+shard, len(records))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gCtx.Err(); err != nil {
					return err
				}
				key := propertykey.Derive(records[i], i+1)
				results[i] = t.build(key, records[i], createdAt)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to transform records: %w", err)
	}

	m := newMerger(t)
	for i, res := range results {
		if m.seen[res.key] {
			m.duplicate(res.key, i+1)
			continue
		}
		m.add(res)
	}
	return m.finish(), nil
}

func (t *Transformer) warnIfUnmapped() {
	if t.maps.Empty() {
		t.log.Warn("field configuration maps no columns; entities will carry keys only")
	}
}
