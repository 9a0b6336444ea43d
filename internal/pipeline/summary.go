package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/property-etl/internal/transform"
	"github.com/jonathan/property-etl/internal/types"
)

// Summary counts what a run produced and dropped.
type Summary struct {
	RunID                string         `json:"-"`
	Properties           int            `json:"properties"`
	Leads                int            `json:"leads"`
	Valuations           int            `json:"valuations"`
	Rehabs               int            `json:"rehabs"`
	HOAs                 int            `json:"hoas"`
	Taxes                int            `json:"taxes"`
	Records              int            `json:"records"`
	DuplicatesDropped    int            `json:"duplicates_dropped"`
	ConstructionFailures int            `json:"construction_failures"`
	CoercedScenarios     int            `json:"coerced_scenarios"`
	DroppedEmpty         map[string]int `json:"dropped_empty"`
}

func NewSummary(runID string, b *transform.Bundle) Summary {
	counts := b.Counts()
	return Summary{
		RunID:                runID,
		Properties:           counts[types.EntityProperty],
		Leads:                counts[types.EntityLead],
		Valuations:           counts[types.EntityValuation],
		Rehabs:               counts[types.EntityRehab],
		HOAs:                 counts[types.EntityHOA],
		Taxes:                counts[types.EntityTax],
		Records:              b.Stats.Records,
		DuplicatesDropped:    b.Stats.DuplicatesDropped,
		ConstructionFailures: b.Stats.ConstructionFailures,
		CoercedScenarios:     b.Stats.CoercedScenarios,
		DroppedEmpty:         b.Stats.DroppedEmpty,
	}
}

// KeyVals flattens the summary for structured logging.
func (s Summary) KeyVals() []any {
	return []any{
		"properties", s.Properties,
		"leads", s.Leads,
		"valuations", s.Valuations,
		"rehabs", s.Rehabs,
		"hoas", s.HOAs,
		"taxes", s.Taxes,
		"duplicates_dropped", s.DuplicatesDropped,
		"construction_failures", s.ConstructionFailures,
	}
}

// Export is the on-disk form of a bundle.
type Export struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Summary     Summary   `json:"summary"`
	*transform.Bundle
}

func NewExport(summary Summary, b *transform.Bundle, generatedAt time.Time) *Export {
	return &Export{
		RunID:       summary.RunID,
		GeneratedAt: generatedAt.UTC(),
		Summary:     summary,
		Bundle:      b,
	}
}

// WriteBundle writes the export as indented JSON, creating parent
// directories as needed.
func WriteBundle(path string, export *Export) error {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write bundle %s: %w", path, err)
	}
	return nil
}
