// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/property-etl/internal/fieldmap"
	"github.com/jonathan/property-etl/internal/pipeline"
	"github.com/jonathan/property-etl/internal/transform"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSummary outputs the entity counts and drop statistics of a run.
func (p *Printer) PrintSummary(s pipeline.Summary) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Run:                   %s\n", s.RunID))
	sb.WriteString(fmt.Sprintf("Records read:          %d\n", s.Records))
	sb.WriteString(fmt.Sprintf("Duplicates dropped:    %d\n", s.DuplicatesDropped))
	sb.WriteString(fmt.Sprintf("Construction failures: %d\n", s.ConstructionFailures))
	if s.CoercedScenarios > 0 {
		sb.WriteString(fmt.Sprintf("Coerced scenarios:     %d\n", s.CoercedScenarios))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Properties:  %d\n", s.Properties))
	sb.WriteString(fmt.Sprintf("Leads:       %d\n", s.Leads))
	sb.WriteString(fmt.Sprintf("Valuations:  %d\n", s.Valuations))
	sb.WriteString(fmt.Sprintf("Rehabs:      %d\n", s.Rehabs))
	sb.WriteString(fmt.Sprintf("HOAs:        %d\n", s.HOAs))
	sb.WriteString(fmt.Sprintf("Taxes:       %d", s.Taxes))

	dropped := make([]string, 0, len(s.DroppedEmpty))
	for entity, n := range s.DroppedEmpty {
		if n > 0 {
			dropped = append(dropped, fmt.Sprintf("%s=%d", entity, n))
		}
	}
	if len(dropped) > 0 {
		sort.Strings(dropped)
		sb.WriteString("\n\nDropped empty: " + strings.Join(dropped, ", "))
	}

	p.printBox("RUN SUMMARY", sb.String())
}

// PrintProperties outputs the first properties of a bundle.
func (p *Printer) PrintProperties(b *transform.Bundle) {
	if b == nil || len(b.Properties) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(b.Properties), maxItemsToShow)
	for i := 0; i < count; i++ {
		prop := b.Properties[i]
		sb.WriteString(prop.PropertyKey)
		if prop.StreetAddress != nil {
			sb.WriteString("  " + *prop.StreetAddress)
		}
		if prop.City != nil {
			sb.WriteString(", " + *prop.City)
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(b.Properties) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more properties", len(b.Properties)-maxItemsToShow))
	}

	p.printBox("PROPERTIES", sb.String())
}

// PrintMapping outputs the source-to-attribute pairs of one table.
func (p *Printer) PrintMapping(table string, mapping fieldmap.Mapping) {
	var sb strings.Builder
	if len(mapping) == 0 {
		sb.WriteString("(no mapped fields)")
	}
	for i, pair := range mapping {
		sb.WriteString(fmt.Sprintf("%-28s -> %s", pair.Source, pair.Target))
		if i < len(mapping)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("%s (%d fields)", strings.ToUpper(table), len(mapping)), sb.String())
}
