// Package fieldmap resolves which raw source fields feed each target table
// and under which canonical attribute name.
package fieldmap

import (
	"strings"
	"unicode"

	"github.com/jonathan/property-etl/internal/rawvalue"
)

// Target table names as they appear in the field configuration.
const (
	TableProperty  = "property"
	TableLeads     = "leads"
	TableValuation = "valuation"
	TableRehab     = "rehab"
	TableHOA       = "hoa"
	TableTaxes     = "taxes"
)

// Tables lists every target table in load order.
var Tables = []string{TableProperty, TableLeads, TableValuation, TableRehab, TableHOA, TableTaxes}

// Pair maps one raw source field to its canonical attribute name.
type Pair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Mapping is the ordered source-to-target mapping for one table.
type Mapping []Pair

// Payload is a projected record keyed by canonical attribute name.
type Payload map[string]rawvalue.Value

// Project copies every mapped field present in source under its target name.
// Fields missing from source are omitted, not set to null. When two source
// fields share a target, the later pair wins.
func (m Mapping) Project(source rawvalue.Record) Payload {
	payload := make(Payload)
	if len(source) == 0 {
		return payload
	}
	for _, pair := range m {
		if source.Has(pair.Source) {
			payload[pair.Target] = source.Get(pair.Source)
		}
	}
	return payload
}

// Targets returns the canonical names in mapping order.
func (m Mapping) Targets() []string {
	out := make([]string, 0, len(m))
	for _, pair := range m {
		out = append(out, pair.Target)
	}
	return out
}

// Resolve builds the mapping for one target table. Rows are matched on the
// table name case-insensitively; each column uses its override when one
// exists, otherwise its snake_case form. A nil config yields an empty mapping.
func Resolve(cfg *FieldConfig, table string, overrides map[string]string) Mapping {
	if cfg == nil {
		return Mapping{}
	}

	mapping := Mapping{}
	index := make(map[string]int)
	for _, row := range cfg.Rows {
		if !strings.EqualFold(strings.TrimSpace(row.TargetTable), table) {
			continue
		}
		column := row.ColumnName
		if column == "" {
			continue
		}

		target := overrides[column]
		if target == "" {
			target = ToSnakeCase(column)
		}

		if i, seen := index[column]; seen {
			mapping[i].Target = target
			continue
		}
		index[column] = len(mapping)
		mapping = append(mapping, Pair{Source: column, Target: target})
	}
	return mapping
}

// ToSnakeCase converts a source column name such as "Street Address",
// "BasementYesNo" or "Most-Recent-Status" to snake_case.
func ToSnakeCase(value string) string {
	sanitized := strings.NewReplacer(" ", "_", "-", "_").Replace(value)

	var sb strings.Builder
	prevLower := false
	for _, r := range sanitized {
		if unicode.IsUpper(r) && prevLower {
			sb.WriteByte('_')
		}
		sb.WriteRune(unicode.ToLower(r))
		prevLower = unicode.IsLower(r)
	}
	return strings.ReplaceAll(sb.String(), "__", "_")
}

// TableMaps holds the resolved mapping of every target table.
type TableMaps struct {
	Property  Mapping
	Leads     Mapping
	Valuation Mapping
	Rehab     Mapping
	HOA       Mapping
	Taxes     Mapping
}

// BuildTableMaps resolves all six tables, layering the configuration's own
// overrides on top of DefaultOverrides.
func BuildTableMaps(cfg *FieldConfig) TableMaps {
	overrides := DefaultOverrides()
	if cfg != nil {
		for table, columns := range cfg.Overrides {
			key := strings.ToLower(table)
			if overrides[key] == nil {
				overrides[key] = make(map[string]string, len(columns))
			}
			for column, target := range columns {
				overrides[key][column] = target
			}
		}
	}

	return TableMaps{
		Property:  Resolve(cfg, TableProperty, overrides[TableProperty]),
		Leads:     Resolve(cfg, TableLeads, overrides[TableLeads]),
		Valuation: Resolve(cfg, TableValuation, overrides[TableValuation]),
		Rehab:     Resolve(cfg, TableRehab, overrides[TableRehab]),
		HOA:       Resolve(cfg, TableHOA, overrides[TableHOA]),
		Taxes:     Resolve(cfg, TableTaxes, overrides[TableTaxes]),
	}
}

// ByTable returns the mapping for a table name, or nil if unknown.
func (t TableMaps) ByTable(table string) Mapping {
	switch strings.ToLower(table) {
	case TableProperty:
		return t.Property
	case TableLeads:
		return t.Leads
	case TableValuation:
		return t.Valuation
	case TableRehab:
		return t.Rehab
	case TableHOA:
		return t.HOA
	case TableTaxes:
		return t.Taxes
	default:
		return nil
	}
}

// Empty reports whether no table has any mapped field.
func (t TableMaps) Empty() bool {
	for _, table := range Tables {
		if len(t.ByTable(table)) > 0 {
			return false
		}
	}
	return true
}
