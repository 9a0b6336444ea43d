package fieldmap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Column headers expected in a CSV or workbook field configuration.
const (
	HeaderTargetTable = "Target Table"
	HeaderColumnName  = "Column Name"
)

// Row is one line of the field configuration table.
type Row struct {
	TargetTable string `yaml:"target_table" json:"target_table"`
	ColumnName  string `yaml:"column_name" json:"column_name"`
}

// FieldConfig is the typed field configuration, loaded once at startup.
// Overrides are keyed by table, then by source column name.
type FieldConfig struct {
	Rows      []Row                        `yaml:"rows" json:"rows"`
	Overrides map[string]map[string]string `yaml:"overrides,omitempty" json:"overrides,omitempty"`
}

// DefaultOverrides returns the built-in column renames that snake_case
// conversion would otherwise get wrong.
func DefaultOverrides() map[string]map[string]string {
	return map[string]map[string]string{
		TableProperty: {
			"Zip":           "zip_code",
			"SQFT_MU":       "sqft_mixed_use",
			"BasementYesNo": "basement",
		},
		TableTaxes: {
			"Taxes": "amount",
		},
	}
}

// LoadFieldConfig reads a field configuration from a CSV file or an Excel
// workbook (with "Target Table" and "Column Name" headers), or from a
// YAML/JSON document.
func LoadFieldConfig(path string) (*FieldConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{
			Message: fmt.Sprintf("failed to open field config %s", path),
			Cause:   err,
		}
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ParseCSV(file)
	case ".xlsx":
		return ParseXLSX(file)
	case ".yaml", ".yml", ".json":
		return ParseYAML(file)
	default:
		return nil, &ConfigError{
			Message: fmt.Sprintf("unsupported field config format %q (want .csv, .xlsx, .yaml, .yml or .json)", filepath.Ext(path)),
		}
	}
}

// ParseCSV reads rows from CSV. Columns other than the two headers are ignored.
func ParseCSV(r io.Reader) (*FieldConfig, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigError{Message: "field config is empty"}
		}
		return nil, &ConfigError{Message: "failed to read field config header", Cause: err}
	}

	tableIdx, columnIdx, err := headerIndexes(header)
	if err != nil {
		return nil, err
	}

	cfg := &FieldConfig{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ConfigError{Message: "failed to read field config row", Cause: err}
		}
		if row, ok := rowAt(record, tableIdx, columnIdx); ok {
			cfg.Rows = append(cfg.Rows, row)
		}
	}
	return cfg, nil
}

// ParseXLSX reads rows from the first sheet of an Excel workbook. The first
// row holds the headers; columns other than the two headers are ignored.
func ParseXLSX(r io.Reader) (*FieldConfig, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ConfigError{Message: "failed to open field config workbook", Cause: err}
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ConfigError{Message: "field config is empty"}
	}
	records, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("failed to read sheet %q", sheets[0]), Cause: err}
	}
	if len(records) == 0 {
		return nil, &ConfigError{Message: "field config is empty"}
	}

	tableIdx, columnIdx, err := headerIndexes(records[0])
	if err != nil {
		return nil, err
	}

	cfg := &FieldConfig{}
	for _, record := range records[1:] {
		if row, ok := rowAt(record, tableIdx, columnIdx); ok {
			cfg.Rows = append(cfg.Rows, row)
		}
	}
	return cfg, nil
}

func headerIndexes(header []string) (int, int, error) {
	tableIdx, columnIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case strings.ToLower(HeaderTargetTable):
			tableIdx = i
		case strings.ToLower(HeaderColumnName):
			columnIdx = i
		}
	}
	if tableIdx < 0 || columnIdx < 0 {
		return -1, -1, &ConfigError{
			Message: fmt.Sprintf("field config must have %q and %q columns", HeaderTargetTable, HeaderColumnName),
		}
	}
	return tableIdx, columnIdx, nil
}

// rowAt skips records too short to hold both columns. Workbook rows drop
// trailing empty cells.
func rowAt(record []string, tableIdx, columnIdx int) (Row, bool) {
	if tableIdx >= len(record) || columnIdx >= len(record) {
		return Row{}, false
	}
	return Row{
		TargetTable: strings.TrimSpace(record[tableIdx]),
		ColumnName:  record[columnIdx],
	}, true
}

// ParseYAML reads a {rows, overrides} document. JSON is accepted as well.
func ParseYAML(r io.Reader) (*FieldConfig, error) {
	var cfg FieldConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigError{Message: "field config is empty"}
		}
		return nil, &ConfigError{Message: "failed to parse field config", Cause: err}
	}
	return &cfg, nil
}
