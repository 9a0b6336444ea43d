package main

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/property-etl/internal/config"
	"github.com/jonathan/property-etl/internal/fieldmap"
	"github.com/jonathan/property-etl/internal/logger"
	"github.com/jonathan/property-etl/internal/observability"
	"github.com/jonathan/property-etl/internal/pipeline"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Print the resolved source-to-attribute mapping for each table",
	RunE:  runFields,
}

var (
	fieldsConfigPath string
	fieldsTable      string
	fieldsJSON       bool
)

func init() {
	fieldsCmd.Flags().StringVarP(&fieldsConfigPath, "field-config", "f", config.DefaultFieldConfigPath, "Path to the field configuration")
	fieldsCmd.Flags().StringVarP(&fieldsTable, "table", "t", "", "Only print this table")
	fieldsCmd.Flags().BoolVar(&fieldsJSON, "json", false, "Print the mapping as JSON")

	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, _ []string) error {
	ctx := logger.ContextWithLogger(context.Background(), newLogger(config.Settings{LogLevel: "warn"}))
	maps, err := pipeline.LoadTableMaps(ctx, fieldsConfigPath)
	if err != nil {
		return err
	}

	tables := fieldmap.Tables
	if fieldsTable != "" {
		name := strings.ToLower(strings.TrimSpace(fieldsTable))
		if !slices.Contains(fieldmap.Tables, name) {
			return fmt.Errorf("unknown table %q (expected one of %s)", fieldsTable, strings.Join(fieldmap.Tables, ", "))
		}
		tables = []string{name}
	}

	out := cmd.OutOrStdout()
	if fieldsJSON {
		byTable := make(map[string]fieldmap.Mapping, len(tables))
		for _, table := range tables {
			byTable[table] = maps.ByTable(table)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(byTable)
	}

	printer := observability.NewPrinter(out)
	for _, table := range tables {
		printer.PrintMapping(table, maps.ByTable(table))
	}
	return nil
}
