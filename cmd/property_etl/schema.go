package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/property-etl/internal/db"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the PostgreSQL DDL for the property tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), db.Schema())
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
