// Package main provides the entry point for the property normalization CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "property_etl",
	Short: "Property record normalization and entity extraction",
	Long: `property_etl reads semi-structured real-estate records, normalizes their values,
and splits each record into property, lead, valuation, rehab, HOA and tax entities
keyed by a deterministic property key. The resulting bundle can be exported as JSON
or loaded into PostgreSQL.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
