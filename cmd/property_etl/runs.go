package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/property-etl/internal/db"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent loads recorded in etl_runs",
	RunE:  runListRuns,
}

var (
	runsDatabaseURL string
	runsLimit       int
	runsJSON        bool
)

func init() {
	runsCmd.Flags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Number of runs to list")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Print runs as JSON")

	rootCmd.AddCommand(runsCmd)
}

func runListRuns(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	databaseURL := runsDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := db.NewRunStore(database.Pool()).ListRuns(ctx, runsLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if runsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, run := range runs {
		duration := "-"
		if run.CompletedAt != nil {
			duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		_, _ = fmt.Fprintf(out, "%s  %-9s  %s  %8s  %s\n",
			run.ID, run.Status, run.StartedAt.Format(time.RFC3339), duration, run.DataPath)
		if run.ErrorMessage != nil {
			_, _ = fmt.Fprintf(out, "    error: %s\n", *run.ErrorMessage)
		}
	}
	return nil
}
