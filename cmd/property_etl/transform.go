package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/property-etl/internal/pipeline"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Transform the raw dataset into a bundle JSON file",
	Long:  "Reads and normalizes the raw dataset and writes the entity bundle to --out. The database is never touched.",
	RunE:  runTransform,
}

var transformFlags settingsFlags

func init() {
	bindInputFlags(transformCmd, &transformFlags)

	if err := transformCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, _ []string) error {
	settings, err := transformFlags.resolveSettings(cmd, os.LookupEnv)
	if err != nil {
		return err
	}
	if _, err := os.Stat(settings.DataPath); os.IsNotExist(err) {
		return fmt.Errorf("dataset not found: %s", settings.DataPath)
	}

	result, err := execute(cmd.Context(), settings, pipeline.RunOptions{
		Settings: settings,
		DryRun:   true,
	})
	if err != nil {
		return err
	}

	printResult(cmd, result, false)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Bundle written to %s\n", settings.OutputPath)
	return nil
}
