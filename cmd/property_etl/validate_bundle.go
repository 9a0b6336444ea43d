package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/property-etl/internal/schemas"
)

var validateBundleCmd = &cobra.Command{
	Use:   "validate-bundle",
	Short: "Validate a bundle JSON file against the bundle schema",
	RunE:  runValidateBundle,
}

var (
	validateBundleInput  string
	validateBundleSchema string
)

func init() {
	validateBundleCmd.Flags().StringVarP(&validateBundleInput, "in", "i", "", "Path to bundle JSON file (required)")
	validateBundleCmd.Flags().StringVar(&validateBundleSchema, "schema", "", "Validate against this schema file instead of the embedded bundle schema")

	if err := validateBundleCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateBundleCmd)
}

func runValidateBundle(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(validateBundleInput); os.IsNotExist(err) {
		return fmt.Errorf("bundle file not found: %s", validateBundleInput)
	}

	validator, err := bundleValidator()
	if err != nil {
		return err
	}

	if err := validator.ValidateFile(validateBundleInput); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", fe.Field, fe.Message)
			}
		}
		return fmt.Errorf("bundle is invalid: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is a valid bundle\n", validateBundleInput)
	return nil
}

func bundleValidator() (*schemas.Validator, error) {
	if validateBundleSchema != "" {
		return schemas.LoadValidator(validateBundleSchema)
	}
	return schemas.BundleValidator()
}
