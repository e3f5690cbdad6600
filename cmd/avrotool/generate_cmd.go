package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sokol111/ecommerce-avro/internal/schemagen"
	"github.com/Sokol111/ecommerce-avro/pkg/core/logger"
)

func newGenerateCmd(a *app) *cobra.Command {
	cfg := &schemagen.Config{}
	var validateOnly bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Go constants from Avro schema files",
		Long: `Generate Go constants from Avro schema files.

This command reads *.avsc files from the schemas directory, checks each one
against the hamba/avro parser, and writes schemas.gen.go with the schema
text, canonical form, fingerprints and a RegisterAll helper.

Example:
  avrotool generate --schemas ./avro --output ./gen/schemas --package schemas`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := schemagen.New(cfg, logger.Get(cmd.Context()).Named("schemagen"))
			if err != nil {
				return fmt.Errorf("failed to create generator: %w", err)
			}

			if validateOnly {
				files, err := gen.Validate()
				if err != nil {
					return fmt.Errorf("validation failed: %w", err)
				}
				for _, f := range files {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %016x\n", f.FullName(), f.Fingerprint64)
				}
				return nil
			}

			if err := gen.Generate(); err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfg.SchemasDir, "schemas", "d", "", "Directory containing *.avsc files (required)")
	cmd.Flags().StringVarP(&cfg.OutputDir, "output", "o", "", "Output directory for generated code")
	cmd.Flags().StringVarP(&cfg.Package, "package", "n", "schemas", "Go package name for generated code")
	cmd.Flags().BoolVar(&cfg.Strict, "strict", false, "Fail when the reference parser disagrees on canonical form")
	cmd.Flags().BoolVar(&validateOnly, "validate", false, "Only validate schemas and print their fingerprints")

	_ = cmd.MarkFlagRequired("schemas")

	return cmd
}
