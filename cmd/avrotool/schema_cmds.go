package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/compatibility"
	avroconfig "github.com/Sokol111/ecommerce-avro/pkg/avro/config"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/fingerprint"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/core/logger"
)

func newCanonicalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "canonical SCHEMA",
		Short: "Print the parsing canonical form of a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readSchema(args[0])
			if err != nil {
				return err
			}
			canonical, err := schema.Canonical(s)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(canonical))
			return err
		},
	}
}

func newFingerprintCmd(a *app) *cobra.Command {
	var algorithm string

	cmd := &cobra.Command{
		Use:   "fingerprint SCHEMA",
		Short: "Print the fingerprint of a schema as hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readSchema(args[0])
			if err != nil {
				return err
			}
			sum, err := fingerprint.FingerprintUsing(fingerprint.Algorithm(strings.ToUpper(algorithm)), s)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(sum))
			return err
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", string(fingerprint.CRC64Avro), "CRC-64-AVRO, MD5 or SHA-256")

	return cmd
}

func newCompatCmd(a *app) *cobra.Command {
	var level string

	cmd := &cobra.Command{
		Use:   "compat CANDIDATE PREVIOUS...",
		Short: "Check a candidate schema against previous versions",
		Long: `Check a candidate schema against previous versions, oldest first.

The level defaults to avro.compatibility-level from the configuration.

Example:
  avrotool compat --level BACKWARD_TRANSITIVE user_v3.avsc user_v1.avsc user_v2.avsc`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if level == "" {
				cfg, err := avroconfig.Load(a.v)
				if err != nil {
					return err
				}
				level = cfg.CompatibilityLevel
			}
			lvl, err := compatibility.ParseLevel(level)
			if err != nil {
				return err
			}

			candidate, err := readSchema(args[0])
			if err != nil {
				return err
			}
			history := make([]schema.Schema, 0, len(args)-1)
			for _, path := range args[1:] {
				s, err := readSchema(path)
				if err != nil {
					return err
				}
				history = append(history, s)
			}

			result, err := compatibility.CheckLevel(lvl, candidate, history)
			if err != nil {
				return err
			}

			logger.Get(cmd.Context()).Info("compatibility checked", zap.String("level", lvl.String()), zap.Stringer("result", result.Compatibility))
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), result.String()); err != nil {
				return err
			}
			if !result.IsCompatible() {
				return fmt.Errorf("%s is not %s compatible", args[0], lvl)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", "", "Compatibility level, e.g. BACKWARD or FULL_TRANSITIVE")

	return cmd
}
