// Package schemagen generates Go source embedding Avro schema documents
// together with their parsing canonical form and fingerprints.
//
// Basic usage:
//
//	cfg := &schemagen.Config{
//		SchemasDir: "./avro",
//		OutputDir:  "./gen/schemas",
//		Package:    "schemas",
//	}
//
//	gen, err := schemagen.New(cfg, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := gen.Generate(); err != nil {
//		log.Fatal(err)
//	}
package schemagen

import (
	"fmt"
	"path/filepath"
)

const defaultPackage = "schemas"

// Config holds the configuration for the schema generator.
type Config struct {
	// SchemasDir is the directory containing *.avsc files.
	SchemasDir string
	// OutputDir is the directory where generated code will be written.
	OutputDir string
	// Package is the Go package name for generated code. Defaults to "schemas".
	Package string
	// Strict fails generation when the reference parser disagrees with the
	// canonical form instead of logging a warning.
	Strict bool
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SchemasDir == "" {
		return fmt.Errorf("schemas directory is required")
	}
	if c.Package == "" {
		c.Package = defaultPackage
	}
	return nil
}

// ValidateForGeneration checks that the configuration is valid for code generation.
func (c *Config) ValidateForGeneration() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required for generation")
	}
	return nil
}

// AbsolutePaths converts relative paths to absolute paths.
func (c *Config) AbsolutePaths() error {
	var err error
	if c.SchemasDir != "" {
		if c.SchemasDir, err = filepath.Abs(c.SchemasDir); err != nil {
			return fmt.Errorf("failed to resolve schemas directory: %w", err)
		}
	}
	if c.OutputDir != "" {
		if c.OutputDir, err = filepath.Abs(c.OutputDir); err != nil {
			return fmt.Errorf("failed to resolve output directory: %w", err)
		}
	}
	return nil
}
