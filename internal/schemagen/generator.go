package schemagen

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"go.uber.org/zap"
)

const (
	schemaImport   = "github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	registryImport = "github.com/Sokol111/ecommerce-avro/pkg/avro/registry"

	outputFile = "schemas.gen.go"
)

// Generator orchestrates the code generation process.
type Generator struct {
	config *Config
	log    *zap.Logger
}

// New creates a new Generator with the given configuration.
func New(cfg *Config, log *zap.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.AbsolutePaths(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{config: cfg, log: log}, nil
}

// Validate parses and cross-checks every schema without writing code.
func (g *Generator) Validate() ([]*SchemaFile, error) {
	files, err := LoadSchemas(g.config.SchemasDir)
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		mismatch, err := CrossCheck(f)
		if err != nil {
			return nil, err
		}
		if mismatch != "" {
			if g.config.Strict {
				return nil, fmt.Errorf("canonical form of %s differs from reference: %s", f.Path, mismatch)
			}
			g.log.Warn("canonical form differs from reference parser",
				zap.String("file", f.Path),
				zap.ByteString("canonical", f.Canonical),
				zap.String("reference", mismatch),
			)
		}
		g.log.Debug("schema validated", zap.String("file", filepath.Base(f.Path)), zap.String("fingerprint", fmt.Sprintf("%016x", f.Fingerprint64)))
	}

	return files, nil
}

// Generate writes schemas.gen.go into the output directory.
func (g *Generator) Generate() error {
	if err := g.config.ValidateForGeneration(); err != nil {
		return err
	}

	files, err := g.Validate()
	if err != nil {
		return err
	}
	if err := checkDuplicateNames(files); err != nil {
		return err
	}

	if err := os.MkdirAll(g.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", g.config.OutputDir, err)
	}

	path := filepath.Join(g.config.OutputDir, outputFile)
	if err := Render(g.config.Package, files).Save(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	g.log.Info("code generation complete", zap.String("output", path), zap.Int("schemas", len(files)))
	return nil
}

func checkDuplicateNames(files []*SchemaFile) error {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		if prev, ok := seen[f.GoName()]; ok {
			return fmt.Errorf("%s and %s both generate identifier %s", prev, f.Path, f.GoName())
		}
		seen[f.GoName()] = f.Path
	}
	return nil
}

// Render builds the generated file for files.
func Render(pkg string, files []*SchemaFile) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by avrotool. DO NOT EDIT.")
	f.ImportName(schemaImport, "schema")
	f.ImportName(registryImport, "registry")

	for _, sf := range files {
		name := sf.GoName()

		f.Commentf("%s schema (%s).", name, sf.FullName())
		f.Const().DefsFunc(func(group *jen.Group) {
			group.Id(name + "JSON").Op("=").Lit(string(sf.Text))
			group.Id(name + "Canonical").Op("=").Lit(string(sf.Canonical))
			group.Id(name + "Fingerprint").Uint64().Op("=").Op(fmt.Sprintf("0x%016x", sf.Fingerprint64))
		})
		f.Line()

		f.Commentf("%sSHA256 is the SHA-256 fingerprint of %sCanonical.", name, name)
		f.Var().Id(name + "SHA256").Op("=").Index(jen.Lit(len(sf.SHA256))).Byte().ValuesFunc(func(group *jen.Group) {
			for _, b := range sf.SHA256 {
				group.Op(fmt.Sprintf("0x%02x", b))
			}
		})
		f.Line()

		f.Commentf("%sSchema is the parsed %s schema.", name, sf.FullName())
		f.Var().Id(name + "Schema").Op("=").Qual(schemaImport, "MustParse").Call(jen.Id(name + "JSON"))
		f.Line()
	}

	f.Comment("All lists every generated schema in file name order.")
	f.Var().Id("All").Op("=").Index().Qual(schemaImport, "Schema").ValuesFunc(func(group *jen.Group) {
		for _, sf := range files {
			group.Id(sf.GoName() + "Schema")
		}
	})
	f.Line()

	f.Comment("RegisterAll adds every generated schema to store.")
	f.Func().Id("RegisterAll").Params(jen.Id("store").Qual(registryImport, "Store")).Error().Block(
		jen.For(jen.List(jen.Id("_"), jen.Id("s")).Op(":=").Range().Id("All")).Block(
			jen.If(
				jen.List(jen.Id("_"), jen.Err()).Op(":=").Id("store").Dot("Register").Call(jen.Id("s")),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(jen.Err())),
		),
		jen.Return(jen.Nil()),
	)

	return f
}
