package schemagen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ettle/strcase"
	hambavro "github.com/hamba/avro/v2"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/fingerprint"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
)

// SchemaFile is a parsed schema document.
type SchemaFile struct {
	// Path is the source file.
	Path string
	// BaseName is the file name without the .avsc suffix.
	BaseName string
	// Text is the document as written.
	Text []byte
	Schema schema.Schema
	fingerprint.Pair
}

// GoName returns the exported identifier prefix for the schema,
// e.g. "OrderCreated" for order_created.avsc.
func (f *SchemaFile) GoName() string {
	return strcase.ToPascal(f.BaseName)
}

// FullName returns the full name of a named schema, or the base name.
func (f *SchemaFile) FullName() string {
	if named, ok := f.Schema.(schema.NamedSchema); ok {
		return named.FullName()
	}
	return f.BaseName
}

// LoadSchemas reads and parses every *.avsc file in dir, sorted by name.
func LoadSchemas(dir string) ([]*SchemaFile, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.avsc"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob schema files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no *.avsc files found in %s", dir)
	}
	sort.Strings(files)

	out := make([]*SchemaFile, 0, len(files))
	for _, file := range files {
		sf, err := LoadSchema(file)
		if err != nil {
			return nil, err
		}
		out = append(out, sf)
	}
	return out, nil
}

// LoadSchema reads and parses one schema file.
func LoadSchema(path string) (*SchemaFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // paths come from the configured directory
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	s, err := schema.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	pair, err := fingerprint.Of(s)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint %s: %w", path, err)
	}

	return &SchemaFile{
		Path:     path,
		BaseName: strings.TrimSuffix(filepath.Base(path), ".avsc"),
		Text:     data,
		Schema:   s,
		Pair:     pair,
	}, nil
}

// CrossCheck parses the document with hamba/avro and compares canonical
// forms. A document the reference parser rejects is an error; a differing
// canonical form is reported through the second return value.
func CrossCheck(f *SchemaFile) (mismatch string, err error) {
	theirs, err := hambavro.ParseBytesWithCache(f.Text, "", &hambavro.SchemaCache{})
	if err != nil {
		return "", fmt.Errorf("reference parser rejected %s: %w", f.Path, err)
	}
	if theirs.String() != string(f.Canonical) {
		return theirs.String(), nil
	}
	return "", nil
}
