// Package main provides the avrotool CLI for working with Avro schemas and data.
//
// Usage:
//
//	avrotool canonical order.avsc
//	avrotool fingerprint --algorithm SHA-256 order.avsc
//	avrotool compat --level FULL order_v3.avsc order_v1.avsc order_v2.avsc
//	avrotool encode --schema order.avsc --input order.json --hex
//	avrotool decode --schema order.avsc --input order.bin
//	avrotool generate --schemas ./avro --output ./gen/schemas --package schemas
//
// Configuration is read from the file named by --config or CONFIG_FILE and
// from the environment (for example AVRO_SCHEMA_REGISTRY_URL).
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd(newApp(os.Stdin, os.Stdout, os.Stderr)).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
