package serde

import "errors"

var (
	// ErrUnknownSchema is returned when a framed message names a writer schema
	// that neither the local store nor the schema registry knows.
	ErrUnknownSchema = errors.New("unknown writer schema")
	// ErrFramingUnavailable is returned when the component a framing needs
	// was not configured.
	ErrFramingUnavailable = errors.New("framing not available")
)
