// Package assets holds files compiled into the server binary.
package assets

import (
	_ "embed"
)

// Samples is the built-in sample catalog, a YAML list of board exports.
//
//go:embed samples.yaml
var Samples []byte
