// Package schemas holds the JSON schemas shipped with the binary.
package schemas

import _ "embed"

//go:embed report.schema.json
var Report []byte
