// Package schemas embeds the JSON schemas for the project config file and for
// the result payloads written by generated test units.
package schemas

import _ "embed"

//go:embed config.schema.json
var ConfigSchemaJSON string

//go:embed unit-report.schema.json
var UnitReportSchemaJSON string

//go:embed doctest-report.schema.json
var DoctestReportSchemaJSON string
