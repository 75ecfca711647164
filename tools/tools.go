//go:build tools

package tools

// Pins the code generator for internal/api (see internal/api/generate.go) and
// the goose CLI used to inspect or roll back the brand catalog schema. The
// server applies migrations itself.

import (
	_ "github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen"
	_ "github.com/pressly/goose/v3/cmd/goose"
)
