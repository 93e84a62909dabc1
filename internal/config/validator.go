// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `cmd/rocksopts` calls `ValidateBootstrap` right after it parses launcher
// flags.  A missing config file, a half-specified SQL source, or a malformed
// path aborts startup before any source is read.

package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// ValidateBootstrap returns the validation errors, or nil on success.
func ValidateBootstrap(b *Bootstrap) error {
	return v.Struct(b)
}
