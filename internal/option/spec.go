// internal/option/spec.go
//
// Declarative description of one startup option.
//
// A table of Specs replaces per-option if/assign/log boilerplate: the
// registry validates the table once, and one generic applier walks it.
package option

// Visibility only affects generated help.  Hidden options still validate
// and apply like visible ones.
type Visibility int

const (
	Visible Visibility = iota
	Hidden
)

// Spec describes one configurable setting.
type Spec struct {
	// Key is the dotted config path and the option's identity, e.g.
	// "storage.rocksdb.cacheSizeGB".
	Key string `validate:"required,optkey"`

	// Aliases are CLI flag names.  Cosmetic; they never reach the record.
	Aliases []string `validate:"dive,required,alphanum"`

	// Label prefixes the diagnostic line emitted when the option is applied.
	Label string `validate:"required"`
	Help  string

	Kind Kind `validate:"required"`

	// Default must be of Kind's Go type.  Nil means unset: the record field
	// keeps its zero value and the constraint is not checked.
	Default any `validate:"-"`

	Constraint Constraint `validate:"-"`
	Visibility Visibility

	// Sensitive values are redacted in diagnostics.
	Sensitive bool

	// Bytes annotates Uint64 values with a human-readable size.
	Bytes bool

	// Gate is the key of a Bool spec.  When the gate resolves false the spec
	// is skipped entirely.
	Gate string `validate:"omitempty,optkey"`
}

// Hidden reports whether the spec is left out of generated help.
func (s *Spec) Hidden() bool { return s.Visibility == Hidden }

func (s *Spec) clone() Spec {
	c := *s
	c.Aliases = append([]string(nil), s.Aliases...)
	return c
}
