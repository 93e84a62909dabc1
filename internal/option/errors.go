// internal/option/errors.go
//
// Error kinds.
//
// Registration errors (DuplicateKeyError, DefinitionError) mean the option
// table itself is malformed and must abort startup.  Apply errors
// (TypeMismatchError, RangeError, InvalidEnumError, FormatError) mean the
// operator supplied a bad value.  Every message names the key, the supplied
// value, and the violated rule.
package option

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyApplied is returned by a second Apply on the same Applier.
var ErrAlreadyApplied = errors.New("option: settings already applied")

// DuplicateKeyError reports a key or alias registered twice.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("option %q: already registered", e.Key)
}

// DefinitionError reports a malformed Spec.
type DefinitionError struct {
	Key    string
	Reason string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("option %q: bad definition: %s", e.Key, e.Reason)
}

// TypeMismatchError reports a value that cannot be coerced to the spec kind.
type TypeMismatchError struct {
	Key      string
	Expected Kind
	Value    any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("option %q: expected %s, got %T %v", e.Key, e.Expected, e.Value, e.Value)
}

// RangeError reports a numeric value outside [Min, Max].
type RangeError struct {
	Key      string
	Value    any
	Min, Max any
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("option %q: value %v out of range [%v, %v]", e.Key, e.Value, e.Min, e.Max)
}

// InvalidEnumError reports a string outside the allowed set.
type InvalidEnumError struct {
	Key     string
	Value   string
	Allowed []string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("option %q: value %q not one of [%s]", e.Key, e.Value, strings.Join(e.Allowed, "|"))
}

// FormatError reports a string that does not match the required pattern.
type FormatError struct {
	Key     string
	Value   string
	Pattern string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("option %q: value %q does not match %s", e.Key, e.Value, e.Pattern)
}

// errorKind names an apply error for metrics labels.
func errorKind(err error) string {
	var (
		tm *TypeMismatchError
		re *RangeError
		ie *InvalidEnumError
		fe *FormatError
	)
	switch {
	case errors.As(err, &tm):
		return "type"
	case errors.As(err, &re):
		return "range"
	case errors.As(err, &ie):
		return "enum"
	case errors.As(err, &fe):
		return "format"
	default:
		return "other"
	}
}
