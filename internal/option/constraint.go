// internal/option/constraint.go
//
// Value constraints attached to a Spec.
//
// Context
// -------
// A Spec carries at most one Constraint.  The registry checks declared
// defaults against it at registration time; the applier checks every
// coerced Environment value against it at apply time.  Each constraint
// knows which kinds it can guard so a malformed table fails at startup
// instead of at the first bad input.
//
// Notes
// -----
//   - Ranges are inclusive on both ends.
//   - EnumOf comparison is case-sensitive.
//   - RegexFormat patterns are matched unanchored; anchor them in the table.
package option

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Constraint validates a coerced value.  check returns one of RangeError,
// InvalidEnumError, or FormatError.
type Constraint interface {
	check(key string, v any) error
	supports(k Kind) bool
	String() string
}

/*──────────────────────────── ranges ──────────────────────────────────────*/

// IntRange bounds Int and Uint64 options, inclusive.
type IntRange struct {
	Min, Max int64
}

func (r IntRange) check(key string, v any) error {
	var in bool
	switch n := v.(type) {
	case int:
		in = int64(n) >= r.Min && int64(n) <= r.Max
	case uint64:
		in = (r.Max >= 0 && n <= uint64(r.Max)) && (r.Min <= 0 || n >= uint64(r.Min))
	}
	if !in {
		return &RangeError{Key: key, Value: v, Min: r.Min, Max: r.Max}
	}
	return nil
}

func (r IntRange) supports(k Kind) bool { return (k == Int || k == Uint64) && r.Min <= r.Max }
func (r IntRange) String() string       { return fmt.Sprintf("[%d, %d]", r.Min, r.Max) }

// DoubleRange bounds Double options, inclusive.
type DoubleRange struct {
	Min, Max float64
}

func (r DoubleRange) check(key string, v any) error {
	f, _ := v.(float64)
	if !(f >= r.Min && f <= r.Max) { // NaN fails both comparisons

		return &RangeError{Key: key, Value: v, Min: r.Min, Max: r.Max}
	}
	return nil
}

func (r DoubleRange) supports(k Kind) bool { return k == Double && r.Min <= r.Max }
func (r DoubleRange) String() string       { return fmt.Sprintf("[%g, %g]", r.Min, r.Max) }

/*──────────────────────────── string shapes ───────────────────────────────*/

// EnumOf restricts a String option to a fixed set.
type EnumOf []string

func (e EnumOf) check(key string, v any) error {
	s, _ := v.(string)
	if !slices.Contains(e, s) {
		return &InvalidEnumError{Key: key, Value: s, Allowed: slices.Clone(e)}
	}
	return nil
}

func (e EnumOf) supports(k Kind) bool { return k == String && len(e) > 0 }
func (e EnumOf) String() string       { return "one of [" + strings.Join(e, "|") + "]" }

// RegexFormat requires a String option to match Pattern.  Display is the
// short human form used in help text; it falls back to the pattern.
type RegexFormat struct {
	Pattern *regexp.Regexp
	Display string
}

// Format compiles pattern and panics on a bad expression, like
// regexp.MustCompile.  Option tables are package-level, so a bad pattern is
// a build bug.
func Format(pattern, display string) RegexFormat {
	return RegexFormat{Pattern: regexp.MustCompile(pattern), Display: display}
}

func (f RegexFormat) check(key string, v any) error {
	s, _ := v.(string)
	if !f.Pattern.MatchString(s) {
		return &FormatError{Key: key, Value: s, Pattern: f.Pattern.String()}
	}
	return nil
}

func (f RegexFormat) supports(k Kind) bool { return k == String && f.Pattern != nil }

func (f RegexFormat) String() string {
	if f.Display != "" {
		return f.Display
	}
	if f.Pattern == nil {
		return ""
	}
	return f.Pattern.String()
}
