// internal/option/flags.go
//
// Schema export for the CLI and config-file layers.
//
// Context
// -------
// The registry is the single source of truth, so the flag set and the
// sample config file are generated from it rather than written by hand.
//
//   - AddFlags defines one pflag flag per alias, in registration order.
//     Hidden specs get hidden flags.  A spec without aliases gets a flag
//     named after its dotted key.
//   - FlagValues collects only the flags the operator actually changed,
//     keyed by dotted key, so untouched flags never mask file or env values.
//   - SampleYAML renders every visible declared default as a nested YAML
//     document.
package option

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/knadh/koanf/maps"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// AddFlags defines the registry's flags on fs.  It returns an error when a
// flag name is already defined on fs.
func (r *Registry) AddFlags(fs *pflag.FlagSet) error {
	fs.SortFlags = false
	for _, s := range r.specs {
		names := s.Aliases
		if len(names) == 0 {
			names = []string{s.Key}
		}
		for i, name := range names {
			if fs.Lookup(name) != nil {
				return &DuplicateKeyError{Key: name}
			}
			fl := fs.VarPF(newFlagValue(s), name, "", usage(s))
			if s.Kind == Bool {
				fl.NoOptDefVal = "true"
			}
			if s.Hidden() || i > 0 {
				_ = fs.MarkHidden(name)
			}
		}
	}
	return nil
}

// FlagValues returns the raw values of changed registry flags keyed by
// dotted key.  Flags that do not belong to the registry are ignored.
func (r *Registry) FlagValues(fs *pflag.FlagSet) map[string]any {
	out := make(map[string]any)
	fs.Visit(func(f *pflag.Flag) {
		s, ok := r.byAlias[f.Name]
		if !ok {
			s, ok = r.byKey[f.Name]
		}
		if !ok {
			return
		}
		out[s.Key] = f.Value.String()
	})
	return out
}

// SampleYAML renders the declared defaults of visible specs.
func (r *Registry) SampleYAML() ([]byte, error) {
	flat := make(map[string]interface{})
	for _, s := range r.specs {
		if s.Hidden() || s.Default == nil {
			continue
		}
		flat[s.Key] = s.Default
	}
	return yaml.Marshal(maps.Unflatten(flat, "."))
}

func usage(s *Spec) string {
	var b strings.Builder
	b.WriteString(s.Help)
	if s.Constraint != nil {
		fmt.Fprintf(&b, " %s", s.Constraint)
	}
	return strings.TrimSpace(b.String())
}

/*──────────────────────────── pflag.Value ─────────────────────────────────*/

// flagValue holds the raw text of one flag.  Parsing against the spec
// happens once, in Apply, so CLI values get the same errors as file values.
// Set still rejects values that cannot be coerced so the CLI reports them
// with the flag name.
type flagValue struct {
	spec *Spec
	raw  string
}

func newFlagValue(s *Spec) *flagValue {
	fv := &flagValue{spec: s}
	if s.Default != nil {
		fv.raw = formatDefault(s)
	}
	return fv
}

func (f *flagValue) String() string { return f.raw }

func (f *flagValue) Set(v string) error {
	if _, err := coerce(f.spec.Kind, v); err != nil {
		return fmt.Errorf("expected %s", f.spec.Kind)
	}
	f.raw = v
	return nil
}

func (f *flagValue) Type() string {
	if f.spec.Bytes {
		return "bytes"
	}
	switch f.spec.Kind {
	case Int:
		return "int"
	case Uint64:
		return "uint64"
	case Double:
		return "float"
	case Bool:
		return "bool"
	default:
		return "string"
	}
}

func formatDefault(s *Spec) string {
	switch d := s.Default.(type) {
	case uint64:
		if s.Bytes {
			return humanize.IBytes(d)
		}
		return strconv.FormatUint(d, 10)
	case float64:
		return strconv.FormatFloat(d, 'g', -1, 64)
	default:
		return fmt.Sprint(d)
	}
}
