// internal/option/registry.go
//
// Ordered, duplicate-free collection of option Specs.
//
// Context
// -------
// A Registry is built once at startup from a package-level table (see
// internal/storage/options.go) and is read-only afterwards.  It serves two
// consumers:
//
//   - the CLI and config-file layer, which needs the schema (flags, help,
//     sample YAML) in a deterministic order, and
//   - the Applier, which walks the same order to materialize a record.
//
// Registration rules
// ------------------
//  1. Keys and aliases are unique across the registry.
//  2. Struct tags on Spec are enforced through go-playground/validator, with
//     one custom rule, `optkey`, for dotted identifiers.
//  3. A declared default has the kind's Go type and satisfies the
//     constraint.
//  4. A gate names a Bool spec registered earlier, so gates are always
//     evaluated before their members.
//
// Notes
// -----
//   - Registration errors are programmer errors.  MustRegister panics.
//   - Oxford commas, two spaces after periods.
package option

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var (
	keyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)+$`)
	v          = newValidator()
)

func newValidator() *validator.Validate {
	val := validator.New()
	_ = val.RegisterValidation("optkey", func(fl validator.FieldLevel) bool {
		return keyPattern.MatchString(fl.Field().String())
	})
	return val
}

// Registry owns Specs in registration order.  The zero value is not usable;
// call NewRegistry.
type Registry struct {
	title   string
	specs   []*Spec
	byKey   map[string]*Spec
	byAlias map[string]*Spec
	byFold  map[string]*Spec
}

// NewRegistry returns an empty registry.  Title heads generated help.
func NewRegistry(title string) *Registry {
	return &Registry{
		title:   title,
		byKey:   make(map[string]*Spec),
		byAlias: make(map[string]*Spec),
		byFold:  make(map[string]*Spec),
	}
}

// Title returns the section title given to NewRegistry.
func (r *Registry) Title() string { return r.title }

// Register adds one spec.  It returns *DuplicateKeyError when the key or an
// alias is taken and *DefinitionError when the spec is malformed.  A failed
// registration leaves the registry unchanged.
func (r *Registry) Register(s Spec) error {
	if _, dup := r.byKey[s.Key]; dup {
		return &DuplicateKeyError{Key: s.Key}
	}
	if _, dup := r.byFold[strings.ToLower(s.Key)]; dup {
		return &DuplicateKeyError{Key: s.Key}
	}
	for _, a := range s.Aliases {
		if _, dup := r.byAlias[a]; dup {
			return &DuplicateKeyError{Key: a}
		}
	}

	if err := r.checkDefinition(&s); err != nil {
		return err
	}

	sp := s.clone()
	r.specs = append(r.specs, &sp)
	r.byKey[sp.Key] = &sp
	r.byFold[strings.ToLower(sp.Key)] = &sp
	for _, a := range sp.Aliases {
		r.byAlias[a] = &sp
	}
	return nil
}

// MustRegister is Register for package-level tables.  It panics on error.
func (r *Registry) MustRegister(specs ...Spec) *Registry {
	for _, s := range specs {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Specs returns copies of every spec in registration order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, len(r.specs))
	for i, s := range r.specs {
		out[i] = s.clone()
	}
	return out
}

// Len reports how many specs are registered.
func (r *Registry) Len() int { return len(r.specs) }

// Lookup returns the spec for an exact key.
func (r *Registry) Lookup(key string) (Spec, bool) {
	s, ok := r.byKey[key]
	if !ok {
		return Spec{}, false
	}
	return s.clone(), true
}

// LookupFold matches key case-insensitively.  Env var names lose their case,
// so the env provider resolves them here.
func (r *Registry) LookupFold(key string) (Spec, bool) {
	s, ok := r.byFold[strings.ToLower(key)]
	if !ok {
		return Spec{}, false
	}
	return s.clone(), true
}

// LookupAlias returns the spec owning a CLI alias.
func (r *Registry) LookupAlias(name string) (Spec, bool) {
	s, ok := r.byAlias[name]
	if !ok {
		return Spec{}, false
	}
	return s.clone(), true
}

// Unrecognized returns the keys under prefix that no spec declares, in the
// order given.  An empty prefix checks every key.
func (r *Registry) Unrecognized(keys []string, prefix string) []string {
	var out []string
	for _, k := range keys {
		if prefix != "" && !strings.HasPrefix(k, prefix) {
			continue
		}
		if _, ok := r.byKey[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

/*──────────────────────────── definition checks ───────────────────────────*/

func (r *Registry) checkDefinition(s *Spec) error {
	if err := v.Struct(s); err != nil {
		return &DefinitionError{Key: s.Key, Reason: err.Error()}
	}
	if !s.Kind.valid() {
		return &DefinitionError{Key: s.Key, Reason: fmt.Sprintf("unknown kind %d", int(s.Kind))}
	}
	if s.Bytes && s.Kind != Uint64 {
		return &DefinitionError{Key: s.Key, Reason: "byte formatting requires an unsigned int64 kind"}
	}

	if s.Constraint != nil && !s.Constraint.supports(s.Kind) {
		return &DefinitionError{
			Key:    s.Key,
			Reason: fmt.Sprintf("constraint %s cannot guard %s", s.Constraint, s.Kind),
		}
	}

	if s.Default != nil {
		if reflect.TypeOf(s.Default) != s.Kind.goType() {
			return &DefinitionError{
				Key:    s.Key,
				Reason: fmt.Sprintf("default %v is %T, want %s", s.Default, s.Default, s.Kind.goType()),
			}
		}
		if s.Constraint != nil {
			if err := s.Constraint.check(s.Key, s.Default); err != nil {
				return &DefinitionError{Key: s.Key, Reason: "default violates constraint: " + err.Error()}
			}
		}
	}

	if s.Gate != "" {
		g, ok := r.byKey[s.Gate]
		switch {
		case s.Gate == s.Key:
			return &DefinitionError{Key: s.Key, Reason: "spec cannot gate itself"}
		case !ok:
			return &DefinitionError{Key: s.Key, Reason: fmt.Sprintf("gate %q is not registered before its members", s.Gate)}
		case g.Kind != Bool:
			return &DefinitionError{Key: s.Key, Reason: fmt.Sprintf("gate %q is %s, want bool", s.Gate, g.Kind)}
		case g.Gate != "":
			return &DefinitionError{Key: s.Key, Reason: fmt.Sprintf("gate %q is itself gated", s.Gate)}
		}
	}
	return nil
}
