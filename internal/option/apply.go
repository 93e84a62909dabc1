// internal/option/apply.go
//
// Validated, all-or-nothing materialization of an Environment into a record.
//
// Context
// -------
// The record is any struct whose fields carry `opt:"<dotted key>"` tags.
// Nested structs without a tag are walked, so a group of options can live
// in its own sub-struct.  Binding happens once in NewApplier and fails when
// the table and the struct disagree (missing field, wrong Go kind, or a
// tagged field with no spec).
//
// Workflow
// --------
//  1. Copy the record into a scratch value.
//  2. Walk specs in registration order.  A gated spec is skipped when its
//     gate is false in the scratch copy or failed to apply.  An absent key
//     leaves the field untouched.  A present key is coerced, checked against
//     its constraint, and written to the scratch copy.
//  3. Every violation is collected (multierr).  Any violation fails the
//     whole apply and the record is not touched.
//  4. On success the scratch copy replaces the record and one
//     "<Label>: <value>" line per applied option goes to the logger.
//
// An Applier is one-shot: Unapplied → Applied | Failed.  Retrying takes a
// fresh record and a fresh Applier.
//
// Notes
// -----
//   - Sensitive values are logged through cockroachdb/redact and come out
//     as ‹×›, in diagnostic lines and in errors alike.
package option

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/cockroachdb/redact"
	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/yanizio/rocksopts/internal/metrics"
)

const tagName = "opt"

type state int

const (
	unapplied state = iota
	applied
	failed
)

// Applier copies one Environment into one record.
type Applier struct {
	reg    *Registry
	rec    reflect.Value // addressable struct
	fields map[string][]int
	log    *zap.SugaredLogger
	state  state
}

// NewApplier binds reg to rec, which must be a non-nil pointer to a struct.
// A nil logger falls back to zap.S().
func NewApplier(reg *Registry, rec any, log *zap.SugaredLogger) (*Applier, error) {
	rv, fields, err := bind(reg, rec)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.S()
	}
	return &Applier{reg: reg, rec: rv, fields: fields, log: log}, nil
}

// Defaults resets every bound field of rec to its declared default, or to the
// zero value when the default is unset.
func Defaults(reg *Registry, rec any) error {
	rv, fields, err := bind(reg, rec)
	if err != nil {
		return err
	}
	for _, s := range reg.specs {
		f := rv.FieldByIndex(fields[s.Key])
		if s.Default == nil {
			f.Set(reflect.Zero(f.Type()))
			continue
		}
		f.Set(reflect.ValueOf(s.Default).Convert(f.Type()))
	}
	return nil
}

// Apply validates env against the registry and, when every present value is
// valid, writes them into the record.  The returned error combines every
// violation; use errors.As to pick out a specific kind.
func (a *Applier) Apply(env Environment) error {
	if a.state != unapplied {
		return ErrAlreadyApplied
	}

	type appliedValue struct {
		spec *Spec
		val  any
	}

	scratch := reflect.New(a.rec.Type()).Elem()
	scratch.Set(a.rec)

	var (
		errs       error
		done       []appliedValue
		failedKeys = make(map[string]bool)
	)

	for _, s := range a.reg.specs {
		if s.Gate != "" {
			if failedKeys[s.Gate] || !scratch.FieldByIndex(a.fields[s.Gate]).Bool() {
				if env.Contains(s.Key) {
					a.log.Debugw("option skipped, gate off", "option", s.Key, "gate", s.Gate)
				}
				metrics.OptionsSkippedTotal.Inc()
				continue
			}
		}

		if !env.Contains(s.Key) {
			continue
		}

		val, err := validate(s, env.Get(s.Key))
		if err != nil {
			errs = multierr.Append(errs, err)
			failedKeys[s.Key] = true
			metrics.OptionErrorsTotal.WithLabelValues(errorKind(err)).Inc()
			continue
		}

		f := scratch.FieldByIndex(a.fields[s.Key])
		f.Set(reflect.ValueOf(val).Convert(f.Type()))
		done = append(done, appliedValue{spec: s, val: val})
	}

	if errs != nil {
		a.state = failed
		a.log.Errorw("option apply failed",
			"violations", len(multierr.Errors(errs)),
			"err", errs,
		)
		return errs
	}

	a.rec.Set(scratch)
	a.state = applied

	for _, d := range done {
		a.log.Infow(d.spec.Label+": "+render(d.spec, d.val), "option", d.spec.Key)
		metrics.OptionsAppliedTotal.Inc()
	}
	return nil
}

// Applied reports whether Apply completed successfully.
func (a *Applier) Applied() bool { return a.state == applied }

/*──────────────────────────── helpers ─────────────────────────────────────*/

// validate coerces raw to the spec kind and checks the constraint.  Errors
// for sensitive specs carry the redaction marker instead of the value.
func validate(s *Spec, raw any) (any, error) {
	val, err := coerce(s.Kind, raw)
	if err != nil {
		err = &TypeMismatchError{Key: s.Key, Expected: s.Kind, Value: raw}
	} else if s.Constraint != nil {
		err = s.Constraint.check(s.Key, val)
	}
	if err != nil {
		if s.Sensitive {
			redactValue(err)
		}
		return nil, err
	}
	return val, nil
}

// redactValue masks the offending value held by an apply error.
func redactValue(err error) {
	masked := string(redact.Sprint(err).Redact())
	switch e := err.(type) {
	case *TypeMismatchError:
		e.Value = masked
	case *RangeError:
		e.Value = masked
	case *InvalidEnumError:
		e.Value = masked
	case *FormatError:
		e.Value = masked
	}
}

// render formats a value for the diagnostic line.
func render(s *Spec, val any) string {
	switch {
	case s.Sensitive:
		return string(redact.Sprint(val).Redact())
	case s.Bytes:
		n, _ := val.(uint64)
		return fmt.Sprintf("%d (%s)", n, humanize.IBytes(n))
	default:
		return fmt.Sprint(val)
	}
}

// bind resolves every spec key to a field index path inside rec.
func bind(reg *Registry, rec any) (reflect.Value, map[string][]int, error) {
	rv := reflect.ValueOf(rec)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("option: record must be a non-nil pointer to struct, got %T", rec)
	}
	rv = rv.Elem()

	tagged := make(map[string][]int)
	if err := collectFields(rv.Type(), nil, tagged); err != nil {
		return reflect.Value{}, nil, err
	}

	fields := make(map[string][]int, len(reg.specs))
	for _, s := range reg.specs {
		idx, ok := tagged[s.Key]
		if !ok {
			return reflect.Value{}, nil, fmt.Errorf("option %q: no field tagged in %s", s.Key, rv.Type())
		}
		ft := rv.Type().FieldByIndex(idx).Type
		if ft.Kind() != s.Kind.goType().Kind() {
			return reflect.Value{}, nil, fmt.Errorf("option %q: field is %s, want %s", s.Key, ft, s.Kind.goType())
		}
		fields[s.Key] = idx
		delete(tagged, s.Key)
	}
	if len(tagged) > 0 {
		extra := slices.Sorted(maps.Keys(tagged))
		return reflect.Value{}, nil, fmt.Errorf("option %q: field tagged in %s but not registered", extra[0], rv.Type())
	}
	return rv, fields, nil
}

func collectFields(t reflect.Type, prefix []int, out map[string][]int) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		idx := append(append([]int(nil), prefix...), i)
		key, ok := f.Tag.Lookup(tagName)
		switch {
		case ok && key != "" && key != "-":
			if _, dup := out[key]; dup {
				return fmt.Errorf("option %q: tagged on more than one field of %s", key, t)
			}
			out[key] = idx
		case !ok && f.Type.Kind() == reflect.Struct:
			if err := collectFields(f.Type, idx, out); err != nil {
				return err
			}
		}
	}
	return nil
}
