// internal/option/kind.go
//
// Value kinds and coercion.
//
// Context
// -------
// The Environment hands us untyped values.  YAML gives ints, floats, and
// bools; env vars, SQL override rows, and Vault always give strings.
// `coerce` folds all of those into the single Go type a Kind maps to:
//
//	Int    → int
//	Uint64 → uint64
//	Double → float64
//	Bool   → bool
//	String → string
//
// Notes
// -----
//   - Uint64 strings may carry a size suffix (`16GiB`, `1200MiB`).  Parsing
//     is delegated to go-humanize.
//   - Floats with a fractional part never coerce to Int or Uint64.
//   - NaN never coerces to Double, whether YAML `.nan` or the string "NaN".
package option

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Kind is the declared type of an option.
type Kind int

const (
	Int Kind = iota + 1
	Uint64
	Double
	Bool
	String
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Uint64:
		return "unsigned int64"
	case Double:
		return "double"
	case Bool:
		return "bool"
	case String:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// goType is the record field type each kind binds to.
func (k Kind) goType() reflect.Type {
	switch k {
	case Int:
		return reflect.TypeOf(int(0))
	case Uint64:
		return reflect.TypeOf(uint64(0))
	case Double:
		return reflect.TypeOf(float64(0))
	case Bool:
		return reflect.TypeOf(false)
	case String:
		return reflect.TypeOf("")
	default:
		return nil
	}
}

// valid reports whether k is one of the declared kinds.
func (k Kind) valid() bool { return k >= Int && k <= String }

// errCoerce is returned by coerce; callers turn it into a TypeMismatchError.
var errCoerce = errors.New("value cannot be coerced")

// coerce converts raw to the Go type of k.
func coerce(k Kind, raw any) (any, error) {
	switch k {
	case Int:
		return toInt(raw)
	case Uint64:
		return toUint64(raw)
	case Double:
		return toFloat(raw)
	case Bool:
		return toBool(raw)
	case String:
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return nil, errCoerce
	}
	return nil, errCoerce
}

func toInt(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int8, int16, int32, int64:
		n := reflect.ValueOf(v).Int()
		if n < math.MinInt || n > math.MaxInt {
			return nil, errCoerce
		}
		return int(n), nil
	case uint, uint8, uint16, uint32, uint64:
		n := reflect.ValueOf(v).Uint()
		if n > math.MaxInt {
			return nil, errCoerce
		}
		return int(n), nil
	case float32, float64:
		f := reflect.ValueOf(v).Float()
		if f != math.Trunc(f) || f < math.MinInt || f > math.MaxInt {
			return nil, errCoerce
		}
		return int(f), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 0)
		if err != nil {
			return nil, errCoerce
		}
		return int(n), nil
	}
	return nil, errCoerce
}

func toUint64(raw any) (any, error) {
	switch v := raw.(type) {
	case uint, uint8, uint16, uint32, uint64:
		return reflect.ValueOf(v).Uint(), nil
	case int, int8, int16, int32, int64:
		n := reflect.ValueOf(v).Int()
		if n < 0 {
			return nil, errCoerce
		}
		return uint64(n), nil
	case float32, float64:
		f := reflect.ValueOf(v).Float()
		if f < 0 || f != math.Trunc(f) || f >= math.MaxUint64 {
			return nil, errCoerce
		}
		return uint64(f), nil
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "-") {
			return nil, errCoerce
		}
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n, nil
		}
		// Size strings: 16GiB, 1200 MiB, 32G.
		n, err := humanize.ParseBytes(s)
		if err != nil {
			return nil, errCoerce
		}
		return n, nil
	}
	return nil, errCoerce
}

func toFloat(raw any) (any, error) {
	switch v := raw.(type) {
	case float32, float64:
		f := reflect.ValueOf(v).Float()
		if math.IsNaN(f) {
			return nil, errCoerce
		}
		return f, nil
	case int, int8, int16, int32, int64:
		return float64(reflect.ValueOf(v).Int()), nil
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(v).Uint()), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) {
			return nil, errCoerce
		}
		return f, nil
	}
	return nil, errCoerce
}

func toBool(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, errCoerce
		}
		return b, nil
	}
	return nil, errCoerce
}
