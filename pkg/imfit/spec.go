package imfit

import(
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FixedKeyword is how a fixed parameter is written, both in our YAML
// specs (`[1.0, fixed]`) and in imfit's config grammar.
const FixedKeyword = "fixed"

// Bounds are a [Min,Max] pair. Whether they are absolute, or offsets
// from the value, depends on who is reading them (see Param).
type Bounds struct {
	Min float64
	Max float64
}

// A Spec is a request for a parameter: an initial value, and either
// a pair of bounds, or a fixed flag, or neither. Never both.
type Spec struct {
	Value   float64
	Bounds *Bounds
	Fixed   bool
}

func Free(v float64) Spec                  { return Spec{Value: v} }
func Bounded(v, lo, hi float64) Spec       { return Spec{Value: v, Bounds: &Bounds{lo, hi}} }
func Fixed(v float64) Spec                 { return Spec{Value: v, Fixed: true} }

func (s Spec)String() string {
	switch {
	case s.Fixed:         return fmt.Sprintf("[%s, %s]", formatFloat(s.Value), FixedKeyword)
	case s.Bounds != nil: return fmt.Sprintf("[%s, %s, %s]", formatFloat(s.Value), formatFloat(s.Bounds.Min), formatFloat(s.Bounds.Max))
	default:              return formatFloat(s.Value)
	}
}

// ParseSpec destructures a loosely typed spec, as it arrives from YAML:
//  - a bare number          => free, no bounds
//  - [value, min, max]      => free, bounded
//  - [value, "fixed"]       => fixed, no bounds
// Any other sequence length is an error. A nil value, or a sequence
// whose value is nil, comes back with ok=false: "keep the default".
func ParseSpec(v interface{}) (spec Spec, ok bool, err error) {
	if v == nil {
		return Spec{}, false, nil
	}

	seq, isSeq := v.([]interface{})
	if !isSeq {
		val, err := toFloat(v)
		if err != nil {
			return Spec{}, false, errors.Wrapf(ErrInvalidSpec, "value %v: %v", v, err)
		}
		return Free(val), true, nil
	}

	if len(seq) > 0 && seq[0] == nil {
		return Spec{}, false, nil
	}

	switch len(seq) {
	case 3:
		vals := [3]float64{}
		for i, elem := range seq {
			f, err := toFloat(elem)
			if err != nil {
				return Spec{}, false, errors.Wrapf(ErrInvalidSpec, "%v, element %d: %v", seq, i, err)
			}
			vals[i] = f
		}
		return Bounded(vals[0], vals[1], vals[2]), true, nil

	case 2:
		val, err := toFloat(seq[0])
		if err != nil {
			return Spec{}, false, errors.Wrapf(ErrInvalidSpec, "%v, value: %v", seq, err)
		}
		if kw, isStr := seq[1].(string); !isStr || !strings.EqualFold(kw, FixedKeyword) {
			return Spec{}, false, errors.Wrapf(ErrInvalidSpec, "%v: second element must be %q", seq, FixedKeyword)
		}
		return Fixed(val), true, nil
	}

	return Spec{}, false, errors.Wrapf(ErrInvalidSpec, "%v: sequence of length %d", seq, len(seq))
}

// ParseSpecs runs ParseSpec over a map of overrides, dropping the
// entries that ask for the default.
func ParseSpecs(in map[string]interface{}) (map[string]Spec, error) {
	out := map[string]Spec{}
	for name, v := range in {
		spec, ok, err := ParseSpec(v)
		if err != nil {
			return nil, errors.Wrapf(err, "param %s", name)
		} else if ok {
			out[name] = spec
		}
	}
	return out, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64: return n, nil
	case float32: return float64(n), nil
	case int:     return float64(n), nil
	case int64:   return float64(n), nil
	case uint64:  return float64(n), nil
	case string:  return strconv.ParseFloat(strings.TrimSpace(n), 64)
	}
	return 0, fmt.Errorf("%v (%T) is not a number", v, v)
}

// formatFloat renders numbers the way imfit config files have always
// been written: shortest round-trip form, with a trailing ".0" on
// whole numbers, and exponents only for very large/small magnitudes.
func formatFloat(v float64) string {
	a := v
	if a < 0 { a = -a }
	if a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".nN") {
		s += ".0"
	}
	return s
}
