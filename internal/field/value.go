package field

import (
	"cmp"
	"strconv"
	"time"

	"github.com/cyra/clf/internal/parser"
)

// Kind is the semantic type of a field value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindTime:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Numeric reports whether values of this kind can be summed.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Ordered reports whether values of this kind have a natural order usable by
// max and min.
func (k Kind) Ordered() bool {
	return k.Numeric() || k == KindTime
}

// Value is a typed field value.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	t    time.Time
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Time returns a timestamp value.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Kind returns the kind the value was built with.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer held by v, or 0 for other kinds.
func (v Value) Int() int64 { return v.i }

// Time returns the timestamp held by v, or the zero time for other kinds.
func (v Value) Time() time.Time { return v.t }

// Float returns the value as a float64. Integers are converted.
func (v Value) Float() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// String coerces the value to its textual form. Timestamps use the log's own
// date layout so they compare equal to what appears between the brackets.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindTime:
		return v.t.Format(parser.TimeLayout)
	default:
		return v.s
	}
}

// Compare orders two values of the same kind. Timestamps compare as instants,
// so values with different UTC offsets order correctly. Values of different
// kinds compare by their string form.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		return cmp.Compare(a.String(), b.String())
	}
	switch a.kind {
	case KindInt:
		return cmp.Compare(a.i, b.i)
	case KindFloat:
		return cmp.Compare(a.f, b.f)
	case KindTime:
		return a.t.Compare(b.t)
	default:
		return cmp.Compare(a.s, b.s)
	}
}
