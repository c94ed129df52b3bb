package ir

import (
	"cmp"
	"math"
	"slices"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Kind identifies the variant of a SystemValue.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
)

// String returns the display name used by the keys listing.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindBool:
		return "Boolean"
	case KindInt:
		return "Integer"
	case KindFloat:
		return "Float"
	default:
		return "Unknown"
	}
}

// SystemValue is a sealed interface for one piece of observed system state.
// Only String, Bool, Int and Float implement it.
type SystemValue interface {
	// Kind reports the variant.
	Kind() Kind

	// Literal renders the value as plain text, the form substituted into
	// action templates ("true", "42", "0.5", raw string contents).
	Literal() string

	// Quoted renders the value the way it is written inside a condition
	// expression. Strings are double-quoted, everything else matches Literal.
	Quoted() string

	systemValue() // Sealed
}

// String is a text value.
type String string

func (String) systemValue() {}

// Kind implements SystemValue.
func (String) Kind() Kind { return KindString }

// Literal implements SystemValue.
func (s String) Literal() string { return string(s) }

// Quoted implements SystemValue.
func (s String) Quoted() string { return strconv.Quote(string(s)) }

// Bool is a boolean value.
type Bool bool

func (Bool) systemValue() {}

// Kind implements SystemValue.
func (Bool) Kind() Kind { return KindBool }

// Literal implements SystemValue.
func (b Bool) Literal() string { return strconv.FormatBool(bool(b)) }

// Quoted implements SystemValue.
func (b Bool) Quoted() string { return b.Literal() }

// Int is a 64-bit signed integer value.
type Int int64

func (Int) systemValue() {}

// Kind implements SystemValue.
func (Int) Kind() Kind { return KindInt }

// Literal implements SystemValue.
func (i Int) Literal() string { return strconv.FormatInt(int64(i), 10) }

// Quoted implements SystemValue.
func (i Int) Quoted() string { return i.Literal() }

// Float is a 64-bit floating point value.
type Float float64

func (Float) systemValue() {}

// Kind implements SystemValue.
func (Float) Kind() Kind { return KindFloat }

// Literal implements SystemValue.
// Uses the shortest representation that round-trips: 1.0 renders as "1".
func (f Float) Literal() string { return strconv.FormatFloat(float64(f), 'f', -1, 64) }

// Quoted implements SystemValue.
func (f Float) Quoted() string { return f.Literal() }

// NewString creates a String value in NFC normal form.
// Providers should build string values through this constructor.
func NewString(s string) String {
	return String(norm.NFC.String(s))
}

// NewBool creates a Bool value.
func NewBool(b bool) Bool {
	return Bool(b)
}

// NewInt creates an Int value.
func NewInt(n int64) Int {
	return Int(n)
}

// NewFloat creates a Float value.
func NewFloat(f float64) Float {
	return Float(f)
}

// Equal reports whether a and b are the same variant holding the same value.
// Values of different variants are never equal. A nil operand is never equal
// to anything, including another nil.
func Equal(a, b SystemValue) bool {
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	default:
		return false
	}
}

// Compare orders a against b. The second result is false when the pair is
// unordered: different variants, a nil operand, or a NaN float.
// Booleans order false before true.
func Compare(a, b SystemValue) (int, bool) {
	switch av := a.(type) {
	case String:
		if bv, ok := b.(String); ok {
			return cmp.Compare(av, bv), true
		}
	case Bool:
		if bv, ok := b.(Bool); ok {
			return cmp.Compare(boolRank(bool(av)), boolRank(bool(bv))), true
		}
	case Int:
		if bv, ok := b.(Int); ok {
			return cmp.Compare(av, bv), true
		}
	case Float:
		if bv, ok := b.(Float); ok {
			if math.IsNaN(float64(av)) || math.IsNaN(float64(bv)) {
				return 0, false
			}
			return cmp.Compare(av, bv), true
		}
	}
	return 0, false
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Snapshot maps state keys to values, as produced by a provider or held by
// the engine's state store.
type Snapshot map[string]SystemValue

// SortedKeys returns the snapshot keys in byte order for deterministic
// iteration.
func (s Snapshot) SortedKeys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone returns a shallow copy. Values are immutable so a shallow copy is a
// full copy.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
