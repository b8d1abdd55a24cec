package sortagg

import (
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-sif/sortagg/errors"
	"golang.org/x/exp/constraints"
)

// Normalize converts a Go value into the representation stored within Blocks:
//
//	int, int8, int16, int32, int64, uint8, uint16, uint32 -> int64
//	uint, uint64 (<= math.MaxInt64)                         -> int64
//	float32, float64                                        -> float64
//	string, bool, time.Time                                 -> unchanged
//	nil, NaN                                                -> nil (null)
//
// Any other value is returned unchanged, and may only be stored in untyped columns.
func Normalize(v interface{}) interface{} {
	switch tv := v.(type) {
	case int:
		return int64(tv)
	case int8:
		return int64(tv)
	case int16:
		return int64(tv)
	case int32:
		return int64(tv)
	case uint8:
		return int64(tv)
	case uint16:
		return int64(tv)
	case uint32:
		return int64(tv)
	case uint:
		if uint64(tv) <= math.MaxInt64 {
			return int64(tv)
		}
	case uint64:
		if tv <= math.MaxInt64 {
			return int64(tv)
		}
	case float32:
		if math.IsNaN(float64(tv)) {
			return nil
		}
		return float64(tv)
	case float64:
		if math.IsNaN(tv) {
			return nil
		}
	}
	return v
}

// CompareValues orders two non-null values, returning a negative number if a < b,
// zero if a == b and a positive number if a > b. int64 and float64 values compare
// exactly with one another. Values of any other differing kinds are incomparable.
func CompareValues(a interface{}, b interface{}) (int, error) {
	a, b = Normalize(a), Normalize(b)
	switch av := a.(type) {
	case int64:
		switch bv := b.(type) {
		case int64:
			return compareOrdered(av, bv), nil
		case float64:
			return compareIntFloat(av, bv), nil
		}
	case float64:
		switch bv := b.(type) {
		case float64:
			return compareOrdered(av, bv), nil
		case int64:
			return -compareIntFloat(bv, av), nil
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv), nil
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0, nil
			case !av:
				return -1, nil
			default:
				return 1, nil
			}
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv), nil
		}
	}
	return 0, errors.IncomparableValuesError{Left: a, Right: b}
}

func compareOrdered[T constraints.Ordered](a T, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareIntFloat compares without rounding i through float64, which is
// inexact beyond 2^53
func compareIntFloat(i int64, f float64) int {
	switch {
	case f >= math.MaxInt64:
		// float64(math.MaxInt64) rounds up to 2^63
		return -1
	case f < math.MinInt64:
		return 1
	case math.Trunc(f) == f:
		return compareOrdered(i, int64(f))
	}
	// a fractional f lies strictly between two ints, and never equals float64(i)
	return compareOrdered(float64(i), f)
}

// CompareDirected orders two possibly-null values according to a Direction.
// Nulls sort last regardless of Direction.
func CompareDirected(a interface{}, b interface{}, dir Direction) (int, error) {
	a, b = Normalize(a), Normalize(b)
	switch {
	case a == nil && b == nil:
		return 0, nil
	case a == nil:
		return 1, nil
	case b == nil:
		return -1, nil
	}
	res, err := CompareValues(a, b)
	if err != nil {
		return 0, err
	}
	if dir == Descending {
		return -res, nil
	}
	return res, nil
}

// ValuesEqual returns true iff two possibly-null values are equal. Two nulls are equal.
// Values which cannot be ordered are compared structurally.
func ValuesEqual(a interface{}, b interface{}) bool {
	a, b = Normalize(a), Normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	res, err := CompareValues(a, b)
	if err != nil {
		return reflect.DeepEqual(a, b)
	}
	return res == 0
}

// AsInt64 converts a stored value into an int64. ok is false iff the value is null.
func AsInt64(v interface{}) (value int64, ok bool, err error) {
	switch tv := Normalize(v).(type) {
	case nil:
		return 0, false, nil
	case int64:
		return tv, true, nil
	default:
		return 0, false, errors.NumericTypeError{Type: "int64", Value: v}
	}
}

// AsFloat64 converts a stored value into a float64, widening int64 values.
// ok is false iff the value is null.
func AsFloat64(v interface{}) (value float64, ok bool, err error) {
	switch tv := Normalize(v).(type) {
	case nil:
		return 0, false, nil
	case float64:
		return tv, true, nil
	case int64:
		return float64(tv), true, nil
	default:
		return 0, false, errors.NumericTypeError{Type: "float64", Value: v}
	}
}

// AsString converts a stored value into a string. ok is false iff the value is null.
func AsString(v interface{}) (value string, ok bool, err error) {
	switch tv := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return tv, true, nil
	default:
		return "", false, errors.IncompatibleValueError{Type: "string", Value: v}
	}
}

// AsBool converts a stored value into a bool. ok is false iff the value is null.
func AsBool(v interface{}) (value bool, ok bool, err error) {
	switch tv := v.(type) {
	case nil:
		return false, false, nil
	case bool:
		return tv, true, nil
	default:
		return false, false, errors.IncompatibleValueError{Type: "bool", Value: v}
	}
}

// AsTime converts a stored value into a time.Time. ok is false iff the value is null.
func AsTime(v interface{}) (value time.Time, ok bool, err error) {
	switch tv := v.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return tv, true, nil
	default:
		return time.Time{}, false, errors.IncompatibleValueError{Type: "time", Value: v}
	}
}
