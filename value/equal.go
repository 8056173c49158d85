package value

import (
	"fmt"
	"math"
	"reflect"
)

// SameValue compares like Object.is: NaN equals itself and positive and
// negative zero are distinct. It is the default change-detection predicate.
func SameValue(a, b any) bool {
	if x, ok := toNumber(a); ok {
		y, ok := toNumber(b)
		if !ok {
			return false
		}
		if math.IsNaN(x) && math.IsNaN(y) {
			return true
		}
		if x == 0 && y == 0 {
			return math.Signbit(x) == math.Signbit(y)
		}
		return x == y
	}
	return identical(a, b)
}

// SameValueZero is SameValue except that positive and negative zero are
// equal. Sets and maps use it for membership.
func SameValueZero(a, b any) bool {
	if x, ok := toNumber(a); ok {
		y, ok := toNumber(b)
		if !ok {
			return false
		}
		if math.IsNaN(x) && math.IsNaN(y) {
			return true
		}
		return x == y
	}
	return identical(a, b)
}

// StrictEqual compares like ===: NaN is never equal and zeros are equal.
func StrictEqual(a, b any) bool {
	if x, ok := toNumber(a); ok {
		y, ok := toNumber(b)
		return ok && x == y
	}
	return identical(a, b)
}

func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice, reflect.Map, reflect.Func, reflect.Pointer:
		if va.Kind() == reflect.Slice && va.Len() != vb.Len() {
			return false
		}
		return va.Pointer() == vb.Pointer()
	}
	return false
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// ToInt converts a numeric argument to an int, truncating toward zero and
// saturating at the int range. Non-numeric values yield def.
func ToInt(v any, def int) int {
	f, ok := toNumber(v)
	if !ok || math.IsNaN(f) {
		return def
	}
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

type nanKey struct{}

type refKey struct {
	typ reflect.Type
	ptr uintptr
}

// memberKey normalizes v into a comparable map key honoring SameValueZero.
func memberKey(v any) any {
	if f, ok := toNumber(v); ok {
		if math.IsNaN(f) {
			return nanKey{}
		}
		return f
	}
	if v == nil {
		return nil
	}
	t := reflect.TypeOf(v)
	if t.Comparable() {
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Func:
		return refKey{typ: t, ptr: rv.Pointer()}
	}
	return fmt.Sprintf("%T:%v", v, v)
}
