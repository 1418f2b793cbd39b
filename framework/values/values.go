// Package values defines how the engine compares, names and stringifies arbitrary values. The
// rules are explicit per kind of value rather than relying on any implicit conversion, and are
// shared by the assertion predicates and the mock argument matcher.
//
// Two equality relations are provided:
//
// Identical is strict: both values must have the same dynamic type and be deeply equal.
//
// Equivalent is loose, and is defined per kind:
//   - nil, nil pointers and Undefined are equivalent to each other and to nothing else
//   - numbers of any int, uint or float kind are compared by numeric value, so int(1) and
//     float64(1) are equivalent; numbers are never equivalent to strings or bools
//   - strings and bools are compared by value, ignoring named-type differences
//   - slices and arrays are compared element-wise, and must have the same length
//   - maps are compared key-wise, and must have the same keys
//   - structs of the same type are compared field-wise; structs with unexported fields fall back
//     to reflect.DeepEqual
//   - non-nil pointers are compared by what they point to
//   - anything else is compared with reflect.DeepEqual
package values

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined represents the absence of a value, as opposed to a nil value. Lookup returns it for a
// missing key.
var Undefined interface{} = undefined{} //nolint:gochecknoglobals

// Lookup returns the value stored under key in a map with string keys, or Undefined if the key is
// not present or m is not such a map.
func Lookup(m interface{}, key string) interface{} {
	v := reflect.ValueOf(m)
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return Undefined
	}
	found := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
	if !found.IsValid() {
		return Undefined
	}
	return found.Interface()
}

// IsNil returns true for nil itself and for nil pointers, maps, slices, functions, channels and
// interfaces. Undefined is not nil.
func IsNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// IsUndefined returns true if value is Undefined.
func IsUndefined(value interface{}) bool {
	return value == Undefined
}

// Identical is the strict equality relation.
func Identical(a, b interface{}) bool {
	return reflect.DeepEqual(a, b)
}

// Equivalent is the loose equality relation described in the package documentation.
func Equivalent(a, b interface{}) bool {
	if isNothing(a) || isNothing(b) {
		return isNothing(a) && isNothing(b)
	}
	if fa, ok := asNumber(a); ok {
		fb, ok := asNumber(b)
		return ok && fa == fb
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case va.Kind() == reflect.Ptr && vb.Kind() == reflect.Ptr:
		return Equivalent(va.Elem().Interface(), vb.Elem().Interface())
	case isSequence(va) && isSequence(vb):
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !Equivalent(va.Index(i).Interface(), vb.Index(i).Interface()) {
				return false
			}
		}
		return true
	case va.Kind() == reflect.Map && vb.Kind() == reflect.Map:
		return equivalentMaps(va, vb)
	case va.Kind() == reflect.Struct && vb.Kind() == reflect.Struct:
		return equivalentStructs(a, b, va, vb)
	case va.Kind() == reflect.String && vb.Kind() == reflect.String:
		return va.String() == vb.String()
	case va.Kind() == reflect.Bool && vb.Kind() == reflect.Bool:
		return va.Bool() == vb.Bool()
	default:
		return reflect.DeepEqual(a, b)
	}
}

func isNothing(value interface{}) bool {
	if value == nil || value == Undefined {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

func isSequence(v reflect.Value) bool {
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

func asNumber(value interface{}) (float64, bool) {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}

func equivalentMaps(va, vb reflect.Value) bool {
	if va.Len() != vb.Len() || va.Type().Key() != vb.Type().Key() {
		return false
	}
	iter := va.MapRange()
	for iter.Next() {
		other := vb.MapIndex(iter.Key())
		if !other.IsValid() || !Equivalent(iter.Value().Interface(), other.Interface()) {
			return false
		}
	}
	return true
}

func equivalentStructs(a, b interface{}, va, vb reflect.Value) bool {
	if va.Type() != vb.Type() {
		return false
	}
	for i := 0; i < va.NumField(); i++ {
		if !va.Field(i).CanInterface() {
			return reflect.DeepEqual(a, b)
		}
	}
	for i := 0; i < va.NumField(); i++ {
		if !Equivalent(va.Field(i).Interface(), vb.Field(i).Interface()) {
			return false
		}
	}
	return true
}

// ToString converts a value to the string form used by the stringEquals assertion and by failure
// messages. Sequences are rendered as their elements joined with commas and no brackets.
func ToString(value interface{}) string {
	if value == nil {
		return "null"
	}
	switch v := value.(type) {
	case string:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	if f, ok := asNumber(value); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return "null"
		}
		return ToString(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts = append(parts, ToString(rv.Index(i).Interface()))
		}
		return strings.Join(parts, ",")
	case reflect.String:
		return rv.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}

// FormatList renders a list of values as "[a,b,c]".
func FormatList(list []interface{}) string {
	parts := make([]string, 0, len(list))
	for _, v := range list {
		parts = append(parts, ToString(v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// TypeName returns the JSON kind of a value: "null", "boolean", "number", "string", "array" or
// "object", plus "undefined" for Undefined and "function" for funcs.
func TypeName(value interface{}) string {
	if value == Undefined {
		return "undefined"
	}
	if value != nil {
		switch reflect.ValueOf(value).Kind() {
		case reflect.Func:
			return "function"
		case reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
			return "object"
		}
	}
	switch ldvalue.CopyArbitraryValue(value).Type() {
	case ldvalue.BoolType:
		return "boolean"
	case ldvalue.NumberType:
		return "number"
	case ldvalue.StringType:
		return "string"
	case ldvalue.ArrayType:
		return "array"
	case ldvalue.ObjectType:
		return "object"
	default:
		return "null"
	}
}
