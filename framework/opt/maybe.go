// Package opt provides an optional value type used for fields that may legitimately be absent,
// such as the source location of a recovered panic or a setting omitted from a configuration file.
package opt

import (
	"encoding/json"
	"fmt"
)

// Maybe holds either a value of type V or nothing.
type Maybe[V any] struct {
	defined bool
	value   V
}

// Some returns a Maybe that has a defined value.
func Some[V any](value V) Maybe[V] {
	return Maybe[V]{defined: true, value: value}
}

// None returns a Maybe with no value.
func None[V any]() Maybe[V] { return Maybe[V]{} }

// IsDefined returns true if the Maybe has a value.
func (m Maybe[V]) IsDefined() bool { return m.defined }

// Value returns the value, or the zero value of V if there is none.
func (m Maybe[V]) Value() V { return m.value }

// OrElse returns the value if defined, or fallback otherwise.
func (m Maybe[V]) OrElse(fallback V) V {
	if m.defined {
		return m.value
	}
	return fallback
}

// String returns "[none]" for an empty Maybe; otherwise the value's own String() if it has one,
// or its "%v" rendering.
func (m Maybe[V]) String() string {
	if !m.defined {
		return "[none]"
	}
	var v interface{} = m.value
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", m.value)
}

// UnmarshalJSON treats a JSON null as None and anything else as Some of the decoded value. A
// property that is missing altogether leaves the Maybe untouched, which is also None.
func (m *Maybe[V]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = None[V]()
		return nil
	}
	var value V
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*m = Some(value)
	return nil
}
