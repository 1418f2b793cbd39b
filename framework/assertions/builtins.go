package assertions

import (
	"fmt"
	"reflect"

	"github.com/launchdarkly/bdd-harness/framework/output"
	"github.com/launchdarkly/bdd-harness/framework/values"
)

const (
	TypeAssertion         = "type"
	EqualsAssertion       = "equals"
	IsTrueAssertion       = "isTrue"
	IsFalseAssertion      = "isFalse"
	IsNullAssertion       = "isNull"
	IsDefinedAssertion    = "isDefined"
	StringEqualsAssertion = "stringEquals"
	EnumEqualsAssertion   = "enumEquals"
)

// Builtins returns a new Registry containing the standard assertions.
func Builtins() *Registry {
	return NewRegistry().
		MustRegister(TypeAssertion, binary(TypeAssertion, assertType)).
		MustRegister(EqualsAssertion, binary(EqualsAssertion, assertEquals)).
		MustRegister(IsTrueAssertion, unary(IsTrueAssertion, assertIsTrue)).
		MustRegister(IsFalseAssertion, unary(IsFalseAssertion, assertIsFalse)).
		MustRegister(IsNullAssertion, unary(IsNullAssertion, assertIsNull)).
		MustRegister(IsDefinedAssertion, unary(IsDefinedAssertion, assertIsDefined)).
		MustRegister(StringEqualsAssertion, binary(StringEqualsAssertion, assertStringEquals)).
		MustRegister(EnumEqualsAssertion, binary(EnumEqualsAssertion, assertEnumEquals))
}

func unary(name string, fn func(out output.Sink, a interface{}) bool) Predicate {
	return func(out output.Sink, args ...interface{}) bool {
		if len(args) != 1 {
			return arityError(out, name, 1, len(args))
		}
		return fn(out, args[0])
	}
}

func binary(name string, fn func(out output.Sink, a, b interface{}) bool) Predicate {
	return func(out output.Sink, args ...interface{}) bool {
		if len(args) != 2 {
			return arityError(out, name, 2, len(args))
		}
		return fn(out, args[0], args[1])
	}
}

func arityError(out output.Sink, name string, want, got int) bool {
	return out.Error(fmt.Sprintf("Assertion %q takes %d argument(s) but was given %d.", name, want, got))
}

func assertType(out output.Sink, typeName, a interface{}) bool {
	expected := values.ToString(typeName)
	actual := values.TypeName(a)
	if actual != expected {
		return out.Error(fmt.Sprintf(`Expecting type of "%s" to be "%s" but was "%s" instead.`,
			values.ToString(a), expected, actual))
	}
	return true
}

func assertEquals(out output.Sink, a, b interface{}) bool {
	if !values.Identical(a, b) {
		return out.Error(fmt.Sprintf(`Expecting "%s" but found "%s".`, values.ToString(a), values.ToString(b)))
	}
	return true
}

func assertIsTrue(out output.Sink, a interface{}) bool {
	if a != true {
		return out.Error(fmt.Sprintf(`Object "%s" is not true.`, values.ToString(a)))
	}
	return true
}

func assertIsFalse(out output.Sink, a interface{}) bool {
	if a != false {
		return out.Error(fmt.Sprintf(`Object "%s" is not false.`, values.ToString(a)))
	}
	return true
}

func assertIsNull(out output.Sink, a interface{}) bool {
	if !values.IsNil(a) {
		return out.Error(fmt.Sprintf(`Object "%s" is not null.`, values.ToString(a)))
	}
	return true
}

func assertIsDefined(out output.Sink, a interface{}) bool {
	if values.IsNil(a) || values.IsUndefined(a) {
		return out.Error(fmt.Sprintf(`Object "%s" is not defined.`, values.ToString(a)))
	}
	return true
}

func assertStringEquals(out output.Sink, a, b interface{}) bool {
	sa, sb := values.ToString(a), values.ToString(b)
	if sa != sb {
		return out.Error(fmt.Sprintf(`String representation "%s" is different than String representation "%s".`,
			sa, sb))
	}
	return true
}

func assertEnumEquals(out output.Sink, a, b interface{}) bool {
	if !isEnumerable(a) || !isEnumerable(b) || !values.Equivalent(a, b) {
		return out.Error(fmt.Sprintf(`Enumerable ["%s"] is different than Enumerable ["%s"].`,
			values.ToString(a), values.ToString(b)))
	}
	return true
}

func isEnumerable(v interface{}) bool {
	if v == nil {
		return false
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}
