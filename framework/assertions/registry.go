// Package assertions is the registry of named predicates that examples assert with. A registry
// is bound to one example at a time through an Asserter, which turns each predicate result into a
// pass or a failure recorded against that example.
package assertions

import (
	"errors"
	"fmt"
	"sort"

	"github.com/launchdarkly/bdd-harness/framework/output"
)

var (
	// ErrDuplicateAssertion is returned by Register when the name is already taken.
	ErrDuplicateAssertion = errors.New("assertion is already registered")

	// ErrInvalidAssertion is returned by Register for an empty name or a nil predicate.
	ErrInvalidAssertion = errors.New("invalid assertion")
)

// Predicate is the implementation of a named assertion. It returns true if the arguments satisfy
// it. On failure it is responsible for describing the expected and actual values, normally by
// returning the result of out.Error.
type Predicate func(out output.Sink, args ...interface{}) bool

// Recorder receives the outcome of each assertion call.
type Recorder interface {
	AssertionPassed(name string)
	AssertionFailed(name string)
}

// Registry maps assertion names to predicates. It is not safe for concurrent mutation; register
// everything before a run starts.
type Registry struct {
	predicates map[string]Predicate
}

// NewRegistry returns an empty Registry. Most callers want Builtins instead.
func NewRegistry() *Registry {
	return &Registry{predicates: make(map[string]Predicate)}
}

// Register adds a named predicate.
func (r *Registry) Register(name string, predicate Predicate) error {
	if name == "" || predicate == nil {
		return fmt.Errorf("%w: name and predicate are required", ErrInvalidAssertion)
	}
	if _, exists := r.predicates[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateAssertion, name)
	}
	r.predicates[name] = predicate
	return nil
}

// MustRegister is like Register but panics on error. It is meant for package-level setup code.
func (r *Registry) MustRegister(name string, predicate Predicate) *Registry {
	if err := r.Register(name, predicate); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the predicate registered under name.
func (r *Registry) Lookup(name string) (Predicate, bool) {
	p, ok := r.predicates[name]
	return p, ok
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	ret := make([]string, 0, len(r.predicates))
	for name := range r.predicates {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// Clone returns an independent copy, so that one run can add assertions without affecting another.
func (r *Registry) Clone() *Registry {
	ret := NewRegistry()
	for name, p := range r.predicates {
		ret.predicates[name] = p
	}
	return ret
}

// Asserter is a Registry bound to one example.
type Asserter struct {
	registry *Registry
	recorder Recorder
	out      output.Sink
}

// Bind creates the assertion surface for one example.
func Bind(registry *Registry, recorder Recorder, out output.Sink) *Asserter {
	return &Asserter{registry: registry, recorder: recorder, out: out}
}

// Call evaluates the named assertion. An unknown name counts as a failed assertion.
func (a *Asserter) Call(name string, args ...interface{}) bool {
	predicate, ok := a.registry.Lookup(name)
	if !ok {
		a.out.Error(fmt.Sprintf("Unknown assertion %q.", name))
		a.recorder.AssertionFailed(name)
		return false
	}
	if predicate(a.out, args...) {
		a.recorder.AssertionPassed(name)
		return true
	}
	a.recorder.AssertionFailed(name)
	return false
}

// Type asserts that the JSON kind of value (see values.TypeName) is typeName.
func (a *Asserter) Type(typeName string, value interface{}) bool {
	return a.Call(TypeAssertion, typeName, value)
}

// Equals asserts that actual is identical to expected, without any conversion.
func (a *Asserter) Equals(expected, actual interface{}) bool {
	return a.Call(EqualsAssertion, expected, actual)
}

func (a *Asserter) IsTrue(value interface{}) bool { return a.Call(IsTrueAssertion, value) }

func (a *Asserter) IsFalse(value interface{}) bool { return a.Call(IsFalseAssertion, value) }

func (a *Asserter) IsNull(value interface{}) bool { return a.Call(IsNullAssertion, value) }

func (a *Asserter) IsDefined(value interface{}) bool { return a.Call(IsDefinedAssertion, value) }

// StringEquals asserts that both values have the same string form.
func (a *Asserter) StringEquals(expected, actual interface{}) bool {
	return a.Call(StringEqualsAssertion, expected, actual)
}

// EnumEquals asserts that two slices or arrays have the same length and equivalent elements.
func (a *Asserter) EnumEquals(expected, actual interface{}) bool {
	return a.Call(EnumEqualsAssertion, expected, actual)
}
