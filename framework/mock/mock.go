// Package mock provides fake objects for examples. An Instance dispatches calls by method name:
// expected methods record the arguments they receive, stubbed methods return a fixed value. After
// the example body has finished, the Set that owns the instances verifies every expectation.
package mock

import (
	"fmt"
	"sync"

	"github.com/launchdarkly/bdd-harness/framework/output"
	"github.com/launchdarkly/bdd-harness/framework/values"
)

// Mock is the capability interface of a fake object.
type Mock interface {
	// Call invokes a method by name and returns its stubbed value, if any.
	Call(method string, args ...interface{}) interface{}
	// ExpectCall declares that method must have been called with args by verification time.
	ExpectCall(method string, args ...interface{})
	// StubCall makes method return value. Stubs are never verified.
	StubCall(method string, value interface{})
}

// Owner is told about every expectation as it is declared. An example uses this to count each
// expectation as an assertion, whether or not it is eventually satisfied.
type Owner interface {
	ExpectationAdded(method string)
}

// VerifyMode controls how many failures are reported per mock.
type VerifyMode int

const (
	// VerifyAll reports every failing method of every mock.
	VerifyAll VerifyMode = iota
	// VerifyFirstFailure reports only the first failing method of each mock.
	VerifyFirstFailure
)

// Expectation is one expected method call.
type Expectation struct {
	Method string
	Args   []interface{}
}

// Expect is a shortcut for creating an Expectation.
func Expect(method string, args ...interface{}) Expectation {
	return Expectation{Method: method, Args: args}
}

// Instance is one fake object. Calls may come from goroutines started by the example body, so
// its state is locked.
type Instance struct {
	name          string
	set           *Set
	expectedOrder []string
	expected      map[string][]interface{}
	actual        map[string][]interface{}
	stubs         map[string]interface{}
	unexpected    []string
	lock          sync.Mutex
}

var _ Mock = (*Instance)(nil)

func newInstance(name string, set *Set) *Instance {
	return &Instance{
		name:     name,
		set:      set,
		expected: make(map[string][]interface{}),
		actual:   make(map[string][]interface{}),
		stubs:    make(map[string]interface{}),
	}
}

// Name returns the name given to the mock when it was created.
func (m *Instance) Name() string { return m.name }

// Expects declares several expectations at once, in order.
func (m *Instance) Expects(calls ...Expectation) *Instance {
	for _, c := range calls {
		m.ExpectCall(c.Method, c.Args...)
	}
	return m
}

// ExpectCall declares an expectation. Declaring the same method again replaces its expected
// arguments but keeps its original position in the verification order.
func (m *Instance) ExpectCall(method string, args ...interface{}) {
	m.lock.Lock()
	if _, exists := m.expected[method]; !exists {
		m.expectedOrder = append(m.expectedOrder, method)
	}
	m.expected[method] = append([]interface{}{}, args...)
	m.lock.Unlock()
	if m.set != nil && m.set.owner != nil {
		m.set.owner.ExpectationAdded(method)
	}
}

// Stubs installs several stubbed methods at once.
func (m *Instance) Stubs(stubs map[string]interface{}) *Instance {
	for method, value := range stubs {
		m.StubCall(method, value)
	}
	return m
}

func (m *Instance) StubCall(method string, value interface{}) {
	m.lock.Lock()
	m.stubs[method] = value
	m.lock.Unlock()
}

// Call invokes a method. For an expected method the arguments are recorded, replacing those of
// any earlier call. If the method is stubbed, the stubbed value is returned; otherwise nil. A
// method that is neither expected nor stubbed is remembered and reported by verification.
func (m *Instance) Call(method string, args ...interface{}) interface{} {
	m.lock.Lock()
	defer m.lock.Unlock()
	_, isExpected := m.expected[method]
	stub, isStubbed := m.stubs[method]
	if isExpected {
		m.actual[method] = append([]interface{}{}, args...)
	}
	if !isExpected && !isStubbed {
		m.unexpected = append(m.unexpected, method)
	}
	return stub
}

// LastCall returns the arguments of the most recent call to an expected method.
func (m *Instance) LastCall(method string) ([]interface{}, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	args, ok := m.actual[method]
	return args, ok
}

func (m *Instance) verify(mode VerifyMode, out output.Sink) []string {
	m.lock.Lock()
	defer m.lock.Unlock()
	var messages []string
	for _, method := range m.expectedOrder {
		expected := m.expected[method]
		actual, called := m.actual[method]
		switch {
		case !called:
			messages = append(messages, fmt.Sprintf("Expected %s() but was not called", method))
		case !argumentsMatch(expected, actual):
			messages = append(messages, fmt.Sprintf("Expected %s() with %s but received %s",
				method, values.FormatList(expected), values.FormatList(actual)))
			out.Log(values.FormatList(actual))
		default:
			continue
		}
		if mode == VerifyFirstFailure {
			return messages
		}
	}
	seen := make(map[string]bool)
	for _, method := range m.unexpected {
		if seen[method] {
			continue
		}
		seen[method] = true
		messages = append(messages, fmt.Sprintf("Unexpected call to %s()", method))
		if mode == VerifyFirstFailure {
			return messages
		}
	}
	return messages
}

func argumentsMatch(expected, actual []interface{}) bool {
	if len(expected) != len(actual) {
		return false
	}
	for i := range expected {
		if !values.Equivalent(expected[i], actual[i]) {
			return false
		}
	}
	return true
}
