package selftests

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/bdd-harness/framework/assertions"
	"github.com/launchdarkly/bdd-harness/framework/bdd"
	"github.com/launchdarkly/bdd-harness/framework/helpers"
	"github.com/launchdarkly/bdd-harness/framework/mock"
	"github.com/launchdarkly/bdd-harness/framework/output"
	"github.com/launchdarkly/bdd-harness/framework/values"
)

// ContainsAssertion is registered by Assertions in addition to the builtins.
const ContainsAssertion = "contains"

// Assertions returns the registry the self-tests need: the builtins plus "contains".
func Assertions() *assertions.Registry {
	return assertions.Builtins().MustRegister(ContainsAssertion, assertContains)
}

func assertContains(out output.Sink, args ...interface{}) bool {
	if len(args) != 2 {
		return out.Error(fmt.Sprintf("Assertion %q takes 2 argument(s) but was given %d.", ContainsAssertion, len(args)))
	}
	haystack, needle := values.ToString(args[0]), values.ToString(args[1])
	if !strings.Contains(haystack, needle) {
		return out.Error(fmt.Sprintf(`String "%s" does not contain "%s".`, haystack, needle))
	}
	return true
}

func registerAssertions(reg *bdd.Registry) error {
	return reg.Describe(EngineSuite, "assertions", bdd.Examples{
		bdd.It("should compare values strictly", func(e *bdd.Example) {
			e.Assert().Equals(1, 1)
			e.Assert().Equals("a", "a")
			e.Assert().Equals([]int{1, 2}, []int{1, 2})
		}),
		bdd.It("should compare string forms", func(e *bdd.Example) {
			e.Assert().StringEquals(1, "1")
			e.Assert().StringEquals(true, "true")
			e.Assert().StringEquals([]int{1, 2}, "1,2")
		}),
		bdd.It("should compare sequences element by element", func(e *bdd.Example) {
			e.Assert().EnumEquals([]int{1, 2, 3}, []interface{}{1, 2, 3})
			e.Assert().EnumEquals([]string{}, []string{})
		}),
		bdd.It("should check kinds", func(e *bdd.Example) {
			e.Assert().Type("string", "x")
			e.Assert().Type("number", 2.5)
			e.Assert().Type("boolean", false)
			e.Assert().Type("array", []int{})
			e.Assert().Type("object", map[string]int{})
			e.Assert().Type("null", nil)
			e.Assert().Type("undefined", values.Undefined)
		}),
		bdd.It("should check truth and presence", func(e *bdd.Example) {
			e.Assert().IsTrue(true)
			e.Assert().IsFalse(false)
			e.Assert().IsNull(nil)
			e.Assert().IsDefined(0)
		}),
		bdd.It("should use registered assertions", func(e *bdd.Example) {
			e.Assert().Call(ContainsAssertion, "behavior-driven", "driven")
		}),
		bdd.It("should accept testify assertions", func(e *bdd.Example) {
			e.Assert().IsTrue(assert.Equal(e, []string{"a"}, []string{"a"}))
			require.NotEmpty(e, e.Name())
		}),
	})
}

type account struct {
	balance int
}

func registerSetupAndTeardown(reg *bdd.Registry) error {
	var current *account
	var teardowns int
	return reg.Describe(EngineSuite, "setup and teardown", bdd.Examples{
		bdd.Setup(func(e *bdd.Example) {
			current = &account{balance: 100}
		}),
		bdd.Teardown(func(e *bdd.Example) {
			current = nil
			teardowns++
			e.Debug("teardown %d done", teardowns)
		}),
		bdd.It("should start from a fresh fixture", func(e *bdd.Example) {
			e.Assert().Equals(100, current.balance)
			current.balance -= 30
			e.Assert().Equals(70, current.balance)
		}),
		bdd.It("should not see changes made by other examples", func(e *bdd.Example) {
			e.Assert().Equals(100, current.balance)
			e.Assert().Equals(1, teardowns)
		}),
	})
}

func registerMocks(reg *bdd.Registry) error {
	return reg.Describe(EngineSuite, "mocks", bdd.Examples{
		bdd.It("should verify expected calls", func(e *bdd.Example) {
			store := e.Mock("store").Expects(
				mock.Expect("save", "key", 1),
				mock.Expect("flush"),
			)
			store.Call("save", "key", 1)
			store.Call("flush")
		}),
		bdd.It("should return stubbed values", func(e *bdd.Example) {
			store := e.Mock("store").Stubs(map[string]interface{}{"load": "cached"})
			e.Assert().Equals("cached", store.Call("load"))
			e.Assert().Equals("cached", store.Call("load", "ignored"))
		}),
		bdd.It("should record calls to stubbed expectations", func(e *bdd.Example) {
			clock := e.Mock("clock")
			clock.ExpectCall("now")
			clock.StubCall("now", 42)
			e.Assert().Equals(42, clock.Call("now"))
			args, called := clock.LastCall("now")
			e.Assert().IsTrue(called)
			e.Assert().Equals(0, len(args))
		}),
		bdd.It("should keep mocks apart", func(e *bdd.Example) {
			a, b := e.Mock("a"), e.Mock("b")
			a.ExpectCall("ping", 1)
			b.ExpectCall("ping", 2)
			b.Call("ping", 2)
			a.Call("ping", 1)
			e.Assert().Equals(2, e.Mocks().Len())
		}),
	})
}

func registerAsync(reg *bdd.Registry) error {
	return reg.Describe(EngineSuite, "asynchronous examples", bdd.Examples{
		bdd.It("should resume after a delay", func(e *bdd.Example) {
			started := time.Now()
			e.Wait(10*time.Millisecond, func() {
				e.Assert().IsTrue(time.Since(started) >= 10*time.Millisecond)
			})
		}),
		bdd.It("should chain waits", func(e *bdd.Example) {
			steps := []string{"first"}
			e.Wait(time.Millisecond, func() {
				steps = append(steps, "second")
				e.Wait(time.Millisecond, func() {
					steps = append(steps, "third")
					e.Assert().EnumEquals([]string{"first", "second", "third"}, steps)
				})
			})
		}),
		bdd.It("should complete from another goroutine", func(e *bdd.Example) {
			pending := e.Suspend()
			results := make(chan int, 1)
			go func() {
				results <- 6 * 7
				pending.Done()
			}()
			e.Assert().Equals(42, helpers.RequireValue[int](e, results, time.Second))
		}),
		bdd.It("should poll for a condition", func(e *bdd.Example) {
			var ready atomic.Bool
			time.AfterFunc(5*time.Millisecond, func() { ready.Store(true) })
			helpers.RequireEventually(e, ready.Load, time.Second, time.Millisecond, "never became ready")
			e.Assert().IsTrue(ready.Load())
		}),
	})
}
