package bdd_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"

	"github.com/launchdarkly/bdd-harness/framework/bdd"
	"github.com/launchdarkly/bdd-harness/framework/helpers"
	"github.com/launchdarkly/bdd-harness/framework/mock"
	"github.com/launchdarkly/bdd-harness/framework/output"
)

func newTestRegistry(out output.Sink) *bdd.Registry {
	return bdd.NewRegistry(bdd.Configuration{Output: out, AsyncTimeout: time.Second})
}

func runSingle(t *testing.T, body bdd.Body) (bdd.ExampleResult, *output.Recorder) {
	t.Helper()
	out := &output.Recorder{}
	reg := newTestRegistry(out)
	require.NoError(t, reg.Describe("suite", "context", bdd.Examples{bdd.It("example", body)}))
	results, err := reg.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results.Examples, 1)
	return results.Examples[0], out
}

func errorMessages(errs []error) []string {
	ret := make([]string, 0, len(errs))
	for _, err := range errs {
		ret = append(ret, err.Error())
	}
	return ret
}

func TestUnitsRunInDeclarationOrder(t *testing.T) {
	var log []string
	record := func(s string) bdd.Body {
		return func(e *bdd.Example) { log = append(log, s) }
	}
	reg := newTestRegistry(nil)
	require.NoError(t, reg.Describe("s1", "c1", bdd.Examples{
		bdd.It("e1", record("s1/c1/e1")),
		bdd.It("e2", func(e *bdd.Example) {
			log = append(log, "s1/c1/e2 body")
			e.Wait(10*time.Millisecond, func() { log = append(log, "s1/c1/e2 callback") })
		}),
		bdd.It("e3", record("s1/c1/e3")),
	}))
	require.NoError(t, reg.Describe("s1", "c2", bdd.Examples{bdd.It("e4", record("s1/c2/e4"))}))
	require.NoError(t, reg.Describe("s2", "c3", bdd.Examples{bdd.It("e5", record("s2/c3/e5"))}))

	results, err := reg.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"s1/c1/e1", "s1/c1/e2 body", "s1/c1/e2 callback", "s1/c1/e3", "s1/c2/e4", "s2/c3/e5",
	}, log)
	require.Len(t, results.Examples, 5)
	assert.Equal(t, bdd.ExampleID{"s1", "c1", "e2"}, results.Examples[1].ID)
	assert.True(t, results.Examples[1].Async)
	assert.False(t, results.Examples[0].Async)
	require.Len(t, results.Suites, 2)
	assert.Equal(t, "s1", results.Suites[0].Name)
	assert.Len(t, results.Suites[0].Contexts, 2)
}

func TestNestedGroupsAreBalanced(t *testing.T) {
	out := &output.Recorder{}
	reg := newTestRegistry(out)
	require.NoError(t, reg.Describe("suite", "context", bdd.Examples{
		bdd.It("example", func(e *bdd.Example) { e.Message("inside") }),
	}))
	_, err := reg.RunAll(context.Background())
	require.NoError(t, err)

	entries := out.Entries()
	require.Len(t, entries, 10)
	assert.Equal(t, output.Entry{Level: output.LevelGroup, Depth: 0, Message: "Suite: suite"}, entries[0])
	assert.Equal(t, output.Entry{Level: output.LevelGroup, Depth: 1, Message: "Context: context"}, entries[1])
	assert.Equal(t, output.Entry{Level: output.LevelGroup, Depth: 2, Message: "example"}, entries[2])
	assert.Equal(t, output.Entry{Level: output.LevelInfo, Depth: 3, Message: "inside"}, entries[3])
	assert.Equal(t, output.LevelWarn, entries[4].Level)
	assert.True(t, strings.HasPrefix(entries[4].Message, "Example has no assertions! Time taken: "))
	assert.Equal(t, output.Entry{Level: output.LevelGroupEnd, Depth: 2, Message: "example"}, entries[5])
	assert.True(t, strings.HasPrefix(entries[6].Message, "Succeeded. Time taken: "))
	assert.Equal(t, output.Entry{Level: output.LevelGroupEnd, Depth: 1, Message: "Context: context"}, entries[7])
	assert.True(t, strings.HasPrefix(entries[8].Message, "suite succeeded. Time taken: "))
	assert.Equal(t, output.Entry{Level: output.LevelGroupEnd, Depth: 0, Message: "Suite: suite"}, entries[9])
}

func TestAssertionsAreCounted(t *testing.T) {
	result, out := runSingle(t, func(e *bdd.Example) {
		e.Assert().Equals(1, 1)
		e.Assert().IsTrue(true)
		e.Assert().StringEquals(1, "1")
	})
	assert.False(t, result.Failed)
	assert.Equal(t, 3, result.Assertions)
	assert.True(t, out.Contains(output.LevelSuccess, "Example succeeded. 3 assertions. Time taken: "))
}

func TestSingleAssertionIsNotPluralized(t *testing.T) {
	_, out := runSingle(t, func(e *bdd.Example) {
		e.Assert().IsNull(nil)
	})
	assert.True(t, out.Contains(output.LevelSuccess, "Example succeeded. 1 assertion. Time taken: "))
}

func TestFailedAssertionFailsExampleWithoutStopping(t *testing.T) {
	reachedEnd := false
	result, out := runSingle(t, func(e *bdd.Example) {
		assert.False(t, e.Assert().Equals(1, 2))
		e.Assert().IsTrue(true)
		reachedEnd = true
	})
	assert.True(t, reachedEnd)
	assert.True(t, result.Failed)
	assert.Equal(t, 1, result.Assertions)
	assert.Equal(t, []string{`Expecting "1" but found "2".`}, errorMessages(result.Errors))
	assert.Equal(t, []string{`Expecting "1" but found "2".`, "Failed: example"}, out.Messages(output.LevelError)[:2])
}

func TestStrictEqualityDoesNotCoerce(t *testing.T) {
	result, _ := runSingle(t, func(e *bdd.Example) {
		e.Assert().Equals(1, "1")
	})
	assert.True(t, result.Failed)
	assert.Equal(t, 0, result.Assertions)
}

func TestUnknownAssertionFails(t *testing.T) {
	result, _ := runSingle(t, func(e *bdd.Example) {
		e.Assert().Call("nope", 1)
	})
	assert.True(t, result.Failed)
	assert.Equal(t, []string{`Unknown assertion "nope".`}, errorMessages(result.Errors))
}

func TestPanicInBodyRunsTeardownOnceAndContinues(t *testing.T) {
	teardowns := 0
	secondRan := false
	out := &output.Recorder{}
	reg := newTestRegistry(out)
	require.NoError(t, reg.Describe("suite", "context", bdd.Examples{
		bdd.Teardown(func(e *bdd.Example) { teardowns++ }),
		bdd.It("throws", func(e *bdd.Example) { panic("boom") }),
		bdd.It("after", func(e *bdd.Example) { secondRan = true }),
	}))
	results, err := reg.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, teardowns)
	assert.True(t, secondRan)
	require.Len(t, results.Examples, 2)
	assert.True(t, results.Examples[0].Failed)
	assert.False(t, results.Examples[1].Failed)
	assert.True(t, out.Contains(output.LevelError, "Exception occurred: boom"))
	assert.True(t, out.Contains(output.LevelError, "Context: context failed: There were 1 errors."))
	assert.False(t, results.OK())
}

func TestPanicInSetupSkipsBody(t *testing.T) {
	bodyRan, teardownRan := false, false
	reg := newTestRegistry(nil)
	require.NoError(t, reg.Describe("suite", "context", bdd.Examples{
		bdd.Setup(func(e *bdd.Example) { panic("setup failed") }),
		bdd.Teardown(func(e *bdd.Example) { teardownRan = true }),
		bdd.It("example", func(e *bdd.Example) { bodyRan = true }),
	}))
	results, err := reg.RunAll(context.Background())
	require.NoError(t, err)
	assert.False(t, bodyRan)
	assert.True(t, teardownRan)
	assert.True(t, results.Examples[0].Failed)
}

func TestPanicInTeardownFailsExample(t *testing.T) {
	reg := newTestRegistry(nil)
	require.NoError(t, reg.Describe("suite", "context", bdd.Examples{
		bdd.Teardown(func(e *bdd.Example) { panic("teardown failed") }),
		bdd.It("example", func(e *bdd.Example) { e.Assert().IsTrue(true) }),
	}))
	results, err := reg.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results.Examples, 1)
	assert.True(t, results.Examples[0].Failed)
	assert.Equal(t, []string{"teardown failed"}, errorMessages(results.Examples[0].Errors))
}

func TestSuspendingInTeardownFailsExample(t *testing.T) {
	for _, suspend := range []struct {
		name string
		fn   func(e *bdd.Example, ran *bool)
	}{
		{"Wait", func(e *bdd.Example, ran *bool) {
			e.Wait(time.Millisecond, func() { *ran = true })
		}},
		{"Suspend", func(e *bdd.Example, ran *bool) {
			e.Suspend().Done()
		}},
	} {
		t.Run(suspend.name, func(t *testing.T) {
			var ran bool
			reg := newTestRegistry(nil)
			require.NoError(t, reg.Describe("suite", "context", bdd.Examples{
				bdd.Teardown(func(e *bdd.Example) { suspend.fn(e, &ran) }),
				bdd.It("example", func(e *bdd.Example) { e.Assert().IsTrue(true) }),
			}))
			results, err := reg.RunAll(context.Background())
			require.NoError(t, err)
			require.Len(t, results.Examples, 1)
			ex := results.Examples[0]
			assert.True(t, ex.Failed)
			assert.False(t, ex.Async)
			assert.Equal(t, []string{"cannot suspend during teardown"}, errorMessages(ex.Errors))
			assert.False(t, results.OK())

			time.Sleep(10 * time.Millisecond)
			assert.False(t, ran)
		})
	}
}

func TestSetupAndTeardownWrapEveryExample(t *testing.T) {
	var log []string
	reg := newTestRegistry(nil)
	require.NoError(t, reg.Describe("suite", "context", bdd.Examples{
		bdd.It("first", func(e *bdd.Example) { log = append(log, "first") }),
		bdd.Setup(func(e *bdd.Example) { log = append(log, "setup "+e.Name()) }),
		bdd.Teardown(func(e *bdd.Example) { log = append(log, "teardown "+e.Name()) }),
		bdd.It("second", func(e *bdd.Example) {
			log = append(log, "second")
			e.Assert().IsTrue(false)
		}),
	}))

	c := reg.Suite("suite").Contexts()[0]
	var names []string
	for _, e := range c.Examples() {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"first", "second"}, names)

	_, err := reg.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"setup first", "first", "teardown first",
		"setup second", "second", "teardown second",
	}, log)
}

func TestMockVerificationMessages(t *testing.T) {
	result, out := runSingle(t, func(e *bdd.Example) {
		mk := e.Mock("client").Expects(
			mock.Expect("a", 1),
			mock.Expect("b"),
			mock.Expect("c"),
		)
		mk.Call("a", 2)
		mk.Call("c")
		mk.Call("d")
	})
	assert.True(t, result.Failed)
	assert.Equal(t, 3, result.Assertions)
	m.In(t).Assert(errorMessages(result.Errors), m.Equal([]string{
		"Expected a() with [1] but received [2]",
		"Expected b() but was not called",
		"Unexpected call to d()",
	}))
	assert.True(t, out.Contains(output.LevelError,
		"Expected a() with [1] but received [2]\nExpected b() but was not called\nUnexpected call to d()"))
}

func TestMockStubReturnsValue(t *testing.T) {
	var got interface{}
	result, _ := runSingle(t, func(e *bdd.Example) {
		mk := e.Mock().Stubs(map[string]interface{}{"get": 42})
		got = mk.Call("get")
	})
	assert.Equal(t, 42, got)
	assert.False(t, result.Failed)
	assert.Equal(t, 0, result.Assertions)
}

func TestMockVerifyFirstFailure(t *testing.T) {
	reg := bdd.NewRegistry(bdd.Configuration{VerifyMode: mock.VerifyFirstFailure})
	require.NoError(t, reg.Describe("suite", "context", bdd.Examples{
		bdd.It("example", func(e *bdd.Example) {
			e.Mock().Expects(mock.Expect("a"), mock.Expect("b"))
		}),
	}))
	results, err := reg.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Expected a() but was not called"}, errorMessages(results.Examples[0].Errors))
}

func TestWaitRunsCallbackOnceAfterDelay(t *testing.T) {
	delay := 10 * time.Millisecond
	var started, calledAt time.Time
	calls := 0
	result, out := runSingle(t, func(e *bdd.Example) {
		started = time.Now()
		e.Wait(delay, func() {
			calls++
			calledAt = time.Now()
			e.Assert().IsTrue(true)
		})
	})
	assert.Equal(t, 1, calls)
	assert.GreaterOrEqual(t, calledAt.Sub(started), delay)
	assert.True(t, result.Async)
	assert.False(t, result.Failed)
	assert.Equal(t, 1, result.Assertions)
	assert.True(t, out.Contains(output.LevelWarn, "Example is asynchronous, waiting for callback."))
}

func TestChainedWaitsEndAfterLastCallback(t *testing.T) {
	var log []string
	result, _ := runSingle(t, func(e *bdd.Example) {
		e.Wait(time.Millisecond, func() {
			log = append(log, "first")
			e.Wait(time.Millisecond, func() { log = append(log, "second") })
		})
	})
	assert.Equal(t, []string{"first", "second"}, log)
	assert.False(t, result.Failed)
}

func TestPanicInCallbackEndsExample(t *testing.T) {
	secondCallback := false
	result, out := runSingle(t, func(e *bdd.Example) {
		e.Wait(time.Millisecond, func() { panic("async boom") })
		e.Wait(50*time.Millisecond, func() { secondCallback = true })
	})
	assert.True(t, result.Failed)
	assert.False(t, secondCallback)
	assert.True(t, out.Contains(output.LevelError, "Exception occurred: async boom"))
}

func TestSuspendCompletedFromGoroutine(t *testing.T) {
	result, _ := runSingle(t, func(e *bdd.Example) {
		p := e.Suspend()
		go func() {
			time.Sleep(5 * time.Millisecond)
			p.Done()
			p.Done()
		}()
	})
	assert.True(t, result.Async)
	assert.False(t, result.Failed)
}

func TestSuspendCompletedSynchronously(t *testing.T) {
	result, _ := runSingle(t, func(e *bdd.Example) {
		e.Suspend().Done()
	})
	assert.True(t, result.Async)
	assert.False(t, result.Failed)
}

func TestSuspendFailed(t *testing.T) {
	cause := errors.New("connection refused")
	result, _ := runSingle(t, func(e *bdd.Example) {
		p := e.Suspend()
		go p.Fail(cause)
	})
	assert.True(t, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.True(t, errors.Is(result.Errors[0], cause))
}

func TestAsyncTimeoutFailsExampleAndChainContinues(t *testing.T) {
	nextRan := false
	reg := bdd.NewRegistry(bdd.Configuration{AsyncTimeout: 20 * time.Millisecond})
	require.NoError(t, reg.Describe("suite", "context", bdd.Examples{
		bdd.It("never completes", func(e *bdd.Example) { _ = e.Suspend() }),
		bdd.It("next", func(e *bdd.Example) { nextRan = true }),
	}))
	results, err := reg.RunAll(context.Background())
	require.NoError(t, err)
	assert.True(t, nextRan)
	require.Len(t, results.Examples, 2)
	require.Len(t, results.Examples[0].Errors, 1)
	assert.True(t, errors.Is(results.Examples[0].Errors[0], bdd.ErrAsyncTimeout))
	assert.Equal(t, "timed out waiting for asynchronous completion after 20ms", results.Examples[0].Errors[0].Error())
	assert.False(t, results.Examples[1].Failed)
}

func TestCancelledContextFailsSuspendedExample(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reg := bdd.NewRegistry(bdd.Configuration{AsyncTimeout: -1})
	require.NoError(t, reg.Describe("suite", "context", bdd.Examples{
		bdd.It("example", func(e *bdd.Example) {
			_ = e.Suspend()
			cancel()
		}),
	}))
	results, err := reg.RunAll(ctx)
	require.NoError(t, err)
	require.Len(t, results.Examples, 1)
	require.Len(t, results.Examples[0].Errors, 1)
	assert.True(t, errors.Is(results.Examples[0].Errors[0], context.Canceled))
}

func TestTestifyInsideExample(t *testing.T) {
	afterRequire := false
	result, _ := runSingle(t, func(e *bdd.Example) {
		assert.Equal(e, 1, 2)
		require.True(e, false, "stop here")
		afterRequire = true
	})
	assert.False(t, afterRequire)
	assert.True(t, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0].Error(), "Not equal")
	assert.Contains(t, result.Errors[1].Error(), "stop here")
	assert.NotContains(t, result.Errors[0].Error(), "Error Trace:")
}

func TestFailNowWithoutMessage(t *testing.T) {
	result, _ := runSingle(t, func(e *bdd.Example) { e.FailNow() })
	assert.True(t, result.Failed)
	assert.Len(t, result.Errors, 1)
}

func TestSetupNamedExampleWithoutAssertionsIsInformational(t *testing.T) {
	out := &output.Recorder{}
	reg := newTestRegistry(out)
	require.NoError(t, reg.Describe("suite", "context", bdd.Examples{
		bdd.It("setup fixture", func(e *bdd.Example) {}),
	}))
	_, err := reg.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{`Running setup method: "setup fixture" once.`}, out.Messages(output.LevelInfo))
	assert.Empty(t, out.Messages(output.LevelWarn))
}

func TestSuiteSuccessAggregatesContextErrors(t *testing.T) {
	reg := newTestRegistry(nil)
	require.NoError(t, reg.Describe("suite", "good", bdd.Examples{
		bdd.It("passes", func(e *bdd.Example) { e.Assert().IsTrue(true) }),
	}))
	require.NoError(t, reg.Describe("suite", "bad", bdd.Examples{
		bdd.It("fails", func(e *bdd.Example) { e.Assert().IsTrue(false) }),
		bdd.It("fails too", func(e *bdd.Example) { e.Assert().IsFalse(true) }),
	}))
	require.NoError(t, reg.Describe("other", "good", bdd.Examples{
		bdd.It("passes", func(e *bdd.Example) { e.Assert().IsTrue(true) }),
	}))

	var success []bool
	results, err := reg.Start(context.Background(), "suite", func(ok bool) { success = append(success, ok) })
	require.NoError(t, err)
	assert.Equal(t, []bool{false}, success)
	require.Len(t, results.Suites, 1)
	assert.Equal(t, []bdd.ContextResult{
		{Name: "good", Errors: 0, Duration: results.Suites[0].Contexts[0].Duration},
		{Name: "bad", Errors: 2, Duration: results.Suites[0].Contexts[1].Duration},
	}, results.Suites[0].Contexts)
	assert.False(t, reg.Suite("suite").Success())

	results, err = reg.Start(context.Background(), "other", func(ok bool) { success = append(success, ok) })
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, success)
	assert.True(t, results.OK())
}

func TestEmptySuiteAndContextComplete(t *testing.T) {
	reg := newTestRegistry(nil)
	require.NoError(t, reg.Describe("suite", "empty", bdd.Examples{}))
	called := false
	results, err := reg.Start(context.Background(), "suite", func(ok bool) {
		called = true
		assert.True(t, ok)
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Len(t, results.Examples, 0)
	assert.Len(t, results.Suites, 1)
}

func TestFilterSkipsExamplesWithoutRunningThem(t *testing.T) {
	var ran []string
	record := func(e *bdd.Example) { ran = append(ran, e.ID().String()) }
	var filters bdd.RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("suite/skipped context"))
	require.NoError(t, filters.MustNotMatch.Set("suite/kept context/^b$"))
	reg := bdd.NewRegistry(bdd.Configuration{Filter: filters})
	require.NoError(t, reg.Describe("suite", "kept context", bdd.Examples{
		bdd.It("a", record), bdd.It("b", record),
	}))
	require.NoError(t, reg.Describe("suite", "skipped context", bdd.Examples{
		bdd.It("c", record),
	}))
	results, err := reg.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"suite/kept context/a"}, ran)
	var skipped []string
	for _, s := range results.Skipped {
		skipped = append(skipped, s.ID.String())
	}
	m.In(t).Assert(skipped, m.ItemsInAnyOrder(m.Equal("suite/kept context/b"), m.Equal("suite/skipped context/c")))
}

func TestExampleHooksOverrideReporting(t *testing.T) {
	var started, completed []string
	out := &output.Recorder{}
	reg := newTestRegistry(out)
	require.NoError(t, reg.Describe("suite", "context", bdd.Examples{
		bdd.It("example", func(e *bdd.Example) { e.Assert().IsTrue(false) }),
	}, bdd.WithExampleHooks(bdd.ExampleHooks{
		OnStart:    func(e *bdd.Example) { started = append(started, e.Name()) },
		OnComplete: func(e *bdd.Example, _ time.Duration) { completed = append(completed, e.Name()) },
	})))
	results, err := reg.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"example"}, started)
	assert.Equal(t, []string{"example"}, completed)
	assert.NotContains(t, out.Messages(output.LevelError), "Failed: example")
	// the engine still counts the failure even though the hook reports nothing
	assert.Equal(t, 1, reg.Suite("suite").Contexts()[0].Errors())
	assert.False(t, results.OK())
}

func TestContextAndSuiteHooks(t *testing.T) {
	var log []string
	reg := newTestRegistry(nil)
	require.NoError(t, reg.DefineSuite("suite", bdd.SuiteHooks{
		OnStart:    func(s *bdd.Suite) { log = append(log, "suite start") },
		OnComplete: func(s *bdd.Suite, _ time.Duration) { log = append(log, "suite complete") },
	}))
	require.NoError(t, reg.Describe("suite", "context", bdd.Examples{
		bdd.It("example", func(e *bdd.Example) { log = append(log, "example") }),
	}, bdd.WithContextHooks(bdd.ContextHooks{
		OnStart:    func(c *bdd.Context) { log = append(log, "context start") },
		OnComplete: func(c *bdd.Context, _ time.Duration) { log = append(log, "context complete") },
	})))
	_, err := reg.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"suite start", "context start", "example", "context complete", "suite complete"}, log)
}

func TestExampleWorksWithChannelHelpers(t *testing.T) {
	result, _ := runSingle(t, func(e *bdd.Example) {
		ch := make(chan string)
		_ = helpers.RequireValue[string](e, ch, time.Millisecond)
		e.Assert().IsTrue(true)
	})
	assert.True(t, result.Failed)
	assert.Equal(t, 0, result.Assertions)
	assert.Equal(t, []string{"timed out waiting for value of type string"}, errorMessages(result.Errors))
}
