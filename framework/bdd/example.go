package bdd

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/launchdarkly/bdd-harness/framework"
	"github.com/launchdarkly/bdd-harness/framework/assertions"
	"github.com/launchdarkly/bdd-harness/framework/mock"
	"github.com/launchdarkly/bdd-harness/framework/output"
)

// Body is the code of an example, or of a context's setup or teardown.
type Body func(e *Example)

// Example is a single test case. It is the value passed to example bodies, and is itself the
// test scope: it implements the same Errorf/FailNow/Helper surface as testing.T, so the
// testify assert and require packages can be used in a body alongside Assert().
//
// All methods must be called from the goroutine running the example: the body, its setup and
// teardown, or a Wait callback. The only exception is the Pending handle returned by Suspend.
type Example struct {
	name     string
	body     Body
	setup    Body
	teardown Body
	context  *Context
	hooks    ExampleHooks
	next     *Example

	runner      *runner
	generation  int
	asserter    *assertions.Asserter
	mocks       *mock.Set
	assertions  int
	failed      bool
	async       bool
	pending     int
	ended       bool
	errors      []error
	startTime   time.Time
	deadline    *time.Timer
	debugLogger *framework.CapturingLogger
	helperFns   []string
}

const suspendInTeardownMessage = "cannot suspend during teardown"

type failNowSignal struct {
	example *Example
}

func (e *Example) Name() string { return e.name }

// ID returns the three-element ID of the example.
func (e *Example) ID() ExampleID { return e.context.ID().Plus(e.name) }

// Context returns the context the example belongs to.
func (e *Example) Context() *Context { return e.context }

// Assertions returns the number of assertions that have passed so far, including declared mock
// expectations.
func (e *Example) Assertions() int { return e.assertions }

func (e *Example) Failed() bool { return e.failed }

// Async returns true if the example has suspended itself with Wait or Suspend.
func (e *Example) Async() bool { return e.async }

// Errors returns every failure recorded against the example so far.
func (e *Example) Errors() []error { return append([]error(nil), e.errors...) }

// Output returns the sink of the current run.
func (e *Example) Output() output.Sink {
	if e.runner == nil {
		return output.Null()
	}
	return e.runner.config.Output
}

// Assert returns the assertion surface bound to this example.
func (e *Example) Assert() *assertions.Asserter { return e.asserter }

// Mock creates a mock owned by this example; it is verified when the example ends. The name is
// optional.
func (e *Example) Mock(name ...string) *mock.Instance {
	return e.mocks.Create(strings.Join(name, " "))
}

// Mocks returns the set of mocks created by this example.
func (e *Example) Mocks() *mock.Set { return e.mocks }

// Message reports an informational line in the example's output.
func (e *Example) Message(format string, args ...interface{}) {
	e.Output().Info(fmt.Sprintf(format, args...))
	e.debugLogger.Printf(format, args...)
}

// Debug writes a message to the example's captured debug output, which listeners receive when the
// example finishes.
func (e *Example) Debug(format string, args ...interface{}) {
	e.debugLogger.Printf(format, args...)
}

// DebugLogger returns a Logger writing to the example's captured debug output.
func (e *Example) DebugLogger() framework.Logger { return e.debugLogger }

// Wait suspends the example and runs callback once, after delay, on the goroutine running the
// examples. The example ends when its last pending callback has run, so a callback may itself
// call Wait. If the callback panics, the example fails and ends immediately.
//
// A teardown cannot suspend: calling Wait from one fails the example and callback never runs.
func (e *Example) Wait(delay time.Duration, callback func()) {
	if e.ended {
		e.Errorf("%s", suspendInTeardownMessage)
		return
	}
	e.async = true
	e.pending++
	r, generation := e.runner, e.generation
	time.AfterFunc(delay, func() {
		r.postExternal(func() { e.resume(generation, callback, nil) })
	})
}

// Suspend keeps the example running after its body returns, until Done or Fail is called on the
// returned handle, typically from a goroutine doing I/O. As with Wait, calling it from a teardown
// fails the example; the returned handle then does nothing.
func (e *Example) Suspend() *Pending {
	if e.ended {
		e.Errorf("%s", suspendInTeardownMessage)
		return &Pending{complete: func(error) {}}
	}
	e.async = true
	e.pending++
	r, generation := e.runner, e.generation
	return &Pending{complete: func(err error) {
		r.postExternal(func() { e.resume(generation, nil, err) })
	}}
}

// Errorf records a failure. It does not stop the example.
func (e *Example) Errorf(format string, args ...interface{}) {
	e.failed = true
	err := transformError(fmt.Errorf(format, args...), getStacktrace(e.helperFns))
	e.recordError(err)
	e.Output().Error(err.Error())
}

// FailNow marks the example failed and stops the current body, setup, teardown or callback. The
// example still runs its teardown and mock verification.
func (e *Example) FailNow() {
	e.failed = true
	panic(failNowSignal{example: e})
}

// Helper marks the calling function as a helper that is left out of stacktraces.
func (e *Example) Helper() {
	pc, _, _, ok := runtime.Caller(1) // 0 is Helper() itself, 1 is who called it
	if !ok {
		return
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return
	}
	e.helperFns = append(e.helperFns, f.Name())
}

func (e *Example) prepare(r *runner) {
	e.runner = r
	e.generation++
	e.assertions = 0
	e.failed = false
	e.async = false
	e.pending = 0
	e.ended = false
	e.errors = nil
	e.deadline = nil
	e.helperFns = nil
	e.debugLogger = &framework.CapturingLogger{}
	recorder := exampleRecorder{e}
	e.asserter = assertions.Bind(r.config.Assertions, recorder, exampleSink{Sink: r.config.Output, example: e})
	e.mocks = mock.NewSet(recorder, r.config.Output, r.config.VerifyMode)
}

func (e *Example) run(r *runner) {
	e.prepare(r)
	r.config.Listener.ExampleStarted(e.ID())
	e.hooks.OnStart(e)
	e.startTime = time.Now()

	ok := e.invoke(func() {
		if e.setup != nil {
			e.setup(e)
		}
		e.body(e)
	})
	if !ok || e.pending <= 0 {
		e.end()
		return
	}
	e.Output().Warn("Example is asynchronous, waiting for callback.")
	r.suspended = e
	if r.config.AsyncTimeout > 0 {
		e.deadline = time.NewTimer(r.config.AsyncTimeout)
	}
}

// invoke runs user code, converting a panic into a failure. It returns false if action panicked.
func (e *Example) invoke(action func()) (ok bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			ok = false
			e.failed = true
			if signal, isSignal := recovered.(failNowSignal); isSignal && signal.example == e {
				if len(e.errors) == 0 {
					e.recordError(errFailedWithNoMessage)
				}
				return
			}
			exc := newException(recovered, e.helperFns)
			e.recordError(exc)
			e.hooks.OnException(e, exc)
		}
	}()
	action()
	return true
}

func (e *Example) resume(generation int, callback func(), failure error) {
	if e.ended || generation != e.generation {
		return
	}
	e.pending--
	if failure != nil {
		e.failed = true
		e.recordError(failure)
		e.Output().Error(failure.Error())
		e.end()
		return
	}
	ok := callback == nil || e.invoke(callback)
	if !ok || e.pending <= 0 {
		e.end()
	}
}

func (e *Example) deadlineC() <-chan time.Time {
	if e.deadline == nil {
		return nil
	}
	return e.deadline.C
}

// expire ends a suspended example that ran out of time or whose run was cancelled.
func (e *Example) expire(cause error, timeout time.Duration) {
	if e.ended {
		return
	}
	var err error
	if errors.Is(cause, ErrAsyncTimeout) {
		err = fmt.Errorf("%w after %s", cause, timeout)
	} else {
		err = fmt.Errorf("run cancelled while waiting for asynchronous completion: %w", cause)
	}
	e.failed = true
	e.recordError(err)
	e.Output().Error(err.Error())
	e.end()
}

func (e *Example) end() {
	if e.ended {
		return
	}
	e.ended = true
	r := e.runner
	if r.suspended == e {
		r.suspended = nil
	}
	if e.deadline != nil {
		e.deadline.Stop()
		e.deadline = nil
	}

	if e.teardown != nil {
		e.invoke(func() { e.teardown(e) })
	}
	e.verifyMocks()

	elapsed := time.Since(e.startTime)
	if e.failed {
		e.context.errors++
	}
	e.hooks.OnComplete(e, elapsed)

	result := ExampleResult{
		ID:         e.ID(),
		Assertions: e.assertions,
		Errors:     e.Errors(),
		Duration:   elapsed,
		Async:      e.async,
		Failed:     e.failed,
	}
	r.results.Examples = append(r.results.Examples, result)
	if e.failed {
		r.results.Failures = append(r.results.Failures, result)
	}
	r.config.Listener.ExampleFinished(result.ID, result, e.debugLogger.Output())

	if e.next != nil {
		next := e.next
		r.post(func() { next.run(r) })
	} else {
		r.post(e.context.end)
	}
}

func (e *Example) verifyMocks() {
	messages := e.mocks.Verify()
	if len(messages) == 0 {
		return
	}
	e.failed = true
	for _, m := range messages {
		e.recordError(errors.New(m))
	}
	e.Output().Error(strings.Join(messages, "\n"))
}

func (e *Example) recordError(err error) {
	e.errors = append(e.errors, err)
	e.runner.config.Listener.ExampleError(e.ID(), err)
}

func (e *Example) skip(r *runner, reason string) {
	r.results.Skipped = append(r.results.Skipped, SkippedExample{ID: e.ID(), Reason: reason})
	r.config.Listener.ExampleSkipped(e.ID(), reason)
}

// Pending is the handle returned by Example.Suspend. Its methods may be called from any
// goroutine; only the first call has any effect.
type Pending struct {
	once     sync.Once
	complete func(error)
}

// Done completes the suspension successfully.
func (p *Pending) Done() {
	p.once.Do(func() { p.complete(nil) })
}

// Fail completes the suspension and fails the example with err.
func (p *Pending) Fail(err error) {
	if err == nil {
		err = errors.New("asynchronous operation failed")
	}
	p.once.Do(func() { p.complete(err) })
}

// exampleSink records every error reported by an assertion predicate against the example.
type exampleSink struct {
	output.Sink
	example *Example
}

func (s exampleSink) Error(message string) bool {
	s.example.recordError(errors.New(message))
	return s.Sink.Error(message)
}

type exampleRecorder struct {
	example *Example
}

func (r exampleRecorder) AssertionPassed(string) { r.example.assertions++ }

func (r exampleRecorder) AssertionFailed(string) { r.example.failed = true }

func (r exampleRecorder) ExpectationAdded(string) { r.example.assertions++ }
