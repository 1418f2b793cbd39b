package bdd

import (
	"fmt"
	"regexp"
	"time"

	"github.com/launchdarkly/bdd-harness/framework/helpers"
)

// An example whose name starts with "setup" and makes no assertions is reported as informational
// rather than as missing assertions.
var setupExampleName = regexp.MustCompile(`^setup`) //nolint:gochecknoglobals

// SuiteHooks customize how a suite reports itself. Nil fields use the default behavior.
type SuiteHooks struct {
	OnStart    func(s *Suite)
	OnComplete func(s *Suite, elapsed time.Duration)
}

// ContextHooks customize how a context reports itself. Nil fields use the default behavior.
type ContextHooks struct {
	OnStart    func(c *Context)
	OnComplete func(c *Context, elapsed time.Duration)
}

// ExampleHooks customize how an example reports itself. Nil fields use the default behavior.
//
// Hooks only report: the engine itself marks failures, counts context errors and advances the
// chain, so replacing a hook cannot change the outcome of a run.
type ExampleHooks struct {
	OnStart     func(e *Example)
	OnComplete  func(e *Example, elapsed time.Duration)
	OnException func(e *Example, exc *Exception)
}

func (h SuiteHooks) withDefaults() SuiteHooks {
	if h.OnStart == nil {
		h.OnStart = defaultSuiteStart
	}
	if h.OnComplete == nil {
		h.OnComplete = defaultSuiteComplete
	}
	return h
}

func (h ContextHooks) withDefaults() ContextHooks {
	if h.OnStart == nil {
		h.OnStart = defaultContextStart
	}
	if h.OnComplete == nil {
		h.OnComplete = defaultContextComplete
	}
	return h
}

func (h ExampleHooks) withDefaults() ExampleHooks {
	if h.OnStart == nil {
		h.OnStart = defaultExampleStart
	}
	if h.OnComplete == nil {
		h.OnComplete = defaultExampleComplete
	}
	if h.OnException == nil {
		h.OnException = defaultExampleException
	}
	return h
}

func defaultSuiteStart(s *Suite) {
	s.Output().Group("Suite: " + s.Name())
}

func defaultSuiteComplete(s *Suite, elapsed time.Duration) {
	if s.Success() {
		s.Output().Success(fmt.Sprintf("%s succeeded. Time taken: %d ms", s.Name(), elapsed.Milliseconds()))
	} else {
		s.Output().Error(fmt.Sprintf("%s failed. Time taken: %d ms", s.Name(), elapsed.Milliseconds()))
	}
	s.Output().GroupEnd("Suite: " + s.Name())
}

func defaultContextStart(c *Context) {
	c.Output().Group("Context: " + c.Name())
}

func defaultContextComplete(c *Context, elapsed time.Duration) {
	if c.Errors() == 0 {
		c.Output().Success(fmt.Sprintf("Succeeded. Time taken: %d ms", elapsed.Milliseconds()))
	} else {
		c.Output().Error(fmt.Sprintf("Context: %s failed: There were %d errors.", c.Name(), c.Errors()))
	}
	c.Output().GroupEnd("Context: " + c.Name())
}

func defaultExampleStart(e *Example) {
	e.Output().Group(e.Name())
}

func defaultExampleComplete(e *Example, elapsed time.Duration) {
	out := e.Output()
	switch {
	case e.Failed():
		out.Error("Failed: " + e.Name())
	case e.Assertions() > 0:
		out.Success(fmt.Sprintf("Example succeeded. %d assertion%s. Time taken: %d ms",
			e.Assertions(), helpers.IfElse(e.Assertions() == 1, "", "s"), elapsed.Milliseconds()))
	case setupExampleName.MatchString(e.Name()):
		out.Info(fmt.Sprintf("Running setup method: %q once.", e.Name()))
	default:
		out.Warn(fmt.Sprintf("Example has no assertions! Time taken: %d ms", elapsed.Milliseconds()))
	}
	out.GroupEnd(e.Name())
}

func defaultExampleException(e *Example, exc *Exception) {
	e.Output().Error(exc.Report())
}
