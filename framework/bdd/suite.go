package bdd

import (
	"time"

	"github.com/launchdarkly/bdd-harness/framework/output"
)

// Suite is a named, ordered collection of contexts.
type Suite struct {
	name      string
	contexts  []*Context
	hooks     SuiteHooks
	success   bool
	startTime time.Time
	next      *Suite
	runner    *runner
	result    SuiteResult
}

func newSuite(name string) *Suite {
	return &Suite{name: name, success: true}
}

func (s *Suite) Name() string { return s.name }

// Success is false if any context of the most recent run ended with errors.
func (s *Suite) Success() bool { return s.success }

// Contexts returns the suite's contexts in declaration order.
func (s *Suite) Contexts() []*Context {
	return append([]*Context(nil), s.contexts...)
}

// ID returns the one-element ID of the suite.
func (s *Suite) ID() ExampleID { return ExampleID{s.name} }

// Output returns the sink of the current run.
func (s *Suite) Output() output.Sink {
	if s.runner == nil {
		return output.Null()
	}
	return s.runner.config.Output
}

func (s *Suite) addContext(c *Context) {
	c.suite = s
	s.contexts = append(s.contexts, c)
}

func (s *Suite) run(r *runner) {
	s.runner = r
	s.success = true
	s.result = SuiteResult{Name: s.name}
	r.config.DebugLogger.Printf("suite %q started", s.name)
	s.hooks.withDefaults().OnStart(s)
	s.startTime = time.Now()

	var active []*Context
	for _, c := range s.contexts {
		if r.config.Filter != nil && !r.config.Filter.Match(c.ID()) {
			c.skip(r, "excluded by filter parameters")
			continue
		}
		active = append(active, c)
	}
	for i, c := range active {
		c.next = nil
		if i < len(active)-1 {
			c.next = active[i+1]
		}
	}
	if len(active) == 0 {
		r.post(s.end)
		return
	}
	r.post(active[0].run)
}

func (s *Suite) end() {
	r := s.runner
	elapsed := time.Since(s.startTime)
	s.hooks.withDefaults().OnComplete(s, elapsed)
	s.result.Success = s.success
	s.result.Duration = elapsed
	r.results.Suites = append(r.results.Suites, s.result)
	r.config.DebugLogger.Printf("suite %q finished, success=%t", s.name, s.success)
	if s.next != nil {
		next := s.next
		r.post(func() { next.run(r) })
	}
}
