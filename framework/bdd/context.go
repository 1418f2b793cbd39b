package bdd

import (
	"time"

	"github.com/launchdarkly/bdd-harness/framework/output"
)

// Context is a named, ordered group of examples that share a setup and a teardown.
type Context struct {
	name         string
	suite        *Suite
	examples     []*Example
	setup        Body
	teardown     Body
	hooks        ContextHooks
	exampleHooks ExampleHooks
	errors       int
	startTime    time.Time
	next         *Context
}

func (c *Context) Name() string { return c.name }

// Suite returns the suite the context belongs to.
func (c *Context) Suite() *Suite { return c.suite }

// Errors returns the number of examples that failed in the current or most recent run.
func (c *Context) Errors() int { return c.errors }

// Examples returns the context's examples in declaration order. Setup and teardown are not
// examples and never appear here.
func (c *Context) Examples() []*Example {
	return append([]*Example(nil), c.examples...)
}

// ID returns the two-element ID of the context.
func (c *Context) ID() ExampleID { return c.suite.ID().Plus(c.name) }

// Output returns the sink of the current run.
func (c *Context) Output() output.Sink { return c.suite.Output() }

func (c *Context) run() {
	r := c.suite.runner
	c.errors = 0
	c.hooks.withDefaults().OnStart(c)
	c.startTime = time.Now()

	var active []*Example
	for _, e := range c.examples {
		if r.config.Filter != nil && !r.config.Filter.Match(e.ID()) {
			e.skip(r, "excluded by filter parameters")
			continue
		}
		active = append(active, e)
	}
	for i, e := range active {
		e.next = nil
		if i < len(active)-1 {
			e.next = active[i+1]
		}
	}
	if len(active) == 0 {
		r.post(c.end)
		return
	}
	first := active[0]
	r.post(func() { first.run(r) })
}

// skip reports every example of the context as skipped without running anything.
func (c *Context) skip(r *runner, reason string) {
	for _, e := range c.examples {
		e.skip(r, reason)
	}
}

func (c *Context) end() {
	r := c.suite.runner
	elapsed := time.Since(c.startTime)
	if c.errors > 0 {
		c.suite.success = false
	}
	c.hooks.withDefaults().OnComplete(c, elapsed)
	c.suite.result.Contexts = append(c.suite.result.Contexts,
		ContextResult{Name: c.name, Errors: c.errors, Duration: elapsed})
	if c.next != nil {
		r.post(c.next.run)
	} else {
		r.post(c.suite.end)
	}
}
