package bdd

import (
	"time"

	"github.com/launchdarkly/bdd-harness/framework"
	"github.com/launchdarkly/bdd-harness/framework/assertions"
	"github.com/launchdarkly/bdd-harness/framework/mock"
	"github.com/launchdarkly/bdd-harness/framework/output"
)

// DefaultAsyncTimeout is how long a suspended example may wait for its completion when
// Configuration.AsyncTimeout is zero.
const DefaultAsyncTimeout = time.Second * 5

// Configuration contains options for every run started from a Registry.
type Configuration struct {
	// Output receives all user-facing reporting. If nil, output is discarded.
	Output output.Sink

	// Listener receives per-example lifecycle events, e.g. for JUnit output.
	Listener Listener

	// Filter is an optional way to select which contexts and examples run.
	Filter Filter

	// Assertions is the registry examples assert with. If nil, assertions.Builtins() is used.
	Assertions *assertions.Registry

	// AsyncTimeout bounds how long a suspended example may wait. Zero means DefaultAsyncTimeout;
	// a negative value means no limit, so a callback that never comes stalls the run.
	AsyncTimeout time.Duration

	// VerifyMode controls how many mock failures are reported per mock.
	VerifyMode mock.VerifyMode

	// DebugLogger receives engine lifecycle messages. If nil, they are discarded.
	DebugLogger framework.Logger
}

func (c Configuration) withDefaults() Configuration {
	if c.Output == nil {
		c.Output = output.Null()
	}
	if c.Listener == nil {
		c.Listener = nullListener{}
	}
	if c.Assertions == nil {
		c.Assertions = assertions.Builtins()
	}
	if c.AsyncTimeout == 0 {
		c.AsyncTimeout = DefaultAsyncTimeout
	}
	if c.DebugLogger == nil {
		c.DebugLogger = framework.NullLogger()
	}
	return c
}
