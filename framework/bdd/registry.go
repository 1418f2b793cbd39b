package bdd

import (
	"context"
	"fmt"
	"sync"

	"github.com/launchdarkly/bdd-harness/framework/helpers"
)

// Registry holds the declared suites. Suites are declared first; the registry is frozen by the
// first run and rejects further declarations after that.
type Registry struct {
	config  Configuration
	suites  []*Suite
	byName  map[string]*Suite
	frozen  bool
	lock    sync.Mutex
	runLock sync.Mutex
}

// NewRegistry creates an empty registry whose runs use the given configuration.
func NewRegistry(config Configuration) *Registry {
	return &Registry{
		config: config.withDefaults(),
		byName: make(map[string]*Suite),
	}
}

// DefineSuite sets the hooks of a suite, creating the suite if it has not been referenced yet.
func (r *Registry) DefineSuite(name string, hooks SuiteHooks) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: cannot define suite %q", ErrRegistryFrozen, name)
	}
	r.suiteLocked(name).hooks = hooks
	return nil
}

// Describe adds a context to a suite, creating the suite if it has not been referenced yet.
// Entries named SetupKey and TeardownKey wrap every example of the context instead of becoming
// examples themselves; entries with a nil body are ignored.
func (r *Registry) Describe(suiteName, contextName string, examples Examples, options ...DescribeOption) error {
	var config DescribeConfig
	if err := helpers.ApplyOptions(&config, options...); err != nil {
		return err
	}
	c, err := newContext(contextName, examples, config)
	if err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: cannot add context %q to suite %q", ErrRegistryFrozen, contextName, suiteName)
	}
	r.suiteLocked(suiteName).addContext(c)
	return nil
}

func (r *Registry) suiteLocked(name string) *Suite {
	s, ok := r.byName[name]
	if !ok {
		s = newSuite(name)
		r.byName[name] = s
		r.suites = append(r.suites, s)
	}
	return s
}

// Freeze stops the registry from accepting declarations. Running a suite freezes it implicitly.
func (r *Registry) Freeze() {
	r.lock.Lock()
	r.frozen = true
	r.lock.Unlock()
}

func (r *Registry) Frozen() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.frozen
}

// Suite returns the named suite, or nil.
func (r *Registry) Suite(name string) *Suite {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.byName[name]
}

// Suites returns all suites in the order they were first referenced.
func (r *Registry) Suites() []*Suite {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]*Suite(nil), r.suites...)
}

// Start runs one suite to completion, then calls callback (if not nil) with its success. It
// blocks until the suite and all of its asynchronous examples have finished, or ctx is done.
//
// Runs are serialized: a second Start waits for the first to finish.
func (r *Registry) Start(ctx context.Context, suiteName string, callback func(success bool)) (Results, error) {
	s := r.Suite(suiteName)
	if s == nil {
		return Results{}, fmt.Errorf("%w: %q", ErrUnknownSuite, suiteName)
	}
	results, success := r.run(ctx, []*Suite{s})
	if callback != nil {
		callback(success)
	}
	return results, r.config.Listener.EndLog(results)
}

// RunAll runs every suite, in the order they were first referenced. The error, if any, comes from
// the listener's EndLog; failed examples are reported only in the Results.
func (r *Registry) RunAll(ctx context.Context) (Results, error) {
	results, _ := r.run(ctx, r.Suites())
	return results, r.config.Listener.EndLog(results)
}

func (r *Registry) run(ctx context.Context, suites []*Suite) (Results, bool) {
	r.Freeze()
	r.runLock.Lock()
	defer r.runLock.Unlock()

	runner := newRunner(ctx, r.config)
	success := runner.runSuites(suites)
	return runner.results, success
}
