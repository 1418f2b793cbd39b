package bdd

import (
	"context"
	"sync"
	"time"

	"github.com/launchdarkly/bdd-harness/framework/helpers"
)

// runner executes one run. Everything it touches is owned by the goroutine that called loop;
// other goroutines (timers, Pending handles) only hand it work through the inbox.
type runner struct {
	ctx       context.Context
	config    Configuration
	queue     []func()
	inbox     *inbox
	suspended *Example
	results   Results
}

func newRunner(ctx context.Context, config Configuration) *runner {
	if ctx == nil {
		ctx = context.Background()
	}
	return &runner{
		ctx:    ctx,
		config: config,
		inbox:  newInbox(),
	}
}

// runSuites links the suites into a chain, runs them to completion and returns the conjunction
// of their success.
func (r *runner) runSuites(suites []*Suite) bool {
	if len(suites) == 0 {
		return true
	}
	startTime := time.Now()
	for i, s := range suites {
		s.next = nil
		if i < len(suites)-1 {
			s.next = suites[i+1]
		}
	}
	r.post(func() { suites[0].run(r) })
	r.loop()
	r.results.Duration = time.Since(startTime)

	success := true
	for _, s := range suites {
		success = success && s.Success()
	}
	return success
}

// post schedules fn to run after everything already scheduled. Only the loop goroutine may call it.
func (r *runner) post(fn func()) {
	r.queue = append(r.queue, fn)
}

// postExternal schedules fn from any goroutine. It never blocks; once the run has finished, fn is
// silently dropped.
func (r *runner) postExternal(fn func()) {
	r.inbox.push(fn)
}

func (r *runner) loop() {
	defer r.inbox.close()
	for {
		if len(r.queue) > 0 {
			fn := r.queue[0]
			r.queue = r.queue[1:]
			fn()
			continue
		}
		ex := r.suspended
		if ex == nil {
			return
		}
		select {
		case <-r.inbox.notify:
			for _, fn := range r.inbox.drain() {
				r.post(fn)
			}
		case <-ex.deadlineC():
			r.post(func() { ex.expire(ErrAsyncTimeout, r.config.AsyncTimeout) })
		case <-r.ctx.Done():
			r.post(func() { ex.expire(r.ctx.Err(), 0) })
		}
	}
}

type inbox struct {
	items  []func()
	closed bool
	notify chan struct{}
	lock   sync.Mutex
}

func newInbox() *inbox {
	return &inbox{notify: make(chan struct{}, 1)}
}

func (b *inbox) push(fn func()) {
	b.lock.Lock()
	if b.closed {
		b.lock.Unlock()
		return
	}
	b.items = append(b.items, fn)
	b.lock.Unlock()
	helpers.NonBlockingSend(b.notify, struct{}{})
}

func (b *inbox) drain() []func() {
	b.lock.Lock()
	defer b.lock.Unlock()
	items := b.items
	b.items = nil
	return items
}

func (b *inbox) close() {
	b.lock.Lock()
	b.closed = true
	b.items = nil
	b.lock.Unlock()
}
