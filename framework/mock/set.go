package mock

import (
	"fmt"

	"github.com/launchdarkly/bdd-harness/framework/output"
)

// Set owns every mock created during one example.
type Set struct {
	owner    Owner
	out      output.Sink
	mode     VerifyMode
	mocks    []*Instance
	messages []string
}

// NewSet creates a Set. The owner is notified of each expectation declared on any of its mocks;
// out receives diagnostic output during verification.
func NewSet(owner Owner, out output.Sink, mode VerifyMode) *Set {
	if out == nil {
		out = output.Null()
	}
	return &Set{owner: owner, out: out, mode: mode}
}

// Create allocates a new mock. A blank name is replaced with "mock N".
func (s *Set) Create(name string) *Instance {
	if name == "" {
		name = fmt.Sprintf("mock %d", len(s.mocks)+1)
	}
	m := newInstance(name, s)
	s.mocks = append(s.mocks, m)
	return m
}

// Len returns the number of mocks created so far.
func (s *Set) Len() int { return len(s.mocks) }

// Verify checks every mock in creation order and returns all failure messages, which are also
// accumulated in Messages.
func (s *Set) Verify() []string {
	var ret []string
	for _, m := range s.mocks {
		ret = append(ret, m.verify(s.mode, s.out)...)
	}
	s.messages = append(s.messages, ret...)
	return ret
}

// Messages returns every failure message produced by Verify so far.
func (s *Set) Messages() []string {
	return append([]string(nil), s.messages...)
}
