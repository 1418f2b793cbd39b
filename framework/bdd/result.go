package bdd

import (
	"strings"
	"time"
)

// ExampleID identifies a unit of the tree: {suite}, {suite, context} or {suite, context, example}.
type ExampleID []string

func (id ExampleID) String() string {
	return strings.Join(id, "/")
}

// Plus returns a new ID with name appended; the receiver is not modified.
func (id ExampleID) Plus(name string) ExampleID {
	return append(append(ExampleID(nil), id...), name)
}

// ExampleResult is the outcome of one example that ran.
type ExampleResult struct {
	ID         ExampleID
	Assertions int
	Errors     []error
	Duration   time.Duration
	Async      bool
	Failed     bool
}

// SkippedExample is an example that was excluded from the run.
type SkippedExample struct {
	ID     ExampleID
	Reason string
}

// ContextResult is the outcome of one context.
type ContextResult struct {
	Name     string
	Errors   int
	Duration time.Duration
}

// SuiteResult is the outcome of one suite.
type SuiteResult struct {
	Name     string
	Success  bool
	Duration time.Duration
	Contexts []ContextResult
}

// Results describes everything that happened in one run, in execution order.
type Results struct {
	Examples []ExampleResult
	Failures []ExampleResult
	Skipped  []SkippedExample
	Suites   []SuiteResult
	Duration time.Duration
}

// OK returns true if no example failed.
func (r Results) OK() bool {
	if len(r.Failures) != 0 {
		return false
	}
	for _, s := range r.Suites {
		if !s.Success {
			return false
		}
	}
	return true
}

// Assertions returns the total number of passed assertions across all examples.
func (r Results) Assertions() int {
	total := 0
	for _, e := range r.Examples {
		total += e.Assertions
	}
	return total
}
