package bdd

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter determines which contexts and examples run. It is called with a two-element ID for each
// context and a three-element ID for each example; anything it rejects is reported as skipped.
type Filter interface {
	Match(id ExampleID) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(ExampleID) bool

func (f FilterFunc) Match(id ExampleID) bool { return f(id) }

// RegexFilters selects examples by patterns over their IDs. An ID matches if it matches at least
// one MustMatch pattern (or there are none) and no MustNotMatch pattern.
type RegexFilters struct {
	MustMatch    IDPatternList
	MustNotMatch IDPatternList
}

func (r RegexFilters) Match(id ExampleID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(id, true)) &&
		!r.MustNotMatch.AnyMatch(id, false)
}

// IsDefined returns true if any pattern is set.
func (r RegexFilters) IsDefined() bool {
	return r.MustMatch.IsDefined() || r.MustNotMatch.IsDefined()
}

// IDPattern is a slash-separated list of regexes, one per ID component.
type IDPattern []*regexp.Regexp

// Match tests each component of id against the corresponding regex. If the pattern is longer than
// id, it matches only when includeParents is true, so that "a/b" selects the context "a" and lets
// its example "b" be tested later.
func (p IDPattern) Match(id ExampleID, includeParents bool) bool {
	n := len(p)
	if n > len(id) {
		if !includeParents {
			return false
		}
		n = len(id)
	}
	for i := 0; i < n; i++ {
		if !p[i].MatchString(id[i]) {
			return false
		}
	}
	return true
}

func (p IDPattern) String() string {
	ss := make([]string, 0, len(p))
	for _, c := range p {
		ss = append(ss, c.String())
	}
	return strings.Join(ss, "/")
}

func ParseIDPattern(s string) (IDPattern, error) {
	parts := strings.Split(s, "/")
	ret := make(IDPattern, 0, len(parts))
	for _, part := range parts {
		rx, err := regexp.Compile(part)
		if err != nil {
			return nil, fmt.Errorf("invalid regex: %w", err)
		}
		ret = append(ret, rx)
	}
	return ret, nil
}

type IDPatternList []IDPattern

func (l IDPatternList) String() string {
	ss := make([]string, 0, len(l))
	for _, p := range l {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set parses and appends a pattern.
func (l *IDPatternList) Set(value string) error {
	p, err := ParseIDPattern(value)
	if err != nil {
		return err
	}
	*l = append(*l, p)
	return nil
}

func (l IDPatternList) IsDefined() bool {
	return len(l) != 0
}

func (l IDPatternList) AnyMatch(id ExampleID, includeParents bool) bool {
	for _, p := range l {
		if p.Match(id, includeParents) {
			return true
		}
	}
	return false
}

// PrintFilterDescription explains to the user which examples will be skipped.
func PrintFilterDescription(w io.Writer, filters RegexFilters) {
	if !filters.IsDefined() {
		return
	}
	_, _ = fmt.Fprintln(w, "Some examples will be skipped based on the filter criteria for this run:")
	if filters.MustMatch.IsDefined() {
		_, _ = fmt.Fprintf(w, "  skip any not matching %s\n", filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		_, _ = fmt.Fprintf(w, "  skip any matching %s\n", filters.MustNotMatch)
	}
	_, _ = fmt.Fprintln(w)
}
