package bdd

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/launchdarkly/bdd-harness/framework"
	"github.com/launchdarkly/bdd-harness/framework/opt"
)

// JUnitListener writes a JUnit XML report when the run ends, with one testsuite element per suite
// and one testcase element per example.
type JUnitListener struct {
	filePath   string
	runID      string
	filters    RegexFilters
	exampleIDs []ExampleID // preserves the order that the examples were run or skipped in
	examples   map[string]jUnitExampleStatus
	lock       sync.Mutex
}

type jUnitExampleStatus struct {
	failures   []error
	skipped    opt.Maybe[string]
	output     string
	duration   time.Duration
	assertions int
}

// Struct definitions for the JUnit XML schema - see https://github.com/jstemmer/go-junit-report

type jUnitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Suites  []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Skipped    int                `xml:"skipped,attr"`
	Time       string             `xml:"time,attr"`
	Name       string             `xml:"name,attr"`
	Properties []jUnitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []jUnitXMLTestCase `xml:"testcase"`
}

type jUnitXMLTestCase struct {
	XMLName     xml.Name             `xml:"testcase"`
	Classname   string               `xml:"classname,attr"`
	Name        string               `xml:"name,attr"`
	Assertions  int                  `xml:"assertions,attr"`
	Time        string               `xml:"time,attr"`
	SkipMessage *jUnitXMLSkipMessage `xml:"skipped,omitempty"`
	Failure     *jUnitXMLFailure     `xml:"failure,omitempty"`
}

type jUnitXMLSkipMessage struct {
	Message string `xml:"message,attr"`
}

type jUnitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

// NewJUnitListener creates a listener that writes to filePath. The run ID and filters are written
// as properties of every testsuite.
func NewJUnitListener(filePath string, runID string, filters RegexFilters) *JUnitListener {
	return &JUnitListener{
		filePath: filePath,
		runID:    runID,
		filters:  filters,
		examples: make(map[string]jUnitExampleStatus),
	}
}

func (j *JUnitListener) ExampleStarted(id ExampleID) {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.exampleIDs = append(j.exampleIDs, id)
	j.examples[id.String()] = jUnitExampleStatus{}
}

func (j *JUnitListener) ExampleError(id ExampleID, err error) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.examples[id.String()]
	status.failures = append(status.failures, err)
	j.examples[id.String()] = status
}

func (j *JUnitListener) ExampleFinished(id ExampleID, result ExampleResult, debugOutput framework.CapturedOutput) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.examples[id.String()]
	status.output = debugOutput.ToString("")
	status.duration = result.Duration
	status.assertions = result.Assertions
	j.examples[id.String()] = status
}

func (j *JUnitListener) ExampleSkipped(id ExampleID, reason string) {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.exampleIDs = append(j.exampleIDs, id)
	j.examples[id.String()] = jUnitExampleStatus{skipped: opt.Some(reason)}
}

func (j *JUnitListener) EndLog(results Results) error {
	j.lock.Lock()
	defer j.lock.Unlock()

	bytes, err := xml.MarshalIndent(j.buildDocument(), "", "  ")
	if err != nil {
		return err
	}
	bytes = append(bytes, '\n')

	if err := os.WriteFile(j.filePath, bytes, 0644); err != nil { //nolint:gosec
		return fmt.Errorf("cannot write JUnit report: %w", err)
	}
	return nil
}

func (j *JUnitListener) buildDocument() jUnitXMLDocument {
	var doc jUnitXMLDocument

	properties := []jUnitXMLProperty{
		{Name: "run.id", Value: j.runID},
		{Name: "run.filter.mustMatch", Value: j.filters.MustMatch.String()},
		{Name: "run.filter.mustNotMatch", Value: j.filters.MustNotMatch.String()},
	}

	for _, suiteName := range getSuiteNames(j.exampleIDs) {
		suite := jUnitXMLTestSuite{
			Name:       suiteName,
			Properties: properties,
		}
		suiteTotalDuration := time.Duration(0)
		for _, id := range j.exampleIDs {
			if len(id) == 0 || id[0] != suiteName {
				continue
			}
			status := j.examples[id.String()]

			suite.Tests++
			suiteTotalDuration += status.duration

			testCase := jUnitXMLTestCase{
				Name:       id.String(),
				Assertions: status.assertions,
				Time:       jUnitDurationString(status.duration),
			}
			if len(id) > 1 {
				testCase.Classname = ExampleID(id[:2]).String()
			}
			if status.skipped.IsDefined() {
				suite.Skipped++
				testCase.SkipMessage = &jUnitXMLSkipMessage{Message: status.skipped.Value()}
			}
			if len(status.failures) != 0 {
				suite.Failures++
				var messages []string
				for _, e := range status.failures {
					messages = append(messages, describeFailure(e))
				}
				testCase.Failure = &jUnitXMLFailure{
					Message:  strings.Join(messages, "\n"),
					Contents: status.output,
				}
			}

			suite.TestCases = append(suite.TestCases, testCase)
		}
		suite.Time = jUnitDurationString(suiteTotalDuration)
		doc.Suites = append(doc.Suites, suite)
	}
	return doc
}

func describeFailure(err error) string {
	message := err.Error()
	var stacktrace []StackFrame
	var es ErrorWithStacktrace
	var exc *Exception
	switch {
	case errors.As(err, &exc):
		stacktrace = exc.Trace
	case errors.As(err, &es):
		stacktrace = es.Stacktrace
	}
	if len(stacktrace) != 0 {
		message += "\n  Stacktrace:"
		for _, s := range stacktrace {
			message += "\n    " + s.String()
		}
	}
	return message
}

func getSuiteNames(allIDs []ExampleID) []string {
	var ret []string
	seen := make(map[string]bool)
	for _, id := range allIDs {
		if len(id) != 0 && !seen[id[0]] {
			ret = append(ret, id[0])
			seen[id[0]] = true
		}
	}
	return ret
}

func jUnitDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
