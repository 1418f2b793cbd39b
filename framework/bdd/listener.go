package bdd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/launchdarkly/bdd-harness/framework"
)

// Listener receives status information about each example, in execution order, and the final
// results. All calls are made from the goroutine running the examples.
type Listener interface {
	ExampleStarted(id ExampleID)
	ExampleError(id ExampleID, err error)
	ExampleFinished(id ExampleID, result ExampleResult, debugOutput framework.CapturedOutput)
	ExampleSkipped(id ExampleID, reason string)
	EndLog(results Results) error
}

type nullListener struct{}

func (nullListener) ExampleStarted(ExampleID)                                           {}
func (nullListener) ExampleError(ExampleID, error)                                      {}
func (nullListener) ExampleFinished(ExampleID, ExampleResult, framework.CapturedOutput) {}
func (nullListener) ExampleSkipped(ExampleID, string)                                   {}
func (nullListener) EndLog(Results) error                                               { return nil }

// MultiListener sends every event to each of its listeners.
type MultiListener struct {
	Listeners []Listener
}

func (m *MultiListener) ExampleStarted(id ExampleID) {
	for _, l := range m.Listeners {
		l.ExampleStarted(id)
	}
}

func (m *MultiListener) ExampleError(id ExampleID, err error) {
	for _, l := range m.Listeners {
		l.ExampleError(id, err)
	}
}

func (m *MultiListener) ExampleFinished(id ExampleID, result ExampleResult, debugOutput framework.CapturedOutput) {
	for _, l := range m.Listeners {
		l.ExampleFinished(id, result, debugOutput)
	}
}

func (m *MultiListener) ExampleSkipped(id ExampleID, reason string) {
	for _, l := range m.Listeners {
		l.ExampleSkipped(id, reason)
	}
}

// EndLog calls EndLog on every listener, even if some fail, and joins their errors.
func (m *MultiListener) EndLog(results Results) error {
	var errs []error
	for _, l := range m.Listeners {
		if err := l.EndLog(results); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var consoleFailedColor = color.New(color.FgRed)                //nolint:gochecknoglobals
var consoleSkippedColor = color.New(color.Faint, color.FgBlue) //nolint:gochecknoglobals
var consoleDebugOutputColor = color.New(color.Faint)           //nolint:gochecknoglobals
var allPassedColor = color.New(color.FgGreen)                  //nolint:gochecknoglobals

// ConsoleListener complements the console sink: it can show each example's captured debug
// output, and lists the failed examples at the end of the run.
type ConsoleListener struct {
	Writer               io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
	ShowSkipped          bool
}

func (c ConsoleListener) ExampleStarted(ExampleID) {}

func (c ConsoleListener) ExampleError(ExampleID, error) {}

func (c ConsoleListener) ExampleFinished(id ExampleID, result ExampleResult, debugOutput framework.CapturedOutput) {
	if len(debugOutput) > 0 &&
		((result.Failed && c.DebugOutputOnFailure) || (!result.Failed && c.DebugOutputOnSuccess)) {
		_, _ = consoleDebugOutputColor.Fprintln(c.Writer, debugOutput.ToString("    DEBUG "))
	}
}

func (c ConsoleListener) ExampleSkipped(id ExampleID, reason string) {
	if !c.ShowSkipped {
		return
	}
	if reason == "" {
		_, _ = consoleSkippedColor.Fprintf(c.Writer, "  SKIPPED: %s\n", id)
	} else {
		_, _ = consoleSkippedColor.Fprintf(c.Writer, "  SKIPPED: %s (%s)\n", id, reason)
	}
}

func (c ConsoleListener) EndLog(results Results) error {
	if results.OK() {
		_, err := allPassedColor.Fprintf(c.Writer, "All examples passed (%d assertions)\n", results.Assertions())
		return err
	}
	lines := []string{fmt.Sprintf("FAILED EXAMPLES (%d):", len(results.Failures))}
	for _, f := range results.Failures {
		lines = append(lines, "  * "+f.ID.String())
	}
	_, err := consoleFailedColor.Fprintln(c.Writer, strings.Join(lines, "\n"))
	return err
}
