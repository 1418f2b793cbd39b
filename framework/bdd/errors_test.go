package bdd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/bdd-harness/framework/bdd/internal"
)

func runOne(t *testing.T, body Body) ExampleResult {
	t.Helper()
	reg := NewRegistry(Configuration{})
	require.NoError(t, reg.Describe("suite", "context", Examples{It("example", body)}))
	results, err := reg.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results.Examples, 1)
	return results.Examples[0]
}

func TestStacktraceOmitsEngineFrames(t *testing.T) {
	var stack []StackFrame
	runOne(t, func(e *Example) {
		internal.RunAction(func() {
			stack = getStacktrace(nil)
		})
	})
	// Everything in this package, including this test, and the Go runtime frames are stripped out,
	// leaving only internal.RunAction which isn't in bdd.
	require.Len(t, stack, 1)
	assert.Equal(t, currentPackageName()+"/internal", stack[0].Package)
	assert.Equal(t, "RunAction", stack[0].Function)
}

func TestStacktraceOmitsDesignatedHelpers(t *testing.T) {
	var stack []StackFrame
	runOne(t, func(e *Example) {
		internal.RunAction(func() {
			stack = getStacktrace([]string{currentPackageName() + "/internal.RunAction"})
		})
	})
	assert.Len(t, stack, 0)
}

func TestExceptionCapturesPanicLocation(t *testing.T) {
	result := runOne(t, func(e *Example) {
		internal.PanicWith("boom")
	})
	assert.True(t, result.Failed)
	require.Len(t, result.Errors, 1)

	var exc *Exception
	require.True(t, errors.As(result.Errors[0], &exc))
	assert.Equal(t, "boom", exc.Message)
	assert.Equal(t, "boom", exc.Value)
	require.True(t, exc.Location.IsDefined())
	assert.Equal(t, "test_helper.go", exc.Location.Value().FileName)
	assert.Equal(t, "PanicWith", exc.Location.Value().Function)
	assert.Contains(t, exc.Report(), "Exception occurred: boom\nFile: test_helper.go line ")
}

func TestExceptionUnwrapsErrorValue(t *testing.T) {
	cause := errors.New("sad")
	result := runOne(t, func(e *Example) {
		panic(cause)
	})
	require.Len(t, result.Errors, 1)
	assert.True(t, errors.Is(result.Errors[0], cause))
	assert.Equal(t, "sad", result.Errors[0].Error())
}

func TestExceptionReportWithoutLocation(t *testing.T) {
	exc := &Exception{Message: "x"}
	assert.Equal(t, "Exception occurred: x", exc.Report())
}

func TestTransformErrorStripsTestifyTrace(t *testing.T) {
	err := transformError(errors.New("\n\tError Trace:\tfoo.go:12\n\tError:      \tShould be true\n"), nil)
	assert.Equal(t, "Should be true", err.Error())

	frames := []StackFrame{{FileName: "a.go", Package: "p", Function: "F", Line: 3}}
	err = transformError(errors.New("plain"), frames)
	var es ErrorWithStacktrace
	require.True(t, errors.As(err, &es))
	assert.Equal(t, "plain", es.Message)
	assert.Equal(t, frames, es.Stacktrace)
}

func TestParsePackageAndFunctionName(t *testing.T) {
	p, f := parsePackageAndFunctionName("github.com/a/b/c.(*T).Method")
	assert.Equal(t, "github.com/a/b/c", p)
	assert.Equal(t, "(*T).Method", f)

	p, f = parsePackageAndFunctionName("main.main")
	assert.Equal(t, "main", p)
	assert.Equal(t, "main", f)
}
