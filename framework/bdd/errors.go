package bdd

import (
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/launchdarkly/bdd-harness/framework/opt"
)

var (
	// ErrUnknownSuite is returned by Start for a name that was never declared.
	ErrUnknownSuite = errors.New("unknown suite")

	// ErrRegistryFrozen is returned by declarations made after the registry started running.
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrInvalidDeclaration is returned for malformed declarations such as duplicate example names.
	ErrInvalidDeclaration = errors.New("invalid declaration")

	// ErrAsyncTimeout is recorded against an example whose asynchronous completion did not arrive
	// within the configured timeout.
	ErrAsyncTimeout = errors.New("timed out waiting for asynchronous completion")

	errFailedWithNoMessage = errors.New("example failed with no failure message")
)

// StackFrame is one entry of a stacktrace.
type StackFrame struct {
	FileName string
	Package  string
	Function string
	Line     int
}

func (s StackFrame) String() string {
	packageName := strings.TrimPrefix(s.Package, rootPackageName()+"/")
	return fmt.Sprintf("%s.%s (%s:%d)", packageName, s.Function, s.FileName, s.Line)
}

// Exception describes a panic recovered from an example's setup, body, teardown or asynchronous
// callback. Location is the innermost frame outside the engine and the Go runtime, when it could
// be determined.
type Exception struct {
	Message  string
	Value    interface{}
	Location opt.Maybe[StackFrame]
	Trace    []StackFrame
}

func (e *Exception) Error() string { return e.Message }

// Unwrap returns the panic value if it was an error.
func (e *Exception) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Report renders the exception the way it is shown in output: the message, then the location and
// trace if there are any.
func (e *Exception) Report() string {
	message := "Exception occurred: " + e.Message
	if e.Location.IsDefined() && len(e.Trace) > 0 {
		loc := e.Location.Value()
		lines := make([]string, 0, len(e.Trace))
		for _, f := range e.Trace {
			lines = append(lines, "  "+f.String())
		}
		message += fmt.Sprintf("\nFile: %s line %d\nStacktrace:\n%s", loc.FileName, loc.Line, strings.Join(lines, "\n"))
	}
	return message
}

func newException(recovered interface{}, helperFns []string) *Exception {
	exc := &Exception{Value: recovered}
	if err, ok := recovered.(error); ok {
		exc.Message = err.Error()
	} else {
		exc.Message = fmt.Sprint(recovered)
	}
	exc.Trace = getStacktrace(helperFns)
	if len(exc.Trace) > 0 {
		exc.Location = opt.Some(exc.Trace[0])
	}
	return exc
}

// ErrorWithStacktrace is an error reported through Example.Errorf, with the location it came from.
type ErrorWithStacktrace struct {
	Message    string
	Stacktrace []StackFrame
}

func (e ErrorWithStacktrace) Error() string { return e.Message }

var errorTraceInMessageRegex = regexp.MustCompile(`^(?s:\s*Error Trace:.*\sError:\s*)`)

// transformError attaches a stacktrace to an error, and strips out any stacktrace information that
// testify/assert or testify/require may have put into the message.
func transformError(err error, stacktrace []StackFrame) error {
	message := err.Error()
	if strings.Contains(message, "Error Trace:") {
		message = strings.TrimSpace(errorTraceInMessageRegex.ReplaceAllLiteralString(message, ""))
	}
	if len(stacktrace) == 0 {
		return errors.New(message)
	}
	return ErrorWithStacktrace{Message: message, Stacktrace: stacktrace}
}

func currentPackageName() string {
	pc, _, _, ok := runtime.Caller(0)
	if !ok {
		return "?"
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "?"
	}
	packageName, _ := parsePackageAndFunctionName(f.Name())
	return packageName
}

func rootPackageName() string {
	p := strings.Split(currentPackageName(), "/")
	if len(p) > 3 {
		p = p[0:3]
	}
	return strings.Join(p, "/")
}

// getStacktrace walks up from its caller, omitting engine and runtime frames and designated
// helpers, and stops at the engine frame that invoked the user code.
func getStacktrace(helperFns []string) []StackFrame {
	callers := []StackFrame{}
	currentPackage := currentPackageName()
StackLoop:
	for i := 1; ; i++ { // start at 1 because 0 would just be getStacktrace itself
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		f := runtime.FuncForPC(pc)
		if f == nil {
			break
		}
		parts := strings.Split(file, "/")
		file = parts[len(parts)-1]

		fullFunctionName := f.Name()
		packageName, functionName := parsePackageAndFunctionName(fullFunctionName)

		if packageName == currentPackage && functionName == "(*Example).invoke" {
			break
		}
		if packageName == currentPackage || packageName == "runtime" {
			continue StackLoop
		}
		for _, helperFn := range helperFns {
			if helperFn == fullFunctionName {
				continue StackLoop
			}
		}

		callers = append(callers, StackFrame{FileName: file, Package: packageName, Function: functionName, Line: line})
	}
	return callers
}

func parsePackageAndFunctionName(fullName string) (string, string) {
	lastSlash := strings.LastIndex(fullName, "/")
	firstDotAfterSlash := strings.Index(fullName[lastSlash+1:], ".")
	if firstDotAfterSlash < 0 {
		return fullName, ""
	}
	packageName := fullName[0 : lastSlash+firstDotAfterSlash+1]
	functionName := fullName[len(packageName)+1:]
	return packageName, functionName
}
