// Package output defines the grouped, leveled text sink that the engine reports through, plus a
// console implementation, an in-memory recorder, and a fan-out combinator.
package output

// Sink receives all user-facing output of a test run. Groups nest: every Group is closed by a
// matching GroupEnd.
//
// Error and Success return a fixed boolean so that a predicate can report and produce its result
// in one expression:
//
//	return ok || out.Error("Expecting 3 but found 4.")
type Sink interface {
	Group(name string)
	GroupEnd(name string)
	Info(message string)
	Warn(message string)
	Log(message string)
	// Error reports a failure and always returns false.
	Error(message string) bool
	// Success reports a success and always returns true.
	Success(message string) bool
}

// Level identifies the kind of an output entry.
type Level int

const (
	LevelLog Level = iota
	LevelInfo
	LevelSuccess
	LevelWarn
	LevelError
	LevelGroup
	LevelGroupEnd
)

func (l Level) String() string {
	switch l {
	case LevelLog:
		return "log"
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelGroup:
		return "group"
	case LevelGroupEnd:
		return "groupEnd"
	default:
		return "unknown"
	}
}

type nullSink struct{}

func (nullSink) Group(string)        {}
func (nullSink) GroupEnd(string)     {}
func (nullSink) Info(string)         {}
func (nullSink) Warn(string)         {}
func (nullSink) Log(string)          {}
func (nullSink) Error(string) bool   { return false }
func (nullSink) Success(string) bool { return true }

// Null returns a Sink that discards everything.
func Null() Sink { return nullSink{} }

// Multi sends everything to each of its sinks in order.
type Multi []Sink

func (m Multi) Group(name string) {
	for _, s := range m {
		s.Group(name)
	}
}

func (m Multi) GroupEnd(name string) {
	for _, s := range m {
		s.GroupEnd(name)
	}
}

func (m Multi) Info(message string) {
	for _, s := range m {
		s.Info(message)
	}
}

func (m Multi) Warn(message string) {
	for _, s := range m {
		s.Warn(message)
	}
}

func (m Multi) Log(message string) {
	for _, s := range m {
		s.Log(message)
	}
}

func (m Multi) Error(message string) bool {
	for _, s := range m {
		s.Error(message)
	}
	return false
}

func (m Multi) Success(message string) bool {
	for _, s := range m {
		s.Success(message)
	}
	return true
}
