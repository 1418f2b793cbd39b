// Package internal contains test helpers for bdd.
package internal

// RunAction is used only in unit tests, but exported because it has to be in a separate package for test purposes
func RunAction(action func()) {
	action()
}

// PanicWith is used only in unit tests, to raise a panic from a known location outside the engine
func PanicWith(value interface{}) {
	panic(value)
}
