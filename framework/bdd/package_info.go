// Package bdd is a behavior-driven test engine: suites contain contexts, contexts contain
// examples, and every unit runs to completion in declaration order before the next one starts.
//
// Examples may suspend with Wait or Suspend; continuations are posted to an event loop owned by
// the goroutine that started the run, so examples never run concurrently and the chain never
// grows the stack. Failures of any kind are recovered at the example boundary and only flip
// result flags, so every declared example always runs.
package bdd
