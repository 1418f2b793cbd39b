package helpers

import (
	"time"

	"github.com/launchdarkly/bdd-harness/framework/opt"
)

// NonBlockingSend sends value if the channel has room, and returns false otherwise.
func NonBlockingSend[V any](ch chan<- V, value V) bool {
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}

// TryReceive waits up to timeout for a value.
func TryReceive[V any](ch <-chan V, timeout time.Duration) opt.Maybe[V] {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case value := <-ch:
		return opt.Some(value)
	case <-deadline.C:
		return opt.None[V]()
	}
}

// RequireValue receives a value, or fails t and stops it if none arrives within the timeout.
func RequireValue[V any](t TestContext, ch <-chan V, timeout time.Duration) V {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	maybeValue := TryReceive(ch, timeout)
	if !maybeValue.IsDefined() {
		var empty V
		t.Errorf("timed out waiting for value of type %T", empty)
		t.FailNow()
	}
	return maybeValue.Value()
}
