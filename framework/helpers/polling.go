package helpers

import "time"

// PollUntil calls testFn at each interval until it returns true or the timeout elapses. It runs
// on the calling goroutine, so it can be used from an example body without racing the engine.
func PollUntil(testFn func() bool, timeout, interval time.Duration) bool {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case <-deadline.C:
			return false
		case <-ticker.C:
			if testFn() {
				return true
			}
		}
	}
}

// RequireEventually fails t and stops it if testFn does not return true within the timeout.
func RequireEventually(
	t TestContext,
	testFn func() bool,
	timeout time.Duration,
	interval time.Duration,
	failureMsgFormat string,
	failureMsgArgs ...interface{},
) {
	if !PollUntil(testFn, timeout, interval) {
		t.Errorf(failureMsgFormat, failureMsgArgs...)
		t.FailNow()
	}
}
