package helpers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTestRecorder(t *testing.T) {
	t.Run("Errorf", func(t *testing.T) {
		var tr TestRecorder
		tr.Errorf("hello %s", "there")
		tr.Errorf("bye")
		assert.Equal(t, []string{"hello there", "bye"}, tr.Errors)
		assert.False(t, tr.Terminated)
	})

	t.Run("FailNow", func(t *testing.T) {
		var tr1 TestRecorder
		tr1.FailNow()
		assert.True(t, tr1.Terminated)

		tr2 := TestRecorder{PanicOnTerminate: true}
		assert.Panics(t, func() { tr2.FailNow() })
		assert.True(t, tr2.Terminated)
	})

	t.Run("Err", func(t *testing.T) {
		var tr TestRecorder
		assert.Nil(t, tr.Err())

		tr.Errorf("hello %s", "there")
		tr.Errorf("bye")
		assert.Equal(t, errors.New("hello there, bye"), tr.Err())
	})
}

func TestApplyOptions(t *testing.T) {
	type config struct{ a, b int }
	setA := ConfigOptionFunc[config](func(c *config) error { c.a = 1; return nil })
	fail := ConfigOptionFunc[config](func(c *config) error { return errors.New("bad") })
	setB := ConfigOptionFunc[config](func(c *config) error { c.b = 2; return nil })

	var c config
	assert.NoError(t, ApplyOptions(&c, setA, setB))
	assert.Equal(t, config{1, 2}, c)

	var c2 config
	assert.EqualError(t, ApplyOptions(&c2, setA, fail, setB), "bad")
	assert.Equal(t, config{a: 1}, c2)
}

func TestPollUntil(t *testing.T) {
	counter := 0
	assert.True(t, PollUntil(func() bool { counter++; return counter > 2 }, time.Second, time.Millisecond))

	assert.False(t, PollUntil(func() bool { return false }, 10*time.Millisecond, time.Millisecond))

	var tr TestRecorder
	RequireEventually(&tr, func() bool { return false }, 10*time.Millisecond, time.Millisecond, "no %s", "luck")
	assert.Equal(t, []string{"no luck"}, tr.Errors)
	assert.True(t, tr.Terminated)
}
