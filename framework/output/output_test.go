package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleSinkIndentsGroups(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf, false)
	s.Group("Suite: a")
	s.Group("Context: b")
	s.Info("info")
	s.Warn("two\nlines")
	s.GroupEnd("Context: b")
	s.Log("back out")
	s.GroupEnd("Suite: a")
	s.GroupEnd("extra")
	s.Log("top")

	assert.Equal(t,
		"Suite: a\n"+
			"  Context: b\n"+
			"    info\n"+
			"    two\n"+
			"    lines\n"+
			"  back out\n"+
			"top\n",
		buf.String())
}

func TestErrorAndSuccessReturnValues(t *testing.T) {
	var buf bytes.Buffer
	sinks := []Sink{NewConsoleSink(&buf, false), &Recorder{}, Null(), Multi{Null(), &Recorder{}}}
	for _, s := range sinks {
		assert.False(t, s.Error("x"))
		assert.True(t, s.Success("y"))
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Group("g")
	r.Success("ok")
	r.Error("bad thing")
	r.GroupEnd("g")
	r.Info("after")

	assert.Equal(t, []Entry{
		{Level: LevelGroup, Depth: 0, Message: "g"},
		{Level: LevelSuccess, Depth: 1, Message: "ok"},
		{Level: LevelError, Depth: 1, Message: "bad thing"},
		{Level: LevelGroupEnd, Depth: 0, Message: "g"},
		{Level: LevelInfo, Depth: 0, Message: "after"},
	}, r.Entries())
	assert.Equal(t, []string{"bad thing"}, r.Messages(LevelError))
	assert.True(t, r.Contains(LevelError, "bad"))
	assert.False(t, r.Contains(LevelWarn, "bad"))

	r.Reset()
	assert.Len(t, r.Entries(), 0)
}

func TestMultiFansOut(t *testing.T) {
	r1, r2 := &Recorder{}, &Recorder{}
	m := Multi{r1, r2}
	m.Group("g")
	m.Warn("w")
	m.Log("l")
	m.GroupEnd("g")
	assert.Equal(t, r1.Entries(), r2.Entries())
	assert.Len(t, r1.Entries(), 4)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "success", LevelSuccess.String())
	assert.Equal(t, "groupEnd", LevelGroupEnd.String())
	assert.Equal(t, "unknown", Level(99).String())
}
