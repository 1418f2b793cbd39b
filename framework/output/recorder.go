package output

import (
	"strings"
	"sync"
)

// Entry is one call recorded by a Recorder. Depth is the number of groups that were open when the
// call was made; for a Group entry it is the depth outside the new group.
type Entry struct {
	Level   Level
	Depth   int
	Message string
}

// Recorder is a Sink that keeps every call in memory.
type Recorder struct {
	entries []Entry
	depth   int
	lock    sync.Mutex
}

func (r *Recorder) Group(name string) {
	r.lock.Lock()
	r.entries = append(r.entries, Entry{Level: LevelGroup, Depth: r.depth, Message: name})
	r.depth++
	r.lock.Unlock()
}

func (r *Recorder) GroupEnd(name string) {
	r.lock.Lock()
	if r.depth > 0 {
		r.depth--
	}
	r.entries = append(r.entries, Entry{Level: LevelGroupEnd, Depth: r.depth, Message: name})
	r.lock.Unlock()
}

func (r *Recorder) Info(message string) { r.add(LevelInfo, message) }

func (r *Recorder) Warn(message string) { r.add(LevelWarn, message) }

func (r *Recorder) Log(message string) { r.add(LevelLog, message) }

func (r *Recorder) Error(message string) bool {
	r.add(LevelError, message)
	return false
}

func (r *Recorder) Success(message string) bool {
	r.add(LevelSuccess, message)
	return true
}

func (r *Recorder) add(level Level, message string) {
	r.lock.Lock()
	r.entries = append(r.entries, Entry{Level: level, Depth: r.depth, Message: message})
	r.lock.Unlock()
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Messages returns the messages of all entries at the given level, in order.
func (r *Recorder) Messages(level Level) []string {
	var ret []string
	for _, e := range r.Entries() {
		if e.Level == level {
			ret = append(ret, e.Message)
		}
	}
	return ret
}

// Contains reports whether any entry at the given level has a message containing substr.
func (r *Recorder) Contains(level Level, substr string) bool {
	for _, m := range r.Messages(level) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.lock.Lock()
	r.entries = nil
	r.depth = 0
	r.lock.Unlock()
}
