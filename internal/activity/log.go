package activity

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxEntries bounds the log; appending past it evicts the oldest entry.
const MaxEntries = 40

// Source tags who produced a log entry.
type Source string

const (
	SourceUser   Source = "user"
	SourceAgent  Source = "agent"
	SourceSystem Source = "system"
	SourceTool   Source = "tool"
)

// Entry is one immutable record in the activity log.
type Entry struct {
	ID        string `json:"id"`
	Source    Source `json:"source"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Log is a bounded, newest-first record of session activity. Appends
// from session callbacks and user actions interleave; each append is a
// single atomic replace of the entry slice.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// NewLog creates an empty activity log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Append assigns an id and timestamp, prepends the entry, and truncates
// to MaxEntries.
func (l *Log) Append(source Source, text string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		ID:        uuid.NewString(),
		Source:    source,
		Text:      text,
		Timestamp: l.now().UTC().Format(time.RFC3339Nano),
	}

	next := make([]Entry, 0, len(l.entries)+1)
	next = append(next, entry)
	next = append(next, l.entries...)
	if len(next) > MaxEntries {
		next = next[:MaxEntries]
	}
	l.entries = next
	return entry
}

// Entries returns a newest-first copy of the log.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Recent returns at most k of the newest entries.
func (l *Log) Recent(k int) []Entry {
	entries := l.Entries()
	if k < 0 {
		k = 0
	}
	if k > len(entries) {
		k = len(entries)
	}
	return entries[:k]
}

// Len reports the current entry count.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
