// Package audit records role resolutions for later inspection.
//
// The trail is a bounded in-memory ring: old entries are overwritten once
// capacity is reached, so it can stay attached in production without
// growing unbounded. Feed it through the plugin in this package.
package audit

import (
	"sync"
	"time"
)

// DefaultCapacity is the trail size used when none is given.
const DefaultCapacity = 1024

// Entry is a single recorded role resolution.
type Entry struct {
	Role       string    `json:"role"`
	Source     string    `json:"source,omitempty"`
	AccountID  string    `json:"account_id,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	HitsUsed   int       `json:"hits_used,omitempty"`
	Refused    bool      `json:"refused"`
	Reason     string    `json:"reason,omitempty"`
	EvalTimeNs int64     `json:"eval_time_ns,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Trail is a fixed-capacity ring of resolution records.
type Trail struct {
	mu      sync.RWMutex
	entries []*Entry
	next    int
	full    bool
}

// NewTrail creates a trail holding at most capacity entries. A
// non-positive capacity falls back to DefaultCapacity.
func NewTrail(capacity int) *Trail {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Trail{entries: make([]*Entry, capacity)}
}

// Record appends an entry, overwriting the oldest once full.
func (t *Trail) Record(e *Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[t.next] = e
	t.next++
	if t.next == len(t.entries) {
		t.next = 0
		t.full = true
	}
}

// Len returns the number of recorded entries.
func (t *Trail) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.full {
		return len(t.entries)
	}
	return t.next
}

// Recent returns up to n entries, newest first.
func (t *Trail) Recent(n int) []*Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := t.next
	if t.full {
		count = len(t.entries)
	}
	if n > count {
		n = count
	}

	out := make([]*Entry, 0, n)
	idx := t.next
	for i := 0; i < n; i++ {
		idx--
		if idx < 0 {
			idx = len(t.entries) - 1
		}
		out = append(out, t.entries[idx])
	}
	return out
}
