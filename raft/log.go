package raft

import "sync"

// Log is the ordered, persistent sequence of entries a Raft node maintains.
// Implementations must make Append and TruncateFrom durable before the call
// returns — a crash must never resurrect a truncated entry or lose an
// appended one (see storage.FileLog for the durable implementation; the
// in-memory implementation here is for tests and has no such guarantee).
type Log interface {
	// Append adds entries whose indices are exactly
	// LastIndex()+1 .. LastIndex()+len(entries). It returns
	// ErrNonContiguous otherwise.
	Append(entries ...Entry) error

	// TruncateFrom removes every entry with Index >= index. It returns
	// ErrTruncateCommitted if index has already been marked committed via
	// MarkCommitted.
	TruncateFrom(index LogIndex) error

	// EntryAt returns the entry at index and whether it exists.
	EntryAt(index LogIndex) (Entry, bool)

	// Range returns entries in [from, to), with to clamped to
	// LastIndex()+1. An empty range is valid and returns no entries. Unless the range
	// is empty, from must neither precede the log's start (index 1) nor lie
	// past LastIndex()+1; either returns ErrRangeOutOfBounds.
	Range(from, to LogIndex) ([]Entry, error)

	// LastIndex returns the index of the last entry, or 0 if the log is
	// empty.
	LastIndex() LogIndex

	// LastTerm returns the term of the last entry, or 0 if the log is
	// empty.
	LastTerm() Term

	// TermAt returns the term of the entry at index, if present.
	TermAt(index LogIndex) (Term, bool)

	// MarkCommitted records that no entry at or before index may be
	// truncated. Implementations that don't need the guard may ignore it.
	MarkCommitted(index LogIndex)
}

// MemoryLog is a non-durable Log backed by a plain slice. It satisfies the
// Log contract's ordering and contiguity rules but not its durability
// contract, which makes it suitable for unit and property tests where a
// real persistence medium (storage.FileLog) would only add noise.
type MemoryLog struct {
	mu        sync.RWMutex
	entries   []Entry // entries[i] has Index == i+1
	committed LogIndex
}

// NewMemoryLog returns an empty MemoryLog.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (l *MemoryLog) Append(entries ...Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := LogIndex(len(l.entries)) + 1
	for i, e := range entries {
		if e.Index != next+LogIndex(i) {
			return ErrNonContiguous
		}
	}
	l.entries = append(l.entries, entries...)
	return nil
}

func (l *MemoryLog) TruncateFrom(index LogIndex) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index == 0 {
		return nil
	}
	if index <= l.committed {
		return ErrTruncateCommitted
	}
	if int(index-1) < len(l.entries) {
		l.entries = l.entries[:index-1]
	}
	return nil
}

func (l *MemoryLog) EntryAt(index LogIndex) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index == 0 || int(index-1) >= len(l.entries) {
		return Entry{}, false
	}
	return l.entries[index-1], true
}

func (l *MemoryLog) Range(from, to LogIndex) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if to <= from {
		return nil, nil
	}
	if from == 0 || int(from-1) > len(l.entries) {
		return nil, ErrRangeOutOfBounds
	}
	start := int(from - 1)
	end := int(to - 1)
	if end > len(l.entries) {
		end = len(l.entries)
	}
	if start >= end {
		return nil, nil
	}
	out := make([]Entry, end-start)
	copy(out, l.entries[start:end])
	return out, nil
}

func (l *MemoryLog) LastIndex() LogIndex {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return LogIndex(len(l.entries))
}

func (l *MemoryLog) LastTerm() Term {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return 0
	}
	return l.entries[len(l.entries)-1].Term
}

func (l *MemoryLog) TermAt(index LogIndex) (Term, bool) {
	e, ok := l.EntryAt(index)
	if !ok {
		return 0, false
	}
	return e.Term, true
}

func (l *MemoryLog) MarkCommitted(index LogIndex) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index > l.committed {
		l.committed = index
	}
}
