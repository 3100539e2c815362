// Package storage provides the durable collaborators the consensus core
// treats as external (spec §1): a log on disk and a current-term/vote
// record on disk, both persisted with the legacy-protobuf messages in
// raftpb. The layout directly adapts leifdb's node.go WriteTerm/ReadTerm/
// WriteLogs/ReadLogs functions, trading their package-level globals for
// methods on a FileLog value so multiple nodes in the same process (as the
// test suite and a local multi-node demo run) don't share state through
// global filenames.
package storage

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/protobuf/proto"
	"github.com/rs/zerolog"

	"github.com/raftlog/raftd/raft"
	"github.com/raftlog/raftd/raftpb"
)

// FileLog is a raft.Log backed by a single flat file holding the whole
// log, rewritten on every mutation. leifdb does the same thing (no
// incremental append, no log segments) since the dataset a consensus demo
// exercises fits comfortably in memory; a production system would segment
// this, which is explicitly out of scope (spec §1, §9 Non-goals).
type FileLog struct {
	mu       sync.RWMutex
	path     string
	entries  []raft.Entry
	committed raft.LogIndex
	logger   zerolog.Logger
}

// OpenFileLog loads path if it exists, or starts with an empty log. The
// containing directory must already exist (leifdb's WriteTerm enforces the
// same precondition via os.Stat on the directory).
func OpenFileLog(path string, logger zerolog.Logger) (*FileLog, error) {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("storage: log directory missing: %w", err)
	}

	fl := &FileLog{path: path, logger: logger}

	store := &raftpb.LogStore{}
	if _, err := os.Stat(path); err == nil {
		raw, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("storage: read log file: %w", err)
		}
		if err := proto.Unmarshal(raw, store); err != nil {
			logger.Error().Err(err).Str("path", path).Msg("failed to unmarshal log file, starting from empty log")
			store = &raftpb.LogStore{}
		}
	}

	fl.entries = make([]raft.Entry, 0, len(store.Entries))
	for _, e := range store.Entries {
		fl.entries = append(fl.entries, fromPB(e))
	}
	return fl, nil
}

func fromPB(e *raftpb.LogEntryPB) raft.Entry {
	return raft.Entry{
		Index: raft.LogIndex(e.Index),
		Term:  raft.Term(e.Term),
		Payload: raft.EntryPayload{
			Kind: raft.PayloadKind(e.PayloadKind),
			Data: e.Data,
		},
	}
}

func toPB(e raft.Entry) *raftpb.LogEntryPB {
	return &raftpb.LogEntryPB{
		Index:       uint64(e.Index),
		Term:        uint64(e.Term),
		PayloadKind: int32(e.Payload.Kind),
		Data:        e.Payload.Data,
	}
}

// persist rewrites the whole log file, mirroring leifdb's WriteLogs. The
// caller must hold mu.
func (f *FileLog) persist() error {
	store := &raftpb.LogStore{Entries: make([]*raftpb.LogEntryPB, 0, len(f.entries))}
	for _, e := range f.entries {
		store.Entries = append(store.Entries, toPB(e))
	}
	out, err := proto.Marshal(store)
	if err != nil {
		return fmt.Errorf("storage: marshal log store: %w", err)
	}
	if err := ioutil.WriteFile(f.path, out, 0644); err != nil {
		return fmt.Errorf("storage: write log file: %w", err)
	}
	return nil
}

func (f *FileLog) Append(entries ...raft.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := raft.LogIndex(len(f.entries)) + 1
	for _, e := range entries {
		if e.Index != next {
			return raft.ErrNonContiguous
		}
		next++
	}
	f.entries = append(f.entries, entries...)
	if err := f.persist(); err != nil {
		return err
	}
	return nil
}

func (f *FileLog) TruncateFrom(index raft.LogIndex) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if index <= f.committed {
		return raft.ErrTruncateCommitted
	}
	if index < 1 || int(index) > len(f.entries)+1 {
		return nil
	}
	f.entries = f.entries[:index-1]
	return f.persist()
}

func (f *FileLog) EntryAt(index raft.LogIndex) (raft.Entry, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if index < 1 || int(index) > len(f.entries) {
		return raft.Entry{}, false
	}
	return f.entries[index-1], true
}

func (f *FileLog) Range(from, to raft.LogIndex) ([]raft.Entry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if to <= from {
		return nil, nil
	}
	if from < 1 || int(from) > len(f.entries)+1 {
		return nil, raft.ErrRangeOutOfBounds
	}
	if to > raft.LogIndex(len(f.entries))+1 {
		to = raft.LogIndex(len(f.entries)) + 1
	}
	if to <= from {
		return nil, nil
	}
	out := make([]raft.Entry, to-from)
	copy(out, f.entries[from-1:to-1])
	return out, nil
}

func (f *FileLog) LastIndex() raft.LogIndex {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return raft.LogIndex(len(f.entries))
}

func (f *FileLog) LastTerm() raft.Term {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.entries) == 0 {
		return 0
	}
	return f.entries[len(f.entries)-1].Term
}

func (f *FileLog) TermAt(index raft.LogIndex) (raft.Term, bool) {
	e, ok := f.EntryAt(index)
	if !ok {
		return 0, false
	}
	return e.Term, true
}

func (f *FileLog) MarkCommitted(index raft.LogIndex) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index > f.committed {
		f.committed = index
	}
}

// TermStore persists current_term/voted_for, grounded on leifdb's
// WriteTerm/ReadTerm/SetTerm.
type TermStore struct {
	mu   sync.Mutex
	path string
}

// OpenTermStore does not itself read the file; call Load for that. Kept
// symmetrical with OpenFileLog's directory precondition.
func OpenTermStore(path string) (*TermStore, error) {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("storage: term directory missing: %w", err)
	}
	return &TermStore{path: path}, nil
}

// Load returns the persisted term and vote, or the zero record if the file
// has never been written.
func (t *TermStore) Load() (raft.Term, *raft.NodeId, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	record := &raftpb.TermRecord{}
	if _, err := os.Stat(t.path); err == nil {
		raw, err := ioutil.ReadFile(t.path)
		if err != nil {
			return 0, nil, fmt.Errorf("storage: read term file: %w", err)
		}
		if err := proto.Unmarshal(raw, record); err != nil {
			return 0, nil, fmt.Errorf("storage: unmarshal term file: %w", err)
		}
	}

	var votedFor *raft.NodeId
	if record.HasVotedFor {
		id := raft.NodeId(record.VotedFor)
		votedFor = &id
	}
	return raft.Term(record.Term), votedFor, nil
}

// PersistTerm implements raft.TermPersister, persisting term and vote and
// overwriting whatever was there before.
func (t *TermStore) PersistTerm(term raft.Term, votedFor *raft.NodeId) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	record := &raftpb.TermRecord{Term: uint64(term)}
	if votedFor != nil {
		record.VotedFor = uint64(*votedFor)
		record.HasVotedFor = true
	}
	out, err := proto.Marshal(record)
	if err != nil {
		return fmt.Errorf("storage: marshal term record: %w", err)
	}
	if err := ioutil.WriteFile(t.path, out, 0644); err != nil {
		return fmt.Errorf("storage: write term file: %w", err)
	}
	return nil
}
