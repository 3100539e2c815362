// Package store provides a demo replicated key/value Fsm (fsm.Fsm) backed
// by an immutable radix tree, so every applied Transition produces a new
// tree rather than mutating one in place — convenient for Query, which can
// safely read a snapshot while a concurrent Transition (from the Driver's
// perspective these never actually overlap, since Driver owns both, but
// the immutable structure also makes History/Snapshot features cheap to
// add later) is in flight. go-immutable-radix is part of the dependency
// set the distributed-log stack this module is descended from already
// carries for exactly this kind of replicated state.
package store

import (
	"encoding/json"
	"fmt"

	iradix "github.com/hashicorp/go-immutable-radix"
)

// OpKind discriminates the two mutating operations the store accepts.
type OpKind string

const (
	OpSet    OpKind = "set"
	OpDelete OpKind = "delete"
)

// Op is the wire/log encoding of a mutating command, JSON-encoded into
// raft.EntryPayload.Data by callers (e.g. cmd/raftd's nodeHost) before
// Submit.
type Op struct {
	Kind  OpKind `json:"kind"`
	Key   string `json:"key"`
	Value []byte `json:"value,omitempty"`
}

// Query is the read-only request encoding for Fsm.Query.
type Query struct {
	Key string `json:"key"`
}

// QueryResult is Fsm.Query's response encoding.
type QueryResult struct {
	Found bool   `json:"found"`
	Value []byte `json:"value,omitempty"`
}

// KVStore is a replicated key/value Fsm. The zero value is not usable;
// construct with New.
type KVStore struct {
	tree *iradix.Tree
}

// New returns an empty store.
func New() *KVStore {
	return &KVStore{tree: iradix.New()}
}

// Transition implements fsm.Fsm. data must be a JSON-encoded Op.
func (s *KVStore) Transition(data []byte) ([]byte, error) {
	var op Op
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, fmt.Errorf("store: decode op: %w", err)
	}

	switch op.Kind {
	case OpSet:
		s.tree, _, _ = s.tree.Insert([]byte(op.Key), op.Value)
	case OpDelete:
		s.tree, _, _ = s.tree.Delete([]byte(op.Key))
	default:
		return nil, fmt.Errorf("store: unknown op kind %q", op.Kind)
	}
	return nil, nil
}

// Query implements fsm.Fsm. data must be a JSON-encoded Query and the
// result is a JSON-encoded QueryResult.
func (s *KVStore) Query(data []byte) ([]byte, error) {
	var q Query
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("store: decode query: %w", err)
	}

	value, found := s.tree.Get([]byte(q.Key))
	result := QueryResult{Found: found}
	if found {
		result.Value = value.([]byte)
	}
	return json.Marshal(result)
}

// Len reports the number of keys currently stored, mostly useful for
// status endpoints and tests.
func (s *KVStore) Len() int {
	return s.tree.Len()
}
