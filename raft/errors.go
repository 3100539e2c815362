package raft

import "errors"

var (
	// ErrNotLeader indicates a client append was attempted against a node
	// that is not currently the leader.
	ErrNotLeader = errors.New("raft: cannot append, not leader")

	// ErrNonContiguous indicates Log.Append was given entries that do not
	// immediately follow the current last index.
	ErrNonContiguous = errors.New("raft: append is not contiguous with log")

	// ErrTruncateCommitted indicates Log.TruncateFrom was asked to remove
	// an index that has already been committed.
	ErrTruncateCommitted = errors.New("raft: cannot truncate a committed index")

	// ErrRangeOutOfBounds indicates Log.Range was asked for a non-empty
	// range whose start precedes the log's first index or lies past
	// LastIndex()+1.
	ErrRangeOutOfBounds = errors.New("raft: range starts before log")

	// ErrInvalidConfig indicates a RaftConfig failed validation at startup.
	ErrInvalidConfig = errors.New("raft: invalid configuration")

	// ErrDurabilityFailed indicates a Log or term/vote persistence call
	// failed. Fatal: the node must not continue, since future-term
	// correctness depends on this state having actually been persisted.
	ErrDurabilityFailed = errors.New("raft: durability failure")

	// ErrFsmFailed indicates the FSM's transition returned an error.
	// Fatal: state-machine determinism is no longer guaranteed.
	ErrFsmFailed = errors.New("raft: fsm transition failed")
)
