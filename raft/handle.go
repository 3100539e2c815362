package raft

import "github.com/rs/zerolog"

// RaftRole names which concrete role a RaftHandle currently holds.
type RaftRole int

const (
	RoleFollower RaftRole = iota
	RoleCandidate
	RoleLeader
)

func (r RaftRole) String() string {
	switch r {
	case RoleCandidate:
		return "candidate"
	case RoleLeader:
		return "leader"
	default:
		return "follower"
	}
}

// RaftHandle is the tagged union of role-specific Raft instances — the Go
// stand-in for the closed `Follower | Candidate | Leader` enum the design
// calls for. It is implemented only by FollowerRaft, CandidateRaft, and
// LeaderRaft in this package (coreState is unexported), so callers outside
// package raft can hold and pass a RaftHandle around but can't fabricate
// new variants.
type RaftHandle interface {
	// Apply consumes a Command and returns the (possibly new) role, any
	// outbound messages to send, and an error only when a Log mutation
	// (Append/TruncateFrom) fails — a fatal durability failure per spec §7.
	// FSM failures never surface here; Apply does not call the FSM.
	Apply(cmd Command) (RaftHandle, []Message, error)

	// Role reports which concrete role this handle holds.
	Role() RaftRole

	coreState() raftCore
}

// NewRaftHandle builds a fresh node in the initial Follower state with no
// known leader, per spec §4.4.
func NewRaftHandle(cfg RaftConfig, log Log, clock Clock, logger zerolog.Logger) (RaftHandle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	core := newCore(cfg, log, clock, logger)
	core.resetElectionDeadline(clock.Now())
	return FollowerRaft{core: core}, nil
}

// RestoreTerm overwrites a freshly constructed handle's current_term and
// voted_for with values loaded from durable storage. It must only be used
// once, immediately after NewRaftHandle and before any Apply call, to
// resume a node's persisted state across a restart.
func RestoreTerm(handle RaftHandle, term Term, votedFor *NodeId) RaftHandle {
	core := handle.coreState()
	core.currentTerm = term
	core.votedFor = votedFor
	return FollowerRaft{core: core}
}

// SharedStateView is a read-only snapshot of the state common to every
// role, useful to the host driver and to tests without exposing raftCore.
type SharedStateView struct {
	CurrentTerm Term
	VotedFor    *NodeId
	CommitIndex LogIndex
	LastApplied LogIndex
}

// StateOf snapshots the shared state held by any RaftHandle.
func StateOf(handle RaftHandle) SharedStateView {
	c := handle.coreState()
	return SharedStateView{
		CurrentTerm: c.currentTerm,
		VotedFor:    c.votedFor,
		CommitIndex: c.commitIndex,
		LastApplied: c.lastApplied,
	}
}

// Step is the single entry point into the state machine. It enforces the
// shared precondition common to every inbound RPC carrying a term — "if
// msg.term > current_term, become Follower before processing the command"
// — in one place, then dispatches to the (possibly just-transitioned)
// role's own Apply. Duplicating this check per role is exactly the kind of
// thing that causes Raft safety bugs, so it lives here and nowhere else.
func Step(handle RaftHandle, cmd Command) (RaftHandle, []Message, error) {
	if term, ok := commandTerm(cmd); ok {
		core := handle.coreState()
		if core.observeTerm(term) {
			if handle.Role() != RoleFollower {
				core.logger.Info().
					Uint64("term", uint64(term)).
					Str("from_role", handle.Role().String()).
					Msg("observed higher term, stepping down to follower")
			}
			handle = FollowerRaft{core: core, leaderID: nil}
		}
	}
	return handle.Apply(cmd)
}
