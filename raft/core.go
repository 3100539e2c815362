package raft

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// raftCore is the shared state and collaborators common to every role
// (spec §3 SharedState + §4.4). Role structs embed a raftCore by value and
// hand it forward on every transition, mirroring the move-semantics the
// design calls for: consuming self and returning a new role leaves no
// partially-initialized state lying around.
type raftCore struct {
	id    NodeId
	peers []NodeId
	log   Log

	currentTerm Term
	votedFor    *NodeId
	commitIndex LogIndex
	lastApplied LogIndex

	electionDeadline time.Time
	electionTimeout  time.Duration

	minElectionTimeout time.Duration
	maxElectionTimeout time.Duration
	heartbeatInterval  time.Duration

	clock  Clock
	rng    *rand.Rand
	logger zerolog.Logger
}

func newCore(cfg RaftConfig, log Log, clock Clock, logger zerolog.Logger) raftCore {
	return raftCore{
		id:                 cfg.NodeID,
		peers:              cfg.PeerIDs(),
		log:                log,
		minElectionTimeout: cfg.MinElectionTimeout,
		maxElectionTimeout: cfg.MaxElectionTimeout,
		heartbeatInterval:  cfg.HeartbeatInterval,
		clock:              clock,
		rng:                rand.New(rand.NewSource(int64(cfg.NodeID) + 1)),
		logger:             logger.With().Uint64("node", uint64(cfg.NodeID)).Logger(),
	}
}

// quorum is floor(N/2)+1 where N includes self.
func (c *raftCore) quorum() int {
	return (len(c.peers)+1)/2 + 1
}

// needsElection reports whether now has reached the election deadline.
func (c *raftCore) needsElection(now time.Time) bool {
	return !c.electionDeadline.IsZero() && !now.Before(c.electionDeadline)
}

// resetElectionDeadline picks a fresh randomized timeout in
// [min, max] and sets the deadline relative to now.
func (c *raftCore) resetElectionDeadline(now time.Time) {
	span := c.maxElectionTimeout - c.minElectionTimeout
	jitter := time.Duration(0)
	if span > 0 {
		jitter = time.Duration(c.rng.Int63n(int64(span) + 1))
	}
	c.electionTimeout = c.minElectionTimeout + jitter
	c.electionDeadline = now.Add(c.electionTimeout)
}

// observeTerm is the single, centralized implementation of "if msg.term >
// current_term, become Follower before processing the command" (spec
// §4.4). It must run before every role's Apply touches the command.
func (c *raftCore) observeTerm(term Term) bool {
	if term <= c.currentTerm {
		return false
	}
	c.currentTerm = term
	c.votedFor = nil
	return true
}
