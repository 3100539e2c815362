package raft

import (
	"fmt"
	"time"
)

// PeerAddr names a cluster member for configuration purposes. Addr is
// opaque to the core; the transport package interprets it.
type PeerAddr struct {
	ID   NodeId
	Addr string
}

// RaftConfig is supplied by the host at startup. Fixed for the lifetime of
// the node: dynamic membership change is a non-goal.
type RaftConfig struct {
	NodeID NodeId
	Peers  []PeerAddr

	MinElectionTimeout time.Duration
	MaxElectionTimeout time.Duration
	HeartbeatInterval  time.Duration
}

// Validate enforces the constraints from the design: min < max,
// heartbeat strictly less than min, and peers must exclude self.
func (c RaftConfig) Validate() error {
	if c.MinElectionTimeout <= 0 || c.MaxElectionTimeout <= 0 {
		return fmt.Errorf("%w: election timeouts must be positive", ErrInvalidConfig)
	}
	if c.MinElectionTimeout >= c.MaxElectionTimeout {
		return fmt.Errorf("%w: min_election_timeout must be < max_election_timeout", ErrInvalidConfig)
	}
	if c.HeartbeatInterval >= c.MinElectionTimeout {
		return fmt.Errorf("%w: heartbeat_interval must be < min_election_timeout", ErrInvalidConfig)
	}
	for _, p := range c.Peers {
		if p.ID == c.NodeID {
			return fmt.Errorf("%w: peers must exclude self (node %d)", ErrInvalidConfig, c.NodeID)
		}
	}
	return nil
}

// PeerIDs returns the configured peer ids in a stable order.
func (c RaftConfig) PeerIDs() []NodeId {
	ids := make([]NodeId, len(c.Peers))
	for i, p := range c.Peers {
		ids[i] = p.ID
	}
	return ids
}

// Quorum returns floor(N/2)+1 where N includes self.
func (c RaftConfig) Quorum() int {
	return (len(c.Peers)+1)/2 + 1
}
