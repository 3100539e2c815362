package raft

import (
	"errors"
	"testing"
	"time"
)

func TestRaftConfigValidate(t *testing.T) {
	base := func() RaftConfig {
		return RaftConfig{
			NodeID:             1,
			Peers:              []PeerAddr{{ID: 2, Addr: "a"}, {ID: 3, Addr: "b"}},
			MinElectionTimeout: 150 * time.Millisecond,
			MaxElectionTimeout: 300 * time.Millisecond,
			HeartbeatInterval:  50 * time.Millisecond,
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		modify func(*RaftConfig)
	}{
		{"min-ge-max", func(c *RaftConfig) { c.MinElectionTimeout = c.MaxElectionTimeout }},
		{"heartbeat-not-strictly-less", func(c *RaftConfig) { c.HeartbeatInterval = c.MinElectionTimeout }},
		{"self-in-peers", func(c *RaftConfig) { c.Peers = append(c.Peers, PeerAddr{ID: c.NodeID, Addr: "x"}) }},
		{"zero-min", func(c *RaftConfig) { c.MinElectionTimeout = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.modify(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestRaftConfigQuorumAndPeerIDs(t *testing.T) {
	cfg := RaftConfig{NodeID: 1, Peers: []PeerAddr{{ID: 2}, {ID: 3}, {ID: 4}}}
	if cfg.Quorum() != 3 {
		t.Fatalf("Quorum() = %d, want 3", cfg.Quorum())
	}
	ids := cfg.PeerIDs()
	if len(ids) != 3 || ids[0] != 2 || ids[2] != 4 {
		t.Fatalf("PeerIDs() = %v", ids)
	}
}
