package raft

import "testing"

func TestElectionSelfVoteCounted(t *testing.T) {
	e := NewElection(1, 1, []NodeId{2, 3})
	if e.Status() != Voting {
		t.Fatalf("status after self-vote alone in a 3-node cluster = %v, want Voting", e.Status())
	}
}

func TestElectionReachesQuorum(t *testing.T) {
	e := NewElection(1, 1, []NodeId{2, 3})
	e.Vote(2, true)
	if e.Status() != Elected {
		t.Fatalf("status = %v, want Elected", e.Status())
	}
}

func TestElectionDefeated(t *testing.T) {
	e := NewElection(1, 1, []NodeId{2, 3})
	e.Vote(2, false)
	e.Vote(3, false)
	if e.Status() != Defeated {
		t.Fatalf("status = %v, want Defeated", e.Status())
	}
}

func TestElectionIgnoresDuplicateVotes(t *testing.T) {
	e := NewElection(1, 1, []NodeId{2, 3, 4, 5})
	e.Vote(2, true)
	// A duplicate, contradictory vote from the same peer must not flip the
	// tally: the first response for a peer is authoritative.
	e.Vote(2, false)
	if e.Status() != Voting {
		t.Fatalf("status after duplicate vote = %v, want Voting", e.Status())
	}
}

func TestElectionUnresponsivePeersStayVoting(t *testing.T) {
	// 5-node cluster, quorum 3. Self-vote plus one grant is 2/5: not
	// elected, and with 3 peers never having responded, not yet defeated
	// either, per spec's resolution of the open question on non-responses.
	e := NewElection(1, 1, []NodeId{2, 3, 4, 5})
	e.Vote(2, true)
	if e.Status() != Voting {
		t.Fatalf("status = %v, want Voting", e.Status())
	}
}

func TestElectionReset(t *testing.T) {
	e := NewElection(1, 1, []NodeId{2, 3})
	e.Vote(2, true)
	e.Reset()
	if e.Status() != Voting {
		t.Fatalf("status after reset = %v, want Voting", e.Status())
	}
}
