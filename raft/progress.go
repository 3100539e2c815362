package raft

// PeerProgress is the leader's view of one peer's replication state.
type PeerProgress struct {
	NextIndex  LogIndex
	MatchIndex LogIndex
}

// ReplicationProgress tracks NextIndex/MatchIndex per peer for a leader,
// plus a self entry so commit-index advancement can treat the leader's own
// log uniformly with its peers.
type ReplicationProgress struct {
	self  NodeId
	peers map[NodeId]*PeerProgress
}

// NewReplicationProgress initializes progress for every node (including
// self) on leader entry: every peer starts at next_index = lastIndex+1,
// match_index = 0, while the leader's own match_index is its last_index.
func NewReplicationProgress(self NodeId, peers []NodeId, lastIndex LogIndex) *ReplicationProgress {
	rp := &ReplicationProgress{
		self:  self,
		peers: make(map[NodeId]*PeerProgress, len(peers)+1),
	}
	for _, p := range peers {
		rp.peers[p] = &PeerProgress{NextIndex: lastIndex + 1, MatchIndex: 0}
	}
	rp.peers[self] = &PeerProgress{NextIndex: lastIndex + 1, MatchIndex: lastIndex}
	return rp
}

// Get returns the progress tracked for a peer, if any.
func (rp *ReplicationProgress) Get(id NodeId) (PeerProgress, bool) {
	p, ok := rp.peers[id]
	if !ok {
		return PeerProgress{}, false
	}
	return *p, true
}

// RecordSuccess advances match_index/next_index after a successful
// AppendEntries reply carrying the highest index now replicated to peer.
func (rp *ReplicationProgress) RecordSuccess(id NodeId, index LogIndex) {
	p, ok := rp.peers[id]
	if !ok {
		return
	}
	if index > p.MatchIndex {
		p.MatchIndex = index
	}
	p.NextIndex = p.MatchIndex + 1
}

// RecordFailure backs next_index off by one on a log-inconsistency
// rejection. Linear backoff is sufficient per the design; faster backoff
// schemes are a permitted optimization left undone here.
func (rp *ReplicationProgress) RecordFailure(id NodeId) {
	p, ok := rp.peers[id]
	if !ok {
		return
	}
	if p.NextIndex > 1 {
		p.NextIndex--
	}
}

// Peers returns the set of peer ids tracked, excluding self.
func (rp *ReplicationProgress) Peers() []NodeId {
	ids := make([]NodeId, 0, len(rp.peers)-1)
	for id := range rp.peers {
		if id != rp.self {
			ids = append(ids, id)
		}
	}
	return ids
}

// CommitIndex computes the highest index N > currentCommit such that
// log.TermAt(N) == currentTerm and a quorum of peers (by MatchIndex) has
// replicated it. The term check is mandatory: counting alone would let a
// leader commit entries from a prior term, which the Raft commit rule
// forbids. Returns currentCommit if no such N exists.
func (rp *ReplicationProgress) CommitIndex(log Log, currentTerm Term, currentCommit LogIndex) LogIndex {
	last := log.LastIndex()
	quorum := len(rp.peers)/2 + 1

	for n := last; n > currentCommit; n-- {
		term, ok := log.TermAt(n)
		if !ok || term != currentTerm {
			continue
		}
		count := 0
		for _, p := range rp.peers {
			if p.MatchIndex >= n {
				count++
			}
		}
		if count >= quorum {
			return n
		}
	}
	return currentCommit
}
