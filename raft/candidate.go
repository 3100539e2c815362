package raft

// CandidateRaft is seeking election for the current term.
type CandidateRaft struct {
	core     raftCore
	election *Election
}

func (c CandidateRaft) Role() RaftRole      { return RoleCandidate }
func (c CandidateRaft) coreState() raftCore { return c.core }

// seekElection is the Candidate-entry behavior: bump the term, vote for
// self, pick a fresh randomized deadline, and broadcast a vote request to
// every peer. The design note in spec §9 directs us to use the log's last
// entry term here (the standard Raft rule) rather than current_term, which
// is what an earlier draft of this system did.
func (c CandidateRaft) seekElection() (RaftHandle, []Message, error) {
	c.core.currentTerm++
	self := c.core.id
	c.core.votedFor = &self
	c.core.resetElectionDeadline(c.core.clock.Now())

	c.core.logger.Info().
		Uint64("term", uint64(c.core.currentTerm)).
		Int("peers", len(c.core.peers)).
		Msg("seeking election")

	c.election = NewElection(c.core.currentTerm, self, c.core.peers)

	msgs := []Message{{
		From: Local(),
		To:   Broadcast(),
		Command: CmdVoteRequest{
			Term:        c.core.currentTerm,
			CandidateID: self,
			LastTerm:    c.core.log.LastTerm(),
			LastIndex:   c.core.log.LastIndex(),
		},
	}}

	if c.election.Status() == Elected {
		// Single-node cluster: the self-vote alone reaches quorum.
		leader, more, err := CandidateRaft{core: c.core, election: c.election}.becomeLeader()
		return leader, append(msgs, more...), err
	}

	return c, msgs, nil
}

func (c CandidateRaft) Apply(cmd Command) (RaftHandle, []Message, error) {
	switch cc := cmd.(type) {
	case CmdTick:
		if !c.core.needsElection(c.core.clock.Now()) {
			return c, nil, nil
		}
		switch c.election.Status() {
		case Elected:
			// Shouldn't happen: VoteResponse handling transitions to
			// Leader the moment quorum is reached.
			return c.becomeLeader()
		default:
			c.core.votedFor = nil
			follower := FollowerRaft{core: c.core}
			return follower.Apply(CmdTimeout{})
		}

	case CmdVoteRequest:
		msg := Message{
			From: Local(),
			To:   ToPeer(cc.CandidateID),
			Command: CmdVoteResponse{
				Term:    c.core.currentTerm,
				From:    c.core.id,
				Granted: false,
			},
		}
		return c, []Message{msg}, nil

	case CmdVoteResponse:
		if cc.Term != c.core.currentTerm {
			return c, nil, nil
		}
		c.election.Vote(cc.From, cc.Granted)
		switch c.election.Status() {
		case Elected:
			return c.becomeLeader()
		case Defeated:
			c.core.votedFor = nil
			return FollowerRaft{core: c.core}, nil, nil
		default:
			return c, nil, nil
		}

	case CmdAppendEntries:
		if cc.Term >= c.core.currentTerm {
			return FollowerRaft{core: c.core}.Apply(cmd)
		}
		return c, nil, nil

	case CmdHeartbeat:
		if cc.Term >= c.core.currentTerm {
			return FollowerRaft{core: c.core}.Apply(cmd)
		}
		return c, nil, nil

	case CmdClientRequest:
		msg := Message{
			From:    Local(),
			To:      Local(),
			Command: CmdClientResponse{ID: cc.ID, Err: ErrNotLeader},
		}
		return c, []Message{msg}, nil

	default:
		return c, nil, nil
	}
}

func (c CandidateRaft) becomeLeader() (RaftHandle, []Message, error) {
	c.core.logger.Info().Uint64("term", uint64(c.core.currentTerm)).Msg("elected leader")
	leader := LeaderRaft{
		core:     c.core,
		progress: NewReplicationProgress(c.core.id, c.core.peers, c.core.log.LastIndex()),
	}
	return leader.onEntry()
}
