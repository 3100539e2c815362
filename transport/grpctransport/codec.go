package grpctransport

import (
	"fmt"

	"github.com/raftlog/raftd/raft"
	"github.com/raftlog/raftd/raftpb"
)

// encode translates a wire-relevant raft.Command into an Envelope. Callers
// must only pass the Command variants listed in raft's command.go as wire
// commands (VoteRequest/VoteResponse/AppendEntries/AppendResponse/
// Heartbeat/ClientRequest/ClientResponse); anything else is a programming
// error in the caller, since Tick/Timeout/Noop never leave a single node.
func encode(from, to raft.NodeId, cmd raft.Command) (*raftpb.Envelope, error) {
	env := &raftpb.Envelope{From: uint64(from), To: uint64(to)}

	switch c := cmd.(type) {
	case raft.CmdVoteRequest:
		env.Kind = int32(raftpb.KindVoteRequest)
		env.Term = uint64(c.Term)
		env.CandidateId = uint64(c.CandidateID)
		env.LastTerm = uint64(c.LastTerm)
		env.LastIndex = uint64(c.LastIndex)

	case raft.CmdVoteResponse:
		env.Kind = int32(raftpb.KindVoteResponse)
		env.Term = uint64(c.Term)
		env.Granted = c.Granted

	case raft.CmdAppendEntries:
		env.Kind = int32(raftpb.KindAppendEntries)
		env.Term = uint64(c.Term)
		env.LeaderId = uint64(c.LeaderID)
		env.PrevIndex = uint64(c.PrevIndex)
		env.PrevTerm = uint64(c.PrevTerm)
		env.LeaderCommit = uint64(c.LeaderCommit)
		env.Entries = make([]*raftpb.LogEntryPB, len(c.Entries))
		for i, e := range c.Entries {
			env.Entries[i] = &raftpb.LogEntryPB{
				Index:       uint64(e.Index),
				Term:        uint64(e.Term),
				PayloadKind: int32(e.Payload.Kind),
				Data:        e.Payload.Data,
			}
		}

	case raft.CmdAppendResponse:
		env.Kind = int32(raftpb.KindAppendResponse)
		env.Term = uint64(c.Term)
		env.Index = uint64(c.Index)
		env.Success = c.Success

	case raft.CmdHeartbeat:
		env.Kind = int32(raftpb.KindHeartbeat)
		env.Term = uint64(c.Term)
		env.LeaderId = uint64(c.LeaderID)

	case raft.CmdClientRequest:
		env.Kind = int32(raftpb.KindClientRequest)
		env.ClientId = c.ID
		env.Op = c.Op

	case raft.CmdClientResponse:
		env.Kind = int32(raftpb.KindClientResponse)
		env.ClientId = c.ID
		env.Result = c.Result
		if c.Err != nil {
			env.ErrMsg = c.Err.Error()
		}

	default:
		return nil, fmt.Errorf("grpctransport: command %T does not cross the wire", cmd)
	}

	// From/To above are populated with the caller's node identities.
	// VoteRequest, AppendEntries and Heartbeat carry their sender in their
	// own field (CandidateID, LeaderID), but VoteResponse.From and
	// AppendResponse.From are not encoded: decode fills them from the peer
	// id, which Transport.Stream takes from env.From.
	return env, nil
}

// decode reconstructs a raft.Message from an Envelope received from peer.
func decode(peer raft.NodeId, env *raftpb.Envelope) (raft.Message, error) {
	msg := raft.Message{
		From: raft.ToPeer(peer),
		To:   raft.Local(),
	}

	switch raftpb.CommandKind(env.Kind) {
	case raftpb.KindVoteRequest:
		msg.Command = raft.CmdVoteRequest{
			Term:        raft.Term(env.Term),
			CandidateID: raft.NodeId(env.CandidateId),
			LastTerm:    raft.Term(env.LastTerm),
			LastIndex:   raft.LogIndex(env.LastIndex),
		}

	case raftpb.KindVoteResponse:
		msg.Command = raft.CmdVoteResponse{
			Term:    raft.Term(env.Term),
			From:    peer,
			Granted: env.Granted,
		}

	case raftpb.KindAppendEntries:
		entries := make([]raft.Entry, len(env.Entries))
		for i, e := range env.Entries {
			entries[i] = raft.Entry{
				Index: raft.LogIndex(e.Index),
				Term:  raft.Term(e.Term),
				Payload: raft.EntryPayload{
					Kind: raft.PayloadKind(e.PayloadKind),
					Data: e.Data,
				},
			}
		}
		msg.Command = raft.CmdAppendEntries{
			Term:         raft.Term(env.Term),
			LeaderID:     raft.NodeId(env.LeaderId),
			PrevIndex:    raft.LogIndex(env.PrevIndex),
			PrevTerm:     raft.Term(env.PrevTerm),
			Entries:      entries,
			LeaderCommit: raft.LogIndex(env.LeaderCommit),
		}

	case raftpb.KindAppendResponse:
		msg.Command = raft.CmdAppendResponse{
			Term:    raft.Term(env.Term),
			From:    peer,
			Index:   raft.LogIndex(env.Index),
			Success: env.Success,
		}

	case raftpb.KindHeartbeat:
		msg.Command = raft.CmdHeartbeat{
			Term:     raft.Term(env.Term),
			LeaderID: raft.NodeId(env.LeaderId),
		}

	case raftpb.KindClientRequest:
		msg.Command = raft.CmdClientRequest{ID: env.ClientId, Op: env.Op}

	case raftpb.KindClientResponse:
		var err error
		if env.ErrMsg != "" {
			err = fmt.Errorf("%s", env.ErrMsg)
		}
		msg.Command = raft.CmdClientResponse{ID: env.ClientId, Result: env.Result, Err: err}

	default:
		return raft.Message{}, fmt.Errorf("grpctransport: unknown envelope kind %d", env.Kind)
	}

	return msg, nil
}
