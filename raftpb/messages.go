// Package raftpb holds the on-disk and on-wire message types for the
// consensus core. These are plain protobuf messages in the classic
// (pre-APIv2) generated style — Reset/String/ProtoMessage plus protobuf
// struct tags — rather than protoc-gen-go output, since this tree is built
// without access to the protobuf compiler. google.golang.org/protobuf's
// legacy-message support (the same path that keeps decades-old generated
// code working) loads these via reflection over the struct tags, so
// proto.Marshal/Unmarshal work exactly as they would against generated
// code.
package raftpb

import "github.com/golang/protobuf/proto"

// TermRecord is the durable record of current_term/voted_for (spec §3, §6
// Persistence contract). HasVotedFor distinguishes "voted for node 0" from
// "no vote yet", since proto3 scalars can't represent that directly.
type TermRecord struct {
	Term        uint64 `protobuf:"varint,1,opt,name=term,proto3" json:"term,omitempty"`
	VotedFor    uint64 `protobuf:"varint,2,opt,name=voted_for,json=votedFor,proto3" json:"voted_for,omitempty"`
	HasVotedFor bool   `protobuf:"varint,3,opt,name=has_voted_for,json=hasVotedFor,proto3" json:"has_voted_for,omitempty"`
}

func (m *TermRecord) Reset()         { *m = TermRecord{} }
func (m *TermRecord) String() string { return proto.CompactTextString(m) }
func (*TermRecord) ProtoMessage()    {}

// LogEntryPB is the durable/wire form of raft.Entry.
type LogEntryPB struct {
	Index       uint64 `protobuf:"varint,1,opt,name=index,proto3" json:"index,omitempty"`
	Term        uint64 `protobuf:"varint,2,opt,name=term,proto3" json:"term,omitempty"`
	PayloadKind int32  `protobuf:"varint,3,opt,name=payload_kind,json=payloadKind,proto3" json:"payload_kind,omitempty"`
	Data        []byte `protobuf:"bytes,4,opt,name=data,proto3" json:"data,omitempty"`
}

func (m *LogEntryPB) Reset()         { *m = LogEntryPB{} }
func (m *LogEntryPB) String() string { return proto.CompactTextString(m) }
func (*LogEntryPB) ProtoMessage()    {}

// LogStore is the durable record of the full log (spec §4.1 durability
// contract). leifdb's node.go persists the whole log on every append in
// exactly this shape (WriteLogs/ReadLogs); storage.FileLog does the same.
type LogStore struct {
	Entries []*LogEntryPB `protobuf:"bytes,1,rep,name=entries,proto3" json:"entries,omitempty"`
}

func (m *LogStore) Reset()         { *m = LogStore{} }
func (m *LogStore) String() string { return proto.CompactTextString(m) }
func (*LogStore) ProtoMessage()    {}

// CommandKind discriminates the wire-relevant Command variants carried by
// an Envelope (spec §6: the internal-only Tick/Timeout/Noop commands never
// cross the wire).
type CommandKind int32

const (
	KindVoteRequest CommandKind = iota
	KindVoteResponse
	KindAppendEntries
	KindAppendResponse
	KindHeartbeat
	KindClientRequest
	KindClientResponse
)

// Envelope is the wire form of raft.Message carrying a wire-relevant
// Command. It is intentionally flat (no oneof, which the legacy-message
// reflection path can't express) — unused fields for a given Kind are left
// at their zero value, the same tradeoff many hand-rolled wire protocols
// make to stay within a generated-code-free tree.
type Envelope struct {
	Kind int32 `protobuf:"varint,1,opt,name=kind,proto3" json:"kind,omitempty"`

	From uint64 `protobuf:"varint,2,opt,name=from,proto3" json:"from,omitempty"`
	To   uint64 `protobuf:"varint,3,opt,name=to,proto3" json:"to,omitempty"`
	Term uint64 `protobuf:"varint,4,opt,name=term,proto3" json:"term,omitempty"`

	CandidateId uint64 `protobuf:"varint,5,opt,name=candidate_id,json=candidateId,proto3" json:"candidate_id,omitempty"`
	LastTerm    uint64 `protobuf:"varint,6,opt,name=last_term,json=lastTerm,proto3" json:"last_term,omitempty"`
	LastIndex   uint64 `protobuf:"varint,7,opt,name=last_index,json=lastIndex,proto3" json:"last_index,omitempty"`
	Granted     bool   `protobuf:"varint,8,opt,name=granted,proto3" json:"granted,omitempty"`

	LeaderId     uint64        `protobuf:"varint,9,opt,name=leader_id,json=leaderId,proto3" json:"leader_id,omitempty"`
	PrevIndex    uint64        `protobuf:"varint,10,opt,name=prev_index,json=prevIndex,proto3" json:"prev_index,omitempty"`
	PrevTerm     uint64        `protobuf:"varint,11,opt,name=prev_term,json=prevTerm,proto3" json:"prev_term,omitempty"`
	Entries      []*LogEntryPB `protobuf:"bytes,12,rep,name=entries,proto3" json:"entries,omitempty"`
	LeaderCommit uint64        `protobuf:"varint,13,opt,name=leader_commit,json=leaderCommit,proto3" json:"leader_commit,omitempty"`

	Index   uint64 `protobuf:"varint,14,opt,name=index,proto3" json:"index,omitempty"`
	Success bool   `protobuf:"varint,15,opt,name=success,proto3" json:"success,omitempty"`

	ClientId []byte `protobuf:"bytes,16,opt,name=client_id,json=clientId,proto3" json:"client_id,omitempty"`
	Op       []byte `protobuf:"bytes,17,opt,name=op,proto3" json:"op,omitempty"`
	Result   []byte `protobuf:"bytes,18,opt,name=result,proto3" json:"result,omitempty"`
	ErrMsg   string `protobuf:"bytes,19,opt,name=err_msg,json=errMsg,proto3" json:"err_msg,omitempty"`
}

func (m *Envelope) Reset()         { *m = Envelope{} }
func (m *Envelope) String() string { return proto.CompactTextString(m) }
func (*Envelope) ProtoMessage()    {}
