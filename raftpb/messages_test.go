package raftpb

import (
	"testing"

	"github.com/golang/protobuf/proto"
)

func TestTermRecordRoundTrips(t *testing.T) {
	want := &TermRecord{Term: 7, VotedFor: 3, HasVotedFor: true}
	raw, err := proto.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := &TermRecord{}
	if err := proto.Unmarshal(raw, got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Term != want.Term || got.VotedFor != want.VotedFor || got.HasVotedFor != want.HasVotedFor {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestLogStoreRoundTripsMultipleEntries(t *testing.T) {
	want := &LogStore{Entries: []*LogEntryPB{
		{Index: 1, Term: 1, PayloadKind: 0, Data: []byte("a")},
		{Index: 2, Term: 2, PayloadKind: 2, Data: nil},
	}}
	raw, err := proto.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := &LogStore{}
	if err := proto.Unmarshal(raw, got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(got.Entries))
	}
	if got.Entries[0].Index != 1 || string(got.Entries[0].Data) != "a" {
		t.Fatalf("entry 0 mismatch: %+v", got.Entries[0])
	}
	if got.Entries[1].Term != 2 || got.Entries[1].PayloadKind != 2 {
		t.Fatalf("entry 1 mismatch: %+v", got.Entries[1])
	}
}

func TestEnvelopeRoundTripsAppendEntries(t *testing.T) {
	want := &Envelope{
		Kind:      int32(KindAppendEntries),
		From:      1,
		To:        2,
		Term:      4,
		LeaderId:  1,
		PrevIndex: 3,
		PrevTerm:  3,
		Entries: []*LogEntryPB{
			{Index: 4, Term: 4, Data: []byte("x")},
		},
		LeaderCommit: 2,
	}
	raw, err := proto.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := &Envelope{}
	if err := proto.Unmarshal(raw, got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Kind != want.Kind || got.Term != want.Term || got.PrevIndex != want.PrevIndex {
		t.Fatalf("scalar field mismatch: got %+v", got)
	}
	if len(got.Entries) != 1 || string(got.Entries[0].Data) != "x" {
		t.Fatalf("entries mismatch: %+v", got.Entries)
	}
}

func TestEnvelopeRoundTripsClientRequest(t *testing.T) {
	want := &Envelope{
		Kind:     int32(KindClientRequest),
		ClientId: []byte("req-42"),
		Op:       []byte("set k=v"),
	}
	raw, err := proto.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := &Envelope{}
	if err := proto.Unmarshal(raw, got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if string(got.ClientId) != "req-42" || string(got.Op) != "set k=v" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestEnvelopeRoundTripsClientResponseWithError(t *testing.T) {
	want := &Envelope{Kind: int32(KindClientResponse), ClientId: []byte("req-1"), ErrMsg: "not leader"}
	raw, err := proto.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := &Envelope{}
	if err := proto.Unmarshal(raw, got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ErrMsg != "not leader" {
		t.Fatalf("ErrMsg = %q, want %q", got.ErrMsg, "not leader")
	}
}
