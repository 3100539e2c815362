package raft

// NodeId is a stable identifier for a cluster member.
type NodeId uint64

// Term is a logical election epoch. It only ever moves forward.
type Term uint64

// LogIndex is a 1-based position in the log. Index 0 means "before the log".
type LogIndex uint64

// PayloadKind tags the variant carried by an EntryPayload.
type PayloadKind int

const (
	// PayloadData is an opaque application command.
	PayloadData PayloadKind = iota
	// PayloadConfig is reserved for future membership changes.
	PayloadConfig
	// PayloadCommand wraps an internal control command (e.g. a no-op).
	PayloadCommand
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadData:
		return "Data"
	case PayloadConfig:
		return "Config"
	case PayloadCommand:
		return "Command"
	default:
		return "Unknown"
	}
}

// EntryPayload is the tagged union carried by a log Entry. Only Data is
// populated for PayloadData entries; PayloadConfig and PayloadCommand
// entries are observed by the driver but never handed to the FSM.
type EntryPayload struct {
	Kind PayloadKind
	Data []byte
}

// Entry is a single, immutable-once-committed record in the log.
type Entry struct {
	Index   LogIndex
	Term    Term
	Payload EntryPayload
}

// AddressKind selects how a Message is routed.
type AddressKind int

const (
	AddrLocal AddressKind = iota
	AddrPeer
	AddrBroadcast
)

// Address names a routing target for an outbound Message: the local node,
// a specific peer, or all peers.
type Address struct {
	Kind AddressKind
	Peer NodeId
}

// Local addresses the current node.
func Local() Address { return Address{Kind: AddrLocal} }

// ToPeer addresses a single, specific peer.
func ToPeer(id NodeId) Address { return Address{Kind: AddrPeer, Peer: id} }

// Broadcast addresses every peer in the cluster.
func Broadcast() Address { return Address{Kind: AddrBroadcast} }

func (a Address) String() string {
	switch a.Kind {
	case AddrLocal:
		return "local"
	case AddrBroadcast:
		return "broadcast"
	default:
		return "peer"
	}
}

// Message is the RPC envelope that ties a Command to its routing
// information. Serialization is transport-defined; the core only requires
// a lossless round trip of these fields (see the transport package).
type Message struct {
	From    Address
	To      Address
	Command Command
}
