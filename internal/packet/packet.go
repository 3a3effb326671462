// Package packet defines the ODMRP packet model: a sum type of JoinQuery,
// JoinReply, and IPData variants sharing a CastMode, with an exhaustive
// switch at every dispatch site rather than instanceof-style type
// assertions.
//
// Packets are value objects: Clone() is the one required operation, and
// every hand-off between nodes (internal/node's broadcast and routePacket)
// calls it so that a mutation made by one receiver (ttl decrement, hop count
// increment, previousHop rewrite, senders list edits) is never visible to
// any other receiver holding what looks like "the same" packet.
package packet

import "github.com/hakeris1010/odmrp-sim/internal/addr"

// Packet is implemented by JoinQuery, JoinReply, and IPData.
type Packet interface {
	// CastMode reports how this packet should be dispatched.
	CastMode() addr.CastMode
	// Clone returns a deep copy, safe to mutate independently of the
	// original.
	Clone() Packet
}

// JoinQuery is a flooded route/receiver discovery advertisement.
type JoinQuery struct {
	Source         string
	MulticastGroup string // also used as the desired unicast destination
	PreviousHop    string
	SequenceNumber uint32
	TTL            uint8
	HopCount       uint8
}

// CastMode reports Broadcast: Join Queries are always flooded.
func (q *JoinQuery) CastMode() addr.CastMode { return addr.Broadcast }

// Clone returns an independent copy of q.
func (q *JoinQuery) Clone() Packet {
	c := *q
	return &c
}

// Sender is one entry of a JoinReply's senders list, naming a multicast
// source this reply is building a forwarding path toward.
type Sender struct {
	SenderAddr          string
	NextHopAddr         string
	RouteExpirationTime int64
}

// JoinReply back-propagates along the reverse path learned from a JoinQuery,
// rewriting its senders list hop by hop to build the forwarding group.
type JoinReply struct {
	Source         string
	MulticastGroup string
	PreviousHop    string
	SequenceNumber uint32
	AckReq         bool
	ForwardGroup   bool
	Senders        []Sender
}

// CastMode reports Broadcast: Join Replies are always flooded.
func (r *JoinReply) CastMode() addr.CastMode { return addr.Broadcast }

// Count returns the number of sender entries, derived rather than stored
// redundantly.
func (r *JoinReply) Count() int { return len(r.Senders) }

// Clone returns an independent copy of r, including a fresh Senders slice so
// mutations to one node's copy never alias another's.
func (r *JoinReply) Clone() Packet {
	c := *r
	if r.Senders != nil {
		c.Senders = make([]Sender, len(r.Senders))
		copy(c.Senders, r.Senders)
	}
	return &c
}

// IPData carries an application payload, dispatched by its own CastMode
// which is derived from Destination at origination time and then carried
// along unchanged as the packet is forwarded, since intermediate hops must
// not need to reclassify it.
type IPData struct {
	Source       string
	Destination  string
	TTL          uint8
	HopsTraveled uint8
	Mode         addr.CastMode
	Payload      []byte
	Verbose      bool
}

// CastMode reports the mode fixed at origination.
func (d *IPData) CastMode() addr.CastMode { return d.Mode }

// Clone returns an independent copy of d, including a fresh Payload slice.
func (d *IPData) Clone() Packet {
	c := *d
	if d.Payload != nil {
		c.Payload = make([]byte, len(d.Payload))
		copy(c.Payload, d.Payload)
	}
	return &c
}
