// Package node implements the simulated mesh participant: its neighbor set,
// multicast memberships, ODMRP protocol state, send/receive queues, and the
// process() step function that advances all of it by exactly one operation
// per call. This is the biggest package in the module, built around
// on-demand Join Query/Join Reply flooding rather than periodic Hello/TC
// exchange.
package node

import (
	"sync"
	"sync/atomic"

	"github.com/hakeris1010/odmrp-sim/internal/clock"
	"github.com/hakeris1010/odmrp-sim/internal/config"
	"github.com/hakeris1010/odmrp-sim/internal/odmrp"
	"github.com/hakeris1010/odmrp-sim/internal/packet"
	"github.com/hakeris1010/odmrp-sim/internal/queue"
	"github.com/hakeris1010/odmrp-sim/internal/simlog"
)

// inbound pairs a received packet with the neighbor address it arrived
// from, since IPData carries no previous-hop field of its own and
// split-horizon forwarding needs to know who to exclude.
type inbound struct {
	from string
	pkt  packet.Packet
}

// Delivered is one application payload handed upward out of the mesh,
// recorded so that callers of Node.Delivered (such as tests) can inspect it.
type Delivered struct {
	Source       string
	HopsTraveled uint8
	Payload      []byte
}

// Node is one simulated mesh participant.
type Node struct {
	ipAddress       string
	multicastSource string // "" if this node never originates for a group

	cfg config.Config
	clk *clock.Clock
	log *simlog.Logger
	reg Registry

	state *odmrp.State

	sendQueue *queue.Bounded[*packet.IPData]
	recvQueue *queue.Bounded[inbound]

	down  atomic.Bool
	ready atomic.Bool

	// mu guards every field below, all of which are touched both by the
	// single-consumer process() call and by external admin operations
	// (connect/disconnect, group subscription, route/query commands).
	mu                 sync.Mutex
	neighbors          []string
	neighborSet        map[string]struct{}
	groups             map[string]struct{}
	receivers          map[string]struct{}
	routeRequestCache  map[string]struct{}
	joinQueryNext      *packet.JoinQuery
	sendReceiveToggle  bool
	seq                uint32
	delivered          []Delivered
	maxDeliveredRecord int
}

// New constructs a Node at ipAddress. multicastSource is the group this
// node periodically advertises as a sender for; pass "" for a node that
// never originates traffic on its own.
func New(ipAddress, multicastSource string, cfg config.Config, clk *clock.Clock, log *simlog.Logger, reg Registry) *Node {
	n := &Node{
		ipAddress:          ipAddress,
		multicastSource:    multicastSource,
		cfg:                cfg,
		clk:                clk,
		log:                log.Node(ipAddress),
		reg:                reg,
		state:              odmrp.NewState(cfg.MessageCacheSize, cfg.ForwardingTimeoutMillis, cfg.RouteRefreshMillis, clk.NowMillis()),
		sendQueue:          queue.NewBounded[*packet.IPData](cfg.PendingQueueSize),
		recvQueue:          queue.NewBounded[inbound](cfg.PendingQueueSize),
		neighborSet:        make(map[string]struct{}),
		groups:             make(map[string]struct{}),
		receivers:          make(map[string]struct{}),
		routeRequestCache:  make(map[string]struct{}),
		maxDeliveredRecord: 64,
	}
	n.ready.Store(true)
	return n
}

// IPAddress returns the node's address.
func (n *Node) IPAddress() string { return n.ipAddress }

// MulticastSource returns the group this node periodically advertises as a
// sender for, or "" if it never originates traffic on its own.
func (n *Node) MulticastSource() string { return n.multicastSource }

// Groups returns a snapshot of the multicast groups this node has joined
// (not including its own address, which is always an implicit member of
// itself).
func (n *Node) Groups() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.groups))
	for g := range n.groups {
		out = append(out, g)
	}
	return out
}

// NextDueMillis reports when this node's route-refresh timer next fires,
// used by the scheduler's scan step to compute how long it may sleep.
func (n *Node) NextDueMillis() int64 { return n.state.NextDueMillis() }

// HasPendingWork reports whether the node has anything queued that a scan
// should wake it for, independent of timer state.
func (n *Node) HasPendingWork() bool {
	n.mu.Lock()
	pending := n.joinQueryNext != nil
	n.mu.Unlock()
	return pending || !n.sendQueue.Empty() || !n.recvQueue.Empty()
}

// Routes exposes the node's routing table, for the `route`/`query` control
// surface.
func (n *Node) Routes() *odmrp.State { return n.state }

// Cache exposes the message-duplicate-suppression cache, for the `query`
// control surface's occupancy report.
func (n *Node) Cache() *odmrp.MessageCache { return n.state.Cache() }

// Now returns the node's current clock reading, for the `query` control
// surface to compute remaining forwarding-group lifetimes.
func (n *Node) Now() int64 { return n.clk.NowMillis() }

// Down reports whether the node is currently marked down.
func (n *Node) Down() bool { return n.down.Load() }

// SetDown marks the node as down (true) or restores it to service (false).
// A down node rejects every Accept call, simulating a powered-off host or
// a severed interface.
func (n *Node) SetDown(down bool) { n.down.Store(down) }

// AddNeighbor records ip as directly reachable. Adding an address already
// present is a no-op.
func (n *Node) AddNeighbor(ip string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.neighborSet[ip]; ok {
		return
	}
	n.neighborSet[ip] = struct{}{}
	n.neighbors = append(n.neighbors, ip)
}

// RemoveNeighbor forgets ip as a direct neighbor.
func (n *Node) RemoveNeighbor(ip string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.neighborSet[ip]; !ok {
		return
	}
	delete(n.neighborSet, ip)
	for i, nb := range n.neighbors {
		if nb == ip {
			n.neighbors = append(n.neighbors[:i], n.neighbors[i+1:]...)
			break
		}
	}
}

// Neighbors returns a snapshot of the node's current neighbor addresses.
func (n *Node) Neighbors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.neighbors))
	copy(out, n.neighbors)
	return out
}

// JoinGroup subscribes the node to a multicast group, making it an
// intended receiver for Join Queries advertising that group.
func (n *Node) JoinGroup(group string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.groups[group] = struct{}{}
}

// LeaveGroup unsubscribes the node from a multicast group.
func (n *Node) LeaveGroup(group string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.groups, group)
}

// isInMulticastGroups reports whether group names this node itself or a
// group it has joined. Caller must hold n.mu.
func (n *Node) isInMulticastGroups(group string) bool {
	if group == n.ipAddress {
		return true
	}
	_, ok := n.groups[group]
	return ok
}

// Enqueue adds an outgoing IP packet to the send queue (the console's
// `send` command and any application-layer originator). Subject
// to the bounded drop-oldest policy like every other queue in the
// simulator.
func (n *Node) Enqueue(d *packet.IPData) {
	n.sendQueue.Push(d)
	n.reg.Activate(n.ipAddress)
}

// Accept is the single entry point by which any packet reaches this node,
// called by the scheduler's Registry implementation after cloning. It
// reports false if the node is down, in which case the packet is dropped
// and the caller should treat delivery as failed.
func (n *Node) Accept(fromIP string, p packet.Packet) bool {
	if n.down.Load() {
		return false
	}
	n.recvQueue.Push(inbound{from: fromIP, pkt: p})
	return true
}

// Delivered returns a snapshot of payloads handed upward out of the mesh so
// far, most recent last.
func (n *Node) Delivered() []Delivered {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Delivered, len(n.delivered))
	copy(out, n.delivered)
	return out
}

func (n *Node) recordDelivered(d *packet.IPData) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered = append(n.delivered, Delivered{
		Source:       d.Source,
		HopsTraveled: d.HopsTraveled,
		Payload:      append([]byte(nil), d.Payload...),
	})
	if over := len(n.delivered) - n.maxDeliveredRecord; over > 0 {
		n.delivered = n.delivered[over:]
	}
}

// Receivers returns a snapshot of multicast source addresses this node has
// confirmed itself a receiver for (learned from Join Reply back-travel).
func (n *Node) Receivers() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.receivers))
	for r := range n.receivers {
		out = append(out, r)
	}
	return out
}

// Forwarding exposes forwarding-group soft state for the `query` command.
func (n *Node) Forwarding() *odmrp.ForwardingGroupTable { return n.state.Forwarding() }
