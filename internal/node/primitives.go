package node

import (
	"github.com/hakeris1010/odmrp-sim/internal/odmrp"
	"github.com/hakeris1010/odmrp-sim/internal/packet"
	"github.com/hakeris1010/odmrp-sim/internal/routing"
)

// broadcast clones p once per neighbor (except the one named by except, if
// any) and hands each clone to the registry for delivery. It reports
// whether at least one neighbor accepted a clone.
func (n *Node) broadcast(p packet.Packet, except string) bool {
	n.mu.Lock()
	neighbors := make([]string, len(n.neighbors))
	copy(neighbors, n.neighbors)
	n.mu.Unlock()

	accepted := false
	for _, nb := range neighbors {
		if nb == except {
			continue
		}
		if n.reg.Deliver(n.ipAddress, nb, p.Clone()) {
			accepted = true
		}
	}
	return accepted
}

// routePacket looks up the routing table for d's destination and attempts
// delivery to the minimum-cost next hop, retrying against the
// next-best route (after discarding the failed entry) until delivery
// succeeds or no route remains.
func (n *Node) routePacket(d *packet.IPData) bool {
	for {
		route, ok := n.state.Routes.GetRouteForDestination(d.Destination)
		if !ok {
			return false
		}
		if n.reg.Deliver(n.ipAddress, route.NextHop, d.Clone()) {
			return true
		}
		n.state.Routes.RemoveEntry(route)
	}
}

// prepareJoinQuery builds a fresh Join Query for target (a multicast group
// or, when used for on-demand unicast route discovery, the unicast
// destination itself), stamped with this node's next sequence number.
//
// Sequence numbers are a per-node monotonic counter rather than drawn at
// random: a random 32-bit value occasionally collides across a long run,
// which would make the message cache wrongly treat two distinct floods as
// duplicates of each other. A monotonic counter can't collide with itself.
func (n *Node) prepareJoinQuery(target string) *packet.JoinQuery {
	n.mu.Lock()
	n.seq++
	seq := n.seq
	n.mu.Unlock()

	return &packet.JoinQuery{
		Source:         n.ipAddress,
		MulticastGroup: target,
		PreviousHop:    n.ipAddress,
		SequenceNumber: seq,
		TTL:            n.cfg.DefaultTTL,
		HopCount:       0,
	}
}

// prepareJoinReply builds a Join Reply addressed back along the reverse
// path for group, with one senders-list entry per address in sources that
// this node currently has a route for.
func (n *Node) prepareJoinReply(group string, sources []string) *packet.JoinReply {
	n.mu.Lock()
	n.seq++
	seq := n.seq
	n.mu.Unlock()

	var senders []packet.Sender
	for _, src := range sources {
		route, ok := n.state.Routes.GetRouteForDestination(src)
		if !ok {
			continue
		}
		senders = append(senders, packet.Sender{
			SenderAddr:          src,
			NextHopAddr:         route.NextHop,
			RouteExpirationTime: 0,
		})
	}

	return &packet.JoinReply{
		Source:         n.ipAddress,
		MulticastGroup: group,
		PreviousHop:    n.ipAddress,
		SequenceNumber: seq,
		AckReq:         false,
		ForwardGroup:   false,
		Senders:        senders,
	}
}

// installRoute adds entry to the routing table and clears any outstanding
// route-request marker for its destination, so a unicast send that was
// waiting on a Join Query reply is free to retry routing on its next tick
// instead of being stuck re-queueing forever once a route finally arrives.
func (n *Node) installRoute(entry routing.Entry) {
	n.state.Routes.Add(entry)
	n.mu.Lock()
	delete(n.routeRequestCache, entry.Destination)
	n.mu.Unlock()
}

// cacheEntryFor builds the duplicate-suppression key for a flood
// identified by (source, sequence number).
func cacheEntryFor(source string, seq uint32) odmrp.CacheEntry {
	return odmrp.CacheEntry{SourceAddress: source, PacketID: seq}
}
