package node

import (
	"github.com/hakeris1010/odmrp-sim/internal/addr"
	"github.com/hakeris1010/odmrp-sim/internal/packet"
	"github.com/hakeris1010/odmrp-sim/internal/routing"
)

// Process advances the node by at most one operation, in priority order:
// emit a periodic or pending Join Query, originate one queued IP send, or
// consume one received packet. It reports whether it did anything at all.
// When an operation was performed and work is still queued, the node
// reactivates itself through its Registry.
func (n *Node) Process() bool {
	if !n.ready.Load() || n.down.Load() {
		return false
	}

	now := n.clk.NowMillis()
	performed := false

	switch {
	case n.hasPendingJoinQuery(now):
		n.emitJoinQuery(now)
		performed = true
	case n.wantsSend():
		n.originateSend(now)
		performed = true
	case !n.recvQueue.Empty():
		n.consumeReceive(now)
		performed = true
	}

	if !performed {
		return false
	}

	n.mu.Lock()
	n.sendReceiveToggle = !n.sendReceiveToggle
	stillPending := !n.sendQueue.Empty() || !n.recvQueue.Empty() || n.joinQueryNext != nil
	n.mu.Unlock()

	if stillPending {
		n.reg.Activate(n.ipAddress)
	}
	return true
}

// hasPendingJoinQuery reports whether P1 should fire this tick: either a
// Join Query was already prepared on a previous tick (the on-demand
// unicast-route-discovery fallback from P2), or the periodic route-refresh
// timer is due for a node that actually originates traffic. A node with no
// multicastSource and nothing pending has no Join Query of its own to
// flood, so the refresh timer is simply reset without emitting anything;
// see DESIGN.md for this resolved ambiguity.
func (n *Node) hasPendingJoinQuery(now int64) bool {
	n.mu.Lock()
	pending := n.joinQueryNext != nil
	n.mu.Unlock()
	if pending {
		return true
	}
	if !n.state.IsRouteRefreshNeeded(now) {
		return false
	}
	if n.multicastSource == "" {
		n.state.ResetLastRouteRefresh(now)
		return false
	}
	return true
}

func (n *Node) emitJoinQuery(now int64) {
	n.mu.Lock()
	q := n.joinQueryNext
	n.joinQueryNext = nil
	n.mu.Unlock()

	if q == nil {
		q = n.prepareJoinQuery(n.multicastSource)
	}

	n.state.Cache().AddEntry(cacheEntryFor(q.Source, q.SequenceNumber))
	n.broadcast(q, "")
	n.state.ResetLastRouteRefresh(now)
	n.log.Event("join_query_originated").With(map[string]interface{}{
		"group": q.MulticastGroup,
		"seq":   q.SequenceNumber,
	}).Info("originated join query")
}

// wantsSend reports whether P2 should fire: a send is queued, and either
// nothing is waiting to be received or this tick's send/receive toggle
// favors sending.
func (n *Node) wantsSend() bool {
	if n.sendQueue.Empty() {
		return false
	}
	if n.recvQueue.Empty() {
		return true
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sendReceiveToggle
}

func (n *Node) originateSend(now int64) {
	d, ok := n.sendQueue.Pop()
	if !ok {
		return
	}

	switch d.Mode {
	case addr.Broadcast, addr.Multicast:
		n.broadcast(d, "")
		return
	case addr.Unicast:
		n.originateUnicast(d, now)
	default:
		// Malformed destination; nothing sensible to do with it.
	}
}

func (n *Node) originateUnicast(d *packet.IPData, now int64) {
	n.mu.Lock()
	_, outstanding := n.routeRequestCache[d.Destination]
	n.mu.Unlock()

	if outstanding {
		// A Join Query for this destination is already in flight; wait for
		// it instead of flooding another one.
		n.sendQueue.Push(d)
		return
	}

	// Count the hop this send is about to make: every forwarding node along
	// the way increments HopsTraveled once before relaying (see
	// handleIPData), so origination must do the same for the first edge or
	// the destination's recorded count comes up one short of the number of
	// edges actually crossed.
	d.HopsTraveled++
	if n.routePacket(d) {
		return
	}
	d.HopsTraveled--

	n.mu.Lock()
	n.routeRequestCache[d.Destination] = struct{}{}
	n.joinQueryNext = n.prepareJoinQuery(d.Destination)
	n.mu.Unlock()
	n.sendQueue.Push(d)
}

func (n *Node) consumeReceive(now int64) {
	item, ok := n.recvQueue.Pop()
	if !ok {
		return
	}

	switch p := item.pkt.(type) {
	case *packet.JoinQuery:
		n.handleJoinQuery(p, now)
	case *packet.JoinReply:
		n.handleJoinReply(p, now)
	case *packet.IPData:
		n.handleIPData(p, item.from, now)
	}
}

func (n *Node) handleJoinQuery(q *packet.JoinQuery, now int64) {
	entry := cacheEntryFor(q.Source, q.SequenceNumber)
	if n.state.Cache().Contains(entry) {
		return
	}
	n.state.Cache().AddEntry(entry)

	n.installRoute(routing.Entry{
		Destination: q.Source,
		NextHop:     q.PreviousHop,
		Cost:        int(q.HopCount) + 1,
	})

	n.mu.Lock()
	intendedReceiver := n.isInMulticastGroups(q.MulticastGroup)
	n.mu.Unlock()

	if intendedReceiver {
		reply := n.prepareJoinReply(q.MulticastGroup, []string{q.Source})
		if len(reply.Senders) > 0 {
			n.broadcast(reply, "")
		}
	}

	q.HopCount++
	if q.TTL > 1 {
		oldPrevHop := q.PreviousHop
		q.TTL--
		q.PreviousHop = n.ipAddress
		n.broadcast(q, oldPrevHop)
	}
}

func (n *Node) handleJoinReply(r *packet.JoinReply, now int64) {
	n.installRoute(routing.Entry{
		Destination: r.Source,
		NextHop:     r.PreviousHop,
		Cost:        1,
	})

	kept := r.Senders[:0:0]
	for _, s := range r.Senders {
		remove := s.NextHopAddr != n.ipAddress
		if s.SenderAddr == n.ipAddress {
			remove = true
			n.mu.Lock()
			n.receivers[r.Source] = struct{}{}
			n.mu.Unlock()
		}
		if remove {
			continue
		}

		route, ok := n.state.Routes.GetRouteForDestination(s.SenderAddr)
		if !ok {
			continue
		}
		s.NextHopAddr = route.NextHop
		kept = append(kept, s)
	}
	r.Senders = kept

	if len(r.Senders) == 0 {
		return
	}

	n.state.Forwarding().AddGroup(r.MulticastGroup, now)
	oldPrevHop := r.PreviousHop
	r.PreviousHop = n.ipAddress
	n.broadcast(r, oldPrevHop)
}

func (n *Node) handleIPData(d *packet.IPData, fromIP string, now int64) {
	switch d.Mode {
	case addr.Unicast:
		if d.Destination == n.ipAddress {
			n.recordDelivered(d)
			return
		}
	case addr.Broadcast:
		n.recordDelivered(d)
	case addr.Multicast:
		n.mu.Lock()
		member := n.isInMulticastGroups(d.Destination)
		n.mu.Unlock()
		if member {
			n.recordDelivered(d)
		}
	}
	// Broadcast and multicast traffic is delivered upward above and still
	// forwarded on to the rest of the mesh below; only a unicast packet
	// addressed exactly to this node stops here (handled by the early
	// return above).

	if d.TTL <= 1 {
		return
	}
	d.TTL--
	d.HopsTraveled++

	switch d.Mode {
	case addr.Unicast:
		n.routePacket(d)
	case addr.Broadcast:
		n.broadcast(d, fromIP)
	case addr.Multicast:
		if _, ok := n.state.Forwarding().GetGroupEntry(d.Destination, true, now); ok {
			n.broadcast(d, fromIP)
		}
	}
}
