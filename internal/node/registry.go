package node

import "github.com/hakeris1010/odmrp-sim/internal/packet"

// Registry is how a Node reaches other nodes without holding a direct
// reference to any of them. A node keeps only its neighbors' addresses;
// resolving an address to an actual delivery is the scheduler's job. This
// is the fix for the "nodes hold live references to their neighbors, so
// removing one node requires walking every other node to scrub dangling
// pointers" problem: addresses are cheap to hold and the scheduler already
// has to maintain an address-to-node index for its own admin operations.
type Registry interface {
	// Deliver hands p, which the caller has already cloned, to the node at
	// toIP, recording fromIP as the
	// neighbor it arrived from (needed for split-horizon exclusion on
	// packet kinds, like IPData, that carry no previous-hop field of their
	// own). It reports false if toIP names no known, reachable node.
	Deliver(fromIP, toIP string, p packet.Packet) bool

	// Activate marks ip as having pending work, queueing it for processing
	// regardless of timer state.
	Activate(ip string)
}
