// Package scheduler implements the single worker loop that drives logical
// time for the whole mesh: it scans nodes for due timers or pending
// packets, drains the activation queue, and is the one place allowed to
// sleep. It also doubles as the node.Registry every Node uses to reach its
// neighbors, since it is the only component that needs a complete
// address -> node index.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hakeris1010/odmrp-sim/internal/addr"
	"github.com/hakeris1010/odmrp-sim/internal/clock"
	"github.com/hakeris1010/odmrp-sim/internal/config"
	"github.com/hakeris1010/odmrp-sim/internal/node"
	"github.com/hakeris1010/odmrp-sim/internal/packet"
	"github.com/hakeris1010/odmrp-sim/internal/routing"
	"github.com/hakeris1010/odmrp-sim/internal/simerr"
	"github.com/hakeris1010/odmrp-sim/internal/simlog"
)

// Scheduler owns every node in the simulated mesh and the single worker
// loop that calls process() on them.
type Scheduler struct {
	cfg config.Config
	clk *clock.Clock
	log *simlog.Logger

	mu    sync.RWMutex
	nodes map[string]*node.Node

	activation *activationQueue
	end        atomic.Bool
}

// New returns a Scheduler with no nodes yet.
func New(cfg config.Config, clk *clock.Clock, log *simlog.Logger) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		clk:        clk,
		log:        log,
		nodes:      make(map[string]*node.Node),
		activation: newActivationQueue(),
	}
}

// Deliver implements node.Registry: it looks up toIP and hands p to its
// Accept method, activating it on success.
func (s *Scheduler) Deliver(fromIP, toIP string, p packet.Packet) bool {
	s.mu.RLock()
	target, ok := s.nodes[toIP]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if !target.Accept(fromIP, p) {
		return false
	}
	s.activation.push(toIP)
	return true
}

// Activate implements node.Registry.
func (s *Scheduler) Activate(ip string) {
	s.activation.push(ip)
}

func (s *Scheduler) node(ip string) (*node.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[ip]
	return n, ok
}

// AddNode creates a new node at ip, optionally configured as the
// periodic-origination source for multicastSource ("" for none). It fails
// with ErrNodeConnect if ip is empty or already in use.
func (s *Scheduler) AddNode(ip, multicastSource string) (*node.Node, error) {
	if ip == "" {
		return nil, simerr.ErrNodeConnect
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[ip]; exists {
		return nil, simerr.ErrNodeConnect
	}
	n := node.New(ip, multicastSource, s.cfg, s.clk, s.log, s)
	s.nodes[ip] = n
	s.activation.push(ip)
	return n, nil
}

// RemoveNode disconnects ip from every neighbor and removes it from the
// node set. It fails with ErrNotFound if ip is unknown.
func (s *Scheduler) RemoveNode(ip string) error {
	s.mu.Lock()
	n, ok := s.nodes[ip]
	if !ok {
		s.mu.Unlock()
		return simerr.ErrNotFound
	}
	neighbors := n.Neighbors()
	delete(s.nodes, ip)
	s.mu.Unlock()

	for _, peer := range neighbors {
		if p, ok := s.node(peer); ok {
			p.RemoveNeighbor(ip)
		}
	}
	return nil
}

// Connect adds b as a neighbor of a and a as a neighbor of b. It fails
// with ErrNodeConnect if a == b, or ErrNotFound if either address is
// unknown.
func (s *Scheduler) Connect(a, b string) error {
	if a == b {
		return simerr.ErrNodeConnect
	}
	na, ok := s.node(a)
	if !ok {
		return simerr.ErrNotFound
	}
	nb, ok := s.node(b)
	if !ok {
		return simerr.ErrNotFound
	}
	na.AddNeighbor(b)
	nb.AddNeighbor(a)
	return nil
}

// Disconnect removes the symmetric neighbor relationship between a and b.
func (s *Scheduler) Disconnect(a, b string) error {
	na, ok := s.node(a)
	if !ok {
		return simerr.ErrNotFound
	}
	nb, ok := s.node(b)
	if !ok {
		return simerr.ErrNotFound
	}
	na.RemoveNeighbor(b)
	nb.RemoveNeighbor(a)
	return nil
}

// JoinGroup subscribes ip to a multicast group.
func (s *Scheduler) JoinGroup(ip, group string) error {
	n, ok := s.node(ip)
	if !ok {
		return simerr.ErrNotFound
	}
	n.JoinGroup(group)
	return nil
}

// SendPacket originates an IP packet from src to dst, classifying dst's
// cast mode and enqueueing it on src's send queue. verbose sets the
// packet's verbose flag (the console's `-v` switch on `send`).
func (s *Scheduler) SendPacket(src, dst string, payload []byte, verbose bool) error {
	n, ok := s.node(src)
	if !ok {
		return simerr.ErrNotFound
	}
	mode := addr.Classify(dst)
	if mode == addr.NoAddr {
		return simerr.ErrInputMismatch
	}
	n.Enqueue(&packet.IPData{
		Source:      src,
		Destination: dst,
		TTL:         s.cfg.DefaultTTL,
		Mode:        mode,
		Payload:     payload,
		Verbose:     verbose,
	})
	return nil
}

// Route looks up dst's minimum-cost route on src's routing table.
func (s *Scheduler) Route(src, dst string) (routing.Entry, error) {
	n, ok := s.node(src)
	if !ok {
		return routing.Entry{}, simerr.ErrNotFound
	}
	entry, found := n.Routes().Routes.GetRouteForDestination(dst)
	if !found {
		return routing.Entry{}, simerr.ErrNotFound
	}
	return entry, nil
}

// Node returns the node at ip, for the `query` control-surface command.
func (s *Scheduler) Node(ip string) (*node.Node, error) {
	n, ok := s.node(ip)
	if !ok {
		return nil, simerr.ErrNotFound
	}
	return n, nil
}

// ListEntry is one row of the `list` control-surface command's output.
type ListEntry struct {
	IPAddress string
	Neighbors []string
}

// List returns every node and its current neighbor set.
func (s *Scheduler) List() []ListEntry {
	s.mu.RLock()
	ips := make([]string, 0, len(s.nodes))
	for ip := range s.nodes {
		ips = append(ips, ip)
	}
	s.mu.RUnlock()

	out := make([]ListEntry, 0, len(ips))
	for _, ip := range ips {
		if n, ok := s.node(ip); ok {
			out = append(out, ListEntry{IPAddress: ip, Neighbors: n.Neighbors()})
		}
	}
	return out
}

// Shutdown sets the cooperative end-flag and wakes the worker so it can
// observe it at the next drain boundary.
func (s *Scheduler) Shutdown() {
	s.end.Store(true)
	s.activation.push("")
}

// Run drives logical time until ctx is cancelled or Shutdown is called.
// Each iteration: scan every node for a due timer or pending work,
// enqueueing those that qualify; drain the activation queue in FIFO order;
// if nothing remains, sleep until the earliest next-due time or an
// external wake-up. Only this loop ever blocks.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		if s.end.Load() || ctx.Err() != nil {
			return
		}

		now := s.clk.NowMillis()
		nextWake := now + s.cfg.TickIntervalMillis
		s.scan(now, &nextWake)
		s.drain()

		if s.end.Load() || ctx.Err() != nil {
			return
		}
		if s.activation.empty() {
			s.sleepUntil(ctx, nextWake)
		}
	}
}

func (s *Scheduler) scan(now int64, nextWake *int64) {
	s.mu.RLock()
	snapshot := make([]*node.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		snapshot = append(snapshot, n)
	}
	s.mu.RUnlock()

	for _, n := range snapshot {
		due := n.NextDueMillis()
		if due <= now || n.HasPendingWork() {
			s.activation.push(n.IPAddress())
		}
		if due < *nextWake {
			*nextWake = due
		}
	}
}

func (s *Scheduler) drain() {
	for {
		ip, ok := s.activation.pop()
		if !ok {
			return
		}
		if ip == "" {
			continue // shutdown wake-up marker, nothing to process
		}
		if n, ok := s.node(ip); ok {
			n.Process()
		}
	}
}

func (s *Scheduler) sleepUntil(ctx context.Context, nextWake int64) {
	d := time.Duration(nextWake-s.clk.NowMillis()) * time.Millisecond
	if d < 0 {
		d = 0
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	case <-s.activation.signal:
	}
}
