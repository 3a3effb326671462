package node

import (
	"testing"

	"github.com/hakeris1010/odmrp-sim/internal/clock"
	"github.com/hakeris1010/odmrp-sim/internal/config"
	"github.com/hakeris1010/odmrp-sim/internal/packet"
	"github.com/hakeris1010/odmrp-sim/internal/simlog"
)

// fakeRegistry is an in-memory Registry for tests: it holds nodes by
// address and records every delivery attempt for assertions.
type fakeRegistry struct {
	nodes     map[string]*Node
	down      map[string]bool
	delivered []deliveryRecord
	activated []string
}

type deliveryRecord struct {
	from, to string
	pkt      packet.Packet
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{nodes: make(map[string]*Node), down: make(map[string]bool)}
}

func (r *fakeRegistry) Deliver(fromIP, toIP string, p packet.Packet) bool {
	r.delivered = append(r.delivered, deliveryRecord{fromIP, toIP, p})
	if r.down[toIP] {
		return false
	}
	target, ok := r.nodes[toIP]
	if !ok {
		return false
	}
	return target.Accept(fromIP, p)
}

func (r *fakeRegistry) Activate(ip string) {
	r.activated = append(r.activated, ip)
}

func testConfig() config.Config {
	c := config.Default()
	c.MessageCacheSize = 16
	c.PendingQueueSize = 8
	return c
}

func newTestNode(reg *fakeRegistry, ip, multicastSource string, clk *clock.Clock) *Node {
	n := New(ip, multicastSource, testConfig(), clk, simlog.Discard(), reg)
	reg.nodes[ip] = n
	return n
}

func TestAccept_RejectsWhenDown(t *testing.T) {
	reg := newFakeRegistry()
	n := newTestNode(reg, "10.0.0.1", "", clock.NewFixed(0))
	n.SetDown(true)

	if n.Accept("10.0.0.2", &packet.IPData{}) {
		t.Errorf("Accept() = true while down, want false")
	}
}

func TestAddRemoveNeighbor(t *testing.T) {
	reg := newFakeRegistry()
	n := newTestNode(reg, "10.0.0.1", "", clock.NewFixed(0))

	n.AddNeighbor("10.0.0.2")
	n.AddNeighbor("10.0.0.2") // idempotent
	n.AddNeighbor("10.0.0.3")

	got := n.Neighbors()
	if len(got) != 2 {
		t.Fatalf("Neighbors() = %v, want 2 entries", got)
	}

	n.RemoveNeighbor("10.0.0.2")
	got = n.Neighbors()
	if len(got) != 1 || got[0] != "10.0.0.3" {
		t.Errorf("Neighbors() after remove = %v, want [10.0.0.3]", got)
	}
}

func TestJoinGroupLeaveGroup(t *testing.T) {
	reg := newFakeRegistry()
	n := newTestNode(reg, "10.0.0.1", "", clock.NewFixed(0))

	if n.isInMulticastGroups("224.0.0.1") {
		t.Fatalf("isInMulticastGroups() = true before JoinGroup")
	}
	n.JoinGroup("224.0.0.1")
	if !n.isInMulticastGroups("224.0.0.1") {
		t.Errorf("isInMulticastGroups() = false after JoinGroup")
	}
	n.LeaveGroup("224.0.0.1")
	if n.isInMulticastGroups("224.0.0.1") {
		t.Errorf("isInMulticastGroups() = true after LeaveGroup")
	}
}

func TestIsInMulticastGroups_OwnAddressAlwaysMember(t *testing.T) {
	reg := newFakeRegistry()
	n := newTestNode(reg, "10.0.0.1", "", clock.NewFixed(0))
	if !n.isInMulticastGroups("10.0.0.1") {
		t.Errorf("isInMulticastGroups(own address) = false, want true")
	}
}
