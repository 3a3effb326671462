package packet

import (
	"reflect"
	"testing"

	"github.com/hakeris1010/odmrp-sim/internal/addr"
)

func TestJoinQuery_Clone_Independent(t *testing.T) {
	orig := &JoinQuery{Source: "192.168.0.1", TTL: 32, HopCount: 0, SequenceNumber: 7}
	clone := orig.Clone().(*JoinQuery)

	clone.TTL = 31
	clone.HopCount = 1
	clone.PreviousHop = "192.168.0.2"

	if orig.TTL != 32 || orig.HopCount != 0 || orig.PreviousHop != "" {
		t.Errorf("mutating clone affected original: %+v", orig)
	}
	if clone.SequenceNumber != orig.SequenceNumber {
		t.Errorf("clone lost shared field SequenceNumber: got %d, want %d", clone.SequenceNumber, orig.SequenceNumber)
	}
}

func TestJoinReply_Clone_SendersIndependent(t *testing.T) {
	orig := &JoinReply{
		Source: "192.168.0.1",
		Senders: []Sender{
			{SenderAddr: "192.168.0.101", NextHopAddr: "192.168.0.100"},
		},
	}
	clone := orig.Clone().(*JoinReply)
	clone.Senders[0].NextHopAddr = "mutated"
	clone.Senders = append(clone.Senders, Sender{SenderAddr: "new"})

	if orig.Senders[0].NextHopAddr != "192.168.0.100" {
		t.Errorf("mutating clone's senders affected original: %+v", orig.Senders)
	}
	if len(orig.Senders) != 1 {
		t.Errorf("appending to clone's senders affected original length: %d", len(orig.Senders))
	}
}

func TestJoinReply_Count(t *testing.T) {
	r := &JoinReply{Senders: []Sender{{SenderAddr: "a"}, {SenderAddr: "b"}}}
	if got := r.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
}

func TestIPData_Clone_PayloadIndependent(t *testing.T) {
	orig := &IPData{Source: "a", Destination: "b", Payload: []byte("hi"), Mode: addr.Unicast}
	clone := orig.Clone().(*IPData)
	clone.Payload[0] = 'X'

	if orig.Payload[0] != 'h' {
		t.Errorf("mutating clone's payload affected original: %q", orig.Payload)
	}
	if !reflect.DeepEqual(orig.Mode, clone.Mode) {
		t.Errorf("clone lost Mode: got %v, want %v", clone.Mode, orig.Mode)
	}
}

func TestCastMode_Dispatch(t *testing.T) {
	var p Packet = &JoinQuery{}
	if p.CastMode() != addr.Broadcast {
		t.Errorf("JoinQuery.CastMode() = %v, want Broadcast", p.CastMode())
	}
	p = &JoinReply{}
	if p.CastMode() != addr.Broadcast {
		t.Errorf("JoinReply.CastMode() = %v, want Broadcast", p.CastMode())
	}
	p = &IPData{Mode: addr.Multicast}
	if p.CastMode() != addr.Multicast {
		t.Errorf("IPData.CastMode() = %v, want Multicast", p.CastMode())
	}
}
