package router

import (
	"testing"

	"bjoernblessin.de/lsnet/config"
	"bjoernblessin.de/lsnet/wire"
)

func newTestRouter(id string, neighbors ...config.NeighborSpec) *Router {
	return New(Config{ID: id, ListenIP: "127.0.0.1", ListenPort: 0, Neighbors: neighbors})
}

func TestHandleLSAAcceptsAndFloodsExceptOrigin(t *testing.T) {
	r := newTestRouter("R1",
		config.NeighborSpec{ID: "R2", IP: "10.0.0.2", Port: 9000},
		config.NeighborSpec{ID: "R3", IP: "10.0.0.3", Port: 9000},
	)

	pkt := wire.NewLSA("R4", 1, map[string]int{"R1": 1})
	r.handleLSA(pkt, "10.0.0.2", 9000) // arrived from R2

	if len(r.outgoing) != 1 {
		t.Fatalf("expected the LSA to flood to exactly one neighbor (not R2), got %d", len(r.outgoing))
	}
	if r.outgoing[0].IP != "10.0.0.3" {
		t.Errorf("flooded to %s, want R3's address", r.outgoing[0].IP)
	}
}

func TestHandleLSADuplicateIsDropped(t *testing.T) {
	r := newTestRouter("R1", config.NeighborSpec{ID: "R2", IP: "10.0.0.2", Port: 9000})

	pkt := wire.NewLSA("R4", 1, map[string]int{"R1": 1})
	r.handleLSA(pkt, "10.0.0.2", 9000)
	r.outgoing = nil // drain the flood from the first acceptance

	r.handleLSA(pkt, "10.0.0.2", 9000)
	if len(r.outgoing) != 0 {
		t.Error("expected a duplicate LSA not to be reflooded")
	}
}

func TestHandleLSAStaleSequenceIsRejected(t *testing.T) {
	r := newTestRouter("R1", config.NeighborSpec{ID: "R2", IP: "10.0.0.2", Port: 9000})

	r.handleLSA(wire.NewLSA("R4", 2000, map[string]int{}), "10.0.0.2", 9000)
	r.outgoing = nil

	r.handleLSA(wire.NewLSA("R4", 1500, map[string]int{"R9": 9}), "10.0.0.2", 9000)

	entry, _ := r.lsdb.Get("R4")
	if entry.Sequence != 2000 {
		t.Errorf("Sequence = %d, want unchanged 2000", entry.Sequence)
	}
	if len(r.outgoing) != 0 {
		t.Error("expected a stale LSA not to be flooded")
	}
}

func TestHandleDataDropsOnTTLExpiry(t *testing.T) {
	r := newTestRouter("R1", config.NeighborSpec{ID: "R2", IP: "10.0.0.2", Port: 9000})

	pkt := wire.NewData("R2", "R9", 1, 1, "hello")
	r.handleData(pkt)

	for _, item := range r.outgoing {
		if item.Packet.Type == wire.KindData {
			t.Error("expected the expired-TTL data packet not to be forwarded")
		}
	}
}

func TestHandleDataAcksDirectNeighbor(t *testing.T) {
	r := newTestRouter("R1", config.NeighborSpec{ID: "R2", IP: "10.0.0.2", Port: 9000})

	pkt := wire.NewData("R2", "R1", 5, 4, "hello")
	r.handleData(pkt)

	found := false
	for _, item := range r.outgoing {
		if item.Packet.Type == wire.KindAck && item.Packet.Sequence == 5 {
			found = true
			if item.IP != "10.0.0.2" {
				t.Errorf("ack sent to %s, want R2's address", item.IP)
			}
		}
	}
	if !found {
		t.Error("expected an ack to be queued for the direct-neighbor sender")
	}
}

func TestHandleAckClearsPending(t *testing.T) {
	r := newTestRouter("R1")
	r.pending[7] = &pendingAck{Packet: wire.NewData("R1", "R9", 7, 4, "x")}

	r.handleAck(wire.NewAck("R9", "R1", 7, 1))

	if _, exists := r.pending[7]; exists {
		t.Error("expected the matching pending-ack entry to be removed")
	}
}
