package wire

import "testing"

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	pkt := NewData("R1", "R2", 42, 8, "hello")

	data, err := Marshal(pkt)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Source != pkt.Source || got.Sequence != pkt.Sequence || got.TTL != pkt.TTL {
		t.Errorf("got %+v, want %+v", got, pkt)
	}
	dest, _ := got.Dest()
	if dest != "R2" {
		t.Errorf("Dest() = %s, want R2", dest)
	}
}

func TestUnmarshalAcceptsRouterIDAlias(t *testing.T) {
	raw := []byte(`{"type":"lsa","sequence":5,"router_id":"R9","destination":null,"payload":{"links":{"R1":1}}}`)

	pkt, err := Unmarshal(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkt.Source != "R9" {
		t.Errorf("Source = %s, want R9 (decoded from router_id)", pkt.Source)
	}
}

func TestUnmarshalRejectsUnknownType(t *testing.T) {
	raw := []byte(`{"type":"bogus","source":"R1"}`)

	if _, err := Unmarshal(raw); err == nil {
		t.Fatal("expected an error for an unknown packet type")
	}
}

func TestUnmarshalRejectsMissingRequiredField(t *testing.T) {
	raw := []byte(`{"type":"data","source":"R1","destination":"R2"}`) // missing ttl

	if _, err := Unmarshal(raw); err == nil {
		t.Fatal("expected an error for a data packet missing ttl")
	}
}

func TestMarshalRejectsOversizedPacket(t *testing.T) {
	big := make(map[string]int, 200)
	for i := 0; i < 200; i++ {
		big[string(rune('a'+i%26))+string(rune('A'+i))] = i
	}

	pkt := NewLSA("R1", 1, big)
	if _, err := Marshal(pkt); err == nil {
		t.Fatal("expected an error for a packet exceeding the datagram size ceiling")
	}
}
