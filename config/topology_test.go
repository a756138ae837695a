package config

import "testing"

func TestValidateAcceptsWellFormedTopology(t *testing.T) {
	topo := Topology{
		Routers: []RouterSpec{
			{ID: "R1", ListenIP: "127.0.0.1", ListenPort: 9001, Neighbors: []NeighborSpec{{ID: "R2", IP: "127.0.0.1", Port: 9002}}},
			{ID: "R2", ListenIP: "127.0.0.1", ListenPort: 9002, Neighbors: []NeighborSpec{{ID: "R1", IP: "127.0.0.1", Port: 9001}}},
		},
		Hosts: []HostSpec{
			{ID: "H1", ListenIP: "127.0.0.1", ListenPort: 9101, RouterIP: "127.0.0.1", RouterPort: 9001, KnownHosts: []string{"H2"}},
			{ID: "H2", ListenIP: "127.0.0.1", ListenPort: 9102, RouterIP: "127.0.0.1", RouterPort: 9002, KnownHosts: []string{"H1"}},
		},
	}

	if err := topo.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsDuplicateID(t *testing.T) {
	topo := Topology{
		Routers: []RouterSpec{
			{ID: "R1", ListenIP: "127.0.0.1", ListenPort: 9001},
			{ID: "R1", ListenIP: "127.0.0.1", ListenPort: 9002},
		},
	}

	if err := topo.Validate(); err == nil {
		t.Fatal("expected an error for a duplicate node id")
	}
}

func TestValidateRejectsUnknownNeighbor(t *testing.T) {
	topo := Topology{
		Routers: []RouterSpec{
			{ID: "R1", ListenIP: "127.0.0.1", ListenPort: 9001, Neighbors: []NeighborSpec{{ID: "ghost", IP: "127.0.0.1", Port: 9999}}},
		},
	}

	if err := topo.Validate(); err == nil {
		t.Fatal("expected an error for a neighbor reference to an unknown node")
	}
}

func TestValidateRejectsUnmatchedGateway(t *testing.T) {
	topo := Topology{
		Routers: []RouterSpec{{ID: "R1", ListenIP: "127.0.0.1", ListenPort: 9001}},
		Hosts:   []HostSpec{{ID: "H1", ListenIP: "127.0.0.1", ListenPort: 9101, RouterIP: "127.0.0.1", RouterPort: 9999}},
	}

	if err := topo.Validate(); err == nil {
		t.Fatal("expected an error for a host gateway matching no declared router")
	}
}
