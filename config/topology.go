// Package config loads the declarative YAML topology file that
// constructs every router and host in a simulated network.
package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// NeighborSpec is one entry in a router's ordered neighbor list. Order
// matters: the first entry in a router's Neighbors slice becomes its
// default gateway.
type NeighborSpec struct {
	ID   string `yaml:"id"`
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

// RouterSpec describes one router node.
type RouterSpec struct {
	ID         string         `yaml:"id"`
	ListenIP   string         `yaml:"listen_ip"`
	ListenPort int            `yaml:"listen_port"`
	Neighbors  []NeighborSpec `yaml:"neighbors"`
}

// HostSpec describes one host node.
type HostSpec struct {
	ID         string   `yaml:"id"`
	ListenIP   string   `yaml:"listen_ip"`
	ListenPort int      `yaml:"listen_port"`
	RouterIP   string   `yaml:"router_ip"`
	RouterPort int      `yaml:"router_port"`
	KnownHosts []string `yaml:"known_hosts"`
}

// Topology is the full declarative description of a simulated network.
type Topology struct {
	Routers []RouterSpec `yaml:"routers"`
	Hosts   []HostSpec   `yaml:"hosts"`
}

// Load reads and validates a topology file at path.
func Load(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read topology file %s", path)
	}

	var topo Topology
	if err := yaml.Unmarshal(data, &topo); err != nil {
		return nil, errors.Wrapf(err, "parse topology file %s", path)
	}

	if err := topo.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid topology")
	}

	return &topo, nil
}

// Validate checks structural invariants of the topology: every id is
// non-empty and unique across routers and hosts, and every neighbor
// reference resolves to a declared node.
func (t *Topology) Validate() error {
	ids := make(map[string]bool)

	for _, r := range t.Routers {
		if r.ID == "" {
			return errors.New("router with empty id")
		}
		if ids[r.ID] {
			return errors.Errorf("duplicate node id: %s", r.ID)
		}
		ids[r.ID] = true
	}

	for _, h := range t.Hosts {
		if h.ID == "" {
			return errors.New("host with empty id")
		}
		if ids[h.ID] {
			return errors.Errorf("duplicate node id: %s", h.ID)
		}
		ids[h.ID] = true
	}

	for _, r := range t.Routers {
		for _, n := range r.Neighbors {
			if !ids[n.ID] {
				return errors.Errorf("router %s references unknown neighbor %s", r.ID, n.ID)
			}
		}
	}

	gateways := make(map[string]bool)
	for _, r := range t.Routers {
		gateways[fmt.Sprintf("%s:%d", r.ListenIP, r.ListenPort)] = true
	}

	for _, h := range t.Hosts {
		key := fmt.Sprintf("%s:%d", h.RouterIP, h.RouterPort)
		if !gateways[key] {
			return errors.Errorf("host %s gateway %s does not match any declared router listen address", h.ID, key)
		}
		for _, peer := range h.KnownHosts {
			if !ids[peer] {
				return errors.Errorf("host %s references unknown peer %s", h.ID, peer)
			}
		}
	}

	return nil
}
