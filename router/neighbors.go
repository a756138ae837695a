package router

import "bjoernblessin.de/lsnet/config"

// NeighborTable is the router's static, insertion-ordered neighbor
// table. It is immutable for the lifetime of the router, so it needs
// no locking of its own.
type NeighborTable struct {
	order []string
	byID  map[string]NeighborEntry
}

// NewNeighborTable builds a neighbor table from configuration,
// preserving the declared order so the first entry is the default
// gateway.
func NewNeighborTable(specs []config.NeighborSpec) *NeighborTable {
	nt := &NeighborTable{
		order: make([]string, 0, len(specs)),
		byID:  make(map[string]NeighborEntry, len(specs)),
	}

	for _, spec := range specs {
		nt.order = append(nt.order, spec.ID)
		nt.byID[spec.ID] = NeighborEntry{ID: spec.ID, IP: spec.IP, Port: spec.Port}
	}

	return nt
}

// Get looks up a neighbor by id.
func (nt *NeighborTable) Get(id string) (NeighborEntry, bool) {
	e, ok := nt.byID[id]
	return e, ok
}

// FindByAddr finds the neighbor whose configured endpoint matches the
// given ip and port. Used to identify which neighbor delivered an
// inbound LSA for the split-horizon flood rule.
func (nt *NeighborTable) FindByAddr(ip string, port int) (string, bool) {
	for _, id := range nt.order {
		e := nt.byID[id]
		if e.IP == ip && e.Port == port {
			return id, true
		}
	}
	return "", false
}

// Default returns the default-gateway neighbor: the first one
// configured.
func (nt *NeighborTable) Default() (NeighborEntry, bool) {
	if len(nt.order) == 0 {
		return NeighborEntry{}, false
	}
	return nt.byID[nt.order[0]], true
}

// All returns every neighbor in configured order.
func (nt *NeighborTable) All() []NeighborEntry {
	entries := make([]NeighborEntry, 0, len(nt.order))
	for _, id := range nt.order {
		entries = append(entries, nt.byID[id])
	}
	return entries
}

// Len returns the number of configured neighbors.
func (nt *NeighborTable) Len() int {
	return len(nt.order)
}

// Links returns the unit-cost link map advertised in this router's own
// LSA.
func (nt *NeighborTable) Links() map[string]int {
	links := make(map[string]int, len(nt.order))
	for _, id := range nt.order {
		links[id] = 1
	}
	return links
}
