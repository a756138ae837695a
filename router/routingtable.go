package router

import "sort"

// RoutingTable is the router's forwarding table, rebuilt wholesale on
// every LSDB change by running Dijkstra from self and walking
// predecessors back to a first hop that is a configured neighbor.
type RoutingTable struct {
	routes map[string]RouteEntry
}

// NewRoutingTable returns an empty routing table.
func NewRoutingTable() *RoutingTable {
	return &RoutingTable{routes: make(map[string]RouteEntry)}
}

// Lookup returns the route for dest, falling back to the default
// gateway entry if one exists and dest has no specific route.
func (rt *RoutingTable) Lookup(dest string) (RouteEntry, bool) {
	if e, ok := rt.routes[dest]; ok {
		return e, true
	}
	if e, ok := rt.routes[DefaultGatewayKey]; ok {
		return e, true
	}
	return RouteEntry{}, false
}

// Get returns the route installed for dest without default-gateway
// fallback.
func (rt *RoutingTable) Get(dest string) (RouteEntry, bool) {
	e, ok := rt.routes[dest]
	return e, ok
}

// Destinations returns every destination with an installed route,
// excluding the synthetic default-gateway key.
func (rt *RoutingTable) Destinations() []string {
	dests := make([]string, 0, len(rt.routes))
	for d := range rt.routes {
		if d == DefaultGatewayKey {
			continue
		}
		dests = append(dests, d)
	}
	sort.Strings(dests)
	return dests
}

// Rebuild recomputes the routing table from a graph (as supplied by
// LSDB.Graph), self's own id, and the static neighbor table. It runs
// Dijkstra from self, then for every other node walks the predecessor
// chain back toward self to find the first hop actually reachable as
// a direct neighbor, installing {next_hop, cost}. Destinations whose
// path's first hop is not a configured neighbor are skipped: a route
// is only installable if its first hop is a neighbor.
//
// Direct neighbors always get an entry even if absent from the graph
// (e.g. before they've originated their own LSA), and a default route
// keyed DefaultGatewayKey is installed pointing at the first declared
// neighbor whenever any neighbor exists.
func (rt *RoutingTable) Rebuild(graph map[string]map[string]int, self string, neighbors *NeighborTable) error {
	routes := make(map[string]RouteEntry)

	if _, ok := graph[self]; ok {
		dist, prev, err := Dijkstra(graph, self)
		if err != nil {
			return err
		}

		for node := range dist {
			if node == self {
				continue
			}
			if dist[node] == intMax {
				continue // unreachable
			}

			path, ok := Path(prev, self, node)
			if !ok || len(path) < 2 {
				continue
			}

			firstHop := path[1]
			if _, isNeighbor := neighbors.Get(firstHop); !isNeighbor {
				continue // first hop not directly connected, can't forward
			}

			routes[node] = RouteEntry{NextHop: firstHop, Cost: dist[node]}
		}
	}

	for _, n := range neighbors.All() {
		if _, exists := routes[n.ID]; !exists {
			routes[n.ID] = RouteEntry{NextHop: n.ID, Cost: 1}
		}
	}

	if gw, ok := neighbors.Default(); ok {
		routes[DefaultGatewayKey] = RouteEntry{NextHop: gw.ID, Cost: 1}
	}

	rt.routes = routes
	return nil
}

const intMax = int(^uint(0) >> 1)
