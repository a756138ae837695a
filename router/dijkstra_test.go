package router

import "testing"

func TestDijkstraExampleGraph(t *testing.T) {
	graph := map[string]map[string]int{
		"A": {"B": 1, "C": 4},
		"B": {"C": 2, "D": 5},
		"C": {"D": 1},
		"D": {},
	}

	dist, _, err := Dijkstra(graph, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]int{"A": 0, "B": 1, "C": 3, "D": 4}
	for node, wantDist := range want {
		if dist[node] != wantDist {
			t.Errorf("dist[%s] = %d, want %d", node, dist[node], wantDist)
		}
	}
}

func TestDijkstraUnreachableNode(t *testing.T) {
	graph := map[string]map[string]int{
		"A": {"B": 1},
		"B": {},
		"C": {},
	}

	dist, prev, err := Dijkstra(graph, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dist["C"] != intMax {
		t.Errorf("dist[C] = %d, want unreachable", dist["C"])
	}
	if _, ok := prev["C"]; ok {
		t.Errorf("prev[C] should be absent for an unreachable node")
	}
}

func TestDijkstraSingleNode(t *testing.T) {
	graph := map[string]map[string]int{"A": {}}

	dist, _, err := Dijkstra(graph, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dist) != 1 || dist["A"] != 0 {
		t.Errorf("dist = %v, want {A: 0}", dist)
	}
}

func TestDijkstraStartNotInGraph(t *testing.T) {
	graph := map[string]map[string]int{"A": {}, "B": {}}

	_, _, err := Dijkstra(graph, "Z")
	if err == nil {
		t.Fatal("expected an error for a start node not in the graph")
	}
}

// TestDijkstraTriangleInequality checks that for every edge (v,u) the
// computed distances satisfy dist(u) <= dist(v) + w(v,u), which must
// hold for any graph with non-negative weights (spec.md §8).
func TestDijkstraTriangleInequality(t *testing.T) {
	graphs := []map[string]map[string]int{
		{
			"A": {"B": 1, "C": 4},
			"B": {"C": 2, "D": 5},
			"C": {"D": 1},
			"D": {},
		},
		{
			"A": {"B": 10},
			"B": {"A": 10, "C": 1},
			"C": {"B": 1, "A": 2},
		},
	}

	for gi, graph := range graphs {
		dist, _, err := Dijkstra(graph, "A")
		if err != nil {
			t.Fatalf("graph %d: unexpected error: %v", gi, err)
		}

		for v, edges := range graph {
			if dist[v] == intMax {
				continue
			}
			for u, w := range edges {
				if dist[u] == intMax {
					continue
				}
				if dist[u] > dist[v]+w {
					t.Errorf("graph %d: dist[%s]=%d > dist[%s]+w(%s,%s)=%d+%d", gi, u, dist[u], v, v, u, dist[v], w)
				}
			}
		}
	}
}

func TestPathReconstruction(t *testing.T) {
	graph := map[string]map[string]int{
		"A": {"B": 1, "C": 4},
		"B": {"C": 2, "D": 5},
		"C": {"D": 1},
		"D": {},
	}

	_, prev, err := Dijkstra(graph, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path, ok := Path(prev, "A", "D")
	if !ok {
		t.Fatal("expected a path from A to D")
	}

	want := []string{"A", "B", "C", "D"}
	if len(path) != len(want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("path = %v, want %v", path, want)
		}
	}
}
