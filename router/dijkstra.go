package router

import (
	"container/heap"
	"math"

	"github.com/pkg/errors"
)

// dijkstraItem is one entry of the priority queue. It carries the
// node id alongside its tentative distance so ties can be broken
// deterministically on id, keeping the result independent of map
// iteration order.
type dijkstraItem struct {
	node  string
	dist  int
	index int
}

type dijkstraQueue []*dijkstraItem

func (q dijkstraQueue) Len() int { return len(q) }

func (q dijkstraQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node // deterministic tie-break
}

func (q dijkstraQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *dijkstraQueue) Push(x any) {
	item := x.(*dijkstraItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *dijkstraQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// Dijkstra computes single-source shortest paths over a weighted
// directed graph. graph maps a node to its outbound
// edges (neighbor -> cost); edges to nodes absent from graph's key set
// are never relaxed, matching the router's rule that only edges whose
// endpoint is a known node get followed.
//
// Returns a distance for every node in graph (start: 0; unreachable
// nodes: math.MaxInt) and a predecessor map, with entries only for
// reachable nodes, used to reconstruct paths. Ties in distance are
// broken lexicographically on node id, so the result is deterministic
// regardless of map iteration order.
func Dijkstra(graph map[string]map[string]int, start string) (dist map[string]int, prev map[string]string, err error) {
	nodes := make(map[string]struct{}, len(graph))
	for node := range graph {
		nodes[node] = struct{}{}
	}

	if _, ok := nodes[start]; !ok {
		return nil, nil, errors.Errorf("start not in graph: %s", start)
	}

	dist = make(map[string]int, len(nodes))
	prev = make(map[string]string, len(nodes))
	items := make(map[string]*dijkstraItem, len(nodes))

	queue := make(dijkstraQueue, 0, len(nodes))
	for node := range nodes {
		d := math.MaxInt
		if node == start {
			d = 0
		}
		dist[node] = d

		item := &dijkstraItem{node: node, dist: d}
		items[node] = item
		queue = append(queue, item)
	}
	heap.Init(&queue)

	visited := make(map[string]bool, len(nodes))

	for queue.Len() > 0 {
		current := heap.Pop(&queue).(*dijkstraItem)
		if visited[current.node] {
			continue
		}
		visited[current.node] = true

		if current.dist == math.MaxInt {
			continue // remaining nodes are unreachable
		}

		for neighbor, cost := range graph[current.node] {
			if _, known := nodes[neighbor]; !known {
				continue // edge leaks outside the known node set, ignore
			}
			if visited[neighbor] {
				continue
			}

			candidate := current.dist + cost
			if candidate < dist[neighbor] {
				dist[neighbor] = candidate
				prev[neighbor] = current.node
				item := items[neighbor]
				item.dist = candidate
				heap.Fix(&queue, item.index)
			}
		}
	}

	return dist, prev, nil
}

// Path reconstructs the node sequence from start to dest (inclusive),
// walking prev backwards. Returns false if dest is unreachable.
func Path(prev map[string]string, start, dest string) ([]string, bool) {
	if dest == start {
		return []string{start}, true
	}

	path := []string{dest}
	current := dest

	for {
		p, ok := prev[current]
		if !ok {
			return nil, false
		}
		path = append(path, p)
		if p == start {
			break
		}
		current = p
	}

	// reverse in place
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, true
}
