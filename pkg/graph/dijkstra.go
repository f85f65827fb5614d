package graph

import "math"

// PQItem is a priority queue entry: a node and its tentative distance.
// Kept as a concrete struct rather than a heap.Interface over boxed
// values, since this heap is pushed/popped once per relaxed edge
// during a search and boxing would show up on the hot path.
type PQItem struct {
	Node uint32
	Dist float64
}

// MinHeap is a binary min-heap of PQItems ordered by Dist.
type MinHeap struct {
	items []PQItem
}

// Len reports the number of items in the heap.
func (h *MinHeap) Len() int { return len(h.items) }

// Reset empties the heap without releasing its backing array.
func (h *MinHeap) Reset() { h.items = h.items[:0] }

// Push adds an item to the heap.
func (h *MinHeap) Push(item PQItem) {
	h.items = append(h.items, item)
	h.siftUp(len(h.items) - 1)
}

// Pop removes and returns the minimum-distance item.
func (h *MinHeap) Pop() PQItem {
	top := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items = h.items[:last]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].Dist >= h.items[parent].Dist {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		left := 2*i + 1
		right := 2*i + 2
		smallest := i
		if left < n && h.items[left].Dist < h.items[smallest].Dist {
			smallest = left
		}
		if right < n && h.items[right].Dist < h.items[smallest].Dist {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// QueryState holds the per-search scratch arrays for a single Dijkstra
// (or A*) run, reused across many searches via a touched-list fast
// reset so a full-graph-sized array never needs to be re-zeroed.
type QueryState struct {
	dist    []float64
	prev    []uint32
	prevE   []uint32 // CSR slot index of the edge used to reach each node
	visited []bool
	touched []uint32
	heap    MinHeap
}

// NewQueryState allocates a QueryState sized for a graph with numNodes
// nodes.
func NewQueryState(numNodes uint32) *QueryState {
	qs := &QueryState{
		dist:    make([]float64, numNodes),
		prev:    make([]uint32, numNodes),
		prevE:   make([]uint32, numNodes),
		visited: make([]bool, numNodes),
	}
	for i := range qs.dist {
		qs.dist[i] = math.Inf(1)
		qs.prev[i] = NoNode
	}
	return qs
}

// Reset restores the touched nodes from the previous search to their
// initial state, without touching the rest of the (possibly huge)
// arrays.
func (qs *QueryState) Reset() {
	for _, u := range qs.touched {
		qs.dist[u] = math.Inf(1)
		qs.prev[u] = NoNode
		qs.visited[u] = false
	}
	qs.touched = qs.touched[:0]
	qs.heap.Reset()
}

func (qs *QueryState) touch(u uint32) {
	if math.IsInf(qs.dist[u], 1) && !qs.visited[u] {
		qs.touched = append(qs.touched, u)
	}
}

// Dist returns the tentative/final distance found for node u in the
// most recent search, or +Inf if u was never reached.
func (qs *QueryState) Dist(u uint32) float64 { return qs.dist[u] }

// Reached reports whether u was settled (popped off the heap) during
// the most recent search.
func (qs *QueryState) Reached(u uint32) bool { return qs.visited[u] }

// Prev returns u's predecessor node in the shortest-path tree of the
// most recent search, or NoNode if u is the source or unreached.
func (qs *QueryState) Prev(u uint32) uint32 { return qs.prev[u] }

// PathTo reconstructs the sequence of CSR edge slots from the search
// source to u, following prevE back-pointers. Returns nil if u is
// unreached.
func (qs *QueryState) PathTo(u uint32) []uint32 {
	if math.IsInf(qs.dist[u], 1) {
		return nil
	}
	var edges []uint32
	for qs.prev[u] != NoNode {
		edges = append(edges, qs.prevE[u])
		u = qs.prev[u]
	}
	// reverse
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	return edges
}

// Dijkstra runs a single-source shortest path search from src over g,
// settling nodes until the heap empties or maxDist is exceeded. Pass
// +Inf for maxDist for an unbounded search, or a finite upper bound to
// implement UBODT's delta cutoff: nodes whose tentative distance
// exceeds maxDist are never expanded.
func Dijkstra(g *NetworkGraph, qs *QueryState, src uint32, maxDist float64) {
	qs.Reset()
	qs.touch(src)
	qs.dist[src] = 0
	qs.heap.Push(PQItem{Node: src, Dist: 0})

	for qs.heap.Len() > 0 {
		top := qs.heap.Pop()
		u := top.Node
		if qs.visited[u] {
			continue
		}
		if top.Dist > qs.dist[u] {
			continue
		}
		qs.visited[u] = true

		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			if qs.visited[v] {
				continue
			}
			nd := qs.dist[u] + g.Weight[e]
			if nd > maxDist {
				continue
			}
			qs.touch(v)
			if nd < qs.dist[v] {
				qs.dist[v] = nd
				qs.prev[v] = u
				qs.prevE[v] = e
				qs.heap.Push(PQItem{Node: v, Dist: nd})
			}
		}
	}
}

// Astar runs a point-to-point search from src to dst over g, settling
// nodes in order of g(v)+h(v) instead of g(v) alone. h estimates the
// remaining cost from a node to dst; it must never overestimate the
// true remaining shortest-path cost (admissible) for the result to stay
// optimal, and should respect the triangle inequality along every edge
// (consistent) so a node is never reopened once settled.
//
// h is supplied by the caller because NetworkGraph carries no
// coordinates of its own. Pass nil when no admissible heuristic is
// available — e.g. the caller's distance unit doesn't match the
// graph's edge-weight unit — which falls back to plain Dijkstra.
func Astar(g *NetworkGraph, qs *QueryState, src, dst uint32, maxDist float64, h func(node uint32) float64) {
	if h == nil {
		h = func(uint32) float64 { return 0 }
	}

	qs.Reset()
	qs.touch(src)
	qs.dist[src] = 0
	qs.heap.Push(PQItem{Node: src, Dist: h(src)})

	for qs.heap.Len() > 0 {
		top := qs.heap.Pop()
		u := top.Node
		if qs.visited[u] {
			continue
		}
		qs.visited[u] = true
		if u == dst {
			return
		}

		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			if qs.visited[v] {
				continue
			}
			nd := qs.dist[u] + g.Weight[e]
			if nd > maxDist {
				continue
			}
			qs.touch(v)
			if nd < qs.dist[v] {
				qs.dist[v] = nd
				qs.prev[v] = u
				qs.prevE[v] = e
				qs.heap.Push(PQItem{Node: v, Dist: nd + h(v)})
			}
		}
	}
}

// DijkstraTo runs Dijkstra from src but stops as soon as dst is
// settled, for single point-to-point queries.
func DijkstraTo(g *NetworkGraph, qs *QueryState, src, dst uint32, maxDist float64) {
	qs.Reset()
	qs.touch(src)
	qs.dist[src] = 0
	qs.heap.Push(PQItem{Node: src, Dist: 0})

	for qs.heap.Len() > 0 {
		top := qs.heap.Pop()
		u := top.Node
		if qs.visited[u] {
			continue
		}
		if top.Dist > qs.dist[u] {
			continue
		}
		qs.visited[u] = true
		if u == dst {
			return
		}

		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			if qs.visited[v] {
				continue
			}
			nd := qs.dist[u] + g.Weight[e]
			if nd > maxDist {
				continue
			}
			qs.touch(v)
			if nd < qs.dist[v] {
				qs.dist[v] = nd
				qs.prev[v] = u
				qs.prevE[v] = e
				qs.heap.Push(PQItem{Node: v, Dist: nd})
			}
		}
	}
}
