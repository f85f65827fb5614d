package graph

// Adjacency abstracts edge enumeration so DijkstraOver can run across a
// graph assembled from more than one source — STMATCH's composite view
// over the base NetworkGraph plus a per-trajectory dummy-node graph —
// without ever materializing a merged structure. VisitEdgesFrom calls
// visit once per outgoing edge of u;
// it mirrors the callback idiom of the network package's R-tree scan
// rather than returning a slice, so the common NetworkGraph
// case stays allocation-free.
type Adjacency interface {
	VisitEdgesFrom(u uint32, visit func(to uint32, weight float64, edgeIndex uint32))
}

// NetworkAdjacency adapts a NetworkGraph's CSR layout to Adjacency.
type NetworkAdjacency struct {
	G *NetworkGraph
}

func (a NetworkAdjacency) VisitEdgesFrom(u uint32, visit func(to uint32, weight float64, edgeIndex uint32)) {
	start, end := a.G.EdgesFrom(u)
	for e := start; e < end; e++ {
		visit(a.G.Head[e], a.G.Weight[e], a.G.EdgeIndex[e])
	}
}

// DijkstraOver runs a bounded single-source Dijkstra over any
// Adjacency, settling nodes until the heap empties or maxDist is
// exceeded. Unlike Dijkstra/DijkstraTo in dijkstra.go it doesn't record
// prevE CSR slots, since a composite view has no uniform slot space to
// index into — callers that need the composite view only want Dist;
// STMATCH recovers its edge sequences separately, with Astar on the
// base NetworkGraph.
func DijkstraOver(adj Adjacency, qs *QueryState, src uint32, maxDist float64) {
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

		adj.VisitEdgesFrom(u, func(v uint32, w float64, _ uint32) {
			if qs.visited[v] {
				return
			}
			nd := qs.dist[u] + w
			if nd > maxDist {
				return
			}
			qs.touch(v)
			if nd < qs.dist[v] {
				qs.dist[v] = nd
				qs.prev[v] = u
				qs.heap.Push(PQItem{Node: v, Dist: nd})
			}
		})
	}
}
