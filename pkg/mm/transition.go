// Package mm implements the Hidden Markov Model lattice shared by both
// matching strategies: a layered transition graph over per-observation
// candidates, the Viterbi forward pass, and back-pointer backtracking.
// Adapted from a single global token list to layer-local back-pointers,
// one slice per layer rather than one shared trace.
package mm

import (
	"math"

	"github.com/azybler/mapmatch/pkg/network"
)

// TGNode is one transition graph node: a candidate together with its
// accumulated Viterbi state. Prev points into the previous layer's
// node slice. It is a live pointer, not an index, so an earlier layer
// stays reachable, and is not garbage collected, for as long as a
// later layer that points into it is.
type TGNode struct {
	Candidate   *network.Candidate
	Prev        *TGNode
	EP          float64
	TP          float64
	CumuLogProb float64
	SPDist      float64
}

// TGLayer holds one observation's transition graph nodes.
type TGLayer struct {
	Nodes []TGNode
}

// TransitionGraph is one layer per observation.
type TransitionGraph struct {
	Layers []TGLayer
}

// NewTransitionGraph builds the initial (pre-Viterbi) lattice: one
// layer per observation, each node's ep from EmissionProbability and
// cumu_log_prob seeded to log(ep) in layer 0 and -Inf elsewhere.
func NewTransitionGraph(trajCandidates [][]network.Candidate, gpsError float64) *TransitionGraph {
	tg := &TransitionGraph{Layers: make([]TGLayer, len(trajCandidates))}
	for li, cands := range trajCandidates {
		layer := TGLayer{Nodes: make([]TGNode, len(cands))}
		for ci := range cands {
			ep := network.EmissionProbability(cands[ci].Error, gpsError)
			cumu := math.Inf(-1)
			if li == 0 {
				cumu = math.Log(ep)
			}
			layer.Nodes[ci] = TGNode{
				Candidate:   &cands[ci],
				EP:          ep,
				CumuLogProb: cumu,
			}
		}
		tg.Layers[li] = layer
	}
	return tg
}

// CalcTP computes the HMM transition probability from a shortest-path
// distance and an observation-gap Euclidean distance:
//
//	tp = (sp_dist + 1e-6) / (eu_dist + 1e-6)   when eu_dist >= sp_dist
//	tp = eu_dist / sp_dist                     otherwise
//
// clamped to (0, 1]. At sp_dist == eu_dist == 0 the first branch's
// +1e-6 terms cancel to exactly 1.0.
func CalcTP(spDist, euDist float64) float64 {
	var tp float64
	if euDist >= spDist {
		tp = (spDist + 1e-6) / (euDist + 1e-6)
	} else {
		tp = euDist / spDist
	}
	if tp > 1 {
		tp = 1
	}
	if tp <= 0 {
		tp = math.SmallestNonzeroFloat64
	}
	return tp
}

// ShortestPathDist computes the strategy-specific shortest-path
// distance between two consecutive-observation candidates: FMM looks
// it up in UBODT, STMATCH runs a bounded Dijkstra on the composite
// graph. A result of +Inf means the transition is unreachable and must
// be rejected outright, not merely penalized.
type ShortestPathDist func(a, b *network.Candidate) float64

// ForwardPass runs the Viterbi forward recurrence across every
// adjacent layer pair, using euDists[i] as the observation-gap
// Euclidean distance between layer i and i+1 and spDist to resolve
// each candidate pair's shortest-path distance.
//
// Returns the index of the first layer where no node received any
// finite update (a disconnected transition) and false; the
// graph's nodes in that layer and every layer after it are left at
// their initial -Inf state. Returns (-1, true) if every layer updated.
func ForwardPass(tg *TransitionGraph, euDists []float64, spDist ShortestPathDist) (disconnectedLayer int, ok bool) {
	for li := 0; li < len(tg.Layers)-1; li++ {
		la := &tg.Layers[li]
		lb := &tg.Layers[li+1]
		eu := euDists[li]

		updated := false
		for ai := range la.Nodes {
			a := &la.Nodes[ai]
			if math.IsInf(a.CumuLogProb, -1) {
				continue
			}
			for bi := range lb.Nodes {
				b := &lb.Nodes[bi]

				sp := spDist(a.Candidate, b.Candidate)
				if math.IsInf(sp, 1) {
					continue
				}

				tp := CalcTP(sp, eu)
				v := a.CumuLogProb + math.Log(tp) + math.Log(b.EP)
				if v > b.CumuLogProb {
					b.CumuLogProb = v
					b.Prev = a
					b.TP = tp
					b.SPDist = sp
					updated = true
				}
			}
		}

		if !updated {
			return li + 1, false
		}
	}
	return -1, true
}

// Backtrack follows Prev pointers from the highest-cumu_log_prob node of
// the deepest layer still reachable from layer 0 back to layer 0,
// assigning one candidate per observation.
//
// A disconnected transition leaves every layer after the break at
// -Inf, so there is no Viterbi chain covering them. Rather than leaving
// those observations unmatched, each one gets the candidate with the
// highest emission probability picked independently of the chain —
// opath stays fully populated across a disconnected trajectory even
// though the corresponding cpath segment can't be reconstructed.
// Returns nil only if some layer has no candidates at all.
func Backtrack(tg *TransitionGraph) []*network.Candidate {
	nodes := BacktrackNodes(tg)
	if nodes == nil {
		return nil
	}
	result := make([]*network.Candidate, len(nodes))
	for i, node := range nodes {
		result[i] = node.Candidate
	}
	return result
}

// BacktrackNodes does the same reconstruction as Backtrack but returns
// the TGNode itself for each observation, so callers that need ep/tp/
// sp_dist alongside the matched candidate (result assembly, C10) don't
// have to re-walk the lattice.
func BacktrackNodes(tg *TransitionGraph) []*TGNode {
	n := len(tg.Layers)
	if n == 0 {
		return nil
	}
	for i := range tg.Layers {
		if len(tg.Layers[i].Nodes) == 0 {
			return nil
		}
	}

	deepest := n - 1
	for deepest >= 0 && !layerHasFiniteNode(&tg.Layers[deepest]) {
		deepest--
	}
	if deepest < 0 {
		return nil
	}

	result := make([]*TGNode, n)
	idx := deepest
	for node := bestByCumuLogProb(&tg.Layers[deepest]); node != nil; node = node.Prev {
		result[idx] = node
		idx--
	}
	for i := 0; i < n; i++ {
		if result[i] == nil {
			result[i] = bestByEmissionProb(&tg.Layers[i])
		}
	}
	return result
}

func layerHasFiniteNode(l *TGLayer) bool {
	for i := range l.Nodes {
		if !math.IsInf(l.Nodes[i].CumuLogProb, -1) {
			return true
		}
	}
	return false
}

func bestByCumuLogProb(l *TGLayer) *TGNode {
	best := &l.Nodes[0]
	for i := 1; i < len(l.Nodes); i++ {
		if l.Nodes[i].CumuLogProb > best.CumuLogProb {
			best = &l.Nodes[i]
		}
	}
	return best
}

func bestByEmissionProb(l *TGLayer) *TGNode {
	best := &l.Nodes[0]
	for i := 1; i < len(l.Nodes); i++ {
		if l.Nodes[i].EP > best.EP {
			best = &l.Nodes[i]
		}
	}
	return best
}
