package mm

import (
	"github.com/azybler/mapmatch/pkg/geom"
	"github.com/azybler/mapmatch/pkg/network"
)

// MatchedCandidate is the Viterbi-chosen (or, past a disconnection,
// independently picked) candidate for one observation, together with
// the lattice state that produced it.
type MatchedCandidate struct {
	Candidate *network.Candidate
	EP        float64
	TP        float64
	SPDist    float64
}

// MatchResult is the outcome of matching one trajectory.
// Cpath/CpathIndices/Mgeom are left empty when the matched
// opath is disconnected or its gaps can't be bridged (PathGap); Opath
// and MatchedCandidates are always populated one entry per observation.
type MatchResult struct {
	TrajectoryID      int64
	MatchedCandidates []MatchedCandidate
	Opath             []int64
	Cpath             []int64
	CpathIndices      []int
	Mgeom             *geom.LineString
}

// PathBuilder reconstructs a contiguous cpath from the Viterbi-picked
// candidates; FMM delegates to UBODT's construct_complete_path,
// STMATCH to its own bounded-Dijkstra bridging.
type PathBuilder func(cands []*network.Candidate) (cpath []int64, indices []int, ok bool)

// AssembleResult runs BacktrackNodes over tg, converts it into
// MatchedCandidates, and delegates cpath reconstruction to buildPath.
// Shared by the FMM and STMATCH matchers so neither duplicates the
// opath/matched-candidate bookkeeping (only shortest_path_dist and
// path bridging differ between the two strategies).
func AssembleResult(trajectoryID int64, tg *TransitionGraph, buildPath PathBuilder) *MatchResult {
	nodes := BacktrackNodes(tg)
	if nodes == nil {
		return &MatchResult{TrajectoryID: trajectoryID}
	}

	matched := make([]MatchedCandidate, len(nodes))
	opath := make([]int64, len(nodes))
	cands := make([]*network.Candidate, len(nodes))
	for i, node := range nodes {
		matched[i] = MatchedCandidate{
			Candidate: node.Candidate,
			EP:        node.EP,
			TP:        node.TP,
			SPDist:    node.SPDist,
		}
		opath[i] = node.Candidate.Edge.ID
		cands[i] = node.Candidate
	}

	result := &MatchResult{
		TrajectoryID:      trajectoryID,
		MatchedCandidates: matched,
		Opath:             opath,
	}

	cpath, indices, ok := buildPath(cands)
	if ok && len(cpath) > 0 {
		result.Cpath = cpath
		result.CpathIndices = indices
	}
	return result
}
