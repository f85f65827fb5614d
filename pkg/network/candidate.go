package network

import (
	"fmt"
	"math"
	"sort"

	"github.com/azybler/mapmatch/pkg/geom"
	"github.com/azybler/mapmatch/pkg/mmerrors"
)

// Candidate is a projection of one GPS observation onto one network
// edge. Index is unique across an entire trajectory, assigned so that
// candidates belonging to later observations always have strictly
// greater indices — STMATCH reuses these as pseudo node ids above the
// network's own node count.
type Candidate struct {
	Index  uint32
	Offset float64
	Error  float64
	Edge   *Edge
	Point  geom.Point
}

// EmissionProbability returns ep(error) = exp(-0.5 * (error/gpsError)^2),
// the Gaussian likelihood of observing a candidate with the given
// projection error, clipped away from zero so log(ep) stays finite.
func EmissionProbability(errorDist, gpsError float64) float64 {
	z := errorDist / gpsError
	p := math.Exp(-0.5 * z * z)
	if p < math.SmallestNonzeroFloat64 {
		return math.SmallestNonzeroFloat64
	}
	return p
}

// SearchTrajectoryCandidates runs candidate search for every observation
// in points: for each, it queries the R-tree for edges within radius,
// projects the point onto each hit, keeps those with error <= radius,
// and retains at most k, the smallest by (error, edge.index). Returned
// candidate indices run monotonically across the whole trajectory,
// starting at the network's node count. An observation with no
// qualifying edge rejects the whole trajectory with ErrEmptyCandidates.
func SearchTrajectoryCandidates(n *Network, points []geom.Point, k int, radius float64) ([][]Candidate, error) {
	result := make([][]Candidate, len(points))
	nextIndex := n.NumNodes()

	for i, p := range points {
		var cands []Candidate
		n.queryBBox(p, radius, func(e *Edge) bool {
			errDist, offset, proj := geom.ProjectPointToLine(p, e.Geom)
			if errDist <= radius {
				cands = append(cands, Candidate{
					Offset: offset,
					Error:  errDist,
					Edge:   e,
					Point:  proj,
				})
			}
			return true
		})

		if len(cands) == 0 {
			return nil, fmt.Errorf("%w: observation %d", mmerrors.ErrEmptyCandidates, i)
		}

		sort.Slice(cands, func(a, b int) bool {
			if cands[a].Error != cands[b].Error {
				return cands[a].Error < cands[b].Error
			}
			return cands[a].Edge.Index < cands[b].Edge.Index
		})
		if len(cands) > k {
			cands = cands[:k]
		}

		for j := range cands {
			cands[j].Index = nextIndex
			nextIndex++
		}

		result[i] = cands
	}

	return result, nil
}
