// Package m2n implements the mesh-to-mesh DistributedCommunication
// layer: given two already-partitioned meshes on two
// participants and the partition subsystem's routing map, it exchanges
// data arrays across ranks via gather/scatter or point-to-point.
package m2n

import (
	"math"
)

// Constraint selects the accumulation policy a DistributedCommunication
// applies when more than one sender delivers a value for the same
// vertex.
type Constraint int

const (
	// Consistent data is pointwise: last-writer-wins, tie-broken by
	// the lowest sender rank id.
	Consistent Constraint = iota
	// Conservative data is integral-preserving: duplicate arrivals for
	// the same vertex accumulate additively.
	Conservative
)

// DistributedCommunication is the shared exchange contract:
// values is laid out vertex-major with dim components per vertex,
// length |local vertices| * dim. Receive blocks until every expected
// byte has arrived.
type DistributedCommunication interface {
	Send(values []float64, dim int) error
	Receive(dim int) ([]float64, error)
}

// accumulate merges an incoming vertex-major value buffer into dst at
// vertex position dstGlobalIdx of dst (PointToPoint passes the local
// buffer position it looked up from the global index), per the
// constraint tag, keeping track
// of which sender rank last wrote each vertex to break Consistent ties.
func accumulate(dst []float64, dstGlobalIdx int, dim int, incoming []float64, incomingOffset int, constraint Constraint, lastWriter map[int]int, senderRank int) {
	base := dstGlobalIdx * dim
	switch constraint {
	case Conservative:
		for d := 0; d < dim; d++ {
			dst[base+d] += incoming[incomingOffset+d]
		}
	case Consistent:
		if prev, ok := lastWriter[dstGlobalIdx]; !ok || senderRank < prev {
			for d := 0; d < dim; d++ {
				dst[base+d] = incoming[incomingOffset+d]
			}
			lastWriter[dstGlobalIdx] = senderRank
		}
	}
}

// L2Norm computes the Euclidean norm of a vertex-major value buffer,
// for checking the round-trip invariant that the L2 norm sent equals
// the L2 norm received. The couplingscheme convergence measures compute
// their own norms and do not call it.
func L2Norm(values []float64) float64 {
	var sumSq float64
	for _, v := range values {
		sumSq += v * v
	}
	return math.Sqrt(sumSq)
}
