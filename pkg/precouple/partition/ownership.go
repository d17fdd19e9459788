package partition

import (
	"sort"

	"github.com/jabolina/precouple/pkg/precouple/types"
)

// AssignOwnership implements a deterministic, load-balanced
// ownership rule: for each vertex in globally sorted order, the
// candidate rank with the smallest rank id that has not yet exceeded its
// fair share becomes the owner. Fair share is ceil(|vertices| / |ranks|).
//
// candidates maps a global vertex index to the sorted list of rank ids
// that kept that vertex after filtering (the set of ranks for which the
// vertex survived ApplyFilter). The result is deterministic regardless
// of message arrival order, satisfying the idempotence invariant that
// re-running on the same candidates yields identical output.
func AssignOwnership(globalVertexCount, rankCount int, candidates map[int][]int) (types.VertexDistribution, []int) {
	fairShare := (globalVertexCount + rankCount - 1) / rankCount
	counts := make([]int, rankCount)
	owner := make([]int, globalVertexCount)
	for i := range owner {
		owner[i] = -1
	}

	globalIdx := make([]int, 0, len(candidates))
	for idx := range candidates {
		globalIdx = append(globalIdx, idx)
	}
	sort.Ints(globalIdx)

	for _, idx := range globalIdx {
		ranks := append([]int(nil), candidates[idx]...)
		sort.Ints(ranks)
		for _, r := range ranks {
			if counts[r] < fairShare {
				owner[idx] = r
				counts[r]++
				break
			}
		}
		if owner[idx] == -1 && len(ranks) > 0 {
			// Every candidate already hit fair share (can happen when
			// global vertex count does not divide evenly); fall back to
			// the smallest-id candidate so every vertex still gets
			// exactly one owner.
			owner[idx] = ranks[0]
			counts[ranks[0]]++
		}
	}

	distribution := make(types.VertexDistribution, rankCount)
	for idx, r := range owner {
		if r < 0 {
			continue
		}
		distribution[r] = append(distribution[r], idx)
	}
	for r := range distribution {
		sort.Ints(distribution[r])
	}

	offsets := make([]int, rankCount)
	sum := 0
	for r := 0; r < rankCount; r++ {
		offsets[r] = sum
		sum += len(distribution[r])
	}

	return distribution, offsets
}
