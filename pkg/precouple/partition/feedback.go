package partition

import (
	"sort"

	"github.com/jabolina/precouple/pkg/precouple/types"
)

// FeedbackMap routes m2n data exchanges: sender-rank -> the set of
// receiver-ranks that need data from that sender.
type FeedbackMap map[int][]int

// BuildFeedbackMap inverts each received-side rank's list of needed
// provided-side ranks into a per-sender map. needs[receiverRank] is the
// list of provided-side ranks that receiver asked for data from.
func BuildFeedbackMap(needs map[int][]int) FeedbackMap {
	fb := make(FeedbackMap)
	receivers := make([]int, 0, len(needs))
	for r := range needs {
		receivers = append(receivers, r)
	}
	sort.Ints(receivers)

	for _, receiver := range receivers {
		senders := append([]int(nil), needs[receiver]...)
		sort.Ints(senders)
		for _, sender := range senders {
			fb[sender] = appendUnique(fb[sender], receiver)
		}
	}
	for s := range fb {
		sort.Ints(fb[s])
	}
	return fb
}

func appendUnique(list []int, v int) []int {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// NeededSenders determines, for one received-side rank, which
// provided-side ranks' bounding boxes intersect this rank's own
// (inflated) box — the set of remote ranks this rank must request data
// from.
func NeededSenders(localBox types.BoundingBox, safetyFactor float64, peerBoxes []types.BoundingBox) []int {
	inflated := localBox.Inflated(safetyFactor)
	var needed []int
	for rank, box := range peerBoxes {
		if inflated.Intersects(box) {
			needed = append(needed, rank)
		}
	}
	return needed
}
