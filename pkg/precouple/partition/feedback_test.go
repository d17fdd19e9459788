package partition

import (
	"reflect"
	"testing"

	"github.com/jabolina/precouple/pkg/precouple/types"
)

func TestBuildFeedbackMap_InvertsReceiverNeedsIntoSenderMap(t *testing.T) {
	needs := map[int][]int{
		0: {1, 2},
		1: {2},
	}
	fb := BuildFeedbackMap(needs)

	if !reflect.DeepEqual(fb[1], []int{0}) {
		t.Fatalf("expected sender 1 to serve receiver 0, got %v", fb[1])
	}
	if !reflect.DeepEqual(fb[2], []int{0, 1}) {
		t.Fatalf("expected sender 2 to serve receivers [0, 1], got %v", fb[2])
	}
}

func TestBuildFeedbackMap_DeduplicatesRepeatedReceiver(t *testing.T) {
	needs := map[int][]int{
		0: {1, 1, 1},
	}
	fb := BuildFeedbackMap(needs)
	if !reflect.DeepEqual(fb[1], []int{0}) {
		t.Fatalf("expected a single entry for sender 1, got %v", fb[1])
	}
}

func TestNeededSenders_ReturnsOnlyIntersectingPeers(t *testing.T) {
	local := types.NewBoundingBox(1)
	local.ExpandByVertex(types.NewVertex(0, []float64{0}))
	local.ExpandByVertex(types.NewVertex(1, []float64{1}))

	near := types.NewBoundingBox(1)
	near.ExpandByVertex(types.NewVertex(0, []float64{0.5}))
	near.ExpandByVertex(types.NewVertex(1, []float64{2}))

	far := types.NewBoundingBox(1)
	far.ExpandByVertex(types.NewVertex(0, []float64{100}))
	far.ExpandByVertex(types.NewVertex(1, []float64{101}))

	needed := NeededSenders(local, 0, []types.BoundingBox{near, far})
	if !reflect.DeepEqual(needed, []int{0}) {
		t.Fatalf("expected only rank 0 (near) to be needed, got %v", needed)
	}
}
