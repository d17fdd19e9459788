package partition

import (
	"reflect"
	"testing"

	"github.com/jabolina/precouple/pkg/precouple/types"
)

func TestFlattenUnflattenBoxes_RoundTripsMultipleBoxes(t *testing.T) {
	a := types.BoundingBox{Dimensions: 2, Min: []float64{0, 0}, Max: []float64{1, 1}}
	b := types.BoundingBox{Dimensions: 2, Min: []float64{5, 5}, Max: []float64{9, 9}}

	var flat []float64
	flat = append(flat, flattenBox(a)...)
	flat = append(flat, flattenBox(b)...)

	boxes := unflattenBoxes(flat)
	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d", len(boxes))
	}
	if !reflect.DeepEqual(boxes[0].Min, a.Min) || !reflect.DeepEqual(boxes[0].Max, a.Max) {
		t.Fatalf("box 0 mismatch: %+v", boxes[0])
	}
	if !reflect.DeepEqual(boxes[1].Min, b.Min) || !reflect.DeepEqual(boxes[1].Max, b.Max) {
		t.Fatalf("box 1 mismatch: %+v", boxes[1])
	}
}

func TestEncodeDecodeFeedbackMap_RoundTripsAndOmitsEmptySenders(t *testing.T) {
	fb := FeedbackMap{
		0: {2},
		2: {0, 1},
	}
	encoded := encodeFeedbackMap(fb, 3)
	decoded := decodeFeedbackMap(encoded)

	if !reflect.DeepEqual(decoded[0], fb[0]) {
		t.Fatalf("sender 0 mismatch: got %v, want %v", decoded[0], fb[0])
	}
	if !reflect.DeepEqual(decoded[2], fb[2]) {
		t.Fatalf("sender 2 mismatch: got %v, want %v", decoded[2], fb[2])
	}
	if _, ok := decoded[1]; ok {
		t.Fatalf("expected sender 1 (no receivers) to be absent, got %v", decoded[1])
	}
}

func TestBoundingBoxOf_ComputesExtentFromMeshVertices(t *testing.T) {
	mesh, err := types.NewMesh("m", 2)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	for _, c := range [][]float64{{-1, 2}, {3, -4}, {0, 0}} {
		if _, err := mesh.AddVertex(c); err != nil {
			t.Fatalf("AddVertex: %v", err)
		}
	}
	box := BoundingBoxOf(mesh)
	if box.Min[0] != -1 || box.Min[1] != -4 {
		t.Fatalf("unexpected min %v", box.Min)
	}
	if box.Max[0] != 3 || box.Max[1] != 2 {
		t.Fatalf("unexpected max %v", box.Max)
	}
}
