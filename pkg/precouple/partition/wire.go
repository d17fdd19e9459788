package partition

import "github.com/jabolina/precouple/pkg/precouple/types"

// flattenBox serializes a BoundingBox to [dimensions, min..., max...]
// so it can travel over an IntraComm collective (which only moves
// flat float64 slices) or a Transport double array.
func flattenBox(b types.BoundingBox) []float64 {
	out := make([]float64, 0, 1+2*b.Dimensions)
	out = append(out, float64(b.Dimensions))
	out = append(out, b.Min...)
	out = append(out, b.Max...)
	return out
}

// unflattenBoxes decodes a sequence of boxes produced by concatenating
// flattenBox outputs (as IntraComm.Gather does across ranks).
func unflattenBoxes(flat []float64) []types.BoundingBox {
	var boxes []types.BoundingBox
	for i := 0; i < len(flat); {
		dims := int(flat[i])
		i++
		b := types.BoundingBox{Dimensions: dims}
		b.Min = append([]float64(nil), flat[i:i+dims]...)
		i += dims
		b.Max = append([]float64(nil), flat[i:i+dims]...)
		i += dims
		boxes = append(boxes, b)
	}
	return boxes
}
