package types

import "math"

// BoundingBox is an axis-aligned min/max box in Dimensions dimensions.
// A freshly constructed BoundingBox is empty (Min holds +Inf, Max holds
// -Inf per component) until the first ExpandByVertex call.
type BoundingBox struct {
	Dimensions int
	Min        []float64
	Max        []float64
}

// NewBoundingBox creates an empty bounding box ready for expansion.
func NewBoundingBox(dimensions int) BoundingBox {
	min := make([]float64, dimensions)
	max := make([]float64, dimensions)
	for i := 0; i < dimensions; i++ {
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	return BoundingBox{Dimensions: dimensions, Min: min, Max: max}
}

// ExpandByVertex grows the box to include the given vertex's
// coordinates.
func (b *BoundingBox) ExpandByVertex(v Vertex) {
	for i, c := range v.Coords {
		if c < b.Min[i] {
			b.Min[i] = c
		}
		if c > b.Max[i] {
			b.Max[i] = c
		}
	}
}

// Inflated returns a copy of the box expanded outward by safetyFactor
// times its own extent per dimension (a safetyFactor of 0 returns an
// identical copy).
func (b BoundingBox) Inflated(safetyFactor float64) BoundingBox {
	out := BoundingBox{Dimensions: b.Dimensions, Min: make([]float64, b.Dimensions), Max: make([]float64, b.Dimensions)}
	for i := 0; i < b.Dimensions; i++ {
		extent := b.Max[i] - b.Min[i]
		if extent < 0 {
			extent = 0
		}
		pad := extent * safetyFactor
		out.Min[i] = b.Min[i] - pad
		out.Max[i] = b.Max[i] + pad
	}
	return out
}

// Intersects reports whether this box overlaps other in every
// dimension.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	for i := 0; i < b.Dimensions; i++ {
		if b.Max[i] < other.Min[i] || other.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// Contains reports whether the given coordinates fall within the box,
// inclusive of the boundary.
func (b BoundingBox) Contains(coords []float64) bool {
	for i, c := range coords {
		if c < b.Min[i] || c > b.Max[i] {
			return false
		}
	}
	return true
}
