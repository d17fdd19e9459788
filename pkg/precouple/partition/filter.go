// Package partition implements the distributed mesh partitioning
// subsystem: establishing the global vertex layout,
// geometric filtering, ownership assignment, and the per-rank
// communication maps (FeedbackMap) between two participants' meshes.
package partition

import "github.com/jabolina/precouple/pkg/precouple/types"

// GeometricFilter selects how a received-side mesh is reduced to the
// locally relevant vertex subset.
type GeometricFilter int

const (
	// NoFilter keeps the full mesh on every rank; used for global
	// mappings such as RBF where every rank needs every vertex.
	NoFilter GeometricFilter = iota

	// FilterFirst has the received-side master filter per receiver
	// rank and send only the filtered slice to each — minimizes wire
	// volume at the cost of master CPU.
	FilterFirst

	// BroadcastFilter has the received-side master broadcast the full
	// mesh and every receiver rank filter locally — minimizes master
	// CPU, trades network volume.
	BroadcastFilter
)

// SafetyFactor is the default inflation applied to a rank's bounding
// box before comparing it against the peer's boxes. Configurable per
// mesh in a full deployment; the core ships a sane default.
const SafetyFactor = 0.1

// FilterVerticesInBox returns the indices (into mesh.Vertices) of every
// vertex whose coordinates fall inside box inflated by safetyFactor.
func FilterVerticesInBox(mesh *types.Mesh, box types.BoundingBox, safetyFactor float64) []int {
	inflated := box.Inflated(safetyFactor)
	var kept []int
	for i, v := range mesh.Vertices {
		if inflated.Contains(v.Coords) {
			kept = append(kept, i)
		}
	}
	return kept
}

// ApplyFilter runs the configured GeometricFilter for one receiving
// rank against the full global mesh and that rank's bounding box,
// returning the indices of vertices the rank keeps.
//
// A filter producing an empty local mesh on a receiving rank is
// non-fatal: that rank simply exchanges nothing; callers must treat a
// nil/empty return as valid.
func ApplyFilter(policy GeometricFilter, mesh *types.Mesh, rankBox types.BoundingBox, safetyFactor float64) []int {
	switch policy {
	case NoFilter:
		all := make([]int, len(mesh.Vertices))
		for i := range all {
			all[i] = i
		}
		return all
	case FilterFirst, BroadcastFilter:
		// Both policies apply the identical geometric predicate; they
		// differ only in where the work happens (master vs. each
		// rank) and how much data crosses the wire to get there, which
		// is an m2n/transport concern, not a filtering-logic one.
		return FilterVerticesInBox(mesh, rankBox, safetyFactor)
	default:
		return nil
	}
}

// BuildMeshSubset copies the vertices at the given indices (in the mesh's
// original order) into a fresh, filtered mesh with its own dense local
// ids but retaining the source global indices for later reconciliation.
func BuildMeshSubset(name string, source *types.Mesh, indices []int) (*types.Mesh, error) {
	m, err := types.NewMesh(name, source.Dimensions)
	if err != nil {
		return nil, err
	}
	for _, idx := range indices {
		v := source.Vertices[idx]
		id, err := m.AddVertex(v.Coords)
		if err != nil {
			return nil, err
		}
		m.Vertices[id].Tagged = true
		m.Vertices[id].GlobalIndex = v.GlobalIndex
	}
	return m, nil
}
