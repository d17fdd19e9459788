package types

import "fmt"

// Edge references two vertices already present in the owning Mesh.
type Edge struct {
	ID       int
	VertexA  int
	VertexB  int
}

// Triangle references three edges already present in the owning Mesh.
type Triangle struct {
	ID    int
	Edges [3]int
}

// Quad references four edges already present in the owning Mesh. Vertex
// ids on a Quad returned by a convexity check are unspecified when that
// check reports false — see DESIGN.md for the open question on ordering.
type Quad struct {
	ID    int
	Edges [4]int
}

// VertexDistribution maps rank-in-group to the ordered local indices of
// that rank's globally owned vertices. Populated once by the partition
// subsystem; empty beforehand.
type VertexDistribution map[int][]int

// Mesh is a named container of vertices, edges, faces and data fields.
// Dimensionality is fixed at 2 or 3 for the mesh's entire lifetime.
type Mesh struct {
	Name       string
	Dimensions int

	Vertices  []Vertex
	Edges     []Edge
	Triangles []Triangle
	Quads     []Quad
	Data      []*Data

	// VertexDistribution and VertexOffsets are populated once by the
	// partition subsystem; both are nil/empty until then.
	VertexDistribution VertexDistribution
	VertexOffsets      []int

	nextVertexID int
	nextEdgeID   int
	nextFaceID   int
}

// NewMesh creates an empty mesh of the given dimensionality (2 or 3).
func NewMesh(name string, dimensions int) (*Mesh, error) {
	if dimensions != 2 && dimensions != 3 {
		return nil, fmt.Errorf("mesh %q: dimensions must be 2 or 3, got %d", name, dimensions)
	}
	return &Mesh{Name: name, Dimensions: dimensions}, nil
}

// AddVertex appends a new vertex with the mesh's next dense id.
func (m *Mesh) AddVertex(coords []float64) (int, error) {
	if len(coords) != m.Dimensions {
		return 0, fmt.Errorf("mesh %q: vertex has %d coords, mesh is %dD", m.Name, len(coords), m.Dimensions)
	}
	id := m.nextVertexID
	m.nextVertexID++
	m.Vertices = append(m.Vertices, NewVertex(id, coords))
	return id, nil
}

// AddEdge appends a new edge between two already-present vertex ids.
func (m *Mesh) AddEdge(a, b int) (int, error) {
	if !m.hasVertex(a) || !m.hasVertex(b) {
		return 0, fmt.Errorf("mesh %q: edge references unknown vertex (%d, %d)", m.Name, a, b)
	}
	id := m.nextEdgeID
	m.nextEdgeID++
	m.Edges = append(m.Edges, Edge{ID: id, VertexA: a, VertexB: b})
	return id, nil
}

// AddTriangle appends a new triangle referencing three already-present
// edge ids.
func (m *Mesh) AddTriangle(edges [3]int) (int, error) {
	for _, e := range edges {
		if !m.hasEdge(e) {
			return 0, fmt.Errorf("mesh %q: triangle references unknown edge %d", m.Name, e)
		}
	}
	id := m.nextFaceID
	m.nextFaceID++
	m.Triangles = append(m.Triangles, Triangle{ID: id, Edges: edges})
	return id, nil
}

// AddQuad appends a new quad referencing four already-present edge ids.
// See Quad's doc comment regarding unspecified vertex order on a failed
// convexity check performed by callers before insertion.
func (m *Mesh) AddQuad(edges [4]int) (int, error) {
	for _, e := range edges {
		if !m.hasEdge(e) {
			return 0, fmt.Errorf("mesh %q: quad references unknown edge %d", m.Name, e)
		}
	}
	id := m.nextFaceID
	m.nextFaceID++
	m.Quads = append(m.Quads, Quad{ID: id, Edges: edges})
	return id, nil
}

// AddData registers a new Data field on the mesh. AllocateDataValues
// must run again after this to size the new field's buffer.
func (m *Mesh) AddData(d *Data) {
	m.Data = append(m.Data, d)
}

// DataByID returns the Data field with the given id, if registered.
func (m *Mesh) DataByID(id int) (*Data, bool) {
	for _, d := range m.Data {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

// DataByName returns the Data field with the given name, if registered.
func (m *Mesh) DataByName(name string) (*Data, bool) {
	for _, d := range m.Data {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// AllocateDataValues resizes every registered Data field's value buffer
// to |vertices| * dimension, keeping every field's buffer in lockstep with the mesh.
func (m *Mesh) AllocateDataValues() {
	for _, d := range m.Data {
		d.Allocate(len(m.Vertices))
	}
}

func (m *Mesh) hasVertex(id int) bool {
	for _, v := range m.Vertices {
		if v.ID == id {
			return true
		}
	}
	return false
}

func (m *Mesh) hasEdge(id int) bool {
	for _, e := range m.Edges {
		if e.ID == id {
			return true
		}
	}
	return false
}

// ReorderQuadIfConvex reports whether the quad's four edges all exist in
// m and close a ring (each edge shares a vertex with the next, the last
// with the first). It does not test geometric convexity and does not
// reorder the edge list. On a false return the quad's edge order is
// unspecified by contract — callers must not depend on it in that case.
func ReorderQuadIfConvex(q *Quad, m *Mesh) bool {
	// A minimal, deliberately simple convexity check: a quad built from
	// edges that do not share vertices pairwise in a ring is rejected.
	// Anything beyond detecting that ring structure is out of scope for
	// the core (mesh storage primitives are an external collaborator,
	// the mesh storage types).
	ring := ringVertices(q.Edges, m)
	if ring == nil {
		return false
	}
	return true
}

func ringVertices(edges [4]int, m *Mesh) []int {
	byID := make(map[int]Edge, len(m.Edges))
	for _, e := range m.Edges {
		byID[e.ID] = e
	}
	var ring []int
	cur := -1
	next := edges[0]
	for i := 0; i < 4; i++ {
		e, ok := byID[next]
		if !ok {
			return nil
		}
		var v int
		if e.VertexA != cur {
			v = e.VertexA
		} else {
			v = e.VertexB
		}
		ring = append(ring, v)
		cur = v
		if i < 3 {
			next = edges[i+1]
		}
	}
	for i := 0; i < 4; i++ {
		a, b := byID[edges[i]], byID[edges[(i+1)%4]]
		if a.VertexA != b.VertexA && a.VertexA != b.VertexB && a.VertexB != b.VertexA && a.VertexB != b.VertexB {
			return nil
		}
	}
	return ring
}
