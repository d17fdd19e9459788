package types

// dataIDSeq hands out globally unique Data ids across every mesh in a
// process.
var dataIDSeq int

func nextDataID() int {
	dataIDSeq++
	return dataIDSeq
}

// Data is a named scalar or vector field on a Mesh. Dimension is 1 for a
// scalar or the mesh's dimensionality for a vector field.
type Data struct {
	ID        int
	Name      string
	Dimension int

	// Values is a flat buffer, vertex-major, length
	// |vertices| * Dimension. Empty until AllocateDataValues runs.
	Values []float64
}

// NewData creates a Data field with a fresh globally-unique id. Values
// are unallocated until AllocateDataValues is called on the owning mesh.
func NewData(name string, dimension int) *Data {
	return &Data{ID: nextDataID(), Name: name, Dimension: dimension}
}

// Allocate grows/resets Values to length vertexCount*Dimension.
func (d *Data) Allocate(vertexCount int) {
	d.Values = make([]float64, vertexCount*d.Dimension)
}
