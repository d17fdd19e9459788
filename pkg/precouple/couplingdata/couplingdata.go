// Package couplingdata implements the CouplingData registry of
// per-exchange buffers holding current values, staged
// next-window values, and a bounded history of prior iterations used by
// quasi-Newton acceleration.
package couplingdata

import (
	"github.com/jabolina/precouple/pkg/precouple/types"
)

// DefaultHistoryDepth bounds the number of columns kept in OldValues.
const DefaultHistoryDepth = 4

// Key identifies one exchanged field by the (mesh, data) pair the
// registry uses to index its entries.
type Key struct {
	MeshID int
	DataID int
}

// CouplingData is one exchanged field's runtime state. It never keeps
// its own copy of a Data's buffer slice: it holds non-owning pointers to
// the Mesh and Data records, and Values reads Data.Values on every call,
// so its view of the live buffer is always the Data record's own.
type CouplingData struct {
	Key       Key
	Mesh      *types.Mesh
	Data      *types.Data
	Dimension int

	// NewValues accumulates sub-cycled solver writes between exchanges
	// summed for Conservative quantities,
	// last-written for Consistent ones.
	NewValues []float64

	// OldValues is the iteration/window history matrix: column 0 is
	// the previous iteration's values, remaining columns are previous
	// time windows' values, oldest last once truncated to
	// historyDepth.
	OldValues [][]float64

	// Initialize marks a field that must be filled with non-zero
	// initial values before the first exchange.
	Initialize bool

	historyDepth      int
	checkpoint        []float64
	previousIteration []float64
}

// Values returns the live value buffer — the owning Data's buffer
// itself, not a copy, so writes into the returned slice land directly in
// the Data record. Writes made through the external API go to NewValues
// instead and reach this buffer only when Swap runs at a window commit.
func (c *CouplingData) Values() []float64 {
	return c.Data.Values
}

// Registry is the scheme's mapping from (mesh-id, data-id) to
// CouplingData. Lookup returns (value, ok): there is no
// default-constructible zero-value CouplingData a caller could
// accidentally use.
type Registry struct {
	entries map[Key]*CouplingData
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Key]*CouplingData)}
}

// Register creates a CouplingData entry during configuration. Calling
// Register twice for the same Key replaces the prior entry.
func (r *Registry) Register(mesh *types.Mesh, data *types.Data, initialize bool) *CouplingData {
	cd := &CouplingData{
		Key:          Key{MeshID: meshKeyOf(mesh), DataID: data.ID},
		Mesh:         mesh,
		Data:         data,
		Dimension:    data.Dimension,
		NewValues:    make([]float64, len(data.Values)),
		Initialize:   initialize,
		historyDepth: DefaultHistoryDepth,
	}
	r.entries[cd.Key] = cd
	return cd
}

// Get looks up a registered field. ok is false if nothing is registered
// under key; callers must check it rather than use a zero CouplingData.
func (r *Registry) Get(key Key) (*CouplingData, bool) {
	cd, ok := r.entries[key]
	return cd, ok
}

// All returns every registered entry, for iteration during
// swap/store/restore of a whole window.
func (r *Registry) All() []*CouplingData {
	out := make([]*CouplingData, 0, len(r.entries))
	for _, cd := range r.entries {
		out = append(out, cd)
	}
	return out
}

// Swap rotates NewValues into the live Values buffer, pushes the
// previous Values in as history column 0 (truncating to historyDepth),
// then zeroes NewValues. Values are copied, never recomputed: staging the
// prior values again and swapping a second time restores Values
// bit-exactly, and a history depth of at least 2 keeps both columns.
func (c *CouplingData) Swap() {
	prev := append([]float64(nil), c.Values()...)
	copy(c.Data.Values, c.NewValues)
	c.OldValues = append([][]float64{prev}, c.OldValues...)
	if len(c.OldValues) > c.historyDepth {
		c.OldValues = c.OldValues[:c.historyDepth]
	}
	for i := range c.NewValues {
		c.NewValues[i] = 0
	}
	c.previousIteration = nil
}

// IterationValues returns the values staged by the current
// sub-iteration's exchange, before they are swapped into the live
// buffer at commit.
func (c *CouplingData) IterationValues() []float64 {
	return c.NewValues
}

// CaptureIteration snapshots the currently staged values as "previous
// iteration" for the next convergence check. Swap clears the snapshot;
// residual-measure baselines are reset by the scheme, not here.
// Callers invoke it once per
// sub-iteration, right before a receiving exchange overwrites
// NewValues.
func (c *CouplingData) CaptureIteration() {
	c.previousIteration = append([]float64(nil), c.NewValues...)
}

// PreviousIterationValues returns the snapshot taken by the most recent
// CaptureIteration call, or the current staged values if none has been
// taken yet (so the very first comparison reports a zero residual).
func (c *CouplingData) PreviousIterationValues() []float64 {
	if c.previousIteration == nil {
		return c.NewValues
	}
	return c.previousIteration
}

// Store snapshots the live Values buffer for later Restore, used around
// implicit sub-iterations.
func (c *CouplingData) Store() {
	c.checkpoint = append([]float64(nil), c.Values()...)
}

// Restore rolls the live Values buffer back to the last Store snapshot.
func (c *CouplingData) Restore() {
	if c.checkpoint == nil {
		return
	}
	copy(c.Data.Values, c.checkpoint)
}

func meshKeyOf(mesh *types.Mesh) int {
	// Meshes do not carry an explicit numeric id in the mesh-storage
	// value container (mesh storage primitives are an
	// external collaborator); the registry keys on the mesh's pointer
	// identity via a small interning table instead of requiring Mesh to
	// grow an id field purely for registry bookkeeping.
	return internMesh(mesh)
}
