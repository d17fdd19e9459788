// Package api is the solver-facing call surface: the methods an
// embedding application calls directly, wrapping a CouplingScheme and
// its CouplingData registry behind a stable, narrow interface so the
// solver never touches the protocol state machine or registry types
// directly.
package api

import (
	"github.com/jabolina/precouple/pkg/precouple/couplingdata"
	"github.com/jabolina/precouple/pkg/precouple/couplingscheme"
	"github.com/jabolina/precouple/pkg/precouple/types"
)

// Interface is the solver-facing call surface.
type Interface struct {
	scheme   *couplingscheme.CouplingScheme
	registry *couplingdata.Registry
	byName   map[string]couplingdata.Key
}

// New wraps a configured CouplingScheme and registry. byName maps the
// data names a solver writes/reads by (the names it knows from its own
// configuration) to the registry keys the scheme's exchanges use.
func New(scheme *couplingscheme.CouplingScheme, registry *couplingdata.Registry, byName map[string]couplingdata.Key) *Interface {
	return &Interface{scheme: scheme, registry: registry, byName: byName}
}

// Initialize runs the coupling scheme's startup exchange.
func (a *Interface) Initialize() error {
	return a.scheme.Initialize()
}

// Advance steps the coupling scheme by computedDt, the solver's own
// just-completed time step, returning the maximum dt it may take next.
func (a *Interface) Advance(computedDt float64) (float64, error) {
	return a.scheme.Advance(computedDt)
}

// Finalize ends the coupled run.
func (a *Interface) Finalize() {
	a.scheme.Finalize()
}

func (a *Interface) IsCouplingOngoing() bool {
	return a.scheme.IsCouplingOngoing()
}

func (a *Interface) IsTimeWindowComplete() bool {
	return a.scheme.IsTimeWindowComplete()
}

func (a *Interface) IsActionRequired(tag couplingscheme.ActionTag) bool {
	return a.scheme.IsActionRequired(tag)
}

func (a *Interface) MarkActionFulfilled(tag couplingscheme.ActionTag) {
	a.scheme.MarkActionFulfilled(tag)
}

// WriteBlockVectorData stages values for dataName, to be sent on the
// next exchange. values is vertex-major, length |vertices| * dimension.
func (a *Interface) WriteBlockVectorData(dataName string, values []float64) error {
	cd, err := a.resolve(dataName)
	if err != nil {
		return err
	}
	copy(cd.NewValues, values)
	return nil
}

// ReadBlockVectorData returns the live values for dataName: received
// values become visible here once a window commit swaps them in.
func (a *Interface) ReadBlockVectorData(dataName string) ([]float64, error) {
	cd, err := a.resolve(dataName)
	if err != nil {
		return nil, err
	}
	return cd.Values(), nil
}

func (a *Interface) resolve(dataName string) (*couplingdata.CouplingData, error) {
	key, ok := a.byName[dataName]
	if !ok {
		return nil, types.UsageError("unknown data name " + dataName)
	}
	cd, ok := a.registry.Get(key)
	if !ok {
		return nil, types.UsageError("data name " + dataName + " not registered")
	}
	return cd, nil
}
