// Command precouple-demo runs two coupled participants in one process,
// wiring a Fluid and a Structure solver together over an in-process
// DistributedCommunication. It exists to exercise the full
// initialize/advance/finalize loop end to end without a second process
// or a real socket.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jabolina/precouple/pkg/precouple/api"
	"github.com/jabolina/precouple/pkg/precouple/couplingdata"
	"github.com/jabolina/precouple/pkg/precouple/couplingscheme"
	"github.com/jabolina/precouple/pkg/precouple/definition"
	"github.com/jabolina/precouple/pkg/precouple/m2n"
	"github.com/jabolina/precouple/pkg/precouple/types"
)

func main() {
	windows := flag.Int("windows", 5, "number of time windows to run")
	dt := flag.Float64("dt", 0.1, "time window size")
	implicit := flag.Bool("implicit", false, "run a serial-implicit scheme with a relative convergence measure")
	maxIterations := flag.Int("max-iterations", 20, "max sub-iterations per window when -implicit")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	log := definition.NewDefaultLogger()
	if *verbose {
		log.ToggleDebug(true)
	}
	metrics := definition.NewMetrics()

	fluidComm, structureComm := m2n.NewInProcessPair()

	fluidIface, fluidScheme := buildParticipant(couplingscheme.FirstParticipant, *implicit, *dt, *windows, *maxIterations, fluidComm, log.With(map[string]interface{}{"participant": "Fluid"}), metrics)
	structureIface, structureScheme := buildParticipant(couplingscheme.SecondParticipant, *implicit, *dt, *windows, *maxIterations, structureComm, log.With(map[string]interface{}{"participant": "Structure"}), metrics)

	if *implicit {
		verdictFromStructure, verdictToFluid := newVerdictPair()
		fluidScheme.Verdict = verdictToFluid
		structureScheme.Verdict = verdictFromStructure
	}

	if err := fluidIface.Initialize(); err != nil {
		fatal(log, "Fluid.Initialize", err)
	}
	if err := structureIface.Initialize(); err != nil {
		fatal(log, "Structure.Initialize", err)
	}

	for fluidIface.IsCouplingOngoing() {
		errs := make(chan error, 2)
		go func() { _, err := fluidIface.Advance(*dt); errs <- err }()
		go func() { _, err := structureIface.Advance(*dt); errs <- err }()
		for i := 0; i < 2; i++ {
			if err := <-errs; err != nil {
				fatal(log, "Advance", err)
			}
		}

		if fluidIface.IsTimeWindowComplete() {
			force, err := structureIface.ReadBlockVectorData("Force")
			if err != nil {
				fatal(log, "ReadBlockVectorData(Force)", err)
			}
			displacement, err := fluidIface.ReadBlockVectorData("Displacement")
			if err != nil {
				fatal(log, "ReadBlockVectorData(Displacement)", err)
			}
			fmt.Printf("window %d: force=%v displacement=%v\n", fluidScheme.Window, force, displacement)
		}
	}

	fluidIface.Finalize()
	structureIface.Finalize()
}

// buildParticipant assembles one side's Mesh, Data, CouplingData
// registry and CouplingScheme. The Fluid side writes Force and reads
// Displacement; the Structure side is the mirror image.
func buildParticipant(role couplingscheme.Role, implicit bool, dt float64, windows, maxIterations int, comm m2n.DistributedCommunication, log definition.Logger, metrics *definition.Metrics) (*api.Interface, *couplingscheme.CouplingScheme) {
	schemeType := couplingscheme.Explicit
	if implicit {
		schemeType = couplingscheme.Implicit
	}

	mesh, err := types.NewMesh("Mesh", 2)
	if err != nil {
		panic(err)
	}
	if _, err := mesh.AddVertex([]float64{0, 0}); err != nil {
		panic(err)
	}
	force := types.NewData("Force", 1)
	displacement := types.NewData("Displacement", 1)
	mesh.AddData(force)
	mesh.AddData(displacement)
	mesh.AllocateDataValues()

	reg := couplingdata.NewRegistry()
	forceData := reg.Register(mesh, force, false)
	displacementData := reg.Register(mesh, displacement, false)

	scheme := couplingscheme.New(role, schemeType, couplingscheme.Serial, dt, windows, float64(maxIterations), 0, log, metrics)

	if role == couplingscheme.FirstParticipant {
		forceData.Data.Values[0] = 1.0
		scheme.Exchanges = []couplingscheme.Exchange{
			{Name: "Force", Data: forceData, Comm: comm, Dimension: 1, Send: true},
			{Name: "Displacement", Data: displacementData, Comm: comm, Dimension: 1, Send: false},
		}
	} else {
		displacementData.Data.Values[0] = 0.05
		scheme.Exchanges = []couplingscheme.Exchange{
			{Name: "Force", Data: forceData, Comm: comm, Dimension: 1, Send: false},
			{Name: "Displacement", Data: displacementData, Comm: comm, Dimension: 1, Send: true},
		}
		if implicit {
			scheme.Measures = []couplingscheme.ConvergenceMeasure{
				couplingscheme.RelativeMeasure{Limit: 1e-6, Field: displacementData},
			}
		}
	}

	byName := map[string]couplingdata.Key{
		"Force":        forceData.Key,
		"Displacement": displacementData.Key,
	}
	return api.New(scheme, reg, byName), scheme
}

// channelVerdict implements couplingscheme.VerdictChannel over a single
// buffered bool channel, the one-bit convergence broadcast the Second
// participant sends the First each sub-iteration.
type channelVerdict struct {
	out chan<- bool
	in  <-chan bool
}

// newVerdictPair returns (sender, receiver): sender's SendBool delivers
// to receiver's ReceiveBool.
func newVerdictPair() (sender, receiver *channelVerdict) {
	ch := make(chan bool, 4)
	return &channelVerdict{out: ch}, &channelVerdict{in: ch}
}

func (c *channelVerdict) SendBool(v bool) error {
	c.out <- v
	return nil
}

func (c *channelVerdict) ReceiveBool() (bool, error) {
	return <-c.in, nil
}

func fatal(log definition.Logger, op string, err error) {
	log.Errorf("%s: %v", op, err)
	os.Exit(1)
}
