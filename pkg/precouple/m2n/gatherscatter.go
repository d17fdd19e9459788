package m2n

import (
	"github.com/jabolina/precouple/pkg/precouple/definition"
	"github.com/jabolina/precouple/pkg/precouple/intracomm"
	"github.com/jabolina/precouple/pkg/precouple/transport"
	"github.com/jabolina/precouple/pkg/precouple/types"
)

// GatherScatter implements DistributedCommunication by funneling every
// exchange through the two participants' masters:
// secondary ranks send their local slice to their own master via
// IntraComm, the master serializes in global-index order and forwards
// one array to the peer's master, which scatters it back out.
//
// Global-index ordering falls out for free here: the partition
// subsystem's invariant (VertexDistribution[rank] lists local indices
// in ascending order, vertexOffsets is the prefix sum of owned counts)
// means IntraComm.Gather's rank-ordered concatenation already equals
// global-index order, so no extra bookkeeping is needed in the hot
// path.
type GatherScatter struct {
	comm       intracomm.IntraComm
	peer       transport.Transport // only valid (non-nil) on the master rank
	ownedCount []int               // per-rank owned vertex count, rank-ordered
	dataName   string
	log        definition.Logger
	metrics    *definition.Metrics
}

// NewGatherScatter builds a GatherScatter exchange. ownedCount must list
// every rank's owned-vertex count, in rank order (as produced by the
// partition subsystem's VertexDistribution).
func NewGatherScatter(comm intracomm.IntraComm, peer transport.Transport, ownedCount []int, dataName string, log definition.Logger, metrics *definition.Metrics) *GatherScatter {
	return &GatherScatter{comm: comm, peer: peer, ownedCount: ownedCount, dataName: dataName, log: log, metrics: metrics}
}

func (g *GatherScatter) Send(values []float64, dim int) error {
	gathered, err := g.comm.Gather(values)
	if err != nil {
		return err
	}
	if !g.comm.IsMaster() {
		return nil
	}
	if err := g.peer.SendInt(int32(dim)); err != nil {
		return err
	}
	if err := g.peer.SendDoubleArray(gathered); err != nil {
		return err
	}
	g.metrics.ExchangeSent(g.dataName)
	g.log.Debugf("gatherscatter send %s: %d values", g.dataName, len(gathered))
	return nil
}

func (g *GatherScatter) Receive(dim int) ([]float64, error) {
	var global []float64
	if g.comm.IsMaster() {
		wireDim, err := g.peer.ReceiveInt()
		if err != nil {
			return nil, err
		}
		if int(wireDim) != dim {
			return nil, types.ProtocolError(g.dataName, g.comm.Rank(), "dimension mismatch on receive")
		}
		global, err = g.peer.ReceiveDoubleArray()
		if err != nil {
			return nil, err
		}
	}
	sizes := make([]int, len(g.ownedCount))
	for i, c := range g.ownedCount {
		sizes[i] = c * dim
	}
	scattered, err := g.comm.Scatter(global, sizes)
	if err != nil {
		return nil, err
	}
	g.metrics.ExchangeReceived(g.dataName)
	g.log.Debugf("gatherscatter receive %s: %d values", g.dataName, len(scattered))
	return scattered, nil
}
