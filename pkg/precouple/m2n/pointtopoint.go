package m2n

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jabolina/precouple/pkg/precouple/definition"
	"github.com/jabolina/precouple/pkg/precouple/transport"
)

// endOfRound is sent as a vertex global index to signal a sender has
// finished delivering this round's values on a given channel.
const endOfRound = int32(-1)

// PointToPoint implements DistributedCommunication with direct
// Transport channels between every sender rank and every receiver rank
// that needs its data, per the partition subsystem's FeedbackMap
// routing table. No master bottleneck; channel count is bounded by
// the FeedbackMap's fan-out, which in practice is limited by geometric
// locality.
//
// Out-of-order arrival is resequenced by vertex global index; duplicate
// arrivals accumulate additively for Conservative data and overwrite
// (lowest rank id wins) for Consistent data.
type PointToPoint struct {
	// channels, keyed by remote rank, to every peer this rank
	// exchanges with (senders use it to reach receivers; receivers use
	// it to read from senders).
	channels map[int]transport.Transport

	// localGlobalIndex lists, for each position in this rank's local
	// send/receive buffer, the vertex's global index.
	localGlobalIndex []int

	rank     int
	constraint Constraint
	dataName string
	log      definition.Logger
	metrics  *definition.Metrics
}

// NewPointToPoint builds a PointToPoint exchange. channels must contain
// one Transport per remote rank this rank communicates with (as a
// sender, per the FeedbackMap entry for this rank; as a receiver, one
// per expected sender). localGlobalIndex maps this rank's local vertex
// buffer positions to global vertex indices.
func NewPointToPoint(rank int, channels map[int]transport.Transport, localGlobalIndex []int, constraint Constraint, dataName string, log definition.Logger, metrics *definition.Metrics) *PointToPoint {
	return &PointToPoint{
		rank:             rank,
		channels:         channels,
		localGlobalIndex: localGlobalIndex,
		constraint:       constraint,
		dataName:         dataName,
		log:              log,
		metrics:          metrics,
	}
}

// Send delivers each local vertex's value to every rank listed for this
// sender in the FeedbackMap, then signals end-of-round on every
// channel.
func (p *PointToPoint) Send(values []float64, dim int) error {
	for remoteRank, ch := range p.channels {
		for i, globalIdx := range p.localGlobalIndex {
			if err := ch.SendInt(int32(globalIdx)); err != nil {
				return err
			}
			if err := ch.SendDoubleArray(values[i*dim : (i+1)*dim]); err != nil {
				return err
			}
		}
		if err := ch.SendInt(endOfRound); err != nil {
			return err
		}
		p.log.Debugf("p2p send %s to rank %d: %d vertices", p.dataName, remoteRank, len(p.localGlobalIndex))
	}
	p.metrics.ExchangeSent(p.dataName)
	return nil
}

// Receive blocks until every sender channel has signaled end-of-round,
// resequencing arrivals by global index and merging duplicates per the
// configured Constraint.
func (p *PointToPoint) Receive(dim int) ([]float64, error) {
	out := make([]float64, len(p.localGlobalIndex)*dim)
	localOf := make(map[int]int, len(p.localGlobalIndex))
	for i, g := range p.localGlobalIndex {
		localOf[g] = i
	}
	lastWriter := make(map[int]int)

	var mutex sync.Mutex
	var group errgroup.Group
	for remoteRank, ch := range p.channels {
		remoteRank, ch := remoteRank, ch
		group.Go(func() error {
			for {
				globalIdx, err := ch.ReceiveInt()
				if err != nil {
					return err
				}
				if globalIdx == endOfRound {
					return nil
				}
				vals, err := ch.ReceiveDoubleArray()
				if err != nil {
					return err
				}
				localIdx, ok := localOf[int(globalIdx)]
				if !ok {
					// Vertex not locally relevant on this rank (can
					// happen with a coarser peer filter); drop it.
					continue
				}
				mutex.Lock()
				accumulate(out, localIdx, dim, vals, 0, p.constraint, lastWriter, remoteRank)
				mutex.Unlock()
			}
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	p.metrics.ExchangeReceived(p.dataName)
	p.log.Debugf("p2p receive %s: %d local vertices", p.dataName, len(p.localGlobalIndex))
	return out, nil
}
