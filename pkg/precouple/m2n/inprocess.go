package m2n

// InProcess implements DistributedCommunication over a pair of Go
// channels, for coupled runs where both participants' masters live in
// the same process (single-process demos, and tests that don't need a
// socket Transport underneath). No resequencing or accumulation
// happens here: InProcess is used for single-rank masters where
// GatherScatter's and PointToPoint's fan-in concerns don't arise.
type InProcess struct {
	out chan []float64
	in  chan []float64
}

// NewInProcessPair builds two InProcess ends wired to each other: values
// sent on one arrive on Receive of the other.
func NewInProcessPair() (a, b *InProcess) {
	ab := make(chan []float64, 1)
	ba := make(chan []float64, 1)
	return &InProcess{out: ab, in: ba}, &InProcess{out: ba, in: ab}
}

func (p *InProcess) Send(values []float64, dim int) error {
	p.out <- append([]float64(nil), values...)
	return nil
}

func (p *InProcess) Receive(dim int) ([]float64, error) {
	return <-p.in, nil
}
