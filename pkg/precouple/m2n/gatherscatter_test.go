package m2n

import (
	"errors"
	"testing"

	"github.com/jabolina/precouple/pkg/precouple/definition"
	"github.com/jabolina/precouple/pkg/precouple/intracomm"
)

// channelTransport is a minimal transport.Transport double backed by Go
// channels, for exercising GatherScatter and PointToPoint without a
// socket. Only the primitives those two callers actually use are wired;
// anything else errors loudly so a missing wire-up is obvious.
type channelTransport struct {
	ints    chan int32
	doubles chan []float64
}

func newChannelTransportPair() (a, b *channelTransport) {
	ints := make(chan int32, 64)
	doubles := make(chan []float64, 64)
	return &channelTransport{ints: ints, doubles: doubles}, &channelTransport{ints: ints, doubles: doubles}
}

func (c *channelTransport) SendInt(v int32) error      { c.ints <- v; return nil }
func (c *channelTransport) ReceiveInt() (int32, error) { return <-c.ints, nil }

func (c *channelTransport) SendDoubleArray(v []float64) error {
	c.doubles <- append([]float64(nil), v...)
	return nil
}
func (c *channelTransport) ReceiveDoubleArray() ([]float64, error) { return <-c.doubles, nil }

func (c *channelTransport) SendDouble(float64) error          { return errors.New("unused") }
func (c *channelTransport) ReceiveDouble() (float64, error)   { return 0, errors.New("unused") }
func (c *channelTransport) SendBool(bool) error               { return errors.New("unused") }
func (c *channelTransport) ReceiveBool() (bool, error)        { return false, errors.New("unused") }
func (c *channelTransport) SendString(string) error           { return errors.New("unused") }
func (c *channelTransport) ReceiveString() (string, error)    { return "", errors.New("unused") }
func (c *channelTransport) SendIntArray([]int32) error        { return errors.New("unused") }
func (c *channelTransport) ReceiveIntArray() ([]int32, error) { return nil, errors.New("unused") }
func (c *channelTransport) Close() error                      { return nil }

func newTestLogMetrics() (definition.Logger, *definition.Metrics) {
	return definition.NewDefaultLogger(), nil
}

func TestGatherScatter_SingleRankRoundTripsThroughPeerMaster(t *testing.T) {
	group := intracomm.NewLocalGroup(1)
	peerA, peerB := newChannelTransportPair()
	log, metrics := newTestLogMetrics()

	sender := NewGatherScatter(group[0], peerA, []int{1}, "Force", log, metrics)
	receiver := NewGatherScatter(group[0], peerB, []int{1}, "Force", log, metrics)

	errs := make(chan error, 1)
	go func() { errs <- sender.Send([]float64{1, 2}, 2) }()

	got, err := receiver.Receive(2)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := <-errs; err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected received values %v", got)
	}
}

func TestGatherScatter_DimensionMismatchOnReceiveErrors(t *testing.T) {
	group := intracomm.NewLocalGroup(1)
	peerA, peerB := newChannelTransportPair()
	log, metrics := newTestLogMetrics()

	sender := NewGatherScatter(group[0], peerA, []int{1}, "Force", log, metrics)
	receiver := NewGatherScatter(group[0], peerB, []int{1}, "Force", log, metrics)

	errs := make(chan error, 1)
	go func() { errs <- sender.Send([]float64{1}, 1) }()

	if _, err := receiver.Receive(2); err == nil {
		t.Fatalf("expected a dimension mismatch error")
	}
	<-errs
}
