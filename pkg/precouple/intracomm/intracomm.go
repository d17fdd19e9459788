// Package intracomm implements the collective operations over the ranks
// of a single participant: broadcast, gather, scatter, reduce, with rank
// 0 as master driving each round and every other rank responding.
package intracomm

import (
	"sync"

	"github.com/jabolina/precouple/pkg/precouple/types"
)

// ReduceOp names the associative operator applied by Reduce.
type ReduceOp int

const (
	// Sum adds all rank values together.
	Sum ReduceOp = iota
	// Max keeps the largest rank value.
	Max
	// Min keeps the smallest rank value.
	Min
)

// IntraComm is the collective-operations contract within one
// participant's rank group. Every call is a synchronizing barrier: the
// caller guarantees all ranks invoke the same collective, in the same
// order.
type IntraComm interface {
	Rank() int
	Size() int
	IsMaster() bool

	// Broadcast sends value from the master to every rank; every rank,
	// including the master, returns the broadcast value.
	Broadcast(value []float64) ([]float64, error)

	// Reduce combines each rank's value with op and returns the result
	// on every rank.
	Reduce(value float64, op ReduceOp) (float64, error)

	// Gather concatenates every rank's slice, in rank order, returning
	// the result on the master only; other ranks get nil.
	Gather(value []float64) ([]float64, error)

	// Scatter splits value (valid on the master only) into the sizes
	// named by sizes, in rank order, and hands rank i its slice.
	Scatter(value []float64, sizes []int) ([]float64, error)
}

// LocalIntraComm is an in-process IntraComm: every rank in the group
// runs as a goroutine, and the ranks meet at one mutex/condition-variable
// barrier held by rank 0. It is the
// implementation used by a single OS process running a whole
// participant's rank group (the common case for tests and small runs);
// a multi-process IntraComm would swap the shared barrier below for a
// Transport per rank pair, the collectives' logic is unchanged.
type LocalIntraComm struct {
	rank  int
	peers []*LocalIntraComm

	// barrier synchronizes one collective round across every rank
	// sharing this group.
	barrier *collectiveBarrier
}

type collectiveBarrier struct {
	mutex sync.Mutex
	cond  *sync.Cond
	// round counts the ranks that have yet to read a completed round;
	// while it is above zero no rank may deposit for the next round.
	round int
	// slot holds the per-round inputs, indexed by rank, and is read by
	// the master once every rank has deposited its value.
	slot map[int][]float64
}

func newBarrier() *collectiveBarrier {
	b := &collectiveBarrier{slot: make(map[int][]float64)}
	b.cond = sync.NewCond(&b.mutex)
	return b
}

// NewLocalGroup builds size LocalIntraComm handles, one per rank,
// sharing a synchronization barrier.
func NewLocalGroup(size int) []*LocalIntraComm {
	group := make([]*LocalIntraComm, size)
	for i := range group {
		group[i] = &LocalIntraComm{rank: i}
	}
	if size > 0 {
		group[0].barrier = newBarrier()
	}
	for _, g := range group {
		g.peers = group
	}
	return group
}

func (l *LocalIntraComm) Rank() int     { return l.rank }
func (l *LocalIntraComm) Size() int     { return len(l.peers) }
func (l *LocalIntraComm) IsMaster() bool { return l.rank == 0 }

// deposit blocks until every rank in the group has deposited a value
// for the current round, then returns the full, rank-ordered slice.
func (l *LocalIntraComm) deposit(value []float64) [][]float64 {
	master := l.peers[0]
	b := master.groupBarrier()

	b.mutex.Lock()
	for b.round > 0 {
		b.cond.Wait()
	}
	b.slot[l.rank] = value
	if len(b.slot) == len(l.peers) {
		b.round = len(l.peers)
		b.cond.Broadcast()
	} else {
		for b.round == 0 {
			b.cond.Wait()
		}
	}
	out := make([][]float64, len(l.peers))
	for i := range out {
		out[i] = b.slot[i]
	}
	b.mutex.Unlock()

	// Last one out resets the slot for the next collective round.
	l.barrierReset(b)
	return out
}

func (l *LocalIntraComm) groupBarrier() *collectiveBarrier {
	master := l.peers[0]
	if master.barrier == nil {
		master.barrier = newBarrier()
	}
	return master.barrier
}

func (l *LocalIntraComm) barrierReset(b *collectiveBarrier) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.round--
	if b.round == 0 {
		b.slot = make(map[int][]float64)
		b.cond.Broadcast()
	}
}

func (l *LocalIntraComm) Broadcast(value []float64) ([]float64, error) {
	var payload []float64
	if l.IsMaster() {
		payload = value
	}
	all := l.deposit(payload)
	return all[0], nil
}

func (l *LocalIntraComm) Reduce(value float64, op ReduceOp) (float64, error) {
	all := l.deposit([]float64{value})
	result := all[0][0]
	for _, v := range all[1:] {
		result = combine(result, v[0], op)
	}
	return result, nil
}

func combine(a, b float64, op ReduceOp) float64 {
	switch op {
	case Sum:
		return a + b
	case Max:
		if b > a {
			return b
		}
		return a
	case Min:
		if b < a {
			return b
		}
		return a
	default:
		return a
	}
}

func (l *LocalIntraComm) Gather(value []float64) ([]float64, error) {
	all := l.deposit(value)
	if !l.IsMaster() {
		return nil, nil
	}
	var out []float64
	for _, v := range all {
		out = append(out, v...)
	}
	return out, nil
}

func (l *LocalIntraComm) Scatter(value []float64, sizes []int) ([]float64, error) {
	if len(sizes) != len(l.peers) {
		return nil, types.ConfigError("scatter sizes length must equal group size")
	}
	var payload []float64
	if l.IsMaster() {
		payload = value
	}
	all := l.deposit(payload)
	master := all[0]
	offset := 0
	for i := 0; i < l.rank; i++ {
		offset += sizes[i]
	}
	return append([]float64(nil), master[offset:offset+sizes[l.rank]]...), nil
}
