package intracomm

import (
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestLocalIntraComm_BroadcastDeliversMasterValueToEveryRank(t *testing.T) {
	defer goleak.VerifyNone(t)
	group := NewLocalGroup(3)

	var wg sync.WaitGroup
	results := make([][]float64, 3)
	errs := make([]error, 3)
	for i, rank := range group {
		wg.Add(1)
		go func(i int, rank *LocalIntraComm) {
			defer wg.Done()
			var in []float64
			if rank.IsMaster() {
				in = []float64{1, 2, 3}
			}
			results[i], errs[i] = rank.Broadcast(in)
		}(i, rank)
	}
	wg.Wait()

	for i := range group {
		if errs[i] != nil {
			t.Fatalf("rank %d: Broadcast: %v", i, errs[i])
		}
		if len(results[i]) != 3 || results[i][0] != 1 || results[i][2] != 3 {
			t.Fatalf("rank %d: expected [1 2 3], got %v", i, results[i])
		}
	}
}

func TestLocalIntraComm_ReduceSumCombinesEveryRank(t *testing.T) {
	defer goleak.VerifyNone(t)
	group := NewLocalGroup(4)

	var wg sync.WaitGroup
	results := make([]float64, 4)
	for i, rank := range group {
		wg.Add(1)
		go func(i int, rank *LocalIntraComm) {
			defer wg.Done()
			v, err := rank.Reduce(float64(i+1), Sum)
			if err != nil {
				t.Errorf("rank %d: Reduce: %v", i, err)
			}
			results[i] = v
		}(i, rank)
	}
	wg.Wait()

	for i, v := range results {
		if v != 10 {
			t.Fatalf("rank %d: expected sum 10, got %v", i, v)
		}
	}
}

func TestLocalIntraComm_GatherConcatenatesInRankOrderOnMasterOnly(t *testing.T) {
	defer goleak.VerifyNone(t)
	group := NewLocalGroup(3)

	var wg sync.WaitGroup
	results := make([][]float64, 3)
	for i, rank := range group {
		wg.Add(1)
		go func(i int, rank *LocalIntraComm) {
			defer wg.Done()
			v, err := rank.Gather([]float64{float64(i)})
			if err != nil {
				t.Errorf("rank %d: Gather: %v", i, err)
			}
			results[i] = v
		}(i, rank)
	}
	wg.Wait()

	if results[0][0] != 0 || results[0][1] != 1 || results[0][2] != 2 {
		t.Fatalf("expected master to see [0 1 2], got %v", results[0])
	}
	if results[1] != nil || results[2] != nil {
		t.Fatalf("expected non-master ranks to get nil, got %v, %v", results[1], results[2])
	}
}

func TestLocalIntraComm_ScatterSplitsMasterValueBySizes(t *testing.T) {
	defer goleak.VerifyNone(t)
	group := NewLocalGroup(3)
	sizes := []int{1, 2, 1}

	var wg sync.WaitGroup
	results := make([][]float64, 3)
	for i, rank := range group {
		wg.Add(1)
		go func(i int, rank *LocalIntraComm) {
			defer wg.Done()
			var in []float64
			if rank.IsMaster() {
				in = []float64{10, 20, 21, 30}
			}
			v, err := rank.Scatter(in, sizes)
			if err != nil {
				t.Errorf("rank %d: Scatter: %v", i, err)
			}
			results[i] = v
		}(i, rank)
	}
	wg.Wait()

	if len(results[0]) != 1 || results[0][0] != 10 {
		t.Fatalf("rank 0: expected [10], got %v", results[0])
	}
	if len(results[1]) != 2 || results[1][0] != 20 || results[1][1] != 21 {
		t.Fatalf("rank 1: expected [20 21], got %v", results[1])
	}
	if len(results[2]) != 1 || results[2][0] != 30 {
		t.Fatalf("rank 2: expected [30], got %v", results[2])
	}
}

func TestLocalIntraComm_ScatterWrongSizesLengthErrors(t *testing.T) {
	group := NewLocalGroup(2)
	if _, err := group[0].Scatter(nil, []int{1, 2, 3}); err == nil {
		t.Fatalf("expected an error when sizes length does not match group size")
	}
}
