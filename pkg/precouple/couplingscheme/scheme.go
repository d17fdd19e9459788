// Package couplingscheme implements the CouplingScheme state machine,
// the heart of the coupling protocol: time window advancement, the
// convergence test loop, sub-iteration buffering, and
// checkpoint/restore of solver state. The dispatch loop follows the
// same shape throughout: advance() is called by the solver, dispatches
// by (role, type, discipline), exchanges data, evaluates convergence,
// then commits or rolls back.
package couplingscheme

import (
	"github.com/jabolina/precouple/pkg/precouple/couplingdata"
	"github.com/jabolina/precouple/pkg/precouple/definition"
	"github.com/jabolina/precouple/pkg/precouple/m2n"
	"github.com/jabolina/precouple/pkg/precouple/types"
)

// Role distinguishes the two participants of a coupled pair. The
// protocol's serial disciplines are asymmetric (first sends before
// second), so every scheme instance is configured with exactly one.
type Role int

const (
	FirstParticipant Role = iota
	SecondParticipant
)

// SchemeType selects whether a time window commits unconditionally
// (Explicit) or iterates a convergence loop before committing
// (Implicit).
type SchemeType int

const (
	Explicit SchemeType = iota
	Implicit
)

// Discipline selects whether participants exchange one after another
// (Serial) or concurrently in one round-trip (Parallel).
type Discipline int

const (
	Serial Discipline = iota
	Parallel
)

// State is the coupling scheme's lifecycle position.
type State int

const (
	Uninitialized State = iota
	Initialized
	Advancing
	Finalized
)

// VerdictChannel is the minimal transport slice the second participant
// uses to broadcast its convergence verdict to the first, avoiding
// drift between the two sides' convergence bookkeeping.
// transport.Transport satisfies this.
type VerdictChannel interface {
	SendBool(v bool) error
	ReceiveBool() (bool, error)
}

// Exchange is one configured data transfer in one direction within a
// window. Send is true when this
// participant is the sender for this exchange.
type Exchange struct {
	Name       string
	Data       *couplingdata.CouplingData
	Comm       m2n.DistributedCommunication
	Dimension  int
	Constraint m2n.Constraint
	Send       bool
}

// ActionTag names a required solver-visible action, e.g. "write initial
// data" such as writing or reading initial values.
type ActionTag string

const (
	ActionWriteInitialData ActionTag = "write-initial-data"
	ActionReadInitialData  ActionTag = "read-initial-data"
)

// CouplingScheme is the protocol state machine. One instance runs per
// participant per coupled pair.
type CouplingScheme struct {
	Role       Role
	Type       SchemeType
	Discipline Discipline

	T             float64
	Window        int
	Iteration     int
	Dt            float64
	MaxWindows    int
	MaxIterations float64 // may be +Inf for "no bound configured"
	TEnd          float64

	Exchanges []Exchange
	Measures  []ConvergenceMeasure
	Verdict   VerdictChannel

	state State

	subcycleElapsed float64
	windowComplete  bool
	requiredActions map[ActionTag]bool

	log     definition.Logger
	metrics *definition.Metrics
}

// New builds a CouplingScheme in the Uninitialized state.
func New(role Role, typ SchemeType, discipline Discipline, dt float64, maxWindows int, maxIterations float64, tEnd float64, log definition.Logger, metrics *definition.Metrics) *CouplingScheme {
	return &CouplingScheme{
		Role:            role,
		Type:            typ,
		Discipline:      discipline,
		Dt:              dt,
		MaxWindows:      maxWindows,
		MaxIterations:   maxIterations,
		TEnd:            tEnd,
		Iteration:       1,
		requiredActions: make(map[ActionTag]bool),
		log:             log,
		metrics:         metrics,
	}
}

// Initialize exchanges initial data for fields flagged Initialize=true,
// resets window/iteration, and transitions Uninitialized -> Initialized.
func (s *CouplingScheme) Initialize() error {
	if s.state != Uninitialized {
		return types.ProtocolError("", 0, "Initialize called out of order")
	}
	any := false
	for _, ex := range s.Exchanges {
		if !ex.Data.Initialize {
			continue
		}
		any = true
		if err := s.runExchange(ex); err != nil {
			return err
		}
	}
	if any {
		s.requiredActions[ActionWriteInitialData] = true
	}
	s.Window = 0
	s.Iteration = 1
	s.state = Initialized
	return nil
}

// Advance is invoked by the solver once its internal step over a
// sub-cycle dt completes. It returns the maximum dt the solver may take
// next (Dt minus however much of the current window's sub-cycle budget
// has already elapsed).
func (s *CouplingScheme) Advance(computedDt float64) (float64, error) {
	if s.state != Initialized && s.state != Advancing {
		return 0, types.ProtocolError("", 0, "Advance called out of order")
	}
	s.state = Advancing
	s.subcycleElapsed += computedDt
	s.windowComplete = s.subcycleElapsed >= s.Dt-1e-12

	if !s.windowComplete {
		return s.Dt - s.subcycleElapsed, nil
	}

	s.subcycleElapsed = 0

	converged, err := s.exchangeAndCheck()
	if err != nil {
		return 0, err
	}

	if s.Type == Explicit || converged || float64(s.Iteration) >= s.MaxIterations {
		s.commit(converged)
	} else {
		s.rollback()
	}

	if s.Window >= s.MaxWindows || s.T >= s.TEnd && s.TEnd > 0 {
		s.state = Finalized
	}

	return s.Dt, nil
}

// Finalize transitions the scheme to Finalized. Idempotent.
func (s *CouplingScheme) Finalize() {
	s.state = Finalized
}

func (s *CouplingScheme) IsCouplingOngoing() bool {
	return s.state != Finalized
}

func (s *CouplingScheme) IsTimeWindowComplete() bool {
	return s.windowComplete
}

func (s *CouplingScheme) IsActionRequired(tag ActionTag) bool {
	return s.requiredActions[tag]
}

func (s *CouplingScheme) MarkActionFulfilled(tag ActionTag) {
	delete(s.requiredActions, tag)
}

// exchangeAndCheck runs the send/receive orchestration for the
// configured (role, discipline) pair, then — for Implicit schemes —
// evaluates convergence and synchronizes the verdict between
// participants.
func (s *CouplingScheme) exchangeAndCheck() (bool, error) {
	switch s.Discipline {
	case Parallel:
		if err := s.runAllConcurrently(); err != nil {
			return false, err
		}
	case Serial:
		if err := s.runSerial(); err != nil {
			return false, err
		}
	}

	if s.Type == Explicit {
		return true, nil
	}
	if s.Iteration == 1 {
		s.resetResidualLatches()
	}
	return s.evaluateAndSyncConvergence()
}

// resetResidualLatches zeroes every ResidualRelativeMeasure's first-
// iteration baseline at the start of a window, so each window's
// convergence is judged against its own initial residual rather than
// the previous window's.
func (s *CouplingScheme) resetResidualLatches() {
	for _, m := range s.Measures {
		if rr, ok := m.(ResidualRelativeMeasure); ok {
			*rr.FirstResidual = 0
		}
	}
}

// runAllConcurrently sends then receives every configured exchange in
// one round (Parallel discipline): both participants write first, then
// both read, matching the "no ordering dependency between
// participants" description.
func (s *CouplingScheme) runAllConcurrently() error {
	for _, ex := range s.Exchanges {
		if ex.Send {
			if err := s.runExchange(ex); err != nil {
				return err
			}
		}
	}
	for _, ex := range s.Exchanges {
		if !ex.Send {
			if err := s.runExchange(ex); err != nil {
				return err
			}
		}
	}
	return nil
}

// runSerial orders the exchange by role: the first participant's sends
// happen, then the second's — mirroring serial schemes where
// the first participant sends, the second computes and sends back, and
// the first receives.
func (s *CouplingScheme) runSerial() error {
	if s.Role == FirstParticipant {
		for _, ex := range s.Exchanges {
			if ex.Send {
				if err := s.runExchange(ex); err != nil {
					return err
				}
			}
		}
		for _, ex := range s.Exchanges {
			if !ex.Send {
				if err := s.runExchange(ex); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, ex := range s.Exchanges {
		if !ex.Send {
			if err := s.runExchange(ex); err != nil {
				return err
			}
		}
	}
	for _, ex := range s.Exchanges {
		if ex.Send {
			if err := s.runExchange(ex); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *CouplingScheme) runExchange(ex Exchange) error {
	if ex.Send {
		return ex.Comm.Send(ex.Data.Values(), ex.Dimension)
	}
	ex.Data.CaptureIteration()
	received, err := ex.Comm.Receive(ex.Dimension)
	if err != nil {
		return err
	}
	copy(ex.Data.NewValues, received)
	return nil
}

// evaluateAndSyncConvergence runs every configured ConvergenceMeasure
// (conjunction: all must hold) on the second participant, then
// broadcasts the one-bit verdict to the first so both sides agree
// without drift.
func (s *CouplingScheme) evaluateAndSyncConvergence() (bool, error) {
	if s.Role == SecondParticipant {
		converged := s.allMeasuresSatisfied()
		if s.Verdict != nil {
			if err := s.Verdict.SendBool(converged); err != nil {
				return false, err
			}
		}
		return converged, nil
	}
	if s.Verdict == nil {
		return s.allMeasuresSatisfied(), nil
	}
	return s.Verdict.ReceiveBool()
}

func (s *CouplingScheme) allMeasuresSatisfied() bool {
	for _, m := range s.Measures {
		if !m.Satisfied() {
			return false
		}
	}
	return true
}

// commit swaps every CouplingData's staged values into the live buffer,
// advances time/window/iteration, and re-checkpoints for the next
// window's possible rollback. T only moves forward here: a rejected
// iteration must leave the solver at the same t it started from.
func (s *CouplingScheme) commit(converged bool) {
	for _, ex := range s.Exchanges {
		ex.Data.Swap()
		ex.Data.Store()
	}
	s.T += s.Dt
	s.metrics.WindowCommitted(s.Iteration, converged)
	s.Window++
	s.Iteration = 1
}

// rollback restores every CouplingData to the last checkpoint and
// increments the iteration counter without advancing time.
func (s *CouplingScheme) rollback() {
	for _, ex := range s.Exchanges {
		ex.Data.Restore()
	}
	s.Iteration++
}
