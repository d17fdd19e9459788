package couplingscheme

import "math"

// ConvergenceMeasure decides whether one exchanged field has stabilized
// enough, across the current sub-iteration's residual against the
// previous one, for an implicit window to commit. A scheme's overall
// convergence is the conjunction of every configured measure.
type ConvergenceMeasure interface {
	Satisfied() bool
}

// residualNorm is the shared L2-norm-of-difference helper every measure
// below reduces to, mirroring m2n's accumulate/L2Norm reasoning.
func residualNorm(current, previous []float64) float64 {
	var sum float64
	n := len(current)
	if len(previous) < n {
		n = len(previous)
	}
	for i := 0; i < n; i++ {
		d := current[i] - previous[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func norm(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// source is implemented by anything a ConvergenceMeasure can read a
// field's current and previous-iteration values from, so measures don't
// need to import couplingdata directly.
type source interface {
	IterationValues() []float64
	PreviousIterationValues() []float64
}

// AbsoluteMeasure is satisfied when ||current - previous|| <= Limit.
type AbsoluteMeasure struct {
	Field source
	Limit float64
}

func (m AbsoluteMeasure) Satisfied() bool {
	return residualNorm(m.Field.IterationValues(), m.Field.PreviousIterationValues()) <= m.Limit
}

// RelativeMeasure is satisfied when ||current - previous|| / ||current|| <= Limit.
type RelativeMeasure struct {
	Field source
	Limit float64
}

func (m RelativeMeasure) Satisfied() bool {
	current := m.Field.IterationValues()
	denom := norm(current)
	if denom == 0 {
		return residualNorm(current, m.Field.PreviousIterationValues()) == 0
	}
	return residualNorm(current, m.Field.PreviousIterationValues())/denom <= m.Limit
}

// ResidualRelativeMeasure is satisfied when the residual norm has
// shrunk by at least Limit relative to the first iteration's residual
// norm in the current window. FirstResidual is reset (by the caller)
// to 0 at the start of every window and latched on the first
// evaluation.
type ResidualRelativeMeasure struct {
	Field         source
	Limit         float64
	FirstResidual *float64
}

func (m ResidualRelativeMeasure) Satisfied() bool {
	r := residualNorm(m.Field.IterationValues(), m.Field.PreviousIterationValues())
	if *m.FirstResidual == 0 {
		*m.FirstResidual = r
		return false
	}
	return r/(*m.FirstResidual) <= m.Limit
}

// MinIterationsMeasure forces at least MinIterations sub-iterations
// before any other measure is allowed to commit a window early.
type MinIterationsMeasure struct {
	Scheme        *CouplingScheme
	MinIterations int
}

func (m MinIterationsMeasure) Satisfied() bool {
	return m.Scheme.Iteration >= m.MinIterations
}
