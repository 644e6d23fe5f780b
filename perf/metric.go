package perf

import (
	"errors"
	"fmt"
)

// ErrNoConvergence reports that the XIRR root finder ran out of iterations
// before converging. Distinct from an undefined metric: non-convergence is
// an error, not a value.
var ErrNoConvergence = errors.New("root finder did not converge")

// Metric is the result of a return calculation: either a defined ratio or
// the explicit "undefined" sentinel produced by empty-window and
// division-by-zero conditions. Undefined is not zero and survives
// aggregation unchanged.
type Metric struct {
	defined bool
	value   float64
}

func UndefinedMetric() Metric {
	return Metric{}
}

func DefinedMetric(v float64) Metric {
	return Metric{defined: true, value: v}
}

func (m Metric) IsDefined() bool {
	return m.defined
}

// Value returns the ratio. Only meaningful when IsDefined.
func (m Metric) Value() float64 {
	return m.value
}

func (m Metric) String() string {
	if !m.defined {
		return "-"
	}
	return fmt.Sprintf("%.4f%%", m.value*100)
}
