package perf

import "math"

const (
	rateSolverMaxIterations = 50
	rateSolverTolerance     = 1e-6
	daysPerYear             = 365.0
)

// SolveRate finds the annualized rate r satisfying
//
//	Σ flows[i] × (1+r)^(−(days[i]−days[0])/365) = 0
//
// by Newton-Raphson from the given initial guess. days are epoch-day
// numbers and must be ascending; by convention the first flow is the
// negated start value and the last the positive end value.
//
// Divergence (a non-positive compounding base, a flat derivative, or
// running out of iterations) returns ErrNoConvergence rather than a
// default rate.
func SolveRate(days []float64, flows []float64, guess float64) (float64, error) {
	if len(days) == 0 || len(days) != len(flows) {
		return 0, ErrNoConvergence
	}

	r := guess
	for i := 0; i < rateSolverMaxIterations; i++ {
		base := 1 + r
		if base <= 0 || math.IsNaN(base) || math.IsInf(base, 0) {
			return 0, ErrNoConvergence
		}

		f, fPrime := evalRate(days, flows, r)
		if math.Abs(f) < rateSolverTolerance {
			return r, nil
		}
		if fPrime == 0 || math.IsNaN(fPrime) {
			return 0, ErrNoConvergence
		}

		step := f / fPrime
		r -= step
		if math.Abs(step) < rateSolverTolerance {
			f, _ = evalRate(days, flows, r)
			if math.Abs(f) < rateSolverTolerance {
				return r, nil
			}
			return 0, ErrNoConvergence
		}
	}
	return 0, ErrNoConvergence
}

func evalRate(days []float64, flows []float64, r float64) (f float64, fPrime float64) {
	base := 1 + r
	for i, cf := range flows {
		t := (days[i] - days[0]) / daysPerYear
		pv := cf * math.Pow(base, -t)
		f += pv
		fPrime += pv * -t / base
	}
	return f, fPrime
}
