package perf

import (
	"math"

	"github.com/invext/invext/date"
	"github.com/invext/invext/log"
)

// OrdinaryReturn is the plain (end − start)/start value ratio over the
// window. Window policies do not apply; a zero start value is undefined.
type OrdinaryReturn struct {
	extractorBase
	cached Metric
}

func NewOrdinaryReturn(start date.Date, end date.Date) *OrdinaryReturn {
	return &OrdinaryReturn{extractorBase: newExtractorBase(start, end, PolicyDefault)}
}

func (e *OrdinaryReturn) Combine(o *OrdinaryReturn) {
	e.combineBase(&o.extractorBase)
}

func (e *OrdinaryReturn) Result() Metric {
	if !e.dirty {
		return e.cached
	}
	s := e.snapshot()
	e.cached = UndefinedMetric()
	if s.hasRecords && !s.startValue.IsZero() {
		gain := s.endValue.Sub(s.startValue)
		e.cached = DefinedMetric(gain.Div(s.startValue).InexactFloat64())
	}
	e.dirty = false
	return e.cached
}

// ModifiedDietzReturn approximates the money-weighted return without
// iterative solving, day-weighting each in-window contribution.
type ModifiedDietzReturn struct {
	extractorBase
	cached Metric
}

func NewModifiedDietzReturn(start date.Date, end date.Date, policy WindowPolicy) *ModifiedDietzReturn {
	return &ModifiedDietzReturn{extractorBase: newExtractorBase(start, end, policy)}
}

func (e *ModifiedDietzReturn) Combine(o *ModifiedDietzReturn) {
	e.combineBase(&o.extractorBase)
}

func (e *ModifiedDietzReturn) Result() Metric {
	if e.dirty {
		e.cached = modifiedDietz(e.snapshot())
		e.dirty = false
	}
	return e.cached
}

// modifiedDietz reduces a snapshot to the day-weighted return. The weight
// of a flow on date d is (intervalDays − daysBetween(d, end)) over
// intervalDays. Zero interval, zero start value, or a zero denominator all
// yield the undefined sentinel.
func modifiedDietz(s windowSnapshot) Metric {
	intervalDays := date.DaysBetween(s.start, s.end)
	if !s.hasRecords || intervalDays <= 0 {
		return UndefinedMetric()
	}

	startValue := s.startValue.InexactFloat64()
	if startValue == 0 && s.policy == PolicyDefault {
		return UndefinedMetric()
	}
	flowSum := 0.0
	weighted := 0.0
	for _, d := range s.capitalFlows.Dates() {
		v, _ := s.capitalFlows.Get(d)
		flow := v.InexactFloat64()
		weight := float64(intervalDays-date.DaysBetween(d, s.end)) / float64(intervalDays)
		flowSum += flow
		weighted += weight * flow
	}

	if startValue == 0 && flowSum == 0 {
		return UndefinedMetric()
	}
	denominator := startValue + weighted
	if math.Abs(denominator) < 1e-12 {
		return UndefinedMetric()
	}
	numerator := s.endValue.InexactFloat64() + s.income.InexactFloat64() -
		startValue - flowSum
	return DefinedMetric(numerator / denominator)
}

// AnnualReturn is the annualized internal rate of return of the window's
// capital flows, bracketed by the negated start value and the positive end
// value and solved by Newton-Raphson, seeded from the annualized
// Modified-Dietz figure.
type AnnualReturn struct {
	extractorBase
	cached    Metric
	cachedErr error
}

func NewAnnualReturn(start date.Date, end date.Date, policy WindowPolicy) *AnnualReturn {
	return &AnnualReturn{extractorBase: newExtractorBase(start, end, policy)}
}

func (e *AnnualReturn) Combine(o *AnnualReturn) {
	e.combineBase(&o.extractorBase)
}

func (e *AnnualReturn) Result() (Metric, error) {
	if e.dirty {
		e.cached, e.cachedErr = solveWindowRate(e.snapshot(), false)
		e.dirty = false
	}
	return e.cached, e.cachedErr
}

// MoneyWeightedReturn is the IRR with the income flows merged into the
// capital series, so dividends and interest participate as dated investor
// receipts instead of being lumped into the end value.
type MoneyWeightedReturn struct {
	extractorBase
	cached    Metric
	cachedErr error
}

func NewMoneyWeightedReturn(start date.Date, end date.Date, policy WindowPolicy) *MoneyWeightedReturn {
	return &MoneyWeightedReturn{extractorBase: newExtractorBase(start, end, policy)}
}

func (e *MoneyWeightedReturn) Combine(o *MoneyWeightedReturn) {
	e.combineBase(&o.extractorBase)
}

func (e *MoneyWeightedReturn) Result() (Metric, error) {
	if e.dirty {
		e.cached, e.cachedErr = solveWindowRate(e.snapshot(), true)
		e.dirty = false
	}
	return e.cached, e.cachedErr
}

func solveWindowRate(s windowSnapshot, includeIncome bool) (Metric, error) {
	intervalDays := date.DaysBetween(s.start, s.end)
	if !s.hasRecords || intervalDays <= 0 {
		return UndefinedMetric(), nil
	}
	if s.startValue.IsZero() &&
		(s.policy == PolicyDefault || s.capitalFlows.Len() == 0) {
		return UndefinedMetric(), nil
	}

	// Investor convention: money in is negative, money out positive. The
	// capital flows accumulate as contributions, so they flip here; income
	// receipts are already investor-positive.
	series := NewDateMap()
	series.Add(s.start, s.startValue.Neg())
	for _, d := range s.capitalFlows.Dates() {
		v, _ := s.capitalFlows.Get(d)
		series.Add(d, v.Neg())
	}
	if includeIncome {
		series = series.Combine(s.incomeFlows, CombineAdd)
	}
	series.Add(s.end, s.endValue)

	dates := series.Dates()
	days := make([]float64, len(dates))
	flows := make([]float64, len(dates))
	for i, d := range dates {
		v, _ := series.Get(d)
		days[i] = float64(d.Serial())
		flows[i] = v.InexactFloat64()
	}

	guess := rateGuess(modifiedDietz(s), intervalDays)
	log.Tracef("returns", "solving rate over %s..%s, %d flows, guess %.4f",
		s.start, s.end, len(flows), guess)
	r, err := SolveRate(days, flows, guess)
	if err != nil {
		return UndefinedMetric(), err
	}
	return DefinedMetric(r), nil
}

// rateGuess seeds the solver from the annualized Modified-Dietz return,
// with a flat 10% fallback when the seed is undefined. The 1% floor is on
// the rate itself, not merely on the 1+r compounding base: seeds near the
// base's zero make early Newton steps overshoot.
func rateGuess(md Metric, intervalDays int) float64 {
	if !md.IsDefined() {
		return 0.10
	}
	years := float64(intervalDays) / daysPerYear
	guess := md.Value() / years
	if guess < 0.01 {
		return 0.01
	}
	return guess
}
