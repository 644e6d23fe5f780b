package perf

import (
	decimal_opt "github.com/invext/invext/decimal_value"
	"github.com/invext/invext/date"
)

// The gains extractors fold money amounts rather than ratios, so their
// results are nullable decimals: a chain whose basis derivation failed
// propagates null instead of a fabricated zero. Window policies do not
// apply to them.

// RealizedGains sums the per-transaction realized gain of every in-window
// disposal.
type RealizedGains struct {
	extractorBase
	cached decimal_opt.DecimalOpt
}

func NewRealizedGains(start date.Date, end date.Date) *RealizedGains {
	return &RealizedGains{extractorBase: newExtractorBase(start, end, PolicyDefault)}
}

func (e *RealizedGains) Combine(o *RealizedGains) {
	e.combineBase(&o.extractorBase)
}

func (e *RealizedGains) Result() decimal_opt.DecimalOpt {
	if e.dirty {
		e.cached = realizedInWindow(&e.extractorBase)
		e.dirty = false
	}
	return e.cached
}

func realizedInWindow(b *extractorBase) decimal_opt.DecimalOpt {
	total := decimal_opt.Zero
	for _, chain := range b.chains {
		for _, v := range chain {
			if v.Date <= b.start || v.Date > b.end {
				continue
			}
			total = total.Add(v.PerRealizedGain)
		}
	}
	return total
}

// UnrealizedGains is the window-end open value minus whichever basis side
// the ending position implies, summed across securities.
type UnrealizedGains struct {
	extractorBase
	cached decimal_opt.DecimalOpt
}

func NewUnrealizedGains(start date.Date, end date.Date) *UnrealizedGains {
	return &UnrealizedGains{extractorBase: newExtractorBase(start, end, PolicyDefault)}
}

func (e *UnrealizedGains) Combine(o *UnrealizedGains) {
	e.combineBase(&o.extractorBase)
}

func (e *UnrealizedGains) Result() decimal_opt.DecimalOpt {
	if e.dirty {
		e.cached = unrealizedAt(&e.extractorBase, e.end)
		e.dirty = false
	}
	return e.cached
}

func unrealizedAt(b *extractorBase, on date.Date) decimal_opt.DecimalOpt {
	total := decimal_opt.Zero
	for _, chain := range b.chains {
		rec := lastAtOrBefore(chain, on)
		if rec == nil {
			continue
		}
		value := decimal_opt.New(boundaryValue(chain, on))
		total = total.Add(value.Sub(rec.ActiveBasis()))
	}
	return total
}

// TotalGains is realized plus ending unrealized: the all-time gain view of
// the window end, regardless of when the unrealized part accrued.
type TotalGains struct {
	extractorBase
	cached decimal_opt.DecimalOpt
}

func NewTotalGains(start date.Date, end date.Date) *TotalGains {
	return &TotalGains{extractorBase: newExtractorBase(start, end, PolicyDefault)}
}

func (e *TotalGains) Combine(o *TotalGains) {
	e.combineBase(&o.extractorBase)
}

func (e *TotalGains) Result() decimal_opt.DecimalOpt {
	if e.dirty {
		e.cached = realizedInWindow(&e.extractorBase).
			Add(unrealizedAt(&e.extractorBase, e.end))
		e.dirty = false
	}
	return e.cached
}

// FullTermGains nets the change in unrealized gain across the window
// instead of taking the raw ending figure, so appreciation accrued before
// the window start is excluded.
type FullTermGains struct {
	extractorBase
	cached decimal_opt.DecimalOpt
}

func NewFullTermGains(start date.Date, end date.Date) *FullTermGains {
	return &FullTermGains{extractorBase: newExtractorBase(start, end, PolicyDefault)}
}

func (e *FullTermGains) Combine(o *FullTermGains) {
	e.combineBase(&o.extractorBase)
}

func (e *FullTermGains) Result() decimal_opt.DecimalOpt {
	if e.dirty {
		deltaUnrealized := unrealizedAt(&e.extractorBase, e.end).
			Sub(unrealizedAt(&e.extractorBase, e.start))
		e.cached = realizedInWindow(&e.extractorBase).Add(deltaUnrealized)
		e.dirty = false
	}
	return e.cached
}

// LongBasis reports the long cost basis standing at the window end: the
// value on the last record at or before the end date, which may predate
// the window start when nothing traded inside it.
type LongBasis struct {
	extractorBase
	cached decimal_opt.DecimalOpt
}

func NewLongBasis(start date.Date, end date.Date) *LongBasis {
	return &LongBasis{extractorBase: newExtractorBase(start, end, PolicyDefault)}
}

func (e *LongBasis) Combine(o *LongBasis) {
	e.combineBase(&o.extractorBase)
}

func (e *LongBasis) Result() decimal_opt.DecimalOpt {
	if e.dirty {
		total := decimal_opt.Zero
		for _, chain := range e.chains {
			if rec := lastAtOrBefore(chain, e.end); rec != nil {
				total = total.Add(rec.LongBasis)
			}
		}
		e.cached = total
		e.dirty = false
	}
	return e.cached
}
