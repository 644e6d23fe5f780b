package perf

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/invext/invext/date"
)

// WindowPolicy governs how a return window lacking an initial position
// resolves its start date. It affects the Modified-Dietz/IRR family only;
// ordinary-return and gains extractors ignore it.
type WindowPolicy int

const (
	// PolicyDefault uses the window as given; a zero start value makes the
	// return undefined.
	PolicyDefault WindowPolicy = iota
	// PolicyAll widens the start back to the business day preceding the
	// earliest transaction seen, measuring from inception.
	PolicyAll
	// PolicyAny behaves like PolicyDefault but, when the nominal start
	// value is zero, moves the start forward to the first in-window
	// transaction so the opening trade becomes the start snapshot.
	PolicyAny
)

func (p WindowPolicy) String() string {
	switch p {
	case PolicyDefault:
		return "default"
	case PolicyAll:
		return "all"
	case PolicyAny:
		return "any"
	default:
		return "INVALID"
	}
}

func ParseWindowPolicy(s string) (WindowPolicy, error) {
	for p := PolicyDefault; p <= PolicyAny; p++ {
		if s == p.String() {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown window policy %q", s)
}

// Extractor is the common surface of the metric accumulators: feed every
// record the caller has (including records outside the window, which
// establish the boundary snapshots), then read the subtype's result.
type Extractor interface {
	NextTransaction(v *TxValues)
}

// extractorBase accumulates raw per-security record sequences and the
// window. Nothing is reduced during accumulation: boundary snapshots and
// flow series are derived lazily when a result is requested, so combining
// two extractors is a plain ordered merge of their record sequences plus a
// window union, and aggregation stays associative.
type extractorBase struct {
	start  date.Date
	end    date.Date
	policy WindowPolicy

	chains map[string][]*TxValues
	dirty  bool
}

func newExtractorBase(start date.Date, end date.Date, policy WindowPolicy) extractorBase {
	return extractorBase{
		start:  start,
		end:    end,
		policy: policy,
		chains: make(map[string][]*TxValues),
		dirty:  true,
	}
}

func (b *extractorBase) NextTransaction(v *TxValues) {
	ticker := v.Security.Ticker
	b.chains[ticker] = append(b.chains[ticker], v)
	b.dirty = true
}

// combineBase widens the window to the union of both operands and merges
// the record sequences chronologically. The operand is read, not mutated.
func (b *extractorBase) combineBase(o *extractorBase) {
	if o.start < b.start {
		b.start = o.start
	}
	if o.end > b.end {
		b.end = o.end
	}
	for ticker, recs := range o.chains {
		b.chains[ticker] = mergeChains(b.chains[ticker], recs)
	}
	b.dirty = true
}

// mergeChains merges two date-ordered record sequences, breaking date ties
// by transaction id.
func mergeChains(a []*TxValues, c []*TxValues) []*TxValues {
	if len(a) == 0 {
		return append([]*TxValues(nil), c...)
	}
	if len(c) == 0 {
		return a
	}
	out := make([]*TxValues, 0, len(a)+len(c))
	i, j := 0, 0
	for i < len(a) && j < len(c) {
		if a[i].Date < c[j].Date ||
			(a[i].Date == c[j].Date && a[i].TxnId <= c[j].TxnId) {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, c[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, c[j:]...)
}

// windowSnapshot is the reduced view of the accumulated records against
// the (policy-resolved) window: boundary values plus the in-window flow
// series. Flows are attributed to (start, end]; a transaction dated
// exactly on the start joins the start snapshot instead.
type windowSnapshot struct {
	start  date.Date
	end    date.Date
	policy WindowPolicy

	startValue decimal.Decimal
	endValue   decimal.Decimal

	capitalFlows *DateMap // investor contributions, purchases positive
	incomeFlows  *DateMap // dividends/interest net of misc expense
	income       decimal.Decimal

	hasRecords bool
}

func (b *extractorBase) snapshot() windowSnapshot {
	start := b.resolveStart()
	s := windowSnapshot{
		start:        start,
		end:          b.end,
		policy:       b.policy,
		capitalFlows: NewDateMap(),
		incomeFlows:  NewDateMap(),
		income:       decimal.Zero,
	}

	for _, chain := range b.chains {
		s.hasRecords = s.hasRecords || len(chain) > 0
		s.startValue = s.startValue.Add(boundaryValue(chain, start))
		s.endValue = s.endValue.Add(boundaryValue(chain, b.end))
		for _, v := range chain {
			if v.Date <= start || v.Date > b.end {
				continue
			}
			s.capitalFlows.Add(v.Date, v.CapitalFlow())
			inc := v.Income.Add(v.Expense)
			if !inc.IsZero() {
				s.incomeFlows.Add(v.Date, inc)
			}
			s.income = s.income.Add(inc)
		}
	}
	return s
}

// resolveStart applies the window policy across every accumulated chain.
func (b *extractorBase) resolveStart() date.Date {
	switch b.policy {
	case PolicyAll:
		first := date.Date(0)
		for _, chain := range b.chains {
			if len(chain) == 0 {
				continue
			}
			if first == 0 || chain[0].Date < first {
				first = chain[0].Date
			}
		}
		if first == 0 {
			return b.start
		}
		widened := first.PrecedingBusinessDay()
		if widened < b.start {
			return widened
		}
		return b.start
	case PolicyAny:
		if !b.valueAt(b.start).IsZero() {
			return b.start
		}
		// Flat at the nominal start: the first in-window transaction
		// becomes the start snapshot.
		first := date.Date(0)
		for _, chain := range b.chains {
			for _, v := range chain {
				if v.Date > b.start && v.Date <= b.end {
					if first == 0 || v.Date < first {
						first = v.Date
					}
					break
				}
			}
		}
		if first != 0 {
			return first
		}
		return b.start
	default:
		return b.start
	}
}

func (b *extractorBase) valueAt(on date.Date) decimal.Decimal {
	total := decimal.Zero
	for _, chain := range b.chains {
		total = total.Add(boundaryValue(chain, on))
	}
	return total
}

// boundaryValue prices the position standing at end of day `on`: the last
// record at or before that date, split-adjusted forward and valued at the
// prevailing price.
func boundaryValue(chain []*TxValues, on date.Date) decimal.Decimal {
	rec := lastAtOrBefore(chain, on)
	if rec == nil {
		return decimal.Zero
	}
	pos := rec.Position.Mul(rec.Security.SplitAdjust(rec.Date, on))
	price := rec.Security.PriceOrRateAsOf(on)
	if price.IsZero() {
		price = rec.Security.AdjustForSplits(rec.Date, rec.MktPrice, on)
	}
	return pos.Mul(price)
}

func lastAtOrBefore(chain []*TxValues, on date.Date) *TxValues {
	var last *TxValues
	for _, v := range chain {
		if v.Date > on {
			break
		}
		last = v
	}
	return last
}
