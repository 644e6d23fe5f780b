package perf

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/invext/invext/date"
)

// CombineOp selects how DateMap.Combine folds the other map in.
type CombineOp int

const (
	CombineAdd CombineOp = iota
	CombineSubtract
)

// DateMap is a sparse accumulator of scalar amounts keyed by date. It is
// the merge primitive under every cash-flow based metric: at most one
// entry exists per date, and Add folds into an existing entry instead of
// overwriting it.
type DateMap struct {
	entries map[date.Date]decimal.Decimal
}

func NewDateMap() *DateMap {
	return &DateMap{entries: make(map[date.Date]decimal.Decimal)}
}

// Copy returns an independent copy; Combine never mutates its receiver.
func (m *DateMap) Copy() *DateMap {
	c := NewDateMap()
	for d, v := range m.entries {
		c.entries[d] = v
	}
	return c
}

func (m *DateMap) Len() int {
	return len(m.entries)
}

// Get returns the amount recorded on d. Absent dates read as not-present,
// never as an error.
func (m *DateMap) Get(d date.Date) (decimal.Decimal, bool) {
	v, ok := m.entries[d]
	return v, ok
}

// Put records v on d, overwriting any existing entry.
func (m *DateMap) Put(d date.Date, v decimal.Decimal) {
	m.entries[d] = v
}

// Add accumulates v into the entry on d, treating a missing entry as zero.
func (m *DateMap) Add(d date.Date, v decimal.Decimal) {
	m.entries[d] = m.entries[d].Add(v)
}

// Combine returns a new map over the union of both key sets. Entries
// present in both are summed (or differenced); entries only in other are
// inserted (negated when subtracting).
func (m *DateMap) Combine(other *DateMap, op CombineOp) *DateMap {
	out := m.Copy()
	for d, v := range other.entries {
		if op == CombineSubtract {
			v = v.Neg()
		}
		out.Add(d, v)
	}
	return out
}

// Dates returns the keys in ascending order.
func (m *DateMap) Dates() []date.Date {
	dates := make([]date.Date, 0, len(m.entries))
	for d := range m.entries {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

// Total sums every entry.
func (m *DateMap) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range m.entries {
		total = total.Add(v)
	}
	return total
}

func (m *DateMap) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, d := range m.Dates() {
		if i > 0 {
			sb.WriteString(", ")
		}
		v, _ := m.Get(d)
		sb.WriteString(d.String() + ": " + v.String())
	}
	sb.WriteString("}")
	return sb.String()
}
