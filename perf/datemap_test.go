package perf_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invext/invext/date"
	"github.com/invext/invext/perf"
)

func TestDateMapAddAccumulates(t *testing.T) {
	m := perf.NewDateMap()
	m.Add(mkDate(1), decimal.NewFromInt(100))
	m.Add(mkDate(1), decimal.NewFromInt(50))
	m.Add(mkDate(2), decimal.NewFromInt(-30))

	require.Equal(t, 2, m.Len())
	v, ok := m.Get(mkDate(1))
	require.True(t, ok)
	rqDecEq(t, "150", v)

	_, ok = m.Get(mkDate(3))
	assert.False(t, ok)

	// Put overwrites rather than accumulating.
	m.Put(mkDate(1), decimal.NewFromInt(7))
	v, _ = m.Get(mkDate(1))
	rqDecEq(t, "7", v)
}

func TestDateMapCombine(t *testing.T) {
	a := perf.NewDateMap()
	a.Add(mkDate(1), decimal.NewFromInt(100))
	a.Add(mkDate(2), decimal.NewFromInt(200))

	b := perf.NewDateMap()
	b.Add(mkDate(2), decimal.NewFromInt(5))
	b.Add(mkDate(3), decimal.NewFromInt(-10))

	sum := a.Combine(b, perf.CombineAdd)
	require.Equal(t, 3, sum.Len())
	v, _ := sum.Get(mkDate(1))
	rqDecEq(t, "100", v)
	v, _ = sum.Get(mkDate(2))
	rqDecEq(t, "205", v)
	v, _ = sum.Get(mkDate(3))
	rqDecEq(t, "-10", v)

	// Combine must not mutate its operands.
	require.Equal(t, 2, a.Len())
	require.Equal(t, 2, b.Len())

	diff := a.Combine(b, perf.CombineSubtract)
	v, _ = diff.Get(mkDate(3))
	rqDecEq(t, "10", v)
}

// Subtracting a map undoes adding it, for every date present in the
// original.
func TestDateMapCombineRoundTrip(t *testing.T) {
	a := perf.NewDateMap()
	a.Add(mkDate(1), decimal.RequireFromString("1.25"))
	a.Add(mkDate(5), decimal.RequireFromString("-3.5"))

	b := perf.NewDateMap()
	b.Add(mkDate(1), decimal.NewFromInt(99))
	b.Add(mkDate(9), decimal.NewFromInt(4))

	roundTrip := a.Combine(b, perf.CombineAdd).Combine(b, perf.CombineSubtract)
	for _, d := range a.Dates() {
		want, _ := a.Get(d)
		got, ok := roundTrip.Get(d)
		require.True(t, ok)
		rqDecEq(t, want.String(), got)
	}
}

func TestDateMapDatesSortedAndTotal(t *testing.T) {
	m := perf.NewDateMap()
	m.Add(mkDate(9), decimal.NewFromInt(1))
	m.Add(mkDate(1), decimal.NewFromInt(2))
	m.Add(mkDate(4), decimal.NewFromInt(3))

	require.Equal(t, []date.Date{mkDate(1), mkDate(4), mkDate(9)}, m.Dates())
	rqDecEq(t, "6", m.Total())
}
