package perf_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invext/invext/date"
	"github.com/invext/invext/ledger"
	"github.com/invext/invext/perf"
)

// One position opened before the window, one mid-window contribution:
// start value 10,000, inflow 1,000 at day-weight 0.5, end value 11,500.
func dietzFixture(t *testing.T) (*perf.ValuesList, date.Date, date.Date) {
	sec := ledger.NewSecurity(DefaultTestTicker, "Foo Corp")
	start := date.MustParse("2024-01-01")
	end := date.MustParse("2024-12-30")
	sec.AddPrice(start, decimal.NewFromInt(10))
	sec.AddPrice(end, decimal.RequireFromString("9.2"))

	list := buildChain(t, sec, perf.AverageCostCalc{},
		TTx{TDate: date.MustParse("2023-12-01"), Act: ledger.BUY, Qty: 1000, Amt: 10000},
		TTx{TDate: date.MustParse("2024-07-01"), Act: ledger.BUY, Qty: 250, Amt: 1000},
	)
	return list, start, end
}

func feedAll(x perf.Extractor, lists ...*perf.ValuesList) {
	for _, list := range lists {
		for _, v := range list.Values {
			x.NextTransaction(v)
		}
	}
}

func TestModifiedDietzReturn(t *testing.T) {
	list, start, end := dietzFixture(t)

	x := perf.NewModifiedDietzReturn(start, end, perf.PolicyDefault)
	feedAll(x, list)

	r := x.Result()
	require.True(t, r.IsDefined())
	// (11500 - 10000 - 1000) / (10000 + 0.5*1000)
	assert.InDelta(t, 500.0/10500.0, r.Value(), 1e-9)

	// Idempotence: the cached result is bit-identical.
	require.Equal(t, r, x.Result())
}

func TestModifiedDietzCombineEqualsSequentialFold(t *testing.T) {
	list, start, end := dietzFixture(t)

	whole := perf.NewModifiedDietzReturn(start, end, perf.PolicyDefault)
	feedAll(whole, list)

	// Chronological halves of the same chain.
	a := perf.NewModifiedDietzReturn(start, end, perf.PolicyDefault)
	a.NextTransaction(list.Values[0])
	b := perf.NewModifiedDietzReturn(start, end, perf.PolicyDefault)
	b.NextTransaction(list.Values[1])

	a.Combine(b)
	require.True(t, a.Result().IsDefined())
	assert.InDelta(t, whole.Result().Value(), a.Result().Value(), 1e-12)
}

func TestCombineAcrossSecurities(t *testing.T) {
	start := date.MustParse("2024-01-01")
	end := date.MustParse("2024-12-30")

	mkList := func(ticker string, endPrice string) *perf.ValuesList {
		sec := ledger.NewSecurity(ticker, ticker)
		sec.AddPrice(start, decimal.NewFromInt(10))
		sec.AddPrice(end, decimal.RequireFromString(endPrice))
		return buildChain(t, sec, perf.AverageCostCalc{},
			TTx{TDate: date.MustParse("2023-12-01"), Act: ledger.BUY, Qty: 100, Amt: 1000})
	}
	foo := mkList("FOO", "11")
	bar := mkList("BAR", "12")

	whole := perf.NewOrdinaryReturn(start, end)
	feedAll(whole, foo, bar)

	a := perf.NewOrdinaryReturn(start, end)
	feedAll(a, foo)
	b := perf.NewOrdinaryReturn(start, end)
	feedAll(b, bar)
	a.Combine(b)

	require.True(t, whole.Result().IsDefined())
	// (1100+1200-2000)/2000
	assert.InDelta(t, 0.15, whole.Result().Value(), 1e-12)
	assert.InDelta(t, whole.Result().Value(), a.Result().Value(), 1e-12)
}

func TestCombineInvalidatesCachedResult(t *testing.T) {
	list, start, end := dietzFixture(t)

	a := perf.NewModifiedDietzReturn(start, end, perf.PolicyDefault)
	a.NextTransaction(list.Values[0])
	first := a.Result()
	require.True(t, first.IsDefined())

	b := perf.NewModifiedDietzReturn(start, end, perf.PolicyDefault)
	b.NextTransaction(list.Values[1])
	a.Combine(b)

	assert.NotEqual(t, first.Value(), a.Result().Value())
}

func TestZeroStartValueIsUndefinedUnderDefaultPolicy(t *testing.T) {
	sec := ledger.NewSecurity(DefaultTestTicker, "Foo Corp")
	start := date.MustParse("2024-01-01")
	end := date.MustParse("2024-12-30")
	sec.AddPrice(end, decimal.NewFromInt(11))

	// First transaction is inside the window, so nothing is held at start.
	list := buildChain(t, sec, perf.AverageCostCalc{},
		TTx{TDate: date.MustParse("2024-03-01"), Act: ledger.BUY, Qty: 1000, Amt: 10000},
	)

	x := perf.NewModifiedDietzReturn(start, end, perf.PolicyDefault)
	feedAll(x, list)
	require.False(t, x.Result().IsDefined())

	ann := perf.NewAnnualReturn(start, end, perf.PolicyDefault)
	feedAll(ann, list)
	r, err := ann.Result()
	require.NoError(t, err)
	require.False(t, r.IsDefined())
}

func TestAnyPolicyWidensStartToFirstTransaction(t *testing.T) {
	sec := ledger.NewSecurity(DefaultTestTicker, "Foo Corp")
	start := date.MustParse("2024-01-01")
	end := date.MustParse("2024-12-30")
	firstTrade := date.MustParse("2024-03-01")
	sec.AddPrice(firstTrade, decimal.NewFromInt(10))
	sec.AddPrice(end, decimal.NewFromInt(11))

	list := buildChain(t, sec, perf.AverageCostCalc{},
		TTx{TDate: firstTrade, Act: ledger.BUY, Qty: 1000, Amt: 10000},
	)

	x := perf.NewModifiedDietzReturn(start, end, perf.PolicyAny)
	feedAll(x, list)
	r := x.Result()
	require.True(t, r.IsDefined())
	// The opening buy becomes the start snapshot: (11000-10000)/10000.
	assert.InDelta(t, 0.1, r.Value(), 1e-9)
}

func TestAllPolicyMeasuresFromInception(t *testing.T) {
	sec := ledger.NewSecurity(DefaultTestTicker, "Foo Corp")
	start := date.MustParse("2024-06-01")
	end := date.MustParse("2024-12-30")
	firstTrade := date.MustParse("2024-03-01")
	sec.AddPrice(firstTrade, decimal.NewFromInt(10))
	sec.AddPrice(end, decimal.NewFromInt(11))

	list := buildChain(t, sec, perf.AverageCostCalc{},
		TTx{TDate: firstTrade, Act: ledger.BUY, Qty: 1000, Amt: 10000},
	)

	x := perf.NewModifiedDietzReturn(start, end, perf.PolicyAll)
	feedAll(x, list)
	// The window is widened back past the first trade, which becomes an
	// in-window flow rather than part of the start snapshot.
	require.True(t, x.Result().IsDefined())
}

func TestAnnualReturnSolvesRate(t *testing.T) {
	sec := ledger.NewSecurity(DefaultTestTicker, "Foo Corp")
	start := date.MustParse("2024-01-01")
	end := date.MustParse("2024-12-31") // 365 days
	sec.AddPrice(start, decimal.NewFromInt(10))
	sec.AddPrice(end, decimal.NewFromInt(11))

	list := buildChain(t, sec, perf.AverageCostCalc{},
		TTx{TDate: date.MustParse("2023-12-01"), Act: ledger.BUY, Qty: 1000, Amt: 10000},
	)

	x := perf.NewAnnualReturn(start, end, perf.PolicyDefault)
	feedAll(x, list)
	r, err := x.Result()
	require.NoError(t, err)
	require.True(t, r.IsDefined())
	assert.InDelta(t, 0.10, r.Value(), 1e-4)
}

func TestMoneyWeightedReturnIncludesIncome(t *testing.T) {
	sec := ledger.NewSecurity(DefaultTestTicker, "Foo Corp")
	start := date.MustParse("2024-01-01")
	end := date.MustParse("2024-12-31")
	sec.AddPrice(start, decimal.NewFromInt(10))
	sec.AddPrice(end, decimal.NewFromInt(10))

	list := buildChain(t, sec, perf.AverageCostCalc{},
		TTx{TDate: date.MustParse("2023-12-01"), Act: ledger.BUY, Qty: 1000, Amt: 10000},
		TTx{TDate: date.MustParse("2024-12-31"), Act: ledger.DIVIDEND, Amt: 1000},
	)

	ann := perf.NewAnnualReturn(start, end, perf.PolicyDefault)
	feedAll(ann, list)
	flat, err := ann.Result()
	require.NoError(t, err)
	require.True(t, flat.IsDefined())
	assert.InDelta(t, 0.0, flat.Value(), 1e-6)

	mwr := perf.NewMoneyWeightedReturn(start, end, perf.PolicyDefault)
	feedAll(mwr, list)
	r, err := mwr.Result()
	require.NoError(t, err)
	require.True(t, r.IsDefined())
	assert.InDelta(t, 0.10, r.Value(), 1e-4)
}

func TestSolvedRateCombineEqualsSequentialFold(t *testing.T) {
	sec := ledger.NewSecurity(DefaultTestTicker, "Foo Corp")
	start := date.MustParse("2024-01-01")
	end := date.MustParse("2024-12-30")
	sec.AddPrice(start, decimal.NewFromInt(10))
	sec.AddPrice(end, decimal.RequireFromString("9.2"))

	list := buildChain(t, sec, perf.AverageCostCalc{},
		TTx{TDate: date.MustParse("2023-12-01"), Act: ledger.BUY, Qty: 1000, Amt: 10000},
		TTx{TDate: date.MustParse("2024-06-03"), Act: ledger.DIVIDEND, Amt: 400},
		TTx{TDate: date.MustParse("2024-07-01"), Act: ledger.BUY, Qty: 250, Amt: 1000},
	)

	wholeAnn := perf.NewAnnualReturn(start, end, perf.PolicyDefault)
	feedAll(wholeAnn, list)
	a := perf.NewAnnualReturn(start, end, perf.PolicyDefault)
	a.NextTransaction(list.Values[0])
	a.NextTransaction(list.Values[1])
	b := perf.NewAnnualReturn(start, end, perf.PolicyDefault)
	b.NextTransaction(list.Values[2])
	a.Combine(b)

	rw, err := wholeAnn.Result()
	require.NoError(t, err)
	require.True(t, rw.IsDefined())
	rc, err := a.Result()
	require.NoError(t, err)
	require.True(t, rc.IsDefined())
	assert.InDelta(t, rw.Value(), rc.Value(), 1e-12)
	annCombined := rc.Value()

	// Money-weighted: the income flow lives in the first half, so the
	// merged income series must survive the combine too.
	wholeMwr := perf.NewMoneyWeightedReturn(start, end, perf.PolicyDefault)
	feedAll(wholeMwr, list)
	ma := perf.NewMoneyWeightedReturn(start, end, perf.PolicyDefault)
	ma.NextTransaction(list.Values[0])
	ma.NextTransaction(list.Values[1])
	mb := perf.NewMoneyWeightedReturn(start, end, perf.PolicyDefault)
	mb.NextTransaction(list.Values[2])
	ma.Combine(mb)

	rw, err = wholeMwr.Result()
	require.NoError(t, err)
	require.True(t, rw.IsDefined())
	rc, err = ma.Result()
	require.NoError(t, err)
	require.True(t, rc.IsDefined())
	assert.InDelta(t, rw.Value(), rc.Value(), 1e-12)
	// Income makes the money-weighted figure strictly richer.
	assert.Greater(t, rc.Value(), annCombined)
}

func TestGainsExtractors(t *testing.T) {
	sec := ledger.NewSecurity(DefaultTestTicker, "Foo Corp")
	start := mkDate(-10)
	end := mkDate(30)

	list := buildChain(t, sec, perf.AverageCostCalc{},
		TTx{Day: 0, Act: ledger.BUY, Qty: 100, Amt: 1000},
		TTx{Day: 5, Act: ledger.BUY, Qty: 50, Amt: 600},
		TTx{Day: 10, Act: ledger.SELL, Qty: 60, Amt: 660},
	)

	realized := perf.NewRealizedGains(start, end)
	feedAll(realized, list)
	rqDecOptEq(t, "20", realized.Result())

	unrealized := perf.NewUnrealizedGains(start, end)
	feedAll(unrealized, list)
	// End position 90 at the last implied price 11, basis 960.
	rqDecOptEq(t, "30", unrealized.Result())

	total := perf.NewTotalGains(start, end)
	feedAll(total, list)
	rqDecOptEq(t, "50", total.Result())

	fullTerm := perf.NewFullTermGains(start, end)
	feedAll(fullTerm, list)
	// Nothing held before the window, so full-term equals total here.
	rqDecOptEq(t, "50", fullTerm.Result())

	basis := perf.NewLongBasis(start, end)
	feedAll(basis, list)
	rqDecOptEq(t, "960", basis.Result())
}

func TestGainsExtractorCombine(t *testing.T) {
	sec := ledger.NewSecurity(DefaultTestTicker, "Foo Corp")
	start := mkDate(-10)
	end := mkDate(30)

	list := buildChain(t, sec, perf.AverageCostCalc{},
		TTx{Day: 0, Act: ledger.BUY, Qty: 100, Amt: 1000},
		TTx{Day: 5, Act: ledger.BUY, Qty: 50, Amt: 600},
		TTx{Day: 10, Act: ledger.SELL, Qty: 60, Amt: 660},
	)

	a := perf.NewRealizedGains(start, end)
	a.NextTransaction(list.Values[0])
	a.NextTransaction(list.Values[1])
	b := perf.NewRealizedGains(start, end)
	b.NextTransaction(list.Values[2])

	a.Combine(b)
	rqDecOptEq(t, "20", a.Result())
}

func TestLongBasisLooksBackPastEmptyWindow(t *testing.T) {
	sec := ledger.NewSecurity(DefaultTestTicker, "Foo Corp")
	list := buildChain(t, sec, perf.AverageCostCalc{},
		TTx{Day: 0, Act: ledger.BUY, Qty: 100, Amt: 1000},
	)

	// Window entirely after the only transaction.
	basis := perf.NewLongBasis(mkDate(100), mkDate(200))
	feedAll(basis, list)
	rqDecOptEq(t, "1000", basis.Result())
}
