package perf

import (
	"sort"

	decimal_opt "github.com/invext/invext/decimal_value"
)

// CumulativeGains rolls realized gains and income up by calendar year,
// per security or merged across an account.
type CumulativeGains struct {
	RealizedTotal      decimal_opt.DecimalOpt
	RealizedYearTotals map[int]decimal_opt.DecimalOpt
	IncomeTotal        decimal_opt.DecimalOpt
}

func (g *CumulativeGains) YearsSorted() []int {
	years := make([]int, 0, len(g.RealizedYearTotals))
	for year := range g.RealizedYearTotals {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

func CalcSecurityCumulativeGains(values []*TxValues) *CumulativeGains {
	realizedTotal := decimal_opt.Zero
	incomeTotal := decimal_opt.Zero
	yearTotals := map[int]decimal_opt.DecimalOpt{}

	for _, v := range values {
		realizedTotal = realizedTotal.Add(v.PerRealizedGain)
		incomeTotal = incomeTotal.Add(v.PerIncomeExpense)
		year := v.Date.Year()
		yearTotalSoFar, ok := yearTotals[year]
		if !ok {
			yearTotalSoFar = decimal_opt.Zero
		}
		yearTotals[year] = yearTotalSoFar.Add(v.PerRealizedGain)
	}

	return &CumulativeGains{realizedTotal, yearTotals, incomeTotal}
}

func CalcCumulativeGains(secGains map[string]*CumulativeGains) *CumulativeGains {
	realizedTotal := decimal_opt.Zero
	incomeTotal := decimal_opt.Zero
	yearTotals := map[int]decimal_opt.DecimalOpt{}

	for _, gains := range secGains {
		realizedTotal = realizedTotal.Add(gains.RealizedTotal)
		incomeTotal = incomeTotal.Add(gains.IncomeTotal)
		for year, yearGains := range gains.RealizedYearTotals {
			yearTotalSoFar, ok := yearTotals[year]
			if !ok {
				yearTotalSoFar = decimal_opt.Zero
			}
			yearTotals[year] = yearTotalSoFar.Add(yearGains)
		}
	}

	return &CumulativeGains{realizedTotal, yearTotals, incomeTotal}
}
