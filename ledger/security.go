package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/invext/invext/date"
)

// PricePoint is one closing price observation.
type PricePoint struct {
	Date  date.Date
	Price decimal.Decimal
}

// SplitEvent records a stock split effective on Date: Ratio new units per
// old unit (2 for a 2-for-1 split, 0.1 for a 1-for-10 reverse split).
type SplitEvent struct {
	Date  date.Date
	Ratio decimal.Decimal
}

// Security holds the read-only market data the engine consumes: a price
// history with as-of lookup and a split history for position/price
// adjustment between dates.
type Security struct {
	Ticker    string
	Name      string
	Tradeable bool

	prices []PricePoint // sorted by date
	splits []SplitEvent // sorted by date
}

func NewSecurity(ticker string, name string) *Security {
	return &Security{Ticker: ticker, Name: name, Tradeable: true}
}

// NewCashSecurity returns the pseudo security used for an account's own
// cash balance. Its price is a constant 1.
func NewCashSecurity(account string) *Security {
	s := NewSecurity("$CASH:"+account, "Cash ("+account+")")
	s.Tradeable = false
	return s
}

func (s *Security) IsCash() bool {
	return !s.Tradeable && len(s.prices) == 0
}

func (s *Security) AddPrice(on date.Date, price decimal.Decimal) {
	i := sort.Search(len(s.prices), func(i int) bool { return s.prices[i].Date >= on })
	if i < len(s.prices) && s.prices[i].Date == on {
		s.prices[i].Price = price
		return
	}
	s.prices = append(s.prices, PricePoint{})
	copy(s.prices[i+1:], s.prices[i:])
	s.prices[i] = PricePoint{Date: on, Price: price}
}

func (s *Security) AddSplit(on date.Date, ratio decimal.Decimal) {
	i := sort.Search(len(s.splits), func(i int) bool { return s.splits[i].Date >= on })
	s.splits = append(s.splits, SplitEvent{})
	copy(s.splits[i+1:], s.splits[i:])
	s.splits[i] = SplitEvent{Date: on, Ratio: ratio}
}

// PriceOrRateAsOf returns the latest recorded price at or before `on`.
// Cash pseudo securities always price at 1. Returns zero when no price is
// known yet.
func (s *Security) PriceOrRateAsOf(on date.Date) decimal.Decimal {
	if s.IsCash() {
		return decimal.NewFromInt(1)
	}
	i := sort.Search(len(s.prices), func(i int) bool { return s.prices[i].Date > on })
	if i == 0 {
		return decimal.Zero
	}
	return s.prices[i-1].Price
}

// SplitAdjust returns the cumulative split factor for the interval
// (from, to]: the multiplier converting a position held on `from` into
// equivalent units on `to`. A price on `from` divides by the same factor.
// Returns 1 when no splits fall inside the interval or when to <= from.
func (s *Security) SplitAdjust(from date.Date, to date.Date) decimal.Decimal {
	factor := decimal.NewFromInt(1)
	for _, sp := range s.splits {
		if sp.Date > from && sp.Date <= to {
			factor = factor.Mul(sp.Ratio)
		}
	}
	return factor
}

// AdjustForSplits converts a rate (price) observed on fromDate into its
// equivalent on toDate by dividing out the intervening split factor.
func (s *Security) AdjustForSplits(fromDate date.Date, rate decimal.Decimal, toDate date.Date) decimal.Decimal {
	factor := s.SplitAdjust(fromDate, toDate)
	if factor.Equal(decimal.NewFromInt(1)) {
		return rate
	}
	return rate.Div(factor)
}
