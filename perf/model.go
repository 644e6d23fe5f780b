package perf

import (
	"github.com/shopspring/decimal"

	decimal_opt "github.com/invext/invext/decimal_value"
	"github.com/invext/invext/date"
	"github.com/invext/invext/ledger"
)

// positionEpsilon distinguishes an effectively flat position from a
// genuinely signed one, so basis ratios stay away from near-zero
// denominators.
var positionEpsilon = decimal.New(1, -5) // 1e-5 units

// TxValues is the derived financial record for one ledger transaction.
// Records are built once, in strict chronological (then action, then id)
// order; each depends on the immediately preceding record of the same
// security chain plus, for lot matching, arbitrary earlier records by id.
//
// Sign conventions: cash paid out is negative and cash received positive,
// so Buy and CoverShort are <= 0 while Sell and ShortSell are >= 0;
// Commission and Expense are <= 0 and Income >= 0. Long basis is carried
// positive and short basis negative.
type TxValues struct {
	Txn      *ledger.Transaction
	Account  *ledger.Account
	Security *ledger.Security
	Date     date.Date
	TxnId    int64

	// Folded split aggregates.
	Buy         decimal.Decimal
	Sell        decimal.Decimal
	ShortSell   decimal.Decimal
	CoverShort  decimal.Decimal
	Commission  decimal.Decimal
	Income      decimal.Decimal
	Expense     decimal.Decimal
	Transfer    decimal.Decimal
	SecQuantity decimal.Decimal

	// Chain state.
	Position decimal.Decimal // split-adjusted position after this transaction
	MktPrice decimal.Decimal // price as of this transaction's date

	// Derived values. These are nullable: a failure partway through
	// derivation leaves the remainder null rather than pretending zero.
	LongBasis         decimal_opt.DecimalOpt
	ShortBasis        decimal_opt.DecimalOpt
	OpenValue         decimal_opt.DecimalOpt
	CumUnrealizedGain decimal_opt.DecimalOpt
	PerUnrealizedGain decimal_opt.DecimalOpt
	PerRealizedGain   decimal_opt.DecimalOpt
	CumRealizedGain   decimal_opt.DecimalOpt
	PerIncomeExpense  decimal_opt.DecimalOpt
	PerTotalGain      decimal_opt.DecimalOpt
	CumTotalGain      decimal_opt.DecimalOpt
}

// IsLong / IsShort / IsFlat classify the post-transaction position against
// the epsilon threshold.
func (v *TxValues) IsLong() bool {
	return v.Position.GreaterThan(positionEpsilon)
}

func (v *TxValues) IsShort() bool {
	return v.Position.LessThan(positionEpsilon.Neg())
}

func (v *TxValues) IsFlat() bool {
	return !v.IsLong() && !v.IsShort()
}

// ActiveBasis returns the basis side implied by the position sign: long
// basis for long positions, short basis for short, zero when flat.
func (v *TxValues) ActiveBasis() decimal_opt.DecimalOpt {
	if v.IsLong() {
		return v.LongBasis
	}
	if v.IsShort() {
		return v.ShortBasis
	}
	return decimal_opt.Zero
}

// CapitalFlow is the investor contribution this transaction represents:
// positive when money enters the position (a purchase), negative when it
// leaves. Used as the Modified-Dietz flow term.
func (v *TxValues) CapitalFlow() decimal.Decimal {
	return v.Buy.Add(v.Sell).Add(v.ShortSell).Add(v.CoverShort).Add(v.Commission).Neg()
}

// CashFlow is the same movement in the investor-cash convention used for
// XIRR bracketing: purchases negative, proceeds positive.
func (v *TxValues) CashFlow() decimal.Decimal {
	return v.CapitalFlow().Neg()
}

// ValuesList is a security's full derived sequence: an append-only ordered
// arena with an id index for lot-allocation lookups.
type ValuesList struct {
	Account  *ledger.Account
	Security *ledger.Security
	Values   []*TxValues

	byId map[int64]*TxValues
}

func NewValuesList(account *ledger.Account, security *ledger.Security) *ValuesList {
	return &ValuesList{
		Account:  account,
		Security: security,
		Values:   make([]*TxValues, 0, 8),
		byId:     make(map[int64]*TxValues),
	}
}

func (l *ValuesList) append(v *TxValues) {
	l.Values = append(l.Values, v)
	l.byId[v.TxnId] = v
}

// ById returns the record for the given transaction id, if present.
func (l *ValuesList) ById(id int64) (*TxValues, bool) {
	v, ok := l.byId[id]
	return v, ok
}

// Last returns the most recent record, or nil for an empty list.
func (l *ValuesList) Last() *TxValues {
	if len(l.Values) == 0 {
		return nil
	}
	return l.Values[len(l.Values)-1]
}
