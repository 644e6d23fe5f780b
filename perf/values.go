package perf

import (
	"fmt"

	"github.com/shopspring/decimal"

	decimal_opt "github.com/invext/invext/decimal_value"
	"github.com/invext/invext/ledger"
	"github.com/invext/invext/log"
	"github.com/invext/invext/util"
)

// BuildValues folds a security's chronologically ordered transactions into
// its derived TxValues sequence. Each record depends on the immediately
// preceding one; the basis strategy additionally reaches back through the
// returned list's id index for lot allocations.
//
// Construction-fatal conditions (an illegal opening transaction, or a
// disposal with no prior history) abort the fold and return the partial
// list alongside the error, so callers can still render what was derived.
// Lesser anomalies are reported through errp and the fold continues.
func BuildValues(
	account *ledger.Account,
	security *ledger.Security,
	txns []*ledger.Transaction,
	calc GainsCalc,
	errp log.ErrorPrinter,
) (*ValuesList, error) {

	list := NewValuesList(account, security)
	for _, txn := range txns {
		if prev := list.Last(); prev != nil {
			util.Assertf(txn.Date >= prev.Date,
				"transactions for %s not sorted: %s follows %s", security.Ticker, txn.Date, prev.Date)
		}
		v, err := buildOne(list, txn, calc, errp)
		if err != nil {
			return list, err
		}
		list.append(v)
	}
	return list, nil
}

func buildOne(
	list *ValuesList, txn *ledger.Transaction, calc GainsCalc, errp log.ErrorPrinter,
) (v *TxValues, fatal error) {

	v = &TxValues{
		Txn:      txn,
		Account:  list.Account,
		Security: list.Security,
		Date:     txn.Date,
		TxnId:    txn.Id,
	}

	// Any panic during derivation (null arithmetic misuse, bad host data
	// such as a zero split ratio) leaves the record partially populated
	// rather than killing the fold; downstream consumers must tolerate
	// null derived fields. Validation failures still return fatal.
	defer func() {
		if r := recover(); r != nil {
			errp.F("error deriving values for %s/%s on %s: %v\n",
				list.Account.Name, list.Security.Ticker, v.Date, r)
			fatal = nil
		}
	}()

	foldSplits(v)

	prev := list.Last()
	prevPos, prevPrice := adjustedPriorState(v, prev)

	if fatal = validateTransition(v, prev, prevPos, errp); fatal != nil {
		return nil, fatal
	}

	v.Position = prevPos.Add(v.SecQuantity)
	v.MktPrice = marketPrice(v, prevPrice)

	v.LongBasis, v.ShortBasis = calc.Basis(&BasisInput{
		Cur:          v,
		Prev:         prev,
		PrevPosition: prevPos,
		Prior:        list,
	})
	deriveGains(v, prev, prevPrice)

	log.Tracef("values", "%s %s %s pos=%s long=%s short=%s",
		v.Date, v.Security.Ticker, txn.Action, v.Position, v.LongBasis, v.ShortBasis)
	return v, nil
}

// foldSplits aggregates the transaction's split legs into the record's
// flow fields, keyed by the split's account type and whether it posts to
// the reference account (the far side of a transfer flips sign).
func foldSplits(v *TxValues) {
	txn := v.Txn
	for _, sp := range txn.Splits {
		switch sp.AccountType {
		case ledger.SecurityAccount:
			v.SecQuantity = v.SecQuantity.Add(sp.Quantity)
			switch txn.Action {
			case ledger.BUY, ledger.BUYXFR:
				v.Buy = v.Buy.Add(sp.Amount)
			case ledger.SELL, ledger.SELLXFR:
				v.Sell = v.Sell.Add(sp.Amount)
			case ledger.SHORT:
				v.ShortSell = v.ShortSell.Add(sp.Amount)
			case ledger.COVER:
				v.CoverShort = v.CoverShort.Add(sp.Amount)
			default:
				// Reinvested distributions and the like: cash acquiring
				// units counts as a buy.
				v.Buy = v.Buy.Add(sp.Amount)
			}
		case ledger.ExpenseAccount:
			amt := sp.Amount.Abs().Neg()
			if txn.Action == ledger.MISCEXP {
				v.Expense = v.Expense.Add(amt)
			} else {
				v.Commission = v.Commission.Add(amt)
			}
		case ledger.IncomeAccount:
			v.Income = v.Income.Add(sp.Amount.Abs())
		case ledger.BankAccount, ledger.InvestmentAccount:
			// Cash legs mirror the security/income legs on ordinary trades
			// and would double count; they are the substance only on bank
			// movements, and only when posting to the reference account
			// (the far leg belongs to the other account).
			if txn.Action == ledger.BANK && sp.Account == txn.Account {
				v.Transfer = v.Transfer.Add(sp.Amount)
			}
		}
	}
}

// adjustedPriorState returns the previous position and market price
// restated in current-date units, applying the cumulative split factor
// between the two transaction dates.
func adjustedPriorState(v *TxValues, prev *TxValues) (decimal.Decimal, decimal.Decimal) {
	if prev == nil {
		return decimal.Zero, decimal.Zero
	}
	factor := v.Security.SplitAdjust(prev.Date, v.Date)
	one := decimal.NewFromInt(1)
	if factor.Equal(one) {
		return prev.Position, prev.MktPrice
	}
	return prev.Position.Mul(factor), prev.MktPrice.Div(factor)
}

func validateTransition(
	v *TxValues, prev *TxValues, prevPos decimal.Decimal, errp log.ErrorPrinter) error {

	ctx := func() string {
		return fmt.Sprintf("account %s, security %s, date %s",
			v.Account.Name, v.Security.Ticker, v.Date)
	}

	if prev == nil && v.Security.Tradeable {
		if v.Txn.Action.ClosesPosition() {
			return fmt.Errorf(
				"%s disposal with no prior transaction (%s): a position must be opened first",
				v.Txn.Action, ctx())
		}
		if !v.Txn.Action.OpensPosition() {
			return fmt.Errorf(
				"first transaction for a tradeable security must be Buy, BuyXfr or Short, got %s (%s)",
				v.Txn.Action, ctx())
		}
		return nil
	}

	newPos := prevPos.Add(v.SecQuantity)
	crossedLongToShort := prevPos.GreaterThan(positionEpsilon) && newPos.LessThan(positionEpsilon.Neg())
	crossedShortToLong := prevPos.LessThan(positionEpsilon.Neg()) && newPos.GreaterThan(positionEpsilon)
	if crossedLongToShort || crossedShortToLong {
		// Tolerated for compatibility with lenient hosts: downstream basis
		// figures for this chain are unvalidated from here on.
		errp.F("warning: position crosses zero in a single transaction (%s); "+
			"split it into a close and a reopen\n", ctx())
	}

	if !v.SecQuantity.IsZero() &&
		!v.Txn.Action.OpensPosition() && !v.Txn.Action.ClosesPosition() {
		errp.F("warning: %s transaction changes the security quantity (%s)\n",
			v.Txn.Action, ctx())
	}
	return nil
}

// marketPrice prefers the security's recorded price as of the transaction
// date, falling back to the price implied by the trade itself when the
// host supplied no quote yet, then to the prior record's (split-adjusted)
// price for quantity-neutral transactions.
func marketPrice(v *TxValues, prevPrice decimal.Decimal) decimal.Decimal {
	price := v.Security.PriceOrRateAsOf(v.Date)
	if !price.IsZero() {
		return price
	}
	if v.SecQuantity.Abs().GreaterThan(positionEpsilon) {
		tradeCash := v.Buy.Add(v.Sell).Add(v.ShortSell).Add(v.CoverShort)
		return tradeCash.Neg().Div(v.SecQuantity).Abs()
	}
	return prevPrice
}

func deriveGains(v *TxValues, prev *TxValues, prevPrice decimal.Decimal) {
	v.OpenValue = decimal_opt.New(v.Position.Mul(v.MktPrice))
	v.CumUnrealizedGain = v.OpenValue.Sub(v.ActiveBasis())

	prevCumUnrealized := decimal_opt.Zero
	prevCumRealized := decimal_opt.Zero
	prevCumTotal := decimal_opt.Zero
	if prev != nil {
		prevCumUnrealized = prev.CumUnrealizedGain
		prevCumRealized = prev.CumRealizedGain
		prevCumTotal = prev.CumTotalGain
	}

	if v.Txn.Action.ClosesPosition() {
		// On a disposal the cumulative-gain delta mixes the realized part
		// in; the price move on the remaining position is the true
		// period-unrealized figure (zero for a full close).
		priceMove := v.MktPrice.Sub(prevPrice)
		v.PerUnrealizedGain = decimal_opt.New(priceMove.Mul(v.Position))
	} else {
		v.PerUnrealizedGain = v.CumUnrealizedGain.Sub(prevCumUnrealized)
	}

	v.PerRealizedGain = decimal_opt.Zero
	if v.Txn.Action.ClosesPosition() {
		v.PerRealizedGain = realizedGain(v, prev)
	}
	v.CumRealizedGain = prevCumRealized.Add(v.PerRealizedGain)

	v.PerIncomeExpense = decimal_opt.New(v.Income.Add(v.Expense))
	v.PerTotalGain = v.PerUnrealizedGain.Add(v.PerRealizedGain)
	v.CumTotalGain = prevCumTotal.Add(v.PerTotalGain)
}

// realizedGain reconciles the cash proceeds, the commission, and the basis
// removed by the disposal: proceeds + commission + change in the active
// basis side.
func realizedGain(v *TxValues, prev *TxValues) decimal_opt.DecimalOpt {
	prevLong, prevShort := decimal_opt.Zero, decimal_opt.Zero
	if prev != nil {
		prevLong, prevShort = prev.LongBasis, prev.ShortBasis
	}
	if v.Txn.Action == ledger.COVER {
		proceeds := v.CoverShort.Add(v.Commission)
		return v.ShortBasis.Sub(prevShort).AddD(proceeds)
	}
	proceeds := v.Sell.Add(v.Commission)
	return v.LongBasis.Sub(prevLong).AddD(proceeds)
}
