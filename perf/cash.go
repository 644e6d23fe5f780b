package perf

import (
	"github.com/shopspring/decimal"

	decimal_opt "github.com/invext/invext/decimal_value"
	"github.com/invext/invext/ledger"
	"github.com/invext/invext/log"
)

// BuildCashValues derives the account's synthetic cash chain: one record
// per transaction carrying the running cash balance, so cash participates
// in account-level aggregation like any security. Every transaction in the
// account contributes, not just the pure cash ones; a buy drains cash, a
// dividend feeds it.
//
// Cash has no market risk: the price is pinned at 1, basis tracks the
// balance and the gain fields are zero apart from the income/expense
// passthrough.
func BuildCashValues(
	account *ledger.Account, txns []*ledger.Transaction, errp log.ErrorPrinter,
) *ValuesList {

	cashSec := ledger.NewCashSecurity(account.Name)
	list := NewValuesList(account, cashSec)

	balance := decimal.Zero
	for _, txn := range txns {
		v := &TxValues{
			Txn:      txn,
			Account:  account,
			Security: cashSec,
			Date:     txn.Date,
			TxnId:    txn.Id,
		}
		foldSplits(v)
		delta := cashDelta(v)
		incomeExpense := v.Income.Add(v.Expense)

		// Re-express the movement as a purchase or sale of unit-priced
		// cash. Account-level flow aggregation then cancels the trade legs
		// against the security chains (a buy drains cash by exactly its
		// capital flow) and counts only true external movements; income
		// enters the cash chain as a flow, never double counted as income.
		v.Buy = decimal.Zero
		v.Sell = decimal.Zero
		v.ShortSell = decimal.Zero
		v.CoverShort = decimal.Zero
		v.Commission = decimal.Zero
		v.Income = decimal.Zero
		v.Expense = decimal.Zero
		if delta.IsNegative() {
			v.Sell = delta.Neg()
		} else {
			v.Buy = delta.Neg()
		}

		balance = balance.Add(delta)
		v.SecQuantity = delta
		v.Position = balance
		v.MktPrice = decimal.NewFromInt(1)

		v.OpenValue = decimal_opt.New(balance)
		if balance.IsNegative() {
			v.ShortBasis = decimal_opt.New(balance)
			v.LongBasis = decimal_opt.Zero
		} else {
			v.LongBasis = decimal_opt.New(balance)
			v.ShortBasis = decimal_opt.Zero
		}
		v.CumUnrealizedGain = decimal_opt.Zero
		v.PerUnrealizedGain = decimal_opt.Zero
		v.PerRealizedGain = decimal_opt.Zero
		v.CumRealizedGain = decimal_opt.Zero
		v.PerIncomeExpense = decimal_opt.New(incomeExpense)
		v.PerTotalGain = decimal_opt.Zero
		v.CumTotalGain = decimal_opt.Zero

		list.append(v)
	}

	if balance.LessThan(decimal.Zero) {
		errp.F("warning: account %s cash balance is negative (%s) after %s\n",
			account.Name, balance, txns[len(txns)-1].Date)
	}
	return list
}

// cashDelta is the transaction's net effect on the account's cash balance.
func cashDelta(v *TxValues) decimal.Decimal {
	return v.Buy.Add(v.Sell).
		Add(v.ShortSell).Add(v.CoverShort).
		Add(v.Commission).Add(v.Income).Add(v.Expense).
		Add(v.Transfer)
}

// AccountValues is the full derived state of one account: a chain per
// security plus the synthetic cash chain.
type AccountValues struct {
	Account *ledger.Account
	Chains  map[string]*ValuesList // keyed by security ticker
	Cash    *ValuesList
}

// BuildAccountValues sorts the account's transactions, derives each
// security's chain with the given basis strategy, and derives the cash
// chain over all of them. A construction-fatal error in one security's
// chain does not abort the others: all partial results are returned with
// the first error encountered.
func BuildAccountValues(
	account *ledger.Account,
	txns []*ledger.Transaction,
	calc GainsCalc,
	errp log.ErrorPrinter,
) (*AccountValues, error) {

	sorted := make([]*ledger.Transaction, len(txns))
	copy(sorted, txns)
	ledger.SortTransactions(sorted)

	out := &AccountValues{
		Account: account,
		Chains:  make(map[string]*ValuesList),
	}

	var firstErr error
	for ticker, secTxns := range ledger.SplitBySecurity(sorted) {
		if ticker == "" {
			continue // pure cash transactions only feed the cash chain
		}
		list, err := BuildValues(account, secTxns[0].Security, secTxns, calc, errp)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		out.Chains[ticker] = list
	}

	if len(sorted) > 0 {
		out.Cash = BuildCashValues(account, sorted, errp)
	}
	return out, firstErr
}
