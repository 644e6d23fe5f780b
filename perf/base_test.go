package perf_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	decimal_opt "github.com/invext/invext/decimal_value"
	"github.com/invext/invext/date"
	"github.com/invext/invext/ledger"
	"github.com/invext/invext/log"
	"github.com/invext/invext/perf"
)

const DefaultTestTicker string = "FOO"

var testAccount = &ledger.Account{Name: "test-account", Type: ledger.InvestmentAccount}

func mkDateYD(year int, day int) date.Date {
	tm := date.New(year, time.January, 1)
	return tm.AddDays(day)
}

func mkDate(day int) date.Date {
	return mkDateYD(2024, day)
}

// Test Tx
type TTx struct {
	Day   int // Convenience for TDate, as offset from mkDate(0)
	TDate date.Date
	Act   ledger.Action
	Qty   float64 // magnitude; sign derived from Act
	Amt   float64 // total cash magnitude (signed for Bank)
	Comm  float64
	Lots  map[int64]float64
	Memo  string
}

// eXpand to a full ledger transaction.
func (t TTx) X(id int64, sec *ledger.Security) *ledger.Transaction {
	d := t.TDate
	if d == 0 {
		d = mkDate(t.Day)
	}
	txn := &ledger.Transaction{
		Id:       id,
		Date:     d,
		Action:   t.Act,
		Account:  testAccount,
		Security: sec,
		Memo:     t.Memo,
	}

	qty := decimal.NewFromFloat(t.Qty)
	amt := decimal.NewFromFloat(t.Amt)
	addSplit := func(acctType ledger.AccountType, amount, quantity decimal.Decimal) {
		txn.Splits = append(txn.Splits, ledger.Split{
			Account:     testAccount,
			AccountType: acctType,
			Amount:      amount,
			Quantity:    quantity,
		})
	}

	switch t.Act {
	case ledger.BUY, ledger.BUYXFR, ledger.COVER:
		addSplit(ledger.SecurityAccount, amt.Neg(), qty)
	case ledger.SELL, ledger.SELLXFR, ledger.SHORT:
		addSplit(ledger.SecurityAccount, amt, qty.Neg())
	case ledger.DIVIDEND, ledger.MISCINC:
		addSplit(ledger.IncomeAccount, amt, decimal.Zero)
	case ledger.MISCEXP:
		addSplit(ledger.ExpenseAccount, amt, decimal.Zero)
	case ledger.BANK:
		addSplit(ledger.BankAccount, amt, decimal.Zero)
	}
	if t.Comm != 0 {
		addSplit(ledger.ExpenseAccount, decimal.NewFromFloat(t.Comm), decimal.Zero)
	}

	if t.Lots != nil {
		txn.LotAllocations = map[int64]decimal.Decimal{}
		for lotId, lotQty := range t.Lots {
			txn.LotAllocations[lotId] = decimal.NewFromFloat(lotQty)
		}
	}
	return txn
}

func makeTxs(sec *ledger.Security, ttxs ...TTx) []*ledger.Transaction {
	txns := make([]*ledger.Transaction, 0, len(ttxs))
	for i, tt := range ttxs {
		txns = append(txns, tt.X(int64(i+1), sec))
	}
	return txns
}

func buildChain(
	t *testing.T, sec *ledger.Security, calc perf.GainsCalc, ttxs ...TTx) *perf.ValuesList {

	list, err := perf.BuildValues(
		testAccount, sec, makeTxs(sec, ttxs...), calc, &log.NullErrorPrinter{})
	require.NoError(t, err)
	return list
}

func rqDecEq(t *testing.T, expected string, actual decimal.Decimal) {
	require.True(t, actual.Equal(decimal.RequireFromString(expected)),
		"expected %s, got %s", expected, actual)
}

func rqDecOptEq(t *testing.T, expected string, actual decimal_opt.DecimalOpt) {
	require.True(t, actual.Equal(decimal_opt.RequireFromString(expected)),
		"expected %s, got %s", expected, actual)
}
