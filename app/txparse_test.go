package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invext/invext/app"
	"github.com/invext/invext/date"
	"github.com/invext/invext/ledger"
)

var parseTestAccount = &ledger.Account{Name: "test", Type: ledger.InvestmentAccount}

func parseTxs(t *testing.T, txOpts ...string) []*ledger.Transaction {
	txns, err := app.ParseTxOptions(txOpts, nil, nil, parseTestAccount)
	require.NoError(t, err)
	return txns
}

func securitySplit(t *testing.T, txn *ledger.Transaction) ledger.Split {
	for _, sp := range txn.Splits {
		if sp.AccountType == ledger.SecurityAccount {
			return sp
		}
	}
	t.Fatalf("transaction %d has no security split", txn.Id)
	return ledger.Split{}
}

func TestParseBuyAndSell(t *testing.T) {
	txns := parseTxs(t,
		"FOO:2024-01-02:Buy:100:1000.00",
		"FOO:2024-02-02:Sell:40:480.00:9.99",
	)
	require.Len(t, txns, 2)

	buy := txns[0]
	assert.Equal(t, int64(1), buy.Id)
	assert.Equal(t, date.New(2024, time.January, 2), buy.Date)
	assert.Equal(t, ledger.BUY, buy.Action)
	require.NotNil(t, buy.Security)
	assert.Equal(t, "FOO", buy.Security.Ticker)
	sp := securitySplit(t, buy)
	assert.Equal(t, "-1000", sp.Amount.String())
	assert.Equal(t, "100", sp.Quantity.String())

	sell := txns[1]
	sp = securitySplit(t, sell)
	assert.Equal(t, "480", sp.Amount.String())
	assert.Equal(t, "-40", sp.Quantity.String())
	// The optional sixth field becomes an expense split.
	require.Len(t, sell.Splits, 2)
	assert.Equal(t, ledger.ExpenseAccount, sell.Splits[1].AccountType)
	assert.Equal(t, "9.99", sell.Splits[1].Amount.String())

	// Both transactions share one Security instance.
	assert.Same(t, buy.Security, sell.Security)
}

func TestParseShortAndCover(t *testing.T) {
	txns := parseTxs(t,
		"FOO:2024-01-02:Short:50:600.00",
		"FOO:2024-03-02:Cover:50:500.00",
	)
	sp := securitySplit(t, txns[0])
	assert.Equal(t, "600", sp.Amount.String())
	assert.Equal(t, "-50", sp.Quantity.String())

	sp = securitySplit(t, txns[1])
	assert.Equal(t, "-500", sp.Amount.String())
	assert.Equal(t, "50", sp.Quantity.String())
}

func TestParseCashActions(t *testing.T) {
	txns := parseTxs(t,
		"FOO:2024-06-01:Dividend:0:25.00",
		"FOO:2024-06-02:MiscExp:0:3.00",
		"-:2024-06-03:Bank:0:-150.00",
	)

	div := txns[0]
	require.Len(t, div.Splits, 1)
	assert.Equal(t, ledger.IncomeAccount, div.Splits[0].AccountType)
	assert.Equal(t, "25", div.Splits[0].Amount.String())

	exp := txns[1]
	assert.Equal(t, ledger.ExpenseAccount, exp.Splits[0].AccountType)

	// Bank amounts keep their sign: negative withdraws.
	bank := txns[2]
	assert.Nil(t, bank.Security)
	require.Len(t, bank.Splits, 1)
	assert.Equal(t, ledger.BankAccount, bank.Splits[0].AccountType)
	assert.Equal(t, "-150", bank.Splits[0].Amount.String())
}

func TestParseSignsAreNormalized(t *testing.T) {
	// Magnitude fields may arrive with either sign; the action decides.
	txns := parseTxs(t, "FOO:2024-01-02:Buy:100:-1000.00")
	sp := securitySplit(t, txns[0])
	assert.Equal(t, "-1000", sp.Amount.String())
	assert.Equal(t, "100", sp.Quantity.String())
}

func TestParsePriceAndSplitOptions(t *testing.T) {
	txns, err := app.ParseTxOptions(
		[]string{"FOO:2024-01-02:Buy:100:1000.00"},
		[]string{"FOO:2024-06-28:12.50"},
		[]string{"FOO:2024-03-15:2"},
		parseTestAccount)
	require.NoError(t, err)
	require.Len(t, txns, 1)

	sec := txns[0].Security
	assert.Equal(t, "12.5",
		sec.PriceOrRateAsOf(date.New(2024, time.June, 30)).String())
	assert.Equal(t, "2",
		sec.SplitAdjust(date.New(2024, time.January, 2), date.New(2024, time.June, 30)).String())
}

func TestParseErrors(t *testing.T) {
	badOpts := []string{
		"FOO:2024-01-02:Buy:100",               // too few fields
		"FOO:01/02/2024:Buy:100:1000",          // bad date
		"FOO:2024-01-02:Frobnicate:100:1000",   // bad action
		"FOO:2024-01-02:Buy:lots:1000",         // bad quantity
		"FOO:2024-01-02:Buy:100:many",          // bad amount
		"FOO:2024-01-02:Buy:100:1000:cheap",    // bad commission
	}
	for _, opt := range badOpts {
		_, err := app.ParseTxOptions([]string{opt}, nil, nil, parseTestAccount)
		assert.Error(t, err, "option %q should not parse", opt)
	}

	_, err := app.ParseTxOptions(nil, []string{"FOO:2024-01-02"}, nil, parseTestAccount)
	assert.Error(t, err)
	_, err = app.ParseTxOptions(nil, nil, []string{"FOO:2024-01-02:2:extra"}, parseTestAccount)
	assert.Error(t, err)
}
