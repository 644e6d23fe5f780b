package app

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/invext/invext/date"
	"github.com/invext/invext/ledger"
)

/* Takes transaction option strings, each formatted as:
 * SYM:date:action:quantity:amount[:commission]. Eg. GOOG:2024-01-02:Buy:20:1000.00:9.99
 * Quantity and amount are magnitudes; the action determines their signs.
 * Cash-only actions (Bank, MiscInc, MiscExp) may use "-" as the symbol.
 */
func ParseTxOptions(
	txOpts []string, priceOpts []string, splitOpts []string, account *ledger.Account,
) ([]*ledger.Transaction, error) {

	securities := make(map[string]*ledger.Security)
	securityFor := func(symbol string) *ledger.Security {
		if symbol == "" || symbol == "-" {
			return nil
		}
		sec, ok := securities[symbol]
		if !ok {
			sec = ledger.NewSecurity(symbol, symbol)
			securities[symbol] = sec
		}
		return sec
	}

	// Prices and splits first, so chains derive against complete market
	// data regardless of flag order.
	for _, opt := range priceOpts {
		symbol, on, val, err := parseMarketOpt(opt, "price")
		if err != nil {
			return nil, err
		}
		securityFor(symbol).AddPrice(on, val)
	}
	for _, opt := range splitOpts {
		symbol, on, val, err := parseMarketOpt(opt, "split")
		if err != nil {
			return nil, err
		}
		securityFor(symbol).AddSplit(on, val)
	}

	txns := make([]*ledger.Transaction, 0, len(txOpts))
	for i, opt := range txOpts {
		parts := strings.Split(opt, ":")
		if len(parts) != 5 && len(parts) != 6 {
			return nil, fmt.Errorf(
				"Invalid transaction format '%s' (want SYM:date:action:quantity:amount[:commission])", opt)
		}
		on, err := date.Parse(parts[1])
		if err != nil {
			return nil, fmt.Errorf("Invalid date in '%s'. %v", opt, err)
		}
		action, err := ledger.ParseAction(parts[2])
		if err != nil {
			return nil, fmt.Errorf("Invalid action in '%s'. %v", opt, err)
		}
		quantity, err := decimal.NewFromString(parts[3])
		if err != nil {
			return nil, fmt.Errorf("Invalid quantity in '%s'. %v", opt, err)
		}
		amount, err := decimal.NewFromString(parts[4])
		if err != nil {
			return nil, fmt.Errorf("Invalid amount in '%s'. %v", opt, err)
		}
		commission := decimal.Zero
		if len(parts) == 6 {
			commission, err = decimal.NewFromString(parts[5])
			if err != nil {
				return nil, fmt.Errorf("Invalid commission in '%s'. %v", opt, err)
			}
		}

		sec := securityFor(parts[0])
		txn := &ledger.Transaction{
			Id:       int64(i + 1),
			Date:     on,
			Action:   action,
			Account:  account,
			Security: sec,
		}
		if err := applyOptionSplits(txn, quantity.Abs(), amount, commission.Abs()); err != nil {
			return nil, fmt.Errorf("%v in '%s'", err, opt)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// applyOptionSplits translates the option's magnitude fields into signed
// ledger splits per the action: cash leaves on acquisitions and arrives on
// disposals, quantity rises on buys/covers and falls on sells/shorts.
func applyOptionSplits(
	txn *ledger.Transaction, quantity, amount, commission decimal.Decimal) error {

	addSecurity := func(amt, qty decimal.Decimal) {
		txn.Splits = append(txn.Splits, ledger.Split{
			Account:     txn.Account,
			AccountType: ledger.SecurityAccount,
			Amount:      amt,
			Quantity:    qty,
		})
	}

	switch txn.Action {
	case ledger.BUY, ledger.BUYXFR, ledger.COVER:
		addSecurity(amount.Abs().Neg(), quantity)
	case ledger.SELL, ledger.SELLXFR, ledger.SHORT:
		addSecurity(amount.Abs(), quantity.Neg())
	case ledger.DIVIDEND, ledger.MISCINC:
		txn.Splits = append(txn.Splits, ledger.Split{
			Account:     txn.Account,
			AccountType: ledger.IncomeAccount,
			Amount:      amount.Abs(),
		})
	case ledger.MISCEXP:
		txn.Splits = append(txn.Splits, ledger.Split{
			Account:     txn.Account,
			AccountType: ledger.ExpenseAccount,
			Amount:      amount.Abs(),
		})
	case ledger.BANK:
		// Sign convention for bank movements: a positive amount deposits
		// into the account, negative withdraws, so the caller passes the
		// signed value through the amount field.
		txn.Splits = append(txn.Splits, ledger.Split{
			Account:     txn.Account,
			AccountType: ledger.BankAccount,
			Amount:      amount,
		})
	default:
		return fmt.Errorf("Unsupported action %s", txn.Action)
	}

	if !commission.IsZero() {
		txn.Splits = append(txn.Splits, ledger.Split{
			Account:     txn.Account,
			AccountType: ledger.ExpenseAccount,
			Amount:      commission,
		})
	}
	return nil
}

func parseMarketOpt(opt string, kind string) (string, date.Date, decimal.Decimal, error) {
	parts := strings.Split(opt, ":")
	if len(parts) != 3 {
		return "", 0, decimal.Zero, fmt.Errorf(
			"Invalid %s format '%s' (want SYM:date:value)", kind, opt)
	}
	on, err := date.Parse(parts[1])
	if err != nil {
		return "", 0, decimal.Zero, fmt.Errorf("Invalid date in '%s'. %v", opt, err)
	}
	val, err := decimal.NewFromString(parts[2])
	if err != nil {
		return "", 0, decimal.Zero, fmt.Errorf("Invalid value in '%s'. %v", opt, err)
	}
	return parts[0], on, val, nil
}
