package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/invext/invext/date"
)

// AccountType classifies the account a split posts against.
type AccountType int

const (
	InvestmentAccount AccountType = iota
	SecurityAccount
	BankAccount
	IncomeAccount
	ExpenseAccount
)

func (t AccountType) String() string {
	switch t {
	case InvestmentAccount:
		return "INVESTMENT"
	case SecurityAccount:
		return "SECURITY"
	case BankAccount:
		return "BANK"
	case IncomeAccount:
		return "INCOME"
	case ExpenseAccount:
		return "EXPENSE"
	default:
		return "UNKNOWN"
	}
}

// Action is the investment type of a parent transaction.
type Action int

const (
	BUY Action = iota
	SELL
	SHORT
	COVER
	BUYXFR
	SELLXFR
	DIVIDEND
	BANK
	MISCINC
	MISCEXP
)

func (a Action) String() string {
	switch a {
	case BUY:
		return "Buy"
	case SELL:
		return "Sell"
	case SHORT:
		return "Short"
	case COVER:
		return "Cover"
	case BUYXFR:
		return "BuyXfr"
	case SELLXFR:
		return "SellXfr"
	case DIVIDEND:
		return "Dividend"
	case BANK:
		return "Bank"
	case MISCINC:
		return "MiscInc"
	case MISCEXP:
		return "MiscExp"
	default:
		return "INVALID"
	}
}

func ParseAction(s string) (Action, error) {
	for a := BUY; a <= MISCEXP; a++ {
		if s == a.String() {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction action %q", s)
}

// OpensPosition reports whether the action may legally start a security's
// transaction sequence.
func (a Action) OpensPosition() bool {
	return a == BUY || a == BUYXFR || a == SHORT
}

// ClosesPosition reports whether the action disposes of existing units.
func (a Action) ClosesPosition() bool {
	return a == SELL || a == SELLXFR || a == COVER
}

type Account struct {
	Name string
	Type AccountType
}

// Split is one leg of a transaction: a signed cash amount and/or a signed
// security quantity posted to an account.
type Split struct {
	Account     *Account
	AccountType AccountType
	Amount      decimal.Decimal
	Quantity    decimal.Decimal
}

// Transaction is a parent ledger transaction. The engine treats this as
// opaque read-only input; Id is the host ledger's stable, monotonically
// assigned identifier and serves as the chronological tie-break.
type Transaction struct {
	Id       int64
	Date     date.Date
	Action   Action
	Account  *Account  // the reference (investment) account
	Security *Security // nil for pure cash transactions
	Splits   []Split
	Memo     string

	// Lot allocations for lot-matching cost basis: originating (buy)
	// transaction id to the quantity of that lot consumed by this
	// disposal. Nil means no allocation was recorded.
	LotAllocations map[int64]decimal.Decimal
}

func (t *Transaction) SecurityTicker() string {
	if t.Security == nil {
		return ""
	}
	return t.Security.Ticker
}

// actionSortRank orders same-day transactions so that position-opening
// actions fold before disposals.
func actionSortRank(a Action) int {
	switch a {
	case BUY, BUYXFR, SHORT:
		return 0
	case DIVIDEND, BANK, MISCINC, MISCEXP:
		return 1
	default:
		return 2
	}
}

// SortTransactions orders transactions chronologically, then by action
// rank, then by id. The sort is deterministic for any input ordering.
func SortTransactions(txns []*Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if txns[i].Date != txns[j].Date {
			return txns[i].Date < txns[j].Date
		}
		ri, rj := actionSortRank(txns[i].Action), actionSortRank(txns[j].Action)
		if ri != rj {
			return ri < rj
		}
		return txns[i].Id < txns[j].Id
	})
}

// SplitBySecurity groups transactions by security ticker, preserving
// relative order. Pure cash transactions (no security) group under "".
func SplitBySecurity(txns []*Transaction) map[string][]*Transaction {
	bySec := make(map[string][]*Transaction)
	for _, txn := range txns {
		key := txn.SecurityTicker()
		bySec[key] = append(bySec[key], txn)
	}
	return bySec
}
