package app

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/invext/invext/app/outfmt"
	"github.com/invext/invext/date"
	"github.com/invext/invext/ledger"
	"github.com/invext/invext/log"
	"github.com/invext/invext/perf"
)

// Options selects the reporting window and strategy knobs for one run.
type Options struct {
	Start  date.Date
	End    date.Date
	Basis  perf.GainsCalc
	Policy perf.WindowPolicy

	RenderFullDollarValues bool
}

// SecurityReport is one security's derived chain plus its reduced metrics.
type SecurityReport struct {
	Ticker  string
	Values  *perf.ValuesList
	Gains   *perf.CumulativeGains
	Metrics *perf.SecurityMetrics
	Err     error
}

// securityExtractors is the full per-security extractor set. Each member
// also serves as the combine operand for the account roll-up.
type securityExtractors struct {
	ordinary   *perf.OrdinaryReturn
	dietz      *perf.ModifiedDietzReturn
	annual     *perf.AnnualReturn
	mwr        *perf.MoneyWeightedReturn
	realized   *perf.RealizedGains
	unrealized *perf.UnrealizedGains
	total      *perf.TotalGains
	basis      *perf.LongBasis
}

func newSecurityExtractors(opts Options) *securityExtractors {
	return &securityExtractors{
		ordinary:   perf.NewOrdinaryReturn(opts.Start, opts.End),
		dietz:      perf.NewModifiedDietzReturn(opts.Start, opts.End, opts.Policy),
		annual:     perf.NewAnnualReturn(opts.Start, opts.End, opts.Policy),
		mwr:        perf.NewMoneyWeightedReturn(opts.Start, opts.End, opts.Policy),
		realized:   perf.NewRealizedGains(opts.Start, opts.End),
		unrealized: perf.NewUnrealizedGains(opts.Start, opts.End),
		total:      perf.NewTotalGains(opts.Start, opts.End),
		basis:      perf.NewLongBasis(opts.Start, opts.End),
	}
}

func (x *securityExtractors) feed(values *perf.ValuesList) {
	for _, v := range values.Values {
		x.ordinary.NextTransaction(v)
		x.dietz.NextTransaction(v)
		x.annual.NextTransaction(v)
		x.mwr.NextTransaction(v)
		x.realized.NextTransaction(v)
		x.unrealized.NextTransaction(v)
		x.total.NextTransaction(v)
		x.basis.NextTransaction(v)
	}
}

func (x *securityExtractors) combine(o *securityExtractors) {
	x.ordinary.Combine(o.ordinary)
	x.dietz.Combine(o.dietz)
	x.annual.Combine(o.annual)
	x.mwr.Combine(o.mwr)
	x.realized.Combine(o.realized)
	x.unrealized.Combine(o.unrealized)
	x.total.Combine(o.total)
	x.basis.Combine(o.basis)
}

func (x *securityExtractors) metrics(name string, errp log.ErrorPrinter) *perf.SecurityMetrics {
	annual, err := x.annual.Result()
	if err != nil {
		errp.F("warning: annual return for %s: %v\n", name, err)
	}
	mwr, err := x.mwr.Result()
	if err != nil {
		errp.F("warning: money-weighted return for %s: %v\n", name, err)
	}
	return &perf.SecurityMetrics{
		Name:            name,
		Ordinary:        x.ordinary.Result(),
		ModifiedDietz:   x.dietz.Result(),
		Annual:          annual,
		MoneyWeighted:   mwr,
		RealizedGains:   x.realized.Result(),
		UnrealizedGains: x.unrealized.Result(),
		TotalGains:      x.total.Result(),
		EndingLongBasis: x.basis.Result(),
	}
}

// BuildReports derives every security chain in the account (concurrently;
// chains are independent of each other) plus the synthetic cash chain, and
// reduces each to its metrics. A construction-fatal error in one chain is
// recorded on that security's report and does not abort the others.
func BuildReports(
	account *ledger.Account,
	txns []*ledger.Transaction,
	opts Options,
	errp log.ErrorPrinter,
) ([]*SecurityReport, *perf.SecurityMetrics, error) {

	sorted := make([]*ledger.Transaction, len(txns))
	copy(sorted, txns)
	ledger.SortTransactions(sorted)

	bySec := ledger.SplitBySecurity(sorted)
	tickers := make([]string, 0, len(bySec))
	for ticker := range bySec {
		if ticker != "" {
			tickers = append(tickers, ticker)
		}
	}
	sort.Strings(tickers)

	reports := make([]*SecurityReport, len(tickers))
	var g errgroup.Group
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			secTxns := bySec[ticker]
			values, err := perf.BuildValues(
				account, secTxns[0].Security, secTxns, opts.Basis, errp)
			reports[i] = &SecurityReport{
				Ticker: ticker,
				Values: values,
				Gains:  perf.CalcSecurityCumulativeGains(values.Values),
				Err:    err,
			}
			return nil
		})
	}
	// Worker errors are carried per report; the group only propagates
	// panics-as-errors, so this wait cannot fail.
	_ = g.Wait()

	// The synthetic cash chain participates like any security: it gets its
	// own report row, and its flows cancel the trade legs in the account
	// roll-up so only external movements count.
	if len(sorted) > 0 {
		cash := perf.BuildCashValues(account, sorted, errp)
		reports = append(reports, &SecurityReport{
			Ticker: cash.Security.Ticker,
			Values: cash,
			Gains:  perf.CalcSecurityCumulativeGains(cash.Values),
		})
	}

	var retErr error
	var acctX *securityExtractors
	for _, rep := range reports {
		if rep.Err != nil && retErr == nil {
			retErr = rep.Err
		}
		x := newSecurityExtractors(opts)
		x.feed(rep.Values)
		rep.Metrics = x.metrics(rep.Ticker, errp)
		if acctX == nil {
			acctX = x
		} else {
			acctX.combine(x)
		}
	}

	var acctMetrics *perf.SecurityMetrics
	if acctX != nil {
		acctMetrics = acctX.metrics(account.Name, errp)
	}
	return reports, acctMetrics, retErr
}

// RunReport derives, reduces, and renders the account report: one metrics
// table (per security plus the account roll-up), the transaction-level
// audit dump per security, and the yearly aggregate-gains table.
func RunReport(
	writer outfmt.ReportWriter,
	account *ledger.Account,
	txns []*ledger.Transaction,
	opts Options,
	errp log.ErrorPrinter,
) error {

	if len(txns) == 0 {
		return fmt.Errorf("no transactions for account %s", account.Name)
	}

	reports, acctMetrics, retErr := BuildReports(account, txns, opts, errp)

	metricRows := make([]*perf.SecurityMetrics, 0, len(reports)+1)
	secGains := make(map[string]*perf.CumulativeGains)
	for _, rep := range reports {
		metricRows = append(metricRows, rep.Metrics)
		secGains[rep.Ticker] = rep.Gains
	}
	if acctMetrics != nil {
		metricRows = append(metricRows, acctMetrics)
	}

	metricsTable := perf.RenderMetricsTableModel(metricRows, opts.RenderFullDollarValues)
	if err := writer.PrintRenderTable(outfmt.Metrics, account.Name, metricsTable); err != nil {
		return err
	}

	for _, rep := range reports {
		table := perf.RenderValuesTableModel(rep.Values, rep.Gains, opts.RenderFullDollarValues)
		if rep.Err != nil {
			table.Errors = append(table.Errors, rep.Err)
		}
		if err := writer.PrintRenderTable(outfmt.Values, rep.Ticker, table); err != nil {
			return err
		}
	}

	aggTable := perf.RenderAggregateGains(
		perf.CalcCumulativeGains(secGains), opts.RenderFullDollarValues)
	if err := writer.PrintRenderTable(outfmt.AggregateGains, account.Name, aggTable); err != nil {
		return err
	}

	return retErr
}
