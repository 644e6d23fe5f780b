package perf

import (
	"fmt"
	"io"
	"os"
	"strings"

	tw "github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	decimal_opt "github.com/invext/invext/decimal_value"
	"github.com/invext/invext/util"
)

type _PrintHelper struct {
	PrintAllDecimals bool
}

var displayNanEnvSetting util.Optional[string]

func NaNString() string {
	if !displayNanEnvSetting.Present() {
		displayNanEnvSetting.Set(os.Getenv("DISPLAY_NAN"))
	}
	if displayNanEnvSetting.MustGet() == "" || displayNanEnvSetting.MustGet() == "0" {
		return "-"
	}
	return "NaN"
}

func (h _PrintHelper) CurrStr(val decimal.Decimal) string {
	if h.PrintAllDecimals {
		return val.String()
	}
	return val.StringFixed(2)
}

func (h _PrintHelper) OptCurrStr(val decimal_opt.DecimalOpt) string {
	if val.IsNull {
		return val.String()
	}
	return h.CurrStr(val.Decimal)
}

func (h _PrintHelper) DollarStr(val decimal_opt.DecimalOpt) string {
	if val.IsNull {
		return NaNString()
	}
	return "$" + h.OptCurrStr(val)
}

func (h _PrintHelper) PlusMinusDollar(val decimal_opt.DecimalOpt, showPlus bool) string {
	if val.IsNull {
		return NaNString()
	}
	if val.IsNegative() {
		return fmt.Sprintf("-$%s", h.OptCurrStr(val.Neg()))
	}
	return fmt.Sprintf("%s$%s", util.Tern(showPlus, "+", ""), h.OptCurrStr(val))
}

func strOrDash(useStr bool, str string) string {
	return util.Tern(useStr, str, "-")
}

type RenderTable struct {
	Header []string
	Rows   [][]string
	Footer []string
	Notes  []string
	Errors []error
}

// RenderValuesTableModel builds the transaction-level audit dump for one
// security chain: every derived field, one row per transaction, with
// yearly realized-gain totals in the footer.
func RenderValuesTableModel(
	list *ValuesList, gains *CumulativeGains, renderFullDollarValues bool) *RenderTable {

	table := &RenderTable{}
	table.Header = []string{"Security", "Date", "TX", "Shares", "Price", "Position",
		"Basis", "Open Value", "Rlzd Gain", "Unrlzd +/-", "Total Gain", "Income/Exp", "Memo",
	}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	for _, v := range list.Values {
		tradeCash := v.Buy.Add(v.Sell).Add(v.ShortSell).Add(v.CoverShort)
		row := []string{
			v.Security.Ticker,
			v.Date.String(),
			v.Txn.Action.String(),
			strOrDash(!v.SecQuantity.IsZero(), v.SecQuantity.String()),
			strOrDash(!v.MktPrice.IsZero(), ph.CurrStr(v.MktPrice)),
			v.Position.String(),
			ph.DollarStr(v.ActiveBasis()),
			ph.DollarStr(v.OpenValue),
			strOrDash(v.Txn.Action.ClosesPosition(),
				ph.PlusMinusDollar(v.PerRealizedGain, false)),
			ph.PlusMinusDollar(v.PerUnrealizedGain, true),
			ph.PlusMinusDollar(v.PerTotalGain, true),
			strOrDash(!tradeCash.IsZero() || !v.PerIncomeExpense.IsZero(),
				ph.PlusMinusDollar(v.PerIncomeExpense, false)),
			v.Txn.Memo,
		}
		table.Rows = append(table.Rows, row)
	}

	years := gains.YearsSorted()
	yearStrs := []string{}
	yearValsStrs := []string{}
	for _, year := range years {
		yearStrs = append(yearStrs, fmt.Sprintf("%d", year))
		yearValsStrs = append(yearValsStrs, ph.PlusMinusDollar(gains.RealizedYearTotals[year], false))
	}
	totalFooterLabel := "Total"
	totalFooterValsStr := ph.PlusMinusDollar(gains.RealizedTotal, false)
	if len(years) > 0 {
		totalFooterLabel += "\n" + strings.Join(yearStrs, "\n")
		totalFooterValsStr += "\n" + strings.Join(yearValsStrs, "\n")
	}

	table.Footer = []string{"", "", "", "", "", "", "",
		totalFooterLabel, totalFooterValsStr, "", "", "", ""}

	return table
}

/*
Generates a RenderTable that will render out to this:
| Year             | Realized Gains |
+------------------+----------------+
| 2000             | xxxx.xx        |
| 2001             | xxxx.xx        |
| Since inception  | xxxx.xx        |
*/
func RenderAggregateGains(
	gains *CumulativeGains, renderFullDollarValues bool) *RenderTable {

	table := &RenderTable{}
	table.Header = []string{"Year", "Realized Gains"}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	for _, year := range gains.YearsSorted() {
		table.Rows = append(
			table.Rows,
			[]string{fmt.Sprintf("%d", year), ph.PlusMinusDollar(gains.RealizedYearTotals[year], false)})
	}
	table.Rows = append(
		table.Rows,
		[]string{"Since inception", ph.PlusMinusDollar(gains.RealizedTotal, false)})

	return table
}

// SecurityMetrics is one security's (or roll-up row's) reduced results
// over a reporting window.
type SecurityMetrics struct {
	Name            string
	Ordinary        Metric
	ModifiedDietz   Metric
	Annual          Metric
	MoneyWeighted   Metric
	RealizedGains   decimal_opt.DecimalOpt
	UnrealizedGains decimal_opt.DecimalOpt
	TotalGains      decimal_opt.DecimalOpt
	EndingLongBasis decimal_opt.DecimalOpt
}

func RenderMetricsTableModel(
	rows []*SecurityMetrics, renderFullDollarValues bool) *RenderTable {

	table := &RenderTable{}
	table.Header = []string{"Security", "Return", "Mod. Dietz", "Annual", "MWR",
		"Rlzd Gains", "Unrlzd Gains", "Total Gains", "Long Basis",
	}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.Name,
			r.Ordinary.String(),
			r.ModifiedDietz.String(),
			r.Annual.String(),
			r.MoneyWeighted.String(),
			ph.PlusMinusDollar(r.RealizedGains, false),
			ph.PlusMinusDollar(r.UnrealizedGains, false),
			ph.PlusMinusDollar(r.TotalGains, false),
			ph.DollarStr(r.EndingLongBasis),
		})
	}
	return table
}

func PrintRenderTable(title string, tableModel *RenderTable, writer io.Writer) {
	for _, err := range tableModel.Errors {
		fmt.Fprintf(writer, "[!] %v. Printing partially derived state:\n", err)
	}
	fmt.Fprintf(writer, "%s\n", title)

	table := tw.NewWriter(writer)
	table.SetHeader(tableModel.Header)
	table.SetBorder(false)
	table.SetRowLine(true)

	for _, row := range tableModel.Rows {
		table.Append(row)
	}

	if len(tableModel.Footer) > 0 {
		table.SetFooter(tableModel.Footer)
	}

	table.Render()

	for _, note := range tableModel.Notes {
		fmt.Fprintln(writer, note)
	}
}
