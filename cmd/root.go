package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/invext/invext/app"
	"github.com/invext/invext/app/outfmt"
	"github.com/invext/invext/date"
	"github.com/invext/invext/ledger"
	"github.com/invext/invext/log"
	"github.com/invext/invext/perf"
)

var (
	ConfigFileOpt string
	AccountName   string
	TxOpts        []string
	PriceOpts     []string
	SplitOpts     []string
	StartDateOpt  string
	EndDateOpt    string
	BasisOpt      string
	PolicyOpt     string
	AllDecimals   bool
	CsvOutputDir  string
)

var loadedConfig *app.Config

func parseWindow() (date.Date, date.Date, error) {
	end := date.Today()
	if EndDateOpt != "" {
		var err error
		end, err = date.Parse(EndDateOpt)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --end date: %v", err)
		}
	}
	start := date.New(end.Year()-1, end.Month(), end.Day())
	if StartDateOpt != "" {
		var err error
		start, err = date.Parse(StartDateOpt)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --start date: %v", err)
		}
	}
	return start, end, nil
}

func basisCalc(name string) (perf.GainsCalc, error) {
	switch name {
	case "average":
		return perf.AverageCostCalc{}, nil
	case "lots":
		return perf.LotMatchingCalc{}, nil
	default:
		return nil, fmt.Errorf("unknown basis strategy %q (want average or lots)", name)
	}
}

func runRootCmd(cmd *cobra.Command, args []string) {
	errPrinter := &log.StderrErrorPrinter{}

	start, end, err := parseWindow()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if BasisOpt == "" {
		BasisOpt = loadedConfig.BasisStrategy
	}
	calc, err := basisCalc(BasisOpt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if PolicyOpt == "" {
		PolicyOpt = loadedConfig.WindowPolicy
	}
	policy, err := perf.ParseWindowPolicy(PolicyOpt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	account := &ledger.Account{Name: AccountName, Type: ledger.InvestmentAccount}
	txns, err := app.ParseTxOptions(TxOpts, PriceOpts, SplitOpts, account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing --tx: %v\n", err)
		os.Exit(1)
	}

	var writer outfmt.ReportWriter = outfmt.NewSTDWriter(os.Stdout)
	if CsvOutputDir == "" {
		CsvOutputDir = loadedConfig.CsvOutputDir
	}
	if CsvOutputDir != "" {
		writer, err = outfmt.NewCSVWriter(CsvOutputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	opts := app.Options{
		Start:                  start,
		End:                    end,
		Basis:                  calc,
		Policy:                 policy,
		RenderFullDollarValues: AllDecimals || loadedConfig.AllDecimals,
	}
	if err := app.RunReport(writer, account, txns, opts, errPrinter); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdName() string {
	binName := os.Args[0]
	return filepath.Base(binName)
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   cmdName(),
	Short: "Investment performance calculation tool",
	Long: `A cli tool which computes investment-performance metrics (ordinary,
Modified-Dietz, annualized and money-weighted returns, realized and
unrealized gains, cost basis) from a transaction ledger.

Transactions, prices, and stock splits are provided inline:

  --tx    SYM:date:action:quantity:amount[:commission]
          actions: Buy, Sell, Short, Cover, BuyXfr, SellXfr,
                   Dividend, Bank, MiscInc, MiscExp
  --price SYM:date:price
  --split SYM:date:ratio

Dates are formatted as 2006-01-02. Quantities and amounts are magnitudes;
the action determines their signs (Bank amounts keep their sign: positive
deposits, negative withdraws).`,
	Run:     runRootCmd,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(onInit)

	RootCmd.PersistentFlags().StringVar(&ConfigFileOpt, "config", "",
		"Config file (default $HOME/.invext.toml)")
	RootCmd.Flags().StringVarP(&AccountName, "account", "a", "default",
		"Name of the investment account being reported on")
	RootCmd.Flags().StringArrayVarP(&TxOpts, "tx", "t", []string{},
		"Transaction, formatted as SYM:date:action:quantity:amount[:commission]. "+
			"May be provided multiple times.")
	RootCmd.Flags().StringArrayVarP(&PriceOpts, "price", "p", []string{},
		"Price observation, formatted as SYM:date:price. May be provided multiple times.")
	RootCmd.Flags().StringArrayVar(&SplitOpts, "split", []string{},
		"Stock split, formatted as SYM:date:ratio (2 for a 2-for-1 split). "+
			"May be provided multiple times.")
	RootCmd.Flags().StringVar(&StartDateOpt, "start", "",
		"Start of the reporting window (default one year before the end)")
	RootCmd.Flags().StringVar(&EndDateOpt, "end", "",
		"End of the reporting window (default today)")
	RootCmd.Flags().StringVarP(&BasisOpt, "basis", "b", "",
		"Cost basis strategy: average or lots")
	RootCmd.Flags().StringVar(&PolicyOpt, "policy", "",
		"Window start policy for return metrics: default, all, or any")
	RootCmd.Flags().BoolVar(&AllDecimals, "all-decimals", false,
		"Print full decimal precision instead of rounding to cents")
	RootCmd.Flags().StringVar(&CsvOutputDir, "csv-output-dir", "",
		"Write report tables as CSV files into this directory instead of stdout")
}

// onInit reads in config file and ENV variables if set, and performs global
// or common actions before running command functions.
func onInit() {
	var err error
	loadedConfig, err = app.LoadConfig(ConfigFileOpt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
