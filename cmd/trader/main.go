package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"dailytrader/cmd"
	"dailytrader/internal/app"
	"dailytrader/internal/domain"
	"dailytrader/internal/logger"
	"dailytrader/internal/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runDryRun    bool
	runPrintJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "Daily paper trading job",
	Long: `trader runs once per trading day: it checks the market calendar,
selects a universe of symbols, classifies each as BUY, SELL or HOLD and
submits paper orders for the actionable ones.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily pipeline",
	Long: `Run the daily pipeline once.

Examples:
  trader run
  trader run --dry-run
  TRADER_ENV=test trader run --json`,
	RunE: runPipeline,
}

var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Print the symbols the configured selection would trade",
	RunE:  runUniverse,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with credentials masked",
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := util.LoadConfig()
		if err != nil {
			return err
		}
		fmt.Println(cfg.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd, universeCmd, configCmd)

	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Classify and log orders without submitting them, same as DRY_RUN=true")
	runCmd.Flags().BoolVar(&runPrintJSON, "json", false, "Print the run snapshot as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup() (context.Context, *cmd.Dependencies, error) {
	cfg, err := util.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	deps, err := cmd.InitializeDependencies(*cfg)
	if err != nil {
		return nil, nil, err
	}

	log := zap.S().With("env", cfg.Env)
	ctx := logger.NewContext(context.Background(), log)
	log.Infof("loaded %s", cfg.String())
	return ctx, deps, nil
}

func runPipeline(c *cobra.Command, args []string) error {
	ctx, deps, err := setup()
	if err != nil {
		return err
	}
	defer zap.S().Sync()

	dryRun := runDryRun || deps.Config.Trading.DryRun
	snapshot, err := deps.TradingRunHandler.Run(ctx, app.RunInput{DryRun: dryRun})
	if err != nil {
		return err
	}

	if runPrintJSON {
		out, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}
	printSummary(snapshot)
	return nil
}

func printSummary(snapshot *domain.RunSnapshot) {
	if snapshot.Skipped {
		fmt.Printf("%s: skipped (%s)\n", util.FormatDate(snapshot.Date), snapshot.SkipReason)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tACTION\tBUY\tSELL\tREASONS")
	for _, s := range snapshot.Signals {
		reasons := strings.Join(s.Reasons, "; ")
		if s.Error != nil {
			reasons = "error: " + *s.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", s.Symbol, s.Action, s.BuyScore, s.SellScore, reasons)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SYMBOL\tSIDE\tSTATUS\tQTY\tORDER")
	for _, o := range snapshot.Outcomes {
		qty, orderID := "-", "-"
		if o.Quantity != nil {
			qty = o.Quantity.String()
		}
		if o.BrokerOrderID != nil {
			orderID = *o.BrokerOrderID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.Symbol, o.Side, o.Status, qty, orderID)
	}
	w.Flush()

	fmt.Printf("\n%s: %d symbols, %d orders submitted (dry run: %t)\n",
		util.FormatDate(snapshot.Date), len(snapshot.Signals), snapshot.TradesSubmitted(), snapshot.DryRun)
}

func runUniverse(c *cobra.Command, args []string) error {
	ctx, deps, err := setup()
	if err != nil {
		return err
	}
	defer zap.S().Sync()

	symbols, err := deps.UniverseService.Select(ctx, deps.Config.SelectionCriteria())
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(symbols, ","))

	dist := deps.ReferenceUniverse.SectorDistribution(symbols)
	sectors := make([]string, 0, len(dist))
	for sector := range dist {
		sectors = append(sectors, string(sector))
	}
	sort.Strings(sectors)
	for _, sector := range sectors {
		fmt.Printf("  %-14s %d\n", sector, dist[domain.Sector(sector)])
	}
	return nil
}
