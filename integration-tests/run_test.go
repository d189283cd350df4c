package integration_tests_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dailytrader/cmd"
	integration_tests "dailytrader/integration-tests"
	"dailytrader/internal/app"
	"dailytrader/internal/domain"
	"dailytrader/internal/util"

	"github.com/creasty/defaults"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) util.Config {
	cfg := util.Config{}
	require.NoError(t, defaults.Set(&cfg))
	cfg.Env = "test"
	cfg.Alpaca.ApiKey = "key"
	cfg.Alpaca.ApiSecret = "secret"
	cfg.Selection.Symbols = []string{"AAPL", "GOOG", "TSLA"}
	cfg.Trading.OrderInterval = 0
	cfg.ReportDir = t.TempDir()
	require.NoError(t, cfg.Validate())
	return cfg
}

// 2024-03-04 is a Monday
var monday = time.Date(2024, 3, 4, 10, 0, 0, 0, util.MarketLocation())

func newRun(t *testing.T, cfg util.Config, broker *integration_tests.FakeBroker, now time.Time) *cmd.Dependencies {
	deps, err := cmd.NewDependencies(cfg, broker, func() time.Time { return now })
	require.NoError(t, err)
	return deps
}

func TestDailyRun(t *testing.T) {
	ctx := context.Background()

	t.Run("trades the static universe", func(t *testing.T) {
		cfg := testConfig(t)
		broker := integration_tests.NewFakeBrokerForTests()
		deps := newRun(t, cfg, broker, monday)

		snapshot, err := deps.TradingRunHandler.Run(ctx, app.RunInput{})
		require.NoError(t, err)
		require.False(t, snapshot.Skipped)
		require.Equal(t, []string{"AAPL", "GOOG", "TSLA"}, snapshot.Universe)

		actions := map[string]domain.SignalAction{}
		for _, s := range snapshot.Signals {
			actions[s.Symbol] = s.Action
		}
		require.Equal(t, map[string]domain.SignalAction{
			"AAPL": domain.SignalAction_Buy,
			"GOOG": domain.SignalAction_Hold,
			"TSLA": domain.SignalAction_Sell,
		}, actions)

		// 20% of 50k buying power at $125
		require.Len(t, broker.Orders, 2)
		require.Equal(t, "AAPL", broker.Orders[0].Symbol)
		require.Equal(t, domain.OrderSide_Buy, broker.Orders[0].Side)
		require.True(t, broker.Orders[0].Quantity.Equal(decimal.NewFromInt(80)))
		require.Equal(t, "TSLA", broker.Orders[1].Symbol)
		require.Equal(t, domain.OrderSide_Sell, broker.Orders[1].Side)
		require.True(t, broker.Orders[1].Quantity.Equal(decimal.NewFromInt(7)))
		require.Equal(t, 2, snapshot.TradesSubmitted())

		f, err := os.Open(filepath.Join(cfg.ReportDir, "orders_20240304.csv"))
		require.NoError(t, err)
		defer f.Close()
		type row struct {
			Symbol string `csv:"symbol"`
			Side   string `csv:"side"`
			Status string `csv:"status"`
		}
		rows := []row{}
		require.NoError(t, gocsv.UnmarshalFile(f, &rows))
		require.Equal(t, []row{
			{Symbol: "AAPL", Side: "BUY", Status: string(domain.OrderStatus_Submitted)},
			{Symbol: "TSLA", Side: "SELL", Status: string(domain.OrderStatus_Submitted)},
		}, rows)
		require.FileExists(t, filepath.Join(cfg.ReportDir, "daily_report_20240304.json"))
	})

	t.Run("dry run places nothing", func(t *testing.T) {
		cfg := testConfig(t)
		broker := integration_tests.NewFakeBrokerForTests()
		deps := newRun(t, cfg, broker, monday)

		snapshot, err := deps.TradingRunHandler.Run(ctx, app.RunInput{DryRun: true})
		require.NoError(t, err)
		require.Empty(t, broker.Orders)
		require.Len(t, snapshot.Outcomes, 2)
		for _, o := range snapshot.Outcomes {
			require.Equal(t, domain.OrderStatus_Submitted, o.Status)
			require.Equal(t, domain.DryRunOrderID, *o.BrokerOrderID)
		}
	})

	t.Run("rejected order does not stop the run", func(t *testing.T) {
		cfg := testConfig(t)
		broker := integration_tests.NewFakeBrokerForTests()
		broker.RejectOrder["AAPL"] = true
		deps := newRun(t, cfg, broker, monday)

		snapshot, err := deps.TradingRunHandler.Run(ctx, app.RunInput{})
		require.NoError(t, err)
		require.Len(t, snapshot.Outcomes, 2)
		require.Equal(t, domain.OrderStatus_Failed, snapshot.Outcomes[0].Status)
		require.Contains(t, *snapshot.Outcomes[0].ErrorDetail, "rejected")
		require.Equal(t, domain.OrderStatus_Submitted, snapshot.Outcomes[1].Status)
		require.Len(t, broker.Orders, 1)
	})

	t.Run("saturday is skipped", func(t *testing.T) {
		cfg := testConfig(t)
		broker := integration_tests.NewFakeBrokerForTests()
		deps := newRun(t, cfg, broker, monday.AddDate(0, 0, -2))

		snapshot, err := deps.TradingRunHandler.Run(ctx, app.RunInput{})
		require.NoError(t, err)
		require.True(t, snapshot.Skipped)
		require.Contains(t, snapshot.SkipReason, "weekend")
		require.Empty(t, broker.Orders)
	})

	t.Run("holiday is skipped", func(t *testing.T) {
		cfg := testConfig(t)
		broker := integration_tests.NewFakeBrokerForTests()
		broker.Holidays["2024-03-04"] = true
		deps := newRun(t, cfg, broker, monday)

		snapshot, err := deps.TradingRunHandler.Run(ctx, app.RunInput{})
		require.NoError(t, err)
		require.True(t, snapshot.Skipped)
		require.Equal(t, "market holiday", snapshot.SkipReason)
	})

	t.Run("broker universe by volume", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Selection.Source = string(domain.UniverseSource_Broker)
		cfg.Selection.Method = string(domain.SelectionMethod_HighVolume)
		cfg.Selection.Exchanges = []string{"NASDAQ", "NYSE"}
		broker := integration_tests.NewFakeBrokerForTests()
		deps := newRun(t, cfg, broker, monday)

		snapshot, err := deps.TradingRunHandler.Run(ctx, app.RunInput{DryRun: true})
		require.NoError(t, err)
		// IBM trades below the 5M floor
		require.Equal(t, []string{"TSLA", "AAPL", "GOOG"}, snapshot.Universe)
	})
}
