package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dailytrader/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func Test_reportRepositoryHandler_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	handler := NewReportRepository(dir)

	orderID := "f4c1b7a2"
	errDetail := "insufficient qty available"
	qty := decimal.NewFromInt(4)
	price := decimal.NewFromFloat(187.125)
	snapshot := domain.AssembleRunSnapshot(
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		domain.AccountSnapshot{
			Equity:      decimal.NewFromInt(100000),
			BuyingPower: decimal.NewFromInt(50000),
			Cash:        decimal.NewFromInt(50000),
		},
		[]domain.Signal{
			domain.NewSignal("AAPL", 2, 0, []string{"momentum"}),
			domain.NewSignal("TSLA", 0, 2, nil),
		},
		[]domain.OrderOutcome{
			{Symbol: "AAPL", Side: domain.OrderSide_Buy, Status: domain.OrderStatus_Submitted, BrokerOrderID: &orderID, Quantity: &qty, Price: &price},
			{Symbol: "TSLA", Side: domain.OrderSide_Sell, Status: domain.OrderStatus_Failed, ErrorDetail: &errDetail},
		},
	)

	paths, err := handler.Save(snapshot)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	require.Equal(t, filepath.Join(dir, "daily_report_20240304.json"), paths[0])
	require.Equal(t, filepath.Join(dir, "orders_20240304.csv"), paths[1])

	reportBytes, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	report := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(reportBytes, &report))
	require.Equal(t, snapshot.RunID.String(), report["runId"])
	require.Contains(t, report, "summary")
	require.Len(t, report["signals"], 2)

	csvBytes, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvBytes)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "date,symbol,side,status,quantity,price,broker_order_id,error_detail,dry_run", lines[0])
	require.Equal(t, "2024-03-04,AAPL,BUY,submitted,4,187.13,f4c1b7a2,,false", lines[1])
	require.Equal(t, "2024-03-04,TSLA,SELL,failed,,,,insufficient qty available,false", lines[2])
}
