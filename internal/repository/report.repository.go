package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dailytrader/internal/domain"
	"dailytrader/internal/util"

	"github.com/gocarina/gocsv"
)

type ReportRepository interface {
	// Save writes the snapshot artifacts and returns the paths written
	Save(snapshot domain.RunSnapshot) ([]string, error)
}

type reportRepositoryHandler struct {
	Dir string
}

func NewReportRepository(dir string) ReportRepository {
	return reportRepositoryHandler{Dir: dir}
}

type outcomeRow struct {
	Date          string `csv:"date"`
	Symbol        string `csv:"symbol"`
	Side          string `csv:"side"`
	Status        string `csv:"status"`
	Quantity      string `csv:"quantity"`
	Price         string `csv:"price"`
	BrokerOrderID string `csv:"broker_order_id"`
	ErrorDetail   string `csv:"error_detail"`
	DryRun        bool   `csv:"dry_run"`
}

func toOutcomeRows(snapshot domain.RunSnapshot) []*outcomeRow {
	rows := make([]*outcomeRow, 0, len(snapshot.Outcomes))
	for _, o := range snapshot.Outcomes {
		row := &outcomeRow{
			Date:   util.FormatDate(snapshot.Date),
			Symbol: o.Symbol,
			Side:   string(o.Side),
			Status: string(o.Status),
			DryRun: snapshot.DryRun,
		}
		if o.Quantity != nil {
			row.Quantity = o.Quantity.String()
		}
		if o.Price != nil {
			row.Price = o.Price.StringFixed(2)
		}
		if o.BrokerOrderID != nil {
			row.BrokerOrderID = *o.BrokerOrderID
		}
		if o.ErrorDetail != nil {
			row.ErrorDetail = *o.ErrorDetail
		}
		rows = append(rows, row)
	}
	return rows
}

func (h reportRepositoryHandler) Save(snapshot domain.RunSnapshot) ([]string, error) {
	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report dir %s: %w", h.Dir, err)
	}
	stamp := snapshot.Date.Format("20060102")

	reportPath := filepath.Join(h.Dir, fmt.Sprintf("daily_report_%s.json", stamp))
	bytes, err := json.MarshalIndent(struct {
		domain.RunSnapshot
		Summary domain.RunSummary `json:"summary"`
	}{snapshot, snapshot.Summary()}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run snapshot: %w", err)
	}
	if err := os.WriteFile(reportPath, bytes, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", reportPath, err)
	}

	ordersPath := filepath.Join(h.Dir, fmt.Sprintf("orders_%s.csv", stamp))
	f, err := os.Create(ordersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", ordersPath, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(toOutcomeRows(snapshot), f); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", ordersPath, err)
	}

	return []string{reportPath, ordersPath}, nil
}
