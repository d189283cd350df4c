package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dailytrader/internal/domain"
	"dailytrader/internal/logger"
	"dailytrader/internal/repository"
	l1_service "dailytrader/internal/service/l1"
	l2_service "dailytrader/internal/service/l2"
	"dailytrader/internal/util"
)

var (
	ErrGateUnavailable     = errors.New("market gate unavailable")
	ErrUniverseUnavailable = errors.New("universe unavailable")
	ErrAccountUnavailable  = errors.New("account unavailable")
)

type RunInput struct {
	DryRun bool
}

type TradingRunHandler struct {
	MarketGateService l1_service.MarketGateService
	UniverseService   l2_service.UniverseService
	SignalService     l2_service.SignalService
	TradeService      l1_service.TradeService
	AccountRepository repository.AccountRepository
	// nil skips writing report files
	ReportRepository repository.ReportRepository
	// nil skips the summary email
	EmailService l1_service.EmailService
	Criteria     domain.SelectionCriteria
	Now          func() time.Time
}

// Run is one daily pass: gate, universe, signals, orders. A closed market
// is not an error, the snapshot comes back with Skipped set. Gate,
// universe and account failures abort before any order is placed
func (h TradingRunHandler) Run(ctx context.Context, in RunInput) (*domain.RunSnapshot, error) {
	log := logger.FromContext(ctx)
	date := util.MarketDate(h.now())
	profile, endProfile := domain.NewProfile()

	span := profile.StartNewSpan("market gate")
	decision, err := h.MarketGateService.IsTradeableToday(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateUnavailable, err)
	}
	if !decision.Tradeable {
		span.End()
		snapshot := domain.NewSkippedRunSnapshot(date, decision.Reason)
		snapshot.DryRun = in.DryRun
		snapshot.Timings = profile.Spans
		h.publish(ctx, snapshot)
		return &snapshot, nil
	}

	profile.StartNewSpan("universe selection")
	symbols, err := h.UniverseService.Select(ctx, h.Criteria)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUniverseUnavailable, err)
	}

	profile.StartNewSpan("account snapshot")
	account, err := h.AccountRepository.GetAccount()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAccountUnavailable, err)
	}
	log.Infof("account equity %s, buying power %s", account.Equity.StringFixed(2), account.BuyingPower.StringFixed(2))

	profile.StartNewSpan("signal generation")
	signals := h.SignalService.Generate(ctx, symbols)

	profile.StartNewSpan("order execution")
	outcomes := h.TradeService.Execute(ctx, signals, in.DryRun)
	endProfile()

	snapshot := domain.AssembleRunSnapshot(date, *account, signals, outcomes)
	snapshot.DryRun = in.DryRun
	snapshot.Universe = symbols
	snapshot.Timings = profile.Spans
	log.Infof("run %s complete in %dms: %d symbols, %d orders submitted",
		snapshot.RunID, *profile.TotalMs, len(symbols), snapshot.TradesSubmitted())

	h.publish(ctx, snapshot)
	return &snapshot, nil
}

// publish writes the report files and sends the summary email. Both are
// best effort, orders are already placed by now
func (h TradingRunHandler) publish(ctx context.Context, snapshot domain.RunSnapshot) {
	log := logger.FromContext(ctx)
	if h.ReportRepository != nil {
		paths, err := h.ReportRepository.Save(snapshot)
		if err != nil {
			log.Errorf("failed to write run report: %v", err)
		} else {
			log.Infof("wrote %v", paths)
		}
	}
	if h.EmailService != nil {
		if err := h.EmailService.SendRunSummary(ctx, snapshot); err != nil {
			log.Errorf("failed to send run summary: %v", err)
		}
	}
}

func (h TradingRunHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}
