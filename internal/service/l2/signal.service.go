package l2_service

import (
	"context"
	"time"

	"dailytrader/internal/domain"
	"dailytrader/internal/logger"
	"dailytrader/internal/repository"
)

// DefaultLookbackDays covers the 50 session SMA with room for holidays
const DefaultLookbackDays = 100

type SignalService interface {
	// Generate returns exactly one signal per symbol, in input order.
	// Symbols whose history cannot be fetched get a HOLD with the error
	Generate(ctx context.Context, symbols []string) []domain.Signal
}

type signalServiceHandler struct {
	MarketDataRepository repository.MarketDataRepository
	LookbackDays         int
	Now                  func() time.Time
}

func NewSignalService(marketDataRepository repository.MarketDataRepository, lookbackDays int) SignalService {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return signalServiceHandler{
		MarketDataRepository: marketDataRepository,
		LookbackDays:         lookbackDays,
		Now:                  time.Now,
	}
}

func (h signalServiceHandler) Generate(ctx context.Context, symbols []string) []domain.Signal {
	log := logger.FromContext(ctx)
	end := h.Now()
	start := end.AddDate(0, 0, -h.LookbackDays)

	signals := make([]domain.Signal, 0, len(symbols))
	for _, symbol := range symbols {
		series, err := h.MarketDataRepository.GetBars(symbol, start, end)
		if err != nil {
			log.Warnf("holding %s, no price history: %v", symbol, err)
			signals = append(signals, domain.NewHoldSignal(symbol, err))
			continue
		}

		signal := Classify(symbol, *series)
		log.Infof("%s: %s (buy %d, sell %d)", symbol, signal.Action, signal.BuyScore, signal.SellScore)
		signals = append(signals, signal)
	}

	return signals
}
