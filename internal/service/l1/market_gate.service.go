package l1_service

import (
	"context"
	"fmt"
	"time"

	"dailytrader/internal/logger"
	"dailytrader/internal/repository"
	"dailytrader/internal/util"
)

type GateDecision struct {
	Tradeable bool
	Reason    string
}

type MarketGateService interface {
	// IsTradeableToday never retries. Broker errors are returned as-is so
	// the caller decides whether to abort
	IsTradeableToday(ctx context.Context) (*GateDecision, error)
}

type marketGateServiceHandler struct {
	CalendarRepository repository.MarketCalendarRepository
	RequireOpenSession bool
	Now                func() time.Time
}

func NewMarketGateService(calendarRepository repository.MarketCalendarRepository, requireOpenSession bool, now func() time.Time) MarketGateService {
	if now == nil {
		now = time.Now
	}
	return marketGateServiceHandler{
		CalendarRepository: calendarRepository,
		RequireOpenSession: requireOpenSession,
		Now:                now,
	}
}

func (h marketGateServiceHandler) IsTradeableToday(ctx context.Context) (*GateDecision, error) {
	log := logger.FromContext(ctx)
	now := h.Now().In(util.MarketLocation())

	decision, err := h.decide(now)
	if err != nil {
		return nil, err
	}
	if decision.Tradeable {
		log.Infof("market gate open for %s", util.FormatDate(now))
	} else {
		log.Infof("skipping %s - %s", util.FormatDate(now), decision.Reason)
	}
	return decision, nil
}

func (h marketGateServiceHandler) decide(now time.Time) (*GateDecision, error) {
	if util.IsWeekend(now) {
		return &GateDecision{
			Reason: fmt.Sprintf("weekend (%s)", now.Weekday()),
		}, nil
	}

	day, err := h.CalendarRepository.GetTradingDay(util.MarketDate(now))
	if err != nil {
		return nil, fmt.Errorf("market gate could not check calendar: %w", err)
	}
	if day == nil {
		return &GateDecision{
			Reason: "market holiday",
		}, nil
	}

	if h.RequireOpenSession {
		isOpen, err := h.CalendarRepository.IsMarketOpen()
		if err != nil {
			return nil, fmt.Errorf("market gate could not check clock: %w", err)
		}
		if !isOpen {
			return &GateDecision{
				Reason: "market is closed",
			}, nil
		}
	}

	return &GateDecision{Tradeable: true}, nil
}
