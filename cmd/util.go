package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	integration_tests "dailytrader/integration-tests"
	"dailytrader/internal/app"
	"dailytrader/internal/domain"
	"dailytrader/internal/repository"
	l1_service "dailytrader/internal/service/l1"
	l2_service "dailytrader/internal/service/l2"
	"dailytrader/internal/util"

	"github.com/shopspring/decimal"
)

type Dependencies struct {
	Config            util.Config
	AlpacaRepository  repository.AlpacaRepository
	ReferenceUniverse domain.ReferenceUniverse
	UniverseService   l2_service.UniverseService
	TradingRunHandler app.TradingRunHandler
}

// InitializeDependencies wires the run from config. TRADER_ENV=test swaps
// the broker for the in-memory fake
func InitializeDependencies(cfg util.Config) (*Dependencies, error) {
	var alpacaRepository repository.AlpacaRepository
	if strings.EqualFold(cfg.Env, "test") {
		alpacaRepository = integration_tests.NewFakeBrokerForTests()
	} else {
		alpacaRepository = repository.NewAlpacaRepository(repository.AlpacaRepositoryInput{
			ApiKey:    cfg.Alpaca.ApiKey,
			ApiSecret: cfg.Alpaca.ApiSecret,
			Endpoint:  cfg.Alpaca.Endpoint,
			Timeout:   cfg.Trading.BrokerTimeout,
		})
	}
	deps, err := NewDependencies(cfg, alpacaRepository, time.Now)
	if err != nil {
		return nil, err
	}

	if len(cfg.SES.Recipients) > 0 {
		emailRepository, err := repository.NewEmailRepository(context.Background(), cfg.SES.Region, cfg.SES.FromEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to create email repository: %w", err)
		}
		deps.TradingRunHandler.EmailService = l1_service.NewEmailService(emailRepository, cfg.SES.Recipients)
	}
	return deps, nil
}

// NewDependencies wires everything around an existing broker. now is the
// clock used for the market gate and the run date
func NewDependencies(cfg util.Config, alpacaRepository repository.AlpacaRepository, now func() time.Time) (*Dependencies, error) {
	criteria := cfg.SelectionCriteria()
	if err := criteria.Validate(); err != nil {
		return nil, fmt.Errorf("invalid selection criteria: %w", err)
	}

	referenceUniverse := domain.DefaultReferenceUniverse()
	marketGateService := l1_service.NewMarketGateService(alpacaRepository, cfg.Trading.RequireOpenSession, now)
	universeService := l2_service.NewUniverseService(referenceUniverse, alpacaRepository, alpacaRepository)
	signalService := l2_service.NewSignalService(alpacaRepository, cfg.Trading.LookbackDays)
	tradeService := l1_service.NewTradeService(
		alpacaRepository,
		alpacaRepository,
		alpacaRepository,
		l1_service.TradeServiceConfig{
			OrderInterval:        cfg.Trading.OrderInterval,
			PositionSizeFraction: decimal.NewFromFloat(cfg.Trading.PositionSizeFraction),
		},
	)

	var reportRepository repository.ReportRepository
	if cfg.ReportDir != "" {
		reportRepository = repository.NewReportRepository(cfg.ReportDir)
	}

	return &Dependencies{
		Config:            cfg,
		AlpacaRepository:  alpacaRepository,
		ReferenceUniverse: referenceUniverse,
		UniverseService:   universeService,
		TradingRunHandler: app.TradingRunHandler{
			MarketGateService: marketGateService,
			UniverseService:   universeService,
			SignalService:     signalService,
			TradeService:      tradeService,
			AccountRepository: alpacaRepository,
			ReportRepository:  reportRepository,
			Criteria:          criteria,
			Now:               now,
		},
	}, nil
}
