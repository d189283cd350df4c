package l1_service

import (
	"context"
	"fmt"
	"time"

	"dailytrader/internal/domain"
	"dailytrader/internal/logger"
	"dailytrader/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

type TradeService interface {
	// Execute acts on BUY and SELL signals strictly in order, one at a
	// time. Failures are recorded on the outcome and never stop the loop
	Execute(ctx context.Context, signals []domain.Signal, dryRun bool) []domain.OrderOutcome
}

type TradeServiceConfig struct {
	// minimum spacing between state-changing broker calls
	OrderInterval        time.Duration
	PositionSizeFraction decimal.Decimal
}

type tradeServiceHandler struct {
	AccountRepository    repository.AccountRepository
	MarketDataRepository repository.MarketDataRepository
	OrderRepository      repository.OrderRepository
	Limiter              *rate.Limiter
	PositionSizeFraction decimal.Decimal
	NewClientOrderID     func() uuid.UUID
}

func NewTradeService(
	accountRepository repository.AccountRepository,
	marketDataRepository repository.MarketDataRepository,
	orderRepository repository.OrderRepository,
	config TradeServiceConfig,
) TradeService {
	return tradeServiceHandler{
		AccountRepository:    accountRepository,
		MarketDataRepository: marketDataRepository,
		OrderRepository:      orderRepository,
		Limiter:              rate.NewLimiter(rate.Every(config.OrderInterval), 1),
		PositionSizeFraction: config.PositionSizeFraction,
		NewClientOrderID:     uuid.New,
	}
}

func (h tradeServiceHandler) Execute(ctx context.Context, signals []domain.Signal, dryRun bool) []domain.OrderOutcome {
	log := logger.FromContext(ctx)
	outcomes := []domain.OrderOutcome{}

	for _, signal := range signals {
		var outcome domain.OrderOutcome
		switch signal.Action {
		case domain.SignalAction_Buy:
			outcome = h.buy(ctx, signal.Symbol, dryRun)
		case domain.SignalAction_Sell:
			outcome = h.sell(ctx, signal.Symbol, dryRun)
		default:
			continue
		}

		if outcome.Status == domain.OrderStatus_Failed {
			log.Errorf("%s %s failed: %s", outcome.Side, outcome.Symbol, *outcome.ErrorDetail)
		} else {
			log.Infof("%s %s: %s", outcome.Side, outcome.Symbol, outcome.Status)
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

func dryRunOutcome(symbol string, side domain.OrderSide) domain.OrderOutcome {
	orderID := domain.DryRunOrderID
	return domain.OrderOutcome{
		Symbol:        symbol,
		Side:          side,
		Status:        domain.OrderStatus_Submitted,
		BrokerOrderID: &orderID,
	}
}

func failed(outcome domain.OrderOutcome, err error) domain.OrderOutcome {
	detail := err.Error()
	outcome.Status = domain.OrderStatus_Failed
	outcome.ErrorDetail = &detail
	return outcome
}

// buySize spends PositionSizeFraction of buying power, at least one share
func (h tradeServiceHandler) buySize(buyingPower, price decimal.Decimal) decimal.Decimal {
	qty := buyingPower.Mul(h.PositionSizeFraction).Div(price).Floor()
	if qty.LessThan(decimal.NewFromInt(1)) {
		qty = decimal.NewFromInt(1)
	}
	return qty
}

func (h tradeServiceHandler) buy(ctx context.Context, symbol string, dryRun bool) domain.OrderOutcome {
	if dryRun {
		return dryRunOutcome(symbol, domain.OrderSide_Buy)
	}
	outcome := domain.OrderOutcome{
		Symbol: symbol,
		Side:   domain.OrderSide_Buy,
	}

	account, err := h.AccountRepository.GetAccount()
	if err != nil {
		return failed(outcome, err)
	}
	if account.BuyingPower.LessThanOrEqual(decimal.Zero) {
		outcome.Status = domain.OrderStatus_SkippedInsufficientFunds
		return outcome
	}

	price, err := h.MarketDataRepository.GetLatestPrice(symbol)
	if err != nil {
		return failed(outcome, err)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return failed(outcome, fmt.Errorf("invalid price %s for %s", price.String(), symbol))
	}
	qty := h.buySize(account.BuyingPower, price)
	outcome.Quantity = &qty
	outcome.Price = &price

	if qty.Mul(price).GreaterThan(account.BuyingPower) {
		outcome.Status = domain.OrderStatus_SkippedInsufficientFunds
		return outcome
	}

	return h.submit(ctx, outcome)
}

func (h tradeServiceHandler) sell(ctx context.Context, symbol string, dryRun bool) domain.OrderOutcome {
	if dryRun {
		return dryRunOutcome(symbol, domain.OrderSide_Sell)
	}
	outcome := domain.OrderOutcome{
		Symbol: symbol,
		Side:   domain.OrderSide_Sell,
	}

	position, err := h.AccountRepository.GetPosition(symbol)
	if err != nil {
		return failed(outcome, err)
	}
	if !position.IsOpen() {
		outcome.Status = domain.OrderStatus_SkippedNoPosition
		return outcome
	}
	qty := position.ExactQuantity
	outcome.Quantity = &qty

	// market order, the price is only recorded for the report
	if price, err := h.MarketDataRepository.GetLatestPrice(symbol); err == nil {
		outcome.Price = &price
	} else {
		logger.FromContext(ctx).Warnf("no reference price for %s: %v", symbol, err)
	}

	return h.submit(ctx, outcome)
}

func (h tradeServiceHandler) submit(ctx context.Context, outcome domain.OrderOutcome) domain.OrderOutcome {
	if err := h.Limiter.Wait(ctx); err != nil {
		return failed(outcome, fmt.Errorf("order pacing interrupted: %w", err))
	}

	order, err := h.OrderRepository.PlaceOrder(repository.AlpacaPlaceOrderRequest{
		ClientOrderID: h.NewClientOrderID(),
		Quantity:      *outcome.Quantity,
		Symbol:        outcome.Symbol,
		Side:          outcome.Side,
	})
	if err != nil {
		return failed(outcome, err)
	}

	outcome.Status = domain.OrderStatus_Submitted
	outcome.BrokerOrderID = &order.OrderID
	return outcome
}
