package repository

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"dailytrader/internal/domain"
	"dailytrader/internal/util"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

//go:generate mockgen -destination=mocks/mock_alpaca.repository.go -package=mock_repository dailytrader/internal/repository AlpacaRepository

const paperEndpoint = "https://paper-api.alpaca.markets"

type MarketCalendarRepository interface {
	IsMarketOpen() (bool, error)
	// GetTradingDay returns nil when date is not a trading session
	GetTradingDay(date time.Time) (*domain.TradingDay, error)
}

type AssetRepository interface {
	ListAssets() ([]domain.Asset, error)
}

type MarketDataRepository interface {
	GetBars(symbol string, start, end time.Time) (*domain.PriceSeries, error)
	GetLatestPrice(symbol string) (decimal.Decimal, error)
}

type AccountRepository interface {
	GetAccount() (*domain.AccountSnapshot, error)
	// GetPosition returns nil when nothing is held
	GetPosition(symbol string) (*domain.Position, error)
}

type OrderRepository interface {
	PlaceOrder(req AlpacaPlaceOrderRequest) (*domain.PlacedOrder, error)
}

type AlpacaRepository interface {
	MarketCalendarRepository
	AssetRepository
	MarketDataRepository
	AccountRepository
	OrderRepository
}

type AlpacaRepositoryInput struct {
	ApiKey    string
	ApiSecret string
	Endpoint  string
	Timeout   time.Duration
}

func NewAlpacaRepository(in AlpacaRepositoryInput) AlpacaRepository {
	endpoint := in.Endpoint
	if endpoint == "" {
		endpoint = paperEndpoint
	}
	httpClient := &http.Client{Timeout: in.Timeout}

	client := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:     in.ApiKey,
		APISecret:  in.ApiSecret,
		BaseURL:    endpoint,
		RetryLimit: 3,
		HTTPClient: httpClient,
	})

	// data api lives on its own host, leave BaseURL to the sdk default.
	// The feed is set per request, free accounts only get IEX
	mdClient := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:     in.ApiKey,
		APISecret:  in.ApiSecret,
		RetryLimit: 3,
		HTTPClient: httpClient,
	})

	return &alpacaRepositoryHandler{
		Client:   client,
		MdClient: mdClient,
		Breaker:  newMarketDataBreaker(),
	}
}

// trips after a run of consecutive data failures so the remaining symbols
// fail fast instead of each waiting out the http timeout
func newMarketDataBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "alpaca-marketdata",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

type alpacaRepositoryHandler struct {
	Client   *alpaca.Client
	MdClient *marketdata.Client
	Breaker  *gobreaker.CircuitBreaker
}

func (h alpacaRepositoryHandler) IsMarketOpen() (bool, error) {
	clock, err := h.Client.GetClock()
	if err != nil {
		return false, fmt.Errorf("failed to get market clock: %w", err)
	}
	return clock.IsOpen, nil
}

func (h alpacaRepositoryHandler) GetTradingDay(date time.Time) (*domain.TradingDay, error) {
	days, err := h.Client.GetCalendar(alpaca.GetCalendarRequest{
		Start: date,
		End:   date,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get market calendar for %s: %w", util.FormatDate(date), err)
	}

	for _, day := range days {
		parsed, err := util.ParseDate(day.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse calendar date %s: %w", day.Date, err)
		}
		// the calendar can return the next session when date has none
		if !util.SameDate(parsed, date) {
			continue
		}
		return &domain.TradingDay{
			Date:  parsed,
			Open:  day.Open,
			Close: day.Close,
		}, nil
	}

	return nil, nil
}

func (h alpacaRepositoryHandler) ListAssets() ([]domain.Asset, error) {
	assets, err := h.Client.GetAssets(alpaca.GetAssetsRequest{
		Status:     "active",
		AssetClass: "us_equity",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	out := make([]domain.Asset, 0, len(assets))
	for _, a := range assets {
		out = append(out, domain.Asset{
			Symbol:       a.Symbol,
			Exchange:     a.Exchange,
			Tradable:     a.Tradable,
			Fractionable: a.Fractionable,
			Shortable:    a.Shortable,
		})
	}
	return out, nil
}

func (h alpacaRepositoryHandler) GetBars(symbol string, start, end time.Time) (*domain.PriceSeries, error) {
	result, err := h.Breaker.Execute(func() (interface{}, error) {
		return h.MdClient.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame:  marketdata.OneDay,
			Adjustment: marketdata.Split,
			Start:      start,
			End:        end,
			Feed:       marketdata.IEX,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get bars for %s: %w", symbol, err)
	}
	bars := result.([]marketdata.Bar)

	out := &domain.PriceSeries{
		Symbol: symbol,
		Bars:   make([]domain.Bar, 0, len(bars)),
	}
	for _, b := range bars {
		out.Bars = append(out.Bars, domain.Bar{
			Timestamp: b.Timestamp.UTC(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    float64(b.Volume),
		})
	}

	return out, nil
}

func (h alpacaRepositoryHandler) GetLatestPrice(symbol string) (decimal.Decimal, error) {
	result, err := h.Breaker.Execute(func() (interface{}, error) {
		return h.MdClient.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{
			Feed: marketdata.IEX,
		})
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get latest price for %s: %w", symbol, err)
	}
	trade := result.(*marketdata.Trade)
	if trade == nil || trade.Price <= 0 {
		return decimal.Zero, fmt.Errorf("failed to get price for %s: got 0 price", symbol)
	}

	return decimal.NewFromFloat(trade.Price), nil
}

func (h alpacaRepositoryHandler) GetAccount() (*domain.AccountSnapshot, error) {
	acct, err := h.Client.GetAccount()
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &domain.AccountSnapshot{
		Equity:         acct.Equity,
		BuyingPower:    acct.BuyingPower,
		Cash:           acct.Cash,
		PortfolioValue: acct.PortfolioValue,
	}, nil
}

func (h alpacaRepositoryHandler) GetPosition(symbol string) (*domain.Position, error) {
	position, err := h.Client.GetPosition(symbol)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position for %s: %w", symbol, err)
	}
	return &domain.Position{
		Symbol:        position.Symbol,
		ExactQuantity: position.Qty,
	}, nil
}

func isNotFound(err error) bool {
	var apiErr *alpaca.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type AlpacaPlaceOrderRequest struct {
	ClientOrderID uuid.UUID
	Quantity      decimal.Decimal
	Symbol        string
	Side          domain.OrderSide
}

func (a AlpacaPlaceOrderRequest) isValid() error {
	if a.Quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("quantity is <= 0, order of | %s %s| not sent", a.Quantity.String(), a.Side)
	}
	if a.Side != domain.OrderSide_Buy && a.Side != domain.OrderSide_Sell {
		return fmt.Errorf("unknown order side %q", a.Side)
	}
	return nil
}

func toAlpacaSide(side domain.OrderSide) alpaca.Side {
	if side == domain.OrderSide_Sell {
		return alpaca.Sell
	}
	return alpaca.Buy
}

func (h alpacaRepositoryHandler) PlaceOrder(req AlpacaPlaceOrderRequest) (*domain.PlacedOrder, error) {
	if err := req.isValid(); err != nil {
		return nil, fmt.Errorf("invalid input to alpaca submit order %s: %w", req.ClientOrderID.String(), err)
	}

	order, err := h.Client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:        req.Symbol,
		Qty:           &req.Quantity,
		Side:          toAlpacaSide(req.Side),
		Type:          alpaca.Market,
		TimeInForce:   alpaca.Day,
		ClientOrderID: req.ClientOrderID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("order %s %s %s failed: %w", req.Side, req.Symbol, req.Quantity.String(), err)
	}

	return &domain.PlacedOrder{
		OrderID:       order.ID,
		ClientOrderID: order.ClientOrderID,
		Status:        string(order.Status),
	}, nil
}
