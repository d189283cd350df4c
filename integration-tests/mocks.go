package integration_tests

import (
	"fmt"
	"sync"
	"time"

	"dailytrader/internal/domain"
	"dailytrader/internal/repository"
	"dailytrader/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FakeBroker is an in-memory paper broker. Markets are open on weekdays
// that are not listed in Holidays and orders fill instantly
type FakeBroker struct {
	mu sync.Mutex

	MarketOpen  bool
	Holidays    map[string]bool
	Assets      []domain.Asset
	Bars        map[string]domain.PriceSeries
	Prices      map[string]decimal.Decimal
	Account     domain.AccountSnapshot
	Positions   map[string]decimal.Decimal
	RejectOrder map[string]bool
	Orders      []repository.AlpacaPlaceOrderRequest
}

// NewFakeBrokerForTests seeds AAPL in an uptrend, TSLA in a downtrend and
// GOOG going sideways, with a TSLA position open
func NewFakeBrokerForTests() *FakeBroker {
	return &FakeBroker{
		MarketOpen: true,
		Holidays:   map[string]bool{},
		Assets: []domain.Asset{
			{Symbol: "AAPL", Exchange: "NASDAQ", Tradable: true, Fractionable: true, Shortable: true},
			{Symbol: "GOOG", Exchange: "NASDAQ", Tradable: true, Fractionable: true, Shortable: true},
			{Symbol: "TSLA", Exchange: "NASDAQ", Tradable: true, Fractionable: true, Shortable: true},
			{Symbol: "IBM", Exchange: "NYSE", Tradable: true, Fractionable: true},
			{Symbol: "DELISTED", Exchange: "NYSE", Tradable: false},
		},
		Bars: map[string]domain.PriceSeries{
			"AAPL": trendingSeries("AAPL", 100, 0.5, 8_000_000),
			"TSLA": trendingSeries("TSLA", 200, -0.5, 12_000_000),
			"GOOG": trendingSeries("GOOG", 150, 0, 6_000_000),
			"IBM":  trendingSeries("IBM", 180, 0, 3_000_000),
		},
		Prices: map[string]decimal.Decimal{
			"AAPL": decimal.NewFromInt(125),
			"TSLA": decimal.NewFromInt(170),
			"GOOG": decimal.NewFromInt(150),
			"IBM":  decimal.NewFromInt(180),
		},
		Account: domain.AccountSnapshot{
			Equity:         decimal.NewFromInt(100_000),
			BuyingPower:    decimal.NewFromInt(50_000),
			Cash:           decimal.NewFromInt(50_000),
			PortfolioValue: decimal.NewFromInt(100_000),
		},
		Positions: map[string]decimal.Decimal{
			"TSLA": decimal.NewFromInt(7),
		},
		RejectOrder: map[string]bool{},
	}
}

// trendingSeries is 60 sessions on a line with a +/-1.5 zigzag so the
// oscillators stay neutral and only the trend indicators vote
func trendingSeries(symbol string, base, slope, volume float64) domain.PriceSeries {
	start := time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC)
	out := domain.PriceSeries{Symbol: symbol}
	for i := 0; i < 60; i++ {
		noise := -1.5
		if i%2 == 0 {
			noise = 1.5
		}
		c := base + slope*float64(i) + noise
		out.Bars = append(out.Bars, domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    volume,
		})
	}
	return out
}

func (f *FakeBroker) IsMarketOpen() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.MarketOpen, nil
}

func (f *FakeBroker) GetTradingDay(date time.Time) (*domain.TradingDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if util.IsWeekend(date) || f.Holidays[util.FormatDate(date)] {
		return nil, nil
	}
	return &domain.TradingDay{Date: date, Open: "09:30", Close: "16:00"}, nil
}

func (f *FakeBroker) ListAssets() ([]domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Asset{}, f.Assets...), nil
}

func (f *FakeBroker) GetBars(symbol string, start, end time.Time) (*domain.PriceSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	series, ok := f.Bars[symbol]
	if !ok {
		return nil, fmt.Errorf("no bars for %s", symbol)
	}
	return &series, nil
}

func (f *FakeBroker) GetLatestPrice(symbol string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	price, ok := f.Prices[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("no trades for %s", symbol)
	}
	return price, nil
}

func (f *FakeBroker) GetAccount() (*domain.AccountSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account := f.Account
	return &account, nil
}

func (f *FakeBroker) GetPosition(symbol string) (*domain.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	qty, ok := f.Positions[symbol]
	if !ok {
		return nil, nil
	}
	return &domain.Position{Symbol: symbol, ExactQuantity: qty}, nil
}

func (f *FakeBroker) PlaceOrder(req repository.AlpacaPlaceOrderRequest) (*domain.PlacedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RejectOrder[req.Symbol] {
		return nil, fmt.Errorf("order %s %s rejected: insufficient qty", req.Side, req.Symbol)
	}
	f.Orders = append(f.Orders, req)

	price := f.Prices[req.Symbol]
	if req.Side == domain.OrderSide_Buy {
		f.Positions[req.Symbol] = f.Positions[req.Symbol].Add(req.Quantity)
		f.Account.BuyingPower = f.Account.BuyingPower.Sub(req.Quantity.Mul(price))
	} else {
		delete(f.Positions, req.Symbol)
		f.Account.BuyingPower = f.Account.BuyingPower.Add(req.Quantity.Mul(price))
	}

	return &domain.PlacedOrder{
		OrderID:       uuid.NewString(),
		ClientOrderID: req.ClientOrderID.String(),
		Status:        "filled",
	}, nil
}
