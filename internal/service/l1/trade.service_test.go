package l1_service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"dailytrader/internal/domain"
	"dailytrader/internal/repository"
	mock_repository "dailytrader/internal/repository/mocks"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/time/rate"
)

var fixedOrderID = uuid.MustParse("3b6f1c2e-8d7a-4f59-9a0e-2f1d5c7b9e10")

func newTradeHandler(ctrl *gomock.Controller) (tradeServiceHandler, *mock_repository.MockAlpacaRepository) {
	alpacaRepository := mock_repository.NewMockAlpacaRepository(ctrl)
	return tradeServiceHandler{
		AccountRepository:    alpacaRepository,
		MarketDataRepository: alpacaRepository,
		OrderRepository:      alpacaRepository,
		Limiter:              rate.NewLimiter(rate.Inf, 1),
		PositionSizeFraction: decimal.NewFromFloat(0.2),
		NewClientOrderID:     func() uuid.UUID { return fixedOrderID },
	}, alpacaRepository
}

func decimalPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func stringPtr(s string) *string {
	return &s
}

var decimalComparer = cmp.Comparer(func(d1, d2 decimal.Decimal) bool {
	return d1.Equal(d2)
})

func Test_tradeServiceHandler_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("dry run never touches the broker and keeps order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, _ := newTradeHandler(ctrl)

		outcomes := handler.Execute(ctx, []domain.Signal{
			domain.NewSignal("TSLA", 0, 2, nil),
			domain.NewSignal("AAPL", 0, 0, nil),
			domain.NewSignal("MSFT", 3, 1, nil),
		}, true)

		require.Equal(t, "", cmp.Diff([]domain.OrderOutcome{
			{Symbol: "TSLA", Side: domain.OrderSide_Sell, Status: domain.OrderStatus_Submitted, BrokerOrderID: stringPtr(domain.DryRunOrderID)},
			{Symbol: "MSFT", Side: domain.OrderSide_Buy, Status: domain.OrderStatus_Submitted, BrokerOrderID: stringPtr(domain.DryRunOrderID)},
		}, outcomes))
	})

	t.Run("buy with no buying power is skipped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, alpacaRepository := newTradeHandler(ctrl)

		alpacaRepository.EXPECT().
			GetAccount().
			Return(&domain.AccountSnapshot{BuyingPower: decimal.Zero}, nil)

		outcomes := handler.Execute(ctx, []domain.Signal{domain.NewSignal("AAPL", 1, 0, nil)}, false)
		require.Len(t, outcomes, 1)
		require.Equal(t, domain.OrderStatus_SkippedInsufficientFunds, outcomes[0].Status)
	})

	t.Run("buy that costs more than buying power is skipped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, alpacaRepository := newTradeHandler(ctrl)

		alpacaRepository.EXPECT().
			GetAccount().
			Return(&domain.AccountSnapshot{BuyingPower: decimal.NewFromInt(50)}, nil)
		alpacaRepository.EXPECT().
			GetLatestPrice("NVDA").
			Return(decimal.NewFromInt(900), nil)

		outcomes := handler.Execute(ctx, []domain.Signal{domain.NewSignal("NVDA", 1, 0, nil)}, false)
		require.Len(t, outcomes, 1)
		require.Equal(t, domain.OrderStatus_SkippedInsufficientFunds, outcomes[0].Status)
		require.True(t, outcomes[0].Quantity.Equal(decimal.NewFromInt(1)))
	})

	t.Run("buy sizes a fifth of buying power", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, alpacaRepository := newTradeHandler(ctrl)

		alpacaRepository.EXPECT().
			GetAccount().
			Return(&domain.AccountSnapshot{BuyingPower: decimal.NewFromInt(10000)}, nil)
		alpacaRepository.EXPECT().
			GetLatestPrice("AAPL").
			Return(decimal.NewFromInt(150), nil)
		alpacaRepository.EXPECT().
			PlaceOrder(repository.AlpacaPlaceOrderRequest{
				ClientOrderID: fixedOrderID,
				Quantity:      decimal.NewFromInt(13),
				Symbol:        "AAPL",
				Side:          domain.OrderSide_Buy,
			}).
			Return(&domain.PlacedOrder{OrderID: "order-1"}, nil)

		outcomes := handler.Execute(ctx, []domain.Signal{domain.NewSignal("AAPL", 2, 0, nil)}, false)
		require.Equal(t, "", cmp.Diff([]domain.OrderOutcome{
			{
				Symbol:        "AAPL",
				Side:          domain.OrderSide_Buy,
				Status:        domain.OrderStatus_Submitted,
				BrokerOrderID: stringPtr("order-1"),
				Quantity:      decimalPtr(13),
				Price:         decimalPtr(150),
			},
		}, outcomes, decimalComparer))
	})

	t.Run("sell without a position is skipped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, alpacaRepository := newTradeHandler(ctrl)

		alpacaRepository.EXPECT().
			GetPosition("TSLA").
			Return(nil, nil)

		outcomes := handler.Execute(ctx, []domain.Signal{domain.NewSignal("TSLA", 0, 1, nil)}, false)
		require.Len(t, outcomes, 1)
		require.Equal(t, domain.OrderStatus_SkippedNoPosition, outcomes[0].Status)
		require.Nil(t, outcomes[0].BrokerOrderID)
	})

	t.Run("sell closes the whole position", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, alpacaRepository := newTradeHandler(ctrl)

		alpacaRepository.EXPECT().
			GetPosition("TSLA").
			Return(&domain.Position{Symbol: "TSLA", ExactQuantity: decimal.NewFromFloat(2.5)}, nil)
		alpacaRepository.EXPECT().
			GetLatestPrice("TSLA").
			Return(decimal.Zero, fmt.Errorf("breaker open"))
		alpacaRepository.EXPECT().
			PlaceOrder(gomock.Any()).
			DoAndReturn(func(req repository.AlpacaPlaceOrderRequest) (*domain.PlacedOrder, error) {
				require.True(t, req.Quantity.Equal(decimal.NewFromFloat(2.5)))
				require.Equal(t, domain.OrderSide_Sell, req.Side)
				return &domain.PlacedOrder{OrderID: "order-2"}, nil
			})

		outcomes := handler.Execute(ctx, []domain.Signal{domain.NewSignal("TSLA", 0, 1, nil)}, false)
		require.Len(t, outcomes, 1)
		require.Equal(t, domain.OrderStatus_Submitted, outcomes[0].Status)
		require.Equal(t, "order-2", *outcomes[0].BrokerOrderID)
		require.Nil(t, outcomes[0].Price)
	})

	t.Run("a rejected order does not stop later symbols", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, alpacaRepository := newTradeHandler(ctrl)

		gomock.InOrder(
			alpacaRepository.EXPECT().
				GetPosition("TSLA").
				Return(&domain.Position{Symbol: "TSLA", ExactQuantity: decimal.NewFromInt(1)}, nil),
			alpacaRepository.EXPECT().
				GetLatestPrice("TSLA").
				Return(decimal.NewFromInt(200), nil),
			alpacaRepository.EXPECT().
				PlaceOrder(gomock.Any()).
				Return(nil, fmt.Errorf("403 forbidden: trading blocked")),
			alpacaRepository.EXPECT().
				GetAccount().
				Return(&domain.AccountSnapshot{BuyingPower: decimal.NewFromInt(1000)}, nil),
			alpacaRepository.EXPECT().
				GetLatestPrice("AAPL").
				Return(decimal.NewFromInt(100), nil),
			alpacaRepository.EXPECT().
				PlaceOrder(gomock.Any()).
				Return(&domain.PlacedOrder{OrderID: "order-3"}, nil),
		)

		outcomes := handler.Execute(ctx, []domain.Signal{
			domain.NewSignal("TSLA", 0, 1, nil),
			domain.NewSignal("AAPL", 1, 0, nil),
		}, false)
		require.Len(t, outcomes, 2)
		require.Equal(t, domain.OrderStatus_Failed, outcomes[0].Status)
		require.Contains(t, *outcomes[0].ErrorDetail, "trading blocked")
		require.Equal(t, domain.OrderStatus_Submitted, outcomes[1].Status)
		require.Equal(t, "AAPL", outcomes[1].Symbol)
	})

	t.Run("account lookup failure is recorded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, alpacaRepository := newTradeHandler(ctrl)

		alpacaRepository.EXPECT().
			GetAccount().
			Return(nil, fmt.Errorf("timeout"))

		outcomes := handler.Execute(ctx, []domain.Signal{domain.NewSignal("AAPL", 1, 0, nil)}, false)
		require.Equal(t, domain.OrderStatus_Failed, outcomes[0].Status)
		require.Equal(t, "timeout", *outcomes[0].ErrorDetail)
	})
}

func Test_tradeServiceHandler_paces_orders(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler, alpacaRepository := newTradeHandler(ctrl)
	interval := 50 * time.Millisecond
	handler.Limiter = rate.NewLimiter(rate.Every(interval), 1)

	submittedAt := []time.Time{}
	alpacaRepository.EXPECT().
		GetPosition(gomock.Any()).
		Return(&domain.Position{ExactQuantity: decimal.NewFromInt(1)}, nil).
		Times(3)
	alpacaRepository.EXPECT().
		GetLatestPrice(gomock.Any()).
		Return(decimal.NewFromInt(10), nil).
		Times(3)
	alpacaRepository.EXPECT().
		PlaceOrder(gomock.Any()).
		DoAndReturn(func(req repository.AlpacaPlaceOrderRequest) (*domain.PlacedOrder, error) {
			submittedAt = append(submittedAt, time.Now())
			return &domain.PlacedOrder{OrderID: req.Symbol}, nil
		}).
		Times(3)

	outcomes := handler.Execute(context.Background(), []domain.Signal{
		domain.NewSignal("A", 0, 1, nil),
		domain.NewSignal("B", 0, 1, nil),
		domain.NewSignal("C", 0, 1, nil),
	}, false)

	require.Len(t, outcomes, 3)
	for i, symbol := range []string{"A", "B", "C"} {
		require.Equal(t, symbol, *outcomes[i].BrokerOrderID)
	}
	for i := 1; i < len(submittedAt); i++ {
		// allow a little scheduler slack below the configured interval
		require.GreaterOrEqual(t, submittedAt[i].Sub(submittedAt[i-1]), interval-10*time.Millisecond)
	}
}

func Test_tradeServiceHandler_buySize(t *testing.T) {
	handler := tradeServiceHandler{PositionSizeFraction: decimal.NewFromFloat(0.2)}
	require.True(t, handler.buySize(decimal.NewFromInt(10000), decimal.NewFromInt(150)).Equal(decimal.NewFromInt(13)))
	require.True(t, handler.buySize(decimal.NewFromInt(100), decimal.NewFromInt(150)).Equal(decimal.NewFromInt(1)))
}
