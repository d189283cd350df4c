package l1_service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"dailytrader/internal/domain"
	mock_repository "dailytrader/internal/repository/mocks"
	"dailytrader/internal/util"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newGateHandler(ctrl *gomock.Controller, now time.Time, requireOpen bool) (marketGateServiceHandler, *mock_repository.MockAlpacaRepository) {
	alpacaRepository := mock_repository.NewMockAlpacaRepository(ctrl)
	return marketGateServiceHandler{
		CalendarRepository: alpacaRepository,
		RequireOpenSession: requireOpen,
		Now:                func() time.Time { return now },
	}, alpacaRepository
}

func Test_marketGateServiceHandler_IsTradeableToday(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2024, 3, 4, 10, 0, 0, 0, util.MarketLocation())

	t.Run("saturday skips without broker calls", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		// no EXPECT calls registered, any broker call fails the test
		handler, _ := newGateHandler(ctrl, time.Date(2024, 3, 2, 10, 0, 0, 0, util.MarketLocation()), true)

		decision, err := handler.IsTradeableToday(ctx)
		require.NoError(t, err)
		require.False(t, decision.Tradeable)
		require.Contains(t, decision.Reason, "weekend")
	})

	t.Run("holiday", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, alpacaRepository := newGateHandler(ctrl, time.Date(2024, 7, 4, 10, 0, 0, 0, util.MarketLocation()), true)

		alpacaRepository.EXPECT().
			GetTradingDay(gomock.Any()).
			Return(nil, nil)

		decision, err := handler.IsTradeableToday(ctx)
		require.NoError(t, err)
		require.False(t, decision.Tradeable)
		require.Equal(t, "market holiday", decision.Reason)
	})

	t.Run("session day but clock closed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, alpacaRepository := newGateHandler(ctrl, monday, true)

		alpacaRepository.EXPECT().
			GetTradingDay(util.MarketDate(monday)).
			Return(&domain.TradingDay{Date: util.MarketDate(monday)}, nil)
		alpacaRepository.EXPECT().
			IsMarketOpen().
			Return(false, nil)

		decision, err := handler.IsTradeableToday(ctx)
		require.NoError(t, err)
		require.False(t, decision.Tradeable)
		require.Equal(t, "market is closed", decision.Reason)
	})

	t.Run("open", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, alpacaRepository := newGateHandler(ctrl, monday, true)

		alpacaRepository.EXPECT().
			GetTradingDay(gomock.Any()).
			Return(&domain.TradingDay{Date: util.MarketDate(monday)}, nil)
		alpacaRepository.EXPECT().
			IsMarketOpen().
			Return(true, nil)

		decision, err := handler.IsTradeableToday(ctx)
		require.NoError(t, err)
		require.True(t, decision.Tradeable)
	})

	t.Run("pre-open run only needs a session day", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, alpacaRepository := newGateHandler(ctrl, monday.Add(-3*time.Hour), false)

		alpacaRepository.EXPECT().
			GetTradingDay(gomock.Any()).
			Return(&domain.TradingDay{Date: util.MarketDate(monday)}, nil)

		decision, err := handler.IsTradeableToday(ctx)
		require.NoError(t, err)
		require.True(t, decision.Tradeable)
	})

	t.Run("calendar failure fails closed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, alpacaRepository := newGateHandler(ctrl, monday, true)

		alpacaRepository.EXPECT().
			GetTradingDay(gomock.Any()).
			Return(nil, fmt.Errorf("401 unauthorized"))

		decision, err := handler.IsTradeableToday(ctx)
		require.ErrorContains(t, err, "401 unauthorized")
		require.Nil(t, decision)
	})

	t.Run("clock failure fails closed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler, alpacaRepository := newGateHandler(ctrl, monday, true)

		alpacaRepository.EXPECT().
			GetTradingDay(gomock.Any()).
			Return(&domain.TradingDay{Date: util.MarketDate(monday)}, nil)
		alpacaRepository.EXPECT().
			IsMarketOpen().
			Return(false, fmt.Errorf("connection reset"))

		_, err := handler.IsTradeableToday(ctx)
		require.Error(t, err)
	})
}
