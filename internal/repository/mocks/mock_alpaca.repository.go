// Package mock_repository holds gomock mocks for the repository interfaces.
// These follow mockgen's output layout; regenerate with go generate from
// internal/repository when an interface changes.
package mock_repository

import (
	domain "dailytrader/internal/domain"
	repository "dailytrader/internal/repository"
	reflect "reflect"
	time "time"

	decimal "github.com/shopspring/decimal"
	gomock "go.uber.org/mock/gomock"
)

// MockAlpacaRepository is a mock of AlpacaRepository interface.
type MockAlpacaRepository struct {
	ctrl     *gomock.Controller
	recorder *MockAlpacaRepositoryMockRecorder
}

// MockAlpacaRepositoryMockRecorder is the mock recorder for MockAlpacaRepository.
type MockAlpacaRepositoryMockRecorder struct {
	mock *MockAlpacaRepository
}

// NewMockAlpacaRepository creates a new mock instance.
func NewMockAlpacaRepository(ctrl *gomock.Controller) *MockAlpacaRepository {
	mock := &MockAlpacaRepository{ctrl: ctrl}
	mock.recorder = &MockAlpacaRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAlpacaRepository) EXPECT() *MockAlpacaRepositoryMockRecorder {
	return m.recorder
}

// GetAccount mocks base method.
func (m *MockAlpacaRepository) GetAccount() (*domain.AccountSnapshot, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetAccount")
	ret0, _ := ret[0].(*domain.AccountSnapshot)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetAccount indicates an expected call of GetAccount.
func (mr *MockAlpacaRepositoryMockRecorder) GetAccount() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetAccount", reflect.TypeOf((*MockAlpacaRepository)(nil).GetAccount))
}

// GetBars mocks base method.
func (m *MockAlpacaRepository) GetBars(symbol string, start, end time.Time) (*domain.PriceSeries, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetBars", symbol, start, end)
	ret0, _ := ret[0].(*domain.PriceSeries)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetBars indicates an expected call of GetBars.
func (mr *MockAlpacaRepositoryMockRecorder) GetBars(symbol, start, end any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetBars", reflect.TypeOf((*MockAlpacaRepository)(nil).GetBars), symbol, start, end)
}

// GetLatestPrice mocks base method.
func (m *MockAlpacaRepository) GetLatestPrice(symbol string) (decimal.Decimal, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetLatestPrice", symbol)
	ret0, _ := ret[0].(decimal.Decimal)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetLatestPrice indicates an expected call of GetLatestPrice.
func (mr *MockAlpacaRepositoryMockRecorder) GetLatestPrice(symbol any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetLatestPrice", reflect.TypeOf((*MockAlpacaRepository)(nil).GetLatestPrice), symbol)
}

// GetPosition mocks base method.
func (m *MockAlpacaRepository) GetPosition(symbol string) (*domain.Position, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetPosition", symbol)
	ret0, _ := ret[0].(*domain.Position)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetPosition indicates an expected call of GetPosition.
func (mr *MockAlpacaRepositoryMockRecorder) GetPosition(symbol any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetPosition", reflect.TypeOf((*MockAlpacaRepository)(nil).GetPosition), symbol)
}

// GetTradingDay mocks base method.
func (m *MockAlpacaRepository) GetTradingDay(date time.Time) (*domain.TradingDay, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetTradingDay", date)
	ret0, _ := ret[0].(*domain.TradingDay)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetTradingDay indicates an expected call of GetTradingDay.
func (mr *MockAlpacaRepositoryMockRecorder) GetTradingDay(date any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetTradingDay", reflect.TypeOf((*MockAlpacaRepository)(nil).GetTradingDay), date)
}

// IsMarketOpen mocks base method.
func (m *MockAlpacaRepository) IsMarketOpen() (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "IsMarketOpen")
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// IsMarketOpen indicates an expected call of IsMarketOpen.
func (mr *MockAlpacaRepositoryMockRecorder) IsMarketOpen() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "IsMarketOpen", reflect.TypeOf((*MockAlpacaRepository)(nil).IsMarketOpen))
}

// ListAssets mocks base method.
func (m *MockAlpacaRepository) ListAssets() ([]domain.Asset, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListAssets")
	ret0, _ := ret[0].([]domain.Asset)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListAssets indicates an expected call of ListAssets.
func (mr *MockAlpacaRepositoryMockRecorder) ListAssets() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListAssets", reflect.TypeOf((*MockAlpacaRepository)(nil).ListAssets))
}

// PlaceOrder mocks base method.
func (m *MockAlpacaRepository) PlaceOrder(req repository.AlpacaPlaceOrderRequest) (*domain.PlacedOrder, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "PlaceOrder", req)
	ret0, _ := ret[0].(*domain.PlacedOrder)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// PlaceOrder indicates an expected call of PlaceOrder.
func (mr *MockAlpacaRepositoryMockRecorder) PlaceOrder(req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PlaceOrder", reflect.TypeOf((*MockAlpacaRepository)(nil).PlaceOrder), req)
}
