package domain

import (
	"github.com/shopspring/decimal"
)

type AccountSnapshot struct {
	Equity         decimal.Decimal `json:"equity"`
	BuyingPower    decimal.Decimal `json:"buyingPower"`
	Cash           decimal.Decimal `json:"cash"`
	PortfolioValue decimal.Decimal `json:"portfolioValue"`
}

type Position struct {
	Symbol        string
	ExactQuantity decimal.Decimal
}

func (p *Position) IsOpen() bool {
	return p != nil && p.ExactQuantity.GreaterThan(decimal.Zero)
}

type OrderSide string

const (
	OrderSide_Buy  OrderSide = "BUY"
	OrderSide_Sell OrderSide = "SELL"
)

type OrderStatus string

const (
	OrderStatus_Submitted                OrderStatus = "submitted"
	OrderStatus_SkippedInsufficientFunds OrderStatus = "skipped_insufficient_funds"
	OrderStatus_SkippedNoPosition        OrderStatus = "skipped_no_position"
	OrderStatus_Failed                   OrderStatus = "failed"
)

// DryRunOrderID stands in for a broker order id on simulated orders
const DryRunOrderID = "dry-run"

type OrderOutcome struct {
	Symbol        string           `json:"symbol"`
	Side          OrderSide        `json:"side"`
	Status        OrderStatus      `json:"status"`
	BrokerOrderID *string          `json:"brokerOrderId,omitempty"`
	ErrorDetail   *string          `json:"errorDetail,omitempty"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
}

// PlacedOrder is what the broker hands back for an accepted order
type PlacedOrder struct {
	OrderID       string
	ClientOrderID string
	Status        string
}
