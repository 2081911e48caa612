package models

import (
	"context"
)

//go:generate mockgen -destination=mocks/mock_order.go . OrderService
type OrderService interface {
	CreateFromCharge(ctx context.Context, charge ChargeData, raw []byte) (bool, error)

	GetOrders(ctx context.Context, filter OrderFilter) ([]Order, error)

	GetOrder(ctx context.Context, id int64) (*Order, error)

	UpdateStatus(ctx context.Context, id int64, target OrderStatus) (*Order, error)
}

//go:generate mockgen -destination=mocks/mock_paystack.go . PaystackService
type PaystackService interface {
	VerifySignature(body []byte, signature string) bool

	InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error)
}

//go:generate mockgen -destination=mocks/mock_feed.go . FeedService
type FeedService interface {
	Subscribe() (<-chan ChangeEvent, func())
}
