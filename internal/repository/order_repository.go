package repository

import (
	"context"

	"battwheels/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	// Same idempotency key returns the same order.
	FindByIdempotencyKey(ctx context.Context, cartKey string, key string) (model.Order, bool, error)
}
