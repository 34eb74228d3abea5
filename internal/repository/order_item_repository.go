package repository

import (
	"context"

	"battwheels/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBatch(ctx context.Context, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
