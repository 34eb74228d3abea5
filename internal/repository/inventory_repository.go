package repository

import "context"

type InventoryRepository interface {
	// Decrease only when enough stock remains.
	DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error)

	// Stock return (cancellation).
	IncreaseStock(ctx context.Context, productID string, qty int64) error
}
