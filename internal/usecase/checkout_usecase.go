package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"battwheels/internal/cart"
	"battwheels/internal/domain/model"
	repo "battwheels/internal/repository"
)

// CheckoutUsecase turns the cart summary into an order. The request shape
// (line items + computed totals) comes straight from the cart store; the
// payment transport behind it is someone else's problem.
type CheckoutUsecase struct {
	tx    repo.TransactionManager
	carts *CartUsecase
}

// DI
func NewCheckoutUsecase(tx repo.TransactionManager, carts *CartUsecase) *CheckoutUsecase {
	return &CheckoutUsecase{tx: tx, carts: carts}
}

type CheckoutInput struct {
	IdempotencyKey string
}

type CheckoutItemOutput struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type CheckoutOutput struct {
	OrderID     int64                `json:"order_id"`
	OrderNumber string               `json:"order_number"`
	Status      string               `json:"status"`
	Summary     cart.Summary         `json:"summary"`
	Items       []CheckoutItemOutput `json:"items"`
	CreatedAt   time.Time            `json:"created_at"`
}

func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, cartKey string, in CheckoutInput) (CheckoutOutput, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	store, err := u.carts.Store(ctx, cartKey)
	if err != nil {
		return CheckoutOutput{}, err
	}

	items := store.Items()
	summary := store.Summary()
	couponCode := ""
	if c, ok := store.Coupon(); ok {
		couponCode = c.Code
	}

	var out CheckoutOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// same key, same order back
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, cartKey, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			rows, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toCheckoutOutput(existing, rows)
			return nil
		}

		if len(items) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		// Re-check and decrement stock at commit time. A product that has
		// vanished from the catalog is still priced by its snapshot, so the
		// line ships without a decrement.
		for _, it := range items {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ID, it.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if ok {
				continue
			}
			if _, err := r.Products().FindByID(ctx, it.ID); err == repo.ErrNotFound {
				continue
			} else if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			return NewHTTPError(http.StatusConflict, "stock exceeded")
		}

		// Timestamps are set here rather than read back from the insert, so
		// the response never echoes a zero created_at.
		now := time.Now()
		order := model.Order{
			OrderNumber:    uuid.NewString(),
			CartKey:        cartKey,
			Status:         model.OrderStatusPending,
			Subtotal:       summary.Subtotal,
			Shipping:       summary.Shipping,
			Discount:       summary.Discount,
			Total:          summary.Total,
			CouponCode:     couponCode,
			IdempotencyKey: key,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		order.ID = orderID

		rows := make([]model.OrderItem, 0, len(items))
		for _, it := range items {
			rows = append(rows, model.OrderItem{
				OrderID:             orderID,
				ProductID:           it.ID,
				SKUSnapshot:         it.SKU,
				ProductNameSnapshot: it.Name,
				UnitPriceSnapshot:   it.FinalPrice,
				Quantity:            it.Quantity,
			})
		}
		if err := r.OrderItems().CreateBatch(ctx, rows); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toCheckoutOutput(order, rows)
		return nil
	})
	if err != nil {
		return CheckoutOutput{}, err
	}

	// The cart is emptied only by a successful checkout. If this save fails
	// the order already exists; a retry with the same idempotency key returns
	// it and clears again.
	if err := store.Clear(ctx); err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "storage error")
	}

	return out, nil
}

func toCheckoutOutput(order model.Order, rows []model.OrderItem) CheckoutOutput {
	items := make([]CheckoutItemOutput, 0, len(rows))
	for _, row := range rows {
		items = append(items, CheckoutItemOutput{
			ProductID: row.ProductID,
			SKU:       row.SKUSnapshot,
			Name:      row.ProductNameSnapshot,
			Price:     row.UnitPriceSnapshot,
			Quantity:  row.Quantity,
		})
	}
	return CheckoutOutput{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Summary: cart.Summary{
			Subtotal: order.Subtotal,
			Shipping: order.Shipping,
			Discount: order.Discount,
			Total:    order.Total,
		},
		Items:     items,
		CreatedAt: order.CreatedAt,
	}
}
