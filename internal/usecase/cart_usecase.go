package usecase

import (
	"context"
	"net/http"
	"sync"

	"github.com/shopspring/decimal"

	"battwheels/internal/cart"
	"battwheels/internal/domain/model"
	repo "battwheels/internal/repository"
)

// Session keys are client-minted cookies, so the store cache must be bounded.
// Every mutation persists, so an evicted store rehydrates on next touch.
const maxCachedStores = 1024

// CartUsecase owns the /cart business logic. One cart.Store per session key,
// opened (rehydrated) on first touch and handed to every operation.
type CartUsecase struct {
	states   repo.CartStateRepository
	products repo.ProductRepository
	pricing  cart.PricingConfig
	coupons  cart.CouponBook

	mu     sync.Mutex
	stores map[string]*cart.Store
}

// DI
func NewCartUsecase(
	states repo.CartStateRepository,
	products repo.ProductRepository,
	pricing cart.PricingConfig,
	coupons cart.CouponBook,
) *CartUsecase {
	return &CartUsecase{
		states:   states,
		products: products,
		pricing:  pricing,
		coupons:  coupons,
		stores:   map[string]*cart.Store{},
	}
}

type CartItemResponse struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Images        []string        `json:"images,omitempty"`
	FinalPrice    decimal.Decimal `json:"final_price"`
	Quantity      int64           `json:"quantity"`
	StockQuantity *int64          `json:"stock_quantity,omitempty"`
}

type CartResponse struct {
	Items   []CartItemResponse `json:"items"`
	Count   int64              `json:"count"`
	Total   decimal.Decimal    `json:"total"`
	Coupon  *model.Coupon      `json:"coupon,omitempty"`
	Summary cart.Summary       `json:"summary"`
}

type AddCartInput struct {
	ProductID string
	Quantity  int64
}

type CouponOutput struct {
	Success         bool         `json:"success"`
	DiscountPercent int64        `json:"discount_percent,omitempty"`
	Summary         cart.Summary `json:"summary"`
}

// Store returns the session's cart store, opening it once per process.
func (u *CartUsecase) Store(ctx context.Context, key string) (*cart.Store, error) {
	if key == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "missing cart session")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if s, ok := u.stores[key]; ok {
		return s, nil
	}

	s, err := cart.Open(ctx, key, u.states, u.pricing, u.coupons)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	if len(u.stores) >= maxCachedStores {
		for k := range u.stores {
			delete(u.stores, k)
			break
		}
	}
	u.stores[key] = s
	return s, nil
}

func (u *CartUsecase) GetCart(ctx context.Context, key string) (CartResponse, error) {
	s, err := u.Store(ctx, key)
	if err != nil {
		return CartResponse{}, err
	}
	return buildCartResponse(s), nil
}

// AddToCart snapshots the catalog entry into a line item and merges it in.
// Only published products can be added; the snapshot keeps pricing the line
// even if the product later changes or disappears.
func (u *CartUsecase) AddToCart(ctx context.Context, key string, in AddCartInput) (CartResponse, error) {
	if in.ProductID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	s, err := u.Store(ctx, key)
	if err != nil {
		return CartResponse{}, err
	}

	p, err := u.products.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	stock := p.Stock
	line := model.CartLineItem{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Slug:          p.Slug,
		Images:        p.Images,
		FinalPrice:    p.FinalPrice,
		StockQuantity: &stock,
	}

	if err := s.Add(ctx, line, in.Quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	return buildCartResponse(s), nil
}

func (u *CartUsecase) UpdateItem(ctx context.Context, key string, itemID string, qty int64) (CartResponse, error) {
	if itemID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	s, err := u.Store(ctx, key)
	if err != nil {
		return CartResponse{}, err
	}

	if err := s.UpdateQuantity(ctx, itemID, qty); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	return buildCartResponse(s), nil
}

func (u *CartUsecase) RemoveItem(ctx context.Context, key string, itemID string) (CartResponse, error) {
	if itemID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	s, err := u.Store(ctx, key)
	if err != nil {
		return CartResponse{}, err
	}

	if err := s.Remove(ctx, itemID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	return buildCartResponse(s), nil
}

func (u *CartUsecase) ClearCart(ctx context.Context, key string) (CartResponse, error) {
	s, err := u.Store(ctx, key)
	if err != nil {
		return CartResponse{}, err
	}

	if err := s.Clear(ctx); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	return buildCartResponse(s), nil
}

// ApplyCoupon reports an unknown code as success=false, not as an error.
func (u *CartUsecase) ApplyCoupon(ctx context.Context, key string, code string) (CouponOutput, error) {
	s, err := u.Store(ctx, key)
	if err != nil {
		return CouponOutput{}, err
	}

	c, applied, err := s.ApplyCoupon(ctx, code)
	if err != nil {
		return CouponOutput{}, NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	if !applied {
		return CouponOutput{Success: false, Summary: s.Summary()}, nil
	}
	return CouponOutput{Success: true, DiscountPercent: c.DiscountPercent, Summary: s.Summary()}, nil
}

func (u *CartUsecase) RemoveCoupon(ctx context.Context, key string) (CartResponse, error) {
	s, err := u.Store(ctx, key)
	if err != nil {
		return CartResponse{}, err
	}

	if err := s.RemoveCoupon(ctx); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	return buildCartResponse(s), nil
}

func (u *CartUsecase) GetSummary(ctx context.Context, key string) (cart.Summary, error) {
	s, err := u.Store(ctx, key)
	if err != nil {
		return cart.Summary{}, err
	}
	return s.Summary(), nil
}

func buildCartResponse(s *cart.Store) CartResponse {
	st := s.Snapshot()

	items := make([]CartItemResponse, 0, len(st.Items))
	for _, it := range st.Items {
		items = append(items, CartItemResponse{
			ID:            it.ID,
			SKU:           it.SKU,
			Name:          it.Name,
			Slug:          it.Slug,
			Images:        it.Images,
			FinalPrice:    it.FinalPrice,
			Quantity:      it.Quantity,
			StockQuantity: it.StockQuantity,
		})
	}

	return CartResponse{
		Items:   items,
		Count:   cart.Count(st.Items),
		Total:   cart.Subtotal(st.Items),
		Coupon:  st.Coupon,
		Summary: s.Summary(),
	}
}
