package usecase

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"battwheels/internal/cart"
	"battwheels/internal/domain/model"
	infraRepo "battwheels/internal/infra/repository"
	repo "battwheels/internal/repository"
)

type CartProductRepoMock struct{ mock.Mock }

func (m *CartProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func newCartUsecase(products repo.ProductRepository) *CartUsecase {
	return NewCartUsecase(
		infraRepo.NewCartStateMemoryRepository(),
		products,
		cart.DefaultPricing(),
		cart.DefaultCoupons(),
	)
}

func activeProduct(id string, price int64, stock int64) model.Product {
	return model.Product{
		ID:         id,
		SKU:        "SKU-" + id,
		Name:       "Item " + id,
		Slug:       "item-" + id,
		FinalPrice: decimal.NewFromInt(price),
		Stock:      stock,
		IsActive:   true,
	}
}

func TestCartUsecase_AddToCartSnapshotsCatalog(t *testing.T) {
	products := new(CartProductRepoMock)
	products.On("FindByID", mock.Anything, "A").Return(activeProduct("A", 500, 10), nil)

	uc := newCartUsecase(products)

	out, err := uc.AddToCart(context.Background(), "sess", AddCartInput{ProductID: "A", Quantity: 2})
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.Equal(t, "SKU-A", out.Items[0].SKU)
	assert.Equal(t, int64(2), out.Items[0].Quantity)
	require.NotNil(t, out.Items[0].StockQuantity)
	assert.Equal(t, int64(10), *out.Items[0].StockQuantity)
	assert.True(t, decimal.NewFromInt(1000).Equal(out.Total))
	assert.Equal(t, int64(2), out.Count)
}

func TestCartUsecase_AddToCartRejectsUnknownOrInactiveProduct(t *testing.T) {
	products := new(CartProductRepoMock)
	products.On("FindByID", mock.Anything, "missing").Return(model.Product{}, repo.ErrNotFound)

	inactive := activeProduct("hidden", 100, 5)
	inactive.IsActive = false
	products.On("FindByID", mock.Anything, "hidden").Return(inactive, nil)

	uc := newCartUsecase(products)

	_, err := uc.AddToCart(context.Background(), "sess", AddCartInput{ProductID: "missing", Quantity: 1})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)

	_, err = uc.AddToCart(context.Background(), "sess", AddCartInput{ProductID: "hidden", Quantity: 1})
	he, ok = AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}

func TestCartUsecase_UpdateAndRemoveFlow(t *testing.T) {
	products := new(CartProductRepoMock)
	products.On("FindByID", mock.Anything, "A").Return(activeProduct("A", 500, 5), nil)

	uc := newCartUsecase(products)
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, "sess", AddCartInput{ProductID: "A", Quantity: 1})
	require.NoError(t, err)

	// clamp to stock
	out, err := uc.UpdateItem(ctx, "sess", "A", 99)
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.Items[0].Quantity)

	// zero removes
	out, err = uc.UpdateItem(ctx, "sess", "A", 0)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

func TestCartUsecase_ApplyCouponResult(t *testing.T) {
	products := new(CartProductRepoMock)
	products.On("FindByID", mock.Anything, "A").Return(activeProduct("A", 2000, 10), nil)

	uc := newCartUsecase(products)
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, "sess", AddCartInput{ProductID: "A", Quantity: 1})
	require.NoError(t, err)

	out, err := uc.ApplyCoupon(ctx, "sess", "first10")
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, int64(10), out.DiscountPercent)
	assert.True(t, decimal.NewFromInt(200).Equal(out.Summary.Discount))
	assert.True(t, decimal.NewFromInt(1800).Equal(out.Summary.Total))

	// unknown code is success=false, not an error
	out, err = uc.ApplyCoupon(ctx, "sess", "BOGUS")
	require.NoError(t, err)
	assert.False(t, out.Success)
}

func TestCartUsecase_StateSurvivesReopen(t *testing.T) {
	products := new(CartProductRepoMock)
	products.On("FindByID", mock.Anything, "A").Return(activeProduct("A", 500, 10), nil)

	states := infraRepo.NewCartStateMemoryRepository()
	uc := NewCartUsecase(states, products, cart.DefaultPricing(), cart.DefaultCoupons())
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, "sess", AddCartInput{ProductID: "A", Quantity: 3})
	require.NoError(t, err)

	// a fresh usecase over the same medium rehydrates the cart
	uc2 := NewCartUsecase(states, products, cart.DefaultPricing(), cart.DefaultCoupons())
	out, err := uc2.GetCart(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(3), out.Items[0].Quantity)
}

func TestCartUsecase_StoreCacheStaysBounded(t *testing.T) {
	products := new(CartProductRepoMock)
	products.On("FindByID", mock.Anything, "A").Return(activeProduct("A", 500, 10), nil)

	states := infraRepo.NewCartStateMemoryRepository()
	uc := NewCartUsecase(states, products, cart.DefaultPricing(), cart.DefaultCoupons())
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, "sess-0", AddCartInput{ProductID: "A", Quantity: 2})
	require.NoError(t, err)

	for i := 1; i <= maxCachedStores; i++ {
		_, err := uc.Store(ctx, fmt.Sprintf("sess-%d", i))
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, len(uc.stores), maxCachedStores)

	// whichever key was evicted, the persisted state still rehydrates
	out, err := uc.GetCart(ctx, "sess-0")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(2), out.Items[0].Quantity)
}

func TestCartUsecase_MissingSessionKey(t *testing.T) {
	uc := newCartUsecase(new(CartProductRepoMock))

	_, err := uc.GetCart(context.Background(), "")
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}
