package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battwheels/internal/domain/model"
	repo "battwheels/internal/repository"
)

// map-backed state repo so tests can seed and corrupt the medium
type fakeStateRepo struct {
	mu    sync.Mutex
	data  map[string]string
	saves int
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{data: map[string]string{}}
}

func (f *fakeStateRepo) Load(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.data[key]
	if !ok {
		return "", repo.ErrNotFound
	}
	return payload, nil
}

func (f *fakeStateRepo) Save(_ context.Context, key string, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = payload
	f.saves++
	return nil
}

func (f *fakeStateRepo) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func int64p(v int64) *int64 { return &v }

func lineItem(id string, price int64, stock int64) model.CartLineItem {
	return model.CartLineItem{
		ID:            id,
		SKU:           "SKU-" + id,
		Name:          "Item " + id,
		Slug:          "item-" + id,
		FinalPrice:    decimal.NewFromInt(price),
		StockQuantity: int64p(stock),
	}
}

func openStore(t *testing.T, states repo.CartStateRepository) *Store {
	t.Helper()
	s, err := Open(context.Background(), "session-1", states, DefaultPricing(), DefaultCoupons())
	require.NoError(t, err)
	return s
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	w, err := decimal.NewFromString(want)
	require.NoError(t, err)
	assert.Truef(t, w.Equal(got), "want %s, got %s", want, got)
}

func TestStore_AddMergesSameID(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFakeStateRepo())

	require.NoError(t, s.Add(ctx, lineItem("A", 500, 10), 1))
	require.NoError(t, s.Add(ctx, lineItem("A", 500, 10), 1))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Quantity)
}

func TestStore_AddClampsToStock(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFakeStateRepo())

	require.NoError(t, s.Add(ctx, lineItem("A", 500, 5), 10))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].Quantity)

	// clamp again on update
	require.NoError(t, s.UpdateQuantity(ctx, "A", 999))
	assert.Equal(t, int64(5), s.Items()[0].Quantity)
}

func TestStore_ZeroStockCapDegradesToOne(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFakeStateRepo())

	require.NoError(t, s.Add(ctx, lineItem("A", 500, 0), 10))
	assert.Equal(t, int64(1), s.Items()[0].Quantity)

	// update clamps through the same degraded cap
	require.NoError(t, s.UpdateQuantity(ctx, "A", 7))
	assert.Equal(t, int64(1), s.Items()[0].Quantity)
}

func TestStore_AddCoercesNonPositiveQuantityToOne(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFakeStateRepo())

	require.NoError(t, s.Add(ctx, lineItem("A", 500, 10), 0))
	assert.Equal(t, int64(1), s.Items()[0].Quantity)

	require.NoError(t, s.Add(ctx, lineItem("B", 100, 10), -4))
	assert.Equal(t, int64(1), s.Items()[1].Quantity)
}

func TestStore_UpdateQuantityZeroOrNegativeRemoves(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFakeStateRepo())

	require.NoError(t, s.Add(ctx, lineItem("A", 500, 10), 2))
	require.NoError(t, s.Add(ctx, lineItem("B", 100, 10), 1))

	require.NoError(t, s.UpdateQuantity(ctx, "A", 0))
	require.Len(t, s.Items(), 1)

	require.NoError(t, s.UpdateQuantity(ctx, "B", -3))
	assert.Empty(t, s.Items())
}

func TestStore_UpdateUnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	states := newFakeStateRepo()
	s := openStore(t, states)

	require.NoError(t, s.Add(ctx, lineItem("A", 500, 10), 1))
	savesBefore := states.saves

	require.NoError(t, s.UpdateQuantity(ctx, "nope", 3))
	assert.Equal(t, savesBefore, states.saves)
	assert.Equal(t, int64(1), s.Items()[0].Quantity)
}

func TestStore_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFakeStateRepo())

	require.NoError(t, s.Add(ctx, lineItem("A", 500, 10), 2))
	require.NoError(t, s.Add(ctx, lineItem("B", 100, 10), 1))

	require.NoError(t, s.Remove(ctx, "A"))
	require.Len(t, s.Items(), 1)

	// removing a missing id is a no-op
	require.NoError(t, s.Remove(ctx, "A"))
	require.Len(t, s.Items(), 1)

	_, _, err := s.ApplyCoupon(ctx, "FIRST10")
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.Items())
	assert.Equal(t, int64(0), s.Count())
	_, active := s.Coupon()
	assert.False(t, active)
}

func TestStore_EmptyCartTotals(t *testing.T) {
	s := openStore(t, newFakeStateRepo())

	assertDecimal(t, "0", s.Total())
	assert.Equal(t, int64(0), s.Count())

	// the shipping rule applies even at zero subtotal
	sum := s.Summary()
	assertDecimal(t, "0", sum.Subtotal)
	assertDecimal(t, "99", sum.Shipping)
	assertDecimal(t, "0", sum.Discount)
	assertDecimal(t, "99", sum.Total)
}

func TestStore_CouponCaseInsensitiveAndReplacement(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFakeStateRepo())

	c, applied, err := s.ApplyCoupon(ctx, "first10")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "FIRST10", c.Code)
	assert.Equal(t, int64(10), c.DiscountPercent)

	// applying another replaces, never stacks
	_, applied, err = s.ApplyCoupon(ctx, "BATTWHEELS10")
	require.NoError(t, err)
	assert.True(t, applied)

	active, ok := s.Coupon()
	require.True(t, ok)
	assert.Equal(t, "BATTWHEELS10", active.Code)
}

func TestStore_UnknownCouponRejectedWithoutMutating(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFakeStateRepo())

	_, applied, err := s.ApplyCoupon(ctx, "FIRST10")
	require.NoError(t, err)
	require.True(t, applied)

	_, applied, err = s.ApplyCoupon(ctx, "BOGUS")
	require.NoError(t, err)
	assert.False(t, applied)

	active, ok := s.Coupon()
	require.True(t, ok)
	assert.Equal(t, "FIRST10", active.Code)
}

func TestStore_RemoveCoupon(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFakeStateRepo())

	_, _, err := s.ApplyCoupon(ctx, "FIRST10")
	require.NoError(t, err)
	require.NoError(t, s.RemoveCoupon(ctx))

	_, ok := s.Coupon()
	assert.False(t, ok)
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	states := newFakeStateRepo()
	s := openStore(t, states)

	require.NoError(t, s.Add(ctx, lineItem("A", 500, 10), 2))
	require.NoError(t, s.Add(ctx, lineItem("B", 1200, 3), 1))
	require.NoError(t, s.Add(ctx, lineItem("C", 50, 100), 4))
	_, _, err := s.ApplyCoupon(ctx, "FIRST10")
	require.NoError(t, err)

	reloaded := openStore(t, states)

	want := s.Items()
	got := reloaded.Items()
	require.Len(t, got, 3)
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.True(t, want[i].FinalPrice.Equal(got[i].FinalPrice))
	}

	c, ok := reloaded.Coupon()
	require.True(t, ok)
	assert.Equal(t, "FIRST10", c.Code)
}

func TestStore_CorruptStateStartsEmpty(t *testing.T) {
	states := newFakeStateRepo()
	states.data["session-1"] = "{not json!!"

	s := openStore(t, states)
	assert.Equal(t, int64(0), s.Count())
	assert.Empty(t, s.Items())

	// next mutation overwrites the corrupt record
	require.NoError(t, s.Add(context.Background(), lineItem("A", 500, 10), 1))
	reloaded := openStore(t, states)
	assert.Equal(t, int64(1), reloaded.Count())
}

func TestStore_ListenersFireAfterPersist(t *testing.T) {
	ctx := context.Background()
	states := newFakeStateRepo()
	s := openStore(t, states)

	var seen []int64
	s.Subscribe(func(st model.CartState) {
		seen = append(seen, Count(st.Items))
	})

	require.NoError(t, s.Add(ctx, lineItem("A", 500, 10), 2))
	require.NoError(t, s.UpdateQuantity(ctx, "A", 1))
	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, []int64{2, 1, 0}, seen)
}

func TestStore_ConcreteScenario(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFakeStateRepo())

	require.NoError(t, s.Add(ctx, lineItem("A", 500, 10), 2))
	require.NoError(t, s.Add(ctx, lineItem("B", 1200, 3), 1))

	assertDecimal(t, "2200", s.Total())
	assert.Equal(t, int64(3), s.Count())

	sum := s.Summary()
	assertDecimal(t, "0", sum.Shipping) // subtotal >= 2000
	assertDecimal(t, "2200", sum.Total)

	_, applied, err := s.ApplyCoupon(ctx, "FIRST10")
	require.NoError(t, err)
	require.True(t, applied)

	sum = s.Summary()
	assertDecimal(t, "220", sum.Discount)
	assertDecimal(t, "1980", sum.Total)
}

func TestStore_AddRefreshesStockCap(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFakeStateRepo())

	require.NoError(t, s.Add(ctx, lineItem("A", 500, 10), 4))

	// catalog now reports a smaller stock; the merge re-clamps
	require.NoError(t, s.Add(ctx, lineItem("A", 500, 3), 1))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].Quantity)
}
