package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"battwheels/internal/domain/model"
	repo "battwheels/internal/repository"
)

// Listener receives a copy of the state after a mutation has persisted.
type Listener func(model.CartState)

// Store is the authoritative cart for one shopper session. It is an explicit
// object handed to its consumers, not a singleton. Every mutation merges or
// clamps rather than rejecting, writes the full state back to the persistence
// medium, and then fires the listeners.
type Store struct {
	mu      sync.Mutex
	key     string
	states  repo.CartStateRepository
	pricing PricingConfig
	coupons CouponBook

	items     []model.CartLineItem
	coupon    *model.Coupon
	listeners []Listener
}

// Open rehydrates the persisted state under key. A missing key or a corrupt
// payload silently yields an empty cart; the next successful mutation
// overwrites whatever was there.
func Open(ctx context.Context, key string, states repo.CartStateRepository, pricing PricingConfig, coupons CouponBook) (*Store, error) {
	s := &Store{
		key:     key,
		states:  states,
		pricing: pricing,
		coupons: coupons,
	}

	payload, err := states.Load(ctx, key)
	if errors.Is(err, repo.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	if st, ok := decodeState(payload); ok {
		s.items = st.Items
		s.coupon = st.Coupon
	}
	return s, nil
}

// Key is the opaque persistence key for this session.
func (s *Store) Key() string {
	return s.key
}

// Add merges qty into an existing line with the same id, or inserts a new
// line from the catalog snapshot. Quantities are clamped to [1, stock] when a
// stock cap is known; qty <= 0 is coerced to 1. The stored stock cap is
// refreshed from the incoming snapshot since it is the newer catalog reading.
func (s *Store) Add(ctx context.Context, item model.CartLineItem, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty < 1 {
		qty = 1
	}

	for i := range s.items {
		if s.items[i].ID != item.ID {
			continue
		}
		if item.StockQuantity != nil {
			s.items[i].StockQuantity = item.StockQuantity
		}
		s.items[i].Quantity = clampQuantity(s.items[i].Quantity+qty, s.items[i].StockQuantity)
		return s.persist(ctx)
	}

	line := item
	line.Quantity = clampQuantity(qty, item.StockQuantity)
	s.items = append(s.items, line)
	return s.persist(ctx)
}

// UpdateQuantity sets the line quantity. qty <= 0 removes the line; an
// unknown id is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, id string, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		if !s.removeLocked(id) {
			return nil
		}
		return s.persist(ctx)
	}

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		s.items[i].Quantity = clampQuantity(qty, s.items[i].StockQuantity)
		return s.persist(ctx)
	}
	return nil
}

// Remove drops the line if present; no-op otherwise.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.removeLocked(id) {
		return nil
	}
	return s.persist(ctx)
}

// Clear empties the whole record, active coupon included.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.coupon = nil
	return s.persist(ctx)
}

// ApplyCoupon validates code against the allow-list. An unknown code returns
// applied=false and leaves the state untouched. A valid code replaces any
// previously active coupon.
func (s *Store) ApplyCoupon(ctx context.Context, code string) (model.Coupon, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.coupons.Lookup(code)
	if !ok {
		return model.Coupon{}, false, nil
	}

	s.coupon = &c
	return c, true, s.persist(ctx)
}

// RemoveCoupon clears the active coupon unconditionally.
func (s *Store) RemoveCoupon(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.coupon = nil
	return s.persist(ctx)
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []model.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.items)
}

// Coupon returns the active coupon, if any.
func (s *Store) Coupon() (model.Coupon, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coupon == nil {
		return model.Coupon{}, false
	}
	return *s.coupon, true
}

// Total is sum(final_price * quantity); zero for an empty cart.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Subtotal(s.items)
}

// Count is the total unit count; zero for an empty cart.
func (s *Store) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Count(s.items)
}

// Summary derives subtotal/shipping/discount/total without mutating state.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.items, s.coupon, s.pricing)
}

// Snapshot returns a copy of the full state.
func (s *Store) Snapshot() model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a change listener. Listeners run synchronously on the
// mutating goroutine, after the state has persisted; they must not call back
// into the store.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) removeLocked(id string) bool {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) snapshotLocked() model.CartState {
	st := model.CartState{Items: copyItems(s.items)}
	if s.coupon != nil {
		c := *s.coupon
		st.Coupon = &c
	}
	return st
}

// persist writes the full state and then notifies. The mutation is complete
// in memory either way; a save failure is returned so the caller can decide,
// and the next successful mutation overwrites the stale record.
func (s *Store) persist(ctx context.Context) error {
	st := s.snapshotLocked()
	payload, err := encodeState(st)
	if err != nil {
		return err
	}
	if err := s.states.Save(ctx, s.key, payload); err != nil {
		return err
	}
	for _, l := range s.listeners {
		l(st)
	}
	return nil
}

// clampQuantity keeps qty within [1, stock]. An unknown stock leaves the
// upper bound open; a stale cap below 1 degrades to 1 instead of rejecting.
func clampQuantity(qty int64, stock *int64) int64 {
	if qty < 1 {
		qty = 1
	}
	if stock == nil {
		return qty
	}
	limit := *stock
	if limit < 1 {
		limit = 1
	}
	if qty > limit {
		qty = limit
	}
	return qty
}

func copyItems(items []model.CartLineItem) []model.CartLineItem {
	out := make([]model.CartLineItem, len(items))
	copy(out, items)
	return out
}
