package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/observe"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/shopspring/decimal"
)

type StorageKeys struct {
	Cart   string
	Coupon string
}

var DefaultStorageKeys = StorageKeys{Cart: "ecommerce_cart", Coupon: "ecommerce_coupon"}

// CartService owns the cart line items and the applied coupon.
//
// Every mutation changes state, writes the affected snapshot to the KVStore and
// then notifies subscribers, before the next mutation starts. A coupon that no
// longer has an eligible line item is dropped after each change to the items.
// Storage failures are logged and never surface to callers; the in-memory state
// stays authoritative.
type CartService struct {
	coupons *CouponService
	store   repository.KVStore
	keys    StorageKeys
	logger  *slog.Logger

	// writeMu serializes mutations from state change through notification;
	// mu guards items and coupon and is never held while subscribers run.
	writeMu sync.Mutex
	mu      sync.Mutex
	items   []models.CartItem
	coupon  *models.Coupon

	itemsSubject  *observe.Subject[[]models.CartItem]
	couponSubject *observe.Subject[*models.Coupon]
}

type CartOption func(*CartService)

func WithLogger(logger *slog.Logger) CartOption {
	return func(s *CartService) {
		s.logger = logger
	}
}

func WithStorageKeys(keys StorageKeys) CartOption {
	return func(s *CartService) {
		s.keys = keys
	}
}

type change struct {
	items  bool
	coupon bool
}

// NewCartService restores the cart and coupon from store. Missing or unreadable
// snapshots start empty.
func NewCartService(ctx context.Context, coupons *CouponService, store repository.KVStore, opts ...CartOption) *CartService {
	s := &CartService{
		coupons: coupons,
		store:   store,
		keys:    DefaultStorageKeys,
		logger:  slog.Default(),
		items:   []models.CartItem{},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.loadItems(ctx)
	s.loadCoupon(ctx)
	s.dropIneligibleCoupon(ctx)

	s.itemsSubject = observe.New(cloneItems(s.items), cloneItems)
	s.couponSubject = observe.New(cloneCoupon(s.coupon), cloneCoupon)

	return s
}

// AddToCart adds quantity units of product, merging into an existing line.
// Quantities below one are raised to one; a line never exceeds
// models.MaxLineQuantity.
func (s *CartService) AddToCart(ctx context.Context, product models.Product, quantity int) {
	if quantity < 1 {
		s.logger.Debug("Clamping non-positive quantity", slog.Int64("product_id", product.ID), slog.Int("quantity", quantity))
		quantity = 1
	}

	quantity = s.capQuantity(product.ID, quantity)

	s.mutate(ctx, "add", func() change {
		if i := s.indexOf(product.ID); i >= 0 {
			current := s.items[i].Quantity()
			next := s.capQuantity(product.ID, current+quantity)
			if next == current {
				return change{}
			}

			s.items[i] = s.items[i].WithQuantity(next)
		} else {
			s.items = append(s.items, models.NewCartItem(product, quantity))
		}

		s.saveItems(ctx)

		return change{items: true}
	})
}

func (s *CartService) RemoveFromCart(ctx context.Context, productID int64) {
	s.mutate(ctx, "remove", func() change {
		i := s.indexOf(productID)
		if i < 0 {
			return change{}
		}

		s.items = slices.Delete(s.items, i, i+1)
		s.saveItems(ctx)

		return change{items: true}
	})
}

// UpdateQuantity sets the quantity of an existing line. Zero or less removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, productID)
		return
	}

	quantity = s.capQuantity(productID, quantity)

	s.mutate(ctx, "update", func() change {
		i := s.indexOf(productID)
		if i < 0 || s.items[i].Quantity() == quantity {
			return change{}
		}

		s.items[i] = s.items[i].WithQuantity(quantity)
		s.saveItems(ctx)

		return change{items: true}
	})
}

// ApplyCoupon binds the coupon matching code. It does not check that the cart
// holds an eligible item; callers gate that.
func (s *CartService) ApplyCoupon(ctx context.Context, code string) bool {
	coupon, ok := s.coupons.Validate(code)
	if !ok {
		return false
	}

	s.mutate(ctx, "apply_coupon", func() change {
		s.coupon = &coupon
		s.saveCoupon(ctx)

		return change{coupon: true}
	})

	return true
}

type couponOutcome int

const (
	couponApplied couponOutcome = iota
	couponIneligible
	couponUnknown
)

// applyCouponIfEligible checks eligibility and binds the coupon in one
// mutation, so no item change can land between the two. The threshold is the
// matched coupon's minimum, or fallback when the code is unknown.
func (s *CartService) applyCouponIfEligible(ctx context.Context, code string, fallback decimal.Decimal) (couponOutcome, decimal.Decimal) {
	coupon, known := s.coupons.Validate(code)

	threshold := fallback
	if known {
		threshold = coupon.MinAmount
	}

	outcome := couponApplied

	s.mutate(ctx, "apply_coupon", func() change {
		if !hasEligibleItem(s.items, threshold) {
			outcome = couponIneligible
			return change{}
		}

		if !known {
			outcome = couponUnknown
			return change{}
		}

		s.coupon = &coupon
		s.saveCoupon(ctx)

		return change{coupon: true}
	})

	return outcome, threshold
}

func (s *CartService) RemoveCoupon(ctx context.Context) {
	s.mutate(ctx, "remove_coupon", func() change {
		had := s.coupon != nil
		s.coupon = nil
		s.deleteKey(ctx, s.keys.Coupon)

		return change{coupon: had}
	})
}

// ClearCart empties the cart and drops the coupon unconditionally.
func (s *CartService) ClearCart(ctx context.Context) {
	s.mutate(ctx, "clear", func() change {
		s.items = []models.CartItem{}
		s.coupon = nil
		s.deleteKey(ctx, s.keys.Cart)
		s.deleteKey(ctx, s.keys.Coupon)

		return change{items: true, coupon: true}
	})
}

func (s *CartService) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneItems(s.items)
}

func (s *CartService) AppliedCoupon() *models.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneCoupon(s.coupon)
}

// Snapshot returns the items and coupon as of the same instant.
func (s *CartService) Snapshot() ([]models.CartItem, *models.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneItems(s.items), cloneCoupon(s.coupon)
}

func (s *CartService) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return subtotal(s.items)
}

func (s *CartService) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return itemCount(s.items)
}

// TotalDiscount applies the per-unit capped discount to every unit in the cart.
func (s *CartService) TotalDiscount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.coupons.perUnitDiscount(s.items, s.coupon)
}

func (s *CartService) CartTotalWithDiscount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return subtotal(s.items).Sub(s.coupons.perUnitDiscount(s.items, s.coupon))
}

// SubscribeItems replays the current items to fn and then calls it after every
// change. fn may read the cart but must not mutate it.
func (s *CartService) SubscribeItems(fn func([]models.CartItem)) (cancel func()) {
	return s.itemsSubject.Subscribe(fn)
}

// SubscribeCoupon is SubscribeItems for the applied coupon; nil means none.
func (s *CartService) SubscribeCoupon(fn func(*models.Coupon)) (cancel func()) {
	return s.couponSubject.Subscribe(fn)
}

func (s *CartService) mutate(ctx context.Context, operation string, fn func() change) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()

	ch := fn()
	if ch.items && s.dropIneligibleCoupon(ctx) {
		ch.coupon = true
	}

	items, coupon := cloneItems(s.items), cloneCoupon(s.coupon)

	s.mu.Unlock()

	if !ch.items && !ch.coupon {
		return
	}

	metrics.RecordCartMutation(operation)

	if ch.items {
		s.itemsSubject.Publish(items)
	}

	if ch.coupon {
		s.couponSubject.Publish(coupon)
	}
}

// dropIneligibleCoupon clears the coupon when no line item reaches its minimum.
// Must be called with s.mu held (or before the service is shared).
func (s *CartService) dropIneligibleCoupon(ctx context.Context) bool {
	if s.coupon == nil {
		return false
	}

	if len(s.items) > 0 && hasEligibleItem(s.items, s.coupon.MinAmount) {
		return false
	}

	s.logger.Info("Removing coupon, no eligible items left", slog.String("code", s.coupon.Code), slog.Int("items", len(s.items)))
	metrics.RecordCouponAutoCleared()

	s.coupon = nil
	s.deleteKey(ctx, s.keys.Coupon)

	return true
}

// capQuantity expects both operands of any sum it is given to be within
// MaxLineQuantity, so the sum itself cannot overflow.
func (s *CartService) capQuantity(productID int64, quantity int) int {
	if quantity <= models.MaxLineQuantity {
		return quantity
	}

	s.logger.Warn("Capping line quantity", slog.Int64("product_id", productID), slog.Int("requested", quantity), slog.Int("max", models.MaxLineQuantity))

	return models.MaxLineQuantity
}

func (s *CartService) indexOf(productID int64) int {
	return slices.IndexFunc(s.items, func(item models.CartItem) bool {
		return item.ProductID() == productID
	})
}

func (s *CartService) saveItems(ctx context.Context) {
	s.write(ctx, s.keys.Cart, s.items)
}

func (s *CartService) saveCoupon(ctx context.Context) {
	s.write(ctx, s.keys.Coupon, s.coupon)
}

func (s *CartService) write(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("Failed to encode cart state", slog.String("key", key), slog.Any("error", err))
		metrics.RecordStorageFailure("encode")
		return
	}

	if err := s.store.Set(ctx, key, string(data)); err != nil {
		s.logger.Error("Failed to persist cart state", slog.String("key", key), slog.Any("error", err))
		metrics.RecordStorageFailure("set")
	}
}

func (s *CartService) deleteKey(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Error("Failed to delete cart state", slog.String("key", key), slog.Any("error", err))
		metrics.RecordStorageFailure("delete")
	}
}

// read reports whether key held a decodable value.
func (s *CartService) read(ctx context.Context, key string, dest any) bool {
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Error("Failed to load cart state", slog.String("key", key), slog.Any("error", err))
		metrics.RecordStorageFailure("get")
		return false
	}

	if !found {
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.logger.Error("Discarding unreadable cart state", slog.String("key", key), slog.Any("error", err))
		metrics.RecordStorageFailure("decode")
		return false
	}

	return true
}

func (s *CartService) loadItems(ctx context.Context) {
	var stored []json.RawMessage
	if !s.read(ctx, s.keys.Cart, &stored) {
		return
	}

	for n, raw := range stored {
		var item models.CartItem
		if err := json.Unmarshal(raw, &item); err != nil {
			s.logger.Error("Discarding unreadable cart line", slog.String("key", s.keys.Cart), slog.Int("line", n), slog.Any("error", err))
			metrics.RecordStorageFailure("decode")
			continue
		}

		// one line per product, even if the snapshot was hand-edited
		if i := s.indexOf(item.ProductID()); i >= 0 {
			merged := s.capQuantity(item.ProductID(), s.items[i].Quantity()+item.Quantity())
			s.items[i] = s.items[i].WithQuantity(merged)
			continue
		}

		s.items = append(s.items, item)
	}

	s.logger.Debug("Restored cart", slog.Int("items", len(s.items)))
}

// loadCoupon rebinds a stored coupon to the catalog entry with the same code,
// so stored rates and caps are never trusted. Unknown codes are dropped.
func (s *CartService) loadCoupon(ctx context.Context) {
	var stored *models.Coupon
	if !s.read(ctx, s.keys.Coupon, &stored) || stored == nil {
		return
	}

	coupon, ok := s.coupons.Validate(stored.Code)
	if !ok {
		s.logger.Warn("Dropping stored coupon unknown to the catalog", slog.String("code", stored.Code))
		s.deleteKey(ctx, s.keys.Coupon)
		return
	}

	s.coupon = &coupon

	if !sameTerms(coupon, *stored) {
		s.logger.Warn("Stored coupon differs from the catalog, using catalog terms", slog.String("code", coupon.Code))
		s.saveCoupon(ctx)
	}
}

func sameTerms(a, b models.Coupon) bool {
	return a.Code == b.Code &&
		a.Discount.Equal(b.Discount) &&
		a.MinAmount.Equal(b.MinAmount) &&
		a.MaxDiscount.Equal(b.MaxDiscount)
}

func subtotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice())
	}

	return total
}

func itemCount(items []models.CartItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity()
	}

	return count
}

func cloneItems(items []models.CartItem) []models.CartItem {
	if items == nil {
		return []models.CartItem{}
	}

	return slices.Clone(items)
}

func cloneCoupon(coupon *models.Coupon) *models.Coupon {
	if coupon == nil {
		return nil
	}

	c := *coupon

	return &c
}
