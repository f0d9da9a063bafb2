package service

import (
	"context"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// CheckoutService prices the cart for display and gates coupon application.
//
// Coupons listed as batch coupons cap their discount per line item (price times
// quantity), every other coupon falls back to the cart's per-unit discount.
type CheckoutService struct {
	cart       *CartService
	coupons    *CouponService
	batchCodes map[string]bool
}

func NewCheckoutService(cart *CartService, coupons *CouponService, batchCodes ...string) *CheckoutService {
	if len(batchCodes) == 0 {
		batchCodes = []string{"SAVE10"}
	}

	codes := make(map[string]bool, len(batchCodes))
	for _, code := range batchCodes {
		codes[code] = true
	}

	return &CheckoutService{cart: cart, coupons: coupons, batchCodes: codes}
}

func (c *CheckoutService) Subtotal() decimal.Decimal {
	return c.cart.CartTotal()
}

func (c *CheckoutService) Discount() decimal.Decimal {
	items, coupon := c.cart.Snapshot()

	return c.discount(items, coupon)
}

func (c *CheckoutService) Total() decimal.Decimal {
	items, coupon := c.cart.Snapshot()

	return total(subtotal(items), c.discount(items, coupon))
}

// Summary prices a single snapshot of the cart.
func (c *CheckoutService) Summary() models.CartSummary {
	items, coupon := c.cart.Snapshot()
	sub := subtotal(items)
	discount := c.discount(items, coupon)

	return models.CartSummary{
		Items:       items,
		Coupon:      coupon,
		ItemCount:   itemCount(items),
		Subtotal:    sub,
		Discount:    discount,
		Total:       total(sub, discount),
		HasDiscount: discount.IsPositive(),
	}
}

// ApplyCoupon checks the code and the cart and binds the coupon in a single
// cart mutation. The returned AppError tells a blank code, a cart without
// eligible items and an unknown code apart.
func (c *CheckoutService) ApplyCoupon(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		metrics.RecordCouponApplication("missing")
		return errors.CouponRequiredError()
	}

	outcome, threshold := c.cart.applyCouponIfEligible(ctx, code, c.coupons.MinimumThreshold())

	switch outcome {
	case couponIneligible:
		metrics.RecordCouponApplication("ineligible")
		return errors.CouponIneligibleError(threshold.String())
	case couponUnknown:
		metrics.RecordCouponApplication("invalid")
		return errors.CouponInvalidError()
	}

	metrics.RecordCouponApplication("applied")

	return nil
}

func (c *CheckoutService) discount(items []models.CartItem, coupon *models.Coupon) decimal.Decimal {
	if coupon == nil || len(items) == 0 {
		return decimal.Zero
	}

	if !c.batchCodes[coupon.Code] {
		return c.coupons.perUnitDiscount(items, coupon)
	}

	discount := decimal.Zero
	for _, item := range items {
		if item.Product().Price.LessThan(coupon.MinAmount) {
			continue
		}

		raw := item.TotalPrice().Mul(coupon.Discount)
		discount = discount.Add(decimal.Min(raw, coupon.MaxDiscount))
	}

	return discount
}

func total(subtotal, discount decimal.Decimal) decimal.Decimal {
	return decimal.Max(subtotal.Sub(discount), decimal.Zero)
}
