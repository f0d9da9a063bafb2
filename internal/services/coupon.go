package service

import (
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultCoupons is the fixed coupon catalog.
func DefaultCoupons() []models.Coupon {
	return []models.Coupon{
		{
			Code:        "SAVE10",
			Discount:    decimal.RequireFromString("0.1"),
			MinAmount:   decimal.NewFromInt(100),
			MaxDiscount: decimal.NewFromInt(50),
		},
	}
}

// CouponService evaluates coupon rules. It holds no cart state.
type CouponService struct {
	coupons []models.Coupon
}

func NewCouponService(coupons []models.Coupon) *CouponService {
	return &CouponService{coupons: append([]models.Coupon(nil), coupons...)}
}

// Validate finds the coupon whose code matches, ignoring case.
func (s *CouponService) Validate(code string) (models.Coupon, bool) {
	for _, c := range s.coupons {
		if strings.EqualFold(c.Code, code) {
			return c, true
		}
	}

	return models.Coupon{}, false
}

// DiscountForItem is the per-unit discount: nothing below the coupon minimum,
// otherwise the rate applied to one unit, capped at MaxDiscount.
func (s *CouponService) DiscountForItem(coupon models.Coupon, unitPrice decimal.Decimal) decimal.Decimal {
	if unitPrice.LessThan(coupon.MinAmount) {
		return decimal.Zero
	}

	return decimal.Min(unitPrice.Mul(coupon.Discount), coupon.MaxDiscount)
}

func (s *CouponService) Coupons() []models.Coupon {
	return append([]models.Coupon(nil), s.coupons...)
}

// MinimumThreshold is the lowest qualifying item price across the catalog.
func (s *CouponService) MinimumThreshold() decimal.Decimal {
	if len(s.coupons) == 0 {
		return decimal.Zero
	}

	threshold := s.coupons[0].MinAmount
	for _, c := range s.coupons[1:] {
		threshold = decimal.Min(threshold, c.MinAmount)
	}

	return threshold
}

func hasEligibleItem(items []models.CartItem, threshold decimal.Decimal) bool {
	for _, item := range items {
		if item.Product().Price.GreaterThanOrEqual(threshold) {
			return true
		}
	}

	return false
}

// perUnitDiscount sums DiscountForItem per unit over every line.
func (s *CouponService) perUnitDiscount(items []models.CartItem, coupon *models.Coupon) decimal.Decimal {
	total := decimal.Zero
	if coupon == nil {
		return total
	}

	for _, item := range items {
		unit := s.DiscountForItem(*coupon, item.Product().Price)
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity()))))
	}

	return total
}
