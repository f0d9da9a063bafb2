package models

import "github.com/shopspring/decimal"

type Coupon struct {
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	MinAmount   decimal.Decimal `json:"minAmount"`
	MaxDiscount decimal.Decimal `json:"maxDiscount"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"max=64"`
}
