package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var (
	headphones = product(1, "Premium Headphones", "299.99")
	stand      = product(3, "Laptop Stand", "49.99")
	mouse      = product(5, "Gaming Mouse", "79.99")
	speaker    = product(7, "Bookshelf Speaker", "250")
	projector  = product(8, "Projector", "1000")
)

func product(id int64, name, price string) models.Product {
	return models.Product{
		ID:          id,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Image:       "images/product.png",
		Description: name,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCart(t *testing.T, store repository.KVStore) (*service.CartService, *service.CouponService) {
	t.Helper()

	coupons := service.NewCouponService(service.DefaultCoupons())
	cart := service.NewCartService(context.Background(), coupons, store, service.WithLogger(quietLogger()))

	return cart, coupons
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()

	assert.True(t, decimal.RequireFromString(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}
