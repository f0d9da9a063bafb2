package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity bounds the quantity of a single line item.
const MaxLineQuantity = 9999

// CartItem is one product-quantity pairing. The total price is derived from
// the product price and quantity and cannot be set on its own.
type CartItem struct {
	product    Product
	quantity   int
	totalPrice decimal.Decimal
}

type cartItemJSON struct {
	Product    Product         `json:"product"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func NewCartItem(product Product, quantity int) CartItem {
	item := CartItem{product: product, quantity: quantity}
	item.recalculate()

	return item
}

func (i *CartItem) recalculate() {
	i.totalPrice = i.product.Price.Mul(decimal.NewFromInt(int64(i.quantity)))
}

func (i CartItem) Product() Product {
	return i.product
}

func (i CartItem) ProductID() int64 {
	return i.product.ID
}

func (i CartItem) Quantity() int {
	return i.quantity
}

func (i CartItem) TotalPrice() decimal.Decimal {
	return i.totalPrice
}

// WithQuantity returns a copy of the item holding the new quantity.
func (i CartItem) WithQuantity(quantity int) CartItem {
	return NewCartItem(i.product, quantity)
}

func (i CartItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(cartItemJSON{
		Product:    i.product,
		Quantity:   i.quantity,
		TotalPrice: i.totalPrice,
	})
}

// UnmarshalJSON restores an item and recomputes its total from price and quantity.
func (i *CartItem) UnmarshalJSON(data []byte) error {
	var raw cartItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Quantity < 1 || raw.Quantity > MaxLineQuantity {
		return fmt.Errorf("cart item for product %d has invalid quantity %d", raw.Product.ID, raw.Quantity)
	}

	*i = NewCartItem(raw.Product, raw.Quantity)

	return nil
}

type CartSummary struct {
	Items       []CartItem      `json:"items"`
	Coupon      *Coupon         `json:"coupon,omitempty"`
	ItemCount   int             `json:"itemCount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	HasDiscount bool            `json:"hasDiscount"`
}

type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"max=9999"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"max=9999"`
}
