package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultProducts is the demo catalog served when no database is configured.
func DefaultProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Premium Headphones", Price: decimal.RequireFromString("299.99"), Image: "images/headphone.png", Description: "High-quality wireless headphones"},
		{ID: 2, Name: "Smart Watch", Price: decimal.RequireFromString("199.99"), Image: "images/watch.png", Description: "Feature-rich smartwatch"},
		{ID: 3, Name: "Laptop Stand", Price: decimal.RequireFromString("49.99"), Image: "images/stand.jpg", Description: "Ergonomic laptop stand"},
		{ID: 4, Name: "Mechanical Keyboard", Price: decimal.RequireFromString("149.99"), Image: "images/keyboard.jpg", Description: "RGB mechanical keyboard"},
		{ID: 5, Name: "Gaming Mouse", Price: decimal.RequireFromString("79.99"), Image: "images/mouse.jpg", Description: "High-precision gaming mouse"},
		{ID: 6, Name: "Professional Monitor", Price: decimal.RequireFromString("449.99"), Image: "images/monitor.jpg", Description: "27-inch 4K monitor"},
	}
}

type memoryProductRepository struct {
	products []models.Product
	latency  time.Duration
}

// NewMemoryProductRepo serves a fixed product list. ListProducts waits for
// latency before answering to mimic a remote catalog.
func NewMemoryProductRepo(products []models.Product, latency time.Duration) ProductRepository {
	return &memoryProductRepository{
		products: append([]models.Product(nil), products...),
		latency:  latency,
	}
}

func (r *memoryProductRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	if r.latency > 0 {
		timer := time.NewTimer(r.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return append([]models.Product{}, r.products...), nil
}

func (r *memoryProductRepository) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}

	return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
}
