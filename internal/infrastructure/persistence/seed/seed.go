package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/repository"
)

// Products returns the demo catalog loaded into fresh stores.
func Products() []*catalog.Product {
	fixtures := []struct {
		name        string
		description string
		price       string
		stock       int
		category    string
		image       string
	}{
		{
			name:        "Wireless Headphones Pro",
			description: "Bluetooth headphones with active noise cancellation, 30 hours of battery and premium Hi-Fi sound.",
			price:       "149.99",
			stock:       25,
			category:    "Electronics",
			image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400&h=400&fit=crop",
		},
		{
			name:        "Smartwatch Fitness Tracker",
			description: "Smart watch with heart-rate monitor, built-in GPS and water resistance down to 50m.",
			price:       "199.99",
			stock:       18,
			category:    "Electronics",
			image:       "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=400&h=400&fit=crop",
		},
		{
			name:        "Mirrorless Digital Camera",
			description: "24MP mirrorless camera with 4K recording, image stabilization and built-in WiFi.",
			price:       "899.99",
			stock:       8,
			category:    "Photography",
			image:       "https://images.unsplash.com/photo-1516035069371-29a1b244cc32?w=400&h=400&fit=crop",
		},
		{
			name:        "Mechanical RGB Keyboard",
			description: "Mechanical gaming keyboard with Cherry MX switches, RGB backlight and wrist rest.",
			price:       "129.99",
			stock:       32,
			category:    "Gaming",
			image:       "https://images.unsplash.com/photo-1511467687858-23d96c32e4ae?w=400&h=400&fit=crop",
		},
		{
			name:        "Premium Laptop Backpack",
			description: "Ergonomic backpack for laptops up to 17\", water resistant with integrated USB port.",
			price:       "79.99",
			stock:       45,
			category:    "Accessories",
			image:       "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=400&h=400&fit=crop",
		},
		{
			name:        "Portable Bluetooth Speaker",
			description: "360-degree wireless speaker with 24-hour battery, IPX7 water resistant.",
			price:       "89.99",
			stock:       28,
			category:    "Audio",
			image:       "https://images.unsplash.com/photo-1608043152269-423dbba4e7e1?w=400&h=400&fit=crop",
		},
	}

	products := make([]*catalog.Product, 0, len(fixtures))
	for _, f := range fixtures {
		products = append(products, &catalog.Product{
			Name:        f.name,
			Description: f.description,
			Price:       decimal.RequireFromString(f.price),
			Stock:       f.stock,
			Category:    f.category,
			Image:       f.image,
		})
	}
	return products
}

// Load saves the demo catalog through the given store.
func Load(ctx context.Context, store repository.Store) (int, error) {
	products := Products()
	for _, p := range products {
		if err := store.Products().Save(ctx, p); err != nil {
			return 0, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}
	return len(products), nil
}
