package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed populates the database with initial development data: a few
// categories, tags, and sample products so the catalog API returns
// something useful out of the box. It is a no-op if products exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("seed check products: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	categories := []struct {
		name, slug, description string
	}{
		{"Outerwear", "outerwear", "Jackets, coats, and blazers"},
		{"Tops", "tops", "Shirts, blouses, and sweaters"},
		{"Jeans", "jeans", "Denim in all fits"},
		{"Accessories", "accessories", "Bags, belts, and scarves"},
	}
	for _, c := range categories {
		_, err := db.Exec(`
			INSERT INTO categories (name, slug, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING
		`, c.name, c.slug, c.description)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.name, err)
		}
	}

	tags := []struct{ name, slug string }{
		{"vintage", "vintage"},
		{"sustainable", "sustainable"},
		{"designer", "designer"},
	}
	for _, tg := range tags {
		_, err := db.Exec(`
			INSERT INTO tags (name, slug) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, tg.name, tg.slug)
		if err != nil {
			return fmt.Errorf("seed tag %s: %w", tg.name, err)
		}
	}

	products := []struct {
		name, slug, sku, description, price, categorySlug, condition, size, brand string
		stock                                                                     int
		featured                                                                  bool
	}{
		{"Vintage Denim Jacket", "vintage-denim-jacket", "OUT-SEED-0001",
			"Classic 90s denim jacket with brass buttons.", "45.00", "outerwear", "good", "M", "Levi's", 3, true},
		{"Wool Overcoat", "wool-overcoat", "OUT-SEED-0002",
			"Charcoal wool overcoat, fully lined.", "89.50", "outerwear", "like_new", "L", "", 1, false},
		{"Striped Cotton Shirt", "striped-cotton-shirt", "TOP-SEED-0003",
			"Breton stripe long-sleeve shirt.", "18.00", "tops", "good", "S", "", 5, false},
		{"High-Waisted Jeans", "high-waisted-jeans", "JEA-SEED-0004",
			"Straight-leg high-waisted jeans, barely worn.", "32.00", "jeans", "like_new", "M", "Wrangler", 2, true},
		{"Leather Belt", "leather-belt", "ACC-SEED-0005",
			"Brown full-grain leather belt.", "12.00", "accessories", "fair", "M", "", 8, false},
	}
	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products (name, slug, sku, description, price, stock, category_id,
			                      condition, size, brand, is_featured)
			SELECT $1, $2, $3, $4, $5, $6, c.id, $7, $8, $9, $10
			FROM categories c WHERE c.slug = $11
			ON CONFLICT (slug) DO NOTHING
		`, p.name, p.slug, p.sku, p.description, p.price, p.stock,
			p.condition, p.size, p.brand, p.featured, p.categorySlug)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.name, err)
		}
	}

	slog.Info("database seeded with sample catalog",
		"categories", len(categories),
		"tags", len(tags),
		"products", len(products),
	)

	return nil
}
