// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"loopstore/internal/models"
	"loopstore/internal/slug"
)

// ProductStore handles all product-related database operations.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore creates a new ProductStore with the given database connection.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `p.id, p.name, p.slug, p.sku, p.description, p.price, p.stock,
	p.image_url, p.category_id, p.condition, p.size, p.brand, p.material,
	p.status, p.is_active, p.is_featured, p.created_at, p.updated_at, c.name`

// scanProduct scans a joined product row (products p LEFT JOIN categories c).
func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Description, &p.Price, &p.Stock,
		&p.ImageURL, &p.CategoryID, &p.Condition, &p.Size, &p.Brand, &p.Material,
		&p.Status, &p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt, &p.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	p.Tags = []models.Tag{}
	return &p, nil
}

// Sort keys accepted by the product listing.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
	SortNameAsc   = "name_asc"
)

// ProductFilter narrows the base "active products" listing. Zero values
// impose no constraint. All predicates combine with AND; the free-text
// search is OR-combined across fields internally.
type ProductFilter struct {
	Categories []string // category slugs
	Tags       []string // tag slugs
	Condition  string
	Size       string
	Status     string
	Featured   *bool
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string
	Sort       string
}

// List returns active products matching the filter, with category names and
// tags populated. Default ordering is newest first.
func (s *ProductStore) List(f ProductFilter) ([]models.Product, error) {
	var (
		conds = []string{"p.is_active"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Categories) > 0 {
		ph := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			ph[i] = arg(c)
		}
		conds = append(conds, fmt.Sprintf("c.slug IN (%s)", strings.Join(ph, ", ")))
	}
	if len(f.Tags) > 0 {
		ph := make([]string, len(f.Tags))
		for i, t := range f.Tags {
			ph[i] = arg(t)
		}
		conds = append(conds, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM product_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE pt.product_id = p.id AND t.slug IN (%s))`, strings.Join(ph, ", ")))
	}
	if f.Condition != "" {
		conds = append(conds, "p.condition = "+arg(f.Condition))
	}
	if f.Size != "" {
		conds = append(conds, "p.size = "+arg(f.Size))
	}
	if f.Status != "" {
		conds = append(conds, "p.status = "+arg(f.Status))
	}
	if f.Featured != nil {
		conds = append(conds, "p.is_featured = "+arg(*f.Featured))
	}
	if f.MinPrice != nil {
		conds = append(conds, "p.price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "p.price <= "+arg(*f.MaxPrice))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		ph := arg("%" + q + "%")
		conds = append(conds, fmt.Sprintf(`(
			p.name ILIKE %[1]s OR p.description ILIKE %[1]s OR
			p.brand ILIKE %[1]s OR p.material ILIKE %[1]s OR
			c.name ILIKE %[1]s OR EXISTS (
				SELECT 1 FROM product_tags pt
				JOIN tags t ON t.id = pt.tag_id
				WHERE pt.product_id = p.id AND t.name ILIKE %[1]s))`, ph))
	}

	orderBy := "p.created_at DESC"
	switch f.Sort {
	case SortPriceAsc:
		orderBy = "p.price ASC"
	case SortPriceDesc:
		orderBy = "p.price DESC"
	case SortNameAsc:
		orderBy = "p.name ASC"
	case SortNewest, "":
		// default
	}

	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY ` + orderBy

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadTags(items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByCategory returns active products in the given category, newest first.
func (s *ProductStore) ListByCategory(categorySlug string) ([]models.Product, error) {
	return s.List(ProductFilter{Categories: []string{categorySlug}})
}

// loadTags populates the Tags field for a batch of products with one query.
func (s *ProductStore) loadTags(products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	ph := make([]string, len(products))
	args := make([]any, len(products))
	index := make(map[uuid.UUID]int, len(products))
	for i := range products {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = products[i].ID
		index[products[i].ID] = i
	}

	rows, err := s.db.Query(`
		SELECT pt.product_id, t.id, t.name, t.slug
		FROM product_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.product_id IN (`+strings.Join(ph, ", ")+`)
		ORDER BY t.name
	`, args...)
	if err != nil {
		return fmt.Errorf("load product tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID uuid.UUID
		var t models.Tag
		if err := rows.Scan(&productID, &t.ID, &t.Name, &t.Slug); err != nil {
			return fmt.Errorf("scan product tag: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Tags = append(products[i].Tags, t)
		}
	}
	return rows.Err()
}

// FindByID retrieves a product by its UUID. Returns nil if not found.
func (s *ProductStore) FindByID(id uuid.UUID) (*models.Product, error) {
	row := s.db.QueryRow(`
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	if err := s.loadSingleTags(p); err != nil {
		return nil, err
	}
	return p, nil
}

// FindBySlug retrieves a product by slug, with tags and up to four related
// active products from the same category. Returns nil if not found.
func (s *ProductStore) FindBySlug(productSlug string) (*models.Product, error) {
	row := s.db.QueryRow(`
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.slug = $1
	`, productSlug)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by slug: %w", err)
	}
	if err := s.loadSingleTags(p); err != nil {
		return nil, err
	}

	if p.CategoryID != nil {
		related, err := s.relatedProducts(*p.CategoryID, p.ID)
		if err != nil {
			return nil, err
		}
		p.RelatedProducts = related
	}
	return p, nil
}

func (s *ProductStore) loadSingleTags(p *models.Product) error {
	batch := []models.Product{*p}
	if err := s.loadTags(batch); err != nil {
		return err
	}
	p.Tags = batch[0].Tags
	return nil
}

// relatedProducts returns up to four other active products in a category.
func (s *ProductStore) relatedProducts(categoryID, exclude uuid.UUID) ([]models.Product, error) {
	rows, err := s.db.Query(`
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.category_id = $1 AND p.id <> $2 AND p.is_active
		ORDER BY p.created_at DESC
		LIMIT 4
	`, categoryID, exclude)
	if err != nil {
		return nil, fmt.Errorf("related products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan related product: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Create inserts a new product. Slug and SKU are derived here exactly once:
// the slug from the name (suffixed until unique), the SKU from the category,
// creation date, and product ID when not supplied. Neither is ever recomputed.
func (s *ProductStore) Create(p *models.Product) (*models.Product, error) {
	if p.Slug == "" {
		unique, err := s.uniqueSlug(slug.Generate(p.Name))
		if err != nil {
			return nil, err
		}
		p.Slug = unique
	}

	id := uuid.New()
	if p.SKU == "" {
		prefix := "GEN"
		if p.CategoryID != nil {
			var categorySlug string
			err := s.db.QueryRow(`SELECT slug FROM categories WHERE id = $1`, *p.CategoryID).Scan(&categorySlug)
			if err != nil && err != sql.ErrNoRows {
				return nil, fmt.Errorf("sku category lookup: %w", err)
			}
			if len(categorySlug) >= 3 {
				prefix = strings.ToUpper(categorySlug[:3])
			}
		}
		p.SKU = fmt.Sprintf("%s-%s-%s", prefix,
			time.Now().UTC().Format("20060102"),
			strings.ToUpper(strings.ReplaceAll(id.String()[:8], "-", "")))
	}

	if p.Condition == "" {
		p.Condition = models.ConditionGood
	}
	if p.Status == "" {
		p.Status = models.ProductStatusInStock
	}
	if p.Stock == 0 {
		p.Status = models.ProductStatusOutOfStock
	}

	row := s.db.QueryRow(`
		INSERT INTO products (id, name, slug, sku, description, price, stock, image_url,
		                      category_id, condition, size, brand, material, status,
		                      is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`, id, p.Name, p.Slug, p.SKU, p.Description, p.Price, p.Stock, p.ImageURL,
		p.CategoryID, p.Condition, p.Size, p.Brand, p.Material, p.Status,
		p.IsActive, p.IsFeatured)

	var createdID uuid.UUID
	if err := row.Scan(&createdID); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return s.FindByID(createdID)
}

// uniqueSlug appends a numeric suffix to base until no product uses it.
func (s *ProductStore) uniqueSlug(base string) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		var exists bool
		err := s.db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1)`, candidate,
		).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("check product slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = slug.WithSuffix(base, n)
	}
}

// Update modifies an existing product's mutable fields. Slug and SKU are
// immutable after first save and are deliberately not part of this statement.
func (s *ProductStore) Update(p *models.Product) (*models.Product, error) {
	res, err := s.db.Exec(`
		UPDATE products SET
			name = $1, description = $2, price = $3, image_url = $4,
			category_id = $5, condition = $6, size = $7, brand = $8,
			material = $9, is_active = $10, is_featured = $11, updated_at = NOW()
		WHERE id = $12
	`, p.Name, p.Description, p.Price, p.ImageURL,
		p.CategoryID, p.Condition, p.Size, p.Brand,
		p.Material, p.IsActive, p.IsFeatured, p.ID)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.FindByID(p.ID)
}

// SetStock sets a product's stock to an absolute value. Stock of exactly
// zero flips the product to out_of_stock; a positive value restores
// in_stock. Returns nil if the product does not exist.
func (s *ProductStore) SetStock(id uuid.UUID, stock int) (*models.Product, error) {
	res, err := s.db.Exec(`
		UPDATE products SET
			stock = $1,
			status = CASE WHEN $1 = 0 THEN 'out_of_stock' ELSE 'in_stock' END,
			updated_at = NOW()
		WHERE id = $2
	`, stock, id)
	if err != nil {
		return nil, fmt.Errorf("set stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.FindByID(id)
}

// SetTags replaces a product's tag assignments in a transaction.
func (s *ProductStore) SetTags(productID uuid.UUID, tagIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM product_tags WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("clear product tags: %w", err)
	}
	for _, tagID := range tagIDs {
		_, err := tx.Exec(`
			INSERT INTO product_tags (product_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, productID, tagID)
		if err != nil {
			return fmt.Errorf("assign tag %s: %w", tagID, err)
		}
	}

	return tx.Commit()
}

// Delete removes a product by ID. Tag assignments cascade.
func (s *ProductStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
