// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"loopstore/internal/models"
)

func TestHealthcheck_Returns200(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthcheck", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"healthy"`) {
		t.Errorf("body: %s", rec.Body.String())
	}
}

func TestProductCreate_DerivesSlugAndSKU(t *testing.T) {
	env := newTestEnv(t)

	name := "Vintage Leather Jacket " + uuid.NewString()[:8]
	rec := env.do(t, http.MethodPost, "/products", map[string]any{
		"name":      name,
		"price":     "49.99",
		"stock":     3,
		"condition": "like_new",
		"size":      "L",
		"tags":      []string{"vintage", "leather"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("got %d, body %s", rec.Code, rec.Body.String())
	}

	var created models.Product
	decode(t, rec, &created)
	t.Cleanup(func() {
		env.DB.Exec(`DELETE FROM products WHERE id = $1`, created.ID)
	})

	if !strings.HasPrefix(created.Slug, "vintage-leather-jacket-") {
		t.Errorf("slug: got %q", created.Slug)
	}
	if created.SKU == "" {
		t.Error("SKU not derived")
	}
	if created.Condition != models.ConditionLikeNew {
		t.Errorf("condition: got %q", created.Condition)
	}
	if len(created.Tags) != 2 {
		t.Errorf("tags: got %d, want 2", len(created.Tags))
	}
}

func TestProductCreate_InvalidCondition_Returns400(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/products", map[string]any{
		"name":      "Broken Condition " + uuid.NewString()[:8],
		"price":     "10.00",
		"condition": "pristine",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rec, &resp)
	if resp.Errors["condition"] != `"pristine" is not a valid choice.` {
		t.Errorf("condition error: got %q", resp.Errors["condition"])
	}
}

func TestProductDetail_UnknownSlug_Returns404(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/products/no-such-product-"+uuid.NewString()[:8], nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d", rec.Code)
	}
}

func TestProductsList_PriceRangeAndSort(t *testing.T) {
	env := newTestEnv(t)

	marker := "pricerange" + uuid.NewString()[:8]
	env.seedProduct(t, "Cheap "+marker, "10.00", 1)
	mid := env.seedProduct(t, "Mid "+marker, "30.00", 1)
	high := env.seedProduct(t, "High "+marker, "45.00", 1)
	env.seedProduct(t, "Pricey "+marker, "80.00", 1)

	query := url.Values{}
	query.Set("search", marker)
	query.Set("min_price", "20")
	query.Set("max_price", "50")
	query.Set("sort", "price_asc")

	rec := env.do(t, http.MethodGet, "/products?"+query.Encode(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rec.Code, rec.Body.String())
	}
	var listed []models.Product
	decode(t, rec, &listed)
	if len(listed) != 2 {
		t.Fatalf("results: got %d, want 2", len(listed))
	}
	if listed[0].ID != mid.ID || listed[1].ID != high.ID {
		t.Errorf("order: got %q, %q", listed[0].Name, listed[1].Name)
	}
}

func TestProductsList_MalformedFilters_Return400(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		query string
		field string
	}{
		{"featured=maybe", "featured"},
		{"min_price=abc", "min_price"},
		{"max_price=-5", "max_price"},
		{"sort=rating", "sort"},
		{"condition=pristine", "condition"},
		{"size=XXXL", "size"},
	}
	for _, tc := range cases {
		rec := env.do(t, http.MethodGet, "/products?"+tc.query, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d", tc.query, rec.Code)
			continue
		}
		var resp struct {
			Errors map[string]string `json:"errors"`
		}
		decode(t, rec, &resp)
		if _, ok := resp.Errors[tc.field]; !ok {
			t.Errorf("%s: missing %q in %v", tc.query, tc.field, resp.Errors)
		}
	}
}

func TestProductUpdate_KeepsSlugAndSKU(t *testing.T) {
	env := newTestEnv(t)

	p := env.seedProduct(t, "Immutable Ident "+uuid.NewString()[:8], "20.00", 2)

	rec := env.do(t, http.MethodPut, "/products/"+p.ID.String(), map[string]any{
		"name":  "Renamed Entirely " + uuid.NewString()[:8],
		"price": "22.00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rec.Code, rec.Body.String())
	}
	var updated models.Product
	decode(t, rec, &updated)
	if updated.Slug != p.Slug {
		t.Errorf("slug changed: got %q, want %q", updated.Slug, p.Slug)
	}
	if updated.SKU != p.SKU {
		t.Errorf("sku changed: got %q, want %q", updated.SKU, p.SKU)
	}
	if !updated.Price.Equal(decimal.RequireFromString("22.00")) {
		t.Errorf("price: got %s", updated.Price)
	}
}

func TestProductUpdateStock(t *testing.T) {
	env := newTestEnv(t)

	p := env.seedProduct(t, "Restock Boots "+uuid.NewString()[:8], "35.00", 4)

	// Setting stock to zero flips the product out of stock.
	rec := env.do(t, http.MethodPost, "/products/"+p.ID.String()+"/update_stock",
		map[string]any{"stock": 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rec.Code, rec.Body.String())
	}
	var updated models.Product
	decode(t, rec, &updated)
	if updated.Status != models.ProductStatusOutOfStock {
		t.Errorf("status: got %q, want out_of_stock", updated.Status)
	}

	// Restocking flips it back.
	rec = env.do(t, http.MethodPost, "/products/"+p.ID.String()+"/update_stock",
		map[string]any{"stock": 9})
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
	decode(t, rec, &updated)
	if updated.Stock != 9 || updated.Status != models.ProductStatusInStock {
		t.Errorf("stock/status: got %d/%q", updated.Stock, updated.Status)
	}

	// Negative and missing values are rejected.
	rec = env.do(t, http.MethodPost, "/products/"+p.ID.String()+"/update_stock",
		map[string]any{"stock": -1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative stock: got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/products/"+p.ID.String()+"/update_stock",
		map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing stock: got %d", rec.Code)
	}
}

func TestProductDelete_Returns204ThenGone(t *testing.T) {
	env := newTestEnv(t)

	p := env.seedProduct(t, "Delete Me "+uuid.NewString()[:8], "5.00", 1)

	rec := env.do(t, http.MethodDelete, "/products/"+p.ID.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/products/"+p.Slug, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("detail after delete: got %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/products/"+p.ID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d", rec.Code)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	env := newTestEnv(t)

	name := "Handler Knitwear " + uuid.NewString()[:8]
	rec := env.do(t, http.MethodPost, "/categories", map[string]any{
		"name":        name,
		"description": "Knitted things",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: got %d, body %s", rec.Code, rec.Body.String())
	}
	var created models.Category
	decode(t, rec, &created)
	t.Cleanup(func() {
		env.DB.Exec(`DELETE FROM categories WHERE id = $1`, created.ID)
	})

	p := env.seedProduct(t, "Knit Sweater "+uuid.NewString()[:8], "28.00", 2)
	p.CategoryID = &created.ID
	if _, err := env.Products.Update(p); err != nil {
		t.Fatalf("assign category: %v", err)
	}

	rec = env.do(t, http.MethodGet, "/categories/"+created.Slug+"/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("category products: got %d", rec.Code)
	}
	var listed []models.Product
	decode(t, rec, &listed)
	if len(listed) != 1 || listed[0].ID != p.ID {
		t.Fatalf("category products: got %d results", len(listed))
	}

	rec = env.do(t, http.MethodGet, "/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list categories: got %d", rec.Code)
	}
	var categories []models.Category
	decode(t, rec, &categories)
	var found *models.Category
	for i := range categories {
		if categories[i].ID == created.ID {
			found = &categories[i]
		}
	}
	if found == nil {
		t.Fatal("created category missing from list")
	}
	if found.ProductCount != 1 {
		t.Errorf("product count: got %d, want 1", found.ProductCount)
	}

	rec = env.do(t, http.MethodDelete, "/categories/"+created.ID.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete category: got %d", rec.Code)
	}
}
