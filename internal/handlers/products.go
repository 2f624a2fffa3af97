// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"loopstore/internal/cache"
	"loopstore/internal/models"
	"loopstore/internal/store"
)

// Catalog groups handlers for products, categories, and tags. Read
// endpoints go through the Valkey catalog cache; every mutation clears it.
type Catalog struct {
	products     *store.ProductStore
	categories   *store.CategoryStore
	tags         *store.TagStore
	catalogCache *cache.CatalogCache
}

// NewCatalog creates a new Catalog handler group. catalogCache may be nil
// when Valkey is not configured.
func NewCatalog(products *store.ProductStore, categories *store.CategoryStore, tags *store.TagStore, catalogCache *cache.CatalogCache) *Catalog {
	return &Catalog{
		products:     products,
		categories:   categories,
		tags:         tags,
		catalogCache: catalogCache,
	}
}

// productRequest is the wire format for product create/update.
type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image"`
	CategoryID  *uuid.UUID      `json:"category"`
	Condition   string          `json:"condition"`
	Size        string          `json:"size"`
	Brand       string          `json:"brand"`
	Material    string          `json:"material"`
	IsActive    *bool           `json:"is_active"`
	IsFeatured  bool            `json:"is_featured"`
	Tags        []string        `json:"tags"`
}

// ProductsList serves GET /products with the catalog filters: category and
// tag (multi-value), condition, size, status, featured, min_price/max_price,
// free-text search, and a sort key. Absent parameters impose no constraint.
func (h *Catalog) ProductsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached, ok := h.catalogCache.Get(ctx, cache.ListKey(r.URL.RawQuery)); ok {
		writeRaw(w, http.StatusOK, cached)
		return
	}

	filter, errs := parseProductFilter(r)
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	products, err := h.products.List(filter)
	if err != nil {
		writeServerError(w, "list products failed", err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	body, err := json.Marshal(products)
	if err != nil {
		writeServerError(w, "encode products failed", err)
		return
	}
	h.catalogCache.Set(ctx, cache.ListKey(r.URL.RawQuery), body)
	writeRaw(w, http.StatusOK, body)
}

// parseProductFilter builds a store filter from query parameters, returning
// field errors for malformed values.
func parseProductFilter(r *http.Request) (store.ProductFilter, map[string]any) {
	q := r.URL.Query()
	errs := map[string]any{}

	filter := store.ProductFilter{
		Categories: q["category"],
		Tags:       q["tag"],
		Condition:  q.Get("condition"),
		Size:       q.Get("size"),
		Status:     q.Get("status"),
		Search:     q.Get("search"),
	}

	if v := q.Get("featured"); v != "" {
		switch strings.ToLower(v) {
		case "true", "1":
			t := true
			filter.Featured = &t
		case "false", "0":
			f := false
			filter.Featured = &f
		default:
			errs["featured"] = invalidChoice(v)
		}
	}
	if v := q.Get("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			errs["min_price"] = "min_price must be a non-negative number."
		} else {
			filter.MinPrice = &d
		}
	}
	if v := q.Get("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			errs["max_price"] = "max_price must be a non-negative number."
		} else {
			filter.MaxPrice = &d
		}
	}
	if v := q.Get("sort"); v != "" {
		switch v {
		case store.SortPriceAsc, store.SortPriceDesc, store.SortNewest, store.SortNameAsc:
			filter.Sort = v
		default:
			errs["sort"] = invalidChoice(v)
		}
	}
	if filter.Condition != "" && !models.ProductCondition(filter.Condition).Valid() {
		errs["condition"] = invalidChoice(filter.Condition)
	}
	if filter.Size != "" && !models.ProductSize(filter.Size).Valid() {
		errs["size"] = invalidChoice(filter.Size)
	}
	if filter.Status != "" && !models.ProductStatus(filter.Status).Valid() {
		errs["status"] = invalidChoice(filter.Status)
	}
	return filter, errs
}

// ProductDetail serves GET /products/{slug}: the product with its tags and
// up to four related products from the same category.
func (h *Catalog) ProductDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productSlug := chi.URLParam(r, "slug")

	if cached, ok := h.catalogCache.Get(ctx, cache.DetailKey(productSlug)); ok {
		writeRaw(w, http.StatusOK, cached)
		return
	}

	product, err := h.products.FindBySlug(productSlug)
	if err != nil {
		writeServerError(w, "find product failed", err)
		return
	}
	if product == nil {
		writeNotFound(w)
		return
	}

	body, err := json.Marshal(product)
	if err != nil {
		writeServerError(w, "encode product failed", err)
		return
	}
	h.catalogCache.Set(ctx, cache.DetailKey(productSlug), body)
	writeRaw(w, http.StatusOK, body)
}

// ProductCreate serves POST /products.
func (h *Catalog) ProductCreate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if errs := validateProduct(&req); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
		Condition:   models.ProductCondition(req.Condition),
		Size:        models.ProductSize(req.Size),
		Brand:       req.Brand,
		Material:    req.Material,
		IsActive:    active,
		IsFeatured:  req.IsFeatured,
	}
	if product.Size == "" {
		product.Size = models.SizeM
	}

	created, err := h.products.Create(product)
	if err != nil {
		writeServerError(w, "create product failed", err)
		return
	}

	if err := h.assignTags(created.ID, req.Tags); err != nil {
		writeServerError(w, "assign product tags failed", err)
		return
	}
	created, err = h.products.FindByID(created.ID)
	if err != nil {
		writeServerError(w, "reload product failed", err)
		return
	}

	h.catalogCache.Invalidate(r.Context())
	writeJSON(w, http.StatusCreated, created)
}

// assignTags resolves tag names to rows (creating missing ones) and
// replaces the product's assignments. A nil slice leaves tags untouched.
func (h *Catalog) assignTags(productID uuid.UUID, names []string) error {
	if names == nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tag, err := h.tags.FindOrCreate(name)
		if err != nil {
			return err
		}
		ids = append(ids, tag.ID)
	}
	return h.products.SetTags(productID, ids)
}

// ProductUpdate serves PUT /products/{id}. Slug and SKU are immutable and
// ignored even if supplied.
func (h *Catalog) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w)
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if errs := validateProduct(&req); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	existing, err := h.products.FindByID(id)
	if err != nil {
		writeServerError(w, "find product failed", err)
		return
	}
	if existing == nil {
		writeNotFound(w)
		return
	}

	existing.Name = strings.TrimSpace(req.Name)
	existing.Description = req.Description
	existing.Price = req.Price
	existing.ImageURL = req.ImageURL
	existing.CategoryID = req.CategoryID
	if req.Condition != "" {
		existing.Condition = models.ProductCondition(req.Condition)
	}
	if req.Size != "" {
		existing.Size = models.ProductSize(req.Size)
	}
	existing.Brand = req.Brand
	existing.Material = req.Material
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	existing.IsFeatured = req.IsFeatured

	updated, err := h.products.Update(existing)
	if err != nil {
		writeServerError(w, "update product failed", err)
		return
	}
	if updated == nil {
		writeNotFound(w)
		return
	}

	if err := h.assignTags(id, req.Tags); err != nil {
		writeServerError(w, "assign product tags failed", err)
		return
	}
	updated, err = h.products.FindByID(id)
	if err != nil {
		writeServerError(w, "reload product failed", err)
		return
	}

	h.catalogCache.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, updated)
}

// ProductDelete serves DELETE /products/{id}.
func (h *Catalog) ProductDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w)
		return
	}

	existing, err := h.products.FindByID(id)
	if err != nil {
		writeServerError(w, "find product failed", err)
		return
	}
	if existing == nil {
		writeNotFound(w)
		return
	}

	if err := h.products.Delete(id); err != nil {
		writeServerError(w, "delete product failed", err)
		return
	}

	h.catalogCache.Invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStock serves POST /products/{id}/update_stock with body
// {"stock": n}. Stock is absolute, must be a non-negative integer, and a
// value of zero also marks the product out_of_stock.
func (h *Catalog) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w)
		return
	}

	var req struct {
		Stock *int `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if req.Stock == nil || *req.Stock < 0 {
		writeFieldErrors(w, map[string]any{"stock": "Stock must be a non-negative integer."})
		return
	}

	product, err := h.products.SetStock(id, *req.Stock)
	if err != nil {
		writeServerError(w, "set stock failed", err)
		return
	}
	if product == nil {
		writeNotFound(w)
		return
	}

	h.catalogCache.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, product)
}

// CategoriesList serves GET /categories with active product counts.
func (h *Catalog) CategoriesList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List()
	if err != nil {
		writeServerError(w, "list categories failed", err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// categoryRequest is the wire format for category create/update.
type categoryRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent"`
}

// CategoryCreate serves POST /categories.
func (h *Catalog) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeFieldErrors(w, map[string]any{"name": "Name is required."})
		return
	}

	created, err := h.categories.Create(&models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		writeServerError(w, "create category failed", err)
		return
	}

	h.catalogCache.Invalidate(r.Context())
	writeJSON(w, http.StatusCreated, created)
}

// CategoryDelete serves DELETE /categories/{id}. Children and products are
// orphaned, not removed.
func (h *Catalog) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w)
		return
	}

	existing, err := h.categories.FindByID(id)
	if err != nil {
		writeServerError(w, "find category failed", err)
		return
	}
	if existing == nil {
		writeNotFound(w)
		return
	}

	if err := h.categories.Delete(id); err != nil {
		writeServerError(w, "delete category failed", err)
		return
	}

	h.catalogCache.Invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// CategoryProducts serves GET /categories/{slug}/products: the active
// products of one category, newest first.
func (h *Catalog) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	categorySlug := chi.URLParam(r, "slug")

	category, err := h.categories.FindBySlug(categorySlug)
	if err != nil {
		writeServerError(w, "find category failed", err)
		return
	}
	if category == nil {
		writeNotFound(w)
		return
	}

	products, err := h.products.ListByCategory(categorySlug)
	if err != nil {
		writeServerError(w, "list category products failed", err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// TagsList serves GET /tags.
func (h *Catalog) TagsList(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List()
	if err != nil {
		writeServerError(w, "list tags failed", err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}
