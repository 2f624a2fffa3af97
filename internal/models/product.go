// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductCondition describes the wear state of a second-hand item.
type ProductCondition string

const (
	ConditionNew     ProductCondition = "new"
	ConditionLikeNew ProductCondition = "like_new"
	ConditionGood    ProductCondition = "good"
	ConditionFair    ProductCondition = "fair"
)

// Valid reports whether c is a recognized condition.
func (c ProductCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair:
		return true
	}
	return false
}

// ProductSize is a clothing size label.
type ProductSize string

const (
	SizeXS  ProductSize = "XS"
	SizeS   ProductSize = "S"
	SizeM   ProductSize = "M"
	SizeL   ProductSize = "L"
	SizeXL  ProductSize = "XL"
	SizeXXL ProductSize = "XXL"
)

// Valid reports whether s is a recognized size.
func (s ProductSize) Valid() bool {
	switch s {
	case SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL:
		return true
	}
	return false
}

// ProductStatus tracks availability. Setting stock to zero flips a product
// to out_of_stock; restocking flips it back.
type ProductStatus string

const (
	ProductStatusInStock    ProductStatus = "in_stock"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
)

// Valid reports whether s is a recognized product status.
func (s ProductStatus) Valid() bool {
	return s == ProductStatusInStock || s == ProductStatusOutOfStock
}

// Product is a single sellable item. Slug and SKU are derived exactly once
// at creation and are immutable afterwards.
type Product struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	SKU         string           `json:"sku"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Stock       int              `json:"stock"`
	ImageURL    string           `json:"image"`
	CategoryID  *uuid.UUID       `json:"category"`
	Condition   ProductCondition `json:"condition"`
	Size        ProductSize      `json:"size"`
	Brand       string           `json:"brand"`
	Material    string           `json:"material"`
	Status      ProductStatus    `json:"status"`
	IsActive    bool             `json:"is_active"`
	IsFeatured  bool             `json:"is_featured"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Virtual fields populated by store methods.
	CategoryName    *string   `json:"category_name,omitempty"`
	Tags            []Tag     `json:"tags"`
	RelatedProducts []Product `json:"related_products,omitempty"`
}
