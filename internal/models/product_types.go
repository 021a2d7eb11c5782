package models

import (
	"time"

	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/shopspring/decimal"
)

// Product is the model for the 'products' table.
// AverageRating and ReviewCount are computed from reviews on every read;
// a nil AverageRating means the product has no reviews yet.
type Product struct {
	ID          int64            `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Slug        string           `json:"slug" db:"slug"`
	Description string           `json:"description" db:"description"`
	Price       decimal.Decimal  `json:"price" db:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price" db:"sale_price"`
	Colors      catalog.Tokens   `json:"colors" db:"colors"`
	Featured    bool             `json:"featured" db:"featured"`
	SKU         *string          `json:"sku" db:"sku"`
	Image       *string          `json:"image" db:"image"`

	CategoryID    int64        `json:"category_id" db:"category_id"`
	Category      *CategoryRef `json:"category,omitempty" db:"-"`
	SubCategoryID *int64       `json:"subcategory_id" db:"subcategory_id"`

	InStock   bool           `json:"in_stock" db:"in_stock"`
	Sizes     catalog.Tokens `json:"sizes" db:"sizes"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`

	// Derived
	AverageRating *float64 `json:"average_rating" db:"-"`
	ReviewCount   int      `json:"review_count" db:"-"`

	Images []ProductImage `json:"images,omitempty" db:"-"`
}

// ProductImage is the model for the 'product_images' table
type ProductImage struct {
	ID           int64     `json:"id" db:"id"`
	ProductID    int64     `json:"product_id" db:"product_id"`
	Image        string    `json:"image" db:"image"`
	AltText      string    `json:"alt_text" db:"alt_text"`
	IsFeature    bool      `json:"is_feature" db:"is_feature"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ProductSummary is the slim product shape embedded in order items and wishlists.
type ProductSummary struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug"`
	Image *string `json:"image"`
}

// Suggestion is one search-as-you-type hit.
type Suggestion struct {
	Type string `json:"type"` // "product" or "category"
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
