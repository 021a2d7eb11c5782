package models

import "time"

// Category defines the struct for the 'categories' table
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Populated on detail reads only
	SubCategories []SubCategory `json:"subcategories,omitempty" db:"-"`
}

// SubCategory defines the struct for the 'subcategories' table
type SubCategory struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Slug        string  `json:"slug" db:"slug"`
	CategoryID  int64   `json:"category_id" db:"category_id"`
	Description *string `json:"description,omitempty" db:"description"`
	Image       *string `json:"image,omitempty" db:"image"`
}

// CategoryRef is the compact category embedded in product payloads.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
