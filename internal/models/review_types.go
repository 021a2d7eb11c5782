package models

import "time"

// Review is the model for the 'reviews' table
type Review struct {
	ID                 int64     `json:"id" db:"id"`
	ProductID          int64     `json:"product_id" db:"product_id"`
	UserID             int64     `json:"user_id" db:"user_id"`
	Username           string    `json:"username" db:"-"`
	Title              string    `json:"title" db:"title"`
	Content            string    `json:"content" db:"content"`
	Rating             int       `json:"rating" db:"rating"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase" db:"is_verified_purchase"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`

	Images []ReviewImage `json:"images" db:"-"`
}

// ReviewImage is the model for the 'review_images' table
type ReviewImage struct {
	ID         int64     `json:"id" db:"id"`
	ReviewID   int64     `json:"review_id" db:"review_id"`
	Image      string    `json:"image" db:"image"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}
