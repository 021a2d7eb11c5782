package models

import "time"

// User is the model for the 'users' table
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	IsStaff      bool      `json:"is_staff" db:"is_staff"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UserProfile is the model for the 'user_profiles' table (one per user)
type UserProfile struct {
	UserID         int64   `json:"user_id" db:"user_id"`
	Bio            *string `json:"bio" db:"bio"`
	ProfilePicture *string `json:"profile_picture" db:"profile_picture"`
	PhoneNumber    *string `json:"phone_number" db:"phone_number"`
}

// Address is the model for the 'addresses' table.
// At most one row per user has IsDefault set.
type Address struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	AddressLine1 string    `json:"address_line1" db:"address_line1"`
	AddressLine2 *string   `json:"address_line2" db:"address_line2"`
	City         string    `json:"city" db:"city"`
	State        *string   `json:"state" db:"state"`
	PostalCode   string    `json:"postal_code" db:"postal_code"`
	Country      string    `json:"country" db:"country"`
	IsDefault    bool      `json:"is_default" db:"is_default"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// WishlistItem is the model for the 'wishlist_items' table
type WishlistItem struct {
	ID        int64           `json:"id" db:"id"`
	UserID    int64           `json:"user_id" db:"user_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	AddedAt   time.Time       `json:"added_at" db:"added_at"`
	Product   *ProductSummary `json:"product,omitempty" db:"-"`
}
