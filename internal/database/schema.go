package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Dialect selects the few DDL fragments that differ between MySQL and SQLite.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite3"
)

func (d Dialect) idColumn() string {
	if d == SQLite {
		return "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return "id BIGINT AUTO_INCREMENT PRIMARY KEY"
}

func (d Dialect) tableOptions() string {
	if d == SQLite {
		return ""
	}
	return " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"
}

// %[1]s is the id column, %[2]s the table options. Order matters for foreign keys.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		%[1]s,
		email VARCHAR(254) NOT NULL UNIQUE,
		username VARCHAR(150) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		first_name VARCHAR(150) NOT NULL DEFAULT '',
		last_name VARCHAR(150) NOT NULL DEFAULT '',
		is_staff BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)%[2]s`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		%[1]s,
		user_id BIGINT NOT NULL UNIQUE,
		bio TEXT NULL,
		profile_picture VARCHAR(500) NULL,
		phone_number VARCHAR(20) NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)%[2]s`,
	`CREATE TABLE IF NOT EXISTS categories (
		%[1]s,
		name VARCHAR(100) NOT NULL,
		slug VARCHAR(120) NOT NULL UNIQUE,
		created_at DATETIME NOT NULL
	)%[2]s`,
	`CREATE TABLE IF NOT EXISTS subcategories (
		%[1]s,
		name VARCHAR(100) NOT NULL,
		slug VARCHAR(120) NOT NULL UNIQUE,
		category_id BIGINT NOT NULL,
		description TEXT NULL,
		image VARCHAR(500) NULL,
		FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE
	)%[2]s`,
	`CREATE TABLE IF NOT EXISTS products (
		%[1]s,
		name VARCHAR(200) NOT NULL,
		slug VARCHAR(220) NOT NULL UNIQUE,
		description TEXT NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		sale_price DECIMAL(10,2) NULL,
		colors TEXT NULL,
		featured BOOLEAN NOT NULL DEFAULT 0,
		sku VARCHAR(100) NULL,
		image VARCHAR(500) NULL,
		category_id BIGINT NOT NULL,
		subcategory_id BIGINT NULL,
		in_stock BOOLEAN NOT NULL DEFAULT 1,
		sizes TEXT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE,
		FOREIGN KEY (subcategory_id) REFERENCES subcategories(id) ON DELETE CASCADE
	)%[2]s`,
	`CREATE TABLE IF NOT EXISTS product_images (
		%[1]s,
		product_id BIGINT NOT NULL,
		image VARCHAR(500) NOT NULL,
		alt_text VARCHAR(100) NOT NULL DEFAULT '',
		is_feature BOOLEAN NOT NULL DEFAULT 0,
		display_order INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
	)%[2]s`,
	`CREATE TABLE IF NOT EXISTS orders (
		%[1]s,
		user_id BIGINT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		tracking_number VARCHAR(100) NOT NULL DEFAULT '',
		shipping_first_name VARCHAR(100) NOT NULL DEFAULT '',
		shipping_last_name VARCHAR(100) NOT NULL DEFAULT '',
		shipping_email VARCHAR(254) NOT NULL DEFAULT '',
		shipping_address VARCHAR(255) NOT NULL DEFAULT '',
		shipping_city VARCHAR(100) NOT NULL DEFAULT '',
		shipping_postal_code VARCHAR(20) NOT NULL DEFAULT '',
		shipping_country VARCHAR(100) NOT NULL DEFAULT '',
		payment_method VARCHAR(50) NOT NULL DEFAULT 'credit_card',
		payment_details TEXT NULL,
		subtotal DECIMAL(10,2) NOT NULL DEFAULT 0,
		shipping_cost DECIMAL(10,2) NOT NULL DEFAULT 0,
		tax DECIMAL(10,2) NOT NULL DEFAULT 0,
		total DECIMAL(10,2) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)%[2]s`,
	`CREATE TABLE IF NOT EXISTS order_items (
		%[1]s,
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		size VARCHAR(20) NOT NULL DEFAULT '',
		color VARCHAR(30) NOT NULL DEFAULT '',
		price DECIMAL(10,2) NOT NULL DEFAULT 0,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
	)%[2]s`,
	`CREATE TABLE IF NOT EXISTS reviews (
		%[1]s,
		product_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		title VARCHAR(100) NOT NULL,
		content TEXT NOT NULL,
		rating INT NOT NULL,
		is_verified_purchase BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		UNIQUE (user_id, product_id),
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)%[2]s`,
	`CREATE TABLE IF NOT EXISTS review_images (
		%[1]s,
		review_id BIGINT NOT NULL,
		image VARCHAR(500) NOT NULL,
		uploaded_at DATETIME NOT NULL,
		FOREIGN KEY (review_id) REFERENCES reviews(id) ON DELETE CASCADE
	)%[2]s`,
	`CREATE TABLE IF NOT EXISTS wishlist_items (
		%[1]s,
		user_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		added_at DATETIME NOT NULL,
		UNIQUE (user_id, product_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
	)%[2]s`,
	`CREATE TABLE IF NOT EXISTS addresses (
		%[1]s,
		user_id BIGINT NOT NULL,
		first_name VARCHAR(100) NOT NULL DEFAULT '',
		last_name VARCHAR(100) NOT NULL DEFAULT '',
		address_line1 VARCHAR(255) NOT NULL,
		address_line2 VARCHAR(255) NULL,
		city VARCHAR(100) NOT NULL,
		state VARCHAR(100) NULL,
		postal_code VARCHAR(20) NOT NULL,
		country VARCHAR(100) NOT NULL,
		is_default BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)%[2]s`,
	`CREATE TABLE IF NOT EXISTS payment_events (
		%[1]s,
		payment_id VARCHAR(255) NOT NULL,
		event_type VARCHAR(100) NOT NULL,
		order_id BIGINT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE (payment_id, event_type)
	)%[2]s`,
}

// Migrate creates every table that does not exist yet.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, fmt.Sprintf(stmt, d.idColumn(), d.tableOptions())); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
