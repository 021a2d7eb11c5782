package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
)

// AddToWishlist saves productID for userID. A second add of the same product
// is a Conflict and leaves the existing row alone.
func (s *Store) AddToWishlist(ctx context.Context, userID, productID int64) (*models.WishlistItem, error) {
	item := models.WishlistItem{UserID: userID, ProductID: productID, AddedAt: s.now()}

	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		summary := &models.ProductSummary{ID: productID}
		err := tx.QueryRowContext(ctx, "SELECT name, slug, image FROM products WHERE id = ?", productID).
			Scan(&summary.Name, &summary.Slug, &summary.Image)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.NotFound, "Product %d not found", productID)
		}
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}
		item.Product = summary

		taken, err := exists(ctx, tx, "SELECT 1 FROM wishlist_items WHERE user_id = ? AND product_id = ?", userID, productID)
		if err != nil {
			return fmt.Errorf("check wishlist: %w", err)
		}
		if taken {
			return apperr.New(apperr.Conflict, "Product already in wishlist")
		}

		res, err := tx.ExecContext(ctx,
			"INSERT INTO wishlist_items (user_id, product_id, added_at) VALUES (?, ?, ?)", userID, productID, item.AddedAt)
		if err != nil {
			return fmt.Errorf("insert wishlist item: %w", err)
		}
		item.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListWishlist returns the caller's saved products, most recent first.
func (s *Store) ListWishlist(ctx context.Context, userID int64) ([]models.WishlistItem, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT w.id, w.user_id, w.product_id, w.added_at, p.name, p.slug, p.image
		FROM wishlist_items w JOIN products p ON p.id = w.product_id
		WHERE w.user_id = ?
		ORDER BY w.added_at DESC, w.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	items := []models.WishlistItem{}
	for rows.Next() {
		var it models.WishlistItem
		summary := &models.ProductSummary{}
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.AddedAt, &summary.Name, &summary.Slug, &summary.Image); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		summary.ID = it.ProductID
		it.Product = summary
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) RemoveFromWishlist(ctx context.Context, userID, productID int64) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM wishlist_items WHERE user_id = ? AND product_id = ?", userID, productID)
	if err != nil {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "Product not in wishlist")
	}
	return nil
}

func (s *Store) InWishlist(ctx context.Context, userID, productID int64) (bool, error) {
	ok, err := exists(ctx, s.DB, "SELECT 1 FROM wishlist_items WHERE user_id = ? AND product_id = ?", userID, productID)
	if err != nil {
		return false, fmt.Errorf("check wishlist: %w", err)
	}
	return ok, nil
}
