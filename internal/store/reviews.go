package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
)

// NewReview is the payload for CreateReview.
type NewReview struct {
	UserID    int64
	ProductID int64
	Title     string
	Content   string
	Rating    int
	Images    []string
}

// CreateReview inserts the caller's only review for a product. The verified
// purchase flag is fixed here from the caller's completed orders.
func (s *Store) CreateReview(ctx context.Context, in NewReview) (*models.Review, error) {
	// 1. --- Validate ---
	fields := map[string]string{}
	if in.Rating < 1 || in.Rating > 5 {
		fields["rating"] = "Rating must be between 1 and 5"
	}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "Title is required"
	}
	if strings.TrimSpace(in.Content) == "" {
		fields["content"] = "Content is required"
	}
	if len(fields) > 0 {
		return nil, &apperr.Error{Kind: apperr.Validation, Detail: "Invalid review", Fields: fields}
	}

	review := models.Review{
		ProductID: in.ProductID,
		UserID:    in.UserID,
		Title:     strings.TrimSpace(in.Title),
		Content:   strings.TrimSpace(in.Content),
		Rating:    in.Rating,
		CreatedAt: s.now(),
		Images:    []models.ReviewImage{},
	}

	duplicate := func() *apperr.Error {
		return apperr.New(apperr.Conflict, "You have already reviewed this product")
	}

	err := s.withTx(ctx, serializable, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "SELECT 1 FROM products WHERE id = ?", in.ProductID)
		if err != nil {
			return fmt.Errorf("check product: %w", err)
		}
		if !ok {
			return apperr.New(apperr.NotFound, "Product %d not found", in.ProductID)
		}

		// 2. --- One review per (user, product) ---
		taken, err := exists(ctx, tx, "SELECT 1 FROM reviews WHERE user_id = ? AND product_id = ?", in.UserID, in.ProductID)
		if err != nil {
			return fmt.Errorf("check review: %w", err)
		}
		if taken {
			return duplicate()
		}

		// 3. --- Verified purchase ---
		review.IsVerifiedPurchase, err = exists(ctx, tx, `
			SELECT 1 FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.user_id = ? AND oi.product_id = ? AND o.status IN (?, ?, ?)
			LIMIT 1`,
			in.UserID, in.ProductID,
			models.CompletedOrderStatuses[0], models.CompletedOrderStatuses[1], models.CompletedOrderStatuses[2])
		if err != nil {
			return fmt.Errorf("check purchase: %w", err)
		}

		if err := tx.QueryRowContext(ctx, "SELECT username FROM users WHERE id = ?", in.UserID).Scan(&review.Username); err != nil {
			return fmt.Errorf("load reviewer: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO reviews (product_id, user_id, title, content, rating, is_verified_purchase, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			review.ProductID, review.UserID, review.Title, review.Content, review.Rating,
			review.IsVerifiedPurchase, review.CreatedAt)
		if err != nil {
			// A concurrent insert can still trip the unique key.
			if again, _ := exists(ctx, tx, "SELECT 1 FROM reviews WHERE user_id = ? AND product_id = ?", in.UserID, in.ProductID); again {
				return duplicate()
			}
			return fmt.Errorf("insert review: %w", err)
		}
		if review.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("review id: %w", err)
		}

		// 4. --- Images ---
		for _, url := range in.Images {
			img := models.ReviewImage{ReviewID: review.ID, Image: url, UploadedAt: s.now()}
			res, err := tx.ExecContext(ctx,
				"INSERT INTO review_images (review_id, image, uploaded_at) VALUES (?, ?, ?)",
				img.ReviewID, img.Image, img.UploadedAt)
			if err != nil {
				return fmt.Errorf("insert review image: %w", err)
			}
			if img.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("review image id: %w", err)
			}
			review.Images = append(review.Images, img)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListReviews returns a product's reviews, newest first.
func (s *Store) ListReviews(ctx context.Context, productID int64) ([]models.Review, error) {
	return s.queryReviews(ctx, "r.product_id = ?", productID)
}

// ListUserReviews returns the reviews written by userID, newest first.
func (s *Store) ListUserReviews(ctx context.Context, userID int64) ([]models.Review, error) {
	return s.queryReviews(ctx, "r.user_id = ?", userID)
}

func (s *Store) queryReviews(ctx context.Context, where string, arg any) ([]models.Review, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT r.id, r.product_id, r.user_id, u.username, r.title, r.content, r.rating,
		       r.is_verified_purchase, r.created_at
		FROM reviews r JOIN users u ON u.id = r.user_id
		WHERE `+where+`
		ORDER BY r.created_at DESC, r.id DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	reviews := []models.Review{}
	index := map[int64]int{}
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Username, &r.Title, &r.Content, &r.Rating,
			&r.IsVerifiedPurchase, &r.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan review: %w", err)
		}
		r.Images = []models.ReviewImage{}
		index[r.ID] = len(reviews)
		reviews = append(reviews, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return reviews, nil
	}

	imgRows, err := s.DB.QueryContext(ctx, `
		SELECT ri.id, ri.review_id, ri.image, ri.uploaded_at
		FROM review_images ri JOIN reviews r ON r.id = ri.review_id
		WHERE `+where+`
		ORDER BY ri.id ASC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list review images: %w", err)
	}
	defer imgRows.Close()
	for imgRows.Next() {
		var img models.ReviewImage
		if err := imgRows.Scan(&img.ID, &img.ReviewID, &img.Image, &img.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan review image: %w", err)
		}
		if i, ok := index[img.ReviewID]; ok {
			reviews[i].Images = append(reviews[i].Images, img)
		}
	}
	return reviews, imgRows.Err()
}

// DeleteReview removes one of the caller's own reviews.
func (s *Store) DeleteReview(ctx context.Context, userID, id int64) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM reviews WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "Review %d not found", id)
	}
	return nil
}

// RatingSummary returns the read-time review aggregate for a product. A nil
// average means the product has no reviews.
func (s *Store) RatingSummary(ctx context.Context, productID int64) (average *float64, count int, err error) {
	var avg sql.NullFloat64
	err = s.DB.QueryRowContext(ctx,
		"SELECT AVG(rating), COUNT(*) FROM reviews WHERE product_id = ?", productID).Scan(&avg, &count)
	if err != nil {
		return nil, 0, fmt.Errorf("rating summary: %w", err)
	}
	if avg.Valid && count > 0 {
		v := roundRating(avg.Float64)
		average = &v
	}
	return average, count, nil
}
