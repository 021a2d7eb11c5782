package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/shopspring/decimal"
)

// BulkDescriptor is one product of a bulk upload.
type BulkDescriptor struct {
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	Category      *int64           `json:"category"`
	CategoryID    *int64           `json:"category_id"`
	SubCategory   *int64           `json:"subcategory"`
	SubCategoryID *int64           `json:"subcategory_id"`
	Sizes         *catalog.Tokens  `json:"sizes"`
	Colors        *catalog.Tokens  `json:"colors"`
	Featured      bool             `json:"featured"`

	decodeErr error
	rejected  string
}

// Reject makes BulkCreateProducts skip the descriptor with reason, e.g. when
// its image could not be stored.
func (d *BulkDescriptor) Reject(reason string) {
	d.rejected = reason
}

// BulkSkip names a descriptor that was not created and why.
type BulkSkip struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type BulkResult struct {
	ProductIDs []int64    `json:"product_ids"`
	Skipped    []BulkSkip `json:"skipped"`
}

const (
	defaultCategoryName = "Uncategorized"
	maxProductName      = 200
)

var defaultBulkSizes = catalog.Tokens{"S", "M", "L"}

// ParseBulkDescriptors decodes the products form field. The payload must be
// a JSON array; an element that does not decode is kept as a descriptor that
// BulkCreateProducts will skip, so indexes still line up with image_i files.
func ParseBulkDescriptors(payload string) ([]BulkDescriptor, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, apperr.New(apperr.Validation, "No product data provided")
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, apperr.Invalid("products", "Products must be a JSON array")
	}
	if len(raw) == 0 {
		return nil, apperr.New(apperr.Validation, "No product data provided")
	}

	out := make([]BulkDescriptor, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &out[i]); err != nil {
			out[i] = BulkDescriptor{decodeErr: err}
		}
	}
	return out, nil
}

// BulkCreateProducts creates each descriptor in its own transaction. Invalid
// or failing items are skipped and reported; they never abort the batch.
// images maps a descriptor index to the URL of its uploaded image.
func (s *Store) BulkCreateProducts(ctx context.Context, descs []BulkDescriptor, images map[int]string) (BulkResult, error) {
	result := BulkResult{ProductIDs: []int64{}, Skipped: []BulkSkip{}}
	if len(descs) == 0 {
		return result, apperr.New(apperr.Validation, "No product data provided")
	}

	for i, d := range descs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		reason := ""
		switch {
		case d.decodeErr != nil:
			reason = "malformed product data"
		case d.rejected != "":
			reason = d.rejected
		case strings.TrimSpace(d.Name) == "":
			reason = "name is required"
		case utf8.RuneCountInString(strings.TrimSpace(d.Name)) > maxProductName:
			reason = "name is too long"
		case !d.Price.IsPositive():
			reason = "price is required"
		}
		if reason != "" {
			result.Skipped = append(result.Skipped, BulkSkip{Index: i, Reason: reason})
			continue
		}

		id, err := s.createBulkItem(ctx, d, images[i])
		if err != nil {
			result.Skipped = append(result.Skipped, BulkSkip{Index: i, Reason: apperrDetail(err)})
			continue
		}
		result.ProductIDs = append(result.ProductIDs, id)
	}
	return result, nil
}

func apperrDetail(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return "could not create product"
}

func (s *Store) createBulkItem(ctx context.Context, d BulkDescriptor, image string) (int64, error) {
	var id int64
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		// 1. --- Resolve the category ---
		requested := d.Category
		if requested == nil {
			requested = d.CategoryID
		}
		categoryID, err := s.resolveBulkCategory(ctx, tx, requested)
		if err != nil {
			return err
		}

		// 2. --- Keep the subcategory only when it belongs to that category ---
		subID := d.SubCategory
		if subID == nil {
			subID = d.SubCategoryID
		}
		if subID != nil {
			belongs, err := exists(ctx, tx, "SELECT 1 FROM subcategories WHERE id = ? AND category_id = ?", *subID, categoryID)
			if err != nil {
				return fmt.Errorf("check subcategory: %w", err)
			}
			if !belongs {
				subID = nil
			}
		}

		name := strings.TrimSpace(d.Name)
		np := newProduct{
			Name:          name,
			SlugBase:      catalog.SlugBase(d.Slug, name, "product"),
			Description:   d.Description,
			Price:         d.Price,
			SalePrice:     d.SalePrice,
			Featured:      d.Featured,
			CategoryID:    categoryID,
			SubCategoryID: subID,
			InStock:       true,
			Sizes:         defaultBulkSizes,
		}
		if d.Sizes != nil {
			np.Sizes = *d.Sizes
		}
		if d.Colors != nil {
			np.Colors = *d.Colors
		}

		// 3. --- Insert the product and its image together ---
		id, err = s.insertProduct(ctx, tx, np)
		if err != nil {
			return err
		}
		if image != "" {
			_, err = s.insertProductImage(ctx, tx, models.ProductImage{
				ProductID: id,
				Image:     image,
				AltText:   truncate(name, 100),
				IsFeature: true,
				CreatedAt: s.now(),
			})
		}
		return err
	})
	return id, err
}

// resolveBulkCategory returns the requested category when it exists, else
// the first category by id, else a newly created default category.
func (s *Store) resolveBulkCategory(ctx context.Context, tx *sql.Tx, requested *int64) (int64, error) {
	if requested != nil {
		ok, err := exists(ctx, tx, "SELECT 1 FROM categories WHERE id = ?", *requested)
		if err != nil {
			return 0, fmt.Errorf("check category: %w", err)
		}
		if ok {
			return *requested, nil
		}
	}

	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM categories ORDER BY id ASC LIMIT 1").Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("first category: %w", err)
	}

	id, _, err = s.insertCategory(ctx, tx, defaultCategoryName, catalog.SlugBase("", defaultCategoryName, "category"))
	return id, err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
