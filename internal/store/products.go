package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = `p.id, p.name, p.slug, p.description, p.price, p.sale_price, p.colors, p.featured,
	p.sku, p.image, p.category_id, c.name, c.slug, p.subcategory_id, p.in_stock, p.sizes,
	p.created_at, p.updated_at,
	(SELECT AVG(r.rating) FROM reviews r WHERE r.product_id = p.id),
	(SELECT COUNT(*) FROM reviews r WHERE r.product_id = p.id)`

const productFrom = " FROM products p JOIN categories c ON c.id = p.category_id"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		p         models.Product
		cat       models.CategoryRef
		salePrice decimal.NullDecimal
		avg       sql.NullFloat64
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &salePrice, &p.Colors, &p.Featured,
		&p.SKU, &p.Image, &p.CategoryID, &cat.Name, &cat.Slug, &p.SubCategoryID, &p.InStock, &p.Sizes,
		&p.CreatedAt, &p.UpdatedAt,
		&avg, &p.ReviewCount,
	)
	if err != nil {
		return p, err
	}

	cat.ID = p.CategoryID
	p.Category = &cat
	if salePrice.Valid {
		p.SalePrice = &salePrice.Decimal
	}
	if avg.Valid && p.ReviewCount > 0 {
		rounded := roundRating(avg.Float64)
		p.AverageRating = &rounded
	}
	return p, nil
}

func roundRating(v float64) float64 {
	return math.Round(v*100) / 100
}

// productWhere renders the filter as a WHERE clause. The size filter is only
// a coarse prefilter here; exact token membership is checked after scanning.
func productWhere(f catalog.ProductFilter) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(" WHERE 1=1")

	if f.CategoryID != nil {
		sb.WriteString(" AND p.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.SubCategoryID != nil {
		sb.WriteString(" AND p.subcategory_id = ?")
		args = append(args, *f.SubCategoryID)
	}
	if f.Featured != nil {
		sb.WriteString(" AND p.featured = ?")
		args = append(args, *f.Featured)
	}
	if f.Search != "" {
		like := containsPattern(f.Search)
		sb.WriteString(" AND (LOWER(p.name) LIKE ? ESCAPE '!' OR LOWER(p.description) LIKE ? ESCAPE '!' OR LOWER(c.name) LIKE ? ESCAPE '!')")
		args = append(args, like, like, like)
	}
	if f.MinPrice != nil {
		sb.WriteString(" AND p.price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		sb.WriteString(" AND p.price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.Size != "" {
		sb.WriteString(" AND LOWER(p.sizes) LIKE ? ESCAPE '!'")
		args = append(args, containsPattern(f.Size))
	}
	return sb.String(), args
}

func productOrder(s catalog.SortOrder) string {
	switch s {
	case catalog.SortPriceLow:
		return " ORDER BY p.price ASC, p.id ASC"
	case catalog.SortPriceHigh:
		return " ORDER BY p.price DESC, p.id DESC"
	case catalog.SortNameAsc:
		return " ORDER BY p.name ASC, p.id ASC"
	default:
		return " ORDER BY p.created_at DESC, p.id DESC"
	}
}

func (s *Store) queryProducts(ctx context.Context, q querier, query string, args ...any) ([]models.Product, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListProducts returns one page of products matching f.
func (s *Store) ListProducts(ctx context.Context, f catalog.ProductFilter, page catalog.PageRequest) (catalog.Page[models.Product], error) {
	where, args := productWhere(f)
	order := productOrder(f.Sort)

	if f.Size != "" {
		candidates, err := s.queryProducts(ctx, s.DB, "SELECT "+productColumns+productFrom+where+order, args...)
		if err != nil {
			return catalog.Page[models.Product]{}, err
		}
		matched := candidates[:0]
		for _, p := range candidates {
			if p.Sizes.Contains(f.Size) {
				matched = append(matched, p)
			}
		}
		return catalog.NewPage(catalog.Slice(matched, page), len(matched), page), nil
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*)"+productFrom+where, args...).Scan(&count); err != nil {
		return catalog.Page[models.Product]{}, fmt.Errorf("count products: %w", err)
	}
	if page.Offset() >= count {
		return catalog.NewPage([]models.Product{}, count, page), nil
	}

	pageArgs := append(append([]any{}, args...), page.Size, page.Offset())
	results, err := s.queryProducts(ctx, s.DB, "SELECT "+productColumns+productFrom+where+order+" LIMIT ? OFFSET ?", pageArgs...)
	if err != nil {
		return catalog.Page[models.Product]{}, err
	}
	return catalog.NewPage(results, count, page), nil
}

// GetProduct resolves ref as a slug first and then, if numeric, as an id.
// The product images are loaded as well.
func (s *Store) GetProduct(ctx context.Context, ref string) (*models.Product, error) {
	products, err := s.queryProducts(ctx, s.DB, "SELECT "+productColumns+productFrom+" WHERE p.slug = ?", ref)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
			products, err = s.queryProducts(ctx, s.DB, "SELECT "+productColumns+productFrom+" WHERE p.id = ?", id)
			if err != nil {
				return nil, err
			}
		}
	}
	if len(products) == 0 {
		return nil, apperr.New(apperr.NotFound, "Product %q not found", ref)
	}

	p := products[0]
	p.Images, err = s.ListProductImages(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductByID is GetProduct for a numeric id.
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	products, err := s.queryProducts(ctx, s.DB, "SELECT "+productColumns+productFrom+" WHERE p.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperr.New(apperr.NotFound, "Product %d not found", id)
	}
	p := products[0]
	p.Images, err = s.ListProductImages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListProductImages(ctx context.Context, productID int64) ([]models.ProductImage, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, product_id, image, alt_text, is_feature, display_order, created_at
		FROM product_images WHERE product_id = ?
		ORDER BY display_order ASC, created_at ASC, id ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()

	images := []models.ProductImage{}
	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.Image, &img.AltText, &img.IsFeature, &img.DisplayOrder, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ProductInput carries the writable product fields. On create Name, Price and
// CategoryID are required; on update nil fields are left untouched.
type ProductInput struct {
	Name           *string          `json:"name" binding:"omitempty,max=200"`
	Slug           *string          `json:"slug" binding:"omitempty,max=220"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	SalePrice      *decimal.Decimal `json:"sale_price"`
	ClearSalePrice bool             `json:"clear_sale_price"`
	Colors         *catalog.Tokens  `json:"colors"`
	Featured       *bool            `json:"featured"`
	SKU            *string          `json:"sku" binding:"omitempty,max=100"`
	Image          *string          `json:"image" binding:"omitempty,max=500"`
	CategoryID     *int64           `json:"category_id"`
	SubCategoryID  *int64           `json:"subcategory_id"`
	InStock        *bool            `json:"in_stock"`
	Sizes          *catalog.Tokens  `json:"sizes"`
}

func validatePrices(price, sale *decimal.Decimal) error {
	if price != nil && !price.IsPositive() {
		return apperr.Invalid("price", "Price must be greater than zero")
	}
	if sale != nil && sale.IsNegative() {
		return apperr.Invalid("sale_price", "Sale price cannot be negative")
	}
	return nil
}

// checkSubCategory verifies that subID, when set, belongs to categoryID.
func checkSubCategory(ctx context.Context, q querier, categoryID int64, subID *int64) error {
	if subID == nil {
		return nil
	}
	ok, err := exists(ctx, q, "SELECT 1 FROM subcategories WHERE id = ? AND category_id = ?", *subID, categoryID)
	if err != nil {
		return fmt.Errorf("check subcategory: %w", err)
	}
	if !ok {
		return apperr.Invalid("subcategory_id", "Subcategory does not belong to the selected category")
	}
	return nil
}

// newProduct is a fully resolved product row ready to insert.
type newProduct struct {
	Name          string
	SlugBase      string
	Description   string
	Price         decimal.Decimal
	SalePrice     *decimal.Decimal
	Colors        catalog.Tokens
	Featured      bool
	SKU           *string
	Image         *string
	CategoryID    int64
	SubCategoryID *int64
	InStock       bool
	Sizes         catalog.Tokens
}

func (s *Store) insertProduct(ctx context.Context, q querier, np newProduct) (int64, error) {
	slug, err := uniqueSlug(ctx, q, "products", np.SlugBase, 0)
	if err != nil {
		return 0, err
	}
	if np.Colors == nil {
		np.Colors = catalog.Tokens{}
	}
	if np.Sizes == nil {
		np.Sizes = catalog.Tokens{}
	}

	now := s.now()
	res, err := q.ExecContext(ctx, `
		INSERT INTO products
			(name, slug, description, price, sale_price, colors, featured, sku, image,
			 category_id, subcategory_id, in_stock, sizes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		np.Name, slug, np.Description, np.Price, np.SalePrice, np.Colors, np.Featured, np.SKU, np.Image,
		np.CategoryID, np.SubCategoryID, np.InStock, np.Sizes, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return res.LastInsertId()
}

// CreateProduct validates in and inserts one product with a unique slug.
func (s *Store) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	// 1. --- Validate the required fields ---
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Invalid("name", "Name is required")
	}
	if in.Price == nil {
		return nil, apperr.Invalid("price", "Price is required")
	}
	if in.CategoryID == nil {
		return nil, apperr.Invalid("category_id", "Category is required")
	}
	if err := validatePrices(in.Price, in.SalePrice); err != nil {
		return nil, err
	}

	np := newProduct{
		Name:          strings.TrimSpace(*in.Name),
		Price:         *in.Price,
		SalePrice:     in.SalePrice,
		SKU:           in.SKU,
		Image:         in.Image,
		CategoryID:    *in.CategoryID,
		SubCategoryID: in.SubCategoryID,
		InStock:       true,
	}
	supplied := ""
	if in.Slug != nil {
		supplied = *in.Slug
	}
	np.SlugBase = catalog.SlugBase(supplied, np.Name, "product")
	if in.Description != nil {
		np.Description = *in.Description
	}
	if in.Colors != nil {
		np.Colors = *in.Colors
	}
	if in.Sizes != nil {
		np.Sizes = *in.Sizes
	}
	if in.Featured != nil {
		np.Featured = *in.Featured
	}
	if in.InStock != nil {
		np.InStock = *in.InStock
	}

	// 2. --- Insert inside one transaction ---
	var id int64
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "SELECT 1 FROM categories WHERE id = ?", np.CategoryID)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if !ok {
			return apperr.Invalid("category_id", "Category does not exist")
		}
		if err := checkSubCategory(ctx, tx, np.CategoryID, np.SubCategoryID); err != nil {
			return err
		}
		id, err = s.insertProduct(ctx, tx, np)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetProductByID(ctx, id)
}

// UpdateProduct applies the non-nil fields of in to product id.
func (s *Store) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*models.Product, error) {
	if err := validatePrices(in.Price, in.SalePrice); err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Invalid("name", "Name cannot be empty")
	}

	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		var categoryID int64
		var subID *int64
		err := tx.QueryRowContext(ctx, "SELECT category_id, subcategory_id FROM products WHERE id = ?", id).Scan(&categoryID, &subID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.NotFound, "Product %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}

		var (
			sb   strings.Builder
			args []any
		)
		set := func(col string, v any) {
			if sb.Len() > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(col + " = ?")
			args = append(args, v)
		}

		if in.CategoryID != nil {
			ok, err := exists(ctx, tx, "SELECT 1 FROM categories WHERE id = ?", *in.CategoryID)
			if err != nil {
				return fmt.Errorf("check category: %w", err)
			}
			if !ok {
				return apperr.Invalid("category_id", "Category does not exist")
			}
			categoryID = *in.CategoryID
			set("category_id", categoryID)
		}
		if in.SubCategoryID != nil {
			subID = in.SubCategoryID
			set("subcategory_id", *subID)
		}
		if err := checkSubCategory(ctx, tx, categoryID, subID); err != nil {
			return err
		}

		if in.Name != nil {
			set("name", strings.TrimSpace(*in.Name))
		}
		if in.Slug != nil {
			name := ""
			if in.Name != nil {
				name = *in.Name
			}
			slug, err := uniqueSlug(ctx, tx, "products", catalog.SlugBase(*in.Slug, name, "product"), id)
			if err != nil {
				return err
			}
			set("slug", slug)
		}
		if in.Description != nil {
			set("description", *in.Description)
		}
		if in.Price != nil {
			set("price", *in.Price)
		}
		if in.ClearSalePrice {
			set("sale_price", nil)
		} else if in.SalePrice != nil {
			set("sale_price", *in.SalePrice)
		}
		if in.Colors != nil {
			set("colors", *in.Colors)
		}
		if in.Sizes != nil {
			set("sizes", *in.Sizes)
		}
		if in.Featured != nil {
			set("featured", *in.Featured)
		}
		if in.InStock != nil {
			set("in_stock", *in.InStock)
		}
		if in.SKU != nil {
			set("sku", nullString(*in.SKU))
		}
		if in.Image != nil {
			set("image", nullString(*in.Image))
		}
		set("updated_at", s.now())

		args = append(args, id)
		if _, err := tx.ExecContext(ctx, "UPDATE products SET "+sb.String()+" WHERE id = ?", args...); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProductByID(ctx, id)
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "Product %d not found", id)
	}
	return nil
}

// ProductImageInput describes one image attached to a product.
type ProductImageInput struct {
	Image        string
	AltText      string
	IsFeature    bool
	DisplayOrder int
}

// AddProductImage attaches an image. A feature image replaces the previous
// feature flag and becomes the product's main image.
func (s *Store) AddProductImage(ctx context.Context, productID int64, in ProductImageInput) (*models.ProductImage, error) {
	if strings.TrimSpace(in.Image) == "" {
		return nil, apperr.Invalid("image", "Image is required")
	}

	img := models.ProductImage{
		ProductID:    productID,
		Image:        in.Image,
		AltText:      in.AltText,
		IsFeature:    in.IsFeature,
		DisplayOrder: in.DisplayOrder,
		CreatedAt:    s.now(),
	}
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "SELECT 1 FROM products WHERE id = ?", productID)
		if err != nil {
			return fmt.Errorf("check product: %w", err)
		}
		if !ok {
			return apperr.New(apperr.NotFound, "Product %d not found", productID)
		}
		img.ID, err = s.insertProductImage(ctx, tx, img)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (s *Store) insertProductImage(ctx context.Context, q querier, img models.ProductImage) (int64, error) {
	if img.IsFeature {
		if _, err := q.ExecContext(ctx,
			"UPDATE product_images SET is_feature = ? WHERE product_id = ?", false, img.ProductID); err != nil {
			return 0, fmt.Errorf("clear feature image: %w", err)
		}
		if _, err := q.ExecContext(ctx,
			"UPDATE products SET image = ?, updated_at = ? WHERE id = ?", img.Image, s.now(), img.ProductID); err != nil {
			return 0, fmt.Errorf("set product image: %w", err)
		}
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO product_images (product_id, image, alt_text, is_feature, display_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		img.ProductID, img.Image, img.AltText, img.IsFeature, img.DisplayOrder, img.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert product image: %w", err)
	}
	return res.LastInsertId()
}

const maxSuggestions = 8

// SearchSuggestions returns up to 8 distinct name matches for a partial
// query: product names first, then category names.
func (s *Store) SearchSuggestions(ctx context.Context, query string) ([]models.Suggestion, error) {
	query = strings.TrimSpace(query)
	out := []models.Suggestion{}
	if len([]rune(query)) < 2 {
		return out, nil
	}
	like := containsPattern(query)
	seen := map[string]struct{}{}

	collect := func(kind, stmt string) error {
		rows, err := s.DB.QueryContext(ctx, stmt, like, maxSuggestions)
		if err != nil {
			return fmt.Errorf("suggest %ss: %w", kind, err)
		}
		defer rows.Close()
		for rows.Next() {
			sg := models.Suggestion{Type: kind}
			if err := rows.Scan(&sg.ID, &sg.Name, &sg.Slug); err != nil {
				return fmt.Errorf("scan suggestion: %w", err)
			}
			key := strings.ToLower(sg.Name)
			if _, dup := seen[key]; dup || len(out) >= maxSuggestions {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, sg)
		}
		return rows.Err()
	}

	if err := collect("product", "SELECT id, name, slug FROM products WHERE LOWER(name) LIKE ? ESCAPE '!' ORDER BY name ASC, id ASC LIMIT ?"); err != nil {
		return nil, err
	}
	if len(out) < maxSuggestions {
		if err := collect("category", "SELECT id, name, slug FROM categories WHERE LOWER(name) LIKE ? ESCAPE '!' ORDER BY name ASC, id ASC LIMIT ?"); err != nil {
			return nil, err
		}
	}
	return out, nil
}
