package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/models"
)

// ListCategories returns all categories ordered by name, optionally only the one with slug.
func (s *Store) ListCategories(ctx context.Context, slug string) ([]models.Category, error) {
	query := "SELECT id, name, slug, created_at FROM categories"
	var args []any
	if slug != "" {
		query += " WHERE slug = ?"
		args = append(args, slug)
	}
	query += " ORDER BY name ASC, id ASC"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	cats := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// GetCategory returns one category with its subcategories.
func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := s.DB.QueryRowContext(ctx,
		"SELECT id, name, slug, created_at FROM categories WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "Category %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	subs, err := s.ListSubCategories(ctx, &c.ID)
	if err != nil {
		return nil, err
	}
	c.SubCategories = subs
	return &c, nil
}

// CreateCategory inserts a category; the slug is derived from name when empty
// and suffixed until unique.
func (s *Store) CreateCategory(ctx context.Context, name, slug string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name", "Name is required")
	}

	c := models.Category{Name: name, CreatedAt: s.now()}
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		id, finalSlug, err := s.insertCategory(ctx, tx, name, catalog.SlugBase(slug, name, "category"))
		if err != nil {
			return err
		}
		c.ID, c.Slug = id, finalSlug
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) insertCategory(ctx context.Context, q querier, name, base string) (int64, string, error) {
	slug, err := uniqueSlug(ctx, q, "categories", base, 0)
	if err != nil {
		return 0, "", err
	}
	res, err := q.ExecContext(ctx,
		"INSERT INTO categories (name, slug, created_at) VALUES (?, ?, ?)", name, slug, s.now())
	if err != nil {
		return 0, "", fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, "", fmt.Errorf("category id: %w", err)
	}
	return id, slug, nil
}

// ListSubCategories returns subcategories ordered by name, optionally for one category.
func (s *Store) ListSubCategories(ctx context.Context, categoryID *int64) ([]models.SubCategory, error) {
	query := "SELECT id, name, slug, category_id, description, image FROM subcategories"
	var args []any
	if categoryID != nil {
		query += " WHERE category_id = ?"
		args = append(args, *categoryID)
	}
	query += " ORDER BY name ASC, id ASC"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	subs := []models.SubCategory{}
	for rows.Next() {
		var sc models.SubCategory
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Slug, &sc.CategoryID, &sc.Description, &sc.Image); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		subs = append(subs, sc)
	}
	return subs, rows.Err()
}

// SubCategoryInput is the payload for CreateSubCategory.
type SubCategoryInput struct {
	Name        string
	Slug        string
	CategoryID  int64
	Description *string
	Image       *string
}

func (s *Store) CreateSubCategory(ctx context.Context, in SubCategoryInput) (*models.SubCategory, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.Invalid("name", "Name is required")
	}

	sc := models.SubCategory{Name: in.Name, CategoryID: in.CategoryID, Description: in.Description, Image: in.Image}
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "SELECT 1 FROM categories WHERE id = ?", in.CategoryID)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if !ok {
			return apperr.Invalid("category_id", "Category does not exist")
		}

		slug, err := uniqueSlug(ctx, tx, "subcategories", catalog.SlugBase(in.Slug, in.Name, "subcategory"), 0)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO subcategories (name, slug, category_id, description, image) VALUES (?, ?, ?, ?, ?)",
			sc.Name, slug, sc.CategoryID, sc.Description, sc.Image)
		if err != nil {
			return fmt.Errorf("insert subcategory: %w", err)
		}
		sc.ID, err = res.LastInsertId()
		sc.Slug = slug
		return err
	})
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// EnsureCategory returns the id of the category with exactly this slug,
// creating it when missing. created reports whether a row was inserted.
func (s *Store) EnsureCategory(ctx context.Context, name, slug string) (id int64, created bool, err error) {
	err = s.DB.QueryRowContext(ctx, "SELECT id FROM categories WHERE slug = ?", slug).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("find category %q: %w", slug, err)
	}
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO categories (name, slug, created_at) VALUES (?, ?, ?)", name, slug, s.now())
	if err != nil {
		return 0, false, fmt.Errorf("insert category %q: %w", slug, err)
	}
	id, err = res.LastInsertId()
	return id, true, err
}

// EnsureSubCategory is EnsureCategory for subcategories of categoryID.
func (s *Store) EnsureSubCategory(ctx context.Context, categoryID int64, name, slug string) (created bool, err error) {
	found, err := exists(ctx, s.DB, "SELECT 1 FROM subcategories WHERE slug = ?", slug)
	if err != nil {
		return false, fmt.Errorf("find subcategory %q: %w", slug, err)
	}
	if found {
		return false, nil
	}
	_, err = s.DB.ExecContext(ctx,
		"INSERT INTO subcategories (name, slug, category_id) VALUES (?, ?, ?)", name, slug, categoryID)
	if err != nil {
		return false, fmt.Errorf("insert subcategory %q: %w", slug, err)
	}
	return true, nil
}
