package store

import (
	"context"
	"testing"

	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/database/dbtest"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(dbtest.Open(t))
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func str(s string) *string { return &s }

func mustUser(t *testing.T, s *Store, email string) int64 {
	t.Helper()
	u, err := s.CreateUser(context.Background(), models.User{Email: email, PasswordHash: "x"})
	require.NoError(t, err)
	return u.ID
}

func mustCategory(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	c, err := s.CreateCategory(context.Background(), name, "")
	require.NoError(t, err)
	return c.ID
}

func mustProduct(t *testing.T, s *Store, categoryID int64, name, price string, sizes ...string) *models.Product {
	t.Helper()
	tokens := catalog.Tokens(sizes)
	p, err := s.CreateProduct(context.Background(), ProductInput{
		Name:       str(name),
		Price:      dec(price),
		CategoryID: &categoryID,
		Sizes:      &tokens,
	})
	require.NoError(t, err)
	return p
}

// rawProduct inserts a row bypassing normalization, the way older rows were written.
func rawProduct(t *testing.T, s *Store, categoryID int64, name, sizes string) int64 {
	t.Helper()
	now := s.now()
	res, err := s.DB.Exec(`
		INSERT INTO products (name, slug, description, price, category_id, in_stock, sizes, created_at, updated_at)
		VALUES (?, ?, '', '10.00', ?, 1, ?, ?, ?)`,
		name, catalog.SlugBase("", name, "product"), categoryID, sizes, now, now)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}
