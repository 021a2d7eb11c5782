package store

import (
	"context"
	"strings"
	"testing"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkCreateSkipsInvalidItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cat := mustCategory(t, s, "Men")

	descs, err := ParseBulkDescriptors(`[
		{"name": "One", "price": "10.00", "category": 1},
		{"name": "Two", "price": 12.5},
		{"name": "Three"},
		{"name": "Four", "price": "8", "sizes": "XS, S"},
		{"name": "Five", "price": "9", "category": 42}
	]`)
	require.NoError(t, err)
	require.Len(t, descs, 5)

	res, err := s.BulkCreateProducts(ctx, descs, map[int]string{0: "/media/products/one.jpg", 2: "/media/products/three.jpg"})
	require.NoError(t, err)
	assert.Len(t, res.ProductIDs, 4)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 2, res.Skipped[0].Index)
	assert.Equal(t, 4, countRows(t, s, "products"))

	one, err := s.GetProductByID(ctx, res.ProductIDs[0])
	require.NoError(t, err)
	require.NotNil(t, one.Image)
	assert.Equal(t, "/media/products/one.jpg", *one.Image)
	require.Len(t, one.Images, 1)
	assert.True(t, one.Images[0].IsFeature)
	assert.Equal(t, []string{"S", "M", "L"}, []string(one.Sizes))

	four, err := s.GetProductByID(ctx, res.ProductIDs[2])
	require.NoError(t, err)
	assert.Nil(t, four.Image)
	assert.Equal(t, []string{"XS", "S"}, []string(four.Sizes))

	five, err := s.GetProductByID(ctx, res.ProductIDs[3])
	require.NoError(t, err)
	assert.Equal(t, cat, five.CategoryID)
}

func TestBulkCreateCreatesDefaultCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	descs, err := ParseBulkDescriptors(`[{"name": "Orphan", "price": "5"}, {"name": "Orphan", "price": "6"}]`)
	require.NoError(t, err)
	res, err := s.BulkCreateProducts(ctx, descs, nil)
	require.NoError(t, err)
	require.Len(t, res.ProductIDs, 2)

	p, err := s.GetProductByID(ctx, res.ProductIDs[1])
	require.NoError(t, err)
	assert.Equal(t, "Uncategorized", p.Category.Name)
	assert.Equal(t, "orphan-1", p.Slug)
	assert.Equal(t, 1, countRows(t, s, "categories"))
}

func TestBulkCreateDropsForeignSubCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	men := mustCategory(t, s, "Men")
	women := mustCategory(t, s, "Women")
	sub, err := s.CreateSubCategory(ctx, SubCategoryInput{Name: "Dresses", CategoryID: women})
	require.NoError(t, err)

	descs := []BulkDescriptor{{Name: "Tee", Price: *dec("5"), Category: &men, SubCategory: &sub.ID}}
	res, err := s.BulkCreateProducts(ctx, descs, nil)
	require.NoError(t, err)
	require.Len(t, res.ProductIDs, 1)

	p, err := s.GetProductByID(ctx, res.ProductIDs[0])
	require.NoError(t, err)
	assert.Nil(t, p.SubCategoryID)
}

func TestParseBulkDescriptors(t *testing.T) {
	_, err := ParseBulkDescriptors("")
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = ParseBulkDescriptors("[]")
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = ParseBulkDescriptors("{}")
	assert.True(t, apperr.Is(err, apperr.Validation))

	descs, err := ParseBulkDescriptors(`[{"name": "Ok", "price": "1"}, {"name": "Bad", "price": "abc"}]`)
	require.NoError(t, err)
	require.Len(t, descs, 2)

	s := newTestStore(t)
	mustCategory(t, s, "Men")
	res, err := s.BulkCreateProducts(context.Background(), descs, nil)
	require.NoError(t, err)
	assert.Len(t, res.ProductIDs, 1)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "malformed product data", res.Skipped[0].Reason)
}

func TestBulkCreateHonoursRejectedItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	descs, err := ParseBulkDescriptors(`[
		{"name": "One", "price": "10.00"},
		{"name": "Two", "price": "11.00"},
		{"name": "` + strings.Repeat("x", 201) + `", "price": "12.00"}
	]`)
	require.NoError(t, err)
	descs[1].Reject("unsupported image type")

	res, err := s.BulkCreateProducts(ctx, descs, nil)
	require.NoError(t, err)
	assert.Len(t, res.ProductIDs, 1)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, BulkSkip{Index: 1, Reason: "unsupported image type"}, res.Skipped[0])
	assert.Equal(t, BulkSkip{Index: 2, Reason: "name is too long"}, res.Skipped[1])
}
