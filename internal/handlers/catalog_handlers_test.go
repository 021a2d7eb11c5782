package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedCatalog creates a category as staff and returns its id plus the
// staff token.
func seedCatalog(t *testing.T, ts *testServer) (int64, string) {
	t.Helper()
	_, admin := ts.user("admin@shop.test", true)

	w := ts.do(http.MethodPost, "/api/categories", admin, map[string]any{"name": "Men"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cat := decode[models.Category](t, w)
	return cat.ID, admin
}

func createProduct(t *testing.T, ts *testServer, admin string, body map[string]any) models.Product {
	t.Helper()
	w := ts.do(http.MethodPost, "/api/products", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Product](t, w)
}

func TestAdminRoutesRequireStaff(t *testing.T) {
	ts := newTestServer(t)
	_, shopper := ts.user("shopper@shop.test", false)

	w := ts.do(http.MethodPost, "/api/categories", "", map[string]any{"name": "Men"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodPost, "/api/categories", shopper, map[string]any{"name": "Men"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "permission_denied", decode[errorResponse](t, w).Code)
}

func TestCreateProductAndFetchBySlug(t *testing.T) {
	ts := newTestServer(t)
	catID, admin := seedCatalog(t, ts)

	p := createProduct(t, ts, admin, map[string]any{
		"name": "Classic Tee", "price": "19.99", "category_id": catID, "sizes": "s, M, m",
	})
	assert.Equal(t, "classic-tee", p.Slug)
	assert.Equal(t, catalog.Tokens{"s", "M"}, p.Sizes)

	second := createProduct(t, ts, admin, map[string]any{"name": "Classic Tee", "price": "9.99", "category_id": catID})
	assert.Equal(t, "classic-tee-1", second.Slug)

	w := ts.do(http.MethodGet, "/api/products/classic-tee", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Product](t, w)
	assert.Equal(t, p.ID, got.ID)
	assert.Nil(t, got.AverageRating)
	assert.Equal(t, 0, got.ReviewCount)

	w = ts.do(http.MethodGet, "/api/products/no-such-thing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[errorResponse](t, w).Code)
}

func TestCreateProductValidation(t *testing.T) {
	ts := newTestServer(t)
	catID, admin := seedCatalog(t, ts)

	w := ts.do(http.MethodPost, "/api/products", admin, map[string]any{
		"name": "Tee", "price": "0", "category_id": catID,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[errorResponse](t, w)
	assert.Equal(t, "validation_error", resp.Code)
	assert.Contains(t, resp.Fields, "price")

	w = ts.do(http.MethodPost, "/api/products", admin, "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/api/products", admin, map[string]any{
		"name": "Tee", "price": "ten dollars", "category_id": catID,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp = decode[errorResponse](t, w)
	assert.Equal(t, "Enter a valid amount", resp.Fields["price"])

	w = ts.do(http.MethodPost, "/api/products", admin, map[string]any{
		"name": "Tee", "price": "10.00", "category_id": "shirts",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid value", decode[errorResponse](t, w).Fields["category_id"])

	w = ts.do(http.MethodPost, "/api/products", admin, map[string]any{
		"name": strings.Repeat("n", 201), "price": "10.00", "category_id": catID,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorResponse](t, w).Fields, "name")
}

func TestListProductsFiltersAndPages(t *testing.T) {
	ts := newTestServer(t)
	catID, admin := seedCatalog(t, ts)

	createProduct(t, ts, admin, map[string]any{"name": "Alpha", "price": "30.00", "category_id": catID, "sizes": []string{"S", "M"}})
	createProduct(t, ts, admin, map[string]any{"name": "Bravo", "price": "10.00", "category_id": catID, "sizes": []string{"L"}})
	createProduct(t, ts, admin, map[string]any{"name": "Charlie", "price": "20.00", "category_id": catID, "sizes": []string{"m", "XL"}})

	w := ts.do(http.MethodGet, "/api/products?size=M&sort_by=price_low", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[catalog.Page[models.Product]](t, w)
	require.Equal(t, 2, page.Count)
	assert.Equal(t, "Charlie", page.Results[0].Name)
	assert.Equal(t, "Alpha", page.Results[1].Name)

	w = ts.do(http.MethodGet, "/api/products?limit=2&page=2&sort_by=name_asc", "", nil)
	page = decode[catalog.Page[models.Product]](t, w)
	assert.Equal(t, 3, page.Count)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Charlie", page.Results[0].Name)
	assert.True(t, page.HasPrevious)
	assert.False(t, page.HasNext)

	w = ts.do(http.MethodGet, "/api/products?limit=2&page=9", "", nil)
	page = decode[catalog.Page[models.Product]](t, w)
	assert.Empty(t, page.Results)

	w = ts.do(http.MethodGet, "/api/products?min_price=abc", "", nil)
	page = decode[catalog.Page[models.Product]](t, w)
	assert.Equal(t, 3, page.Count)
}

func TestSearchEndpoints(t *testing.T) {
	ts := newTestServer(t)
	catID, admin := seedCatalog(t, ts)
	createProduct(t, ts, admin, map[string]any{"name": "Merino Sweater", "price": "80.00", "category_id": catID})

	w := ts.do(http.MethodGet, "/api/products/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/api/products/search?q=merino", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[catalog.Page[models.Product]](t, w).Count)

	w = ts.do(http.MethodGet, "/api/products/search-suggestions?q=me", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sugg := decode[[]models.Suggestion](t, w)
	require.Len(t, sugg, 2)
	assert.Equal(t, "product", sugg[0].Type)
	assert.Equal(t, "category", sugg[1].Type)

	w = ts.do(http.MethodGet, "/api/products/search-suggestions?q=m", "", nil)
	assert.Empty(t, decode[[]models.Suggestion](t, w))
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	ts := newTestServer(t)
	catID, admin := seedCatalog(t, ts)
	p := createProduct(t, ts, admin, map[string]any{"name": "Cap", "price": "15.00", "category_id": catID})

	w := ts.do(http.MethodPut, "/api/products/"+itoa(p.ID), admin, map[string]any{"featured": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[models.Product](t, w)
	assert.True(t, got.Featured)
	assert.Equal(t, "15.00", got.Price.StringFixed(2))

	w = ts.do(http.MethodDelete, "/api/products/"+itoa(p.ID), admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(http.MethodDelete, "/api/products/"+itoa(p.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddProductImage(t *testing.T) {
	ts := newTestServer(t)
	catID, admin := seedCatalog(t, ts)
	p := createProduct(t, ts, admin, map[string]any{"name": "Scarf", "price": "25.00", "category_id": catID})

	req := multipartRequest(t, http.MethodPost, "/api/products/"+itoa(p.ID)+"/images",
		map[string]string{"alt_text": "front", "is_feature": "true"},
		formFile{Field: "image", Name: "front.png", Content: pngBytes})
	w := ts.send(req, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	img := decode[models.ProductImage](t, w)
	assert.True(t, img.IsFeature)
	assert.Contains(t, img.Image, "http://shop.test/media/products/")

	w = ts.do(http.MethodGet, "/api/products/"+p.Slug, "", nil)
	got := decode[models.Product](t, w)
	require.NotNil(t, got.Image)
	assert.Equal(t, img.Image, *got.Image)
	assert.Len(t, got.Images, 1)
}

func TestCategoriesAndSubcategories(t *testing.T) {
	ts := newTestServer(t)
	catID, admin := seedCatalog(t, ts)

	w := ts.do(http.MethodPost, "/api/subcategories", admin, map[string]any{"name": "Shirts", "category_id": catID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(http.MethodPost, "/api/subcategories", admin, map[string]any{"name": "Shirts", "category_id": 999})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/api/subcategories?category_id="+itoa(catID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.SubCategory](t, w), 1)

	w = ts.do(http.MethodGet, "/api/categories/"+itoa(catID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[models.Category](t, w).SubCategories, 1)

	w = ts.do(http.MethodGet, "/api/categories?slug=men", "", nil)
	assert.Len(t, decode[[]models.Category](t, w), 1)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := ts.send(req, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w = ts.send(req, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAddProductImageUnknownProductKeepsNoFile(t *testing.T) {
	ts := newTestServer(t)
	_, admin := seedCatalog(t, ts)

	req := multipartRequest(t, http.MethodPost, "/api/products/9999/images", nil,
		formFile{Field: "image", Name: "front.png", Content: pngBytes})
	w := ts.send(req, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, ts.storedFiles("products"))

	req = multipartRequest(t, http.MethodPost, "/api/products/9999/images",
		map[string]string{"alt_text": strings.Repeat("a", 101)},
		formFile{Field: "image", Name: "front.png", Content: pngBytes})
	w = ts.send(req, admin)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorResponse](t, w).Fields, "alt_text")
	assert.Equal(t, 0, ts.storedFiles("products"))
}
