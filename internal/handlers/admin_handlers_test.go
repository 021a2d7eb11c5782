package handlers_test

import (
	"net/http"
	"testing"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bulkResponse struct {
	Message    string  `json:"message"`
	ProductIDs []int64 `json:"product_ids"`
	Skipped    []struct {
		Index  int    `json:"index"`
		Reason string `json:"reason"`
	} `json:"skipped"`
}

func TestBulkUploadSkipsInvalidItems(t *testing.T) {
	ts := newTestServer(t)
	_, admin := ts.user("admin@shop.test", true)

	products := `[
		{"name": "One", "price": "10.00"},
		{"name": "Two", "price": 12.5, "sizes": "S, M"},
		{"name": "", "price": "9.00"},
		{"name": "Four"},
		{"name": "Five", "price": "20.00"}
	]`
	req := multipartRequest(t, http.MethodPost, "/api/bulk-upload",
		map[string]string{"products": products},
		formFile{Field: "image_1", Name: "two.png", Content: pngBytes},
		formFile{Field: "image_7", Name: "stray.png", Content: pngBytes})
	w := ts.send(req, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[bulkResponse](t, w)
	assert.Equal(t, "Successfully created 3 products", resp.Message)
	require.Len(t, resp.ProductIDs, 3)
	require.Len(t, resp.Skipped, 2)
	assert.Equal(t, 2, resp.Skipped[0].Index)
	assert.Equal(t, "name is required", resp.Skipped[0].Reason)
	assert.Equal(t, 3, resp.Skipped[1].Index)
	assert.Equal(t, "price is required", resp.Skipped[1].Reason)

	w = ts.do(http.MethodGet, "/api/products/"+itoa(resp.ProductIDs[1]), "", nil)
	two := decode[models.Product](t, w)
	require.NotNil(t, two.Image)
	assert.Contains(t, *two.Image, "/media/products/")
	assert.Len(t, two.Images, 1)
	require.NotNil(t, two.Category)
	assert.Equal(t, "Uncategorized", two.Category.Name)

	w = ts.do(http.MethodGet, "/api/products/"+itoa(resp.ProductIDs[0]), "", nil)
	one := decode[models.Product](t, w)
	assert.Nil(t, one.Image)
	assert.Equal(t, []string{"S", "M", "L"}, []string(one.Sizes))
}

func TestBulkUploadRejectsBadPayload(t *testing.T) {
	ts := newTestServer(t)
	_, admin := ts.user("admin@shop.test", true)

	for _, payload := range []string{"", "[]", `{"name": "x"}`} {
		req := multipartRequest(t, http.MethodPost, "/api/bulk-upload", map[string]string{"products": payload})
		w := ts.send(req, admin)
		assert.Equal(t, http.StatusBadRequest, w.Code, payload)
	}
}

func TestBulkUploadSkipsItemWithBadImage(t *testing.T) {
	ts := newTestServer(t)
	_, admin := ts.user("admin@shop.test", true)

	products := `[
		{"name": "One", "price": "10.00"},
		{"name": "Two", "price": "12.00"},
		{"name": "Three", "price": "14.00"}
	]`
	req := multipartRequest(t, http.MethodPost, "/api/bulk-upload",
		map[string]string{"products": products},
		formFile{Field: "image_0", Name: "one.png", Content: pngBytes},
		formFile{Field: "image_1", Name: "two.pdf", Content: []byte("%PDF-1.4")})
	w := ts.send(req, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[bulkResponse](t, w)
	assert.Len(t, resp.ProductIDs, 2)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, 1, resp.Skipped[0].Index)
	assert.Equal(t, "unsupported image type", resp.Skipped[0].Reason)
	assert.Equal(t, 1, ts.storedFiles("products"))

	w = ts.do(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, 2.0, decode[map[string]any](t, w)["count"])
}

func TestBulkUploadRemovesImagesOfSkippedItems(t *testing.T) {
	ts := newTestServer(t)
	_, admin := ts.user("admin@shop.test", true)

	req := multipartRequest(t, http.MethodPost, "/api/bulk-upload",
		map[string]string{"products": `[{"name": "One", "price": "10.00"}, {"name": "Nameless"}]`},
		formFile{Field: "image_0", Name: "one.png", Content: pngBytes},
		formFile{Field: "image_1", Name: "two.png", Content: pngBytes})
	w := ts.send(req, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, decode[bulkResponse](t, w).Skipped, 1)
	assert.Equal(t, 1, ts.storedFiles("products"))
}
