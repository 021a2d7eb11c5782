package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/store"
	"github.com/gin-gonic/gin"
)

const maxAltText = 100

// GetProducts handles GET /api/products
// Filters: category, subcategory, featured, q|search, min_price, max_price,
// size, sort_by. Pagination: page, limit.
func (h *Handlers) GetProducts(c *gin.Context) {
	q := c.Request.URL.Query()
	filter := catalog.ParseProductFilter(q)
	page := catalog.ParsePageRequest(q, h.Pages.Default, h.Pages.Max)

	result, err := h.Store.ListProducts(c.Request.Context(), filter, page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchProducts handles GET /api/products/search?q=
// It is the listing endpoint with a mandatory search term.
func (h *Handlers) SearchProducts(c *gin.Context) {
	q := c.Request.URL.Query()
	filter := catalog.ParseProductFilter(q)
	if filter.Search == "" {
		h.respondError(c, apperr.Invalid("q", "Search query is required"))
		return
	}
	page := catalog.ParsePageRequest(q, h.Pages.Default, h.Pages.Max)

	result, err := h.Store.ListProducts(c.Request.Context(), filter, page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchSuggestions handles GET /api/products/search-suggestions?q=
func (h *Handlers) SearchSuggestions(c *gin.Context) {
	suggestions, err := h.Store.SearchSuggestions(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

// GetProduct handles GET /api/products/:slug (a numeric id works too)
func (h *Handlers) GetProduct(c *gin.Context) {
	p, err := h.Store.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProduct handles POST /api/products (admin)
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input store.ProductInput
	if !h.bindJSON(c, &input) {
		return
	}
	p, err := h.Store.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// UpdateProduct handles PUT /api/products/:slug (admin, numeric id)
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, err := pathID(c, "slug")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var input store.ProductInput
	if !h.bindJSON(c, &input) {
		return
	}
	p, err := h.Store.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProduct handles DELETE /api/products/:slug (admin, numeric id)
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, err := pathID(c, "slug")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Store.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddProductImage handles POST /api/products/:slug/images (admin, multipart)
// Fields: image (file), alt_text, is_feature, display_order.
func (h *Handlers) AddProductImage(c *gin.Context) {
	id, err := pathID(c, "slug")
	if err != nil {
		h.respondError(c, err)
		return
	}
	altText := strings.TrimSpace(c.PostForm("alt_text"))
	if utf8.RuneCountInString(altText) > maxAltText {
		h.respondError(c, apperr.Invalid("alt_text", fmt.Sprintf("Must be at most %d", maxAltText)))
		return
	}
	url, err := h.saveUpload(c, "image", "products")
	if err != nil {
		h.respondError(c, err)
		return
	}

	isFeature, _ := strconv.ParseBool(c.PostForm("is_feature"))
	order, _ := strconv.Atoi(c.PostForm("display_order"))
	img, err := h.Store.AddProductImage(c.Request.Context(), id, store.ProductImageInput{
		Image:        url,
		AltText:      altText,
		IsFeature:    isFeature,
		DisplayOrder: order,
	})
	if err != nil {
		h.discardUploads(c.Request.Context(), url)
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}
