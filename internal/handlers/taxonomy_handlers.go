package handlers

import (
	"net/http"
	"strconv"

	"github.com/01moynul/storefront-golang/internal/store"
	"github.com/gin-gonic/gin"
)

type CategoryInput struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"max=120"`
}

// GetAllCategories handles GET /api/categories (?slug= narrows to one)
func (h *Handlers) GetAllCategories(c *gin.Context) {
	cats, err := h.Store.ListCategories(c.Request.Context(), c.Query("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

// GetCategory handles GET /api/categories/:id
func (h *Handlers) GetCategory(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	cat, err := h.Store.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// CreateCategory handles POST /api/categories (admin)
func (h *Handlers) CreateCategory(c *gin.Context) {
	var input CategoryInput
	if !h.bindJSON(c, &input) {
		return
	}
	cat, err := h.Store.CreateCategory(c.Request.Context(), input.Name, input.Slug)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// GetSubCategories handles GET /api/subcategories (?category_id= filters by parent)
func (h *Handlers) GetSubCategories(c *gin.Context) {
	raw := c.Query("category_id")
	if raw == "" {
		raw = c.Query("category")
	}
	var categoryID *int64
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
		categoryID = &id
	}
	subs, err := h.Store.ListSubCategories(c.Request.Context(), categoryID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

type SubCategoryInput struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Slug        string  `json:"slug" binding:"max=120"`
	CategoryID  int64   `json:"category_id" binding:"required,gt=0"`
	Description *string `json:"description"`
	Image       *string `json:"image" binding:"omitempty,max=500"`
}

// CreateSubCategory handles POST /api/subcategories (admin)
func (h *Handlers) CreateSubCategory(c *gin.Context) {
	var input SubCategoryInput
	if !h.bindJSON(c, &input) {
		return
	}
	sub, err := h.Store.CreateSubCategory(c.Request.Context(), store.SubCategoryInput{
		Name:        input.Name,
		Slug:        input.Slug,
		CategoryID:  input.CategoryID,
		Description: input.Description,
		Image:       input.Image,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}
