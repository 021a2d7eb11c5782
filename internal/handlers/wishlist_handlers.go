package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type WishlistInput struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
}

// GetWishlist handles GET /api/wishlist
func (h *Handlers) GetWishlist(c *gin.Context) {
	items, err := h.Store.ListWishlist(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// AddToWishlist handles POST /api/wishlist
func (h *Handlers) AddToWishlist(c *gin.Context) {
	var input WishlistInput
	if !h.bindJSON(c, &input) {
		return
	}
	item, err := h.Store.AddToWishlist(c.Request.Context(), currentUser(c), input.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// RemoveFromWishlist handles DELETE /api/wishlist/:product_id
func (h *Handlers) RemoveFromWishlist(c *gin.Context) {
	productID, err := pathID(c, "product_id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Store.RemoveFromWishlist(c.Request.Context(), currentUser(c), productID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckWishlist handles GET /api/wishlist/check/:product_id
func (h *Handlers) CheckWishlist(c *gin.Context) {
	productID, err := pathID(c, "product_id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	in, err := h.Store.InWishlist(c.Request.Context(), currentUser(c), productID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"in_wishlist": in})
}
