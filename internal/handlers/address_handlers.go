package handlers

import (
	"net/http"

	"github.com/01moynul/storefront-golang/internal/store"
	"github.com/gin-gonic/gin"
)

// GetAddresses handles GET /api/addresses
func (h *Handlers) GetAddresses(c *gin.Context) {
	addrs, err := h.Store.ListAddresses(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addrs)
}

// GetAddress handles GET /api/addresses/:id
func (h *Handlers) GetAddress(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	addr, err := h.Store.GetAddress(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addr)
}

// CreateAddress handles POST /api/addresses
func (h *Handlers) CreateAddress(c *gin.Context) {
	var input store.AddressInput
	if !h.bindJSON(c, &input) {
		return
	}
	addr, err := h.Store.CreateAddress(c.Request.Context(), currentUser(c), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, addr)
}

// UpdateAddress handles PUT /api/addresses/:id
func (h *Handlers) UpdateAddress(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var input store.AddressInput
	if !h.bindJSON(c, &input) {
		return
	}
	addr, err := h.Store.UpdateAddress(c.Request.Context(), currentUser(c), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addr)
}

// DeleteAddress handles DELETE /api/addresses/:id
func (h *Handlers) DeleteAddress(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Store.DeleteAddress(c.Request.Context(), currentUser(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
