package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/01moynul/storefront-golang/internal/email"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/store"
	"github.com/gin-gonic/gin"
)

// --- Order Creation ---

type OrderItemInput struct {
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Size      string `json:"size" binding:"max=20"`
	Color     string `json:"color" binding:"max=30"`
}

type ShippingInput struct {
	FirstName  string `json:"first_name" binding:"required,max=100"`
	LastName   string `json:"last_name" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email,max=254"`
	Address    string `json:"address" binding:"required,max=255"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,max=100"`
}

type CreateOrderInput struct {
	Items          []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	Shipping       ShippingInput    `json:"shipping"`
	PaymentMethod  string           `json:"payment_method" binding:"omitempty,oneof=credit_card paypal"`
	PaymentDetails models.JSONMap   `json:"payment_details"`
}

// CreateOrder handles POST /api/orders
func (h *Handlers) CreateOrder(c *gin.Context) {
	var input CreateOrderInput
	if !h.bindJSON(c, &input) {
		return
	}

	items := make([]store.LineItem, len(input.Items))
	for i, it := range input.Items {
		items[i] = store.LineItem{ProductID: it.ProductID, Quantity: it.Quantity, Size: it.Size, Color: it.Color}
	}
	sh := input.Shipping

	order, err := h.Store.CreateOrder(c.Request.Context(), store.NewOrder{
		UserID: currentUser(c),
		Items:  items,
		Shipping: models.ShippingInfo{
			FirstName:  sh.FirstName,
			LastName:   sh.LastName,
			Email:      sh.Email,
			Address:    sh.Address,
			City:       sh.City,
			PostalCode: sh.PostalCode,
			Country:    sh.Country,
		},
		PaymentMethod:  input.PaymentMethod,
		PaymentDetails: input.PaymentDetails,
	}, h.Pricing)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.notifyOrderPlaced(c.Request.Context(), order)
	c.JSON(http.StatusCreated, order)
}

// notifyOrderPlaced sends the confirmation email. A failed send never fails
// the order that was already committed.
func (h *Handlers) notifyOrderPlaced(ctx context.Context, order *models.Order) {
	if h.Mailer == nil {
		return
	}
	if err := email.SendOrderConfirmation(ctx, h.Mailer, order.Shipping.Email, order); err != nil {
		h.Logger.WarnContext(ctx, "order confirmation not sent",
			slog.Int64("order_id", order.ID),
			slog.Any("error", err))
	}
}

// GetOrders handles GET /api/orders (caller's orders, newest first)
func (h *Handlers) GetOrders(c *gin.Context) {
	orders, err := h.Store.ListOrders(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /api/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	order, err := h.Store.GetOrder(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type UpdateOrderStatusInput struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"tracking_number" binding:"max=100"`
}

// UpdateOrderStatus handles PATCH /api/orders/:id/status (admin)
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var input UpdateOrderStatusInput
	if !h.bindJSON(c, &input) {
		return
	}
	order, err := h.Store.UpdateOrderStatus(c.Request.Context(), id, input.Status, input.TrackingNumber)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
