package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
	OrderPaid       = "paid"
)

// Payment methods
const (
	PaymentCreditCard = "credit_card"
	PaymentPayPal     = "paypal"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderPaid:
		return true
	}
	return false
}

// CompletedOrderStatuses count towards a verified purchase.
var CompletedOrderStatuses = []string{OrderPaid, OrderShipped, OrderDelivered}

// Order is the model for the 'orders' table
type Order struct {
	ID             int64           `json:"id" db:"id"`
	UserID         int64           `json:"user_id" db:"user_id"`
	Status         string          `json:"status" db:"status"`
	TrackingNumber string          `json:"tracking_number" db:"tracking_number"`
	Shipping       ShippingInfo    `json:"shipping"`
	PaymentMethod  string          `json:"payment_method" db:"payment_method"`
	PaymentDetails JSONMap         `json:"payment_details" db:"payment_details"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	ShippingCost   decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	Tax            decimal.Decimal `json:"tax" db:"tax"`
	Total          decimal.Decimal `json:"total" db:"total"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`

	Items []OrderItem `json:"items" db:"-"`
}

// ShippingInfo is the delivery block captured on the order row.
type ShippingInfo struct {
	FirstName  string `json:"first_name" db:"shipping_first_name"`
	LastName   string `json:"last_name" db:"shipping_last_name"`
	Email      string `json:"email" db:"shipping_email"`
	Address    string `json:"address" db:"shipping_address"`
	City       string `json:"city" db:"shipping_city"`
	PostalCode string `json:"postal_code" db:"shipping_postal_code"`
	Country    string `json:"country" db:"shipping_country"`
}

// OrderItem is the model for the 'order_items' table.
// Price is the unit price snapshotted when the order was created.
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"order_id" db:"order_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Size      string          `json:"size" db:"size"`
	Color     string          `json:"color" db:"color"`
	Price     decimal.Decimal `json:"price" db:"price"`

	Product *ProductSummary `json:"product,omitempty" db:"-"`
}

// LineTotal is price x quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
