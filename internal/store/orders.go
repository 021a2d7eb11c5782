package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/pricing"
	"github.com/shopspring/decimal"
)

// LineItem is one requested (product, quantity, size, color) tuple.
type LineItem struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// NewOrder is everything CreateOrder needs from the checkout request.
type NewOrder struct {
	UserID         int64
	Items          []LineItem
	Shipping       models.ShippingInfo
	PaymentMethod  string
	PaymentDetails models.JSONMap
}

func (n NewOrder) validate() error {
	if n.UserID == 0 {
		return apperr.New(apperr.Unauthenticated, "Authentication required")
	}
	if len(n.Items) == 0 {
		return apperr.Invalid("items", "Order must contain at least one item")
	}

	fields := map[string]string{}
	for i, it := range n.Items {
		if it.ProductID <= 0 {
			fields[fmt.Sprintf("items[%d].product_id", i)] = "Product is required"
		}
		if it.Quantity <= 0 {
			fields[fmt.Sprintf("items[%d].quantity", i)] = "Quantity must be at least 1"
		}
	}
	switch n.PaymentMethod {
	case models.PaymentCreditCard, models.PaymentPayPal:
	default:
		fields["payment_method"] = "Payment method must be credit_card or paypal"
	}
	if len(fields) > 0 {
		return &apperr.Error{Kind: apperr.Validation, Detail: "Invalid order", Fields: fields}
	}
	return nil
}

// CreateOrder prices and persists an order with one item per line. Every
// product is resolved inside the same transaction; a missing product rolls
// back the whole order. Item prices are snapshotted from the product row.
func (s *Store) CreateOrder(ctx context.Context, n NewOrder, policy pricing.Policy) (*models.Order, error) {
	if n.PaymentMethod == "" {
		n.PaymentMethod = models.PaymentCreditCard
	}
	if err := n.validate(); err != nil {
		return nil, err
	}
	if n.PaymentDetails == nil {
		n.PaymentDetails = models.JSONMap{}
	}

	now := s.now()
	order := models.Order{
		UserID:         n.UserID,
		Status:         models.OrderPending,
		Shipping:       n.Shipping,
		PaymentMethod:  n.PaymentMethod,
		PaymentDetails: n.PaymentDetails,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.withTx(ctx, serializable, func(tx *sql.Tx) error {
		// 1. --- Resolve every product and snapshot its price ---
		lines := make([]pricing.Line, 0, len(n.Items))
		items := make([]models.OrderItem, 0, len(n.Items))
		for _, it := range n.Items {
			var (
				summary   models.ProductSummary
				price     decimal.Decimal
				salePrice decimal.NullDecimal
			)
			err := tx.QueryRowContext(ctx,
				"SELECT id, name, slug, image, price, sale_price FROM products WHERE id = ?", it.ProductID,
			).Scan(&summary.ID, &summary.Name, &summary.Slug, &summary.Image, &price, &salePrice)
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.New(apperr.NotFound, "Product %d not found", it.ProductID)
			}
			if err != nil {
				return fmt.Errorf("resolve product %d: %w", it.ProductID, err)
			}

			var sale *decimal.Decimal
			if salePrice.Valid {
				sale = &salePrice.Decimal
			}
			unit := pricing.UnitPrice(price, sale)
			lines = append(lines, pricing.Line{UnitPrice: unit, Quantity: it.Quantity})
			items = append(items, models.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Size:      strings.TrimSpace(it.Size),
				Color:     strings.TrimSpace(it.Color),
				Price:     unit,
				Product:   &summary,
			})
		}

		// 2. --- Compute totals ---
		totals := policy.Compute(lines)
		order.Subtotal = totals.Subtotal
		order.ShippingCost = totals.Shipping
		order.Tax = totals.Tax
		order.Total = totals.Total

		// 3. --- Insert the order header ---
		sh := order.Shipping
		res, err := tx.ExecContext(ctx, `
			INSERT INTO orders
				(user_id, status, shipping_first_name, shipping_last_name, shipping_email,
				 shipping_address, shipping_city, shipping_postal_code, shipping_country,
				 payment_method, payment_details, subtotal, shipping_cost, tax, total, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			order.UserID, order.Status, sh.FirstName, sh.LastName, sh.Email,
			sh.Address, sh.City, sh.PostalCode, sh.Country,
			order.PaymentMethod, order.PaymentDetails, order.Subtotal, order.ShippingCost, order.Tax, order.Total,
			order.CreatedAt, order.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		order.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("order id: %w", err)
		}

		// 4. --- Insert the items ---
		for i := range items {
			items[i].OrderID = order.ID
			res, err := tx.ExecContext(ctx,
				"INSERT INTO order_items (order_id, product_id, quantity, size, color, price) VALUES (?, ?, ?, ?, ?, ?)",
				order.ID, items[i].ProductID, items[i].Quantity, items[i].Size, items[i].Color, items[i].Price,
			)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			if items[i].ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("order item id: %w", err)
			}
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

const orderColumns = `id, user_id, status, tracking_number,
	shipping_first_name, shipping_last_name, shipping_email, shipping_address,
	shipping_city, shipping_postal_code, shipping_country,
	payment_method, payment_details, subtotal, shipping_cost, tax, total, created_at, updated_at`

func scanOrder(row rowScanner) (models.Order, error) {
	var o models.Order
	sh := &o.Shipping
	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.TrackingNumber,
		&sh.FirstName, &sh.LastName, &sh.Email, &sh.Address,
		&sh.City, &sh.PostalCode, &sh.Country,
		&o.PaymentMethod, &o.PaymentDetails, &o.Subtotal, &o.ShippingCost, &o.Tax, &o.Total,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// ListOrders returns the caller's orders, newest first, with their items.
func (s *Store) ListOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := []models.Order{}
	index := map[int64]int{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Items = []models.OrderItem{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := s.orderItems(ctx, "o.user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return orders, nil
}

// GetOrder returns order id when it belongs to userID. Another user's order
// is reported as not found so that ids do not leak.
func (s *Store) GetOrder(ctx context.Context, userID, id int64) (*models.Order, error) {
	o, err := scanOrder(s.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = ? AND user_id = ?", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "Order %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	o.Items, err = s.orderItems(ctx, "oi.order_id = ?", o.ID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) orderItems(ctx context.Context, where string, arg any) ([]models.OrderItem, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.size, oi.color, oi.price,
		       p.name, p.slug, p.image
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE `+where+`
		ORDER BY oi.order_id ASC, oi.id ASC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		summary := &models.ProductSummary{}
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Size, &it.Color, &it.Price,
			&summary.Name, &summary.Slug, &summary.Image); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		summary.ID = it.ProductID
		it.Product = summary
		items = append(items, it)
	}
	return items, rows.Err()
}

// orderForPayment loads the fields payment flows need without an owner check.
func orderForPayment(ctx context.Context, q querier, id int64) (userID int64, status string, details models.JSONMap, err error) {
	err = q.QueryRowContext(ctx, "SELECT user_id, status, payment_details FROM orders WHERE id = ?", id).
		Scan(&userID, &status, &details)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", nil, apperr.New(apperr.NotFound, "Order %d not found", id)
	}
	if err != nil {
		return 0, "", nil, fmt.Errorf("load order %d: %w", id, err)
	}
	return userID, status, details, nil
}

// UpdateOrderStatus is the admin status transition. trackingNumber is
// applied only when non-empty.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status, trackingNumber string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, apperr.Invalid("status", "Unknown order status")
	}

	var userID int64
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		var err error
		userID, _, _, err = orderForPayment(ctx, tx, id)
		if err != nil {
			return err
		}
		query := "UPDATE orders SET status = ?, updated_at = ? WHERE id = ?"
		args := []any{status, s.now(), id}
		if trackingNumber != "" {
			query = "UPDATE orders SET status = ?, updated_at = ?, tracking_number = ? WHERE id = ?"
			args = []any{status, s.now(), trackingNumber, id}
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, userID, id)
}

// SetPaymentIntent records the payment handle created for a pending order.
func (s *Store) SetPaymentIntent(ctx context.Context, orderID int64, intentID string) error {
	return s.withTx(ctx, nil, func(tx *sql.Tx) error {
		_, _, details, err := orderForPayment(ctx, tx, orderID)
		if err != nil {
			return err
		}
		details = details.Merge(models.JSONMap{"payment_intent_id": intentID})
		if _, err := tx.ExecContext(ctx,
			"UPDATE orders SET payment_details = ?, updated_at = ? WHERE id = ?", details, s.now(), orderID); err != nil {
			return fmt.Errorf("save payment intent: %w", err)
		}
		return nil
	})
}
