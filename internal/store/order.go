// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"loopstore/internal/models"
)

// OrderStore handles order persistence, creation, and status transitions.
type OrderStore struct {
	db *sql.DB
}

// NewOrderStore creates a new OrderStore with the given database connection.
func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

const orderColumns = `id, order_number, name, email, phone, address, city, postal_code,
	country, items, status, payment_status, shipping_status, total_amount,
	shipping_cost, tracking_number, notes, created_at, updated_at`

// scanOrder scans a row into an Order struct, decoding the items snapshot.
func scanOrder(scanner interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	var items []byte
	err := scanner.Scan(
		&o.ID, &o.OrderNumber, &o.Name, &o.Email, &o.Phone, &o.Address, &o.City,
		&o.PostalCode, &o.Country, &items, &o.Status, &o.PaymentStatus,
		&o.ShippingStatus, &o.TotalAmount, &o.ShippingCost, &o.TrackingNumber,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	return &o, nil
}

// Create validates and persists a new order in a single transaction.
//
// Every referenced product row is locked with SELECT ... FOR UPDATE before
// validation, so a concurrent order for the last unit cannot also succeed.
// Quantities are aggregated per product first, so an order naming the same
// product on several lines is checked against the combined demand. If any
// line item references a missing product or exceeds available stock, the
// whole order is rejected with an *OrderValidationError listing every
// failing item, and no state changes. On success, stock is decremented, the
// order number is allocated from a per-day atomic counter, the total is
// computed when not supplied, and an initial history row is appended.
func (s *OrderStore) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Aggregate demand per product. Errors are attributed to the first line
	// item naming the product.
	type demand struct {
		index    int
		quantity int
	}
	demands := make(map[uuid.UUID]*demand, len(o.Items))
	ids := make([]uuid.UUID, 0, len(o.Items))
	for i, item := range o.Items {
		if d, ok := demands[item.ProductID]; ok {
			d.quantity += item.Quantity
			continue
		}
		demands[item.ProductID] = &demand{index: i, quantity: item.Quantity}
		ids = append(ids, item.ProductID)
	}

	// Lock products in a stable order so two concurrent orders touching the
	// same products cannot deadlock each other.
	sort.Slice(ids, func(a, b int) bool { return ids[a].String() < ids[b].String() })

	var itemErrs []ItemError
	for _, id := range ids {
		d := demands[id]
		var name string
		var stock int
		err := tx.QueryRowContext(ctx, `
			SELECT name, stock FROM products WHERE id = $1 FOR UPDATE
		`, id).Scan(&name, &stock)
		if err == sql.ErrNoRows {
			itemErrs = append(itemErrs, itemNotExist(d.index, id))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lock product %s: %w", id, err)
		}
		if stock < d.quantity {
			itemErrs = append(itemErrs, itemInsufficientStock(d.index, id, name, stock, d.quantity))
		}
	}
	if len(itemErrs) > 0 {
		sort.Slice(itemErrs, func(a, b int) bool { return itemErrs[a].Index < itemErrs[b].Index })
		return nil, &OrderValidationError{Items: itemErrs}
	}

	// Decrement stock, once per product. The rows are locked and validated
	// above, so the WHERE guard cannot miss; treat a zero update as a bug.
	for _, id := range ids {
		d := demands[id]
		res, err := tx.ExecContext(ctx, `
			UPDATE products SET
				stock = stock - $1,
				status = CASE WHEN stock - $1 = 0 THEN 'out_of_stock' ELSE status END,
				updated_at = NOW()
			WHERE id = $2 AND stock >= $1
		`, d.quantity, id)
		if err != nil {
			return nil, fmt.Errorf("decrement stock for %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("decrement stock rows: %w", err)
		}
		if n == 0 {
			return nil, fmt.Errorf("stock changed under lock for %s", id)
		}
	}

	number, err := s.nextOrderNumber(ctx, tx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if o.TotalAmount.IsZero() {
		o.TotalAmount = o.ItemsTotal().Add(o.ShippingCost)
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = models.PaymentStatusPending
	}
	if o.ShippingStatus == "" {
		o.ShippingStatus = models.ShippingStatusPending
	}

	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("encode order items: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO orders (order_number, name, email, phone, address, city, postal_code,
		                    country, items, status, payment_status, shipping_status,
		                    total_amount, shipping_cost, tracking_number, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+orderColumns,
		number, o.Name, o.Email, o.Phone, o.Address, o.City, o.PostalCode,
		o.Country, itemsJSON, o.Status, o.PaymentStatus, o.ShippingStatus,
		o.TotalAmount, o.ShippingCost, o.TrackingNumber, o.Notes,
	)
	created, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, status, notes)
		VALUES ($1, $2, $3)
	`, created.ID, created.Status, "Order created")
	if err != nil {
		return nil, fmt.Errorf("create order history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}
	return created, nil
}

// nextOrderNumber allocates ORD-YYYYMMDD-NNNN for the given day. The
// sequence lives in order_day_counters and resets per day; the upsert
// increments it atomically inside the creating transaction, so concurrent
// creations can never share a number.
func (s *OrderStore) nextOrderNumber(ctx context.Context, tx *sql.Tx, now time.Time) (string, error) {
	day := now.Format("2006-01-02")
	var seq int
	err := tx.QueryRowContext(ctx, `
		INSERT INTO order_day_counters (day, seq) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET seq = order_day_counters.seq + 1
		RETURNING seq
	`, day).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), seq), nil
}

// OrderFilter narrows the order listing. Zero values impose no constraint.
type OrderFilter struct {
	Status        string
	PaymentStatus string
	Email         string
}

// List returns orders newest first, optionally filtered.
func (s *OrderStore) List(f OrderFilter) ([]models.Order, error) {
	conds := []string{"TRUE"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		conds = append(conds, "status = "+arg(f.Status))
	}
	if f.PaymentStatus != "" {
		conds = append(conds, "payment_status = "+arg(f.PaymentStatus))
	}
	if f.Email != "" {
		conds = append(conds, "email = "+arg(f.Email))
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE `
	for i, c := range conds {
		if i > 0 {
			query += " AND "
		}
		query += c
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var items []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		items = append(items, *o)
	}
	return items, rows.Err()
}

// FindByNumber retrieves an order by its order number, including its status
// history oldest first. Returns nil if not found.
func (s *OrderStore) FindByNumber(number string) (*models.Order, error) {
	row := s.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order by number: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT id, order_id, status, notes, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at
	`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ev models.OrderStatusEvent
		if err := rows.Scan(&ev.ID, &ev.OrderID, &ev.Status, &ev.Notes, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history event: %w", err)
		}
		o.History = append(o.History, ev)
	}
	return o, rows.Err()
}

// UpdateStatus sets an order's status and appends a history row with the
// optional notes. The caller validates the status value; any recognized
// status may follow any other. Returns nil if the order does not exist.
func (s *OrderStore) UpdateStatus(number string, status models.OrderStatus, notes string) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var orderID uuid.UUID
	err = tx.QueryRow(`
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE order_number = $2
		RETURNING id
	`, status, number).Scan(&orderID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO order_status_history (order_id, status, notes)
		VALUES ($1, $2, $3)
	`, orderID, status, notes)
	if err != nil {
		return nil, fmt.Errorf("append order history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}
	return s.FindByNumber(number)
}

// UpdatePaymentStatus sets an order's payment status. No history row is
// recorded for payment transitions. Returns nil if the order does not exist.
func (s *OrderStore) UpdatePaymentStatus(number string, status models.PaymentStatus) (*models.Order, error) {
	res, err := s.db.Exec(`
		UPDATE orders SET payment_status = $1, updated_at = NOW()
		WHERE order_number = $2
	`, status, number)
	if err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.FindByNumber(number)
}

// UpdateShippingStatus sets an order's shipping status and optionally the
// tracking number. Returns nil if the order does not exist.
func (s *OrderStore) UpdateShippingStatus(number string, status models.ShippingStatus, trackingNumber string) (*models.Order, error) {
	var res sql.Result
	var err error
	if trackingNumber != "" {
		res, err = s.db.Exec(`
			UPDATE orders SET shipping_status = $1, tracking_number = $2, updated_at = NOW()
			WHERE order_number = $3
		`, status, trackingNumber, number)
	} else {
		res, err = s.db.Exec(`
			UPDATE orders SET shipping_status = $1, updated_at = NOW()
			WHERE order_number = $2
		`, status, number)
	}
	if err != nil {
		return nil, fmt.Errorf("update shipping status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.FindByNumber(number)
}
