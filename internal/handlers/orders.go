// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"loopstore/internal/cache"
	"loopstore/internal/models"
	"loopstore/internal/store"
)

// Orders groups the checkout and order management handlers.
type Orders struct {
	orders       *store.OrderStore
	catalogCache *cache.CatalogCache
}

// NewOrders creates a new Orders handler group. catalogCache may be nil.
func NewOrders(orders *store.OrderStore, catalogCache *cache.CatalogCache) *Orders {
	return &Orders{orders: orders, catalogCache: catalogCache}
}

// orderItemRequest is one checkout line item.
type orderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// orderRequest is the checkout wire format.
type orderRequest struct {
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone"`
	Address      string             `json:"address"`
	City         string             `json:"city"`
	PostalCode   string             `json:"postal_code"`
	Country      string             `json:"country"`
	ShippingCost decimal.Decimal    `json:"shipping_cost"`
	Notes        string             `json:"notes"`
	Items        []orderItemRequest `json:"items"`
}

// Create serves POST /orders. Field validation happens here; product
// existence and stock checks run inside the creating transaction, so a
// rejected order never touches stock. Responds 201 with the serialized
// order, or 400 with the per-field error map.
func (h *Orders) Create(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if errs := validateOrder(&req); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	items := make([]models.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	order := &models.Order{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		ShippingCost: req.ShippingCost,
		Notes:        req.Notes,
		Items:        items,
	}

	created, err := h.orders.Create(r.Context(), order)
	if err != nil {
		var ve *store.OrderValidationError
		if errors.As(err, &ve) {
			msgs := make([]string, len(ve.Items))
			for i, item := range ve.Items {
				msgs[i] = item.Message
			}
			writeFieldErrors(w, map[string]any{"items": msgs})
			return
		}
		writeServerError(w, "create order failed", err)
		return
	}

	slog.Info("order created",
		"order_number", created.OrderNumber,
		"email", created.Email,
		"total", created.TotalAmount.String(),
	)

	// Stock changed, so cached listings are stale.
	h.catalogCache.Invalidate(r.Context())
	writeJSON(w, http.StatusCreated, created)
}

// List serves GET /orders, newest first, with optional status,
// payment_status, and email filters.
func (h *Orders) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.OrderFilter{
		Status:        q.Get("status"),
		PaymentStatus: q.Get("payment_status"),
		Email:         q.Get("email"),
	}
	if filter.Status != "" && !models.OrderStatus(filter.Status).Valid() {
		writeFieldErrors(w, map[string]any{"status": invalidChoice(filter.Status)})
		return
	}
	if filter.PaymentStatus != "" && !models.PaymentStatus(filter.PaymentStatus).Valid() {
		writeFieldErrors(w, map[string]any{"payment_status": invalidChoice(filter.PaymentStatus)})
		return
	}

	orders, err := h.orders.List(filter)
	if err != nil {
		writeServerError(w, "list orders failed", err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// Detail serves GET /orders/{orderNumber}, including the status history.
func (h *Orders) Detail(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "orderNumber")

	order, err := h.orders.FindByNumber(number)
	if err != nil {
		writeServerError(w, "find order failed", err)
		return
	}
	if order == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus serves POST /orders/{orderNumber}/update_status with body
// {"status": s, "notes": n?}. Any recognized status may follow any other;
// the transition appends a history row.
func (h *Orders) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "orderNumber")

	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	status := models.OrderStatus(req.Status)
	if !status.Valid() {
		writeFieldErrors(w, map[string]any{"status": invalidChoice(req.Status)})
		return
	}

	order, err := h.orders.UpdateStatus(number, status, req.Notes)
	if err != nil {
		writeServerError(w, "update order status failed", err)
		return
	}
	if order == nil {
		writeNotFound(w)
		return
	}

	slog.Info("order status updated", "order_number", number, "status", status)
	writeJSON(w, http.StatusOK, order)
}

// UpdatePaymentStatus serves POST /orders/{orderNumber}/update_payment_status
// with body {"payment_status": s}. No history row is appended.
func (h *Orders) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "orderNumber")

	var req struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	status := models.PaymentStatus(req.PaymentStatus)
	if !status.Valid() {
		writeFieldErrors(w, map[string]any{"payment_status": invalidChoice(req.PaymentStatus)})
		return
	}

	order, err := h.orders.UpdatePaymentStatus(number, status)
	if err != nil {
		writeServerError(w, "update payment status failed", err)
		return
	}
	if order == nil {
		writeNotFound(w)
		return
	}

	slog.Info("order payment status updated", "order_number", number, "payment_status", status)
	writeJSON(w, http.StatusOK, order)
}

// UpdateShippingStatus serves POST /orders/{orderNumber}/update_shipping_status
// with body {"shipping_status": s, "tracking_number": t?}.
func (h *Orders) UpdateShippingStatus(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "orderNumber")

	var req struct {
		ShippingStatus string `json:"shipping_status"`
		TrackingNumber string `json:"tracking_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	status := models.ShippingStatus(req.ShippingStatus)
	if !status.Valid() {
		writeFieldErrors(w, map[string]any{"shipping_status": invalidChoice(req.ShippingStatus)})
		return
	}

	order, err := h.orders.UpdateShippingStatus(number, status, req.TrackingNumber)
	if err != nil {
		writeServerError(w, "update shipping status failed", err)
		return
	}
	if order == nil {
		writeNotFound(w)
		return
	}

	slog.Info("order shipping status updated", "order_number", number, "shipping_status", status)
	writeJSON(w, http.StatusOK, order)
}
