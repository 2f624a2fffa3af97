// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ItemError describes why a single order line item was rejected.
type ItemError struct {
	Index     int       `json:"index"`
	ProductID uuid.UUID `json:"product_id"`
	Message   string    `json:"message"`
}

// OrderValidationError carries the per-item errors for a rejected order.
// The order is rejected as a whole; no stock is touched.
type OrderValidationError struct {
	Items []ItemError
}

// Error implements the error interface.
func (e *OrderValidationError) Error() string {
	msgs := make([]string, len(e.Items))
	for i, item := range e.Items {
		msgs[i] = item.Message
	}
	return strings.Join(msgs, "; ")
}

func itemNotExist(index int, id uuid.UUID) ItemError {
	return ItemError{
		Index:     index,
		ProductID: id,
		Message:   fmt.Sprintf("Product with id %s does not exist.", id),
	}
}

func itemInsufficientStock(index int, id uuid.UUID, name string, available, requested int) ItemError {
	return ItemError{
		Index:     index,
		ProductID: id,
		Message: fmt.Sprintf("Not enough stock for product %s. Available: %d, requested: %d",
			name, available, requested),
	}
}
