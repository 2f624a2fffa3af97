package handlers

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"loopstore/internal/models"
)

// Validation limits for catalog and order fields.
const (
	maxNameLen        = 255
	maxDescriptionLen = 10_000
	maxEmailLen       = 254
	maxAddressLen     = 1_000
	maxNotesLen       = 2_000
)

// emailPattern is a permissive shape check, not RFC validation.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validateProduct checks product create/update input and returns a per-field
// error map, empty when valid.
func validateProduct(req *productRequest) map[string]any {
	errs := map[string]any{}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs["name"] = "Name is required."
	} else if utf8.RuneCountInString(name) > maxNameLen {
		errs["name"] = "Name is too long (max 255 characters)."
	}
	if utf8.RuneCountInString(req.Description) > maxDescriptionLen {
		errs["description"] = "Description is too long (max 10,000 characters)."
	}
	if req.Price.IsNegative() {
		errs["price"] = "Price must not be negative."
	}
	if req.Stock < 0 {
		errs["stock"] = "Stock must be a non-negative integer."
	}
	if req.Condition != "" && !models.ProductCondition(req.Condition).Valid() {
		errs["condition"] = invalidChoice(req.Condition)
	}
	if req.Size != "" && !models.ProductSize(req.Size).Valid() {
		errs["size"] = invalidChoice(req.Size)
	}
	return errs
}

// validateOrder checks checkout input: customer fields plus the line items.
// Product existence and stock levels are validated later, inside the
// creating transaction.
func validateOrder(req *orderRequest) map[string]any {
	errs := map[string]any{}

	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "Name is required."
	}
	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		errs["email"] = "Email is required."
	case utf8.RuneCountInString(email) > maxEmailLen || !emailPattern.MatchString(email):
		errs["email"] = "Enter a valid email address."
	}
	if strings.TrimSpace(req.Address) == "" {
		errs["address"] = "Address is required."
	} else if utf8.RuneCountInString(req.Address) > maxAddressLen {
		errs["address"] = "Address is too long (max 1,000 characters)."
	}
	if utf8.RuneCountInString(req.Notes) > maxNotesLen {
		errs["notes"] = "Notes are too long (max 2,000 characters)."
	}
	if req.ShippingCost.IsNegative() {
		errs["shipping_cost"] = "Shipping cost must not be negative."
	}

	if len(req.Items) == 0 {
		errs["items"] = "Order must contain at least one item."
		return errs
	}
	var itemErrs []string
	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			itemErrs = append(itemErrs, itemMsg(i, "product_id is required."))
		}
		if item.Quantity < 1 {
			itemErrs = append(itemErrs, itemMsg(i, "quantity must be at least 1."))
		}
		if item.Price.IsNegative() {
			itemErrs = append(itemErrs, itemMsg(i, "price must not be negative."))
		}
	}
	if len(itemErrs) > 0 {
		errs["items"] = itemErrs
	}
	return errs
}

func itemMsg(index int, msg string) string {
	return fmt.Sprintf("Item %d: %s", index, msg)
}

// invalidChoice formats the rejection message for unrecognized enum values.
func invalidChoice(value string) string {
	return `"` + value + `" is not a valid choice.`
}
