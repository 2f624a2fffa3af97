// Package router sets up all HTTP routes and middleware chains for the
// loopstore API. It organizes routes into catalog and order groups with
// the shared logging and recovery middleware.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"loopstore/internal/handlers"
	"loopstore/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(catalog *handlers.Catalog, orders *handlers.Orders) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Liveness probe — no dependencies touched.
	r.Get("/healthcheck", healthHandler)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", catalog.ProductsList)
		r.Post("/", catalog.ProductCreate)
		r.Get("/{slug}", catalog.ProductDetail)
		r.Put("/{id:[0-9a-fA-F-]{36}}", catalog.ProductUpdate)
		r.Delete("/{id:[0-9a-fA-F-]{36}}", catalog.ProductDelete)
		r.Post("/{id}/update_stock", catalog.UpdateStock)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", catalog.CategoriesList)
		r.Post("/", catalog.CategoryCreate)
		r.Delete("/{id:[0-9a-fA-F-]{36}}", catalog.CategoryDelete)
		r.Get("/{slug}/products", catalog.CategoryProducts)
	})

	r.Get("/tags", catalog.TagsList)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orders.Create)
		r.Get("/", orders.List)
		r.Get("/{orderNumber}", orders.Detail)
		r.Post("/{orderNumber}/update_status", orders.UpdateStatus)
		r.Post("/{orderNumber}/update_payment_status", orders.UpdatePaymentStatus)
		r.Post("/{orderNumber}/update_shipping_status", orders.UpdateShippingStatus)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
