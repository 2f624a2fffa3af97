// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. The tests live in an external package so they can route requests
// through the real router without creating an import cycle. Tests are skipped
// when PostgreSQL is unavailable; the catalog cache is left nil by default so
// the handlers run without Valkey.
package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	"loopstore/internal/cache"
	"loopstore/internal/database"
	"loopstore/internal/handlers"
	"loopstore/internal/models"
	"loopstore/internal/router"
	"loopstore/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "loopstore")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "loopstore")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB         *sql.DB
	Products   *store.ProductStore
	Categories *store.CategoryStore
	Tags       *store.TagStore
	Orders     *store.OrderStore
	Router     chi.Router
}

// newTestEnv builds the full handler stack against the test database with no
// catalog cache, matching a deployment without Valkey.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithCache(t, nil)
}

// newTestEnvWithCache builds the handler stack with the given catalog cache.
func newTestEnvWithCache(t *testing.T, catalogCache *cache.CatalogCache) *testEnv {
	t.Helper()

	db := testDB(t)
	products := store.NewProductStore(db)
	categories := store.NewCategoryStore(db)
	tags := store.NewTagStore(db)
	orders := store.NewOrderStore(db)

	catalog := handlers.NewCatalog(products, categories, tags, catalogCache)
	orderHandlers := handlers.NewOrders(orders, catalogCache)

	return &testEnv{
		DB:         db,
		Products:   products,
		Categories: categories,
		Tags:       tags,
		Orders:     orders,
		Router:     router.New(catalog, orderHandlers),
	}
}

// do runs a request through the router and returns the recorder.
func (env *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorded JSON response body.
func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// seedProduct inserts a product through the store and registers cleanup.
func (env *testEnv) seedProduct(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()

	created, err := env.Products.Create(&models.Product{
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Condition: models.ConditionGood,
		Size:      models.SizeM,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec(`DELETE FROM products WHERE id = $1`, created.ID)
	})
	return created
}

// cleanupOrders removes orders created under the given email.
func (env *testEnv) cleanupOrders(t *testing.T, email string) {
	t.Helper()
	t.Cleanup(func() {
		env.DB.Exec(`
			DELETE FROM order_status_history WHERE order_id IN
				(SELECT id FROM orders WHERE email = $1)
		`, email)
		env.DB.Exec(`DELETE FROM orders WHERE email = $1`, email)
	})
}

// uniqueEmail returns a throwaway customer email for a test.
func uniqueEmail(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8] + "@example.com"
}
