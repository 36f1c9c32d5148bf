// Package dbtest opens a migrated, empty Postgres database for integration tests.
package dbtest

import (
	"context"
	"os"
	"testing"

	"eventhub/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool connects to TEST_DB_DSN, applies migrations and truncates every table.
// The test is skipped when TEST_DB_DSN is unset.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `
TRUNCATE wishlist, payment_methods, addresses, order_items, orders, cart_items, carts, event_items, events, users
RESTART IDENTITY CASCADE
`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return pool
}

// User inserts a user and returns its id.
func User(t *testing.T, pool *pgxpool.Pool, email string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
INSERT INTO users (email, password_hash, first_name, last_name, phone)
VALUES ($1, 'x', 'Test', 'User', '9999999999')
RETURNING id
`, email).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

// Event inserts an event with the given title and price and returns its id.
func Event(t *testing.T, pool *pgxpool.Pool, slug, title string, priceCents int64) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
INSERT INTO events (slug, title, category, price_cents)
VALUES ($1, $2, 'wedding', $3)
RETURNING id
`, slug, title, priceCents).Scan(&id)
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	return id
}
