package order

import (
	"context"
	"errors"
	"io"
	"log"

	"eventhub/internal/db"
	"eventhub/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, user_id, order_number, total_cents, status, shipping_address, shipping_city,
       shipping_state, shipping_pincode, payment_method, payment_status, created_at, updated_at`

type postgresRepo struct {
	pool      *pgxpool.Pool
	logger    *log.Logger
	newNumber func() string
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger, newNumber: NewOrderNumber}
}

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	var out *domain.Order
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		items, err := snapshot(ctx, tx, in.Items)
		if err != nil {
			return err
		}
		o, err := r.insertOrder(ctx, tx, in)
		if err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = o.ID
			if err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, event_id, event_title, price_cents, quantity)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`, o.ID, items[i].EventID, items[i].EventTitle, items[i].PriceCents, items[i].Quantity).Scan(&items[i].ID); err != nil {
				return err
			}
		}
		o.Items = items
		out = o
		return nil
	})
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, domain.NotFound("user not found")
		}
		if !errors.Is(err, domain.ErrConflict) {
			r.logger.Printf("order repo: create user=%d error=%v", in.UserID, err)
		}
		return nil, err
	}
	return out, nil
}

// insertOrder retries with a fresh order number when the previous one was
// already taken. Each attempt runs in a savepoint so a collision does not
// abort the surrounding transaction.
func (r *postgresRepo) insertOrder(ctx context.Context, tx pgx.Tx, in CreateInput) (*domain.Order, error) {
	const q = `
INSERT INTO orders (user_id, order_number, total_cents, status, shipping_address, shipping_city,
                    shipping_state, shipping_pincode, payment_method, payment_status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + orderColumns
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		sp, err := tx.Begin(ctx)
		if err != nil {
			return nil, err
		}
		o, err := scanOrder(sp.QueryRow(ctx, q,
			in.UserID,
			r.newNumber(),
			in.TotalCents,
			string(domain.OrderPending),
			in.ShippingAddress,
			in.ShippingCity,
			in.ShippingState,
			in.ShippingPincode,
			in.PaymentMethod,
			domain.PaymentPending,
		))
		if err != nil {
			_ = sp.Rollback(ctx)
			if db.IsUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		if err := sp.Commit(ctx); err != nil {
			return nil, err
		}
		return o, nil
	}
	return nil, domain.Conflict("could not allocate a unique order number")
}

// snapshot captures title and price for known events, preserving input order.
func snapshot(ctx context.Context, tx pgx.Tx, lines []LineInput) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		var it domain.OrderItem
		err := tx.QueryRow(ctx, `SELECT id, title, price_cents FROM events WHERE id = $1`, line.EventID).
			Scan(&it.EventID, &it.EventTitle, &it.PriceCents)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		it.Quantity = line.Quantity
		items = append(items, it)
	}
	return items, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
}

func (r *postgresRepo) Get(ctx context.Context, userID, id int64) (*domain.Order, error) {
	o, err := r.fetch(ctx, r.pool, userID, id, false)
	if err != nil {
		return nil, err
	}
	if err := loadItems(ctx, r.pool, []*domain.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) Transition(ctx context.Context, userID, id int64, to domain.OrderStatus, decide Decide) (*domain.Order, domain.OrderStatus, error) {
	var out *domain.Order
	var from domain.OrderStatus
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		o, err := r.fetch(ctx, tx, userID, id, true)
		if err != nil {
			return err
		}
		from = o.Status
		if err := decide(from); err != nil {
			return err
		}
		updated, err := scanOrder(tx.QueryRow(ctx, `
UPDATE orders
SET status = $1, updated_at = now()
WHERE id = $2
RETURNING `+orderColumns, string(to), id))
		if err != nil {
			return err
		}
		if err := loadItems(ctx, tx, []*domain.Order{updated}); err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return out, from, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *postgresRepo) fetch(ctx context.Context, q querier, userID, id int64, lock bool) (*domain.Order, error) {
	stmt := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND ($2::bigint = 0 OR user_id = $2)`
	if lock {
		stmt += ` FOR UPDATE`
	}
	o, err := scanOrder(q.QueryRow(ctx, stmt, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("order not found")
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := loadItems(ctx, r.pool, orders); err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, *o)
	}
	return out, nil
}

func loadItems(ctx context.Context, q querier, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		o.Items = []domain.OrderItem{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	rows, err := q.Query(ctx, `
SELECT id, order_id, event_id, event_title, price_cents, quantity
FROM order_items
WHERE order_id = ANY($1)
ORDER BY id
`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.EventID, &it.EventTitle, &it.PriceCents, &it.Quantity); err != nil {
			return err
		}
		if o := byID[it.OrderID]; o != nil {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status string
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.OrderNumber,
		&o.TotalCents,
		&status,
		&o.ShippingAddress,
		&o.ShippingCity,
		&o.ShippingState,
		&o.ShippingPincode,
		&o.PaymentMethod,
		&o.PaymentStatus,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
