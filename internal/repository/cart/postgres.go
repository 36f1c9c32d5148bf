package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"eventhub/internal/db"
	"eventhub/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error) {
	var cart *domain.Cart
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		c, err := ensureCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		cart, err = loadCart(ctx, tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepo) UpsertItem(ctx context.Context, userID int64, in UpsertItemInput) (*domain.Cart, error) {
	var cart *domain.Cart
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		c, err := ensureCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		var price int64
		if err := tx.QueryRow(ctx, `SELECT price_cents FROM events WHERE id = $1`, in.EventID).Scan(&price); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NotFound("event not found")
			}
			return err
		}
		if in.PriceCents != nil {
			price = *in.PriceCents
		}

		// The whole line is replaced so a re-add never accumulates quantity.
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (cart_id, event_id, quantity, price_cents, customized_items)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (cart_id, event_id) DO UPDATE
SET quantity = EXCLUDED.quantity,
    price_cents = EXCLUDED.price_cents,
    customized_items = EXCLUDED.customized_items
`, c.ID, in.EventID, in.Quantity, price, customization(in.CustomizedItems)); err != nil {
			return err
		}
		if err := touch(ctx, tx, c.ID); err != nil {
			return err
		}
		cart, err = loadCart(ctx, tx, c)
		return err
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("cart repo: upsert item user=%d event=%d error=%v", userID, in.EventID, err)
		}
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepo) RemoveItem(ctx context.Context, userID, cartItemID int64) (*domain.Cart, error) {
	var cart *domain.Cart
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		c, err := ensureCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, cartItemID, c.ID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.NotFound("cart item not found")
		}
		if err := touch(ctx, tx, c.ID); err != nil {
			return err
		}
		cart, err = loadCart(ctx, tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepo) Clear(ctx context.Context, userID int64) (*domain.Cart, error) {
	var cart *domain.Cart
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		c, err := ensureCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, c.ID); err != nil {
			return err
		}
		if err := touch(ctx, tx, c.ID); err != nil {
			return err
		}
		cart, err = loadCart(ctx, tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// ensureCart returns the user's cart, creating it on first use.
func ensureCart(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id, user_id, created_at
`
	var c domain.Cart
	if err := tx.QueryRow(ctx, q, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt); err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, domain.NotFound("user not found")
		}
		return nil, err
	}
	return &c, nil
}

func touch(ctx context.Context, tx pgx.Tx, cartID int64) error {
	_, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}

func loadCart(ctx context.Context, tx pgx.Tx, c *domain.Cart) (*domain.Cart, error) {
	const q = `
SELECT ci.id, ci.cart_id, ci.event_id, ci.quantity, ci.price_cents, ci.customized_items, ci.created_at,
       e.slug, e.title, e.image_url, e.location, e.category, e.price_cents
FROM cart_items ci
JOIN events e ON e.id = ci.event_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at ASC, ci.id ASC
`
	rows, err := tx.Query(ctx, q, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c.Items = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		var custom []byte
		ev := &domain.Event{}
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.EventID,
			&item.Quantity,
			&item.PriceCents,
			&custom,
			&item.CreatedAt,
			&ev.Slug,
			&ev.Title,
			&ev.ImageURL,
			&ev.Location,
			&ev.Category,
			&ev.PriceCents,
		); err != nil {
			return nil, err
		}
		if len(custom) > 0 {
			item.CustomizedItems = json.RawMessage(custom)
		}
		ev.ID = item.EventID
		item.Event = ev
		c.Items = append(c.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// customization maps an absent payload to SQL NULL and passes anything else
// through as text so the json column keeps it byte for byte.
func customization(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
