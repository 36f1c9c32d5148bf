package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"eventhub/internal/db"
	"eventhub/internal/domain"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	eventColumns = `id, slug, title, description, image_url, location, date, category, price_cents, delivery_options, created_at, updated_at`
	itemColumns  = `id, event_id, name, description, quantity, price_cents, image_url, category`
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

func (r *postgresRepo) List(ctx context.Context, category string) ([]domain.Event, error) {
	b := qb.Select(eventColumns).From("events").OrderBy("created_at DESC", "id DESC")
	if category != "" {
		b = b.Where(sq.Eq{"category": category})
	}
	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Get(ctx context.Context, id int64) (*domain.Event, error) {
	ev, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return nil, r.mapErr("event", err)
	}
	items, err := r.items(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	ev.Items = items
	return ev, nil
}

func (r *postgresRepo) Create(ctx context.Context, in EventInput) (*domain.Event, error) {
	opts, err := marshalOptions(in.DeliveryOptions)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO events (slug, title, description, image_url, location, date, category, price_cents, delivery_options)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + eventColumns
	ev, err := scanEvent(r.pool.QueryRow(ctx, q,
		in.Slug, in.Title, in.Description, in.ImageURL, in.Location, in.Date, in.Category, in.PriceCents, opts))
	if err != nil {
		return nil, r.mapErr("event", err)
	}
	return ev, nil
}

func (r *postgresRepo) Update(ctx context.Context, id int64, p EventPatch) (*domain.Event, error) {
	b := qb.Update("events").Set("updated_at", sq.Expr("now()")).Where(sq.Eq{"id": id})
	if p.Title != nil {
		b = b.Set("title", *p.Title)
	}
	if p.Description != nil {
		b = b.Set("description", *p.Description)
	}
	if p.ImageURL != nil {
		b = b.Set("image_url", *p.ImageURL)
	}
	if p.Location != nil {
		b = b.Set("location", *p.Location)
	}
	if p.Date != nil {
		b = b.Set("date", *p.Date)
	}
	if p.Category != nil {
		b = b.Set("category", *p.Category)
	}
	if p.PriceCents != nil {
		b = b.Set("price_cents", *p.PriceCents)
	}
	if p.DeliveryOptions != nil {
		opts, err := marshalOptions(*p.DeliveryOptions)
		if err != nil {
			return nil, err
		}
		b = b.Set("delivery_options", opts)
	}
	q, args, err := b.Suffix("RETURNING id").ToSql()
	if err != nil {
		return nil, err
	}
	var updated int64
	if err := r.pool.QueryRow(ctx, q, args...).Scan(&updated); err != nil {
		return nil, r.mapErr("event", err)
	}
	return r.Get(ctx, updated)
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return domain.Conflict("event is referenced by existing orders")
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("event not found")
	}
	return nil
}

func (r *postgresRepo) UpsertBySlug(ctx context.Context, in EventInput, items []ItemInput) (*domain.Event, error) {
	opts, err := marshalOptions(in.DeliveryOptions)
	if err != nil {
		return nil, err
	}
	var id int64
	err = db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `
INSERT INTO events (slug, title, description, image_url, location, date, category, price_cents, delivery_options)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (slug) DO UPDATE
SET title = EXCLUDED.title,
    description = EXCLUDED.description,
    image_url = EXCLUDED.image_url,
    location = EXCLUDED.location,
    date = EXCLUDED.date,
    category = EXCLUDED.category,
    price_cents = EXCLUDED.price_cents,
    delivery_options = EXCLUDED.delivery_options,
    updated_at = now()
RETURNING id
`
		if err := tx.QueryRow(ctx, q,
			in.Slug, in.Title, in.Description, in.ImageURL, in.Location, in.Date, in.Category, in.PriceCents, opts,
		).Scan(&id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM event_items WHERE event_id = $1`, id); err != nil {
			return err
		}
		for _, it := range items {
			if _, err := insertItem(ctx, tx, id, it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Printf("event repo: upsert slug=%s error=%v", in.Slug, err)
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *postgresRepo) AddItem(ctx context.Context, eventID int64, in ItemInput) (*domain.EventItem, error) {
	it, err := insertItem(ctx, r.pool, eventID, in)
	if err != nil {
		return nil, r.mapErr("event", err)
	}
	return it, nil
}

func (r *postgresRepo) UpdateItem(ctx context.Context, eventID, itemID int64, p ItemPatch) (*domain.EventItem, error) {
	b := qb.Update("event_items").Where(sq.Eq{"id": itemID, "event_id": eventID})
	set := false
	if p.Name != nil {
		b, set = b.Set("name", *p.Name), true
	}
	if p.Description != nil {
		b, set = b.Set("description", *p.Description), true
	}
	if p.Quantity != nil {
		b, set = b.Set("quantity", *p.Quantity), true
	}
	if p.PriceCents != nil {
		b, set = b.Set("price_cents", *p.PriceCents), true
	}
	if p.ImageURL != nil {
		b, set = b.Set("image_url", *p.ImageURL), true
	}
	if p.Category != nil {
		b, set = b.Set("category", *p.Category), true
	}
	if !set {
		it, err := scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM event_items WHERE id = $1 AND event_id = $2`, itemID, eventID))
		if err != nil {
			return nil, r.mapErr("event item", err)
		}
		return it, nil
	}
	q, args, err := b.Suffix("RETURNING " + itemColumns).ToSql()
	if err != nil {
		return nil, err
	}
	it, err := scanItem(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, r.mapErr("event item", err)
	}
	return it, nil
}

func (r *postgresRepo) DeleteItem(ctx context.Context, eventID, itemID int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM event_items WHERE id = $1 AND event_id = $2`, itemID, eventID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("event item not found")
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *postgresRepo) items(ctx context.Context, q querier, eventID int64) ([]domain.EventItem, error) {
	rows, err := q.Query(ctx, `SELECT `+itemColumns+` FROM event_items WHERE event_id = $1 ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EventItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func insertItem(ctx context.Context, q querier, eventID int64, in ItemInput) (*domain.EventItem, error) {
	qty := in.Quantity
	if qty <= 0 {
		qty = 1
	}
	const stmt = `
INSERT INTO event_items (event_id, name, description, quantity, price_cents, image_url, category)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + itemColumns
	return scanItem(q.QueryRow(ctx, stmt, eventID, in.Name, in.Description, qty, in.PriceCents, in.ImageURL, in.Category))
}

// mapErr converts driver errors into domain errors naming the entity.
func (r *postgresRepo) mapErr(entity string, err error) error {
	switch mapped := db.MapError(err); {
	case errors.Is(mapped, domain.ErrNotFound):
		return domain.NotFound("%s not found", entity)
	case errors.Is(mapped, domain.ErrAlreadyExists):
		return domain.Conflict("%s already exists", entity)
	}
	r.logger.Printf("event repo: %s error=%v", entity, err)
	return err
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var ev domain.Event
	var opts []byte
	if err := row.Scan(
		&ev.ID,
		&ev.Slug,
		&ev.Title,
		&ev.Description,
		&ev.ImageURL,
		&ev.Location,
		&ev.Date,
		&ev.Category,
		&ev.PriceCents,
		&opts,
		&ev.CreatedAt,
		&ev.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(opts) > 0 && string(opts) != "null" {
		if err := json.Unmarshal(opts, &ev.DeliveryOptions); err != nil {
			return nil, fmt.Errorf("decode delivery options for event %d: %w", ev.ID, err)
		}
	}
	return &ev, nil
}

func scanItem(row pgx.Row) (*domain.EventItem, error) {
	var it domain.EventItem
	if err := row.Scan(
		&it.ID,
		&it.EventID,
		&it.Name,
		&it.Description,
		&it.Quantity,
		&it.PriceCents,
		&it.ImageURL,
		&it.Category,
	); err != nil {
		return nil, err
	}
	return &it, nil
}

func marshalOptions(opts []domain.DeliveryOption) ([]byte, error) {
	if len(opts) == 0 {
		return nil, nil
	}
	return json.Marshal(opts)
}
