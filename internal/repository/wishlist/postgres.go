package wishlist

import (
	"context"
	"io"
	"log"

	"eventhub/internal/db"
	"eventhub/internal/domain"
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

func (r *postgresRepo) List(ctx context.Context, userID int64) ([]domain.WishlistItem, error) {
	const q = `
SELECT w.id, w.user_id, w.event_id, w.added_at,
       e.slug, e.title, e.description, e.image_url, e.location, e.date, e.category, e.price_cents
FROM wishlist w
JOIN events e ON e.id = w.event_id
WHERE w.user_id = $1
ORDER BY w.added_at DESC, w.id DESC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.WishlistItem{}
	for rows.Next() {
		var w domain.WishlistItem
		ev := &domain.Event{}
		if err := rows.Scan(
			&w.ID,
			&w.UserID,
			&w.EventID,
			&w.AddedAt,
			&ev.Slug,
			&ev.Title,
			&ev.Description,
			&ev.ImageURL,
			&ev.Location,
			&ev.Date,
			&ev.Category,
			&ev.PriceCents,
		); err != nil {
			return nil, err
		}
		ev.ID = w.EventID
		w.Event = ev
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Add(ctx context.Context, userID, eventID int64) (*domain.WishlistItem, error) {
	const q = `
INSERT INTO wishlist (user_id, event_id)
VALUES ($1, $2)
RETURNING id, user_id, event_id, added_at
`
	var w domain.WishlistItem
	if err := r.pool.QueryRow(ctx, q, userID, eventID).Scan(&w.ID, &w.UserID, &w.EventID, &w.AddedAt); err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, domain.Conflict("event already in wishlist")
		case db.IsForeignKeyViolation(err):
			return nil, domain.NotFound("event not found")
		}
		r.logger.Printf("wishlist repo: add user=%d event=%d error=%v", userID, eventID, err)
		return nil, err
	}
	return &w, nil
}

func (r *postgresRepo) Remove(ctx context.Context, userID, eventID int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM wishlist WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("wishlist item not found")
	}
	return nil
}
