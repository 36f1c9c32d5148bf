package address

import (
	"context"
	"errors"
	"io"
	"log"

	"eventhub/internal/db"
	"eventhub/internal/defaults"
	"eventhub/internal/domain"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const table = "addresses"

const addressColumns = `id, user_id, address_line, city, state, postal_code, country, address_type, is_default, created_at, updated_at`

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

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

func (r *postgresRepo) List(ctx context.Context, userID int64) ([]domain.Address, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Create(ctx context.Context, userID int64, in CreateInput) (*domain.Address, error) {
	var out *domain.Address
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		store, err := defaults.NewPostgresStore(tx, table)
		if err != nil {
			return err
		}
		isDefault, err := defaults.OnCreate(ctx, store, userID, in.IsDefault)
		if err != nil {
			return err
		}
		out, err = scanAddress(tx.QueryRow(ctx, `
INSERT INTO addresses (user_id, address_line, city, state, postal_code, country, address_type, is_default)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+addressColumns,
			userID, in.AddressLine, in.City, in.State, in.PostalCode, in.Country, in.AddressType, isDefault))
		return err
	})
	if err != nil {
		r.logErr("create", userID, err)
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, userID, id int64, p Patch) (*domain.Address, error) {
	var out *domain.Address
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		store, err := defaults.NewPostgresStore(tx, table)
		if err != nil {
			return err
		}
		if err := store.LockOwner(ctx, userID); err != nil {
			return err
		}

		b := qb.Update(table).Set("updated_at", sq.Expr("now()")).Where(sq.Eq{"id": id, "user_id": userID})
		if p.AddressLine != nil {
			b = b.Set("address_line", *p.AddressLine)
		}
		if p.City != nil {
			b = b.Set("city", *p.City)
		}
		if p.State != nil {
			b = b.Set("state", *p.State)
		}
		if p.PostalCode != nil {
			b = b.Set("postal_code", *p.PostalCode)
		}
		if p.Country != nil {
			b = b.Set("country", *p.Country)
		}
		if p.AddressType != nil {
			b = b.Set("address_type", *p.AddressType)
		}
		q, args, err := b.ToSql()
		if err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, q, args...)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.NotFound("address not found")
		}

		if p.IsDefault != nil && *p.IsDefault {
			if err := defaults.OnSetDefault(ctx, store, userID, id); err != nil {
				return err
			}
		}
		out, err = scanAddress(tx.QueryRow(ctx, `SELECT `+addressColumns+` FROM addresses WHERE id = $1`, id))
		return err
	})
	if err != nil {
		r.logErr("update", userID, err)
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, userID, id int64) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		store, err := defaults.NewPostgresStore(tx, table)
		if err != nil {
			return err
		}
		return defaults.OnDelete(ctx, store, userID, id)
	})
	if err != nil {
		r.logErr("delete", userID, err)
	}
	return err
}

func (r *postgresRepo) logErr(op string, userID int64, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	r.logger.Printf("address repo: %s user=%d error=%v", op, userID, err)
}

func scanAddress(row pgx.Row) (*domain.Address, error) {
	var a domain.Address
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.AddressLine,
		&a.City,
		&a.State,
		&a.PostalCode,
		&a.Country,
		&a.AddressType,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
