package payment

import (
	"context"
	"errors"
	"io"
	"log"

	"eventhub/internal/db"
	"eventhub/internal/defaults"
	"eventhub/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const table = "payment_methods"

const paymentColumns = `id, user_id, card_type, last_four, expiry_month, expiry_year, is_default, created_at, updated_at`

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

func (r *postgresRepo) List(ctx context.Context, userID int64) ([]domain.PaymentMethod, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payment_methods WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.PaymentMethod{}
	for rows.Next() {
		pm, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *pm)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Create(ctx context.Context, userID int64, in CreateInput) (*domain.PaymentMethod, error) {
	var out *domain.PaymentMethod
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		store, err := defaults.NewPostgresStore(tx, table)
		if err != nil {
			return err
		}
		isDefault, err := defaults.OnCreate(ctx, store, userID, in.IsDefault)
		if err != nil {
			return err
		}
		out, err = scanPayment(tx.QueryRow(ctx, `
INSERT INTO payment_methods (user_id, card_type, last_four, expiry_month, expiry_year, is_default)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+paymentColumns,
			userID, in.CardType, in.LastFour, in.ExpiryMonth, in.ExpiryYear, isDefault))
		return err
	})
	if err != nil {
		r.logErr("create", userID, err)
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

func (r *postgresRepo) SetDefault(ctx context.Context, userID, id int64) (*domain.PaymentMethod, error) {
	var out *domain.PaymentMethod
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		store, err := defaults.NewPostgresStore(tx, table)
		if err != nil {
			return err
		}
		if err := defaults.OnSetDefault(ctx, store, userID, id); err != nil {
			return err
		}
		out, err = scanPayment(tx.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment_methods WHERE id = $1`, id))
		return err
	})
	if err != nil {
		r.logErr("set default", userID, err)
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) logErr(op string, userID int64, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	r.logger.Printf("payment repo: %s user=%d error=%v", op, userID, err)
}

func scanPayment(row pgx.Row) (*domain.PaymentMethod, error) {
	var pm domain.PaymentMethod
	if err := row.Scan(
		&pm.ID,
		&pm.UserID,
		&pm.CardType,
		&pm.LastFour,
		&pm.ExpiryMonth,
		&pm.ExpiryYear,
		&pm.IsDefault,
		&pm.CreatedAt,
		&pm.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &pm, nil
}
