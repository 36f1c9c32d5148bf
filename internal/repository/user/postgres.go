package user

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"eventhub/internal/db"
	"eventhub/internal/domain"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const userColumns = `id, email, password_hash, first_name, last_name, phone, terms_agreed, is_admin, created_at, updated_at`

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

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (email, password_hash, first_name, last_name, phone, terms_agreed, is_admin)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, q,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.Phone,
		u.TermsAgreed,
		u.IsAdmin,
	))
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = lower($1) LIMIT 1`
	return r.scanUser(r.pool.QueryRow(ctx, q, strings.TrimSpace(email)))
}

func (r *postgresRepo) UpdateProfile(ctx context.Context, id int64, p ProfilePatch) (*domain.User, error) {
	if p.Empty() {
		return r.GetByID(ctx, id)
	}
	b := qb.Update("users").Set("updated_at", sq.Expr("now()")).Where(sq.Eq{"id": id})
	if p.FirstName != nil {
		b = b.Set("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		b = b.Set("last_name", *p.LastName)
	}
	if p.Phone != nil {
		b = b.Set("phone", *p.Phone)
	}
	q, args, err := b.Suffix("RETURNING " + userColumns).ToSql()
	if err != nil {
		return nil, err
	}
	return r.scanUser(r.pool.QueryRow(ctx, q, args...))
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *postgresRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
	if err != nil {
		r.logger.Printf("user repo: update password id=%d error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("user repo: delete id=%d error=%v", id, err)
		return db.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) EnsureAdmin(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (email, password_hash, first_name, last_name, phone, terms_agreed, is_admin)
VALUES ($1, $2, $3, $4, $5, TRUE, TRUE)
ON CONFLICT (email) DO UPDATE
SET is_admin = TRUE, updated_at = now()
RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, q,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.Phone,
	))
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.TermsAgreed,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		mapped := db.MapError(err)
		if !errors.Is(mapped, domain.ErrNotFound) && !errors.Is(mapped, domain.ErrAlreadyExists) {
			r.logger.Printf("user repo: scan error=%v", err)
		}
		return nil, mapped
	}
	return &u, nil
}
