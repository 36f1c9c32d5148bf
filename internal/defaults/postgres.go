package defaults

import (
	"context"
	"errors"
	"fmt"

	"eventhub/internal/domain"
	"github.com/jackc/pgx/v5"
)

// tables that carry a user_id and is_default column.
var tables = map[string]bool{
	"addresses":       true,
	"payment_methods": true,
}

type pgStore struct {
	tx    pgx.Tx
	table string
}

// NewPostgresStore binds a Store to an open transaction. The table name is
// interpolated into SQL so only known tables are accepted.
func NewPostgresStore(tx pgx.Tx, table string) (Store, error) {
	if !tables[table] {
		return nil, fmt.Errorf("defaults: unsupported table %q", table)
	}
	return &pgStore{tx: tx, table: table}, nil
}

func (s *pgStore) LockOwner(ctx context.Context, userID int64) error {
	var id int64
	err := s.tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound("user not found")
	}
	return err
}

func (s *pgStore) Count(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.tx.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s WHERE user_id = $1`, s.table), userID).Scan(&n)
	return n, err
}

func (s *pgStore) ClearDefaults(ctx context.Context, userID int64) error {
	_, err := s.tx.Exec(ctx, fmt.Sprintf(`
UPDATE %s
SET is_default = FALSE, updated_at = now()
WHERE user_id = $1 AND is_default
`, s.table), userID)
	return err
}

func (s *pgStore) SetDefault(ctx context.Context, userID, id int64) error {
	cmd, err := s.tx.Exec(ctx, fmt.Sprintf(`
UPDATE %s
SET is_default = TRUE, updated_at = now()
WHERE id = $1 AND user_id = $2
`, s.table), id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return s.notFound()
	}
	return nil
}

func (s *pgStore) IsDefault(ctx context.Context, userID, id int64) (bool, error) {
	var isDefault bool
	err := s.tx.QueryRow(ctx, fmt.Sprintf(`SELECT is_default FROM %s WHERE id = $1 AND user_id = $2`, s.table), id, userID).Scan(&isDefault)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, s.notFound()
	}
	return isDefault, err
}

func (s *pgStore) Delete(ctx context.Context, userID, id int64) (bool, error) {
	var wasDefault bool
	err := s.tx.QueryRow(ctx, fmt.Sprintf(`
DELETE FROM %s
WHERE id = $1 AND user_id = $2
RETURNING is_default
`, s.table), id, userID).Scan(&wasDefault)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, s.notFound()
	}
	return wasDefault, err
}

func (s *pgStore) PromoteOldest(ctx context.Context, userID int64) error {
	_, err := s.tx.Exec(ctx, fmt.Sprintf(`
UPDATE %[1]s
SET is_default = TRUE, updated_at = now()
WHERE id = (SELECT min(id) FROM %[1]s WHERE user_id = $1)
`, s.table), userID)
	return err
}

func (s *pgStore) notFound() error {
	if s.table == "addresses" {
		return domain.NotFound("address not found")
	}
	return domain.NotFound("payment method not found")
}
