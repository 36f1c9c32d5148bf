// Package defaults keeps at most one default row per user in a collection
// (addresses, payment methods) and guarantees exactly one whenever the
// collection is not empty.
package defaults

import "context"

// Store is the per-transaction view of one user-owned collection.
// IsDefault and Delete return domain.ErrNotFound when the row does not
// belong to the user.
type Store interface {
	// LockOwner serializes default maintenance for one user.
	LockOwner(ctx context.Context, userID int64) error
	Count(ctx context.Context, userID int64) (int, error)
	ClearDefaults(ctx context.Context, userID int64) error
	SetDefault(ctx context.Context, userID, id int64) error
	IsDefault(ctx context.Context, userID, id int64) (bool, error)
	Delete(ctx context.Context, userID, id int64) (wasDefault bool, err error)
	// PromoteOldest marks the remaining row with the lowest id as default.
	PromoteOldest(ctx context.Context, userID int64) error
}

// OnCreate decides the is_default flag for a row about to be inserted.
// The first row is always the default; a requested default clears the others.
func OnCreate(ctx context.Context, s Store, userID int64, requested bool) (bool, error) {
	if err := s.LockOwner(ctx, userID); err != nil {
		return false, err
	}
	n, err := s.Count(ctx, userID)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return true, nil
	}
	if !requested {
		return false, nil
	}
	if err := s.ClearDefaults(ctx, userID); err != nil {
		return false, err
	}
	return true, nil
}

// OnSetDefault makes id the only default of the user's collection.
func OnSetDefault(ctx context.Context, s Store, userID, id int64) error {
	if err := s.LockOwner(ctx, userID); err != nil {
		return err
	}
	isDefault, err := s.IsDefault(ctx, userID, id)
	if err != nil {
		return err
	}
	if isDefault {
		return nil
	}
	if err := s.ClearDefaults(ctx, userID); err != nil {
		return err
	}
	return s.SetDefault(ctx, userID, id)
}

// OnDelete removes id and promotes a successor when the default went away.
func OnDelete(ctx context.Context, s Store, userID, id int64) error {
	if err := s.LockOwner(ctx, userID); err != nil {
		return err
	}
	wasDefault, err := s.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !wasDefault {
		return nil
	}
	n, err := s.Count(ctx, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return s.PromoteOldest(ctx, userID)
}
