package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// LockStrength selects the row lock taken on a cart. Locks never wait:
// a conflicting holder yields ErrLockNotAvailable.
type LockStrength int

const (
	// item mutations
	LockForShare LockStrength = iota
	// checkout
	LockForUpdate
)

type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByID(ctx context.Context, cartID int64) (model.Cart, error)
	LockByUserID(ctx context.Context, userID int64, strength LockStrength) (model.Cart, error)
	LockByID(ctx context.Context, cartID int64, strength LockStrength) (model.Cart, error)
	// nil clears the lock
	SetLockedAt(ctx context.Context, cartID int64, lockedAt *time.Time) error
}
