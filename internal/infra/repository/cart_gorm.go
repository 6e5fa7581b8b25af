package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// GetOrCreateByUserID returns the user's cart, creating it on first use.
// Two concurrent callers both end up with the same row.
func (r *CartGormRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	newCart := model.Cart{UserID: userID}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&newCart).Error
	if err != nil {
		return model.Cart{}, translateError(err)
	}

	return r.FindByUserID(ctx, userID)
}

func (r *CartGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return model.Cart{}, translateError(err)
	}
	return cart, nil
}

func (r *CartGormRepository) FindByID(ctx context.Context, cartID int64) (model.Cart, error) {
	var cart model.Cart

	if err := r.db.WithContext(ctx).First(&cart, cartID).Error; err != nil {
		return model.Cart{}, translateError(err)
	}
	return cart, nil
}

// LockByUserID reads the cart under a NOWAIT row lock. A conflicting
// holder yields repo.ErrLockNotAvailable.
func (r *CartGormRepository) LockByUserID(ctx context.Context, userID int64, strength repo.LockStrength) (model.Cart, error) {
	var cart model.Cart

	err := withCartLock(r.db.WithContext(ctx), strength).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return model.Cart{}, translateError(err)
	}
	return cart, nil
}

func (r *CartGormRepository) LockByID(ctx context.Context, cartID int64, strength repo.LockStrength) (model.Cart, error) {
	var cart model.Cart

	err := withCartLock(r.db.WithContext(ctx), strength).
		Where("id = ?", cartID).
		First(&cart).Error
	if err != nil {
		return model.Cart{}, translateError(err)
	}
	return cart, nil
}

func (r *CartGormRepository) SetLockedAt(ctx context.Context, cartID int64, lockedAt *time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("locked_at", lockedAt)

	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
