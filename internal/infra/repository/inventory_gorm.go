package repository

import (
	"context"
	"fmt"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

// InventoryGormRepository is the only writer of products.stock. Admin
// adjustments go through SetStock, sales through DecreaseStockIfEnough.
type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

func (r *InventoryGormRepository) product(ctx context.Context, productID int64) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", productID)
}

// SetStock overwrites the stock of one product. The stock >= 0 check
// constraint rejects negative values.
func (r *InventoryGormRepository) SetStock(ctx context.Context, productID int64, newStock int64) error {
	res := r.product(ctx, productID).Update("stock", newStock)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// DecreaseStockIfEnough takes qty units off a product and reports false,
// leaving the row untouched, when fewer than qty are left.
//
// Checkout has already locked every product row of the order FOR UPDATE in
// ascending id order before calling this, so on postgres the stock >= ?
// guard never races. It stays in the statement so sqlite and any caller
// that skips the lock still cannot oversell.
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	if qty <= 0 {
		return false, fmt.Errorf("decrease stock of product %d: quantity %d is not positive", productID, qty)
	}
	res := r.product(ctx, productID).
		Where("stock >= ?", qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// CreateAdjustment appends to the audit trail. Rows are never updated.
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return translateError(err)
	}
	return nil
}
