package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

// Soft-deleted products are still shown on existing lines.
func preloadProduct(db *gorm.DB) *gorm.DB {
	return db.Preload("Product", func(tx *gorm.DB) *gorm.DB {
		return tx.Unscoped()
	})
}

func (r *CartItemGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	items := []model.CartItem{}

	err := preloadProduct(r.db.WithContext(ctx)).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.CartItem{}, translateError(err)
	}
	return items, nil
}

func (r *CartItemGormRepository) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	var item model.CartItem

	err := preloadProduct(r.db.WithContext(ctx)).
		Where("id = ?", cartItemID).
		First(&item).Error
	if err != nil {
		return model.CartItem{}, translateError(err)
	}
	return item, nil
}

// UpsertByCartAndProduct adds addQty to an existing line in a single
// statement. The unit price of an existing line is left untouched.
func (r *CartItemGormRepository) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64, unitPrice int64) (model.CartItem, error) {
	if addQty <= 0 {
		return model.CartItem{}, model.ErrInvalidQuantity
	}

	item := model.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  addQty,
		UnitPrice: unitPrice,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + ?", addQty),
				"updated_at": time.Now(),
			}),
		}).
		Create(&item).Error
	if err != nil {
		return model.CartItem{}, translateError(err)
	}

	var stored model.CartItem
	err = preloadProduct(r.db.WithContext(ctx)).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&stored).Error
	if err != nil {
		return model.CartItem{}, translateError(err)
	}
	return stored, nil
}

func (r *CartItemGormRepository) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Update("quantity", qty)

	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartItemGormRepository) DeleteByID(ctx context.Context, cartItemID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CartItem{}, cartItemID)

	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// DeleteByCartID removes every line of the cart and reports how many went.
func (r *CartItemGormRepository) DeleteByCartID(ctx context.Context, cartID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{})

	if res.Error != nil {
		return 0, translateError(res.Error)
	}
	return res.RowsAffected, nil
}
