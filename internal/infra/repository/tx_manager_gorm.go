package repository

import (
	"context"

	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

// txBound hands out repositories built on one transaction handle. The
// repositories are thin wrappers, so they are built per call.
type txBound struct {
	tx *gorm.DB
}

func (b txBound) Orders() repo.OrderRepository         { return NewOrderGormRepository(b.tx) }
func (b txBound) OrderItems() repo.OrderItemRepository { return NewOrderItemGormRepository(b.tx) }
func (b txBound) Carts() repo.CartRepository           { return NewCartGormRepository(b.tx) }
func (b txBound) CartItems() repo.CartItemRepository   { return NewCartItemGormRepository(b.tx) }
func (b txBound) Inventory() repo.InventoryRepository  { return NewInventoryGormRepository(b.tx) }
func (b txBound) Products() repo.ProductRepository     { return NewProductGormRepository(b.tx) }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// WithinTx runs fn in one transaction and returns fn's error unwrapped, so
// callers can still match domain errors. Nothing inside fn may touch the
// outer *gorm.DB: its writes would escape the rollback and, on postgres,
// wait on the row locks this transaction holds.
// A context that is already done never opens a transaction.
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txBound{tx: tx})
	})
}

var _ repo.TransactionManager = (*TxManagerGorm)(nil)
