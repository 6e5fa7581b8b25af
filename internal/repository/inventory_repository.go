package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type InventoryRepository interface {
	// Set the current stock value
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// Decrement only when stock >= qty. false means nothing was changed.
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
