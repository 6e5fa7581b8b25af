package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartItemRepository interface {
	// Items come back with their Product preloaded, oldest first.
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	// Adds to the quantity of an existing line; unitPrice is only used on insert.
	UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64, unitPrice int64) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	DeleteByCartID(ctx context.Context, cartID int64) (int64, error)
}
