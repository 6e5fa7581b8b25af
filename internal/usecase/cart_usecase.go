package usecase

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/rs/zerolog"
)

// MaxItemQuantity bounds the quantity of one cart line.
const MaxItemQuantity = 99

// CartUsecase holds the /cart business rules. Each mutation runs in its own
// short transaction and takes a non-waiting shared lock on the cart row, so
// it fails fast with CartLocked while a checkout holds the row.
type CartUsecase struct {
	tx       repo.TransactionManager
	carts    repo.CartRepository
	items    repo.CartItemRepository
	products repo.ProductRepository
	shipping ShippingPolicy
	log      zerolog.Logger
}

func NewCartUsecase(
	tx repo.TransactionManager,
	carts repo.CartRepository,
	items repo.CartItemRepository,
	products repo.ProductRepository,
	shipping ShippingPolicy,
	logger zerolog.Logger,
) *CartUsecase {
	return &CartUsecase{
		tx:       tx,
		carts:    carts,
		items:    items,
		products: products,
		shipping: shipping,
		log:      logger.With().Str("usecase", "cart").Logger(),
	}
}

// CartItemUpdate reports the outcome of a quantity edit. A quantity below 1
// removes the line; Item then holds the line as it was before removal.
type CartItemUpdate struct {
	Item    model.CartItem `json:"item"`
	Removed bool           `json:"removed"`
}

// GetCart returns the user's cart, creating an empty one on first use.
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartView, error) {
	if userID <= 0 {
		return CartView{}, model.ErrUnauthenticated
	}

	cart, err := u.carts.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartView{}, fmt.Errorf("get cart: %w", err)
	}

	items, err := u.items.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartView{}, fmt.Errorf("list cart items: %w", err)
	}

	return buildCartView(cart, items, u.shipping), nil
}

// AddItem adds quantity of a product to the user's cart. Stock is checked
// against the requested quantity only; the full cart is re-validated at checkout.
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, productID int64, quantity int64) (model.CartItem, error) {
	if userID <= 0 {
		return model.CartItem{}, model.ErrUnauthenticated
	}
	if productID <= 0 {
		return model.CartItem{}, model.InvalidInput("invalid product_id")
	}
	if quantity < 1 {
		return model.CartItem{}, model.ErrInvalidQuantity
	}
	if quantity > MaxItemQuantity {
		return model.CartItem{}, model.InvalidInput(fmt.Sprintf("quantity must be at most %d", MaxItemQuantity))
	}

	p, err := u.products.FindByID(ctx, productID)
	if err != nil {
		return model.CartItem{}, notFoundAs(err, model.ErrProductNotFound, "find product")
	}
	if p.Stock < quantity {
		return model.CartItem{}, model.NewInsufficientStockError(p, quantity)
	}

	cart, err := u.carts.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return model.CartItem{}, fmt.Errorf("get cart: %w", err)
	}

	var item model.CartItem
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := lockCartForMutation(ctx, r, cart.ID); err != nil {
			return err
		}

		// existing line: quantity grows, unit price stays at the first-add snapshot
		var err error
		item, err = r.CartItems().UpsertByCartAndProduct(ctx, cart.ID, p.ID, quantity, p.Price)
		if err != nil {
			return fmt.Errorf("upsert cart item: %w", err)
		}
		// merged line; returning the error rolls the upsert back
		if item.Quantity > MaxItemQuantity {
			return model.InvalidInput(fmt.Sprintf("quantity must be at most %d", MaxItemQuantity))
		}
		return nil
	})
	if err != nil {
		return model.CartItem{}, err
	}

	u.log.Debug().
		Int64("user_id", userID).
		Int64("product_id", productID).
		Int64("added", quantity).
		Int64("quantity", item.Quantity).
		Msg("cart item added")
	return item, nil
}

// UpdateItemQuantity sets the quantity of a line. Quantities above the
// product's current stock are rejected, never clamped.
func (u *CartUsecase) UpdateItemQuantity(ctx context.Context, itemID int64, requestedBy int64, quantity int64) (CartItemUpdate, error) {
	if requestedBy <= 0 {
		return CartItemUpdate{}, model.ErrUnauthenticated
	}
	if itemID <= 0 {
		return CartItemUpdate{}, model.InvalidInput("invalid id")
	}
	if quantity > MaxItemQuantity {
		return CartItemUpdate{}, model.InvalidInput(fmt.Sprintf("quantity must be at most %d", MaxItemQuantity))
	}

	var out CartItemUpdate
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := loadOwnedItemForMutation(ctx, r, itemID, requestedBy)
		if err != nil {
			return err
		}

		if quantity < 1 {
			if err := r.CartItems().DeleteByID(ctx, item.ID); err != nil {
				return notFoundAs(err, model.ErrCartItemNotFound, "delete cart item")
			}
			out = CartItemUpdate{Item: item, Removed: true}
			return nil
		}

		p, err := r.Products().FindByID(ctx, item.ProductID)
		if err != nil {
			return notFoundAs(err, model.ErrProductNotFound, "find product")
		}
		if quantity > p.Stock {
			return model.NewInsufficientStockError(p, quantity)
		}

		if err := r.CartItems().UpdateQuantity(ctx, item.ID, quantity); err != nil {
			return notFoundAs(err, model.ErrCartItemNotFound, "update cart item")
		}
		item.Quantity = quantity
		out = CartItemUpdate{Item: item}
		return nil
	})
	if err != nil {
		return CartItemUpdate{}, err
	}

	u.log.Debug().
		Int64("user_id", requestedBy).
		Int64("item_id", itemID).
		Int64("quantity", quantity).
		Bool("removed", out.Removed).
		Msg("cart item updated")
	return out, nil
}

// RemoveItem deletes one line from the requester's cart.
func (u *CartUsecase) RemoveItem(ctx context.Context, itemID int64, requestedBy int64) error {
	if requestedBy <= 0 {
		return model.ErrUnauthenticated
	}
	if itemID <= 0 {
		return model.InvalidInput("invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := loadOwnedItemForMutation(ctx, r, itemID, requestedBy)
		if err != nil {
			return err
		}
		if err := r.CartItems().DeleteByID(ctx, item.ID); err != nil {
			return notFoundAs(err, model.ErrCartItemNotFound, "delete cart item")
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.log.Debug().Int64("user_id", requestedBy).Int64("item_id", itemID).Msg("cart item removed")
	return nil
}

// ClearCart empties the user's cart and returns how many lines were removed.
// A user without a cart has nothing to clear.
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, model.ErrUnauthenticated
	}

	var removed int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().LockByUserID(ctx, userID, repo.LockForShare)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil
		case errors.Is(err, repo.ErrLockNotAvailable):
			return model.ErrCartLocked
		case err != nil:
			return fmt.Errorf("lock cart: %w", err)
		}
		if cart.IsLocked() {
			return model.ErrCartLocked
		}

		removed, err = r.CartItems().DeleteByCartID(ctx, cart.ID)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	u.log.Debug().Int64("user_id", userID).Int64("removed", removed).Msg("cart cleared")
	return removed, nil
}

// lockCartForMutation takes the shared row lock and rejects carts that are
// being checked out.
func lockCartForMutation(ctx context.Context, r repo.TxRepos, cartID int64) (model.Cart, error) {
	cart, err := r.Carts().LockByID(ctx, cartID, repo.LockForShare)
	switch {
	case errors.Is(err, repo.ErrLockNotAvailable):
		return model.Cart{}, model.ErrCartLocked
	case errors.Is(err, repo.ErrNotFound):
		return model.Cart{}, model.ErrCartNotFound
	case err != nil:
		return model.Cart{}, fmt.Errorf("lock cart: %w", err)
	}
	if cart.IsLocked() {
		return model.Cart{}, model.ErrCartLocked
	}
	return cart, nil
}

// loadOwnedItemForMutation checks, in order: the item exists, it belongs to
// requestedBy, and its cart is not locked.
func loadOwnedItemForMutation(ctx context.Context, r repo.TxRepos, itemID int64, requestedBy int64) (model.CartItem, error) {
	item, err := r.CartItems().FindByID(ctx, itemID)
	if err != nil {
		return model.CartItem{}, notFoundAs(err, model.ErrCartItemNotFound, "find cart item")
	}

	owner, err := r.Carts().FindByID(ctx, item.CartID)
	if err != nil {
		return model.CartItem{}, notFoundAs(err, model.ErrCartItemNotFound, "find cart")
	}
	if owner.UserID != requestedBy {
		return model.CartItem{}, model.ErrForbidden
	}

	if _, err := lockCartForMutation(ctx, r, owner.ID); err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}
