package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/rs/zerolog"
)

// CheckoutState is the coordinator's position in a single checkout.
//
//	IDLE -> LOCKED -> VALIDATING -> COMMITTING -> UNLOCKED
//	IDLE -> LOCKED -> FAILED -> UNLOCKED
type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "IDLE"
	CheckoutLocked     CheckoutState = "LOCKED"
	CheckoutValidating CheckoutState = "VALIDATING"
	CheckoutCommitting CheckoutState = "COMMITTING"
	CheckoutUnlocked   CheckoutState = "UNLOCKED"
	CheckoutFailed     CheckoutState = "FAILED"
)

const checkoutResultSuccess = "success"

// cartLockRetryDelay is how long a checkout waits before its one retry of a
// busy cart row. Cart edits hold the row for a single short statement.
const cartLockRetryDelay = 50 * time.Millisecond

// CheckoutObserver receives one call per finished checkout.
type CheckoutObserver interface {
	ObserveCheckout(result string, elapsed time.Duration)
}

type noopCheckoutObserver struct{}

func (noopCheckoutObserver) ObserveCheckout(string, time.Duration) {}

// CheckoutUsecase converts a cart into an order. Every step from locking the
// cart to unlocking it runs in one transaction, so a failure anywhere rolls
// back the lock along with the order, the stock and the cart contents.
type CheckoutUsecase struct {
	tx         repo.TransactionManager
	cache      ProductCache
	observer   CheckoutObserver
	clock      Clock
	retryDelay time.Duration
	log        zerolog.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	cache ProductCache,
	observer CheckoutObserver,
	clock Clock,
	logger zerolog.Logger,
) *CheckoutUsecase {
	if cache == nil {
		cache = NoopProductCache{}
	}
	if observer == nil {
		observer = noopCheckoutObserver{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &CheckoutUsecase{
		tx:         tx,
		cache:      cache,
		observer:   observer,
		clock:      clock,
		retryDelay: cartLockRetryDelay,
		log:        logger.With().Str("usecase", "checkout").Logger(),
	}
}

// Checkout places an order for everything in the user's cart.
//
// A second checkout for the same cart while one is in flight fails with
// CartAlreadyLocked instead of waiting. A busy cart row is retried once after
// a short delay, since the holder may be a cart edit rather than a checkout.
// Callers should not retry CartAlreadyLocked automatically.
func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64) (model.Order, error) {
	if userID <= 0 {
		return model.Order{}, model.ErrUnauthenticated
	}

	started := time.Now()
	log := u.log.With().Int64("user_id", userID).Logger()

	state := CheckoutIdle
	transition := func(next CheckoutState) {
		log.Debug().Str("from", string(state)).Str("to", string(next)).Msg("checkout state")
		state = next
	}

	var order model.Order
	var purchased []int64
	var rowBusy bool

	run := func(r repo.TxRepos) error {
		rowBusy = false
		cart, err := r.Carts().LockByUserID(ctx, userID, repo.LockForUpdate)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return model.ErrCartNotFound
		case errors.Is(err, repo.ErrLockNotAvailable):
			rowBusy = true
			return model.ErrCartAlreadyLocked
		case err != nil:
			return fmt.Errorf("lock cart: %w", err)
		}
		if cart.IsLocked() {
			return model.ErrCartAlreadyLocked
		}

		items, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return fmt.Errorf("list cart items: %w", err)
		}
		if len(items) == 0 {
			return model.ErrEmptyCart
		}

		now := u.clock.Now()
		if err := r.Carts().SetLockedAt(ctx, cart.ID, &now); err != nil {
			return fmt.Errorf("set cart lock: %w", err)
		}
		transition(CheckoutLocked)

		transition(CheckoutValidating)
		products, err := validateStock(ctx, r, items)
		if err != nil {
			return err
		}

		transition(CheckoutCommitting)
		orderID, err := placeOrder(ctx, r, userID, items, products)
		if err != nil {
			return err
		}

		if _, err := r.CartItems().DeleteByCartID(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if err := r.Carts().SetLockedAt(ctx, cart.ID, nil); err != nil {
			return fmt.Errorf("release cart lock: %w", err)
		}

		order, err = r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return fmt.Errorf("reload order: %w", err)
		}

		purchased = make([]int64, 0, len(items))
		for _, it := range items {
			purchased = append(purchased, it.ProductID)
		}
		return nil
	}

	err := u.tx.WithinTx(ctx, run)
	if err != nil && rowBusy {
		log.Debug().Msg("cart row busy, retrying once")
		timer := time.NewTimer(u.retryDelay)
		select {
		case <-timer.C:
			err = u.tx.WithinTx(ctx, run)
		case <-ctx.Done():
			timer.Stop()
		}
	}

	elapsed := time.Since(started)
	if err != nil {
		if state != CheckoutIdle {
			transition(CheckoutFailed)
			// the rollback released the lock
			transition(CheckoutUnlocked)
		}
		u.observer.ObserveCheckout(checkoutResult(err), elapsed)

		var de *model.Error
		if errors.As(err, &de) {
			log.Info().Str("code", de.Code).Int64("product_id", de.ProductID).Msg("checkout rejected")
		} else {
			log.Error().Err(err).Msg("checkout failed")
		}
		return model.Order{}, err
	}
	transition(CheckoutUnlocked)
	u.observer.ObserveCheckout(checkoutResultSuccess, elapsed)

	if err := u.cache.Invalidate(ctx, purchased...); err != nil {
		log.Warn().Err(err).Msg("product cache invalidation failed")
	}

	log.Info().
		Int64("order_id", order.ID).
		Int64("total_price", order.TotalPrice).
		Int("lines", len(order.Items)).
		Dur("elapsed", elapsed).
		Msg("checkout completed")
	return order, nil
}

// validateStock re-reads every product under a row lock, in id order, and
// checks each line against the live stock. The first short line fails the
// whole checkout.
func validateStock(ctx context.Context, r repo.TxRepos, items []model.CartItem) (map[int64]model.Product, error) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked, err := r.Products().FindByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}

	products := make(map[int64]model.Product, len(locked))
	for _, p := range locked {
		products[p.ID] = p
	}

	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, &model.Error{
				Kind:      model.KindNotFound,
				Code:      model.ErrCodeProductNotFound,
				Message:   fmt.Sprintf("product %d is no longer available", it.ProductID),
				ProductID: it.ProductID,
			}
		}
		if it.Quantity > p.Stock {
			return nil, model.NewInsufficientStockError(p, it.Quantity)
		}
	}
	return products, nil
}

// placeOrder writes the order at the cart's unit prices and takes the stock.
func placeOrder(ctx context.Context, r repo.TxRepos, userID int64, items []model.CartItem, products map[int64]model.Product) (int64, error) {
	total, err := orderTotal(items)
	if err != nil {
		return 0, err
	}
	orderID, err := r.Orders().Create(ctx, model.Order{
		UserID:     userID,
		Status:     model.OrderStatusPending,
		TotalPrice: total,
	})
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}

	lines := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, model.OrderItem{
			ProductID:   it.ProductID,
			ProductName: products[it.ProductID].Name,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		})
	}
	if err := r.OrderItems().CreateBulk(ctx, orderID, lines); err != nil {
		return 0, fmt.Errorf("create order items: %w", err)
	}

	for _, it := range items {
		ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return 0, fmt.Errorf("decrease stock: %w", err)
		}
		if !ok {
			return 0, model.NewInsufficientStockError(products[it.ProductID], it.Quantity)
		}
	}
	return orderID, nil
}

func checkoutResult(err error) string {
	var de *model.Error
	if errors.As(err, &de) {
		return strings.ToLower(de.Code)
	}
	return "error"
}
