package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain/model"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/testutil"
	"storefront/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type shop struct {
	db       *gorm.DB
	cart     *usecase.CartUsecase
	checkout *usecase.CheckoutUsecase
	products *usecase.ProductUsecase
	orders   *usecase.OrderUsecase
}

func newShop(t *testing.T, gdb *gorm.DB) *shop {
	t.Helper()
	log := zerolog.Nop()
	tx := infraRepo.NewTxManagerGorm(gdb)
	products := infraRepo.NewProductGormRepository(gdb)
	shipping := usecase.ShippingPolicy{FlatFee: 3000, FreeThreshold: 50000}

	return &shop{
		db:       gdb,
		cart:     usecase.NewCartUsecase(tx, infraRepo.NewCartGormRepository(gdb), infraRepo.NewCartItemGormRepository(gdb), products, shipping, log),
		checkout: usecase.NewCheckoutUsecase(tx, nil, nil, nil, log),
		products: usecase.NewProductUsecase(products, tx, nil, log),
		orders:   usecase.NewOrderUsecase(infraRepo.NewOrderGormRepository(gdb)),
	}
}

func (s *shop) cartItems(t *testing.T, userID int64) []model.CartItem {
	t.Helper()
	view, err := s.cart.GetCart(context.Background(), userID)
	require.NoError(t, err)
	return view.Items
}

func (s *shop) lockedAt(t *testing.T, userID int64) *time.Time {
	t.Helper()
	var c model.Cart
	require.NoError(t, s.db.Where("user_id = ?", userID).First(&c).Error)
	return c.LockedAt
}

func countOrders(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&model.Order{}).Count(&n).Error)
	return n
}

func TestCheckout_ExactStock(t *testing.T) {
	gdb := testutil.NewSQLiteDB(t)
	s := newShop(t, gdb)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "buyer@example.com", model.RoleUser)
	p := testutil.CreateProduct(t, gdb, "Enamel Mug", 500, 3)

	_, err := s.cart.AddItem(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)

	order, err := s.checkout.Checkout(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1500), order.TotalPrice)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, p.ID, order.Items[0].ProductID)
	assert.Equal(t, "Enamel Mug", order.Items[0].ProductName)
	assert.Equal(t, int64(500), order.Items[0].UnitPrice)
	assert.Equal(t, int64(3), order.Items[0].Quantity)

	assert.Equal(t, int64(0), testutil.ReloadProduct(t, gdb, p.ID).Stock)
	assert.Empty(t, s.cartItems(t, u.ID))
	assert.Nil(t, s.lockedAt(t, u.ID))

	got, err := s.orders.GetMyOrder(ctx, u.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TotalPrice, got.TotalPrice)
}

func TestCheckout_StockDroppedAfterAdd(t *testing.T) {
	gdb := testutil.NewSQLiteDB(t)
	s := newShop(t, gdb)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "buyer@example.com", model.RoleUser)
	admin := testutil.CreateUser(t, gdb, "admin@example.com", model.RoleAdmin)
	p := testutil.CreateProduct(t, gdb, "Enamel Mug", 500, 10)

	_, err := s.cart.AddItem(ctx, u.ID, p.ID, 5)
	require.NoError(t, err)

	// another sale took stock down to 3
	_, err = s.products.AdjustStock(ctx, admin.ID, p.ID, 3, "sold in store")
	require.NoError(t, err)

	_, err = s.checkout.Checkout(ctx, u.ID)
	require.ErrorIs(t, err, model.ErrInsufficientStock)

	var de *model.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, p.ID, de.ProductID)

	items := s.cartItems(t, u.ID)
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].Quantity)
	assert.Equal(t, int64(3), testutil.ReloadProduct(t, gdb, p.ID).Stock)
	assert.Nil(t, s.lockedAt(t, u.ID))
	assert.Zero(t, countOrders(t, gdb))
}

func TestCheckout_UsesCartPriceSnapshot(t *testing.T) {
	gdb := testutil.NewSQLiteDB(t)
	s := newShop(t, gdb)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "buyer@example.com", model.RoleUser)
	admin := testutil.CreateUser(t, gdb, "admin@example.com", model.RoleAdmin)
	mug := testutil.CreateProduct(t, gdb, "Enamel Mug", 500, 10)
	lamp := testutil.CreateProduct(t, gdb, "Desk Lamp", 4500, 10)

	_, err := s.cart.AddItem(ctx, u.ID, mug.ID, 2)
	require.NoError(t, err)
	_, err = s.cart.AddItem(ctx, u.ID, lamp.ID, 1)
	require.NoError(t, err)

	_, err = s.products.UpdateProduct(ctx, admin.ID, mug.ID, usecase.ProductDetails{Name: "Enamel Mug", Price: 800})
	require.NoError(t, err)

	order, err := s.checkout.Checkout(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2*500+4500), order.TotalPrice)

	var sum int64
	for _, it := range order.Items {
		sum += it.UnitPrice * it.Quantity
		if it.ProductID == mug.ID {
			assert.Equal(t, int64(500), it.UnitPrice)
		}
	}
	assert.Equal(t, order.TotalPrice, sum)
	assert.Equal(t, int64(8), testutil.ReloadProduct(t, gdb, mug.ID).Stock)
	assert.Equal(t, int64(9), testutil.ReloadProduct(t, gdb, lamp.ID).Stock)
}

func TestCheckout_RollsBackOnLateFailure(t *testing.T) {
	gdb := testutil.NewSQLiteDB(t)
	s := newShop(t, gdb)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "buyer@example.com", model.RoleUser)
	p := testutil.CreateProduct(t, gdb, "Enamel Mug", 500, 4)

	_, err := s.cart.AddItem(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)

	// fail the cart clear, which runs after the order and stock writes
	injected := errors.New("injected delete failure")
	require.NoError(t, gdb.Callback().Delete().Before("gorm:delete").Register("test:fail_cart_items_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "cart_items" {
			_ = tx.AddError(injected)
		}
	}))

	_, err = s.checkout.Checkout(ctx, u.ID)
	require.ErrorIs(t, err, injected)

	require.NoError(t, gdb.Callback().Delete().Remove("test:fail_cart_items_delete"))

	assert.Zero(t, countOrders(t, gdb))
	var lines int64
	require.NoError(t, gdb.Model(&model.OrderItem{}).Count(&lines).Error)
	assert.Zero(t, lines)
	assert.Equal(t, int64(4), testutil.ReloadProduct(t, gdb, p.ID).Stock)
	assert.Len(t, s.cartItems(t, u.ID), 1)
	assert.Nil(t, s.lockedAt(t, u.ID))

	// the cart is usable again
	order, err := s.checkout.Checkout(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), order.TotalPrice)
}

func TestCheckout_LockedCart(t *testing.T) {
	gdb := testutil.NewSQLiteDB(t)
	s := newShop(t, gdb)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "buyer@example.com", model.RoleUser)
	p := testutil.CreateProduct(t, gdb, "Enamel Mug", 500, 4)

	item, err := s.cart.AddItem(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)

	// a checkout from another process is in flight
	require.NoError(t, gdb.Model(&model.Cart{}).Where("user_id = ?", u.ID).Update("locked_at", time.Now()).Error)

	_, err = s.checkout.Checkout(ctx, u.ID)
	assert.ErrorIs(t, err, model.ErrCartAlreadyLocked)

	_, err = s.cart.AddItem(ctx, u.ID, p.ID, 1)
	assert.ErrorIs(t, err, model.ErrCartLocked)
	_, err = s.cart.UpdateItemQuantity(ctx, item.ID, u.ID, 2)
	assert.ErrorIs(t, err, model.ErrCartLocked)
	assert.ErrorIs(t, s.cart.RemoveItem(ctx, item.ID, u.ID), model.ErrCartLocked)
	_, err = s.cart.ClearCart(ctx, u.ID)
	assert.ErrorIs(t, err, model.ErrCartLocked)

	view, err := s.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, view.Locked)
	assert.Equal(t, int64(4), testutil.ReloadProduct(t, gdb, p.ID).Stock)
}

func TestCheckout_EmptyAndMissingCart(t *testing.T) {
	gdb := testutil.NewSQLiteDB(t)
	s := newShop(t, gdb)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "buyer@example.com", model.RoleUser)

	_, err := s.checkout.Checkout(ctx, u.ID)
	assert.ErrorIs(t, err, model.ErrCartNotFound)

	_, err = s.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)

	_, err = s.checkout.Checkout(ctx, u.ID)
	assert.ErrorIs(t, err, model.ErrEmptyCart)
	assert.Nil(t, s.lockedAt(t, u.ID))
}

func TestCheckout_DeletedProduct(t *testing.T) {
	gdb := testutil.NewSQLiteDB(t)
	s := newShop(t, gdb)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "buyer@example.com", model.RoleUser)
	admin := testutil.CreateUser(t, gdb, "admin@example.com", model.RoleAdmin)
	p := testutil.CreateProduct(t, gdb, "Enamel Mug", 500, 4)

	_, err := s.cart.AddItem(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)
	require.NoError(t, s.products.DeleteProduct(ctx, admin.ID, p.ID))

	_, err = s.checkout.Checkout(ctx, u.ID)
	require.ErrorIs(t, err, model.ErrProductNotFound)

	var de *model.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, p.ID, de.ProductID)
	assert.Len(t, s.cartItems(t, u.ID), 1)
}

func TestCheckout_ProductEditKeepsSoldStock(t *testing.T) {
	gdb := testutil.NewSQLiteDB(t)
	s := newShop(t, gdb)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "buyer@example.com", model.RoleUser)
	admin := testutil.CreateUser(t, gdb, "admin@example.com", model.RoleAdmin)
	p := testutil.CreateProduct(t, gdb, "Enamel Mug", 500, 10)

	// the admin opens the edit form before the sale
	form, err := s.products.GetProduct(ctx, p.ID)
	require.NoError(t, err)

	_, err = s.cart.AddItem(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)
	_, err = s.checkout.Checkout(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(7), testutil.ReloadProduct(t, gdb, p.ID).Stock)

	updated, err := s.products.UpdateProduct(ctx, admin.ID, p.ID, usecase.ProductDetails{
		Name:     "Enamel Mug (blue)",
		Price:    form.Price,
		Category: form.Category,
	})
	require.NoError(t, err)
	assert.Equal(t, "Enamel Mug (blue)", updated.Name)
	assert.Equal(t, int64(7), updated.Stock)
	assert.Equal(t, int64(7), testutil.ReloadProduct(t, gdb, p.ID).Stock)

	var adjustments int64
	require.NoError(t, gdb.Model(&model.InventoryAdjustment{}).Count(&adjustments).Error)
	assert.Zero(t, adjustments)
}

func TestCartLine_MergeOverMaxRollsBack(t *testing.T) {
	gdb := testutil.NewSQLiteDB(t)
	s := newShop(t, gdb)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "buyer@example.com", model.RoleUser)
	p := testutil.CreateProduct(t, gdb, "Enamel Mug", 500, 1000)

	_, err := s.cart.AddItem(ctx, u.ID, p.ID, 60)
	require.NoError(t, err)
	_, err = s.cart.AddItem(ctx, u.ID, p.ID, 50)
	require.ErrorIs(t, err, model.ErrInvalidInput)

	items := s.cartItems(t, u.ID)
	require.Len(t, items, 1)
	assert.Equal(t, int64(60), items[0].Quantity)
}
