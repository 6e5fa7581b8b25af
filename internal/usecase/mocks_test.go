package usecase_test

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/mock"
)

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDsForUpdate(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	updated, _ := args.Get(0).(model.Product)
	return updated, args.Error(1)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindByID(ctx context.Context, cartID int64) (model.Cart, error) {
	args := m.Called(ctx, cartID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) LockByUserID(ctx context.Context, userID int64, strength repo.LockStrength) (model.Cart, error) {
	args := m.Called(ctx, userID, strength)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) LockByID(ctx context.Context, cartID int64, strength repo.LockStrength) (model.Cart, error) {
	args := m.Called(ctx, cartID, strength)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) SetLockedAt(ctx context.Context, cartID int64, lockedAt *time.Time) error {
	return m.Called(ctx, cartID, lockedAt).Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, id int64) (model.CartItem, error) {
	args := m.Called(ctx, id)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID, productID, addQty, unitPrice int64) (model.CartItem, error) {
	args := m.Called(ctx, cartID, productID, addQty, unitPrice)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, id int64, qty int64) error {
	return m.Called(ctx, id, qty).Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CartItemRepoMock) DeleteByCartID(ctx context.Context, cartID int64) (int64, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(int64), args.Error(1)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, o model.Order) (int64, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, id int64) (model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	return m.Called(ctx, orderID, items).Error(0)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	return m.Called(ctx, productID, newStock).Error(0)
}

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return m.Called(ctx, adj).Error(0)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	created, _ := args.Get(0).(model.User)
	return created, args.Error(1)
}

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

type ProductCacheMock struct{ mock.Mock }

func (m *ProductCacheMock) Get(ctx context.Context, id int64) (model.Product, bool, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Bool(1), args.Error(2)
}

func (m *ProductCacheMock) Set(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductCacheMock) Invalidate(ctx context.Context, ids ...int64) error {
	return m.Called(ctx, ids).Error(0)
}

type ObserverMock struct{ mock.Mock }

func (m *ObserverMock) ObserveCheckout(result string, elapsed time.Duration) {
	m.Called(result, elapsed)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// txRepos hands the same mocks to every transaction.
type txRepos struct {
	products   *ProductRepoMock
	carts      *CartRepoMock
	cartItems  *CartItemRepoMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	inventory  *InventoryRepoMock
}

func newTxRepos() *txRepos {
	return &txRepos{
		products:   new(ProductRepoMock),
		carts:      new(CartRepoMock),
		cartItems:  new(CartItemRepoMock),
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		inventory:  new(InventoryRepoMock),
	}
}

func (r *txRepos) Products() repo.ProductRepository     { return r.products }
func (r *txRepos) Carts() repo.CartRepository           { return r.carts }
func (r *txRepos) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *txRepos) Orders() repo.OrderRepository         { return r.orders }
func (r *txRepos) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txRepos) Inventory() repo.InventoryRepository  { return r.inventory }

func (r *txRepos) assertExpectations(t mock.TestingT) {
	r.products.AssertExpectations(t)
	r.carts.AssertExpectations(t)
	r.cartItems.AssertExpectations(t)
	r.orders.AssertExpectations(t)
	r.orderItems.AssertExpectations(t)
	r.inventory.AssertExpectations(t)
}

// txStub runs fn directly. Rollback is covered by the SQLite-backed tests.
type txStub struct {
	repos *txRepos
	calls int
}

func (s *txStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.calls++
	return fn(s.repos)
}
