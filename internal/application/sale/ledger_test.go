package sale

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/licoreria/internal/domain/customer"
	"github.com/xiebiao/licoreria/internal/domain/inventory"
	"github.com/xiebiao/licoreria/internal/domain/product"
	"github.com/xiebiao/licoreria/internal/domain/sale"
	"github.com/xiebiao/licoreria/internal/domain/shared"
	"github.com/xiebiao/licoreria/internal/domain/user"
	"github.com/xiebiao/licoreria/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/licoreria/pkg/errors"
	"github.com/xiebiao/licoreria/pkg/logger"
)

// testingT 同时适用于*testing.T和*rapid.T
type testingT interface {
	require.TestingT
	Helper()
}

// recorder 记录发布的事件
type recorder struct {
	mu     sync.Mutex
	events []shared.Event
}

func (r *recorder) Publish(ctx context.Context, events ...shared.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	ledger    *Ledger
	repos     Repositories
	store     *memory.Store
	published *recorder
	userID    uint
	custID    uint
}

func newFixture(t testingT, opts Options) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := Repositories{
		Orders:    memory.NewOrderRepository(store),
		LineItems: memory.NewLineItemRepository(store),
		Products:  memory.NewProductRepository(store),
		Customers: memory.NewCustomerRepository(store),
		Users:     memory.NewUserRepository(store),
		Movements: memory.NewMovementRepository(store),
	}
	return newFixtureWith(t, store, repos, memory.NewTxManager(store), opts)
}

func newFixtureWith(t testingT, store *memory.Store, repos Repositories, txm shared.TxManager, opts Options) *fixture {
	t.Helper()
	ctx := context.Background()

	u := user.NewUser("cajero1", "hash", user.RoleSeller, false)
	require.NoError(t, repos.Users.Create(ctx, u))
	c, err := customer.NewCustomer("1234567", "Ana", "Quispe", "Mamani", "ana@mail.bo", "7123")
	require.NoError(t, err)
	require.NoError(t, repos.Customers.Create(ctx, c))

	rec := &recorder{}
	return &fixture{
		ledger:    NewLedger(txm, repos, rec, logger.Discard(), opts),
		repos:     repos,
		store:     store,
		published: rec,
		userID:    u.ID,
		custID:    c.ID,
	}
}

func (f *fixture) product(t testingT, code string, price int64, stock int) *product.Product {
	t.Helper()
	p, err := product.NewProduct(code, "Producto "+code, "", "botella", price/2, price, stock, 1, 0)
	require.NoError(t, err)
	require.NoError(t, f.repos.Products.Create(context.Background(), p))
	return p
}

func (f *fixture) order(t testingT) *sale.Order {
	t.Helper()
	o, err := f.ledger.CreateOrder(context.Background(), f.userID, f.custID)
	require.NoError(t, err)
	return o
}

func (f *fixture) stock(t testingT, productID uint) int {
	t.Helper()
	p, err := f.repos.Products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) total(t testingT, orderID uint) int64 {
	t.Helper()
	o, err := f.repos.Orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	return o.Total
}

func ptr[T any](v T) *T { return &v }

// 库存10、单价25的商品卖3件；另一商品库存7时请求8件被拒；删除第一条明细后恢复
func TestLedger_Scenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, DefaultOptions())
	ron := f.product(t, "RON", 2500, 10)
	vino := f.product(t, "VINO", 4000, 7)
	o := f.order(t)
	assert.Zero(t, o.Total)

	li, err := f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), li.Subtotal)
	assert.Equal(t, 7, f.stock(t, ron.ID))
	assert.Equal(t, int64(7500), f.total(t, o.ID))

	_, err = f.ledger.CreateLineItem(ctx, o.ID, vino.ID, 8)
	require.ErrorIs(t, err, sale.ErrInsufficientStock)
	var shortage *sale.StockShortage
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, 8, shortage.Requested)
	assert.Equal(t, 7, shortage.Available)
	assert.Equal(t, vino.ID, shortage.ProductID)
	assert.Equal(t, 7, f.stock(t, vino.ID), "失败时不修改库存")
	assert.Equal(t, int64(7500), f.total(t, o.ID), "失败时不修改合计")
	items, err := f.ledger.ListLineItems(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, f.ledger.DeleteLineItem(ctx, li.ID))
	assert.Equal(t, 10, f.stock(t, ron.ID))
	assert.Equal(t, int64(0), f.total(t, o.ID))

	total, err := f.ledger.RecomputeTotal(ctx, o.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestLedger_CreateLineItemErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, DefaultOptions())
	ron := f.product(t, "RON", 2500, 10)
	o := f.order(t)

	_, err := f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 0)
	assert.ErrorIs(t, err, sale.ErrInvalidQuantity)

	_, err = f.ledger.CreateLineItem(ctx, 999, ron.ID, 1)
	assert.ErrorIs(t, err, sale.ErrOrderNotFound)

	_, err = f.ledger.CreateLineItem(ctx, o.ID, 999, 1)
	assert.ErrorIs(t, err, product.ErrProductNotFound)

	_, err = f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 2)
	require.NoError(t, err)
	_, err = f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 1)
	assert.ErrorIs(t, err, sale.ErrDuplicateLineItem)
	assert.Equal(t, 8, f.stock(t, ron.ID))

	require.NoError(t, f.ledger.DeleteOrder(ctx, o.ID))
	_, err = f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 1)
	assert.ErrorIs(t, err, sale.ErrOrderNotFound, "已删除的销售单不能再添加明细")
}

func TestLedger_PriceSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, DefaultOptions())
	ron := f.product(t, "RON", 2500, 10)
	o := f.order(t)

	li, err := f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 2)
	require.NoError(t, err)

	require.NoError(t, ron.UpdatePrice(ron.PurchasePrice, 9900))
	require.NoError(t, f.repos.Products.Update(ctx, ron))

	got, err := f.ledger.GetLineItem(ctx, li.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), got.UnitPrice)

	updated, err := f.ledger.UpdateLineItem(ctx, UpdateLineItemRequest{LineItemID: li.ID, Quantity: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), updated.UnitPrice, "改数量沿用快照单价")
	assert.Equal(t, int64(7500), updated.Subtotal)
	assert.Equal(t, int64(7500), f.total(t, o.ID))
}

func TestLedger_UpdateLineItemQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, DefaultOptions())
	ron := f.product(t, "RON", 1000, 5)
	o := f.order(t)
	li, err := f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 2)
	require.NoError(t, err)

	_, err = f.ledger.UpdateLineItem(ctx, UpdateLineItemRequest{LineItemID: li.ID})
	assert.ErrorIs(t, err, sale.ErrNothingToUpdate)
	_, err = f.ledger.UpdateLineItem(ctx, UpdateLineItemRequest{LineItemID: li.ID, Quantity: ptr(0)})
	assert.ErrorIs(t, err, sale.ErrInvalidQuantity)
	_, err = f.ledger.UpdateLineItem(ctx, UpdateLineItemRequest{LineItemID: 999, Quantity: ptr(1)})
	assert.ErrorIs(t, err, sale.ErrLineItemNotFound)

	_, err = f.ledger.UpdateLineItem(ctx, UpdateLineItemRequest{LineItemID: li.ID, Quantity: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 0, f.stock(t, ron.ID))

	_, err = f.ledger.UpdateLineItem(ctx, UpdateLineItemRequest{LineItemID: li.ID, Quantity: ptr(6)})
	require.ErrorIs(t, err, sale.ErrInsufficientStock)
	var shortage *sale.StockShortage
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, 1, shortage.Requested)
	assert.Equal(t, 0, shortage.Available)

	_, err = f.ledger.UpdateLineItem(ctx, UpdateLineItemRequest{LineItemID: li.ID, Quantity: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, 4, f.stock(t, ron.ID))
	assert.Equal(t, int64(1000), f.total(t, o.ID))
}

func TestLedger_UpdateLineItemSwitchProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, DefaultOptions())
	ron := f.product(t, "RON", 1000, 10)
	vino := f.product(t, "VINO", 3000, 4)
	pisco := f.product(t, "PISCO", 5000, 10)
	o := f.order(t)

	li, err := f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 3)
	require.NoError(t, err)
	_, err = f.ledger.CreateLineItem(ctx, o.ID, pisco.ID, 1)
	require.NoError(t, err)

	_, err = f.ledger.UpdateLineItem(ctx, UpdateLineItemRequest{LineItemID: li.ID, ProductID: ptr(pisco.ID)})
	assert.ErrorIs(t, err, sale.ErrDuplicateLineItem)

	_, err = f.ledger.UpdateLineItem(ctx, UpdateLineItemRequest{LineItemID: li.ID, ProductID: ptr(vino.ID), Quantity: ptr(5)})
	assert.ErrorIs(t, err, sale.ErrInsufficientStock)
	assert.Equal(t, 7, f.stock(t, ron.ID), "失败时旧商品库存不变")

	_, err = f.ledger.UpdateLineItem(ctx, UpdateLineItemRequest{LineItemID: li.ID, ProductID: ptr(uint(999))})
	assert.ErrorIs(t, err, product.ErrProductNotFound)

	updated, err := f.ledger.UpdateLineItem(ctx, UpdateLineItemRequest{LineItemID: li.ID, ProductID: ptr(vino.ID)})
	require.NoError(t, err)
	assert.Equal(t, vino.ID, updated.ProductID)
	assert.Equal(t, int64(3000), updated.UnitPrice, "单价取新商品售价")
	assert.Equal(t, 3, updated.Quantity)
	assert.Equal(t, 10, f.stock(t, ron.ID), "旧商品库存全部归还")
	assert.Equal(t, 1, f.stock(t, vino.ID))
	assert.Equal(t, int64(3*3000+5000), f.total(t, o.ID))

	movements, _, err := f.repos.Movements.ListByProduct(ctx, ron.ID, shared.Page{})
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, inventory.MovementRestore, movements[0].Type)
	assert.Equal(t, 3, movements[0].Delta)
	assert.Equal(t, 10, movements[0].StockAfter)
}

// 调价后把明细"换成"同一商品，不算换商品，单价和库存都不变
func TestLedger_UpdateLineItemSameProductKeepsPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, DefaultOptions())
	ron := f.product(t, "RON", 100, 10)
	o := f.order(t)

	li, err := f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 2)
	require.NoError(t, err)

	require.NoError(t, ron.UpdatePrice(ron.PurchasePrice, 101))
	require.NoError(t, f.repos.Products.Update(ctx, ron))

	updated, err := f.ledger.UpdateLineItem(ctx, UpdateLineItemRequest{LineItemID: li.ID, ProductID: ptr(ron.ID)})
	require.NoError(t, err)
	assert.Equal(t, int64(100), updated.UnitPrice)
	assert.Equal(t, int64(200), updated.Subtotal)
	assert.Equal(t, 8, f.stock(t, ron.ID))
	assert.Equal(t, int64(200), f.total(t, o.ID))

	updated, err = f.ledger.UpdateLineItem(ctx, UpdateLineItemRequest{LineItemID: li.ID, ProductID: ptr(ron.ID), Quantity: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(100), updated.UnitPrice)
	assert.Equal(t, int64(500), f.total(t, o.ID))
	assert.Equal(t, 5, f.stock(t, ron.ID))
}

func TestLedger_DeleteLineItemTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, DefaultOptions())
	ron := f.product(t, "RON", 1000, 10)
	o := f.order(t)
	li, err := f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 4)
	require.NoError(t, err)

	require.NoError(t, f.ledger.DeleteLineItem(ctx, li.ID))
	assert.ErrorIs(t, f.ledger.DeleteLineItem(ctx, li.ID), sale.ErrLineItemNotFound)
	assert.Equal(t, 10, f.stock(t, ron.ID), "重复删除不会重复归还")
}

func TestLedger_Orders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, DefaultOptions())
	ron := f.product(t, "RON", 1000, 10)
	vino := f.product(t, "VINO", 2000, 10)

	_, err := f.ledger.CreateOrder(ctx, f.userID, 999)
	assert.ErrorIs(t, err, customer.ErrCustomerNotFound)
	_, err = f.ledger.CreateOrder(ctx, 999, f.custID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	o1 := f.order(t)
	o2 := f.order(t)
	assert.NotEqual(t, o1.OrderNo, o2.OrderNo)

	_, err = f.ledger.CreateLineItem(ctx, o1.ID, ron.ID, 2)
	require.NoError(t, err)
	_, err = f.ledger.CreateLineItem(ctx, o1.ID, vino.ID, 3)
	require.NoError(t, err)

	got, err := f.ledger.GetOrder(ctx, o1.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, int64(2*1000+3*2000), got.Total)

	list, total, err := f.ledger.ListOrders(ctx, sale.ListParams{CustomerID: f.custID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	_, err = f.ledger.UpdateOrder(ctx, o1.ID, 0, 999)
	assert.ErrorIs(t, err, customer.ErrCustomerNotFound)

	require.NoError(t, f.ledger.DeleteOrder(ctx, o1.ID))
	assert.Equal(t, 10, f.stock(t, ron.ID))
	assert.Equal(t, 10, f.stock(t, vino.ID))
	_, err = f.ledger.GetOrder(ctx, o1.ID)
	assert.ErrorIs(t, err, sale.ErrOrderNotFound)
	assert.ErrorIs(t, f.ledger.DeleteOrder(ctx, o1.ID), sale.ErrOrderNotFound)
}

func TestLedger_Events(t *testing.T) {
	ctx := context.Background()
	opts := DefaultOptions()
	opts.LowStockThreshold = 3
	f := newFixture(t, opts)
	ron := f.product(t, "RON", 1000, 5)
	o := f.order(t)

	li, err := f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 1)
	require.NoError(t, err)
	_, err = f.ledger.UpdateLineItem(ctx, UpdateLineItemRequest{LineItemID: li.ID, Quantity: ptr(2)})
	require.NoError(t, err)
	_, err = f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 1)
	require.Error(t, err)
	require.NoError(t, f.ledger.DeleteOrder(ctx, o.ID))

	assert.Equal(t, []string{
		sale.EventLineItemCreated,
		inventory.EventStockLow,
		sale.EventLineItemUpdated,
		sale.EventOrderDeleted,
	}, f.published.types(), "失败的操作不发布事件")

	low := f.published.events[1].Payload.(inventory.StockLowEvent)
	assert.Equal(t, 3, low.Stock)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, events ...shared.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func TestLedger_PublishFailureKeepsCommit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, DefaultOptions())
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
	f.ledger.publisher = pub

	ron := f.product(t, "RON", 1000, 5)
	o := f.order(t)
	_, err := f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, f.stock(t, ron.ID))
	pub.AssertExpectations(t)
}

// conflictingOrders 前n次UpdateTotal返回并发冲突
type conflictingOrders struct {
	sale.OrderRepository
	mu        sync.Mutex
	conflicts int
	calls     int
}

func (c *conflictingOrders) UpdateTotal(ctx context.Context, id uint, total int64, version int) error {
	c.mu.Lock()
	c.calls++
	fail := c.calls <= c.conflicts
	c.mu.Unlock()
	if fail {
		return fmt.Errorf("update total: %w", sale.ErrConcurrencyConflict)
	}
	return c.OrderRepository.UpdateTotal(ctx, id, total, version)
}

func newConflictFixture(t testingT, conflicts, maxRetries int) (*fixture, *conflictingOrders) {
	store := memory.NewStore()
	orders := &conflictingOrders{OrderRepository: memory.NewOrderRepository(store), conflicts: conflicts}
	repos := Repositories{
		Orders:    orders,
		LineItems: memory.NewLineItemRepository(store),
		Products:  memory.NewProductRepository(store),
		Customers: memory.NewCustomerRepository(store),
		Users:     memory.NewUserRepository(store),
		Movements: memory.NewMovementRepository(store),
	}
	opts := DefaultOptions()
	opts.MaxRetries = maxRetries
	opts.RetryInterval = 1
	return newFixtureWith(t, store, repos, memory.NewTxManager(store), opts), orders
}

func TestLedger_RetriesConcurrencyConflict(t *testing.T) {
	ctx := context.Background()
	f, orders := newConflictFixture(t, 2, 3)
	ron := f.product(t, "RON", 1000, 5)
	o := f.order(t)

	li, err := f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, orders.calls)
	assert.Equal(t, 3, f.stock(t, ron.ID), "回滚的尝试不重复扣库存")
	assert.Equal(t, int64(2000), f.total(t, o.ID))

	items, err := f.ledger.ListLineItems(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, li.ID, items[0].ID)
	assert.Equal(t, []string{sale.EventLineItemCreated}, f.published.types())
}

func TestLedger_RetriesExhausted(t *testing.T) {
	ctx := context.Background()
	f, orders := newConflictFixture(t, 10, 2)
	ron := f.product(t, "RON", 1000, 5)
	o := f.order(t)

	_, err := f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 2)
	assert.ErrorIs(t, err, sale.ErrConcurrencyConflict)
	assert.Equal(t, 3, orders.calls)
	assert.Equal(t, 5, f.stock(t, ron.ID))
	assert.Empty(t, f.published.types())
}

func TestLedger_NoRetryOnBusinessError(t *testing.T) {
	ctx := context.Background()
	f, orders := newConflictFixture(t, 0, 3)
	ron := f.product(t, "RON", 1000, 1)
	o := f.order(t)

	_, err := f.ledger.CreateLineItem(ctx, o.ID, ron.ID, 2)
	assert.ErrorIs(t, err, sale.ErrInsufficientStock)
	var shortage *sale.StockShortage
	assert.ErrorAs(t, err, &shortage)
	assert.Zero(t, orders.calls)
}
