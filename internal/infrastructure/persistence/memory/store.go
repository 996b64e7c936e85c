// Package memory 内存仓储实现
//
// 用于database.driver=memory的单机模式和测试。
// 所有仓储共享一个Store，事务期间持有Store的互斥锁，
// 失败时整体恢复到事务开始前的快照，语义上等价于串行化隔离级别。
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/xiebiao/licoreria/internal/domain/category"
	"github.com/xiebiao/licoreria/internal/domain/customer"
	"github.com/xiebiao/licoreria/internal/domain/inventory"
	"github.com/xiebiao/licoreria/internal/domain/product"
	"github.com/xiebiao/licoreria/internal/domain/sale"
	"github.com/xiebiao/licoreria/internal/domain/shared"
	"github.com/xiebiao/licoreria/internal/domain/supplier"
	"github.com/xiebiao/licoreria/internal/domain/user"
)

// tables 所有表数据，按值存储，复制map即可得到快照
type tables struct {
	seq        map[string]uint
	users      map[uint]user.User
	categories map[uint]category.Category
	suppliers  map[uint]supplier.Supplier
	customers  map[uint]customer.Customer
	products   map[uint]product.Product
	orders     map[uint]sale.Order
	items      map[uint]sale.LineItem
	movements  []inventory.Movement
}

func newTables() tables {
	return tables{
		seq:        map[string]uint{},
		users:      map[uint]user.User{},
		categories: map[uint]category.Category{},
		suppliers:  map[uint]supplier.Supplier{},
		customers:  map[uint]customer.Customer{},
		products:   map[uint]product.Product{},
		orders:     map[uint]sale.Order{},
		items:      map[uint]sale.LineItem{},
	}
}

func (t tables) clone() tables {
	return tables{
		seq:        maps.Clone(t.seq),
		users:      maps.Clone(t.users),
		categories: maps.Clone(t.categories),
		suppliers:  maps.Clone(t.suppliers),
		customers:  maps.Clone(t.customers),
		products:   maps.Clone(t.products),
		orders:     maps.Clone(t.orders),
		items:      maps.Clone(t.items),
		movements:  slices.Clone(t.movements),
	}
}

// Store 内存数据库
type Store struct {
	mu   sync.Mutex
	data tables
}

// NewStore 创建空的内存数据库
func NewStore() *Store {
	return &Store{data: newTables()}
}

type txKey struct{}

// inTx ctx是否处于本Store的事务中
func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock 事务外的单条操作加锁，事务内已持有锁
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) nextID(table string) uint {
	s.data.seq[table]++
	return s.data.seq[table]
}

// TxManager 内存事务管理器
type TxManager struct {
	store *Store
}

var _ shared.TxManager = (*TxManager)(nil)

// NewTxManager 创建事务管理器
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Transaction 执行事务
// 嵌套调用不重复加锁，内层失败只回滚内层的修改(类似Savepoint)
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s := m.store
	if s.inTx(ctx) {
		snap := s.data.clone()
		if err := fn(ctx); err != nil {
			s.data = snap
			return err
		}
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snap
		return err
	}
	return nil
}
