package memory

import (
	"context"
	"sort"
	"time"

	"github.com/xiebiao/licoreria/internal/domain/sale"
)

// ============ 销售单 ============

type orderRepository struct{ s *Store }

// NewOrderRepository 创建销售单仓储
func NewOrderRepository(s *Store) sale.OrderRepository { return &orderRepository{s: s} }

// active 未删除的销售单
func (r *orderRepository) active(id uint) (sale.Order, bool) {
	o, ok := r.s.data.orders[id]
	if !ok || !o.IsActive() {
		return sale.Order{}, false
	}
	return o, true
}

func (r *orderRepository) Create(ctx context.Context, o *sale.Order) error {
	defer r.s.lock(ctx)()
	now := time.Now()
	o.ID = r.s.nextID("orders")
	o.CreatedAt, o.UpdatedAt = now, now
	stored := *o
	stored.Items = nil
	r.s.data.orders[o.ID] = stored
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*sale.Order, error) {
	defer r.s.lock(ctx)()
	o, ok := r.active(id)
	if !ok {
		return nil, sale.ErrOrderNotFound
	}
	return &o, nil
}

func (r *orderRepository) LockByID(ctx context.Context, id uint) (*sale.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *orderRepository) List(ctx context.Context, params sale.ListParams) ([]*sale.Order, int64, error) {
	defer r.s.lock(ctx)()
	var matched []*sale.Order
	for _, o := range r.s.data.orders {
		if !o.IsActive() {
			continue
		}
		if params.UserID > 0 && o.UserID != params.UserID {
			continue
		}
		if params.CustomerID > 0 && o.CustomerID != params.CustomerID {
			continue
		}
		matched = append(matched, &o)
	}
	// 新的在前
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return paginate(matched, params.Page), int64(len(matched)), nil
}

func (r *orderRepository) Update(ctx context.Context, o *sale.Order) error {
	defer r.s.lock(ctx)()
	old, ok := r.active(o.ID)
	if !ok {
		return sale.ErrOrderNotFound
	}
	old.UserID = o.UserID
	old.CustomerID = o.CustomerID
	old.UpdatedAt = time.Now()
	r.s.data.orders[o.ID] = old
	return nil
}

func (r *orderRepository) UpdateTotal(ctx context.Context, id uint, total int64, version int) error {
	defer r.s.lock(ctx)()
	o, ok := r.active(id)
	if !ok {
		return sale.ErrOrderNotFound
	}
	if o.Version != version {
		return sale.ErrConcurrencyConflict
	}
	o.Total = total
	o.Version++
	o.UpdatedAt = time.Now()
	r.s.data.orders[id] = o
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	defer r.s.lock(ctx)()
	o, ok := r.active(id)
	if !ok {
		return sale.ErrOrderNotFound
	}
	o.MarkDeleted(time.Now())
	r.s.data.orders[id] = o
	return nil
}

// ============ 销售明细 ============

type lineItemRepository struct{ s *Store }

// NewLineItemRepository 创建销售明细仓储
func NewLineItemRepository(s *Store) sale.LineItemRepository { return &lineItemRepository{s: s} }

func (r *lineItemRepository) Create(ctx context.Context, li *sale.LineItem) error {
	defer r.s.lock(ctx)()
	now := time.Now()
	li.ID = r.s.nextID("line_items")
	li.CreatedAt, li.UpdatedAt = now, now
	r.s.data.items[li.ID] = *li
	return nil
}

func (r *lineItemRepository) FindByID(ctx context.Context, id uint) (*sale.LineItem, error) {
	defer r.s.lock(ctx)()
	li, ok := r.s.data.items[id]
	if !ok || !li.IsActive() {
		return nil, sale.ErrLineItemNotFound
	}
	return &li, nil
}

func (r *lineItemRepository) FindActive(ctx context.Context, orderID, productID uint) (*sale.LineItem, error) {
	defer r.s.lock(ctx)()
	for _, li := range r.s.data.items {
		if li.IsActive() && li.OrderID == orderID && li.ProductID == productID {
			return &li, nil
		}
	}
	return nil, sale.ErrLineItemNotFound
}

func (r *lineItemRepository) ListByOrder(ctx context.Context, orderID uint) ([]*sale.LineItem, error) {
	defer r.s.lock(ctx)()
	items := []*sale.LineItem{}
	for _, li := range r.s.data.items {
		if li.IsActive() && li.OrderID == orderID {
			items = append(items, &li)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *lineItemRepository) CountActiveByProduct(ctx context.Context, productID uint) (int64, error) {
	defer r.s.lock(ctx)()
	var n int64
	for _, li := range r.s.data.items {
		if li.IsActive() && li.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (r *lineItemRepository) Update(ctx context.Context, li *sale.LineItem) error {
	defer r.s.lock(ctx)()
	old, ok := r.s.data.items[li.ID]
	if !ok || !old.IsActive() {
		return sale.ErrLineItemNotFound
	}
	old.ProductID = li.ProductID
	old.Quantity = li.Quantity
	old.UnitPrice = li.UnitPrice
	old.Subtotal = li.Subtotal
	old.UpdatedAt = time.Now()
	r.s.data.items[li.ID] = old
	return nil
}

func (r *lineItemRepository) Delete(ctx context.Context, id uint) error {
	defer r.s.lock(ctx)()
	li, ok := r.s.data.items[id]
	if !ok || !li.IsActive() {
		return sale.ErrLineItemNotFound
	}
	li.MarkDeleted(time.Now())
	r.s.data.items[id] = li
	return nil
}
