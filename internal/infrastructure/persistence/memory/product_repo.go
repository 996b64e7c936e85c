package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/xiebiao/licoreria/internal/domain/inventory"
	"github.com/xiebiao/licoreria/internal/domain/product"
	"github.com/xiebiao/licoreria/internal/domain/shared"
)

type productRepository struct{ s *Store }

// NewProductRepository 创建商品仓储
func NewProductRepository(s *Store) product.Repository { return &productRepository{s: s} }

func (r *productRepository) Create(ctx context.Context, p *product.Product) error {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.data.products {
		if existing.Code == p.Code {
			return product.ErrCodeDuplicate
		}
	}
	now := time.Now()
	p.ID = r.s.nextID("products")
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.data.products[p.ID] = *p
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	defer r.s.lock(ctx)()
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return &p, nil
}

func (r *productRepository) FindByCode(ctx context.Context, code string) (*product.Product, error) {
	defer r.s.lock(ctx)()
	for _, p := range r.s.data.products {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, product.ErrProductNotFound
}

// Update 不修改库存
func (r *productRepository) Update(ctx context.Context, p *product.Product) error {
	defer r.s.lock(ctx)()
	old, ok := r.s.data.products[p.ID]
	if !ok {
		return product.ErrProductNotFound
	}
	updated := *p
	updated.Code = old.Code
	updated.Stock = old.Stock
	updated.CreatedAt = old.CreatedAt
	updated.UpdatedAt = time.Now()
	r.s.data.products[p.ID] = updated
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.products[id]; !ok {
		return product.ErrProductNotFound
	}
	delete(r.s.data.products, id)
	return nil
}

func (r *productRepository) List(ctx context.Context, params product.ListParams) ([]*product.Product, int64, error) {
	defer r.s.lock(ctx)()
	kw := strings.ToLower(params.Keyword)
	var matched []*product.Product
	for _, p := range r.s.data.products {
		if params.CategoryID > 0 && p.CategoryID != params.CategoryID {
			continue
		}
		if kw != "" && !containsFold(kw, p.Code, p.Name) {
			continue
		}
		matched = append(matched, &p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, params.Page), int64(len(matched)), nil
}

// LockByID 事务持有整个Store的锁，行锁退化为普通查询
func (r *productRepository) LockByID(ctx context.Context, id uint) (*product.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *productRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	defer r.s.lock(ctx)()
	p, ok := r.s.data.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return product.ErrInsufficientStock
	}
	p.Stock += delta
	p.UpdatedAt = time.Now()
	r.s.data.products[id] = p
	return nil
}

// ============ 库存流水 ============

type movementRepository struct{ s *Store }

// NewMovementRepository 创建库存流水仓储
func NewMovementRepository(s *Store) inventory.Repository { return &movementRepository{s: s} }

func (r *movementRepository) Create(ctx context.Context, m *inventory.Movement) error {
	defer r.s.lock(ctx)()
	m.ID = r.s.nextID("movements")
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.s.data.movements = append(r.s.data.movements, *m)
	return nil
}

// ListByProduct 新的在前
func (r *movementRepository) ListByProduct(ctx context.Context, productID uint, page shared.Page) ([]*inventory.Movement, int64, error) {
	defer r.s.lock(ctx)()
	var matched []*inventory.Movement
	for i := len(r.s.data.movements) - 1; i >= 0; i-- {
		m := r.s.data.movements[i]
		if m.ProductID == productID {
			matched = append(matched, &m)
		}
	}
	return paginate(matched, page), int64(len(matched)), nil
}

func paginate[T any](list []T, page shared.Page) []T {
	p := page.Normalize()
	off := p.Offset()
	if off >= len(list) {
		return []T{}
	}
	return list[off:min(off+p.PageSize, len(list))]
}
