package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/xiebiao/licoreria/internal/domain/category"
	"github.com/xiebiao/licoreria/internal/domain/customer"
	"github.com/xiebiao/licoreria/internal/domain/supplier"
	"github.com/xiebiao/licoreria/internal/domain/user"
	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

// ============ 用户 ============

type userRepository struct{ s *Store }

// NewUserRepository 创建用户仓储
func NewUserRepository(s *Store) user.Repository { return &userRepository{s: s} }

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.data.users {
		if existing.Username == u.Username {
			return apperrors.ErrUsernameDuplicate
		}
	}
	now := time.Now()
	u.ID = r.s.nextID("users")
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	defer r.s.lock(ctx)()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	defer r.s.lock(ctx)()
	for _, u := range r.s.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	defer r.s.lock(ctx)()
	return int64(len(r.s.data.users)), nil
}

// ============ 分类 ============

type categoryRepository struct{ s *Store }

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(s *Store) category.Repository { return &categoryRepository{s: s} }

func (r *categoryRepository) nameTaken(name string, exceptID uint) bool {
	for id, c := range r.s.data.categories {
		if id != exceptID && c.Name == name {
			return true
		}
	}
	return false
}

func (r *categoryRepository) Create(ctx context.Context, c *category.Category) error {
	defer r.s.lock(ctx)()
	if r.nameTaken(c.Name, 0) {
		return category.ErrNameDuplicate
	}
	now := time.Now()
	c.ID = r.s.nextID("categories")
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.data.categories[c.ID] = *c
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*category.Category, error) {
	defer r.s.lock(ctx)()
	c, ok := r.s.data.categories[id]
	if !ok {
		return nil, category.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *categoryRepository) Update(ctx context.Context, c *category.Category) error {
	defer r.s.lock(ctx)()
	old, ok := r.s.data.categories[c.ID]
	if !ok {
		return category.ErrCategoryNotFound
	}
	if r.nameTaken(c.Name, c.ID) {
		return category.ErrNameDuplicate
	}
	old.Name = c.Name
	old.UpdatedAt = time.Now()
	r.s.data.categories[c.ID] = old
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.categories[id]; !ok {
		return category.ErrCategoryNotFound
	}
	delete(r.s.data.categories, id)
	return nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*category.Category, error) {
	defer r.s.lock(ctx)()
	list := make([]*category.Category, 0, len(r.s.data.categories))
	for _, c := range r.s.data.categories {
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// ============ 供应商 ============

type supplierRepository struct{ s *Store }

// NewSupplierRepository 创建供应商仓储
func NewSupplierRepository(s *Store) supplier.Repository { return &supplierRepository{s: s} }

func (r *supplierRepository) Create(ctx context.Context, sp *supplier.Supplier) error {
	defer r.s.lock(ctx)()
	now := time.Now()
	sp.ID = r.s.nextID("suppliers")
	sp.CreatedAt, sp.UpdatedAt = now, now
	r.s.data.suppliers[sp.ID] = *sp
	return nil
}

func (r *supplierRepository) FindByID(ctx context.Context, id uint) (*supplier.Supplier, error) {
	defer r.s.lock(ctx)()
	sp, ok := r.s.data.suppliers[id]
	if !ok {
		return nil, supplier.ErrSupplierNotFound
	}
	return &sp, nil
}

func (r *supplierRepository) Update(ctx context.Context, sp *supplier.Supplier) error {
	defer r.s.lock(ctx)()
	old, ok := r.s.data.suppliers[sp.ID]
	if !ok {
		return supplier.ErrSupplierNotFound
	}
	old.Name, old.Phone, old.Email = sp.Name, sp.Phone, sp.Email
	old.UpdatedAt = time.Now()
	r.s.data.suppliers[sp.ID] = old
	return nil
}

func (r *supplierRepository) Delete(ctx context.Context, id uint) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.suppliers[id]; !ok {
		return supplier.ErrSupplierNotFound
	}
	delete(r.s.data.suppliers, id)
	return nil
}

func (r *supplierRepository) List(ctx context.Context) ([]*supplier.Supplier, error) {
	defer r.s.lock(ctx)()
	list := make([]*supplier.Supplier, 0, len(r.s.data.suppliers))
	for _, sp := range r.s.data.suppliers {
		list = append(list, &sp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// ============ 客户 ============

type customerRepository struct{ s *Store }

// NewCustomerRepository 创建客户仓储
func NewCustomerRepository(s *Store) customer.Repository { return &customerRepository{s: s} }

func (r *customerRepository) ciTaken(ci string, exceptID uint) bool {
	for id, c := range r.s.data.customers {
		if id != exceptID && c.CI == ci {
			return true
		}
	}
	return false
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	defer r.s.lock(ctx)()
	if r.ciTaken(c.CI, 0) {
		return customer.ErrCIDuplicate
	}
	now := time.Now()
	c.ID = r.s.nextID("customers")
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.data.customers[c.ID] = *c
	return nil
}

func (r *customerRepository) FindByID(ctx context.Context, id uint) (*customer.Customer, error) {
	defer r.s.lock(ctx)()
	c, ok := r.s.data.customers[id]
	if !ok {
		return nil, customer.ErrCustomerNotFound
	}
	return &c, nil
}

func (r *customerRepository) FindByCI(ctx context.Context, ci string) (*customer.Customer, error) {
	defer r.s.lock(ctx)()
	for _, c := range r.s.data.customers {
		if c.CI == ci {
			return &c, nil
		}
	}
	return nil, customer.ErrCustomerNotFound
}

func (r *customerRepository) Update(ctx context.Context, c *customer.Customer) error {
	defer r.s.lock(ctx)()
	old, ok := r.s.data.customers[c.ID]
	if !ok {
		return customer.ErrCustomerNotFound
	}
	if r.ciTaken(c.CI, c.ID) {
		return customer.ErrCIDuplicate
	}
	updated := *c
	updated.CreatedAt = old.CreatedAt
	updated.UpdatedAt = time.Now()
	r.s.data.customers[c.ID] = updated
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id uint) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.customers[id]; !ok {
		return customer.ErrCustomerNotFound
	}
	delete(r.s.data.customers, id)
	return nil
}

func (r *customerRepository) List(ctx context.Context, params customer.ListParams) ([]*customer.Customer, int64, error) {
	defer r.s.lock(ctx)()
	kw := strings.ToLower(params.Keyword)
	var matched []*customer.Customer
	for _, c := range r.s.data.customers {
		if kw != "" && !containsFold(kw, c.CI, c.Names, c.PaternalSurname, c.MaternalSurname) {
			continue
		}
		matched = append(matched, &c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, params.Page), int64(len(matched)), nil
}

// containsFold kw已转小写
func containsFold(kw string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), kw) {
			return true
		}
	}
	return false
}
