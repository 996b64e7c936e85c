package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/licoreria/internal/domain/category"
	"github.com/xiebiao/licoreria/internal/domain/customer"
	"github.com/xiebiao/licoreria/internal/domain/product"
	"github.com/xiebiao/licoreria/internal/domain/sale"
	"github.com/xiebiao/licoreria/internal/domain/supplier"
	"github.com/xiebiao/licoreria/internal/infrastructure/persistence/memory"
)

type env struct {
	svc      *Service
	products product.Repository
	orders   sale.OrderRepository
}

func newEnv() *env {
	store := memory.NewStore()
	e := &env{
		products: memory.NewProductRepository(store),
		orders:   memory.NewOrderRepository(store),
	}
	e.svc = NewService(
		memory.NewTxManager(store),
		memory.NewCategoryRepository(store),
		memory.NewSupplierRepository(store),
		memory.NewCustomerRepository(store),
		e.products,
		e.orders,
	)
	return e
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	vinos, err := e.svc.CreateCategory(ctx, "  Vinos ")
	require.NoError(t, err)
	assert.Equal(t, "Vinos", vinos.Name)

	_, err = e.svc.CreateCategory(ctx, "Vinos")
	assert.ErrorIs(t, err, category.ErrNameDuplicate)

	_, err = e.svc.CreateCategory(ctx, "")
	assert.ErrorIs(t, err, category.ErrInvalidName)

	cervezas, err := e.svc.CreateCategory(ctx, "Cervezas")
	require.NoError(t, err)

	_, err = e.svc.RenameCategory(ctx, cervezas.ID, "Vinos")
	assert.ErrorIs(t, err, category.ErrNameDuplicate)

	renamed, err := e.svc.RenameCategory(ctx, cervezas.ID, "Cerveza artesanal")
	require.NoError(t, err)
	assert.Equal(t, "Cerveza artesanal", renamed.Name)

	list, err := e.svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Cerveza artesanal", list[0].Name)
}

func TestDeleteCategoryInUse(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	c, err := e.svc.CreateCategory(ctx, "Singanis")
	require.NoError(t, err)
	p, err := product.NewProduct("SIN-1", "Singani", "", "botella", 100, 200, 1, c.ID, 0)
	require.NoError(t, err)
	require.NoError(t, e.products.Create(ctx, p))

	assert.ErrorIs(t, e.svc.DeleteCategory(ctx, c.ID), category.ErrCategoryInUse)

	require.NoError(t, e.products.Delete(ctx, p.ID))
	require.NoError(t, e.svc.DeleteCategory(ctx, c.ID))
	assert.ErrorIs(t, e.svc.DeleteCategory(ctx, c.ID), category.ErrCategoryNotFound)
}

func TestSuppliers(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	sp, err := e.svc.CreateSupplier(ctx, SupplierRequest{Name: "Distribuidora Sur", Phone: "2224455", Email: "ventas@sur.bo"})
	require.NoError(t, err)

	_, err = e.svc.CreateSupplier(ctx, SupplierRequest{Name: "X", Email: "no-es-correo"})
	assert.ErrorIs(t, err, supplier.ErrInvalidEmail)

	_, err = e.svc.UpdateSupplier(ctx, sp.ID, SupplierRequest{Name: ""})
	assert.ErrorIs(t, err, supplier.ErrInvalidName)
	unchanged, err := e.svc.GetSupplier(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Distribuidora Sur", unchanged.Name)

	updated, err := e.svc.UpdateSupplier(ctx, sp.ID, SupplierRequest{Name: "Distribuidora Norte", Phone: "2220000"})
	require.NoError(t, err)
	assert.Empty(t, updated.Email)

	require.NoError(t, e.svc.DeleteSupplier(ctx, sp.ID))
	_, err = e.svc.GetSupplier(ctx, sp.ID)
	assert.ErrorIs(t, err, supplier.ErrSupplierNotFound)
}

func TestCustomers(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	req := CustomerRequest{
		CI: "4455667", Names: "Juan", PaternalSurname: "Perez", MaternalSurname: "Rojas",
		Email: "juan@mail.bo", Phone: "7654321",
	}
	c, err := e.svc.CreateCustomer(ctx, req)
	require.NoError(t, err)

	_, err = e.svc.CreateCustomer(ctx, req)
	assert.ErrorIs(t, err, customer.ErrCIDuplicate)

	bad := req
	bad.Phone = "123456789"
	_, err = e.svc.UpdateCustomer(ctx, c.ID, bad)
	assert.ErrorIs(t, err, customer.ErrInvalidPhone)

	list, total, err := e.svc.ListCustomers(ctx, customer.ListParams{Keyword: "perez"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, c.ID, list[0].ID)

	o := sale.NewOrder(sale.GenerateOrderNo(), 1, c.ID)
	require.NoError(t, e.orders.Create(ctx, o))
	assert.ErrorIs(t, e.svc.DeleteCustomer(ctx, c.ID), customer.ErrCustomerInUse)

	require.NoError(t, e.orders.Delete(ctx, o.ID))
	require.NoError(t, e.svc.DeleteCustomer(ctx, c.ID))
}
