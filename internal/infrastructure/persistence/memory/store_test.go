package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/licoreria/internal/domain/customer"
	"github.com/xiebiao/licoreria/internal/domain/product"
	"github.com/xiebiao/licoreria/internal/domain/sale"
	"github.com/xiebiao/licoreria/internal/domain/shared"
	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

func newProduct(t *testing.T, s *Store, code, name string, stock int) *product.Product {
	t.Helper()
	p, err := product.NewProduct(code, name, "", "botella", 1000, 2500, stock, 1, 0)
	require.NoError(t, err)
	require.NoError(t, NewProductRepository(s).Create(context.Background(), p))
	return p
}

func TestTxManager_RollbackRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	products := NewProductRepository(s)
	p := newProduct(t, s, "R1", "Ron Abuelo", 10)

	boom := errors.New("boom")
	err := NewTxManager(s).Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, products.UpdateStock(ctx, p.ID, -4))
		p2, err := product.NewProduct("R2", "Vino", "", "botella", 0, 100, 1, 1, 0)
		require.NoError(t, err)
		require.NoError(t, products.Create(ctx, p2))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
	_, err = products.FindByCode(ctx, "R2")
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestTxManager_NestedRollbackOnlyInner(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	products := NewProductRepository(s)
	txm := NewTxManager(s)
	p := newProduct(t, s, "R1", "Ron Abuelo", 10)

	err := txm.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, products.UpdateStock(ctx, p.ID, -1))
		inner := txm.Transaction(ctx, func(ctx context.Context) error {
			require.NoError(t, products.UpdateStock(ctx, p.ID, -5))
			return errors.New("inner")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)

	got, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)
}

func TestTxManager_Serializes(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	products := NewProductRepository(s)
	txm := NewTxManager(s)
	p := newProduct(t, s, "R1", "Ron Abuelo", 50)

	var wg sync.WaitGroup
	var sold sync.Map
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := txm.Transaction(ctx, func(ctx context.Context) error {
				cur, err := products.LockByID(ctx, p.ID)
				if err != nil {
					return err
				}
				if !cur.HasStock(1) {
					return product.ErrInsufficientStock
				}
				return products.UpdateStock(ctx, p.ID, -1)
			})
			if err == nil {
				sold.Store(i, true)
			}
		}(i)
	}
	wg.Wait()

	n := 0
	sold.Range(func(_, _ any) bool { n++; return true })
	assert.Equal(t, 50, n)

	got, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestProductRepository_UpdateStock(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := NewProductRepository(s)
	p := newProduct(t, s, "R1", "Ron Abuelo", 2)

	assert.ErrorIs(t, repo.UpdateStock(ctx, p.ID, -3), product.ErrInsufficientStock)
	assert.ErrorIs(t, repo.UpdateStock(ctx, 999, 1), product.ErrProductNotFound)
	require.NoError(t, repo.UpdateStock(ctx, p.ID, 3))

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	dup, err := product.NewProduct("R1", "x", "", "botella", 0, 1, 0, 1, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), product.ErrCodeDuplicate)
}

func TestProductRepository_ListKeywordCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	newProduct(t, s, "RON-01", "Ron Abuelo", 1)
	newProduct(t, s, "VIN-01", "Vino Tinto Kohlberg", 1)
	repo := NewProductRepository(s)

	list, total, err := repo.List(ctx, product.ListParams{Keyword: "ron"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "RON-01", list[0].Code)

	// 名称也参与匹配
	list, total, err = repo.List(ctx, product.ListParams{Keyword: "TINTO"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "VIN-01", list[0].Code)
}

func TestOrderRepository_VersionAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	orders := NewOrderRepository(s)

	o := sale.NewOrder("VTA1", 1, 1)
	require.NoError(t, orders.Create(ctx, o))

	require.NoError(t, orders.UpdateTotal(ctx, o.ID, 100, 0))
	assert.ErrorIs(t, orders.UpdateTotal(ctx, o.ID, 200, 0), sale.ErrConcurrencyConflict)

	require.NoError(t, orders.Delete(ctx, o.ID))
	_, err := orders.FindByID(ctx, o.ID)
	assert.ErrorIs(t, err, sale.ErrOrderNotFound)

	list, total, err := orders.List(ctx, sale.ListParams{Page: shared.Page{Page: 1, PageSize: 10}})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestLineItemRepository_ActiveOnly(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	items := NewLineItemRepository(s)

	a, err := sale.NewLineItem(1, 7, 2, 100)
	require.NoError(t, err)
	require.NoError(t, items.Create(ctx, a))
	b, err := sale.NewLineItem(1, 8, 1, 300)
	require.NoError(t, err)
	require.NoError(t, items.Create(ctx, b))

	require.NoError(t, items.Delete(ctx, a.ID))
	assert.ErrorIs(t, items.Delete(ctx, a.ID), sale.ErrLineItemNotFound)

	list, err := items.ListByOrder(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	n, err := items.CountActiveByProduct(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCustomerRepository_DuplicateCI(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository(NewStore())

	c1, err := customer.NewCustomer("1234567", "Ana", "Quispe", "Mamani", "ana@mail.bo", "7123")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c1))

	c2, err := customer.NewCustomer("1234567", "Luis", "Rojas", "Vaca", "luis@mail.bo", "7999")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, c2), customer.ErrCIDuplicate)
}

func TestSessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore()
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }

	require.NoError(t, s.SaveSession(ctx, 1, map[string]interface{}{"username": "admin", "role": "admin"}, time.Minute))
	got, err := s.GetSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "admin", got["username"])

	require.NoError(t, s.AddToBlacklist(ctx, "tok", time.Minute))
	in, err := s.IsInBlacklist(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, in)

	now = now.Add(2 * time.Minute)
	_, err = s.GetSession(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	in, err = s.IsInBlacklist(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, in)
}
