package integration

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

// TestSaleScenario 添加明细扣库存，库存不足不产生任何修改，删除明细归还库存
func TestSaleScenario(t *testing.T) {
	e := NewEnvWithUsers(t)
	categoryID := e.CreateCategory("Singanis")
	customerID := e.CreateCustomer("4455667")
	p1 := e.CreateProduct(categoryID, "P1", "25.00", 10)
	p2 := e.CreateProduct(categoryID, "P2", "40.00", 7)

	order := e.CreateOrder(customerID)
	assert.Equal(t, "0.00", order.Total)
	assert.Equal(t, e.SellerID, order.UserID)
	assert.NotEmpty(t, order.OrderNo)

	var line LineItemData
	e.Decode(e.OK(e.AddLine(order.ID, p1.ID, 3)), &line)
	assert.Equal(t, "25.00", line.UnitPrice)
	assert.Equal(t, "75.00", line.Subtotal)
	assert.Equal(t, 7, e.GetProduct(p1.ID).Stock)
	assert.Equal(t, "75.00", e.GetOrder(order.ID).Total)

	t.Run("库存不足", func(t *testing.T) {
		resp := e.AddLine(order.ID, p2.ID, 8)
		assert.Equal(t, apperrors.ErrCodeInsufficientStock, resp.Code)
		assert.Contains(t, resp.Message, "需要8")
		assert.Contains(t, resp.Message, "可用7")
		assert.Equal(t, 7, e.GetProduct(p2.ID).Stock)
		assert.Equal(t, 7, e.GetProduct(p1.ID).Stock)
		assert.Equal(t, "75.00", e.GetOrder(order.ID).Total)
	})

	t.Run("同一销售单重复添加商品", func(t *testing.T) {
		resp := e.AddLine(order.ID, p1.ID, 1)
		assert.Equal(t, apperrors.ErrCodeDuplicateLineItem, resp.Code)
	})

	t.Run("删除明细归还库存", func(t *testing.T) {
		e.OK(e.Call("DELETE", "/api/v1/line-items/"+itoa(line.ID), e.SellerToken, nil))
		assert.Equal(t, 10, e.GetProduct(p1.ID).Stock)
		assert.Equal(t, "0.00", e.GetOrder(order.ID).Total)

		resp := e.Call("DELETE", "/api/v1/line-items/"+itoa(line.ID), e.SellerToken, nil)
		assert.Equal(t, apperrors.ErrCodeLineItemNotFound, resp.Code)
		assert.Equal(t, 10, e.GetProduct(p1.ID).Stock)
	})

	t.Run("库存流水", func(t *testing.T) {
		var page PageData[struct {
			Type  string `json:"type"`
			Delta int    `json:"delta"`
		}]
		e.Decode(e.OK(e.Call("GET", fmt.Sprintf("/api/v1/products/%d/movements", p1.ID), e.AdminToken, nil)), &page)
		// 初始库存、销售、归还
		require.Len(t, page.List, 3)
		assert.Equal(t, "RESTORE", page.List[0].Type)
		assert.Equal(t, 3, page.List[0].Delta)
	})
}

// TestUpdateLineItem 修改数量与更换商品
func TestUpdateLineItem(t *testing.T) {
	e := NewEnvWithUsers(t)
	categoryID := e.CreateCategory("Vinos")
	customerID := e.CreateCustomer("111")
	tinto := e.CreateProduct(categoryID, "V1", "50.00", 10)
	blanco := e.CreateProduct(categoryID, "V2", "45.50", 4)
	order := e.CreateOrder(customerID)

	var line LineItemData
	e.Decode(e.OK(e.AddLine(order.ID, tinto.ID, 2)), &line)
	path := "/api/v1/line-items/" + itoa(line.ID)

	e.Decode(e.OK(e.Call("PATCH", path, e.SellerToken, map[string]any{"quantity": 6})), &line)
	assert.Equal(t, "300.00", line.Subtotal)
	assert.Equal(t, 4, e.GetProduct(tinto.ID).Stock)
	assert.Equal(t, "300.00", e.GetOrder(order.ID).Total)

	// 新商品库存不足时整体不生效
	resp := e.Call("PATCH", path, e.SellerToken, map[string]any{"product_id": blanco.ID})
	assert.Equal(t, apperrors.ErrCodeInsufficientStock, resp.Code)
	assert.Equal(t, 4, e.GetProduct(tinto.ID).Stock)
	assert.Equal(t, 4, e.GetProduct(blanco.ID).Stock)

	e.Decode(e.OK(e.Call("PATCH", path, e.SellerToken, map[string]any{"product_id": blanco.ID, "quantity": 3})), &line)
	assert.Equal(t, blanco.ID, line.ProductID)
	assert.Equal(t, "45.50", line.UnitPrice)
	assert.Equal(t, "136.50", line.Subtotal)
	assert.Equal(t, 10, e.GetProduct(tinto.ID).Stock)
	assert.Equal(t, 1, e.GetProduct(blanco.ID).Stock)

	got := e.GetOrder(order.ID)
	assert.Equal(t, "136.50", got.Total)
	require.Len(t, got.Items, 1)
	assert.Equal(t, blanco.ID, got.Items[0].ProductID)

	var total struct {
		Total string `json:"total"`
	}
	e.Decode(e.OK(e.Call("GET", fmt.Sprintf("/api/v1/orders/%d/total", order.ID), e.SellerToken, nil)), &total)
	assert.Equal(t, "136.50", total.Total)
}

// TestPriceChangeKeepsSnapshot 调价不影响已有明细
func TestPriceChangeKeepsSnapshot(t *testing.T) {
	e := NewEnvWithUsers(t)
	categoryID := e.CreateCategory("Whisky")
	customerID := e.CreateCustomer("222")
	p := e.CreateProduct(categoryID, "W1", "200.00", 5)
	order := e.CreateOrder(customerID)
	e.OK(e.AddLine(order.ID, p.ID, 1))

	e.OK(e.Call("PATCH", fmt.Sprintf("/api/v1/products/%d/price", p.ID), e.AdminToken, map[string]any{
		"purchase_price": "150.00", "sale_price": "250.00",
	}))
	assert.Equal(t, "250.00", e.GetProduct(p.ID).SalePrice)

	got := e.GetOrder(order.ID)
	assert.Equal(t, "200.00", got.Total)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "200.00", got.Items[0].UnitPrice)

	// 价格格式错误
	resp := e.Call("PATCH", fmt.Sprintf("/api/v1/products/%d/price", p.ID), e.AdminToken, map[string]any{
		"purchase_price": "1.001", "sale_price": "2",
	})
	assert.Equal(t, apperrors.ErrCodeInvalidPrice, resp.Code)
}

// TestDeleteOrder 删除销售单归还全部库存，被引用的资源不能删除
func TestDeleteOrder(t *testing.T) {
	e := NewEnvWithUsers(t)
	categoryID := e.CreateCategory("Ron")
	customerID := e.CreateCustomer("333")
	a := e.CreateProduct(categoryID, "R1", "30.00", 5)
	b := e.CreateProduct(categoryID, "R2", "35.00", 5)
	order := e.CreateOrder(customerID)
	e.OK(e.AddLine(order.ID, a.ID, 2))
	e.OK(e.AddLine(order.ID, b.ID, 5))

	resp := e.Call("DELETE", fmt.Sprintf("/api/v1/products/%d", b.ID), e.AdminToken, nil)
	assert.Equal(t, apperrors.ErrCodeProductInUse, resp.Code)
	resp = e.Call("DELETE", fmt.Sprintf("/api/v1/customers/%d", customerID), e.AdminToken, nil)
	assert.Equal(t, apperrors.ErrCodeResourceInUse, resp.Code)
	resp = e.Call("DELETE", fmt.Sprintf("/api/v1/categories/%d", categoryID), e.AdminToken, nil)
	assert.Equal(t, apperrors.ErrCodeResourceInUse, resp.Code)

	e.OK(e.Call("DELETE", fmt.Sprintf("/api/v1/orders/%d", order.ID), e.SellerToken, nil))
	assert.Equal(t, 5, e.GetProduct(a.ID).Stock)
	assert.Equal(t, 5, e.GetProduct(b.ID).Stock)

	resp = e.Call("GET", fmt.Sprintf("/api/v1/orders/%d", order.ID), e.SellerToken, nil)
	assert.Equal(t, apperrors.ErrCodeOrderNotFound, resp.Code)

	e.OK(e.Call("DELETE", fmt.Sprintf("/api/v1/products/%d", b.ID), e.AdminToken, nil))
}

// TestConcurrentCheckout 多个收银台同时卖同一商品，库存不会变成负数
func TestConcurrentCheckout(t *testing.T) {
	e := NewEnvWithUsers(t)
	categoryID := e.CreateCategory("Cervezas")
	p := e.CreateProduct(categoryID, "C1", "10.00", 12)

	const buyers = 20
	orders := make([]OrderData, buyers)
	for i := range orders {
		orders[i] = e.CreateOrder(e.CreateCustomer(fmt.Sprintf("9%03d", i)))
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sold int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(orderID uint) {
			defer wg.Done()
			// resty客户端并发安全；这里不能调用require，只记录结果
			resp, err := e.client.R().
				SetAuthToken(e.SellerToken).
				SetBody(map[string]any{"order_id": orderID, "product_id": p.ID, "quantity": 1}).
				SetResult(&Response{}).
				Post("/api/v1/line-items")
			if err != nil {
				return
			}
			if r, ok := resp.Result().(*Response); ok && r.Code == 0 {
				mu.Lock()
				sold++
				mu.Unlock()
			}
		}(orders[i].ID)
	}
	wg.Wait()

	assert.Equal(t, 12, sold)
	assert.Equal(t, 0, e.GetProduct(p.ID).Stock)
}

// TestMetricsEndpoint /metrics暴露台账指标
func TestMetricsEndpoint(t *testing.T) {
	e := NewEnvWithUsers(t)
	categoryID := e.CreateCategory("Licores")
	p := e.CreateProduct(categoryID, "L1", "10.00", 1)
	order := e.CreateOrder(e.CreateCustomer("555"))
	e.OK(e.AddLine(order.ID, p.ID, 1))

	resp, err := e.client.R().Get("/metrics")
	require.NoError(t, err)
	assert.Contains(t, resp.String(), "licoreria_ledger_operations_total")
	assert.Contains(t, resp.String(), "licoreria_http_requests_total")
}
