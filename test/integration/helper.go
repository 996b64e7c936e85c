// Package integration 端到端测试
//
// 用database.driver=memory在进程内启动完整的HTTP服务(httptest)，
// 通过resty客户端按真实请求走完 Router → Middleware → Handler → 应用层 → 仓储。
// 不依赖外部MySQL、Redis、RabbitMQ，直接 go test ./test/integration/... 即可运行。
package integration

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/licoreria/internal/bootstrap"
	"github.com/xiebiao/licoreria/internal/infrastructure/config"
	"github.com/xiebiao/licoreria/pkg/logger"
)

// Timeout HTTP请求超时时间
const Timeout = 10 * time.Second

const testPassword = "Test1234"

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// UserData 用户
type UserData struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginData 登录响应
type LoginData struct {
	User         UserData `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

// IDData 只关心ID的响应
type IDData struct {
	ID uint `json:"id"`
}

// ProductData 商品
type ProductData struct {
	ID        uint   `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	SalePrice string `json:"sale_price"`
	Stock     int    `json:"stock"`
}

// LineItemData 销售明细
type LineItemData struct {
	ID        uint   `json:"id"`
	OrderID   uint   `json:"order_id"`
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// OrderData 销售单
type OrderData struct {
	ID         uint           `json:"id"`
	OrderNo    string         `json:"order_no"`
	UserID     uint           `json:"user_id"`
	CustomerID uint           `json:"customer_id"`
	Total      string         `json:"total"`
	Items      []LineItemData `json:"items"`
}

// PageData 分页数据
type PageData[T any] struct {
	List  []T   `json:"list"`
	Total int64 `json:"total"`
}

// Env 一个独立的测试环境：独立的内存存储和HTTP服务
type Env struct {
	t      *testing.T
	client *resty.Client

	AdminToken  string
	SellerToken string
	AdminID     uint
	SellerID    uint
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, Mode: "test"},
		Database: config.DatabaseConfig{Driver: "memory"},
		JWT: config.JWTConfig{
			Secret:             "integration-secret",
			AccessTokenExpire:  time.Hour,
			RefreshTokenExpire: 24 * time.Hour,
		},
		Ledger: config.LedgerConfig{
			MaxRetries:        3,
			RetryInterval:     5 * time.Millisecond,
			LowStockThreshold: 2,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// NewEnv 启动服务，不创建任何用户
func NewEnv(t *testing.T) *Env {
	t.Helper()
	engine, cleanup, err := bootstrap.NewApp(testConfig(), logger.Discard())
	require.NoError(t, err)

	srv := httptest.NewServer(engine)
	t.Cleanup(func() {
		srv.Close()
		cleanup()
	})

	return &Env{
		t:      t,
		client: resty.New().SetBaseURL(srv.URL).SetTimeout(Timeout),
	}
}

// NewEnvWithUsers 启动服务并创建一个管理员和一个收银员，两者均已登录
func NewEnvWithUsers(t *testing.T) *Env {
	e := NewEnv(t)

	admin := e.OK(e.Call("POST", "/api/v1/users", "", map[string]any{
		"username": "admin", "password": testPassword,
	}))
	var adminUser UserData
	e.Decode(admin, &adminUser)
	e.AdminID = adminUser.ID
	e.AdminToken = e.Login("admin", testPassword).AccessToken

	seller := e.OK(e.Call("POST", "/api/v1/users", e.AdminToken, map[string]any{
		"username": "cajero", "password": testPassword, "role": "vendedor",
	}))
	var sellerUser UserData
	e.Decode(seller, &sellerUser)
	e.SellerID = sellerUser.ID
	e.SellerToken = e.Login("cajero", testPassword).AccessToken
	return e
}

// Call 发送请求并解析统一响应
func (e *Env) Call(method, path, token string, body any) *Response {
	e.t.Helper()
	req := e.client.R().SetHeader("Accept", "application/json")
	if token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	require.NoError(e.t, err, "发送HTTP请求失败")
	require.Equal(e.t, 200, resp.StatusCode(), "HTTP状态码: %s", resp.String())

	var result Response
	require.NoError(e.t, json.Unmarshal(resp.Body(), &result), "解析JSON响应失败: %s", resp.String())
	return &result
}

// OK 断言业务码为0
func (e *Env) OK(resp *Response) *Response {
	e.t.Helper()
	require.Equal(e.t, 0, resp.Code, "业务失败: %s", resp.Message)
	return resp
}

// Decode 解析data字段
func (e *Env) Decode(resp *Response, out any) {
	e.t.Helper()
	require.NoError(e.t, json.Unmarshal(resp.Data, out), "解析data失败: %s", string(resp.Data))
}

// Login 登录
func (e *Env) Login(username, password string) LoginData {
	e.t.Helper()
	var data LoginData
	e.Decode(e.OK(e.Call("POST", "/api/v1/users/login", "", map[string]any{
		"username": username, "password": password,
	})), &data)
	return data
}

// CreateCategory 管理员新增分类
func (e *Env) CreateCategory(name string) uint {
	e.t.Helper()
	var data IDData
	e.Decode(e.OK(e.Call("POST", "/api/v1/categories", e.AdminToken, map[string]any{"name": name})), &data)
	return data.ID
}

// CreateCustomer 收银员新增客户
func (e *Env) CreateCustomer(ci string) uint {
	e.t.Helper()
	var data IDData
	e.Decode(e.OK(e.Call("POST", "/api/v1/customers", e.SellerToken, map[string]any{
		"ci":               ci,
		"names":            "Juan",
		"paternal_surname": "Perez",
		"maternal_surname": "Mamani",
		"email":            fmt.Sprintf("c%s@test.bo", ci),
		"phone":            "70000000",
	})), &data)
	return data.ID
}

// CreateProduct 管理员新增商品
func (e *Env) CreateProduct(categoryID uint, code, salePrice string, stock int) ProductData {
	e.t.Helper()
	var data ProductData
	e.Decode(e.OK(e.Call("POST", "/api/v1/products", e.AdminToken, map[string]any{
		"code":           code,
		"name":           "Producto " + code,
		"unit_type":      "botella",
		"purchase_price": "1.00",
		"sale_price":     salePrice,
		"stock":          stock,
		"category_id":    categoryID,
	})), &data)
	return data
}

// GetProduct 查询商品
func (e *Env) GetProduct(id uint) ProductData {
	e.t.Helper()
	var data ProductData
	e.Decode(e.OK(e.Call("GET", fmt.Sprintf("/api/v1/products/%d", id), e.SellerToken, nil)), &data)
	return data
}

// CreateOrder 收银员新建销售单
func (e *Env) CreateOrder(customerID uint) OrderData {
	e.t.Helper()
	var data OrderData
	e.Decode(e.OK(e.Call("POST", "/api/v1/orders", e.SellerToken, map[string]any{"customer_id": customerID})), &data)
	return data
}

// GetOrder 查询销售单(含明细)
func (e *Env) GetOrder(id uint) OrderData {
	e.t.Helper()
	var data OrderData
	e.Decode(e.OK(e.Call("GET", fmt.Sprintf("/api/v1/orders/%d", id), e.SellerToken, nil)), &data)
	return data
}

// AddLine 添加明细
func (e *Env) AddLine(orderID, productID uint, quantity int) *Response {
	e.t.Helper()
	return e.Call("POST", "/api/v1/line-items", e.SellerToken, map[string]any{
		"order_id": orderID, "product_id": productID, "quantity": quantity,
	})
}

func itoa(id uint) string {
	return fmt.Sprint(id)
}
