// Package router 注册全部HTTP路由
package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/xiebiao/licoreria/internal/domain/user"
	"github.com/xiebiao/licoreria/internal/interface/http/handler"
	"github.com/xiebiao/licoreria/internal/interface/http/middleware"
	"github.com/xiebiao/licoreria/pkg/metrics"
	"github.com/xiebiao/licoreria/pkg/response"
)

// Options 路由选项
type Options struct {
	Mode        string // debug | release | test
	ServiceName string // 启用追踪时otelgin使用的服务名，空表示不启用
	MetricsPath string // 空表示不暴露指标
	Swagger     bool
}

// Handlers 全部HTTP处理器
type Handlers struct {
	User    *handler.UserHandler
	Catalog *handler.CatalogHandler
	Product *handler.ProductHandler
	Sale    *handler.SaleHandler
}

// New 创建Gin引擎并注册路由
//
// 权限：
//   - 登录、刷新、健康检查公开
//   - 注册用户走OptionalAuth，由用例判断是否为首个用户或管理员
//   - 分类、供应商、商品的写操作以及调价、库存调整仅限admin
//   - 客户与销售两种角色都可以操作
func New(opts Options, h Handlers, auth *middleware.AuthMiddleware, logger *slog.Logger) *gin.Engine {
	switch opts.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if opts.ServiceName != "" {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(middleware.RequestLogger(logger))
	if opts.MetricsPath != "" {
		r.Use(middleware.Metrics())
		r.GET(opts.MetricsPath, gin.WrapH(metrics.Handler()))
	}
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})

	adminOnly := middleware.RequireRole(user.RoleAdmin)
	v1 := r.Group("/api/v1")

	users := v1.Group("/users")
	{
		users.POST("/login", h.User.Login)
		users.POST("/refresh", h.User.Refresh)
		users.POST("", auth.OptionalAuth(), h.User.Register)
		users.POST("/logout", auth.RequireAuth(), h.User.Logout)
	}

	authorized := v1.Group("")
	authorized.Use(auth.RequireAuth())

	categories := authorized.Group("/categories")
	{
		categories.GET("", h.Catalog.ListCategories)
		categories.GET("/:id", h.Catalog.GetCategory)
		categories.POST("", adminOnly, h.Catalog.CreateCategory)
		categories.PUT("/:id", adminOnly, h.Catalog.UpdateCategory)
		categories.DELETE("/:id", adminOnly, h.Catalog.DeleteCategory)
	}

	suppliers := authorized.Group("/suppliers")
	{
		suppliers.GET("", h.Catalog.ListSuppliers)
		suppliers.GET("/:id", h.Catalog.GetSupplier)
		suppliers.POST("", adminOnly, h.Catalog.CreateSupplier)
		suppliers.PUT("/:id", adminOnly, h.Catalog.UpdateSupplier)
		suppliers.DELETE("/:id", adminOnly, h.Catalog.DeleteSupplier)
	}

	customers := authorized.Group("/customers")
	{
		customers.GET("", h.Catalog.ListCustomers)
		customers.GET("/:id", h.Catalog.GetCustomer)
		customers.POST("", h.Catalog.CreateCustomer)
		customers.PUT("/:id", h.Catalog.UpdateCustomer)
		customers.DELETE("/:id", adminOnly, h.Catalog.DeleteCustomer)
	}

	products := authorized.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.Get)
		products.GET("/:id/movements", h.Product.ListMovements)
		products.POST("", adminOnly, h.Product.Create)
		products.PUT("/:id", adminOnly, h.Product.Update)
		products.PATCH("/:id/price", adminOnly, h.Product.UpdatePrice)
		products.POST("/:id/stock", adminOnly, h.Product.AdjustStock)
		products.DELETE("/:id", adminOnly, h.Product.Delete)
	}

	orders := authorized.Group("/orders")
	{
		orders.POST("", h.Sale.CreateOrder)
		orders.GET("", h.Sale.ListOrders)
		orders.GET("/:id", h.Sale.GetOrder)
		orders.PATCH("/:id", h.Sale.UpdateOrder)
		orders.DELETE("/:id", h.Sale.DeleteOrder)
		orders.GET("/:id/total", h.Sale.RecomputeTotal)
		orders.GET("/:id/items", h.Sale.ListLineItems)
	}

	lineItems := authorized.Group("/line-items")
	{
		lineItems.POST("", h.Sale.CreateLineItem)
		lineItems.GET("/:id", h.Sale.GetLineItem)
		lineItems.PATCH("/:id", h.Sale.UpdateLineItem)
		lineItems.DELETE("/:id", h.Sale.DeleteLineItem)
	}

	return r
}
