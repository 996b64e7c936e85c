// Package bootstrap 组装应用依赖
//
// cmd/api手动调用NewApp；cmd/api/wire.go用ProviderSet声明同一条依赖链；
// 集成测试用database.driver=memory直接构建完整的Gin引擎。
//
// 依赖链：Repository ← Domain Service ← Application Service ← Handler ← Router
package bootstrap

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	"github.com/xiebiao/licoreria/internal/application/catalog"
	appproduct "github.com/xiebiao/licoreria/internal/application/product"
	appsale "github.com/xiebiao/licoreria/internal/application/sale"
	appuser "github.com/xiebiao/licoreria/internal/application/user"
	"github.com/xiebiao/licoreria/internal/domain/shared"
	"github.com/xiebiao/licoreria/internal/domain/user"
	"github.com/xiebiao/licoreria/internal/infrastructure/config"
	"github.com/xiebiao/licoreria/internal/interface/http/handler"
	"github.com/xiebiao/licoreria/internal/interface/http/middleware"
	"github.com/xiebiao/licoreria/internal/interface/http/router"
	"github.com/xiebiao/licoreria/pkg/jwt"
)

// InfrastructureSet 存储、会话、事件发布
var InfrastructureSet = wire.NewSet(
	NewStorage,
	wire.FieldsOf(new(*Storage),
		"Tx", "Users", "Categories", "Suppliers", "Customers", "Products", "Orders",
	),
	NewSessionStore,
	NewEventPublisher,
	NewJWTManager,
)

// ApplicationSet 领域服务与应用服务
var ApplicationSet = wire.NewSet(
	user.NewService,
	appuser.NewRegisterUseCase,
	provideLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshUseCase,
	catalog.NewService,
	provideProductService,
	provideLedger,
)

// InterfaceSet HTTP处理器、中间件、路由
var InterfaceSet = wire.NewSet(
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewCatalogHandler,
	handler.NewProductHandler,
	handler.NewSaleHandler,
	wire.Struct(new(router.Handlers), "*"),
	provideRouter,
)

// ProviderSet 全部Provider
var ProviderSet = wire.NewSet(InfrastructureSet, ApplicationSet, InterfaceSet)

// NewJWTManager 从配置创建JWT管理器
func NewJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

// 会话有效期与Refresh Token一致，登出或过期后Refresh Token失效
func provideLoginUseCase(cfg *config.Config, svc user.Service, jwtManager *jwt.Manager, sessions user.SessionStore, logger *slog.Logger) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(svc, jwtManager, sessions, cfg.JWT.RefreshTokenExpire, logger)
}

func provideProductService(cfg *config.Config, s *Storage, publisher shared.EventPublisher, logger *slog.Logger) *appproduct.Service {
	return appproduct.NewService(s.Tx, s.Products, s.Categories, s.Suppliers, s.LineItems, s.Movements,
		publisher, logger, cfg.Ledger.LowStockThreshold)
}

func provideLedger(cfg *config.Config, s *Storage, publisher shared.EventPublisher, logger *slog.Logger) *appsale.Ledger {
	return appsale.NewLedger(s.Tx, appsale.Repositories{
		Orders:    s.Orders,
		LineItems: s.LineItems,
		Products:  s.Products,
		Customers: s.Customers,
		Users:     s.Users,
		Movements: s.Movements,
	}, publisher, logger, appsale.Options{
		MaxRetries:        cfg.Ledger.MaxRetries,
		RetryInterval:     cfg.Ledger.RetryInterval,
		LowStockThreshold: cfg.Ledger.LowStockThreshold,
	})
}

func provideRouter(cfg *config.Config, h router.Handlers, auth *middleware.AuthMiddleware, logger *slog.Logger) *gin.Engine {
	opts := router.Options{
		Mode:    cfg.Server.Mode,
		Swagger: cfg.Server.Mode != "release",
	}
	if cfg.Tracing.Enabled {
		opts.ServiceName = cfg.Tracing.ServiceName
	}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}
	return router.New(opts, h, auth, logger)
}

// NewApp 手动组装完整应用，返回的cleanup按创建的逆序释放资源
func NewApp(cfg *config.Config, logger *slog.Logger) (*gin.Engine, func(), error) {
	storage, closeStorage, err := NewStorage(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	sessions, closeSessions, err := NewSessionStore(cfg, logger)
	if err != nil {
		closeStorage()
		return nil, nil, err
	}
	publisher, closePublisher, err := NewEventPublisher(cfg, logger)
	if err != nil {
		closeSessions()
		closeStorage()
		return nil, nil, err
	}
	cleanup := func() {
		closePublisher()
		closeSessions()
		closeStorage()
	}

	jwtManager := NewJWTManager(cfg)

	// 领域层
	userService := user.NewService(storage.Users)

	// 应用层
	register := appuser.NewRegisterUseCase(storage.Tx, userService, storage.Users)
	login := provideLoginUseCase(cfg, userService, jwtManager, sessions, logger)
	logout := appuser.NewLogoutUseCase(sessions, jwtManager)
	refresh := appuser.NewRefreshUseCase(storage.Users, jwtManager, sessions)
	catalogService := catalog.NewService(storage.Tx, storage.Categories, storage.Suppliers,
		storage.Customers, storage.Products, storage.Orders)
	productService := provideProductService(cfg, storage, publisher, logger)
	ledger := provideLedger(cfg, storage, publisher, logger)

	// 接口层
	handlers := router.Handlers{
		User:    handler.NewUserHandler(register, login, logout, refresh),
		Catalog: handler.NewCatalogHandler(catalogService),
		Product: handler.NewProductHandler(productService),
		Sale:    handler.NewSaleHandler(ledger),
	}
	auth := middleware.NewAuthMiddleware(jwtManager, sessions)

	return provideRouter(cfg, handlers, auth, logger), cleanup, nil
}
