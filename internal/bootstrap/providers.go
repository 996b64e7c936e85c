package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/xiebiao/licoreria/internal/domain/category"
	"github.com/xiebiao/licoreria/internal/domain/customer"
	"github.com/xiebiao/licoreria/internal/domain/inventory"
	"github.com/xiebiao/licoreria/internal/domain/product"
	"github.com/xiebiao/licoreria/internal/domain/sale"
	"github.com/xiebiao/licoreria/internal/domain/shared"
	"github.com/xiebiao/licoreria/internal/domain/supplier"
	"github.com/xiebiao/licoreria/internal/domain/user"
	"github.com/xiebiao/licoreria/internal/infrastructure/config"
	"github.com/xiebiao/licoreria/internal/infrastructure/events"
	"github.com/xiebiao/licoreria/internal/infrastructure/persistence/gormrepo"
	"github.com/xiebiao/licoreria/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/licoreria/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/licoreria/pkg/mq"
)

// Storage 同一数据源上的事务管理器和全部仓储
type Storage struct {
	Tx         shared.TxManager
	Users      user.Repository
	Categories category.Repository
	Suppliers  supplier.Repository
	Customers  customer.Repository
	Products   product.Repository
	Orders     sale.OrderRepository
	LineItems  sale.LineItemRepository
	Movements  inventory.Repository
}

// NewStorage 按database.driver创建存储
//   - memory：进程内存储，重启丢失
//   - mysql | postgres：GORM
func NewStorage(cfg *config.Config, logger *slog.Logger) (*Storage, func(), error) {
	if cfg.Database.Driver == "memory" {
		store := memory.NewStore()
		logger.Warn("使用内存存储，进程退出后数据丢失")
		return &Storage{
			Tx:         memory.NewTxManager(store),
			Users:      memory.NewUserRepository(store),
			Categories: memory.NewCategoryRepository(store),
			Suppliers:  memory.NewSupplierRepository(store),
			Customers:  memory.NewCustomerRepository(store),
			Products:   memory.NewProductRepository(store),
			Orders:     memory.NewOrderRepository(store),
			LineItems:  memory.NewLineItemRepository(store),
			Movements:  memory.NewMovementRepository(store),
		}, func() {}, nil
	}

	db, err := gormrepo.NewDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	cleanup := func() {
		if err := sqlDB.Close(); err != nil {
			logger.Error("关闭数据库连接失败", slog.Any("error", err))
		}
	}

	return &Storage{
		Tx:         gormrepo.NewTxManager(db),
		Users:      gormrepo.NewUserRepository(db),
		Categories: gormrepo.NewCategoryRepository(db),
		Suppliers:  gormrepo.NewSupplierRepository(db),
		Customers:  gormrepo.NewCustomerRepository(db),
		Products:   gormrepo.NewProductRepository(db),
		Orders:     gormrepo.NewOrderRepository(db),
		LineItems:  gormrepo.NewLineItemRepository(db),
		Movements:  gormrepo.NewMovementRepository(db),
	}, cleanup, nil
}

// NewSessionStore redis.enabled时使用Redis，否则使用进程内存
func NewSessionStore(cfg *config.Config, logger *slog.Logger) (user.SessionStore, func(), error) {
	if !cfg.Redis.Enabled {
		return memory.NewSessionStore(), func() {}, nil
	}

	client, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		return nil, nil, err
	}
	return redis.NewSessionStore(client), func() {
		if err := client.Close(); err != nil {
			logger.Error("关闭Redis连接失败", slog.Any("error", err))
		}
	}, nil
}

// NewEventPublisher mq.enabled时发布到RabbitMQ(带熔断)，否则只写日志
func NewEventPublisher(cfg *config.Config, logger *slog.Logger) (shared.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return events.NewLogPublisher(logger), func() {}, nil
	}

	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, logger)
	if err != nil {
		return nil, nil, err
	}
	breaker := events.NewBreaker(cfg.MQ, logger)
	return events.NewBrokerPublisher(pub, breaker, cfg.MQ.PublishTimeout, logger), func() {
		if err := pub.Close(); err != nil {
			logger.Error("关闭消息发布者失败", slog.Any("error", err))
		}
	}, nil
}
