// Package product 商品目录与库存调整用例
package product

import (
	"context"
	"log/slog"

	"github.com/xiebiao/licoreria/internal/domain/category"
	"github.com/xiebiao/licoreria/internal/domain/inventory"
	"github.com/xiebiao/licoreria/internal/domain/product"
	"github.com/xiebiao/licoreria/internal/domain/sale"
	"github.com/xiebiao/licoreria/internal/domain/shared"
	"github.com/xiebiao/licoreria/internal/domain/supplier"
)

// Service 商品应用服务
// 库存只能通过AdjustStock(管理员)和销售台账修改，两者都写库存流水
type Service struct {
	tx         shared.TxManager
	products   product.Repository
	categories category.Repository
	suppliers  supplier.Repository
	items      sale.LineItemRepository
	movements  inventory.Repository
	publisher  shared.EventPublisher
	logger     *slog.Logger
	threshold  int
}

// NewService 创建商品服务
// lowStockThreshold与台账的ledger.low_stock_threshold一致
func NewService(
	tx shared.TxManager,
	products product.Repository,
	categories category.Repository,
	suppliers supplier.Repository,
	items sale.LineItemRepository,
	movements inventory.Repository,
	publisher shared.EventPublisher,
	logger *slog.Logger,
	lowStockThreshold int,
) *Service {
	return &Service{
		tx:         tx,
		products:   products,
		categories: categories,
		suppliers:  suppliers,
		items:      items,
		movements:  movements,
		publisher:  publisher,
		logger:     logger,
		threshold:  lowStockThreshold,
	}
}

// CreateRequest 新增商品
type CreateRequest struct {
	Code          string
	Name          string
	Description   string
	UnitType      string
	PurchasePrice int64
	SalePrice     int64
	Stock         int
	CategoryID    uint
	SupplierID    uint
}

// Create 新增商品
// 初始库存大于0时记一条ADJUST流水，流水与库存从第一天起就能对上
func (s *Service) Create(ctx context.Context, req CreateRequest) (*product.Product, error) {
	p, err := product.NewProduct(req.Code, req.Name, req.Description, req.UnitType,
		req.PurchasePrice, req.SalePrice, req.Stock, req.CategoryID, req.SupplierID)
	if err != nil {
		return nil, err
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.checkRefs(ctx, p.CategoryID, p.SupplierID); err != nil {
			return err
		}
		if err := s.products.Create(ctx, p); err != nil {
			return err
		}
		if p.Stock > 0 {
			return s.movements.Create(ctx, inventory.NewAdjustMovement(p.ID, p.Stock, 0, "初始库存"))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Get 查询商品
func (s *Service) Get(ctx context.Context, id uint) (*product.Product, error) {
	return s.products.FindByID(ctx, id)
}

// List 分页查询
func (s *Service) List(ctx context.Context, params product.ListParams) ([]*product.Product, int64, error) {
	params.Page = params.Page.Normalize()
	return s.products.List(ctx, params)
}

// UpdateRequest 修改基本信息，空值表示不修改
type UpdateRequest struct {
	Name        string
	Description string
	UnitType    string
	CategoryID  uint
	SupplierID  uint
}

// Update 修改商品基本信息(不含价格和库存)
func (s *Service) Update(ctx context.Context, id uint, req UpdateRequest) (*product.Product, error) {
	var result *product.Product
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.checkRefs(ctx, req.CategoryID, req.SupplierID); err != nil {
			return err
		}
		p, err := s.products.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := p.UpdateInfo(req.Name, req.Description, req.UnitType, req.CategoryID, req.SupplierID); err != nil {
			return err
		}
		if err := s.products.Update(ctx, p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdatePrice 调整进价和售价
// 已有销售明细保留各自的单价快照
func (s *Service) UpdatePrice(ctx context.Context, id uint, purchasePrice, salePrice int64) (*product.Product, error) {
	var result *product.Product
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		p, err := s.products.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := p.UpdatePrice(purchasePrice, salePrice); err != nil {
			return err
		}
		if err := s.products.Update(ctx, p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "商品调价",
		slog.Uint64("product_id", uint64(id)),
		slog.Int64("purchase_price", purchasePrice),
		slog.Int64("sale_price", salePrice),
	)
	return result, nil
}

// AdjustStock 手工调整库存
// delta>0为补货，delta<0为盘亏；结果不能小于0
func (s *Service) AdjustStock(ctx context.Context, id uint, delta int, remark string) (*product.Product, error) {
	if delta == 0 {
		return nil, product.ErrInvalidAdjustment
	}

	var (
		result *product.Product
		events []shared.Event
	)
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		p, err := s.products.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.products.UpdateStock(ctx, p.ID, delta); err != nil {
			return err
		}
		if err := s.movements.Create(ctx, inventory.NewAdjustMovement(p.ID, delta, p.Stock, remark)); err != nil {
			return err
		}
		p.Stock += delta

		if delta < 0 && inventory.IsLow(p.Stock, s.threshold) {
			events = append(events, shared.NewEvent(inventory.EventStockLow, inventory.StockLowEvent{
				ProductID: p.ID,
				Code:      p.Code,
				Name:      p.Name,
				Stock:     p.Stock,
				Threshold: s.threshold,
			}))
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "库存调整",
		slog.Uint64("product_id", uint64(id)),
		slog.Int("delta", delta),
		slog.Int("stock", result.Stock),
	)
	s.publish(ctx, events)
	return result, nil
}

// Delete 删除商品
// 仍被有效销售明细引用时拒绝，商品行锁保证检查期间不会新增明细
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		p, err := s.products.LockByID(ctx, id)
		if err != nil {
			return err
		}
		n, err := s.items.CountActiveByProduct(ctx, p.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return product.ErrProductInUse
		}
		return s.products.Delete(ctx, p.ID)
	})
}

// ListMovements 商品库存流水，按时间倒序
func (s *Service) ListMovements(ctx context.Context, id uint, page shared.Page) ([]*inventory.Movement, int64, error) {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, 0, err
	}
	return s.movements.ListByProduct(ctx, id, page.Normalize())
}

// checkRefs 0表示不检查
func (s *Service) checkRefs(ctx context.Context, categoryID, supplierID uint) error {
	if categoryID != 0 {
		if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
			return err
		}
	}
	if supplierID != 0 {
		if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, events []shared.Event) {
	if len(events) == 0 || s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.WarnContext(ctx, "库存事件发布失败", slog.Any("error", err))
	}
}
