package dto

import (
	"github.com/xiebiao/licoreria/internal/domain/inventory"
	"github.com/xiebiao/licoreria/internal/domain/product"
	"github.com/xiebiao/licoreria/pkg/money"
)

// 金额在接口上使用两位小数的字符串("25.50")，内部以分存储

// CreateProductRequest 新增商品
type CreateProductRequest struct {
	Code          string `json:"code" binding:"required,max=10"`
	Name          string `json:"name" binding:"required,max=30"`
	Description   string `json:"description" binding:"max=50"`
	UnitType      string `json:"unit_type" binding:"required,max=30"`
	PurchasePrice string `json:"purchase_price" binding:"required"`
	SalePrice     string `json:"sale_price" binding:"required"`
	Stock         int    `json:"stock" binding:"min=0"`
	CategoryID    uint   `json:"category_id" binding:"required"`
	SupplierID    uint   `json:"supplier_id"`
}

// UpdateProductRequest 修改基本信息，空值表示不修改
type UpdateProductRequest struct {
	Name        string `json:"name" binding:"max=30"`
	Description string `json:"description" binding:"max=50"`
	UnitType    string `json:"unit_type" binding:"max=30"`
	CategoryID  uint   `json:"category_id"`
	SupplierID  uint   `json:"supplier_id"`
}

// UpdatePriceRequest 调价
type UpdatePriceRequest struct {
	PurchasePrice string `json:"purchase_price" binding:"required"`
	SalePrice     string `json:"sale_price" binding:"required"`
}

// AdjustStockRequest 库存调整，delta为负表示盘亏
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Remark string `json:"remark" binding:"max=100"`
}

// ProductListQuery 商品列表查询
type ProductListQuery struct {
	ListQuery
	CategoryID uint `form:"category_id"`
}

// ProductResponse 商品
type ProductResponse struct {
	ID            uint   `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	UnitType      string `json:"unit_type"`
	PurchasePrice string `json:"purchase_price"`
	SalePrice     string `json:"sale_price"`
	Stock         int    `json:"stock"`
	CategoryID    uint   `json:"category_id"`
	SupplierID    uint   `json:"supplier_id,omitempty"`
	UpdatedAt     string `json:"updated_at"`
}

// FromProduct 领域实体转响应
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Code:          p.Code,
		Name:          p.Name,
		Description:   p.Description,
		UnitType:      p.UnitType,
		PurchasePrice: money.Format(p.PurchasePrice),
		SalePrice:     money.Format(p.SalePrice),
		Stock:         p.Stock,
		CategoryID:    p.CategoryID,
		SupplierID:    p.SupplierID,
		UpdatedAt:     p.UpdatedAt.Format(timeLayout),
	}
}

// MovementResponse 库存流水
type MovementResponse struct {
	ID          uint   `json:"id"`
	Type        string `json:"type"`
	Delta       int    `json:"delta"`
	StockBefore int    `json:"stock_before"`
	StockAfter  int    `json:"stock_after"`
	OrderID     uint   `json:"order_id,omitempty"`
	LineItemID  uint   `json:"line_item_id,omitempty"`
	Remark      string `json:"remark,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// FromMovement 领域实体转响应
func FromMovement(m *inventory.Movement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		Type:        string(m.Type),
		Delta:       m.Delta,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		OrderID:     m.OrderID,
		LineItemID:  m.LineItemID,
		Remark:      m.Remark,
		CreatedAt:   m.CreatedAt.Format(timeLayout),
	}
}
