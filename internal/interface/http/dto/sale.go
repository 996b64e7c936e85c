package dto

import (
	"github.com/xiebiao/licoreria/internal/domain/sale"
	"github.com/xiebiao/licoreria/pkg/money"
)

// CreateOrderRequest 新建销售单，收银员取当前登录用户
type CreateOrderRequest struct {
	CustomerID uint `json:"customer_id" binding:"required"`
}

// UpdateOrderRequest 修改收银员或客户，0表示不修改
type UpdateOrderRequest struct {
	UserID     uint `json:"user_id"`
	CustomerID uint `json:"customer_id"`
}

// OrderListQuery 销售单列表查询
type OrderListQuery struct {
	Page       int  `form:"page"`
	PageSize   int  `form:"page_size"`
	UserID     uint `form:"user_id"`
	CustomerID uint `form:"customer_id"`
}

// CreateLineItemRequest 添加明细
type CreateLineItemRequest struct {
	OrderID   uint `json:"order_id" binding:"required"`
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateLineItemRequest 修改明细，未出现的字段不修改
type UpdateLineItemRequest struct {
	ProductID *uint `json:"product_id" binding:"omitempty,min=1"`
	Quantity  *int  `json:"quantity" binding:"omitempty,min=1"`
}

// LineItemResponse 销售明细
type LineItemResponse struct {
	ID        uint   `json:"id"`
	OrderID   uint   `json:"order_id"`
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// FromLineItem 领域实体转响应
func FromLineItem(li *sale.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:        li.ID,
		OrderID:   li.OrderID,
		ProductID: li.ProductID,
		Quantity:  li.Quantity,
		UnitPrice: money.Format(li.UnitPrice),
		Subtotal:  money.Format(li.Subtotal),
	}
}

// FromLineItems 批量转换
func FromLineItems(items []*sale.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(items))
	for _, li := range items {
		out = append(out, FromLineItem(li))
	}
	return out
}

// OrderResponse 销售单，Items只在详情接口返回
type OrderResponse struct {
	ID         uint               `json:"id"`
	OrderNo    string             `json:"order_no"`
	UserID     uint               `json:"user_id"`
	CustomerID uint               `json:"customer_id"`
	Total      string             `json:"total"`
	Items      []LineItemResponse `json:"items,omitempty"`
	CreatedAt  string             `json:"created_at"`
}

// FromOrder 领域实体转响应
func FromOrder(o *sale.Order) OrderResponse {
	resp := OrderResponse{
		ID:         o.ID,
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		CustomerID: o.CustomerID,
		Total:      money.Format(o.Total),
		CreatedAt:  o.CreatedAt.Format(timeLayout),
	}
	if o.Items != nil {
		resp.Items = FromLineItems(o.Items)
	}
	return resp
}

// TotalResponse 按有效明细重算的合计
type TotalResponse struct {
	OrderID uint   `json:"order_id"`
	Total   string `json:"total"`
}
