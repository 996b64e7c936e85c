package handler

import (
	"github.com/gin-gonic/gin"

	appsale "github.com/xiebiao/licoreria/internal/application/sale"
	"github.com/xiebiao/licoreria/internal/domain/sale"
	"github.com/xiebiao/licoreria/internal/interface/http/dto"
	"github.com/xiebiao/licoreria/internal/interface/http/middleware"
	"github.com/xiebiao/licoreria/pkg/money"
	"github.com/xiebiao/licoreria/pkg/response"
)

// SaleHandler 销售单与销售明细
// 所有修改都经过销售台账，库存与合计在同一事务内维护
type SaleHandler struct {
	ledger *appsale.Ledger
}

// NewSaleHandler 创建销售处理器
func NewSaleHandler(ledger *appsale.Ledger) *SaleHandler {
	return &SaleHandler{ledger: ledger}
}

// CreateOrder 新建销售单
// @Summary      新建销售单
// @Description  收银员为当前登录用户，合计为0
// @Tags         销售单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "客户"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Router       /api/v1/orders [post]
func (h *SaleHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	order, err := h.ledger.CreateOrder(c.Request.Context(), middleware.GetUserID(c), req.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromOrder(order))
}

// ListOrders 销售单列表
// @Summary  销售单列表
// @Tags     销售单
// @Produce  json
// @Security BearerAuth
// @Param    page        query int false "页码"
// @Param    page_size   query int false "每页数量"
// @Param    user_id     query int false "收银员"
// @Param    customer_id query int false "客户"
// @Success  200 {object} response.Response{data=response.PageData{list=[]dto.OrderResponse}}
// @Router   /api/v1/orders [get]
func (h *SaleHandler) ListOrders(c *gin.Context) {
	var q dto.OrderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}
	p := page(q.Page, q.PageSize)
	list, total, err := h.ledger.ListOrders(c.Request.Context(), sale.ListParams{
		Page:       p,
		UserID:     q.UserID,
		CustomerID: q.CustomerID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, dto.FromOrder(o))
	}
	response.SuccessWithPage(c, out, total, p.Page, p.PageSize)
}

// GetOrder 销售单详情(含有效明细)
// @Summary  销售单详情
// @Tags     销售单
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "销售单ID"
// @Success  200 {object} response.Response{data=dto.OrderResponse}
// @Router   /api/v1/orders/{id} [get]
func (h *SaleHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.ledger.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if order.Items == nil {
		order.Items = []*sale.LineItem{}
	}
	response.Success(c, dto.FromOrder(order))
}

// UpdateOrder 修改收银员或客户
// @Summary  修改销售单
// @Tags     销售单
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "销售单ID"
// @Param    request body dto.UpdateOrderRequest true "收银员、客户"
// @Success  200 {object} response.Response{data=dto.OrderResponse}
// @Router   /api/v1/orders/{id} [patch]
func (h *SaleHandler) UpdateOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	order, err := h.ledger.UpdateOrder(c.Request.Context(), id, req.UserID, req.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromOrder(order))
}

// DeleteOrder 删除销售单
// @Summary      删除销售单
// @Description  有效明细一并删除并归还库存
// @Tags         销售单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "销售单ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/orders/{id} [delete]
func (h *SaleHandler) DeleteOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ledger.DeleteOrder(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RecomputeTotal 按有效明细计算合计
// @Summary  计算合计
// @Tags     销售单
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "销售单ID"
// @Success  200 {object} response.Response{data=dto.TotalResponse}
// @Router   /api/v1/orders/{id}/total [get]
func (h *SaleHandler) RecomputeTotal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	total, err := h.ledger.RecomputeTotal(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.TotalResponse{OrderID: id, Total: money.Format(total)})
}

// ListLineItems 销售单的有效明细
// @Summary  明细列表
// @Tags     销售明细
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "销售单ID"
// @Success  200 {object} response.Response{data=[]dto.LineItemResponse}
// @Router   /api/v1/orders/{id}/items [get]
func (h *SaleHandler) ListLineItems(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	items, err := h.ledger.ListLineItems(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromLineItems(items))
}

// CreateLineItem 添加明细
// @Summary      添加明细
// @Description  单价取商品当前售价，扣减库存，重算合计
// @Tags         销售明细
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateLineItemRequest true "明细"
// @Success      200 {object} response.Response{data=dto.LineItemResponse}
// @Router       /api/v1/line-items [post]
func (h *SaleHandler) CreateLineItem(c *gin.Context) {
	var req dto.CreateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	li, err := h.ledger.CreateLineItem(c.Request.Context(), req.OrderID, req.ProductID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromLineItem(li))
}

// GetLineItem 明细详情
// @Summary  明细详情
// @Tags     销售明细
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "明细ID"
// @Success  200 {object} response.Response{data=dto.LineItemResponse}
// @Router   /api/v1/line-items/{id} [get]
func (h *SaleHandler) GetLineItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	li, err := h.ledger.GetLineItem(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromLineItem(li))
}

// UpdateLineItem 修改明细商品或数量
// @Summary      修改明细
// @Description  更换商品时旧商品按原数量归还库存，新商品按新数量扣减，单价取新商品当前售价
// @Tags         销售明细
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "明细ID"
// @Param        request body dto.UpdateLineItemRequest true "商品、数量"
// @Success      200 {object} response.Response{data=dto.LineItemResponse}
// @Router       /api/v1/line-items/{id} [patch]
func (h *SaleHandler) UpdateLineItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	li, err := h.ledger.UpdateLineItem(c.Request.Context(), appsale.UpdateLineItemRequest{
		LineItemID: id,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromLineItem(li))
}

// DeleteLineItem 删除明细
// @Summary      删除明细
// @Description  归还库存并重算合计；已删除的明细再次删除返回明细不存在
// @Tags         销售明细
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "明细ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/line-items/{id} [delete]
func (h *SaleHandler) DeleteLineItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ledger.DeleteLineItem(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
