package handler

import (
	"github.com/gin-gonic/gin"

	appproduct "github.com/xiebiao/licoreria/internal/application/product"
	"github.com/xiebiao/licoreria/internal/domain/product"
	"github.com/xiebiao/licoreria/internal/interface/http/dto"
	"github.com/xiebiao/licoreria/pkg/response"
)

// ProductHandler 商品HTTP处理器
type ProductHandler struct {
	svc *appproduct.Service
}

// NewProductHandler 创建商品处理器
func NewProductHandler(svc *appproduct.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// Create 新增商品
// @Summary      新增商品
// @Description  初始库存记为一条ADJUST流水
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateProductRequest true "商品"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Router       /api/v1/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	purchase, ok := parsePrice(c, "purchase_price", req.PurchasePrice)
	if !ok {
		return
	}
	sale, ok := parsePrice(c, "sale_price", req.SalePrice)
	if !ok {
		return
	}

	p, err := h.svc.Create(c.Request.Context(), appproduct.CreateRequest{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		UnitType:      req.UnitType,
		PurchasePrice: purchase,
		SalePrice:     sale,
		Stock:         req.Stock,
		CategoryID:    req.CategoryID,
		SupplierID:    req.SupplierID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromProduct(p))
}

// List 商品列表
// @Summary  商品列表
// @Tags     商品
// @Produce  json
// @Security BearerAuth
// @Param    page        query int    false "页码"
// @Param    page_size   query int    false "每页数量"
// @Param    keyword     query string false "编码或名称"
// @Param    category_id query int    false "分类ID"
// @Success  200 {object} response.Response{data=response.PageData{list=[]dto.ProductResponse}}
// @Router   /api/v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var q dto.ProductListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}
	p := page(q.Page, q.PageSize)
	list, total, err := h.svc.List(c.Request.Context(), product.ListParams{
		Page:       p,
		Keyword:    q.Keyword,
		CategoryID: q.CategoryID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, item := range list {
		out = append(out, dto.FromProduct(item))
	}
	response.SuccessWithPage(c, out, total, p.Page, p.PageSize)
}

// Get 商品详情
// @Summary  商品详情
// @Tags     商品
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "商品ID"
// @Success  200 {object} response.Response{data=dto.ProductResponse}
// @Router   /api/v1/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromProduct(p))
}

// Update 修改商品基本信息
// @Summary  修改商品
// @Tags     商品
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "商品ID"
// @Param    request body dto.UpdateProductRequest true "商品"
// @Success  200 {object} response.Response{data=dto.ProductResponse}
// @Router   /api/v1/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, appproduct.UpdateRequest{
		Name:        req.Name,
		Description: req.Description,
		UnitType:    req.UnitType,
		CategoryID:  req.CategoryID,
		SupplierID:  req.SupplierID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromProduct(p))
}

// UpdatePrice 调价
// @Summary      调价
// @Description  已有销售明细保留原单价
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        request body dto.UpdatePriceRequest true "价格"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Router       /api/v1/products/{id}/price [patch]
func (h *ProductHandler) UpdatePrice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	purchase, ok := parsePrice(c, "purchase_price", req.PurchasePrice)
	if !ok {
		return
	}
	sale, ok := parsePrice(c, "sale_price", req.SalePrice)
	if !ok {
		return
	}
	p, err := h.svc.UpdatePrice(c.Request.Context(), id, purchase, sale)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromProduct(p))
}

// AdjustStock 库存调整
// @Summary  库存调整
// @Tags     商品
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "商品ID"
// @Param    request body dto.AdjustStockRequest true "调整量"
// @Success  200 {object} response.Response{data=dto.ProductResponse}
// @Router   /api/v1/products/{id}/stock [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	p, err := h.svc.AdjustStock(c.Request.Context(), id, req.Delta, req.Remark)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromProduct(p))
}

// Delete 删除商品
// @Summary      删除商品
// @Description  仍被有效销售明细引用时拒绝
// @Tags         商品
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListMovements 库存流水
// @Summary  库存流水
// @Tags     商品
// @Produce  json
// @Security BearerAuth
// @Param    id        path  int true  "商品ID"
// @Param    page      query int false "页码"
// @Param    page_size query int false "每页数量"
// @Success  200 {object} response.Response{data=response.PageData{list=[]dto.MovementResponse}}
// @Router   /api/v1/products/{id}/movements [get]
func (h *ProductHandler) ListMovements(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}
	p := page(q.Page, q.PageSize)
	list, total, err := h.svc.ListMovements(c.Request.Context(), id, p)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.FromMovement(m))
	}
	response.SuccessWithPage(c, out, total, p.Page, p.PageSize)
}
