package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/licoreria/internal/application/catalog"
	"github.com/xiebiao/licoreria/internal/domain/customer"
	"github.com/xiebiao/licoreria/internal/interface/http/dto"
	"github.com/xiebiao/licoreria/pkg/response"
)

// CatalogHandler 分类、供应商、客户
type CatalogHandler struct {
	svc *catalog.Service
}

// NewCatalogHandler 创建基础资料处理器
func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ============ 分类 ============

// CreateCategory 新增分类
// @Summary  新增分类
// @Tags     分类
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    request body dto.CategoryRequest true "分类"
// @Success  200 {object} response.Response{data=dto.CategoryResponse}
// @Router   /api/v1/categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromCategory(cat))
}

// ListCategories 分类列表
// @Summary  分类列表
// @Tags     分类
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} response.Response{data=[]dto.CategoryResponse}
// @Router   /api/v1/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	list, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, cat := range list {
		out = append(out, dto.FromCategory(cat))
	}
	response.Success(c, out)
}

// GetCategory 分类详情
// @Summary  分类详情
// @Tags     分类
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "分类ID"
// @Success  200 {object} response.Response{data=dto.CategoryResponse}
// @Router   /api/v1/categories/{id} [get]
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cat, err := h.svc.GetCategory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromCategory(cat))
}

// UpdateCategory 修改分类名称
// @Summary  修改分类
// @Tags     分类
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "分类ID"
// @Param    request body dto.CategoryRequest true "分类"
// @Success  200 {object} response.Response{data=dto.CategoryResponse}
// @Router   /api/v1/categories/{id} [put]
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	cat, err := h.svc.RenameCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromCategory(cat))
}

// DeleteCategory 删除分类
// @Summary  删除分类
// @Tags     分类
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "分类ID"
// @Success  200 {object} response.Response
// @Router   /api/v1/categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ============ 供应商 ============

// CreateSupplier 新增供应商
// @Summary  新增供应商
// @Tags     供应商
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    request body dto.SupplierRequest true "供应商"
// @Success  200 {object} response.Response{data=dto.SupplierResponse}
// @Router   /api/v1/suppliers [post]
func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	var req dto.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	sp, err := h.svc.CreateSupplier(c.Request.Context(), catalog.SupplierRequest{Name: req.Name, Phone: req.Phone, Email: req.Email})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromSupplier(sp))
}

// ListSuppliers 供应商列表
// @Summary  供应商列表
// @Tags     供应商
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} response.Response{data=[]dto.SupplierResponse}
// @Router   /api/v1/suppliers [get]
func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	list, err := h.svc.ListSuppliers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, sp := range list {
		out = append(out, dto.FromSupplier(sp))
	}
	response.Success(c, out)
}

// GetSupplier 供应商详情
// @Summary  供应商详情
// @Tags     供应商
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "供应商ID"
// @Success  200 {object} response.Response{data=dto.SupplierResponse}
// @Router   /api/v1/suppliers/{id} [get]
func (h *CatalogHandler) GetSupplier(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sp, err := h.svc.GetSupplier(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromSupplier(sp))
}

// UpdateSupplier 修改供应商
// @Summary  修改供应商
// @Tags     供应商
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "供应商ID"
// @Param    request body dto.SupplierRequest true "供应商"
// @Success  200 {object} response.Response{data=dto.SupplierResponse}
// @Router   /api/v1/suppliers/{id} [put]
func (h *CatalogHandler) UpdateSupplier(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	sp, err := h.svc.UpdateSupplier(c.Request.Context(), id, catalog.SupplierRequest{Name: req.Name, Phone: req.Phone, Email: req.Email})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromSupplier(sp))
}

// DeleteSupplier 删除供应商
// @Summary  删除供应商
// @Tags     供应商
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "供应商ID"
// @Success  200 {object} response.Response
// @Router   /api/v1/suppliers/{id} [delete]
func (h *CatalogHandler) DeleteSupplier(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteSupplier(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ============ 客户 ============

func customerRequest(req dto.CustomerRequest) catalog.CustomerRequest {
	return catalog.CustomerRequest{
		CI:              req.CI,
		Names:           req.Names,
		PaternalSurname: req.PaternalSurname,
		MaternalSurname: req.MaternalSurname,
		Email:           req.Email,
		Phone:           req.Phone,
	}
}

// CreateCustomer 新增客户
// @Summary  新增客户
// @Tags     客户
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    request body dto.CustomerRequest true "客户"
// @Success  200 {object} response.Response{data=dto.CustomerResponse}
// @Router   /api/v1/customers [post]
func (h *CatalogHandler) CreateCustomer(c *gin.Context) {
	var req dto.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	cust, err := h.svc.CreateCustomer(c.Request.Context(), customerRequest(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromCustomer(cust))
}

// ListCustomers 客户列表
// @Summary  客户列表
// @Tags     客户
// @Produce  json
// @Security BearerAuth
// @Param    page      query int    false "页码"
// @Param    page_size query int    false "每页数量"
// @Param    keyword   query string false "CI或姓名"
// @Success  200 {object} response.Response{data=response.PageData{list=[]dto.CustomerResponse}}
// @Router   /api/v1/customers [get]
func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}
	p := page(q.Page, q.PageSize)
	list, total, err := h.svc.ListCustomers(c.Request.Context(), customer.ListParams{Page: p, Keyword: q.Keyword})
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, cust := range list {
		out = append(out, dto.FromCustomer(cust))
	}
	response.SuccessWithPage(c, out, total, p.Page, p.PageSize)
}

// GetCustomer 客户详情
// @Summary  客户详情
// @Tags     客户
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "客户ID"
// @Success  200 {object} response.Response{data=dto.CustomerResponse}
// @Router   /api/v1/customers/{id} [get]
func (h *CatalogHandler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cust, err := h.svc.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromCustomer(cust))
}

// UpdateCustomer 修改客户
// @Summary  修改客户
// @Tags     客户
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "客户ID"
// @Param    request body dto.CustomerRequest true "客户"
// @Success  200 {object} response.Response{data=dto.CustomerResponse}
// @Router   /api/v1/customers/{id} [put]
func (h *CatalogHandler) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	cust, err := h.svc.UpdateCustomer(c.Request.Context(), id, customerRequest(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromCustomer(cust))
}

// DeleteCustomer 删除客户
// @Summary  删除客户
// @Tags     客户
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "客户ID"
// @Success  200 {object} response.Response
// @Router   /api/v1/customers/{id} [delete]
func (h *CatalogHandler) DeleteCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteCustomer(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
