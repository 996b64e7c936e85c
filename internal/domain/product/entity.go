package product

import (
	"time"
	"unicode/utf8"
)

// Product 商品实体(聚合根)
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. Code作为业务唯一标识(数据库层保证唯一性)
// 3. Stock只能通过Repository.UpdateStock原子修改,实体上的值仅用于展示和锁内校验
type Product struct {
	ID            uint
	Code          string // 商品编码
	Name          string // 名称
	Description   string // 描述
	UnitType      string // 单位(瓶、箱、盒...)
	PurchasePrice int64  // 进价(分)
	SalePrice     int64  // 售价(分),新增销售明细时作为单价快照
	Stock         int    // 库存数量
	CategoryID    uint
	SupplierID    uint // 0表示未指定供应商
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewProduct 创建新商品(工厂方法)
func NewProduct(code, name, description, unitType string, purchasePrice, salePrice int64, stock int, categoryID, supplierID uint) (*Product, error) {
	p := &Product{
		Code:          code,
		Name:          name,
		Description:   description,
		UnitType:      unitType,
		PurchasePrice: purchasePrice,
		SalePrice:     salePrice,
		Stock:         stock,
		CategoryID:    categoryID,
		SupplierID:    supplierID,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

// Validate 字段校验
// 规则:编码<=10,名称<=30,描述<=50,单位<=30,价格>=0,库存>=0
func (p *Product) Validate() error {
	if p.Code == "" || utf8.RuneCountInString(p.Code) > 10 {
		return ErrInvalidCode
	}
	if p.Name == "" || utf8.RuneCountInString(p.Name) > 30 {
		return ErrInvalidName
	}
	if utf8.RuneCountInString(p.Description) > 50 {
		return ErrInvalidDescription
	}
	if p.UnitType == "" || utf8.RuneCountInString(p.UnitType) > 30 {
		return ErrInvalidUnitType
	}
	if p.PurchasePrice < 0 || p.SalePrice < 0 {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	if p.CategoryID == 0 {
		return ErrCategoryRequired
	}
	return nil
}

// UpdatePrice 更新售价与进价
// 已存在的销售明细保留创建时的单价快照,不受影响
func (p *Product) UpdatePrice(purchasePrice, salePrice int64) error {
	if purchasePrice < 0 || salePrice < 0 {
		return ErrInvalidPrice
	}
	p.PurchasePrice = purchasePrice
	p.SalePrice = salePrice
	p.UpdatedAt = time.Now()
	return nil
}

// UpdateInfo 更新基本信息(空值表示不修改)
func (p *Product) UpdateInfo(name, description, unitType string, categoryID, supplierID uint) error {
	next := *p
	if name != "" {
		next.Name = name
	}
	if description != "" {
		next.Description = description
	}
	if unitType != "" {
		next.UnitType = unitType
	}
	if categoryID != 0 {
		next.CategoryID = categoryID
	}
	if supplierID != 0 {
		next.SupplierID = supplierID
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now()
	*p = next
	return nil
}

// HasStock 库存是否足够
func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}
