package gormrepo

import (
	"time"

	"gorm.io/gorm"
)

// 以下是infrastructure层的数据模型，包含GORM tag；
// domain层的实体不依赖GORM，由各Repository负责两者之间的转换

// UserModel 用户
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Username  string         `gorm:"uniqueIndex;size:20;not null;comment:用户名"`
	Password  string         `gorm:"size:255;not null;comment:密码(bcrypt)"`
	Role      string         `gorm:"size:30;not null;default:vendedor;comment:角色(admin|vendedor)"`
	Premium   bool           `gorm:"not null;default:false;comment:是否高级用户"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (UserModel) TableName() string { return "users" }

// CategoryModel 商品分类
type CategoryModel struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"uniqueIndex;size:50;not null;comment:分类名称"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (CategoryModel) TableName() string { return "categories" }

// SupplierModel 供应商
type SupplierModel struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"size:50;not null;comment:供应商名称"`
	Phone     string         `gorm:"size:15;comment:联系电话"`
	Email     string         `gorm:"size:100;comment:邮箱"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (SupplierModel) TableName() string { return "suppliers" }

// CustomerModel 客户
type CustomerModel struct {
	ID              uint           `gorm:"primaryKey"`
	CI              string         `gorm:"column:ci;uniqueIndex;size:10;not null;comment:证件号"`
	Names           string         `gorm:"index:idx_customer_name;size:50;not null;comment:名"`
	PaternalSurname string         `gorm:"index:idx_customer_name;size:30;not null;comment:父姓"`
	MaternalSurname string         `gorm:"size:30;not null;comment:母姓"`
	Email           string         `gorm:"size:30;not null;comment:邮箱"`
	Phone           string         `gorm:"size:8;not null;comment:手机"`
	CreatedAt       time.Time      `gorm:"comment:创建时间"`
	UpdatedAt       time.Time      `gorm:"comment:更新时间"`
	DeletedAt       gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (CustomerModel) TableName() string { return "customers" }

// ProductModel 商品
// stock只通过UpdateStock的条件更新修改
type ProductModel struct {
	ID            uint           `gorm:"primaryKey"`
	Code          string         `gorm:"uniqueIndex;size:10;not null;comment:商品编码"`
	Name          string         `gorm:"index:idx_product_search;size:30;not null;comment:名称"`
	Description   string         `gorm:"size:50;comment:描述"`
	UnitType      string         `gorm:"size:30;not null;comment:单位"`
	PurchasePrice int64          `gorm:"not null;default:0;comment:进价(分)"`
	SalePrice     int64          `gorm:"not null;default:0;comment:售价(分)"`
	Stock         int            `gorm:"not null;default:0;check:chk_products_stock,stock >= 0;comment:库存"`
	CategoryID    uint           `gorm:"index;not null;comment:分类ID"`
	SupplierID    uint           `gorm:"index;comment:供应商ID(0表示未指定)"`
	CreatedAt     time.Time      `gorm:"comment:创建时间"`
	UpdatedAt     time.Time      `gorm:"comment:更新时间"`
	DeletedAt     gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (ProductModel) TableName() string { return "products" }

// OrderModel 销售单
// version用于合计字段的乐观锁
type OrderModel struct {
	ID         uint           `gorm:"primaryKey"`
	OrderNo    string         `gorm:"uniqueIndex;size:32;not null;comment:销售单号"`
	UserID     uint           `gorm:"index;not null;comment:收银员ID"`
	CustomerID uint           `gorm:"index;not null;comment:客户ID"`
	Total      int64          `gorm:"not null;default:0;comment:合计(分)"`
	Version    int            `gorm:"not null;default:0;comment:版本号"`
	CreatedAt  time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt  time.Time      `gorm:"comment:更新时间"`
	DeletedAt  gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (OrderModel) TableName() string { return "orders" }

// LineItemModel 销售明细
// (order_id, product_id)的有效唯一性由销售单行锁保证，软删除的历史明细允许重复
type LineItemModel struct {
	ID        uint           `gorm:"primaryKey"`
	OrderID   uint           `gorm:"index:idx_line_order_product;not null;comment:销售单ID"`
	ProductID uint           `gorm:"index:idx_line_order_product;index;not null;comment:商品ID"`
	Quantity  int            `gorm:"not null;comment:数量"`
	UnitPrice int64          `gorm:"not null;comment:单价快照(分)"`
	Subtotal  int64          `gorm:"not null;comment:小计(分)"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (LineItemModel) TableName() string { return "line_items" }

// MovementModel 库存流水(只增不改)
type MovementModel struct {
	ID          uint      `gorm:"primaryKey"`
	ProductID   uint      `gorm:"index:idx_movement_product;not null;comment:商品ID"`
	Type        string    `gorm:"type:varchar(20);not null;comment:类型(SALE|RESTORE|ADJUST)"`
	Delta       int       `gorm:"not null;comment:变动数量"`
	StockBefore int       `gorm:"not null;comment:变动前库存"`
	StockAfter  int       `gorm:"not null;comment:变动后库存"`
	OrderID     uint      `gorm:"index;comment:销售单ID"`
	LineItemID  uint      `gorm:"comment:销售明细ID"`
	Remark      string    `gorm:"size:255;comment:备注"`
	CreatedAt   time.Time `gorm:"index:idx_movement_product;comment:创建时间"`
}

func (MovementModel) TableName() string { return "inventory_movements" }
