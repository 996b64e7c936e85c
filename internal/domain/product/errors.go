package product

import (
	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

// 商品领域错误定义
var (
	ErrProductNotFound = apperrors.New(apperrors.ErrCodeProductNotFound, "商品不存在")

	ErrCodeDuplicate = apperrors.New(apperrors.ErrCodeProductCodeDuplicate, "商品编码已存在")

	ErrInvalidCode        = apperrors.New(apperrors.ErrCodeInvalidParams, "商品编码不能为空且不超过10个字符")
	ErrInvalidName        = apperrors.New(apperrors.ErrCodeInvalidParams, "商品名称不能为空且不超过30个字符")
	ErrInvalidDescription = apperrors.New(apperrors.ErrCodeInvalidParams, "商品描述不超过50个字符")
	ErrInvalidUnitType    = apperrors.New(apperrors.ErrCodeInvalidParams, "单位不能为空且不超过30个字符")
	ErrCategoryRequired   = apperrors.New(apperrors.ErrCodeInvalidParams, "必须指定商品分类")

	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidPrice, "价格不能为负数")
	ErrInvalidStock = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")

	// ErrInvalidAdjustment 库存调整量为0
	ErrInvalidAdjustment = apperrors.New(apperrors.ErrCodeInvalidQuantity, "库存调整数量不能为0")

	// ErrInsufficientStock 库存不足(条件更新失败)
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")

	// ErrProductInUse 仍有有效销售明细引用该商品
	ErrProductInUse = apperrors.New(apperrors.ErrCodeProductInUse, "商品仍在有效销售中，不能删除")
)
