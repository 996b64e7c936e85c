package errors

import (
	"errors"
	"fmt"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（不要直接暴露HTTP状态码）
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同一错误码视为同一类错误
// 例如：errors.Is(err, sale.ErrInsufficientStock) 对携带具体数量的库存不足错误同样成立
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WithDetail 基于已有错误码创建携带内部细节的新错误
// 细节可以通过errors.As取出（如库存不足时的请求数量与可用数量）
func WithDetail(base *AppError, message string, detail error) *AppError {
	return &AppError{
		Code:    base.Code,
		Message: message,
		Err:     detail,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则校验失败）
// - 5xxxx: 服务端错误（数据库异常、外部服务调用失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 密码错误
	ErrCodeForbidden       = 40104 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound         = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound     = 40401 // 用户不存在
	ErrCodeProductNotFound  = 40402 // 商品不存在
	ErrCodeOrderNotFound    = 40403 // 销售单不存在
	ErrCodeLineItemNotFound = 40404 // 销售明细不存在
	ErrCodeCategoryNotFound = 40405 // 分类不存在
	ErrCodeCustomerNotFound = 40406 // 客户不存在
	ErrCodeSupplierNotFound = 40407 // 供应商不存在

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError         = 40000 // 业务错误(通用)
	ErrCodeInsufficientStock     = 40001 // 库存不足
	ErrCodeConcurrencyConflict   = 40002 // 并发冲突(可重试)
	ErrCodeUsernameDuplicate     = 40003 // 用户名已存在
	ErrCodeProductCodeDuplicate  = 40004 // 商品编码已存在
	ErrCodeWeakPassword          = 40005 // 密码强度不足
	ErrCodeDuplicateLineItem     = 40006 // 同一销售单重复添加商品
	ErrCodeCustomerCIDuplicate   = 40007 // 客户CI已存在
	ErrCodeCategoryNameDuplicate = 40008 // 分类名称已存在
	ErrCodeDuplicateEntry        = 40009 // 重复记录(通用)
	ErrCodeProductInUse          = 40010 // 商品仍被有效销售明细引用
	ErrCodeResourceInUse         = 40011 // 分类、客户等仍被引用

	// 参数错误（40900-40999）
	ErrCodeInvalidParams   = 40900 // 参数错误
	ErrCodeBindError       = 40901 // 参数绑定失败
	ErrCodeInvalidQuantity = 40902 // 数量不合法
	ErrCodeInvalidPrice    = 40903 // 价格不合法
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "用户名或密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	// 资源不存在
	ErrUserNotFound = New(ErrCodeUserNotFound, "用户不存在")

	// 资源通用
	ErrNotFound       = New(ErrCodeNotFound, "资源不存在")
	ErrDuplicateEntry = New(ErrCodeDuplicateEntry, "记录已存在")

	// 业务规则
	ErrConcurrencyConflict = New(ErrCodeConcurrencyConflict, "数据已被其他操作修改，请重试")
	ErrUsernameDuplicate   = New(ErrCodeUsernameDuplicate, "用户名已被注册")
	ErrWeakPassword      = New(ErrCodeWeakPassword, "密码强度不足（需6-20位，包含字母和数字）")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}
