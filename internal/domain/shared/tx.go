// Package shared 放置多个领域共用的抽象
package shared

import "context"

// TxManager 事务管理器接口
// fn内通过ctx访问的所有Repository操作在同一事务中执行：
// fn返回error时回滚，返回nil时提交
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Page 分页参数
type Page struct {
	Page     int // 页码(从1开始)
	PageSize int // 每页数量
}

// Normalize 修正非法分页参数：page<1按1处理，pageSize按[1,100]截断，默认20
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	return p
}

// Offset 分页偏移量
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}
