// Package money 金额以int64最小货币单位（分）存储，展示与解析时转换为两位小数
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const scale = 2

// Cents 最小货币单位金额
type Cents = int64

// Format 分转为展示字符串，如 2550 → "25.50"
func Format(c Cents) string {
	return decimal.New(c, -scale).StringFixed(scale)
}

// Parse 解析展示字符串为分
// 超过两位小数时拒绝，不做四舍五入
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("金额格式错误: %s", s)
	}
	shifted := d.Shift(scale)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("金额最多两位小数: %s", s)
	}
	return shifted.IntPart(), nil
}

// Multiply 单价×数量
func Multiply(unit Cents, quantity int) Cents {
	return decimal.NewFromInt(unit).Mul(decimal.NewFromInt(int64(quantity))).IntPart()
}
