package sale

// RecomputeTotal 计算销售单合计:有效明细小计之和
// 已删除的明细不计入;没有明细时为0
func RecomputeTotal(items []*LineItem) int64 {
	var total int64
	for _, item := range items {
		if !item.IsActive() {
			continue
		}
		total += item.Subtotal
	}
	return total
}
