package sale

// 销售事件类型(routing key)
const (
	EventLineItemCreated = "sale.line_item.created"
	EventLineItemUpdated = "sale.line_item.updated"
	EventLineItemDeleted = "sale.line_item.deleted"
	EventOrderDeleted    = "sale.order.deleted"
)

// LineItemEvent 明细变化事件
type LineItemEvent struct {
	OrderID    uint  `json:"order_id"`
	LineItemID uint  `json:"line_item_id"`
	ProductID  uint  `json:"product_id"`
	Quantity   int   `json:"quantity"`
	UnitPrice  int64 `json:"unit_price"`
	Subtotal   int64 `json:"subtotal"`
	OrderTotal int64 `json:"order_total"`
}

// NewLineItemEvent 由明细和提交后的合计构建事件
func NewLineItemEvent(li *LineItem, orderTotal int64) LineItemEvent {
	return LineItemEvent{
		OrderID:    li.OrderID,
		LineItemID: li.ID,
		ProductID:  li.ProductID,
		Quantity:   li.Quantity,
		UnitPrice:  li.UnitPrice,
		Subtotal:   li.Subtotal,
		OrderTotal: orderTotal,
	}
}

// OrderDeletedEvent 销售单删除事件
type OrderDeletedEvent struct {
	OrderID       uint   `json:"order_id"`
	OrderNo       string `json:"order_no"`
	RestoredLines int    `json:"restored_lines"`
}
