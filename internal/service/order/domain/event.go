// internal/service/order/domain/event.go
package domain

import (
	"context"
	"time"
)

const (
	EventOrderCreated   = "order.created"
	EventOrderPaid      = "order.paid"
	EventOrderCancelled = "order.cancelled"
)

// OrderEvent 是订单生命周期事件的载体，提交之后尽力投递。
type OrderEvent struct {
	EventID     string `json:"eventId"`
	Type        string `json:"type"`
	OrderID     uint   `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	UserID      uint   `json:"userId"`
	Total       int64  `json:"total"`
	Reason      string `json:"reason,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// OrderEventProducer 是订单事件的出站端口，由消息中间件适配器实现。
type OrderEventProducer interface {
	Publish(ctx context.Context, event *OrderEvent) error
}
