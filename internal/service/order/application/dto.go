// internal/service/order/application/dto.go
package application

import "bazaar/internal/service/order/domain"

// OrderLine 是一条下单行：只携带报价引用和数量，
// 价格永远在锁内从数据库重新取，不信任客户端。
type OrderLine struct {
	OfferID  uint `json:"offerId"`
	Quantity int  `json:"quantity"`
}

// CreateOrderRequest 是创建订单用例的输入数据。
// Lines 为空表示从当前用户的购物车结算。
type CreateOrderRequest struct {
	UserID        uint                `json:"userId"`
	PaymentMethod string              `json:"paymentMethod"`
	Shipping      domain.ShippingInfo `json:"shipping"`
	Lines         []OrderLine         `json:"lines,omitempty"`
}

// UpdateOrderPatch 是订单部分更新的载体，nil 字段不更新。
type UpdateOrderPatch struct {
	Status          *domain.Status        `json:"status,omitempty"`
	PaymentStatus   *domain.PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentMethod   *string               `json:"paymentMethod,omitempty"`
	TransactionID   *string               `json:"transactionId,omitempty"`
	RecipientName   *string               `json:"recipientName,omitempty"`
	RecipientPhone  *string               `json:"recipientPhone,omitempty"`
	ShippingAddress *string               `json:"shippingAddress,omitempty"`
}
