// internal/service/order/domain/order.go
package domain

import "time"

// Order 是订单聚合的根实体。
// 创建之后除状态类字段外不可变，Items 是一次性写入的快照。
type Order struct {
	ID          uint
	OrderNumber string
	UserID      uint

	// 金额均为货币最小单位，Total = Subtotal + ShippingCost + Tax - Discount
	Subtotal     int64
	ShippingCost int64
	Discount     int64
	Tax          int64
	Total        int64

	Status        Status
	PaymentMethod string
	PaymentStatus PaymentStatus
	TransactionID string
	CancelReason  string

	RecipientName      string
	RecipientPhone     string
	ShippingAddress    string
	ShippingCity       string
	ShippingPostalCode string

	PaidAt      *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Items []OrderItem
}

// OrderItem 是一条购买明细的不可变快照。
// Product/Seller/Offer 的外键只用于追溯，展示字段全部冗余拷贝，
// 这样之后商品或报价的任何变更都不会影响历史订单。
type OrderItem struct {
	ID      uint
	OrderID uint

	ProductID uint
	SellerID  uint
	OfferID   uint

	ProductName  string
	ProductSlug  string
	ProductImage string
	SellerName   string
	VariantNames []string

	Quantity  int
	UnitPrice int64
	Subtotal  int64
	Discount  int64
	Total     int64
}

// PaymentLog 是一条只追加的支付网关交互记录。
// 只按订单 ID 引用订单，不持有订单对象。
type PaymentLog struct {
	ID            uint
	OrderID       uint
	Status        PaymentLogStatus
	Amount        int64
	Gateway       string
	TransactionID string
	ReferenceCode string
	RawResponse   string
	ErrorMessage  string
	CreatedAt     time.Time
}

// ShippingInfo 是下单请求中携带的配送信息。
type ShippingInfo struct {
	RecipientName  string
	RecipientPhone string
	Address        string
	City           string
	PostalCode     string
}

// PricingConfig 是订单金额计算的参数。
type PricingConfig struct {
	FreeShippingThreshold int64 // 小计达到该值免运费
	ShippingFlatFee       int64
	TaxPercent            int
}

// NewOrderItem 根据锁保护下观察到的报价状态构造一条明细快照。
func NewOrderItem(offerID, productID, sellerID uint, productName, productSlug, productImage, sellerName string, variantNames []string, quantity int, unitPrice int64) OrderItem {
	subtotal := unitPrice * int64(quantity)
	return OrderItem{
		ProductID:    productID,
		SellerID:     sellerID,
		OfferID:      offerID,
		ProductName:  productName,
		ProductSlug:  productSlug,
		ProductImage: productImage,
		SellerName:   sellerName,
		VariantNames: variantNames,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		Subtotal:     subtotal,
		Discount:     0,
		Total:        subtotal,
	}
}

// NewOrder 组装一个待支付订单并计算全部金额。
func NewOrder(orderNumber string, userID uint, paymentMethod string, shipping ShippingInfo, items []OrderItem, pricing PricingConfig, now time.Time) *Order {
	var subtotal int64
	for _, it := range items {
		subtotal += it.Total
	}

	shippingCost := pricing.ShippingFlatFee
	if subtotal >= pricing.FreeShippingThreshold {
		shippingCost = 0
	}
	tax := RoundedTax(subtotal, pricing.TaxPercent)

	return &Order{
		OrderNumber:        orderNumber,
		UserID:             userID,
		Subtotal:           subtotal,
		ShippingCost:       shippingCost,
		Discount:           0,
		Tax:                tax,
		Total:              subtotal + shippingCost + tax,
		Status:             StatusPending,
		PaymentMethod:      paymentMethod,
		PaymentStatus:      PaymentPending,
		RecipientName:      shipping.RecipientName,
		RecipientPhone:     shipping.RecipientPhone,
		ShippingAddress:    shipping.Address,
		ShippingCity:       shipping.City,
		ShippingPostalCode: shipping.PostalCode,
		CreatedAt:          now,
		UpdatedAt:          now,
		Items:              items,
	}
}

// RoundedTax 按百分比计算税额，四舍五入到货币最小单位。
func RoundedTax(subtotal int64, percent int) int64 {
	return (subtotal*int64(percent) + 50) / 100
}

// CanCancel 判断订单是否还允许取消。
// 已送达和已取消是取消操作的终态，重复取消必须被拒绝。
func (o *Order) CanCancel() bool {
	return o.Status != StatusDelivered && o.Status != StatusCancelled
}

// MarkPaid 记录支付完成。没有库存副作用：库存在下单时已经扣减。
func (o *Order) MarkPaid(transactionID string, now time.Time) {
	o.PaymentStatus = PaymentCompleted
	o.TransactionID = transactionID
	o.Status = StatusPaid
	if o.PaidAt == nil {
		paidAt := now
		o.PaidAt = &paidAt
	}
	o.UpdatedAt = now
}

// Cancel 把订单置为已取消。库存归还由应用层负责。
func (o *Order) Cancel(reason string, now time.Time) error {
	if !o.CanCancel() {
		return ErrOrderNotCancellable
	}
	o.Status = StatusCancelled
	o.CancelReason = reason
	o.UpdatedAt = now
	return nil
}
