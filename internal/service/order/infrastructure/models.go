// internal/service/order/infrastructure/models.go
package infrastructure

import (
	"strings"
	"time"

	"bazaar/internal/service/order/domain"
)

// OrderModel 是 Order 在数据库中的表示。
// order_number 上的唯一索引是订单号竞态的兜底（见领域层的说明）。
type OrderModel struct {
	ID          uint   `gorm:"primaryKey"`
	OrderNumber string `gorm:"size:32;uniqueIndex;not null"`
	UserID      uint   `gorm:"index;not null"`

	Subtotal     int64 `gorm:"not null"`
	ShippingCost int64 `gorm:"not null"`
	Discount     int64 `gorm:"not null;default:0"`
	Tax          int64 `gorm:"not null"`
	Total        int64 `gorm:"not null"`

	Status        string `gorm:"size:20;index;not null"`
	PaymentMethod string `gorm:"size:32"`
	PaymentStatus string `gorm:"size:20;not null"`
	TransactionID string `gorm:"size:64;index"`
	CancelReason  string `gorm:"size:255"`

	RecipientName      string `gorm:"size:100"`
	RecipientPhone     string `gorm:"size:32"`
	ShippingAddress    string `gorm:"size:512"`
	ShippingCity       string `gorm:"size:100"`
	ShippingPostalCode string `gorm:"size:20"`

	PaidAt      *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time

	Items       []OrderItemModel  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaymentLogs []PaymentLogModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderModel) TableName() string { return "orders" }

// OrderItemModel 是一条明细快照，创建后不再更新。
type OrderItemModel struct {
	ID      uint `gorm:"primaryKey"`
	OrderID uint `gorm:"index;not null"`

	ProductID uint `gorm:"index;not null"`
	SellerID  uint `gorm:"index;not null"`
	OfferID   uint `gorm:"index;not null"`

	ProductName  string `gorm:"size:255;not null"`
	ProductSlug  string `gorm:"size:255"`
	ProductImage string `gorm:"size:512"`
	SellerName   string `gorm:"size:255"`
	VariantNames string `gorm:"size:512"`

	Quantity  int   `gorm:"not null"`
	UnitPrice int64 `gorm:"not null"`
	Subtotal  int64 `gorm:"not null"`
	Discount  int64 `gorm:"not null;default:0"`
	Total     int64 `gorm:"not null"`

	CreatedAt time.Time
}

func (OrderItemModel) TableName() string { return "order_items" }

// PaymentLogModel 是只追加的支付流水。
type PaymentLogModel struct {
	ID            uint   `gorm:"primaryKey"`
	OrderID       uint   `gorm:"index;not null"`
	Status        string `gorm:"size:20;not null"`
	Amount        int64  `gorm:"not null"`
	Gateway       string `gorm:"size:64"`
	TransactionID string `gorm:"size:64;index"`
	ReferenceCode string `gorm:"size:64"`
	RawResponse   string `gorm:"type:text"`
	ErrorMessage  string `gorm:"size:512"`
	CreatedAt     time.Time
}

func (PaymentLogModel) TableName() string { return "payment_logs" }

// variantNames 以 " / " 连接存储，空列表存空串。
const variantNameSep = " / "

// --- 类型转换函数 ---

func toOrderModel(o *domain.Order) *OrderModel {
	m := &OrderModel{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		UserID:             o.UserID,
		Subtotal:           o.Subtotal,
		ShippingCost:       o.ShippingCost,
		Discount:           o.Discount,
		Tax:                o.Tax,
		Total:              o.Total,
		Status:             string(o.Status),
		PaymentMethod:      o.PaymentMethod,
		PaymentStatus:      string(o.PaymentStatus),
		TransactionID:      o.TransactionID,
		CancelReason:       o.CancelReason,
		RecipientName:      o.RecipientName,
		RecipientPhone:     o.RecipientPhone,
		ShippingAddress:    o.ShippingAddress,
		ShippingCity:       o.ShippingCity,
		ShippingPostalCode: o.ShippingPostalCode,
		PaidAt:             o.PaidAt,
		ShippedAt:          o.ShippedAt,
		DeliveredAt:        o.DeliveredAt,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	for i := range o.Items {
		it := &o.Items[i]
		m.Items = append(m.Items, OrderItemModel{
			ID:           it.ID,
			OrderID:      it.OrderID,
			ProductID:    it.ProductID,
			SellerID:     it.SellerID,
			OfferID:      it.OfferID,
			ProductName:  it.ProductName,
			ProductSlug:  it.ProductSlug,
			ProductImage: it.ProductImage,
			SellerName:   it.SellerName,
			VariantNames: strings.Join(it.VariantNames, variantNameSep),
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Subtotal:     it.Subtotal,
			Discount:     it.Discount,
			Total:        it.Total,
		})
	}
	return m
}

func ToDomainOrder(m *OrderModel) *domain.Order {
	o := &domain.Order{
		ID:                 m.ID,
		OrderNumber:        m.OrderNumber,
		UserID:             m.UserID,
		Subtotal:           m.Subtotal,
		ShippingCost:       m.ShippingCost,
		Discount:           m.Discount,
		Tax:                m.Tax,
		Total:              m.Total,
		Status:             domain.Status(m.Status),
		PaymentMethod:      m.PaymentMethod,
		PaymentStatus:      domain.PaymentStatus(m.PaymentStatus),
		TransactionID:      m.TransactionID,
		CancelReason:       m.CancelReason,
		RecipientName:      m.RecipientName,
		RecipientPhone:     m.RecipientPhone,
		ShippingAddress:    m.ShippingAddress,
		ShippingCity:       m.ShippingCity,
		ShippingPostalCode: m.ShippingPostalCode,
		PaidAt:             m.PaidAt,
		ShippedAt:          m.ShippedAt,
		DeliveredAt:        m.DeliveredAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	for i := range m.Items {
		it := &m.Items[i]
		var variants []string
		if it.VariantNames != "" {
			variants = strings.Split(it.VariantNames, variantNameSep)
		}
		o.Items = append(o.Items, domain.OrderItem{
			ID:           it.ID,
			OrderID:      it.OrderID,
			ProductID:    it.ProductID,
			SellerID:     it.SellerID,
			OfferID:      it.OfferID,
			ProductName:  it.ProductName,
			ProductSlug:  it.ProductSlug,
			ProductImage: it.ProductImage,
			SellerName:   it.SellerName,
			VariantNames: variants,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Subtotal:     it.Subtotal,
			Discount:     it.Discount,
			Total:        it.Total,
		})
	}
	return o
}

func toPaymentLogModel(l *domain.PaymentLog) *PaymentLogModel {
	return &PaymentLogModel{
		OrderID:       l.OrderID,
		Status:        string(l.Status),
		Amount:        l.Amount,
		Gateway:       l.Gateway,
		TransactionID: l.TransactionID,
		ReferenceCode: l.ReferenceCode,
		RawResponse:   l.RawResponse,
		ErrorMessage:  l.ErrorMessage,
		CreatedAt:     l.CreatedAt,
	}
}
