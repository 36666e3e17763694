// internal/service/cart/infrastructure/models.go
package infrastructure

import (
	"strconv"
	"strings"
	"time"

	"bazaar/internal/service/cart/domain"
)

// CartModel 是 Cart 在数据库中的表示。user_id 上的唯一索引
// 保证了"每个用户至多一个购物车"。
type CartModel struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex;not null"`
	UpdatedAt time.Time

	Items []CartItemModel `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

func (CartModel) TableName() string { return "carts" }

// CartItemModel 是 CartItem 在数据库中的表示。
// variant_value_ids 以逗号分隔存储，展示字段都是加入时刻的快照。
type CartItemModel struct {
	ID     uint `gorm:"primaryKey"`
	CartID uint `gorm:"index;not null"`

	ProductID       uint   `gorm:"not null"`
	OfferID         uint   `gorm:"index;not null"`
	VariantValueIDs string `gorm:"size:255"`

	Quantity int `gorm:"not null"`

	UnitPrice       int64  `gorm:"not null"`
	DiscountPrice   int64  `gorm:"not null;default:0"`
	DiscountPercent int    `gorm:"not null;default:0"`
	SellerName      string `gorm:"size:255"`
	ProductName     string `gorm:"size:255"`
	ProductSlug     string `gorm:"size:255"`
	ProductImage    string `gorm:"size:512"`
	StockAtAdd      int    `gorm:"not null;default:0"`
	MinOrder        *int
	MaxOrder        *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartItemModel) TableName() string { return "cart_items" }

// --- 类型转换函数 ---

func ToDomainCart(m *CartModel) *domain.Cart {
	cart := &domain.Cart{ID: m.ID, UserID: m.UserID, UpdatedAt: m.UpdatedAt}
	for i := range m.Items {
		cart.Items = append(cart.Items, *toDomainItem(&m.Items[i]))
	}
	return cart
}

func toDomainItem(m *CartItemModel) *domain.CartItem {
	return &domain.CartItem{
		ID:              m.ID,
		CartID:          m.CartID,
		ProductID:       m.ProductID,
		OfferID:         m.OfferID,
		VariantValueIDs: splitIDs(m.VariantValueIDs),
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		DiscountPrice:   m.DiscountPrice,
		DiscountPercent: m.DiscountPercent,
		SellerName:      m.SellerName,
		ProductName:     m.ProductName,
		ProductSlug:     m.ProductSlug,
		ProductImage:    m.ProductImage,
		StockAtAdd:      m.StockAtAdd,
		MinOrder:        m.MinOrder,
		MaxOrder:        m.MaxOrder,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toItemModel(it *domain.CartItem) *CartItemModel {
	return &CartItemModel{
		ID:              it.ID,
		CartID:          it.CartID,
		ProductID:       it.ProductID,
		OfferID:         it.OfferID,
		VariantValueIDs: joinIDs(it.VariantValueIDs),
		Quantity:        it.Quantity,
		UnitPrice:       it.UnitPrice,
		DiscountPrice:   it.DiscountPrice,
		DiscountPercent: it.DiscountPercent,
		SellerName:      it.SellerName,
		ProductName:     it.ProductName,
		ProductSlug:     it.ProductSlug,
		ProductImage:    it.ProductImage,
		StockAtAdd:      it.StockAtAdd,
		MinOrder:        it.MinOrder,
		MaxOrder:        it.MaxOrder,
	}
}

func joinIDs(ids []uint) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) []uint {
	if s == "" {
		return nil
	}
	var ids []uint
	for _, part := range strings.Split(s, ",") {
		if v, err := strconv.ParseUint(part, 10, 64); err == nil {
			ids = append(ids, uint(v))
		}
	}
	return ids
}
