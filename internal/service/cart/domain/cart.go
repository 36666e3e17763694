// internal/service/cart/domain/cart.go
package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("cart item not found")
)

// QuantityBoundsError 表示数量越过了报价的起订/限购边界。
type QuantityBoundsError struct {
	OfferID  uint
	Quantity int
	Min      *int
	Max      *int
}

func (e *QuantityBoundsError) Error() string {
	return fmt.Sprintf("quantity %d out of bounds for offer %d", e.Quantity, e.OfferID)
}

// Cart 是一个用户的活跃购物车，每个用户至多一个。
// 首次访问时惰性创建；结算成功后随事务一并删除。
type Cart struct {
	ID        uint
	UserID    uint
	UpdatedAt time.Time
	Items     []CartItem
}

// CartItem 是一条待购行。
// 除了引用和数量之外全部是加入时刻的展示性快照：
// 结算时会在锁内对活跃报价重新校验，这些快照不作为扣减依据。
type CartItem struct {
	ID     uint
	CartID uint

	ProductID       uint
	OfferID         uint
	VariantValueIDs []uint

	Quantity int

	// 加入时刻的快照
	UnitPrice       int64
	DiscountPrice   int64
	DiscountPercent int
	SellerName      string
	ProductName     string
	ProductSlug     string
	ProductImage    string
	StockAtAdd      int
	MinOrder        *int
	MaxOrder        *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FindItemByOffer 返回购物车里引用指定报价的行，不存在时返回 nil。
func (c *Cart) FindItemByOffer(offerID uint) *CartItem {
	for i := range c.Items {
		if c.Items[i].OfferID == offerID {
			return &c.Items[i]
		}
	}
	return nil
}
