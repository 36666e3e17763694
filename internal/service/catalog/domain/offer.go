// internal/service/catalog/domain/offer.go
package domain

import "errors"

var (
	ErrOfferNotFound = errors.New("seller offer not found")
	ErrOfferInactive = errors.New("seller offer is not active")
	ErrUserNotFound  = errors.New("user not found")
)

// User 是下单买家的领域表示，这里只保留订单流程需要的字段。
type User struct {
	ID    uint
	Name  string
	Email string
	Phone string
}

// Seller 是卖家。
type Seller struct {
	ID           uint
	BusinessName string
}

// Product 是商品主档。
type Product struct {
	ID    uint
	Name  string
	Slug  string
	Image string
}

// VariantValue 是一个被选中的商品规格值（例如 颜色=红）。
type VariantValue struct {
	ID   uint
	Name string
}

// SellerOffer 是某个卖家对某个商品的在售报价。
// Stock 是权威库存，任何先读后写的修改都必须在持有行锁的事务内完成。
type SellerOffer struct {
	ID              uint
	SellerID        uint
	ProductID       uint
	Price           int64 // 货币最小单位
	DiscountPrice   int64 // 0 表示未设置折扣价
	DiscountPercent int
	Stock           int
	MinOrder        *int
	MaxOrder        *int
	IsActive        bool
	IsDefault       bool
	HasWarranty     bool
	Description     string

	Seller        Seller
	Product       Product
	VariantValues []VariantValue
}

// UnitPrice 返回结算单价：设置了有效折扣价时用折扣价，否则用原价。
func (o *SellerOffer) UnitPrice() int64 {
	if o.DiscountPrice > 0 {
		return o.DiscountPrice
	}
	return o.Price
}

// VariantNames 返回已选规格值的名称列表，用于订单快照。
func (o *SellerOffer) VariantNames() []string {
	names := make([]string, 0, len(o.VariantValues))
	for _, v := range o.VariantValues {
		names = append(names, v.Name)
	}
	return names
}
