// internal/service/catalog/infrastructure/models.go
package infrastructure

import (
	"time"

	"bazaar/internal/service/catalog/domain"
)

// UserModel 是 User 在数据库中的表示。
type UserModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100"`
	Email     string `gorm:"size:255;uniqueIndex"`
	Phone     string `gorm:"size:32"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserModel) TableName() string { return "users" }

type SellerModel struct {
	ID           uint   `gorm:"primaryKey"`
	BusinessName string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SellerModel) TableName() string { return "sellers" }

type ProductModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Slug      string `gorm:"size:255;uniqueIndex"`
	Image     string `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProductModel) TableName() string { return "products" }

type VariantValueModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;not null"`
}

func (VariantValueModel) TableName() string { return "variant_values" }

// SellerOfferModel 是 SellerOffer 在数据库中的表示。
// stock 列只允许在持有 FOR UPDATE 行锁的事务里做先读后写。
type SellerOfferModel struct {
	ID              uint  `gorm:"primaryKey"`
	SellerID        uint  `gorm:"index;not null"`
	ProductID       uint  `gorm:"index;not null"`
	Price           int64 `gorm:"not null"`
	DiscountPrice   int64 `gorm:"not null;default:0"`
	DiscountPercent int   `gorm:"not null;default:0"`
	Stock           int   `gorm:"not null;default:0"`
	MinOrder        *int
	MaxOrder        *int
	IsActive        bool   `gorm:"not null;default:true;index"`
	IsDefault       bool   `gorm:"not null;default:false"`
	HasWarranty     bool   `gorm:"not null;default:false"`
	Description     string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Seller        SellerModel         `gorm:"foreignKey:SellerID"`
	Product       ProductModel        `gorm:"foreignKey:ProductID"`
	VariantValues []VariantValueModel `gorm:"many2many:seller_offer_variant_values"`
}

func (SellerOfferModel) TableName() string { return "seller_offers" }

// --- 类型转换函数 ---

func ToDomainUser(m *UserModel) *domain.User {
	return &domain.User{ID: m.ID, Name: m.Name, Email: m.Email, Phone: m.Phone}
}

func ToDomainOffer(m *SellerOfferModel) *domain.SellerOffer {
	offer := &domain.SellerOffer{
		ID:              m.ID,
		SellerID:        m.SellerID,
		ProductID:       m.ProductID,
		Price:           m.Price,
		DiscountPrice:   m.DiscountPrice,
		DiscountPercent: m.DiscountPercent,
		Stock:           m.Stock,
		MinOrder:        m.MinOrder,
		MaxOrder:        m.MaxOrder,
		IsActive:        m.IsActive,
		IsDefault:       m.IsDefault,
		HasWarranty:     m.HasWarranty,
		Description:     m.Description,
		Seller:          domain.Seller{ID: m.Seller.ID, BusinessName: m.Seller.BusinessName},
		Product: domain.Product{
			ID:    m.Product.ID,
			Name:  m.Product.Name,
			Slug:  m.Product.Slug,
			Image: m.Product.Image,
		},
	}
	for _, v := range m.VariantValues {
		offer.VariantValues = append(offer.VariantValues, domain.VariantValue{ID: v.ID, Name: v.Name})
	}
	return offer
}
