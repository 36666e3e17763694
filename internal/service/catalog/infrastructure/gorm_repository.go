// internal/service/catalog/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"bazaar/internal/service/catalog/domain"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCatalogRepository 是 CatalogRepository 的 GORM 实现。
type GormCatalogRepository struct {
	db *gorm.DB
}

func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) FindUserByID(ctx context.Context, id uint) (*domain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Take(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, pkgerrors.Wrap(err, "find user")
	}
	return ToDomainUser(&model), nil
}

func (r *GormCatalogRepository) FindOfferByID(ctx context.Context, id uint) (*domain.SellerOffer, error) {
	var model SellerOfferModel
	err := r.db.WithContext(ctx).
		Preload("Seller").Preload("Product").Preload("VariantValues").
		Take(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, pkgerrors.Wrap(err, "find offer")
	}
	return ToDomainOffer(&model), nil
}

func (r *GormCatalogRepository) RestoreOfferStock(ctx context.Context, offerID uint, qty int) error {
	if qty <= 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&SellerOfferModel{}).
		Where("id = ?", offerID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "restore offer stock")
	}
	if res.RowsAffected == 0 {
		return domain.ErrOfferNotFound
	}
	return nil
}

// LockOffer 对指定的 seller_offers 行取得排他锁，然后在锁保护下带关联重读。
// 加锁查询只允许命中单表单行：目标引擎对带 JOIN 的 FOR UPDATE 语义不可靠，
// 锁到手之后再做第二次关联读取是安全的。
// 必须在一个事务内调用，tx 即该事务句柄。
func LockOffer(ctx context.Context, tx *gorm.DB, offerID uint) (*domain.SellerOffer, error) {
	var locked SellerOfferModel
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", offerID).
		Take(&locked).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, pkgerrors.Wrap(err, "lock offer row")
	}

	var full SellerOfferModel
	err = tx.WithContext(ctx).
		Preload("Seller").Preload("Product").Preload("VariantValues").
		Take(&full, locked.ID).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "reload offer under lock")
	}
	return ToDomainOffer(&full), nil
}

// UpdateOfferStock 在事务内把 stock 写为给定值。
// 调用方必须已经通过 LockOffer 持有该行的锁。
func UpdateOfferStock(ctx context.Context, tx *gorm.DB, offerID uint, stock int) error {
	err := tx.WithContext(ctx).Model(&SellerOfferModel{}).
		Where("id = ?", offerID).
		Update("stock", stock).Error
	if err != nil {
		return pkgerrors.Wrap(err, "update offer stock")
	}
	return nil
}
