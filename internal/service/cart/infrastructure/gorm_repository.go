// internal/service/cart/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"bazaar/internal/service/cart/domain"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormCartRepository 是 CartRepository 的 GORM 实现。
type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) FindByUser(ctx context.Context, userID uint) (*domain.Cart, error) {
	var model CartModel
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCartNotFound
		}
		return nil, pkgerrors.Wrap(err, "find cart")
	}
	return ToDomainCart(&model), nil
}

func (r *GormCartRepository) GetOrCreate(ctx context.Context, userID uint) (*domain.Cart, error) {
	cart, err := r.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrCartNotFound) {
		return nil, err
	}

	model := CartModel{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "create cart")
	}
	return ToDomainCart(&model), nil
}

func (r *GormCartRepository) UpsertItem(ctx context.Context, item *domain.CartItem) error {
	model := toItemModel(item)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return pkgerrors.Wrap(err, "upsert cart item")
	}
	item.ID = model.ID
	return nil
}

func (r *GormCartRepository) UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	res := r.db.WithContext(ctx).Model(&CartItemModel{}).
		Where("id = ?", itemID).
		Update("quantity", quantity)
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "update cart item quantity")
	}
	if res.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *GormCartRepository) RemoveItem(ctx context.Context, itemID uint) error {
	res := r.db.WithContext(ctx).Delete(&CartItemModel{}, itemID)
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "remove cart item")
	}
	if res.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *GormCartRepository) ClearItems(ctx context.Context, cartID uint) error {
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&CartItemModel{}).Error
	return pkgerrors.Wrap(err, "clear cart items")
}

func (r *GormCartRepository) Delete(ctx context.Context, cartID uint) error {
	err := r.db.WithContext(ctx).Delete(&CartModel{}, cartID).Error
	return pkgerrors.Wrap(err, "delete cart")
}
