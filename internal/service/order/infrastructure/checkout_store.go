// internal/service/order/infrastructure/checkout_store.go
package infrastructure

import (
	"context"
	"time"

	cartinfra "bazaar/internal/service/cart/infrastructure"
	catalog "bazaar/internal/service/catalog/domain"
	cataloginfra "bazaar/internal/service/catalog/infrastructure"
	"bazaar/internal/service/order/domain"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormCheckoutStore 是结算工作单元的 GORM 实现。
// 每次 WithTx 对应一个数据库事务；fn 返回错误时 GORM 回滚整个事务，
// 事务内做出的所有库存扣减随之消失。
type GormCheckoutStore struct {
	db *gorm.DB
}

func NewGormCheckoutStore(db *gorm.DB) *GormCheckoutStore {
	return &GormCheckoutStore{db: db}
}

func (s *GormCheckoutStore) WithTx(ctx context.Context, fn func(tx domain.CheckoutTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormCheckoutTx{tx: tx})
	})
}

// gormCheckoutTx 把一个进行中的事务句柄暴露为 CheckoutTx。
// 所有方法都只在这个事务上执行，显式传递、绝不依赖全局状态。
type gormCheckoutTx struct {
	tx *gorm.DB
}

func (t *gormCheckoutTx) LockOffer(ctx context.Context, offerID uint) (*catalog.SellerOffer, error) {
	return cataloginfra.LockOffer(ctx, t.tx, offerID)
}

func (t *gormCheckoutTx) UpdateOfferStock(ctx context.Context, offerID uint, stock int) error {
	return cataloginfra.UpdateOfferStock(ctx, t.tx, offerID, stock)
}

func (t *gormCheckoutTx) CountOrdersCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := t.tx.WithContext(ctx).Model(&OrderModel{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(err, "count orders for the day")
	}
	return count, nil
}

func (t *gormCheckoutTx) CreateOrder(ctx context.Context, order *domain.Order) error {
	model := toOrderModel(order)
	if err := t.tx.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateEntry(err) {
			return domain.ErrOrderNumberConflict
		}
		return pkgerrors.Wrap(err, "create order")
	}

	// 把数据库分配的主键带回领域对象
	order.ID = model.ID
	for i := range model.Items {
		order.Items[i].ID = model.Items[i].ID
		order.Items[i].OrderID = model.ID
	}
	return nil
}

func (t *gormCheckoutTx) DeleteCart(ctx context.Context, cartID uint) error {
	// 条目先行删除，不依赖数据库层面是否配置了级联
	if err := t.tx.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&cartinfra.CartItemModel{}).Error; err != nil {
		return pkgerrors.Wrap(err, "delete cart items")
	}
	if err := t.tx.WithContext(ctx).Delete(&cartinfra.CartModel{}, cartID).Error; err != nil {
		return pkgerrors.Wrap(err, "delete cart")
	}
	return nil
}
