// internal/service/cart/domain/repository.go
package domain

import "context"

// CartRepository 定义了购物车的持久化接口。
// 购物车只被其所有者的请求触达，没有跨用户竞争，因此全部操作不加锁。
type CartRepository interface {
	// FindByUser 带条目读取用户的购物车，不存在时返回 ErrCartNotFound。
	FindByUser(ctx context.Context, userID uint) (*Cart, error)

	// GetOrCreate 返回用户的购物车，没有则创建一个空车。
	GetOrCreate(ctx context.Context, userID uint) (*Cart, error)

	UpsertItem(ctx context.Context, item *CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error
	RemoveItem(ctx context.Context, itemID uint) error

	// ClearItems 清空购物车条目但保留车本身。
	ClearItems(ctx context.Context, cartID uint) error

	// Delete 删除购物车（级联删除条目）。结算事务走 CheckoutTx，不走这里。
	Delete(ctx context.Context, cartID uint) error
}
