// internal/service/order/domain/port/cart.go
package port

import "context"

// CartLine 是结算视角下的一条购物车行：只有引用和数量，
// 价格一律不信任快照，结算时在锁内重新取。
type CartLine struct {
	OfferID  uint
	Quantity int
}

// CartSnapshot 是结算需要的购物车最小视图。
type CartSnapshot struct {
	CartID uint
	Lines  []CartLine
}

// CartProvider 是购物车存储的出站端口。
// 找不到购物车时返回 (nil, nil)，由调用方按空车处理。
type CartProvider interface {
	LoadCartWithItems(ctx context.Context, userID uint) (*CartSnapshot, error)
}
