// internal/service/order/infrastructure/adapter/cart_gorm_adapter.go
package adapter

import (
	"context"
	"errors"

	cartdomain "bazaar/internal/service/cart/domain"
	"bazaar/internal/service/order/domain/port"
)

// CartRepositoryAdapter 把购物车仓储适配成结算侧的 CartProvider 端口。
// 结算只关心 offer 引用和数量，购物车里的价格快照在这里被丢弃。
type CartRepositoryAdapter struct {
	carts cartdomain.CartRepository
}

func NewCartRepositoryAdapter(carts cartdomain.CartRepository) *CartRepositoryAdapter {
	return &CartRepositoryAdapter{carts: carts}
}

var _ port.CartProvider = (*CartRepositoryAdapter)(nil)

func (a *CartRepositoryAdapter) LoadCartWithItems(ctx context.Context, userID uint) (*port.CartSnapshot, error) {
	cart, err := a.carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, cartdomain.ErrCartNotFound) {
			// 没有购物车按空车处理，不算错误。
			return nil, nil
		}
		return nil, err
	}

	snapshot := &port.CartSnapshot{
		CartID: cart.ID,
		Lines:  make([]port.CartLine, 0, len(cart.Items)),
	}
	for _, item := range cart.Items {
		snapshot.Lines = append(snapshot.Lines, port.CartLine{
			OfferID:  item.OfferID,
			Quantity: item.Quantity,
		})
	}
	return snapshot, nil
}
