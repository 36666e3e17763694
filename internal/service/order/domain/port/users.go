// internal/service/order/domain/port/users.go
package port

import (
	"context"

	catalog "bazaar/internal/service/catalog/domain"
)

// UserProvider 是买家查询的出站端口。
type UserProvider interface {
	FindUserByID(ctx context.Context, id uint) (*catalog.User, error)
}

// StockRestorer 是取消订单时归还库存的出站端口。
// 归还是逐条、不加整体锁的单语句自增（见取消流程的设计说明）。
type StockRestorer interface {
	RestoreOfferStock(ctx context.Context, offerID uint, qty int) error
}
