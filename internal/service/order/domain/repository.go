// internal/service/order/domain/repository.go
package domain

import (
	"context"
	"time"

	catalog "bazaar/internal/service/catalog/domain"
)

// OrderRepository 定义了订单聚合在事务之外的持久化接口。
type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]*Order, error)
	ListBySeller(ctx context.Context, sellerID uint) ([]*Order, error)

	// UpdateFields 对订单做部分字段更新（状态流转走这里）。
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error

	// AppendPaymentLog 追加一条支付流水。只插入，永不更新。
	AppendPaymentLog(ctx context.Context, log *PaymentLog) error
}

// CheckoutStore 是结算事务的工作单元入口。
// fn 内的所有存储调用都通过显式传入的 CheckoutTx 进行，
// fn 返回错误时整个事务回滚，任何部分扣减都不会留存。
type CheckoutStore interface {
	WithTx(ctx context.Context, fn func(tx CheckoutTx) error) error
}

// CheckoutTx 是一次结算事务内可用的全部存储操作。
type CheckoutTx interface {
	// LockOffer 对单条报价行取得排他锁并在锁保护下带关联重读。
	// 第二个事务对同一行加锁会阻塞到第一个事务提交或回滚。
	LockOffer(ctx context.Context, offerID uint) (*catalog.SellerOffer, error)

	// UpdateOfferStock 写入扣减后的库存，调用前必须已持有该行的锁。
	UpdateOfferStock(ctx context.Context, offerID uint, stock int) error

	// CountOrdersCreatedBetween 统计 [from, to) 内已创建的订单数，用于订单号序号。
	CountOrdersCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)

	// CreateOrder 持久化订单及其全部明细。
	// order_number 唯一约束冲突时返回 ErrOrderNumberConflict。
	CreateOrder(ctx context.Context, order *Order) error

	// DeleteCart 删除购物车（级联删除其条目）。
	DeleteCart(ctx context.Context, cartID uint) error
}
