// internal/service/catalog/domain/repository.go
package domain

import "context"

// CatalogRepository 定义了目录数据的持久化接口。
// 它位于领域层，由基础设施层实现。
type CatalogRepository interface {
	FindUserByID(ctx context.Context, id uint) (*User, error)

	// FindOfferByID 带关联读取一条报价（不加锁，用于购物车的咨询性校验）。
	FindOfferByID(ctx context.Context, id uint) (*SellerOffer, error)

	// RestoreOfferStock 以单条原子语句归还库存（取消订单时使用）。
	// 只增不减，所以不需要走结算事务的行锁。
	RestoreOfferStock(ctx context.Context, offerID uint, qty int) error
}
