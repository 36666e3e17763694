// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"bazaar/internal/service/order/domain"

	"github.com/go-sql-driver/mysql"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// mysqlDuplicateEntry 是 MySQL 唯一约束冲突的错误码。
const mysqlDuplicateEntry = 1062

// GormOrderRepository 是 OrderRepository 的 GORM 实现。
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Items").Take(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, pkgerrors.Wrap(err, "find order")
	}
	return ToDomainOrder(&model), nil
}

func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Items").
		Where("order_number = ?", number).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, pkgerrors.Wrap(err, "find order by number")
	}
	return ToDomainOrder(&model), nil
}

func (r *GormOrderRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list orders by user")
	}
	return toDomainOrders(models), nil
}

// ListBySeller 返回包含指定卖家明细的订单。
func (r *GormOrderRepository) ListBySeller(ctx context.Context, sellerID uint) ([]*domain.Order, error) {
	var orderIDs []uint
	err := r.db.WithContext(ctx).Model(&OrderItemModel{}).
		Distinct("order_id").
		Where("seller_id = ?", sellerID).
		Pluck("order_id", &orderIDs).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list seller order ids")
	}
	if len(orderIDs) == 0 {
		return nil, nil
	}

	var models []OrderModel
	err = r.db.WithContext(ctx).Preload("Items").
		Where("id IN ?", orderIDs).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list orders by seller")
	}
	return toDomainOrders(models), nil
}

func (r *GormOrderRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "update order fields")
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *GormOrderRepository) AppendPaymentLog(ctx context.Context, log *domain.PaymentLog) error {
	model := toPaymentLogModel(log)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return pkgerrors.Wrap(err, "append payment log")
	}
	log.ID = model.ID
	return nil
}

func toDomainOrders(models []OrderModel) []*domain.Order {
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, ToDomainOrder(&models[i]))
	}
	return orders
}

// isDuplicateEntry 识别 MySQL 的唯一约束冲突。
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
