// internal/service/order/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// 错误分类见各自注释：NotFound 类原样上抛不重试；
// 业务规则类由调用方决定是否改参重试；冲突类允许重试订单号生成。
var (
	ErrOrderNotFound = errors.New("order not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrOfferNotFound = errors.New("seller offer not found")
	ErrCartEmpty     = errors.New("cart is empty")
	ErrOfferInactive = errors.New("seller offer is not active")

	// ErrInvalidQuantity 拦截非正数量的下单行。
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrOrderNotCancellable 表示订单处于 DELIVERED 或已经 CANCELLED。
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")

	// ErrOrderNumberConflict 表示 order_number 唯一约束被触发。
	// 见订单号生成的已知竞态：计数-格式化本身没有锁保护，
	// 唯一索引是真正的兜底，碰撞时由调用方重试整个事务。
	ErrOrderNumberConflict = errors.New("order number already taken")
)

// InsufficientStockError 携带当前可售库存，便于向买家报告明确的失败原因。
type InsufficientStockError struct {
	OfferID   uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for offer %d: requested %d, available %d",
		e.OfferID, e.Requested, e.Available)
}

// IsBusinessRuleViolation 判断一个错误是否属于业务规则类失败（HTTP 层映射为 400）。
func IsBusinessRuleViolation(err error) bool {
	var insufficient *InsufficientStockError
	return errors.Is(err, ErrCartEmpty) ||
		errors.Is(err, ErrOfferInactive) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrOrderNotCancellable) ||
		errors.As(err, &insufficient)
}

// IsNotFound 判断一个错误是否属于引用对象缺失（HTTP 层映射为 404）。
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrOfferNotFound)
}
