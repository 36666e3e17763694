// internal/service/order/domain/port/idempotency.go
package port

import "context"

// PaymentCallbackGuard 为支付网关回调提供幂等保护。
// 网关可能对同一笔交易重复投递回调；Acquire 对同一个 transactionID
// 只在第一次返回 true，之后的重复投递返回 false。
type PaymentCallbackGuard interface {
	Acquire(ctx context.Context, transactionID string) (bool, error)
}
