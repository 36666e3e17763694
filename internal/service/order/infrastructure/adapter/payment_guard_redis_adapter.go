// internal/service/order/infrastructure/adapter/payment_guard_redis_adapter.go
package adapter

import (
	"context"
	"fmt"
	"time"

	"bazaar/internal/pkg/redis"
	"bazaar/internal/service/order/domain/port"
)

// 支付网关的重试窗口远小于 24 小时，占位 key 过期后即便重放
// 也会被订单状态机挡下（已支付的订单直接返回成功）。
const paymentGuardTTL = 24 * time.Hour

// RedisPaymentGuardAdapter 用 Redis SetNX 实现支付回调的幂等保护。
type RedisPaymentGuardAdapter struct {
	client *redis.Client
}

func NewRedisPaymentGuardAdapter(client *redis.Client) *RedisPaymentGuardAdapter {
	return &RedisPaymentGuardAdapter{client: client}
}

var _ port.PaymentCallbackGuard = (*RedisPaymentGuardAdapter)(nil)

func (a *RedisPaymentGuardAdapter) Acquire(ctx context.Context, transactionID string) (bool, error) {
	key := fmt.Sprintf("payment:callback:%s", transactionID)
	return a.client.SetNX(ctx, key, 1, paymentGuardTTL)
}
