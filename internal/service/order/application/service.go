// internal/service/order/application/service.go
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bazaar/internal/pkg/logger"
	catalog "bazaar/internal/service/catalog/domain"
	"bazaar/internal/service/order/domain"
	"bazaar/internal/service/order/domain/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// 订单号唯一约束冲突时重试整个结算事务的次数上限。
// 只有这一类错误会被自动重试，业务规则类失败一律原样上抛。
const maxOrderNumberRetries = 3

// OrderApplicationService 编排订单的创建与生命周期流转。
type OrderApplicationService struct {
	checkout domain.CheckoutStore
	orders   domain.OrderRepository
	users    port.UserProvider
	carts    port.CartProvider
	stock    port.StockRestorer
	producer domain.OrderEventProducer // 可为 nil，事件投递是尽力而为的
	guard    port.PaymentCallbackGuard // 可为 nil，此时回调不做去重
	pricing  domain.PricingConfig
	tracer   trace.Tracer
	now      func() time.Time
}

func NewOrderApplicationService(
	checkout domain.CheckoutStore,
	orders domain.OrderRepository,
	users port.UserProvider,
	carts port.CartProvider,
	stock port.StockRestorer,
	producer domain.OrderEventProducer,
	guard port.PaymentCallbackGuard,
	pricing domain.PricingConfig,
	tracer trace.Tracer,
) *OrderApplicationService {
	return &OrderApplicationService{
		checkout: checkout, orders: orders, users: users, carts: carts,
		stock: stock, producer: producer, guard: guard,
		pricing: pricing, tracer: tracer, now: time.Now,
	}
}

// CreateOrder 执行一次完整的结算：
// 解析买家和下单行，在一个数据库事务内逐行加锁、校验、扣减库存，
// 生成订单号并持久化订单与明细快照；购物车来源的结算在同一事务里删除购物车。
// 任何一行不满足都会让整个事务回滚，不留下任何部分扣减。
func (s *OrderApplicationService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateOrder")
	defer span.End()
	span.SetAttributes(
		attribute.Int("user.id", int(req.UserID)),
		attribute.Int("order.explicit_lines", len(req.Lines)),
	)

	if _, err := s.users.FindUserByID(ctx, req.UserID); err != nil {
		if errors.Is(err, catalog.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		span.RecordError(err)
		return nil, err
	}

	lines, cartID, err := s.resolveLines(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var order *domain.Order
	for attempt := 1; attempt <= maxOrderNumberRetries; attempt++ {
		order, err = s.assemble(ctx, req, lines, cartID)
		if err == nil || !errors.Is(err, domain.ErrOrderNumberConflict) {
			break
		}
		logger.Ctx(ctx).Warn().Int("attempt", attempt).Msg("order number collision, retrying checkout transaction")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout transaction failed")
		return nil, err
	}

	span.SetAttributes(attribute.String("order.number", order.OrderNumber))
	logger.Ctx(ctx).Info().
		Str("order_number", order.OrderNumber).
		Int64("total", order.Total).
		Msg("order created")

	s.publishEvent(ctx, domain.EventOrderCreated, order, "")
	return order, nil
}

// resolveLines 决定本次结算的下单行来源：显式行或当前购物车。
// 返回的 cartID 非零表示结算成功后要在同一事务里删除该购物车。
func (s *OrderApplicationService) resolveLines(ctx context.Context, req *CreateOrderRequest) ([]OrderLine, uint, error) {
	if len(req.Lines) > 0 {
		return req.Lines, 0, nil
	}

	snapshot, err := s.carts.LoadCartWithItems(ctx, req.UserID)
	if err != nil {
		return nil, 0, err
	}
	if snapshot == nil || len(snapshot.Lines) == 0 {
		return nil, 0, domain.ErrCartEmpty
	}

	lines := make([]OrderLine, 0, len(snapshot.Lines))
	for _, l := range snapshot.Lines {
		lines = append(lines, OrderLine{OfferID: l.OfferID, Quantity: l.Quantity})
	}
	return lines, snapshot.CartID, nil
}

// assemble 是结算事务本体，对应一次 WithTx。
func (s *OrderApplicationService) assemble(ctx context.Context, req *CreateOrderRequest, lines []OrderLine, cartID uint) (*domain.Order, error) {
	now := s.now()
	var order *domain.Order

	err := s.checkout.WithTx(ctx, func(tx domain.CheckoutTx) error {
		items := make([]domain.OrderItem, 0, len(lines))

		// 严格按提交顺序逐行加锁。固定的锁顺序用来约束死锁风险，
		// 所以这里不做并发加锁。
		for _, line := range lines {
			if line.Quantity <= 0 {
				return fmt.Errorf("offer %d: %w", line.OfferID, domain.ErrInvalidQuantity)
			}

			offer, err := tx.LockOffer(ctx, line.OfferID)
			if err != nil {
				if errors.Is(err, catalog.ErrOfferNotFound) {
					return domain.ErrOfferNotFound
				}
				return err
			}

			// 锁内校验：活跃且库存充足。快照里的库存一律不作数。
			if !offer.IsActive {
				return fmt.Errorf("offer %d: %w", offer.ID, domain.ErrOfferInactive)
			}
			if offer.Stock < line.Quantity {
				return &domain.InsufficientStockError{
					OfferID:   offer.ID,
					Requested: line.Quantity,
					Available: offer.Stock,
				}
			}

			items = append(items, domain.NewOrderItem(
				offer.ID, offer.ProductID, offer.SellerID,
				offer.Product.Name, offer.Product.Slug, offer.Product.Image,
				offer.Seller.BusinessName, offer.VariantNames(),
				line.Quantity, offer.UnitPrice(),
			))

			if err := tx.UpdateOfferStock(ctx, offer.ID, offer.Stock-line.Quantity); err != nil {
				return err
			}
		}

		from, to := domain.DayBounds(now)
		count, err := tx.CountOrdersCreatedBetween(ctx, from, to)
		if err != nil {
			return err
		}
		number := domain.FormatOrderNumber(now, count+1)

		order = domain.NewOrder(number, req.UserID, req.PaymentMethod, req.Shipping, items, s.pricing, now)
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		if cartID != 0 {
			return tx.DeleteCart(ctx, cartID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmPayment 是支付网关回调的落点：记录支付完成并落一条支付流水。
// 没有库存副作用，库存在下单时已经扣减。
// 同一 transactionID 的重复回调直接返回当前订单，不重复记账。
func (s *OrderApplicationService) ConfirmPayment(ctx context.Context, orderID uint, transactionID, gateway string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.ConfirmPayment")
	defer span.End()
	span.SetAttributes(
		attribute.Int("order.id", int(orderID)),
		attribute.String("payment.transaction_id", transactionID),
	)

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.guard != nil {
		ok, err := s.guard.Acquire(ctx, transactionID)
		if err != nil {
			// 去重层不可用时放行回调，宁可重复记一条流水也不能丢支付
			logger.Ctx(ctx).Warn().Err(err).Msg("payment callback guard unavailable")
		} else if !ok {
			logger.Ctx(ctx).Info().Str("transaction_id", transactionID).Msg("duplicate payment callback ignored")
			return order, nil
		}
	}

	now := s.now()
	order.MarkPaid(transactionID, now)

	fields := map[string]interface{}{
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
		"transaction_id": order.TransactionID,
		"paid_at":        order.PaidAt,
		"updated_at":     now,
	}
	if err := s.orders.UpdateFields(ctx, order.ID, fields); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.orders.AppendPaymentLog(ctx, &domain.PaymentLog{
		OrderID:       order.ID,
		Status:        domain.PaymentLogCompleted,
		Amount:        order.Total,
		Gateway:       gateway,
		TransactionID: transactionID,
		ReferenceCode: uuid.NewString(),
		CreatedAt:     now,
	}); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.publishEvent(ctx, domain.EventOrderPaid, order, "")
	return order, nil
}

// RecordPaymentFailure 追加一条失败的支付流水。
// 只按订单 ID 引用订单，不构造任何部分订单对象。
func (s *OrderApplicationService) RecordPaymentFailure(ctx context.Context, orderID uint, gateway, reason, rawResponse string) error {
	ctx, span := s.tracer.Start(ctx, "app.RecordPaymentFailure")
	defer span.End()

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	now := s.now()
	if err := s.orders.AppendPaymentLog(ctx, &domain.PaymentLog{
		OrderID:       order.ID,
		Status:        domain.PaymentLogFailed,
		Amount:        order.Total,
		Gateway:       gateway,
		ReferenceCode: uuid.NewString(),
		RawResponse:   rawResponse,
		ErrorMessage:  reason,
		CreatedAt:     now,
	}); err != nil {
		span.RecordError(err)
		return err
	}

	return s.orders.UpdateFields(ctx, order.ID, map[string]interface{}{
		"payment_status": domain.PaymentFailed,
		"updated_at":     now,
	})
}

// CancelOrder 取消一个未送达、未取消的订单并逐条归还库存。
//
// 归还不在一个持锁事务内：每条明细是一次独立的单语句自增。
// 归还只增不减，所以没有超卖风险。
func (s *OrderApplicationService) CancelOrder(ctx context.Context, orderID uint, reason string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.CancelOrder")
	defer span.End()
	span.SetAttributes(attribute.Int("order.id", int(orderID)))

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	now := s.now()
	if err := order.Cancel(reason, now); err != nil {
		return nil, err
	}

	for _, item := range order.Items {
		if err := s.stock.RestoreOfferStock(ctx, item.OfferID, item.Quantity); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "stock restoration failed")
			return nil, err
		}
	}

	fields := map[string]interface{}{
		"status":        order.Status,
		"cancel_reason": order.CancelReason,
		"updated_at":    now,
	}
	if err := s.orders.UpdateFields(ctx, order.ID, fields); err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("order_number", order.OrderNumber).Str("reason", reason).Msg("order cancelled")
	s.publishEvent(ctx, domain.EventOrderCancelled, order, reason)
	return order, nil
}

// UpdateOrder 做部分字段更新，并在第一次观察到对应状态时
// 幂等地补写 paidAt/shippedAt/deliveredAt 时间戳（不覆盖已有值）。
func (s *OrderApplicationService) UpdateOrder(ctx context.Context, orderID uint, patch *UpdateOrderPatch) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.UpdateOrder")
	defer span.End()

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	now := s.now()
	fields := map[string]interface{}{"updated_at": now}

	if patch.Status != nil {
		fields["status"] = *patch.Status
		switch *patch.Status {
		case domain.StatusPaid:
			if order.PaidAt == nil {
				fields["paid_at"] = now
			}
		case domain.StatusShipped:
			if order.ShippedAt == nil {
				fields["shipped_at"] = now
			}
		case domain.StatusDelivered:
			if order.DeliveredAt == nil {
				fields["delivered_at"] = now
			}
		}
	}
	if patch.PaymentStatus != nil {
		fields["payment_status"] = *patch.PaymentStatus
		if *patch.PaymentStatus == domain.PaymentCompleted && order.PaidAt == nil {
			fields["paid_at"] = now
		}
	}
	if patch.PaymentMethod != nil {
		fields["payment_method"] = *patch.PaymentMethod
	}
	if patch.TransactionID != nil {
		fields["transaction_id"] = *patch.TransactionID
	}
	if patch.RecipientName != nil {
		fields["recipient_name"] = *patch.RecipientName
	}
	if patch.RecipientPhone != nil {
		fields["recipient_phone"] = *patch.RecipientPhone
	}
	if patch.ShippingAddress != nil {
		fields["shipping_address"] = *patch.ShippingAddress
	}

	if err := s.orders.UpdateFields(ctx, order.ID, fields); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.orders.FindByID(ctx, orderID)
}

func (s *OrderApplicationService) GetOrder(ctx context.Context, orderID uint) (*domain.Order, error) {
	return s.orders.FindByID(ctx, orderID)
}

func (s *OrderApplicationService) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return s.orders.FindByNumber(ctx, number)
}

func (s *OrderApplicationService) ListOrdersByUser(ctx context.Context, userID uint) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderApplicationService) ListOrdersBySeller(ctx context.Context, sellerID uint) ([]*domain.Order, error) {
	return s.orders.ListBySeller(ctx, sellerID)
}

// publishEvent 尽力投递一个订单生命周期事件，失败只记日志，绝不影响主流程。
func (s *OrderApplicationService) publishEvent(ctx context.Context, eventType string, order *domain.Order, reason string) {
	if s.producer == nil {
		return
	}
	event := &domain.OrderEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.Total,
		Reason:      reason,
		OccurredAt:  s.now(),
	}
	if err := s.producer.Publish(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("event_type", eventType).Msg("failed to publish order event")
	}
}
