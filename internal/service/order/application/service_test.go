package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	catalog "bazaar/internal/service/catalog/domain"
	"bazaar/internal/service/order/domain"
	"bazaar/internal/service/order/domain/port"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
)

var testPricing = domain.PricingConfig{
	FreeShippingThreshold: 500000,
	ShippingFlatFee:       45000,
	TaxPercent:            9,
}

// ---- 内存版结算存储 ----
//
// fakeCheckoutStore 用每个报价一把互斥锁来模拟数据库的行锁：
// LockOffer 阻塞到持锁事务结束，订单号唯一性在 CreateOrder 时占位，
// 事务失败时释放占位并丢弃全部暂存写入。并发语义因此和真实存储一致。

type fakeOffer struct {
	mu    sync.Mutex
	offer catalog.SellerOffer
}

type fakeCheckoutStore struct {
	mu           sync.Mutex
	offers       map[uint]*fakeOffer
	orders       []*domain.Order
	orderNumbers map[string]bool
	deletedCarts []uint
	nextOrderID  uint

	// 前 N 次 CreateOrder 强制返回订单号冲突，用于测试重试
	forcedConflicts int
}

func newFakeCheckoutStore(offers ...catalog.SellerOffer) *fakeCheckoutStore {
	s := &fakeCheckoutStore{
		offers:       make(map[uint]*fakeOffer),
		orderNumbers: make(map[string]bool),
	}
	for _, o := range offers {
		s.offers[o.ID] = &fakeOffer{offer: o}
	}
	return s
}

func (s *fakeCheckoutStore) stockOf(offerID uint) int {
	fo := s.offers[offerID]
	fo.mu.Lock()
	defer fo.mu.Unlock()
	return fo.offer.Stock
}

func (s *fakeCheckoutStore) committedOrders() []*domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// RestoreOfferStock 让 store 同时充当取消流程的库存归还端口。
func (s *fakeCheckoutStore) RestoreOfferStock(ctx context.Context, offerID uint, qty int) error {
	fo, ok := s.offers[offerID]
	if !ok {
		return catalog.ErrOfferNotFound
	}
	fo.mu.Lock()
	defer fo.mu.Unlock()
	fo.offer.Stock += qty
	return nil
}

func (s *fakeCheckoutStore) WithTx(ctx context.Context, fn func(tx domain.CheckoutTx) error) error {
	tx := &fakeCheckoutTx{store: s, stagedStock: make(map[uint]int)}
	err := fn(tx)
	if err != nil {
		tx.rollback()
		return err
	}
	tx.commit()
	return nil
}

type fakeCheckoutTx struct {
	store        *fakeCheckoutStore
	locked       []*fakeOffer
	stagedStock  map[uint]int
	stagedOrder  *domain.Order
	stagedNumber string
	stagedCart   uint
}

func (t *fakeCheckoutTx) LockOffer(ctx context.Context, offerID uint) (*catalog.SellerOffer, error) {
	fo, ok := t.store.offers[offerID]
	if !ok {
		return nil, catalog.ErrOfferNotFound
	}
	fo.mu.Lock() // 行锁：持有到事务结束
	t.locked = append(t.locked, fo)
	snapshot := fo.offer
	return &snapshot, nil
}

func (t *fakeCheckoutTx) UpdateOfferStock(ctx context.Context, offerID uint, stock int) error {
	t.stagedStock[offerID] = stock
	return nil
}

func (t *fakeCheckoutTx) CountOrdersCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	var n int64
	for _, o := range t.store.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (t *fakeCheckoutTx) CreateOrder(ctx context.Context, order *domain.Order) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.forcedConflicts > 0 {
		t.store.forcedConflicts--
		return domain.ErrOrderNumberConflict
	}
	if t.store.orderNumbers[order.OrderNumber] {
		return domain.ErrOrderNumberConflict
	}
	t.store.orderNumbers[order.OrderNumber] = true
	t.store.nextOrderID++
	order.ID = t.store.nextOrderID
	t.stagedOrder = order
	t.stagedNumber = order.OrderNumber
	return nil
}

func (t *fakeCheckoutTx) DeleteCart(ctx context.Context, cartID uint) error {
	t.stagedCart = cartID
	return nil
}

func (t *fakeCheckoutTx) commit() {
	t.store.mu.Lock()
	for id, stock := range t.stagedStock {
		t.store.offers[id].offer.Stock = stock
	}
	if t.stagedOrder != nil {
		t.store.orders = append(t.store.orders, t.stagedOrder)
	}
	if t.stagedCart != 0 {
		t.store.deletedCarts = append(t.store.deletedCarts, t.stagedCart)
	}
	t.store.mu.Unlock()
	t.unlock()
}

func (t *fakeCheckoutTx) rollback() {
	t.store.mu.Lock()
	if t.stagedNumber != "" {
		delete(t.store.orderNumbers, t.stagedNumber)
	}
	t.store.mu.Unlock()
	t.unlock()
}

func (t *fakeCheckoutTx) unlock() {
	for i := len(t.locked) - 1; i >= 0; i-- {
		t.locked[i].mu.Unlock()
	}
	t.locked = nil
}

// ---- 其余端口的测试替身 ----

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uint]*domain.Order
	logs   []*domain.PaymentLog
}

func newFakeOrderRepo(orders ...*domain.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[uint]*domain.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == number {
			return o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *fakeOrderRepo) ListByUser(ctx context.Context, userID uint) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListBySeller(ctx context.Context, sellerID uint) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		for _, it := range o.Items {
			if it.SellerID == sellerID {
				out = append(out, o)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			o.Status = v.(domain.Status)
		case "payment_status":
			o.PaymentStatus = v.(domain.PaymentStatus)
		case "transaction_id":
			o.TransactionID = v.(string)
		case "cancel_reason":
			o.CancelReason = v.(string)
		case "paid_at":
			if ts, ok := v.(*time.Time); ok {
				o.PaidAt = ts
			} else {
				ts := v.(time.Time)
				o.PaidAt = &ts
			}
		case "shipped_at":
			ts := v.(time.Time)
			o.ShippedAt = &ts
		case "delivered_at":
			ts := v.(time.Time)
			o.DeliveredAt = &ts
		case "updated_at":
			o.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (r *fakeOrderRepo) AppendPaymentLog(ctx context.Context, log *domain.PaymentLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

type fakeUserProvider struct{ users map[uint]*catalog.User }

func (p *fakeUserProvider) FindUserByID(ctx context.Context, id uint) (*catalog.User, error) {
	u, ok := p.users[id]
	if !ok {
		return nil, catalog.ErrUserNotFound
	}
	return u, nil
}

type fakeCartProvider struct{ snapshot *port.CartSnapshot }

func (p *fakeCartProvider) LoadCartWithItems(ctx context.Context, userID uint) (*port.CartSnapshot, error) {
	return p.snapshot, nil
}

type fakeProducer struct {
	mu     sync.Mutex
	events []*domain.OrderEvent
}

func (p *fakeProducer) Publish(ctx context.Context, event *domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type fakeGuard struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (g *fakeGuard) Acquire(ctx context.Context, transactionID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	if g.seen[transactionID] {
		return false, nil
	}
	g.seen[transactionID] = true
	return true, nil
}

// ---- 测试装配 ----

func activeOffer(id uint, price int64, stock int) catalog.SellerOffer {
	return catalog.SellerOffer{
		ID:        id,
		SellerID:  100 + id,
		ProductID: 200 + id,
		Price:     price,
		Stock:     stock,
		IsActive:  true,
		Seller:    catalog.Seller{ID: 100 + id, BusinessName: fmt.Sprintf("seller-%d", id)},
		Product:   catalog.Product{ID: 200 + id, Name: fmt.Sprintf("product-%d", id), Slug: fmt.Sprintf("product-%d", id)},
	}
}

type fixture struct {
	store    *fakeCheckoutStore
	repo     *fakeOrderRepo
	producer *fakeProducer
	guard    *fakeGuard
	carts    *fakeCartProvider
	svc      *OrderApplicationService
}

func newFixture(t *testing.T, store *fakeCheckoutStore) *fixture {
	t.Helper()
	f := &fixture{
		store:    store,
		repo:     newFakeOrderRepo(),
		producer: &fakeProducer{},
		guard:    &fakeGuard{},
		carts:    &fakeCartProvider{},
	}
	users := &fakeUserProvider{users: map[uint]*catalog.User{7: {ID: 7, Name: "Sari"}}}
	f.svc = NewOrderApplicationService(
		store, f.repo, users, f.carts, store,
		f.producer, f.guard, testPricing,
		noop.NewTracerProvider().Tracer("test"),
	)
	return f
}

func explicitRequest(lines ...OrderLine) *CreateOrderRequest {
	return &CreateOrderRequest{
		UserID:        7,
		PaymentMethod: "gateway",
		Shipping:      domain.ShippingInfo{RecipientName: "Sari", Address: "Jl. Merdeka 1"},
		Lines:         lines,
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	t.Parallel()

	store := newFakeCheckoutStore(activeOffer(1, 100000, 10), activeOffer(2, 50000, 5))
	f := newFixture(t, store)

	order, err := f.svc.CreateOrder(context.Background(), explicitRequest(
		OrderLine{OfferID: 1, Quantity: 2},
		OrderLine{OfferID: 2, Quantity: 3},
	))
	require.NoError(t, err)

	require.Regexp(t, `^ORD-\d{8}-0001$`, order.OrderNumber)
	require.Len(t, order.Items, 2)
	require.Equal(t, int64(350000), order.Subtotal)
	require.Equal(t, int64(45000), order.ShippingCost)
	require.Equal(t, order.Subtotal+order.ShippingCost+order.Tax, order.Total)

	require.Equal(t, 8, store.stockOf(1))
	require.Equal(t, 2, store.stockOf(2))
	require.Len(t, store.committedOrders(), 1)

	require.Len(t, f.producer.events, 1)
	require.Equal(t, domain.EventOrderCreated, f.producer.events[0].Type)
	require.Equal(t, order.OrderNumber, f.producer.events[0].OrderNumber)
}

func TestCreateOrderSnapshotsDiscountPrice(t *testing.T) {
	t.Parallel()

	offer := activeOffer(1, 100000, 10)
	offer.DiscountPrice = 80000
	store := newFakeCheckoutStore(offer)
	f := newFixture(t, store)

	order, err := f.svc.CreateOrder(context.Background(), explicitRequest(OrderLine{OfferID: 1, Quantity: 1}))
	require.NoError(t, err)
	require.Equal(t, int64(80000), order.Items[0].UnitPrice)

	// 快照与报价解耦：事后改价不影响已创建订单
	store.offers[1].offer.Price = 999999
	store.offers[1].offer.DiscountPrice = 999999
	require.Equal(t, int64(80000), order.Items[0].UnitPrice)
}

func TestCreateOrderSequentialNumbers(t *testing.T) {
	t.Parallel()

	store := newFakeCheckoutStore(activeOffer(1, 100000, 100))
	f := newFixture(t, store)

	first, err := f.svc.CreateOrder(context.Background(), explicitRequest(OrderLine{OfferID: 1, Quantity: 1}))
	require.NoError(t, err)
	second, err := f.svc.CreateOrder(context.Background(), explicitRequest(OrderLine{OfferID: 1, Quantity: 1}))
	require.NoError(t, err)

	require.Regexp(t, `-0001$`, first.OrderNumber)
	require.Regexp(t, `-0002$`, second.OrderNumber)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	t.Parallel()

	store := newFakeCheckoutStore(activeOffer(1, 100000, 3))
	f := newFixture(t, store)

	_, err := f.svc.CreateOrder(context.Background(), explicitRequest(OrderLine{OfferID: 1, Quantity: 4}))

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, uint(1), insufficient.OfferID)
	require.Equal(t, 4, insufficient.Requested)
	require.Equal(t, 3, insufficient.Available)

	require.Equal(t, 3, store.stockOf(1), "failed checkout must not touch stock")
	require.Empty(t, store.committedOrders())
	require.Empty(t, f.producer.events)
}

func TestCreateOrderMultiItemAtomicity(t *testing.T) {
	t.Parallel()

	store := newFakeCheckoutStore(activeOffer(1, 100000, 10), activeOffer(2, 50000, 1))
	f := newFixture(t, store)

	// 第二行库存不足，第一行的扣减必须一并回滚
	_, err := f.svc.CreateOrder(context.Background(), explicitRequest(
		OrderLine{OfferID: 1, Quantity: 2},
		OrderLine{OfferID: 2, Quantity: 5},
	))
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	require.Equal(t, 10, store.stockOf(1))
	require.Equal(t, 1, store.stockOf(2))
	require.Empty(t, store.committedOrders())
}

func TestCreateOrderValidationFailures(t *testing.T) {
	t.Parallel()

	inactive := activeOffer(2, 50000, 5)
	inactive.IsActive = false
	store := newFakeCheckoutStore(activeOffer(1, 100000, 10), inactive)
	f := newFixture(t, store)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, explicitRequest(OrderLine{OfferID: 99, Quantity: 1}))
	require.ErrorIs(t, err, domain.ErrOfferNotFound)

	_, err = f.svc.CreateOrder(ctx, explicitRequest(OrderLine{OfferID: 2, Quantity: 1}))
	require.ErrorIs(t, err, domain.ErrOfferInactive)

	_, err = f.svc.CreateOrder(ctx, explicitRequest(OrderLine{OfferID: 1, Quantity: 0}))
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	req := explicitRequest(OrderLine{OfferID: 1, Quantity: 1})
	req.UserID = 404
	_, err = f.svc.CreateOrder(ctx, req)
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	require.Equal(t, 10, store.stockOf(1))
	require.Empty(t, store.committedOrders())
}

// K 个买家抢 N 件库存（K = N+1）：恰好 N 个成功，库存归零，绝不超卖。
func TestCreateOrderConcurrentOversellProtection(t *testing.T) {
	t.Parallel()

	const stock = 8
	store := newFakeCheckoutStore(activeOffer(1, 100000, stock))
	f := newFixture(t, store)

	var g errgroup.Group
	results := make([]error, stock+1)
	for i := 0; i < stock+1; i++ {
		i := i
		g.Go(func() error {
			_, err := f.svc.CreateOrder(context.Background(), explicitRequest(OrderLine{OfferID: 1, Quantity: 1}))
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var succeeded, rejected int
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *domain.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		rejected++
	}
	require.Equal(t, stock, succeeded)
	require.Equal(t, 1, rejected)
	require.Equal(t, 0, store.stockOf(1))

	// 成功的订单号必须互不相同
	numbers := make(map[string]bool)
	for _, o := range store.committedOrders() {
		require.False(t, numbers[o.OrderNumber])
		numbers[o.OrderNumber] = true
	}
	require.Len(t, numbers, stock)
}

func TestCreateOrderRetriesOnNumberConflict(t *testing.T) {
	t.Parallel()

	store := newFakeCheckoutStore(activeOffer(1, 100000, 10))
	store.forcedConflicts = 2
	f := newFixture(t, store)

	order, err := f.svc.CreateOrder(context.Background(), explicitRequest(OrderLine{OfferID: 1, Quantity: 1}))
	require.NoError(t, err)
	require.NotEmpty(t, order.OrderNumber)
	// 前两次冲突的事务已回滚，只有最后一次的扣减生效
	require.Equal(t, 9, store.stockOf(1))
	require.Len(t, store.committedOrders(), 1)
}

func TestCreateOrderGivesUpAfterRetryBudget(t *testing.T) {
	t.Parallel()

	store := newFakeCheckoutStore(activeOffer(1, 100000, 10))
	store.forcedConflicts = maxOrderNumberRetries
	f := newFixture(t, store)

	_, err := f.svc.CreateOrder(context.Background(), explicitRequest(OrderLine{OfferID: 1, Quantity: 1}))
	require.ErrorIs(t, err, domain.ErrOrderNumberConflict)
	require.Equal(t, 10, store.stockOf(1))
	require.Empty(t, store.committedOrders())
}

func TestCreateOrderFromCartConsumesCart(t *testing.T) {
	t.Parallel()

	store := newFakeCheckoutStore(activeOffer(1, 100000, 10), activeOffer(2, 50000, 5))
	f := newFixture(t, store)
	f.carts.snapshot = &port.CartSnapshot{
		CartID: 33,
		Lines: []port.CartLine{
			{OfferID: 1, Quantity: 1},
			{OfferID: 2, Quantity: 2},
		},
	}

	order, err := f.svc.CreateOrder(context.Background(), explicitRequest())
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	require.Equal(t, []uint{33}, store.deletedCarts, "cart is consumed in the same transaction")
}

func TestCreateOrderFromCartFailureKeepsCart(t *testing.T) {
	t.Parallel()

	store := newFakeCheckoutStore(activeOffer(1, 100000, 0))
	f := newFixture(t, store)
	f.carts.snapshot = &port.CartSnapshot{
		CartID: 33,
		Lines:  []port.CartLine{{OfferID: 1, Quantity: 1}},
	}

	_, err := f.svc.CreateOrder(context.Background(), explicitRequest())
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Empty(t, store.deletedCarts, "failed checkout keeps the cart intact")
}

func TestCreateOrderEmptyCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t, newFakeCheckoutStore())
	_, err := f.svc.CreateOrder(context.Background(), explicitRequest())
	require.ErrorIs(t, err, domain.ErrCartEmpty)

	f.carts.snapshot = &port.CartSnapshot{CartID: 33}
	_, err = f.svc.CreateOrder(context.Background(), explicitRequest())
	require.ErrorIs(t, err, domain.ErrCartEmpty)
}

func pendingOrder(id uint, items ...domain.OrderItem) *domain.Order {
	order := domain.NewOrder(fmt.Sprintf("ORD-20260830-%04d", id), 7, "gateway", domain.ShippingInfo{}, items, testPricing, time.Now())
	order.ID = id
	return order
}

func TestConfirmPayment(t *testing.T) {
	t.Parallel()

	f := newFixture(t, newFakeCheckoutStore())
	order := pendingOrder(1, domain.NewOrderItem(1, 201, 101, "p", "p", "", "s", nil, 2, 100000))
	f.repo.orders[1] = order

	paid, err := f.svc.ConfirmPayment(context.Background(), 1, "txn-abc", "midtrans")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, paid.Status)
	require.Equal(t, domain.PaymentCompleted, paid.PaymentStatus)
	require.Equal(t, "txn-abc", paid.TransactionID)
	require.NotNil(t, paid.PaidAt)

	require.Len(t, f.repo.logs, 1)
	require.Equal(t, domain.PaymentLogCompleted, f.repo.logs[0].Status)
	require.Equal(t, paid.Total, f.repo.logs[0].Amount)
	require.NotEmpty(t, f.repo.logs[0].ReferenceCode)

	require.Len(t, f.producer.events, 1)
	require.Equal(t, domain.EventOrderPaid, f.producer.events[0].Type)
}

func TestConfirmPaymentDuplicateCallbackIgnored(t *testing.T) {
	t.Parallel()

	f := newFixture(t, newFakeCheckoutStore())
	f.repo.orders[1] = pendingOrder(1, domain.NewOrderItem(1, 201, 101, "p", "p", "", "s", nil, 1, 100000))

	_, err := f.svc.ConfirmPayment(context.Background(), 1, "txn-abc", "midtrans")
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(context.Background(), 1, "txn-abc", "midtrans")
	require.NoError(t, err)

	require.Len(t, f.repo.logs, 1, "duplicate callback must not append a second ledger entry")
	require.Len(t, f.producer.events, 1)
}

func TestConfirmPaymentGuardUnavailableFailsOpen(t *testing.T) {
	t.Parallel()

	f := newFixture(t, newFakeCheckoutStore())
	f.guard.err = errors.New("redis down")
	f.repo.orders[1] = pendingOrder(1, domain.NewOrderItem(1, 201, 101, "p", "p", "", "s", nil, 1, 100000))

	paid, err := f.svc.ConfirmPayment(context.Background(), 1, "txn-abc", "midtrans")
	require.NoError(t, err, "dedup layer outage must not drop payments")
	require.Equal(t, domain.StatusPaid, paid.Status)
}

func TestRecordPaymentFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, newFakeCheckoutStore())
	order := pendingOrder(1, domain.NewOrderItem(1, 201, 101, "p", "p", "", "s", nil, 1, 100000))
	f.repo.orders[1] = order

	err := f.svc.RecordPaymentFailure(context.Background(), 1, "midtrans", "card declined", `{"code":"05"}`)
	require.NoError(t, err)

	require.Len(t, f.repo.logs, 1)
	require.Equal(t, domain.PaymentLogFailed, f.repo.logs[0].Status)
	require.Equal(t, "card declined", f.repo.logs[0].ErrorMessage)
	require.Equal(t, domain.PaymentFailed, order.PaymentStatus)
	// 失败回调不改变订单主状态
	require.Equal(t, domain.StatusPending, order.Status)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	t.Parallel()

	store := newFakeCheckoutStore(activeOffer(1, 100000, 10), activeOffer(2, 50000, 5))
	f := newFixture(t, store)

	order, err := f.svc.CreateOrder(context.Background(), explicitRequest(
		OrderLine{OfferID: 1, Quantity: 3},
		OrderLine{OfferID: 2, Quantity: 2},
	))
	require.NoError(t, err)
	require.Equal(t, 7, store.stockOf(1))
	require.Equal(t, 3, store.stockOf(2))

	f.repo.orders[order.ID] = order
	cancelled, err := f.svc.CancelOrder(context.Background(), order.ID, "buyer request")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.Equal(t, "buyer request", cancelled.CancelReason)

	require.Equal(t, 10, store.stockOf(1), "cancellation returns every unit")
	require.Equal(t, 5, store.stockOf(2))

	require.Equal(t, domain.EventOrderCancelled, f.producer.events[len(f.producer.events)-1].Type)
}

func TestCancelOrderRejectedTwice(t *testing.T) {
	t.Parallel()

	store := newFakeCheckoutStore(activeOffer(1, 100000, 10))
	f := newFixture(t, store)

	order, err := f.svc.CreateOrder(context.Background(), explicitRequest(OrderLine{OfferID: 1, Quantity: 2}))
	require.NoError(t, err)
	f.repo.orders[order.ID] = order

	_, err = f.svc.CancelOrder(context.Background(), order.ID, "first")
	require.NoError(t, err)
	require.Equal(t, 10, store.stockOf(1))

	_, err = f.svc.CancelOrder(context.Background(), order.ID, "second")
	require.ErrorIs(t, err, domain.ErrOrderNotCancellable)
	require.Equal(t, 10, store.stockOf(1), "double cancel must not restore stock twice")
}

func TestCancelDeliveredOrderRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t, newFakeCheckoutStore())
	order := pendingOrder(1)
	order.Status = domain.StatusDelivered
	f.repo.orders[1] = order

	_, err := f.svc.CancelOrder(context.Background(), 1, "too late")
	require.ErrorIs(t, err, domain.ErrOrderNotCancellable)
}

func TestUpdateOrderBackfillsTimestamps(t *testing.T) {
	t.Parallel()

	f := newFixture(t, newFakeCheckoutStore())
	f.repo.orders[1] = pendingOrder(1)

	shipped := domain.StatusShipped
	updated, err := f.svc.UpdateOrder(context.Background(), 1, &UpdateOrderPatch{Status: &shipped})
	require.NoError(t, err)
	require.Equal(t, domain.StatusShipped, updated.Status)
	require.NotNil(t, updated.ShippedAt)
	firstShipped := *updated.ShippedAt

	// 再次置为同一状态不会改写时间戳
	updated, err = f.svc.UpdateOrder(context.Background(), 1, &UpdateOrderPatch{Status: &shipped})
	require.NoError(t, err)
	require.Equal(t, firstShipped, *updated.ShippedAt)
}

func TestGetOrderNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, newFakeCheckoutStore())
	_, err := f.svc.GetOrder(context.Background(), 404)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	_, err = f.svc.GetOrderByNumber(context.Background(), "ORD-20260830-9999")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}
