// internal/service/cart/application/service.go
package application

import (
	"context"
	"fmt"
	"time"

	"bazaar/internal/pkg/logger"
	catalog "bazaar/internal/service/catalog/domain"
	"bazaar/internal/service/cart/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AddItemRequest 是加购用例的输入。
type AddItemRequest struct {
	UserID          uint   `json:"userId"`
	OfferID         uint   `json:"offerId"`
	Quantity        int    `json:"quantity"`
	VariantValueIDs []uint `json:"variantValueIds,omitempty"`
}

// CartApplicationService 维护结算前的购物车。
// 这里的所有校验都是咨询性的（不加锁）：在结算提交之前
// 不会占用任何库存，权威校验发生在结算事务的行锁之内。
type CartApplicationService struct {
	carts   domain.CartRepository
	catalog catalog.CatalogRepository
	tracer  trace.Tracer
	now     func() time.Time
}

func NewCartApplicationService(carts domain.CartRepository, catalogRepo catalog.CatalogRepository, tracer trace.Tracer) *CartApplicationService {
	return &CartApplicationService{carts: carts, catalog: catalogRepo, tracer: tracer, now: time.Now}
}

// AddItem 校验活跃报价后把一行加入购物车，快照字段从活跃报价刷新。
// 同一报价已在车内时合并数量并重新校验。
func (s *CartApplicationService) AddItem(ctx context.Context, req *AddItemRequest) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "app.Cart.AddItem")
	defer span.End()
	span.SetAttributes(
		attribute.Int("user.id", int(req.UserID)),
		attribute.Int("offer.id", int(req.OfferID)),
		attribute.Int("quantity", req.Quantity),
	)

	offer, err := s.catalog.FindOfferByID(ctx, req.OfferID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	cart, err := s.carts.GetOrCreate(ctx, req.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	quantity := req.Quantity
	existing := cart.FindItemByOffer(req.OfferID)
	if existing != nil {
		quantity += existing.Quantity
	}
	if err := validateAgainstOffer(offer, quantity); err != nil {
		return nil, err
	}

	item := snapshotItem(cart.ID, offer, quantity, req.VariantValueIDs, s.now())
	if existing != nil {
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
	}
	if err := s.carts.UpsertItem(ctx, item); err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().Uint("cart_id", cart.ID).Uint("offer_id", offer.ID).Int("quantity", quantity).Msg("cart item upserted")
	return s.carts.FindByUser(ctx, req.UserID)
}

// UpdateItemQuantity 修改一行的数量，对活跃报价重新校验。
func (s *CartApplicationService) UpdateItemQuantity(ctx context.Context, userID, itemID uint, quantity int) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "app.Cart.UpdateItemQuantity")
	defer span.End()

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var target *domain.CartItem
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			target = &cart.Items[i]
			break
		}
	}
	if target == nil {
		return nil, domain.ErrItemNotFound
	}

	offer, err := s.catalog.FindOfferByID(ctx, target.OfferID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := validateAgainstOffer(offer, quantity); err != nil {
		return nil, err
	}

	if err := s.carts.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.carts.FindByUser(ctx, userID)
}

// RemoveItem 删除购物车中的一行。
func (s *CartApplicationService) RemoveItem(ctx context.Context, userID, itemID uint) (*domain.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if found := func() bool {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				return true
			}
		}
		return false
	}(); !found {
		return nil, domain.ErrItemNotFound
	}

	if err := s.carts.RemoveItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.carts.FindByUser(ctx, userID)
}

// ClearCart 清空用户购物车的全部条目。
func (s *CartApplicationService) ClearCart(ctx context.Context, userID uint) error {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.carts.ClearItems(ctx, cart.ID)
}

// GetCart 返回用户的购物车；不存在时惰性创建一个空车。
func (s *CartApplicationService) GetCart(ctx context.Context, userID uint) (*domain.Cart, error) {
	return s.carts.GetOrCreate(ctx, userID)
}

// validateAgainstOffer 按活跃报价做咨询性校验：
// 报价必须活跃、库存足够、数量落在起订/限购区间内。
func validateAgainstOffer(offer *catalog.SellerOffer, quantity int) error {
	if quantity <= 0 {
		return &domain.QuantityBoundsError{OfferID: offer.ID, Quantity: quantity, Min: offer.MinOrder, Max: offer.MaxOrder}
	}
	if !offer.IsActive {
		return fmt.Errorf("offer %d: %w", offer.ID, catalog.ErrOfferInactive)
	}
	if offer.Stock < quantity {
		return &domain.QuantityBoundsError{OfferID: offer.ID, Quantity: quantity, Min: offer.MinOrder, Max: offer.MaxOrder}
	}
	if offer.MinOrder != nil && quantity < *offer.MinOrder {
		return &domain.QuantityBoundsError{OfferID: offer.ID, Quantity: quantity, Min: offer.MinOrder, Max: offer.MaxOrder}
	}
	if offer.MaxOrder != nil && quantity > *offer.MaxOrder {
		return &domain.QuantityBoundsError{OfferID: offer.ID, Quantity: quantity, Min: offer.MinOrder, Max: offer.MaxOrder}
	}
	return nil
}

// snapshotItem 从活跃报价刷新一条购物车行的展示性快照。
func snapshotItem(cartID uint, offer *catalog.SellerOffer, quantity int, variantValueIDs []uint, now time.Time) *domain.CartItem {
	return &domain.CartItem{
		CartID:          cartID,
		ProductID:       offer.ProductID,
		OfferID:         offer.ID,
		VariantValueIDs: variantValueIDs,
		Quantity:        quantity,
		UnitPrice:       offer.Price,
		DiscountPrice:   offer.DiscountPrice,
		DiscountPercent: offer.DiscountPercent,
		SellerName:      offer.Seller.BusinessName,
		ProductName:     offer.Product.Name,
		ProductSlug:     offer.Product.Slug,
		ProductImage:    offer.Product.Image,
		StockAtAdd:      offer.Stock,
		MinOrder:        offer.MinOrder,
		MaxOrder:        offer.MaxOrder,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
