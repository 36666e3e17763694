package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/cart/application"
	"bazaar/internal/service/cart/domain"
	catalog "bazaar/internal/service/catalog/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "marketplace-service"

// CartHandler 封装了购物车的 HTTP 处理器
type CartHandler struct {
	service *application.CartApplicationService
	tracer  trace.Tracer
}

func NewCartHandler(service *application.CartApplicationService) *CartHandler {
	return &CartHandler{
		service: service,
		tracer:  otel.Tracer(serviceName),
	}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *CartHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /users/{id}/cart", h.getCart)
	mux.HandleFunc("POST /users/{id}/cart/items", h.addItem)
	mux.HandleFunc("PATCH /users/{id}/cart/items/{itemId}", h.updateItemQuantity)
	mux.HandleFunc("DELETE /users/{id}/cart/items/{itemId}", h.removeItem)
	mux.HandleFunc("DELETE /users/{id}/cart/items", h.clearCart)
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "api.GetCart")
	defer span.End()

	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	cart, err := h.service.GetCart(ctx, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "api.AddCartItem")
	defer span.End()

	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req application.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.UserID = userID

	cart, err := h.service.AddItem(ctx, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) updateItemQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "api.UpdateCartItemQuantity")
	defer span.End()

	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cart, err := h.service.UpdateItemQuantity(ctx, userID, itemID, body.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "api.RemoveCartItem")
	defer span.End()

	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(ctx, userID, itemID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "api.ClearCart")
	defer span.End()

	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.ClearCart(ctx, userID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) startSpan(r *http.Request, name string) (context.Context, trace.Span) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return h.tracer.Start(ctx, name)
}

// writeError 把购物车与目录的领域错误映射成 HTTP 状态码。
func (h *CartHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var bounds *domain.QuantityBoundsError
	switch {
	case errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, catalog.ErrOfferNotFound),
		errors.Is(err, catalog.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrOfferInactive), errors.As(err, &bounds):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func pathID(w http.ResponseWriter, r *http.Request, key string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(key), 10, 64)
	if err != nil || id == 0 {
		http.Error(w, "invalid "+key, http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
