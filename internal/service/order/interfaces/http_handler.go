package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/order/application"
	"bazaar/internal/service/order/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "marketplace-service"

// OrderHandler 封装了订单服务的 HTTP 处理器
type OrderHandler struct {
	service *application.OrderApplicationService
	tracer  trace.Tracer
}

// NewOrderHandler 创建一个新的 HTTP 处理器实例
func NewOrderHandler(service *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{
		service: service,
		tracer:  otel.Tracer(serviceName),
	}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("POST /orders", h.createOrder)
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
	mux.HandleFunc("PATCH /orders/{id}", h.updateOrder)
	mux.HandleFunc("GET /orders/number/{number}", h.getOrderByNumber)
	mux.HandleFunc("POST /orders/{id}/cancel", h.cancelOrder)
	mux.HandleFunc("POST /orders/{id}/payment/confirm", h.confirmPayment)
	mux.HandleFunc("POST /orders/{id}/payment/fail", h.recordPaymentFailure)
	mux.HandleFunc("GET /users/{id}/orders", h.listOrdersByUser)
	mux.HandleFunc("GET /sellers/{id}/orders", h.listOrdersBySeller)
}

func (h *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "api.CreateOrder")
	defer span.End()

	var req application.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("user.id", int(req.UserID)))

	order, err := h.service.CreateOrder(ctx, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "api.GetOrder")
	defer span.End()

	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.service.GetOrder(ctx, orderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) getOrderByNumber(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "api.GetOrderByNumber")
	defer span.End()

	number := r.PathValue("number")
	order, err := h.service.GetOrderByNumber(ctx, number)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) updateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "api.UpdateOrder")
	defer span.End()

	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var patch application.UpdateOrderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.service.UpdateOrder(ctx, orderID, &patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "api.CancelOrder")
	defer span.End()

	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// 取消原因可以为空，body 解析失败不拦截
	_ = json.NewDecoder(r.Body).Decode(&body)

	order, err := h.service.CancelOrder(ctx, orderID, body.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "api.ConfirmPayment")
	defer span.End()

	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		TransactionID string `json:"transactionId"`
		Gateway       string `json:"gateway"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TransactionID == "" {
		http.Error(w, "transactionId is required", http.StatusBadRequest)
		return
	}

	order, err := h.service.ConfirmPayment(ctx, orderID, body.TransactionID, body.Gateway)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) recordPaymentFailure(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "api.RecordPaymentFailure")
	defer span.End()

	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		Gateway     string `json:"gateway"`
		Reason      string `json:"reason"`
		RawResponse string `json:"rawResponse"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.RecordPaymentFailure(ctx, orderID, body.Gateway, body.Reason, body.RawResponse); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) listOrdersByUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "api.ListOrdersByUser")
	defer span.End()

	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	orders, err := h.service.ListOrdersByUser(ctx, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) listOrdersBySeller(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "api.ListOrdersBySeller")
	defer span.End()

	sellerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	orders, err := h.service.ListOrdersBySeller(ctx, sellerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// startSpan 从请求头恢复链路上下文并开启一个服务端 span。
func (h *OrderHandler) startSpan(r *http.Request, name string) (context.Context, trace.Span) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return h.tracer.Start(ctx, name)
}

// writeError 把领域错误映射成 HTTP 状态码。
func (h *OrderHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsNotFound(err):
		status = http.StatusNotFound
	case domain.IsBusinessRuleViolation(err):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrOrderNumberConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}

	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		writeJSON(w, status, map[string]interface{}{
			"error":     insufficient.Error(),
			"offerId":   insufficient.OfferID,
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
		return
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
