package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fr4ncode/order-system/internal/domain"
	"github.com/fr4ncode/order-system/internal/platform/auth"
	"github.com/fr4ncode/order-system/internal/platform/httpx"
	"github.com/fr4ncode/order-system/internal/platform/pagination"
	"github.com/fr4ncode/order-system/internal/services"
)

type orderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	Lines []orderLineRequest `json:"lines"`
}

type editOrderRequest struct {
	Lines []orderLineRequest `json:"lines"`
}

type orderListResponse struct {
	Items []orderPayload `json:"items"`
	Page  pageMeta       `json:"page"`
}

// OrderHandlers exposes the order lifecycle endpoints for authenticated users.
type OrderHandlers struct {
	authn  *auth.Authenticator
	orders services.OrderService
}

// NewOrderHandlers constructs a new OrderHandlers instance.
func NewOrderHandlers(authn *auth.Authenticator, orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{
		authn:  authn,
		orders: orders,
	}
}

// Routes registers the /orders endpoints.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Post("/", h.createOrder)
	r.Get("/", h.listOrders)
	r.Get("/{orderID}", h.getOrder)
	r.Put("/{orderID}", h.editOrder)
	r.Post("/{orderID}:cancel", h.transition(services.OrderService.Cancel))
	r.Post("/{orderID}:confirm", h.transition(services.OrderService.Confirm))
	r.Post("/{orderID}:ship", h.transition(services.OrderService.Ship))
	r.Post("/{orderID}:deliver", h.transition(services.OrderService.Deliver))
}

func (h *OrderHandlers) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requester, ok := requesterFromRequest(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	order, err := h.orders.Create(ctx, services.CreateOrderCommand{
		Requester: requester,
		Lines:     toLineInputs(req.Lines),
	})
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, buildOrderPayload(order))
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requester, ok := requesterFromRequest(w, r)
	if !ok {
		return
	}

	page, err := pagination.FromRequest(r)
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}

	query := r.URL.Query()
	filter := domain.OrderFilter{
		UserID: strings.TrimSpace(query.Get("userId")),
	}

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status := domain.OrderStatus(strings.ToUpper(raw))
		if !status.Valid() {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "status must be a valid order status", http.StatusBadRequest))
			return
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("dateFrom")); raw != "" {
		ts, err := parseTimeParam(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "dateFrom must be an RFC3339 timestamp or YYYY-MM-DD date", http.StatusBadRequest))
			return
		}
		filter.DateFrom = &ts
	}
	if raw := strings.TrimSpace(query.Get("dateTo")); raw != "" {
		ts, err := parseTimeParam(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "dateTo must be an RFC3339 timestamp or YYYY-MM-DD date", http.StatusBadRequest))
			return
		}
		filter.DateTo = &ts
	}

	result, err := h.orders.List(ctx, services.ListOrdersQuery{
		Requester: requester,
		Filter:    filter,
		Page:      page,
	})
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}

	items := make([]orderPayload, 0, len(result.Items))
	for _, order := range result.Items {
		items = append(items, buildOrderPayload(order))
	}
	httpx.WriteJSON(w, http.StatusOK, orderListResponse{
		Items: items,
		Page:  buildPageMeta(result),
	})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requester, ok := requesterFromRequest(w, r)
	if !ok {
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
		return
	}

	order, err := h.orders.GetByID(ctx, requester, orderID)
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) editOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requester, ok := requesterFromRequest(w, r)
	if !ok {
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
		return
	}

	var req editOrderRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	order, err := h.orders.Edit(ctx, services.EditOrderCommand{
		Requester: requester,
		OrderID:   orderID,
		Lines:     toLineInputs(req.Lines),
	})
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildOrderPayload(order))
}

// transition adapts a status-change service method into an HTTP handler.
// Method expressions like services.OrderService.Cancel satisfy the signature.
func (h *OrderHandlers) transition(op func(services.OrderService, context.Context, domain.Requester, string) (domain.Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requester, ok := requesterFromRequest(w, r)
		if !ok {
			return
		}

		orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
		if orderID == "" {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
			return
		}

		order, err := op(h.orders, ctx, requester, orderID)
		if err != nil {
			httpx.WriteDomainError(ctx, w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, buildOrderPayload(order))
	}
}

func toLineInputs(lines []orderLineRequest) []services.LineInput {
	inputs := make([]services.LineInput, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, services.LineInput{
			ProductID: strings.TrimSpace(line.ProductID),
			Quantity:  line.Quantity,
		})
	}
	return inputs
}
