package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fr4ncode/order-system/internal/domain"
	"github.com/fr4ncode/order-system/internal/platform/auth"
	"github.com/fr4ncode/order-system/internal/services"
)

type stubOrderService struct {
	createFn  func(context.Context, services.CreateOrderCommand) (domain.Order, error)
	editFn    func(context.Context, services.EditOrderCommand) (domain.Order, error)
	cancelFn  func(context.Context, domain.Requester, string) (domain.Order, error)
	confirmFn func(context.Context, domain.Requester, string) (domain.Order, error)
	shipFn    func(context.Context, domain.Requester, string) (domain.Order, error)
	deliverFn func(context.Context, domain.Requester, string) (domain.Order, error)
	getFn     func(context.Context, domain.Requester, string) (domain.Order, error)
	listFn    func(context.Context, services.ListOrdersQuery) (domain.Page[domain.Order], error)
}

func (s *stubOrderService) Create(ctx context.Context, cmd services.CreateOrderCommand) (domain.Order, error) {
	if s.createFn != nil {
		return s.createFn(ctx, cmd)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) Edit(ctx context.Context, cmd services.EditOrderCommand) (domain.Order, error) {
	if s.editFn != nil {
		return s.editFn(ctx, cmd)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) Cancel(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, requester, orderID)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) Confirm(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error) {
	if s.confirmFn != nil {
		return s.confirmFn(ctx, requester, orderID)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) Ship(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error) {
	if s.shipFn != nil {
		return s.shipFn(ctx, requester, orderID)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) Deliver(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error) {
	if s.deliverFn != nil {
		return s.deliverFn(ctx, requester, orderID)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) GetByID(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error) {
	if s.getFn != nil {
		return s.getFn(ctx, requester, orderID)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) List(ctx context.Context, query services.ListOrdersQuery) (domain.Page[domain.Order], error) {
	if s.listFn != nil {
		return s.listFn(ctx, query)
	}
	return domain.Page[domain.Order]{}, nil
}

func sampleOrder() domain.Order {
	total, _ := decimal.NewFromString("18.00")
	unit, _ := decimal.NewFromString("9.00")
	return domain.Order{
		ID:     "ord_123",
		UserID: "user-1",
		Status: domain.OrderStatusPending,
		Total:  total,
		Lines: []domain.OrderLine{
			{
				ID:        "lin_1",
				OrderID:   "ord_123",
				ProductID: "prd_1",
				Name:      "Ceramic Mug",
				Quantity:  2,
				UnitPrice: unit,
				Subtotal:  total,
			},
		},
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newOrderRouter(service services.OrderService) chi.Router {
	handler := NewOrderHandlers(nil, service)
	router := chi.NewRouter()
	router.Route("/orders", handler.Routes)
	return router
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{UID: "user-1", Roles: []string{auth.RoleUser}}))
}

func TestCreateOrderHandler(t *testing.T) {
	var captured services.CreateOrderCommand
	service := &stubOrderService{
		createFn: func(ctx context.Context, cmd services.CreateOrderCommand) (domain.Order, error) {
			captured = cmd
			return sampleOrder(), nil
		},
	}
	router := newOrderRouter(service)

	req := authedRequest(http.MethodPost, "/orders/", `{"lines":[{"product_id":"prd_1","quantity":2}]}`)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rr.Code, rr.Body.String())
	}
	if captured.Requester.ID != "user-1" {
		t.Fatalf("requester = %q, want user-1", captured.Requester.ID)
	}
	if len(captured.Lines) != 1 || captured.Lines[0].ProductID != "prd_1" || captured.Lines[0].Quantity != 2 {
		t.Fatalf("lines = %+v", captured.Lines)
	}

	var payload orderPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Total != "18.00" {
		t.Fatalf("total = %q, want 18.00", payload.Total)
	}
	if payload.Lines[0].UnitPrice != "9.00" {
		t.Fatalf("unit price = %q, want 9.00", payload.Lines[0].UnitPrice)
	}
}

func TestCreateOrderHandlerRequiresAuth(t *testing.T) {
	router := newOrderRouter(&stubOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/orders/", strings.NewReader(`{"lines":[]}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestCreateOrderHandlerInvalidBody(t *testing.T) {
	router := newOrderRouter(&stubOrderService{})

	req := authedRequest(http.MethodPost, "/orders/", "{not json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestCreateOrderHandlerDomainErrorMapping(t *testing.T) {
	service := &stubOrderService{
		createFn: func(ctx context.Context, cmd services.CreateOrderCommand) (domain.Order, error) {
			return domain.Order{}, domain.ErrInsufficientStock("prd_1", 1, 0)
		},
	}
	router := newOrderRouter(service)

	req := authedRequest(http.MethodPost, "/orders/", `{"lines":[{"product_id":"prd_1","quantity":1}]}`)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body %s)", rr.Code, rr.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["error"] != string(domain.ErrorKindInsufficientStock) {
		t.Fatalf("error code = %v", payload["error"])
	}
}

func TestListOrdersHandlerParsesFilter(t *testing.T) {
	var captured services.ListOrdersQuery
	service := &stubOrderService{
		listFn: func(ctx context.Context, query services.ListOrdersQuery) (domain.Page[domain.Order], error) {
			captured = query
			return domain.Page[domain.Order]{
				Items:      []domain.Order{sampleOrder()},
				Index:      1,
				Size:       10,
				TotalItems: 21,
			}, nil
		},
	}
	router := newOrderRouter(service)

	req := authedRequest(http.MethodGet, "/orders/?status=confirmed&dateFrom=2024-03-01&dateTo=2024-04-01T00:00:00Z&pageIndex=1&pageSize=10", "")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rr.Code, rr.Body.String())
	}
	if captured.Filter.Status == nil || *captured.Filter.Status != domain.OrderStatusConfirmed {
		t.Fatalf("status filter = %v", captured.Filter.Status)
	}
	if captured.Filter.DateFrom == nil || !captured.Filter.DateFrom.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("dateFrom = %v", captured.Filter.DateFrom)
	}
	if captured.Page.Index != 1 || captured.Page.Size != 10 {
		t.Fatalf("page = %+v", captured.Page)
	}

	var payload orderListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Page.TotalItems != 21 {
		t.Fatalf("total items = %d, want 21", payload.Page.TotalItems)
	}
}

func TestListOrdersHandlerRejectsBadStatus(t *testing.T) {
	router := newOrderRouter(&stubOrderService{})

	req := authedRequest(http.MethodGet, "/orders/?status=bogus", "")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestListOrdersHandlerRejectsBadPagination(t *testing.T) {
	router := newOrderRouter(&stubOrderService{})

	req := authedRequest(http.MethodGet, "/orders/?pageSize=500", "")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestGetOrderHandler(t *testing.T) {
	service := &stubOrderService{
		getFn: func(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error) {
			if orderID != "ord_123" {
				return domain.Order{}, domain.ErrNotFound("order", orderID)
			}
			return sampleOrder(), nil
		},
	}
	router := newOrderRouter(service)

	req := authedRequest(http.MethodGet, "/orders/ord_123", "")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rr.Code, rr.Body.String())
	}

	req = authedRequest(http.MethodGet, "/orders/ord_404", "")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestTransitionHandlers(t *testing.T) {
	confirmed := sampleOrder()
	confirmed.Status = domain.OrderStatusConfirmed

	var gotOrderID string
	service := &stubOrderService{
		confirmFn: func(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error) {
			gotOrderID = orderID
			return confirmed, nil
		},
		cancelFn: func(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error) {
			return domain.Order{}, domain.ErrInvalidTransition(domain.OrderStatusDelivered, domain.OrderStatusCancelled)
		},
	}
	router := newOrderRouter(service)

	req := authedRequest(http.MethodPost, "/orders/ord_123:confirm", "")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("confirm status = %d (body %s)", rr.Code, rr.Body.String())
	}
	if gotOrderID != "ord_123" {
		t.Fatalf("order id = %q", gotOrderID)
	}

	var payload orderPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != string(domain.OrderStatusConfirmed) {
		t.Fatalf("status = %q", payload.Status)
	}

	req = authedRequest(http.MethodPost, "/orders/ord_123:cancel", "")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("cancel status = %d, want 409", rr.Code)
	}
}
