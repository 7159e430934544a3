package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/fr4ncode/order-system/internal/domain"
	"github.com/fr4ncode/order-system/internal/platform/events"
	"github.com/fr4ncode/order-system/internal/platform/requestctx"
	"github.com/fr4ncode/order-system/internal/repositories"
)

// orderTransitions lists the permitted moves of the order state machine.
// DELIVERED and CANCELLED are terminal.
var orderTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:   {domain.OrderStatusConfirmed, domain.OrderStatusCancelled},
	domain.OrderStatusConfirmed: {domain.OrderStatusShipped, domain.OrderStatusCancelled},
	domain.OrderStatusShipped:   {domain.OrderStatusDelivered, domain.OrderStatusCancelled},
}

func transitionAllowed(from, to domain.OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Products    repositories.ProductRepository
	UnitOfWork  repositories.UnitOfWork
	Events      events.Publisher
	Clock       func() time.Time
	IDGenerator func() string
}

type orderService struct {
	orders     repositories.OrderRepository
	products   repositories.ProductRepository
	unitOfWork repositories.UnitOfWork
	events     events.Publisher
	clock      func() time.Time
	newID      func() string
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("order service: product repository is required")
	}
	if deps.UnitOfWork == nil {
		return nil, errors.New("order service: unit of work is required")
	}

	publisher := deps.Events
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	return &orderService{
		orders:     deps.Orders,
		products:   deps.Products,
		unitOfWork: deps.UnitOfWork,
		events:     publisher,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: idGen,
	}, nil
}

func (s *orderService) Create(ctx context.Context, cmd CreateOrderCommand) (domain.Order, error) {
	if strings.TrimSpace(cmd.Requester.ID) == "" {
		return domain.Order{}, domain.ErrForbidden("place an order without a user identity")
	}
	if err := validateLines(cmd.Lines); err != nil {
		return domain.Order{}, err
	}

	var order domain.Order
	var stockEvents []events.StockEvent

	err := s.unitOfWork.RunInTx(ctx, func(ctx context.Context) error {
		products, err := s.loadProducts(ctx, lineProductIDs(cmd.Lines))
		if err != nil {
			return err
		}
		before := cloneProducts(products)

		now := s.clock()
		orderID := orderIDPrefix + s.newID()
		lines, total, err := buildLines(products, orderID, cmd.Lines, s.newID)
		if err != nil {
			return err
		}

		if err := s.persistProducts(ctx, before, products, now); err != nil {
			return err
		}

		order = domain.Order{
			ID:        orderID,
			UserID:    cmd.Requester.ID,
			Status:    domain.OrderStatusPending,
			Total:     total,
			Lines:     lines,
			CreatedAt: now,
			UpdatedAt: now,
		}
		stockEvents = stockDeltas(before, products, order.ID, "reserve", now)
		return s.orders.Create(ctx, order)
	})
	if err != nil {
		return domain.Order{}, mapTxError(err)
	}

	s.publishOrderEvent(ctx, order)
	s.publishStockEvents(ctx, stockEvents)
	return order, nil
}

func (s *orderService) Edit(ctx context.Context, cmd EditOrderCommand) (domain.Order, error) {
	if err := validateLines(cmd.Lines); err != nil {
		return domain.Order{}, err
	}

	var order domain.Order
	var stockEvents []events.StockEvent

	err := s.unitOfWork.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.getOrder(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		if !cmd.Requester.Owns(existing) {
			return domain.ErrForbidden("edit an order placed by another user")
		}
		if existing.Status != domain.OrderStatusPending {
			return domain.NewError(domain.ErrorKindInvalidTransition, "cannot edit an order in status %s", existing.Status).
				WithDetails(map[string]any{"current": string(existing.Status), "requested": "edit"})
		}

		products, err := s.loadProducts(ctx, lineProductIDs(cmd.Lines))
		if err != nil {
			return err
		}
		if err := s.loadHeldProducts(ctx, products, existing.Lines); err != nil {
			return err
		}
		before := cloneProducts(products)

		// Old reservations are returned before the replacement lines reserve,
		// so an edit that keeps a product never competes with itself.
		if err := releaseLines(products, existing.Lines); err != nil {
			return err
		}
		lines, total, err := buildLines(products, existing.ID, cmd.Lines, s.newID)
		if err != nil {
			return err
		}

		now := s.clock()
		if err := s.persistProducts(ctx, before, products, now); err != nil {
			return err
		}

		order = existing
		order.Lines = lines
		order.Total = total
		order.UpdatedAt = now
		stockEvents = stockDeltas(before, products, order.ID, "edit", now)
		return s.orders.Update(ctx, order)
	})
	if err != nil {
		return domain.Order{}, mapTxError(err)
	}

	s.publishStockEvents(ctx, stockEvents)
	return order, nil
}

func (s *orderService) Cancel(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error) {
	var order domain.Order
	var stockEvents []events.StockEvent

	err := s.unitOfWork.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.getOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !requester.IsAdmin() && !requester.Owns(existing) {
			return domain.ErrForbidden("cancel an order placed by another user")
		}
		if existing.Status.Terminal() {
			return domain.ErrInvalidTransition(existing.Status, domain.OrderStatusCancelled)
		}
		// Owners may only cancel before confirmation; admins may cancel any
		// order that has not reached a terminal state.
		if !requester.IsAdmin() && existing.Status != domain.OrderStatusPending {
			return domain.ErrInvalidTransition(existing.Status, domain.OrderStatusCancelled)
		}

		products := make(productSet, len(existing.Lines))
		if err := s.loadHeldProducts(ctx, products, existing.Lines); err != nil {
			return err
		}
		before := cloneProducts(products)

		if err := releaseLines(products, existing.Lines); err != nil {
			return err
		}

		now := s.clock()
		if err := s.persistProducts(ctx, before, products, now); err != nil {
			return err
		}

		order = existing
		order.Status = domain.OrderStatusCancelled
		order.UpdatedAt = now
		stockEvents = stockDeltas(before, products, order.ID, "release", now)
		return s.orders.Update(ctx, order)
	})
	if err != nil {
		return domain.Order{}, mapTxError(err)
	}

	s.publishOrderEvent(ctx, order)
	s.publishStockEvents(ctx, stockEvents)
	return order, nil
}

func (s *orderService) Confirm(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error) {
	return s.transition(ctx, requester, orderID, domain.OrderStatusConfirmed, "confirm")
}

func (s *orderService) Ship(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error) {
	return s.transition(ctx, requester, orderID, domain.OrderStatusShipped, "ship")
}

func (s *orderService) Deliver(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error) {
	return s.transition(ctx, requester, orderID, domain.OrderStatusDelivered, "deliver")
}

// transition advances an order along the state machine without touching
// inventory; stock stays reserved until delivery or cancellation.
func (s *orderService) transition(ctx context.Context, requester domain.Requester, orderID string, target domain.OrderStatus, verb string) (domain.Order, error) {
	if !requester.IsAdmin() {
		return domain.Order{}, domain.ErrForbidden(verb + " an order")
	}

	var order domain.Order
	err := s.unitOfWork.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.getOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if existing.Status == domain.OrderStatusCancelled {
			return domain.NewError(domain.ErrorKindInvalidTransition, "cannot %s a cancelled order", verb).
				WithDetails(map[string]any{"current": string(existing.Status), "requested": string(target)})
		}
		if !transitionAllowed(existing.Status, target) {
			return domain.ErrInvalidTransition(existing.Status, target)
		}

		order = existing
		order.Status = target
		order.UpdatedAt = s.clock()
		return s.orders.Update(ctx, order)
	})
	if err != nil {
		return domain.Order{}, mapTxError(err)
	}

	s.publishOrderEvent(ctx, order)
	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, mapTxError(err)
	}
	if !requester.IsAdmin() && !requester.Owns(order) {
		return domain.Order{}, domain.ErrForbidden("view an order placed by another user")
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, query ListOrdersQuery) (domain.Page[domain.Order], error) {
	filter := query.Filter
	if !query.Requester.IsAdmin() {
		// Non-admins only ever see their own orders, whatever they asked for.
		filter.UserID = query.Requester.ID
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return domain.Page[domain.Order]{}, domain.ErrInvalidDateRange()
	}

	page, err := s.orders.List(ctx, filter, query.Page)
	if err != nil {
		return domain.Page[domain.Order]{}, mapTxError(err)
	}
	return page, nil
}

func (s *orderService) getOrder(ctx context.Context, orderID string) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, domain.ErrInvalidInput("order id is required")
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Order{}, domain.ErrNotFound("order", orderID)
		}
		return domain.Order{}, err
	}
	return order, nil
}

func (s *orderService) loadProducts(ctx context.Context, ids []string) (productSet, error) {
	products := make(productSet, len(ids))
	for _, id := range ids {
		product, err := s.products.GetByID(ctx, id)
		if err != nil {
			if repositories.IsNotFound(err) {
				return nil, domain.ErrNotFound("product", id)
			}
			return nil, err
		}
		products[id] = product
	}
	return products, nil
}

// loadHeldProducts fetches the products behind an order's existing lines into
// the set. Products deleted since the order was placed are skipped, so cancel
// and edit keep working on such orders; releaseLines has nothing to restore
// stock onto for them.
func (s *orderService) loadHeldProducts(ctx context.Context, products productSet, lines []domain.OrderLine) error {
	for _, line := range lines {
		if _, ok := products[line.ProductID]; ok {
			continue
		}
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if repositories.IsNotFound(err) {
				continue
			}
			return err
		}
		products[line.ProductID] = product
	}
	return nil
}

func (s *orderService) persistProducts(ctx context.Context, before, after productSet, now time.Time) error {
	for id, product := range after {
		if before[id].Stock == product.Stock {
			continue
		}
		product.UpdatedAt = now
		after[id] = product
		if err := s.products.Update(ctx, product); err != nil {
			return err
		}
	}
	return nil
}

func (s *orderService) publishOrderEvent(ctx context.Context, order domain.Order) {
	_, err := s.events.PublishOrderEvent(ctx, events.OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		Total:      order.Total.String(),
		OccurredAt: order.UpdatedAt,
	})
	if err != nil {
		requestctx.Logger(ctx).Warn("publish order event failed",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}

func (s *orderService) publishStockEvents(ctx context.Context, stockEvents []events.StockEvent) {
	for _, event := range stockEvents {
		if _, err := s.events.PublishStockEvent(ctx, event); err != nil {
			requestctx.Logger(ctx).Warn("publish stock event failed",
				zap.String("product_id", event.ProductID),
				zap.Error(err),
			)
		}
	}
}

func mapTxError(err error) error {
	if err == nil {
		return nil
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr
	}
	if repositories.IsConflict(err) {
		return domain.ErrConcurrentModification(err)
	}
	return domain.WrapError(domain.ErrorKindInternal, err, "order operation failed")
}

func lineProductIDs(lines []LineInput) []string {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	return ids
}

func cloneProducts(products productSet) productSet {
	out := make(productSet, len(products))
	for id, product := range products {
		out[id] = product
	}
	return out
}

func stockDeltas(before, after productSet, orderID, reason string, now time.Time) []events.StockEvent {
	var out []events.StockEvent
	for id, product := range after {
		delta := product.Stock - before[id].Stock
		if delta == 0 {
			continue
		}
		out = append(out, events.StockEvent{
			ProductID:  id,
			Delta:      delta,
			Stock:      product.Stock,
			Reason:     reason,
			OrderID:    orderID,
			OccurredAt: now,
		})
	}
	return out
}
