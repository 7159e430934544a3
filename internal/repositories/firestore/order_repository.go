package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"

	"github.com/fr4ncode/order-system/internal/domain"
	pfirestore "github.com/fr4ncode/order-system/internal/platform/firestore"
)

const ordersCollection = "orders"

// OrderRepository persists orders in Firestore. Line items are embedded in
// the order document so a single Set replaces them wholesale.
type OrderRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[orderDocument]
}

// NewOrderRepository constructs a Firestore backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[orderDocument](provider, ordersCollection, nil)
	return &OrderRepository{provider: provider, base: base}, nil
}

// Create writes a new order document, failing on duplicate IDs.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	return r.base.Create(ctx, order.ID, newOrderDocument(order))
}

// Update replaces the order document, lines included.
func (r *OrderRepository) Update(ctx context.Context, order domain.Order) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	return r.base.Set(ctx, order.ID, newOrderDocument(order))
}

// GetByID fetches an order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (domain.Order, error) {
	if r == nil || r.base == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	order, err := doc.Data.toDomain(doc.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: %w", doc.ID, err)
	}
	return order, nil
}

// List returns a page of orders matching every condition in the filter,
// newest first.
func (r *OrderRepository) List(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[domain.Order], error) {
	if r == nil || r.base == nil {
		return domain.Page[domain.Order]{}, errors.New("order repository not initialised")
	}

	conditions := orderConditions(filter)

	total, err := r.base.Count(ctx, conditions)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		q = conditions(q)
		return q.OrderBy("createdAt", firestore.Desc).Offset(page.Offset()).Limit(page.Size)
	})
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	items := make([]domain.Order, len(docs))
	for i, doc := range docs {
		order, err := doc.Data.toDomain(doc.ID)
		if err != nil {
			return domain.Page[domain.Order]{}, fmt.Errorf("order %s: %w", doc.ID, err)
		}
		items[i] = order
	}

	return domain.Page[domain.Order]{
		Items:      items,
		Index:      page.Index,
		Size:       page.Size,
		TotalItems: total,
	}, nil
}

func orderConditions(filter domain.OrderFilter) pfirestore.QueryBuilder {
	return func(q firestore.Query) firestore.Query {
		if user := strings.TrimSpace(filter.UserID); user != "" {
			q = q.Where("userId", "==", user)
		}
		if filter.Status != nil {
			q = q.Where("status", "==", string(*filter.Status))
		}
		if filter.DateFrom != nil {
			q = q.Where("createdAt", ">=", filter.DateFrom.UTC())
		}
		if filter.DateTo != nil {
			q = q.Where("createdAt", "<=", filter.DateTo.UTC())
		}
		return q
	}
}
