package repositories

import (
	"context"
	"errors"

	"github.com/fr4ncode/order-system/internal/domain"
)

// RepositoryError lets callers classify persistence failures without
// depending on the backing store.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// IsNotFound reports whether err represents a missing record.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsConflict reports whether err represents a conflicting update, including
// transactions that lost to concurrent writers.
func IsConflict(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}

// IsUnavailable reports whether err represents a transient backend outage.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}

// UnitOfWork runs fn atomically. Every repository call made with the context
// passed to fn participates in the same transaction; reads must precede
// writes inside fn.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CategoryRepository persists product categories.
type CategoryRepository interface {
	Create(ctx context.Context, category domain.Category) error
	Update(ctx context.Context, category domain.Category) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (domain.Category, error)
	GetByName(ctx context.Context, name string) (domain.Category, error)
	List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Category], error)
}

// ProductRepository persists catalog products.
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) error
	Update(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (domain.Product, error)
	GetByName(ctx context.Context, name string) (domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error)
}

// OrderRepository persists orders with their embedded line items. Update
// replaces the full document, lines included.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	Update(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[domain.Order], error)
}

// ImageRepository persists product image metadata.
type ImageRepository interface {
	Create(ctx context.Context, image domain.Image) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (domain.Image, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Image, error)
}
