package services

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/fr4ncode/order-system/internal/domain"
)

// LineInput describes one requested product purchase within an order.
type LineInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderCommand places a new order for the requesting user.
type CreateOrderCommand struct {
	Requester domain.Requester
	Lines     []LineInput
}

// EditOrderCommand replaces the line items of a pending order.
type EditOrderCommand struct {
	Requester domain.Requester
	OrderID   string
	Lines     []LineInput
}

// ListOrdersQuery filters and pages the order listing.
type ListOrdersQuery struct {
	Requester domain.Requester
	Filter    domain.OrderFilter
	Page      domain.PageRequest
}

// OrderService drives the order lifecycle: placement, editing, the status
// state machine, and the stock bookkeeping tied to each move.
type OrderService interface {
	Create(ctx context.Context, cmd CreateOrderCommand) (domain.Order, error)
	Edit(ctx context.Context, cmd EditOrderCommand) (domain.Order, error)
	Cancel(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error)
	Confirm(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error)
	Ship(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error)
	Deliver(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error)
	GetByID(ctx context.Context, requester domain.Requester, orderID string) (domain.Order, error)
	List(ctx context.Context, query ListOrdersQuery) (domain.Page[domain.Order], error)
}

// ProductInput carries the writable product fields for create and update.
type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	Stock         int
	CategoryID    string
}

// CategoryInput carries the writable category fields for create and update.
type CategoryInput struct {
	Name        string
	Description string
}

// CatalogService manages products and categories.
type CatalogService interface {
	CreateProduct(ctx context.Context, input ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, input ProductInput) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error)

	CreateCategory(ctx context.Context, input CategoryInput) (domain.Category, error)
	UpdateCategory(ctx context.Context, id string, input CategoryInput) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	GetCategory(ctx context.Context, id string) (domain.Category, error)
	ListCategories(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Category], error)
}

// UploadImageCommand attaches a new image to a product.
type UploadImageCommand struct {
	ProductID   string
	ContentType string
	Body        io.Reader
}

// ImageService stores product images and their metadata.
type ImageService interface {
	Upload(ctx context.Context, cmd UploadImageCommand) (domain.Image, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Image, error)
	Delete(ctx context.Context, imageID string) error
}
