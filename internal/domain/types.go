package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products for browsing and filtering.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product is a catalog entry with list price, optional discount price, and
// the stock level available for new orders.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	Stock         int
	CategoryID    string
	ImageURL      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Image records an uploaded binary attached to a product.
type Image struct {
	ID          string
	ProductID   string
	URL         string
	ObjectPath  string
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}

// OrderStatus enumerates valid lifecycle states for orders.
type OrderStatus string

const (
	// OrderStatusPending indicates the order has been placed but not yet confirmed.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusConfirmed indicates the order has been accepted for fulfilment.
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	// OrderStatusShipped indicates the order has left the warehouse.
	OrderStatusShipped OrderStatus = "SHIPPED"
	// OrderStatusDelivered indicates the order reached the customer. Terminal.
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// OrderStatusCancelled indicates the order was cancelled and its stock released. Terminal.
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are permitted from the status.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Valid reports whether the status is one of the known lifecycle states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is the purchase aggregate root. Total always equals the sum of the
// line subtotals as of the last committed write.
type Order struct {
	ID        string
	UserID    string
	Status    OrderStatus
	Total     decimal.Decimal
	Lines     []OrderLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderLine snapshots one product purchase within an order. UnitPrice is the
// effective price at the moment of purchase and is never re-derived, so
// historical orders are immune to later price changes.
type OrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Requester identifies the authenticated principal performing an operation.
type Requester struct {
	ID    string
	Admin bool
}

// IsAdmin reports whether the requester carries the administrator role.
func (r Requester) IsAdmin() bool {
	return r.Admin
}

// Owns reports whether the requester owns the given order.
func (r Requester) Owns(order Order) bool {
	return r.ID != "" && r.ID == order.UserID
}

// ProductFilter holds the optional conditions for catalog queries. Conditions
// are combined conjunctively in declaration order.
type ProductFilter struct {
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	CategoryID string
}

// OrderFilter holds the optional conditions for order queries.
type OrderFilter struct {
	UserID   string
	Status   *OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// PageRequest is an offset/limit paging request validated at the boundary.
type PageRequest struct {
	Index int
	Size  int
}

// Offset returns the number of records skipped before the requested page.
func (p PageRequest) Offset() int {
	return p.Index * p.Size
}

// Page packages one page of results with the total match count.
type Page[T any] struct {
	Items      []T
	Index      int
	Size       int
	TotalItems int64
}
