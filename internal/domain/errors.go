package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures with a stable code so the transport
// boundary can translate them without inspecting message text.
type ErrorKind string

const (
	ErrorKindNotFound               ErrorKind = "not_found"
	ErrorKindForbidden              ErrorKind = "forbidden"
	ErrorKindInvalidTransition      ErrorKind = "invalid_transition"
	ErrorKindInsufficientStock      ErrorKind = "insufficient_stock"
	ErrorKindInvalidQuantity        ErrorKind = "invalid_quantity"
	ErrorKindEmptyOrder             ErrorKind = "empty_order"
	ErrorKindDuplicateLineItem      ErrorKind = "duplicate_line_item"
	ErrorKindInvalidDateRange       ErrorKind = "invalid_date_range"
	ErrorKindInvalidPagination      ErrorKind = "invalid_pagination"
	ErrorKindConcurrentModification ErrorKind = "concurrent_modification"
	ErrorKindInvalidInput           ErrorKind = "invalid_input"
	ErrorKindInternal               ErrorKind = "internal"
)

// Error is the structured domain error surfaced to the boundary. Details carry
// the offending values so user-facing text is a pure mapping from Kind.
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return string(e.Kind)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches errors of the same kind so callers can compare against
// constructor sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok || e == nil || other == nil {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf extracts the error kind, defaulting to ErrorKindInternal for
// unclassified failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return ErrorKindInternal
}

// NewError constructs a domain error of the given kind.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError annotates an underlying failure with a domain kind.
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// WithDetails attaches structured fields describing the failure.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e == nil || len(details) == 0 {
		return e
	}
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// ErrNotFound builds the not-found error for a named entity.
func ErrNotFound(entity, id string) *Error {
	return NewError(ErrorKindNotFound, "%s %s not found", entity, id).
		WithDetails(map[string]any{"entity": entity, "id": id})
}

// ErrForbidden builds the ownership/role violation error.
func ErrForbidden(action string) *Error {
	return NewError(ErrorKindForbidden, "not allowed to %s", action)
}

// ErrInvalidTransition names the current and requested states of an illegal
// lifecycle move.
func ErrInvalidTransition(current, requested OrderStatus) *Error {
	return NewError(ErrorKindInvalidTransition, "cannot transition order from %s to %s", current, requested).
		WithDetails(map[string]any{"current": string(current), "requested": string(requested)})
}

// ErrInsufficientStock names the product whose availability was exceeded.
func ErrInsufficientStock(productName string, requested, available int) *Error {
	return NewError(ErrorKindInsufficientStock, "insufficient stock for product %q: requested %d, available %d", productName, requested, available).
		WithDetails(map[string]any{"product": productName, "requested": requested, "available": available})
}

// ErrInvalidQuantity rejects non-positive line quantities.
func ErrInvalidQuantity(quantity int) *Error {
	return NewError(ErrorKindInvalidQuantity, "quantity must be a positive integer, got %d", quantity).
		WithDetails(map[string]any{"quantity": quantity})
}

// ErrEmptyOrder rejects orders created or edited to zero line items.
func ErrEmptyOrder() *Error {
	return NewError(ErrorKindEmptyOrder, "order must contain at least one line item")
}

// ErrDuplicateLineItem rejects multiple lines referencing the same product.
func ErrDuplicateLineItem(productID string) *Error {
	return NewError(ErrorKindDuplicateLineItem, "product %s appears in more than one line item", productID).
		WithDetails(map[string]any{"product_id": productID})
}

// ErrInvalidDateRange rejects filters whose lower bound exceeds the upper bound.
func ErrInvalidDateRange() *Error {
	return NewError(ErrorKindInvalidDateRange, "dateFrom must not be after dateTo")
}

// ErrInvalidPagination rejects out-of-bounds page parameters.
func ErrInvalidPagination(reason string) *Error {
	return NewError(ErrorKindInvalidPagination, "invalid pagination: %s", reason)
}

// ErrConcurrentModification reports that a transactional update kept losing to
// concurrent writers after retries were exhausted.
func ErrConcurrentModification(cause error) *Error {
	return WrapError(ErrorKindConcurrentModification, cause, "order could not be updated due to concurrent changes, retry the request")
}

// ErrInvalidInput reports a malformed request field.
func ErrInvalidInput(format string, args ...any) *Error {
	return NewError(ErrorKindInvalidInput, format, args...)
}
