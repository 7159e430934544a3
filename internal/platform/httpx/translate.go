package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/fr4ncode/order-system/internal/domain"
)

var kindStatus = map[domain.ErrorKind]int{
	domain.ErrorKindNotFound:               http.StatusNotFound,
	domain.ErrorKindForbidden:              http.StatusForbidden,
	domain.ErrorKindInvalidTransition:      http.StatusConflict,
	domain.ErrorKindInsufficientStock:      http.StatusConflict,
	domain.ErrorKindConcurrentModification: http.StatusConflict,
	domain.ErrorKindInvalidQuantity:        http.StatusBadRequest,
	domain.ErrorKindEmptyOrder:             http.StatusBadRequest,
	domain.ErrorKindDuplicateLineItem:      http.StatusBadRequest,
	domain.ErrorKindInvalidDateRange:       http.StatusBadRequest,
	domain.ErrorKindInvalidPagination:      http.StatusBadRequest,
	domain.ErrorKindInvalidInput:           http.StatusBadRequest,
	domain.ErrorKindInternal:               http.StatusInternalServerError,
}

// StatusForKind maps a domain error kind to its HTTP status code.
func StatusForKind(kind domain.ErrorKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteDomainError translates a domain error into the JSON error envelope.
// Unknown errors are reported as internal without leaking their message.
func WriteDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := StatusForKind(kind)

	message := "internal server error"
	var details map[string]any
	if kind != domain.ErrorKindInternal {
		message = err.Error()
		var derr *domain.Error
		if errors.As(err, &derr) {
			message = derr.Message
			details = derr.Details
		}
	}

	WriteError(ctx, w, NewError(string(kind), message, status).WithDetails(details))
}
