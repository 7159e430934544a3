package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fr4ncode/order-system/internal/domain"
	"github.com/fr4ncode/order-system/internal/platform/auth"
	"github.com/fr4ncode/order-system/internal/platform/httpx"
)

const maxJSONBodySize = 64 * 1024

var errBodyTooLarge = errors.New("request body exceeds allowed size")

// Monetary amounts travel as decimal strings so clients never see float noise.
type productPayload struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Price         string  `json:"price"`
	DiscountPrice *string `json:"discount_price,omitempty"`
	Stock         int     `json:"stock"`
	CategoryID    string  `json:"category_id,omitempty"`
	ImageURL      string  `json:"image_url,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type categoryPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type imagePayload struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	CreatedAt   string `json:"created_at"`
}

type orderLinePayload struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type orderPayload struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Status    string             `json:"status"`
	Total     string             `json:"total"`
	Lines     []orderLinePayload `json:"lines"`
	CreatedAt string             `json:"created_at"`
	UpdatedAt string             `json:"updated_at"`
}

type pageMeta struct {
	PageIndex  int   `json:"page_index"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
}

func buildProductPayload(product domain.Product) productPayload {
	payload := productPayload{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.StringFixed(2),
		Stock:       product.Stock,
		CategoryID:  product.CategoryID,
		ImageURL:    product.ImageURL,
		CreatedAt:   formatTime(product.CreatedAt),
		UpdatedAt:   formatTime(product.UpdatedAt),
	}
	if product.DiscountPrice != nil {
		discount := product.DiscountPrice.StringFixed(2)
		payload.DiscountPrice = &discount
	}
	return payload
}

func buildCategoryPayload(category domain.Category) categoryPayload {
	return categoryPayload{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   formatTime(category.CreatedAt),
		UpdatedAt:   formatTime(category.UpdatedAt),
	}
}

func buildImagePayload(image domain.Image) imagePayload {
	return imagePayload{
		ID:          image.ID,
		ProductID:   image.ProductID,
		URL:         image.URL,
		ContentType: image.ContentType,
		SizeBytes:   image.SizeBytes,
		CreatedAt:   formatTime(image.CreatedAt),
	}
}

func buildOrderPayload(order domain.Order) orderPayload {
	lines := make([]orderLinePayload, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLinePayload{
			ID:        line.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.StringFixed(2),
			Subtotal:  line.Subtotal.StringFixed(2),
		})
	}
	return orderPayload{
		ID:        order.ID,
		UserID:    order.UserID,
		Status:    string(order.Status),
		Total:     order.Total.StringFixed(2),
		Lines:     lines,
		CreatedAt: formatTime(order.CreatedAt),
		UpdatedAt: formatTime(order.UpdatedAt),
	}
}

func buildPageMeta[T any](page domain.Page[T]) pageMeta {
	return pageMeta{
		PageIndex:  page.Index,
		PageSize:   page.Size,
		TotalItems: page.TotalItems,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimeParam(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
	}
	return ts, nil
}

func parseDecimalParam(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q", raw)
	}
	return &d, nil
}

// decodeJSONBody reads and unmarshals the request body with a hard size cap.
func decodeJSONBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBodySize+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxJSONBodySize {
		return errBodyTooLarge
	}
	if len(body) == 0 {
		return errors.New("request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

// requesterFromRequest resolves the authenticated principal or writes a 401.
func requesterFromRequest(w http.ResponseWriter, r *http.Request) (domain.Requester, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return domain.Requester{}, false
	}
	return identity.Requester(), true
}

func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBodyTooLarge) {
		httpx.WriteError(r.Context(), w, httpx.NewError("payload_too_large", err.Error(), http.StatusRequestEntityTooLarge))
		return
	}
	httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
}
