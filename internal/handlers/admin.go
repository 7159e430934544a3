package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fr4ncode/order-system/internal/platform/auth"
	"github.com/fr4ncode/order-system/internal/platform/httpx"
	"github.com/fr4ncode/order-system/internal/services"
)

const maxImageUploadBytes = 10 << 20

type productRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         string  `json:"price"`
	DiscountPrice *string `json:"discount_price"`
	Stock         int     `json:"stock"`
	CategoryID    string  `json:"category_id"`
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AdminHandlers exposes the catalog management endpoints restricted to administrators.
type AdminHandlers struct {
	authn   *auth.Authenticator
	catalog services.CatalogService
	images  services.ImageService
}

// NewAdminHandlers constructs a new AdminHandlers instance.
func NewAdminHandlers(authn *auth.Authenticator, catalog services.CatalogService, images services.ImageService) *AdminHandlers {
	return &AdminHandlers{
		authn:   authn,
		catalog: catalog,
		images:  images,
	}
}

// Routes registers the /admin endpoints.
func (h *AdminHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth(auth.RoleAdmin))
	}

	r.Post("/products", h.createProduct)
	r.Put("/products/{productID}", h.updateProduct)
	r.Delete("/products/{productID}", h.deleteProduct)
	r.Post("/products/{productID}/images", h.uploadProductImage)
	r.Delete("/images/{imageID}", h.deleteImage)

	r.Post("/categories", h.createCategory)
	r.Put("/categories/{categoryID}", h.updateCategory)
	r.Delete("/categories/{categoryID}", h.deleteCategory)
}

func (h *AdminHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req productRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	input, err := toProductInput(req)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	product, err := h.catalog.CreateProduct(ctx, input)
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, buildProductPayload(product))
}

func (h *AdminHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req productRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	input, err := toProductInput(req)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	product, err := h.catalog.UpdateProduct(ctx, chi.URLParam(r, "productID"), input)
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildProductPayload(product))
}

func (h *AdminHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.catalog.DeleteProduct(ctx, chi.URLParam(r, "productID")); err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) uploadProductImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	contentType := strings.TrimSpace(r.Header.Get("Content-Type"))
	if contentType == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "Content-Type header is required", http.StatusBadRequest))
		return
	}

	image, err := h.images.Upload(ctx, services.UploadImageCommand{
		ProductID:   chi.URLParam(r, "productID"),
		ContentType: contentType,
		Body:        http.MaxBytesReader(w, r.Body, maxImageUploadBytes),
	})
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, buildImagePayload(image))
}

func (h *AdminHandlers) deleteImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.images.Delete(ctx, chi.URLParam(r, "imageID")); err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) createCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req categoryRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	category, err := h.catalog.CreateCategory(ctx, services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, buildCategoryPayload(category))
}

func (h *AdminHandlers) updateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req categoryRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	category, err := h.catalog.UpdateCategory(ctx, chi.URLParam(r, "categoryID"), services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildCategoryPayload(category))
}

func (h *AdminHandlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.catalog.DeleteCategory(ctx, chi.URLParam(r, "categoryID")); err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toProductInput(req productRequest) (services.ProductInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		return services.ProductInput{}, errInvalidDecimalField("price")
	}

	input := services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}

	if req.DiscountPrice != nil && strings.TrimSpace(*req.DiscountPrice) != "" {
		discount, err := decimal.NewFromString(strings.TrimSpace(*req.DiscountPrice))
		if err != nil {
			return services.ProductInput{}, errInvalidDecimalField("discount_price")
		}
		input.DiscountPrice = &discount
	}

	return input, nil
}

type decimalFieldError string

func errInvalidDecimalField(field string) error {
	return decimalFieldError(field)
}

func (e decimalFieldError) Error() string {
	return string(e) + " must be a decimal string"
}
