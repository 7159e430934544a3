package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fr4ncode/order-system/internal/domain"
	"github.com/fr4ncode/order-system/internal/platform/httpx"
	"github.com/fr4ncode/order-system/internal/platform/pagination"
	"github.com/fr4ncode/order-system/internal/services"
)

type productListResponse struct {
	Items []productPayload `json:"items"`
	Page  pageMeta         `json:"page"`
}

type categoryListResponse struct {
	Items []categoryPayload `json:"items"`
	Page  pageMeta          `json:"page"`
}

type imageListResponse struct {
	Items []imagePayload `json:"items"`
}

// CatalogHandlers exposes the public, unauthenticated catalog endpoints.
type CatalogHandlers struct {
	catalog services.CatalogService
	images  services.ImageService
}

// NewCatalogHandlers constructs a new CatalogHandlers instance.
func NewCatalogHandlers(catalog services.CatalogService, images services.ImageService) *CatalogHandlers {
	return &CatalogHandlers{
		catalog: catalog,
		images:  images,
	}
}

// Routes registers the /catalog endpoints.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)
	r.Get("/products/{productID}/images", h.listProductImages)
	r.Get("/categories", h.listCategories)
	r.Get("/categories/{categoryID}", h.getCategory)
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := pagination.FromRequest(r)
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}

	query := r.URL.Query()
	filter := domain.ProductFilter{
		Search:     strings.TrimSpace(query.Get("search")),
		CategoryID: strings.TrimSpace(query.Get("categoryId")),
	}

	filter.MinPrice, err = parseDecimalParam(query.Get("minPrice"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "minPrice must be a decimal number", http.StatusBadRequest))
		return
	}
	filter.MaxPrice, err = parseDecimalParam(query.Get("maxPrice"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "maxPrice must be a decimal number", http.StatusBadRequest))
		return
	}

	result, err := h.catalog.ListProducts(ctx, filter, page)
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}

	items := make([]productPayload, 0, len(result.Items))
	for _, product := range result.Items {
		items = append(items, buildProductPayload(product))
	}
	httpx.WriteJSON(w, http.StatusOK, productListResponse{
		Items: items,
		Page:  buildPageMeta(result),
	})
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildProductPayload(product))
}

func (h *CatalogHandlers) listProductImages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	images, err := h.images.ListByProduct(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}

	items := make([]imagePayload, 0, len(images))
	for _, image := range images {
		items = append(items, buildImagePayload(image))
	}
	httpx.WriteJSON(w, http.StatusOK, imageListResponse{Items: items})
}

func (h *CatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := pagination.FromRequest(r)
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}

	result, err := h.catalog.ListCategories(ctx, page)
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}

	items := make([]categoryPayload, 0, len(result.Items))
	for _, category := range result.Items {
		items = append(items, buildCategoryPayload(category))
	}
	httpx.WriteJSON(w, http.StatusOK, categoryListResponse{
		Items: items,
		Page:  buildPageMeta(result),
	})
}

func (h *CatalogHandlers) getCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category, err := h.catalog.GetCategory(ctx, chi.URLParam(r, "categoryID"))
	if err != nil {
		httpx.WriteDomainError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildCategoryPayload(category))
}
