package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/fr4ncode/order-system/internal/domain"
	"github.com/fr4ncode/order-system/internal/services"
)

func newAdminRouter(catalog services.CatalogService, images services.ImageService) chi.Router {
	handler := NewAdminHandlers(nil, catalog, images)
	router := chi.NewRouter()
	router.Route("/admin", handler.Routes)
	return router
}

func TestCreateProductHandler(t *testing.T) {
	var captured services.ProductInput
	catalog := &stubCatalogService{
		createProductFn: func(ctx context.Context, input services.ProductInput) (domain.Product, error) {
			captured = input
			return sampleProduct(), nil
		},
	}
	router := newAdminRouter(catalog, &stubImageService{})

	body := `{"name":"Ceramic Mug","description":"Stoneware","price":"10.00","discount_price":"9.00","stock":2,"category_id":"cat_1"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d (body %s)", rr.Code, rr.Body.String())
	}
	if !captured.Price.Equal(sampleProduct().Price) {
		t.Fatalf("price = %s, want 10.00", captured.Price)
	}
	if captured.DiscountPrice == nil || !captured.DiscountPrice.Equal(*sampleProduct().DiscountPrice) {
		t.Fatalf("discount = %v", captured.DiscountPrice)
	}
	if captured.Stock != 2 || captured.CategoryID != "cat_1" {
		t.Fatalf("input = %+v", captured)
	}
}

func TestCreateProductHandlerRejectsBadPrice(t *testing.T) {
	router := newAdminRouter(&stubCatalogService{}, &stubImageService{})

	body := `{"name":"Ceramic Mug","price":"ten dollars"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestUpdateProductHandlerValidationError(t *testing.T) {
	catalog := &stubCatalogService{
		updateProductFn: func(ctx context.Context, id string, input services.ProductInput) (domain.Product, error) {
			return domain.Product{}, domain.ErrInvalidInput("discount price must not exceed the list price")
		},
	}
	router := newAdminRouter(catalog, &stubImageService{})

	body := `{"name":"Ceramic Mug","price":"5.00","discount_price":"6.00"}`
	req := httptest.NewRequest(http.MethodPut, "/admin/products/prd_1", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rr.Code, rr.Body.String())
	}
}

func TestDeleteProductHandler(t *testing.T) {
	var deletedID string
	catalog := &stubCatalogService{
		deleteProductFn: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	router := newAdminRouter(catalog, &stubImageService{})

	req := httptest.NewRequest(http.MethodDelete, "/admin/products/prd_1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	if deletedID != "prd_1" {
		t.Fatalf("deleted id = %q", deletedID)
	}
}

func TestUploadProductImageHandler(t *testing.T) {
	var captured services.UploadImageCommand
	images := &stubImageService{
		uploadFn: func(ctx context.Context, cmd services.UploadImageCommand) (domain.Image, error) {
			captured = cmd
			data, err := io.ReadAll(cmd.Body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			return domain.Image{
				ID:          "img_1",
				ProductID:   cmd.ProductID,
				URL:         "https://img.example.com/products/prd_1/img_1",
				ContentType: cmd.ContentType,
				SizeBytes:   int64(len(data)),
			}, nil
		},
	}
	router := newAdminRouter(&stubCatalogService{}, images)

	req := httptest.NewRequest(http.MethodPost, "/admin/products/prd_1/images", strings.NewReader("png-bytes"))
	req.Header.Set("Content-Type", "image/png")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d (body %s)", rr.Code, rr.Body.String())
	}
	if captured.ProductID != "prd_1" || captured.ContentType != "image/png" {
		t.Fatalf("command = %+v", captured)
	}

	var payload imagePayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.SizeBytes != int64(len("png-bytes")) {
		t.Fatalf("size = %d", payload.SizeBytes)
	}
}

func TestUploadProductImageHandlerRequiresContentType(t *testing.T) {
	router := newAdminRouter(&stubCatalogService{}, &stubImageService{})

	req := httptest.NewRequest(http.MethodPost, "/admin/products/prd_1/images", strings.NewReader("x"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestDeleteImageHandler(t *testing.T) {
	var deletedID string
	images := &stubImageService{
		deleteFn: func(ctx context.Context, imageID string) error {
			deletedID = imageID
			return nil
		},
	}
	router := newAdminRouter(&stubCatalogService{}, images)

	req := httptest.NewRequest(http.MethodDelete, "/admin/images/img_1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	if deletedID != "img_1" {
		t.Fatalf("deleted id = %q", deletedID)
	}
}

func TestCategoryHandlers(t *testing.T) {
	var captured services.CategoryInput
	catalog := &stubCatalogService{
		createCategoryFn: func(ctx context.Context, input services.CategoryInput) (domain.Category, error) {
			captured = input
			return domain.Category{ID: "cat_1", Name: input.Name}, nil
		},
		deleteCategoryFn: func(ctx context.Context, id string) error {
			return domain.ErrNotFound("category", id)
		},
	}
	router := newAdminRouter(catalog, &stubImageService{})

	req := httptest.NewRequest(http.MethodPost, "/admin/categories", strings.NewReader(`{"name":"Kitchen","description":"Things for the kitchen"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d (body %s)", rr.Code, rr.Body.String())
	}
	if captured.Name != "Kitchen" {
		t.Fatalf("input = %+v", captured)
	}

	req = httptest.NewRequest(http.MethodDelete, "/admin/categories/cat_404", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("delete status = %d, want 404", rr.Code)
	}
}
