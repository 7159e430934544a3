package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fr4ncode/order-system/internal/domain"
	"github.com/fr4ncode/order-system/internal/platform/storage"
)

type stubImageRepo struct {
	images     map[string]domain.Image
	failCreate bool
}

func newStubImageRepo() *stubImageRepo {
	return &stubImageRepo{images: map[string]domain.Image{}}
}

func (r *stubImageRepo) Create(ctx context.Context, image domain.Image) error {
	if r.failCreate {
		return repoErr{unavailable: true}
	}
	r.images[image.ID] = image
	return nil
}

func (r *stubImageRepo) Delete(ctx context.Context, id string) error {
	delete(r.images, id)
	return nil
}

func (r *stubImageRepo) GetByID(ctx context.Context, id string) (domain.Image, error) {
	image, ok := r.images[id]
	if !ok {
		return domain.Image{}, repoErr{notFound: true}
	}
	return image, nil
}

func (r *stubImageRepo) ListByProduct(ctx context.Context, productID string) ([]domain.Image, error) {
	var images []domain.Image
	for _, image := range r.images {
		if image.ProductID == productID {
			images = append(images, image)
		}
	}
	return images, nil
}

type stubObjectStore struct {
	objects   map[string]string
	uploadErr error
}

func newStubObjectStore() *stubObjectStore {
	return &stubObjectStore{objects: map[string]string{}}
}

func (s *stubObjectStore) UploadProductImage(ctx context.Context, productID, imageID, contentType string, body io.Reader) (storage.UploadResult, error) {
	if s.uploadErr != nil {
		return storage.UploadResult{}, s.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return storage.UploadResult{}, err
	}
	objectPath := "products/" + productID + "/" + imageID
	s.objects[objectPath] = string(data)
	return storage.UploadResult{
		ObjectPath:  objectPath,
		PublicURL:   "https://img.example.com/" + objectPath,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
	}, nil
}

func (s *stubObjectStore) DeleteObject(ctx context.Context, objectPath string) error {
	delete(s.objects, objectPath)
	return nil
}

func newTestImageService(t *testing.T, products *stubProductRepo, images *stubImageRepo, store *stubObjectStore) ImageService {
	t.Helper()
	svc, err := NewImageService(ImageServiceDeps{
		Products:    products,
		Images:      images,
		Store:       store,
		Clock:       fixedClock,
		IDGenerator: sequentialIDs(),
	})
	if err != nil {
		t.Fatalf("new image service: %v", err)
	}
	return svc
}

func TestUploadImageSetsProductURL(t *testing.T) {
	products := newStubProductRepo(domain.Product{ID: "prd_1", Name: "Ceramic Mug", Price: dec(t, "10.00")})
	images := newStubImageRepo()
	store := newStubObjectStore()
	svc := newTestImageService(t, products, images, store)

	image, err := svc.Upload(context.Background(), UploadImageCommand{
		ProductID:   "prd_1",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if !strings.HasPrefix(image.ID, "img_") {
		t.Fatalf("id = %q, want img_ prefix", image.ID)
	}
	if image.SizeBytes != int64(len("png-bytes")) {
		t.Fatalf("size = %d", image.SizeBytes)
	}
	if _, ok := store.objects[image.ObjectPath]; !ok {
		t.Fatal("object was not stored")
	}
	if got := products.products["prd_1"].ImageURL; got != image.URL {
		t.Fatalf("product image url = %q, want %q", got, image.URL)
	}
}

func TestUploadImageUnknownProduct(t *testing.T) {
	svc := newTestImageService(t, newStubProductRepo(), newStubImageRepo(), newStubObjectStore())

	_, err := svc.Upload(context.Background(), UploadImageCommand{
		ProductID:   "prd_404",
		ContentType: "image/png",
		Body:        strings.NewReader("x"),
	})
	if domain.KindOf(err) != domain.ErrorKindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUploadImageDeniedContentType(t *testing.T) {
	products := newStubProductRepo(domain.Product{ID: "prd_1", Name: "Ceramic Mug", Price: dec(t, "10.00")})
	store := newStubObjectStore()
	store.uploadErr = storage.ErrContentTypeDenied
	svc := newTestImageService(t, products, newStubImageRepo(), store)

	_, err := svc.Upload(context.Background(), UploadImageCommand{
		ProductID:   "prd_1",
		ContentType: "application/pdf",
		Body:        strings.NewReader("x"),
	})
	if domain.KindOf(err) != domain.ErrorKindInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUploadImageCleansUpOrphanOnRecordFailure(t *testing.T) {
	products := newStubProductRepo(domain.Product{ID: "prd_1", Name: "Ceramic Mug", Price: dec(t, "10.00")})
	images := newStubImageRepo()
	images.failCreate = true
	store := newStubObjectStore()
	svc := newTestImageService(t, products, images, store)

	_, err := svc.Upload(context.Background(), UploadImageCommand{
		ProductID:   "prd_1",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.objects) != 0 {
		t.Fatalf("orphaned object left behind: %v", store.objects)
	}
}

func TestDeleteImageClearsMatchingProductURL(t *testing.T) {
	products := newStubProductRepo(domain.Product{ID: "prd_1", Name: "Ceramic Mug", Price: dec(t, "10.00")})
	images := newStubImageRepo()
	store := newStubObjectStore()
	svc := newTestImageService(t, products, images, store)
	ctx := context.Background()

	image, err := svc.Upload(ctx, UploadImageCommand{
		ProductID:   "prd_1",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(ctx, image.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := images.images[image.ID]; ok {
		t.Fatal("image record still present")
	}
	if _, ok := store.objects[image.ObjectPath]; ok {
		t.Fatal("object still present")
	}
	if got := products.products["prd_1"].ImageURL; got != "" {
		t.Fatalf("product image url = %q, want cleared", got)
	}
}
