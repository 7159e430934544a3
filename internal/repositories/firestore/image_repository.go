package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"

	"github.com/fr4ncode/order-system/internal/domain"
	pfirestore "github.com/fr4ncode/order-system/internal/platform/firestore"
)

const imagesCollection = "productImages"

// ImageRepository persists product image metadata in Firestore.
type ImageRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[imageDocument]
}

// NewImageRepository constructs a Firestore backed image repository.
func NewImageRepository(provider *pfirestore.Provider) (*ImageRepository, error) {
	if provider == nil {
		return nil, errors.New("image repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[imageDocument](provider, imagesCollection, nil)
	return &ImageRepository{provider: provider, base: base}, nil
}

// Create writes a new image document.
func (r *ImageRepository) Create(ctx context.Context, image domain.Image) error {
	if r == nil || r.base == nil {
		return errors.New("image repository not initialised")
	}
	return r.base.Create(ctx, image.ID, newImageDocument(image))
}

// Delete removes the image document.
func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.base == nil {
		return errors.New("image repository not initialised")
	}
	return r.base.Delete(ctx, id)
}

// GetByID fetches an image by its identifier.
func (r *ImageRepository) GetByID(ctx context.Context, id string) (domain.Image, error) {
	if r == nil || r.base == nil {
		return domain.Image{}, errors.New("image repository not initialised")
	}
	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.Image{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// ListByProduct returns all images attached to a product, oldest first.
func (r *ImageRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Image, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("image repository not initialised")
	}

	productID = strings.TrimSpace(productID)
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("productId", "==", productID).OrderBy("createdAt", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}

	images := make([]domain.Image, len(docs))
	for i, doc := range docs {
		images[i] = doc.Data.toDomain(doc.ID)
	}
	return images, nil
}
