package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/fr4ncode/order-system/internal/domain"
	"github.com/fr4ncode/order-system/internal/platform/requestctx"
	"github.com/fr4ncode/order-system/internal/platform/storage"
	"github.com/fr4ncode/order-system/internal/repositories"
)

const imageIDPrefix = "img_"

// ObjectStore abstracts the bucket operations the image service needs.
type ObjectStore interface {
	UploadProductImage(ctx context.Context, productID, imageID, contentType string, body io.Reader) (storage.UploadResult, error)
	DeleteObject(ctx context.Context, objectPath string) error
}

// ImageServiceDeps bundles collaborators required to construct the image service.
type ImageServiceDeps struct {
	Products    repositories.ProductRepository
	Images      repositories.ImageRepository
	Store       ObjectStore
	Clock       func() time.Time
	IDGenerator func() string
}

type imageService struct {
	products repositories.ProductRepository
	images   repositories.ImageRepository
	store    ObjectStore
	clock    func() time.Time
	newID    func() string
}

// NewImageService wires dependencies into a concrete ImageService implementation.
func NewImageService(deps ImageServiceDeps) (ImageService, error) {
	if deps.Products == nil {
		return nil, errors.New("image service: product repository is required")
	}
	if deps.Images == nil {
		return nil, errors.New("image service: image repository is required")
	}
	if deps.Store == nil {
		return nil, errors.New("image service: object store is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	return &imageService{
		products: deps.Products,
		images:   deps.Images,
		store:    deps.Store,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: idGen,
	}, nil
}

func (s *imageService) Upload(ctx context.Context, cmd UploadImageCommand) (domain.Image, error) {
	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return domain.Image{}, domain.ErrInvalidInput("product id is required")
	}
	if cmd.Body == nil {
		return domain.Image{}, domain.ErrInvalidInput("image body is required")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Image{}, domain.ErrNotFound("product", productID)
		}
		return domain.Image{}, mapCatalogError(err)
	}

	imageID := imageIDPrefix + s.newID()
	uploaded, err := s.store.UploadProductImage(ctx, productID, imageID, cmd.ContentType, cmd.Body)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrContentTypeDenied):
			return domain.Image{}, domain.ErrInvalidInput("unsupported image content type %q", cmd.ContentType)
		case errors.Is(err, storage.ErrObjectTooLarge):
			return domain.Image{}, domain.ErrInvalidInput("image exceeds the maximum allowed size")
		}
		return domain.Image{}, domain.WrapError(domain.ErrorKindInternal, err, "image upload failed")
	}

	image := domain.Image{
		ID:          imageID,
		ProductID:   productID,
		URL:         uploaded.PublicURL,
		ObjectPath:  uploaded.ObjectPath,
		ContentType: uploaded.ContentType,
		SizeBytes:   uploaded.SizeBytes,
		CreatedAt:   s.clock(),
	}
	if err := s.images.Create(ctx, image); err != nil {
		// The record is authoritative; remove the orphaned object on failure.
		if cleanupErr := s.store.DeleteObject(ctx, uploaded.ObjectPath); cleanupErr != nil {
			requestctx.Logger(ctx).Warn("orphaned image object cleanup failed",
				zap.String("object_path", uploaded.ObjectPath),
				zap.Error(cleanupErr),
			)
		}
		return domain.Image{}, mapCatalogError(err)
	}

	product.ImageURL = image.URL
	product.UpdatedAt = s.clock()
	if err := s.products.Update(ctx, product); err != nil {
		return domain.Image{}, mapCatalogError(err)
	}

	return image, nil
}

func (s *imageService) ListByProduct(ctx context.Context, productID string) ([]domain.Image, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.ErrInvalidInput("product id is required")
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, domain.ErrNotFound("product", productID)
		}
		return nil, mapCatalogError(err)
	}

	images, err := s.images.ListByProduct(ctx, productID)
	if err != nil {
		return nil, mapCatalogError(err)
	}
	return images, nil
}

func (s *imageService) Delete(ctx context.Context, imageID string) error {
	imageID = strings.TrimSpace(imageID)
	if imageID == "" {
		return domain.ErrInvalidInput("image id is required")
	}

	image, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.ErrNotFound("image", imageID)
		}
		return mapCatalogError(err)
	}

	if err := s.images.Delete(ctx, imageID); err != nil {
		return mapCatalogError(err)
	}
	if err := s.store.DeleteObject(ctx, image.ObjectPath); err != nil {
		requestctx.Logger(ctx).Warn("image object delete failed",
			zap.String("object_path", image.ObjectPath),
			zap.Error(err),
		)
	}

	product, err := s.products.GetByID(ctx, image.ProductID)
	if err == nil && product.ImageURL == image.URL {
		product.ImageURL = ""
		product.UpdatedAt = s.clock()
		if err := s.products.Update(ctx, product); err != nil {
			return mapCatalogError(err)
		}
	}
	return nil
}
