package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fr4ncode/order-system/internal/domain"
	"github.com/fr4ncode/order-system/internal/repositories"
)

const (
	productIDPrefix  = "prd_"
	categoryIDPrefix = "cat_"
)

// CatalogServiceDeps bundles collaborators required to construct the catalog service.
type CatalogServiceDeps struct {
	Products    repositories.ProductRepository
	Categories  repositories.CategoryRepository
	UnitOfWork  repositories.UnitOfWork
	Clock       func() time.Time
	IDGenerator func() string
}

type catalogService struct {
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	unitOfWork repositories.UnitOfWork
	clock      func() time.Time
	newID      func() string
}

// NewCatalogService wires dependencies into a concrete CatalogService implementation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}
	if deps.Categories == nil {
		return nil, errors.New("catalog service: category repository is required")
	}
	if deps.UnitOfWork == nil {
		return nil, errors.New("catalog service: unit of work is required")
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

	return &catalogService{
		products:   deps.Products,
		categories: deps.Categories,
		unitOfWork: deps.UnitOfWork,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: idGen,
	}, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (domain.Product, error) {
	normalised, err := s.validateProductInput(ctx, input, "")
	if err != nil {
		return domain.Product{}, err
	}

	now := s.clock()
	product := domain.Product{
		ID:            productIDPrefix + s.newID(),
		Name:          normalised.Name,
		Description:   normalised.Description,
		Price:         normalised.Price,
		DiscountPrice: normalised.DiscountPrice,
		Stock:         normalised.Stock,
		CategoryID:    normalised.CategoryID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return domain.Product{}, mapCatalogError(err)
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id string, input ProductInput) (domain.Product, error) {
	var updated domain.Product

	// Stock is writable here, so the read-modify-write must not interleave
	// with an order reserving against the same product.
	err := s.unitOfWork.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.GetProduct(ctx, id)
		if err != nil {
			return err
		}

		normalised, err := s.validateProductInput(ctx, input, existing.ID)
		if err != nil {
			return err
		}

		existing.Name = normalised.Name
		existing.Description = normalised.Description
		existing.Price = normalised.Price
		existing.DiscountPrice = normalised.DiscountPrice
		existing.Stock = normalised.Stock
		existing.CategoryID = normalised.CategoryID
		existing.UpdatedAt = s.clock()

		if err := s.products.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return domain.Product{}, mapCatalogError(err)
	}
	return updated, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return mapCatalogError(err)
	}
	return nil
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, domain.ErrInvalidInput("product id is required")
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Product{}, domain.ErrNotFound("product", id)
		}
		return domain.Product{}, mapCatalogError(err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return domain.Page[domain.Product]{}, domain.ErrInvalidInput("minPrice must not exceed maxPrice")
	}

	result, err := s.products.List(ctx, filter, page)
	if err != nil {
		return domain.Page[domain.Product]{}, mapCatalogError(err)
	}
	return result, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, input CategoryInput) (domain.Category, error) {
	name, err := s.validateCategoryName(ctx, input.Name, "")
	if err != nil {
		return domain.Category{}, err
	}

	now := s.clock()
	category := domain.Category{
		ID:          categoryIDPrefix + s.newID(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return domain.Category{}, mapCatalogError(err)
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id string, input CategoryInput) (domain.Category, error) {
	existing, err := s.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}

	name, err := s.validateCategoryName(ctx, input.Name, existing.ID)
	if err != nil {
		return domain.Category{}, err
	}

	existing.Name = name
	existing.Description = strings.TrimSpace(input.Description)
	existing.UpdatedAt = s.clock()

	if err := s.categories.Update(ctx, existing); err != nil {
		return domain.Category{}, mapCatalogError(err)
	}
	return existing, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return mapCatalogError(err)
	}
	return nil
}

func (s *catalogService) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Category{}, domain.ErrInvalidInput("category id is required")
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Category{}, domain.ErrNotFound("category", id)
		}
		return domain.Category{}, mapCatalogError(err)
	}
	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Category], error) {
	result, err := s.categories.List(ctx, page)
	if err != nil {
		return domain.Page[domain.Category]{}, mapCatalogError(err)
	}
	return result, nil
}

// validateProductInput normalises and checks the writable product fields.
// selfID excludes the product being updated from the name uniqueness check.
func (s *catalogService) validateProductInput(ctx context.Context, input ProductInput, selfID string) (ProductInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.CategoryID = strings.TrimSpace(input.CategoryID)

	if input.Name == "" {
		return ProductInput{}, domain.ErrInvalidInput("product name is required")
	}
	if input.Price.IsNegative() {
		return ProductInput{}, domain.ErrInvalidInput("product price must not be negative")
	}
	if input.DiscountPrice != nil {
		if input.DiscountPrice.IsNegative() {
			return ProductInput{}, domain.ErrInvalidInput("discount price must not be negative")
		}
		if input.DiscountPrice.GreaterThan(input.Price) {
			return ProductInput{}, domain.ErrInvalidInput("discount price must not exceed the list price")
		}
	}
	if input.Stock < 0 {
		return ProductInput{}, domain.ErrInvalidInput("product stock must not be negative")
	}

	other, err := s.products.GetByName(ctx, input.Name)
	if err == nil && other.ID != selfID {
		return ProductInput{}, domain.ErrInvalidInput("product name %q is already in use", input.Name)
	}
	if err != nil && !repositories.IsNotFound(err) {
		return ProductInput{}, mapCatalogError(err)
	}

	if input.CategoryID != "" {
		if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
			if repositories.IsNotFound(err) {
				return ProductInput{}, domain.ErrNotFound("category", input.CategoryID)
			}
			return ProductInput{}, mapCatalogError(err)
		}
	}

	return input, nil
}

func (s *catalogService) validateCategoryName(ctx context.Context, name, selfID string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrInvalidInput("category name is required")
	}

	other, err := s.categories.GetByName(ctx, name)
	if err == nil && other.ID != selfID {
		return "", domain.ErrInvalidInput("category name %q is already in use", name)
	}
	if err != nil && !repositories.IsNotFound(err) {
		return "", mapCatalogError(err)
	}
	return name, nil
}

func mapCatalogError(err error) error {
	if err == nil {
		return nil
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr
	}
	if repositories.IsConflict(err) {
		return domain.ErrConcurrentModification(err)
	}
	return domain.WrapError(domain.ErrorKindInternal, err, "catalog operation failed")
}
