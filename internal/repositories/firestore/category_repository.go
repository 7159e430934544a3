package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fr4ncode/order-system/internal/domain"
	pfirestore "github.com/fr4ncode/order-system/internal/platform/firestore"
)

const categoriesCollection = "categories"

// CategoryRepository persists categories in Firestore.
type CategoryRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[categoryDocument]
}

// NewCategoryRepository constructs a Firestore backed category repository.
func NewCategoryRepository(provider *pfirestore.Provider) (*CategoryRepository, error) {
	if provider == nil {
		return nil, errors.New("category repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[categoryDocument](provider, categoriesCollection, nil)
	return &CategoryRepository{provider: provider, base: base}, nil
}

// Create writes a new category document, failing on duplicate IDs.
func (r *CategoryRepository) Create(ctx context.Context, category domain.Category) error {
	if r == nil || r.base == nil {
		return errors.New("category repository not initialised")
	}
	return r.base.Create(ctx, category.ID, newCategoryDocument(category))
}

// Update replaces the category document.
func (r *CategoryRepository) Update(ctx context.Context, category domain.Category) error {
	if r == nil || r.base == nil {
		return errors.New("category repository not initialised")
	}
	return r.base.Set(ctx, category.ID, newCategoryDocument(category))
}

// Delete removes the category document.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.base == nil {
		return errors.New("category repository not initialised")
	}
	return r.base.Delete(ctx, id)
}

// GetByID fetches a category by its identifier.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (domain.Category, error) {
	if r == nil || r.base == nil {
		return domain.Category{}, errors.New("category repository not initialised")
	}
	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// GetByName fetches a category by case-insensitive name match.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (domain.Category, error) {
	if r == nil || r.base == nil {
		return domain.Category{}, errors.New("category repository not initialised")
	}

	nameLower := strings.ToLower(strings.TrimSpace(name))
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("nameLower", "==", nameLower).Limit(1)
	})
	if err != nil {
		return domain.Category{}, err
	}
	if len(docs) == 0 {
		return domain.Category{}, pfirestore.WrapError("categories.getByName", status.Errorf(codes.NotFound, "category %q not found", name))
	}
	return docs[0].Data.toDomain(docs[0].ID), nil
}

// List returns a page of categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Category], error) {
	if r == nil || r.base == nil {
		return domain.Page[domain.Category]{}, errors.New("category repository not initialised")
	}

	total, err := r.base.Count(ctx, nil)
	if err != nil {
		return domain.Page[domain.Category]{}, err
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("nameLower", firestore.Asc).Offset(page.Offset()).Limit(page.Size)
	})
	if err != nil {
		return domain.Page[domain.Category]{}, err
	}

	items := make([]domain.Category, len(docs))
	for i, doc := range docs {
		items[i] = doc.Data.toDomain(doc.ID)
	}
	return domain.Page[domain.Category]{
		Items:      items,
		Index:      page.Index,
		Size:       page.Size,
		TotalItems: total,
	}, nil
}
