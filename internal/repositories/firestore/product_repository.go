package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fr4ncode/order-system/internal/domain"
	pfirestore "github.com/fr4ncode/order-system/internal/platform/firestore"
)

const productsCollection = "products"

// prefixUpperBound closes a prefix range scan over UTF-8 ordered strings.
const prefixUpperBound = "\uf8ff"

// ProductRepository persists products in Firestore.
type ProductRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[productDocument]
}

// NewProductRepository constructs a Firestore backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[productDocument](provider, productsCollection, nil)
	return &ProductRepository{provider: provider, base: base}, nil
}

// Create writes a new product document, failing on duplicate IDs.
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) error {
	if r == nil || r.base == nil {
		return errors.New("product repository not initialised")
	}
	return r.base.Create(ctx, product.ID, newProductDocument(product))
}

// Update replaces the product document, stock and pricing included.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	if r == nil || r.base == nil {
		return errors.New("product repository not initialised")
	}
	return r.base.Set(ctx, product.ID, newProductDocument(product))
}

// Delete removes the product document.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.base == nil {
		return errors.New("product repository not initialised")
	}
	return r.base.Delete(ctx, id)
}

// GetByID fetches a product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	product, err := doc.Data.toDomain(doc.ID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s: %w", doc.ID, err)
	}
	return product, nil
}

// GetByName fetches a product by case-insensitive name match.
func (r *ProductRepository) GetByName(ctx context.Context, name string) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}

	nameLower := strings.ToLower(strings.TrimSpace(name))
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("nameLower", "==", nameLower).Limit(1)
	})
	if err != nil {
		return domain.Product{}, err
	}
	if len(docs) == 0 {
		return domain.Product{}, pfirestore.WrapError("products.getByName", status.Errorf(codes.NotFound, "product %q not found", name))
	}
	product, err := docs[0].Data.toDomain(docs[0].ID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s: %w", docs[0].ID, err)
	}
	return product, nil
}

// List returns a page of products matching every condition in the filter.
// Conditions are applied conjunctively; search matches by name prefix.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error) {
	if r == nil || r.base == nil {
		return domain.Page[domain.Product]{}, errors.New("product repository not initialised")
	}

	conditions := productConditions(filter)

	total, err := r.base.Count(ctx, conditions)
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		q = conditions(q)
		q = productOrdering(filter, q)
		return q.Offset(page.Offset()).Limit(page.Size)
	})
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}

	items := make([]domain.Product, len(docs))
	for i, doc := range docs {
		product, err := doc.Data.toDomain(doc.ID)
		if err != nil {
			return domain.Page[domain.Product]{}, fmt.Errorf("product %s: %w", doc.ID, err)
		}
		items[i] = product
	}

	return domain.Page[domain.Product]{
		Items:      items,
		Index:      page.Index,
		Size:       page.Size,
		TotalItems: total,
	}, nil
}

func productConditions(filter domain.ProductFilter) pfirestore.QueryBuilder {
	return func(q firestore.Query) firestore.Query {
		if category := strings.TrimSpace(filter.CategoryID); category != "" {
			q = q.Where("categoryId", "==", category)
		}
		if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
			q = q.Where("nameLower", ">=", search).Where("nameLower", "<=", search+prefixUpperBound)
		}
		if filter.MinPrice != nil {
			q = q.Where("effectivePriceUnits", ">=", moneyToUnits(*filter.MinPrice))
		}
		if filter.MaxPrice != nil {
			q = q.Where("effectivePriceUnits", "<=", moneyToUnits(*filter.MaxPrice))
		}
		return q
	}
}

// productOrdering keeps the order-by clauses compatible with the active range
// filters; Firestore requires range-filtered fields to be ordered first.
func productOrdering(filter domain.ProductFilter, q firestore.Query) firestore.Query {
	if strings.TrimSpace(filter.Search) != "" {
		q = q.OrderBy("nameLower", firestore.Asc)
		if filter.MinPrice != nil || filter.MaxPrice != nil {
			q = q.OrderBy("effectivePriceUnits", firestore.Asc)
		}
		return q
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		return q.OrderBy("effectivePriceUnits", firestore.Asc)
	}
	return q.OrderBy("createdAt", firestore.Desc)
}
