package firestore

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fr4ncode/order-system/internal/domain"
)

// Money values are stored as decimal strings to keep totals exact. Products
// additionally carry the effective price in minor units so range filters and
// ordering stay server side.

func moneyToString(d decimal.Decimal) string {
	return d.String()
}

func moneyFromString(raw, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode %s %q: %w", field, raw, err)
	}
	return d, nil
}

func moneyToUnits(d decimal.Decimal) int64 {
	return d.Shift(2).IntPart()
}

type categoryDocument struct {
	Name        string    `firestore:"name"`
	NameLower   string    `firestore:"nameLower"`
	Description string    `firestore:"description,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

func newCategoryDocument(category domain.Category) categoryDocument {
	name := strings.TrimSpace(category.Name)
	return categoryDocument{
		Name:        name,
		NameLower:   strings.ToLower(name),
		Description: strings.TrimSpace(category.Description),
		CreatedAt:   category.CreatedAt.UTC(),
		UpdatedAt:   category.UpdatedAt.UTC(),
	}
}

func (d categoryDocument) toDomain(id string) domain.Category {
	return domain.Category{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type productDocument struct {
	Name                string    `firestore:"name"`
	NameLower           string    `firestore:"nameLower"`
	Description         string    `firestore:"description,omitempty"`
	Price               string    `firestore:"price"`
	DiscountPrice       string    `firestore:"discountPrice,omitempty"`
	EffectivePriceUnits int64     `firestore:"effectivePriceUnits"`
	Stock               int       `firestore:"stock"`
	CategoryID          string    `firestore:"categoryId,omitempty"`
	ImageURL            string    `firestore:"imageUrl,omitempty"`
	CreatedAt           time.Time `firestore:"createdAt"`
	UpdatedAt           time.Time `firestore:"updatedAt"`
}

func newProductDocument(product domain.Product) productDocument {
	name := strings.TrimSpace(product.Name)
	doc := productDocument{
		Name:                name,
		NameLower:           strings.ToLower(name),
		Description:         strings.TrimSpace(product.Description),
		Price:               moneyToString(product.Price),
		EffectivePriceUnits: moneyToUnits(domain.EffectivePrice(product)),
		Stock:               product.Stock,
		CategoryID:          strings.TrimSpace(product.CategoryID),
		ImageURL:            strings.TrimSpace(product.ImageURL),
		CreatedAt:           product.CreatedAt.UTC(),
		UpdatedAt:           product.UpdatedAt.UTC(),
	}
	if product.DiscountPrice != nil {
		doc.DiscountPrice = moneyToString(*product.DiscountPrice)
	}
	return doc
}

func (d productDocument) toDomain(id string) (domain.Product, error) {
	price, err := moneyFromString(d.Price, "product price")
	if err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Stock:       d.Stock,
		CategoryID:  d.CategoryID,
		ImageURL:    d.ImageURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if strings.TrimSpace(d.DiscountPrice) != "" {
		discount, err := moneyFromString(d.DiscountPrice, "product discount price")
		if err != nil {
			return domain.Product{}, err
		}
		product.DiscountPrice = &discount
	}
	return product, nil
}

type orderLineDocument struct {
	ID        string `firestore:"id"`
	ProductID string `firestore:"productId"`
	Name      string `firestore:"name"`
	Quantity  int    `firestore:"qty"`
	UnitPrice string `firestore:"unitPrice"`
	Subtotal  string `firestore:"subtotal"`
}

type orderDocument struct {
	UserID    string              `firestore:"userId"`
	Status    string              `firestore:"status"`
	Total     string              `firestore:"total"`
	Lines     []orderLineDocument `firestore:"lines"`
	CreatedAt time.Time           `firestore:"createdAt"`
	UpdatedAt time.Time           `firestore:"updatedAt"`
}

func newOrderDocument(order domain.Order) orderDocument {
	lines := make([]orderLineDocument, len(order.Lines))
	for i, line := range order.Lines {
		lines[i] = orderLineDocument{
			ID:        line.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: moneyToString(line.UnitPrice),
			Subtotal:  moneyToString(line.Subtotal),
		}
	}
	return orderDocument{
		UserID:    strings.TrimSpace(order.UserID),
		Status:    string(order.Status),
		Total:     moneyToString(order.Total),
		Lines:     lines,
		CreatedAt: order.CreatedAt.UTC(),
		UpdatedAt: order.UpdatedAt.UTC(),
	}
}

func (d orderDocument) toDomain(id string) (domain.Order, error) {
	total, err := moneyFromString(d.Total, "order total")
	if err != nil {
		return domain.Order{}, err
	}

	lines := make([]domain.OrderLine, len(d.Lines))
	for i, line := range d.Lines {
		unitPrice, err := moneyFromString(line.UnitPrice, "line unit price")
		if err != nil {
			return domain.Order{}, err
		}
		subtotal, err := moneyFromString(line.Subtotal, "line subtotal")
		if err != nil {
			return domain.Order{}, err
		}
		lines[i] = domain.OrderLine{
			ID:        line.ID,
			OrderID:   id,
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: unitPrice,
			Subtotal:  subtotal,
		}
	}

	return domain.Order{
		ID:        id,
		UserID:    d.UserID,
		Status:    domain.OrderStatus(d.Status),
		Total:     total,
		Lines:     lines,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

type imageDocument struct {
	ProductID   string    `firestore:"productId"`
	URL         string    `firestore:"url"`
	ObjectPath  string    `firestore:"objectPath"`
	ContentType string    `firestore:"contentType"`
	SizeBytes   int64     `firestore:"sizeBytes"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func newImageDocument(image domain.Image) imageDocument {
	return imageDocument{
		ProductID:   strings.TrimSpace(image.ProductID),
		URL:         strings.TrimSpace(image.URL),
		ObjectPath:  strings.TrimSpace(image.ObjectPath),
		ContentType: strings.TrimSpace(image.ContentType),
		SizeBytes:   image.SizeBytes,
		CreatedAt:   image.CreatedAt.UTC(),
	}
}

func (d imageDocument) toDomain(id string) domain.Image {
	return domain.Image{
		ID:          id,
		ProductID:   d.ProductID,
		URL:         d.URL,
		ObjectPath:  d.ObjectPath,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		CreatedAt:   d.CreatedAt,
	}
}
