package services

import (
	"github.com/shopspring/decimal"

	"github.com/fr4ncode/order-system/internal/domain"
)

const (
	orderIDPrefix = "ord_"
	lineIDPrefix  = "lin_"
)

// productSet holds the working copies of every product an order build touches.
// Builders mutate stock on the copies; the caller persists them afterwards.
type productSet map[string]domain.Product

// validateLines rejects empty orders, non-positive quantities, and multiple
// lines referencing the same product.
func validateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return domain.ErrEmptyOrder()
	}
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return domain.ErrInvalidQuantity(line.Quantity)
		}
		if _, dup := seen[line.ProductID]; dup {
			return domain.ErrDuplicateLineItem(line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}

// buildLines reserves stock for each requested line against the product set
// and returns priced order lines with the running total. Unit prices snapshot
// the effective price at build time.
func buildLines(products productSet, orderID string, lines []LineInput, newID func() string) ([]domain.OrderLine, decimal.Decimal, error) {
	built := make([]domain.OrderLine, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, decimal.Zero, domain.ErrNotFound("product", line.ProductID)
		}

		reserved, err := domain.ReserveStock(product, line.Quantity)
		if err != nil {
			return nil, decimal.Zero, err
		}
		products[line.ProductID] = reserved

		unitPrice := domain.EffectivePrice(product)
		subtotal := domain.LineSubtotal(product, line.Quantity)
		built = append(built, domain.OrderLine{
			ID:        lineIDPrefix + newID(),
			OrderID:   orderID,
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			UnitPrice: unitPrice,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}

	return built, total, nil
}

// releaseLines returns the stock held by existing order lines to the product
// set. Lines whose product no longer exists are skipped; there is nothing to
// restore stock onto.
func releaseLines(products productSet, lines []domain.OrderLine) error {
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}
		released, err := domain.ReleaseStock(product, line.Quantity)
		if err != nil {
			return err
		}
		products[line.ProductID] = released
	}
	return nil
}
