package domain

import "github.com/shopspring/decimal"

// EffectivePrice returns the discount price when one is set, otherwise the
// list price.
func EffectivePrice(product Product) decimal.Decimal {
	if product.DiscountPrice != nil {
		return *product.DiscountPrice
	}
	return product.Price
}

// LineSubtotal computes effective price times quantity in exact decimal
// arithmetic. Quantity validation happens upstream; a non-positive quantity
// here is a programming error and yields a non-positive subtotal.
func LineSubtotal(product Product, quantity int) decimal.Decimal {
	return EffectivePrice(product).Mul(decimal.NewFromInt(int64(quantity)))
}
