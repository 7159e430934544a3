package domain

// ReserveStock returns a copy of the product with quantity units removed from
// stock. The caller persists the result; nothing is written here. Reserving
// more than the available stock fails, keeping stock non-negative in every
// interleaving.
func ReserveStock(product Product, quantity int) (Product, error) {
	if quantity <= 0 {
		return Product{}, ErrInvalidQuantity(quantity)
	}
	if quantity > product.Stock {
		return Product{}, ErrInsufficientStock(product.Name, quantity, product.Stock)
	}
	product.Stock -= quantity
	return product, nil
}

// ReleaseStock returns a copy of the product with quantity units restored to
// stock. Releasing previously reserved stock always succeeds for positive
// quantities.
func ReleaseStock(product Product, quantity int) (Product, error) {
	if quantity <= 0 {
		return Product{}, ErrInvalidQuantity(quantity)
	}
	product.Stock += quantity
	return product, nil
}
