package domain

import (
	"errors"
	"testing"
)

func TestReserveStock(t *testing.T) {
	product := Product{ID: "prd_1", Name: "Mug", Stock: 3}

	updated, err := ReserveStock(product, 2)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if updated.Stock != 1 {
		t.Fatalf("stock = %d, want 1", updated.Stock)
	}
	if product.Stock != 3 {
		t.Fatalf("input mutated: stock = %d, want 3", product.Stock)
	}
}

func TestReserveStockInsufficient(t *testing.T) {
	product := Product{ID: "prd_1", Name: "Mug", Stock: 3}

	_, err := ReserveStock(product, 5)
	var derr *Error
	if !errors.As(err, &derr) || derr.Kind != ErrorKindInsufficientStock {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if derr.Details["product"] != "Mug" {
		t.Fatalf("error should name the offending product, details = %v", derr.Details)
	}
	if product.Stock != 3 {
		t.Fatalf("stock changed on failure: %d", product.Stock)
	}
}

func TestReserveStockInvalidQuantity(t *testing.T) {
	for _, qty := range []int{0, -1} {
		_, err := ReserveStock(Product{Stock: 10}, qty)
		if KindOf(err) != ErrorKindInvalidQuantity {
			t.Fatalf("quantity %d: expected invalid quantity, got %v", qty, err)
		}
	}
}

func TestReleaseStock(t *testing.T) {
	product := Product{ID: "prd_1", Stock: 0}

	updated, err := ReleaseStock(product, 2)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if updated.Stock != 2 {
		t.Fatalf("stock = %d, want 2", updated.Stock)
	}

	if _, err := ReleaseStock(product, 0); KindOf(err) != ErrorKindInvalidQuantity {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
}

func TestReserveThenReleaseRoundTrips(t *testing.T) {
	product := Product{ID: "prd_1", Name: "Mug", Stock: 7}

	reserved, err := ReserveStock(product, 7)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	restored, err := ReleaseStock(reserved, 7)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if restored.Stock != product.Stock {
		t.Fatalf("stock = %d, want %d", restored.Stock, product.Stock)
	}
}
