package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := dec(t, s)
	return &d
}

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    string
	}{
		{
			name:    "list price when no discount",
			product: Product{Price: dec(t, "10.00")},
			want:    "10.00",
		},
		{
			name:    "discount price wins when set",
			product: Product{Price: dec(t, "10.00"), DiscountPrice: decPtr(t, "9.00")},
			want:    "9.00",
		},
		{
			name:    "zero discount price is still a discount",
			product: Product{Price: dec(t, "5.50"), DiscountPrice: decPtr(t, "0")},
			want:    "0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EffectivePrice(tc.product)
			if !got.Equal(dec(t, tc.want)) {
				t.Fatalf("effective price = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestLineSubtotalExactDecimal(t *testing.T) {
	// 0.1 * 3 must be exactly 0.3, not a float approximation.
	product := Product{Price: dec(t, "0.1")}
	got := LineSubtotal(product, 3)
	if !got.Equal(dec(t, "0.3")) {
		t.Fatalf("subtotal = %s, want 0.3", got)
	}

	discounted := Product{Price: dec(t, "10.00"), DiscountPrice: decPtr(t, "9.00")}
	if got := LineSubtotal(discounted, 2); !got.Equal(dec(t, "18.00")) {
		t.Fatalf("discounted subtotal = %s, want 18.00", got)
	}
}
