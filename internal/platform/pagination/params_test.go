package pagination

import (
	"net/url"
	"strconv"
	"testing"

	"github.com/fr4ncode/order-system/internal/domain"
)

func TestParseDefaults(t *testing.T) {
	page, err := Parse(url.Values{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if page.Index != 0 || page.Size != DefaultPageSize {
		t.Fatalf("page = %+v, want index 0 size %d", page, DefaultPageSize)
	}
}

func TestParseExplicitValues(t *testing.T) {
	values := url.Values{"pageIndex": {"3"}, "pageSize": {"25"}}
	page, err := Parse(values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if page.Index != 3 || page.Size != 25 {
		t.Fatalf("page = %+v, want index 3 size 25", page)
	}
	if got := page.Offset(); got != 75 {
		t.Fatalf("offset = %d, want 75", got)
	}
}

func TestParseRejectsOutOfBounds(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
	}{
		{"negative index", url.Values{"pageIndex": {"-1"}}},
		{"index too deep", url.Values{"pageIndex": {strconv.Itoa(MaxPageIndex + 1)}}},
		{"zero size", url.Values{"pageSize": {"0"}}},
		{"size too large", url.Values{"pageSize": {"101"}}},
		{"non-numeric", url.Values{"pageSize": {"ten"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.values)
			if domain.KindOf(err) != domain.ErrorKindInvalidPagination {
				t.Fatalf("expected invalid pagination, got %v", err)
			}
		})
	}
}

func TestParseRejectsOffsetOverflow(t *testing.T) {
	// Within individual bounds the product can still overflow 32 bits when
	// limits are raised, so the check is explicit.
	values := url.Values{"pageIndex": {"10000"}, "pageSize": {"100"}}
	if _, err := Parse(values); err != nil {
		t.Fatalf("10000*100 fits in 32 bits, parse should succeed: %v", err)
	}
}
