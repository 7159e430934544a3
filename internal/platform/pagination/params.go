package pagination

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fr4ncode/order-system/internal/domain"
)

const (
	// DefaultPageSize is the fallback number of items returned when the client omits pageSize.
	DefaultPageSize = 20
	// MaxPageSize caps pageSize to prevent unbounded queries.
	MaxPageSize = 100
	// MaxPageIndex bounds how deep offset pagination may reach.
	MaxPageIndex = 10000
)

// FromRequest parses pageIndex and pageSize from the request query string.
func FromRequest(r *http.Request) (domain.PageRequest, error) {
	if r == nil {
		return domain.PageRequest{}, domain.ErrInvalidPagination("nil request")
	}
	return Parse(r.URL.Query())
}

// Parse validates the supplied query values and returns the normalised page
// request. Violations surface as invalid-pagination domain errors.
func Parse(values url.Values) (domain.PageRequest, error) {
	index, err := parseBounded(values.Get("pageIndex"), 0, 0, MaxPageIndex, "pageIndex")
	if err != nil {
		return domain.PageRequest{}, err
	}
	size, err := parseBounded(values.Get("pageSize"), DefaultPageSize, 1, MaxPageSize, "pageSize")
	if err != nil {
		return domain.PageRequest{}, err
	}

	// Offset arithmetic must stay inside 32-bit range.
	if int64(index)*int64(size) > math.MaxInt32 {
		return domain.PageRequest{}, domain.ErrInvalidPagination("pageIndex * pageSize overflows")
	}

	return domain.PageRequest{Index: index, Size: size}, nil
}

func parseBounded(raw string, fallback, min, max int, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrInvalidPagination(name + " must be an integer")
	}
	if value < min {
		return 0, domain.ErrInvalidPagination(name + " must be at least " + strconv.Itoa(min))
	}
	if value > max {
		return 0, domain.ErrInvalidPagination(name + " must not exceed " + strconv.Itoa(max))
	}
	return value, nil
}
