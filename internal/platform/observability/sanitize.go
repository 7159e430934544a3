package observability

import (
	"net/http"
	"strings"
)

// SanitizeMethod normalises HTTP methods for log fields.
func SanitizeMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return method
	}
	return "OTHER"
}

// SanitizeRoute strips line breaks from the matched route pattern.
func SanitizeRoute(route string) string {
	return sanitizeString(route, 256)
}

// SanitizeUserID truncates and cleans user identifiers before logging.
func SanitizeUserID(uid string) string {
	return sanitizeString(uid, 128)
}

func sanitizeString(value string, limit int) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if limit > 0 && len(value) > limit {
		value = value[:limit]
	}
	return value
}
