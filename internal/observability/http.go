package observability

import (
	"net"
	"net/http"
	"strings"
)

// RequestIDFromRequest returns the correlation id the marketplace gateway
// attaches to each request, or empty when the caller reached us directly.
func RequestIDFromRequest(r *http.Request) string {
	return r.Header.Get("X-Request-Id")
}

// IPFromRequest resolves the caller address, preferring the first hop of
// X-Forwarded-For set by the gateway.
func IPFromRequest(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
