package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/conversations", nil)
	assert.Empty(t, RequestIDFromRequest(req))

	req.Header.Set("X-Request-Id", "req-123")
	assert.Equal(t, "req-123", RequestIDFromRequest(req))
}

func TestIPFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/conversations", nil)
	req.RemoteAddr = "10.0.0.5:41234"
	assert.Equal(t, "10.0.0.5", IPFromRequest(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", IPFromRequest(req))
}

func TestBuildHeaders(t *testing.T) {
	headers := BuildHeaders("req-123", "trace-abc", "203.0.113.9")
	assert.Equal(t, map[string]string{
		"x-request-id": "req-123",
		"trace_id":     "trace-abc",
		"x-client-ip":  "203.0.113.9",
	}, headers)

	assert.Empty(t, BuildHeaders("", "", ""))
}
