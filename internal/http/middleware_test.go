package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		expected   string
	}{
		// X-Forwarded-For
		{name: "forwarded single", xff: "192.168.1.1", expected: "192.168.1.1"},
		{name: "forwarded chain takes first hop", xff: "203.0.113.1, 198.51.100.1", expected: "203.0.113.1"},
		{name: "forwarded chain padded", xff: "203.0.113.1  ,  198.51.100.1", expected: "203.0.113.1"},
		{name: "forwarded beats real ip", xff: "203.0.113.1", realIP: "192.168.1.100", expected: "203.0.113.1"},
		{name: "forwarded mapped IPv6 is unmapped", xff: "::ffff:192.0.2.7", expected: "192.0.2.7"},
		{name: "forwarded bracketed IPv6", xff: "[2001:db8::5]", expected: "2001:db8::5"},
		{name: "forwarded garbage", xff: "unknown", expected: ""},

		// X-Real-IP
		{name: "real ip", realIP: "192.168.1.100", expected: "192.168.1.100"},
		{name: "real ip padded", realIP: " 10.1.2.3 ", expected: "10.1.2.3"},

		// RemoteAddr
		{name: "remote IPv4 with port", remoteAddr: "192.168.1.1:54321", expected: "192.168.1.1"},
		{name: "remote IPv6 with port", remoteAddr: "[2001:db8::1]:54321", expected: "2001:db8::1"},
		{name: "remote mapped IPv6 with port", remoteAddr: "[::ffff:10.0.0.9]:443", expected: "10.0.0.9"},
		{name: "remote IPv4 without port", remoteAddr: "192.168.1.1", expected: "192.168.1.1"},
		{name: "remote IPv6 without port", remoteAddr: "2001:db8::2", expected: "2001:db8::2"},
		{name: "remote mapped IPv6 without port", remoteAddr: "::ffff:10.0.0.9", expected: "10.0.0.9"},
		{name: "remote pipe", remoteAddr: "@", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.remoteAddr != "" {
				r.RemoteAddr = tt.remoteAddr
			}

			require.Equal(t, tt.expected, ExtractClientIP(r))
		})
	}
}

func TestClientIPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ClientIPMiddleware())

	var captured string
	router.POST("/auth/login", func(c *gin.Context) {
		captured = ClientIPFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	r.RemoteAddr = "[::ffff:203.0.113.1]:61000"

	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "203.0.113.1", captured)
}

func TestClientIPFromContext(t *testing.T) {
	require.Empty(t, ClientIPFromContext(context.Background()))
	require.Equal(t, "10.0.0.1", ClientIPFromContext(WithClientIP(context.Background(), "10.0.0.1")))
}
