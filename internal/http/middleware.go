package http

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

type contextKey string

const clientIPContextKey contextKey = "client_ip"

// ExtractClientIP extracts the client IP address from the request.
// Checks X-Forwarded-For header first (for proxied requests), then X-Real-IP, finally RemoteAddr.
// Returns "" when no candidate parses as an IP address.
func ExtractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// first hop is the original client
		first, _, _ := strings.Cut(xff, ",")
		return normalizeIP(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return normalizeIP(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return normalizeIP(host)
}

func normalizeIP(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}

// WithClientIP returns a copy of ctx carrying ip.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey, ip)
}

// ClientIPFromContext extracts the client IP from the request context.
// This should be called from handlers behind ClientIPMiddleware.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPContextKey).(string)
	return ip
}

// ClientIPMiddleware stores the client IP in the request context so it can be recorded
// on sessions and in request logs.
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ExtractClientIP(c.Request)
		c.Request = c.Request.WithContext(WithClientIP(c.Request.Context(), ip))
		c.Next()
	}
}
