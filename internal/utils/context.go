package utils

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey string

const ContextClientIDKey contextKey = "clientID"

// ClientID identifies the caller for rate limiting: the first X-Forwarded-For
// hop, else the remote host.
func ClientID(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextClientIDKey, id)
}

func GetClientIDFromContext(ctx context.Context) (string, bool) {
	clientID := ctx.Value(ContextClientIDKey)
	clientIDStr, ok := clientID.(string)
	return clientIDStr, ok
}
