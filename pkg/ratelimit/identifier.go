package ratelimit

import (
	"net/http"
	"strings"
)

// UnknownClient is the bucket used when no client address can be determined.
const UnknownClient = "unknown-client"

// ClientIdentifier derives the rate limiting key for a request. Precedence:
// the left-most X-Forwarded-For address (the original client in a proxy
// chain), then X-Real-IP, then UnknownClient.
//
// Both headers are supplied by upstream proxies without verification, so
// they are only trustworthy when the service runs behind a controlled
// reverse proxy that strips client-sent values.
func ClientIdentifier(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return UnknownClient
}
