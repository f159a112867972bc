package ratelimit

import (
	"net/http/httptest"
	"testing"
)

func TestClientIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{
			name:     "forwarded for single address",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.7"},
			expected: "203.0.113.7",
		},
		{
			name:     "forwarded for chain takes first hop",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1, 10.0.0.2"},
			expected: "203.0.113.7",
		},
		{
			name:     "forwarded for with whitespace",
			headers:  map[string]string{"X-Forwarded-For": "  203.0.113.7 , 10.0.0.1"},
			expected: "203.0.113.7",
		},
		{
			name:     "real ip fallback",
			headers:  map[string]string{"X-Real-IP": "198.51.100.4"},
			expected: "198.51.100.4",
		},
		{
			name: "forwarded for wins over real ip",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.7",
				"X-Real-IP":       "198.51.100.4",
			},
			expected: "203.0.113.7",
		},
		{
			name:     "no headers",
			headers:  nil,
			expected: UnknownClient,
		},
		{
			name:     "empty forwarded for falls through",
			headers:  map[string]string{"X-Forwarded-For": "", "X-Real-IP": "198.51.100.4"},
			expected: "198.51.100.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIdentifier(req); got != tt.expected {
				t.Errorf("ClientIdentifier() = %q, want %q", got, tt.expected)
			}
		})
	}
}
