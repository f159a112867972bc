package errors

import (
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	withCode := &Error{Type: ErrorTypeNotFound, Message: "resource not found", Code: 404}
	if got := withCode.Error(); !strings.Contains(got, "status 404") {
		t.Errorf("Error() = %q, want the HTTP status included", got)
	}

	// No response means no status to report.
	withoutCode := &Error{Type: ErrorTypeNetwork, Message: "connection refused"}
	if got := withoutCode.Error(); strings.Contains(got, "status") {
		t.Errorf("Error() = %q, want no status for pre-response failures", got)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      bool
	}{
		{ErrorTypeNetwork, true},
		{ErrorTypeRateLimit, true},
		{ErrorTypeServerError, true},
		{ErrorTypeAuth, false},
		{ErrorTypeNotFound, false},
		{ErrorTypeParsing, false},
		{ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		if got := IsRetryable(tt.errorType); got != tt.want {
			t.Errorf("IsRetryable(%s) = %t, want %t", tt.errorType, got, tt.want)
		}
		err := &Error{Type: tt.errorType, Message: "x"}
		if got := err.Retryable(); got != tt.want {
			t.Errorf("Retryable() on %s = %t, want %t", tt.errorType, got, tt.want)
		}
	}
}
