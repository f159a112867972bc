package webclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	errs "repscout/pkg/errors"
	"repscout/pkg/logger"
	"repscout/pkg/ratelimit"
)

func newTestClient() *Client {
	return New(5*time.Second, logger.NewNopLogger())
}

func TestGetHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("request must carry a user agent")
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer ts.Close()

	body, err := newTestClient().GetHTML(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("GetHTML() error = %v", err)
	}
	if body != "<html>ok</html>" {
		t.Errorf("body = %q", body)
	}
}

func TestGetJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "Jane"}`))
	}))
	defer ts.Close()

	var target struct {
		Name string `json:"name"`
	}
	if err := newTestClient().GetJSON(context.Background(), ts.URL, &target); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if target.Name != "Jane" {
		t.Errorf("name = %q", target.Name)
	}
}

func TestGetJSONParseError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer ts.Close()

	var target map[string]interface{}
	err := newTestClient().GetJSON(context.Background(), ts.URL, &target)
	if err == nil {
		t.Fatal("invalid JSON must fail")
	}
	var typed *errs.Error
	if !errors.As(err, &typed) || typed.Type != errs.ErrorTypeParsing {
		t.Errorf("error = %v, want a parsing error", err)
	}
}

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		status int
		want   errs.ErrorType
	}{
		{http.StatusUnauthorized, errs.ErrorTypeAuth},
		{http.StatusForbidden, errs.ErrorTypeAuth},
		{http.StatusNotFound, errs.ErrorTypeNotFound},
		{http.StatusTooManyRequests, errs.ErrorTypeRateLimit},
		{http.StatusInternalServerError, errs.ErrorTypeServerError},
		{http.StatusTeapot, errs.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		_, err := newTestClient().Get(context.Background(), ts.URL)
		ts.Close()

		if err == nil {
			t.Errorf("status %d: want an error", tt.status)
			continue
		}
		var typed *errs.Error
		if !errors.As(err, &typed) {
			t.Errorf("status %d: error %v is not typed", tt.status, err)
			continue
		}
		if typed.Type != tt.want {
			t.Errorf("status %d: type = %v, want %v", tt.status, typed.Type, tt.want)
		}
		if typed.Code != tt.status {
			t.Errorf("status %d: code = %d", tt.status, typed.Code)
		}
	}
}

func TestGetHonorsPoliteness(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	client := newTestClient()
	client.SetPoliteness(ratelimit.NewPoliteness(600)) // 100ms spacing

	ctx := context.Background()
	if _, err := client.GetHTML(ctx, ts.URL); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if _, err := client.GetHTML(ctx, ts.URL); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("second request after %v, want politeness spacing", elapsed)
	}
}

func TestGetPolitenessCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	client := newTestClient()
	client.SetPoliteness(ratelimit.NewPoliteness(1))

	if _, err := client.GetHTML(context.Background(), ts.URL); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, ts.URL)
	if err == nil {
		t.Fatal("cancelled politeness wait must fail")
	}
	var typed *errs.Error
	if !errors.As(err, &typed) || typed.Type != errs.ErrorTypeRateLimit {
		t.Errorf("error = %v, want a rate limit error", err)
	}
}
