package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repscout/pkg/config"
	"repscout/pkg/logger"
	"repscout/pkg/models"
	"repscout/pkg/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)

	jane := models.NewSalesRep("Jane", "Doe", "Mary Kay", models.SourceLocator)
	jane.Email = "jane.doe@gmail.com"
	jane.State = "TX"
	bob := models.NewSalesRep("Bob", "Smith", "Avon", models.SourceSearch)
	bob.State = "OK"
	_, err = store.SaveRepsJSON([]*models.SalesRep{jane, bob})
	require.NoError(t, err)

	companies := []models.CompanyConfig{
		{Name: "Mary Kay", Slug: "marykay", Enabled: true},
		{Name: "Avon", Slug: "avon", Enabled: true},
	}

	cfg := &config.ServerConfig{Addr: ":0", DataDir: store.GetOutputDir()}
	return New(cfg, store, companies, logger.NewNopLogger())
}

// do issues a request against the router. Each test uses its own client IP
// so the shared rate limiter keeps tests independent.
func do(srv *Server, method, target, ip string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("X-Real-IP", ip)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	rec := do(srv, http.MethodGet, "/healthz", "10.9.0.1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestListReps(t *testing.T) {
	srv := newTestServer(t)

	rec := do(srv, http.MethodGet, "/api/reps", "10.9.1.1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int                `json:"count"`
		Reps  []*models.SalesRep `json:"reps"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestListRepsFilters(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		want   int
		wantID string
	}{
		{"by company", "?company=mary+kay", 1, "Jane"},
		{"by state case-insensitive", "?state=tx", 1, "Jane"},
		{"no match", "?company=amway", 0, ""},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip := "10.9.2." + string(rune('1'+i))
			rec := do(srv, http.MethodGet, "/api/reps"+tt.query, ip, "")
			require.Equal(t, http.StatusOK, rec.Code)

			var resp struct {
				Count int                `json:"count"`
				Reps  []*models.SalesRep `json:"reps"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Count)
			if tt.wantID != "" {
				require.Len(t, resp.Reps, 1)
				assert.Equal(t, tt.wantID, resp.Reps[0].FirstName)
			}
		})
	}
}

func TestListCompanies(t *testing.T) {
	srv := newTestServer(t)

	rec := do(srv, http.MethodGet, "/api/companies", "10.9.3.1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"marykay"`)
	assert.Contains(t, rec.Body.String(), `"count":2`)
}

func TestContactValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"repId":"abc123","email":"buyer@gmail.com","name":"Pat","message":"hi"}`, http.StatusAccepted},
		{"missing rep", `{"email":"buyer@gmail.com","message":"hi"}`, http.StatusBadRequest},
		{"missing message", `{"repId":"abc123","email":"buyer@gmail.com"}`, http.StatusBadRequest},
		{"bad email", `{"repId":"abc123","email":"not-an-email","message":"hi"}`, http.StatusBadRequest},
		{"malformed body", `{`, http.StatusBadRequest},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip := "10.9.4." + string(rune('1'+i))
			rec := do(srv, http.MethodPost, "/api/contact", ip, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestContactRateLimited(t *testing.T) {
	srv := newTestServer(t)

	body := `{"repId":"abc123","email":"buyer@gmail.com","name":"Pat","message":"hi"}`
	for i := 0; i < 10; i++ {
		rec := do(srv, http.MethodPost, "/api/contact", "10.9.5.1", body)
		require.Equal(t, http.StatusAccepted, rec.Code, "request %d should pass", i+1)
	}

	rec := do(srv, http.MethodPost, "/api/contact", "10.9.5.1", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// A different client is unaffected.
	rec = do(srv, http.MethodPost, "/api/contact", "10.9.5.2", body)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
