package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsRequest(origin, method string) *httptest.ResponseRecorder {
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, "/api/assessments", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowsLocalFrontendByDefault(t *testing.T) {
	rec := corsRequest("http://localhost:3000", http.MethodGet)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	rec := corsRequest("https://evil.example.com", http.MethodGet)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	// The request itself still goes through; CORS is a browser control.
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	rec := corsRequest("http://localhost:3000", http.MethodOptions)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "300", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSHonorsConfiguredOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")

	rec := corsRequest("https://staging.example.com", http.MethodGet)
	assert.Equal(t, "https://staging.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = corsRequest("http://localhost:3000", http.MethodGet)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcard(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "*")

	rec := corsRequest("https://anywhere.example.com", http.MethodGet)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
