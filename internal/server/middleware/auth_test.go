package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator is a test implementation of TokenValidator for unit tests.
type testTokenValidator map[string]string

func (v testTokenValidator) ValidateToken(tokenString string) (SessionIDGetter, error) {
	id, ok := v[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims(id), nil
}

type testClaims string

func (c testClaims) GetSessionID() string { return string(c) }

func newTestMux(t *testing.T, validator TokenValidator) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle("GET /sessions/{id}", SessionAuth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetSessionID(r)
		require.NoError(t, err)
		_, _ = w.Write([]byte(id))
	})))
	return mux
}

func TestSessionAuth(t *testing.T) {
	mux := newTestMux(t, testTokenValidator{"tok-a": "session-a", "tok-empty": ""})

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{name: "valid", path: "/sessions/session-a", header: "Bearer tok-a", status: http.StatusOK},
		{name: "lowercase scheme", path: "/sessions/session-a", header: "bearer tok-a", status: http.StatusOK},
		{name: "missing header", path: "/sessions/session-a", status: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/sessions/session-a", header: "Basic tok-a", status: http.StatusUnauthorized},
		{name: "extra parts", path: "/sessions/session-a", header: "Bearer tok-a extra", status: http.StatusUnauthorized},
		{name: "unknown token", path: "/sessions/session-a", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "other session", path: "/sessions/session-b", header: "Bearer tok-a", status: http.StatusForbidden},
		{name: "empty claim", path: "/sessions/session-a", header: "Bearer tok-empty", status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "session-a", rec.Body.String())
			}
		})
	}
}

func TestGetSessionID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetSessionID(req)
	assert.Error(t, err)
}
