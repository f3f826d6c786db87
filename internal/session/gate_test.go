package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickie-study/quickie/internal/auth"
)

// unsignedToken builds a JWT-shaped token with the given exp claim and a junk
// signature. The gate never verifies signatures, so this is all it needs.
func unsignedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]interface{}{"exp": exp.Unix(), "user_id": 7})
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".junk"
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want RouteClass
	}{
		{"/", Public},
		{"/about", Public},
		{"/login", AuthOnly},
		{"/register", AuthOnly},
		{"/reset-password/MQ/abc", AuthOnly},
		{"/dashboard", Protected},
		{"/notes/42", Protected},
		{"/notestuff", Public},
		{"/pomodoro", Protected},
		{"/profile", Protected},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.path), "path %q", tt.path)
	}
}

func TestAuthenticated(t *testing.T) {
	now := time.Now()

	assert.False(t, Authenticated("", now))
	assert.False(t, Authenticated("not-a-jwt", now))
	assert.False(t, Authenticated("a.b.c", now))
	assert.False(t, Authenticated(unsignedToken(t, now.Add(-time.Minute)), now), "expired token")
	assert.True(t, Authenticated(unsignedToken(t, now.Add(time.Hour)), now))

	// Token without an exp claim is treated as unauthenticated.
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"user_id":7}`))
	assert.False(t, Authenticated(header+"."+payload+".junk", now))
}

func gateRequest(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: token})
	}
	w := httptest.NewRecorder()
	Gate()(next).ServeHTTP(w, req)
	return w
}

func TestGateRedirectsProtectedWithoutToken(t *testing.T) {
	w := gateRequest(t, "/notes/42", "")

	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, LoginPath, loc.Path)
	assert.Equal(t, "/notes/42", loc.Query().Get(CallbackParam))
}

func TestGateRedirectsProtectedWithExpiredToken(t *testing.T) {
	w := gateRequest(t, "/dashboard", unsignedToken(t, time.Now().Add(-time.Hour)))

	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, LoginPath, loc.Path)
	assert.Equal(t, "/dashboard", loc.Query().Get(CallbackParam))
}

func TestGateRedirectsAuthRouteWhenAuthenticated(t *testing.T) {
	w := gateRequest(t, "/login", unsignedToken(t, time.Now().Add(time.Hour)))

	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, HomePath, w.Header().Get("Location"))
}

func TestGateAllows(t *testing.T) {
	// Public path without token.
	assert.Equal(t, http.StatusOK, gateRequest(t, "/", "").Code)
	// Public path with malformed token, fail open.
	assert.Equal(t, http.StatusOK, gateRequest(t, "/about", "garbage").Code)
	// Auth route without token.
	assert.Equal(t, http.StatusOK, gateRequest(t, "/login", "").Code)
	// Protected route with valid token.
	assert.Equal(t, http.StatusOK, gateRequest(t, "/notes", unsignedToken(t, time.Now().Add(time.Hour))).Code)
}
