package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickie-study/quickie/internal/auth"
	"github.com/quickie-study/quickie/internal/config"
)

// newTestAPI builds an Api wired to a fake upstream server.
func newTestAPI(t *testing.T, upstream http.Handler) *Api {
	t.Helper()
	var cfg config.Config
	cfg.SiteURL = "https://app.quickie.study"
	cfg.CORS.Origins = []string{"http://localhost:*"}
	if upstream != nil {
		srv := httptest.NewServer(upstream)
		t.Cleanup(srv.Close)
		cfg.Upstream.BaseURL = srv.URL
	}
	api, err := NewApi(&cfg)
	require.NoError(t, err)
	return api
}

func postJSON(t *testing.T, api *Api, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	api.Router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// fakeIdentity is a minimal upstream identity API for handler tests.
func fakeIdentity() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/jwt/create/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access": "new-access", "refresh": "new-refresh"})
	})
	mux.HandleFunc("/auth/jwt/refresh/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["refresh"] != "good-refresh" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Token is invalid or expired"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access": "refreshed-access"})
	})
	mux.HandleFunc("/auth/users/me/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 9, "email": "kim@example.com", "first_name": "Kim", "last_name": "Lee",
		})
	})
	mux.HandleFunc("/auth/users/reset_password/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "kim@example.com" {
			// Upstream leaks existence; the bridge must not.
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string][]string{"email": {"User with given email does not exist."}})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func TestLoginMissingFields(t *testing.T) {
	api := newTestAPI(t, fakeIdentity())

	for _, body := range []map[string]string{
		{},
		{"email": "kim@example.com"},
		{"password": "hunter22"},
	} {
		w := postJSON(t, api, "/api/auth/login", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotEmpty(t, decodeBody(t, w)["message"])
		assert.Empty(t, w.Result().Cookies(), "no cookies on validation failure")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	api := newTestAPI(t, fakeIdentity())

	w := postJSON(t, api, "/api/auth/login", map[string]string{
		"email": "kim@example.com", "password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password.", decodeBody(t, w)["message"])
	assert.Empty(t, w.Result().Cookies())
}

func TestLoginSuccessSetsCookiesAndReshapesUser(t *testing.T) {
	api := newTestAPI(t, fakeIdentity())

	w := postJSON(t, api, "/api/auth/login", map[string]string{
		"email": "kim@example.com", "password": "hunter22",
	})

	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	access := cookieByName(cookies, auth.AccessTokenCookie)
	refresh := cookieByName(cookies, auth.RefreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.Equal(t, "new-access", access.Value)
	assert.Equal(t, auth.AccessTokenMaxAge, access.MaxAge)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, "new-refresh", refresh.Value)
	assert.Equal(t, auth.RefreshTokenMaxAge, refresh.MaxAge)
	assert.True(t, refresh.HttpOnly)

	user := decodeBody(t, w)["user"].(map[string]interface{})
	for _, field := range []string{"id", "email", "firstName", "lastName"} {
		_, isString := user[field].(string)
		assert.True(t, isString, "user field %q must be a string", field)
	}
	assert.Equal(t, "9", user["id"])
}

func TestRefresh(t *testing.T) {
	api := newTestAPI(t, fakeIdentity())

	t.Run("no refresh cookie", func(t *testing.T) {
		w := postJSON(t, api, "/api/auth/refresh", map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid refresh cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: "good-refresh"})
		w := httptest.NewRecorder()
		api.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		access := cookieByName(w.Result().Cookies(), auth.AccessTokenCookie)
		require.NotNil(t, access)
		assert.Equal(t, "refreshed-access", access.Value)
		assert.Equal(t, auth.AccessTokenMaxAge, access.MaxAge)
	})

	t.Run("rejected refresh token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: "stale"})
		w := httptest.NewRecorder()
		api.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Your session has expired. Please log in again.", decodeBody(t, w)["message"])
	})
}

func TestForgotPasswordIsEnumerationResistant(t *testing.T) {
	api := newTestAPI(t, fakeIdentity())

	known := postJSON(t, api, "/api/auth/forgot-password", map[string]string{"email": "kim@example.com"})
	unknown := postJSON(t, api, "/api/auth/forgot-password", map[string]string{"email": "nobody@example.com"})

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.JSONEq(t, known.Body.String(), unknown.Body.String(), "identical shape for known and unknown emails")
	assert.Equal(t, true, decodeBody(t, known)["success"])
}

func TestLogoutClearsCookies(t *testing.T) {
	api := newTestAPI(t, fakeIdentity())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: "tok"})
	w := httptest.NewRecorder()
	api.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	for _, name := range []string{auth.AccessTokenCookie, auth.RefreshTokenCookie} {
		c := cookieByName(w.Result().Cookies(), name)
		require.NotNil(t, c, "cookie %q must be cleared", name)
		assert.Less(t, c.MaxAge, 0)
		assert.Empty(t, c.Value)
	}
}

func TestRegisterPasswordMismatch(t *testing.T) {
	api := newTestAPI(t, fakeIdentity())

	w := postJSON(t, api, "/api/auth/register", map[string]string{
		"email": "kim@example.com", "password": "hunter22", "rePassword": "hunter23",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Passwords do not match.", decodeBody(t, w)["message"])
}

func TestAuthRoutesWithoutUpstreamConfigured(t *testing.T) {
	api := newTestAPI(t, nil)

	w := postJSON(t, api, "/api/auth/login", map[string]string{
		"email": "kim@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, configErrorMessage, decodeBody(t, w)["message"])
}
