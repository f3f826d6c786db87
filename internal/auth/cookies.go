package auth

import (
	"net/http"
)

// Canonical cookie names. A handful of legacy routes used a bare
// `access`/`refresh` pair; everything now goes through these two.
const (
	AccessTokenCookie  = "quickie_access_token"
	RefreshTokenCookie = "quickie_refresh_token"

	AccessTokenMaxAge  = 3600   // 1 hour
	RefreshTokenMaxAge = 604800 // 7 days
)

// CookieSettings carries the deployment-dependent cookie attributes.
type CookieSettings struct {
	Domain string
	Secure bool
}

// SetSessionCookies stamps the access/refresh pair on the response.
// Both are httpOnly and SameSite=Lax so the browser sends them on top-level
// navigation but scripts can never read them.
func SetSessionCookies(w http.ResponseWriter, access, refresh string, s CookieSettings) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    access,
		Path:     "/",
		Domain:   s.Domain,
		MaxAge:   AccessTokenMaxAge,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refresh,
		Path:     "/",
		Domain:   s.Domain,
		MaxAge:   RefreshTokenMaxAge,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookies expires both cookies.
func ClearSessionCookies(w http.ResponseWriter, s CookieSettings) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   s.Domain,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// AccessToken reads the access cookie off a request, empty if absent.
func AccessToken(r *http.Request) string {
	c, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// RefreshToken reads the refresh cookie off a request, empty if absent.
func RefreshToken(r *http.Request) string {
	c, err := r.Cookie(RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return c.Value
}
